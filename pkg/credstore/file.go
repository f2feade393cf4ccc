package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File stores credentials as a small JSON document on disk, suitable for
// CLI tools. The file is written with 0600 permissions and its parent
// directory is created with 0700 if needed.
type File struct {
	mu         sync.Mutex
	path       string
	accessKey  string
	refreshKey string
}

// FileOption customises a File store.
type FileOption func(*File)

// WithKeys overrides the JSON key names used for the two tokens.
func WithKeys(accessKey, refreshKey string) FileOption {
	return func(f *File) {
		if accessKey != "" {
			f.accessKey = accessKey
		}
		if refreshKey != "" {
			f.refreshKey = refreshKey
		}
	}
}

// NewFile returns a file-backed store at path. The file does not need to
// exist; a missing file reads as empty credentials.
func NewFile(path string, opts ...FileOption) *File {
	f := &File{
		path:       path,
		accessKey:  DefaultAccessKey,
		refreshKey: DefaultRefreshKey,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *File) Load() (Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("failed to read credential file %s: %w", f.path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credential file %s: %w", f.path, err)
	}

	return Credentials{
		AccessToken:  raw[f.accessKey],
		RefreshToken: raw[f.refreshKey],
	}, nil
}

func (f *File) Save(accessToken, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	b, err := json.MarshalIndent(map[string]string{
		f.accessKey:  accessToken,
		f.refreshKey: refreshToken,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write credential file %s: %w", f.path, err)
	}
	return nil
}

func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential file %s: %w", f.path, err)
	}
	return nil
}
