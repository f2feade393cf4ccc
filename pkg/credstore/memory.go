package credstore

import "sync"

// Memory is an in-process Store. Credentials do not survive a restart;
// it is the default backend for tests and short-lived tools.
type Memory struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load() (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds, nil
}

func (m *Memory) Save(accessToken, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{AccessToken: accessToken, RefreshToken: refreshToken}
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	return nil
}
