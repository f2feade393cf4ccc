package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	s := NewMemory()

	creds, err := s.Load()
	require.NoError(t, err)
	require.True(t, creds.Empty())

	require.NoError(t, s.Save("access-1", "refresh-1"))
	creds, err = s.Load()
	require.NoError(t, err)
	require.Equal(t, "access-1", creds.AccessToken)
	require.Equal(t, "refresh-1", creds.RefreshToken)

	require.NoError(t, s.Clear())
	creds, err = s.Load()
	require.NoError(t, err)
	require.True(t, creds.Empty())
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	s := NewFile(path)

	t.Run("missing file reads as empty", func(t *testing.T) {
		creds, err := s.Load()
		require.NoError(t, err)
		require.True(t, creds.Empty())
	})

	t.Run("save and load round-trip", func(t *testing.T) {
		require.NoError(t, s.Save("access-1", "refresh-1"))

		creds, err := s.Load()
		require.NoError(t, err)
		require.Equal(t, "access-1", creds.AccessToken)
		require.Equal(t, "refresh-1", creds.RefreshToken)

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("clear removes the file", func(t *testing.T) {
		require.NoError(t, s.Clear())
		_, err := os.Stat(path)
		require.ErrorIs(t, err, os.ErrNotExist)

		// Clearing an already-absent file is not an error.
		require.NoError(t, s.Clear())
	})
}

func TestFileStoreCustomKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFile(path, WithKeys("my_token", "my_refresh"))
	require.NoError(t, s.Save("a", "r"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `"my_token"`)
	require.Contains(t, string(b), `"my_refresh"`)

	creds, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "a", creds.AccessToken)
	require.Equal(t, "r", creds.RefreshToken)
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	dsn := filepath.Join(t.TempDir(), "creds.db")
	s, err := NewSQLite(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	creds, err := s.Load()
	require.NoError(t, err)
	require.True(t, creds.Empty())

	require.NoError(t, s.Save("access-1", "refresh-1"))
	creds, err = s.Load()
	require.NoError(t, err)
	require.Equal(t, "access-1", creds.AccessToken)
	require.Equal(t, "refresh-1", creds.RefreshToken)

	// Save replaces both tokens.
	require.NoError(t, s.Save("access-2", ""))
	creds, err = s.Load()
	require.NoError(t, err)
	require.Equal(t, "access-2", creds.AccessToken)
	require.Empty(t, creds.RefreshToken)

	require.NoError(t, s.Clear())
	creds, err = s.Load()
	require.NoError(t, err)
	require.True(t, creds.Empty())
}
