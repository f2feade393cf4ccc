// Package credstore persists bearer credentials for the identity SDK.
//
// A Store holds at most one access/refresh token pair. Tokens are opaque
// strings; the store never inspects them. Implementations must treat absent
// storage (missing file, empty table) as an empty credential pair rather
// than an error, so a fresh install behaves like a logged-out client.
package credstore

// Credentials is an access/refresh token pair. Either field may be empty.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether no tokens are stored at all.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// Store is the persistence contract for bearer credentials.
//
// Implementations must be safe for concurrent use: the transport reads
// credentials on every request while refresh writes them.
type Store interface {
	// Load returns the stored credentials. Absent storage yields empty
	// credentials, not an error.
	Load() (Credentials, error)

	// Save replaces both tokens atomically.
	Save(accessToken, refreshToken string) error

	// Clear removes all stored credentials.
	Clear() error
}

// Default key names used by the file and SQLite backends.
const (
	DefaultAccessKey  = "app_token"
	DefaultRefreshKey = "app_refresh_token"
)
