package identity

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/harbourgate/identity-go/pkg/credstore"
)

const (
	// DefaultTimeout bounds every network call made by the client.
	DefaultTimeout = 10 * time.Second
)

// Config configures a Client. APIURL is the only required field.
type Config struct {
	// APIURL is the base URL of the identity service, e.g.
	// "https://id.example.com". Required.
	APIURL string

	// TokenStorageKey and RefreshTokenStorageKey name the entries used by
	// keyed credential store backends.
	TokenStorageKey        string // default "app_token"
	RefreshTokenStorageKey string // default "app_refresh_token"

	// AutoRefresh enables proactive token refresh ahead of expiry when the
	// client is driven through a session.Manager.
	AutoRefresh bool

	// OnTokenExpired is invoked exactly once per failed refresh, after the
	// credential store has been cleared. Optional.
	OnTokenExpired func()

	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying HTTP client. When set, Timeout
	// is ignored in favour of the supplied client's.
	HTTPClient *http.Client

	// Credentials is the token persistence backend. Defaults to an
	// in-memory store.
	Credentials credstore.Store

	// Logger receives transport and lifecycle events. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// RequestsPerSecond throttles outbound requests when positive. Zero
	// disables throttling.
	RequestsPerSecond float64
}

// LoadConfig builds a Config from the environment. Only IDENTITY_API_URL
// is required; everything else falls back to defaults.
func LoadConfig() Config {
	return Config{
		APIURL:                 os.Getenv("IDENTITY_API_URL"),
		TokenStorageKey:        getEnvOrDefault("IDENTITY_TOKEN_KEY", credstore.DefaultAccessKey),
		RefreshTokenStorageKey: getEnvOrDefault("IDENTITY_REFRESH_TOKEN_KEY", credstore.DefaultRefreshKey),
		AutoRefresh:            strings.EqualFold(os.Getenv("IDENTITY_AUTO_REFRESH"), "true"),
		Timeout:                getEnvDurationOrDefault("IDENTITY_TIMEOUT", DefaultTimeout),
	}
}

// validate checks required fields and fills defaults in place.
func (c *Config) validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("identity: Config.APIURL is required")
	}
	c.APIURL = strings.TrimSuffix(c.APIURL, "/")

	if c.TokenStorageKey == "" {
		c.TokenStorageKey = credstore.DefaultAccessKey
	}
	if c.RefreshTokenStorageKey == "" {
		c.RefreshTokenStorageKey = credstore.DefaultRefreshKey
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Credentials == nil {
		c.Credentials = credstore.NewMemory()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
