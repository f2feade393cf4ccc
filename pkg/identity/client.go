package identity

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/harbourgate/identity-go/pkg/credstore"
)

// Client talks to the identity service. It attaches the stored bearer
// token to authenticated requests, transparently refreshes it on a 401
// response, and normalizes every failure into *Error.
//
// A Client is safe for concurrent use. Concurrent requests that all
// observe a 401 converge on a single refresh call.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	creds   credstore.Store
	log     *slog.Logger
	limiter *rate.Limiter

	// refreshGroup collapses concurrent refresh attempts into one
	// in-flight call shared by all waiters.
	refreshGroup singleflight.Group
}

// New creates a Client from cfg. Returns an error if cfg.APIURL is empty.
func New(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		cfg:     cfg,
		baseURL: cfg.APIURL,
		http:    httpClient,
		creds:   cfg.Credentials,
		log:     cfg.Logger,
		limiter: limiter,
	}, nil
}

// Credentials exposes the underlying credential store, primarily for the
// session manager which mirrors tokens into its state.
func (c *Client) Credentials() credstore.Store {
	return c.creds
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// notifyExpired fires the configured token-expiry callback, if any.
func (c *Client) notifyExpired() {
	if c.cfg.OnTokenExpired != nil {
		c.cfg.OnTokenExpired()
	}
}
