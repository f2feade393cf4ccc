package identity

import (
	"context"
	"net/http"
)

// Register creates a new account. The input is validated locally before
// any network call. On success the issued token pair is persisted and the
// created User returned.
func (c *Client) Register(ctx context.Context, data RegisterData) (*User, error) {
	if err := ValidateRegisterData(data); err != nil {
		return nil, err
	}

	var payload authPayload
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", nil, data, &payload); err != nil {
		return nil, err
	}

	if err := c.creds.Save(payload.Token, payload.RefreshToken); err != nil {
		return nil, unknownError("failed to persist credentials: " + err.Error())
	}
	return &payload.User, nil
}

// Login authenticates with email and password. On success the issued token
// pair is persisted and the signed-in User returned.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	if err := ValidateLoginInput(email, password); err != nil {
		return nil, err
	}

	body := map[string]string{"email": email, "password": password}

	var payload authPayload
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", nil, body, &payload); err != nil {
		return nil, err
	}

	if err := c.creds.Save(payload.Token, payload.RefreshToken); err != nil {
		return nil, unknownError("failed to persist credentials: " + err.Error())
	}
	return &payload.User, nil
}

// LoginWithFirebase exchanges a federated Firebase ID token for a service
// token pair. Same persistence and result shape as Login.
func (c *Client) LoginWithFirebase(ctx context.Context, idToken string) (*User, error) {
	if idToken == "" {
		return nil, &Error{Code: CodeValidationError, Message: "idToken is required"}
	}

	body := map[string]string{"idToken": idToken}

	var payload authPayload
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login/firebase", nil, body, &payload); err != nil {
		return nil, err
	}

	if err := c.creds.Save(payload.Token, payload.RefreshToken); err != nil {
		return nil, unknownError("failed to persist credentials: " + err.Error())
	}
	return &payload.User, nil
}

// RefreshAccessToken mints a new access token from the stored refresh
// token. Concurrent callers share a single in-flight refresh. With no
// refresh token stored it fails immediately without a network call. If the
// server rejects the refresh token all credentials are cleared.
func (c *Client) RefreshAccessToken(ctx context.Context) error {
	return c.sharedRefresh(ctx)
}

// refreshOnce is the single-flight body of RefreshAccessToken. Any failure
// clears the credential store and fires the expiry callback; singleflight
// guarantees at most one firing per burst of concurrent 401s.
func (c *Client) refreshOnce(ctx context.Context) error {
	creds, err := c.creds.Load()
	if err != nil {
		return unknownError("failed to load credentials: " + err.Error())
	}

	if creds.RefreshToken == "" {
		c.expireSession()
		return &Error{Code: CodeTokenExpired, Message: "no refresh token available"}
	}

	body := map[string]string{"refreshToken": creds.RefreshToken}

	var payload refreshPayload
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/refresh", nil, body, &payload); err != nil {
		c.log.Warn("token refresh failed", "error", err)
		c.expireSession()
		return err
	}

	refresh := payload.RefreshToken
	if refresh == "" {
		refresh = creds.RefreshToken
	}
	if err := c.creds.Save(payload.Token, refresh); err != nil {
		return unknownError("failed to persist refreshed credentials: " + err.Error())
	}

	c.log.Info("access token refreshed")
	return nil
}

// expireSession clears stored credentials and notifies the expiry
// callback.
func (c *Client) expireSession() {
	if err := c.creds.Clear(); err != nil {
		c.log.Warn("failed to clear credentials", "error", err)
	}
	c.notifyExpired()
}

// Logout invalidates the session server-side on a best-effort basis and
// always clears local credentials. It never fails to the caller.
func (c *Client) Logout(ctx context.Context) {
	creds, err := c.creds.Load()
	if err == nil && creds.AccessToken != "" {
		// Single attempt, no refresh-and-retry: a rejected logout is moot.
		status, body, sendErr := c.send(ctx, http.MethodPost, "/api/auth/logout", nil, nil, creds.AccessToken)
		if sendErr != nil {
			c.log.Warn("remote logout failed", "error", sendErr)
		} else if _, decodeErr := decodeEnvelope(status, body, nil); decodeErr != nil {
			c.log.Warn("remote logout rejected", "error", decodeErr)
		}
	}

	if err := c.creds.Clear(); err != nil {
		c.log.Warn("failed to clear credentials", "error", err)
	}
}

// VerifyToken validates the stored access token against the service and
// returns the current User, or nil when no valid session exists. Failures
// are not propagated: any failure clears the stored credentials and yields
// nil. With no stored access token no network call is made.
func (c *Client) VerifyToken(ctx context.Context) *User {
	creds, err := c.creds.Load()
	if err != nil || creds.AccessToken == "" {
		return nil
	}

	var payload struct {
		User User `json:"user"`
	}
	if err := c.doAuthRequest(ctx, http.MethodGet, "/api/auth/verify", nil, nil, &payload); err != nil {
		c.log.Debug("token verification failed", "error", err)
		if clearErr := c.creds.Clear(); clearErr != nil {
			c.log.Warn("failed to clear credentials", "error", clearErr)
		}
		return nil
	}
	return &payload.User
}
