package identity

import (
	"context"
	"net/http"
)

// GetProfile fetches the signed-in user's profile.
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var user User
	if err := c.doAuthRequest(ctx, http.MethodGet, "/api/users/profile", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial update to the signed-in user's profile.
// The returned User is the server's canonical copy, never a client-side
// merge of the partial input.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.doAuthRequest(ctx, http.MethodPatch, "/api/users/profile", nil, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
