package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Admin operations. The service enforces authorization server-side; these
// methods simply surface INSUFFICIENT_PERMISSIONS like any other failure.

// GetUsers fetches one page of users. filters may be nil.
func (c *Client) GetUsers(ctx context.Context, page, limit int, filters *UserFilters) (*UserList, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if filters != nil {
		if filters.Role != "" {
			query.Set("role", string(filters.Role))
		}
		if filters.IsActive != nil {
			query.Set("isActive", strconv.FormatBool(*filters.IsActive))
		}
		if filters.Search != "" {
			query.Set("search", filters.Search)
		}
	}

	var items []User
	pagination, err := c.doAuthRequestPaged(ctx, http.MethodGet, "/api/users", query, nil, &items)
	if err != nil {
		return nil, err
	}

	list := &UserList{Items: items, Page: page, Limit: limit, Total: len(items), TotalPages: 1}
	if pagination != nil {
		list.Page = pagination.Page
		list.Limit = pagination.Limit
		list.Total = pagination.Total
		list.TotalPages = pagination.TotalPages
	}
	return list, nil
}

// GetUserByID fetches a single user.
func (c *Client) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.doAuthRequest(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial update to another user's record and returns
// the server's canonical copy.
func (c *Client) UpdateUser(ctx context.Context, id string, update UserUpdate) (*User, error) {
	var user User
	if err := c.doAuthRequest(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(id), nil, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangeUserRole assigns a new role to a user.
func (c *Client) ChangeUserRole(ctx context.Context, id string, role Role) (*User, error) {
	if !role.IsValid() {
		return nil, &Error{
			Code:    CodeValidationError,
			Message: fmt.Sprintf("unknown role %q", role),
			Details: map[string]string{"role": "must be one of the predefined roles"},
		}
	}

	body := map[string]string{"role": string(role)}

	var user User
	if err := c.doAuthRequest(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(id)+"/role", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doAuthRequest(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil, nil)
}

// SearchUsers performs a free-text user search.
func (c *Client) SearchUsers(ctx context.Context, queryText string, limit int) ([]User, error) {
	query := url.Values{"q": {queryText}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var items []User
	if err := c.doAuthRequest(ctx, http.MethodGet, "/api/users/search", query, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetUserStats fetches the aggregate statistics behind the dashboard.
func (c *Client) GetUserStats(ctx context.Context) (*UserStats, error) {
	var stats UserStats
	if err := c.doAuthRequest(ctx, http.MethodGet, "/api/users/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
