package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/harbourgate/identity-go/pkg/idx"
)

// maxResponseBody bounds how much of a response the client will read.
const maxResponseBody = 1 << 20

// doRequest performs an unauthenticated request: no bearer token is
// attached and a 401 is surfaced as-is without a refresh attempt. Used by
// the credential-issuing endpoints themselves.
func (c *Client) doRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body, out any,
) error {
	payload, err := marshalBody(body)
	if err != nil {
		return err
	}

	status, respBody, err := c.send(ctx, method, path, query, payload, "")
	if err != nil {
		return err
	}

	_, err = decodeEnvelope(status, respBody, out)
	return err
}

// doAuthRequest performs an authenticated request with the 401
// interception protocol: on an authorization failure the client makes
// exactly one shared refresh attempt and, if it succeeds, re-issues the
// original request once with the new token. A request is never retried
// more than once.
func (c *Client) doAuthRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body, out any,
) error {
	_, err := c.doAuthRequestPaged(ctx, method, path, query, body, out)
	return err
}

// doAuthRequestPaged is doAuthRequest for list endpoints that need the
// envelope's pagination block.
func (c *Client) doAuthRequestPaged(
	ctx context.Context,
	method, path string,
	query url.Values,
	body, out any,
) (*Pagination, error) {
	payload, err := marshalBody(body)
	if err != nil {
		return nil, err
	}

	creds, loadErr := c.creds.Load()
	if loadErr != nil {
		return nil, unknownError(fmt.Sprintf("failed to load credentials: %v", loadErr))
	}

	status, respBody, err := c.send(ctx, method, path, query, payload, creds.AccessToken)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		if refreshErr := c.sharedRefresh(ctx); refreshErr != nil {
			// Refresh failed: the store has been cleared and the expiry
			// callback fired. Surface the original failure.
			_, origErr := decodeEnvelope(status, respBody, out)
			return nil, origErr
		}

		creds, loadErr = c.creds.Load()
		if loadErr != nil {
			return nil, unknownError(fmt.Sprintf("failed to load credentials: %v", loadErr))
		}

		status, respBody, err = c.send(ctx, method, path, query, payload, creds.AccessToken)
		if err != nil {
			return nil, err
		}
	}

	return decodeEnvelope(status, respBody, out)
}

// sharedRefresh collapses concurrent refresh attempts into a single
// in-flight call; every concurrent 401 handler awaits the same result.
func (c *Client) sharedRefresh(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return nil, c.refreshOnce(ctx)
	})
	return err
}

// send executes one HTTP round trip and returns the status code and body.
// Transport-level failures come back as *Error with CodeNetworkError;
// requests that cannot be constructed map to CodeUnknown.
func (c *Client) send(
	ctx context.Context,
	method, path string,
	query url.Values,
	payload []byte,
	token string,
) (int, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, unknownError(fmt.Sprintf("failed to create request: %v", err))
	}

	reqID := idx.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, networkError(err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "req_id", reqID, "error", err)
		return 0, nil, networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, networkError(err)
	}

	c.log.Debug("request complete",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"req_id", reqID,
	)
	return resp.StatusCode, body, nil
}

// marshalBody encodes the request body once so a retried request can be
// re-sent byte-for-byte.
func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, unknownError(fmt.Sprintf("failed to encode request body: %v", err))
	}
	return b, nil
}

// decodeEnvelope parses the service's response envelope. Success responses
// have their data member unmarshaled into out; failures become a *Error
// with the server's code, defaulting to CodeUnknown for anything outside
// the taxonomy.
func decodeEnvelope(status int, body []byte, out any) (*Pagination, error) {
	var env envelope
	parseErr := json.Unmarshal(body, &env)

	if status >= 200 && status < 300 && parseErr == nil && env.Success {
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return nil, unknownError(fmt.Sprintf("failed to decode response data: %v", err))
			}
		}
		return env.Pagination, nil
	}

	if parseErr == nil && env.Error != nil {
		return nil, &Error{
			Code:    normalizeCode(env.Error.Code),
			Message: env.Error.Message,
			Details: env.Error.Details,
		}
	}

	msg := env.Message
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	}
	return nil, unknownError(msg)
}
