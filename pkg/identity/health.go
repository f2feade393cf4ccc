package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Health probes the service liveness endpoint. Unlike the API endpoints,
// /health responds without the standard envelope.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	status, body, err := c.send(ctx, http.MethodGet, "/health", nil, nil, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, unknownError(fmt.Sprintf("health check returned status %d", status))
	}

	var hs HealthStatus
	if err := json.Unmarshal(body, &hs); err != nil {
		return nil, unknownError(fmt.Sprintf("failed to decode health response: %v", err))
	}
	return &hs, nil
}
