package snipdex

import (
	"context"
	"net/http"

	api "github.com/kailas-cloud/snipdex/internal/transport/chi"
)

// Health checks the health of all server components. A degraded server
// answers 503 with a report; that report is returned without an error.
func (c *Client) Health(ctx context.Context) (hs HealthStatus, err error) {
	defer c.track("health")(&err)

	var resp api.HealthResponse
	if _, err := c.do(ctx, http.MethodGet, "/health", nil, &resp, http.StatusServiceUnavailable); err != nil {
		return HealthStatus{}, err
	}
	return HealthStatus{Status: resp.Status, Checks: resp.Checks}, nil
}
