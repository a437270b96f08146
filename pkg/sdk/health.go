package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Health returns the server health snapshot. A degraded or unhealthy server
// still yields a report; transport failures yield an error.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	var report HealthReport
	err := c.do(ctx, http.MethodGet, "/health", nil, &report)
	if err == nil {
		return report, nil
	}

	// 503 carries a JSON body with the failing checks — surface it.
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
		return HealthReport{Status: "error"}, nil
	}
	return HealthReport{}, fmt.Errorf("health: %w", err)
}
