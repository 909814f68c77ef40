package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/todo-manager/v2/internal/types"
)

// Health probes the backend's connectivity endpoint. It needs no session.
func (c *ApiClient) Health(ctx context.Context) (*types.Health, error) {
	var health types.Health
	if err := c.CallAPI(ctx, "/health", http.MethodGet, nil, &health, "Health check failed"); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return &health, nil
}
