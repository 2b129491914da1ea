package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const healthTimeout = 2 * time.Second

// HealthCheck pings the store backing reader locks and cached results.
type HealthCheck struct {
	client goredis.Cmdable
}

func NewHealthCheck(client goredis.Cmdable) *HealthCheck {
	return &HealthCheck{client: client}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string { return "redis" }
