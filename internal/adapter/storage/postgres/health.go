package postgres

import (
	"context"
	"fmt"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether the pool can still run a statement. It goes
// through Exec rather than Ping so an exhausted pool shows up as unhealthy.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if _, err := h.pool.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("postgres health: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string { return "postgresql" }
