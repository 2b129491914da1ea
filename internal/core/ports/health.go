package ports

import "context"

// HealthChecker is one dependency behind GET /health.
type HealthChecker interface {
	// Ping returns nil while the dependency is usable.
	Ping(ctx context.Context) error
	Name() string
}
