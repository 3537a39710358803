package repositories

import "context"

// HealthChecker is implemented by stores that can report their liveness.
type HealthChecker interface {
	// Ping returns an error when the backing store is unreachable.
	Ping(ctx context.Context) error
}
