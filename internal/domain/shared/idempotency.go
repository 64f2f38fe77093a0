package shared

import (
	"context"
	"time"
)

// IdempotencyStore tracks processed event ids so an at-least-once delivery
// runs a handler's side effects at most once.
type IdempotencyStore interface {
	// MarkProcessed atomically marks an event as processed.
	// It returns true if the mark was newly set, false if the event was
	// already processed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// Release drops the mark so a redelivery of the event runs again.
	// Releasing an unknown id is not an error.
	Release(ctx context.Context, eventID string) error

	Close() error
}

// IdempotencyConfig holds configuration for idempotent handling
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig returns a 24h TTL, enabled configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
