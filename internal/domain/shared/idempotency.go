package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys of work that has already been done, so that
// replicas or retries do not repeat it.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It returns true if the key was newly
	// claimed and false if someone else already holds it.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether key has been claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a claim, used when the claimed work failed
	Release(ctx context.Context, key string) error

	Close() error
}
