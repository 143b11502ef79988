package interfaces

import (
	"context"
	"time"
)

// DurableStore is the optional durable tier behind the cache. An
// implementation must treat its own outages as misses: the cache degrades
// to the volatile tier and never fails an operation because the durable
// tier is unreachable.
type DurableStore interface {
	// Get returns the stored payload, or an error wrapping the store's
	// not-found sentinel when the key is absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores the payload with the given TTL
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the key if present
	Delete(ctx context.Context, key string) error

	// Clear removes all entries
	Clear(ctx context.Context) error

	// Available reports whether the store is currently reachable
	Available(ctx context.Context) bool
}
