package cache

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
)

// ErrNotFound is returned by durable stores when a key is absent
var ErrNotFound = goerr.New("cache entry not found")

// IsNotFound reports whether err indicates an absent key
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// noopStore is the durable tier used when none is configured. Every read
// misses, every write succeeds.
type noopStore struct{}

// NewNoopStore returns a durable tier that stores nothing
func NewNoopStore() interfaces.DurableStore {
	return &noopStore{}
}

func (s *noopStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, goerr.Wrap(ErrNotFound, "no durable tier", goerr.V("key", key))
}

func (s *noopStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (s *noopStore) Delete(ctx context.Context, key string) error {
	return nil
}

func (s *noopStore) Clear(ctx context.Context) error {
	return nil
}

func (s *noopStore) Available(ctx context.Context) bool {
	return false
}
