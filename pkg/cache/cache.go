package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

// Entry is a cached value with its creation timestamp. This is also the
// persisted layout of the durable tier.
type Entry struct {
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is a two-tier TTL cache: a volatile in-process tier backed by an
// optional durable tier. Keys are content-addressed digests of
// namespace+logical key, so cache identity is independent of key length.
// Expiry is lazy: expired entries are deleted on read, there is no sweeper.
type Service struct {
	mu       sync.RWMutex
	volatile map[string]Entry

	durable interfaces.DurableStore
	ttl     time.Duration
	now     func() time.Time

	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// Option is a functional option for Service
type Option func(*Service)

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a cache with the given durable tier and TTL. Pass a
// NewNoopStore() when no durable tier is configured.
func New(durable interfaces.DurableStore, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		volatile: make(map[string]Entry),
		durable:  durable,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key derives the storage key for a namespace and logical key. The logical
// key is hashed in full with sha256 so that distinct inputs cannot collide
// the way a truncated or modulus-based hash could.
func Key(namespace, logicalKey string) string {
	digest := sha256.Sum256([]byte(namespace + "\x00" + logicalKey))
	return namespace + ":" + hex.EncodeToString(digest[:16])
}

func (s *Service) expired(e Entry) bool {
	return s.now().Sub(e.CreatedAt) > s.ttl
}

// Get returns the cached value for the namespace and logical key. Expired
// entries are treated as absent and deleted on the way out. The durable
// tier is consulted first; a durable hit always repopulates the volatile
// tier so hot reads stay fast.
func (s *Service) Get(ctx context.Context, namespace, logicalKey string) (string, bool) {
	key := Key(namespace, logicalKey)

	if value, ok := s.getDurable(ctx, key); ok {
		s.hits.Add(1)
		return value, true
	}

	s.mu.Lock()
	entry, ok := s.volatile[key]
	if ok && s.expired(entry) {
		delete(s.volatile, key)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		s.misses.Add(1)
		logging.From(ctx).Debug("cache miss", "key", key)
		return "", false
	}

	s.hits.Add(1)
	return entry.Value, true
}

func (s *Service) getDurable(ctx context.Context, key string) (string, bool) {
	data, err := s.durable.Get(ctx, key)
	if err != nil {
		if !IsNotFound(err) {
			logging.From(ctx).Warn("durable cache get failed", "key", key, "error", err)
		}
		return "", false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Undecodable payloads are misses, not errors
		logging.From(ctx).Warn("undecodable durable cache entry", "key", key, "error", err)
		return "", false
	}

	if s.expired(entry) {
		if err := s.durable.Delete(ctx, key); err != nil {
			logging.From(ctx).Warn("failed to delete expired durable entry", "key", key, "error", err)
		}
		return "", false
	}

	s.mu.Lock()
	s.volatile[key] = entry
	s.mu.Unlock()

	return entry.Value, true
}

// Set stores a value under the namespace and logical key in both tiers.
// A durable-tier failure is logged and ignored: setting never fails.
func (s *Service) Set(ctx context.Context, namespace, logicalKey, value string) {
	key := Key(namespace, logicalKey)
	entry := Entry{
		Value:     value,
		CreatedAt: s.now(),
	}

	if data, err := json.Marshal(entry); err == nil {
		if err := s.durable.Set(ctx, key, data, s.ttl); err != nil {
			logging.From(ctx).Warn("durable cache set failed", "key", key, "error", err)
		}
	}

	s.mu.Lock()
	s.volatile[key] = entry
	s.mu.Unlock()
}

// GetOrCompute returns the cached value, computing and caching it on a
// miss. Concurrent computations for the same key are collapsed.
func (s *Service) GetOrCompute(ctx context.Context, namespace, logicalKey string, compute func() (string, error)) (string, bool, error) {
	if value, ok := s.Get(ctx, namespace, logicalKey); ok {
		return value, true, nil
	}

	key := Key(namespace, logicalKey)
	value, err, _ := s.group.Do(key, func() (any, error) {
		if value, ok := s.Get(ctx, namespace, logicalKey); ok {
			return value, nil
		}
		value, err := compute()
		if err != nil {
			return "", err
		}
		s.Set(ctx, namespace, logicalKey, value)
		return value, nil
	})
	if err != nil {
		return "", false, err
	}
	return value.(string), false, nil
}

// Clear drops both tiers. A durable-tier failure is logged and ignored.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	s.volatile = make(map[string]Entry)
	s.mu.Unlock()

	if err := s.durable.Clear(ctx); err != nil {
		logging.From(ctx).Warn("durable cache clear failed", "error", err)
	}
}

// Stats reports hit/miss counters and tier state
func (s *Service) Stats(ctx context.Context) model.CacheStats {
	s.mu.RLock()
	entries := len(s.volatile)
	s.mu.RUnlock()

	return model.CacheStats{
		Hits:             s.hits.Load(),
		Misses:           s.misses.Load(),
		VolatileEntries:  entries,
		DurableAvailable: s.durable.Available(ctx),
	}
}
