// Package redis implements the durable cache tier on top of go-redis/v9.
// Entries are JSON {value, created_at} records; the Redis server-side TTL
// mirrors the cache TTL so abandoned keys eventually disappear even though
// expiry is enforced lazily on read.
package redis

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/inbox-lab/autoreply/pkg/cache"
	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
)

type Store struct {
	rdb *redis.Client
}

var _ interfaces.DurableStore = &Store{}

// New creates a Redis-backed durable store and verifies the connection
// with a PING.
func New(ctx context.Context, addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, goerr.Wrap(err, "redis ping failed", goerr.V("addr", addr))
	}

	return &Store{rdb: rdb}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, goerr.Wrap(cache.ErrNotFound, "key not in redis", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "redis get failed", goerr.V("key", key))
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return goerr.Wrap(err, "redis set failed", goerr.V("key", key))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return goerr.Wrap(err, "redis del failed", goerr.V("key", key))
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.rdb.FlushDB(ctx).Err(); err != nil {
		return goerr.Wrap(err, "redis flushdb failed")
	}
	return nil
}

func (s *Store) Available(ctx context.Context) bool {
	return s.rdb.Ping(ctx).Err() == nil
}

// Close closes the underlying Redis connection
func (s *Store) Close() error {
	return s.rdb.Close()
}
