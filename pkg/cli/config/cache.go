package config

import (
	"context"
	"time"

	"github.com/inbox-lab/autoreply/pkg/cache"
	redisstore "github.com/inbox-lab/autoreply/pkg/cache/redis"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
	"github.com/inbox-lab/autoreply/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// Cache holds cache tier configuration
type Cache struct {
	redisAddr     string
	redisPassword string
	redisDB       int64
	ttl           time.Duration
}

// Flags returns CLI flags for cache configuration
func (c *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address for the durable cache tier (empty disables it)",
			Sources:     cli.EnvVars("AUTOREPLY_REDIS_ADDR"),
			Destination: &c.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Sources:     cli.EnvVars("AUTOREPLY_REDIS_PASSWORD"),
			Destination: &c.redisPassword,
		},
		&cli.Int64Flag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Sources:     cli.EnvVars("AUTOREPLY_REDIS_DB"),
			Destination: &c.redisDB,
		},
		&cli.DurationFlag{
			Name:        "cache-ttl",
			Usage:       "TTL applied to all cache entries",
			Value:       time.Hour,
			Sources:     cli.EnvVars("AUTOREPLY_CACHE_TTL"),
			Destination: &c.ttl,
		},
	}
}

// Configure builds the cache service. An unreachable Redis degrades to the
// volatile-only cache with a warning instead of failing startup. The
// returned closer releases the Redis connection when one was made.
func (c *Cache) Configure(ctx context.Context) (*cache.Service, func(), error) {
	closer := func() {}

	if c.redisAddr == "" {
		return cache.New(cache.NewNoopStore(), c.ttl), closer, nil
	}

	store, err := redisstore.New(ctx, c.redisAddr, c.redisPassword, int(c.redisDB))
	if err != nil {
		logging.Default().Warn("redis unreachable, using volatile cache only",
			"addr", c.redisAddr,
			"error", err,
		)
		return cache.New(cache.NewNoopStore(), c.ttl), closer, nil
	}

	closer = func() {
		safe.Close(ctx, store)
	}
	return cache.New(store, c.ttl), closer, nil
}
