package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/inbox-lab/autoreply/pkg/cache"
	redisstore "github.com/inbox-lab/autoreply/pkg/cache/redis"
)

func testStore(t *testing.T) *redisstore.Store {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	store, err := redisstore.New(context.Background(), addr, "", 0)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	key := "test:" + t.Name()
	gt.NoError(t, store.Set(ctx, key, []byte(`{"value":"v"}`), time.Minute))

	data := gt.R1(store.Get(ctx, key)).NoError(t)
	gt.Value(t, string(data)).Equal(`{"value":"v"}`)

	gt.NoError(t, store.Delete(ctx, key))
	_, err := store.Get(ctx, key)
	gt.Value(t, cache.IsNotFound(err)).Equal(true)
}

func TestMissingKey(t *testing.T) {
	store := testStore(t)

	_, err := store.Get(context.Background(), "test:never-set")
	gt.Value(t, cache.IsNotFound(err)).Equal(true)
}

func TestAvailable(t *testing.T) {
	store := testStore(t)
	gt.Value(t, store.Available(context.Background())).Equal(true)
}
