package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p2pex.com/internal/p2p/domain"
)

// 需要本地 Redis：REDIS_ADDR=127.0.0.1:6379 go test ./...
func newTestClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestKV_RoundTrip(t *testing.T) {
	rdb := newTestClient(t)
	ctx := context.Background()
	kv := NewKV(rdb, "p2p:test:"+time.Now().Format("150405.000")+":", time.Minute)

	_, err := kv.Get(ctx, "selectedCity")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, kv.Set(ctx, "selectedCity", "Pune"))
	v, err := kv.Get(ctx, "selectedCity")
	require.NoError(t, err)
	assert.Equal(t, "Pune", v)

	ttl, err := rdb.TTL(ctx, kv.prefix+"selectedCity").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, kv.Del(ctx, "selectedCity"))
	_, err = kv.Get(ctx, "selectedCity")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
