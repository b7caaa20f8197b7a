package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"p2pex.com/internal/p2p/domain"
)

const defaultPrefix = "p2p:session:"

// KV 用 Redis 存会话数据（选中城市、资料）
type KV struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration // 0 不过期
}

var _ domain.KVStore = (*KV)(nil)

func NewKV(rdb redis.UniversalClient, prefix string, ttl time.Duration) *KV {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &KV{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (k *KV) Get(ctx context.Context, key string) (string, error) {
	v, err := k.rdb.Get(ctx, k.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	return v, err
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	return k.rdb.Set(ctx, k.prefix+key, value, k.ttl).Err()
}

func (k *KV) Del(ctx context.Context, key string) error {
	return k.rdb.Del(ctx, k.prefix+key).Err()
}
