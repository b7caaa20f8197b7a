package memory

import (
	"context"
	"sync"

	"p2pex.com/internal/p2p/domain"
)

// KV 进程内的 KVStore，没配 Redis 或测试时使用
type KV struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewKV() *KV {
	return &KV{m: make(map[string]string)}
}

func (k *KV) Get(_ context.Context, key string) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.m[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (k *KV) Set(_ context.Context, key, value string) error {
	k.mu.Lock()
	k.m[key] = value
	k.mu.Unlock()
	return nil
}

func (k *KV) Del(_ context.Context, key string) error {
	k.mu.Lock()
	delete(k.m, key)
	k.mu.Unlock()
	return nil
}
