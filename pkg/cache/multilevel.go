package cache

import (
	"context"
	"time"
)

// MultiLevelCache 两级缓存 (L1: Memory, L2: Redis)
type MultiLevelCache struct {
	local    Cache
	remote   Cache
	localTTL time.Duration // L2 命中回写 L1 时使用
}

// NewMultiLevelCache localTTL 一般取 L2 TTL 的一半
func NewMultiLevelCache(local, remote Cache, localTTL time.Duration) *MultiLevelCache {
	return &MultiLevelCache{
		local:    local,
		remote:   remote,
		localTTL: localTTL,
	}
}

// Set L1 的 TTL 取 L2 的一半，减少实例间不一致的时间
func (m *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	_ = m.local.Set(ctx, key, value, ttl/2)
	return m.remote.Set(ctx, key, value, ttl)
}

func (m *MultiLevelCache) Get(ctx context.Context, key string, target interface{}) error {
	if err := m.local.Get(ctx, key, target); err == nil {
		return nil
	}

	if err := m.remote.Get(ctx, key, target); err != nil {
		return err
	}
	// L2 命中回写 L1
	_ = m.local.Set(ctx, key, target, m.localTTL)
	return nil
}

func (m *MultiLevelCache) Delete(ctx context.Context, key string) error {
	_ = m.local.Delete(ctx, key)
	return m.remote.Delete(ctx, key)
}
