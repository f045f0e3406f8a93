package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hmy-wallet/pkg/logger"
)

// MultiLevelCache 实现多级缓存 (L1: Memory, L2: Redis)。remote 为 nil 时只用 L1
type MultiLevelCache struct {
	local  Cache
	remote Cache
}

func NewMultiLevelCache(local, remote Cache) *MultiLevelCache {
	return &MultiLevelCache{
		local:  local,
		remote: remote,
	}
}

func (m *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// L1 的 TTL 设为 L2 的一半
	if err := m.local.Set(ctx, key, value, ttl/2); err != nil {
		logger.Warn("L1 cache set failed", zap.String("key", key), zap.Error(err))
	}
	if m.remote == nil {
		return nil
	}
	return m.remote.Set(ctx, key, value, ttl)
}

func (m *MultiLevelCache) Get(ctx context.Context, key string, target interface{}) error {
	// 1. 查 L1
	if err := m.local.Get(ctx, key, target); err == nil {
		return nil
	}
	if m.remote == nil {
		return ErrMiss
	}

	// 2. 查 L2, 命中后回写 L1
	if err := m.remote.Get(ctx, key, target); err != nil {
		return err
	}
	_ = m.local.Set(ctx, key, target, time.Minute)
	return nil
}

func (m *MultiLevelCache) Delete(ctx context.Context, key string) error {
	_ = m.local.Delete(ctx, key)
	if m.remote == nil {
		return nil
	}
	return m.remote.Delete(ctx, key)
}
