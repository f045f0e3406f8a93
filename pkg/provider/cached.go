package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"hmy-wallet/pkg/cache"
	"hmy-wallet/pkg/logger"
	"hmy-wallet/pkg/monitor"
	"hmy-wallet/pkg/wallet/types"
)

const DefaultCacheTTL = 10 * time.Minute

// Cached 在 HarmonyProvider 之上缓存不可变的查询: 按高度查询的区块与跨分片回执。
// 其余方法 (nonce、gasPrice、回执) 直接透传
type Cached struct {
	*HarmonyProvider
	cache   cache.Cache
	ttl     time.Duration
	shardID uint32
}

func NewCached(p *HarmonyProvider, c cache.Cache, shardID uint32, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{HarmonyProvider: p, cache: c, ttl: ttl, shardID: shardID}
}

func (c *Cached) BlockByNumber(ctx context.Context, number uint64) (*types.Block, error) {
	key := fmt.Sprintf("hmy:%d:block:%d", c.shardID, number)
	var b types.Block
	if c.lookup(ctx, "block", key, &b) {
		return &b, nil
	}
	block, err := c.HarmonyProvider.BlockByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, block)
	return block, nil
}

func (c *Cached) BlockWithTransactionsByNumber(ctx context.Context, number uint64) (*types.BlockWithTransactions, error) {
	key := fmt.Sprintf("hmy:%d:block-full:%d", c.shardID, number)
	var b types.BlockWithTransactions
	if c.lookup(ctx, "blockFull", key, &b) {
		return &b, nil
	}
	block, err := c.HarmonyProvider.BlockWithTransactionsByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, block)
	return block, nil
}

func (c *Cached) CXReceipt(ctx context.Context, hash common.Hash) (*types.CXTransactionReceipt, error) {
	key := fmt.Sprintf("hmy:%d:cx:%s", c.shardID, hash.Hex())
	var r types.CXTransactionReceipt
	if c.lookup(ctx, "cxReceipt", key, &r) {
		return &r, nil
	}
	receipt, err := c.HarmonyProvider.CXReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, receipt)
	return receipt, nil
}

func (c *Cached) lookup(ctx context.Context, method, key string, target interface{}) bool {
	err := c.cache.Get(ctx, key, target)
	if err == nil {
		countCall(method, "cache")
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Warn("provider cache get failed", zap.String("key", key), zap.Error(err))
	}
	countCall(method, "rpc")
	return false
}

func (c *Cached) store(ctx context.Context, key string, value interface{}) {
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		logger.Warn("provider cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func countCall(method, source string) {
	if monitor.Business != nil {
		monitor.Business.ProviderCallTotal.WithLabelValues(method, source).Inc()
	}
}
