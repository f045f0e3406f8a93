package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/wallet/types"
)

type waitConfig struct {
	timeout time.Duration
}

type WaitOption func(*waitConfig)

// WithTimeout 等待上限, 超时返回 ErrReceiptTimeout。0 表示只受 ctx 约束
func WithTimeout(d time.Duration) WaitOption {
	return func(c *waitConfig) { c.timeout = d }
}

type waiter struct {
	provider Provider
	hash     common.Hash
	staking  bool
	kind     string
	interval time.Duration
	log      *zap.Logger
}

func (w *Wallet) waiter(hash common.Hash, staking bool, kind string) *waiter {
	return &waiter{
		provider: w.provider,
		hash:     hash,
		staking:  staking,
		kind:     kind,
		interval: w.pollInterval,
		log:      w.log.With(zap.String("hash", hash.Hex())),
	}
}

// WaitForHash 按哈希等待一笔已广播的交易, 语义同 Response.Wait。
// 用于进程重启或消息重投后恢复等待, 此时手里只有记录下来的哈希
func (w *Wallet) WaitForHash(ctx context.Context, hash common.Hash, staking bool, confirmations uint64, opts ...WaitOption) (*types.Response, *types.TransactionReceipt, error) {
	kind := "plain"
	if staking {
		kind = "staking"
	}
	var resp types.Response
	receipt, err := w.waiter(hash, staking, kind).wait(ctx, &resp, confirmations, opts...)
	return &resp, receipt, err
}

// wait 轮询回执与最新块高, 只在轮询间隔处挂起。
//   - confirmations == 0: 不等待, 已打包返回回执, 否则返回 nil
//   - 回执状态失败, 或交易曾在交易池中出现后又消失且未打包: ErrTransactionDropped
//   - 超过 WithTimeout 或 ctx 截止时间: ErrReceiptTimeout
//   - ctx 被取消: context.Canceled
func (wt *waiter) wait(ctx context.Context, resp *types.Response, confirmations uint64, opts ...WaitOption) (*types.TransactionReceipt, error) {
	var cfg waitConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	start := time.Now()
	receipt, err := wt.poll(ctx, resp, confirmations)
	observeWait(wt.kind, waitResult(err), start)
	return receipt, err
}

func (wt *waiter) poll(ctx context.Context, resp *types.Response, confirmations uint64) (*types.TransactionReceipt, error) {
	ticker := time.NewTicker(wt.interval)
	defer ticker.Stop()

	seenPending := false
	for {
		receipt, err := wt.provider.TransactionReceipt(ctx, wt.hash)
		switch {
		case errors.Is(err, ethereum.NotFound):
			receipt = nil
		case err != nil:
			if ctx.Err() != nil {
				return nil, wt.contextError(ctx)
			}
			return nil, unavailable("receipt", err)
		}

		if receipt == nil {
			if confirmations == 0 {
				return nil, nil
			}
			pending, err := wt.provider.TransactionInPool(ctx, wt.hash, wt.staking)
			if err != nil {
				if ctx.Err() != nil {
					return nil, wt.contextError(ctx)
				}
				return nil, unavailable("pool", err)
			}
			if pending {
				seenPending = true
			} else if seenPending {
				wt.log.Warn("transaction evicted from pool")
				return nil, errno.New(errno.ErrTransactionDropped, "", "交易 %s 离开交易池但未被打包", wt.hash.Hex())
			}
		} else {
			if err := wt.link(ctx, resp, receipt); err != nil {
				return nil, err
			}
			if !receipt.Succeeded() {
				wt.log.Warn("transaction failed on chain", zap.Uint64("block", receipt.BlockNumber))
				return receipt, errno.New(errno.ErrTransactionDropped, "status", "交易 %s 执行失败", wt.hash.Hex())
			}
			if confirmations == 0 {
				return receipt, nil
			}
			head, err := wt.provider.BlockNumber(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, wt.contextError(ctx)
				}
				return nil, unavailable("blockNumber", err)
			}
			if head >= receipt.BlockNumber {
				resp.Observe(head - receipt.BlockNumber + 1)
			}
			if resp.Confirmations >= confirmations {
				wt.log.Debug("transaction confirmed", zap.Uint64("confirmations", resp.Confirmations))
				return receipt, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, wt.contextError(ctx)
		case <-ticker.C:
		}
	}
}

// link 记录交易所在区块, 时间戳只在第一次打包时查询
func (wt *waiter) link(ctx context.Context, resp *types.Response, receipt *types.TransactionReceipt) error {
	number, hash := receipt.BlockNumber, receipt.BlockHash
	if resp.BlockHash != nil && *resp.BlockHash == hash && resp.Timestamp != nil {
		return nil
	}
	resp.BlockNumber, resp.BlockHash, resp.Timestamp = &number, &hash, nil

	block, err := wt.provider.BlockByNumber(ctx, number)
	switch {
	case errors.Is(err, ethereum.NotFound):
		return nil
	case err != nil:
		if ctx.Err() != nil {
			return wt.contextError(ctx)
		}
		return unavailable("block", err)
	}
	ts := block.Timestamp
	resp.Timestamp = &ts
	return nil
}

func (wt *waiter) contextError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errno.New(errno.ErrReceiptTimeout, "", "等待交易 %s 超时: %w", wt.hash.Hex(), ctx.Err())
	}
	return ctx.Err()
}

func waitResult(err error) string {
	switch {
	case err == nil:
		return "confirmed"
	case errors.Is(err, errno.ErrReceiptTimeout):
		return "timeout"
	case errors.Is(err, errno.ErrTransactionDropped):
		return "dropped"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "error"
}
