package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/wallet/types"
)

// SendTransaction populate -> check -> sign -> 广播。任一阶段失败立即返回, 不重试
func (w *Wallet) SendTransaction(ctx context.Context, req *types.TransactionRequest) (*TransactionResponse, error) {
	populated, err := w.Populate(ctx, req)
	if err != nil {
		countFailed("plain", "populate")
		return nil, err
	}
	tx, raw, err := w.signTransaction(populated)
	if err != nil {
		countFailed("plain", "sign")
		return nil, err
	}

	hash, err := w.provider.SendRawTransaction(ctx, raw)
	if err != nil {
		countFailed("plain", "send")
		return nil, w.sendError(err)
	}
	if hash != tx.Hash {
		w.log.Warn("provider returned unexpected hash",
			zap.String("expected", tx.Hash.Hex()), zap.String("got", hash.Hex()))
	}
	countSent("plain")
	w.log.Info("transaction sent",
		zap.String("hash", tx.Hash.Hex()),
		zap.Uint64("nonce", tx.Nonce),
		zap.Uint32("shardID", tx.ShardID),
		zap.Uint32("toShardID", tx.ToShardID),
	)

	return &TransactionResponse{
		Transaction: *tx,
		Raw:         hexutil.Encode(raw),
		waiter:      w.waiter(tx.Hash, false, "plain"),
	}, nil
}

// SendStakingTransaction 与 SendTransaction 相同的流程, 走质押交易广播接口
func (w *Wallet) SendStakingTransaction(ctx context.Context, req *types.StakingTransactionRequest) (*StakingTransactionResponse, error) {
	populated, err := w.PopulateStaking(ctx, req)
	if err != nil {
		countFailed("staking", "populate")
		return nil, err
	}
	tx, raw, err := w.signStakingTransaction(populated)
	if err != nil {
		countFailed("staking", "sign")
		return nil, err
	}

	hash, err := w.provider.SendRawStakingTransaction(ctx, raw)
	if err != nil {
		countFailed("staking", "send")
		return nil, w.sendError(err)
	}
	if hash != tx.Hash {
		w.log.Warn("provider returned unexpected hash",
			zap.String("expected", tx.Hash.Hex()), zap.String("got", hash.Hex()))
	}
	countSent("staking")
	w.log.Info("staking transaction sent",
		zap.String("hash", tx.Hash.Hex()),
		zap.Stringer("directive", tx.Directive),
		zap.Uint64("nonce", tx.Nonce),
	)

	return &StakingTransactionResponse{
		StakingTransaction: *tx,
		Raw:                hexutil.Encode(raw),
		waiter:             w.waiter(tx.Hash, true, "staking"),
	}, nil
}

// sendError 节点明确拒绝 -> TransactionDropped, 其余视为传输失败
func (w *Wallet) sendError(err error) error {
	if rejected(err) {
		w.log.Warn("transaction rejected by node", zap.Error(err))
		return errno.New(errno.ErrTransactionDropped, "", "%w", err)
	}
	w.log.Error("broadcast failed", zap.Error(err))
	return unavailable("send", err)
}
