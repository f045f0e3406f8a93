package wallet

import (
	"context"
	"math/big"

	"go.uber.org/zap"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/staking"
	"hmy-wallet/pkg/wallet/types"
)

// Populate 补全普通交易缺失的字段, 返回新对象, 不修改 req
func (w *Wallet) Populate(ctx context.Context, req *types.TransactionRequest) (*types.TransactionRequest, error) {
	if req == nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "", "请求为空")
	}
	if fields := req.UnsupportedFields(); len(fields) > 0 {
		return nil, errno.New(errno.ErrUnsupportedField, fields[0], "普通交易不支持该字段")
	}

	tx := req.Clone()
	if tx.From == nil {
		from := w.address
		tx.From = &from
	} else if *tx.From != w.address {
		return nil, errno.New(errno.ErrInvalidTransaction, "from", "发送方 %s 与钱包地址不一致", tx.From.Hex())
	}
	if tx.ShardID == nil {
		shard := w.shardID
		tx.ShardID = &shard
	}
	if tx.ToShardID == nil {
		shard := *tx.ShardID
		tx.ToShardID = &shard
	}

	chainID, err := w.resolveChainID(ctx, tx.ChainID)
	if err != nil {
		return nil, err
	}
	tx.ChainID = chainID

	if tx.Nonce == nil {
		nonce, err := w.provider.PendingNonceAt(ctx, w.address)
		if err != nil {
			return nil, unavailable("nonce", err)
		}
		tx.Nonce = &nonce
	}
	if tx.GasPrice == nil {
		price, err := w.provider.SuggestGasPrice(ctx)
		if err != nil {
			return nil, unavailable("gasPrice", err)
		}
		tx.GasPrice = price
	}
	if tx.GasLimit == nil {
		gas, err := w.estimateGas(ctx, tx)
		if err != nil {
			return nil, err
		}
		tx.GasLimit = &gas
	}

	w.log.Debug("populated transaction",
		zap.Uint64("nonce", *tx.Nonce),
		zap.Uint32("shardID", *tx.ShardID),
		zap.Uint32("toShardID", *tx.ToShardID),
	)
	return tx, nil
}

// PopulateStaking 补全质押交易的 nonce、gasPrice、gasLimit、chainId
func (w *Wallet) PopulateStaking(ctx context.Context, req *types.StakingTransactionRequest) (*types.StakingTransactionRequest, error) {
	if req == nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "", "请求为空")
	}
	if fields := req.UnsupportedFields(); len(fields) > 0 {
		return nil, errno.New(errno.ErrUnsupportedField, fields[0], "质押交易不支持该字段")
	}
	if req.Msg == nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "msg", "缺少质押消息")
	}

	tx := req.Clone()

	chainID, err := w.resolveChainID(ctx, tx.ChainID)
	if err != nil {
		return nil, err
	}
	tx.ChainID = chainID

	if tx.Nonce == nil {
		nonce, err := w.provider.PendingNonceAt(ctx, w.address)
		if err != nil {
			return nil, unavailable("nonce", err)
		}
		tx.Nonce = &nonce
	}
	if tx.GasPrice == nil {
		price, err := w.provider.SuggestGasPrice(ctx)
		if err != nil {
			return nil, unavailable("gasPrice", err)
		}
		tx.GasPrice = price
	}
	if tx.GasLimit == nil {
		gas, err := staking.IntrinsicGas(tx.Msg)
		if err != nil {
			return nil, errno.New(errno.ErrInvalidTransaction, "msg", "%w", err)
		}
		tx.GasLimit = &gas
	}

	w.log.Debug("populated staking transaction",
		zap.Stringer("directive", tx.Type),
		zap.Uint64("nonce", *tx.Nonce),
	)
	return tx, nil
}

// resolveChainID 一次 populate 只查询一次链 ID, 调用方给出的值必须与网络一致
func (w *Wallet) resolveChainID(ctx context.Context, requested *big.Int) (*big.Int, error) {
	network, err := w.GetChainID(ctx)
	if err != nil {
		return nil, err
	}
	if requested != nil && requested.Cmp(network) != 0 {
		return nil, errno.New(errno.ErrInvalidTransaction, "chainId", "请求的链 ID %s 与网络 %s 不一致", requested, network)
	}
	return new(big.Int).Set(network), nil
}

func (w *Wallet) estimateGas(ctx context.Context, tx *types.TransactionRequest) (uint64, error) {
	gas, err := w.provider.EstimateGas(ctx, tx)
	if err == nil {
		return gas, nil
	}
	if w.defaultGasLimit > 0 && rejected(err) {
		w.log.Warn("estimate gas rejected, using default gas limit",
			zap.Uint64("gasLimit", w.defaultGasLimit), zap.Error(err))
		return w.defaultGasLimit, nil
	}
	if rejected(err) {
		return 0, errno.New(errno.ErrInvalidTransaction, "gasLimit", "估算 gas 失败: %w", err)
	}
	return 0, unavailable("estimateGas", err)
}
