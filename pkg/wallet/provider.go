package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/wallet/types"
)

// Provider 钱包依赖的节点能力。
// 未找到 (回执未生成、区块不存在) 时返回 ethereum.NotFound
type Provider interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number uint64) (*types.Block, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, req *types.TransactionRequest) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	SendRawStakingTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.TransactionReceipt, error)
	// TransactionInPool 交易是否还在交易池中等待打包
	TransactionInPool(ctx context.Context, hash common.Hash, staking bool) (bool, error)
}

// unavailable 把 provider 的失败统一包装为 ErrProviderUnavailable, 保留原始错误
func unavailable(op string, err error) error {
	return errno.New(errno.ErrProviderUnavailable, op, "%w", err)
}

// rejected 节点在 JSON-RPC 层拒绝了交易 (nonce 过低、余额不足等)
func rejected(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr)
}
