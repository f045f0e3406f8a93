package cmd

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"hmy-wallet/pkg/wallet/types"
)

var errOffline = errors.New("离线模式下不能访问节点")

// offlineProvider 离线签名时使用, 任何节点查询都直接失败
type offlineProvider struct{}

func (offlineProvider) ChainID(context.Context) (*big.Int, error) { return nil, errOffline }

func (offlineProvider) BlockNumber(context.Context) (uint64, error) { return 0, errOffline }

func (offlineProvider) BlockByNumber(context.Context, uint64) (*types.Block, error) {
	return nil, errOffline
}

func (offlineProvider) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 0, errOffline
}

func (offlineProvider) SuggestGasPrice(context.Context) (*big.Int, error) { return nil, errOffline }

func (offlineProvider) EstimateGas(context.Context, *types.TransactionRequest) (uint64, error) {
	return 0, errOffline
}

func (offlineProvider) SendRawTransaction(context.Context, []byte) (common.Hash, error) {
	return common.Hash{}, errOffline
}

func (offlineProvider) SendRawStakingTransaction(context.Context, []byte) (common.Hash, error) {
	return common.Hash{}, errOffline
}

func (offlineProvider) TransactionReceipt(context.Context, common.Hash) (*types.TransactionReceipt, error) {
	return nil, errOffline
}

func (offlineProvider) TransactionInPool(context.Context, common.Hash, bool) (bool, error) {
	return false, errOffline
}
