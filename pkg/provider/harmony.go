// Package provider 通过 JSON-RPC 访问 Harmony 节点 (hmy_* / hmyv2_* 方法)
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/numeric"
	"hmy-wallet/pkg/wallet/types"
)

// HarmonyProvider 单个分片节点的 RPC 客户端, 实现 wallet.Provider
type HarmonyProvider struct {
	client *rpc.Client
}

func Dial(ctx context.Context, url string) (*HarmonyProvider, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("连接节点 %s 失败: %w", url, err)
	}
	return NewHarmonyProvider(client), nil
}

func NewHarmonyProvider(client *rpc.Client) *HarmonyProvider {
	return &HarmonyProvider{client: client}
}

func (p *HarmonyProvider) Close() {
	p.client.Close()
}

// call 执行 RPC 并把 null 结果转换为 ethereum.NotFound
func (p *HarmonyProvider) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	var raw json.RawMessage
	if err := p.client.CallContext(ctx, &raw, method, args...); err != nil {
		return err
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ethereum.NotFound
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("解析 %s 结果失败: %w", method, err)
	}
	return nil
}

func (p *HarmonyProvider) ChainID(ctx context.Context) (*big.Int, error) {
	var id numeric.Big
	if err := p.call(ctx, &id, "hmy_chainId"); err != nil {
		return nil, err
	}
	return id.Int(), nil
}

func (p *HarmonyProvider) BlockNumber(ctx context.Context) (uint64, error) {
	var n numeric.Uint64
	if err := p.call(ctx, &n, "hmyv2_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

type blockArgs struct {
	FullTx      bool `json:"fullTx"`
	InclTx      bool `json:"inclTx"`
	InclStaking bool `json:"inclStaking"`
}

func (p *HarmonyProvider) BlockByNumber(ctx context.Context, number uint64) (*types.Block, error) {
	var b types.Block
	if err := p.call(ctx, &b, "hmyv2_getBlockByNumber", number, blockArgs{InclTx: true, InclStaking: true}); err != nil {
		return nil, err
	}
	return &b, nil
}

func (p *HarmonyProvider) BlockWithTransactionsByNumber(ctx context.Context, number uint64) (*types.BlockWithTransactions, error) {
	var b types.BlockWithTransactions
	if err := p.call(ctx, &b, "hmyv2_getBlockByNumber", number, blockArgs{FullTx: true, InclTx: true, InclStaking: true}); err != nil {
		return nil, err
	}
	return &b, nil
}

func (p *HarmonyProvider) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	var n numeric.Uint64
	if err := p.call(ctx, &n, "hmyv2_getTransactionCount", address.ToBech32(account), "pending"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (p *HarmonyProvider) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var price numeric.Big
	if err := p.call(ctx, &price, "hmyv2_gasPrice"); err != nil {
		return nil, err
	}
	return price.Int(), nil
}

type callArgs struct {
	From     *common.Address `json:"from,omitempty"`
	To       *common.Address `json:"to,omitempty"`
	Gas      *hexutil.Uint64 `json:"gas,omitempty"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Data     hexutil.Bytes   `json:"data,omitempty"`
}

func (p *HarmonyProvider) EstimateGas(ctx context.Context, req *types.TransactionRequest) (uint64, error) {
	args := callArgs{
		From:     req.From,
		To:       req.To,
		GasPrice: (*hexutil.Big)(req.GasPrice),
		Value:    (*hexutil.Big)(req.Value),
		Data:     req.Data,
	}
	if req.GasLimit != nil {
		args.Gas = (*hexutil.Uint64)(req.GasLimit)
	}
	var gas numeric.Uint64
	if err := p.call(ctx, &gas, "hmy_estimateGas", args); err != nil {
		return 0, err
	}
	return uint64(gas), nil
}

func (p *HarmonyProvider) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	err := p.call(ctx, &hash, "hmy_sendRawTransaction", hexutil.Encode(raw))
	return hash, err
}

func (p *HarmonyProvider) SendRawStakingTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	err := p.call(ctx, &hash, "hmy_sendRawStakingTransaction", hexutil.Encode(raw))
	return hash, err
}

func (p *HarmonyProvider) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.TransactionReceipt, error) {
	var r types.TransactionReceipt
	if err := p.call(ctx, &r, "hmyv2_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	return &r, nil
}

// TransactionInPool 节点能查到交易但还没有区块信息, 说明仍在交易池中
func (p *HarmonyProvider) TransactionInPool(ctx context.Context, hash common.Hash, staking bool) (bool, error) {
	method := "hmyv2_getTransactionByHash"
	if staking {
		method = "hmyv2_getStakingTransactionByHash"
	}
	var resp types.Response
	err := p.call(ctx, &resp, method, hash)
	if errors.Is(err, ethereum.NotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !resp.Mined(), nil
}

func (p *HarmonyProvider) CXReceipt(ctx context.Context, hash common.Hash) (*types.CXTransactionReceipt, error) {
	var r types.CXTransactionReceipt
	if err := p.call(ctx, &r, "hmyv2_getCXReceiptByHash", hash); err != nil {
		return nil, err
	}
	return &r, nil
}
