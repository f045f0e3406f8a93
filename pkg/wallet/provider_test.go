package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"hmy-wallet/pkg/wallet/types"
)

// fakeProvider 内存中的节点, pollHook 在每次查询回执时被调用, 用来推进链状态
type fakeProvider struct {
	mu sync.Mutex

	chainID  *big.Int
	nonce    uint64
	gasPrice *big.Int
	gas      uint64
	head     uint64

	chainErr    error
	estimateErr error
	sendErr     error

	calls    int
	sent     [][]byte
	receipts map[common.Hash]*types.TransactionReceipt
	pool     map[common.Hash]bool
	polls    int
	pollHook func(p *fakeProvider, hash common.Hash)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		chainID:  big.NewInt(2),
		nonce:    7,
		gasPrice: big.NewInt(100_000_000_000),
		gas:      21000,
		head:     100,
		receipts: make(map[common.Hash]*types.TransactionReceipt),
		pool:     make(map[common.Hash]bool),
	}
}

// rpcError 模拟节点在 JSON-RPC 层返回的错误
type rpcError struct {
	code int
	msg  string
}

func (e *rpcError) Error() string  { return e.msg }
func (e *rpcError) ErrorCode() int { return e.code }

var errConnRefused = errors.New("dial tcp 127.0.0.1:9500: connect: connection refused")

func (p *fakeProvider) ChainID(ctx context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.chainErr != nil {
		return nil, p.chainErr
	}
	return new(big.Int).Set(p.chainID), nil
}

func (p *fakeProvider) BlockNumber(ctx context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.head, nil
}

func (p *fakeProvider) BlockByNumber(ctx context.Context, number uint64) (*types.Block, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if number > p.head {
		return nil, ethereum.NotFound
	}
	return &types.Block{BlockHeader: types.BlockHeader{Number: number, Timestamp: 1_700_000_000 + number*2}}, nil
}

func (p *fakeProvider) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.nonce, nil
}

func (p *fakeProvider) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return new(big.Int).Set(p.gasPrice), nil
}

func (p *fakeProvider) EstimateGas(ctx context.Context, req *types.TransactionRequest) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.estimateErr != nil {
		return 0, p.estimateErr
	}
	return p.gas, nil
}

func (p *fakeProvider) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	return p.send(raw)
}

func (p *fakeProvider) SendRawStakingTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	return p.send(raw)
}

func (p *fakeProvider) send(raw []byte) (common.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.sendErr != nil {
		return common.Hash{}, p.sendErr
	}
	p.sent = append(p.sent, raw)
	hash := crypto.Keccak256Hash(raw)
	p.pool[hash] = true
	return hash, nil
}

func (p *fakeProvider) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.TransactionReceipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.polls++
	if p.pollHook != nil {
		p.pollHook(p, hash)
	}
	if r, ok := p.receipts[hash]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, ethereum.NotFound
}

func (p *fakeProvider) TransactionInPool(ctx context.Context, hash common.Hash, staking bool) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.pool[hash], nil
}

// mine 把交易打包进下一个区块 (调用方持有锁)
func (p *fakeProvider) mine(hash common.Hash, status uint64) {
	p.head++
	delete(p.pool, hash)
	p.receipts[hash] = &types.TransactionReceipt{
		TransactionHash: hash,
		BlockHash:       common.BigToHash(new(big.Int).SetUint64(p.head)),
		BlockNumber:     p.head,
		Status:          status,
	}
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
