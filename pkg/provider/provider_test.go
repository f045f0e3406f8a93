package provider

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/cache"
	"hmy-wallet/pkg/wallet"
	"hmy-wallet/pkg/wallet/types"
)

var (
	_ wallet.Provider = (*HarmonyProvider)(nil)
	_ wallet.Provider = (*Cached)(nil)
)

var account = common.HexToAddress("0x1111111111111111111111111111111111111111")

// hmyService / hmyv2Service 模拟节点, 注册到进程内 RPC server
type hmyService struct {
	sent atomic.Int32
}

func (s *hmyService) ChainId() string { return "0x2" }

func (s *hmyService) EstimateGas(args map[string]interface{}) (hexutil.Uint64, error) {
	if _, ok := args["to"]; !ok {
		return 0, errors.New("execution reverted")
	}
	return 21000, nil
}

func (s *hmyService) SendRawTransaction(raw hexutil.Bytes) (common.Hash, error) {
	if len(raw) == 0 {
		return common.Hash{}, errors.New("empty transaction")
	}
	s.sent.Add(1)
	return crypto.Keccak256Hash(raw), nil
}

func (s *hmyService) SendRawStakingTransaction(raw hexutil.Bytes) (common.Hash, error) {
	return s.SendRawTransaction(raw)
}

type hmyv2Service struct {
	blockCalls atomic.Int32
	fullTx     atomic.Bool
	minedHash  common.Hash
	poolHash   common.Hash
}

func (s *hmyv2Service) BlockNumber() uint64 { return 1234 }

func (s *hmyv2Service) GasPrice() uint64 { return 100000000000 }

func (s *hmyv2Service) GetTransactionCount(addr string, block string) (uint64, error) {
	if addr != address.ToBech32(account) || block != "pending" {
		return 0, errors.New("unexpected params")
	}
	return 9, nil
}

func (s *hmyv2Service) GetBlockByNumber(number uint64, args map[string]bool) (json.RawMessage, error) {
	s.blockCalls.Add(1)
	s.fullTx.Store(args["fullTx"])
	if number > 1234 {
		return nil, nil
	}
	return json.RawMessage(`{"number": ` + big.NewInt(int64(number)).String() + `, "timestamp": 1600000000, "difficulty": 0, "transactions": [], "stakingTransactions": []}`), nil
}

func (s *hmyv2Service) GetTransactionReceipt(hash common.Hash) (json.RawMessage, error) {
	if hash != s.minedHash {
		return nil, nil
	}
	return json.RawMessage(`{"transactionHash": "` + hash.Hex() + `", "blockNumber": 1200, "status": 1, "from": "` + account.Hex() + `"}`), nil
}

func (s *hmyv2Service) GetTransactionByHash(hash common.Hash) (json.RawMessage, error) {
	switch hash {
	case s.poolHash:
		return json.RawMessage(`{"hash": "` + hash.Hex() + `", "blockHash": "0x0000000000000000000000000000000000000000000000000000000000000000", "blockNumber": null}`), nil
	case s.minedHash:
		return json.RawMessage(`{"hash": "` + hash.Hex() + `", "blockHash": "0x00000000000000000000000000000000000000000000000000000000000000ff", "blockNumber": 1200}`), nil
	}
	return nil, nil
}

func (s *hmyv2Service) GetStakingTransactionByHash(hash common.Hash) (json.RawMessage, error) {
	return s.GetTransactionByHash(hash)
}

func (s *hmyv2Service) GetCXReceiptByHash(hash common.Hash) (json.RawMessage, error) {
	return json.RawMessage(`{"hash": "` + hash.Hex() + `", "blockNumber": 7, "shardID": 0, "toShardID": 1, "value": "5", "from": "` + account.Hex() + `", "to": "` + account.Hex() + `"}`), nil
}

func newTestProvider(t *testing.T) (*HarmonyProvider, *hmyService, *hmyv2Service) {
	t.Helper()
	v1 := &hmyService{}
	v2 := &hmyv2Service{
		minedHash: common.HexToHash("0xaa"),
		poolHash:  common.HexToHash("0xbb"),
	}
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("hmy", v1))
	require.NoError(t, server.RegisterName("hmyv2", v2))
	t.Cleanup(server.Stop)

	p := NewHarmonyProvider(rpc.DialInProc(server))
	t.Cleanup(p.Close)
	return p, v1, v2
}

func TestHarmonyProvider(t *testing.T) {
	p, v1, _ := newTestProvider(t)
	ctx := context.Background()

	id, err := p.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id.Int64())

	head, err := p.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), head)

	nonce, err := p.PendingNonceAt(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), nonce)

	price, err := p.SuggestGasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100000000000", price.String())

	to := account
	gas, err := p.EstimateGas(ctx, &types.TransactionRequest{To: &to, Value: big.NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)

	hash, err := p.SendRawTransaction(ctx, []byte{0xc0})
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256Hash([]byte{0xc0}), hash)
	assert.Equal(t, int32(1), v1.sent.Load())
}

func TestHarmonyProvider_Errors(t *testing.T) {
	p, _, _ := newTestProvider(t)
	ctx := context.Background()

	// 节点返回的业务错误是 rpc.Error, 钱包据此判断交易被拒绝
	_, err := p.SendRawTransaction(ctx, nil)
	var rpcErr rpc.Error
	assert.True(t, errors.As(err, &rpcErr))

	_, err = p.TransactionReceipt(ctx, common.HexToHash("0x01"))
	assert.ErrorIs(t, err, ethereum.NotFound)

	_, err = p.BlockByNumber(ctx, 99999)
	assert.ErrorIs(t, err, ethereum.NotFound)
}

func TestHarmonyProvider_Receipts(t *testing.T) {
	p, _, v2 := newTestProvider(t)
	ctx := context.Background()

	r, err := p.TransactionReceipt(ctx, v2.minedHash)
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
	assert.Equal(t, uint64(1200), r.BlockNumber)

	inPool, err := p.TransactionInPool(ctx, v2.poolHash, false)
	require.NoError(t, err)
	assert.True(t, inPool)

	inPool, err = p.TransactionInPool(ctx, v2.minedHash, true)
	require.NoError(t, err)
	assert.False(t, inPool)

	inPool, err = p.TransactionInPool(ctx, common.HexToHash("0x02"), false)
	require.NoError(t, err)
	assert.False(t, inPool)

	cx, err := p.CXReceipt(ctx, common.HexToHash("0xcc"))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), cx.ToShardID)
	assert.Equal(t, common.HexToHash("0xcc"), cx.TransactionHash)
}

func TestCached_BlockByNumber(t *testing.T) {
	p, _, v2 := newTestProvider(t)
	c := NewCached(p, cache.NewMultiLevelCache(cache.NewMemoryCache(time.Minute, time.Minute), nil), 0, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b, err := c.BlockByNumber(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), b.Number)
		assert.Equal(t, uint64(1600000000), b.Timestamp)
	}
	assert.Equal(t, int32(1), v2.blockCalls.Load())

	// 未找到的结果不缓存
	_, err := c.BlockByNumber(ctx, 99999)
	assert.ErrorIs(t, err, ethereum.NotFound)
	_, err = c.BlockByNumber(ctx, 99999)
	assert.ErrorIs(t, err, ethereum.NotFound)
	assert.Equal(t, int32(3), v2.blockCalls.Load())
}

func TestCached_BlockWithTransactions(t *testing.T) {
	p, _, v2 := newTestProvider(t)
	c := NewCached(p, cache.NewMultiLevelCache(cache.NewMemoryCache(time.Minute, time.Minute), nil), 0, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		b, err := c.BlockWithTransactionsByNumber(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), b.Number)
		assert.Empty(t, b.Transactions)
	}
	assert.Equal(t, int32(1), v2.blockCalls.Load())
	assert.True(t, v2.fullTx.Load())

	// 只带哈希的区块使用不同的缓存键
	_, err := c.BlockByNumber(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v2.blockCalls.Load())
	assert.False(t, v2.fullTx.Load())

	_, err = c.BlockWithTransactionsByNumber(ctx, 99999)
	assert.ErrorIs(t, err, ethereum.NotFound)
}
