package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hmy-wallet/internal/handler/response"
	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/validator"
	"hmy-wallet/pkg/wallet"
	"hmy-wallet/pkg/wallet/types"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

// fakeChain 发送即打包, 同时实现 wallet.Provider 与 ChainReader
type fakeChain struct {
	mu       sync.Mutex
	head     uint64
	down     bool
	receipts map[common.Hash]*types.TransactionReceipt
	cx       map[common.Hash]*types.CXTransactionReceipt
	mined    map[uint64][]types.TransactionResult
}

var errDown = errors.New("connection refused")

func newFakeChain() *fakeChain {
	return &fakeChain{
		head:     100,
		receipts: make(map[common.Hash]*types.TransactionReceipt),
		cx:       make(map[common.Hash]*types.CXTransactionReceipt),
		mined:    make(map[uint64][]types.TransactionResult),
	}
}

func (c *fakeChain) ChainID(context.Context) (*big.Int, error) { return big.NewInt(2), nil }

func (c *fakeChain) BlockNumber(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head, nil
}

func (c *fakeChain) BlockByNumber(_ context.Context, number uint64) (*types.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return nil, errDown
	}
	if number > c.head {
		return nil, ethereum.NotFound
	}
	return &types.Block{BlockHeader: types.BlockHeader{Number: number, Timestamp: 1_700_000_000}}, nil
}

func (c *fakeChain) BlockWithTransactionsByNumber(ctx context.Context, number uint64) (*types.BlockWithTransactions, error) {
	block, err := c.BlockByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return &types.BlockWithTransactions{BlockHeader: block.BlockHeader, Transactions: c.mined[number]}, nil
}

func (c *fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) { return 0, nil }

func (c *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) { return big.NewInt(1e9), nil }

func (c *fakeChain) EstimateGas(context.Context, *types.TransactionRequest) (uint64, error) {
	return 21000, nil
}

func (c *fakeChain) SendRawTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	tx, err := wallet.ParseTransaction(hexutil.Encode(raw))
	if err != nil {
		return common.Hash{}, err
	}
	hash := c.mine(raw)
	c.mu.Lock()
	defer c.mu.Unlock()
	number := c.head
	c.mined[number] = append(c.mined[number], types.TransactionResult{
		Transaction: *tx,
		Response:    types.Response{BlockNumber: &number},
	})
	return hash, nil
}

func (c *fakeChain) SendRawStakingTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	return c.mine(raw), nil
}

func (c *fakeChain) mine(raw []byte) common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	hash := crypto.Keccak256Hash(raw)
	c.head++
	c.receipts[hash] = &types.TransactionReceipt{
		TransactionHash: hash,
		BlockHash:       common.BigToHash(new(big.Int).SetUint64(c.head)),
		BlockNumber:     c.head,
		Status:          types.ReceiptStatusSuccessful,
	}
	return hash
}

func (c *fakeChain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.TransactionReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.receipts[hash]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, ethereum.NotFound
}

func (c *fakeChain) CXReceipt(_ context.Context, hash common.Hash) (*types.CXTransactionReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.cx[hash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (c *fakeChain) TransactionInPool(context.Context, common.Hash, bool) (bool, error) {
	return true, nil
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func setup(t *testing.T, signing bool) (*gin.Engine, *fakeChain, *wallet.Wallet) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Init()

	chain := newFakeChain()
	var w *wallet.Wallet
	if signing {
		key, err := crypto.HexToECDSA(testKeyHex)
		require.NoError(t, err)
		w, err = wallet.New(key, chain)
		require.NoError(t, err)
	}
	h := NewWalletHandler(w, chain, 0)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/transactions", h.SendTransaction)
	api.POST("/transactions/decode", h.DecodeTransaction)
	api.GET("/transactions/:hash/receipt", h.GetReceipt)
	api.POST("/staking", h.SendStakingTransaction)
	api.GET("/cx-receipts/:hash", h.GetCXReceipt)
	api.GET("/blocks/:number", h.GetBlock)
	return r, chain, w
}

func do(t *testing.T, r *gin.Engine, method, path, body string) envelope {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSendTransaction(t *testing.T) {
	r, chain, _ := setup(t, true)
	to := address.ToBech32(common.HexToAddress("0x3333333333333333333333333333333333333333"))

	resp := do(t, r, http.MethodPost, "/api/v1/transactions",
		`{"transaction":{"to":"`+to+`","value":"1000"},"confirmations":1}`)
	require.Equal(t, errno.OK.Code, resp.Code, resp.Msg)

	var data struct {
		Transaction struct {
			Hash common.Hash `json:"hash"`
			Raw  string      `json:"raw"`
		} `json:"transaction"`
		Receipt *struct {
			TransactionHash common.Hash `json:"transactionHash"`
		} `json:"receipt"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.NotEqual(t, common.Hash{}, data.Transaction.Hash)
	assert.True(t, strings.HasPrefix(data.Transaction.Raw, "0x"))
	require.NotNil(t, data.Receipt)
	assert.Equal(t, data.Transaction.Hash, data.Receipt.TransactionHash)
	assert.Len(t, chain.receipts, 1)
}

func TestSendTransaction_NoWait(t *testing.T) {
	r, _, _ := setup(t, true)
	resp := do(t, r, http.MethodPost, "/api/v1/transactions",
		`{"transaction":{"to":"0x3333333333333333333333333333333333333333","value":"1"}}`)
	require.Equal(t, errno.OK.Code, resp.Code, resp.Msg)
	assert.Contains(t, string(resp.Data), `"receipt":null`)
}

func TestSendTransaction_UnsupportedField(t *testing.T) {
	r, chain, _ := setup(t, true)
	resp := do(t, r, http.MethodPost, "/api/v1/transactions",
		`{"transaction":{"to":"0x3333333333333333333333333333333333333333","maxFeePerGas":"1"}}`)
	assert.Equal(t, errno.ErrUnsupportedField.Code, resp.Code)
	assert.Empty(t, chain.receipts)
}

func TestSendTransaction_BindError(t *testing.T) {
	r, _, _ := setup(t, true)
	resp := do(t, r, http.MethodPost, "/api/v1/transactions", `{"confirmations":1}`)
	assert.Equal(t, errno.ErrBind.Code, resp.Code)

	resp = do(t, r, http.MethodPost, "/api/v1/transactions", `{"transaction":{},"confirmations":100}`)
	assert.Equal(t, errno.ErrBind.Code, resp.Code)
}

func TestSendTransaction_ReadOnly(t *testing.T) {
	r, _, _ := setup(t, false)
	resp := do(t, r, http.MethodPost, "/api/v1/transactions",
		`{"transaction":{"to":"0x3333333333333333333333333333333333333333"}}`)
	assert.Equal(t, errno.ErrNoSigner.Code, resp.Code)
}

func TestSendStakingTransaction(t *testing.T) {
	r, _, w := setup(t, true)
	self := address.ToBech32(w.Address())

	resp := do(t, r, http.MethodPost, "/api/v1/staking",
		`{"staking":{"type":4,"msg":{"delegatorAddress":"`+self+`"}},"confirmations":1}`)
	require.Equal(t, errno.OK.Code, resp.Code, resp.Msg)
	assert.Contains(t, string(resp.Data), `"receipt":{`)

	// 签名人不是钱包本身
	other := address.ToBech32(common.HexToAddress("0x3333333333333333333333333333333333333333"))
	resp = do(t, r, http.MethodPost, "/api/v1/staking",
		`{"staking":{"type":4,"msg":{"delegatorAddress":"`+other+`"}}}`)
	assert.Equal(t, errno.ErrInvalidTransaction.Code, resp.Code)
}

func TestDecodeTransaction(t *testing.T) {
	r, _, w := setup(t, true)
	to := common.HexToAddress("0x3333333333333333333333333333333333333333")
	nonce, gas, shard := uint64(1), uint64(21000), uint32(0)
	from := w.Address()
	raw, err := w.SignTransaction(&types.TransactionRequest{
		From: &from, To: &to, Value: big.NewInt(5), Nonce: &nonce, GasPrice: big.NewInt(1e9),
		GasLimit: &gas, ChainID: big.NewInt(2), ShardID: &shard, ToShardID: &shard,
	})
	require.NoError(t, err)

	resp := do(t, r, http.MethodPost, "/api/v1/transactions/decode", `{"raw":"`+raw+`"}`)
	require.Equal(t, errno.OK.Code, resp.Code, resp.Msg)
	var tx types.Transaction
	require.NoError(t, json.Unmarshal(resp.Data, &tx))
	assert.Equal(t, from, tx.From)
	assert.Equal(t, int64(5), tx.Value.Int64())

	resp = do(t, r, http.MethodPost, "/api/v1/transactions/decode", `{"raw":"0xdeadbeef"}`)
	assert.Equal(t, errno.ErrInvalidTransaction.Code, resp.Code)

	resp = do(t, r, http.MethodPost, "/api/v1/transactions/decode", `{"raw":"deadbeef"}`)
	assert.Equal(t, errno.ErrBind.Code, resp.Code)
}

func TestGetReceipt(t *testing.T) {
	r, chain, _ := setup(t, true)
	hash := chain.mine([]byte{1, 2, 3})

	resp := do(t, r, http.MethodGet, "/api/v1/transactions/"+hash.Hex()+"/receipt", "")
	require.Equal(t, errno.OK.Code, resp.Code, resp.Msg)
	var receipt types.TransactionReceipt
	require.NoError(t, json.Unmarshal(resp.Data, &receipt))
	assert.Equal(t, hash, receipt.TransactionHash)

	missingHash := common.HexToHash("0x01").Hex()
	resp = do(t, r, http.MethodGet, "/api/v1/transactions/"+missingHash+"/receipt", "")
	assert.Equal(t, errno.ErrNotFound.Code, resp.Code)

	resp = do(t, r, http.MethodGet, "/api/v1/transactions/0x1234/receipt", "")
	assert.Equal(t, errno.ErrBind.Code, resp.Code)
}

func TestGetCXReceipt(t *testing.T) {
	r, chain, _ := setup(t, false)
	hash := common.HexToHash("0xabc")
	chain.cx[hash] = &types.CXTransactionReceipt{TransactionHash: hash, ShardID: 0, ToShardID: 1, Value: big.NewInt(7)}

	resp := do(t, r, http.MethodGet, "/api/v1/cx-receipts/"+hash.Hex(), "")
	require.Equal(t, errno.OK.Code, resp.Code, resp.Msg)
	var cx types.CXTransactionReceipt
	require.NoError(t, json.Unmarshal(resp.Data, &cx))
	assert.Equal(t, uint32(1), cx.ToShardID)
	assert.Equal(t, int64(7), cx.Value.Int64())
}

func TestGetBlock(t *testing.T) {
	r, chain, _ := setup(t, false)

	resp := do(t, r, http.MethodGet, "/api/v1/blocks/42", "")
	require.Equal(t, errno.OK.Code, resp.Code, resp.Msg)
	var block types.Block
	require.NoError(t, json.Unmarshal(resp.Data, &block))
	assert.Equal(t, uint64(42), block.Number)

	resp = do(t, r, http.MethodGet, "/api/v1/blocks/1000", "")
	assert.Equal(t, errno.ErrNotFound.Code, resp.Code)

	resp = do(t, r, http.MethodGet, "/api/v1/blocks/abc", "")
	assert.Equal(t, errno.ErrBind.Code, resp.Code)

	chain.down = true
	resp = do(t, r, http.MethodGet, "/api/v1/blocks/1", "")
	assert.Equal(t, errno.ErrProviderUnavailable.Code, resp.Code)
	resp = do(t, r, http.MethodGet, "/api/v1/blocks/1?full=true", "")
	assert.Equal(t, errno.ErrProviderUnavailable.Code, resp.Code)
}

func TestGetBlock_Full(t *testing.T) {
	r, chain, w := setup(t, true)
	to := address.ToBech32(common.HexToAddress("0x3333333333333333333333333333333333333333"))

	resp := do(t, r, http.MethodPost, "/api/v1/transactions", `{"transaction":{"to":"`+to+`","value":"1000"}}`)
	require.Equal(t, errno.OK.Code, resp.Code, resp.Msg)
	var sent struct {
		Transaction struct {
			Hash common.Hash `json:"hash"`
		} `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &sent))
	number := chain.head

	resp = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/blocks/%d?full=true", number), "")
	require.Equal(t, errno.OK.Code, resp.Code, resp.Msg)
	var full types.BlockWithTransactions
	require.NoError(t, json.Unmarshal(resp.Data, &full))
	assert.Equal(t, number, full.Number)
	require.Len(t, full.Transactions, 1)
	assert.Equal(t, sent.Transaction.Hash, full.Transactions[0].Hash)
	assert.Equal(t, w.Address(), full.Transactions[0].From)

	// 不带 full 时只有哈希
	resp = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/blocks/%d", number), "")
	var hashes map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &hashes))
	var ids []common.Hash
	assert.NoError(t, json.Unmarshal(hashes["transactions"], &ids))

	resp = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/blocks/%d?full=maybe", number), "")
	assert.Equal(t, errno.ErrBind.Code, resp.Code)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	chain := newFakeChain()
	w, err := wallet.New(key, chain)
	require.NoError(t, err)

	for _, tc := range []struct {
		name   string
		wallet *wallet.Wallet
		mode   string
	}{
		{"signing", w, "signing"},
		{"read-only", nil, "read-only"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewWalletHandler(tc.wallet, chain, 0).Health)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			var resp response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, errno.OK.Code, resp.Code)

			data := resp.Data.(map[string]interface{})
			assert.Equal(t, "UP", data["status"])
			assert.Equal(t, tc.mode, data["mode"])
			if tc.wallet != nil {
				assert.Equal(t, address.ToBech32(w.Address()), data["signer"])
			} else {
				assert.NotContains(t, data, "signer")
			}
		})
	}
}
