package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/staking"
	"hmy-wallet/pkg/wallet/types"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

var otherAddr = common.HexToAddress("0x3333333333333333333333333333333333333333")

func testKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	return key
}

func newTestWallet(t *testing.T, p *fakeProvider, opts ...Option) *Wallet {
	t.Helper()
	opts = append([]Option{WithPollInterval(10 * time.Millisecond)}, opts...)
	w, err := New(testKey(t), p, opts...)
	require.NoError(t, err)
	return w
}

func u64(v uint64) *uint64 { return &v }

func u32(v uint32) *uint32 { return &v }

func u8(v uint8) *uint8 { return &v }

func bigStr(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}

// stakingMessages 五种消息, 签名人都是钱包地址
func stakingMessages(t *testing.T, self common.Address) []staking.Message {
	var key staking.BLSPublicKey
	var sig staking.BLSSignature
	key[0], sig[0] = 0xaa, 0xbb
	rate := decimal.RequireFromString("0.12")
	inactive := false

	return []staking.Message{
		&staking.CreateValidator{
			ValidatorAddress: self,
			Description:      staking.Description{Name: "validator"},
			CommissionRates: staking.CommissionRate{
				Rate:          decimal.RequireFromString("0.1"),
				MaxRate:       decimal.RequireFromString("0.5"),
				MaxChangeRate: decimal.RequireFromString("0.01"),
			},
			MinSelfDelegation:  bigStr(t, "10000000000000000000000"),
			MaxTotalDelegation: bigStr(t, "100000000000000000000000000"),
			SlotPubKeys:        []staking.BLSPublicKey{key},
			SlotKeySigs:        []staking.BLSSignature{sig},
			Amount:             bigStr(t, "10000000000000000000000"),
		},
		&staking.EditValidator{
			ValidatorAddress:  self,
			CommissionRate:    &rate,
			MinSelfDelegation: bigStr(t, "20000000000000000000000"),
			Active:            &inactive,
		},
		&staking.Delegate{DelegatorAddress: self, ValidatorAddress: otherAddr, Amount: bigStr(t, "9007199254740993")},
		&staking.Undelegate{DelegatorAddress: self, ValidatorAddress: otherAddr, Amount: bigStr(t, "123456789012345678901234")},
		&staking.CollectRewards{DelegatorAddress: self},
	}
}

func checkedStaking(d staking.Directive, msg staking.Message) *types.StakingTransactionRequest {
	return &types.StakingTransactionRequest{
		Type:     d,
		Msg:      msg,
		Nonce:    u64(1),
		GasPrice: big.NewInt(1e9),
		GasLimit: u64(6_000_000),
		ChainID:  big.NewInt(2),
	}
}

func TestNew(t *testing.T) {
	_, err := New(nil, newFakeProvider())
	assert.ErrorIs(t, err, ErrNilKey)

	_, err = New(testKey(t), nil)
	assert.ErrorIs(t, err, ErrNilProvider)

	w := newTestWallet(t, newFakeProvider(), WithShard(3))
	assert.Equal(t, crypto.PubkeyToAddress(testKey(t).PublicKey), w.Address())
	assert.Equal(t, uint32(3), w.ShardID())
}

func TestNewWatchOnly(t *testing.T) {
	_, err := NewWatchOnly(otherAddr, nil)
	assert.ErrorIs(t, err, ErrNilProvider)

	w, err := NewWatchOnly(otherAddr, newFakeProvider())
	require.NoError(t, err)
	assert.True(t, w.WatchOnly())
	assert.Equal(t, otherAddr, w.Address())

	to := common.HexToAddress("0x4444444444444444444444444444444444444444")
	tx, err := w.Populate(context.Background(), &types.TransactionRequest{To: &to, Value: big.NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, otherAddr, *tx.From)

	_, err = w.SignTransaction(tx)
	assert.ErrorIs(t, err, ErrWatchOnly)
}

func TestPopulate(t *testing.T) {
	p := newFakeProvider()
	w := newTestWallet(t, p)

	to := otherAddr
	req := &types.TransactionRequest{
		To:        &to,
		Value:     big.NewInt(1000),
		ShardID:   u32(0),
		ToShardID: u32(1),
	}
	before := req.Clone()

	tx, err := w.Populate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, w.Address(), *tx.From)
	assert.Equal(t, uint64(7), *tx.Nonce)
	assert.Equal(t, 0, tx.GasPrice.Cmp(p.gasPrice))
	assert.Equal(t, uint64(21000), *tx.GasLimit)
	assert.Equal(t, int64(2), tx.ChainID.Int64())
	assert.Equal(t, uint32(0), *tx.ShardID)
	assert.Equal(t, uint32(1), *tx.ToShardID)

	// 输入不被修改, 输出与输入互不影响
	assert.Equal(t, before, req)
	tx.Value.SetInt64(1)
	assert.Equal(t, int64(1000), req.Value.Int64())
}

func TestPopulate_DefaultShard(t *testing.T) {
	w := newTestWallet(t, newFakeProvider(), WithShard(2))
	to := otherAddr

	tx, err := w.Populate(context.Background(), &types.TransactionRequest{To: &to})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), *tx.ShardID)
	assert.Equal(t, uint32(2), *tx.ToShardID)
}

// 只给出发送分片时, 目标分片跟随发送分片, 不回落到钱包所在分片
func TestPopulate_ToShardFollowsShard(t *testing.T) {
	w := newTestWallet(t, newFakeProvider(), WithShard(0))
	to := otherAddr

	tx, err := w.Populate(context.Background(), &types.TransactionRequest{To: &to, ShardID: u32(1)})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), *tx.ShardID)
	assert.Equal(t, uint32(1), *tx.ToShardID)
}

func TestPopulate_UnsupportedField(t *testing.T) {
	p := newFakeProvider()
	w := newTestWallet(t, p)

	tests := []struct {
		name  string
		req   *types.TransactionRequest
		field string
	}{
		{"type", &types.TransactionRequest{Type: u8(2)}, "type"},
		{"maxFeePerGas", &types.TransactionRequest{MaxFeePerGas: big.NewInt(1)}, "maxFeePerGas"},
		{"maxPriorityFeePerGas", &types.TransactionRequest{MaxPriorityFeePerGas: big.NewInt(1)}, "maxPriorityFeePerGas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Populate(context.Background(), tt.req)
			require.ErrorIs(t, err, errno.ErrUnsupportedField)

			var e *errno.Err
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.field, e.Field)
		})
	}
	// 在任何网络请求之前拒绝
	assert.Equal(t, 0, p.callCount())
}

func TestPopulate_ChainIDMismatch(t *testing.T) {
	w := newTestWallet(t, newFakeProvider())
	to := otherAddr

	_, err := w.Populate(context.Background(), &types.TransactionRequest{To: &to, ChainID: big.NewInt(1)})
	assert.ErrorIs(t, err, errno.ErrInvalidTransaction)
}

func TestPopulate_ProviderUnavailable(t *testing.T) {
	p := newFakeProvider()
	p.chainErr = errConnRefused
	w := newTestWallet(t, p)
	to := otherAddr

	_, err := w.Populate(context.Background(), &types.TransactionRequest{To: &to})
	assert.ErrorIs(t, err, errno.ErrProviderUnavailable)
	assert.ErrorIs(t, err, errConnRefused)

	_, err = w.PopulateStaking(context.Background(), types.NewStakingTransactionRequest(&staking.CollectRewards{DelegatorAddress: w.Address()}))
	assert.ErrorIs(t, err, errno.ErrProviderUnavailable)
}

func TestPopulate_EstimateGasFallback(t *testing.T) {
	p := newFakeProvider()
	p.estimateErr = &rpcError{code: -32000, msg: "method not found"}
	to := otherAddr

	_, err := newTestWallet(t, p).Populate(context.Background(), &types.TransactionRequest{To: &to})
	assert.ErrorIs(t, err, errno.ErrInvalidTransaction)

	tx, err := newTestWallet(t, p, WithDefaultGasLimit(50000)).Populate(context.Background(), &types.TransactionRequest{To: &to})
	require.NoError(t, err)
	assert.Equal(t, uint64(50000), *tx.GasLimit)
}

// 场景 C: 质押请求带 to 字段
func TestPopulateStaking_RejectsTo(t *testing.T) {
	p := newFakeProvider()
	w := newTestWallet(t, p)

	req := types.NewStakingTransactionRequest(&staking.CollectRewards{DelegatorAddress: w.Address()})
	to := otherAddr
	req.To = &to

	_, err := w.PopulateStaking(context.Background(), req)
	require.ErrorIs(t, err, errno.ErrUnsupportedField)

	var e *errno.Err
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "to", e.Field)
	assert.Equal(t, 0, p.callCount())
}

func TestPopulateStaking(t *testing.T) {
	w := newTestWallet(t, newFakeProvider())

	for _, msg := range stakingMessages(t, w.Address()) {
		t.Run(msg.Directive().String(), func(t *testing.T) {
			req := types.NewStakingTransactionRequest(msg)
			before := req.Clone()

			tx, err := w.PopulateStaking(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, uint64(7), *tx.Nonce)
			assert.Equal(t, int64(2), tx.ChainID.Int64())

			gas, err := staking.IntrinsicGas(msg)
			require.NoError(t, err)
			assert.Equal(t, gas, *tx.GasLimit)

			assert.Equal(t, before, req)
			assert.Nil(t, req.Nonce)
		})
	}
}

func TestCheck(t *testing.T) {
	w := newTestWallet(t, newFakeProvider())
	self, to := w.Address(), otherAddr

	valid := func() *types.TransactionRequest {
		return &types.TransactionRequest{
			From:      &self,
			To:        &to,
			Value:     big.NewInt(1),
			Nonce:     u64(0),
			GasPrice:  big.NewInt(1),
			GasLimit:  u64(21000),
			ChainID:   big.NewInt(2),
			ShardID:   u32(0),
			ToShardID: u32(1),
		}
	}

	tests := []struct {
		name   string
		mutate func(r *types.TransactionRequest)
		field  string
	}{
		{"缺少 nonce", func(r *types.TransactionRequest) { r.Nonce = nil }, "nonce"},
		{"缺少 gasPrice", func(r *types.TransactionRequest) { r.GasPrice = nil }, "gasPrice"},
		{"gasLimit 为 0", func(r *types.TransactionRequest) { r.GasLimit = u64(0) }, "gasLimit"},
		{"缺少 chainId", func(r *types.TransactionRequest) { r.ChainID = nil }, "chainId"},
		{"缺少 toShardID", func(r *types.TransactionRequest) { r.ToShardID = nil }, "toShardID"},
		{"负数金额", func(r *types.TransactionRequest) { r.Value = big.NewInt(-1) }, "value"},
		{"发送方不是钱包", func(r *types.TransactionRequest) { r.From = &to }, "from"},
		{"跨分片创建合约", func(r *types.TransactionRequest) { r.To = nil }, "to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)

			_, err := w.Check(req)
			require.ErrorIs(t, err, errno.ErrInvalidTransaction)

			var e *errno.Err
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.field, e.Field)
		})
	}

	t.Run("同分片合法", func(t *testing.T) {
		req := valid()
		req.ToShardID = u32(0)
		_, err := w.Check(req)
		assert.NoError(t, err)
	})
}

func TestCheck_Idempotent(t *testing.T) {
	w := newTestWallet(t, newFakeProvider())
	to := otherAddr

	populated, err := w.Populate(context.Background(), &types.TransactionRequest{To: &to})
	require.NoError(t, err)

	once, err := w.Check(populated)
	require.NoError(t, err)
	twice, err := w.Check(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	for _, msg := range stakingMessages(t, w.Address()) {
		once, err := w.CheckStaking(checkedStaking(msg.Directive(), msg))
		require.NoError(t, err)
		twice, err := w.CheckStaking(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

// 指令与消息类型的所有组合: 只有匹配的组合通过
func TestCheckStaking_DirectiveMatrix(t *testing.T) {
	w := newTestWallet(t, newFakeProvider())
	msgs := stakingMessages(t, w.Address())

	for _, d := range staking.Directives() {
		for _, msg := range msgs {
			_, err := w.CheckStaking(checkedStaking(d, msg))
			if d == msg.Directive() {
				assert.NoError(t, err, "%s/%s", d, msg.Directive())
			} else {
				assert.ErrorIs(t, err, errno.ErrInvalidTransaction, "%s/%s", d, msg.Directive())
			}
		}
	}

	_, err := w.CheckStaking(checkedStaking(staking.Directive(9), msgs[0]))
	assert.ErrorIs(t, err, errno.ErrInvalidTransaction)
}

func TestCheckStaking_Rules(t *testing.T) {
	w := newTestWallet(t, newFakeProvider())

	t.Run("签名人不是钱包", func(t *testing.T) {
		msg := &staking.CollectRewards{DelegatorAddress: otherAddr}
		_, err := w.CheckStaking(checkedStaking(msg.Directive(), msg))
		assert.ErrorIs(t, err, errno.ErrInvalidTransaction)
	})

	// 场景 A
	t.Run("两个公钥一个签名", func(t *testing.T) {
		msg := stakingMessages(t, w.Address())[0].(*staking.CreateValidator)
		var k2 staking.BLSPublicKey
		var s2 staking.BLSSignature
		k2[0], s2[0] = 0xcc, 0xdd
		msg.SlotPubKeys = append(msg.SlotPubKeys, k2)

		_, err := w.CheckStaking(checkedStaking(msg.Directive(), msg))
		assert.ErrorIs(t, err, errno.ErrInvalidTransaction)

		msg.SlotKeySigs = append(msg.SlotKeySigs, s2)
		_, err = w.CheckStaking(checkedStaking(msg.Directive(), msg))
		assert.NoError(t, err)
	})

	t.Run("添加公钥但没有签名", func(t *testing.T) {
		var k staking.BLSPublicKey
		k[0] = 1
		msg := &staking.EditValidator{ValidatorAddress: w.Address(), SlotKeyToAdd: &k}
		_, err := w.CheckStaking(checkedStaking(msg.Directive(), msg))
		assert.ErrorIs(t, err, errno.ErrInvalidTransaction)
	})

	t.Run("带 value", func(t *testing.T) {
		msg := &staking.CollectRewards{DelegatorAddress: w.Address()}
		req := checkedStaking(msg.Directive(), msg)
		req.Value = big.NewInt(1)
		_, err := w.CheckStaking(req)
		assert.ErrorIs(t, err, errno.ErrUnsupportedField)
	})
}

func TestSignParseRoundTrip(t *testing.T) {
	w := newTestWallet(t, newFakeProvider())
	self, to := w.Address(), otherAddr

	req := &types.TransactionRequest{
		From:      &self,
		To:        &to,
		Value:     bigStr(t, "340282366920938463463374607431768211455"),
		Data:      []byte{0xde, 0xad, 0x00, 0xbe, 0xef},
		Nonce:     u64(42),
		GasPrice:  big.NewInt(1e9),
		GasLimit:  u64(30000),
		ChainID:   big.NewInt(2),
		ShardID:   u32(0),
		ToShardID: u32(3),
	}
	raw, err := w.SignTransaction(req)
	require.NoError(t, err)

	tx, err := ParseTransaction(raw)
	require.NoError(t, err)
	assert.Equal(t, self, tx.From)
	assert.Equal(t, to, *tx.To)
	assert.Equal(t, 0, req.Value.Cmp(tx.Value))
	assert.Equal(t, req.Data, tx.Data)
	assert.Equal(t, uint64(42), tx.Nonce)
	assert.Equal(t, uint64(30000), tx.GasLimit)
	assert.Equal(t, int64(2), tx.ChainID.Int64())
	assert.Equal(t, uint32(0), tx.ShardID)
	assert.Equal(t, uint32(3), tx.ToShardID)

	// 确定性签名
	again, err := w.SignTransaction(req)
	require.NoError(t, err)
	assert.Equal(t, raw, again)

	for _, msg := range stakingMessages(t, self) {
		t.Run(msg.Directive().String(), func(t *testing.T) {
			raw, err := w.SignStakingTransaction(checkedStaking(msg.Directive(), msg))
			require.NoError(t, err)

			stx, err := ParseStakingTransaction(raw)
			require.NoError(t, err)
			assert.Equal(t, self, stx.From)
			assert.Equal(t, msg.Directive(), stx.Directive)
			assert.Equal(t, int64(2), stx.ChainID.Int64())

			want, err := staking.EncodeMessage(msg)
			require.NoError(t, err)
			got, err := staking.EncodeMessage(stx.Msg)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestSignTransaction_InvalidProducesNothing(t *testing.T) {
	w := newTestWallet(t, newFakeProvider())
	raw, err := w.SignTransaction(&types.TransactionRequest{})
	assert.ErrorIs(t, err, errno.ErrInvalidTransaction)
	assert.Empty(t, raw)
}

func TestParseTransaction_Invalid(t *testing.T) {
	_, err := ParseTransaction("0x1234")
	assert.ErrorIs(t, err, errno.ErrInvalidTransaction)

	_, err = ParseStakingTransaction("zz")
	assert.ErrorIs(t, err, errno.ErrInvalidTransaction)
}

// 场景 B: 跨分片交易, wait(1) 在节点报告 1 个确认后返回
func TestSendTransaction_CrossShardWait(t *testing.T) {
	p := newFakeProvider()
	p.pollHook = func(p *fakeProvider, hash common.Hash) {
		if p.polls == 3 {
			p.mine(hash, types.ReceiptStatusSuccessful)
		}
	}
	w := newTestWallet(t, p)
	to := otherAddr

	resp, err := w.SendTransaction(context.Background(), &types.TransactionRequest{
		To:        &to,
		Value:     big.NewInt(1),
		ShardID:   u32(0),
		ToShardID: u32(1),
	})
	require.NoError(t, err)
	assert.True(t, resp.IsCrossShard())
	assert.False(t, resp.Mined())
	require.Len(t, p.sent, 1)

	receipt, err := resp.Wait(context.Background(), 1, WithTimeout(5*time.Second))
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, resp.Hash, receipt.TransactionHash)
	assert.Equal(t, uint64(1), resp.Confirmations)
	require.NotNil(t, resp.BlockNumber)
	assert.Equal(t, uint64(101), *resp.BlockNumber)
	require.NotNil(t, resp.Timestamp)
	assert.Equal(t, uint64(1_700_000_202), *resp.Timestamp)
}

func TestSendStakingTransaction(t *testing.T) {
	p := newFakeProvider()
	w := newTestWallet(t, p)

	resp, err := w.SendStakingTransaction(context.Background(),
		types.NewStakingTransactionRequest(&staking.Delegate{DelegatorAddress: w.Address(), ValidatorAddress: otherAddr, Amount: big.NewInt(100)}))
	require.NoError(t, err)
	assert.Equal(t, staking.DirectiveDelegate, resp.Directive)
	assert.Equal(t, crypto.Keccak256Hash(p.sent[0]), resp.Hash)

	parsed, err := ParseStakingTransaction(resp.Raw)
	require.NoError(t, err)
	assert.Equal(t, resp.Hash, parsed.Hash)

	// 未打包时 wait(0) 直接返回 nil
	receipt, err := resp.Wait(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestSendTransaction_Rejected(t *testing.T) {
	p := newFakeProvider()
	p.sendErr = &rpcError{code: -32000, msg: "nonce too low"}
	w := newTestWallet(t, p)
	to := otherAddr

	_, err := w.SendTransaction(context.Background(), &types.TransactionRequest{To: &to})
	assert.ErrorIs(t, err, errno.ErrTransactionDropped)

	p.sendErr = errConnRefused
	_, err = w.SendTransaction(context.Background(), &types.TransactionRequest{To: &to})
	assert.ErrorIs(t, err, errno.ErrProviderUnavailable)
}

// 场景 D: wait(6) + 2 秒超时, 交易一直不打包
func TestWait_Timeout(t *testing.T) {
	p := newFakeProvider()
	w := newTestWallet(t, p)
	to := otherAddr

	resp, err := w.SendTransaction(context.Background(), &types.TransactionRequest{To: &to})
	require.NoError(t, err)

	start := time.Now()
	receipt, err := resp.Wait(context.Background(), 6, WithTimeout(2*time.Second))
	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, errno.ErrReceiptTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestWait_Dropped(t *testing.T) {
	p := newFakeProvider()
	p.pollHook = func(p *fakeProvider, hash common.Hash) {
		if p.polls == 2 {
			delete(p.pool, hash)
		}
	}
	w := newTestWallet(t, p)
	to := otherAddr

	resp, err := w.SendTransaction(context.Background(), &types.TransactionRequest{To: &to})
	require.NoError(t, err)

	_, err = resp.Wait(context.Background(), 1, WithTimeout(5*time.Second))
	assert.ErrorIs(t, err, errno.ErrTransactionDropped)
}

func TestWait_FailedReceipt(t *testing.T) {
	p := newFakeProvider()
	p.pollHook = func(p *fakeProvider, hash common.Hash) {
		if _, ok := p.receipts[hash]; !ok {
			p.mine(hash, types.ReceiptStatusFailed)
		}
	}
	w := newTestWallet(t, p)
	to := otherAddr

	resp, err := w.SendTransaction(context.Background(), &types.TransactionRequest{To: &to})
	require.NoError(t, err)

	receipt, err := resp.Wait(context.Background(), 1)
	assert.ErrorIs(t, err, errno.ErrTransactionDropped)
	require.NotNil(t, receipt)
	assert.False(t, receipt.Succeeded())
}

func TestWaitForHash(t *testing.T) {
	p := newFakeProvider()
	p.pollHook = func(p *fakeProvider, hash common.Hash) {
		if p.polls == 2 {
			p.mine(hash, types.ReceiptStatusSuccessful)
		}
	}
	w := newTestWallet(t, p)
	to := otherAddr

	sent, err := w.SendTransaction(context.Background(), &types.TransactionRequest{To: &to})
	require.NoError(t, err)

	// 只凭哈希恢复等待
	resp, receipt, err := w.WaitForHash(context.Background(), sent.Hash, false, 1, WithTimeout(5*time.Second))
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, sent.Hash, receipt.TransactionHash)
	assert.True(t, resp.Mined())
	assert.GreaterOrEqual(t, resp.Confirmations, uint64(1))
}

func TestWait_Canceled(t *testing.T) {
	w := newTestWallet(t, newFakeProvider())
	to := otherAddr

	resp, err := w.SendTransaction(context.Background(), &types.TransactionRequest{To: &to})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err = resp.Wait(ctx, 1)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, errno.ErrReceiptTimeout))
}

func TestWait_ConfirmationsMonotonic(t *testing.T) {
	p := newFakeProvider()
	p.pollHook = func(p *fakeProvider, hash common.Hash) {
		if _, ok := p.receipts[hash]; !ok {
			p.mine(hash, types.ReceiptStatusSuccessful)
			return
		}
		p.head++
	}
	w := newTestWallet(t, p)
	to := otherAddr

	resp, err := w.SendTransaction(context.Background(), &types.TransactionRequest{To: &to})
	require.NoError(t, err)

	_, err = resp.Wait(context.Background(), 3, WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, resp.Confirmations, uint64(3))

	// 更小的确认数不会让 Confirmations 回退
	seen := resp.Confirmations
	_, err = resp.Wait(context.Background(), 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, resp.Confirmations, seen)
}
