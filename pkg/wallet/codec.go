package wallet

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/staking"
	"hmy-wallet/pkg/wallet/types"
)

var ErrInvalidSignature = errors.New("无效的签名")

// 普通交易签名载荷 (EIP-155): [nonce, gasPrice, gasLimit, shardID, toShardID, to, value, data, chainId, 0, 0]
type txSigningWire struct {
	Nonce     uint64
	GasPrice  *big.Int
	GasLimit  uint64
	ShardID   uint32
	ToShardID uint32
	To        *common.Address `rlp:"nil"`
	Value     *big.Int
	Data      []byte
	ChainID   *big.Int
	Zero1     uint
	Zero2     uint
}

// 未启用重放保护的旧格式, 只用于解析
type txHomesteadWire struct {
	Nonce     uint64
	GasPrice  *big.Int
	GasLimit  uint64
	ShardID   uint32
	ToShardID uint32
	To        *common.Address `rlp:"nil"`
	Value     *big.Int
	Data      []byte
}

type txSignedWire struct {
	Nonce     uint64
	GasPrice  *big.Int
	GasLimit  uint64
	ShardID   uint32
	ToShardID uint32
	To        *common.Address `rlp:"nil"`
	Value     *big.Int
	Data      []byte
	V, R, S   *big.Int
}

// 质押交易签名载荷: [directive, msg, nonce, gasPrice, gasLimit, chainId, 0, 0]
type stakingSigningWire struct {
	Directive uint8
	Msg       rlp.RawValue
	Nonce     uint64
	GasPrice  *big.Int
	GasLimit  uint64
	ChainID   *big.Int
	Zero1     uint
	Zero2     uint
}

type stakingSignedWire struct {
	Directive uint8
	Msg       rlp.RawValue
	Nonce     uint64
	GasPrice  *big.Int
	GasLimit  uint64
	V, R, S   *big.Int
}

func txSigningHash(tx *types.Transaction) (common.Hash, error) {
	payload, err := rlp.EncodeToBytes(&txSigningWire{
		Nonce:     tx.Nonce,
		GasPrice:  orZero(tx.GasPrice),
		GasLimit:  tx.GasLimit,
		ShardID:   tx.ShardID,
		ToShardID: tx.ToShardID,
		To:        tx.To,
		Value:     orZero(tx.Value),
		Data:      tx.Data,
		ChainID:   orZero(tx.ChainID),
	})
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(payload), nil
}

func stakingSigningHash(tx *types.StakingTransaction) (common.Hash, error) {
	msg, err := staking.EncodeMessage(tx.Msg)
	if err != nil {
		return common.Hash{}, err
	}
	payload, err := rlp.EncodeToBytes(&stakingSigningWire{
		Directive: uint8(tx.Directive),
		Msg:       msg,
		Nonce:     tx.Nonce,
		GasPrice:  orZero(tx.GasPrice),
		GasLimit:  tx.GasLimit,
		ChainID:   orZero(tx.ChainID),
	})
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(payload), nil
}

func encodeTransaction(tx *types.Transaction) ([]byte, error) {
	return rlp.EncodeToBytes(&txSignedWire{
		Nonce:     tx.Nonce,
		GasPrice:  orZero(tx.GasPrice),
		GasLimit:  tx.GasLimit,
		ShardID:   tx.ShardID,
		ToShardID: tx.ToShardID,
		To:        tx.To,
		Value:     orZero(tx.Value),
		Data:      tx.Data,
		V:         tx.V,
		R:         tx.R,
		S:         tx.S,
	})
}

func encodeStakingTransaction(tx *types.StakingTransaction) ([]byte, error) {
	msg, err := staking.EncodeMessage(tx.Msg)
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(&stakingSignedWire{
		Directive: uint8(tx.Directive),
		Msg:       msg,
		Nonce:     tx.Nonce,
		GasPrice:  orZero(tx.GasPrice),
		GasLimit:  tx.GasLimit,
		V:         tx.V,
		R:         tx.R,
		S:         tx.S,
	})
}

// ParseTransaction 解析已签名的普通交易, 恢复发送方并计算哈希。接受 0x 十六进制
func ParseTransaction(raw string) (*types.Transaction, error) {
	data, err := hexutil.Decode(raw)
	if err != nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "raw", "%w", err)
	}
	var w txSignedWire
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "raw", "解码交易失败: %w", err)
	}
	tx := &types.Transaction{
		Nonce:     w.Nonce,
		GasPrice:  w.GasPrice,
		GasLimit:  w.GasLimit,
		ShardID:   w.ShardID,
		ToShardID: w.ToShardID,
		To:        w.To,
		Value:     w.Value,
		Data:      w.Data,
		V:         w.V,
		R:         w.R,
		S:         w.S,
		Hash:      crypto.Keccak256Hash(data),
	}
	if len(tx.Data) == 0 {
		tx.Data = nil
	}

	recID, chainID, err := splitV(w.V)
	if err != nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "v", "%w", err)
	}
	tx.ChainID = chainID

	var sighash common.Hash
	if chainID == nil {
		payload, err := rlp.EncodeToBytes(&txHomesteadWire{w.Nonce, w.GasPrice, w.GasLimit, w.ShardID, w.ToShardID, w.To, w.Value, w.Data})
		if err != nil {
			return nil, err
		}
		sighash = crypto.Keccak256Hash(payload)
	} else if sighash, err = txSigningHash(tx); err != nil {
		return nil, err
	}

	if tx.From, err = recoverSender(sighash, recID, w.R, w.S); err != nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "signature", "%w", err)
	}
	return tx, nil
}

// ParseStakingTransaction 解析已签名的质押交易, 按指令解码消息
func ParseStakingTransaction(raw string) (*types.StakingTransaction, error) {
	data, err := hexutil.Decode(raw)
	if err != nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "raw", "%w", err)
	}
	var w stakingSignedWire
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "raw", "解码质押交易失败: %w", err)
	}
	d := staking.Directive(w.Directive)
	if !d.Valid() {
		return nil, errno.New(errno.ErrInvalidTransaction, "type", "未知的质押指令 %d", w.Directive)
	}
	msg, err := staking.DecodeMessage(d, w.Msg)
	if err != nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "msg", "%w", err)
	}

	recID, chainID, err := splitV(w.V)
	if err != nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "v", "%w", err)
	}
	if chainID == nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "v", "质押交易必须带链 ID")
	}

	tx := &types.StakingTransaction{
		Directive: d,
		Msg:       msg,
		Nonce:     w.Nonce,
		GasPrice:  w.GasPrice,
		GasLimit:  w.GasLimit,
		ChainID:   chainID,
		V:         w.V,
		R:         w.R,
		S:         w.S,
		Hash:      crypto.Keccak256Hash(data),
	}
	sighash, err := stakingSigningHash(tx)
	if err != nil {
		return nil, err
	}
	if tx.From, err = recoverSender(sighash, recID, w.R, w.S); err != nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "signature", "%w", err)
	}
	return tx, nil
}

// splitV 从 V 中拆出恢复 ID 与链 ID。27/28 为未启用重放保护的旧格式, 链 ID 为 nil
func splitV(v *big.Int) (byte, *big.Int, error) {
	if v == nil || v.Sign() <= 0 {
		return 0, nil, ErrInvalidSignature
	}
	if v.IsUint64() && (v.Uint64() == 27 || v.Uint64() == 28) {
		return byte(v.Uint64() - 27), nil, nil
	}
	if v.Cmp(big.NewInt(35)) < 0 {
		return 0, nil, fmt.Errorf("%w: v=%s", ErrInvalidSignature, v)
	}
	// v = recID + chainId*2 + 35
	rest := new(big.Int).Sub(v, big.NewInt(35))
	recID := byte(rest.Bit(0))
	chainID := rest.Rsh(rest, 1)
	if chainID.Sign() == 0 {
		return 0, nil, fmt.Errorf("%w: 链 ID 为 0", ErrInvalidSignature)
	}
	return recID, chainID, nil
}

func recoverSender(sighash common.Hash, recID byte, r, s *big.Int) (common.Address, error) {
	if r == nil || s == nil || !crypto.ValidateSignatureValues(recID, r, s, true) {
		return common.Address{}, ErrInvalidSignature
	}
	sig := make([]byte, crypto.SignatureLength)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])
	sig[64] = recID

	pub, err := crypto.Ecrecover(sighash[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	var addr common.Address
	copy(addr[:], crypto.Keccak256(pub[1:])[12:])
	return addr, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
