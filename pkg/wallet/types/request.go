package types

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/numeric"
	"hmy-wallet/pkg/staking"
)

// TransactionRequest 普通交易请求, 所有字段可选, 由 Wallet.Populate 补全。
// Type/AccessList/MaxFeePerGas/MaxPriorityFeePerGas 链上不支持, 出现即报 UnsupportedField。
type TransactionRequest struct {
	From      *common.Address
	To        *common.Address // nil 表示创建合约
	Value     *big.Int
	Data      []byte
	Nonce     *uint64
	GasPrice  *big.Int
	GasLimit  *uint64
	ChainID   *big.Int
	ShardID   *uint32
	ToShardID *uint32

	Type                 *uint8
	AccessList           ethtypes.AccessList
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// Clone 深拷贝, populate/check 都在副本上工作
func (r *TransactionRequest) Clone() *TransactionRequest {
	if r == nil {
		return nil
	}
	return &TransactionRequest{
		From:                 copyAddress(r.From),
		To:                   copyAddress(r.To),
		Value:                copyBig(r.Value),
		Data:                 copyBytes(r.Data),
		Nonce:                copyUint64(r.Nonce),
		GasPrice:             copyBig(r.GasPrice),
		GasLimit:             copyUint64(r.GasLimit),
		ChainID:              copyBig(r.ChainID),
		ShardID:              copyUint32(r.ShardID),
		ToShardID:            copyUint32(r.ToShardID),
		Type:                 copyUint8(r.Type),
		AccessList:           copyAccessList(r.AccessList),
		MaxFeePerGas:         copyBig(r.MaxFeePerGas),
		MaxPriorityFeePerGas: copyBig(r.MaxPriorityFeePerGas),
	}
}

// UnsupportedFields 返回请求中链上不支持的字段名
func (r *TransactionRequest) UnsupportedFields() []string {
	var fields []string
	if r.Type != nil && *r.Type != 0 {
		fields = append(fields, "type")
	}
	if r.AccessList != nil {
		fields = append(fields, "accessList")
	}
	if r.MaxFeePerGas != nil {
		fields = append(fields, "maxFeePerGas")
	}
	if r.MaxPriorityFeePerGas != nil {
		fields = append(fields, "maxPriorityFeePerGas")
	}
	return fields
}

// StakingTransactionRequest 质押交易请求。
// To/Value/Data/ShardID/ToShardID 不属于质押交易, 只为了让通用载荷解码后能被拒绝。
type StakingTransactionRequest struct {
	Type     staking.Directive
	Msg      staking.Message
	Nonce    *uint64
	GasPrice *big.Int
	GasLimit *uint64
	ChainID  *big.Int

	To        *common.Address
	Value     *big.Int
	Data      []byte
	ShardID   *uint32
	ToShardID *uint32
}

// NewStakingTransactionRequest 从消息推导指令, 保证二者一致
func NewStakingTransactionRequest(msg staking.Message) *StakingTransactionRequest {
	return &StakingTransactionRequest{Type: msg.Directive(), Msg: msg}
}

// Clone 深拷贝请求, 包括消息本身
func (r *StakingTransactionRequest) Clone() *StakingTransactionRequest {
	if r == nil {
		return nil
	}
	return &StakingTransactionRequest{
		Type:      r.Type,
		Msg:       staking.Clone(r.Msg),
		Nonce:     copyUint64(r.Nonce),
		GasPrice:  copyBig(r.GasPrice),
		GasLimit:  copyUint64(r.GasLimit),
		ChainID:   copyBig(r.ChainID),
		To:        copyAddress(r.To),
		Value:     copyBig(r.Value),
		Data:      copyBytes(r.Data),
		ShardID:   copyUint32(r.ShardID),
		ToShardID: copyUint32(r.ToShardID),
	}
}

// UnsupportedFields 返回质押请求中不允许出现的字段名
func (r *StakingTransactionRequest) UnsupportedFields() []string {
	var fields []string
	if r.To != nil {
		fields = append(fields, "to")
	}
	if r.Value != nil {
		fields = append(fields, "value")
	}
	if r.Data != nil {
		fields = append(fields, "data")
	}
	if r.ShardID != nil {
		fields = append(fields, "shardID")
	}
	if r.ToShardID != nil {
		fields = append(fields, "toShardID")
	}
	return fields
}

type transactionRequestJSON struct {
	From                 *address.Text       `json:"from,omitempty"`
	To                   *address.Text       `json:"to,omitempty"`
	Value                *numeric.Big        `json:"value,omitempty"`
	Data                 *hexutil.Bytes      `json:"data,omitempty"`
	Nonce                *numeric.Uint64     `json:"nonce,omitempty"`
	GasPrice             *numeric.Big        `json:"gasPrice,omitempty"`
	GasLimit             *numeric.Uint64     `json:"gasLimit,omitempty"`
	ChainID              *numeric.Big        `json:"chainId,omitempty"`
	ShardID              *uint32             `json:"shardID,omitempty"`
	ToShardID            *uint32             `json:"toShardID,omitempty"`
	Type                 *uint8              `json:"type,omitempty"`
	AccessList           ethtypes.AccessList `json:"accessList,omitempty"`
	MaxFeePerGas         *numeric.Big        `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *numeric.Big        `json:"maxPriorityFeePerGas,omitempty"`
}

func (r TransactionRequest) MarshalJSON() ([]byte, error) {
	aux := transactionRequestJSON{
		From:                 (*address.Text)(r.From),
		To:                   (*address.Text)(r.To),
		Value:                numeric.NewBig(r.Value),
		Nonce:                numeric.NewUint64(r.Nonce),
		GasPrice:             numeric.NewBig(r.GasPrice),
		GasLimit:             numeric.NewUint64(r.GasLimit),
		ChainID:              numeric.NewBig(r.ChainID),
		ShardID:              r.ShardID,
		ToShardID:            r.ToShardID,
		Type:                 r.Type,
		AccessList:           r.AccessList,
		MaxFeePerGas:         numeric.NewBig(r.MaxFeePerGas),
		MaxPriorityFeePerGas: numeric.NewBig(r.MaxPriorityFeePerGas),
	}
	if r.Data != nil {
		data := hexutil.Bytes(r.Data)
		aux.Data = &data
	}
	return json.Marshal(aux)
}

func (r *TransactionRequest) UnmarshalJSON(data []byte) error {
	var aux transactionRequestJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = TransactionRequest{
		From:                 (*common.Address)(aux.From),
		To:                   (*common.Address)(aux.To),
		Value:                aux.Value.Int(),
		Nonce:                aux.Nonce.Ptr(),
		GasPrice:             aux.GasPrice.Int(),
		GasLimit:             aux.GasLimit.Ptr(),
		ChainID:              aux.ChainID.Int(),
		ShardID:              aux.ShardID,
		ToShardID:            aux.ToShardID,
		Type:                 aux.Type,
		AccessList:           aux.AccessList,
		MaxFeePerGas:         aux.MaxFeePerGas.Int(),
		MaxPriorityFeePerGas: aux.MaxPriorityFeePerGas.Int(),
	}
	if aux.Data != nil {
		r.Data = []byte(*aux.Data)
	}
	return nil
}

type stakingRequestJSON struct {
	Type      staking.Directive `json:"type"`
	Msg       json.RawMessage   `json:"msg"`
	Nonce     *numeric.Uint64   `json:"nonce,omitempty"`
	GasPrice  *numeric.Big      `json:"gasPrice,omitempty"`
	GasLimit  *numeric.Uint64   `json:"gasLimit,omitempty"`
	ChainID   *numeric.Big      `json:"chainId,omitempty"`
	To        *address.Text     `json:"to,omitempty"`
	Value     *numeric.Big      `json:"value,omitempty"`
	Data      *hexutil.Bytes    `json:"data,omitempty"`
	ShardID   *uint32           `json:"shardID,omitempty"`
	ToShardID *uint32           `json:"toShardID,omitempty"`
}

func (r StakingTransactionRequest) MarshalJSON() ([]byte, error) {
	var msg json.RawMessage
	if r.Msg != nil {
		raw, err := json.Marshal(r.Msg)
		if err != nil {
			return nil, err
		}
		msg = raw
	}
	aux := stakingRequestJSON{
		Type:      r.Type,
		Msg:       msg,
		Nonce:     numeric.NewUint64(r.Nonce),
		GasPrice:  numeric.NewBig(r.GasPrice),
		GasLimit:  numeric.NewUint64(r.GasLimit),
		ChainID:   numeric.NewBig(r.ChainID),
		To:        (*address.Text)(r.To),
		Value:     numeric.NewBig(r.Value),
		ShardID:   r.ShardID,
		ToShardID: r.ToShardID,
	}
	if r.Data != nil {
		data := hexutil.Bytes(r.Data)
		aux.Data = &data
	}
	return json.Marshal(aux)
}

// UnmarshalJSON 先读 type, 再按指令解码 msg
func (r *StakingTransactionRequest) UnmarshalJSON(data []byte) error {
	var aux stakingRequestJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if !aux.Type.Valid() {
		return fmt.Errorf("未知的质押指令 %d", uint8(aux.Type))
	}
	*r = StakingTransactionRequest{
		Type:      aux.Type,
		Nonce:     aux.Nonce.Ptr(),
		GasPrice:  aux.GasPrice.Int(),
		GasLimit:  aux.GasLimit.Ptr(),
		ChainID:   aux.ChainID.Int(),
		To:        (*common.Address)(aux.To),
		Value:     aux.Value.Int(),
		ShardID:   aux.ShardID,
		ToShardID: aux.ToShardID,
	}
	if aux.Data != nil {
		r.Data = []byte(*aux.Data)
	}
	if len(aux.Msg) > 0 && string(aux.Msg) != "null" {
		msg, err := staking.DecodeMessageJSON(aux.Type, aux.Msg)
		if err != nil {
			return err
		}
		r.Msg = msg
	}
	return nil
}

func copyAddress(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

func copyUint64(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func copyUint32(v *uint32) *uint32 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func copyUint8(v *uint8) *uint8 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func copyAccessList(l ethtypes.AccessList) ethtypes.AccessList {
	if l == nil {
		return nil
	}
	cp := make(ethtypes.AccessList, len(l))
	for i, t := range l {
		cp[i] = ethtypes.AccessTuple{
			Address:     t.Address,
			StorageKeys: append([]common.Hash{}, t.StorageKeys...),
		}
	}
	return cp
}
