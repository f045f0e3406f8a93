package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/numeric"
	"hmy-wallet/pkg/staking"
)

// Transaction 已签名的普通交易
type Transaction struct {
	Nonce     uint64
	GasPrice  *big.Int
	GasLimit  uint64
	ShardID   uint32
	ToShardID uint32
	To        *common.Address // nil 表示创建合约
	Value     *big.Int
	Data      []byte
	ChainID   *big.Int

	V, R, S *big.Int

	Hash common.Hash
	From common.Address
}

// IsCrossShard 跨分片交易需要在目标分片上查询 CX 回执
func (tx *Transaction) IsCrossShard() bool {
	return tx.ShardID != tx.ToShardID
}

// StakingTransaction 已签名的质押交易, 没有 to/value/data
type StakingTransaction struct {
	Directive staking.Directive
	Msg       staking.Message
	Nonce     uint64
	GasPrice  *big.Int
	GasLimit  uint64
	ChainID   *big.Int

	V, R, S *big.Int

	Hash common.Hash
	From common.Address
}

// UnsignedTransaction 离线签名信封: 联网机器 populate 后导出, 冷钱包按 DerivationPath 选择私钥签名
type UnsignedTransaction struct {
	Plain   *TransactionRequest        `json:"plain,omitempty"`
	Staking *StakingTransactionRequest `json:"staking,omitempty"`

	// e.g., "m/44'/1023'/0'/0/0"
	DerivationPath string `json:"derivation_path"`
}

// SignedTransaction 签名结果, RawTx 可以直接广播
type SignedTransaction struct {
	TxHash  string `json:"tx_hash"`
	RawTx   string `json:"raw_tx"`
	Staking bool   `json:"staking,omitempty"`
}

// 节点 (hmyv2) 返回的交易格式
type transactionJSON struct {
	Hash      common.Hash    `json:"hash"`
	From      address.Text   `json:"from"`
	To        *address.Text  `json:"to"`
	Nonce     numeric.Uint64 `json:"nonce"`
	GasPrice  *numeric.Big   `json:"gasPrice"`
	GasLimit  numeric.Uint64 `json:"gas"`
	Value     *numeric.Big   `json:"value"`
	Input     hexutil.Bytes  `json:"input"`
	ShardID   uint32         `json:"shardID"`
	ToShardID uint32         `json:"toShardID"`
	ChainID   *numeric.Big   `json:"chainId,omitempty"`
	V         *numeric.Big   `json:"v"`
	R         *numeric.Big   `json:"r"`
	S         *numeric.Big   `json:"s"`
}

func (tx Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		Hash:      tx.Hash,
		From:      address.Text(tx.From),
		To:        (*address.Text)(tx.To),
		Nonce:     numeric.Uint64(tx.Nonce),
		GasPrice:  numeric.NewBig(tx.GasPrice),
		GasLimit:  numeric.Uint64(tx.GasLimit),
		Value:     numeric.NewBig(tx.Value),
		Input:     tx.Data,
		ShardID:   tx.ShardID,
		ToShardID: tx.ToShardID,
		ChainID:   numeric.NewBig(tx.ChainID),
		V:         numeric.NewBig(tx.V),
		R:         numeric.NewBig(tx.R),
		S:         numeric.NewBig(tx.S),
	})
}

func (tx *Transaction) UnmarshalJSON(data []byte) error {
	var aux transactionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*tx = Transaction{
		Hash:      aux.Hash,
		From:      common.Address(aux.From),
		To:        (*common.Address)(aux.To),
		Nonce:     uint64(aux.Nonce),
		GasPrice:  aux.GasPrice.Int(),
		GasLimit:  uint64(aux.GasLimit),
		Value:     aux.Value.Int(),
		Data:      aux.Input,
		ShardID:   aux.ShardID,
		ToShardID: aux.ToShardID,
		ChainID:   aux.ChainID.Int(),
		V:         aux.V.Int(),
		R:         aux.R.Int(),
		S:         aux.S.Int(),
	}
	if tx.To != nil && *tx.To == (common.Address{}) {
		tx.To = nil
	}
	return nil
}

type stakingTransactionJSON struct {
	Hash     common.Hash     `json:"hash"`
	From     address.Text    `json:"from"`
	Type     json.RawMessage `json:"type"`
	Msg      json.RawMessage `json:"msg"`
	Nonce    numeric.Uint64  `json:"nonce"`
	GasPrice *numeric.Big    `json:"gasPrice"`
	GasLimit numeric.Uint64  `json:"gas"`
	ChainID  *numeric.Big    `json:"chainId,omitempty"`
	V        *numeric.Big    `json:"v"`
	R        *numeric.Big    `json:"r"`
	S        *numeric.Big    `json:"s"`
}

func (tx StakingTransaction) MarshalJSON() ([]byte, error) {
	var msg json.RawMessage
	if tx.Msg != nil {
		raw, err := json.Marshal(tx.Msg)
		if err != nil {
			return nil, err
		}
		msg = raw
	}
	return json.Marshal(stakingTransactionJSON{
		Hash:     tx.Hash,
		From:     address.Text(tx.From),
		Type:     json.RawMessage(strconv.Itoa(int(tx.Directive))),
		Msg:      msg,
		Nonce:    numeric.Uint64(tx.Nonce),
		GasPrice: numeric.NewBig(tx.GasPrice),
		GasLimit: numeric.Uint64(tx.GasLimit),
		ChainID:  numeric.NewBig(tx.ChainID),
		V:        numeric.NewBig(tx.V),
		R:        numeric.NewBig(tx.R),
		S:        numeric.NewBig(tx.S),
	})
}

// UnmarshalJSON type 既可能是数字也可能是名称 (节点返回 "Delegate" 这种写法)
func (tx *StakingTransaction) UnmarshalJSON(data []byte) error {
	var aux stakingTransactionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d, err := parseDirectiveJSON(aux.Type)
	if err != nil {
		return err
	}
	*tx = StakingTransaction{
		Directive: d,
		Hash:      aux.Hash,
		From:      common.Address(aux.From),
		Nonce:     uint64(aux.Nonce),
		GasPrice:  aux.GasPrice.Int(),
		GasLimit:  uint64(aux.GasLimit),
		ChainID:   aux.ChainID.Int(),
		V:         aux.V.Int(),
		R:         aux.R.Int(),
		S:         aux.S.Int(),
	}
	if len(aux.Msg) > 0 && string(aux.Msg) != "null" {
		msg, err := staking.DecodeMessageJSON(d, aux.Msg)
		if err != nil {
			return err
		}
		tx.Msg = msg
	}
	return nil
}

func parseDirectiveJSON(raw json.RawMessage) (staking.Directive, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return staking.ParseDirective(name)
	}
	var n uint8
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("无效的质押指令 %s", raw)
	}
	d := staking.Directive(n)
	if !d.Valid() {
		return 0, fmt.Errorf("未知的质押指令 %d", n)
	}
	return d, nil
}
