package types

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/numeric"
)

const (
	ReceiptStatusFailed     uint64 = 0
	ReceiptStatusSuccessful uint64 = 1
)

// TransactionReceipt 交易回执。跨分片交易在源分片上的回执只代表转出成功
type TransactionReceipt struct {
	TransactionHash   common.Hash
	BlockHash         common.Hash
	BlockNumber       uint64
	TransactionIndex  uint64
	From              common.Address
	To                *common.Address
	ShardID           uint32
	ToShardID         uint32
	GasUsed           uint64
	CumulativeGasUsed uint64
	ContractAddress   *common.Address
	Status            uint64
	Logs              json.RawMessage
}

func (r *TransactionReceipt) Succeeded() bool {
	return r.Status == ReceiptStatusSuccessful
}

type receiptJSON struct {
	TransactionHash   common.Hash     `json:"transactionHash"`
	BlockHash         common.Hash     `json:"blockHash"`
	BlockNumber       numeric.Uint64  `json:"blockNumber"`
	TransactionIndex  numeric.Uint64  `json:"transactionIndex"`
	From              address.Text    `json:"from"`
	To                *address.Text   `json:"to,omitempty"`
	ShardID           uint32          `json:"shardID"`
	ToShardID         uint32          `json:"toShardID"`
	GasUsed           numeric.Uint64  `json:"gasUsed"`
	CumulativeGasUsed numeric.Uint64  `json:"cumulativeGasUsed"`
	ContractAddress   *address.Text   `json:"contractAddress,omitempty"`
	Status            numeric.Uint64  `json:"status"`
	Logs              json.RawMessage `json:"logs,omitempty"`
}

func (r TransactionReceipt) MarshalJSON() ([]byte, error) {
	return json.Marshal(receiptJSON{
		TransactionHash:   r.TransactionHash,
		BlockHash:         r.BlockHash,
		BlockNumber:       numeric.Uint64(r.BlockNumber),
		TransactionIndex:  numeric.Uint64(r.TransactionIndex),
		From:              address.Text(r.From),
		To:                (*address.Text)(r.To),
		ShardID:           r.ShardID,
		ToShardID:         r.ToShardID,
		GasUsed:           numeric.Uint64(r.GasUsed),
		CumulativeGasUsed: numeric.Uint64(r.CumulativeGasUsed),
		ContractAddress:   (*address.Text)(r.ContractAddress),
		Status:            numeric.Uint64(r.Status),
		Logs:              r.Logs,
	})
}

func (r *TransactionReceipt) UnmarshalJSON(data []byte) error {
	var aux receiptJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = TransactionReceipt{
		TransactionHash:   aux.TransactionHash,
		BlockHash:         aux.BlockHash,
		BlockNumber:       uint64(aux.BlockNumber),
		TransactionIndex:  uint64(aux.TransactionIndex),
		From:              common.Address(aux.From),
		To:                nonZero(aux.To),
		ShardID:           aux.ShardID,
		ToShardID:         aux.ToShardID,
		GasUsed:           uint64(aux.GasUsed),
		CumulativeGasUsed: uint64(aux.CumulativeGasUsed),
		ContractAddress:   nonZero(aux.ContractAddress),
		Status:            uint64(aux.Status),
		Logs:              aux.Logs,
	}
	return nil
}

// CXTransactionReceipt 跨分片转账在目标分片上的回执
type CXTransactionReceipt struct {
	BlockHash       common.Hash
	BlockNumber     uint64
	TransactionHash common.Hash
	To              common.Address
	From            common.Address
	ShardID         uint32
	ToShardID       uint32
	Value           *big.Int
}

type cxReceiptJSON struct {
	BlockHash       common.Hash    `json:"blockHash"`
	BlockNumber     numeric.Uint64 `json:"blockNumber"`
	TransactionHash common.Hash    `json:"transactionHash"`
	Hash            *common.Hash   `json:"hash,omitempty"`
	To              address.Text   `json:"to"`
	From            address.Text   `json:"from"`
	ShardID         uint32         `json:"shardID"`
	ToShardID       uint32         `json:"toShardID"`
	Value           *numeric.Big   `json:"value"`
}

func (r CXTransactionReceipt) MarshalJSON() ([]byte, error) {
	return json.Marshal(cxReceiptJSON{
		BlockHash:       r.BlockHash,
		BlockNumber:     numeric.Uint64(r.BlockNumber),
		TransactionHash: r.TransactionHash,
		To:              address.Text(r.To),
		From:            address.Text(r.From),
		ShardID:         r.ShardID,
		ToShardID:       r.ToShardID,
		Value:           numeric.NewBig(r.Value),
	})
}

// UnmarshalJSON 节点把交易哈希放在 hash 字段里
func (r *CXTransactionReceipt) UnmarshalJSON(data []byte) error {
	var aux cxReceiptJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = CXTransactionReceipt{
		BlockHash:       aux.BlockHash,
		BlockNumber:     uint64(aux.BlockNumber),
		TransactionHash: aux.TransactionHash,
		To:              common.Address(aux.To),
		From:            common.Address(aux.From),
		ShardID:         aux.ShardID,
		ToShardID:       aux.ToShardID,
		Value:           aux.Value.Int(),
	}
	if aux.Hash != nil && r.TransactionHash == (common.Hash{}) {
		r.TransactionHash = *aux.Hash
	}
	return nil
}

func nonZero(a *address.Text) *common.Address {
	if a == nil || *a == (address.Text{}) {
		return nil
	}
	return (*common.Address)(a)
}
