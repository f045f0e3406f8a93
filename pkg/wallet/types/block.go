package types

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/numeric"
)

// BlockHeader Block 与 BlockWithTransactions 共用的区块头。
// RawDifficulty 保留节点返回的原始数值, Difficulty 是归一化后的大整数
type BlockHeader struct {
	Hash          common.Hash
	ParentHash    common.Hash
	Number        uint64
	Timestamp     uint64
	Nonce         uint64
	RawDifficulty json.RawMessage
	Difficulty    *big.Int
	GasLimit      uint64
	GasUsed       uint64
	Miner         common.Address
	ExtraData     []byte
	Epoch         uint64
	ShardID       uint32
	ViewID        uint64
}

type blockHeaderJSON struct {
	Hash       common.Hash     `json:"hash"`
	ParentHash common.Hash     `json:"parentHash"`
	Number     numeric.Uint64  `json:"number"`
	Timestamp  numeric.Uint64  `json:"timestamp"`
	Nonce      numeric.Uint64  `json:"nonce"`
	Difficulty json.RawMessage `json:"difficulty,omitempty"`
	GasLimit   numeric.Uint64  `json:"gasLimit"`
	GasUsed    numeric.Uint64  `json:"gasUsed"`
	Miner      address.Text    `json:"miner"`
	ExtraData  hexutil.Bytes   `json:"extraData"`
	Epoch      numeric.Uint64  `json:"epoch"`
	ShardID    uint32          `json:"shardID"`
	ViewID     numeric.Uint64  `json:"viewID"`
}

func (h BlockHeader) toJSON() blockHeaderJSON {
	return blockHeaderJSON{
		Hash:       h.Hash,
		ParentHash: h.ParentHash,
		Number:     numeric.Uint64(h.Number),
		Timestamp:  numeric.Uint64(h.Timestamp),
		Nonce:      numeric.Uint64(h.Nonce),
		Difficulty: h.RawDifficulty,
		GasLimit:   numeric.Uint64(h.GasLimit),
		GasUsed:    numeric.Uint64(h.GasUsed),
		Miner:      address.Text(h.Miner),
		ExtraData:  h.ExtraData,
		Epoch:      numeric.Uint64(h.Epoch),
		ShardID:    h.ShardID,
		ViewID:     numeric.Uint64(h.ViewID),
	}
}

func (h BlockHeader) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.toJSON())
}

func (h *BlockHeader) UnmarshalJSON(data []byte) error {
	var aux blockHeaderJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	difficulty, err := numeric.ParseJSON(aux.Difficulty)
	if err != nil {
		return err
	}
	*h = BlockHeader{
		Hash:          aux.Hash,
		ParentHash:    aux.ParentHash,
		Number:        uint64(aux.Number),
		Timestamp:     uint64(aux.Timestamp),
		Nonce:         uint64(aux.Nonce),
		RawDifficulty: aux.Difficulty,
		Difficulty:    difficulty,
		GasLimit:      uint64(aux.GasLimit),
		GasUsed:       uint64(aux.GasUsed),
		Miner:         common.Address(aux.Miner),
		ExtraData:     aux.ExtraData,
		Epoch:         uint64(aux.Epoch),
		ShardID:       aux.ShardID,
		ViewID:        uint64(aux.ViewID),
	}
	if h.Difficulty == nil {
		h.Difficulty = new(big.Int)
	}
	return nil
}

// Block 只带交易哈希的区块
type Block struct {
	BlockHeader
	Transactions        []common.Hash
	StakingTransactions []common.Hash
}

type blockHashes struct {
	Transactions        []common.Hash `json:"transactions"`
	StakingTransactions []common.Hash `json:"stakingTransactions"`
}

func (b Block) MarshalJSON() ([]byte, error) {
	return MergeJSON(b.BlockHeader.toJSON(), blockHashes{b.Transactions, b.StakingTransactions})
}

func (b *Block) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &b.BlockHeader); err != nil {
		return err
	}
	var aux blockHashes
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Transactions, b.StakingTransactions = aux.Transactions, aux.StakingTransactions
	return nil
}

// BlockWithTransactions 带完整交易的区块
type BlockWithTransactions struct {
	BlockHeader
	Transactions        []TransactionResult
	StakingTransactions []StakingTransactionResult
}

type blockTransactions struct {
	Transactions        []TransactionResult        `json:"transactions"`
	StakingTransactions []StakingTransactionResult `json:"stakingTransactions"`
}

func (b BlockWithTransactions) MarshalJSON() ([]byte, error) {
	return MergeJSON(b.BlockHeader.toJSON(), blockTransactions{b.Transactions, b.StakingTransactions})
}

func (b *BlockWithTransactions) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &b.BlockHeader); err != nil {
		return err
	}
	var aux blockTransactions
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Transactions, b.StakingTransactions = aux.Transactions, aux.StakingTransactions
	return nil
}
