package types

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"

	"hmy-wallet/pkg/numeric"
)

// Response 交易上链后的区块信息, pending 时区块字段为空。
// Confirmations 只增不减。
type Response struct {
	BlockNumber   *uint64
	BlockHash     *common.Hash
	Timestamp     *uint64
	Confirmations uint64
}

// Mined 是否已经打包
func (r *Response) Mined() bool {
	return r.BlockNumber != nil
}

// Observe 记录新的确认数, 较小的值被忽略
func (r *Response) Observe(confirmations uint64) {
	if confirmations > r.Confirmations {
		r.Confirmations = confirmations
	}
}

type responseJSON struct {
	BlockNumber   *numeric.Uint64 `json:"blockNumber,omitempty"`
	BlockHash     *common.Hash    `json:"blockHash,omitempty"`
	Timestamp     *numeric.Uint64 `json:"timestamp,omitempty"`
	Confirmations numeric.Uint64  `json:"confirmations"`
}

func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(responseJSON{
		BlockNumber:   numeric.NewUint64(r.BlockNumber),
		BlockHash:     r.BlockHash,
		Timestamp:     numeric.NewUint64(r.Timestamp),
		Confirmations: numeric.Uint64(r.Confirmations),
	})
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var aux responseJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Response{
		BlockNumber:   aux.BlockNumber.Ptr(),
		BlockHash:     aux.BlockHash,
		Timestamp:     aux.Timestamp.Ptr(),
		Confirmations: uint64(aux.Confirmations),
	}
	// 节点对 pending 交易返回全零的 blockHash
	if r.BlockHash != nil && *r.BlockHash == (common.Hash{}) {
		r.BlockHash = nil
		r.BlockNumber = nil
	}
	return nil
}

// TransactionResult 节点返回的完整交易: 交易本体 + 区块信息
type TransactionResult struct {
	Transaction
	Response
}

func (r TransactionResult) MarshalJSON() ([]byte, error) {
	return MergeJSON(r.Transaction, r.Response)
}

func (r *TransactionResult) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &r.Transaction); err != nil {
		return err
	}
	return json.Unmarshal(data, &r.Response)
}

// StakingTransactionResult 节点返回的完整质押交易
type StakingTransactionResult struct {
	StakingTransaction
	Response
}

func (r StakingTransactionResult) MarshalJSON() ([]byte, error) {
	return MergeJSON(r.StakingTransaction, r.Response)
}

func (r *StakingTransactionResult) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &r.StakingTransaction); err != nil {
		return err
	}
	return json.Unmarshal(data, &r.Response)
}

// MergeJSON 把多个 JSON 对象的字段合并到一个对象里, 后者覆盖前者
func MergeJSON(parts ...interface{}) ([]byte, error) {
	merged := make(map[string]json.RawMessage)
	for _, p := range parts {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		for k, v := range fields {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
