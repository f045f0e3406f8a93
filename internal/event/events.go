package event

import (
	"hmy-wallet/pkg/wallet/types"
)

const (
	TopicTxRequests = "wallet_tx_requests"
	TopicTxResults  = "wallet_tx_results"
)

const (
	KindTransaction = "transaction"
	KindStaking     = "staking"
)

// 广播结果状态
const (
	StatusConfirmed = "confirmed"
	StatusDropped   = "dropped"
	StatusTimeout   = "timeout"
	StatusFailed    = "failed"
	StatusInvalid   = "invalid"
)

// TxRequestEvent 广播请求
// Topic: wallet_tx_requests
// Kind 决定读取 Transaction 还是 Staking; Confirmations 为空时使用 worker 配置
type TxRequestEvent struct {
	RequestID     string                           `json:"request_id"`
	Kind          string                           `json:"kind"`
	Transaction   *types.TransactionRequest        `json:"transaction,omitempty"`
	Staking       *types.StakingTransactionRequest `json:"staking,omitempty"`
	Confirmations *uint64                          `json:"confirmations,omitempty"`
}

// TxResultEvent 广播结果
// Topic: wallet_tx_results
type TxResultEvent struct {
	RequestID     string  `json:"request_id"`
	Kind          string  `json:"kind"`
	Status        string  `json:"status"`
	TxHash        string  `json:"tx_hash,omitempty"`
	Nonce         *uint64 `json:"nonce,omitempty"`
	BlockNumber   *uint64 `json:"block_number,omitempty"`
	Confirmations uint64  `json:"confirmations"`
	ErrorCode     int     `json:"error_code,omitempty"`
	Error         string  `json:"error,omitempty"`
}
