package request

import (
	"hmy-wallet/pkg/wallet/types"
)

// SendTransactionRequest 发送普通交易
// Confirmations 为 0 时广播后立即返回
type SendTransactionRequest struct {
	Transaction   *types.TransactionRequest `json:"transaction" binding:"required"`
	Confirmations uint64                    `json:"confirmations" binding:"max=64"`
}

// SendStakingRequest 发送质押交易
type SendStakingRequest struct {
	Staking       *types.StakingTransactionRequest `json:"staking" binding:"required"`
	Confirmations uint64                           `json:"confirmations" binding:"max=64"`
}

// DecodeTransactionRequest 解码已签名交易
type DecodeTransactionRequest struct {
	Raw     string `json:"raw" binding:"required,startswith=0x"`
	Staking bool   `json:"staking"`
}

type TxHashURI struct {
	Hash string `uri:"hash" binding:"required,txhash"`
}

type BlockNumberURI struct {
	Number string `uri:"number" binding:"required,numeric"`
}

// BlockQuery full=true 时返回完整交易, 否则只有交易哈希
type BlockQuery struct {
	Full bool `form:"full"`
}
