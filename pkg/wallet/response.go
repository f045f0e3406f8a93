package wallet

import (
	"context"

	"hmy-wallet/pkg/wallet/types"
)

// TransactionResponse 已广播的普通交易。Wait 会更新其中的区块信息,
// 同一个 response 不要在多个 goroutine 中同时 Wait
type TransactionResponse struct {
	types.Transaction
	types.Response
	Raw string

	waiter *waiter
}

// Wait 等待交易达到 confirmations 个确认, 见 WaitOption
func (r *TransactionResponse) Wait(ctx context.Context, confirmations uint64, opts ...WaitOption) (*types.TransactionReceipt, error) {
	return r.waiter.wait(ctx, &r.Response, confirmations, opts...)
}

func (r TransactionResponse) MarshalJSON() ([]byte, error) {
	return types.MergeJSON(r.Transaction, r.Response, rawJSON{r.Raw})
}

// StakingTransactionResponse 已广播的质押交易
type StakingTransactionResponse struct {
	types.StakingTransaction
	types.Response
	Raw string

	waiter *waiter
}

func (r *StakingTransactionResponse) Wait(ctx context.Context, confirmations uint64, opts ...WaitOption) (*types.TransactionReceipt, error) {
	return r.waiter.wait(ctx, &r.Response, confirmations, opts...)
}

func (r StakingTransactionResponse) MarshalJSON() ([]byte, error) {
	return types.MergeJSON(r.StakingTransaction, r.Response, rawJSON{r.Raw})
}

type rawJSON struct {
	Raw string `json:"raw,omitempty"`
}
