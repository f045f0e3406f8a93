package cmd

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/config"
	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/numeric"
	"hmy-wallet/pkg/wallet"
	"hmy-wallet/pkg/wallet/types"
)

// txOptions 普通交易与质押交易共用的 gas/nonce 参数, 未指定时由 populate 补全
type txOptions struct {
	nonce         int64
	gasPrice      string
	gasLimit      uint64
	confirmations uint64
}

func (o *txOptions) register(fs *pflag.FlagSet) {
	fs.Int64Var(&o.nonce, "nonce", -1, "Nonce (默认取 pending nonce)")
	fs.StringVar(&o.gasPrice, "gas-price", "", "Gas price (Atto, 默认取节点建议值)")
	fs.Uint64Var(&o.gasLimit, "gas-limit", 0, "Gas limit (默认估算)")
	fs.Uint64Var(&o.confirmations, "confirmations", 0, "等待的确认数 (默认 wallet.confirmations, 0 表示不等待)")
}

func (o *txOptions) values() (nonce *uint64, gasPrice *big.Int, gasLimit *uint64, err error) {
	if o.nonce >= 0 {
		n := uint64(o.nonce)
		nonce = &n
	}
	if o.gasPrice != "" {
		if gasPrice, err = numeric.ParseBig(o.gasPrice); err != nil {
			return nil, nil, nil, errno.New(errno.ErrInvalidTransaction, "gasPrice", "%v", err)
		}
	}
	if o.gasLimit > 0 {
		g := o.gasLimit
		gasLimit = &g
	}
	return nonce, gasPrice, gasLimit, nil
}

func (o *txOptions) waitFor(cmd *cobra.Command) uint64 {
	if cmd.Flags().Changed("confirmations") {
		return o.confirmations
	}
	return config.Global.Wallet.Confirmations
}

type sendFlags struct {
	txOptions
	to      string
	amount  string
	data    string
	toShard int64
}

var sendOpts sendFlags

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "发送普通转账 / 合约调用",
	Example: `  wallet-cli send --to one1... --amount 1.5
  wallet-cli send --to one1... --amount 1 --to-shard 1 --confirmations 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := sendOpts.request()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		w, closeFn, err := openWallet(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		resp, err := w.SendTransaction(ctx, req)
		if err != nil {
			return err
		}
		return waitAndPrint(ctx, resp, resp.Wait, sendOpts.waitFor(cmd))
	},
}

func (f *sendFlags) request() (*types.TransactionRequest, error) {
	req := &types.TransactionRequest{}
	if f.to != "" {
		to, err := address.Parse(f.to)
		if err != nil {
			return nil, errno.New(errno.ErrInvalidTransaction, "to", "%v", err)
		}
		req.To = &to
	}
	value, err := numeric.ParseUnits(f.amount)
	if err != nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "value", "%v", err)
	}
	req.Value = value
	if f.data != "" {
		data, err := hexutil.Decode(f.data)
		if err != nil {
			return nil, errno.New(errno.ErrInvalidTransaction, "data", "%v", err)
		}
		req.Data = data
	}
	if f.toShard >= 0 {
		s := uint32(f.toShard)
		req.ToShardID = &s
	}
	if req.Nonce, req.GasPrice, req.GasLimit, err = f.values(); err != nil {
		return nil, err
	}
	return req, nil
}

// waitAndPrint 打印已广播的交易, confirmations > 0 时等待并打印回执
func waitAndPrint(ctx context.Context, resp interface{}, wait func(context.Context, uint64, ...wallet.WaitOption) (*types.TransactionReceipt, error), confirmations uint64) error {
	if err := printJSON(resp); err != nil {
		return err
	}
	if confirmations == 0 {
		return nil
	}
	var opts []wallet.WaitOption
	if d := config.Global.Wallet.WaitTimeout; d > 0 {
		opts = append(opts, wallet.WithTimeout(d))
	}
	receipt, err := wait(ctx, confirmations, opts...)
	if err != nil {
		return err
	}
	return printJSON(receipt)
}

func parseAddressFlag(field, s string) (common.Address, error) {
	addr, err := address.Parse(s)
	if err != nil {
		return common.Address{}, errno.New(errno.ErrInvalidTransaction, field, "%v", err)
	}
	return addr, nil
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendOpts.register(sendCmd.Flags())
	sendCmd.Flags().StringVar(&sendOpts.to, "to", "", "接收方地址 (one1... 或 0x..., 为空表示创建合约)")
	sendCmd.Flags().StringVar(&sendOpts.amount, "amount", "0", "金额 (ONE)")
	sendCmd.Flags().StringVar(&sendOpts.data, "data", "", "调用数据 (0x hex)")
	sendCmd.Flags().Int64Var(&sendOpts.toShard, "to-shard", -1, "目标分片 (默认与发送方相同)")
}
