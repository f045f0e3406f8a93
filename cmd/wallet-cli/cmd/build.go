package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hmy-wallet/pkg/config"
	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/logger"
	"hmy-wallet/pkg/wallet"
	"hmy-wallet/pkg/wallet/types"
)

type buildFlags struct {
	sendFlags
	from        string
	stakingFile string
	output      string
}

var buildOpts buildFlags

// buildCmd 联网机器构造交易, 不需要私钥
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "构造未签名交易 (Online)",
	Long: `向节点查询 nonce、gasPrice 与链 ID, 补全交易后输出 unsigned.json,
交给离线机器执行 sign。--staking 指定质押请求 JSON 文件时构造质押交易。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseAddressFlag("from", buildOpts.from)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		node, err := dialProvider(ctx)
		if err != nil {
			return errno.Wrap(errno.ErrProviderUnavailable, err)
		}
		defer node.Close()

		w, err := wallet.NewWatchOnly(from, node,
			wallet.WithShard(shard()),
			wallet.WithDefaultGasLimit(config.Global.Wallet.DefaultGasLimit),
			wallet.WithLogger(logger.Log),
		)
		if err != nil {
			return err
		}

		envelope := types.UnsignedTransaction{DerivationPath: keyPath}
		if buildOpts.stakingFile != "" {
			var req types.StakingTransactionRequest
			if err := readJSON(buildOpts.stakingFile, &req); err != nil {
				return err
			}
			// 命令行参数覆盖文件中的值
			nonce, gasPrice, gasLimit, err := buildOpts.values()
			if err != nil {
				return err
			}
			if nonce != nil {
				req.Nonce = nonce
			}
			if gasPrice != nil {
				req.GasPrice = gasPrice
			}
			if gasLimit != nil {
				req.GasLimit = gasLimit
			}
			populated, err := w.PopulateStaking(ctx, &req)
			if err != nil {
				return err
			}
			if envelope.Staking, err = w.CheckStaking(populated); err != nil {
				return err
			}
		} else {
			req, err := buildOpts.request()
			if err != nil {
				return err
			}
			populated, err := w.Populate(ctx, req)
			if err != nil {
				return err
			}
			if envelope.Plain, err = w.Check(populated); err != nil {
				return err
			}
		}

		if err := writeJSON(buildOpts.output, envelope); err != nil {
			return fmt.Errorf("保存失败: %w", err)
		}
		fmt.Printf("未签名交易已构造: %s\n", buildOpts.output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildOpts.register(buildCmd.Flags())
	buildCmd.Flags().StringVar(&buildOpts.from, "from", "", "发送方地址 (one1... 或 0x...)")
	buildCmd.Flags().StringVar(&buildOpts.to, "to", "", "接收方地址")
	buildCmd.Flags().StringVar(&buildOpts.amount, "amount", "0", "金额 (ONE)")
	buildCmd.Flags().StringVar(&buildOpts.data, "data", "", "调用数据 (0x hex)")
	buildCmd.Flags().Int64Var(&buildOpts.toShard, "to-shard", -1, "目标分片 (默认与发送方相同)")
	buildCmd.Flags().StringVar(&buildOpts.stakingFile, "staking", "", "质押请求 JSON 文件")
	buildCmd.Flags().StringVarP(&buildOpts.output, "output", "o", "unsigned.json", "输出文件")
	_ = buildCmd.MarkFlagRequired("from")
}
