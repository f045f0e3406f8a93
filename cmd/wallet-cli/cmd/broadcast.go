package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/wallet"
	"hmy-wallet/pkg/wallet/types"
)

var broadcastInput string

var broadcastCmd = &cobra.Command{
	Use:   "broadcast",
	Short: "广播已签名的交易 (Online)",
	Long:  `读取 sign 输出的已签名交易, 校验后广播到节点。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var signedTx types.SignedTransaction
		if err := readJSON(broadcastInput, &signedTx); err != nil {
			return err
		}

		// 先在本地解析一遍, 拒绝损坏的文件
		var expected common.Hash
		if signedTx.Staking {
			tx, err := wallet.ParseStakingTransaction(signedTx.RawTx)
			if err != nil {
				return errno.Wrap(errno.ErrInvalidTransaction, err)
			}
			expected = tx.Hash
		} else {
			tx, err := wallet.ParseTransaction(signedTx.RawTx)
			if err != nil {
				return errno.Wrap(errno.ErrInvalidTransaction, err)
			}
			expected = tx.Hash
		}
		raw, err := hexutil.Decode(signedTx.RawTx)
		if err != nil {
			return errno.Wrap(errno.ErrInvalidTransaction, err)
		}

		ctx := cmd.Context()
		node, err := dialProvider(ctx)
		if err != nil {
			return errno.Wrap(errno.ErrProviderUnavailable, err)
		}
		defer node.Close()

		fmt.Printf("正在广播交易 Hash: %s ...\n", expected.Hex())
		var hash common.Hash
		if signedTx.Staking {
			hash, err = node.SendRawStakingTransaction(ctx, raw)
		} else {
			hash, err = node.SendRawTransaction(ctx, raw)
		}
		if err != nil {
			return errno.Wrap(errno.ErrTransactionDropped, err)
		}
		if hash != expected {
			return fmt.Errorf("节点返回的哈希 %s 与本地计算的 %s 不一致", hash.Hex(), expected.Hex())
		}
		fmt.Println("广播成功")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(broadcastCmd)
	broadcastCmd.Flags().StringVarP(&broadcastInput, "input", "i", "signed.json", "已签名的交易文件")
}
