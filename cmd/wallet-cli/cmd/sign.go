package cmd

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/numeric"
	"hmy-wallet/pkg/signer"
	"hmy-wallet/pkg/wallet"
	"hmy-wallet/pkg/wallet/types"
)

var (
	signInput  string
	signOutput string
	signYes    bool
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "离线签名交易 (Offline Signing)",
	Long:  `读取 build 生成的未签名交易, 使用本地私钥签名, 输出可广播的 Raw Tx。整个过程不访问网络。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var envelope types.UnsignedTransaction
		if err := readJSON(signInput, &envelope); err != nil {
			return err
		}
		if (envelope.Plain == nil) == (envelope.Staking == nil) {
			return errno.New(errno.ErrInvalidTransaction, "", "文件中必须有且只有一笔交易")
		}

		// 显示交易详情供用户确认 (Verify on Screen)
		printEnvelope(&envelope)
		if !signYes && !confirm("确认签名? (y/N): ") {
			return errors.New("已取消")
		}

		src, err := keySource()
		if err != nil {
			return err
		}
		if envelope.DerivationPath != "" {
			src.DerivationPath = envelope.DerivationPath
		}
		key, err := signer.Load(src)
		if err != nil {
			return err
		}

		signed, err := signEnvelope(key, &envelope)
		if err != nil {
			return err
		}
		if err := writeJSON(signOutput, signed); err != nil {
			return fmt.Errorf("保存结果失败: %w", err)
		}
		fmt.Printf("签名成功\nTxHash: %s\n已保存到: %s\n", signed.TxHash, signOutput)
		return nil
	},
}

// signEnvelope 离线签名, 返回的哈希由签名后的原始交易重新解析得到
func signEnvelope(key *ecdsa.PrivateKey, envelope *types.UnsignedTransaction) (*types.SignedTransaction, error) {
	w, err := wallet.New(key, offlineProvider{})
	if err != nil {
		return nil, err
	}
	if envelope.Staking != nil {
		raw, err := w.SignStakingTransaction(envelope.Staking)
		if err != nil {
			return nil, err
		}
		tx, err := wallet.ParseStakingTransaction(raw)
		if err != nil {
			return nil, err
		}
		return &types.SignedTransaction{TxHash: tx.Hash.Hex(), RawTx: raw, Staking: true}, nil
	}
	raw, err := w.SignTransaction(envelope.Plain)
	if err != nil {
		return nil, err
	}
	tx, err := wallet.ParseTransaction(raw)
	if err != nil {
		return nil, err
	}
	return &types.SignedTransaction{TxHash: tx.Hash.Hex(), RawTx: raw}, nil
}

func printEnvelope(e *types.UnsignedTransaction) {
	fmt.Println("\n================ 待签名交易 ================")
	if tx := e.Plain; tx != nil {
		if tx.From != nil {
			fmt.Printf("From:       %s\n", address.ToBech32(*tx.From))
		}
		if tx.To != nil {
			fmt.Printf("To:         %s\n", address.ToBech32(*tx.To))
		} else {
			fmt.Println("To:         (合约创建)")
		}
		fmt.Printf("Amount:     %s ONE\n", numeric.FormatUnits(tx.Value))
		if tx.ShardID != nil && tx.ToShardID != nil {
			fmt.Printf("Shard:      %d -> %d\n", *tx.ShardID, *tx.ToShardID)
		}
		printGas(tx.Nonce, tx.GasLimit)
		fmt.Printf("GasPrice:   %s\n", tx.GasPrice)
	}
	if tx := e.Staking; tx != nil {
		fmt.Printf("Directive:  %s\n", tx.Type)
		if tx.Msg != nil {
			fmt.Printf("Signer:     %s\n", address.ToBech32(tx.Msg.Signer()))
		}
		printGas(tx.Nonce, tx.GasLimit)
		fmt.Printf("GasPrice:   %s\n", tx.GasPrice)
	}
	if e.DerivationPath != "" {
		fmt.Printf("Path:       %s\n", e.DerivationPath)
	}
	fmt.Println("============================================")
}

func printGas(nonce, gasLimit *uint64) {
	if nonce != nil {
		fmt.Printf("Nonce:      %d\n", *nonce)
	}
	if gasLimit != nil {
		fmt.Printf("GasLimit:   %d\n", *gasLimit)
	}
}

func init() {
	rootCmd.AddCommand(signCmd)
	signCmd.Flags().StringVarP(&signInput, "input", "i", "unsigned.json", "未签名的交易文件路径")
	signCmd.Flags().StringVarP(&signOutput, "output", "o", "signed.json", "签名后的输出文件路径")
	signCmd.Flags().BoolVarP(&signYes, "yes", "y", false, "跳过确认")
}
