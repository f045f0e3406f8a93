package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/wallet"
)

var decodeStaking bool

var decodeCmd = &cobra.Command{
	Use:   "decode <raw-hex | file>",
	Short: "解码已签名交易并恢复签名人",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.TrimSpace(args[0])
		if !strings.HasPrefix(raw, "0x") {
			data, err := os.ReadFile(raw)
			if err != nil {
				return err
			}
			raw = strings.TrimSpace(string(data))
		}
		if decodeStaking {
			tx, err := wallet.ParseStakingTransaction(raw)
			if err != nil {
				return errno.Wrap(errno.ErrInvalidTransaction, err)
			}
			return printJSON(tx)
		}
		tx, err := wallet.ParseTransaction(raw)
		if err != nil {
			return errno.Wrap(errno.ErrInvalidTransaction, err)
		}
		return printJSON(tx)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVar(&decodeStaking, "staking", false, "按质押交易解码")
}
