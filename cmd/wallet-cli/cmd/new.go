package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hmy-wallet/pkg/bip32"
	"hmy-wallet/pkg/bip39"
	"hmy-wallet/pkg/keystore"
)

var (
	newOutput string
	newWords  int
	newLight  bool
)

// newCmd 生成助记词并加密保存为 keystore
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "创建一个新的钱包 (生成助记词并加密保存)",
	Long:  `生成新的 BIP-39 助记词, 派生 m/44'/1023'/0'/0/0 账户, 用密码加密后保存为 keystore 文件。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(newOutput); err == nil {
			return fmt.Errorf("文件 %s 已存在, 请先删除或指定其他文件名", newOutput)
		}
		bitSize, err := wordsToBits(newWords)
		if err != nil {
			return err
		}

		fmt.Println("请设置一个强密码来保护您的助记词。")
		password, err := readNewPassword(8)
		if err != nil {
			return err
		}

		mnemonic, err := bip39.Generate(bitSize)
		if err != nil {
			return fmt.Errorf("生成助记词失败: %w", err)
		}
		addr, err := firstAccount(mnemonic)
		if err != nil {
			return err
		}

		params := keystore.StandardParams
		if newLight {
			params = keystore.LightParams
		}
		encryptedKey, err := keystore.EncryptMnemonic(mnemonic, addr, password, params)
		if err != nil {
			return fmt.Errorf("加密失败: %w", err)
		}
		if err := encryptedKey.SaveToFile(newOutput); err != nil {
			return fmt.Errorf("保存文件失败: %w", err)
		}

		fmt.Printf("\n钱包已创建\n文件位置: %s\n地址: %s\nID: %s\n", newOutput, addr, encryptedKey.ID)
		fmt.Println("\n警告: 请务必记住您的密码! 丢失密码将无法恢复钱包。")

		if confirm("\n是否需要现在显示助记词以便备份? (y/N): ") {
			fmt.Println("\n---------------------------------------------------")
			fmt.Println("助记词 (请抄写在纸上并安全保管):")
			fmt.Println(mnemonic)
			fmt.Println("---------------------------------------------------")
		}
		return nil
	},
}

func wordsToBits(words int) (int, error) {
	switch words {
	case 12:
		return 128, nil
	case 15:
		return 160, nil
	case 18:
		return 192, nil
	case 21:
		return 224, nil
	case 24:
		return 256, nil
	}
	return 0, errors.New("助记词长度只能是 12/15/18/21/24")
}

// firstAccount 派生默认账户的 one1 地址
func firstAccount(mnemonic string) (string, error) {
	seed, err := bip39.Seed(mnemonic, "")
	if err != nil {
		return "", err
	}
	w, err := bip32.NewMasterKeyFromSeed(seed)
	if err != nil {
		return "", err
	}
	key, err := w.DerivePath(bip32.AccountPath(0))
	if err != nil {
		return "", err
	}
	return key.OneAddress()
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVarP(&newOutput, "output", "o", "wallet.json", "输出的 Keystore 文件名")
	newCmd.Flags().IntVar(&newWords, "words", 24, "助记词长度")
	newCmd.Flags().BoolVar(&newLight, "light", false, "使用轻量 scrypt 参数 (仅用于测试)")
}
