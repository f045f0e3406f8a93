package bip39

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// DefaultBitSize 默认 256 位熵 (24 个单词)
const DefaultBitSize = 256

var ErrInvalidMnemonic = errors.New("无效的助记词")

// Generate 生成随机助记词
// bitSize: 128 (12 个单词) 到 256 (24 个单词), 必须是 32 的倍数
func Generate(bitSize int) (string, error) {
	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", fmt.Errorf("生成熵失败: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("生成助记词失败: %w", err)
	}
	return mnemonic, nil
}

// Normalize 去掉多余空白, 统一小写
func Normalize(mnemonic string) string {
	return strings.ToLower(strings.Join(strings.Fields(mnemonic), " "))
}

func Validate(mnemonic string) bool {
	return bip39.IsMnemonicValid(Normalize(mnemonic))
}

// Seed 校验助记词 (含 checksum) 并生成 64 字节种子
// passphrase 为空时即标准种子
func Seed(mnemonic, passphrase string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(Normalize(mnemonic), passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return seed, nil
}
