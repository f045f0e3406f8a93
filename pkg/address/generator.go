package address

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Generator 地址生成器
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// PubKeyToAddress 将公钥字节 (压缩 33 bytes 或非压缩 65 bytes) 转换为 one1 地址
func (g *Generator) PubKeyToAddress(pubKeyBytes []byte) (string, error) {
	var pub *ecdsa.PublicKey
	var err error

	switch len(pubKeyBytes) {
	case 33:
		pub, err = crypto.DecompressPubkey(pubKeyBytes)
	case 65:
		pub, err = crypto.UnmarshalPubkey(pubKeyBytes)
	default:
		return "", fmt.Errorf("公钥长度不正确: %d", len(pubKeyBytes))
	}
	if err != nil {
		return "", fmt.Errorf("解析公钥失败: %w", err)
	}

	return ToBech32(crypto.PubkeyToAddress(*pub)), nil
}

