// Package signer 从 keystore、助记词或 hex 私钥中加载签名私钥
package signer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"hmy-wallet/pkg/bip32"
	"hmy-wallet/pkg/bip39"
	"hmy-wallet/pkg/keystore"
)

var ErrNoKeySource = errors.New("未配置私钥来源 (keystore / mnemonic / private key)")

// Source 私钥来源, 按 Keystore > Mnemonic > PrivateKey 的优先级取第一个非空项
type Source struct {
	KeystorePath   string
	Password       string
	Mnemonic       string
	Passphrase     string
	DerivationPath string
	PrivateKey     string
}

// Load 根据 Source 加载私钥
func Load(src Source) (*ecdsa.PrivateKey, error) {
	switch {
	case src.KeystorePath != "":
		return FromKeystore(src.KeystorePath, src.Password, src.Passphrase, src.DerivationPath)
	case src.Mnemonic != "":
		return FromMnemonic(src.Mnemonic, src.Passphrase, src.DerivationPath)
	case src.PrivateKey != "":
		return FromHex(src.PrivateKey)
	}
	return nil, ErrNoKeySource
}

// FromMnemonic 按 BIP-44 路径派生私钥, path 为空时使用 m/44'/1023'/0'/0/0
func FromMnemonic(mnemonic, passphrase, path string) (*ecdsa.PrivateKey, error) {
	seed, err := bip39.Seed(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	w, err := bip32.NewMasterKeyFromSeed(seed)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = bip32.AccountPath(0)
	}
	key, err := w.DerivePath(path)
	if err != nil {
		return nil, err
	}
	return key.ECDSA()
}

// FromHex 解析 32 字节 hex 私钥, 可带 0x 前缀
func FromHex(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	key, err := crypto.HexToECDSA(s)
	if err != nil {
		// 不回显输入内容
		return nil, errors.New("无效的私钥")
	}
	return key, nil
}

// FromKeystore 解密 keystore 文件; 助记词类型再按 path 派生
func FromKeystore(filename, password, passphrase, path string) (*ecdsa.PrivateKey, error) {
	k, err := keystore.LoadFromFile(filename)
	if err != nil {
		return nil, err
	}
	switch k.Kind {
	case keystore.KindPrivateKey:
		return k.DecryptPrivateKey(password)
	case keystore.KindMnemonic:
		mnemonic, err := k.DecryptMnemonic(password)
		if err != nil {
			return nil, err
		}
		return FromMnemonic(mnemonic, passphrase, path)
	}
	return nil, fmt.Errorf("%w: kind %q", keystore.ErrUnsupported, k.Kind)
}
