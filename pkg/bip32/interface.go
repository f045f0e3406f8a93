package bip32

import (
	"crypto/ecdsa"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
)

// CoinType Harmony 在 SLIP-44 中注册的币种编号
const CoinType = 1023

// DefaultPathFormat BIP-44 账户路径, %d 为地址索引
const DefaultPathFormat = "m/44'/1023'/0'/0/%d"

// ExtendedKey 包装了 BIP-32 扩展密钥
type ExtendedKey interface {
	// String 返回 Base58 编码的密钥字符串 (xprv... / xpub...)
	String() string

	ECPubKey() (*btcec.PublicKey, error)
	// ECDSA 返回可直接用于签名的私钥, 公钥节点返回 ErrNotPrivate
	ECDSA() (*ecdsa.PrivateKey, error)
	Derive(index uint32) (ExtendedKey, error)
	IsPrivate() bool
	// Address 返回账户地址 (keccak256(pubkey)[12:])
	Address() (common.Address, error)
	// OneAddress 返回 one1 格式地址
	OneAddress() (string, error)
	Neuter() (ExtendedKey, error)
}

// HDWallet 定义了分层确定性钱包的基本行为
type HDWallet interface {
	MasterKey() ExtendedKey
	// DerivePath 根据路径 (如 "m/44'/1023'/0'/0/0") 派生密钥
	DerivePath(path string) (ExtendedKey, error)
}

var (
	ErrInvalidSeed = errors.New("无效的种子")
	ErrInvalidPath = errors.New("无效的派生路径")
	ErrNotPrivate  = errors.New("扩展公钥不包含私钥")
)
