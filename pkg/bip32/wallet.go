package bip32

import (
	"crypto/ecdsa"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"hmy-wallet/pkg/address"
)

// Keychain 实现了 ExtendedKey 接口，封装了 hdkeychain.ExtendedKey
// 序列化版本号沿用 BTC 主网 (xprv/xpub), 与常见钱包导出格式一致
type Keychain struct {
	key *hdkeychain.ExtendedKey
}

func (k *Keychain) String() string {
	return k.key.String()
}

func (k *Keychain) ECPubKey() (*btcec.PublicKey, error) {
	return k.key.ECPubKey()
}

func (k *Keychain) ECDSA() (*ecdsa.PrivateKey, error) {
	if !k.key.IsPrivate() {
		return nil, ErrNotPrivate
	}
	priv, err := k.key.ECPrivKey()
	if err != nil {
		return nil, err
	}
	return crypto.ToECDSA(priv.Serialize())
}

func (k *Keychain) Derive(index uint32) (ExtendedKey, error) {
	child, err := k.key.Derive(index)
	if err != nil {
		return nil, fmt.Errorf("派生子密钥失败: %w", err)
	}
	return &Keychain{key: child}, nil
}

func (k *Keychain) IsPrivate() bool {
	return k.key.IsPrivate()
}

func (k *Keychain) Address() (common.Address, error) {
	pub, err := k.key.ECPubKey()
	if err != nil {
		return common.Address{}, err
	}
	ecdsaPub, err := crypto.UnmarshalPubkey(pub.SerializeUncompressed())
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*ecdsaPub), nil
}

func (k *Keychain) OneAddress() (string, error) {
	pub, err := k.key.ECPubKey()
	if err != nil {
		return "", err
	}
	return address.NewGenerator().PubKeyToAddress(pub.SerializeCompressed())
}

func (k *Keychain) Neuter() (ExtendedKey, error) {
	pub, err := k.key.Neuter()
	if err != nil {
		return nil, fmt.Errorf("转换公钥失败: %w", err)
	}
	return &Keychain{key: pub}, nil
}

// Wallet 实现 HDWallet 接口
type Wallet struct {
	master *Keychain
}

// NewMasterKeyFromSeed 使用 BIP-39 种子生成主密钥
func NewMasterKeyFromSeed(seed []byte) (*Wallet, error) {
	if len(seed) < hdkeychain.MinSeedBytes || len(seed) > hdkeychain.MaxSeedBytes {
		return nil, ErrInvalidSeed
	}
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("生成主密钥失败: %w", err)
	}
	return &Wallet{master: &Keychain{key: master}}, nil
}

func (w *Wallet) MasterKey() ExtendedKey {
	return w.master
}

// AccountPath 返回第 index 个账户的默认派生路径
func AccountPath(index uint32) string {
	return fmt.Sprintf(DefaultPathFormat, index)
}

// ParsePath 解析 m/44'/1023'/0'/0/0 或 m/44h/1023h/0h/0/0
func ParsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "m" {
		return nil, nil
	}
	if !strings.HasPrefix(path, "m/") {
		return nil, fmt.Errorf("%w: %q 必须以 m/ 开头", ErrInvalidPath, path)
	}

	segments := strings.Split(path[2:], "/")
	indexes := make([]uint32, 0, len(segments))
	for _, segment := range segments {
		hardened := strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h")
		if hardened {
			segment = segment[:len(segment)-1]
		}
		val, err := strconv.ParseUint(segment, 10, 32)
		if err != nil || val >= hdkeychain.HardenedKeyStart {
			return nil, fmt.Errorf("%w: 路径段 %q", ErrInvalidPath, segment)
		}
		index := uint32(val)
		if hardened {
			index += hdkeychain.HardenedKeyStart
		}
		indexes = append(indexes, index)
	}
	return indexes, nil
}

// DerivePath 解析路径并逐级派生
func (w *Wallet) DerivePath(path string) (ExtendedKey, error) {
	indexes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	var current ExtendedKey = w.master
	for _, index := range indexes {
		if current, err = current.Derive(index); err != nil {
			return nil, err
		}
	}
	return current, nil
}
