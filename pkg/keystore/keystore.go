package keystore

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/scrypt"

	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/crypto_util"
	"hmy-wallet/pkg/safe_random"
)

// Kind 加密内容的类型
type Kind string

const (
	KindMnemonic   Kind = "mnemonic"
	KindPrivateKey Kind = "private-key"
)

const (
	version     = 3
	cipherName  = "aes-256-gcm"
	kdfName     = "scrypt"
	scryptDKLen = 32
	saltLen     = 32
)

var (
	ErrDecrypt     = errors.New("密码错误或文件已损坏")
	ErrUnsupported = errors.New("不支持的 keystore 格式")
)

// Params scrypt 参数
type Params struct {
	N int
	R int
	P int
}

var (
	// StandardParams 与 Ethereum keystore 默认值相同
	StandardParams = Params{N: 1 << 18, R: 8, P: 1}
	// LightParams 用于测试与低配设备
	LightParams = Params{N: 1 << 12, R: 8, P: 6}
)

// EncryptedKeyJSON 沿用 Ethereum Keystore V3 的结构风格
// 内容可以是助记词或单个私钥, 由 Kind 区分
type EncryptedKeyJSON struct {
	Address string     `json:"address,omitempty"` // one1 地址, 仅用于展示与校验
	Kind    Kind       `json:"kind"`
	Crypto  CryptoJSON `json:"crypto"`
	ID      string     `json:"id"`
	Version int        `json:"version"`
}

type CryptoJSON struct {
	Cipher     string    `json:"cipher"`
	CipherText string    `json:"ciphertext"` // hex(nonce + 密文)
	KDF        string    `json:"kdf"`
	KDFParams  KDFParams `json:"kdfparams"`
}

type KDFParams struct {
	DKLen int    `json:"dklen"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	Salt  string `json:"salt"`
}

// Encrypt 用密码加密 secret
// Address、Kind 与 KDF 参数作为 AAD 参与认证, 任何一处被改动都会解密失败
func Encrypt(kind Kind, secret []byte, addr, password string, params Params) (*EncryptedKeyJSON, error) {
	salt, err := safe_random.Bytes(saltLen)
	if err != nil {
		return nil, err
	}
	id, err := safe_random.UUID()
	if err != nil {
		return nil, err
	}

	k := &EncryptedKeyJSON{
		Address: addr,
		Kind:    kind,
		ID:      id,
		Version: version,
		Crypto: CryptoJSON{
			Cipher: cipherName,
			KDF:    kdfName,
			KDFParams: KDFParams{
				DKLen: scryptDKLen,
				N:     params.N,
				R:     params.R,
				P:     params.P,
				Salt:  hex.EncodeToString(salt),
			},
		},
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, scryptDKLen)
	if err != nil {
		return nil, fmt.Errorf("派生密钥失败: %w", err)
	}
	ciphertext, err := crypto_util.EncryptAESGCM(derivedKey, secret, k.aad())
	if err != nil {
		return nil, err
	}
	k.Crypto.CipherText = hex.EncodeToString(ciphertext)
	return k, nil
}

// EncryptMnemonic 加密助记词, addr 为首个账户地址 (可为空)
func EncryptMnemonic(mnemonic, addr, password string, params Params) (*EncryptedKeyJSON, error) {
	return Encrypt(KindMnemonic, []byte(mnemonic), addr, password, params)
}

// EncryptPrivateKey 加密单个私钥, 地址由私钥推导
func EncryptPrivateKey(key *ecdsa.PrivateKey, password string, params Params) (*EncryptedKeyJSON, error) {
	addr := address.ToBech32(crypto.PubkeyToAddress(key.PublicKey))
	return Encrypt(KindPrivateKey, crypto.FromECDSA(key), addr, password, params)
}

// Decrypt 返回明文 secret
func (k *EncryptedKeyJSON) Decrypt(password string) ([]byte, error) {
	if k.Version != version || k.Crypto.Cipher != cipherName || k.Crypto.KDF != kdfName {
		return nil, ErrUnsupported
	}
	if k.Crypto.KDFParams.DKLen != scryptDKLen {
		return nil, fmt.Errorf("%w: dklen %d", ErrUnsupported, k.Crypto.KDFParams.DKLen)
	}
	salt, err := hex.DecodeString(k.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	ciphertext, err := hex.DecodeString(k.Crypto.CipherText)
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext: %w", err)
	}

	p := k.Crypto.KDFParams
	derivedKey, err := scrypt.Key([]byte(password), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return nil, fmt.Errorf("派生密钥失败: %w", err)
	}
	plaintext, err := crypto_util.DecryptAESGCM(derivedKey, ciphertext, k.aad())
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// DecryptMnemonic 解密助记词 keystore
func (k *EncryptedKeyJSON) DecryptMnemonic(password string) (string, error) {
	if k.Kind != KindMnemonic {
		return "", fmt.Errorf("%w: kind %q", ErrUnsupported, k.Kind)
	}
	secret, err := k.Decrypt(password)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// DecryptPrivateKey 解密私钥 keystore, 并校验记录的地址
func (k *EncryptedKeyJSON) DecryptPrivateKey(password string) (*ecdsa.PrivateKey, error) {
	if k.Kind != KindPrivateKey {
		return nil, fmt.Errorf("%w: kind %q", ErrUnsupported, k.Kind)
	}
	secret, err := k.Decrypt(password)
	if err != nil {
		return nil, err
	}
	key, err := crypto.ToECDSA(secret)
	if err != nil {
		return nil, ErrDecrypt
	}
	if k.Address != "" && k.Address != address.ToBech32(crypto.PubkeyToAddress(key.PublicKey)) {
		return nil, ErrDecrypt
	}
	return key, nil
}

func (k *EncryptedKeyJSON) aad() []byte {
	p := k.Crypto.KDFParams
	return []byte(fmt.Sprintf("%d|%s|%s|%d|%d|%d|%s", k.Version, k.Kind, k.Address, p.N, p.R, p.P, p.Salt))
}

// SaveToFile 保存到文件, 权限 0600
func (k *EncryptedKeyJSON) SaveToFile(filename string) error {
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o700); err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o600)
}

// LoadFromFile 从文件加载
func LoadFromFile(filename string) (*EncryptedKeyJSON, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var k EncryptedKeyJSON
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("解析 keystore 失败: %w", err)
	}
	return &k, nil
}
