package staking

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/numeric"
)

const (
	BLSPublicKeySize = 48
	BLSSignatureSize = 96

	MaxNameLength            = 140
	MaxIdentityLength        = 140
	MaxWebsiteLength         = 140
	MaxSecurityContactLength = 140
	MaxDetailsLength         = 280
)

// Description 验证人的展示信息
type Description struct {
	Name            string `json:"name"`
	Identity        string `json:"identity"`
	Website         string `json:"website"`
	SecurityContact string `json:"securityContact"`
	Details         string `json:"details"`
}

// IsEmpty EditValidator 中空描述表示不修改
func (d Description) IsEmpty() bool {
	return d == Description{}
}

func (d Description) validate(requireName bool) error {
	if requireName && strings.TrimSpace(d.Name) == "" {
		return errno.New(errno.ErrInvalidTransaction, "description.name", "名称不能为空")
	}
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"description.name", d.Name, MaxNameLength},
		{"description.identity", d.Identity, MaxIdentityLength},
		{"description.website", d.Website, MaxWebsiteLength},
		{"description.securityContact", d.SecurityContact, MaxSecurityContactLength},
		{"description.details", d.Details, MaxDetailsLength},
	}
	for _, c := range checks {
		if len(c.value) > c.max {
			return errno.New(errno.ErrInvalidTransaction, c.field, "长度 %d 超过上限 %d", len(c.value), c.max)
		}
	}
	return nil
}

// CommissionRate 佣金率, 以十进制字符串表示, 避免浮点误差
type CommissionRate struct {
	Rate          decimal.Decimal `json:"rate"`
	MaxRate       decimal.Decimal `json:"maxRate"`
	MaxChangeRate decimal.Decimal `json:"maxChangeRate"`
}

func (c CommissionRate) validate() error {
	for _, r := range []struct {
		field string
		value decimal.Decimal
	}{
		{"commissionRates.rate", c.Rate},
		{"commissionRates.maxRate", c.MaxRate},
		{"commissionRates.maxChangeRate", c.MaxChangeRate},
	} {
		if err := validateRate(r.field, r.value); err != nil {
			return err
		}
	}
	if c.Rate.GreaterThan(c.MaxRate) {
		return errno.New(errno.ErrInvalidTransaction, "commissionRates.rate", "rate %s 大于 maxRate %s", c.Rate, c.MaxRate)
	}
	if c.MaxChangeRate.GreaterThan(c.MaxRate) {
		return errno.New(errno.ErrInvalidTransaction, "commissionRates.maxChangeRate", "maxChangeRate %s 大于 maxRate %s", c.MaxChangeRate, c.MaxRate)
	}
	return nil
}

func validateRate(field string, r decimal.Decimal) error {
	if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
		return errno.New(errno.ErrInvalidTransaction, field, "%s 不在 [0, 1] 区间", r)
	}
	if _, err := numeric.ToFixed(r); err != nil {
		return errno.New(errno.ErrInvalidTransaction, field, "%v", err)
	}
	return nil
}

// BLSPublicKey 验证人分片槽位使用的 BLS 公钥
type BLSPublicKey [BLSPublicKeySize]byte

// BLSSignature 对 BLS 公钥的持有证明签名
type BLSSignature [BLSSignatureSize]byte

func ParseBLSPublicKey(s string) (BLSPublicKey, error) {
	var k BLSPublicKey
	err := decodeFixedHex("BLS 公钥", s, k[:])
	return k, err
}

func ParseBLSSignature(s string) (BLSSignature, error) {
	var sig BLSSignature
	err := decodeFixedHex("BLS 签名", s, sig[:])
	return sig, err
}

func (k BLSPublicKey) Hex() string { return hexutil.Encode(k[:]) }

func (k BLSPublicKey) MarshalText() ([]byte, error) { return []byte(k.Hex()), nil }

func (k *BLSPublicKey) UnmarshalText(text []byte) error {
	return decodeFixedHex("BLS 公钥", string(text), k[:])
}

func (s BLSSignature) Hex() string { return hexutil.Encode(s[:]) }

func (s BLSSignature) MarshalText() ([]byte, error) { return []byte(s.Hex()), nil }

func (s *BLSSignature) UnmarshalText(text []byte) error {
	return decodeFixedHex("BLS 签名", string(text), s[:])
}

// decodeFixedHex 0x 前缀可选
func decodeFixedHex(what, s string, out []byte) error {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("无效的%s: %v", what, err)
	}
	if len(b) != len(out) {
		return fmt.Errorf("无效的%s: 长度 %d, 期望 %d", what, len(b), len(out))
	}
	copy(out, b)
	return nil
}
