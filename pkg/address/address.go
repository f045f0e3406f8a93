package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
)

// HRP 主网/测试网共用的 bech32 前缀
const HRP = "one"

var ErrInvalidAddress = errors.New("无效的地址")

// ToBech32 将 20 字节地址编码为 one1... 格式
func ToBech32(addr common.Address) string {
	conv, err := bech32.ConvertBits(addr.Bytes(), 8, 5, true)
	if err != nil {
		// 20 字节输入不会失败
		panic(err)
	}
	s, err := bech32.Encode(HRP, conv)
	if err != nil {
		panic(err)
	}
	return s
}

// FromBech32 解析 one1... 地址
func FromBech32(s string) (common.Address, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if hrp != HRP {
		return common.Address{}, fmt.Errorf("%w: 前缀 %q 不是 %q", ErrInvalidAddress, hrp, HRP)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != common.AddressLength {
		return common.Address{}, fmt.Errorf("%w: 长度 %d", ErrInvalidAddress, len(raw))
	}
	return common.BytesToAddress(raw), nil
}

// Parse 同时接受 one1... 与 0x... 两种写法
func Parse(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), HRP+"1") {
		return FromBech32(strings.ToLower(s))
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// MustParse 仅用于测试与常量
func MustParse(s string) common.Address {
	addr, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// Text 用于 JSON/文本字段的地址: 输出 one1 格式, 输入接受 one1 与 0x
type Text common.Address

func (a Text) MarshalText() ([]byte, error) {
	return []byte(ToBech32(common.Address(a))), nil
}

// UnmarshalText 空字符串解码为零地址
func (a *Text) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = Text{}
		return nil
	}
	addr, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = Text(addr)
	return nil
}
