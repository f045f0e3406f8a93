// Package numeric 处理链上数值: 任意精度整数与 18 位定点小数
package numeric

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
)

// Precision 定点小数的位数 (1e18)
const Precision = 18

var (
	ErrInvalidNumber = errors.New("无效的数值")
	ErrNegative      = errors.New("数值不能为负")
	ErrPrecision     = errors.New("小数位数超过 18 位")
)

// ParseBig 把各种 "BigNumberish" 输入转换为 *big.Int。
// 支持: 原生整数, *big.Int, decimal.Decimal(必须为整数), 十进制字符串, 0x 十六进制字符串, json.Number
func ParseBig(v interface{}) (*big.Int, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case *big.Int:
		if n == nil {
			return nil, nil
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case decimal.Decimal:
		if !n.Equal(n.Truncate(0)) {
			return nil, fmt.Errorf("%w: %s 不是整数", ErrInvalidNumber, n)
		}
		return n.BigInt(), nil
	case json.Number:
		return parseString(string(n))
	case string:
		return parseString(n)
	}
	return nil, fmt.Errorf("%w: 不支持的类型 %T", ErrInvalidNumber, v)
}

func parseString(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: 空字符串", ErrInvalidNumber)
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	v, ok := math.ParseBig256(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}

// ParseJSON 解析 JSON 中的数值字段 (数字或字符串均可), null 返回 nil
func ParseJSON(raw json.RawMessage) (*big.Int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
		}
		return parseString(s)
	}
	// 数字直接按字面量解析, 不经过 float64, 避免 2^53 以上丢精度
	return parseString(string(raw))
}

// ToFixed 把 decimal 转为 1e18 定点整数, 超过 18 位小数报错
func ToFixed(d decimal.Decimal) (*big.Int, error) {
	if d.Exponent() < -Precision && !d.Equal(d.Truncate(Precision)) {
		return nil, fmt.Errorf("%w: %s", ErrPrecision, d)
	}
	return d.Shift(Precision).BigInt(), nil
}

// FromFixed ToFixed 的逆运算
func FromFixed(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -Precision)
}

// FormatUnits 以 18 位精度展示金额, 例如 1e18 -> "1"
func FormatUnits(v *big.Int) string {
	return FromFixed(v).String()
}

// ParseUnits 把 "1.5" 这样的人类可读金额转换为最小单位
func ParseUnits(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	if d.IsNegative() {
		return nil, ErrNegative
	}
	return ToFixed(d)
}
