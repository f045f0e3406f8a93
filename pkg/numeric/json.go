package numeric

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
)

// Big 用于 JSON 字段的 big.Int: 输出十进制字符串, 输入接受数字、十进制字符串、0x 十六进制
type Big big.Int

// NewBig 包装 v, nil 保持为 nil
func NewBig(v *big.Int) *Big {
	return (*Big)(v)
}

// Int 取回 *big.Int, nil 接收者返回 nil
func (b *Big) Int() *big.Int {
	return (*big.Int)(b)
}

func (b *Big) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Int().String())
}

func (b *Big) UnmarshalJSON(data []byte) error {
	v, err := ParseJSON(data)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	b.Int().Set(v)
	return nil
}

// Uint64 用于 nonce、gasLimit 这类字段, 输入同样接受字符串与 0x 十六进制
type Uint64 uint64

func NewUint64(v *uint64) *Uint64 {
	return (*Uint64)(v)
}

func (u *Uint64) Ptr() *uint64 {
	return (*uint64)(u)
}

func (u Uint64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(u), 10)), nil
}

func (u *Uint64) UnmarshalJSON(data []byte) error {
	v, err := ParseJSON(data)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if !v.IsUint64() {
		return fmt.Errorf("%w: %s 超出 uint64 范围", ErrInvalidNumber, v)
	}
	*u = Uint64(v.Uint64())
	return nil
}
