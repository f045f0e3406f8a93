package crypto_util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlake3Hex(t *testing.T) {
	// BLAKE3 官方向量: 空输入
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", Blake3Hex(nil))
	assert.Len(t, Blake3Hex([]byte("hello world")), 64)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("tx", []byte("ab"), []byte("c"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint("tx", []byte("ab"), []byte("c")))

	// 分段不同 / 域不同 指纹必须不同
	assert.NotEqual(t, a, Fingerprint("tx", []byte("a"), []byte("bc")))
	assert.NotEqual(t, a, Fingerprint("staking", []byte("ab"), []byte("c")))
}
