package crypto_util

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Blake3Hex 计算 Blake3-256 并返回 hex
func Blake3Hex(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint 对多段数据计算稳定指纹, 每段前写入长度避免拼接歧义
// 用作广播任务的幂等键
func Fingerprint(domain string, parts ...[]byte) string {
	h := blake3.New(32, nil)
	h.Write([]byte(domain))
	var prefix [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := 7; i >= 0; i-- {
			prefix[i] = byte(n)
			n >>= 8
		}
		h.Write(prefix[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
