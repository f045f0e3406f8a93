package safe_random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// Reader 全局随机源, 测试中可替换为确定性的 Reader
var Reader io.Reader = rand.Reader

// Bytes 生成 n 字节安全随机数
func Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(Reader, b); err != nil {
		return nil, fmt.Errorf("生成随机字节失败: %w", err)
	}
	return b, nil
}

// Hex 生成 n 字节随机数的 hex 编码 (长度 2n)
func Hex(n int) (string, error) {
	b, err := Bytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// UUID 生成 v4 UUID, 用作 keystore 文件 id 与消费者名
func UUID() (string, error) {
	b, err := Bytes(16)
	if err != nil {
		return "", err
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16]), nil
}
