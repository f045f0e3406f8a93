package crypto_util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAESGCM(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	plaintext := []byte("这是一条用于 AES-GCM 测试的秘密消息")
	aad := []byte(`{"kdf":"scrypt"}`)

	ciphertext, err := EncryptAESGCM(key, plaintext, aad)
	require.NoError(t, err)

	decrypted, err := DecryptAESGCM(key, ciphertext, aad)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)

	// aad 被篡改
	_, err = DecryptAESGCM(key, ciphertext, []byte(`{"kdf":"none"}`))
	assert.Error(t, err)

	// 密文被篡改
	ciphertext[len(ciphertext)-1] ^= 0xff
	_, err = DecryptAESGCM(key, ciphertext, aad)
	assert.Error(t, err)
}

func TestAESGCM_InvalidInput(t *testing.T) {
	_, err := EncryptAESGCM([]byte("shortkey"), []byte("test"), nil)
	assert.Error(t, err)

	_, err = DecryptAESGCM([]byte("0123456789abcdef"), []byte{1, 2, 3}, nil)
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}
