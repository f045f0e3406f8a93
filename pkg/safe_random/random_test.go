package safe_random

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes(t *testing.T) {
	a, err := Bytes(32)
	require.NoError(t, err)
	b, err := Bytes(32)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestHex(t *testing.T) {
	s, err := Hex(16)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{32}$`, s)
}

func TestUUID(t *testing.T) {
	id, err := UUID()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`), id)
}

func TestReaderExhausted(t *testing.T) {
	old := Reader
	Reader = bytes.NewReader([]byte{1, 2, 3})
	defer func() { Reader = old }()

	_, err := Bytes(8)
	assert.Error(t, err)
}
