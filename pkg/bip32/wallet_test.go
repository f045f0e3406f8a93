package bip32

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/bip39"
)

func testWallet(t *testing.T) *Wallet {
	t.Helper()
	seed, err := bip39.Seed("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "")
	require.NoError(t, err)
	w, err := NewMasterKeyFromSeed(seed)
	require.NoError(t, err)
	return w
}

func TestNewMasterKeyFromSeed(t *testing.T) {
	// BIP-32 Test vector 1
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	w, err := NewMasterKeyFromSeed(seed)
	require.NoError(t, err)
	assert.Equal(t,
		"xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LGF5bJoCS8PmJmCgC5d3eVYhfLwfRqEnjD",
		w.MasterKey().String())

	_, err = NewMasterKeyFromSeed([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestParsePath(t *testing.T) {
	indexes, err := ParsePath(AccountPath(3))
	require.NoError(t, err)
	h := uint32(hdkeychain.HardenedKeyStart)
	assert.Equal(t, []uint32{44 + h, CoinType + h, h, 0, 3}, indexes)

	same, err := ParsePath("m/44h/1023h/0h/0/3")
	require.NoError(t, err)
	assert.Equal(t, indexes, same)

	for _, bad := range []string{"44'/0", "m/x", "m/2147483648", "m//1"} {
		_, err := ParsePath(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestDeriveAccount(t *testing.T) {
	w := testWallet(t)

	key, err := w.DerivePath(AccountPath(0))
	require.NoError(t, err)
	require.True(t, key.IsPrivate())

	priv, err := key.ECDSA()
	require.NoError(t, err)

	addr, err := key.Address()
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(priv.PublicKey), addr)

	one, err := key.OneAddress()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(one, "one1"))
	assert.Equal(t, address.ToBech32(addr), one)

	// 同一路径结果确定, 不同索引得到不同账户
	again, err := w.DerivePath(AccountPath(0))
	require.NoError(t, err)
	assert.Equal(t, key.String(), again.String())
	other, err := w.DerivePath(AccountPath(1))
	require.NoError(t, err)
	otherAddr, err := other.Address()
	require.NoError(t, err)
	assert.NotEqual(t, addr, otherAddr)
}

func TestNeuter(t *testing.T) {
	key, err := testWallet(t).DerivePath(AccountPath(0))
	require.NoError(t, err)

	pub, err := key.Neuter()
	require.NoError(t, err)
	assert.False(t, pub.IsPrivate())
	assert.True(t, strings.HasPrefix(pub.String(), "xpub"))

	_, err = pub.ECDSA()
	assert.ErrorIs(t, err, ErrNotPrivate)

	// 公钥节点与私钥节点地址一致
	a, _ := key.Address()
	b, err := pub.Address()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
