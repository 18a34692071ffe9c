package crypto

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeccak256EmptyInput(t *testing.T) {
	h := Keccak256([]byte{})
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hexString(h[:]))
}

func TestKeccak256Concatenation(t *testing.T) {
	a := Keccak256([]byte("hello"), []byte(" world"))
	b := Keccak256([]byte("hello world"))
	assert.Equal(t, a, b)
}

func TestPrivateKeyRejectsZero(t *testing.T) {
	_, err := NewPrivateKey([32]byte{})
	assert.ErrorIs(t, err, ErrZeroPrivateKey)
}

func TestPrivateKeyRejectsOutOfRange(t *testing.T) {
	var raw [32]byte
	curveOrder.FillBytes(raw[:])
	_, err := NewPrivateKey(raw)
	assert.ErrorIs(t, err, ErrPrivateKeyRange)
}

func TestSignRecoverRoundTripAndLowS(t *testing.T) {
	pk, err := GeneratePrivateKey()
	require.NoError(t, err)
	addr, err := pk.Address()
	require.NoError(t, err)

	digest := Keccak256([]byte("test message"))
	sig, err := pk.Sign(digest)
	require.NoError(t, err)

	sVal := new(big.Int).SetBytes(sig.S[:])
	assert.True(t, sVal.Cmp(curveHalfOrder) <= 0, "s must be low-half canonical")

	recovered, err := RecoverAddress(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, addr, recovered)

	ok, err := VerifyAddress(digest, sig, addr)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDestroyIsIdempotentAndBlocksSigning(t *testing.T) {
	pk, err := GeneratePrivateKey()
	require.NoError(t, err)

	pk.Destroy()
	pk.Destroy() // idempotent
	assert.True(t, pk.IsDestroyed())

	_, err = pk.Sign(Keccak256([]byte("x")))
	assert.ErrorIs(t, err, ErrKeyDestroyed)

	_, err = pk.Bytes()
	assert.ErrorIs(t, err, ErrKeyDestroyed)
}

func TestPrivateKeySignerDelegatesLifecycle(t *testing.T) {
	signer, err := NewRandomSigner()
	require.NoError(t, err)

	_, err = signer.SignDigest(Keccak256([]byte("y")))
	require.NoError(t, err)

	signer.Destroy()
	assert.True(t, signer.IsDestroyed())
	_, err = signer.SignDigest(Keccak256([]byte("y")))
	assert.ErrorIs(t, err, ErrKeyDestroyed)
}

func hexString(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0f]
	}
	return string(out)
}
