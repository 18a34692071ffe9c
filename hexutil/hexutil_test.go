package hexutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFromHex_Dead(t *testing.T) {
	a, err := AddressFromHex("0x000000000000000000000000000000000000dEaD")
	require.NoError(t, err)
	assert.Equal(t, "0x000000000000000000000000000000000000dead", a.Hex())
	want := Address{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xde, 0xad}
	assert.Equal(t, want, a)
}

func TestAddressFromHex_WrongLength(t *testing.T) {
	_, err := AddressFromHex("0x1234")
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestAddressFromHex_MissingPrefix(t *testing.T) {
	_, err := AddressFromHex("000000000000000000000000000000000000dEaD")
	assert.ErrorIs(t, err, ErrMissingPrefix)
}

func TestAddressZeroSentinel(t *testing.T) {
	assert.True(t, ZERO.IsZero())
	var a Address
	assert.True(t, a.IsZero())
}

func TestHashRoundTrip(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	h, err := HashFromBytes(raw)
	require.NoError(t, err)
	h2, err := HashFromHex(h.Hex())
	require.NoError(t, err)
	assert.Equal(t, h, h2)
}

func TestDataEqualityByContent(t *testing.T) {
	a := NewData([]byte{1, 2, 3})
	b, err := DataFromHex("0x010203")
	require.NoError(t, err)
	assert.True(t, a.Equal(&b))
}

func TestDataLazyHexCachedAcrossCalls(t *testing.T) {
	d := NewData([]byte{0xab, 0xcd})
	first := d.Hex()
	second := d.Hex()
	assert.Equal(t, first, second)
	assert.Equal(t, "0xabcd", first)
}

func TestPadLeftAndRight(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 1}, PadLeft([]byte{1}, 3))
	assert.Equal(t, []byte{1, 0, 0}, PadRight([]byte{1}, 3))
	// Already at size: unchanged.
	assert.Equal(t, []byte{1, 2, 3}, PadLeft([]byte{1, 2, 3}, 2))
}

func TestTrimLeadingZeroes(t *testing.T) {
	assert.Equal(t, []byte{1, 2}, TrimLeadingZeroes([]byte{0, 0, 1, 2}))
	assert.Equal(t, []byte{}, TrimLeadingZeroes([]byte{0, 0, 0}))
}

func TestOddLengthHexRejected(t *testing.T) {
	_, err := Decode("0xabc")
	assert.ErrorIs(t, err, ErrOddLength)
}
