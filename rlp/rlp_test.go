package rlp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeBytesRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0x7f},
		{0x80},
		[]byte("dog"),
		make([]byte, 55),
		make([]byte, 56),
		make([]byte, 1024),
	}
	for _, c := range cases {
		enc := EncodeBytes(c)
		item, err := Decode(enc)
		require.NoError(t, err)
		require.Equal(t, KindString, item.Kind)
		assert.Equal(t, c, item.Bytes())
	}
}

func TestEncodeDecodeListRoundTrip(t *testing.T) {
	enc := EncodeList(EncodeBytes([]byte("cat")), EncodeBytes([]byte("dog")))
	item, err := Decode(enc)
	require.NoError(t, err)
	require.Equal(t, KindList, item.Kind)
	require.Len(t, item.Items, 2)
	assert.Equal(t, []byte("cat"), item.Items[0].Bytes())
	assert.Equal(t, []byte("dog"), item.Items[1].Bytes())
}

func TestNonMinimalLengthPrefixRejected(t *testing.T) {
	// [0xB8, 0x01, 0x00]: long-string form encoding a 1-byte payload,
	// which should have used the short form (0x81 0x00).
	_, err := Decode([]byte{0xB8, 0x01, 0x00})
	var nonMinimal *NonMinimalError
	assert.ErrorAs(t, err, &nonMinimal)
}

func TestListLengthMismatchRejected(t *testing.T) {
	// [0xC2, 0x82, 0x00, 0x00]: list declares a 2-byte payload, but that
	// payload opens a 2-byte string (0x82) which needs one more byte than
	// the list's window provides.
	_, err := Decode([]byte{0xC2, 0x82, 0x00, 0x00})
	require.Error(t, err)
	var invalid *InvalidEncodingError
	assert.ErrorAs(t, err, &invalid)
}

func TestEncodeUint64ZeroIsEmptyString(t *testing.T) {
	assert.Equal(t, []byte{0x80}, EncodeUint64(0))
}

func TestEncodeBigIntNegativeRejected(t *testing.T) {
	_, err := EncodeBigInt(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrNegativeInteger)
}

func TestUint64TooWideRejected(t *testing.T) {
	big9 := make([]byte, 9)
	big9[0] = 1
	item := &Item{Kind: KindString, Str: big9}
	_, err := item.Uint64()
	assert.ErrorIs(t, err, ErrIntegerTooWide)

	// BigInt has no such limit.
	bi, err := item.BigInt()
	require.NoError(t, err)
	assert.True(t, bi.Sign() > 0)
}

func TestExtraBytesAfterTopLevelItemRejected(t *testing.T) {
	enc := EncodeBytes([]byte("dog"))
	_, err := Decode(append(enc, 0x00))
	assert.ErrorIs(t, err, ErrExtraBytes)
}

func TestSingleByteSelfEncoding(t *testing.T) {
	enc := EncodeBytes([]byte{0x42})
	assert.Equal(t, []byte{0x42}, enc)
}

func TestLeadingZeroInLongLengthRejected(t *testing.T) {
	// 0xB9 = long string, 2 length bytes; declaring length with a leading
	// zero byte (0x00, 0x38) is non-canonical.
	buf := append([]byte{0xB9, 0x00, 0x38}, make([]byte, 56)...)
	_, err := Decode(buf)
	var nonMinimal *NonMinimalError
	assert.ErrorAs(t, err, &nonMinimal)
}
