package client

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity_RejectsMissingPrefix(t *testing.T) {
	_, err := parseQuantity("5")
	require.Error(t, err)
}

func TestParseQuantity_AcceptsOddDigitCount(t *testing.T) {
	v, err := parseQuantity("0x5")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)
}

func TestFormatQuantity_NoLeadingZeros(t *testing.T) {
	assert.Equal(t, "0x0", formatQuantity(0))
	assert.Equal(t, "0x10", formatQuantity(16))
}

func TestQuantityBig_RoundTrips(t *testing.T) {
	v := uint256.NewInt(1234567890)
	s := formatQuantityBig(v)
	got, err := parseQuantityBig(s)
	require.NoError(t, err)
	assert.True(t, v.Eq(got))
}

func TestFormatQuantityBig_NilIsZero(t *testing.T) {
	assert.Equal(t, "0x0", formatQuantityBig(nil))
}
