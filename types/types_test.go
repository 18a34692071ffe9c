package types

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brane-sdk/brane/crypto"
	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/rlp"
)

func sampleLegacyTx(chainID uint64) *LegacyTx {
	to, _ := hexutil.AddressFromHex("0x000000000000000000000000000000000000dead")
	return &LegacyTx{
		ChainID:  chainID,
		Nonce:    9,
		GasPrice: uint256.NewInt(20_000_000_000),
		GasLimit: 21000,
		To:       &to,
		Value:    uint256.NewInt(1_000_000_000_000_000_000),
		Data:     nil,
	}
}

// TestLegacyEnvelope_ChainID1_YParity0_V37 reproduces the literal example:
// chain id 1, yParity 0 yields envelope v = 37.
func TestLegacyEnvelope_ChainID1_YParity0_V37(t *testing.T) {
	tx := sampleLegacyTx(1)
	sig := crypto.Signature{YParity: 0}
	sig.R[31] = 1
	sig.S[31] = 1

	envelope, err := tx.EncodeEnvelope(sig)
	require.NoError(t, err)

	item, err := rlp.Decode(envelope)
	require.NoError(t, err)
	require.Equal(t, rlp.KindList, item.Kind)
	v, err := item.Items[6].Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(37), v)
}

// TestLegacyEnvelope_RejectsZeroChainID reproduces the literal example:
// a raw signature produced without an EIP-155 chain id must not encode.
func TestLegacyEnvelope_RejectsZeroChainID(t *testing.T) {
	tx := sampleLegacyTx(0)
	sig := crypto.Signature{YParity: 0}

	_, err := tx.EncodeEnvelope(sig)
	assert.ErrorIs(t, err, ErrNotEIP155Encoded)
}

func TestLegacySigningPreimageRoundTripsThroughRLP(t *testing.T) {
	tx := sampleLegacyTx(1)
	preimage, err := tx.EncodeForSigning(1)
	require.NoError(t, err)

	item, err := rlp.Decode(preimage)
	require.NoError(t, err)
	require.Len(t, item.Items, 9)
	nonce, err := item.Items[0].Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), nonce)
}

func TestEIP1559_TypeByteAndEnvelopePrefix(t *testing.T) {
	to, _ := hexutil.AddressFromHex("0x000000000000000000000000000000000000dead")
	tx := &EIP1559Tx{
		ChainID:              1,
		Nonce:                0,
		MaxPriorityFeePerGas: uint256.NewInt(1),
		MaxFeePerGas:         uint256.NewInt(100),
		GasLimit:             21000,
		To:                   &to,
		Value:                uint256.NewInt(0),
	}
	assert.Equal(t, TypeEIP1559, tx.Type())

	sig := crypto.Signature{YParity: 1}
	sig.R[31] = 1
	sig.S[31] = 1
	envelope, err := tx.EncodeEnvelope(sig)
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), envelope[0])
}

func TestEIP4844_RequiresRecipientAndBoundedBlobCount(t *testing.T) {
	tx := &EIP4844Tx{
		ChainID:              1,
		MaxPriorityFeePerGas: uint256.NewInt(1),
		MaxFeePerGas:         uint256.NewInt(1),
		MaxFeePerBlobGas:     uint256.NewInt(1),
		Value:                uint256.NewInt(0),
	}
	_, err := tx.EncodeForSigning(1)
	assert.ErrorIs(t, err, ErrContractCreationForbidden)

	to, _ := hexutil.AddressFromHex("0x000000000000000000000000000000000000dead")
	tx.To = to
	_, err = tx.EncodeForSigning(1)
	assert.ErrorIs(t, err, ErrBlobCountOutOfRange)

	tx.BlobVersionedHashes = make([]hexutil.Hash, 7)
	_, err = tx.EncodeForSigning(1)
	assert.ErrorIs(t, err, ErrBlobCountOutOfRange)

	tx.BlobVersionedHashes = make([]hexutil.Hash, 2)
	_, err = tx.EncodeForSigning(1)
	assert.NoError(t, err)
}

func TestEIP7702_SignAuthorizationAndEncodeEnvelope(t *testing.T) {
	signer, err := crypto.NewRandomSigner()
	require.NoError(t, err)
	delegate, _ := hexutil.AddressFromHex("0x000000000000000000000000000000000000dead")

	auth, err := SignAuthorization(signer, 1, delegate, 0)
	require.NoError(t, err)
	assert.Equal(t, delegate, auth.Address)

	tx := &EIP7702Tx{
		ChainID:              1,
		MaxPriorityFeePerGas: uint256.NewInt(1),
		MaxFeePerGas:         uint256.NewInt(1),
		Value:                uint256.NewInt(0),
		AuthorizationList:    []Authorization{auth},
	}
	sig := crypto.Signature{YParity: 0}
	sig.R[31] = 1
	sig.S[31] = 1
	envelope, err := tx.EncodeEnvelope(sig)
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), envelope[0])
}

func TestInvalidYParityRejected(t *testing.T) {
	tx := sampleLegacyTx(1)
	_, err := tx.EncodeEnvelope(crypto.Signature{YParity: 2})
	assert.ErrorIs(t, err, ErrInvalidYParity)
}
