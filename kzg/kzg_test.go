package kzg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brane-sdk/brane/hexutil"
)

type stubKzg struct {
	ok  bool
	err error
}

func (s stubKzg) VerifyBlobKZGProofBatch(blobs []Blob, commitments []Commitment, proofs []Proof) (bool, error) {
	return s.ok, s.err
}

func TestVersionedHashOf_SetsLeadingVersionByte(t *testing.T) {
	var c Commitment
	c[0] = 0xFF
	h := VersionedHashOf(c)
	assert.Equal(t, byte(BlobCommitmentVersionKZG), h[0])
}

func TestNewBlobSidecar_RejectsLengthMismatch(t *testing.T) {
	_, err := NewBlobSidecar([]Blob{{}}, []Commitment{{}, {}}, []Proof{{}})
	assert.ErrorIs(t, err, ErrSidecarLengthMismatch)
}

func TestNewBlobSidecar_RejectsBlobCountOutOfRange(t *testing.T) {
	_, err := NewBlobSidecar(nil, nil, nil)
	assert.ErrorIs(t, err, ErrBlobCountOutOfRange)

	seven := make([]Blob, 7)
	sevenC := make([]Commitment, 7)
	sevenP := make([]Proof, 7)
	_, err = NewBlobSidecar(seven, sevenC, sevenP)
	assert.ErrorIs(t, err, ErrBlobCountOutOfRange)
}

func TestBlobSidecar_Validate_WrapsFalseAsInvalidProof(t *testing.T) {
	s, err := NewBlobSidecar([]Blob{{}}, []Commitment{{}}, []Proof{{}})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Validate(stubKzg{ok: false}), ErrInvalidProof)
	assert.NoError(t, s.Validate(stubKzg{ok: true}))

	boom := errors.New("boom")
	assert.ErrorIs(t, s.Validate(stubKzg{err: boom}), boom)
}

func TestBlobSidecar_ValidateHashes(t *testing.T) {
	var c Commitment
	c[0] = 1
	s, err := NewBlobSidecar([]Blob{{}}, []Commitment{c}, []Proof{{}})
	require.NoError(t, err)

	good := s.VersionedHashes()
	assert.NoError(t, s.ValidateHashes(good))

	assert.ErrorIs(t, s.ValidateHashes(good[:0]), ErrHashCountMismatch)

	tampered := append([]hexutil.Hash(nil), good...)
	tampered[0][31] ^= 0xFF
	assert.ErrorIs(t, s.ValidateHashes(tampered), ErrHashMismatch)
}
