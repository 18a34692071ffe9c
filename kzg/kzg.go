// Package kzg models the EIP-4844 blob sidecar: fixed-size blob, KZG
// commitment and proof containers, and the versioned-hash binding between
// a commitment and the blob it commits to. Pairing-based proof
// verification is deliberately NOT implemented here — it is delegated to
// an external Kzg collaborator (typically a c-kzg/blst-backed trusted
// setup loaded once per process); this package owns only the wire shapes
// and the bookkeeping around them. kzg/blstvalidate provides a cheaper
// structural check (valid curve point, correct subgroup) that can run
// ahead of a full batch verification call.
package kzg

import (
	"crypto/sha256"
	"errors"
	"sync"

	"github.com/brane-sdk/brane/hexutil"
)

// FieldElementsPerBlob and BlobSize follow the EIP-4844 polynomial
// commitment scheme: 4096 field elements of 32 bytes each.
const (
	FieldElementsPerBlob = 4096
	BlobSize             = FieldElementsPerBlob * 32
	MinBlobsPerSidecar   = 1
	MaxBlobsPerSidecar   = 6

	// BlobCommitmentVersionKZG is the leading byte of a commitment's
	// versioned hash, per EIP-4844.
	BlobCommitmentVersionKZG = 0x01
)

// Blob is a fixed-size sequence of field elements.
type Blob [BlobSize]byte

// Commitment is a compressed BLS12-381 G1 point committing to a Blob.
type Commitment [48]byte

// Proof is a compressed BLS12-381 G1 point proving a commitment opens
// correctly.
type Proof [48]byte

// VersionedHashOf identifies a commitment the way it appears in a
// transaction's blobVersionedHashes: sha256(commitment) with its first
// byte replaced by BlobCommitmentVersionKZG.
func VersionedHashOf(c Commitment) hexutil.Hash {
	digest := sha256.Sum256(c[:])
	digest[0] = BlobCommitmentVersionKZG
	return hexutil.Hash(digest)
}

var (
	ErrSidecarLengthMismatch = errors.New("kzg: blobs, commitments, and proofs must have equal length")
	ErrBlobCountOutOfRange   = errors.New("kzg: sidecar must carry between 1 and 6 blobs")
	ErrInvalidProof          = errors.New("kzg: batch proof verification failed")
	ErrHashCountMismatch     = errors.New("kzg: expected hash count does not match sidecar blob count")
	ErrHashMismatch          = errors.New("kzg: versioned hash does not match its commitment")
)

// Kzg is the external collaborator that performs the actual pairing-based
// cryptography. Implementations typically wrap a c-kzg/blst trusted setup
// loaded once per process.
type Kzg interface {
	VerifyBlobKZGProofBatch(blobs []Blob, commitments []Commitment, proofs []Proof) (bool, error)
}

// BlobSidecar is three equal-length, index-aligned sequences: a blob, the
// commitment to it, and a proof that the commitment opens correctly. Its
// versioned-hash list is computed once and cached, since callers
// frequently need it both to build the transaction's blobVersionedHashes
// field and to validate the sidecar against that same field.
type BlobSidecar struct {
	Blobs       []Blob
	Commitments []Commitment
	Proofs      []Proof

	hashesOnce sync.Once
	hashes     []hexutil.Hash
}

// NewBlobSidecar validates shape (equal lengths, blob count in [1, 6])
// before constructing the sidecar.
func NewBlobSidecar(blobs []Blob, commitments []Commitment, proofs []Proof) (*BlobSidecar, error) {
	if len(blobs) != len(commitments) || len(blobs) != len(proofs) {
		return nil, ErrSidecarLengthMismatch
	}
	if len(blobs) < MinBlobsPerSidecar || len(blobs) > MaxBlobsPerSidecar {
		return nil, ErrBlobCountOutOfRange
	}
	return &BlobSidecar{Blobs: blobs, Commitments: commitments, Proofs: proofs}, nil
}

// VersionedHashes returns the versioned hash of each commitment, computed
// once and cached.
func (s *BlobSidecar) VersionedHashes() []hexutil.Hash {
	s.hashesOnce.Do(func() {
		s.hashes = make([]hexutil.Hash, len(s.Commitments))
		for i, c := range s.Commitments {
			s.hashes[i] = VersionedHashOf(c)
		}
	})
	return s.hashes
}

// Validate delegates batch proof verification to kzg, failing with
// ErrInvalidProof if it reports the batch as invalid.
func (s *BlobSidecar) Validate(kzg Kzg) error {
	ok, err := kzg.VerifyBlobKZGProofBatch(s.Blobs, s.Commitments, s.Proofs)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidProof
	}
	return nil
}

// ValidateHashes checks the sidecar's versioned hashes against the set a
// transaction declared, failing on a count mismatch or any element
// mismatch.
func (s *BlobSidecar) ValidateHashes(expected []hexutil.Hash) error {
	actual := s.VersionedHashes()
	if len(actual) != len(expected) {
		return ErrHashCountMismatch
	}
	for i := range actual {
		if !actual[i].Equal(expected[i]) {
			return ErrHashMismatch
		}
	}
	return nil
}
