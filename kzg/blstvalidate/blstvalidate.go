// Package blstvalidate performs the cheap half of KZG commitment/proof
// validation: confirming that the 48 bytes a peer sent actually decompress
// to a point on the BLS12-381 G1 curve, in the correct prime-order
// subgroup. It says nothing about whether a proof is valid against a
// commitment and a blob — that pairing check belongs to the external Kzg
// collaborator in the parent package, which wraps a full trusted-setup
// verifier. Running this check first lets a node reject malformed wire
// data before paying for a batch pairing call.
package blstvalidate

import (
	"errors"

	blst "github.com/supranational/blst/bindings/go"

	"github.com/brane-sdk/brane/kzg"
)

var (
	ErrMalformedPoint = errors.New("blstvalidate: not a valid compressed G1 point encoding")
	ErrNotInSubgroup  = errors.New("blstvalidate: point is not in the correct prime-order subgroup")
)

// Point deserializes and subgroup-checks a compressed 48-byte G1 point,
// the shape shared by both KZG commitments and proofs.
func Point(raw [48]byte) error {
	p := new(blst.P1Affine).Deserialize(raw[:])
	if p == nil {
		return ErrMalformedPoint
	}
	if !p.KeyValidate() {
		return ErrNotInSubgroup
	}
	return nil
}

// Commitment validates a KZG commitment's point encoding.
func Commitment(c kzg.Commitment) error { return Point(c) }

// Proof validates a KZG proof's point encoding.
func Proof(p kzg.Proof) error { return Point(p) }

// Sidecar structurally validates every commitment and proof in a sidecar,
// returning the first failure encountered. Callers typically run this
// ahead of BlobSidecar.Validate to fail fast on malformed wire data
// without invoking the batch pairing verifier.
func Sidecar(s *kzg.BlobSidecar) error {
	for _, c := range s.Commitments {
		if err := Commitment(c); err != nil {
			return err
		}
	}
	for _, p := range s.Proofs {
		if err := Proof(p); err != nil {
			return err
		}
	}
	return nil
}
