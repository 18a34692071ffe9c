package types

import (
	"errors"

	"github.com/brane-sdk/brane/crypto"
)

// Errors returned by transaction encoding.
var (
	ErrNotEIP155Encoded           = errors.New("types: legacy transaction requires a non-zero chain id to encode an EIP-155 envelope")
	ErrContractCreationForbidden  = errors.New("types: blob transactions cannot create contracts")
	ErrBlobCountOutOfRange        = errors.New("types: blob transaction must carry between 1 and 6 blob hashes")
	ErrInvalidYParity             = errors.New("types: signature y-parity must be 0 or 1")
)

// TypeByte identifies a typed (post-EIP-2718) transaction's envelope byte.
type TypeByte byte

const (
	TypeLegacy    TypeByte = 0x00
	TypeEIP2930   TypeByte = 0x01
	TypeEIP1559   TypeByte = 0x02
	TypeEIP4844   TypeByte = 0x03
	TypeEIP7702   TypeByte = 0x04
)

func (t TypeByte) String() string {
	switch t {
	case TypeLegacy:
		return "legacy"
	case TypeEIP2930:
		return "eip2930"
	case TypeEIP1559:
		return "eip1559"
	case TypeEIP4844:
		return "eip4844"
	case TypeEIP7702:
		return "eip7702"
	default:
		return "unknown"
	}
}

// Transaction is the capability set every variant implements: the
// signing preimage for a given chain id, and the signed wire envelope
// once a signature over that preimage has been produced.
type Transaction interface {
	Type() TypeByte
	EncodeForSigning(chainID uint64) ([]byte, error)
	EncodeEnvelope(sig crypto.Signature) ([]byte, error)
}

func checkYParity(sig crypto.Signature) error {
	if sig.YParity > 1 {
		return ErrInvalidYParity
	}
	return nil
}
