package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/brane-sdk/brane/hexutil"
)

// Errors returned by key material operations.
var (
	ErrZeroPrivateKey   = errors.New("crypto: private key is zero")
	ErrPrivateKeyRange  = errors.New("crypto: private key out of range [1, n-1]")
	ErrKeyDestroyed     = errors.New("crypto: private key has been destroyed")
	ErrInvalidSignature = errors.New("crypto: invalid signature")
	ErrRecoveryFailed   = errors.New("crypto: could not recover a public key")
)

// secp256k1 curve order n.
var curveOrder = secp256k1.S256().N

// curveHalfOrder is n/2, the boundary for low-s canonicalization (EIP-2).
var curveHalfOrder = new(big.Int).Rsh(curveOrder, 1)

// PrivateKey is a 32-byte secp256k1 scalar in [1, n-1]. It is created once,
// may sign many times, and must be explicitly destroyed (bytes zeroed) when
// no longer needed; any subsequent signing attempt then fails with
// ErrKeyDestroyed.
type PrivateKey struct {
	mu        sync.Mutex
	raw       [32]byte
	destroyed bool
}

// NewPrivateKey validates and wraps 32 raw bytes as a PrivateKey, rejecting
// zero and values >= the curve order.
func NewPrivateKey(raw [32]byte) (*PrivateKey, error) {
	if isZero(raw[:]) {
		return nil, ErrZeroPrivateKey
	}
	if new(big.Int).SetBytes(raw[:]).Cmp(curveOrder) >= 0 {
		return nil, ErrPrivateKeyRange
	}
	pk := &PrivateKey{}
	copy(pk.raw[:], raw[:])
	return pk, nil
}

// GeneratePrivateKey creates a new private key from a CSPRNG, retrying on
// the astronomically unlikely event of an out-of-range draw.
func GeneratePrivateKey() (*PrivateKey, error) {
	for {
		var raw [32]byte
		if _, err := rand.Read(raw[:]); err != nil {
			return nil, err
		}
		pk, err := NewPrivateKey(raw)
		if err == nil {
			return pk, nil
		}
	}
}

// Bytes returns a defensive copy of the raw scalar. Fails once destroyed.
func (pk *PrivateKey) Bytes() ([32]byte, error) {
	pk.mu.Lock()
	defer pk.mu.Unlock()
	if pk.destroyed {
		return [32]byte{}, ErrKeyDestroyed
	}
	var cp [32]byte
	copy(cp[:], pk.raw[:])
	return cp, nil
}

// IsDestroyed reports whether Destroy has been called.
func (pk *PrivateKey) IsDestroyed() bool {
	pk.mu.Lock()
	defer pk.mu.Unlock()
	return pk.destroyed
}

// Destroy zeroes the key material. Idempotent.
func (pk *PrivateKey) Destroy() {
	pk.mu.Lock()
	defer pk.mu.Unlock()
	if pk.destroyed {
		return
	}
	for i := range pk.raw {
		pk.raw[i] = 0
	}
	pk.destroyed = true
}

// decredKey returns the decred secp256k1 key, failing if destroyed.
func (pk *PrivateKey) decredKey() (*secp256k1.PrivateKey, error) {
	pk.mu.Lock()
	defer pk.mu.Unlock()
	if pk.destroyed {
		return nil, ErrKeyDestroyed
	}
	return secp256k1.PrivKeyFromBytes(pk.raw[:]), nil
}

// PublicKey derives the 64-byte uncompressed public key (X || Y, no 0x04
// prefix).
func (pk *PrivateKey) PublicKey() ([64]byte, error) {
	key, err := pk.decredKey()
	if err != nil {
		return [64]byte{}, err
	}
	uncompressed := key.PubKey().SerializeUncompressed()
	var out [64]byte
	copy(out[:], uncompressed[1:])
	return out, nil
}

// Address derives the Ethereum address: the low 20 bytes of
// Keccak-256(uncompressed_public_key[1:]).
func (pk *PrivateKey) Address() (hexutil.Address, error) {
	pub, err := pk.PublicKey()
	if err != nil {
		return hexutil.Address{}, err
	}
	return AddressFromPublicKey(pub), nil
}

// AddressFromPublicKey derives an Ethereum address from a 64-byte
// uncompressed public key (X || Y).
func AddressFromPublicKey(pub [64]byte) hexutil.Address {
	hash := Keccak256(pub[:])
	var addr hexutil.Address
	copy(addr[:], hash[12:])
	return addr
}

// Signature is an ECDSA signature (r, s, yParity) over secp256k1. s is
// always low-half canonical (s <= n/2) to prevent malleability; yParity is
// the raw 1-bit recovery indicator in {0, 1}, with on-wire v encoding left
// to the transaction envelope layer.
type Signature struct {
	R       [32]byte
	S       [32]byte
	YParity byte
}

// Sign deterministically (RFC 6979) signs a 32-byte digest. The result
// always has low-s; if the raw signature would have had high-s, s is
// replaced with n-s and the recovery parity is flipped to compensate,
// per EIP-2.
func (pk *PrivateKey) Sign(digest [32]byte) (Signature, error) {
	key, err := pk.decredKey()
	if err != nil {
		return Signature{}, err
	}

	// SignCompact yields [v(27/28) || r || s] with low-s already enforced
	// by decred's ecdsa package and the correct recovery id for that s.
	compact := ecdsa.SignCompact(key, digest[:], false)
	if len(compact) != 65 {
		return Signature{}, ErrInvalidSignature
	}

	var sig Signature
	copy(sig.R[:], compact[1:33])
	copy(sig.S[:], compact[33:65])
	sig.YParity = compact[0] - 27

	// Defense in depth: explicitly enforce low-s even though decred already
	// does, since the invariant is security-critical and the library's
	// internal contract could change.
	sVal := new(big.Int).SetBytes(sig.S[:])
	if sVal.Cmp(curveHalfOrder) > 0 {
		sVal.Sub(curveOrder, sVal)
		var flipped [32]byte
		sVal.FillBytes(flipped[:])
		sig.S = flipped
		sig.YParity ^= 1
	}

	return sig, nil
}

// RecoverAddress recovers the address that produced sig over digest. This
// is the canonical way to verify a signature: recover the candidate public
// key, derive its address, and compare in constant time.
func RecoverAddress(digest [32]byte, sig Signature) (hexutil.Address, error) {
	pub, err := RecoverPublicKey(digest, sig)
	if err != nil {
		return hexutil.Address{}, err
	}
	return AddressFromPublicKey(pub), nil
}

// RecoverPublicKey recovers the 64-byte uncompressed public key candidate
// from a digest and signature.
func RecoverPublicKey(digest [32]byte, sig Signature) ([64]byte, error) {
	if sig.YParity > 1 {
		return [64]byte{}, ErrInvalidSignature
	}
	compact := make([]byte, 65)
	compact[0] = 27 + sig.YParity
	copy(compact[1:33], sig.R[:])
	copy(compact[33:65], sig.S[:])

	pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return [64]byte{}, ErrRecoveryFailed
	}
	uncompressed := pub.SerializeUncompressed()
	var out [64]byte
	copy(out[:], uncompressed[1:])
	return out, nil
}

// VerifyAddress recovers sig's signer and compares it to expected using a
// constant-time byte comparison.
func VerifyAddress(digest [32]byte, sig Signature, expected hexutil.Address) (bool, error) {
	recovered, err := RecoverAddress(digest, sig)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(recovered[:], expected[:]) == 1, nil
}

func isZero(b []byte) bool {
	var v byte
	for _, x := range b {
		v |= x
	}
	return v == 0
}
