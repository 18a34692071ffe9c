package crypto

import "github.com/brane-sdk/brane/hexutil"

// Signer is the capability of exposing an address and signing digests.
// PrivateKeySigner is the sole concrete implementation.
type Signer interface {
	Address() hexutil.Address
	SignDigest(digest [32]byte) (Signature, error)
}

// PrivateKeySigner delegates its lifecycle entirely to an owned PrivateKey:
// destroying the signer destroys the key, and a destroyed signer's
// SignDigest fails with ErrKeyDestroyed.
type PrivateKeySigner struct {
	key     *PrivateKey
	address hexutil.Address
}

// NewPrivateKeySigner wraps an existing PrivateKey, caching its address.
func NewPrivateKeySigner(key *PrivateKey) (*PrivateKeySigner, error) {
	addr, err := key.Address()
	if err != nil {
		return nil, err
	}
	return &PrivateKeySigner{key: key, address: addr}, nil
}

// NewRandomSigner generates a fresh key and wraps it.
func NewRandomSigner() (*PrivateKeySigner, error) {
	key, err := GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return NewPrivateKeySigner(key)
}

// Address returns the signer's Ethereum address.
func (s *PrivateKeySigner) Address() hexutil.Address { return s.address }

// SignDigest signs a 32-byte digest with the owned private key.
func (s *PrivateKeySigner) SignDigest(digest [32]byte) (Signature, error) {
	return s.key.Sign(digest)
}

// Destroy destroys the owned private key. Idempotent.
func (s *PrivateKeySigner) Destroy() { s.key.Destroy() }

// IsDestroyed reports whether the owned private key has been destroyed.
func (s *PrivateKeySigner) IsDestroyed() bool { return s.key.IsDestroyed() }
