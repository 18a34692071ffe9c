// Package crypto provides the Keccak-256 hash function and secp256k1 key
// material used throughout the SDK: private keys, public keys, address
// derivation, deterministic signing, and recovery-id recovery.
package crypto

import (
	"hash"
	"sync"

	"golang.org/x/crypto/sha3"
)

// scratchPool holds reusable Keccak-256 hash.Hash instances, avoiding an
// allocation on every call for hot signing/hashing paths.
var scratchPool = sync.Pool{
	New: func() any { return sha3.NewLegacyKeccak256() },
}

// Keccak256 computes the Keccak-256 digest of the concatenation of data.
func Keccak256(data ...[]byte) [32]byte {
	h := scratchPool.Get().(hash.Hash)
	defer scratchPool.Put(h)
	h.Reset()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Cleanup clears a pooled scratch hash's state. Call it when a long-lived
// worker goroutine that used Keccak256 (e.g. one borrowed from a pool whose
// threads outlive the SDK's use of them) is about to be returned to its own
// pool, so no partial hash state lingers attached to it.
func Cleanup() {
	h := scratchPool.Get().(hash.Hash)
	h.Reset()
	scratchPool.Put(h)
}
