// Package types implements the Ethereum transaction envelope family:
// Legacy, EIP-2930, EIP-1559, EIP-4844, and EIP-7702. Each variant
// provides EncodeForSigning(chainID) for the hash that gets signed and
// EncodeEnvelope(signature) for the broadcastable wire form, per the
// RLP layouts fixed by their respective EIPs.
package types

import (
	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/rlp"
)

// AccessListEntry grants an address storage-slot-level gas discounts
// under EIP-2930.
type AccessListEntry struct {
	Address     hexutil.Address
	StorageKeys []hexutil.Hash
}

// AccessList is an ordered set of access list entries.
type AccessList []AccessListEntry

func encodeAccessList(list AccessList) []byte {
	entries := make([][]byte, len(list))
	for i, e := range list {
		keys := make([][]byte, len(e.StorageKeys))
		for j, k := range e.StorageKeys {
			keys[j] = rlp.EncodeBytes(k[:])
		}
		entries[i] = rlp.EncodeList(rlp.EncodeBytes(e.Address[:]), rlp.EncodeList(keys...))
	}
	return rlp.EncodeList(entries...)
}

// Authorization is an EIP-7702 authorization tuple: a signed statement
// that an EOA's code should point at Address for the remainder of Nonce's
// validity on ChainID (ChainID == 0 means "any chain").
type Authorization struct {
	ChainID uint64
	Address hexutil.Address
	Nonce   uint64
	YParity byte
	R       [32]byte
	S       [32]byte
}

func encodeAuthorizationList(list []Authorization) []byte {
	entries := make([][]byte, len(list))
	for i, a := range list {
		entries[i] = rlp.EncodeList(
			rlp.EncodeUint64(a.ChainID),
			rlp.EncodeBytes(a.Address[:]),
			rlp.EncodeUint64(a.Nonce),
			rlp.EncodeUint64(uint64(a.YParity)),
			rlp.EncodeBytes(hexutil.TrimLeadingZeroes(a.R[:])),
			rlp.EncodeBytes(hexutil.TrimLeadingZeroes(a.S[:])),
		)
	}
	return rlp.EncodeList(entries...)
}

func encodeTo(to *hexutil.Address) []byte {
	if to == nil {
		return rlp.EncodeBytes(nil)
	}
	return rlp.EncodeBytes(to[:])
}
