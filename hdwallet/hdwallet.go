// Package hdwallet derives secp256k1 private keys from BIP-39 mnemonics
// along BIP-32 paths, with the BIP-44 Ethereum convention
// (m/44'/60'/account'/0/addressIndex) as a first-class shortcut.
//
// Mnemonic and seed handling defer to tyler-smith/go-bip39 and
// tyler-smith/go-bip32 for the wordlist, checksum, and HMAC-SHA512 child
// derivation arithmetic; this package adds path parsing, the Ethereum
// account convention, and zeroing of intermediate key material.
package hdwallet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	"github.com/brane-sdk/brane/crypto"
)

// HardenedOffset is added to a path segment's index to mark it hardened,
// per BIP-32 (mirrors bip32.FirstHardenedChild).
const HardenedOffset = uint32(0x80000000)

// EthereumCoinType is the BIP-44 coin type registered for Ethereum (ETH).
const EthereumCoinType = uint32(60)

var (
	ErrInvalidMnemonic  = errors.New("hdwallet: invalid mnemonic")
	ErrInvalidWordCount = errors.New("hdwallet: word count must be one of 12, 15, 18, 21, 24")
	ErrInvalidPath      = errors.New("hdwallet: malformed derivation path")
	ErrDerivationFailed = errors.New("hdwallet: child key derivation failed")
	ErrEmptySeed        = errors.New("hdwallet: seed must not be empty")
)

// entropyBitsForWordCount maps a mnemonic word count to the BIP-39 entropy
// size that produces it.
var entropyBitsForWordCount = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// GenerateMnemonic produces a fresh BIP-39 mnemonic with wordCount words
// (one of 12, 15, 18, 21, 24).
func GenerateMnemonic(wordCount int) (string, error) {
	bits, ok := entropyBitsForWordCount[wordCount]
	if !ok {
		return "", ErrInvalidWordCount
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("hdwallet: generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("hdwallet: build mnemonic: %w", err)
	}
	return mnemonic, nil
}

// SeedFromMnemonic validates mnemonic against the BIP-39 English wordlist
// and checksum, then stretches it (with an optional passphrase) into a
// 64-byte seed via PBKDF2-HMAC-SHA512.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	normalized := strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(normalized) {
		return nil, ErrInvalidMnemonic
	}
	return bip39.NewSeed(normalized, passphrase), nil
}

// PathSegment is one component of a derivation path: an index plus whether
// it is hardened (denoted by a trailing ' in the textual path).
type PathSegment struct {
	Index    uint32
	Hardened bool
}

// ParsePath parses a textual BIP-32 path such as "m/44'/60'/0'/0/0" into its
// segments. The leading "m" (master) is required; each subsequent component
// is a decimal index with an optional trailing "'" or "h" hardened marker.
func ParsePath(path string) ([]PathSegment, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, ErrInvalidPath
	}
	segments := make([]PathSegment, 0, len(parts)-1)
	for _, raw := range parts[1:] {
		if raw == "" {
			return nil, ErrInvalidPath
		}
		hardened := false
		numeric := raw
		if last := raw[len(raw)-1]; last == '\'' || last == 'h' || last == 'H' {
			hardened = true
			numeric = raw[:len(raw)-1]
		}
		idx, err := strconv.ParseUint(numeric, 10, 32)
		if err != nil {
			return nil, ErrInvalidPath
		}
		if idx >= HardenedOffset {
			return nil, ErrInvalidPath
		}
		segments = append(segments, PathSegment{Index: uint32(idx), Hardened: hardened})
	}
	return segments, nil
}

// EthereumAccountPath builds the standard BIP-44 Ethereum path
// m/44'/60'/account'/0/addressIndex.
func EthereumAccountPath(account, addressIndex uint32) string {
	return fmt.Sprintf("m/44'/%d'/%d'/0/%d", EthereumCoinType, account, addressIndex)
}

// DerivePath walks seed down path, zeroing the (key, chain-code) pair of
// every node it derives (master, intermediates, and the leaf once its key
// has been copied out; the seed itself is left untouched), and returns the
// leaf as a PrivateKey ready for signing.
func DerivePath(seed []byte, path string) (*crypto.PrivateKey, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	segments, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	node, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: master key: %v", ErrDerivationFailed, err)
	}

	for _, seg := range segments {
		childIdx := seg.Index
		if seg.Hardened {
			childIdx += HardenedOffset
		}
		next, err := node.NewChildKey(childIdx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDerivationFailed, err)
		}
		zeroKey(node)
		node = next
	}

	var raw [32]byte
	copy(raw[:], node.Key)
	pk, err := crypto.NewPrivateKey(raw)
	zeroKey(node)
	for i := range raw {
		raw[i] = 0
	}
	return pk, err
}

// DeriveEthereumAccount derives the private key at the standard BIP-44
// Ethereum path m/44'/60'/account'/0/addressIndex.
func DeriveEthereumAccount(seed []byte, account, addressIndex uint32) (*crypto.PrivateKey, error) {
	return DerivePath(seed, EthereumAccountPath(account, addressIndex))
}

// zeroKey overwrites a bip32.Key's secret material in place. No bip32
// node is ever returned to callers; this scrubs the nodes DerivePath
// derived once it no longer needs them.
func zeroKey(k *bip32.Key) {
	if k == nil {
		return
	}
	for i := range k.Key {
		k.Key[i] = 0
	}
	for i := range k.ChainCode {
		k.ChainCode[i] = 0
	}
}
