// Package hexutil provides hex encoding, zero-copy byte views, and the
// Address/Hash/Data primitives shared by the rest of the SDK.
package hexutil

import (
	"bytes"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
)

// Errors returned by hexutil parsing functions.
var (
	ErrMissingPrefix = errors.New("hexutil: hex string without 0x prefix")
	ErrOddLength     = errors.New("hexutil: hex string of odd length")
	ErrInvalidLength = errors.New("hexutil: invalid length for target type")
	ErrSyntax        = errors.New("hexutil: invalid hex character")
)

// Decode decodes a 0x-prefixed hex string into bytes. An empty "0x" decodes
// to an empty (non-nil) slice.
func Decode(s string) ([]byte, error) {
	if len(s) < 2 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return nil, ErrMissingPrefix
	}
	raw := s[2:]
	if len(raw)%2 != 0 {
		return nil, ErrOddLength
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return b, nil
}

// Encode encodes data as a lowercase 0x-prefixed hex string.
func Encode(data []byte) string {
	return "0x" + hex.EncodeToString(data)
}

// MustDecode decodes a hex string and panics on failure. Intended for
// constants and tests, never for parsing untrusted input.
func MustDecode(s string) []byte {
	b, err := Decode(s)
	if err != nil {
		panic("hexutil.MustDecode: " + err.Error())
	}
	return b
}

// Address is a 20-byte account identifier, always canonicalized to
// lowercase hex with a 0x prefix in its textual form.
type Address [20]byte

// ZERO is the sentinel zero address.
var ZERO Address

// AddressFromHex parses an address from its canonical 0x-prefixed, 40-hex-char
// form. Any other length is rejected; case is accepted on input (EIP-55
// checksums included) but not validated here.
func AddressFromHex(s string) (Address, error) {
	b, err := Decode(s)
	if err != nil {
		return Address{}, err
	}
	if len(b) != 20 {
		return Address{}, ErrInvalidLength
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// AddressFromBytes builds an Address from exactly 20 bytes.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, ErrInvalidLength
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// Hex returns the canonical lowercase 0x-prefixed representation.
func (a Address) Hex() string { return Encode(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// Bytes returns the address bytes.
func (a Address) Bytes() []byte { return a[:] }

// IsZero reports whether this is the zero address.
func (a Address) IsZero() bool { return a == ZERO }

// Equal does a constant-time comparison of two addresses.
func (a Address) Equal(b Address) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// Compare lexicographically orders two addresses.
func (a Address) Compare(b Address) int { return bytes.Compare(a[:], b[:]) }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := AddressFromHex(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a Address) MarshalJSON() ([]byte, error) { return []byte(`"` + a.Hex() + `"`), nil }

// UnmarshalJSON implements json.Unmarshaler.
func (a *Address) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrSyntax
	}
	return a.UnmarshalText(data[1 : len(data)-1])
}

// Hash is a 32-byte hash value (block, transaction, topic, or versioned
// blob hash) with the same validation discipline as Address.
type Hash [32]byte

// ZeroHash is the sentinel zero hash.
var ZeroHash Hash

// HashFromHex parses a Hash from its canonical 0x-prefixed, 64-hex-char form.
func HashFromHex(s string) (Hash, error) {
	b, err := Decode(s)
	if err != nil {
		return Hash{}, err
	}
	if len(b) != 32 {
		return Hash{}, ErrInvalidLength
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// HashFromBytes builds a Hash from exactly 32 bytes.
func HashFromBytes(b []byte) (Hash, error) {
	if len(b) != 32 {
		return Hash{}, ErrInvalidLength
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// Hex returns the canonical lowercase 0x-prefixed representation.
func (h Hash) Hex() string { return Encode(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// Bytes returns the hash bytes.
func (h Hash) Bytes() []byte { return h[:] }

// IsZero reports whether this is the zero hash.
func (h Hash) IsZero() bool { return h == ZeroHash }

// Equal does a constant-time comparison of two hashes.
func (h Hash) Equal(o Hash) bool { return subtle.ConstantTimeCompare(h[:], o[:]) == 1 }

// Compare lexicographically orders two hashes.
func (h Hash) Compare(o Hash) int { return bytes.Compare(h[:], o[:]) }

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (h Hash) MarshalJSON() ([]byte, error) { return []byte(`"` + h.Hex() + `"`), nil }

// UnmarshalJSON implements json.Unmarshaler.
func (h *Hash) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrSyntax
	}
	return h.UnmarshalText(data[1 : len(data)-1])
}

// Data is an arbitrary-length byte string (even hex length). Its string
// form is computed lazily and cached under a safe-publication discipline
// (sync.Once), since Data values are frequently constructed from raw bytes
// and never rendered, or rendered many times from multiple goroutines.
type Data struct {
	b        []byte
	hexOnce  sync.Once
	hexCache string
}

// Empty is the canonical empty Data value.
var Empty = Data{b: []byte{}}

// NewData wraps a defensive copy of b.
func NewData(b []byte) Data {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Data{b: cp}
}

// DataFromHex parses a Data value from a 0x-prefixed hex string.
func DataFromHex(s string) (Data, error) {
	b, err := Decode(s)
	if err != nil {
		return Data{}, err
	}
	return Data{b: b}, nil
}

// Bytes returns a defensive copy of the underlying bytes.
func (d *Data) Bytes() []byte {
	cp := make([]byte, len(d.b))
	copy(cp, d.b)
	return cp
}

// Len returns the byte length.
func (d *Data) Len() int { return len(d.b) }

// Hex returns the lazily computed, cached 0x-prefixed hex representation.
func (d *Data) Hex() string {
	d.hexOnce.Do(func() {
		d.hexCache = Encode(d.b)
	})
	return d.hexCache
}

// Equal compares Data by byte content regardless of construction path.
func (d *Data) Equal(o *Data) bool { return bytes.Equal(d.b, o.b) }

// PadLeft returns a copy of b left-padded with zero bytes to size. If b is
// already at or beyond size, a copy is returned unchanged.
func PadLeft(b []byte, size int) []byte {
	if len(b) >= size {
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}

// PadRight returns a copy of b right-padded with zero bytes to size.
func PadRight(b []byte, size int) []byte {
	if len(b) >= size {
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}

// TrimLeadingZeroes strips leading zero bytes, producing the minimal
// big-endian representation used throughout RLP and ABI integer encoding.
func TrimLeadingZeroes(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}
