// Package abi implements the Ethereum contract ABI: a typed schema
// (Type/Kind), a head/tail encoder with a fast path for all-static
// function calls, and a bounds-safe decoder that never allocates on the
// strength of attacker-controlled offsets or lengths alone.
package abi

import "fmt"

// Kind enumerates the ABI type families this codec understands.
type Kind int

const (
	KindUint Kind = iota
	KindInt
	KindAddress
	KindBool
	KindFixedBytes
	KindBytes
	KindString
	KindFixedArray
	KindArray
	KindTuple
)

// Type is an ABI type: uint<N>/int<N> carry Bits, bytes<N> and fixed-size
// arrays carry Size, arrays and fixed arrays carry Elem, tuples carry
// Components.
type Type struct {
	Kind       Kind
	Bits       int
	Size       int
	Elem       *Type
	Components []Type
}

func Uint(bits int) Type        { return Type{Kind: KindUint, Bits: bits} }
func Int(bits int) Type         { return Type{Kind: KindInt, Bits: bits} }
func FixedBytes(n int) Type     { return Type{Kind: KindFixedBytes, Size: n} }
func FixedArray(elem Type, n int) Type {
	return Type{Kind: KindFixedArray, Size: n, Elem: &elem}
}
func Array(elem Type) Type           { return Type{Kind: KindArray, Elem: &elem} }
func Tuple(components ...Type) Type  { return Type{Kind: KindTuple, Components: components} }

var (
	Address = Type{Kind: KindAddress}
	Bool    = Type{Kind: KindBool}
	Bytes   = Type{Kind: KindBytes}
	String  = Type{Kind: KindString}
)

// IsDynamic reports whether t requires head/tail (offset-indirected)
// encoding: bytes, string, variable-size arrays, or any aggregate that
// contains a dynamic element.
func (t Type) IsDynamic() bool {
	switch t.Kind {
	case KindBytes, KindString, KindArray:
		return true
	case KindFixedArray:
		return t.Elem.IsDynamic()
	case KindTuple:
		for _, c := range t.Components {
			if c.IsDynamic() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// String renders the canonical Solidity type signature, e.g. "uint256",
// "bytes32[3]", "(address,uint256)[]".
func (t Type) String() string {
	switch t.Kind {
	case KindUint:
		return fmt.Sprintf("uint%d", t.Bits)
	case KindInt:
		return fmt.Sprintf("int%d", t.Bits)
	case KindAddress:
		return "address"
	case KindBool:
		return "bool"
	case KindFixedBytes:
		return fmt.Sprintf("bytes%d", t.Size)
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindFixedArray:
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Size)
	case KindArray:
		return fmt.Sprintf("%s[]", t.Elem.String())
	case KindTuple:
		s := "("
		for i, c := range t.Components {
			if i > 0 {
				s += ","
			}
			s += c.String()
		}
		return s + ")"
	default:
		return "?"
	}
}

// Value is the decoded/encodable representation for an ABI value:
//   - KindUint/KindInt  -> *big.Int
//   - KindAddress       -> hexutil.Address
//   - KindBool          -> bool
//   - KindFixedBytes    -> []byte (len == Size)
//   - KindBytes         -> []byte
//   - KindString        -> string
//   - KindFixedArray/KindArray -> []Value
//   - KindTuple         -> []Value (one per Component)
type Value any

// headWidth is the number of 32-byte words a value occupies in the head
// when it is NOT dynamic (dynamic values always occupy exactly one word,
// the offset).
func headWidth(t Type) int {
	if t.IsDynamic() {
		return 1
	}
	switch t.Kind {
	case KindFixedArray:
		total := 0
		for i := 0; i < t.Size; i++ {
			total += headWidth(*t.Elem)
		}
		return total
	case KindTuple:
		total := 0
		for _, c := range t.Components {
			total += headWidth(c)
		}
		return total
	default:
		return 1
	}
}
