package abi

import (
	"fmt"
	"math/big"

	"github.com/brane-sdk/brane/hexutil"
)

var wordOne = new(big.Int).Lsh(big.NewInt(1), 256)

// EncodeParameters encodes values against types using the head/tail
// layout: static fields inline, dynamic fields as a 32-byte offset in the
// head plus their body in the tail.
func EncodeParameters(types []Type, values []Value) ([]byte, error) {
	return encodeItems(types, values)
}

// EncodeCall encodes a function call: selector followed by its encoded
// arguments. When every argument type is static this writes directly into
// one pre-allocated buffer (the fast path); otherwise it falls back to the
// general head/tail encoder.
func EncodeCall(selector Selector, types []Type, values []Value) ([]byte, error) {
	if len(types) != len(values) {
		return nil, ErrParameterCountMismatch
	}
	if allStatic(types) {
		return encodeCallFastPath(selector, types, values)
	}
	body, err := encodeItems(types, values)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4+len(body))
	copy(out, selector[:])
	copy(out[4:], body)
	return out, nil
}

func allStatic(types []Type) bool {
	for _, t := range types {
		if t.IsDynamic() {
			return false
		}
	}
	return true
}

// encodeCallFastPath writes the selector and each static argument directly
// at its fixed offset in a single pre-sized buffer, with no intermediate
// head/tail bookkeeping.
func encodeCallFastPath(selector Selector, types []Type, values []Value) ([]byte, error) {
	width := 0
	for _, t := range types {
		width += headWidth(t) * 32
	}
	out := make([]byte, 4+width)
	copy(out, selector[:])
	offset := 4
	for i, t := range types {
		enc, err := encodeStatic(t, values[i])
		if err != nil {
			return nil, err
		}
		copy(out[offset:], enc)
		offset += len(enc)
	}
	return out, nil
}

// encodeItems implements the general head/tail encoder shared by
// top-level parameter lists, dynamic arrays, and dynamic tuples.
func encodeItems(types []Type, values []Value) ([]byte, error) {
	if len(types) != len(values) {
		return nil, ErrParameterCountMismatch
	}
	heads := make([][]byte, len(types))
	tails := make([][]byte, len(types))
	for i, t := range types {
		if t.IsDynamic() {
			body, err := encodeDynamic(t, values[i])
			if err != nil {
				return nil, err
			}
			heads[i] = make([]byte, 32)
			tails[i] = body
		} else {
			enc, err := encodeStatic(t, values[i])
			if err != nil {
				return nil, err
			}
			heads[i] = enc
			tails[i] = nil
		}
	}

	headLen := 0
	for _, h := range heads {
		headLen += len(h)
	}
	tailOffset := headLen
	for i, t := range types {
		if t.IsDynamic() {
			putUint256(heads[i], uint64(tailOffset))
			tailOffset += len(tails[i])
		}
	}

	out := make([]byte, 0, tailOffset)
	for _, h := range heads {
		out = append(out, h...)
	}
	for _, tl := range tails {
		out = append(out, tl...)
	}
	return out, nil
}

// encodeStatic encodes a value whose type is NOT dynamic: a number,
// address, bool, fixed-size bytes, or a fixed array/tuple built entirely
// from such types, inlined with no offset indirection.
func encodeStatic(t Type, v Value) ([]byte, error) {
	switch t.Kind {
	case KindUint:
		return encodeUint(t.Bits, v)
	case KindInt:
		return encodeInt(t.Bits, v)
	case KindAddress:
		addr, ok := v.(hexutil.Address)
		if !ok {
			return nil, fmt.Errorf("abi: %s: expected hexutil.Address, got %T", t, v)
		}
		word := make([]byte, 32)
		copy(word[12:], addr[:])
		return word, nil
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("abi: bool: expected bool, got %T", v)
		}
		word := make([]byte, 32)
		if b {
			word[31] = 1
		}
		return word, nil
	case KindFixedBytes:
		b, ok := v.([]byte)
		if !ok || len(b) != t.Size {
			return nil, fmt.Errorf("abi: %s: expected %d raw bytes", t, t.Size)
		}
		word := make([]byte, 32)
		copy(word, b)
		return word, nil
	case KindFixedArray:
		elems, ok := v.([]Value)
		if !ok || len(elems) != t.Size {
			return nil, fmt.Errorf("abi: %s: expected %d elements", t, t.Size)
		}
		out := make([]byte, 0, headWidth(t)*32)
		for _, e := range elems {
			enc, err := encodeStatic(*t.Elem, e)
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)
		}
		return out, nil
	case KindTuple:
		elems, ok := v.([]Value)
		if !ok || len(elems) != len(t.Components) {
			return nil, fmt.Errorf("abi: %s: expected %d components", t, len(t.Components))
		}
		out := make([]byte, 0, headWidth(t)*32)
		for i, c := range t.Components {
			enc, err := encodeStatic(c, elems[i])
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("abi: %s is not a static type", t)
	}
}

// encodeDynamic encodes the tail body of a dynamic value: length-prefixed
// payload for bytes/string, or a nested head/tail block for arrays, fixed
// arrays of dynamic elements, and tuples containing a dynamic element.
func encodeDynamic(t Type, v Value) ([]byte, error) {
	switch t.Kind {
	case KindBytes:
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("abi: bytes: expected []byte, got %T", v)
		}
		return lengthPrefixed(b), nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("abi: string: expected string, got %T", v)
		}
		return lengthPrefixed([]byte(s)), nil
	case KindArray:
		elems, ok := v.([]Value)
		if !ok {
			return nil, fmt.Errorf("abi: %s: expected []Value, got %T", t, v)
		}
		body, err := encodeItems(repeatType(*t.Elem, len(elems)), elems)
		if err != nil {
			return nil, err
		}
		lengthWord := make([]byte, 32)
		putUint256(lengthWord, uint64(len(elems)))
		return append(lengthWord, body...), nil
	case KindFixedArray:
		elems, ok := v.([]Value)
		if !ok || len(elems) != t.Size {
			return nil, fmt.Errorf("abi: %s: expected %d elements", t, t.Size)
		}
		return encodeItems(repeatType(*t.Elem, t.Size), elems)
	case KindTuple:
		elems, ok := v.([]Value)
		if !ok || len(elems) != len(t.Components) {
			return nil, fmt.Errorf("abi: %s: expected %d components", t, len(t.Components))
		}
		return encodeItems(t.Components, elems)
	default:
		return nil, fmt.Errorf("abi: %s is not a dynamic type", t)
	}
}

func lengthPrefixed(data []byte) []byte {
	lengthWord := make([]byte, 32)
	putUint256(lengthWord, uint64(len(data)))
	padded := ((len(data) + 31) / 32) * 32
	out := make([]byte, 32+padded)
	copy(out, lengthWord)
	copy(out[32:], data)
	return out
}

func repeatType(t Type, n int) []Type {
	out := make([]Type, n)
	for i := range out {
		out[i] = t
	}
	return out
}

func putUint256(dest []byte, v uint64) {
	big.NewInt(0).SetUint64(v).FillBytes(dest)
}

func encodeUint(bits int, v Value) ([]byte, error) {
	n, ok := toBigInt(v)
	if !ok {
		return nil, fmt.Errorf("abi: uint%d: unsupported value type %T", bits, v)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("abi: uint%d: negative value not allowed", bits)
	}
	word := make([]byte, 32)
	n.FillBytes(word)
	return word, nil
}

func encodeInt(bits int, v Value) ([]byte, error) {
	n, ok := toBigInt(v)
	if !ok {
		return nil, fmt.Errorf("abi: int%d: unsupported value type %T", bits, v)
	}
	word := make([]byte, 32)
	if n.Sign() >= 0 {
		n.FillBytes(word)
		return word, nil
	}
	twos := new(big.Int).Add(wordOne, n)
	twos.FillBytes(word)
	return word, nil
}

func toBigInt(v Value) (*big.Int, bool) {
	switch n := v.(type) {
	case *big.Int:
		return n, true
	case int64:
		return big.NewInt(n), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case int:
		return big.NewInt(int64(n)), true
	default:
		return nil, false
	}
}
