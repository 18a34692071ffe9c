package abi

import (
	"encoding/binary"
	"math/big"

	"github.com/brane-sdk/brane/hexutil"
)

// DecodeParameters decodes data against types. Every offset and length it
// reads is bounds-checked before use: a hostile offset or length can
// reject the whole decode, but it can never drive an allocation or a
// slice read past the end of data.
func DecodeParameters(types []Type, data []byte) ([]Value, error) {
	return decodeItems(types, data)
}

// DecodeCall strips a 4-byte selector and decodes the remaining calldata
// against types.
func DecodeCall(types []Type, data []byte) (Selector, []Value, error) {
	if len(data) < 4 {
		return Selector{}, nil, &DecodingError{Fault: BufferTooShort, Detail: "calldata shorter than a selector"}
	}
	var sel Selector
	copy(sel[:], data[:4])
	values, err := decodeItems(types, data[4:])
	return sel, values, err
}

// decodeItems decodes types against data, where data is exactly the
// window starting at the enclosing encoding's head (top-level parameters,
// a dynamic array's element list, or a dynamic tuple's fields).
func decodeItems(types []Type, data []byte) ([]Value, error) {
	values := make([]Value, len(types))
	offset := 0
	for i, t := range types {
		if t.IsDynamic() {
			word, err := readWord(data, offset)
			if err != nil {
				return nil, err
			}
			bodyOffset, err := decodeOffset(word, len(data))
			if err != nil {
				return nil, err
			}
			val, err := decodeDynamicValue(t, data, bodyOffset)
			if err != nil {
				return nil, err
			}
			values[i] = val
			offset += 32
		} else {
			val, consumed, err := decodeStaticAt(t, data, offset)
			if err != nil {
				return nil, err
			}
			values[i] = val
			offset += consumed
		}
	}
	return values, nil
}

// readWord reads one 32-byte word at offset, refusing to read past data.
func readWord(data []byte, offset int) ([]byte, error) {
	if offset < 0 || offset > len(data) || uint64(offset)+32 > uint64(len(data)) {
		return nil, &DecodingError{Fault: BufferTooShort, Offset: uint64(offset), Detail: "word read exceeds buffer"}
	}
	return data[offset : offset+32], nil
}

// decodeOffset interprets a 32-byte word as a byte offset into a buffer of
// length dataLen. It never allocates: it rejects before any length-driven
// allocation could occur.
func decodeOffset(word []byte, dataLen int) (int, error) {
	for i := 0; i < 24; i++ {
		if word[i] != 0 {
			return 0, &DecodingError{Fault: OffsetTooLarge, Detail: "offset word exceeds platform pointer width"}
		}
	}
	val := binary.BigEndian.Uint64(word[24:32])
	if val > uint64(dataLen) {
		return 0, &DecodingError{Fault: OffsetOutOfBounds, Offset: val, Detail: "offset exceeds buffer length"}
	}
	return int(val), nil
}

// decodeLength interprets a 32-byte word as a declared length, rejecting
// it before it could be used to size an allocation if start+length would
// exceed dataLen.
func decodeLength(word []byte, start, dataLen int) (int, error) {
	for i := 0; i < 24; i++ {
		if word[i] != 0 {
			return 0, &DecodingError{Fault: OffsetTooLarge, Detail: "length word exceeds platform pointer width"}
		}
	}
	val := binary.BigEndian.Uint64(word[24:32])
	padded := (val + 31) / 32 * 32
	if val > uint64(dataLen) || uint64(start)+padded > uint64(dataLen) {
		return 0, &DecodingError{Fault: LengthOutOfBounds, Offset: val, Detail: "declared length exceeds buffer"}
	}
	return int(val), nil
}

// decodeDynamicValue decodes the tail body of a dynamic value starting at
// bodyOffset within data.
func decodeDynamicValue(t Type, data []byte, bodyOffset int) (Value, error) {
	switch t.Kind {
	case KindBytes:
		lengthWord, err := readWord(data, bodyOffset)
		if err != nil {
			return nil, err
		}
		length, err := decodeLength(lengthWord, bodyOffset+32, len(data))
		if err != nil {
			return nil, err
		}
		out := make([]byte, length)
		copy(out, data[bodyOffset+32:bodyOffset+32+length])
		return out, nil
	case KindString:
		b, err := decodeDynamicValue(Bytes, data, bodyOffset)
		if err != nil {
			return nil, err
		}
		return string(b.([]byte)), nil
	case KindArray:
		lengthWord, err := readWord(data, bodyOffset)
		if err != nil {
			return nil, err
		}
		// An array element list's minimum footprint is one head word per
		// element; reject absurd counts before allocating the types slice.
		for i := 0; i < 24; i++ {
			if lengthWord[i] != 0 {
				return nil, &DecodingError{Fault: OffsetTooLarge, Detail: "array length exceeds platform pointer width"}
			}
		}
		count := binary.BigEndian.Uint64(lengthWord[24:32])
		if count > uint64(len(data)-bodyOffset-32) {
			return nil, &DecodingError{Fault: LengthOutOfBounds, Offset: count, Detail: "array length incompatible with remaining buffer"}
		}
		elems, err := decodeItems(repeatType(*t.Elem, int(count)), data[bodyOffset+32:])
		if err != nil {
			return nil, err
		}
		return elems, nil
	case KindFixedArray:
		return decodeItems(repeatType(*t.Elem, t.Size), data[bodyOffset:])
	case KindTuple:
		return decodeItems(t.Components, data[bodyOffset:])
	default:
		return nil, &DecodingError{Fault: BufferTooShort, Detail: t.String() + " is not a dynamic type"}
	}
}

// decodeStaticAt decodes a non-dynamic value at offset, returning the
// number of bytes consumed from the head.
func decodeStaticAt(t Type, data []byte, offset int) (Value, int, error) {
	switch t.Kind {
	case KindUint:
		word, err := readWord(data, offset)
		if err != nil {
			return nil, 0, err
		}
		return new(big.Int).SetBytes(word), 32, nil
	case KindInt:
		word, err := readWord(data, offset)
		if err != nil {
			return nil, 0, err
		}
		v := new(big.Int).SetBytes(word)
		if word[0]&0x80 != 0 {
			v.Sub(v, wordOne)
		}
		return v, 32, nil
	case KindAddress:
		word, err := readWord(data, offset)
		if err != nil {
			return nil, 0, err
		}
		var addr hexutil.Address
		copy(addr[:], word[12:32])
		return addr, 32, nil
	case KindBool:
		word, err := readWord(data, offset)
		if err != nil {
			return nil, 0, err
		}
		for _, b := range word[:31] {
			if b != 0 {
				return nil, 0, &DecodingError{Fault: InvalidBoolValue, Offset: uint64(offset), Detail: "non-canonical bool encoding"}
			}
		}
		switch word[31] {
		case 0:
			return false, 32, nil
		case 1:
			return true, 32, nil
		default:
			return nil, 0, &DecodingError{Fault: InvalidBoolValue, Offset: uint64(offset), Detail: "bool word is not 0 or 1"}
		}
	case KindFixedBytes:
		word, err := readWord(data, offset)
		if err != nil {
			return nil, 0, err
		}
		for _, b := range word[t.Size:] {
			if b != 0 {
				return nil, 0, &DecodingError{Fault: NonZeroPadding, Offset: uint64(offset), Detail: "bytesN trailing padding must be zero"}
			}
		}
		out := make([]byte, t.Size)
		copy(out, word[:t.Size])
		return out, 32, nil
	case KindFixedArray:
		elems := make([]Value, t.Size)
		pos := offset
		for i := 0; i < t.Size; i++ {
			val, consumed, err := decodeStaticAt(*t.Elem, data, pos)
			if err != nil {
				return nil, 0, err
			}
			elems[i] = val
			pos += consumed
		}
		return elems, pos - offset, nil
	case KindTuple:
		elems := make([]Value, len(t.Components))
		pos := offset
		for i, c := range t.Components {
			val, consumed, err := decodeStaticAt(c, data, pos)
			if err != nil {
				return nil, 0, err
			}
			elems[i] = val
			pos += consumed
		}
		return elems, pos - offset, nil
	default:
		return nil, 0, &DecodingError{Fault: BufferTooShort, Offset: uint64(offset), Detail: t.String() + " is not a static type"}
	}
}
