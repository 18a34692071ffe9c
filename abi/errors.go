package abi

import "fmt"

// DecodeFault classifies why a decode attempt was rejected.
type DecodeFault string

const (
	OffsetOutOfBounds DecodeFault = "OffsetOutOfBounds"
	OffsetTooLarge    DecodeFault = "OffsetTooLarge"
	LengthOutOfBounds DecodeFault = "LengthOutOfBounds"
	BufferTooShort    DecodeFault = "BufferTooShort"
	InvalidBoolValue  DecodeFault = "InvalidBoolValue"
	NonZeroPadding    DecodeFault = "NonZeroPadding"
	ParameterMismatch DecodeFault = "ParameterMismatch"
)

// DecodingError is returned for every rejected decode. It never carries
// the attacker-controlled offset/length that triggered it as anything
// other than diagnostic metadata: the Fault alone determines control
// flow, so callers never need to parse Detail.
type DecodingError struct {
	Fault  DecodeFault
	Offset uint64
	Detail string
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("abi: decode failed (%s) at offset %d: %s", e.Fault, e.Offset, e.Detail)
}

// ErrParameterCountMismatch is returned when the number of values passed
// to an encoder does not match the schema's arity.
var ErrParameterCountMismatch = &DecodingError{Fault: ParameterMismatch, Detail: "value count does not match schema"}
