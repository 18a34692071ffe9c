package rpc

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/brane-sdk/brane/abi"
)

// Transport-level faults: the connection or the wire, not the node's
// application logic.
var (
	ErrConnectionLost = errors.New("rpc: connection lost")
	ErrTimeout        = errors.New("rpc: request timed out")
)

// HttpStatusError reports a non-2xx HTTP response to a JSON-RPC call over
// the pooled transport.
type HttpStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HttpStatusError) Error() string {
	return fmt.Sprintf("rpc: http status %d", e.StatusCode)
}

// RpcException is the application-level error a node reports in a
// response's error object: `{code, message, data}`. It wraps the wire
// Error verbatim.
type RpcException struct {
	Code    int
	Message string
	Data    []byte
}

func (e *RpcException) Error() string {
	return fmt.Sprintf("rpc exception %d: %s", e.Code, e.Message)
}

// Standard revert selectors per Solidity's ABI encoding of built-in
// reverts.
var (
	errorStringSelector  = [4]byte{0x08, 0xc3, 0x79, 0xa0}
	panicUint256Selector = [4]byte{0x4e, 0x48, 0x7b, 0x71}
)

// Revert specializes RpcException when the node reports execution-reverted
// data: Reason holds the decoded message for a standard Error(string)
// revert, Selector the raw 4-byte discriminator, and Data the full
// undecoded payload for a custom application error.
type Revert struct {
	Reason   string
	Selector abi.Selector
	Data     []byte
}

func (e *Revert) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("execution reverted: %s", e.Reason)
	}
	return fmt.Sprintf("execution reverted: selector %s", hex.EncodeToString(e.Selector[:]))
}

// revertDataField is the shape of a geth-style error payload's "data"
// member when it carries encoded revert bytes as a hex string rather than
// structured JSON.
type revertDataField struct {
	Data string `json:"data"`
}

// ClassifyError turns a node-reported Error into an RpcException, or a
// Revert when its data decodes as a standard Solidity revert payload.
// Custom error selectors are surfaced with their raw Data intact — only
// the two built-in selectors (Error(string), Panic(uint256)) get their
// reason decoded.
func ClassifyError(e *Error) error {
	revertData := extractRevertData(e.Data)
	if len(revertData) < 4 {
		return &RpcException{Code: e.Code, Message: e.Message, Data: revertData}
	}

	var sel abi.Selector
	copy(sel[:], revertData[:4])

	r := &Revert{Selector: sel, Data: revertData}
	switch sel {
	case errorStringSelector:
		values, err := abi.DecodeParameters([]abi.Type{abi.String}, revertData[4:])
		if err == nil && len(values) == 1 {
			if s, ok := values[0].(string); ok {
				r.Reason = s
			}
		}
	case panicUint256Selector:
		values, err := abi.DecodeParameters([]abi.Type{abi.Uint(256)}, revertData[4:])
		if err == nil && len(values) == 1 {
			r.Reason = fmt.Sprintf("panic code %v", values[0])
		}
	}
	return r
}

// extractRevertData pulls raw revert bytes out of a node error's data
// field, which different clients encode either as a bare hex string or as
// {"data": "0x..."}.
func extractRevertData(raw []byte) []byte {
	if len(raw) == 0 {
		return nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return decodeHexLenient(asString)
	}
	var wrapped revertDataField
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != "" {
		return decodeHexLenient(wrapped.Data)
	}
	return nil
}

// decodeHexLenient decodes a 0x-prefixed hex string, returning nil rather
// than an error on malformed input: revert-data extraction is a
// best-effort convenience, never load-bearing for correctness.
func decodeHexLenient(s string) []byte {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 != 0 {
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
