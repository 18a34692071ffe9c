package client

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
)

// Ethereum JSON-RPC "quantity" values are hex-encoded big-endian integers
// with a 0x prefix and no leading zeroes (and, unlike hexutil's
// byte-aligned Data, may carry an odd number of hex digits) — distinct
// from "data" values like calldata or hashes, which hexutil.Decode
// already handles.

func parseQuantity(s string) (uint64, error) {
	if len(s) < 2 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return 0, fmt.Errorf("client: %q is not a 0x-prefixed quantity", s)
	}
	return strconv.ParseUint(s[2:], 16, 64)
}

func formatQuantity(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

func parseQuantityBig(s string) (*uint256.Int, error) {
	v := new(uint256.Int)
	if err := v.SetFromHex(s); err != nil {
		return nil, fmt.Errorf("client: parse quantity %q: %w", s, err)
	}
	return v, nil
}

func formatQuantityBig(v *uint256.Int) string {
	if v == nil {
		return "0x0"
	}
	return v.Hex() // uint256.Hex already emits "0x"-prefixed, leading-zero-trimmed hex
}
