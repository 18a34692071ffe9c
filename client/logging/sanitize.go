package logging

import "strings"

const redacted = "[redacted]"

// Sanitize redacts any string-valued field in kv (an alternating
// key/value list) that looks like raw key material: a 0x-prefixed hex
// blob of exactly 32 or 64 bytes, the shapes a private key or an
// extended/raw BIP32 key take. It never inspects non-string values, so
// hashes and addresses passed as hexutil types rather than bare strings
// pass through unexamined — callers logging sensitive values as strings
// are the one case this guards against.
func Sanitize(kv ...any) []any {
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 1; i < len(out); i += 2 {
		if s, ok := out[i].(string); ok && looksLikeKeyMaterial(s) {
			out[i] = redacted
		}
	}
	return out
}

func looksLikeKeyMaterial(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	digits := s[2:]
	for _, c := range digits {
		if !isHexDigit(c) {
			return false
		}
	}
	// 32 bytes = 64 hex digits (private key, 32-byte seed chunk),
	// 64 bytes = 128 hex digits (a raw extended key's key||chaincode pair).
	return len(digits) == 64 || len(digits) == 128
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
