package abi

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/brane-sdk/brane/crypto"
)

// Selector is a 4-byte function or error selector.
type Selector [4]byte

const selectorCacheSize = 1024

var (
	selectorCacheOnce sync.Once
	selectorCache     *lru.Cache[string, Selector]
)

func cache() *lru.Cache[string, Selector] {
	selectorCacheOnce.Do(func() {
		selectorCache, _ = lru.New[string, Selector](selectorCacheSize)
	})
	return selectorCache
}

// Signature renders a canonical "name(type,type,...)" signature.
func Signature(name string, params []Type) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// ComputeSelector returns the 4-byte selector for signature, the first
// 4 bytes of its Keccak-256 hash. Results are memoized in a bounded LRU
// since ABI codecs recompute the same handful of signatures on every
// call in hot paths (multicall batches, repeated contract calls).
func ComputeSelector(signature string) Selector {
	if sel, ok := cache().Get(signature); ok {
		return sel
	}
	digest := crypto.Keccak256([]byte(signature))
	var sel Selector
	copy(sel[:], digest[:4])
	cache().Add(signature, sel)
	return sel
}

// FunctionSelector computes the selector for a named function over params.
func FunctionSelector(name string, params []Type) Selector {
	return ComputeSelector(Signature(name, params))
}
