package client

import (
	"context"
	"fmt"

	"github.com/brane-sdk/brane/abi"
	"github.com/brane-sdk/brane/hexutil"
)

// DefaultMulticallAddress is the canonical Multicall3 deployment address,
// identical across every chain it has been deployed to via the standard
// deterministic-deployer transaction.
var DefaultMulticallAddress = mustAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

func mustAddress(s string) hexutil.Address {
	a, err := hexutil.AddressFromHex(s)
	if err != nil {
		panic(err)
	}
	return a
}

var aggregate3Types = []abi.Type{
	abi.Array(abi.Tuple(abi.Address, abi.Bool, abi.Bytes)),
}

var aggregate3ResultTypes = []abi.Type{
	abi.Array(abi.Tuple(abi.Bool, abi.Bytes)),
}

var aggregate3Selector = abi.ComputeSelector(abi.Signature("aggregate3", aggregate3Types))

// MulticallResult is one call's outcome within a batch: Success mirrors
// Multicall3's per-call flag (false on a reverted call when
// allowFailure was set), ReturnData is the raw eth_call output.
type MulticallResult struct {
	Success    bool
	ReturnData []byte
}

// MulticallBuilder accumulates calls against a known aggregator contract
// and issues them as a single eth_call, preserving caller ordering in
// its results. It is an explicit builder object rather than proxy-style
// thread-local call recording, so a panic or error between Add calls
// cannot leak partial state into an unrelated batch sharing the same
// goroutine.
type MulticallBuilder struct {
	reader         *Reader
	aggregatorAddr hexutil.Address
	calls          []CallMsg
	allowFailure   []bool
}

// Multicall starts a new batch builder against DefaultMulticallAddress.
func (r *Reader) Multicall() *MulticallBuilder {
	return r.MulticallAt(DefaultMulticallAddress)
}

// MulticallAt starts a new batch builder against a caller-supplied
// aggregator contract address, for chains where Multicall3 is deployed
// somewhere other than its canonical address.
func (r *Reader) MulticallAt(aggregator hexutil.Address) *MulticallBuilder {
	return &MulticallBuilder{reader: r, aggregatorAddr: aggregator}
}

// Add appends a call to the batch. allowFailure mirrors Multicall3's
// per-call flag: when false, a reverting call aborts the entire batch
// instead of surfacing as a failed MulticallResult.
func (b *MulticallBuilder) Add(msg CallMsg, allowFailure bool) *MulticallBuilder {
	b.calls = append(b.calls, msg)
	b.allowFailure = append(b.allowFailure, allowFailure)
	return b
}

// Execute issues the accumulated calls as a single eth_call against the
// aggregator contract at block, returning one MulticallResult per Add
// call in the order it was added.
func (b *MulticallBuilder) Execute(ctx context.Context, block BlockRef) ([]MulticallResult, error) {
	if len(b.calls) == 0 {
		return nil, nil
	}

	elems := make([]abi.Value, len(b.calls))
	for i, c := range b.calls {
		var to hexutil.Address
		if c.To != nil {
			to = *c.To
		}
		elems[i] = []abi.Value{to, b.allowFailure[i], c.Data}
	}

	callData, err := abi.EncodeCall(aggregate3Selector, aggregate3Types, []abi.Value{elems})
	if err != nil {
		return nil, fmt.Errorf("client: encode multicall batch: %w", err)
	}

	out, err := b.reader.Call(ctx, CallMsg{To: &b.aggregatorAddr, Data: callData}, block)
	if err != nil {
		return nil, err
	}

	values, err := abi.DecodeParameters(aggregate3ResultTypes, out)
	if err != nil {
		return nil, fmt.Errorf("client: decode multicall results: %w", err)
	}
	rawResults, ok := values[0].([]abi.Value)
	if !ok {
		return nil, fmt.Errorf("client: decode multicall results: unexpected shape %T", values[0])
	}

	results := make([]MulticallResult, len(rawResults))
	for i, rv := range rawResults {
		tuple, ok := rv.([]abi.Value)
		if !ok || len(tuple) != 2 {
			return nil, fmt.Errorf("client: decode multicall result %d: unexpected shape", i)
		}
		success, _ := tuple[0].(bool)
		data, _ := tuple[1].([]byte)
		results[i] = MulticallResult{Success: success, ReturnData: data}
	}
	return results, nil
}
