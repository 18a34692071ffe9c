package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/brane-sdk/brane/gas"
	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/retry"
	"github.com/brane-sdk/brane/rpc"
	"github.com/brane-sdk/brane/types"
)

// Reader is the read-only capability every client variant carries: every
// Signer embeds one, and every Tester wraps one. It owns nothing a Signer
// doesn't also need, so send_transaction's orchestration (reader.go's own
// ChainID/BalanceAt/etc. plus the gas strategy) is shared code, not
// duplicated between variants.
type Reader struct {
	cfg      Config
	chainIDs *chainIDCache
}

// NewReader builds a read-only client over cfg.Transport.
func NewReader(cfg Config) *Reader {
	cfg = cfg.withDefaults()
	return &Reader{cfg: cfg, chainIDs: newChainIDCache(cfg)}
}

func (r *Reader) doRetry(ctx context.Context, v any, method string, params ...any) error {
	return retry.Do(ctx, r.cfg.Retry, func(ctx context.Context) error {
		return call(ctx, r.cfg.Transport, v, method, params...)
	})
}

// ChainID returns the node's chain id, resolved once and cached for the
// lifetime of the client (concurrent first callers single-flight onto one
// round trip).
func (r *Reader) ChainID(ctx context.Context) (uint64, error) {
	return r.chainIDs.chainID(ctx)
}

// BlockNumber returns the number of the chain's most recent block.
func (r *Reader) BlockNumber(ctx context.Context) (uint64, error) {
	var hex string
	if err := r.doRetry(ctx, &hex, rpc.MethodBlockNumber); err != nil {
		return 0, err
	}
	return parseQuantity(hex)
}

// BalanceAt returns addr's wei balance as of block.
func (r *Reader) BalanceAt(ctx context.Context, addr hexutil.Address, block BlockRef) (*uint256.Int, error) {
	var hex string
	if err := r.doRetry(ctx, &hex, rpc.MethodGetBalance, addr.Hex(), string(blockOrLatest(block))); err != nil {
		return nil, err
	}
	return parseQuantityBig(hex)
}

// NonceAt returns addr's transaction count as of block — the next nonce
// to use is exactly this value.
func (r *Reader) NonceAt(ctx context.Context, addr hexutil.Address, block BlockRef) (uint64, error) {
	var hex string
	if err := r.doRetry(ctx, &hex, rpc.MethodGetTransactionCount, addr.Hex(), string(blockOrLatest(block))); err != nil {
		return 0, err
	}
	return parseQuantity(hex)
}

// BlockByNumber fetches a block (with transaction hashes only) by number
// or tag.
func (r *Reader) BlockByNumber(ctx context.Context, block BlockRef) (*Block, error) {
	var b Block
	if err := r.doRetry(ctx, &b, "eth_getBlockByNumber", string(blockOrLatest(block)), false); err != nil {
		return nil, err
	}
	return &b, nil
}

// BlockByHash fetches a block (with transaction hashes only) by hash.
func (r *Reader) BlockByHash(ctx context.Context, hash hexutil.Hash) (*Block, error) {
	var b Block
	if err := r.doRetry(ctx, &b, "eth_getBlockByHash", hash.Hex(), false); err != nil {
		return nil, err
	}
	return &b, nil
}

// HeaderByNumber returns the same Block as BlockByNumber (transaction
// hashes included); gas decisions read only its BaseFeePerGas.
func (r *Reader) HeaderByNumber(ctx context.Context, block BlockRef) (*Block, error) {
	return r.BlockByNumber(ctx, block)
}

// TransactionByHash fetches a transaction (pending or mined) by hash.
func (r *Reader) TransactionByHash(ctx context.Context, hash hexutil.Hash) (*RpcTransaction, error) {
	var tx RpcTransaction
	if err := r.doRetry(ctx, &tx, rpc.MethodGetTransactionByHash, hash.Hex()); err != nil {
		return nil, err
	}
	return &tx, nil
}

// TransactionReceipt fetches a mined transaction's receipt; nil, nil when
// the transaction hasn't been mined (or mined but not yet indexed).
func (r *Reader) TransactionReceipt(ctx context.Context, hash hexutil.Hash) (*Receipt, error) {
	var raw json.RawMessage
	if err := r.doRetry(ctx, &raw, rpc.MethodGetTransactionReceipt, hash.Hex()); err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return nil, nil
	}
	var rec Receipt
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("client: decode receipt: %w", err)
	}
	return &rec, nil
}

// Call executes msg against block without creating a transaction,
// returning the raw return data (or the decoded revert reason as an
// error, via rpc.ClassifyError).
func (r *Reader) Call(ctx context.Context, msg CallMsg, block BlockRef) ([]byte, error) {
	var hex string
	if err := r.doRetry(ctx, &hex, rpc.MethodCall, msg, string(blockOrLatest(block))); err != nil {
		return nil, err
	}
	return hexutil.Decode(hex)
}

// EstimateGas estimates the gas msg would consume if sent as a
// transaction.
func (r *Reader) EstimateGas(ctx context.Context, msg CallMsg) (uint64, error) {
	var hex string
	if err := r.doRetry(ctx, &hex, rpc.MethodEstimateGas, msg); err != nil {
		return 0, err
	}
	return parseQuantity(hex)
}

// GetLogs returns every log matching q.
func (r *Reader) GetLogs(ctx context.Context, q FilterQuery) ([]Log, error) {
	var logs []Log
	if err := r.doRetry(ctx, &logs, rpc.MethodGetLogs, q); err != nil {
		return nil, err
	}
	return logs, nil
}

// CreateAccessList asks the node to compute the access list msg would
// benefit from, along with the gas it would use with that list applied.
func (r *Reader) CreateAccessList(ctx context.Context, msg CallMsg, block BlockRef) (types.AccessList, uint64, error) {
	var result struct {
		AccessList types.AccessList `json:"accessList"`
		GasUsed    Quantity         `json:"gasUsed"`
	}
	if err := r.doRetry(ctx, &result, "eth_createAccessList", msg, string(blockOrLatest(block))); err != nil {
		return nil, 0, err
	}
	return result.AccessList, uint64(result.GasUsed), nil
}

// SimulateResult is one call's outcome within a Simulate batch.
type SimulateResult struct {
	ReturnData []byte
	Err        error
}

// Simulate evaluates every call in msgs against the same block as one
// JSON-RPC batch of eth_call requests, in caller order — read-only
// what-if evaluation, distinct from Multicall's single on-chain
// aggregator-contract call.
func (r *Reader) Simulate(ctx context.Context, msgs []CallMsg, block BlockRef) ([]SimulateResult, error) {
	calls := make([]rpc.Call, len(msgs))
	for i, m := range msgs {
		calls[i] = rpc.Call{Method: rpc.MethodCall, Params: []any{m, string(blockOrLatest(block))}}
	}
	batch := rpc.NewBatch(calls...)

	var responses []rpc.Response
	err := retry.Do(ctx, r.cfg.Retry, func(ctx context.Context) error {
		var err error
		responses, err = r.cfg.Transport.CallBatch(ctx, batch)
		return err
	})
	if err != nil {
		return nil, err
	}

	results := make([]SimulateResult, len(responses))
	for i, resp := range responses {
		if !resp.IsSuccess() {
			results[i] = SimulateResult{Err: rpc.ClassifyError(resp.Error)}
			continue
		}
		var hex string
		if err := resp.Decode(&hex); err != nil {
			results[i] = SimulateResult{Err: err}
			continue
		}
		data, err := hexutil.Decode(hex)
		results[i] = SimulateResult{ReturnData: data, Err: err}
	}
	return results, nil
}

// SuggestGasPrice implements gas.FeeSource for the legacy fee model.
func (r *Reader) SuggestGasPrice(ctx context.Context) (*uint256.Int, error) {
	var hex string
	if err := r.doRetry(ctx, &hex, rpc.MethodGasPrice); err != nil {
		return nil, err
	}
	return parseQuantityBig(hex)
}

// SuggestPriorityFee implements gas.FeeSource for EIP-1559.
func (r *Reader) SuggestPriorityFee(ctx context.Context) (*uint256.Int, error) {
	var hex string
	if err := r.doRetry(ctx, &hex, rpc.MethodMaxPriorityFeePerGas); err != nil {
		return nil, err
	}
	return parseQuantityBig(hex)
}

// decideGas fetches the latest block's base fee and runs the gas
// strategy, the shared helper send_transaction and send_blob_transaction
// both call before building their transaction variant.
func (r *Reader) decideGas(ctx context.Context, pref gas.Preference) (*gas.Decision, error) {
	head, err := r.HeaderByNumber(ctx, Latest)
	if err != nil {
		return nil, fmt.Errorf("client: fetch latest header for gas strategy: %w", err)
	}
	var baseFee *uint256.Int
	if head.BaseFeePerGas != nil {
		baseFee = head.BaseFeePerGas.Int()
	}
	return gas.Decide(ctx, pref, gas.ChainState{BaseFeePerGas: baseFee}, r, r.cfg.GasPolicy)
}

func blockOrLatest(b BlockRef) BlockRef {
	if b == "" {
		return Latest
	}
	return b
}

// OnNewHeads subscribes to newHeads notifications, decoding each into a
// Block. Only available when the configured Transport supports
// subscriptions (transport/wstransport, not the request/response HTTP
// transport).
func (r *Reader) OnNewHeads(ctx context.Context, callback func(Block)) (string, error) {
	sub, ok := r.cfg.Transport.(SubscribingTransport)
	if !ok {
		return "", ErrSubscriptionsUnsupported
	}
	return sub.Subscribe(ctx, []any{"newHeads"}, func(raw json.RawMessage) {
		var b Block
		if err := json.Unmarshal(raw, &b); err != nil {
			r.cfg.Logger.Warn("client: decode newHeads notification", "error", err)
			return
		}
		callback(b)
	})
}

// OnLogs subscribes to logs notifications matching q, delivering each
// matching Log to callback.
func (r *Reader) OnLogs(ctx context.Context, q FilterQuery, callback func(Log)) (string, error) {
	sub, ok := r.cfg.Transport.(SubscribingTransport)
	if !ok {
		return "", ErrSubscriptionsUnsupported
	}
	return sub.Subscribe(ctx, []any{"logs", q}, func(raw json.RawMessage) {
		var l Log
		if err := json.Unmarshal(raw, &l); err != nil {
			r.cfg.Logger.Warn("client: decode logs notification", "error", err)
			return
		}
		callback(l)
	})
}

// Unsubscribe cancels a subscription created by OnNewHeads or OnLogs.
func (r *Reader) Unsubscribe(ctx context.Context, subID string) error {
	sub, ok := r.cfg.Transport.(SubscribingTransport)
	if !ok {
		return ErrSubscriptionsUnsupported
	}
	return sub.Unsubscribe(ctx, subID)
}
