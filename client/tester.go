package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/rpc"
)

// Tester extends a Reader (optionally paired with a Signer, for flows
// that mix impersonation with genuine signed sends from an owned key)
// with the state-injection, time-control, and snapshot operations a
// local development node (Anvil/Hardhat/Ganache) exposes beyond
// standard JSON-RPC.
type Tester struct {
	*Reader
	signer *Signer

	mu            sync.Mutex
	impersonating map[string]hexutil.Address // session token -> address
}

// NewTester builds a Tester with read-only and impersonation capability.
func NewTester(cfg Config) *Tester {
	return &Tester{Reader: NewReader(cfg), impersonating: make(map[string]hexutil.Address)}
}

// NewTesterWithSigner builds a Tester additionally able to sign and send
// transactions through signer, for flows that mix impersonation with an
// owned key.
func NewTesterWithSigner(cfg Config, signer *Signer) *Tester {
	t := NewTester(cfg)
	t.signer = signer
	return t
}

// AsSigner returns the Signer this Tester was paired with via
// NewTesterWithSigner, or nil if it was built with NewTester.
func (t *Tester) AsSigner() *Signer { return t.signer }

// Snapshot takes an EVM state snapshot and returns its id, passed
// back to Revert to roll the chain state back to this point.
func (t *Tester) Snapshot(ctx context.Context) (string, error) {
	var id string
	err := t.doRetry(ctx, &id, rpc.MethodEvmSnapshot)
	return id, err
}

// Revert restores the chain state captured by a prior Snapshot call. A
// given snapshot id can only be reverted to once; reverting implicitly
// discards every later snapshot.
func (t *Tester) Revert(ctx context.Context, snapshotID string) (bool, error) {
	var ok bool
	err := t.doRetry(ctx, &ok, rpc.MethodEvmRevert, snapshotID)
	return ok, err
}

// SetBalance overwrites addr's balance, bypassing normal state transition
// rules.
func (t *Tester) SetBalance(ctx context.Context, addr hexutil.Address, balance *uint256.Int) error {
	return t.doRetry(ctx, nil, rpc.MethodSetBalance, addr.Hex(), formatQuantityBig(balance))
}

// SetNonce overwrites addr's account nonce.
func (t *Tester) SetNonce(ctx context.Context, addr hexutil.Address, nonce uint64) error {
	return t.doRetry(ctx, nil, rpc.MethodSetNonce, addr.Hex(), formatQuantity(nonce))
}

// SetCode overwrites the contract bytecode stored at addr.
func (t *Tester) SetCode(ctx context.Context, addr hexutil.Address, code []byte) error {
	return t.doRetry(ctx, nil, rpc.MethodSetCode, addr.Hex(), hexutil.Encode(code))
}

// SetStorageAt overwrites a single 32-byte storage slot of addr.
func (t *Tester) SetStorageAt(ctx context.Context, addr hexutil.Address, slot, value hexutil.Hash) error {
	return t.doRetry(ctx, nil, rpc.MethodSetStorageAt, addr.Hex(), slot.Hex(), value.Hex())
}

// ImpersonationSession scopes a node-side impersonation grant to a
// session token, so a caller juggling several impersonated addresses
// never has to track anvil's global impersonation state by hand, and
// StopImpersonating can't accidentally release the wrong address.
type ImpersonationSession struct {
	Token   string
	Address hexutil.Address
}

// Impersonate asks the node to accept addr as a transaction sender
// without a private key, returning a session token that scopes the
// grant. Call StopImpersonating with the returned session when done.
func (t *Tester) Impersonate(ctx context.Context, addr hexutil.Address) (*ImpersonationSession, error) {
	if err := t.doRetry(ctx, nil, rpc.MethodImpersonate, addr.Hex()); err != nil {
		return nil, err
	}
	session := &ImpersonationSession{Token: uuid.New().String(), Address: addr}
	t.mu.Lock()
	t.impersonating[session.Token] = addr
	t.mu.Unlock()
	return session, nil
}

// StopImpersonating releases an impersonation grant obtained from
// Impersonate. Calling it twice, or with an unknown/already-stopped
// session, is a no-op.
func (t *Tester) StopImpersonating(ctx context.Context, session *ImpersonationSession) error {
	t.mu.Lock()
	addr, ok := t.impersonating[session.Token]
	if ok {
		delete(t.impersonating, session.Token)
	}
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return t.doRetry(ctx, nil, rpc.MethodStopImpersonate, addr.Hex())
}

// SendAsImpersonated submits req as an unsigned eth_sendTransaction from
// session's address. This is the path impersonation actually exists
// for: the node accepts a "from" it doesn't hold a key for and fills in
// or validates nonce/gas itself, so no Signer or envelope construction
// is involved at all — unlike SendTransaction, whose whole job is
// building something a node WOULD reject without a valid signature.
func (t *Tester) SendAsImpersonated(ctx context.Context, session *ImpersonationSession, req TxRequest) (hexutil.Hash, error) {
	from := session.Address
	msg := sendTxMsg{
		From:     &from,
		To:       req.To,
		Value:    req.Value,
		Data:     req.Data,
		Nonce:    req.Nonce,
		GasLimit: req.GasLimit,
	}
	var txHashHex string
	if err := t.doRetry(ctx, &txHashHex, "eth_sendTransaction", msg); err != nil {
		return hexutil.Hash{}, err
	}
	return hexutil.HashFromHex(txHashHex)
}

// sendTxMsg is eth_sendTransaction's positional parameter: like CallMsg,
// but additionally carrying the nonce a caller may want to pin for an
// impersonated send.
type sendTxMsg struct {
	From     *hexutil.Address
	To       *hexutil.Address
	Value    *uint256.Int
	Data     []byte
	Nonce    *uint64
	GasLimit *uint64
}

func (m sendTxMsg) MarshalJSON() ([]byte, error) {
	wire := map[string]any{}
	if m.From != nil {
		wire["from"] = m.From.Hex()
	}
	if m.To != nil {
		wire["to"] = m.To.Hex()
	}
	if m.Value != nil {
		wire["value"] = formatQuantityBig(m.Value)
	}
	if len(m.Data) > 0 {
		wire["data"] = hexutil.Encode(m.Data)
	}
	if m.Nonce != nil {
		wire["nonce"] = formatQuantity(*m.Nonce)
	}
	if m.GasLimit != nil {
		wire["gas"] = formatQuantity(*m.GasLimit)
	}
	return json.Marshal(wire)
}

// IncreaseTime advances the node's internal clock by seconds, applied to
// the next mined block's timestamp.
func (t *Tester) IncreaseTime(ctx context.Context, seconds uint64) error {
	return t.doRetry(ctx, nil, rpc.MethodEvmIncreaseTime, formatQuantity(seconds))
}

// SetNextBlockTimestamp pins the timestamp of the next mined block.
func (t *Tester) SetNextBlockTimestamp(ctx context.Context, unixSeconds uint64) error {
	return t.doRetry(ctx, nil, rpc.MethodEvmSetNextBlockTs, formatQuantity(unixSeconds))
}

// Mine mines n blocks; when intervalSeconds is non-zero it is used as the
// timestamp spacing between them.
func (t *Tester) Mine(ctx context.Context, n uint64, intervalSeconds uint64) error {
	if intervalSeconds > 0 {
		return t.doRetry(ctx, nil, rpc.MethodEvmMine, formatQuantity(n), formatQuantity(intervalSeconds))
	}
	return t.doRetry(ctx, nil, rpc.MethodEvmMine, formatQuantity(n))
}

// SetAutomine toggles whether the node mines a block automatically after
// every accepted transaction.
func (t *Tester) SetAutomine(ctx context.Context, enabled bool) error {
	return t.doRetry(ctx, nil, rpc.MethodSetAutomine, enabled)
}

// DumpState serializes the full chain state (accounts, storage, chain
// config) to an opaque blob LoadState can later restore.
func (t *Tester) DumpState(ctx context.Context) ([]byte, error) {
	var dump string
	if err := t.doRetry(ctx, &dump, rpc.MethodDumpState); err != nil {
		return nil, err
	}
	return hexutil.Decode(dump)
}

// LoadState restores chain state previously captured by DumpState.
func (t *Tester) LoadState(ctx context.Context, dump []byte) error {
	return t.doRetry(ctx, nil, rpc.MethodLoadState, hexutil.Encode(dump))
}

// ResetOptions configures Reset's forking behavior.
type ResetOptions struct {
	ForkURL *string
	Block   *uint64
}

// Reset reinitializes the node's chain state, optionally re-forking from
// forkURL at the given block (or its current head, if Block is nil).
func (t *Tester) Reset(ctx context.Context, opts ResetOptions) error {
	if opts.ForkURL == nil {
		return t.doRetry(ctx, nil, rpc.MethodReset)
	}
	forking := map[string]any{"jsonRpcUrl": *opts.ForkURL}
	if opts.Block != nil {
		forking["blockNumber"] = *opts.Block
	}
	return t.doRetry(ctx, nil, rpc.MethodReset, map[string]any{"forking": forking})
}
