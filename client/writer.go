package client

import (
	"context"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/brane-sdk/brane/crypto"
	"github.com/brane-sdk/brane/gas"
	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/kzg"
	"github.com/brane-sdk/brane/retry"
	"github.com/brane-sdk/brane/rpc"
	"github.com/brane-sdk/brane/types"
)

// Signer is a Reader that can additionally build, sign, and broadcast
// transactions on behalf of an owned crypto.Signer. Every Signer is a
// Reader (it embeds one) per the capability set's Reader ⊂ Signer
// relationship.
type Signer struct {
	*Reader
	signer crypto.Signer
}

// NewSigner wraps signer with a Reader built from cfg.
func NewSigner(cfg Config, signer crypto.Signer) *Signer {
	return &Signer{Reader: NewReader(cfg), signer: signer}
}

// Address returns the owned signer's address.
func (s *Signer) Address() hexutil.Address { return s.signer.Address() }

// TxRequest is the caller-facing description of a transaction to send.
// Any of Nonce, GasLimit, or FeePreference's resulting fee fields left
// unset are filled in by SendTransaction's orchestration.
type TxRequest struct {
	To         *hexutil.Address // nil creates a contract
	Value      *uint256.Int
	Data       []byte
	Nonce      *uint64
	GasLimit   *uint64
	AccessList types.AccessList

	// FeePreference selects the legacy/EIP-1559 fee model; the zero value
	// (gas.PreferAuto) follows the chain's base-fee presence.
	FeePreference gas.Preference
}

// BlobTxRequest additionally carries the blob sidecar a
// send_blob_transaction call broadcasts alongside the signed envelope.
type BlobTxRequest struct {
	TxRequest
	To               hexutil.Address // mandatory: blob transactions cannot create contracts
	MaxFeePerBlobGas *uint256.Int
	Sidecar          *kzg.BlobSidecar
}

// preparedTx is the shared state every send_* path resolves before
// building its specific transaction variant.
type preparedTx struct {
	chainID  uint64
	nonce    uint64
	gasLimit uint64
	decision *gas.Decision
}

func (s *Signer) prepare(ctx context.Context, req TxRequest) (*preparedTx, error) {
	chainID, err := s.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("client: resolve chain id: %w", err)
	}

	nonce, err := s.resolveNonce(ctx, req.Nonce)
	if err != nil {
		return nil, err
	}

	decision, err := s.decideGas(ctx, req.FeePreference)
	if err != nil {
		return nil, err
	}

	gasLimit, err := s.resolveGasLimit(ctx, req, decision)
	if err != nil {
		return nil, err
	}

	return &preparedTx{chainID: chainID, nonce: nonce, gasLimit: gasLimit, decision: decision}, nil
}

func (s *Signer) resolveNonce(ctx context.Context, explicit *uint64) (uint64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	return s.NonceAt(ctx, s.Address(), Pending)
}

func (s *Signer) resolveGasLimit(ctx context.Context, req TxRequest, decision *gas.Decision) (uint64, error) {
	if req.GasLimit != nil {
		return *req.GasLimit, nil
	}
	msg := CallMsg{From: addrPtr(s.Address()), To: req.To, Value: req.Value, Data: req.Data}
	if decision.Model == gas.ModelLegacy {
		msg.GasPrice = decision.GasPrice
	}
	return s.EstimateGas(ctx, msg)
}

func addrPtr(a hexutil.Address) *hexutil.Address { return &a }

// buildTransaction picks the cheapest-fitting variant for req: typed
// EIP-1559/EIP-2930 when an access list or the fee decision calls for it,
// otherwise the legacy envelope.
func buildTransaction(p *preparedTx, req TxRequest) types.Transaction {
	if p.decision.Model == gas.ModelEIP1559 {
		return &types.EIP1559Tx{
			ChainID:              p.chainID,
			Nonce:                p.nonce,
			MaxPriorityFeePerGas: p.decision.MaxPriorityFeePerGas,
			MaxFeePerGas:         p.decision.MaxFeePerGas,
			GasLimit:             p.gasLimit,
			To:                   req.To,
			Value:                req.Value,
			Data:                 req.Data,
			AccessList:           req.AccessList,
		}
	}
	if len(req.AccessList) > 0 {
		return &types.EIP2930Tx{
			ChainID:    p.chainID,
			Nonce:      p.nonce,
			GasPrice:   p.decision.GasPrice,
			GasLimit:   p.gasLimit,
			To:         req.To,
			Value:      req.Value,
			Data:       req.Data,
			AccessList: req.AccessList,
		}
	}
	return &types.LegacyTx{
		ChainID:  p.chainID,
		Nonce:    p.nonce,
		GasPrice: p.decision.GasPrice,
		GasLimit: p.gasLimit,
		To:       req.To,
		Value:    req.Value,
		Data:     req.Data,
	}
}

// signAndEncode runs steps 3-4 of the orchestration: sign the
// chainId-bound preimage, then let the transaction transform the raw
// recovery id into its envelope's v/yParity form and emit the
// broadcastable bytes. Every Transaction implementation does that
// transform internally (EncodeEnvelope), so this helper is variant-agnostic.
func (s *Signer) signAndEncode(tx types.Transaction, chainID uint64) ([]byte, error) {
	preimage, err := tx.EncodeForSigning(chainID)
	if err != nil {
		return nil, fmt.Errorf("client: build signing preimage: %w", err)
	}
	digest := crypto.Keccak256(preimage)
	sig, err := s.signer.SignDigest(digest)
	if err != nil {
		return nil, fmt.Errorf("client: sign transaction: %w", err)
	}
	return tx.EncodeEnvelope(sig)
}

// SendTransaction fills in any of req's unset fields, signs, and
// broadcasts it, returning the transaction hash.
func (s *Signer) SendTransaction(ctx context.Context, req TxRequest) (hexutil.Hash, error) {
	prepared, err := s.prepare(ctx, req)
	if err != nil {
		return hexutil.Hash{}, err
	}
	tx := buildTransaction(prepared, req)
	raw, err := s.signAndEncode(tx, prepared.chainID)
	if err != nil {
		return hexutil.Hash{}, err
	}
	return s.broadcast(ctx, raw)
}

func (s *Signer) broadcast(ctx context.Context, raw []byte) (hexutil.Hash, error) {
	var txHashHex string
	err := retry.Do(ctx, s.cfg.Retry, func(ctx context.Context) error {
		return call(ctx, s.cfg.Transport, &txHashHex, rpc.MethodSendRawTransaction, hexutil.Encode(raw))
	})
	if err != nil {
		return hexutil.Hash{}, err
	}
	if txHashHex != "" {
		if h, err := hexutil.HashFromHex(txHashHex); err == nil {
			return h, nil
		}
	}
	// Some nodes echo only an empty/omitted result on success; the hash is
	// always independently derivable as keccak256 of the raw envelope.
	return crypto.Keccak256(raw), nil
}

// SendTransactionAndWait sends req and polls for its receipt until mined
// or ReceiptTimeout elapses.
func (s *Signer) SendTransactionAndWait(ctx context.Context, req TxRequest) (*Receipt, error) {
	hash, err := s.SendTransaction(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.waitForReceipt(ctx, hash)
}

// SendBlobTransaction validates req's sidecar (structurally, and against
// Kzg when configured), signs the EIP-4844 envelope, and broadcasts the
// network wrapper (signed envelope plus blobs/commitments/proofs).
func (s *Signer) SendBlobTransaction(ctx context.Context, req BlobTxRequest) (hexutil.Hash, error) {
	hashes := req.Sidecar.VersionedHashes()
	if s.cfg.Kzg != nil {
		if err := req.Sidecar.Validate(s.cfg.Kzg); err != nil {
			return hexutil.Hash{}, fmt.Errorf("client: validate blob sidecar: %w", err)
		}
	}

	prepared, err := s.prepare(ctx, req.TxRequest)
	if err != nil {
		return hexutil.Hash{}, err
	}
	maxFeePerBlobGas := req.MaxFeePerBlobGas
	if maxFeePerBlobGas == nil {
		maxFeePerBlobGas = prepared.decision.MaxFeePerGas
	}

	tx := &types.EIP4844Tx{
		ChainID:              prepared.chainID,
		Nonce:                prepared.nonce,
		MaxPriorityFeePerGas: prepared.decision.MaxPriorityFeePerGas,
		MaxFeePerGas:         prepared.decision.MaxFeePerGas,
		GasLimit:             prepared.gasLimit,
		To:                   req.To,
		Value:                req.Value,
		Data:                 req.Data,
		AccessList:           req.AccessList,
		MaxFeePerBlobGas:     maxFeePerBlobGas,
		BlobVersionedHashes:  hashes,
	}

	preimage, err := tx.EncodeForSigning(prepared.chainID)
	if err != nil {
		return hexutil.Hash{}, fmt.Errorf("client: build blob signing preimage: %w", err)
	}
	digest := crypto.Keccak256(preimage)
	sig, err := s.signer.SignDigest(digest)
	if err != nil {
		return hexutil.Hash{}, fmt.Errorf("client: sign blob transaction: %w", err)
	}
	signedFields, err := tx.SignedFieldsRLP(sig)
	if err != nil {
		return hexutil.Hash{}, err
	}

	wrapper, err := kzg.EncodeNetworkWrapper(signedFields, req.Sidecar)
	if err != nil {
		return hexutil.Hash{}, err
	}

	// The transaction hash is keccak256 of the signed envelope alone, not
	// the network wrapper that additionally carries the blobs.
	envelope, err := tx.EncodeEnvelope(sig)
	if err != nil {
		return hexutil.Hash{}, err
	}
	txHash := crypto.Keccak256(envelope)

	var txHashHex string
	err = retry.Do(ctx, s.cfg.Retry, func(ctx context.Context) error {
		return call(ctx, s.cfg.Transport, &txHashHex, rpc.MethodSendRawTransaction, hexutil.Encode(wrapper))
	})
	if err != nil {
		return hexutil.Hash{}, err
	}
	return txHash, nil
}

// SendBlobTransactionAndWait sends req and polls for its receipt until
// mined or ReceiptTimeout elapses.
func (s *Signer) SendBlobTransactionAndWait(ctx context.Context, req BlobTxRequest) (*Receipt, error) {
	hash, err := s.SendBlobTransaction(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.waitForReceipt(ctx, hash)
}

func (s *Signer) waitForReceipt(ctx context.Context, hash hexutil.Hash) (*Receipt, error) {
	var deadline <-chan time.Time
	if s.cfg.ReceiptTimeout > 0 {
		timer := time.NewTimer(s.cfg.ReceiptTimeout)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(s.cfg.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		rec, err := s.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, ErrReceiptTimeout
		case <-ticker.C:
		}
	}
}
