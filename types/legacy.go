package types

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/brane-sdk/brane/crypto"
	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/rlp"
)

// LegacyTx is a pre-typed-transaction Ethereum transaction, always
// encoded with EIP-155 replay protection by this SDK.
type LegacyTx struct {
	// ChainID is not part of the legacy wire format's field list, but this
	// SDK always signs and encodes with EIP-155 replay protection, so the
	// chain id used for EncodeForSigning must be recorded here before
	// EncodeEnvelope is called.
	ChainID  uint64
	Nonce    uint64
	GasPrice *uint256.Int
	GasLimit uint64
	To       *hexutil.Address // nil for contract creation
	Value    *uint256.Int
	Data     []byte
}

func (tx *LegacyTx) Type() TypeByte { return TypeLegacy }

// EncodeForSigning builds the EIP-155 signing preimage:
// RLP([nonce, gasPrice, gasLimit, to, value, data, chainId, 0, 0]).
func (tx *LegacyTx) EncodeForSigning(chainID uint64) ([]byte, error) {
	return rlp.EncodeList(
		rlp.EncodeUint64(tx.Nonce),
		encodeUint256(tx.GasPrice),
		rlp.EncodeUint64(tx.GasLimit),
		encodeTo(tx.To),
		encodeUint256(tx.Value),
		rlp.EncodeBytes(tx.Data),
		rlp.EncodeUint64(chainID),
		rlp.EncodeUint64(0),
		rlp.EncodeUint64(0),
	), nil
}

// EncodeEnvelope builds the broadcastable RLP envelope with
// v = chainId*2 + 35 + yParity. tx.ChainID must be non-zero (set it to
// the value passed to EncodeForSigning before signing): this SDK never
// emits a pre-EIP-155 envelope.
func (tx *LegacyTx) EncodeEnvelope(sig crypto.Signature) ([]byte, error) {
	if tx.ChainID == 0 {
		return nil, ErrNotEIP155Encoded
	}
	if err := checkYParity(sig); err != nil {
		return nil, err
	}
	v := new(big.Int).SetUint64(tx.ChainID)
	v.Mul(v, big.NewInt(2))
	v.Add(v, big.NewInt(35+int64(sig.YParity)))
	vBytes, err := rlp.EncodeBigInt(v)
	if err != nil {
		return nil, err
	}

	return rlp.EncodeList(
		rlp.EncodeUint64(tx.Nonce),
		encodeUint256(tx.GasPrice),
		rlp.EncodeUint64(tx.GasLimit),
		encodeTo(tx.To),
		encodeUint256(tx.Value),
		rlp.EncodeBytes(tx.Data),
		vBytes,
		rlp.EncodeBytes(hexutil.TrimLeadingZeroes(sig.R[:])),
		rlp.EncodeBytes(hexutil.TrimLeadingZeroes(sig.S[:])),
	), nil
}

func encodeUint256(v *uint256.Int) []byte {
	if v == nil || v.IsZero() {
		return []byte{0x80}
	}
	return rlp.EncodeBytes(v.Bytes())
}
