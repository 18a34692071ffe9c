package types

import (
	"github.com/holiman/uint256"

	"github.com/brane-sdk/brane/crypto"
	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/rlp"
)

const (
	minBlobsPerSidecar = 1
	maxBlobsPerSidecar = 6
)

// EIP4844Tx carries blob-carrying calldata for layer-2 data availability.
// Unlike every other variant, To is mandatory: blob transactions cannot
// create contracts.
type EIP4844Tx struct {
	ChainID             uint64
	Nonce               uint64
	MaxPriorityFeePerGas *uint256.Int
	MaxFeePerGas         *uint256.Int
	GasLimit             uint64
	To                   hexutil.Address
	Value                *uint256.Int
	Data                 []byte
	AccessList           AccessList
	MaxFeePerBlobGas     *uint256.Int
	BlobVersionedHashes  []hexutil.Hash
}

func (tx *EIP4844Tx) Type() TypeByte { return TypeEIP4844 }

func (tx *EIP4844Tx) checkBlobCount() error {
	n := len(tx.BlobVersionedHashes)
	if n < minBlobsPerSidecar || n > maxBlobsPerSidecar {
		return ErrBlobCountOutOfRange
	}
	return nil
}

func (tx *EIP4844Tx) blobHashesRLP() []byte {
	items := make([][]byte, len(tx.BlobVersionedHashes))
	for i, h := range tx.BlobVersionedHashes {
		items[i] = rlp.EncodeBytes(h[:])
	}
	return rlp.EncodeList(items...)
}

func (tx *EIP4844Tx) fields(chainID uint64) []byte {
	return rlp.EncodeList(
		rlp.EncodeUint64(chainID),
		rlp.EncodeUint64(tx.Nonce),
		encodeUint256(tx.MaxPriorityFeePerGas),
		encodeUint256(tx.MaxFeePerGas),
		rlp.EncodeUint64(tx.GasLimit),
		rlp.EncodeBytes(tx.To[:]),
		encodeUint256(tx.Value),
		rlp.EncodeBytes(tx.Data),
		encodeAccessList(tx.AccessList),
		encodeUint256(tx.MaxFeePerBlobGas),
		tx.blobHashesRLP(),
	)
}

// EncodeForSigning returns 0x03 ‖ RLP([chainId, nonce, maxPriorityFeePerGas,
// maxFeePerGas, gasLimit, to, value, data, accessList, maxFeePerBlobGas,
// blobVersionedHashes]). Fails if to is zero (contract creation is
// forbidden for blob transactions) or the blob count is outside [1, 6].
func (tx *EIP4844Tx) EncodeForSigning(chainID uint64) ([]byte, error) {
	if tx.To.IsZero() {
		return nil, ErrContractCreationForbidden
	}
	if err := tx.checkBlobCount(); err != nil {
		return nil, err
	}
	return prependType(TypeEIP4844, tx.fields(chainID)), nil
}

// EncodeEnvelope appends {yParity, r, s}. This is the signed-transaction
// envelope only; broadcasting with blobs attached uses the separate
// network wrapper built by kzg.EncodeNetworkWrapper
// (0x03 ‖ RLP([[signed fields], blobs, commitments, proofs])).
func (tx *EIP4844Tx) EncodeEnvelope(sig crypto.Signature) ([]byte, error) {
	if tx.To.IsZero() {
		return nil, ErrContractCreationForbidden
	}
	if err := tx.checkBlobCount(); err != nil {
		return nil, err
	}
	if err := checkYParity(sig); err != nil {
		return nil, err
	}
	body := rlp.EncodeList(
		rlp.EncodeUint64(tx.ChainID),
		rlp.EncodeUint64(tx.Nonce),
		encodeUint256(tx.MaxPriorityFeePerGas),
		encodeUint256(tx.MaxFeePerGas),
		rlp.EncodeUint64(tx.GasLimit),
		rlp.EncodeBytes(tx.To[:]),
		encodeUint256(tx.Value),
		rlp.EncodeBytes(tx.Data),
		encodeAccessList(tx.AccessList),
		encodeUint256(tx.MaxFeePerBlobGas),
		tx.blobHashesRLP(),
		rlp.EncodeUint64(uint64(sig.YParity)),
		rlp.EncodeBytes(hexutil.TrimLeadingZeroes(sig.R[:])),
		rlp.EncodeBytes(hexutil.TrimLeadingZeroes(sig.S[:])),
	)
	return prependType(TypeEIP4844, body), nil
}

// SignedFieldsRLP returns the RLP list of signed transaction fields
// (without the leading type byte), for embedding inside the EIP-4844
// network wrapper alongside blobs/commitments/proofs.
func (tx *EIP4844Tx) SignedFieldsRLP(sig crypto.Signature) ([]byte, error) {
	env, err := tx.EncodeEnvelope(sig)
	if err != nil {
		return nil, err
	}
	return env[1:], nil
}
