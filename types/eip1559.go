package types

import (
	"github.com/holiman/uint256"

	"github.com/brane-sdk/brane/crypto"
	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/rlp"
)

// EIP1559Tx replaces the single gas price with a priority fee / max fee
// pair under the base-fee market introduced by EIP-1559.
type EIP1559Tx struct {
	ChainID              uint64
	Nonce                uint64
	MaxPriorityFeePerGas *uint256.Int
	MaxFeePerGas         *uint256.Int
	GasLimit             uint64
	To                   *hexutil.Address
	Value                *uint256.Int
	Data                 []byte
	AccessList           AccessList
}

func (tx *EIP1559Tx) Type() TypeByte { return TypeEIP1559 }

func (tx *EIP1559Tx) fields(chainID uint64) []byte {
	return rlp.EncodeList(
		rlp.EncodeUint64(chainID),
		rlp.EncodeUint64(tx.Nonce),
		encodeUint256(tx.MaxPriorityFeePerGas),
		encodeUint256(tx.MaxFeePerGas),
		rlp.EncodeUint64(tx.GasLimit),
		encodeTo(tx.To),
		encodeUint256(tx.Value),
		rlp.EncodeBytes(tx.Data),
		encodeAccessList(tx.AccessList),
	)
}

// EncodeForSigning returns 0x02 ‖ RLP([chainId, nonce, maxPriorityFeePerGas, maxFeePerGas, gasLimit, to, value, data, accessList]).
func (tx *EIP1559Tx) EncodeForSigning(chainID uint64) ([]byte, error) {
	return prependType(TypeEIP1559, tx.fields(chainID)), nil
}

// EncodeEnvelope appends {yParity, r, s} to the signing fields.
func (tx *EIP1559Tx) EncodeEnvelope(sig crypto.Signature) ([]byte, error) {
	if err := checkYParity(sig); err != nil {
		return nil, err
	}
	body := rlp.EncodeList(
		rlp.EncodeUint64(tx.ChainID),
		rlp.EncodeUint64(tx.Nonce),
		encodeUint256(tx.MaxPriorityFeePerGas),
		encodeUint256(tx.MaxFeePerGas),
		rlp.EncodeUint64(tx.GasLimit),
		encodeTo(tx.To),
		encodeUint256(tx.Value),
		rlp.EncodeBytes(tx.Data),
		encodeAccessList(tx.AccessList),
		rlp.EncodeUint64(uint64(sig.YParity)),
		rlp.EncodeBytes(hexutil.TrimLeadingZeroes(sig.R[:])),
		rlp.EncodeBytes(hexutil.TrimLeadingZeroes(sig.S[:])),
	)
	return prependType(TypeEIP1559, body), nil
}
