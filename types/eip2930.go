package types

import (
	"github.com/holiman/uint256"

	"github.com/brane-sdk/brane/crypto"
	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/rlp"
)

// EIP2930Tx adds an access list to the legacy gas-price model.
type EIP2930Tx struct {
	ChainID    uint64
	Nonce      uint64
	GasPrice   *uint256.Int
	GasLimit   uint64
	To         *hexutil.Address
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList
}

func (tx *EIP2930Tx) Type() TypeByte { return TypeEIP2930 }

func (tx *EIP2930Tx) payload(chainID uint64) []byte {
	return rlp.EncodeList(
		rlp.EncodeUint64(chainID),
		rlp.EncodeUint64(tx.Nonce),
		encodeUint256(tx.GasPrice),
		rlp.EncodeUint64(tx.GasLimit),
		encodeTo(tx.To),
		encodeUint256(tx.Value),
		rlp.EncodeBytes(tx.Data),
		encodeAccessList(tx.AccessList),
	)
}

// EncodeForSigning returns 0x01 ‖ RLP([chainId, nonce, gasPrice, gasLimit, to, value, data, accessList]).
func (tx *EIP2930Tx) EncodeForSigning(chainID uint64) ([]byte, error) {
	return prependType(TypeEIP2930, tx.payload(chainID)), nil
}

// EncodeEnvelope appends {yParity, r, s} to the signing payload.
func (tx *EIP2930Tx) EncodeEnvelope(sig crypto.Signature) ([]byte, error) {
	if err := checkYParity(sig); err != nil {
		return nil, err
	}
	body := rlp.EncodeList(
		rlp.EncodeUint64(tx.ChainID),
		rlp.EncodeUint64(tx.Nonce),
		encodeUint256(tx.GasPrice),
		rlp.EncodeUint64(tx.GasLimit),
		encodeTo(tx.To),
		encodeUint256(tx.Value),
		rlp.EncodeBytes(tx.Data),
		encodeAccessList(tx.AccessList),
		rlp.EncodeUint64(uint64(sig.YParity)),
		rlp.EncodeBytes(hexutil.TrimLeadingZeroes(sig.R[:])),
		rlp.EncodeBytes(hexutil.TrimLeadingZeroes(sig.S[:])),
	)
	return prependType(TypeEIP2930, body), nil
}

func prependType(t TypeByte, rlpPayload []byte) []byte {
	out := make([]byte, 1+len(rlpPayload))
	out[0] = byte(t)
	copy(out[1:], rlpPayload)
	return out
}
