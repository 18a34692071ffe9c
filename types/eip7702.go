package types

import (
	"github.com/holiman/uint256"

	"github.com/brane-sdk/brane/crypto"
	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/rlp"
)

// EIP7702Tx lets an EOA delegate its code to a contract for the duration
// of one or more signed authorizations.
type EIP7702Tx struct {
	ChainID              uint64
	Nonce                uint64
	MaxPriorityFeePerGas *uint256.Int
	MaxFeePerGas         *uint256.Int
	GasLimit             uint64
	To                   *hexutil.Address
	Value                *uint256.Int
	Data                 []byte
	AccessList           AccessList
	AuthorizationList    []Authorization
}

func (tx *EIP7702Tx) Type() TypeByte { return TypeEIP7702 }

func (tx *EIP7702Tx) fields(chainID uint64) []byte {
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
		encodeAuthorizationList(tx.AuthorizationList),
	)
}

// EncodeForSigning returns 0x04 ‖ RLP([chainId, nonce, maxPriorityFeePerGas,
// maxFeePerGas, gasLimit, to, value, data, accessList, authorizationList]).
func (tx *EIP7702Tx) EncodeForSigning(chainID uint64) ([]byte, error) {
	return prependType(TypeEIP7702, tx.fields(chainID)), nil
}

// EncodeEnvelope appends {yParity, r, s}.
func (tx *EIP7702Tx) EncodeEnvelope(sig crypto.Signature) ([]byte, error) {
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
		encodeAuthorizationList(tx.AuthorizationList),
		rlp.EncodeUint64(uint64(sig.YParity)),
		rlp.EncodeBytes(hexutil.TrimLeadingZeroes(sig.R[:])),
		rlp.EncodeBytes(hexutil.TrimLeadingZeroes(sig.S[:])),
	)
	return prependType(TypeEIP7702, body), nil
}

// SignAuthorization produces the Authorization tuple for delegating addr's
// code, signing the EIP-7702 authorization preimage
// 0x05 ‖ RLP([chainId, address, nonce]) with signer.
func SignAuthorization(signer crypto.Signer, chainID uint64, addr hexutil.Address, nonce uint64) (Authorization, error) {
	preimage := prependType(0x05, rlp.EncodeList(
		rlp.EncodeUint64(chainID),
		rlp.EncodeBytes(addr[:]),
		rlp.EncodeUint64(nonce),
	))
	digest := crypto.Keccak256(preimage)
	sig, err := signer.SignDigest(digest)
	if err != nil {
		return Authorization{}, err
	}
	return Authorization{
		ChainID: chainID,
		Address: addr,
		Nonce:   nonce,
		YParity: sig.YParity,
		R:       sig.R,
		S:       sig.S,
	}, nil
}
