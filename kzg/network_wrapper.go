package kzg

import (
	"github.com/brane-sdk/brane/rlp"
)

// EncodeNetworkWrapper builds the EIP-4844 broadcast form a blob
// transaction is submitted in: 0x03 ‖ RLP([signedFields, blobs,
// commitments, proofs]), wrapping the already-signed transaction
// envelope's field list (type byte stripped) alongside its blob sidecar.
// This is distinct from the transaction's own EncodeEnvelope, which
// produces the signed-fields-only form a receiving node re-derives the
// transaction hash from; the network wrapper exists only to get the
// blobs from sender to node and is never itself hashed or stored.
func EncodeNetworkWrapper(signedFieldsRLP []byte, sidecar *BlobSidecar) ([]byte, error) {
	if len(sidecar.Blobs) != len(sidecar.Commitments) || len(sidecar.Blobs) != len(sidecar.Proofs) {
		return nil, ErrSidecarLengthMismatch
	}

	blobItems := make([][]byte, len(sidecar.Blobs))
	for i, b := range sidecar.Blobs {
		blobItems[i] = rlp.EncodeBytes(b[:])
	}
	commitmentItems := make([][]byte, len(sidecar.Commitments))
	for i, c := range sidecar.Commitments {
		commitmentItems[i] = rlp.EncodeBytes(c[:])
	}
	proofItems := make([][]byte, len(sidecar.Proofs))
	for i, p := range sidecar.Proofs {
		proofItems[i] = rlp.EncodeBytes(p[:])
	}

	body := rlp.EncodeList(
		signedFieldsRLP,
		rlp.EncodeList(blobItems...),
		rlp.EncodeList(commitmentItems...),
		rlp.EncodeList(proofItems...),
	)
	return append([]byte{eip4844TypeByte}, body...), nil
}

// eip4844TypeByte is types.TypeEIP4844's value, duplicated here rather
// than imported to avoid a kzg<->types dependency neither package
// otherwise needs.
const eip4844TypeByte = 0x03
