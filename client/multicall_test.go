package client

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brane-sdk/brane/abi"
	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/rpc"
)

type fixedCallTransport struct {
	resultHex string
}

func (f *fixedCallTransport) Call(ctx context.Context, method string, params ...any) (rpc.Response, error) {
	req := rpc.NewRequest(method, params...)
	raw, err := json.Marshal(f.resultHex)
	if err != nil {
		return rpc.Response{}, err
	}
	return rpc.Response{ID: req.ID, Result: raw}, nil
}

func (f *fixedCallTransport) CallBatch(ctx context.Context, b rpc.Batch) ([]rpc.Response, error) {
	return nil, nil
}

func TestMulticallBuilder_Execute_EmptyBatchSkipsCall(t *testing.T) {
	reader := NewReader(Config{Transport: &fixedCallTransport{}})
	results, err := reader.Multicall().Execute(context.Background(), Latest)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestMulticallBuilder_Execute_DecodesResultsInOrder(t *testing.T) {
	encoded, err := abi.EncodeParameters(aggregate3ResultTypes, []abi.Value{
		[]abi.Value{
			[]abi.Value{true, []byte{0x01, 0x02}},
			[]abi.Value{false, []byte{}},
		},
	})
	require.NoError(t, err)

	reader := NewReader(Config{Transport: &fixedCallTransport{resultHex: hexutil.Encode(encoded)}})

	to, err := hexutil.AddressFromHex("0x0000000000000000000000000000000000000002")
	require.NoError(t, err)

	results, err := reader.Multicall().
		Add(CallMsg{To: &to, Data: []byte{0xaa}}, true).
		Add(CallMsg{To: &to, Data: []byte{0xbb}}, true).
		Execute(context.Background(), Latest)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.Equal(t, []byte{0x01, 0x02}, results[0].ReturnData)
	assert.False(t, results[1].Success)
}

func TestDefaultMulticallAddress_IsCanonicalAddress(t *testing.T) {
	assert.Equal(t, "0xca11bde05977b3631167028862be2a173976ca11", DefaultMulticallAddress.Hex())
}
