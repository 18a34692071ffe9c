package client

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brane-sdk/brane/crypto"
	"github.com/brane-sdk/brane/hexutil"
	"github.com/brane-sdk/brane/rpc"
)

func newTestSigner(t *testing.T, tr *scriptedTransport) *Signer {
	t.Helper()
	key, err := crypto.NewRandomSigner()
	require.NoError(t, err)
	return NewSigner(Config{Transport: tr}, key)
}

func legacyPricingScript(chainID, nonce, gasPrice, gasLimit, balance string) map[string]string {
	return map[string]string{
		rpc.MethodChainID:            chainID,
		rpc.MethodGetTransactionCount: nonce,
		rpc.MethodGasPrice:           gasPrice,
		rpc.MethodEstimateGas:        gasLimit,
		rpc.MethodGetBalance:         balance,
		rpc.MethodBlockNumber:        `"0x1"`,
	}
}

func TestSendTransaction_FillsFieldsAndBroadcastsLegacyTx(t *testing.T) {
	tr := &scriptedTransport{results: legacyPricingScript(`"0x1"`, `"0x5"`, `"0x3b9aca00"`, `"0x5208"`, `"0x0"`)}
	tr.results["eth_getBlockByNumber"] = `{"number":"0x1","hash":"0x` + repeatHex("11", 32) + `","parentHash":"0x` + repeatHex("00", 32) + `","timestamp":"0x1","gasLimit":"0x1c9c380","gasUsed":"0x0","miner":"0x` + repeatHex("00", 20) + `","baseFeePerGas":null,"transactions":[]}`
	tr.results[rpc.MethodSendRawTransaction] = `"0x` + repeatHex("22", 32) + `"`

	signer := newTestSigner(t, tr)
	to, err := hexutil.AddressFromHex("0x00000000000000000000000000000000000000bb")
	require.NoError(t, err)

	hash, err := signer.SendTransaction(context.Background(), TxRequest{To: &to})
	require.NoError(t, err)
	assert.NotEqual(t, hexutil.Hash{}, hash)

	var sawSendRaw bool
	for _, c := range tr.calls {
		if c.Method == rpc.MethodSendRawTransaction {
			sawSendRaw = true
			var params []string
			raw, _ := json.Marshal(c.Params)
			require.NoError(t, json.Unmarshal(raw, &params))
			require.Len(t, params, 1)
			assert.True(t, len(params[0]) > 2 && params[0][:2] == "0x")
		}
	}
	assert.True(t, sawSendRaw, "expected eth_sendRawTransaction to be called")
}

func TestSendTransaction_HonorsExplicitNonceAndGasLimit(t *testing.T) {
	tr := &scriptedTransport{results: legacyPricingScript(`"0x1"`, `"0x99"`, `"0x3b9aca00"`, `"0x99999"`, `"0x0"`)}
	tr.results["eth_getBlockByNumber"] = `{"number":"0x1","hash":"0x` + repeatHex("11", 32) + `","parentHash":"0x` + repeatHex("00", 32) + `","timestamp":"0x1","gasLimit":"0x1c9c380","gasUsed":"0x0","miner":"0x` + repeatHex("00", 20) + `","baseFeePerGas":null,"transactions":[]}`
	tr.results[rpc.MethodSendRawTransaction] = `"0x` + repeatHex("33", 32) + `"`

	signer := newTestSigner(t, tr)
	to, err := hexutil.AddressFromHex("0x00000000000000000000000000000000000000cc")
	require.NoError(t, err)

	explicitNonce := uint64(7)
	explicitGas := uint64(21000)
	_, err = signer.SendTransaction(context.Background(), TxRequest{
		To:       &to,
		Nonce:    &explicitNonce,
		GasLimit: &explicitGas,
	})
	require.NoError(t, err)

	for _, c := range tr.calls {
		assert.NotEqual(t, rpc.MethodGetTransactionCount, c.Method, "nonce should not be fetched when explicit")
		assert.NotEqual(t, rpc.MethodEstimateGas, c.Method, "gas limit should not be estimated when explicit")
	}
}
