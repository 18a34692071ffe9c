package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brane-sdk/brane/rpc"
)

func TestTester_SnapshotAndRevert(t *testing.T) {
	tr := &scriptedTransport{results: map[string]string{
		rpc.MethodEvmSnapshot: `"0x1"`,
		rpc.MethodEvmRevert:   `true`,
	}}
	tester := NewTester(Config{Transport: tr})

	id, err := tester.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x1", id)

	ok, err := tester.Revert(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTester_Impersonate_ScopesReleaseToSessionToken(t *testing.T) {
	tr := &scriptedTransport{results: map[string]string{
		rpc.MethodImpersonate:     `true`,
		rpc.MethodStopImpersonate: `true`,
	}}
	tester := NewTester(Config{Transport: tr})

	addr, err := mustTestAddress()
	require.NoError(t, err)

	session, err := tester.Impersonate(context.Background(), addr)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	require.NoError(t, tester.StopImpersonating(context.Background(), session))

	// Stopping an already-released session is a no-op and must not issue
	// another anvil_stopImpersonatingAccount call.
	callsBefore := len(tr.calls)
	require.NoError(t, tester.StopImpersonating(context.Background(), session))
	assert.Len(t, tr.calls, callsBefore)
}

func TestTester_Mine_WithAndWithoutInterval(t *testing.T) {
	tr := &scriptedTransport{results: map[string]string{rpc.MethodEvmMine: `null`}}
	tester := NewTester(Config{Transport: tr})

	require.NoError(t, tester.Mine(context.Background(), 1, 0))
	require.NoError(t, tester.Mine(context.Background(), 1, 5))

	require.Len(t, tr.calls, 2)
	require.Len(t, tr.calls[0].Params, 1)
	require.Len(t, tr.calls[1].Params, 2)
}

func TestTester_Reset_WithForkOptions(t *testing.T) {
	tr := &scriptedTransport{results: map[string]string{rpc.MethodReset: `null`}}
	tester := NewTester(Config{Transport: tr})

	url := "https://example.invalid/rpc"
	block := uint64(100)
	require.NoError(t, tester.Reset(context.Background(), ResetOptions{ForkURL: &url, Block: &block}))

	require.Len(t, tr.calls, 1)
	require.Len(t, tr.calls[0].Params, 1)
}

func TestTester_AsSigner_NilWithoutPairing(t *testing.T) {
	tester := NewTester(Config{Transport: &scriptedTransport{}})
	assert.Nil(t, tester.AsSigner())
}
