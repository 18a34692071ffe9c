package client

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brane-sdk/brane/rpc"
)

// countingChainIDTransport answers eth_chainId with a fixed value,
// counting how many times it was actually invoked.
type countingChainIDTransport struct {
	calls atomic.Int64
}

func (t *countingChainIDTransport) Call(ctx context.Context, method string, params ...any) (rpc.Response, error) {
	t.calls.Add(1)
	req := rpc.NewRequest(method, params...)
	return rpc.Response{ID: req.ID, Result: []byte(`"0x7a69"`)}, nil
}

func (t *countingChainIDTransport) CallBatch(ctx context.Context, b rpc.Batch) ([]rpc.Response, error) {
	return nil, nil
}

func TestChainIDCache_SingleFlightsConcurrentFirstReads(t *testing.T) {
	tr := &countingChainIDTransport{}
	cache := newChainIDCache(Config{Transport: tr}.withDefaults())

	const n = 16
	var wg sync.WaitGroup
	results := make([]uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := cache.chainID(context.Background())
			require.NoError(t, err)
			results[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range results {
		assert.Equal(t, uint64(31337), id)
	}
	assert.Equal(t, int64(1), tr.calls.Load())
}

func TestChainIDCache_LaterCallsServeFromMemory(t *testing.T) {
	tr := &countingChainIDTransport{}
	cache := newChainIDCache(Config{Transport: tr}.withDefaults())

	_, err := cache.chainID(context.Background())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := cache.chainID(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1), tr.calls.Load())
}
