package client

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/brane-sdk/brane/client/logging"
	"github.com/brane-sdk/brane/gas"
	"github.com/brane-sdk/brane/kzg"
	"github.com/brane-sdk/brane/retry"
	"github.com/brane-sdk/brane/rpc"
)

// Config bundles everything a Reader (and its Signer/Tester extensions)
// need beyond the wire transport itself.
type Config struct {
	Transport Transport

	// Retry governs how read and write calls ride out transient faults;
	// the zero value resolves to retry.DefaultConfig().
	Retry retry.Config
	// GasPolicy governs the legacy/EIP-1559 fee-model decision send_transaction
	// makes when a caller doesn't pin FeePreference on a TxRequest.
	GasPolicy gas.Policy
	// Kzg validates blob sidecars before send_blob_transaction broadcasts
	// them; nil disables that validation (the sidecar's shape is still
	// checked, just not its pairing proof).
	Kzg kzg.Kzg
	// ReceiptPollInterval paces *_and_wait's eth_getTransactionReceipt
	// polling; zero defaults to one second.
	ReceiptPollInterval time.Duration
	// ReceiptTimeout bounds how long *_and_wait waits before returning
	// ErrReceiptTimeout; zero waits indefinitely (subject to ctx).
	ReceiptTimeout time.Duration

	Logger logging.Logger
}

func (c Config) withDefaults() Config {
	if c.Retry.MaxAttempts <= 0 {
		c.Retry = retry.DefaultConfig()
	}
	if c.ReceiptPollInterval <= 0 {
		c.ReceiptPollInterval = time.Second
	}
	if c.Logger == nil {
		c.Logger = logging.NopLogger{}
	}
	return c
}

// chainIDCache resolves the node's chain id exactly once. A
// singleflight.Group deduplicates the concurrent callers racing to
// produce that first resolution (so N goroutines building their first
// transaction at once issue one eth_chainId round trip, not N); an atomic
// latch then serves every later call from memory, since an Ethereum
// chain id never changes under a running node.
type chainIDCache struct {
	group    singleflight.Group
	resolved atomic.Uint64
	hasValue atomic.Bool
	cfg      Config
}

func newChainIDCache(cfg Config) *chainIDCache {
	return &chainIDCache{cfg: cfg}
}

func (c *chainIDCache) chainID(ctx context.Context) (uint64, error) {
	if c.hasValue.Load() {
		return c.resolved.Load(), nil
	}

	v, err, _ := c.group.Do("chainId", func() (any, error) {
		if c.hasValue.Load() {
			return c.resolved.Load(), nil
		}
		var hexID string
		err := retry.Do(ctx, c.cfg.Retry, func(ctx context.Context) error {
			return call(ctx, c.cfg.Transport, &hexID, rpc.MethodChainID)
		})
		if err != nil {
			return nil, err
		}
		id, err := parseQuantity(hexID)
		if err != nil {
			return nil, err
		}
		c.resolved.Store(id)
		c.hasValue.Store(true)
		return id, nil
	})
	if err != nil {
		return 0, err
	}
	id, ok := v.(uint64)
	if !ok {
		return 0, fmt.Errorf("client: chain id singleflight returned %T", v)
	}
	return id, nil
}
