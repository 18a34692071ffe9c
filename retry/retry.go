// Package retry classifies JSON-RPC faults as transient or terminal and
// wraps a call with bounded, jittered exponential backoff, generalizing
// a fixed-delay classify-then-switch retry loop into a reusable policy
// with exponential, jittered backoff instead of flat per-attempt delays.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/brane-sdk/brane/rpc"
)

// Config tunes backoff timing and attempt bounds. JitterPct is additive:
// each computed delay is inflated by a uniformly random fraction in
// [0, JitterPct].
type Config struct {
	Base        time.Duration
	Cap         time.Duration
	MaxAttempts int
	JitterPct   float64
}

// DefaultConfig returns the baseline retry policy: 5 attempts, a 200ms
// base delay capped at 5s, and a 0-25% additive jitter band (sampled
// afresh per attempt rather than fixed for a whole run).
func DefaultConfig() Config {
	return Config{
		Base:        200 * time.Millisecond,
		Cap:         5 * time.Second,
		MaxAttempts: 5,
		JitterPct:   0.25,
	}
}

// RetryExhausted is returned once MaxAttempts have all failed with a
// transient error.
type RetryExhausted struct {
	Attempts int
	LastErr  error
}

func (e *RetryExhausted) Error() string {
	return fmt.Sprintf("retry: exhausted %d attempts, last error: %v", e.Attempts, e.LastErr)
}

func (e *RetryExhausted) Unwrap() error { return e.LastErr }

// Classification is the transient/terminal verdict for a single error.
type Classification int

const (
	Terminal Classification = iota
	Transient
)

// Classify inspects an error and decides whether a retry attempt is
// worthwhile. HTTP 5xx, connect failures, read timeouts, and JSON-RPC
// codes meaning "busy"/"rate limited"/"not ready" are transient; HTTP 4xx
// (other than 429), the invalid-params/method-not-found/revert family,
// and decode errors are terminal.
func Classify(err error) Classification {
	if err == nil {
		return Terminal
	}

	var httpErr *rpc.HttpStatusError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return Transient
		}
		if httpErr.StatusCode >= 500 {
			return Transient
		}
		return Terminal
	}

	var exc *rpc.RpcException
	if errors.As(err, &exc) {
		if transientRPCCodes[exc.Code] {
			return Transient
		}
		return Terminal
	}

	var revert *rpc.Revert
	if errors.As(err, &revert) {
		return Terminal
	}

	if errors.Is(err, rpc.ErrConnectionLost) || errors.Is(err, rpc.ErrTimeout) {
		return Transient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}

	return Terminal
}

// transientRPCCodes covers the node-busy / rate-limited / not-ready
// family of application-level JSON-RPC error codes.
var transientRPCCodes = map[int]bool{
	-32000: true, // generic server error, frequently "node is busy" on Ethereum nodes
	-32005: true, // "limit exceeded" rate limiting
	-32010: true, // "transaction pool is full" style not-ready signal
}

// Do calls fn up to cfg.MaxAttempts times, sleeping a jittered exponential
// backoff between transient failures, and returns RetryExhausted once
// attempts run out. A terminal classification (or context cancellation)
// stops retrying immediately.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if Classify(lastErr) == Terminal {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := BackoffDelay(cfg, attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return &RetryExhausted{Attempts: cfg.MaxAttempts, LastErr: lastErr}
}

// BackoffDelay computes min(base * 2^(attempt-1), cap) and adds a random
// additive jitter fraction in [0, JitterPct]. Exported so the persistent
// transport's reconnect loop can schedule its own backoff on the same
// policy shape without duplicating the formula.
func BackoffDelay(cfg Config, attempt int) time.Duration {
	exp := cfg.Base << (attempt - 1)
	if exp <= 0 || exp > cfg.Cap {
		exp = cfg.Cap
	}
	jitter := 1 + rand.Float64()*cfg.JitterPct
	return time.Duration(float64(exp) * jitter)
}
