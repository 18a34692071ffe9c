package client

import "errors"

var (
	// ErrSubscriptionsUnsupported is returned by OnNewHeads/OnLogs when the
	// configured Transport isn't a SubscribingTransport (e.g. a caller
	// wired a plain HTTP transport rather than the persistent WebSocket
	// one).
	ErrSubscriptionsUnsupported = errors.New("client: configured transport does not support subscriptions")
	// ErrReceiptTimeout is returned by *AndWait once the configured
	// timeout elapses without the transaction's receipt appearing.
	ErrReceiptTimeout = errors.New("client: timed out waiting for transaction receipt")
)
