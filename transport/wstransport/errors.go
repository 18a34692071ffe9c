package wstransport

import "errors"

var (
	// ErrClientClosed is returned by any submission made after Close has
	// completed.
	ErrClientClosed = errors.New("wstransport: client closed")
	// ErrClosedWhilePending is the failure given to a request that was
	// still outstanding when Close ran.
	ErrClosedWhilePending = errors.New("wstransport: connection closed")
	// ErrConnectionLost fails every pending request when the socket drops.
	ErrConnectionLost = errors.New("wstransport: connection lost")
	// ErrTimeout fails a pending request whose deadline elapsed first.
	ErrTimeout = errors.New("wstransport: request timed out")
	// ErrCancelled fails a pending request whose caller context was
	// cancelled before a response arrived.
	ErrCancelled = errors.New("wstransport: request cancelled")
	// ErrBackpressure is returned by Send when the outbound buffer is
	// full and the submission's backpressure deadline elapses before
	// room frees up.
	ErrBackpressure = errors.New("wstransport: backpressure deadline exceeded")
)
