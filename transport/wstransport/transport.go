// Package wstransport implements the persistent, full-duplex JSON-RPC
// transport: one long-lived WebSocket connection multiplexing correlated
// requests and server-initiated subscription notifications, with
// reconnection, backpressure, per-request timeouts, and cancellation.
//
// The write side is a bounded channel standing in for the disruptor-style
// ring buffer the design calls for: a single writer goroutine drains it
// onto the socket, decoupling submitting goroutines from network I/O. The
// read side is single-threaded and dispatches each inbound frame to
// either the pending-request table (by id) or the subscription table (by
// server-assigned subscription id); user callbacks run on a bounded
// worker pool, never on the read loop itself.
package wstransport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brane-sdk/brane/retry"
	"github.com/brane-sdk/brane/rpc"
)

// SubmitPolicy governs a new submission's behavior while the transport is
// RECONNECTING.
type SubmitPolicy int

const (
	// QueueUntilReconnected blocks the submission (cooperatively, subject
	// to the caller's context) until the transport is CONNECTED again.
	QueueUntilReconnected SubmitPolicy = iota
	// FailFast rejects the submission immediately with ErrConnectionLost.
	FailFast
)

// Config configures a persistent transport.
type Config struct {
	URL string

	// SendBufferSize bounds the outbound ring buffer; 0 defaults to 256.
	SendBufferSize int
	// Workers sizes the callback worker pool; 0 defaults to 8.
	Workers int
	// RequestTimeout bounds every request's wait for its reply, alongside
	// any deadline the caller's context carries; 0 defaults to 30s.
	RequestTimeout time.Duration
	// BackpressureTimeout bounds how long a submission waits for
	// outbound buffer room before failing with ErrBackpressure; 0 means
	// wait indefinitely (subject to the caller's context).
	BackpressureTimeout time.Duration
	// Reconnect tunes the reconnect backoff schedule.
	Reconnect retry.Config
	// SubmitWhileReconnecting chooses queue-or-fail-fast behavior for
	// new submissions made while RECONNECTING.
	SubmitWhileReconnecting SubmitPolicy
	// OnReconnected is invited after a successful reconnect, letting the
	// facade re-establish subscriptions the node forgot across the drop.
	OnReconnected func()
}

func (c Config) withDefaults() Config {
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = 256
	}
	if c.Workers <= 0 {
		c.Workers = 8
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.Reconnect.MaxAttempts <= 0 {
		c.Reconnect = retry.DefaultConfig()
	}
	return c
}

type callResult struct {
	resp rpc.Response
	err  error
}

// pendingRequest is a single-shot completion handle: exactly one of
// arrival, timeout, cancellation, or a connection drop completes it.
type pendingRequest struct {
	once sync.Once
	done chan callResult
}

func newPendingRequest() *pendingRequest {
	return &pendingRequest{done: make(chan callResult, 1)}
}

func (p *pendingRequest) complete(resp rpc.Response, err error) {
	p.once.Do(func() {
		p.done <- callResult{resp: resp, err: err}
	})
}

type batchResult struct {
	responses []rpc.Response
	err       error
}

// pendingBatch is the completion handle for one outbound batch frame. It
// is indexed in the transport's batch table under every request id the
// batch carries, so the single inbound array frame that answers it can be
// found from any one of its response ids and completed as a unit, instead
// of fanning a batch out into N independently-tracked pendingRequests.
type pendingBatch struct {
	once sync.Once
	done chan batchResult
	ids  []int64
}

func newPendingBatch(ids []int64) *pendingBatch {
	return &pendingBatch{done: make(chan batchResult, 1), ids: ids}
}

func (p *pendingBatch) complete(responses []rpc.Response, err error) {
	p.once.Do(func() {
		p.done <- batchResult{responses: responses, err: err}
	})
}

// subscription binds a server-assigned id to a user callback.
type subscription struct {
	id        string
	callback  func(json.RawMessage)
	cancelled atomic.Bool
}

// Transport is a persistent, multiplexed WebSocket JSON-RPC transport.
type Transport struct {
	cfg Config

	state atomic.Int32

	connMu sync.Mutex
	conn   *websocket.Conn

	pendingMu sync.Mutex
	pending   map[int64]*pendingRequest

	batchMu sync.Mutex
	batches map[int64]*pendingBatch

	subsMu   sync.Mutex
	subsByID map[string]*subscription

	outbound chan []byte
	work     chan func()

	// ready is closed exactly when the transport is CONNECTED;
	// writeLoop waits on it while RECONNECTING instead of spending
	// frames against a dead socket. readyMu guards replacing it across
	// a reconnect cycle.
	readyMu sync.Mutex
	ready   chan struct{}

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

func (t *Transport) markReady() {
	t.readyMu.Lock()
	close(t.ready)
	t.readyMu.Unlock()
}

func (t *Transport) markNotReady() {
	t.readyMu.Lock()
	t.ready = make(chan struct{})
	t.readyMu.Unlock()
}

func (t *Transport) readyChan() chan struct{} {
	t.readyMu.Lock()
	ch := t.ready
	t.readyMu.Unlock()
	return ch
}

// Dial opens the connection and starts the read loop, write loop, and
// callback worker pool.
func Dial(ctx context.Context, cfg Config) (*Transport, error) {
	cfg = cfg.withDefaults()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("wstransport: dial: %w", err)
	}

	ready := make(chan struct{})
	close(ready)

	t := &Transport{
		cfg:      cfg,
		conn:     conn,
		pending:  make(map[int64]*pendingRequest),
		batches:  make(map[int64]*pendingBatch),
		subsByID: make(map[string]*subscription),
		outbound: make(chan []byte, cfg.SendBufferSize),
		work:     make(chan func(), cfg.SendBufferSize),
		ready:    ready,
		closeCh:  make(chan struct{}),
	}
	t.state.Store(int32(Connected))

	for i := 0; i < cfg.Workers; i++ {
		t.wg.Add(1)
		go t.workerLoop()
	}
	t.wg.Add(2)
	go t.readLoop()
	go t.writeLoop()

	return t, nil
}

// State reports the transport's current lifecycle state.
func (t *Transport) State() State { return State(t.state.Load()) }

func (t *Transport) workerLoop() {
	defer t.wg.Done()
	for {
		select {
		case fn, ok := <-t.work:
			if !ok {
				return
			}
			fn()
		case <-t.closeCh:
			return
		}
	}
}

func (t *Transport) writeLoop() {
	defer t.wg.Done()
	for {
		select {
		case frame, ok := <-t.outbound:
			if !ok {
				return
			}
			// While RECONNECTING, wait for the new connection rather
			// than spending the frame against the dead socket.
			select {
			case <-t.readyChan():
			case <-t.closeCh:
				return
			}

			t.connMu.Lock()
			err := t.conn.WriteMessage(websocket.TextMessage, frame)
			t.connMu.Unlock()
			if err != nil {
				t.handleDisconnect(err)
			}
		case <-t.closeCh:
			return
		}
	}
}

func (t *Transport) readLoop() {
	defer t.wg.Done()
	for {
		t.connMu.Lock()
		conn := t.conn
		t.connMu.Unlock()

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if t.State() != Closed {
				t.handleDisconnect(err)
			}
			// The reconnect loop starts its own readLoop against the new
			// connection once it succeeds; this goroutine's job ends
			// with the connection it was reading.
			return
		}
		t.dispatch(msg)
	}
}

func (t *Transport) dispatch(frame []byte) {
	if rpc.IsNotification(frame) {
		var n rpc.Notification
		if err := json.Unmarshal(frame, &n); err != nil {
			return // malformed frame: dropped rather than propagated to the read loop's caller
		}
		t.subsMu.Lock()
		sub, ok := t.subsByID[n.Subscription]
		t.subsMu.Unlock()
		if !ok || sub.cancelled.Load() {
			return
		}
		select {
		case t.work <- func() { sub.callback(n.Result) }:
		default:
			// worker pool saturated: drop rather than block the read
			// loop, since user callbacks must never run directly on it.
		}
		return
	}

	if isBatchFrame(frame) {
		t.dispatchBatch(frame)
		return
	}

	var resp rpc.Response
	if err := json.Unmarshal(frame, &resp); err != nil {
		return
	}
	t.pendingMu.Lock()
	p, ok := t.pending[resp.ID]
	if ok {
		delete(t.pending, resp.ID)
	}
	t.pendingMu.Unlock()
	if ok {
		p.complete(resp, nil)
	}
	// An id with no matching pending entry is a late/duplicate reply,
	// dropped silently.
}

// isBatchFrame reports whether frame is a JSON array, the wire shape a
// node replies with for a batch submission (a single frame holding every
// response), as opposed to the single JSON object a lone call answers
// with.
func isBatchFrame(frame []byte) bool {
	for _, b := range frame {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// dispatchBatch completes the pendingBatch matching the array frame's
// responses, correlating the whole reply as a single unit rather than
// resolving its requests one by one.
func (t *Transport) dispatchBatch(frame []byte) {
	var responses []rpc.Response
	if err := json.Unmarshal(frame, &responses); err != nil || len(responses) == 0 {
		return
	}
	t.batchMu.Lock()
	pb, ok := t.batches[responses[0].ID]
	if ok {
		for _, id := range pb.ids {
			delete(t.batches, id)
		}
	}
	t.batchMu.Unlock()
	if ok {
		pb.complete(responses, nil)
	}
	// No pendingBatch matches any response id: late/duplicate reply,
	// dropped silently like an unmatched single-call id.
}

// handleDisconnect transitions to RECONNECTING, fails every pending
// request, and starts the reconnect loop. Called from whichever of the
// read or write loop notices the socket first; subsequent calls while
// already reconnecting are no-ops.
func (t *Transport) handleDisconnect(cause error) {
	if !t.state.CompareAndSwap(int32(Connected), int32(Reconnecting)) {
		return
	}
	t.markNotReady()

	t.pendingMu.Lock()
	for id, p := range t.pending {
		p.complete(rpc.Response{}, ErrConnectionLost)
		delete(t.pending, id)
	}
	t.pendingMu.Unlock()

	t.batchMu.Lock()
	failed := make(map[*pendingBatch]struct{})
	for id, pb := range t.batches {
		failed[pb] = struct{}{}
		delete(t.batches, id)
	}
	t.batchMu.Unlock()
	for pb := range failed {
		pb.complete(nil, ErrConnectionLost)
	}

	go t.reconnectLoop()
}

func (t *Transport) reconnectLoop() {
	for attempt := 1; ; attempt++ {
		select {
		case <-t.closeCh:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.cfg.URL, nil)
		cancel()
		if err != nil {
			delay := retry.BackoffDelay(t.cfg.Reconnect, attempt)
			select {
			case <-time.After(delay):
				continue
			case <-t.closeCh:
				return
			}
		}

		t.connMu.Lock()
		t.conn = conn
		t.connMu.Unlock()
		t.state.Store(int32(Connected))
		t.markReady()

		if t.cfg.OnReconnected != nil {
			t.cfg.OnReconnected()
		}

		t.wg.Add(1)
		go t.readLoop()
		return
	}
}

// Send submits a pre-built request and waits for its matched response,
// honoring ctx cancellation, the request's timeout, and backpressure on
// the outbound buffer.
func (t *Transport) Send(ctx context.Context, req rpc.Request) (rpc.Response, error) {
	if t.State() == Closed {
		return rpc.Response{}, ErrClientClosed
	}
	if t.State() == Reconnecting && t.cfg.SubmitWhileReconnecting == FailFast {
		return rpc.Response{}, ErrConnectionLost
	}

	frame, err := json.Marshal(req)
	if err != nil {
		return rpc.Response{}, fmt.Errorf("wstransport: marshal request: %w", err)
	}

	p := newPendingRequest()
	t.pendingMu.Lock()
	t.pending[req.ID] = p
	t.pendingMu.Unlock()

	cleanup := func() {
		t.pendingMu.Lock()
		delete(t.pending, req.ID)
		t.pendingMu.Unlock()
	}

	deadline := t.cfg.RequestTimeout
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	var bpTimer *time.Timer
	var bpCh <-chan time.Time
	if t.cfg.BackpressureTimeout > 0 {
		bpTimer = time.NewTimer(t.cfg.BackpressureTimeout)
		defer bpTimer.Stop()
		bpCh = bpTimer.C
	}

	select {
	case t.outbound <- frame:
	case <-ctx.Done():
		cleanup()
		return rpc.Response{}, ErrCancelled
	case <-bpCh:
		cleanup()
		return rpc.Response{}, ErrBackpressure
	case <-t.closeCh:
		cleanup()
		return rpc.Response{}, ErrClosedWhilePending
	}

	select {
	case result := <-p.done:
		return result.resp, result.err
	case <-ctx.Done():
		p.complete(rpc.Response{}, ErrCancelled)
		cleanup()
		return rpc.Response{}, ErrCancelled
	case <-timer.C:
		p.complete(rpc.Response{}, ErrTimeout)
		cleanup()
		return rpc.Response{}, ErrTimeout
	case <-t.closeCh:
		p.complete(rpc.Response{}, ErrClosedWhilePending)
		cleanup()
		return rpc.Response{}, ErrClosedWhilePending
	}
}

// Call builds and submits a request in one step.
func (t *Transport) Call(ctx context.Context, method string, params ...any) (rpc.Response, error) {
	return t.Send(ctx, rpc.NewRequest(method, params...))
}

// CallBatch marshals b as a single JSON-RPC array and submits it as one
// outbound frame, then waits for the single array frame that answers it,
// correlating the whole reply back to b's requests as a unit via
// b.Correlate. It never fans a batch out into independent per-request
// frames: the node sees one array in and replies with one array out.
func (t *Transport) CallBatch(ctx context.Context, b rpc.Batch) ([]rpc.Response, error) {
	if len(b.Requests) == 0 {
		return nil, nil
	}
	if t.State() == Closed {
		return nil, ErrClientClosed
	}
	if t.State() == Reconnecting && t.cfg.SubmitWhileReconnecting == FailFast {
		return nil, ErrConnectionLost
	}

	frame, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("wstransport: marshal batch: %w", err)
	}

	ids := make([]int64, len(b.Requests))
	for i, req := range b.Requests {
		ids[i] = req.ID
	}
	pb := newPendingBatch(ids)
	t.batchMu.Lock()
	for _, id := range ids {
		t.batches[id] = pb
	}
	t.batchMu.Unlock()

	cleanup := func() {
		t.batchMu.Lock()
		for _, id := range ids {
			delete(t.batches, id)
		}
		t.batchMu.Unlock()
	}

	timer := time.NewTimer(t.cfg.RequestTimeout)
	defer timer.Stop()

	var bpCh <-chan time.Time
	if t.cfg.BackpressureTimeout > 0 {
		bpTimer := time.NewTimer(t.cfg.BackpressureTimeout)
		defer bpTimer.Stop()
		bpCh = bpTimer.C
	}

	select {
	case t.outbound <- frame:
	case <-ctx.Done():
		cleanup()
		return nil, ErrCancelled
	case <-bpCh:
		cleanup()
		return nil, ErrBackpressure
	case <-t.closeCh:
		cleanup()
		return nil, ErrClosedWhilePending
	}

	select {
	case result := <-pb.done:
		if result.err != nil {
			return nil, result.err
		}
		return b.Correlate(result.responses)
	case <-ctx.Done():
		pb.complete(nil, ErrCancelled)
		cleanup()
		return nil, ErrCancelled
	case <-timer.C:
		pb.complete(nil, ErrTimeout)
		cleanup()
		return nil, ErrTimeout
	case <-t.closeCh:
		pb.complete(nil, ErrClosedWhilePending)
		cleanup()
		return nil, ErrClosedWhilePending
	}
}

// Subscribe issues eth_subscribe and binds the assigned server id to
// callback; inbound eth_subscription notifications for that id are
// dispatched to callback on the worker pool.
func (t *Transport) Subscribe(ctx context.Context, params []any, callback func(json.RawMessage)) (string, error) {
	resp, err := t.Call(ctx, rpc.MethodSubscribe, params...)
	if err != nil {
		return "", err
	}
	var subID string
	if err := resp.Decode(&subID); err != nil {
		return "", fmt.Errorf("wstransport: decode subscription id: %w", err)
	}

	sub := &subscription{id: subID, callback: callback}
	t.subsMu.Lock()
	t.subsByID[subID] = sub
	t.subsMu.Unlock()
	return subID, nil
}

// Unsubscribe cancels a subscription; a second call for the same id is a
// no-op returning success.
func (t *Transport) Unsubscribe(ctx context.Context, subID string) error {
	t.subsMu.Lock()
	sub, ok := t.subsByID[subID]
	t.subsMu.Unlock()
	if !ok || sub.cancelled.Load() {
		return nil
	}
	sub.cancelled.Store(true)

	t.subsMu.Lock()
	delete(t.subsByID, subID)
	t.subsMu.Unlock()

	_, err := t.Call(ctx, rpc.MethodUnsubscribe, subID)
	return err
}

// Close is terminal and idempotent: it stops all loops, fails every
// pending request with ErrClosedWhilePending, and makes every subsequent
// Send fail synchronously with ErrClientClosed.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.state.Store(int32(Closed))
		close(t.closeCh)

		t.connMu.Lock()
		if t.conn != nil {
			err = t.conn.Close()
		}
		t.connMu.Unlock()

		t.pendingMu.Lock()
		for id, p := range t.pending {
			p.complete(rpc.Response{}, ErrClosedWhilePending)
			delete(t.pending, id)
		}
		t.pendingMu.Unlock()

		t.batchMu.Lock()
		failed := make(map[*pendingBatch]struct{})
		for id, pb := range t.batches {
			failed[pb] = struct{}{}
			delete(t.batches, id)
		}
		t.batchMu.Unlock()
		for pb := range failed {
			pb.complete(nil, ErrClosedWhilePending)
		}

		close(t.outbound)
		close(t.work)
		t.wg.Wait()
	})
	return err
}
