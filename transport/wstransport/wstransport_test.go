package wstransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brane-sdk/brane/rpc"
)

// silentServer accepts a WebSocket connection and never replies, letting
// tests exercise timeout/close behavior against pending requests that
// never resolve via arrival.
func silentServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Keep the connection open but read (and discard) frames so the
		// client's writes don't error; never write a reply.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return srv, wsURL
}

func TestClose_FailsThreePendingRequestsInBoundedTime(t *testing.T) {
	srv, wsURL := silentServer(t)
	defer srv.Close()

	tr, err := Dial(context.Background(), Config{URL: wsURL, RequestTimeout: 5 * time.Second})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = tr.Call(context.Background(), "eth_blockNumber")
		}(i)
	}

	// Give the three sends a moment to land in the pending table, then
	// close — none of them will ever see a reply.
	time.Sleep(50 * time.Millisecond)

	closeDone := make(chan struct{})
	go func() {
		tr.Close()
		close(closeDone)
	}()

	select {
	case <-closeDone:
	case <-time.After(2 * time.Second):
		t.Fatal("close did not complete in bounded time")
	}

	wg.Wait()
	for _, e := range errs {
		assert.ErrorIs(t, e, ErrClosedWhilePending)
	}
}

func TestSend_AfterCloseFailsSynchronously(t *testing.T) {
	srv, wsURL := silentServer(t)
	defer srv.Close()

	tr, err := Dial(context.Background(), Config{URL: wsURL})
	require.NoError(t, err)
	require.NoError(t, tr.Close())

	_, err = tr.Call(context.Background(), "eth_blockNumber")
	assert.ErrorIs(t, err, ErrClientClosed)
}

func TestClose_IsIdempotent(t *testing.T) {
	srv, wsURL := silentServer(t)
	defer srv.Close()

	tr, err := Dial(context.Background(), Config{URL: wsURL})
	require.NoError(t, err)

	assert.NoError(t, tr.Close())
	assert.NoError(t, tr.Close())
}

func TestUnsubscribe_IsIdempotent(t *testing.T) {
	srv, wsURL := silentServer(t)
	defer srv.Close()

	tr, err := Dial(context.Background(), Config{URL: wsURL, RequestTimeout: time.Second})
	require.NoError(t, err)
	defer tr.Close()

	// No subscription was ever created for "missing"; unsubscribing must
	// still succeed as a no-op.
	assert.NoError(t, tr.Unsubscribe(context.Background(), "missing"))
	assert.NoError(t, tr.Unsubscribe(context.Background(), "missing"))
}

// batchEchoServer accepts a connection and answers every inbound frame
// that decodes as a JSON array of requests with a single frame carrying
// the matching array of responses, counting how many distinct frames it
// received so a test can assert a batch crossed the wire as exactly one.
func batchEchoServer(t *testing.T) (*httptest.Server, string, *atomic.Int32) {
	t.Helper()
	var frames atomic.Int32
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go func() {
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				frames.Add(1)
				var reqs []rpc.Request
				if err := json.Unmarshal(msg, &reqs); err != nil {
					return
				}
				responses := make([]rpc.Response, len(reqs))
				for i, req := range reqs {
					responses[i] = rpc.Response{ID: req.ID, Result: json.RawMessage(`"0x1"`)}
				}
				out, err := json.Marshal(responses)
				if err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
					return
				}
			}
		}()
	}))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return srv, wsURL, &frames
}

func TestCallBatch_SendsOneFrameAndCorrelatesRepliesAsAUnit(t *testing.T) {
	srv, wsURL, frames := batchEchoServer(t)
	defer srv.Close()

	tr, err := Dial(context.Background(), Config{URL: wsURL, RequestTimeout: 2 * time.Second})
	require.NoError(t, err)
	defer tr.Close()

	batch := rpc.NewBatch(
		rpc.Call{Method: "eth_blockNumber"},
		rpc.Call{Method: "eth_chainId"},
		rpc.Call{Method: "eth_gasPrice"},
	)

	responses, err := tr.CallBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, responses, 3)
	for i, resp := range responses {
		assert.Truef(t, resp.IsSuccess(), "response %d", i)
		assert.Equal(t, batch.Requests[i].ID, resp.ID)
	}

	// The whole batch must cross the wire as exactly one frame holding a
	// JSON array, never as three independent per-request frames.
	assert.Equal(t, int32(1), frames.Load())
}

// dropOnceServer accepts a connection, lets it carry exactly one inbound
// frame, then closes the socket without ever replying, simulating a
// connection drop mid-request. Every later connection attempt is refused.
func dropOnceServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	var upgrader websocket.Upgrader
	var accepted atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if accepted.Swap(true) {
			http.Error(w, "reconnect refused", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go func() {
			_, _, _ = conn.ReadMessage()
			conn.Close()
		}()
	}))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return srv, wsURL
}

func TestHandleDisconnect_FailsPendingAndEntersReconnecting(t *testing.T) {
	srv, wsURL := dropOnceServer(t)

	tr, err := Dial(context.Background(), Config{URL: wsURL, RequestTimeout: 2 * time.Second})
	require.NoError(t, err)
	defer tr.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := tr.Call(context.Background(), "eth_blockNumber")
		errCh <- err
	}()

	// Let the call land and the server drop the socket in response. The
	// server refuses every reconnect dial (the first one starts right
	// after the drop, well inside this sleep) — otherwise a fast localhost
	// reconnect would recover almost instantly and Reconnecting would
	// never be observable below. Closing the server keeps it that way.
	time.Sleep(50 * time.Millisecond)
	srv.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrConnectionLost)
	case <-time.After(2 * time.Second):
		t.Fatal("pending call never failed after the connection dropped")
	}

	assert.Eventually(t, func() bool {
		return tr.State() == Reconnecting
	}, 2*time.Second, 10*time.Millisecond, "transport never entered Reconnecting")
}

func TestSend_BackpressureFailsFastWhenBufferStaysFull(t *testing.T) {
	srv, wsURL := silentServer(t)
	defer srv.Close()

	tr, err := Dial(context.Background(), Config{
		URL:                 wsURL,
		SendBufferSize:      1,
		RequestTimeout:      2 * time.Second,
		BackpressureTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer tr.Close()

	// Replace the ready gate with one that never closes, so the write
	// loop dequeues exactly one frame and then blocks forever on it,
	// leaving the single-slot outbound buffer genuinely and permanently
	// full for the rest of this test.
	tr.markNotReady()

	go tr.Call(context.Background(), "eth_blockNumber") // consumed by the now-stuck write loop
	time.Sleep(30 * time.Millisecond)
	go tr.Call(context.Background(), "eth_chainId") // occupies the one buffer slot
	time.Sleep(30 * time.Millisecond)

	_, err = tr.Call(context.Background(), "eth_gasPrice")
	assert.ErrorIs(t, err, ErrBackpressure)
}

func TestSend_QueuesForBufferRoomWhenBackpressureUnbounded(t *testing.T) {
	srv, wsURL := silentServer(t)
	defer srv.Close()

	tr, err := Dial(context.Background(), Config{
		URL:            wsURL,
		SendBufferSize: 1,
		RequestTimeout: 300 * time.Millisecond,
		// BackpressureTimeout left at zero: a submission queues
		// indefinitely for outbound buffer room instead of failing fast.
	})
	require.NoError(t, err)
	defer tr.Close()

	tr.markNotReady()

	go tr.Call(context.Background(), "eth_blockNumber") // consumed by the now-stuck write loop
	time.Sleep(30 * time.Millisecond)
	go tr.Call(context.Background(), "eth_chainId") // occupies the one buffer slot
	time.Sleep(30 * time.Millisecond)

	thirdDone := make(chan error, 1)
	go func() {
		_, err := tr.Call(context.Background(), "eth_gasPrice")
		thirdDone <- err
	}()

	// With the buffer full and the write loop stuck, the third call must
	// still be queued (blocked), not failed, since no BackpressureTimeout
	// is configured.
	select {
	case <-thirdDone:
		t.Fatal("call returned before any buffer room freed")
	case <-time.After(100 * time.Millisecond):
	}

	// Freeing the write loop drains the buffer; the queued call's frame
	// goes out, and it then times out waiting on a reply silentServer
	// never sends — proving it queued through rather than failing fast.
	tr.markReady()

	select {
	case err := <-thirdDone:
		assert.ErrorIs(t, err, ErrTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("queued call never went through after buffer room freed")
	}
}
