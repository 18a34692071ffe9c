// Package httptransport implements the connection-pooled request/response
// JSON-RPC transport: every call is an independent HTTP POST, concurrency
// is handled by Go's http.Transport connection pool, and batches are a
// single POST of a JSON array correlated back to requests by id.
package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/brane-sdk/brane/rpc"
)

// Config configures the pooled HTTP client.
type Config struct {
	Endpoint string
	// ConnectTimeout bounds dialing the underlying connection; zero uses
	// Go's http.Transport default.
	ConnectTimeout time.Duration
	// MaxIdleConnsPerHost sizes the pool of reusable connections to the
	// node, matching http.Transport's own pooling knob.
	MaxIdleConnsPerHost int
	Headers             map[string]string
}

// Transport is a pooled-connection request/response JSON-RPC client.
type Transport struct {
	endpoint string
	headers  map[string]string
	client   *http.Client
}

// New builds a Transport whose underlying http.Client pools connections
// per Config; a zero Config keeps up to 16 idle connections per host and
// sets no connect deadline.
func New(cfg Config) *Transport {
	maxIdle := cfg.MaxIdleConnsPerHost
	if maxIdle <= 0 {
		maxIdle = 16
	}
	base := &http.Transport{
		MaxIdleConnsPerHost: maxIdle,
		MaxConnsPerHost:     0,
	}
	if cfg.ConnectTimeout > 0 {
		base.DialContext = (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext
	}
	return &Transport{
		endpoint: cfg.Endpoint,
		headers:  cfg.Headers,
		client:   &http.Client{Transport: base},
	}
}

// Call builds a request for method/params and submits it, mirroring
// wstransport's Call signature so client can address either transport
// through one interface.
func (t *Transport) Call(ctx context.Context, method string, params ...any) (rpc.Response, error) {
	return t.Send(ctx, rpc.NewRequest(method, params...))
}

// Send submits a single pre-built JSON-RPC request and decodes its response.
func (t *Transport) Send(ctx context.Context, req rpc.Request) (rpc.Response, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return rpc.Response{}, fmt.Errorf("httptransport: marshal request: %w", err)
	}

	body, err := t.post(ctx, raw)
	if err != nil {
		return rpc.Response{}, err
	}

	var resp rpc.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return rpc.Response{}, fmt.Errorf("httptransport: decode response: %w", err)
	}
	return resp, nil
}

// CallBatch submits a batch as one POST and correlates the replies back
// to b's requests by id, in request order.
func (t *Transport) CallBatch(ctx context.Context, b rpc.Batch) ([]rpc.Response, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("httptransport: marshal batch: %w", err)
	}

	body, err := t.post(ctx, raw)
	if err != nil {
		return nil, err
	}

	var responses []rpc.Response
	if err := json.Unmarshal(body, &responses); err != nil {
		return nil, fmt.Errorf("httptransport: decode batch response: %w", err)
	}
	return b.Correlate(responses)
}

func (t *Transport) post(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("httptransport: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rpc.ErrConnectionLost, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httptransport: read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &rpc.HttpStatusError{StatusCode: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}

// Close releases the pooled idle connections.
func (t *Transport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
