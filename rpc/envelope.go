// Package rpc models the JSON-RPC 2.0 envelope Brane speaks to a node:
// requests with positional parameters, success/error responses, batch
// framing, and server-initiated subscription notifications. It does not
// move bytes — that is transport/httptransport and transport/wstransport's
// job — it only knows how to marshal a call and unmarshal what comes back.
package rpc

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
)

const Version = "2.0"

// Request is a single JSON-RPC call. Params are marshaled positionally
// as a JSON array, the wire form every standard Ethereum RPC method uses.
type Request struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// MarshalJSON emits the envelope with the jsonrpc version tag.
func (r Request) MarshalJSON() ([]byte, error) {
	type wire struct {
		JSONRPC string `json:"jsonrpc"`
		ID      int64  `json:"id"`
		Method  string `json:"method"`
		Params  []any  `json:"params"`
	}
	return json.Marshal(wire{JSONRPC: Version, ID: r.ID, Method: r.Method, Params: r.Params})
}

var requestIDCounter int64

// NextRequestID returns a process-wide monotonically increasing request
// id, safe for concurrent callers submitting through either transport at
// once.
func NextRequestID() int64 {
	return atomic.AddInt64(&requestIDCounter, 1)
}

// NewRequest builds a request with a fresh id.
func NewRequest(method string, params ...any) Request {
	if params == nil {
		params = []any{}
	}
	return Request{ID: NextRequestID(), Method: method, Params: params}
}

// Error is the node-reported JSON-RPC error object, `{code, message, data?}`.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Response is a single JSON-RPC reply: exactly one of Result or Error is
// populated.
type Response struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

type responseWire struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// UnmarshalJSON accepts either response shape and rejects a reply naming
// neither field, since a well-formed node never sends both or neither.
func (r *Response) UnmarshalJSON(data []byte) error {
	var w responseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Result == nil && w.Error == nil {
		return fmt.Errorf("rpc: response %d carries neither result nor error", w.ID)
	}
	r.ID, r.Result, r.Error = w.ID, w.Result, w.Error
	return nil
}

func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(responseWire{JSONRPC: Version, ID: r.ID, Result: r.Result, Error: r.Error})
}

// IsSuccess reports whether the response carries a result rather than an
// error.
func (r Response) IsSuccess() bool { return r.Error == nil }

// Decode unmarshals the success result into v. Calling Decode on an error
// response is a programming error; check IsSuccess first.
func (r Response) Decode(v any) error {
	if r.Error != nil {
		return r.Error
	}
	return json.Unmarshal(r.Result, v)
}

// subscriptionParams is the `{subscription, result}` payload carried by an
// eth_subscription notification.
type subscriptionParams struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

// Notification is a server-initiated `eth_subscription` message, demuxed
// by the persistent transport using Subscription as the correlation key.
type Notification struct {
	Method       string
	Subscription string
	Result       json.RawMessage
}

type notificationWire struct {
	JSONRPC string              `json:"jsonrpc"`
	Method  string              `json:"method"`
	Params  subscriptionParams  `json:"params"`
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	var w notificationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	n.Method = w.Method
	n.Subscription = w.Params.Subscription
	n.Result = w.Params.Result
	return nil
}

// IsNotification inspects a raw server frame to decide whether it is a
// subscription push (carries "method":"eth_subscription" and no "id")
// rather than a correlated response. The persistent transport's read loop
// uses this to route each inbound frame before attempting either decode.
func IsNotification(frame []byte) bool {
	var probe struct {
		ID     *int64 `json:"id"`
		Method string `json:"method"`
	}
	if err := json.Unmarshal(frame, &probe); err != nil {
		return false
	}
	return probe.ID == nil && probe.Method == "eth_subscription"
}
