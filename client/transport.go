package client

import (
	"context"
	"encoding/json"

	"github.com/brane-sdk/brane/rpc"
)

// Transport is the capability every client needs at minimum: submit one
// call, submit a batch. Both transport/httptransport.Transport and
// transport/wstransport.Transport satisfy this through their identical
// Call/CallBatch signatures.
type Transport interface {
	Call(ctx context.Context, method string, params ...any) (rpc.Response, error)
	CallBatch(ctx context.Context, b rpc.Batch) ([]rpc.Response, error)
}

// SubscribingTransport is the additional capability only
// transport/wstransport.Transport offers; Reader.OnNewHeads/OnLogs type-
// assert for it and fail with ErrSubscriptionsUnsupported when the
// configured Transport doesn't implement it (e.g. plain HTTP).
type SubscribingTransport interface {
	Transport
	Subscribe(ctx context.Context, params []any, callback func(json.RawMessage)) (string, error)
	Unsubscribe(ctx context.Context, subID string) error
}

// call is a small convenience wrapper decoding a successful response
// straight into v, surfacing a node-reported error as rpc.ClassifyError's
// verdict rather than the raw *rpc.Error.
func call(ctx context.Context, t Transport, v any, method string, params ...any) error {
	resp, err := t.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return rpc.ClassifyError(resp.Error)
	}
	if v == nil {
		return nil
	}
	return json.Unmarshal(resp.Result, v)
}
