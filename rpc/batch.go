package rpc

import (
	"encoding/json"
	"fmt"
)

// Batch is an ordered set of requests submitted as a single JSON-RPC
// array; responses are matched back to requests by id rather than by
// position, since a node is free to reply out of order within a batch.
type Batch struct {
	Requests []Request
}

// NewBatch builds a batch from method/params tuples, minting a fresh id
// for each.
func NewBatch(calls ...Call) Batch {
	reqs := make([]Request, len(calls))
	for i, c := range calls {
		reqs[i] = NewRequest(c.Method, c.Params...)
	}
	return Batch{Requests: reqs}
}

// Call is one method/params tuple destined for a batch.
type Call struct {
	Method string
	Params []any
}

// MarshalJSON emits the batch as a bare JSON array, the wire form every
// JSON-RPC 2.0 batch submission takes.
func (b Batch) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Requests)
}

// Correlate matches a set of responses back to b's requests by id and
// returns them in the order the requests were added; it fails if any
// request's id has no matching response.
func (b Batch) Correlate(responses []Response) ([]Response, error) {
	byID := make(map[int64]Response, len(responses))
	for _, r := range responses {
		byID[r.ID] = r
	}
	ordered := make([]Response, len(b.Requests))
	for i, req := range b.Requests {
		resp, ok := byID[req.ID]
		if !ok {
			return nil, fmt.Errorf("rpc: batch response missing for request id %d (%s)", req.ID, req.Method)
		}
		ordered[i] = resp
	}
	return ordered, nil
}
