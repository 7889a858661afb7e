// Package protocol defines the framing shared by the server and the client:
// every payload travels in an Envelope that marks it as a request or a
// response and carries a message id. A response always echoes the id of the
// request it answers, which lets either side match replies to the prompts
// that caused them without assuming strict alternation.
package protocol

import (
	"fmt"
	"sort"
)

// Kind tells a request apart from a response to an earlier request.
type Kind string

const (
	KindRequest  Kind = "request"
	KindResponse Kind = "response"
)

// Envelope frames one message of payload type E.
type Envelope[E any] struct {
	Kind  Kind   `json:"kind"`
	ID    uint32 `json:"id"`
	Event E      `json:"event"`
}

// Request wraps a payload as a fresh request under the given id.
func Request[E any](id uint32, event E) Envelope[E] {
	return Envelope[E]{Kind: KindRequest, ID: id, Event: event}
}

// Respond wraps a payload as the response to the given request, echoing its
// id.
func Respond[Req, Resp any](to Envelope[Req], event Resp) Envelope[Resp] {
	return Envelope[Resp]{Kind: KindResponse, ID: to.ID, Event: event}
}

// IDSource hands out request ids, starting at 1. Zero is reserved so an
// absent id is distinguishable from a real one.
type IDSource struct {
	last uint32
}

// Next returns a fresh request id.
func (s *IDSource) Next() uint32 {
	s.last++
	return s.last
}

// Inbox collects received envelopes keyed by id until the owner is ready to
// consume them. Requests and responses are kept apart because their ids live
// in different sequences: request ids are the sender's, response ids echo the
// receiver's own.
//
// Inbox is not safe for concurrent use; each connection owns one.
type Inbox[E any] struct {
	requests  map[uint32]Envelope[E]
	responses map[uint32]Envelope[E]
}

// NewInbox returns an empty inbox.
func NewInbox[E any]() *Inbox[E] {
	return &Inbox[E]{
		requests:  make(map[uint32]Envelope[E]),
		responses: make(map[uint32]Envelope[E]),
	}
}

// Put files a received envelope. A second envelope of the same kind and id
// indicates a broken peer.
func (in *Inbox[E]) Put(env Envelope[E]) error {
	switch env.Kind {
	case KindRequest:
		if _, dup := in.requests[env.ID]; dup {
			return fmt.Errorf("duplicate request id %d", env.ID)
		}
		in.requests[env.ID] = env
	case KindResponse:
		if _, dup := in.responses[env.ID]; dup {
			return fmt.Errorf("duplicate response id %d", env.ID)
		}
		in.responses[env.ID] = env
	default:
		return fmt.Errorf("unknown envelope kind %q", env.Kind)
	}
	return nil
}

// TakeResponse removes and returns the response echoing the given request
// id, if it has arrived.
func (in *Inbox[E]) TakeResponse(id uint32) (Envelope[E], bool) {
	env, ok := in.responses[id]
	if ok {
		delete(in.responses, id)
	}
	return env, ok
}

// PeekResponse returns the response echoing the given request id without
// consuming it.
func (in *Inbox[E]) PeekResponse(id uint32) (Envelope[E], bool) {
	env, ok := in.responses[id]
	return env, ok
}

// TakeRequest removes and returns the request with the given id, if it has
// arrived.
func (in *Inbox[E]) TakeRequest(id uint32) (Envelope[E], bool) {
	env, ok := in.requests[id]
	if ok {
		delete(in.requests, id)
	}
	return env, ok
}

// FindRequest removes and returns the pending request with the lowest id
// whose payload satisfies pred. Scanning in id order keeps consumption in
// the order the peer sent.
func (in *Inbox[E]) FindRequest(pred func(E) bool) (Envelope[E], bool) {
	ids := make([]uint32, 0, len(in.requests))
	for id := range in.requests {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		env := in.requests[id]
		if pred(env.Event) {
			delete(in.requests, id)
			return env, true
		}
	}
	return Envelope[E]{}, false
}

// Len returns the number of envelopes waiting in the inbox.
func (in *Inbox[E]) Len() int {
	return len(in.requests) + len(in.responses)
}
