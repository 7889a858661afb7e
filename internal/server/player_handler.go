package server

import (
	"fmt"

	"github.com/Yamazak-mc/algo-cg/engine"
	"github.com/Yamazak-mc/algo-cg/internal/protocol"
)

// PlayerHandler binds a seated player to their connection. It owns the
// request id sequence for that connection and remembers which game event,
// if any, is still waiting for the player's response.
//
// PlayerHandler is driven only by the core loop and needs no locking.
type PlayerHandler struct {
	ID engine.PlayerID

	link      link
	ids       protocol.IDSource
	pending   uint32 // request id awaiting a game event response; 0 when none
	connected bool
}

func newPlayerHandler(id engine.PlayerID, l link) *PlayerHandler {
	return &PlayerHandler{ID: id, link: l, connected: true}
}

// Connected reports whether the player's connection is still writable.
func (h *PlayerHandler) Connected() bool {
	return h.connected
}

// Notify sends a fire-and-forget server event. No response is expected.
func (h *PlayerHandler) Notify(ev protocol.ServerEvent) {
	if !h.connected {
		return
	}
	if !h.link.Send(protocol.Request(h.ids.Next(), ev)) {
		h.connected = false
	}
}

// Respond answers a client request, echoing its id.
func (h *PlayerHandler) Respond(to protocol.Envelope[protocol.ClientEvent], ev protocol.ServerEvent) {
	if !h.connected {
		return
	}
	if !h.link.Send(protocol.Respond(to, ev)) {
		h.connected = false
	}
}

// PushGameEvent sends a game event the player must answer, replacing any
// response expectation from an earlier push.
func (h *PlayerHandler) PushGameEvent(ev engine.GameEvent) {
	if !h.connected {
		return
	}
	id := h.ids.Next()
	h.pending = id
	if !h.link.Send(protocol.Request(id, protocol.GameEventPush(ev))) {
		h.connected = false
	}
}

// AwaitingResponse reports whether a pushed game event is still unanswered.
func (h *PlayerHandler) AwaitingResponse() bool {
	return h.pending != 0
}

// Reply validates a client envelope against the pending game event push and
// extracts the carried response. Stale ids, wrong kinds, and missing
// payloads are all rejected without clearing the expectation, so the real
// response can still arrive.
func (h *PlayerHandler) Reply(env protocol.Envelope[protocol.ClientEvent]) (engine.GameEvent, error) {
	if h.pending == 0 {
		return engine.GameEvent{}, fmt.Errorf("player %d: no game event awaits a response", h.ID)
	}
	if env.Kind != protocol.KindResponse {
		return engine.GameEvent{}, fmt.Errorf("player %d: expected a response envelope, got %q", h.ID, env.Kind)
	}
	if env.ID != h.pending {
		return engine.GameEvent{}, fmt.Errorf("player %d: response id %d does not match pending request %d", h.ID, env.ID, h.pending)
	}
	if env.Event.Type != protocol.ClientGameEventResponse || env.Event.Response == nil {
		return engine.GameEvent{}, fmt.Errorf("player %d: response envelope carries no game event", h.ID)
	}
	h.pending = 0
	return *env.Event.Response, nil
}

// markDisconnected flags the connection as gone.
func (h *PlayerHandler) markDisconnected() {
	h.connected = false
}
