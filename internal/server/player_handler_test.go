package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yamazak-mc/algo-cg/engine"
	"github.com/Yamazak-mc/algo-cg/internal/protocol"
)

func TestHandlerVerifiesGameEventResponses(t *testing.T) {
	l := &fakeLink{}
	h := newPlayerHandler(1, l)

	_, err := h.Reply(protocol.Envelope[protocol.ClientEvent]{Kind: protocol.KindResponse, ID: 1})
	assert.Error(t, err, "reply with nothing pending")

	h.PushGameEvent(engine.RespOkEvent())
	require.Len(t, l.sent, 1)
	pushed := l.last()
	assert.Equal(t, protocol.KindRequest, pushed.Kind)
	assert.True(t, h.AwaitingResponse())

	// Wrong envelope kind.
	_, err = h.Reply(protocol.Request(pushed.ID, protocol.GameEventResponse(engine.RespOkEvent())))
	assert.Error(t, err)
	assert.True(t, h.AwaitingResponse(), "expectation survives a bad reply")

	// Stale id.
	stale := protocol.Envelope[protocol.ClientEvent]{
		Kind: protocol.KindResponse, ID: pushed.ID + 7,
		Event: protocol.GameEventResponse(engine.RespOkEvent()),
	}
	_, err = h.Reply(stale)
	assert.Error(t, err)

	// Missing payload.
	empty := protocol.Envelope[protocol.ClientEvent]{Kind: protocol.KindResponse, ID: pushed.ID}
	_, err = h.Reply(empty)
	assert.Error(t, err)

	// The real thing.
	good := protocol.Respond(pushed, protocol.GameEventResponse(engine.NumberGuessedEvent(3)))
	resp, err := h.Reply(good)
	require.NoError(t, err)
	assert.Equal(t, engine.EventNumberGuessed, resp.Type)
	assert.False(t, h.AwaitingResponse())
}

func TestHandlerRequestIDsIncrease(t *testing.T) {
	l := &fakeLink{}
	h := newPlayerHandler(1, l)

	h.Notify(protocol.PlayerJoinedEvent(protocol.NewJoinInfo(2, nil, 2)))
	h.PushGameEvent(engine.RespOkEvent())
	h.Notify(protocol.ShutdownEvent())

	require.Len(t, l.sent, 3)
	assert.Less(t, l.sent[0].ID, l.sent[1].ID)
	assert.Less(t, l.sent[1].ID, l.sent[2].ID)
}

func TestHandlerDetectsDeadLink(t *testing.T) {
	l := &fakeLink{dead: true}
	h := newPlayerHandler(1, l)
	require.True(t, h.Connected())

	h.Notify(protocol.PlayerJoinedEvent(protocol.NewJoinInfo(2, nil, 2)))
	assert.False(t, h.Connected())

	// Further sends are dropped without touching the link.
	h.PushGameEvent(engine.RespOkEvent())
	assert.False(t, h.AwaitingResponse())
	assert.Empty(t, l.sent)
}
