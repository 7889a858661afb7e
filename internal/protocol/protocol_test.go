package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yamazak-mc/algo-cg/engine"
)

func TestRespondEchoesRequestID(t *testing.T) {
	var ids IDSource
	req := Request(ids.Next(), RequestJoinEvent())
	assert.Equal(t, KindRequest, req.Kind)
	assert.Equal(t, uint32(1), req.ID)

	resp := Respond(req, JoinAcceptedEvent(NewJoinInfo(1, nil, 2)))
	assert.Equal(t, KindResponse, resp.Kind)
	assert.Equal(t, req.ID, resp.ID)
	assert.Equal(t, uint32(1), resp.Event.Join.Position)
	assert.Equal(t, uint32(2), resp.Event.Join.RoomSize)
}

func TestIDSourceSkipsZero(t *testing.T) {
	var ids IDSource
	assert.Equal(t, uint32(1), ids.Next())
	assert.Equal(t, uint32(2), ids.Next())
}

func TestInboxSeparatesKinds(t *testing.T) {
	in := NewInbox[ServerEvent]()

	require.NoError(t, in.Put(Request(5, PlayerJoinedEvent(NewJoinInfo(2, []engine.PlayerID{1}, 2)))))
	require.NoError(t, in.Put(Envelope[ServerEvent]{Kind: KindResponse, ID: 5, Event: ShutdownEvent()}))
	assert.Equal(t, 2, in.Len())

	// Same id, different sequences: both must be retrievable.
	req, ok := in.TakeRequest(5)
	require.True(t, ok)
	assert.Equal(t, ServerPlayerJoined, req.Event.Type)

	peeked, ok := in.PeekResponse(5)
	require.True(t, ok)
	assert.Equal(t, ServerShutdown, peeked.Event.Type)
	assert.Equal(t, 1, in.Len(), "peek must not consume")

	resp, ok := in.TakeResponse(5)
	require.True(t, ok)
	assert.Equal(t, ServerShutdown, resp.Event.Type)

	_, ok = in.TakeRequest(5)
	assert.False(t, ok, "request taken twice")
	assert.Equal(t, 0, in.Len())
}

func TestInboxRejectsDuplicates(t *testing.T) {
	in := NewInbox[ServerEvent]()
	require.NoError(t, in.Put(Request(1, ShutdownEvent())))
	assert.Error(t, in.Put(Request(1, ShutdownEvent())))
	assert.Error(t, in.Put(Envelope[ServerEvent]{Kind: "banana", ID: 2}))
}

func TestFindRequestScansInIDOrder(t *testing.T) {
	in := NewInbox[ServerEvent]()
	require.NoError(t, in.Put(Request(9, PlayerJoinedEvent(NewJoinInfo(3, nil, 2)))))
	require.NoError(t, in.Put(Request(4, PlayerJoinedEvent(NewJoinInfo(2, nil, 2)))))
	require.NoError(t, in.Put(Request(7, ShutdownEvent())))

	env, ok := in.FindRequest(func(ev ServerEvent) bool { return ev.Type == ServerPlayerJoined })
	require.True(t, ok)
	assert.Equal(t, uint32(4), env.ID, "lowest matching id wins")
	assert.Equal(t, engine.PlayerID(2), env.Event.Join.PlayerID)

	env, ok = in.FindRequest(func(ev ServerEvent) bool { return ev.Type == ServerPlayerJoined })
	require.True(t, ok)
	assert.Equal(t, uint32(9), env.ID)

	_, ok = in.FindRequest(func(ev ServerEvent) bool { return ev.Type == ServerPlayerJoined })
	assert.False(t, ok)
	assert.Equal(t, 1, in.Len())
}

func TestEnvelopeWireShape(t *testing.T) {
	raw, err := json.Marshal(Request(3, RequestJoinEvent()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"request","id":3,"event":{"type":"request_join"}}`, string(raw))

	var env Envelope[ClientEvent]
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, ClientRequestJoin, env.Event.Type)
	assert.Nil(t, env.Event.Response)
}

func TestGameEventResponseCarriesDecision(t *testing.T) {
	env := Request(2, GameEventResponse(engine.AttackTargetSelectedEvent(1)))
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var back Envelope[ClientEvent]
	require.NoError(t, json.Unmarshal(raw, &back))
	require.NotNil(t, back.Event.Response)
	assert.Equal(t, engine.EventAttackTargetSelected, back.Event.Response.Type)
	require.NotNil(t, back.Event.Response.TargetIdx)
	assert.Equal(t, uint32(1), *back.Event.Response.TargetIdx)
}
