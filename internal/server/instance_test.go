package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yamazak-mc/algo-cg/engine"
	"github.com/Yamazak-mc/algo-cg/internal/protocol"
)

func startMatch(t *testing.T) (*GameInstance, *scriptedPlayer, *scriptedPlayer) {
	t.Helper()
	p1 := newScriptedPlayer(1)
	p2 := newScriptedPlayer(2)
	gi, err := newGameInstance(testLog(), engine.DefaultSettings(), []*PlayerHandler{
		newPlayerHandler(p1.id, p1.link),
		newPlayerHandler(p2.id, p2.link),
	})
	require.NoError(t, err)
	gi.Start()
	return gi, p1, p2
}

func TestMatchPlaysToCompletion(t *testing.T) {
	gi, p1, p2 := startMatch(t)
	pump(gi, p1, p2)

	assert.True(t, gi.Done(), "match never finished")
	assert.True(t, p1.sawShutdown, "player 1 missed the shutdown notice")
	assert.True(t, p2.sawShutdown, "player 2 missed the shutdown notice")

	history := gi.g.History()
	require.NotEmpty(t, history)
	assert.Equal(t, engine.EventGameEnded, history[len(history)-1].Type)
}

func TestMatchRedactsDealsOnTheWire(t *testing.T) {
	gi, p1, p2 := startMatch(t)
	pump(gi, p1, p2)

	for _, p := range []*scriptedPlayer{p1, p2} {
		deals := 0
		for _, env := range p.link.byType(protocol.ServerGameEvent) {
			ev := env.Event.Event
			if ev.Type != engine.EventBoardChanged || ev.Change.Type != engine.ChangeCardMoved {
				continue
			}
			if ev.Change.Movement.Kind != engine.MoveTalonToField {
				continue
			}
			deals++
			if ev.Change.Player == p.id {
				assert.NotNil(t, ev.Change.Card.Priv, "player %d cannot see an own dealt card", p.id)
			} else {
				assert.Nil(t, ev.Change.Card.Priv, "player %d saw an opponent's dealt number", p.id)
			}
		}
		assert.GreaterOrEqual(t, deals, 8, "player %d saw too few deals", p.id)
	}
}

func TestMatchRepromptsInvalidDecision(t *testing.T) {
	gi, p1, p2 := startMatch(t)

	// Whoever goes first botches their first target selection.
	for _, p := range []*scriptedPlayer{p1, p2} {
		p := p
		misfired := false
		p.decide = func(ev engine.GameEvent) engine.GameEvent {
			if ev.Type == engine.EventAttackTargetSelectionRequired && !misfired {
				misfired = true
				return engine.AttackTargetSelectedEvent(99)
			}
			return engine.GameEvent{}
		}
	}

	pump(gi, p1, p2)

	errs := append(p1.link.byType(protocol.ServerError), p2.link.byType(protocol.ServerError)...)
	assert.NotEmpty(t, errs, "invalid target never produced an error event")
	assert.True(t, gi.Done(), "match stalled after the re-prompt")
	assert.True(t, p1.sawShutdown && p2.sawShutdown)
}

func TestMatchSurvivesDisconnect(t *testing.T) {
	gi, p1, p2 := startMatch(t)

	gi.HandleLost(p1.link)
	assert.False(t, gi.Done(), "one disconnect ended the match")
	gone := p2.link.byType(protocol.ServerPlayerDisconnected)
	require.Len(t, gone, 1)
	assert.Equal(t, engine.PlayerID(1), gone[0].Event.Player)

	gi.HandleLost(p2.link)
	assert.True(t, gi.Done(), "match kept running with nobody connected")
}

func TestMatchRejectsStrangers(t *testing.T) {
	gi, _, _ := startMatch(t)

	stranger := &fakeLink{}
	gi.HandleMessage(stranger, protocol.Request(1, protocol.RequestJoinEvent()))
	assert.True(t, stranger.closed)
}

func TestMatchRejectsJoinRequests(t *testing.T) {
	gi, p1, _ := startMatch(t)

	before := len(p1.link.sent)
	gi.HandleMessage(p1.link, protocol.Request(500, protocol.RequestJoinEvent()))
	require.Greater(t, len(p1.link.sent), before)
	reply := p1.link.last()
	assert.Equal(t, protocol.KindResponse, reply.Kind)
	assert.Equal(t, uint32(500), reply.ID)
	assert.Equal(t, protocol.ServerError, reply.Event.Type)
}
