package server

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/Yamazak-mc/algo-cg/engine"
	"github.com/Yamazak-mc/algo-cg/internal/protocol"
)

// fakeLink is an in-memory link recording everything the server sends.
type fakeLink struct {
	sent   []protocol.Envelope[protocol.ServerEvent]
	dead   bool
	closed bool
	reason string
}

func (f *fakeLink) Send(env protocol.Envelope[protocol.ServerEvent]) bool {
	if f.dead {
		return false
	}
	f.sent = append(f.sent, env)
	return true
}

func (f *fakeLink) Close(reason string) {
	f.closed = true
	f.reason = reason
}

func (f *fakeLink) last() protocol.Envelope[protocol.ServerEvent] {
	return f.sent[len(f.sent)-1]
}

func (f *fakeLink) byType(typ protocol.ServerEventType) []protocol.Envelope[protocol.ServerEvent] {
	var out []protocol.Envelope[protocol.ServerEvent]
	for _, env := range f.sent {
		if env.Event.Type == typ {
			out = append(out, env)
		}
	}
	return out
}

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// scriptedPlayer plays the match from the outside, exactly like a real
// client: it sees only its own redacted envelopes, tracks whose turn it is,
// and reconstructs the opponent's field from board changes.
type scriptedPlayer struct {
	id   engine.PlayerID
	link *fakeLink

	myTurn   bool
	oppField []bool // revealed flags, tracked from board changes

	cursor      int
	sawShutdown bool

	// decide intercepts decisions when set; returning a zero event falls
	// back to the default policy.
	decide func(ev engine.GameEvent) engine.GameEvent
}

func newScriptedPlayer(id engine.PlayerID) *scriptedPlayer {
	return &scriptedPlayer{id: id, link: &fakeLink{}}
}

func (p *scriptedPlayer) observe(ev engine.GameEvent) {
	switch ev.Type {
	case engine.EventTurnStarted:
		p.myTurn = ev.Player == p.id
	case engine.EventBoardChanged:
		ch := ev.Change
		if ch == nil || ch.Player == p.id {
			return
		}
		switch ch.Type {
		case engine.ChangeCardMoved:
			if ch.Movement.Kind == engine.MoveTalonToAttacker {
				return
			}
			at := int(ch.Movement.InsertAt)
			p.oppField = append(p.oppField, false)
			copy(p.oppField[at+1:], p.oppField[at:])
			p.oppField[at] = ch.Card.Pub.Revealed
		case engine.ChangeCardRevealed:
			if ch.Location.Kind == engine.LocationField {
				p.oppField[ch.Location.Idx] = true
			}
		}
	}
}

func (p *scriptedPlayer) respondTo(ev engine.GameEvent) engine.GameEvent {
	if !ev.IsDecisionRequired() || !p.myTurn {
		return engine.RespOkEvent()
	}
	if p.decide != nil {
		if resp := p.decide(ev); resp.Type != "" {
			return resp
		}
	}
	switch ev.Type {
	case engine.EventAttackTargetSelectionRequired:
		for i, revealed := range p.oppField {
			if !revealed {
				return engine.AttackTargetSelectedEvent(uint32(i))
			}
		}
	case engine.EventNumberGuessRequired:
		return engine.NumberGuessedEvent(0)
	case engine.EventAttackOrStayDecisionRequired:
		return engine.AttackOrStayDecidedEvent(false)
	}
	return engine.RespOkEvent()
}

// pump delivers every undelivered envelope to its scripted player and feeds
// the responses back, until traffic stops.
func pump(gi *GameInstance, players ...*scriptedPlayer) {
	for iter := 0; iter < 20000; iter++ {
		progress := false
		for _, p := range players {
			for p.cursor < len(p.link.sent) {
				env := p.link.sent[p.cursor]
				p.cursor++
				progress = true

				switch env.Event.Type {
				case protocol.ServerGameEvent:
					ev := *env.Event.Event
					p.observe(ev)
					if env.Kind == protocol.KindRequest {
						resp := p.respondTo(ev)
						gi.HandleMessage(p.link, protocol.Respond(env, protocol.GameEventResponse(resp)))
					}
				case protocol.ServerShutdown:
					p.sawShutdown = true
				}
			}
		}
		if !progress {
			return
		}
	}
}
