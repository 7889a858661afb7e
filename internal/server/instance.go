package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Yamazak-mc/algo-cg/engine"
	"github.com/Yamazak-mc/algo-cg/internal/cache"
	"github.com/Yamazak-mc/algo-cg/internal/protocol"
)

// GameInstance runs one match. It pushes each staged event to every player
// through their handler, feeds the collected responses back into the engine,
// and moves on once the engine accepts them. Invalid decisions bounce back
// to the offending player with a fresh prompt; everyone else's response
// stays recorded.
//
// Like everything behind the core loop, GameInstance is single-threaded.
type GameInstance struct {
	log *logrus.Entry
	id  uuid.UUID

	g        *engine.Game
	handlers map[engine.PlayerID]*PlayerHandler
	byLink   map[link]*PlayerHandler

	actionIndex uint64
	done        bool
}

func newGameInstance(log *logrus.Entry, settings engine.Settings, seated []*PlayerHandler) (*GameInstance, error) {
	if len(seated) != 2 {
		return nil, fmt.Errorf("a match needs exactly 2 players, got %d", len(seated))
	}
	g, err := engine.ForTwoPlayers(seated[0].ID, seated[1].ID, settings)
	if err != nil {
		return nil, err
	}

	gameID := uuid.New()
	gi := &GameInstance{
		log:      log.WithField("game", gameID),
		id:       gameID,
		g:        g,
		handlers: make(map[engine.PlayerID]*PlayerHandler, len(seated)),
		byLink:   make(map[link]*PlayerHandler, len(seated)),
	}
	for _, h := range seated {
		gi.handlers[h.ID] = h
		gi.byLink[h.link] = h
	}
	return gi, nil
}

// Start pushes the first event of the match.
func (gi *GameInstance) Start() {
	gi.log.WithField("players", gi.g.Players()).Info("match started")
	gi.pushNext()
}

// Done reports whether the match is over and every player has been told.
func (gi *GameInstance) Done() bool {
	return gi.done
}

// HandleMessage processes one client envelope received during the match.
func (gi *GameInstance) HandleMessage(l link, env protocol.Envelope[protocol.ClientEvent]) {
	h := gi.byLink[l]
	if h == nil {
		l.Close("not part of this match")
		return
	}

	if env.Kind == protocol.KindRequest {
		if env.Event.Type == protocol.ClientRequestJoin {
			h.Respond(env, protocol.ErrorEvent("match already in progress"))
			return
		}
		h.Respond(env, protocol.ErrorEvent(fmt.Sprintf("unexpected request %q during a match", env.Event.Type)))
		return
	}

	resp, err := h.Reply(env)
	if err != nil {
		gi.log.WithError(err).WithField("player", h.ID).Warn("rejected client envelope")
		h.Notify(protocol.ErrorEvent(err.Error()))
		return
	}

	all, err := gi.g.StorePlayerResponse(h.ID, resp)
	if err != nil {
		gi.log.WithError(err).WithField("player", h.ID).Error("response not storable")
		return
	}
	if all {
		gi.process()
	}
}

// HandleLost marks a player's connection as gone. The match state survives:
// the remaining player is told and the engine simply stops receiving the
// absent player's responses. When nobody is left the instance finishes.
func (gi *GameInstance) HandleLost(l link) {
	h := gi.byLink[l]
	if h == nil {
		return
	}
	h.markDisconnected()
	gi.log.WithField("player", h.ID).Warn("player disconnected mid-match")

	anyLeft := false
	for _, other := range gi.handlers {
		if other == h {
			continue
		}
		other.Notify(protocol.PlayerDisconnectedEvent(h.ID))
		if other.Connected() {
			anyLeft = true
		}
	}
	if !anyLeft {
		gi.log.Info("all players gone, abandoning match")
		gi.done = true
	}
}

// process runs the engine over the collected responses.
func (gi *GameInstance) process() {
	err := gi.g.ProcessEvent()

	var respErr *engine.ResponseError
	if errors.As(err, &respErr) {
		// The event stays staged; ask the offender again under a fresh id.
		offender := gi.handlers[respErr.Player]
		gi.log.WithError(respErr).WithField("player", respErr.Player).Warn("invalid decision, re-prompting")
		offender.Notify(protocol.ErrorEvent(respErr.Error()))
		if staged, ok := gi.g.StagedEventFor(respErr.Player); ok {
			offender.PushGameEvent(staged)
		}
		return
	}
	if err != nil {
		gi.log.WithError(err).Error("event processing failed")
		return
	}

	history := gi.g.History()
	if len(history) > 0 {
		gi.logAction(history[len(history)-1])
	}
	gi.pushNext()
}

// pushNext stages the next event and delivers each player's redacted copy.
func (gi *GameInstance) pushNext() {
	views, err := gi.g.NextEvent()
	if errors.Is(err, engine.ErrNoMoreEvent) {
		gi.log.Info("match finished")
		for _, h := range gi.handlers {
			h.Notify(protocol.ShutdownEvent())
		}
		gi.done = true
		return
	}
	if err != nil {
		gi.log.WithError(err).Error("cannot stage next event")
		return
	}
	for id, view := range views {
		gi.handlers[id].PushGameEvent(view)
	}
}

// logAction ships the processed event to the historian queue, if Redis is
// configured. Publishing is asynchronous and never blocks the match.
func (gi *GameInstance) logAction(ev engine.GameEvent) {
	gi.actionIndex++
	rec := cache.GameActionRecord{
		GameID:      gi.id,
		ActionIndex: gi.actionIndex,
		Actor:       ev.Player,
		Event:       ev,
		Timestamp:   time.Now().UnixMilli(),
	}

	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			gi.log.WithError(err).WithField("actionIndex", rec.ActionIndex).Error("failed publishing action record")
		}
	}(rec)
}
