// Package engine implements the rules of the card game: a two-player,
// hidden-information duel where the turn player draws a card, targets one of
// the opponent's face-down cards, and guesses its number.
//
// The engine is a synchronous state machine stepped by an external driver:
// NextEvent stages exactly one event and hands out per-player redacted
// copies, StorePlayerResponse collects each player's reply, and ProcessEvent
// verifies the replies and applies the staged event, scheduling follow-on
// events on an internal two-tier queue. The engine performs no I/O and knows
// nothing about connections.
package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
)

var (
	// ErrEventProcessing is returned by NextEvent while an event is staged.
	ErrEventProcessing = errors.New("an event is already being processed")

	// ErrNoMoreEvent is returned by NextEvent once the queue is empty,
	// which only happens after the game has ended.
	ErrNoMoreEvent = errors.New("no more events to process")

	// ErrNotReady is returned by ProcessEvent before every player has
	// responded to the staged event.
	ErrNotReady = errors.New("not all players have responded")
)

// ResponseError reports a player response that does not fit the staged
// event: wrong kind, or a decision that fails validation. The staged event
// stays staged; the caller decides whether to re-prompt the player.
type ResponseError struct {
	Player   PlayerID
	Expected GameEventType
	Got      GameEvent
	Reason   string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("invalid response from player %d: expected %s, got %s: %s",
		e.Player, e.Expected, e.Got.Type, e.Reason)
}

// Game is the authoritative state of a single match.
type Game struct {
	settings Settings

	board board
	turn  turnContext

	staged    *GameEvent
	queue     eventQueue
	responses map[PlayerID]*GameEvent
	history   []GameEvent
}

type board struct {
	talon   Talon
	players map[PlayerID]*Player
}

// turnContext tracks whose turn it is plus the state of the attack in
// flight. A turn consists of one or more attacks.
type turnContext struct {
	order  TurnOrder
	attack attackContext
}

// attackContext fields are populated strictly in declaration order and all
// cleared when the turn ends. targetIdx and guess are additionally cleared
// after each resolved attack so a follow-up attack starts clean.
type attackContext struct {
	targetPlayer *PlayerID
	targetIdx    *uint32
	guess        *CardNumber
}

// ForTwoPlayers creates a match between the two given players, shuffling the
// deck and the turn order.
func ForTwoPlayers(a, b PlayerID, settings Settings) (*Game, error) {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	return forTwoPlayers(a, b, settings, rng)
}

// forTwoPlayers is the seedable constructor used by tests.
func forTwoPlayers(a, b PlayerID, settings Settings, rng *rand.Rand) (*Game, error) {
	if a == b {
		return nil, fmt.Errorf("duplicate player id: %d", a)
	}

	cards, err := settings.buildCards()
	if err != nil {
		return nil, err
	}
	talon := NewTalon(cards)
	talon.Shuffle(rng)

	order := []PlayerID{a, b}
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	g := &Game{
		settings: settings,
		board: board{
			talon:   talon,
			players: map[PlayerID]*Player{a: {}, b: {}},
		},
		turn:      turnContext{order: NewTurnOrder(order)},
		responses: map[PlayerID]*GameEvent{a: nil, b: nil},
	}
	g.queue.pushMain(gameStartedEvent(g.board.talon.View()))
	return g, nil
}

// Players returns the participating player ids in ascending order.
func (g *Game) Players() []PlayerID {
	ids := make([]PlayerID, 0, len(g.board.players))
	for id := range g.board.players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// History returns the fully processed events, oldest first.
func (g *Game) History() []GameEvent {
	return g.history
}

// NextEvent pops the next scheduled event, stages it, and returns it once
// per player, redacted through that player's viewpoint. It fails with
// ErrEventProcessing while an event is staged and with ErrNoMoreEvent once
// the game is over and the queue has drained.
func (g *Game) NextEvent() (map[PlayerID]GameEvent, error) {
	if g.staged != nil {
		return nil, ErrEventProcessing
	}
	ev, ok := g.queue.popNext()
	if !ok {
		return nil, ErrNoMoreEvent
	}
	g.staged = &ev

	views := make(map[PlayerID]GameEvent, len(g.responses))
	for id := range g.responses {
		views[id] = ev.View(id)
	}
	return views, nil
}

// StagedEventFor returns the staged event redacted for the given player,
// used to re-prompt after an invalid response. ok is false if nothing is
// staged or the player is unknown.
func (g *Game) StagedEventFor(player PlayerID) (GameEvent, bool) {
	if g.staged == nil {
		return GameEvent{}, false
	}
	if _, known := g.board.players[player]; !known {
		return GameEvent{}, false
	}
	return g.staged.View(player), true
}

// StorePlayerResponse records a player's reply to the staged event,
// overwriting any earlier reply from the same player. It reports whether
// every player has now responded, i.e. whether ProcessEvent may run.
func (g *Game) StorePlayerResponse(player PlayerID, response GameEvent) (bool, error) {
	if _, ok := g.responses[player]; !ok {
		return false, fmt.Errorf("unknown player id: %d", player)
	}
	resp := response
	g.responses[player] = &resp
	return g.allResponded(), nil
}

func (g *Game) allResponded() bool {
	for _, r := range g.responses {
		if r == nil {
			return false
		}
	}
	return true
}

// ProcessEvent verifies every player's response against the staged event and
// applies it, scheduling follow-on events. On a *ResponseError nothing is
// mutated and the event stays staged, so the offending player can be asked
// again; every other response stays recorded.
func (g *Game) ProcessEvent() error {
	if g.staged == nil || !g.allResponded() {
		return ErrNotReady
	}
	staged := *g.staged

	// Verify first, mutate after: a failed verification must leave the
	// match replayable from the same staged event.
	var decision GameEvent
	decider, needsDecision := g.deciderFor(staged)
	if needsDecision {
		resp := *g.responses[decider]
		expected := expectedDecision(staged.Type)
		if resp.Type != expected {
			return &ResponseError{Player: decider, Expected: expected, Got: resp, Reason: "wrong response kind"}
		}
		if err := g.validateDecision(staged, resp, decider); err != nil {
			return err
		}
		decision = resp
	}
	for id, resp := range g.responses {
		if needsDecision && id == decider {
			continue
		}
		if resp.Type != EventRespOk {
			return &ResponseError{Player: id, Expected: EventRespOk, Got: *resp, Reason: "acknowledgement expected"}
		}
	}

	g.applyStaged(staged, decision)
	g.finishEvent()
	return nil
}

// deciderFor returns the player whose decision the staged event consumes.
// Decisions always come from the turn player.
func (g *Game) deciderFor(staged GameEvent) (PlayerID, bool) {
	if !staged.IsDecisionRequired() {
		return 0, false
	}
	return g.turn.order.Current(), true
}

func expectedDecision(staged GameEventType) GameEventType {
	switch staged {
	case EventAttackTargetSelectionRequired:
		return EventAttackTargetSelected
	case EventNumberGuessRequired:
		return EventNumberGuessed
	case EventAttackOrStayDecisionRequired:
		return EventAttackOrStayDecided
	}
	panic(fmt.Sprintf("event %s does not expect a decision", staged))
}

// validateDecision checks the semantic constraints of a decision response.
func (g *Game) validateDecision(staged, resp GameEvent, decider PlayerID) error {
	switch staged.Type {
	case EventAttackTargetSelectionRequired:
		if resp.TargetIdx == nil {
			return &ResponseError{Player: decider, Expected: EventAttackTargetSelected, Got: resp, Reason: "missing target index"}
		}
		target := g.board.players[*g.turn.attack.targetPlayer]
		idx := *resp.TargetIdx
		if int(idx) >= len(target.Field) {
			return &ResponseError{Player: decider, Expected: EventAttackTargetSelected, Got: resp,
				Reason: fmt.Sprintf("target index %d out of range (field size %d)", idx, len(target.Field))}
		}
		if target.Field[idx].Pub.Revealed {
			return &ResponseError{Player: decider, Expected: EventAttackTargetSelected, Got: resp,
				Reason: fmt.Sprintf("card at index %d is already revealed", idx)}
		}
	case EventNumberGuessRequired:
		if resp.Number == nil {
			return &ResponseError{Player: decider, Expected: EventNumberGuessed, Got: resp, Reason: "missing guessed number"}
		}
		if *resp.Number > g.settings.MaxCardNumber {
			return &ResponseError{Player: decider, Expected: EventNumberGuessed, Got: resp,
				Reason: fmt.Sprintf("guess %d outside range [0, %d]", *resp.Number, g.settings.MaxCardNumber)}
		}
	case EventAttackOrStayDecisionRequired:
		if resp.Attack == nil {
			return &ResponseError{Player: decider, Expected: EventAttackOrStayDecided, Got: resp, Reason: "missing attack-or-stay decision"}
		}
	}
	return nil
}

// applyStaged interprets the verified staged event. decision is the consumed
// decision response for decision-requiring events, zero otherwise.
func (g *Game) applyStaged(staged, decision GameEvent) {
	switch staged.Type {
	case EventGameStarted:
		order := g.turn.order.Order()
		g.queue.pushMain(turnOrderDeterminedEvent(order))
		for i := uint32(0); i < g.settings.InitialDrawNum; i++ {
			for _, id := range order {
				g.queue.pushMain(cardDistributedEvent(id))
			}
		}
		g.queue.pushMain(turnStartedEvent(g.turn.order.Current()))

	case EventCardDistributed:
		card, ok := g.board.talon.Draw()
		if !ok {
			// Settings validation guarantees the deck outlasts the deal.
			panic("talon exhausted during initial deal")
		}
		owner := staged.Player
		idx := g.board.players[owner].insertCardToField(card)
		g.queue.pushSub(boardChangedEvent(cardMovedChange(owner,
			CardMovement{Kind: MoveTalonToField, InsertAt: idx}, card.FullView())))

	case EventTurnStarted:
		g.queue.pushMain(GameEvent{Type: EventTurnPlayerDrewCard})

	case EventTurnPlayerDrewCard:
		turnPlayer := g.turn.order.Current()
		card, ok := g.board.talon.Draw()
		if !ok {
			g.queue.pushMain(GameEvent{Type: EventNoCardsLeft})
			return
		}
		g.board.players[turnPlayer].setAttacker(card)
		g.queue.pushSub(boardChangedEvent(cardMovedChange(turnPlayer,
			CardMovement{Kind: MoveTalonToAttacker}, card.FullView())))
		opponent := g.opponentOf(turnPlayer)
		g.turn.attack.targetPlayer = &opponent
		g.queue.pushMain(attackTargetSelectionRequiredEvent(opponent))

	case EventNoCardsLeft:
		g.queue.pushMain(GameEvent{Type: EventGameEnded})

	case EventAttackTargetSelectionRequired:
		idx := *decision.TargetIdx
		g.turn.attack.targetIdx = &idx
		g.queue.pushMain(decision)

	case EventAttackTargetSelected:
		g.queue.pushMain(GameEvent{Type: EventNumberGuessRequired})

	case EventNumberGuessRequired:
		guess := *decision.Number
		g.turn.attack.guess = &guess
		g.queue.pushMain(decision)

	case EventNumberGuessed:
		target := g.board.players[*g.turn.attack.targetPlayer]
		actual := target.Field[*g.turn.attack.targetIdx].Priv.Number
		if actual == *g.turn.attack.guess {
			g.queue.pushMain(GameEvent{Type: EventAttackSucceeded})
		} else {
			g.queue.pushMain(GameEvent{Type: EventAttackFailed})
		}

	case EventAttackSucceeded:
		targetID := *g.turn.attack.targetPlayer
		target := g.board.players[targetID]
		idx := *g.turn.attack.targetIdx
		target.Field[idx].Pub.Revealed = true
		g.queue.pushSub(boardChangedEvent(cardRevealedChange(targetID,
			CardLocation{Kind: LocationField, Idx: idx}, target.Field[idx].FullView())))
		if target.allRevealed() {
			g.queue.pushMain(GameEvent{Type: EventAttackedPlayerLost})
		} else {
			g.queue.pushMain(GameEvent{Type: EventAttackOrStayDecisionRequired})
		}
		// The target player stays set in case the attack continues.
		g.turn.attack.targetIdx = nil
		g.turn.attack.guess = nil

	case EventAttackedPlayerLost:
		g.queue.pushMain(GameEvent{Type: EventGameEnded})

	case EventAttackFailed:
		turnPlayer := g.turn.order.Current()
		owner := g.board.players[turnPlayer]
		card := owner.takeAttacker()
		card.Pub.Revealed = true
		g.queue.pushSub(boardChangedEvent(cardRevealedChange(turnPlayer,
			CardLocation{Kind: LocationAttacker}, card.FullView())))
		idx := owner.insertCardToField(card)
		g.queue.pushSub(boardChangedEvent(cardMovedChange(turnPlayer,
			CardMovement{Kind: MoveAttackerToField, InsertAt: idx}, card.FullView())))
		g.queue.pushMain(GameEvent{Type: EventTurnEnded})

	case EventAttackOrStayDecisionRequired:
		g.queue.pushMain(decision)

	case EventAttackOrStayDecided:
		if *staged.Attack {
			g.queue.pushMain(attackTargetSelectionRequiredEvent(*g.turn.attack.targetPlayer))
			return
		}
		// Staying: the attacker card joins the field face down.
		turnPlayer := g.turn.order.Current()
		owner := g.board.players[turnPlayer]
		card := owner.takeAttacker()
		idx := owner.insertCardToField(card)
		g.queue.pushSub(boardChangedEvent(cardMovedChange(turnPlayer,
			CardMovement{Kind: MoveAttackerToField, InsertAt: idx}, card.FullView())))
		g.queue.pushMain(GameEvent{Type: EventTurnEnded})

	case EventTurnEnded:
		g.turn.order.Advance()
		g.turn.attack = attackContext{}
		g.queue.pushMain(turnStartedEvent(g.turn.order.Current()))

	case EventBoardChanged, EventTurnOrderDetermined, EventGameEnded, EventRespOk:
		// Informational; nothing to apply.
	}
}

func (g *Game) finishEvent() {
	g.history = append(g.history, *g.staged)
	g.staged = nil
	for id := range g.responses {
		g.responses[id] = nil
	}
}

// opponentOf returns the other player. The data model holds exactly two.
func (g *Game) opponentOf(player PlayerID) PlayerID {
	for _, id := range g.turn.order.Order() {
		if id != player {
			return id
		}
	}
	panic(fmt.Sprintf("player %d has no opponent", player))
}

// BoardView is the board from one player's perspective: their own field in
// full, every other field through public card views, and the talon's
// remaining count and top color.
type BoardView struct {
	Myself         PlayerView              `json:"myself"`
	OtherPlayers   map[PlayerID]PlayerView `json:"otherPlayers"`
	TalonRemaining uint32                  `json:"talonRemaining"`
	TalonTop       *CardView               `json:"talonTop,omitempty"`
}

// ViewBoard derives the board view for the given player.
func (g *Game) ViewBoard(viewer PlayerID) (BoardView, error) {
	myself, ok := g.board.players[viewer]
	if !ok {
		return BoardView{}, fmt.Errorf("unknown player id: %d", viewer)
	}

	others := make(map[PlayerID]PlayerView, len(g.board.players)-1)
	for id, p := range g.board.players {
		if id != viewer {
			others[id] = p.PublicView()
		}
	}
	return BoardView{
		Myself:         myself.fullView(),
		OtherPlayers:   others,
		TalonRemaining: uint32(g.board.talon.Len()),
		TalonTop:       g.board.talon.ViewTop(),
	}, nil
}
