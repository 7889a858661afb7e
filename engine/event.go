package engine

// GameEventType discriminates the closed set of game-progress events.
type GameEventType string

const (
	EventBoardChanged                  GameEventType = "board_changed"
	EventGameStarted                   GameEventType = "game_started"
	EventTurnOrderDetermined           GameEventType = "turn_order_determined"
	EventCardDistributed               GameEventType = "card_distributed"
	EventTurnStarted                   GameEventType = "turn_started"
	EventTurnPlayerDrewCard            GameEventType = "turn_player_drew_card"
	EventNoCardsLeft                   GameEventType = "no_cards_left"
	EventAttackTargetSelectionRequired GameEventType = "attack_target_selection_required"
	EventAttackTargetSelected          GameEventType = "attack_target_selected"
	EventNumberGuessRequired           GameEventType = "number_guess_required"
	EventNumberGuessed                 GameEventType = "number_guessed"
	EventAttackSucceeded               GameEventType = "attack_succeeded"
	EventAttackFailed                  GameEventType = "attack_failed"
	EventAttackedPlayerLost            GameEventType = "attacked_player_lost"
	EventGameEnded                     GameEventType = "game_ended"
	EventAttackOrStayDecisionRequired  GameEventType = "attack_or_stay_decision_required"
	EventAttackOrStayDecided           GameEventType = "attack_or_stay_decided"
	EventTurnEnded                     GameEventType = "turn_ended"
	EventRespOk                        GameEventType = "resp_ok"
)

// GameEvent is one step of game progress. Exactly the payload fields
// belonging to Type are set; everything else stays zero and is omitted on
// the wire.
type GameEvent struct {
	Type GameEventType `json:"type"`

	// GameStarted
	Talon *TalonView `json:"talon,omitempty"`

	// TurnOrderDetermined
	TurnOrder []PlayerID `json:"turnOrder,omitempty"`

	// CardDistributed, TurnStarted
	Player PlayerID `json:"player,omitempty"`

	// AttackTargetSelectionRequired
	TargetPlayer PlayerID `json:"targetPlayer,omitempty"`

	// AttackTargetSelected
	TargetIdx *uint32 `json:"targetIdx,omitempty"`

	// NumberGuessed
	Number *CardNumber `json:"number,omitempty"`

	// AttackOrStayDecided
	Attack *bool `json:"attack,omitempty"`

	// BoardChanged
	Change *BoardChange `json:"change,omitempty"`
}

func boardChangedEvent(change BoardChange) GameEvent {
	return GameEvent{Type: EventBoardChanged, Change: &change}
}

func gameStartedEvent(talon TalonView) GameEvent {
	return GameEvent{Type: EventGameStarted, Talon: &talon}
}

func turnOrderDeterminedEvent(order []PlayerID) GameEvent {
	return GameEvent{Type: EventTurnOrderDetermined, TurnOrder: order}
}

func cardDistributedEvent(to PlayerID) GameEvent {
	return GameEvent{Type: EventCardDistributed, Player: to}
}

func turnStartedEvent(player PlayerID) GameEvent {
	return GameEvent{Type: EventTurnStarted, Player: player}
}

func attackTargetSelectionRequiredEvent(target PlayerID) GameEvent {
	return GameEvent{Type: EventAttackTargetSelectionRequired, TargetPlayer: target}
}

// AttackTargetSelectedEvent is the turn player's target decision.
func AttackTargetSelectedEvent(targetIdx uint32) GameEvent {
	return GameEvent{Type: EventAttackTargetSelected, TargetIdx: &targetIdx}
}

// NumberGuessedEvent is the turn player's guess decision.
func NumberGuessedEvent(number CardNumber) GameEvent {
	return GameEvent{Type: EventNumberGuessed, Number: &number}
}

// AttackOrStayDecidedEvent is the turn player's continue-or-stop decision.
func AttackOrStayDecidedEvent(attack bool) GameEvent {
	return GameEvent{Type: EventAttackOrStayDecided, Attack: &attack}
}

// RespOkEvent is the generic acknowledgement sent when a step requires no
// decision.
func RespOkEvent() GameEvent {
	return GameEvent{Type: EventRespOk}
}

// IsDecision reports whether this event is itself a player's decision,
// i.e. something a player sends in response rather than the engine emits.
func (ev GameEvent) IsDecision() bool {
	switch ev.Type {
	case EventAttackTargetSelected, EventNumberGuessed, EventAttackOrStayDecided:
		return true
	}
	return false
}

// IsDecisionRequired reports whether this event, once delivered, demands a
// decision in reply instead of a bare acknowledgement.
func (ev GameEvent) IsDecisionRequired() bool {
	switch ev.Type {
	case EventAttackTargetSelectionRequired, EventNumberGuessRequired, EventAttackOrStayDecisionRequired:
		return true
	}
	return false
}

// View returns the event as the given viewer is allowed to see it. Only
// board changes carry hidden information; everything else passes through.
func (ev GameEvent) View(viewer PlayerID) GameEvent {
	if ev.Type == EventBoardChanged && ev.Change != nil {
		change := ev.Change.view(viewer)
		ev.Change = &change
	}
	return ev
}

// BoardChangeType discriminates board-change notifications.
type BoardChangeType string

const (
	ChangeCardMoved    BoardChangeType = "card_moved"
	ChangeCardRevealed BoardChangeType = "card_revealed"
)

// BoardChange describes a single card movement or reveal, used to drive both
// network sync and client presentation. Card carries the full view; redaction
// happens per viewer.
type BoardChange struct {
	Type     BoardChangeType `json:"type"`
	Player   PlayerID        `json:"player"`
	Movement *CardMovement   `json:"movement,omitempty"`
	Location *CardLocation   `json:"location,omitempty"`
	Card     CardView        `json:"card"`
}

func cardMovedChange(player PlayerID, movement CardMovement, card CardView) BoardChange {
	return BoardChange{Type: ChangeCardMoved, Player: player, Movement: &movement, Card: card}
}

func cardRevealedChange(player PlayerID, location CardLocation, card CardView) BoardChange {
	return BoardChange{Type: ChangeCardRevealed, Player: player, Location: &location, Card: card}
}

// view redacts the moved card's number for viewers other than its owner.
// Reveals are public by definition and pass through untouched.
func (c BoardChange) view(viewer PlayerID) BoardChange {
	if c.Type == ChangeCardMoved && c.Player != viewer {
		c.Card = c.Card.PublicView()
	}
	return c
}

// MovementKind names the legal card movements. The talon is never a
// destination, so it needs no location of its own.
type MovementKind string

const (
	MoveTalonToField    MovementKind = "talon_to_field"
	MoveTalonToAttacker MovementKind = "talon_to_attacker"
	MoveAttackerToField MovementKind = "attacker_to_field"
)

// CardMovement describes where a card went. InsertAt is the index in the
// owner's field, counted from the owner's left, for movements ending there.
type CardMovement struct {
	Kind     MovementKind `json:"kind"`
	InsertAt uint32       `json:"insertAt,omitempty"`
}

// LocationKind names the places a reveal can happen.
type LocationKind string

const (
	LocationField    LocationKind = "field"
	LocationAttacker LocationKind = "attacker"
)

// CardLocation points at a card on the board.
type CardLocation struct {
	Kind LocationKind `json:"kind"`
	Idx  uint32       `json:"idx,omitempty"`
}
