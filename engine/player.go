package engine

import (
	"fmt"
	"sort"
)

// PlayerID identifies a player within a match. IDs are assigned by the
// server when a player claims a seat.
type PlayerID uint32

// IDAssigner hands out fresh PlayerIDs, starting at 1.
type IDAssigner struct {
	last PlayerID
}

// Assign returns the next unused PlayerID.
func (a *IDAssigner) Assign() PlayerID {
	a.last++
	return a.last
}

// Player holds one player's board state: the field (a row of cards kept
// sorted by number then color, never containing duplicates) and the attacker
// slot for the card currently drawn and in play.
type Player struct {
	Field    []Card
	Attacker *Card
}

// insertCardToField inserts the card at its sorted position and returns the
// insertion index. A duplicate card means the board state is corrupt, which
// is a bug in the engine, not a recoverable condition.
func (p *Player) insertCardToField(card Card) uint32 {
	idx := sort.Search(len(p.Field), func(i int) bool {
		return !p.Field[i].Less(card)
	})
	if idx < len(p.Field) && !card.Less(p.Field[idx]) {
		panic(fmt.Sprintf("duplicate card inserted into field: %+v", card))
	}
	p.Field = append(p.Field, Card{})
	copy(p.Field[idx+1:], p.Field[idx:])
	p.Field[idx] = card
	return uint32(idx)
}

// setAttacker places a freshly drawn card into the attacker slot.
func (p *Player) setAttacker(card Card) {
	if p.Attacker != nil {
		panic(fmt.Sprintf("attacker slot already occupied: %+v", *p.Attacker))
	}
	p.Attacker = &card
}

// takeAttacker removes and returns the card in the attacker slot.
func (p *Player) takeAttacker() Card {
	if p.Attacker == nil {
		panic("attacker slot is empty")
	}
	card := *p.Attacker
	p.Attacker = nil
	return card
}

// allRevealed reports whether every card in the field is face up. A player
// with a fully revealed field has lost.
func (p *Player) allRevealed() bool {
	for _, c := range p.Field {
		if !c.Pub.Revealed {
			return false
		}
	}
	return true
}

// fullView returns the owner's own view: every number visible.
func (p *Player) fullView() PlayerView {
	return p.view(Card.FullView)
}

// PublicView returns the view opponents get: numbers only on revealed cards.
func (p *Player) PublicView() PlayerView {
	return p.view(Card.PublicView)
}

func (p *Player) view(project func(Card) CardView) PlayerView {
	pv := PlayerView{Field: make([]CardView, len(p.Field))}
	for i, c := range p.Field {
		pv.Field[i] = project(c)
	}
	if p.Attacker != nil {
		v := project(*p.Attacker)
		pv.Attacker = &v
	}
	return pv
}

// PlayerView is a per-viewer projection of a player's board state.
type PlayerView struct {
	Field    []CardView `json:"field"`
	Attacker *CardView  `json:"attacker,omitempty"`
}

// TurnOrder tracks whose turn it is. The front of the queue is the current
// turn player; Advance rotates the front to the back.
type TurnOrder struct {
	ids []PlayerID
}

// NewTurnOrder builds a turn order from the given sequence.
func NewTurnOrder(ids []PlayerID) TurnOrder {
	return TurnOrder{ids: append([]PlayerID(nil), ids...)}
}

// Current returns the player whose turn it is.
func (t *TurnOrder) Current() PlayerID {
	return t.ids[0]
}

// Advance passes the turn to the next player.
func (t *TurnOrder) Advance() {
	front := t.ids[0]
	copy(t.ids, t.ids[1:])
	t.ids[len(t.ids)-1] = front
}

// Order returns the current rotation, front first.
func (t *TurnOrder) Order() []PlayerID {
	return append([]PlayerID(nil), t.ids...)
}
