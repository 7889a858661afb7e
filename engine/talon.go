package engine

import "math/rand/v2"

// Talon is the shared face-down draw pile. Cards are drawn from the end of
// the slice.
type Talon struct {
	cards []Card
}

// NewTalon wraps the given cards as a draw pile, in order.
func NewTalon(cards []Card) Talon {
	return Talon{cards: cards}
}

// Len returns the number of cards remaining.
func (t *Talon) Len() int {
	return len(t.cards)
}

// Shuffle randomizes the pile order in place.
func (t *Talon) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(t.cards), func(i, j int) {
		t.cards[i], t.cards[j] = t.cards[j], t.cards[i]
	})
}

// Draw pops the top card. ok is false once the pile is empty.
func (t *Talon) Draw() (card Card, ok bool) {
	if len(t.cards) == 0 {
		return Card{}, false
	}
	card = t.cards[len(t.cards)-1]
	t.cards = t.cards[:len(t.cards)-1]
	return card, true
}

// ViewTop returns the public view of the top card, or nil if empty.
func (t *Talon) ViewTop() *CardView {
	if len(t.cards) == 0 {
		return nil
	}
	v := t.cards[len(t.cards)-1].PublicView()
	return &v
}

// View returns the talon as players see it: remaining count plus the top
// card's public info. Numbers in the pile are never exposed.
func (t *Talon) View() TalonView {
	tv := TalonView{CardsRemaining: uint32(len(t.cards))}
	if len(t.cards) > 0 {
		pub := t.cards[len(t.cards)-1].Pub
		tv.TopCard = &pub
	}
	return tv
}

// TalonView is the public projection of the talon.
type TalonView struct {
	TopCard        *CardPubInfo `json:"topCard,omitempty"`
	CardsRemaining uint32       `json:"cardsRemaining"`
}
