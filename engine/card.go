package engine

import "fmt"

// CardColor is the face color of a card. Colors are always public
// information, even while a card is face down.
type CardColor string

const (
	ColorBlack CardColor = "black"
	ColorWhite CardColor = "white"
)

// CardNumber is the number printed on a card.
type CardNumber uint8

// Card is the authoritative card state. Public info (color, revealed) and
// private info (number) are both always present here; what a given player is
// allowed to see is expressed through CardView.
type Card struct {
	Pub  CardPubInfo  `json:"pub"`
	Priv CardPrivInfo `json:"priv"`
}

// CardPubInfo is the part of a card everyone can see.
type CardPubInfo struct {
	Color    CardColor `json:"color"`
	Revealed bool      `json:"revealed"`
}

// CardPrivInfo is the part of a card only its owner can see until the card
// is revealed.
type CardPrivInfo struct {
	Number CardNumber `json:"number"`
}

// NewCard constructs a face-down card.
func NewCard(number CardNumber, color CardColor) Card {
	return Card{
		Pub:  CardPubInfo{Color: color},
		Priv: CardPrivInfo{Number: number},
	}
}

// Less orders cards by (number, color), the order fields are kept in.
func (c Card) Less(o Card) bool {
	if c.Priv.Number != o.Priv.Number {
		return c.Priv.Number < o.Priv.Number
	}
	return c.Pub.Color < o.Pub.Color
}

// FullView returns a view carrying the card's private info unconditionally.
// Only hand it to the card's owner, or to anyone once the card is revealed.
func (c Card) FullView() CardView {
	priv := c.Priv
	return CardView{Pub: c.Pub, Priv: &priv}
}

// PublicView returns the view of the card visible to non-owners: private
// info is included only if the card has been revealed.
func (c Card) PublicView() CardView {
	if c.Pub.Revealed {
		return c.FullView()
	}
	return CardView{Pub: c.Pub}
}

// CardView is a per-viewer projection of a card. Priv is nil when the viewer
// is not entitled to the card's number.
type CardView struct {
	Pub  CardPubInfo   `json:"pub"`
	Priv *CardPrivInfo `json:"priv,omitempty"`
}

// PublicView strips the private info from a view unless the card is revealed.
func (v CardView) PublicView() CardView {
	if v.Pub.Revealed {
		return v
	}
	return CardView{Pub: v.Pub}
}

// String renders views like "black-7" or "white-?" (unknown number), with a
// trailing "*" once revealed.
func (v CardView) String() string {
	num := "?"
	if v.Priv != nil {
		num = fmt.Sprintf("%d", v.Priv.Number)
	}
	if v.Pub.Revealed {
		return fmt.Sprintf("%s-%s*", v.Pub.Color, num)
	}
	return fmt.Sprintf("%s-%s", v.Pub.Color, num)
}

// buildCards returns the cross product numbers × colors, in deterministic
// order. Shuffling is the caller's job.
func buildCards(maxNumber CardNumber, colors []CardColor) []Card {
	cards := make([]Card, 0, (int(maxNumber)+1)*len(colors))
	for n := CardNumber(0); ; n++ {
		for _, color := range colors {
			cards = append(cards, NewCard(n, color))
		}
		if n == maxNumber {
			break
		}
	}
	return cards
}
