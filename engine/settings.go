package engine

import "fmt"

const (
	// DefaultMaxCardNumber is the highest card number in a standard deck,
	// and also the floor: configurations may raise it, never lower it.
	DefaultMaxCardNumber CardNumber = 11

	// DefaultInitialDrawNum is the number of cards dealt to each player
	// before play begins.
	DefaultInitialDrawNum uint32 = 4

	minColorVariants = 2
)

// Settings is the immutable per-match configuration.
type Settings struct {
	// CardColors are the color variants to include in the deck.
	CardColors []CardColor

	// MaxCardNumber is the highest card number; the deck holds one card per
	// (color, number) pair for numbers 0..MaxCardNumber.
	MaxCardNumber CardNumber

	// InitialDrawNum is how many cards each player is dealt at game start.
	InitialDrawNum uint32
}

// DefaultSettings returns the standard two-color, 0-11, draw-4 rules.
func DefaultSettings() Settings {
	return Settings{
		CardColors:     []CardColor{ColorBlack, ColorWhite},
		MaxCardNumber:  DefaultMaxCardNumber,
		InitialDrawNum: DefaultInitialDrawNum,
	}
}

// Validate checks that the settings describe a playable match.
func (s Settings) Validate() error {
	if len(s.CardColors) < minColorVariants {
		return fmt.Errorf("settings: need at least %d card colors, got %d", minColorVariants, len(s.CardColors))
	}
	if s.MaxCardNumber < DefaultMaxCardNumber {
		return fmt.Errorf("settings: max card number %d is below the minimum %d", s.MaxCardNumber, DefaultMaxCardNumber)
	}
	deckSize := (int(s.MaxCardNumber) + 1) * len(s.CardColors)
	if deckSize <= int(s.InitialDrawNum)*2 {
		return fmt.Errorf("settings: %d cards is not enough for two players drawing %d each", deckSize, s.InitialDrawNum)
	}
	return nil
}

// buildCards validates the settings and constructs the unshuffled deck.
func (s Settings) buildCards() ([]Card, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return buildCards(s.MaxCardNumber, s.CardColors), nil
}
