package poker

import (
	"fmt"
	"strings"
)

// Card is a card index in [0,51] as stored on the ledger: suit = card / 13,
// rank = card % 13. NoCard marks a slot that is not dealt or not revealed.
type Card uint8

// NoCard is the sentinel for an undealt or hidden card.
const NoCard Card = 255

// DeckSize is the number of distinct cards.
const DeckSize = 52

// Suits in ledger order.
const (
	Hearts uint8 = iota
	Diamonds
	Clubs
	Spades
)

// Ranks, Two lowest.
const (
	Two uint8 = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "hdcs"
)

// NewCard creates a card from a rank (0-12) and suit (0-3).
func NewCard(rank, suit uint8) Card {
	return Card(suit*13 + rank)
}

// Rank returns the rank index (0=Two ... 12=Ace).
func (c Card) Rank() uint8 {
	return uint8(c) % 13
}

// Suit returns the suit index (0=Hearts ... 3=Spades).
func (c Card) Suit() uint8 {
	return uint8(c) / 13
}

// Valid reports whether c is a real card (not the sentinel, not out of range).
func (c Card) Valid() bool {
	return c < DeckSize
}

// String returns two-character notation like "As" or "Td"; "??" for hidden cards.
func (c Card) String() string {
	if c == NoCard {
		return "??"
	}
	if !c.Valid() {
		return fmt.Sprintf("!%d", uint8(c))
	}
	return string([]byte{rankChars[c.Rank()], suitChars[c.Suit()]})
}

// ParseCard parses two-character notation ("Ah", "tc", "9S").
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return NoCard, fmt.Errorf("invalid card %q: want 2 characters", s)
	}
	rank := strings.IndexByte(rankChars, upper(s[0]))
	if rank < 0 {
		return NoCard, fmt.Errorf("invalid rank %q in card %q", s[0], s)
	}
	suit := strings.IndexByte(suitChars, lower(s[1]))
	if suit < 0 {
		return NoCard, fmt.Errorf("invalid suit %q in card %q", s[1], s)
	}
	return NewCard(uint8(rank), uint8(suit)), nil
}

// ParseCards parses a run of cards, with or without separators: "AsKsQs" or "As Ks Qs".
func ParseCards(s string) ([]Card, error) {
	s = strings.NewReplacer(" ", "", ",", "", "\t", "").Replace(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %d (must be even)", len(s))
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

// FormatCards joins cards with spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
