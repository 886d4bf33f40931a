package poker

import "math/rand"

// Deck is a 52-card deck in ledger card encoding, used for fixtures and
// randomized checks. Hands on the ledger are shuffled by the program.
type Deck struct {
	cards [DeckSize]Card
	next  int
	rng   *rand.Rand
}

// NewDeck returns a deck shuffled by rng. A nil rng gives a fixed seed so
// fixtures stay reproducible.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	d := &Deck{rng: rng}
	for i := range d.cards {
		d.cards[i] = Card(i)
	}
	d.Shuffle()
	return d
}

// Shuffle returns every card to the deck and reorders it.
func (d *Deck) Shuffle() {
	d.next = 0
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes n cards from the top, or returns nil if fewer remain.
func (d *Deck) Deal(n int) []Card {
	if n < 0 || d.next+n > len(d.cards) {
		return nil
	}
	out := append([]Card(nil), d.cards[d.next:d.next+n]...)
	d.next += n
	return out
}

// CardsRemaining reports how many cards are left to deal.
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}
