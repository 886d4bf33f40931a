package poker

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"
)

// Category enumerates hand categories from weakest to strongest. The values
// match the hand_rank byte written into completed-hand events.
type Category uint8

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// NumCategories is the count of defined categories.
const NumCategories = 10

var categoryNames = [NumCategories]string{
	"High Card",
	"One Pair",
	"Two Pair",
	"Three of a Kind",
	"Straight",
	"Flush",
	"Full House",
	"Four of a Kind",
	"Straight Flush",
	"Royal Flush",
}

// String returns a human-readable category name.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Valid reports whether c is one of the defined categories.
func (c Category) Valid() bool {
	return c < NumCategories
}

var (
	// ErrInvalidHandSize is returned when fewer than 5 or more than 7 cards are evaluated.
	ErrInvalidHandSize = errors.New("poker: hand must contain 5 to 7 cards")
	// ErrInvalidCard is returned for the hidden sentinel or an out-of-range card.
	ErrInvalidCard = errors.New("poker: invalid card")
	// ErrDuplicateCard is returned when the same card appears twice.
	ErrDuplicateCard = errors.New("poker: duplicate card")
)

// EvaluatedHand is a category plus five tie-break rank indices, high to low,
// zero-padded where the category uses fewer than five.
type EvaluatedHand struct {
	Category Category
	Kickers  [5]uint8
}

// Compare returns +1 if h beats other, -1 if other wins and 0 for a split.
func (h EvaluatedHand) Compare(other EvaluatedHand) int {
	if h.Category != other.Category {
		if h.Category > other.Category {
			return 1
		}
		return -1
	}
	for i := range h.Kickers {
		if h.Kickers[i] != other.Kickers[i] {
			if h.Kickers[i] > other.Kickers[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// String renders the category with its tie-break ranks, e.g. "Full House [A K]".
func (h EvaluatedHand) String() string {
	n := significantKickers[h.Category]
	keys := make([]byte, 0, 2*n)
	for i := 0; i < n; i++ {
		if i > 0 {
			keys = append(keys, ' ')
		}
		keys = append(keys, rankChars[h.Kickers[i]])
	}
	return fmt.Sprintf("%s [%s]", h.Category, keys)
}

// number of meaningful tie-break keys per category
var significantKickers = [NumCategories]int{5, 4, 3, 3, 1, 5, 2, 2, 1, 5}

// Evaluate returns the best 5-card hand from 5 to 7 cards. Six and seven card
// inputs are resolved by scoring every 5-card subset.
func Evaluate(cards ...Card) (EvaluatedHand, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return EvaluatedHand{}, fmt.Errorf("%w: got %d", ErrInvalidHandSize, len(cards))
	}
	var seen uint64
	for _, c := range cards {
		if !c.Valid() {
			return EvaluatedHand{}, fmt.Errorf("%w: %d", ErrInvalidCard, uint8(c))
		}
		if seen&(1<<c) != 0 {
			return EvaluatedHand{}, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen |= 1 << c
	}

	if len(cards) == 5 {
		return evaluateFive([5]Card(cards)), nil
	}

	var best EvaluatedHand
	found := false
	n := uint(len(cards))
	for mask := uint8(0); mask < 1<<n; mask++ {
		if bits.OnesCount8(mask) != 5 {
			continue
		}
		var five [5]Card
		k := 0
		for i := uint(0); i < n; i++ {
			if mask&(1<<i) != 0 {
				five[k] = cards[i]
				k++
			}
		}
		eval := evaluateFive(five)
		if !found || eval.Compare(best) > 0 {
			best = eval
			found = true
		}
	}
	return best, nil
}

// MustEvaluate evaluates cards and panics on error (for tests)
func MustEvaluate(cards ...Card) EvaluatedHand {
	h, err := Evaluate(cards...)
	if err != nil {
		panic(err)
	}
	return h
}

func evaluateFive(cards [5]Card) EvaluatedHand {
	var ranks [5]uint8
	flush := true
	for i, c := range cards {
		ranks[i] = c.Rank()
		if c.Suit() != cards[0].Suit() {
			flush = false
		}
	}
	slices.SortFunc(ranks[:], func(a, b uint8) int { return int(b) - int(a) })

	straight := true
	for i := 0; i < 4; i++ {
		if ranks[i] != ranks[i+1]+1 {
			straight = false
			break
		}
	}
	wheel := ranks == [5]uint8{Ace, Five, Four, Three, Two}

	if flush && (straight || wheel) {
		switch {
		case wheel:
			return EvaluatedHand{Category: StraightFlush, Kickers: [5]uint8{Five}}
		case ranks[0] == Ace:
			return EvaluatedHand{Category: RoyalFlush, Kickers: [5]uint8{Ace, King, Queen, Jack, Ten}}
		default:
			return EvaluatedHand{Category: StraightFlush, Kickers: [5]uint8{ranks[0]}}
		}
	}

	var counts [13]uint8
	for _, r := range ranks {
		counts[r]++
	}

	// Scan Ace down to Two so pairs and singles come out in descending order.
	quad, trip := -1, -1
	var pairs, singles []uint8
	for r := 12; r >= 0; r-- {
		switch counts[r] {
		case 4:
			quad = r
		case 3:
			trip = r
		case 2:
			pairs = append(pairs, uint8(r))
		case 1:
			singles = append(singles, uint8(r))
		}
	}

	if quad >= 0 {
		var kicker uint8
		switch {
		case len(singles) > 0:
			kicker = singles[0]
		case len(pairs) > 0:
			kicker = pairs[0]
		case trip >= 0:
			kicker = uint8(trip)
		}
		return EvaluatedHand{Category: FourOfAKind, Kickers: [5]uint8{uint8(quad), kicker}}
	}

	if trip >= 0 && len(pairs) > 0 {
		return EvaluatedHand{Category: FullHouse, Kickers: [5]uint8{uint8(trip), pairs[0]}}
	}

	if flush {
		return EvaluatedHand{Category: Flush, Kickers: ranks}
	}

	if straight {
		return EvaluatedHand{Category: Straight, Kickers: [5]uint8{ranks[0]}}
	}
	if wheel {
		return EvaluatedHand{Category: Straight, Kickers: [5]uint8{Five}}
	}

	if trip >= 0 {
		return EvaluatedHand{Category: ThreeOfAKind, Kickers: [5]uint8{uint8(trip), nth(singles, 0), nth(singles, 1)}}
	}

	if len(pairs) >= 2 {
		return EvaluatedHand{Category: TwoPair, Kickers: [5]uint8{pairs[0], pairs[1], nth(singles, 0)}}
	}

	if len(pairs) == 1 {
		return EvaluatedHand{Category: OnePair, Kickers: [5]uint8{pairs[0], nth(singles, 0), nth(singles, 1), nth(singles, 2)}}
	}

	return EvaluatedHand{Category: HighCard, Kickers: ranks}
}

func nth(ranks []uint8, i int) uint8 {
	if i < len(ranks) {
		return ranks[i]
	}
	return 0
}

// FindWinners evaluates each hand and returns the indices of every hand tied
// for best. More than one index means a split pot.
func FindWinners(hands [][]Card) ([]int, error) {
	var best EvaluatedHand
	var winners []int
	for i, cards := range hands {
		eval, err := Evaluate(cards...)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i, err)
		}
		switch {
		case winners == nil:
			best, winners = eval, []int{i}
		case eval.Compare(best) > 0:
			best, winners = eval, []int{i}
		case eval.Compare(best) == 0:
			winners = append(winners, i)
		}
	}
	return winners, nil
}
