package poker_test

import (
	"math/rand"
	"testing"

	ref "github.com/paulhankin/poker"

	"github.com/lox/hiddenhand/poker"
)

var refSuits = [4]ref.Suit{ref.Heart, ref.Diamond, ref.Club, ref.Spade}

func toRef(t *testing.T, c poker.Card) ref.Card {
	t.Helper()
	rank := ref.Rank(c.Rank() + 2)
	if c.Rank() == poker.Ace {
		rank = 1
	}
	rc, err := ref.MakeCard(refSuits[c.Suit()], rank)
	if err != nil {
		t.Fatalf("MakeCard(%s): %v", c, err)
	}
	return rc
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// TestEvaluateAgreesWithReference deals random boards with two hole-card
// pairs and checks both evaluators order the hands the same way.
func TestEvaluateAgreesWithReference(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 5000; i++ {
		perm := rng.Perm(poker.DeckSize)[:9]
		board := perm[:5]
		var ours [2]poker.EvaluatedHand
		var theirs [2]int16
		for p := 0; p < 2; p++ {
			cards := make([]poker.Card, 0, 7)
			for _, c := range board {
				cards = append(cards, poker.Card(c))
			}
			cards = append(cards, poker.Card(perm[5+2*p]), poker.Card(perm[6+2*p]))

			ours[p] = poker.MustEvaluate(cards...)
			var seven [7]ref.Card
			for j, c := range cards {
				seven[j] = toRef(t, c)
			}
			theirs[p] = ref.Eval7(&seven)
		}

		got := sign(ours[0].Compare(ours[1]))
		want := sign(int(theirs[0]) - int(theirs[1]))
		if got != want {
			t.Fatalf("deal %d: Compare(%s, %s) = %d, reference says %d", i, ours[0], ours[1], got, want)
		}
	}
}
