package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/lox/hiddenhand/poker"
)

// maxDealt bounds --deal so every player gets two cards with a board left.
const maxDealt = 10

// EvalCmd evaluates one hand, or compares hole cards against a board. Two
// cards alone get a preflop strength label.
type EvalCmd struct {
	Cards []string `arg:"" optional:"" help:"Cards like 'AhKd' or 'Ah Kd'; with --board, one hole pair per argument"`
	Board string   `help:"Community cards; each argument is then a player's hole cards"`
	Deal  int      `help:"Deal this many random hole pairs and a board instead of reading cards"`
	Seed  int64    `help:"Shuffle seed for --deal (defaults to the current time)"`
}

func (c *EvalCmd) Run(g *Globals) error {
	out := g.stdout()

	if c.Deal != 0 {
		return c.deal(out)
	}
	if len(c.Cards) == 0 {
		return errors.New("expected cards to evaluate, or --deal")
	}

	if c.Board == "" {
		cards, err := poker.ParseCards(strings.Join(c.Cards, ""))
		if err != nil {
			return err
		}
		if len(cards) == 2 {
			_, err = fmt.Fprintf(out, "%s  %s\n", poker.FormatCards(cards), poker.CategorizeHoleCards(cards[0], cards[1]))
			return err
		}
		h, err := poker.Evaluate(cards...)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s  %s\n", poker.FormatCards(cards), h)
		return err
	}

	board, err := poker.ParseCards(c.Board)
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}
	holes := make([][]poker.Card, 0, len(c.Cards))
	for _, arg := range c.Cards {
		hole, err := poker.ParseCards(arg)
		if err != nil {
			return fmt.Errorf("hand %q: %w", arg, err)
		}
		if len(hole) != 2 {
			return fmt.Errorf("hand %q: want 2 hole cards, got %d", arg, len(hole))
		}
		holes = append(holes, hole)
	}
	return compare(out, holes, board)
}

func (c *EvalCmd) deal(out io.Writer) error {
	if len(c.Cards) > 0 || c.Board != "" {
		return errors.New("--deal cannot be combined with cards or --board")
	}
	if c.Deal < 2 || c.Deal > maxDealt {
		return fmt.Errorf("--deal must be between 2 and %d", maxDealt)
	}
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	deck := poker.NewDeck(rand.New(rand.NewSource(seed)))

	holes := make([][]poker.Card, c.Deal)
	for i := range holes {
		holes[i] = deck.Deal(2)
	}
	board := deck.Deal(5)
	if _, err := fmt.Fprintf(out, "board %s  seed %d\n", poker.FormatCards(board), seed); err != nil {
		return err
	}
	return compare(out, holes, board)
}

// compare prints each hole pair with its best hand, marking winners with '*'.
func compare(out io.Writer, holes [][]poker.Card, board []poker.Card) error {
	hands := make([][]poker.Card, len(holes))
	for i, hole := range holes {
		hands[i] = append(append([]poker.Card(nil), hole...), board...)
	}
	winners, err := poker.FindWinners(hands)
	if err != nil {
		return err
	}
	won := make(map[int]bool, len(winners))
	for _, i := range winners {
		won[i] = true
	}
	for i, cards := range hands {
		h := poker.MustEvaluate(cards...)
		marker := " "
		if won[i] {
			marker = "*"
		}
		if _, err := fmt.Fprintf(out, "%s %s  %s\n", marker, poker.FormatCards(cards[:2]), h); err != nil {
			return err
		}
	}
	return nil
}
