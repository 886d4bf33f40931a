package layout

import (
	"fmt"
	"math"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/poker"
)

const (
	// MaxResults is the number of fixed result slots in a HandCompleted event.
	MaxResults = 6

	// PlayerResultSize is the width of one result slot.
	PlayerResultSize = 32 + // player
		1 + // seat_index
		1 + // hole_card_1
		1 + // hole_card_2
		1 + // hand_rank
		8 + // chips_won
		8 + // chips_bet
		1 + // folded
		1 // all_in

	// HandCompletedSize is the event length, discriminator included.
	HandCompletedSize = DiscriminatorSize +
		32 + // table_id
		8 + // hand_number
		8 + // timestamp
		MaxCommunityCards + // community_cards
		8 + // total_pot
		1 + // player_count
		MaxResults*PlayerResultSize + // results
		1 // results_count

	resultsCountOffset = HandCompletedSize - 1
	resultsOffset      = resultsCountOffset - MaxResults*PlayerResultSize
)

// HandRank is the showdown rank byte: a poker.Category, or Unranked.
type HandRank uint8

// Unranked marks a player whose hand was never evaluated (folded, or the
// hand ended before showdown).
const Unranked HandRank = 255

// Category returns the rank as a poker category.
func (r HandRank) Category() (poker.Category, bool) {
	c := poker.Category(r)
	return c, r != Unranked && c.Valid()
}

// Label is the display name of the rank.
func (r HandRank) Label() string {
	if c, ok := r.Category(); ok {
		return c.String()
	}
	return "-"
}

func (r HandRank) String() string {
	return r.Label()
}

// PlayerResult is one player's outcome in a completed hand.
type PlayerResult struct {
	Player    address.Address
	SeatIndex uint8
	HoleCards [2]poker.Card
	HandRank  HandRank
	ChipsWon  uint64
	ChipsBet  uint64
	Folded    bool
	AllIn     bool
}

// Shown reports whether the player's hole cards were revealed.
func (p PlayerResult) Shown() bool {
	return !p.Folded && p.HoleCards[0] != poker.NoCard && p.HoleCards[1] != poker.NoCard
}

// Net is chips won minus chips bet, saturating at the int64 bounds.
func (p PlayerResult) Net() int64 {
	if p.ChipsWon >= p.ChipsBet {
		return int64(min(p.ChipsWon-p.ChipsBet, math.MaxInt64))
	}
	if d := p.ChipsBet - p.ChipsWon; d <= math.MaxInt64 {
		return -int64(d)
	}
	return math.MinInt64
}

// HandCompleted is the event emitted when a hand settles. Results holds only
// the populated slots.
type HandCompleted struct {
	TableID     address.TableID
	HandNumber  uint64
	Timestamp   int64
	Community   [MaxCommunityCards]poker.Card
	TotalPot    uint64
	PlayerCount uint8
	Results     []PlayerResult
}

// Key identifies the event for deduplication.
func (e HandCompleted) Key() EventKey {
	return EventKey{TableID: e.TableID, HandNumber: e.HandNumber}
}

// Board returns the community cards that were dealt.
func (e HandCompleted) Board() []poker.Card {
	out := make([]poker.Card, 0, MaxCommunityCards)
	for _, c := range e.Community {
		if c != poker.NoCard {
			out = append(out, c)
		}
	}
	return out
}

// Winners returns the results that won chips.
func (e HandCompleted) Winners() []PlayerResult {
	var out []PlayerResult
	for _, r := range e.Results {
		if r.ChipsWon > 0 {
			out = append(out, r)
		}
	}
	return out
}

// EventKey identifies a completed hand across delivery paths.
type EventKey struct {
	TableID    address.TableID
	HandNumber uint64
}

func (k EventKey) String() string {
	return fmt.Sprintf("%s#%d", k.TableID, k.HandNumber)
}

// DecodeHandCompleted decodes a HandCompleted event. Slots past
// results_count are skipped without validation.
func DecodeHandCompleted(data []byte) (HandCompleted, error) {
	r := newReader(KindHandCompleted, data)
	if r.err != nil {
		return HandCompleted{}, r.err
	}
	count := data[resultsCountOffset]
	if count > MaxResults {
		return HandCompleted{}, &DecodeError{
			Kind:   KindHandCompleted,
			Field:  "results_count",
			Offset: resultsCountOffset,
			Value:  uint64(count),
			Err:    ErrInvalidValue,
		}
	}

	e := HandCompleted{
		TableID:    address.TableID(r.bytes32()),
		HandNumber: r.u64(),
		Timestamp:  r.i64(),
	}
	for i := range e.Community {
		e.Community[i] = r.card(fmt.Sprintf("community_cards[%d]", i))
	}
	e.TotalPot = r.u64()
	e.PlayerCount = r.u8()
	if count > 0 {
		e.Results = make([]PlayerResult, count)
	}
	for i := range e.Results {
		e.Results[i] = r.playerResult(i)
	}
	if r.err != nil {
		return HandCompleted{}, r.err
	}
	return e, nil
}

func (r *reader) playerResult(i int) PlayerResult {
	field := func(name string) string { return fmt.Sprintf("results[%d].%s", i, name) }
	p := PlayerResult{
		Player:    r.address(),
		SeatIndex: r.u8(),
	}
	p.HoleCards[0] = r.card(field("hole_card_1"))
	p.HoleCards[1] = r.card(field("hole_card_2"))
	at := r.off
	p.HandRank = HandRank(r.u8())
	if _, ok := p.HandRank.Category(); !ok && p.HandRank != Unranked {
		r.fail(field("hand_rank"), at, uint64(p.HandRank), ErrUnknownVariant)
	}
	p.ChipsWon = r.u64()
	p.ChipsBet = r.u64()
	p.Folded = r.bool(field("folded"))
	p.AllIn = r.bool(field("all_in"))
	return p
}

// MarshalBinary encodes the event, zero-filling unused result slots.
func (e HandCompleted) MarshalBinary() ([]byte, error) {
	if len(e.Results) > MaxResults {
		return nil, fmt.Errorf("encode hand_completed: %d results exceeds %d", len(e.Results), MaxResults)
	}
	w := newWriter(KindHandCompleted)
	w.bytes(e.TableID[:])
	w.u64(e.HandNumber)
	w.i64(e.Timestamp)
	for _, c := range e.Community {
		w.card(c)
	}
	w.u64(e.TotalPot)
	w.u8(e.PlayerCount)
	for _, p := range e.Results {
		w.bytes(p.Player[:])
		w.u8(p.SeatIndex)
		w.card(p.HoleCards[0])
		w.card(p.HoleCards[1])
		w.u8(uint8(p.HandRank))
		w.u64(p.ChipsWon)
		w.u64(p.ChipsBet)
		w.bool(p.Folded)
		w.bool(p.AllIn)
	}
	w.bytes(make([]byte, (MaxResults-len(e.Results))*PlayerResultSize))
	w.u8(uint8(len(e.Results)))
	return w.buf, nil
}
