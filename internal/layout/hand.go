package layout

import (
	"fmt"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/poker"
)

// MaxCommunityCards bounds the community card vector.
const MaxCommunityCards = 5

// HandSize is the HandState account length. The community vector is
// allocated at its maximum length, so shorter vectors leave zero padding at
// the end of the account.
const HandSize = DiscriminatorSize +
	32 + // table
	8 + // hand_number
	1 + // phase
	8 + // pot
	8 + // current_bet
	8 + // min_raise
	1 + // dealer_position
	1 + // action_on
	4 + MaxCommunityCards + // community_cards
	1 + // community_revealed
	1 + // active_players
	1 + // acted_this_round
	1 + // active_count
	1 + // all_in_players
	8 + // last_action_slot
	8 + // hand_start_slot
	8 + // last_action_time
	1 + // awaiting_community_reveal
	1 // bump

// Phase is the betting phase of a hand. Phases only move forward.
type Phase uint8

const (
	PhaseDealing Phase = iota
	PhasePreFlop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseSettled

	numPhases
)

var phaseNames = [...]string{"Dealing", "PreFlop", "Flop", "Turn", "River", "Showdown", "Settled"}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Betting reports whether players can act in this phase.
func (p Phase) Betting() bool {
	return p >= PhasePreFlop && p <= PhaseRiver
}

// Hand is the decoded HandState account.
type Hand struct {
	Table          address.Address
	HandNumber     uint64
	Phase          Phase
	Pot            uint64
	CurrentBet     uint64
	MinRaise       uint64
	DealerPosition uint8
	ActionOn       uint8
	// Community holds the vector as stored, sentinels included. It is empty
	// until cards are dealt.
	Community         []poker.Card
	CommunityRevealed uint8
	ActivePlayers     uint8
	ActedThisRound    uint8
	ActiveCount       uint8
	AllInPlayers      uint8
	LastActionSlot    uint64
	HandStartSlot     uint64
	// LastActionTime is seconds since the Unix epoch. Timeouts are measured
	// from it.
	LastActionTime int64
	// AwaitingCommunityReveal is set when a betting round has closed and the
	// next community cards have not been revealed yet.
	AwaitingCommunityReveal bool
	Bump                    uint8
}

// Board returns the revealed community cards.
func (h Hand) Board() []poker.Card {
	n := min(int(h.CommunityRevealed), len(h.Community))
	out := make([]poker.Card, 0, n)
	for _, c := range h.Community[:n] {
		if c == poker.NoCard {
			break
		}
		out = append(out, c)
	}
	return out
}

func (h Hand) IsActive(seat uint8) bool { return SeatSet(h.ActivePlayers, seat) }
func (h Hand) HasActed(seat uint8) bool { return SeatSet(h.ActedThisRound, seat) }
func (h Hand) IsAllIn(seat uint8) bool { return SeatSet(h.AllInPlayers, seat) }

// DecodeHand decodes a HandState account.
func DecodeHand(data []byte) (Hand, error) {
	r := newReader(KindHand, data)
	h := Hand{
		Table:          r.address(),
		HandNumber:     r.u64(),
		Phase:          Phase(r.variant("phase", uint8(numPhases))),
		Pot:            r.u64(),
		CurrentBet:     r.u64(),
		MinRaise:       r.u64(),
		DealerPosition: r.u8(),
		ActionOn:       r.u8(),
	}
	h.Community = r.communityCards()
	h.CommunityRevealed = r.u8()
	h.ActivePlayers = r.u8()
	h.ActedThisRound = r.u8()
	h.ActiveCount = r.u8()
	h.AllInPlayers = r.u8()
	h.LastActionSlot = r.u64()
	h.HandStartSlot = r.u64()
	h.LastActionTime = r.i64()
	h.AwaitingCommunityReveal = r.bool("awaiting_community_reveal")
	h.Bump = r.u8()
	if r.err != nil {
		return Hand{}, r.err
	}
	if err := h.validate(); err != nil {
		return Hand{}, err
	}
	return h, nil
}

func (r *reader) communityCards() []poker.Card {
	at := r.off
	n := r.u32()
	if n > MaxCommunityCards {
		r.fail("community_cards.len", at, uint64(n), ErrInvalidValue)
		return nil
	}
	if n == 0 {
		return nil
	}
	cards := make([]poker.Card, n)
	for i := range cards {
		cards[i] = r.card(fmt.Sprintf("community_cards[%d]", i))
	}
	return cards
}

func (h Hand) validate() error {
	if h.CommunityRevealed > MaxCommunityCards {
		return invariant(KindHand, "community_revealed %d exceeds %d", h.CommunityRevealed, MaxCommunityCards)
	}
	if int(h.CommunityRevealed) > len(h.Community) {
		return invariant(KindHand, "community_revealed %d but only %d community slots", h.CommunityRevealed, len(h.Community))
	}
	hidden := false
	for i, c := range h.Community {
		if c == poker.NoCard {
			hidden = true
			continue
		}
		if hidden {
			return invariant(KindHand, "community card %d revealed after a hidden slot", i)
		}
	}
	return nil
}

// MarshalBinary encodes the account padded to HandSize.
func (h Hand) MarshalBinary() ([]byte, error) {
	if len(h.Community) > MaxCommunityCards {
		return nil, fmt.Errorf("encode hand: %d community cards exceeds %d", len(h.Community), MaxCommunityCards)
	}
	w := newWriter(KindHand)
	w.bytes(h.Table[:])
	w.u64(h.HandNumber)
	w.u8(uint8(h.Phase))
	w.u64(h.Pot)
	w.u64(h.CurrentBet)
	w.u64(h.MinRaise)
	w.u8(h.DealerPosition)
	w.u8(h.ActionOn)
	w.u32(uint32(len(h.Community)))
	for _, c := range h.Community {
		w.card(c)
	}
	w.u8(h.CommunityRevealed)
	w.u8(h.ActivePlayers)
	w.u8(h.ActedThisRound)
	w.u8(h.ActiveCount)
	w.u8(h.AllInPlayers)
	w.u64(h.LastActionSlot)
	w.u64(h.HandStartSlot)
	w.i64(h.LastActionTime)
	w.bool(h.AwaitingCommunityReveal)
	w.u8(h.Bump)
	for len(w.buf) < HandSize {
		w.u8(0)
	}
	return w.buf, nil
}
