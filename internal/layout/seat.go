package layout

import (
	"fmt"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/poker"
	"lukechampine.com/uint128"
)

// SeatSize is the PlayerSeat account length.
const SeatSize = DiscriminatorSize +
	32 + // table
	32 + // player
	1 + // seat_index
	8 + // chips
	8 + // current_bet
	8 + // total_bet_this_hand
	16 + // hole_card_1
	16 + // hole_card_2
	1 + // revealed_card_1
	1 + // revealed_card_2
	1 + // cards_revealed
	1 + // status
	1 + // has_acted
	1 // bump

// SeatStatus is a player's state within the current hand.
type SeatStatus uint8

const (
	SeatSitting SeatStatus = iota
	SeatPlaying
	SeatFolded
	SeatAllIn

	numSeatStatuses
)

func (s SeatStatus) String() string {
	switch s {
	case SeatSitting:
		return "Sitting"
	case SeatPlaying:
		return "Playing"
	case SeatFolded:
		return "Folded"
	case SeatAllIn:
		return "AllIn"
	default:
		return fmt.Sprintf("SeatStatus(%d)", uint8(s))
	}
}

// InHand reports whether the player still contests the pot.
func (s SeatStatus) InHand() bool {
	return s == SeatPlaying || s == SeatAllIn
}

// Seat is the decoded PlayerSeat account.
type Seat struct {
	Table            address.Address
	Player           address.Address
	SeatIndex        uint8
	Chips            uint64
	CurrentBet       uint64
	TotalBetThisHand uint64
	// HoleHandles are opaque handles to encrypted cards. They are carried
	// through untouched.
	HoleHandles [2]uint128.Uint128
	// HoleCards are the plaintext cards written at showdown. They are only
	// meaningful when CardsRevealed is set.
	HoleCards     [2]poker.Card
	CardsRevealed bool
	Status        SeatStatus
	HasActed      bool
	Bump          uint8
}

// Occupied reports whether a player holds the seat.
func (s Seat) Occupied() bool {
	return !s.Player.IsZero()
}

// VisibleHoleCards returns the hole cards if they have been revealed, and
// sentinels otherwise.
func (s Seat) VisibleHoleCards() [2]poker.Card {
	if !s.CardsRevealed {
		return [2]poker.Card{poker.NoCard, poker.NoCard}
	}
	return s.HoleCards
}

// DecodeSeat decodes a PlayerSeat account.
func DecodeSeat(data []byte) (Seat, error) {
	r := newReader(KindSeat, data)
	s := Seat{
		Table:            r.address(),
		Player:           r.address(),
		SeatIndex:        r.u8(),
		Chips:            r.u64(),
		CurrentBet:       r.u64(),
		TotalBetThisHand: r.u64(),
	}
	s.HoleHandles[0] = r.u128()
	s.HoleHandles[1] = r.u128()
	s.HoleCards[0] = r.card("revealed_card_1")
	s.HoleCards[1] = r.card("revealed_card_2")
	s.CardsRevealed = r.bool("cards_revealed")
	s.Status = SeatStatus(r.variant("status", uint8(numSeatStatuses)))
	s.HasActed = r.bool("has_acted")
	s.Bump = r.u8()
	if r.err != nil {
		return Seat{}, r.err
	}
	if s.SeatIndex >= MaxSeats {
		return Seat{}, invariant(KindSeat, "seat_index %d not below %d", s.SeatIndex, MaxSeats)
	}
	if s.TotalBetThisHand < s.CurrentBet {
		return Seat{}, invariant(KindSeat, "total_bet_this_hand %d below current_bet %d", s.TotalBetThisHand, s.CurrentBet)
	}
	return s, nil
}

// MarshalBinary encodes the account exactly as the program lays it out.
func (s Seat) MarshalBinary() ([]byte, error) {
	w := newWriter(KindSeat)
	w.bytes(s.Table[:])
	w.bytes(s.Player[:])
	w.u8(s.SeatIndex)
	w.u64(s.Chips)
	w.u64(s.CurrentBet)
	w.u64(s.TotalBetThisHand)
	w.u128(s.HoleHandles[0])
	w.u128(s.HoleHandles[1])
	w.card(s.HoleCards[0])
	w.card(s.HoleCards[1])
	w.bool(s.CardsRevealed)
	w.u8(uint8(s.Status))
	w.bool(s.HasActed)
	w.u8(s.Bump)
	return w.buf, nil
}
