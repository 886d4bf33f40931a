package projector

import (
	"fmt"
	"time"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/layout"
	"github.com/lox/hiddenhand/poker"
)

// SeatState says what is known about one seat.
type SeatState uint8

const (
	// SeatEmpty means the table bitmap has no player in the seat. It is
	// never fetched.
	SeatEmpty SeatState = iota
	// SeatOccupied means the seat record was fetched and decoded.
	SeatOccupied
	// SeatUnavailable means the bitmap shows a player but the record could
	// not be read this cycle (absent or the fetch timed out).
	SeatUnavailable
)

func (s SeatState) String() string {
	switch s {
	case SeatEmpty:
		return "empty"
	case SeatOccupied:
		return "occupied"
	case SeatUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("SeatState(%d)", uint8(s))
	}
}

// SeatView is one seat of a GameView.
type SeatView struct {
	Index   uint8
	State   SeatState
	Address address.Address
	// Seat is only set when State is SeatOccupied.
	Seat layout.Seat
	// Err explains SeatUnavailable.
	Err error
}

// HandStatus says what is known about the current hand.
type HandStatus uint8

const (
	// HandNone means the table is not playing a hand.
	HandNone HandStatus = iota
	// HandPresent means the hand record was fetched and decoded.
	HandPresent
	// HandPending means the table advanced its hand number but the hand
	// record does not exist yet.
	HandPending
	// HandUnavailable means the hand fetch failed for a retryable reason.
	HandUnavailable
)

func (s HandStatus) String() string {
	switch s {
	case HandNone:
		return "none"
	case HandPresent:
		return "present"
	case HandPending:
		return "pending"
	case HandUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("HandStatus(%d)", uint8(s))
	}
}

// GameView is a consistent point-in-time picture of one table. Views are
// immutable once published; a newer refresh replaces the whole value.
type GameView struct {
	Address address.Address
	Table   layout.Table
	// Seats has one entry per seat up to Table.MaxPlayers.
	Seats []SeatView

	HandAddress address.Address
	HandStatus  HandStatus
	// Hand is only set when HandStatus is HandPresent.
	Hand layout.Hand

	// History holds completed hands for the table, most recent first.
	History []layout.HandCompleted

	Generation uint64
	FetchedAt  time.Time
}

// Name is the table's display name.
func (v *GameView) Name() string {
	return v.Table.Name()
}

// Seat returns the view of seat i.
func (v *GameView) Seat(i uint8) (SeatView, bool) {
	if int(i) >= len(v.Seats) {
		return SeatView{}, false
	}
	return v.Seats[i], true
}

// Occupied returns the seats with a decoded player record.
func (v *GameView) Occupied() []SeatView {
	var out []SeatView
	for _, s := range v.Seats {
		if s.State == SeatOccupied {
			out = append(out, s)
		}
	}
	return out
}

// Board returns the revealed community cards, or nil without a hand.
func (v *GameView) Board() []poker.Card {
	if v.HandStatus != HandPresent {
		return nil
	}
	return v.Hand.Board()
}

// ActionOn returns the seat whose turn it is during a betting round.
func (v *GameView) ActionOn() (SeatView, bool) {
	if v.HandStatus != HandPresent || !v.Hand.Phase.Betting() {
		return SeatView{}, false
	}
	s, ok := v.Seat(v.Hand.ActionOn)
	if !ok || s.State != SeatOccupied {
		return SeatView{}, false
	}
	return s, true
}

// Complete reports whether every record the view depends on was read.
func (v *GameView) Complete() bool {
	if v.HandStatus == HandUnavailable {
		return false
	}
	for _, s := range v.Seats {
		if s.State == SeatUnavailable {
			return false
		}
	}
	return true
}

// regressesFrom reports whether v is older game state than cur: an earlier
// hand number, or the same hand at an earlier phase or not yet created.
func (v *GameView) regressesFrom(cur *GameView) bool {
	if v.Table.HandNumber != cur.Table.HandNumber {
		return v.Table.HandNumber < cur.Table.HandNumber
	}
	if cur.HandStatus != HandPresent {
		return false
	}
	switch v.HandStatus {
	case HandPresent:
		return v.Hand.Phase < cur.Hand.Phase
	case HandPending:
		return true
	default:
		return false
	}
}

// withHistory returns a copy of v carrying a new history slice.
func (v *GameView) withHistory(history []layout.HandCompleted) *GameView {
	next := *v
	next.History = history
	return &next
}
