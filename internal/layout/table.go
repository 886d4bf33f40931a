package layout

import (
	"fmt"
	"math/bits"

	"github.com/lox/hiddenhand/internal/address"
)

// TableSize is the Table account length.
const TableSize = DiscriminatorSize +
	32 + // authority
	32 + // table_id
	8 + // small_blind
	8 + // big_blind
	8 + // min_buy_in
	8 + // max_buy_in
	1 + // max_players
	1 + // current_players
	1 + // status
	8 + // hand_number
	1 + // occupied_seats
	1 + // dealer_position
	8 + // last_ready_time
	1 // bump

// MaxSeats is the width of the on-chain seat bitmaps.
const MaxSeats = 8

// TableStatus is the table lifecycle tag.
type TableStatus uint8

const (
	TableWaiting TableStatus = iota
	TablePlaying
	TableClosed

	numTableStatuses
)

func (s TableStatus) String() string {
	switch s {
	case TableWaiting:
		return "Waiting"
	case TablePlaying:
		return "Playing"
	case TableClosed:
		return "Closed"
	default:
		return fmt.Sprintf("TableStatus(%d)", uint8(s))
	}
}

// Table is the decoded table account.
type Table struct {
	Authority      address.Address
	TableID        address.TableID
	SmallBlind     uint64
	BigBlind       uint64
	MinBuyIn       uint64
	MaxBuyIn       uint64
	MaxPlayers     uint8
	CurrentPlayers uint8
	Status         TableStatus
	HandNumber     uint64
	OccupiedSeats  uint8
	DealerPosition uint8
	// LastReadyTime is seconds since the Unix epoch.
	LastReadyTime int64
	Bump          uint8
}

// Name returns the human-readable table name.
func (t Table) Name() string {
	return address.NameFromTableID(t.TableID)
}

// HandInProgress reports whether a hand record should exist for HandNumber.
func (t Table) HandInProgress() bool {
	return t.Status == TablePlaying && t.HandNumber > 0
}

// Seats returns the occupied seat indices, lowest first.
func (t Table) Seats() []uint8 {
	return OccupiedSeats(t.OccupiedSeats, t.MaxPlayers)
}

// DecodeTable decodes a Table account.
func DecodeTable(data []byte) (Table, error) {
	r := newReader(KindTable, data)
	t := Table{
		Authority:      r.address(),
		TableID:        address.TableID(r.bytes32()),
		SmallBlind:     r.u64(),
		BigBlind:       r.u64(),
		MinBuyIn:       r.u64(),
		MaxBuyIn:       r.u64(),
		MaxPlayers:     r.u8(),
		CurrentPlayers: r.u8(),
		Status:         TableStatus(r.variant("status", uint8(numTableStatuses))),
		HandNumber:     r.u64(),
		OccupiedSeats:  r.u8(),
		DealerPosition: r.u8(),
		LastReadyTime:  r.i64(),
		Bump:           r.u8(),
	}
	if r.err != nil {
		return Table{}, r.err
	}
	if err := t.validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

func (t Table) validate() error {
	if t.MaxPlayers > MaxSeats {
		return invariant(KindTable, "max_players %d exceeds bitmap width %d", t.MaxPlayers, MaxSeats)
	}
	if t.OccupiedSeats&^seatMask(t.MaxPlayers) != 0 {
		return invariant(KindTable, "occupied_seats %08b has seats beyond max_players %d", t.OccupiedSeats, t.MaxPlayers)
	}
	if n := bits.OnesCount8(t.OccupiedSeats); n != int(t.CurrentPlayers) {
		return invariant(KindTable, "current_players %d but %d seats occupied", t.CurrentPlayers, n)
	}
	if t.MaxPlayers > 0 && t.DealerPosition >= t.MaxPlayers {
		return invariant(KindTable, "dealer_position %d not below max_players %d", t.DealerPosition, t.MaxPlayers)
	}
	return nil
}

// MarshalBinary encodes the account exactly as the program lays it out.
func (t Table) MarshalBinary() ([]byte, error) {
	w := newWriter(KindTable)
	w.bytes(t.Authority[:])
	w.bytes(t.TableID[:])
	w.u64(t.SmallBlind)
	w.u64(t.BigBlind)
	w.u64(t.MinBuyIn)
	w.u64(t.MaxBuyIn)
	w.u8(t.MaxPlayers)
	w.u8(t.CurrentPlayers)
	w.u8(uint8(t.Status))
	w.u64(t.HandNumber)
	w.u8(t.OccupiedSeats)
	w.u8(t.DealerPosition)
	w.i64(t.LastReadyTime)
	w.u8(t.Bump)
	return w.buf, nil
}
