package address

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Seed tags. These literals are part of the on-chain contract.
const (
	TableSeed = "table"
	SeatSeed  = "seat"
	HandSeed  = "hand"
	DeckSeed  = "deck"
	VaultSeed = "vault"
)

// DefaultProgram is the hiddenhand program id.
var DefaultProgram = MustParse("HS3GdhRBU3jMT4G6ogKVktKaibqsMhPRhDhNsmgzeB8Q")

// TableIDSize is the width of a table identifier.
const TableIDSize = 32

// TableID is the human-chosen 32-byte table identifier.
type TableID [TableIDSize]byte

// ErrInvalidSeat is returned when a seat index is outside the table's seat count.
var ErrInvalidSeat = errors.New("address: invalid seat index")

// Deriver computes record addresses for one program namespace. It holds no
// mutable state and is safe for concurrent use.
type Deriver struct {
	program Address
}

// NewDeriver creates a deriver for the given program id.
func NewDeriver(program Address) *Deriver {
	return &Deriver{program: program}
}

// Program returns the namespace this deriver hashes under.
func (d *Deriver) Program() Address {
	return d.program
}

// Derive returns the canonical address for a tag followed by its components.
func (d *Deriver) Derive(tag string, components ...[]byte) (Address, error) {
	seeds := make([][]byte, 0, len(components)+1)
	seeds = append(seeds, []byte(tag))
	seeds = append(seeds, components...)
	addr, _, err := FindProgramAddress(d.program, seeds...)
	if err != nil {
		return Zero, fmt.Errorf("derive %s: %w", tag, err)
	}
	return addr, nil
}

// Table derives "table" ‖ table_id.
func (d *Deriver) Table(id TableID) (Address, error) {
	return d.Derive(TableSeed, id[:])
}

// Seat derives "seat" ‖ table ‖ seat_index. Seats at or above maxSeats are
// rejected before hashing.
func (d *Deriver) Seat(table Address, seat, maxSeats uint8) (Address, error) {
	if seat >= maxSeats {
		return Zero, fmt.Errorf("%w: seat %d with %d seats", ErrInvalidSeat, seat, maxSeats)
	}
	return d.Derive(SeatSeed, table[:], []byte{seat})
}

// Hand derives "hand" ‖ table ‖ hand_number (u64 little-endian).
func (d *Deriver) Hand(table Address, handNumber uint64) (Address, error) {
	return d.Derive(HandSeed, table[:], le64(handNumber))
}

// Deck derives "deck" ‖ table ‖ hand_number (u64 little-endian).
func (d *Deriver) Deck(table Address, handNumber uint64) (Address, error) {
	return d.Derive(DeckSeed, table[:], le64(handNumber))
}

// Vault derives "vault" ‖ table.
func (d *Deriver) Vault(table Address) (Address, error) {
	return d.Derive(VaultSeed, table[:])
}

func le64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

// TableIDFromName stores the UTF-8 bytes of name, truncated to 32 bytes and
// zero-padded.
func TableIDFromName(name string) TableID {
	var id TableID
	copy(id[:], name)
	return id
}

// NameFromTableID returns the bytes before the first zero as a string.
func NameFromTableID(id TableID) string {
	if i := bytes.IndexByte(id[:], 0); i >= 0 {
		return string(id[:i])
	}
	return string(id[:])
}

// String returns the decoded table name.
func (id TableID) String() string {
	return NameFromTableID(id)
}
