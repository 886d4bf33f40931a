// Package layout decodes the fixed-layout binary records written by the
// hiddenhand program: account snapshots (Table, HandState, PlayerSeat,
// DeckState) and the HandCompleted event.
//
// The layouts are owned by the on-chain program, not by this package. Every
// decoder reads fields at fixed offsets, little-endian, after an 8-byte
// discriminator, and fails with a *DecodeError instead of substituting a
// default when bytes do not fit the schema.
package layout

import (
	"bytes"
	"crypto/sha256"
	"fmt"
)

// Kind names a record layout. Callers always choose the kind; it is never
// inferred from content.
type Kind uint8

const (
	KindTable Kind = iota + 1
	KindHand
	KindSeat
	KindDeck
	KindHandCompleted
)

// DiscriminatorSize is the width of the leading type tag.
const DiscriminatorSize = 8

var kindNames = map[Kind]string{
	KindTable:         "table",
	KindHand:          "hand",
	KindSeat:          "seat",
	KindDeck:          "deck",
	KindHandCompleted: "hand_completed",
}

// Anchor preimages for each discriminator.
var kindPreimages = map[Kind]string{
	KindTable:         "account:Table",
	KindHand:          "account:HandState",
	KindSeat:          "account:PlayerSeat",
	KindDeck:          "account:DeckState",
	KindHandCompleted: "event:HandCompleted",
}

var kindSizes = map[Kind]int{
	KindTable:         TableSize,
	KindHand:          HandSize,
	KindSeat:          SeatSize,
	KindDeck:          DeckSize,
	KindHandCompleted: HandCompletedSize,
}

var discriminators = func() map[Kind][DiscriminatorSize]byte {
	out := make(map[Kind][DiscriminatorSize]byte, len(kindPreimages))
	for k, pre := range kindPreimages {
		sum := sha256.Sum256([]byte(pre))
		out[k] = [DiscriminatorSize]byte(sum[:DiscriminatorSize])
	}
	return out
}()

// Kinds lists every record kind.
func Kinds() []Kind {
	return []Kind{KindTable, KindHand, KindSeat, KindDeck, KindHandCompleted}
}

// ParseKind resolves a kind from its name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown record kind %q", name)
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Size returns the record's fixed byte length, discriminator included.
func (k Kind) Size() int {
	return kindSizes[k]
}

// Discriminator returns the 8-byte tag that prefixes records of this kind.
func (k Kind) Discriminator() [DiscriminatorSize]byte {
	return discriminators[k]
}

// HasDiscriminator reports whether data starts with k's tag.
func HasDiscriminator(data []byte, k Kind) bool {
	d := k.Discriminator()
	return len(data) >= DiscriminatorSize && bytes.Equal(data[:DiscriminatorSize], d[:])
}

// Decode dispatches to the decoder for kind. The result is one of Table,
// Hand, Seat, Deck or HandCompleted.
func Decode(kind Kind, data []byte) (any, error) {
	switch kind {
	case KindTable:
		return DecodeTable(data)
	case KindHand:
		return DecodeHand(data)
	case KindSeat:
		return DecodeSeat(data)
	case KindDeck:
		return DecodeDeck(data)
	case KindHandCompleted:
		return DecodeHandCompleted(data)
	default:
		return nil, fmt.Errorf("unknown record kind %d", uint8(kind))
	}
}
