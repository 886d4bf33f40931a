package layout

import (
	"fmt"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/poker"
	"lukechampine.com/uint128"
)

// DeckSize is the DeckState account length.
const DeckSize = DiscriminatorSize +
	32 + // hand
	poker.DeckSize*16 + // cards
	1 + // deal_index
	1 + // is_shuffled
	32 + // vrf_seed
	1 + // seed_received
	1 // bump

// Deck is the decoded DeckState account. Cards are encrypted handles, never
// plaintext.
type Deck struct {
	Hand         address.Address
	Cards        [poker.DeckSize]uint128.Uint128
	DealIndex    uint8
	IsShuffled   bool
	VRFSeed      [32]byte
	SeedReceived bool
	Bump         uint8
}

// Remaining is the number of cards not yet dealt.
func (d Deck) Remaining() int {
	return poker.DeckSize - int(d.DealIndex)
}

// DecodeDeck decodes a DeckState account.
func DecodeDeck(data []byte) (Deck, error) {
	r := newReader(KindDeck, data)
	var d Deck
	d.Hand = r.address()
	for i := range d.Cards {
		d.Cards[i] = r.u128()
	}
	at := r.off
	d.DealIndex = r.u8()
	if d.DealIndex > poker.DeckSize {
		r.fail("deal_index", at, uint64(d.DealIndex), ErrInvalidValue)
	}
	d.IsShuffled = r.bool("is_shuffled")
	d.VRFSeed = r.bytes32()
	d.SeedReceived = r.bool("seed_received")
	d.Bump = r.u8()
	if r.err != nil {
		return Deck{}, r.err
	}
	return d, nil
}

// MarshalBinary encodes the account exactly as the program lays it out.
func (d Deck) MarshalBinary() ([]byte, error) {
	if d.DealIndex > poker.DeckSize {
		return nil, fmt.Errorf("encode deck: deal index %d exceeds %d", d.DealIndex, poker.DeckSize)
	}
	w := newWriter(KindDeck)
	w.bytes(d.Hand[:])
	for _, c := range d.Cards {
		w.u128(c)
	}
	w.u8(d.DealIndex)
	w.bool(d.IsShuffled)
	w.bytes(d.VRFSeed[:])
	w.bool(d.SeedReceived)
	w.u8(d.Bump)
	return w.buf, nil
}
