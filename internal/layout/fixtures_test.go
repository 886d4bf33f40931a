package layout

import (
	"testing"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/poker"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func addr(b byte) address.Address {
	var a address.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func sampleTable() Table {
	return Table{
		Authority:      addr(0xA1),
		TableID:        address.TableIDFromName("high-stakes"),
		SmallBlind:     10,
		BigBlind:       20,
		MinBuyIn:       400,
		MaxBuyIn:       4000,
		MaxPlayers:     6,
		CurrentPlayers: 2,
		Status:         TablePlaying,
		HandNumber:     7,
		OccupiedSeats:  0b0000_0101,
		DealerPosition: 2,
		LastReadyTime:  1_735_689_600,
		Bump:           254,
	}
}

func sampleHand() Hand {
	return Hand{
		Table:             addr(0xB2),
		HandNumber:        7,
		Phase:             PhaseFlop,
		Pot:               60,
		CurrentBet:        20,
		MinRaise:          20,
		DealerPosition:    2,
		ActionOn:          0,
		Community:         []poker.Card{10, 23, 36, poker.NoCard, poker.NoCard},
		CommunityRevealed: 3,
		ActivePlayers:     0b0000_0101,
		ActedThisRound:    0b0000_0100,
		ActiveCount:       2,
		AllInPlayers:      0,
		LastActionSlot:          311_200_450,
		HandStartSlot:           311_200_300,
		LastActionTime:          1_735_689_700,
		AwaitingCommunityReveal: true,
		Bump:                    253,
	}
}

func sampleSeat() Seat {
	return Seat{
		Table:            addr(0xB2),
		Player:           addr(0xC3),
		SeatIndex:        2,
		Chips:            980,
		CurrentBet:       20,
		TotalBetThisHand: 40,
		HoleHandles:      [2]uint128.Uint128{uint128.New(1, 2), uint128.New(3, ^uint64(0))},
		HoleCards:        [2]poker.Card{poker.NoCard, poker.NoCard},
		Status:           SeatPlaying,
		HasActed:         true,
		Bump:             252,
	}
}

func sampleDeck() Deck {
	d := Deck{
		Hand:         addr(0xD4),
		DealIndex:    9,
		IsShuffled:   true,
		SeedReceived: true,
		Bump:         251,
	}
	for i := range d.Cards {
		d.Cards[i] = uint128.New(uint64(i), uint64(i)<<32)
	}
	for i := range d.VRFSeed {
		d.VRFSeed[i] = byte(i)
	}
	return d
}

func sampleEvent() HandCompleted {
	return HandCompleted{
		TableID:     address.TableIDFromName("high-stakes"),
		HandNumber:  7,
		Timestamp:   1_735_689_900,
		Community:   [5]poker.Card{10, 23, 36, 49, 3},
		TotalPot:    400,
		PlayerCount: 2,
		Results: []PlayerResult{
			{
				Player:    addr(0xC3),
				SeatIndex: 2,
				HoleCards: [2]poker.Card{12, 25},
				HandRank:  HandRank(poker.TwoPair),
				ChipsWon:  400,
				ChipsBet:  200,
			},
			{
				Player:    addr(0xC4),
				SeatIndex: 0,
				HoleCards: [2]poker.Card{poker.NoCard, poker.NoCard},
				HandRank:  Unranked,
				ChipsBet:  200,
				Folded:    true,
			},
		},
	}
}

func mustMarshal(t *testing.T, v interface{ MarshalBinary() ([]byte, error) }) []byte {
	t.Helper()
	b, err := v.MarshalBinary()
	require.NoError(t, err)
	return b
}

// samples returns one encoded record per kind.
func samples(t *testing.T) map[Kind][]byte {
	t.Helper()
	return map[Kind][]byte{
		KindTable:         mustMarshal(t, sampleTable()),
		KindHand:          mustMarshal(t, sampleHand()),
		KindSeat:          mustMarshal(t, sampleSeat()),
		KindDeck:          mustMarshal(t, sampleDeck()),
		KindHandCompleted: mustMarshal(t, sampleEvent()),
	}
}

func requireDecodeError(t *testing.T, err error, target error) *DecodeError {
	t.Helper()
	require.ErrorIs(t, err, target)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	return de
}
