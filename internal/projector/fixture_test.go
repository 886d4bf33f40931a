package projector

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/layout"
	"github.com/lox/hiddenhand/internal/ledger/ledgertest"
	"github.com/lox/hiddenhand/poker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t       *testing.T
	ledger  *ledgertest.Ledger
	deriver *address.Deriver
	clock   *quartz.Mock
	reg     *prometheus.Registry
	id      address.TableID
	table   address.Address
	proj    *Projector

	published chan *GameView
	completed chan layout.HandCompleted
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		t:         t,
		ledger:    ledgertest.New(),
		deriver:   address.NewDeriver(address.DefaultProgram),
		clock:     quartz.NewMock(t),
		reg:       prometheus.NewRegistry(),
		id:        address.TableIDFromName("test-table"),
		published: make(chan *GameView, 64),
		completed: make(chan layout.HandCompleted, 64),
	}
	var err error
	f.table, err = f.deriver.Table(f.id)
	require.NoError(t, err)

	opts := Options{
		Fetcher:         f.ledger,
		Deriver:         f.deriver,
		Clock:           f.clock,
		Logger:          log.NewWithOptions(io.Discard, log.Options{}),
		Registerer:      f.reg,
		OnPublish:       func(v *GameView) { f.published <- v },
		OnHandCompleted: func(e layout.HandCompleted) { f.completed <- e },
	}
	for _, c := range configure {
		c(&opts)
	}
	f.proj, err = New(opts)
	require.NoError(t, err)
	return f
}

// baseTable is a six-seat table playing hand 4 with seats 0 and 3 taken.
func (f *fixture) baseTable() layout.Table {
	return layout.Table{
		TableID:        f.id,
		SmallBlind:     5,
		BigBlind:       10,
		MinBuyIn:       100,
		MaxBuyIn:       1000,
		MaxPlayers:     6,
		CurrentPlayers: 2,
		Status:         layout.TablePlaying,
		HandNumber:     4,
		OccupiedSeats:  layout.SeatBitmap([]uint8{0, 3}),
		DealerPosition: 3,
	}
}

func (f *fixture) baseSeat(idx uint8) layout.Seat {
	var player address.Address
	player[0] = 0xF0 | idx
	return layout.Seat{
		Table:            f.table,
		Player:           player,
		SeatIndex:        idx,
		Chips:            500,
		CurrentBet:       10,
		TotalBetThisHand: 10,
		HoleCards:        [2]poker.Card{poker.NoCard, poker.NoCard},
		Status:           layout.SeatPlaying,
	}
}

func (f *fixture) baseHand(phase layout.Phase) layout.Hand {
	return layout.Hand{
		Table:             f.table,
		HandNumber:        4,
		Phase:             phase,
		Pot:               20,
		CurrentBet:        10,
		MinRaise:          10,
		DealerPosition:    3,
		ActionOn:          0,
		Community:         []poker.Card{poker.NoCard, poker.NoCard, poker.NoCard, poker.NoCard, poker.NoCard},
		ActivePlayers:     layout.SeatBitmap([]uint8{0, 3}),
		ActiveCount:       2,
		CommunityRevealed: 0,
	}
}

func (f *fixture) seatAddr(idx uint8) address.Address {
	a, err := f.deriver.Seat(f.table, idx, layout.MaxSeats)
	require.NoError(f.t, err)
	return a
}

func (f *fixture) handAddr(n uint64) address.Address {
	a, err := f.deriver.Hand(f.table, n)
	require.NoError(f.t, err)
	return a
}

func (f *fixture) putTable(tbl layout.Table) {
	require.NoError(f.t, f.ledger.PutRecord(f.table, tbl))
}

func (f *fixture) putSeat(s layout.Seat) {
	require.NoError(f.t, f.ledger.PutRecord(f.seatAddr(s.SeatIndex), s))
}

func (f *fixture) putHand(h layout.Hand) {
	require.NoError(f.t, f.ledger.PutRecord(f.handAddr(h.HandNumber), h))
}

// seed writes the base table, both seats and a hand in phase.
func (f *fixture) seed(phase layout.Phase) {
	f.putTable(f.baseTable())
	f.putSeat(f.baseSeat(0))
	f.putSeat(f.baseSeat(3))
	f.putHand(f.baseHand(phase))
}

func (f *fixture) event(hand uint64) layout.HandCompleted {
	return layout.HandCompleted{
		TableID:     f.id,
		HandNumber:  hand,
		Timestamp:   int64(1_700_000_000 + hand),
		Community:   [5]poker.Card{0, 1, 2, 3, 4},
		TotalPot:    100,
		PlayerCount: 2,
		Results: []layout.PlayerResult{
			{SeatIndex: 0, HoleCards: [2]poker.Card{10, 11}, HandRank: layout.HandRank(poker.OnePair), ChipsWon: 100, ChipsBet: 50},
			{SeatIndex: 3, HoleCards: [2]poker.Card{poker.NoCard, poker.NoCard}, HandRank: layout.Unranked, ChipsBet: 50, Folded: true},
		},
	}
}

func (f *fixture) eventBytes(hand uint64) []byte {
	b, err := f.event(hand).MarshalBinary()
	require.NoError(f.t, err)
	return b
}
