package display

import (
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/layout"
	"github.com/lox/hiddenhand/internal/ledger"
	"github.com/lox/hiddenhand/internal/projector"
	"github.com/lox/hiddenhand/poker"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func sampleView() *projector.GameView {
	var player address.Address
	player[1] = 0xAB
	return &projector.GameView{
		Table: layout.Table{
			TableID:        address.TableIDFromName("main"),
			SmallBlind:     5,
			BigBlind:       10,
			MaxPlayers:     3,
			Status:         layout.TablePlaying,
			HandNumber:     21,
			DealerPosition: 2,
		},
		Seats: []projector.SeatView{
			{Index: 0, State: projector.SeatOccupied, Seat: layout.Seat{
				Player: player, SeatIndex: 0, Chips: 480, CurrentBet: 20, Status: layout.SeatPlaying,
			}},
			{Index: 1, State: projector.SeatEmpty},
			{Index: 2, State: projector.SeatUnavailable, Err: ledger.ErrTimeout},
		},
		HandStatus: projector.HandPresent,
		Hand: layout.Hand{
			HandNumber:        21,
			Phase:             layout.PhaseTurn,
			Pot:               60,
			CurrentBet:        20,
			ActionOn:          0,
			Community:         poker.MustParseCards("AhKd2c7s"),
			CommunityRevealed: 4,
		},
	}
}

func TestFormatCards(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "[Ah Ks]", FormatCards(poker.MustParseCards("AhKs")))
	assert.Equal(t, "[?? ??]", FormatCards([]poker.Card{poker.NoCard, poker.NoCard}))
	assert.Equal(t, "[]", FormatCards(nil))
}

func TestShortAddress(t *testing.T) {
	t.Parallel()
	s := ShortAddress(address.DefaultProgram)
	full := address.DefaultProgram.String()
	assert.Equal(t, full[:4]+"…"+full[len(full)-4:], s)
}

func TestRenderTable(t *testing.T) {
	t.Parallel()
	out := RenderTable(sampleView())

	assert.Contains(t, out, " main ")
	assert.Contains(t, out, "Playing  blinds 5/10  hand #21")
	assert.Contains(t, out, "Turn  pot 60  bet 20  board [Ah Kd 2c 7s]")
	assert.Contains(t, out, "▶ Seat 0")
	assert.Contains(t, out, "480 chips  bet 20  Playing")
	assert.Contains(t, out, "Seat 1  (empty)")
	assert.Contains(t, out, "Seat 2  unavailable: ledger: timeout")
	assert.Contains(t, out, "view is partial")
}

func TestRenderTableRevealedCardsAndDealer(t *testing.T) {
	t.Parallel()
	v := sampleView()
	v.Hand.Phase = layout.PhaseShowdown
	v.Seats[0].Seat.CardsRevealed = true
	v.Seats[0].Seat.HoleCards = [2]poker.Card{poker.MustParseCards("Qh")[0], poker.MustParseCards("Qs")[0]}
	v.Table.DealerPosition = 0
	v.Seats[2] = projector.SeatView{Index: 2, State: projector.SeatEmpty}

	out := RenderTable(v)
	assert.Contains(t, out, "D Seat 0")
	assert.Contains(t, out, "[Qh Qs]")
	assert.NotContains(t, out, "▶")
	assert.NotContains(t, out, "partial")
}

func TestRenderTablePendingHand(t *testing.T) {
	t.Parallel()
	v := sampleView()
	v.HandStatus = projector.HandPending
	assert.Contains(t, RenderTable(v), "Waiting for hand to start")
}

func TestRenderHand(t *testing.T) {
	t.Parallel()
	ev := layout.HandCompleted{
		TableID:    address.TableIDFromName("main"),
		HandNumber: 20,
		TotalPot:   200,
		Community:  [5]poker.Card{0, 1, 2, 3, 4},
		Results: []layout.PlayerResult{
			{SeatIndex: 0, HoleCards: [2]poker.Card{12, 25}, HandRank: layout.HandRank(poker.StraightFlush), ChipsWon: 200, ChipsBet: 100},
			{SeatIndex: 2, HoleCards: [2]poker.Card{poker.NoCard, poker.NoCard}, HandRank: layout.Unranked, ChipsBet: 100, Folded: true},
		},
	}
	out := RenderHand(ev)
	assert.Contains(t, out, "Hand #20  main  pot 200  board [2h 3h 4h 5h 6h]")
	assert.Contains(t, out, "Seat 0  +100  Straight Flush  [Ah Ad]")
	assert.Contains(t, out, "Seat 2  -100  -  folded")
}

func TestRenderHistoryEmpty(t *testing.T) {
	t.Parallel()
	assert.Contains(t, RenderHistory(nil), "No completed hands yet")
}
