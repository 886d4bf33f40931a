package layout

import (
	"math"
	"testing"

	"github.com/lox/hiddenhand/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

const (
	seatRevealedOffset      = 129
	seatCardsRevealedOffset = 131
	seatStatusOffset        = 132
)

func TestSeatRoundTrip(t *testing.T) {
	t.Parallel()
	want := sampleSeat()
	got, err := DecodeSeat(mustMarshal(t, want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.Occupied())
	assert.Equal(t, [2]poker.Card{poker.NoCard, poker.NoCard}, got.VisibleHoleCards())
}

func TestSeatPreservesWideValues(t *testing.T) {
	t.Parallel()
	s := sampleSeat()
	s.Chips = math.MaxUint64
	s.TotalBetThisHand = math.MaxUint64
	s.HoleHandles[0] = uint128.Max

	got, err := DecodeSeat(mustMarshal(t, s))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got.Chips)
	assert.Equal(t, uint128.Max, got.HoleHandles[0])
}

func TestSeatHoleCardsNeedRevealFlag(t *testing.T) {
	t.Parallel()
	s := sampleSeat()
	s.HoleCards = [2]poker.Card{0, 51}

	got, err := DecodeSeat(mustMarshal(t, s))
	require.NoError(t, err)
	assert.Equal(t, [2]poker.Card{poker.NoCard, poker.NoCard}, got.VisibleHoleCards())

	s.CardsRevealed = true
	got, err = DecodeSeat(mustMarshal(t, s))
	require.NoError(t, err)
	assert.Equal(t, [2]poker.Card{0, 51}, got.VisibleHoleCards())
}

func TestDecodeSeatRejectsBadBytes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		offset int
		value  byte
		target error
		field  string
	}{
		{"card out of range", seatRevealedOffset, 60, ErrInvalidValue, "revealed_card_1"},
		{"bool out of range", seatCardsRevealedOffset, 2, ErrInvalidValue, "cards_revealed"},
		{"unknown status", seatStatusOffset, 4, ErrUnknownVariant, "status"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			buf := mustMarshal(t, sampleSeat())
			buf[tc.offset] = tc.value

			_, err := DecodeSeat(buf)
			de := requireDecodeError(t, err, tc.target)
			assert.Equal(t, tc.field, de.Field)
			assert.Equal(t, tc.offset, de.Offset)
			assert.Equal(t, uint64(tc.value), de.Value)
		})
	}
}

func TestDecodeSeatInvariants(t *testing.T) {
	t.Parallel()
	s := sampleSeat()
	s.TotalBetThisHand = 10
	_, err := DecodeSeat(mustMarshal(t, s))
	requireDecodeError(t, err, ErrInvariant)

	s = sampleSeat()
	s.SeatIndex = 8
	_, err = DecodeSeat(mustMarshal(t, s))
	requireDecodeError(t, err, ErrInvariant)
}

func TestEmptySeatIsNotOccupied(t *testing.T) {
	t.Parallel()
	assert.False(t, Seat{}.Occupied())
	assert.True(t, SeatAllIn.InHand())
	assert.False(t, SeatFolded.InHand())
}
