package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deckDealIndexOffset = 8 + 32 + 52*16

func TestDeckRoundTrip(t *testing.T) {
	t.Parallel()
	want := sampleDeck()
	got, err := DecodeDeck(mustMarshal(t, want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 43, got.Remaining())
}

func TestDecodeDeckRejectsDealIndex(t *testing.T) {
	t.Parallel()
	buf := mustMarshal(t, sampleDeck())
	buf[deckDealIndexOffset] = 52
	_, err := DecodeDeck(buf)
	require.NoError(t, err)

	buf[deckDealIndexOffset] = 53
	_, err = DecodeDeck(buf)
	de := requireDecodeError(t, err, ErrInvalidValue)
	assert.Equal(t, "deal_index", de.Field)
	assert.Equal(t, deckDealIndexOffset, de.Offset)
}

func TestDecodeDeckRejectsBool(t *testing.T) {
	t.Parallel()
	buf := mustMarshal(t, sampleDeck())
	buf[deckDealIndexOffset+1] = 7
	_, err := DecodeDeck(buf)
	de := requireDecodeError(t, err, ErrInvalidValue)
	assert.Equal(t, "is_shuffled", de.Field)
}
