package projector

import (
	"math/rand/v2"
	"testing"

	"github.com/lox/hiddenhand/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hands(h *history) []uint64 {
	out := make([]uint64, 0, h.len())
	for _, r := range h.snapshot() {
		out = append(out, r.HandNumber)
	}
	return out
}

func TestHistoryInsertOrder(t *testing.T) {
	t.Parallel()
	h := newHistory(4)

	for _, n := range []uint64{5, 2, 9, 7} {
		require.True(t, h.insert(layout.HandCompleted{HandNumber: n}))
	}
	assert.Equal(t, []uint64{9, 7, 5, 2}, hands(h))

	assert.False(t, h.insert(layout.HandCompleted{HandNumber: 7}), "duplicate")
	assert.False(t, h.insert(layout.HandCompleted{HandNumber: 1}), "older than a full buffer")

	assert.True(t, h.insert(layout.HandCompleted{HandNumber: 6}))
	assert.Equal(t, []uint64{9, 7, 6, 5}, hands(h))
}

func TestHistoryShuffledArrival(t *testing.T) {
	t.Parallel()
	h := newHistory(DefaultHistoryCapacity)

	numbers := make([]uint64, 60)
	for i := range numbers {
		numbers[i] = uint64(i + 1)
	}
	rng := rand.New(rand.NewPCG(1, 2))
	rng.Shuffle(len(numbers), func(i, j int) { numbers[i], numbers[j] = numbers[j], numbers[i] })

	for _, n := range numbers {
		h.insert(layout.HandCompleted{HandNumber: n})
	}

	got := hands(h)
	require.Len(t, got, DefaultHistoryCapacity)
	for i, n := range got {
		assert.Equal(t, uint64(60-i), n)
	}
}

func TestHistorySnapshotIsCopy(t *testing.T) {
	t.Parallel()
	h := newHistory(2)
	h.insert(layout.HandCompleted{HandNumber: 1})

	snap := h.snapshot()
	snap[0].HandNumber = 99
	assert.Equal(t, []uint64{1}, hands(h))
}
