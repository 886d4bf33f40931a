package projector

import (
	"cmp"
	"slices"

	"github.com/lox/hiddenhand/internal/layout"
)

// DefaultHistoryCapacity is how many completed hands are kept per table.
const DefaultHistoryCapacity = 50

// history is a bounded list of completed hands ordered by hand number,
// highest first. When full, the lowest hand number is evicted.
type history struct {
	capacity int
	records  []layout.HandCompleted
}

func newHistory(capacity int) *history {
	return &history{capacity: capacity, records: make([]layout.HandCompleted, 0, capacity+1)}
}

// insert adds rec unless a record for the same hand is already present or
// rec is older than everything in a full buffer.
func (h *history) insert(rec layout.HandCompleted) bool {
	i, found := slices.BinarySearchFunc(h.records, rec.HandNumber, func(r layout.HandCompleted, n uint64) int {
		return cmp.Compare(n, r.HandNumber)
	})
	if found {
		return false
	}
	if len(h.records) >= h.capacity && i == len(h.records) {
		return false
	}
	h.records = slices.Insert(h.records, i, rec)
	if len(h.records) > h.capacity {
		h.records = h.records[:h.capacity]
	}
	return true
}

// snapshot returns a copy safe to hand to readers.
func (h *history) snapshot() []layout.HandCompleted {
	return slices.Clone(h.records)
}

func (h *history) len() int {
	return len(h.records)
}
