package session

import "github.com/hyperjump/kensaku/internal/models"

// DefaultHistoryCapacity is the number of distinct queries kept.
const DefaultHistoryCapacity = 50

// history is a bounded, most-recent-first list of distinct queries.
// Re-submitting a query moves its entry to the front.
type history struct {
	capacity int
	entries  []models.HistoryEntry
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &history{capacity: capacity, entries: make([]models.HistoryEntry, 0, capacity)}
}

func (h *history) add(e models.HistoryEntry) {
	for i, existing := range h.entries {
		if existing.Query == e.Query {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	if len(h.entries) == h.capacity {
		h.entries = h.entries[:h.capacity-1]
	}
	h.entries = append(h.entries, models.HistoryEntry{})
	copy(h.entries[1:], h.entries)
	h.entries[0] = e
}

// list returns up to limit entries, newest first. limit <= 0 means all.
func (h *history) list(limit int) []models.HistoryEntry {
	n := len(h.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.HistoryEntry, n)
	copy(out, h.entries[:n])
	return out
}

func (h *history) clear() {
	h.entries = h.entries[:0]
}
