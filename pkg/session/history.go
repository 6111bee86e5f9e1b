package session

import "github.com/teslashibe/recemotion/pkg/facs"

// History is a bounded FIFO of classified emotions.
type History struct {
	entries  []facs.Emotion
	capacity int
}

// NewHistory creates a history holding at most capacity entries.
func NewHistory(capacity int) *History {
	return &History{
		entries:  make([]facs.Emotion, 0, capacity),
		capacity: capacity,
	}
}

// Push appends e, evicting the oldest entry once capacity is exceeded.
func (h *History) Push(e facs.Emotion) {
	h.entries = append(h.entries, e)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[1:]
	}
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Clear drops all entries.
func (h *History) Clear() {
	h.entries = make([]facs.Emotion, 0, h.capacity)
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []facs.Emotion {
	out := make([]facs.Emotion, len(h.entries))
	copy(out, h.entries)
	return out
}

// Counts returns how often each emotion occurs.
func (h *History) Counts() map[facs.Emotion]int {
	counts := make(map[facs.Emotion]int)
	for _, e := range h.entries {
		counts[e]++
	}
	return counts
}

// Dominant returns the most frequent emotion. Ties go to the label that
// appears first in the history; an empty history is Neutral.
func (h *History) Dominant() facs.Emotion {
	if len(h.entries) == 0 {
		return facs.EmotionNeutral
	}

	counts := h.Counts()
	best := h.entries[0]
	for _, e := range h.entries {
		if counts[e] > counts[best] {
			best = e
		}
	}
	return best
}
