// SPDX-License-Identifier: EPL-2.0

package player

// History is a bounded record of previously played tracks, newest last.
// When full, pushing evicts the oldest entry. It serves back-navigation
// and smart-shuffle exclusion and is owned by the control side; it is
// never touched from the audio callback.
type History struct {
	entries  []Track
	capacity int
}

// NewHistory creates a history holding at most capacity tracks.
// Capacities below one are raised to one.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		entries:  make([]Track, 0, capacity),
		capacity: capacity,
	}
}

// Push records t as the most recently played track.
func (h *History) Push(t Track) {
	if len(h.entries) == h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, t)
}

// Pop removes and returns the most recently played track.
func (h *History) Pop() (Track, bool) {
	if len(h.entries) == 0 {
		return Track{}, false
	}
	t := h.entries[len(h.entries)-1]
	h.entries[len(h.entries)-1] = Track{}
	h.entries = h.entries[:len(h.entries)-1]
	return t, true
}

// Peek returns the most recently played track without removing it.
func (h *History) Peek() (Track, bool) {
	if len(h.entries) == 0 {
		return Track{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Len reports how many tracks the history currently holds.
func (h *History) Len() int { return len(h.entries) }

// Cap reports the fixed capacity.
func (h *History) Cap() int { return h.capacity }

// Recent returns up to n of the most recently played tracks, newest
// first, as a fresh slice.
func (h *History) Recent(n int) []Track {
	if n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Track, n)
	for i := range n {
		out[i] = h.entries[len(h.entries)-1-i]
	}
	return out
}

// Clear drops every entry.
func (h *History) Clear() {
	clear(h.entries)
	h.entries = h.entries[:0]
}
