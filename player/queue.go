// SPDX-License-Identifier: EPL-2.0

package player

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Queue is the two-tier play order. The explicit tier holds "play next"
// insertions and is consumed verbatim, first in first out. The source
// tier is the album or playlist being played through; the index marks
// the current position in it and only moves when a source-tier track is
// consumed. Shuffle never reorders the tiers; it is applied to the
// index at advance time, so disabling it restores the original order.
//
// The queue is owned exclusively by the manager's control side; it has
// no internal locking.
type Queue struct {
	explicit []Track
	source   []Track
	index    int
}

// NewQueue creates an empty queue positioned before the first track.
func NewQueue() *Queue {
	return &Queue{index: -1}
}

// Append adds tracks to the end of the source tier.
func (q *Queue) Append(tracks ...Track) {
	q.source = append(q.source, tracks...)
}

// PushNext adds a track to the explicit tier. Explicit tracks play in
// the order they were pushed, before the source tier resumes.
func (q *Queue) PushNext(t Track) {
	q.explicit = append(q.explicit, t)
}

// PopExplicit removes and returns the next explicit-tier track.
func (q *Queue) PopExplicit() (Track, bool) {
	if len(q.explicit) == 0 {
		return Track{}, false
	}
	t := q.explicit[0]
	copy(q.explicit, q.explicit[1:])
	q.explicit[len(q.explicit)-1] = Track{}
	q.explicit = q.explicit[:len(q.explicit)-1]
	return t, true
}

// HasExplicit reports whether an explicit-tier track is waiting.
func (q *Queue) HasExplicit() bool { return len(q.explicit) > 0 }

// Insert places a track at position i of the source tier. The current
// index shifts with the move so the playing position is unaffected.
func (q *Queue) Insert(i int, t Track) error {
	if i < 0 || i > len(q.source) {
		return ErrIndexOutOfBounds
	}
	q.source = append(q.source, Track{})
	copy(q.source[i+1:], q.source[i:])
	q.source[i] = t
	if i <= q.index {
		q.index++
	}
	return nil
}

// RemoveAt deletes and returns the source-tier track at position i.
// Removing the current track leaves the index on its predecessor so the
// next advance lands on the track that followed the removed one.
func (q *Queue) RemoveAt(i int) (Track, error) {
	if i < 0 || i >= len(q.source) {
		return Track{}, ErrIndexOutOfBounds
	}
	t := q.source[i]
	copy(q.source[i:], q.source[i+1:])
	q.source[len(q.source)-1] = Track{}
	q.source = q.source[:len(q.source)-1]
	if i <= q.index {
		q.index--
	}
	return t, nil
}

// Move relocates the source-tier track at from to position to.
func (q *Queue) Move(from, to int) error {
	if from < 0 || from >= len(q.source) || to < 0 || to >= len(q.source) {
		return ErrIndexOutOfBounds
	}
	if from == to {
		return nil
	}
	t := q.source[from]
	if from < to {
		copy(q.source[from:], q.source[from+1:to+1])
	} else {
		copy(q.source[to+1:], q.source[to:from])
	}
	q.source[to] = t

	switch {
	case from == q.index:
		q.index = to
	case from < q.index && to >= q.index:
		q.index--
	case from > q.index && to <= q.index:
		q.index++
	}
	return nil
}

// Clear drops both tiers and rewinds before the first track.
func (q *Queue) Clear() {
	clear(q.explicit)
	clear(q.source)
	q.explicit = q.explicit[:0]
	q.source = q.source[:0]
	q.index = -1
}

// Len reports the source-tier length.
func (q *Queue) Len() int { return len(q.source) }

// ExplicitLen reports how many explicit-tier tracks are waiting.
func (q *Queue) ExplicitLen() int { return len(q.explicit) }

// At returns the source-tier track at position i.
func (q *Queue) At(i int) (Track, error) {
	if i < 0 || i >= len(q.source) {
		return Track{}, ErrIndexOutOfBounds
	}
	return q.source[i], nil
}

// Tracks returns a snapshot of the source tier.
func (q *Queue) Tracks() []Track {
	return append([]Track(nil), q.source...)
}

// Explicit returns a snapshot of the explicit tier.
func (q *Queue) Explicit() []Track {
	return append([]Track(nil), q.explicit...)
}

// Index reports the current source-tier position, -1 before the first
// advance.
func (q *Queue) Index() int { return q.index }

// SetIndex jumps the source-tier position. -1 rewinds before the start.
func (q *Queue) SetIndex(i int) error {
	if i < -1 || i >= len(q.source) {
		return ErrIndexOutOfBounds
	}
	q.index = i
	return nil
}

// Current returns the source-tier track at the index.
func (q *Queue) Current() (Track, bool) {
	if q.index < 0 || q.index >= len(q.source) {
		return Track{}, false
	}
	return q.source[q.index], true
}

// IndexOf locates a track by identity in the source tier, -1 when it is
// not there.
func (q *Queue) IndexOf(id uuid.UUID) int {
	_, i, ok := lo.FindIndexOf(q.source, func(t Track) bool { return t.ID == id })
	if !ok {
		return -1
	}
	return i
}
