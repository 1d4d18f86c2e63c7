// SPDX-License-Identifier: EPL-2.0

package player

import "sync/atomic"

// ring is a fixed-capacity single-producer single-consumer queue built
// on atomic indices. One goroutine pushes, one pops; neither ever
// blocks or allocates. It is the only structure that crosses the
// callback/control boundary in either direction.
type ring[T any] struct {
	buf  []T
	mask uint64
	head atomic.Uint64 // next slot to pop
	tail atomic.Uint64 // next slot to push
}

// newRing creates a ring holding at least capacity items, rounded up to
// a power of two.
func newRing[T any](capacity int) *ring[T] {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &ring[T]{
		buf:  make([]T, size),
		mask: uint64(size - 1),
	}
}

// push appends v and reports whether there was room. Producer side
// only.
func (r *ring[T]) push(v T) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() > r.mask {
		return false
	}
	r.buf[tail&r.mask] = v
	r.tail.Store(tail + 1)
	return true
}

// pop removes the oldest item. Consumer side only. The vacated slot is
// zeroed so the ring never pins references past their consumption.
func (r *ring[T]) pop() (T, bool) {
	var zero T
	head := r.head.Load()
	if head == r.tail.Load() {
		return zero, false
	}
	v := r.buf[head&r.mask]
	r.buf[head&r.mask] = zero
	r.head.Store(head + 1)
	return v, true
}

// len reports how many items are waiting. Either side may call it; the
// answer is momentary.
func (r *ring[T]) len() int {
	return int(r.tail.Load() - r.head.Load())
}
