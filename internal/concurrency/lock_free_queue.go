// File: internal/concurrency/lock_free_queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded MPMC ring using per-cell sequence numbers (Dmitry Vyukov's scheme).
// Head and tail live on separate cache lines.

package concurrency

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Ring is a bounded lock-free multi-producer/multi-consumer FIFO.
type Ring[T any] struct {
	head  atomic.Uint64
	_     cpu.CacheLinePad
	tail  atomic.Uint64
	_     cpu.CacheLinePad
	mask  uint64
	cells []cell[T]
}

type cell[T any] struct {
	sequence atomic.Uint64
	data     T
}

// NewRing creates a ring with capacity rounded up to a power of two (min 2).
func NewRing[T any](capacity int) *Ring[T] {
	size := 2
	for size < capacity {
		size <<= 1
	}
	r := &Ring[T]{
		mask:  uint64(size - 1),
		cells: make([]cell[T], size),
	}
	for i := range r.cells {
		r.cells[i].sequence.Store(uint64(i))
	}
	return r
}

// Enqueue adds val; returns false if the ring is full.
func (r *Ring[T]) Enqueue(val T) bool {
	for {
		tail := r.tail.Load()
		c := &r.cells[tail&r.mask]
		dif := int64(c.sequence.Load()) - int64(tail)
		switch {
		case dif == 0:
			if r.tail.CompareAndSwap(tail, tail+1) {
				c.data = val
				c.sequence.Store(tail + 1)
				return true
			}
		case dif < 0:
			return false
		}
	}
}

// Dequeue removes the oldest item; ok is false if the ring is empty.
func (r *Ring[T]) Dequeue() (item T, ok bool) {
	for {
		head := r.head.Load()
		c := &r.cells[head&r.mask]
		dif := int64(c.sequence.Load()) - int64(head+1)
		switch {
		case dif == 0:
			if r.head.CompareAndSwap(head, head+1) {
				item = c.data
				var zero T
				c.data = zero // drop the reference so finished tasks can be collected
				c.sequence.Store(head + r.mask + 1)
				return item, true
			}
		case dif < 0:
			return item, false
		}
	}
}

// Len returns an approximate number of queued items.
func (r *Ring[T]) Len() int {
	n := int64(r.tail.Load()) - int64(r.head.Load())
	if n < 0 {
		return 0
	}
	return int(n)
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.cells) }
