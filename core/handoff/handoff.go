// File: core/handoff/handoff.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package handoff provides keyed single-value slots for passing results
// between actors, kernels and plain goroutines. A producer Stores into a
// slot, a consumer Fetches and empties it.
package handoff

import (
	"context"
	"sync"
)

// Slots is a set of keyed single-value slots.
type Slots[K comparable, V any] struct {
	mu      sync.Mutex
	slots   map[K]V
	changed chan struct{}
}

// New returns an empty slot set.
func New[K comparable, V any]() *Slots[K, V] {
	return &Slots[K, V]{
		slots:   make(map[K]V),
		changed: make(chan struct{}),
	}
}

// broadcast wakes every waiter. Caller holds mu.
func (s *Slots[K, V]) broadcast() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// Store fills slot k with v, blocking while the slot is occupied.
func (s *Slots[K, V]) Store(ctx context.Context, k K, v V) error {
	for {
		s.mu.Lock()
		if _, busy := s.slots[k]; !busy {
			s.slots[k] = v
			s.broadcast()
			s.mu.Unlock()
			return nil
		}
		wait := s.changed
		s.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Fetch blocks until slot k is filled, then empties it and returns the value.
func (s *Slots[K, V]) Fetch(ctx context.Context, k K) (V, error) {
	for {
		s.mu.Lock()
		if v, ok := s.slots[k]; ok {
			delete(s.slots, k)
			s.broadcast()
			s.mu.Unlock()
			return v, nil
		}
		wait := s.changed
		s.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
}

// TryFetch empties slot k without blocking.
func (s *Slots[K, V]) TryFetch(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[k]
	if ok {
		delete(s.slots, k)
		s.broadcast()
	}
	return v, ok
}

// Len returns the number of filled slots.
func (s *Slots[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
