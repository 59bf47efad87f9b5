// File: internal/concurrency/parker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "time"

// Parker is a binary wake token owned by one waiting goroutine.
// Any goroutine may Unpark; only the owner may Park or Drain.
// A token delivered while the owner is not parked is kept until the next Park.
type Parker struct {
	ch    chan struct{}
	timer *time.Timer
}

// NewParker returns a parker with no pending token.
func NewParker() *Parker {
	return &Parker{ch: make(chan struct{}, 1)}
}

// Unpark delivers a token. Never blocks; extra tokens are coalesced.
func (p *Parker) Unpark() {
	select {
	case p.ch <- struct{}{}:
	default:
	}
}

// Park blocks until a token arrives or timeout elapses.
// It reports whether it was woken by a token.
func (p *Parker) Park(timeout time.Duration) bool {
	if p.timer == nil {
		p.timer = time.NewTimer(timeout)
	} else {
		p.timer.Reset(timeout)
	}
	select {
	case <-p.ch:
		p.timer.Stop()
		return true
	case <-p.timer.C:
		return false
	}
}

// Drain discards a pending token, if any.
func (p *Parker) Drain() {
	select {
	case <-p.ch:
	default:
	}
}
