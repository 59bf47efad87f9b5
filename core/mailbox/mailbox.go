// File: core/mailbox/mailbox.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package mailbox is a minimal actor runtime on top of an actor-serving pool.
// Messages are buffered per actor and the actor is announced to the pool only
// on the empty to non-empty transition, so one queue entry drains many
// messages.
package mailbox

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-pool/api"
)

// Enqueuer is the part of an actor-serving pool a mailbox needs.
type Enqueuer interface {
	EnqueueReadyActor(a api.Actor) error
}

// Handler processes one message. Handlers of one actor never run
// concurrently with each other.
type Handler[M any] func(msg M) error

// Options configures a mailbox actor.
type Options struct {
	// Batch caps the messages handled per dispatch before the actor yields
	// its worker and re-enqueues itself. Defaults to 64.
	Batch int
}

// Actor is a mailbox actor with message type M.
type Actor[M any] struct {
	pool    Enqueuer
	handler Handler[M]
	batch   int

	mu        sync.Mutex
	buf       *queue.Queue
	scheduled bool

	processed atomic.Uint64
	failed    atomic.Uint64
}

var _ api.Actor = (*Actor[int])(nil)

// New creates an actor bound to pool.
func New[M any](pool Enqueuer, h Handler[M], opt Options) *Actor[M] {
	if opt.Batch <= 0 {
		opt.Batch = 64
	}
	return &Actor[M]{
		pool:    pool,
		handler: h,
		batch:   opt.Batch,
		buf:     queue.New(),
	}
}

// Send buffers msg and schedules the actor if it was idle. If the pool
// rejects the actor the message stays buffered and the error is returned;
// the next successful Send delivers it.
func (a *Actor[M]) Send(msg M) error {
	a.mu.Lock()
	a.buf.Add(msg)
	notify := !a.scheduled
	a.scheduled = true
	a.mu.Unlock()

	if !notify {
		return nil
	}
	return a.schedule()
}

func (a *Actor[M]) schedule() error {
	if err := a.pool.EnqueueReadyActor(a); err != nil {
		a.mu.Lock()
		a.scheduled = false
		a.mu.Unlock()
		return err
	}
	return nil
}

// ProcessMessages handles up to Batch buffered messages and returns the
// first handler error. Called by the pool.
func (a *Actor[M]) ProcessMessages() error {
	var first error
	for i := 0; i < a.batch; i++ {
		a.mu.Lock()
		if a.buf.Length() == 0 {
			a.scheduled = false
			a.mu.Unlock()
			return first
		}
		msg, _ := a.buf.Remove().(M)
		a.mu.Unlock()

		if err := a.handle(msg); err != nil {
			a.failed.Add(1)
			if first == nil {
				first = err
			}
		}
		a.processed.Add(1)
	}

	a.mu.Lock()
	more := a.buf.Length() > 0
	a.scheduled = more
	a.mu.Unlock()
	if more {
		if err := a.schedule(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *Actor[M]) handle(msg M) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mailbox handler panic: %v", r)
		}
	}()
	return a.handler(msg)
}

// Pending returns the number of buffered messages.
func (a *Actor[M]) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.Length()
}

// Processed returns how many messages were handled, failed ones included.
func (a *Actor[M]) Processed() uint64 { return a.processed.Load() }

// Failed returns how many messages made the handler fail.
func (a *Actor[M]) Failed() uint64 { return a.failed.Load() }
