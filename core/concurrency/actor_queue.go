// File: core/concurrency/actor_queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-pool/api"
)

type scheduleState uint8

const (
	stateQueued scheduleState = iota + 1
	stateRunning
	stateRerun // running, and enqueued again meanwhile
)

// ActorQueue is a FIFO of ready actors guarded by one mutex and one
// condition variable. Pool workers poll it with TryPop and sleep on their own
// Parker; the condition variable only serves PopTimeout callers.
//
// Every handle has at most one entry in the FIFO and is never in the FIFO
// while it runs. A Push that races a running invocation is folded into one
// re-run, queued at the tail when the invocation reports Done.
type ActorQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	fifo   *queue.Queue
	sched  map[api.Actor]scheduleState
	closed bool

	// onDepth, when set, receives the FIFO length after every change.
	// It runs under the queue lock, so reports arrive in order.
	onDepth func(depth int)
}

// NewActorQueue returns an empty queue.
func NewActorQueue() *ActorQueue {
	q := &ActorQueue{
		fifo:  queue.New(),
		sched: make(map[api.Actor]scheduleState),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push makes a ready. It reports whether a new FIFO entry was added; false
// means the handle was already queued or is running and will re-run.
func (q *ActorQueue) Push(a api.Actor) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch q.sched[a] {
	case stateQueued, stateRerun:
		return false
	case stateRunning:
		q.sched[a] = stateRerun
		return false
	}
	q.sched[a] = stateQueued
	q.fifo.Add(a)
	q.reportDepth()
	q.cond.Signal()
	return true
}

// TryPop removes the oldest ready actor without blocking and marks it running.
func (q *ActorQueue) TryPop() (api.Actor, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fifo.Length() == 0 {
		return nil, false
	}
	return q.popLocked(), true
}

// PopTimeout waits up to timeout for a ready actor. It returns early with
// false once the queue is closed and empty.
func (q *ActorQueue) PopTimeout(timeout time.Duration) (api.Actor, bool) {
	deadline := time.Now().Add(timeout)
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.fifo.Length() == 0 {
		if q.closed {
			return nil, false
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false
		}
		t := time.AfterFunc(remaining, func() {
			q.mu.Lock()
			q.cond.Broadcast()
			q.mu.Unlock()
		})
		q.cond.Wait()
		t.Stop()
	}
	return q.popLocked(), true
}

func (q *ActorQueue) popLocked() api.Actor {
	a := q.fifo.Remove().(api.Actor)
	q.sched[a] = stateRunning
	q.reportDepth()
	return a
}

func (q *ActorQueue) reportDepth() {
	if q.onDepth != nil {
		q.onDepth(q.fifo.Length())
	}
}

// Done ends a's current invocation. If a was pushed while running it is
// queued again and Done returns true; otherwise the queue forgets a.
func (q *ActorQueue) Done(a api.Actor) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.sched[a] == stateRerun {
		q.sched[a] = stateQueued
		q.fifo.Add(a)
		q.reportDepth()
		q.cond.Signal()
		return true
	}
	delete(q.sched, a)
	return false
}

// Len returns the number of queued (not running) actors.
func (q *ActorQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fifo.Length()
}

// Close wakes every PopTimeout waiter. Push and Done keep working so
// already admitted work can drain.
func (q *ActorQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}
