// File: core/concurrency/interpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// InterThreadPool adds ready-actor dispatch to ThreadPool. The first
// actorWorkers workers service the actor queue ahead of kernel tasks; the
// remaining workers run kernel tasks only.

package concurrency

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"

	"github.com/momentics/hioload-pool/api"
)

var _ api.InterPool = (*InterThreadPool)(nil)

// InterThreadPool is a ThreadPool with an actor queue.
type InterThreadPool struct {
	*ThreadPool
}

// NewInterThreadPool creates workers workers of which the first
// actorWorkers are actor-capable. Requires 0 < actorWorkers <= workers.
func NewInterThreadPool(actorWorkers, workers int, opt Options) (*InterThreadPool, error) {
	if actorWorkers <= 0 || actorWorkers > workers {
		return nil, invalidWorkerCount(actorWorkers, workers)
	}
	tp, err := newThreadPool(workers, actorWorkers, opt)
	if err != nil {
		return nil, err
	}
	return &InterThreadPool{ThreadPool: tp}, nil
}

// NewActorThreadPool creates a pool where every worker is actor-capable.
func NewActorThreadPool(workers int, opt Options) (*InterThreadPool, error) {
	return NewInterThreadPool(workers, workers, opt)
}

// EnqueueReadyActor schedules one ProcessMessages call of a and wakes at
// most one parked actor-capable worker. It does not block and may be called
// from inside a running handler, including a's own.
func (p *InterThreadPool) EnqueueReadyActor(a api.Actor) error {
	if a == nil {
		return invalidSubmission("nil actor")
	}
	if !reflect.TypeOf(a).Comparable() {
		return invalidSubmission("actor handle %T is not comparable", a)
	}
	added, err := p.push(a)
	if err != nil {
		return err
	}
	if added {
		p.wakeActorWorker()
	}
	return nil
}

// push admits a under the gate. The deferred unlock keeps Close reachable
// even if hashing the handle panics.
func (p *InterThreadPool) push(a api.Actor) (bool, error) {
	p.gate.RLock()
	defer p.gate.RUnlock()
	if p.closed {
		return false, ErrPoolClosed
	}
	return p.actors.Push(a), nil
}

// wakeActorWorker unparks exactly one blocked actor-capable worker, starting
// at a rotating offset. If none is blocked a spinning or running worker will
// find the actor on its next poll.
func (p *ThreadPool) wakeActorWorker() {
	n := uint32(p.actorWorkers)
	if n == 0 {
		return
	}
	off := p.wakeCursor.Add(1)
	for i := uint32(0); i < n; i++ {
		if p.workers[(off+i)%n].tryWake() {
			return
		}
	}
}

// runActor invokes a's handler. Failures are logged and counted and never
// reach other actors or the worker.
func (p *ThreadPool) runActor(a api.Actor) {
	p.metrics.ActorDispatched()
	panicked, err := invokeActor(a)
	p.actorsRun.Add(1)
	if err != nil {
		p.actorFailures.Add(1)
		p.metrics.ActorFailed(panicked)
		level := slog.LevelError
		if isClosedErr(err) {
			level = slog.LevelDebug
		}
		p.log.Log(context.Background(), level, "actor failed",
			slog.String("actor", fmt.Sprintf("%T", a)),
			slog.Bool("panicked", panicked),
			slog.Any("err", err))
	}
	if p.actors.Done(a) {
		p.wakeActorWorker()
	}
}

func invokeActor(a api.Actor) (panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("actor panic: %v\n%s", r, debug.Stack())
			panicked = true
		}
	}()
	return false, a.ProcessMessages()
}
