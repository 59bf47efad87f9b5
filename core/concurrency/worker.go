// File: core/concurrency/worker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker owns one OS thread. Idle workers spin a bounded number of polls,
// then park with a timeout so a missed wakeup can never hang shutdown.

package concurrency

import (
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	iconc "github.com/momentics/hioload-pool/internal/concurrency"
)

// WorkerState is the externally visible state of a worker.
type WorkerState int32

const (
	StateIdle WorkerState = iota
	StateSpinning
	StateBlocked
	StateRunningTask
	StateRunningActor
	StateShuttingDown
	StateJoined
)

func (s WorkerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpinning:
		return "spinning"
	case StateBlocked:
		return "blocked"
	case StateRunningTask:
		return "running-task"
	case StateRunningActor:
		return "running-actor"
	case StateShuttingDown:
		return "shutting-down"
	case StateJoined:
		return "joined"
	default:
		return "unknown"
	}
}

// Worker executes tasks and, when actor-capable, ready actors.
type Worker struct {
	id           int
	cpu          int
	actorCapable bool
	pool         *ThreadPool
	state        atomic.Int32
	parker       *iconc.Parker
	log          *slog.Logger
}

func newWorker(id int, p *ThreadPool, actorCapable bool, cpu int) *Worker {
	return &Worker{
		id:           id,
		cpu:          cpu,
		actorCapable: actorCapable,
		pool:         p,
		parker:       iconc.NewParker(),
		log:          p.log.With(slog.Int("worker", id)),
	}
}

// ID returns the worker index inside its pool.
func (w *Worker) ID() int { return w.id }

// ActorCapable reports whether the worker services the actor queue.
func (w *Worker) ActorCapable() bool { return w.actorCapable }

// State returns the current state.
func (w *Worker) State() WorkerState { return WorkerState(w.state.Load()) }

func (w *Worker) setState(s WorkerState) { w.state.Store(int32(s)) }

// run is the body of the worker goroutine. It reports startup on ready and
// never unlocks its OS thread, so the thread is discarded when run returns.
func (w *Worker) run(ready chan<- error) {
	p := w.pool
	defer p.wg.Done()
	defer w.setState(StateJoined)

	err := iconc.PinCurrentThread(w.cpu)
	if err == nil && p.opt.startHook != nil {
		err = p.opt.startHook(w)
	}
	if err != nil {
		ready <- err
		return
	}
	ready <- nil

	w.log.Debug("worker started", slog.Int("cpu", w.cpu), slog.Bool("actor_capable", w.actorCapable))
	w.loop()
	w.log.Debug("worker stopped")
}

func (w *Worker) loop() {
	p := w.pool
	spins := 0
	for {
		if w.runOnce() {
			spins = 0
			continue
		}
		if p.stopping.Load() {
			w.setState(StateShuttingDown)
			return
		}
		if spins < int(p.spinBudget.Load()) {
			spins++
			w.setState(StateSpinning)
			runtime.Gosched()
			continue
		}
		spins = 0
		w.block()
	}
}

// runOnce executes at most one unit of work. Actor-capable workers take an
// actor before a task.
func (w *Worker) runOnce() bool {
	p := w.pool
	if w.actorCapable {
		if a, ok := p.actors.TryPop(); ok {
			w.setState(StateRunningActor)
			p.runActor(a)
			w.setState(StateIdle)
			return true
		}
	}
	if t, ok := p.tasks.Dequeue(); ok {
		w.setState(StateRunningTask)
		p.runTask(t)
		w.setState(StateIdle)
		return true
	}
	return false
}

func (w *Worker) hasWork() bool {
	p := w.pool
	if w.actorCapable && p.actors.Len() > 0 {
		return true
	}
	return p.tasks.Len() > 0
}

// block parks the worker. Blocked is published before the final re-check,
// and wakers publish work before claiming a Blocked worker, so a wakeup
// cannot fall between the check and the park.
func (w *Worker) block() {
	p := w.pool
	w.setState(StateBlocked)
	if w.hasWork() || p.stopping.Load() {
		w.state.CompareAndSwap(int32(StateBlocked), int32(StateSpinning))
		return
	}
	p.metrics.WorkerParked()
	if w.parker.Park(time.Duration(p.waitTimeout.Load())) {
		p.metrics.WorkerWoken()
	}
	// a waker may already have moved us to Spinning; its token is harmless
	w.state.CompareAndSwap(int32(StateBlocked), int32(StateSpinning))
}

// tryWake claims a blocked worker and unparks it.
func (w *Worker) tryWake() bool {
	if !w.state.CompareAndSwap(int32(StateBlocked), int32(StateSpinning)) {
		return false
	}
	w.parker.Unpark()
	return true
}
