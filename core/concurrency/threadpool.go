// File: core/concurrency/threadpool.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ThreadPool runs fork-join kernels on a fixed set of OS-thread-bound workers
// fed from one shared lock-free task ring. The submitting goroutine helps
// drain the ring while it waits, so a launch always makes progress even when
// every worker is busy with actors or has already exited.
//

package concurrency

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-pool/api"
	iconc "github.com/momentics/hioload-pool/internal/concurrency"
)

var _ api.Pool = (*ThreadPool)(nil)

// ThreadPool manages a fixed set of workers.
type ThreadPool struct {
	name    string
	opt     Options
	log     *slog.Logger
	metrics api.PoolMetrics

	workers      []*Worker
	actorWorkers int
	tasks        *iconc.Ring[*Task]
	actors       *ActorQueue // nil for a pure kernel pool

	// gate admits submissions; Close takes the write side to flip closed.
	gate      sync.RWMutex
	closed    bool
	stopping  atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup

	spinBudget  atomic.Int64
	waitTimeout atomic.Int64
	wakeCursor  atomic.Uint32

	tasksRun      atomic.Uint64
	actorsRun     atomic.Uint64
	actorFailures atomic.Uint64
	startedAt     time.Time
}

// NewThreadPool creates a pure kernel pool: no worker services actors.
func NewThreadPool(workers int, opt Options) (*ThreadPool, error) {
	if workers <= 0 {
		return nil, invalidWorkerCount(0, workers)
	}
	return newThreadPool(workers, 0, opt)
}

func newThreadPool(workers, actorWorkers int, opt Options) (*ThreadPool, error) {
	opt = opt.withDefaults(workers)
	p := &ThreadPool{
		name:         opt.Name,
		opt:          opt,
		log:          opt.Logger.With(slog.String("pool", opt.Name)),
		metrics:      opt.Metrics,
		actorWorkers: actorWorkers,
		tasks:        iconc.NewRing[*Task](opt.TaskQueueSize),
		startedAt:    time.Now(),
	}
	if actorWorkers > 0 {
		p.actors = NewActorQueue()
		p.actors.onDepth = p.metrics.ActorQueueDepth
	}
	p.spinBudget.Store(int64(opt.SpinBudget))
	p.waitTimeout.Store(int64(opt.WaitTimeout))

	if err := p.startWorkers(workers); err != nil {
		return nil, err
	}
	p.log.Info("pool started",
		slog.Int("workers", workers),
		slog.Int("actor_workers", actorWorkers),
		slog.Int("task_queue", p.tasks.Cap()))
	return p, nil
}

// startWorkers starts workers one by one. If any fails to come up, the ones
// already running are stopped and joined before the error is returned.
func (p *ThreadPool) startWorkers(n int) error {
	p.workers = make([]*Worker, 0, n)
	ready := make(chan error, 1)
	for i := 0; i < n; i++ {
		w := newWorker(i, p, i < p.actorWorkers, p.opt.cpuFor(i))
		p.wg.Add(1)
		go w.run(ready)
		if err := <-ready; err != nil {
			p.log.Error("worker failed to start", slog.Int("worker", i), slog.Any("err", err))
			p.stopWorkers()
			return constructionError("start worker", err).
				WithContext("worker", i).
				WithContext("cpu", w.cpu)
		}
		p.workers = append(p.workers, w)
	}
	return nil
}

// ParallelLaunch splits [0, itemCount) into min(threads, NumWorkers(),
// itemCount) contiguous partitions and blocks until every partition has
// returned. The first partition failure is returned; siblings still run.
func (p *ThreadPool) ParallelLaunch(kernel api.Kernel, itemCount, threads int) error {
	switch {
	case kernel == nil:
		return invalidSubmission("nil kernel")
	case itemCount <= 0:
		return invalidSubmission("item count %d", itemCount)
	case threads <= 0:
		return invalidSubmission("thread count %d", threads)
	}
	defer p.metrics.LaunchDuration().ObserveDuration()

	parts := min(threads, len(p.workers), itemCount)
	signal := NewCompletionSignal(parts)

	p.gate.RLock()
	if p.closed {
		p.gate.RUnlock()
		return ErrPoolClosed
	}
	var overflow []*Task
	base, rem := itemCount/parts, itemCount%parts
	start := 0
	for i := 0; i < parts; i++ {
		end := start + base
		if i < rem {
			end++
		}
		t := &Task{kernel: kernel, partition: i, start: start, end: end, signal: signal}
		if !p.tasks.Enqueue(t) {
			overflow = append(overflow, t)
		}
		start = end
	}
	p.gate.RUnlock()

	p.metrics.PartitionsDispatched(parts)
	p.wakeWorkers(parts - len(overflow))

	for _, t := range overflow {
		p.runTask(t)
	}
	for !signal.Finished() {
		t, ok := p.tasks.Dequeue()
		if !ok {
			break
		}
		p.runTask(t)
	}
	err := signal.Wait()
	if err != nil {
		p.log.Debug("parallel launch failed", slog.Int("items", itemCount), slog.Int("partitions", parts), slog.Any("err", err))
	}
	return err
}

func (p *ThreadPool) runTask(t *Task) {
	err := t.run()
	if err != nil {
		p.metrics.KernelFailed()
	}
	p.tasksRun.Add(1)
	t.signal.Done(err)
}

// wakeWorkers unparks up to n blocked workers, kernel-only workers first so
// actor-capable ones stay free for actors.
func (p *ThreadPool) wakeWorkers(n int) {
	for i := len(p.workers) - 1; i >= 0 && n > 0; i-- {
		if p.workers[i].tryWake() {
			n--
		}
	}
}

// NumWorkers returns the fixed worker count.
func (p *ThreadPool) NumWorkers() int { return len(p.workers) }

// NumActorWorkers returns the number of actor-capable workers.
func (p *ThreadPool) NumActorWorkers() int { return p.actorWorkers }

// Name returns the pool's label.
func (p *ThreadPool) Name() string { return p.name }

// SetTuning updates the idle strategy of running workers. Non-positive
// values leave the current setting unchanged.
func (p *ThreadPool) SetTuning(spinBudget int, waitTimeout time.Duration) {
	if spinBudget > 0 {
		p.spinBudget.Store(int64(spinBudget))
	}
	if waitTimeout > 0 {
		p.waitTimeout.Store(int64(waitTimeout))
	}
	p.log.Debug("tuning updated",
		slog.Int64("spin_budget", p.spinBudget.Load()),
		slog.Duration("wait_timeout", time.Duration(p.waitTimeout.Load())))
}

// Stats returns a snapshot of the pool.
func (p *ThreadPool) Stats() api.PoolStats {
	states := make([]string, len(p.workers))
	for i, w := range p.workers {
		states[i] = w.State().String()
	}
	s := api.PoolStats{
		Name:          p.name,
		Workers:       len(p.workers),
		ActorWorkers:  p.actorWorkers,
		WorkerStates:  states,
		TasksRun:      p.tasksRun.Load(),
		ActorsRun:     p.actorsRun.Load(),
		ActorFailures: p.actorFailures.Load(),
		SpinBudget:    int(p.spinBudget.Load()),
		WaitTimeout:   time.Duration(p.waitTimeout.Load()),
		Closed:        p.stopping.Load(),
		StartedAt:     p.startedAt,
	}
	if p.actors != nil {
		s.ActorQueueLen = p.actors.Len()
	}
	return s
}

// Close stops accepting work, lets workers drain what was already
// admitted and joins every worker. It is idempotent and must not be called
// from a worker (an actor handler or kernel).
func (p *ThreadPool) Close() {
	p.closeOnce.Do(func() {
		p.gate.Lock()
		p.closed = true
		p.gate.Unlock()

		p.log.Info("pool stopping")
		p.stopWorkers()
		if p.actors != nil {
			p.actors.Close()
		}
		p.log.Info("pool stopped",
			slog.Uint64("tasks_run", p.tasksRun.Load()),
			slog.Uint64("actors_run", p.actorsRun.Load()))
	})
}

func (p *ThreadPool) stopWorkers() {
	p.stopping.Store(true)
	for _, w := range p.workers {
		w.parker.Unpark()
	}
	p.wg.Wait()
}

// IsClosed reports whether shutdown has begun.
func (p *ThreadPool) IsClosed() bool { return p.stopping.Load() }

// isClosedErr reports whether err is a submission rejected by shutdown.
func isClosedErr(err error) bool { return errors.Is(err, ErrPoolClosed) }
