// File: core/concurrency/task.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-pool/api"
)

// Task is one partition of a ParallelLaunch call.
type Task struct {
	kernel    api.Kernel
	partition int
	start     int
	end       int
	signal    *CompletionSignal
}

// run executes the kernel, converting a panic into a partition error.
func (t *Task) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &api.PartitionError{
				Partition: t.partition, Start: t.start, End: t.end,
				Err: fmt.Errorf("%w: %v", api.ErrKernelPanic, r),
			}
		}
	}()
	if kerr := t.kernel(t.partition, t.start, t.end); kerr != nil {
		return &api.PartitionError{Partition: t.partition, Start: t.start, End: t.end, Err: kerr}
	}
	return nil
}

// CompletionSignal is the join point of one fork-join call.
// The counter only ever counts down; done closes when it reaches zero.
type CompletionSignal struct {
	pending atomic.Int64
	done    chan struct{}
	errOnce sync.Once
	err     error
}

// NewCompletionSignal returns a signal expecting n Done calls.
func NewCompletionSignal(n int) *CompletionSignal {
	s := &CompletionSignal{done: make(chan struct{})}
	s.pending.Store(int64(n))
	if n <= 0 {
		close(s.done)
	}
	return s
}

// Done marks one partition finished. The first non-nil err is kept.
func (s *CompletionSignal) Done(err error) {
	if err != nil {
		s.errOnce.Do(func() { s.err = err })
	}
	if s.pending.Add(-1) == 0 {
		close(s.done)
	}
}

// Finished reports whether every partition called Done.
func (s *CompletionSignal) Finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Pending returns the number of partitions still running or queued.
func (s *CompletionSignal) Pending() int { return int(s.pending.Load()) }

// Wait blocks until the counter reaches zero and returns the first failure.
func (s *CompletionSignal) Wait() error {
	<-s.done
	return s.err
}
