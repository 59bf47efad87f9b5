// File: core/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package concurrency implements the hybrid worker scheduler: a fixed pool of
// OS-thread-bound workers that executes fork-join kernel partitions
// (ThreadPool.ParallelLaunch) and message-driven actors
// (InterThreadPool.EnqueueReadyActor).
//
// # Fork-join
//
//	pool, err := concurrency.NewThreadPool(4, concurrency.Options{})
//	if err != nil { ... }
//	defer pool.Close()
//	err = pool.ParallelLaunch(func(part, start, end int) error {
//	    for i := start; i < end; i++ { out[i] = in[i] * 2 }
//	    return nil
//	}, len(in), 4)
//
// Partitions are contiguous, never empty, and cover [0, itemCount) exactly.
// The caller blocks until all of them returned and receives the first
// failure (a kernel panic is reported as api.ErrKernelPanic).
//
// # Actors
//
// An actor is any comparable api.Actor. EnqueueReadyActor never blocks. A
// handle is queued at most once and never runs on two workers at the same
// time: an enqueue that arrives while the handle runs becomes exactly one
// further run after the current one. One queue entry therefore means one
// opportunity to drain all pending messages, not one message.
//
// # Shutdown
//
// Close rejects new submissions with ErrPoolClosed, lets workers drain what
// was already admitted, and joins every worker thread.
package concurrency
