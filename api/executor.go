// Package api
// Author: momentics
//
// Pool contracts for fork-join kernels and ready-actor dispatch.

package api

// Kernel is one partition of a data-parallel computation. It processes the
// half-open range [start, end) and must touch only state owned by that range.
type Kernel func(partition, start, end int) error

// Pool abstracts fork-join execution on a fixed set of workers.
type Pool interface {
	// ParallelLaunch splits [0, itemCount) across at most threads partitions
	// and blocks until all of them returned.
	ParallelLaunch(kernel Kernel, itemCount, threads int) error

	// NumWorkers returns the fixed number of workers.
	NumWorkers() int

	// Stats returns a point-in-time snapshot of the pool.
	Stats() PoolStats

	// Close stops accepting work, drains dispatched work and joins workers.
	Close()
}

// InterPool is a Pool that additionally dispatches ready actors.
type InterPool interface {
	Pool

	// EnqueueReadyActor schedules one ProcessMessages invocation of a.
	// It never blocks.
	EnqueueReadyActor(a Actor) error

	// NumActorWorkers returns how many workers service the actor queue.
	NumActorWorkers() int
}
