// File: api/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Metrics contract for the pool. Backends (Prometheus, ...) live in adapters.

package api

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
type Timer interface {
	ObserveDuration()
}

// PoolMetrics defines the instrumentation hooks of a pool.
// All methods are called concurrently from workers and submitters.
type PoolMetrics interface {
	// Fork-join
	LaunchDuration() Timer
	PartitionsDispatched(n int)
	KernelFailed()

	// Actors
	ActorDispatched()
	ActorFailed(panicked bool)
	ActorQueueDepth(depth int)

	// Workers
	WorkerParked()
	WorkerWoken()
}

type nopTimer struct{}

func (nopTimer) ObserveDuration() {}

// NopTimer returns a no-op Timer.
func NopTimer() Timer { return nopTimer{} }

type nopPoolMetrics struct{}

func (nopPoolMetrics) LaunchDuration() Timer    { return nopTimer{} }
func (nopPoolMetrics) PartitionsDispatched(int) {}
func (nopPoolMetrics) KernelFailed()            {}
func (nopPoolMetrics) ActorDispatched()         {}
func (nopPoolMetrics) ActorFailed(bool)         {}
func (nopPoolMetrics) ActorQueueDepth(int)      {}
func (nopPoolMetrics) WorkerParked()            {}
func (nopPoolMetrics) WorkerWoken()             {}

// NopPoolMetrics returns a no-op PoolMetrics implementation.
func NopPoolMetrics() PoolMetrics { return nopPoolMetrics{} }
