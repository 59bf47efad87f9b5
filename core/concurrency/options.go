// File: core/concurrency/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/momentics/hioload-pool/affinity"
	"github.com/momentics/hioload-pool/api"
)

const (
	DefaultSpinBudget         = 64
	DefaultWaitTimeout        = 10 * time.Millisecond
	defaultTaskSlotsPerWorker = 1024
)

// Options configures a pool. Zero values select defaults.
type Options struct {
	// Name labels logs and metrics. Defaults to "pool-<nanoid>".
	Name string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Metrics defaults to api.NopPoolMetrics().
	Metrics api.PoolMetrics

	// SpinBudget is how many empty polls an idle worker makes before parking.
	SpinBudget int
	// WaitTimeout bounds a parked worker's sleep so it re-checks shutdown.
	WaitTimeout time.Duration
	// TaskQueueSize is the capacity of the shared task ring.
	// Defaults to 1024 slots per worker. Overflowing tasks run on the submitter.
	TaskQueueSize int

	// PinCPUs pins worker i to the i-th available CPU (round robin).
	PinCPUs bool
	// CPUs pins worker i to CPUs[i%len(CPUs)]. Takes precedence over PinCPUs.
	CPUs []int

	// startHook runs on each worker's thread before it reports ready.
	startHook func(w *Worker) error
}

func (o Options) withDefaults(workers int) Options {
	if o.Name == "" {
		o.Name = fmt.Sprintf("pool-%s", gonanoid.Must(6))
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = api.NopPoolMetrics()
	}
	if o.SpinBudget <= 0 {
		o.SpinBudget = DefaultSpinBudget
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = DefaultWaitTimeout
	}
	if o.TaskQueueSize <= 0 {
		o.TaskQueueSize = workers * defaultTaskSlotsPerWorker
	}
	if len(o.CPUs) == 0 && o.PinCPUs {
		o.CPUs = affinity.Available()
	}
	return o
}

// cpuFor returns the CPU worker id is pinned to, or -1.
func (o Options) cpuFor(id int) int {
	if len(o.CPUs) == 0 {
		return -1
	}
	return o.CPUs[id%len(o.CPUs)]
}
