package prometheus

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/core/concurrency"
)

// sum adds up every sample of the named family, counters and gauges alike.
func sum(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		total := 0.0
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
			total += float64(m.GetHistogram().GetSampleCount())
		}
		return total
	}
	return 0
}

func TestNewPoolMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPoolMetrics(reg, "p1")
	require.NotNil(t, m)

	timer := m.LaunchDuration()
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.PartitionsDispatched(4)
	m.KernelFailed()
	m.ActorDispatched()
	m.ActorFailed(true)
	m.ActorFailed(false)
	m.ActorQueueDepth(3)
	m.WorkerParked()
	m.WorkerWoken()

	assert.Equal(t, 1.0, sum(t, reg, "hioload_pool_launch_duration_seconds"))
	assert.Equal(t, 4.0, sum(t, reg, "hioload_pool_partitions_total"))
	assert.Equal(t, 1.0, sum(t, reg, "hioload_pool_kernel_failures_total"))
	assert.Equal(t, 1.0, sum(t, reg, "hioload_pool_actor_dispatch_total"))
	assert.Equal(t, 2.0, sum(t, reg, "hioload_pool_actor_failures_total"))
	assert.Equal(t, 3.0, sum(t, reg, "hioload_pool_actor_queue_depth"))
	assert.Equal(t, 1.0, sum(t, reg, "hioload_pool_worker_parks_total"))
	assert.Equal(t, 1.0, sum(t, reg, "hioload_pool_worker_wakes_total"))
}

func TestNewPoolMetrics_TwoPoolsShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewPoolMetrics(reg, "a")
	b := NewPoolMetrics(reg, "b")
	a.PartitionsDispatched(1)
	b.PartitionsDispatched(2)
	assert.Equal(t, 3.0, sum(t, reg, "hioload_pool_partitions_total"))

	assert.Panics(t, func() { NewPoolMetrics(reg, "a") }, "duplicate pool name")
}

func TestPoolMetrics_WiredIntoPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := concurrency.NewInterThreadPool(1, 2, concurrency.Options{
		Name:    "wired",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: NewPoolMetrics(reg, "wired"),
	})
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.ParallelLaunch(func(int, int, int) error { return nil }, 8, 2))
	err = p.ParallelLaunch(func(part, _, _ int) error {
		if part == 0 {
			return errors.New("bad partition")
		}
		return nil
	}, 8, 2)
	require.Error(t, err)

	done := make(chan struct{})
	require.NoError(t, p.EnqueueReadyActor(&api.ActorFunc{Fn: func() error {
		close(done)
		return nil
	}}))
	<-done

	assert.Equal(t, 2.0, sum(t, reg, "hioload_pool_launch_duration_seconds"))
	assert.Equal(t, 4.0, sum(t, reg, "hioload_pool_partitions_total"))
	assert.Equal(t, 1.0, sum(t, reg, "hioload_pool_kernel_failures_total"))
	assert.Equal(t, 1.0, sum(t, reg, "hioload_pool_actor_dispatch_total"))
}
