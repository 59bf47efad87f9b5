package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-pool/api"
)

// poolMetrics implements api.PoolMetrics using Prometheus.
type poolMetrics struct {
	launchDuration prometheus.Histogram
	partitions     prometheus.Counter
	kernelFailures prometheus.Counter
	actorDispatch  prometheus.Counter
	actorFailures  *prometheus.CounterVec
	actorQueue     prometheus.Gauge
	workerParks    prometheus.Counter
	workerWakes    prometheus.Counter
}

// NewPoolMetrics creates the metrics of one pool and registers them with reg.
// Every series carries a constant "pool" label, so several pools may share
// a registry as long as their names differ.
func NewPoolMetrics(reg prometheus.Registerer, pool string) api.PoolMetrics {
	labels := prometheus.Labels{"pool": pool}
	m := &poolMetrics{
		launchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "hioload_pool_launch_duration_seconds",
			Help:        "ParallelLaunch wall time in seconds",
			Buckets:     defaultBuckets,
			ConstLabels: labels,
		}),

		partitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hioload_pool_partitions_total",
			Help:        "Total number of kernel partitions dispatched",
			ConstLabels: labels,
		}),

		kernelFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hioload_pool_kernel_failures_total",
			Help:        "Total number of kernel partitions that failed or panicked",
			ConstLabels: labels,
		}),

		actorDispatch: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hioload_pool_actor_dispatch_total",
			Help:        "Total number of actor invocations",
			ConstLabels: labels,
		}),

		actorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hioload_pool_actor_failures_total",
			Help:        "Total number of failed actor invocations",
			ConstLabels: labels,
		}, []string{"panicked"}),

		actorQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hioload_pool_actor_queue_depth",
			Help:        "Ready actors waiting for a worker",
			ConstLabels: labels,
		}),

		workerParks: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hioload_pool_worker_parks_total",
			Help:        "Total number of times a worker blocked for work",
			ConstLabels: labels,
		}),

		workerWakes: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hioload_pool_worker_wakes_total",
			Help:        "Total number of times a blocked worker resumed",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(
		m.launchDuration,
		m.partitions,
		m.kernelFailures,
		m.actorDispatch,
		m.actorFailures,
		m.actorQueue,
		m.workerParks,
		m.workerWakes,
	)

	return m
}

func (m *poolMetrics) LaunchDuration() api.Timer {
	return newTimer(m.launchDuration)
}

func (m *poolMetrics) PartitionsDispatched(n int) {
	m.partitions.Add(float64(n))
}

func (m *poolMetrics) KernelFailed() {
	m.kernelFailures.Inc()
}

func (m *poolMetrics) ActorDispatched() {
	m.actorDispatch.Inc()
}

func (m *poolMetrics) ActorFailed(panicked bool) {
	m.actorFailures.WithLabelValues(boolToStr(panicked)).Inc()
}

func (m *poolMetrics) ActorQueueDepth(depth int) {
	m.actorQueue.Set(float64(depth))
}

func (m *poolMetrics) WorkerParked() {
	m.workerParks.Inc()
}

func (m *poolMetrics) WorkerWoken() {
	m.workerWakes.Inc()
}

var _ api.PoolMetrics = (*poolMetrics)(nil)
