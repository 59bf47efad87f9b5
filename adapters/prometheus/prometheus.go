// Package prometheus provides a Prometheus implementation of api.PoolMetrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-pool/api"
)

// timer wraps a Prometheus histogram to implement api.Timer.
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) api.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// Default histogram buckets for launch latency (in seconds).
var defaultBuckets = []float64{
	.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5,
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
