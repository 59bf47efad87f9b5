// File: adapters/pool_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PoolAdapter binds a running pool to a ControlAdapter: config reloads retune
// the pool, stats are published as metrics and exposed as a debug probe.

package adapters

import (
	"context"
	"log/slog"
	"time"

	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/control"
)

// TunablePool is a pool whose idle behavior can change at runtime.
type TunablePool interface {
	api.Pool
	SetTuning(spinBudget int, waitTimeout time.Duration)
}

// PoolAdapter connects one pool to a ControlAdapter.
type PoolAdapter struct {
	pool TunablePool
	ctrl *ControlAdapter
	log  *slog.Logger
}

// BindPool wires pool into ctrl and applies the current config once.
func BindPool(ctrl *ControlAdapter, pool TunablePool, log *slog.Logger) *PoolAdapter {
	if log == nil {
		log = slog.Default()
	}
	pa := &PoolAdapter{pool: pool, ctrl: ctrl, log: log}
	ctrl.OnReload(pa.apply)
	ctrl.RegisterDebugProbe("pool", func() any { return pool.Stats() })
	pa.apply(ctrl.GetConfig())
	pa.Refresh()
	return pa
}

func (pa *PoolAdapter) apply(cfg map[string]any) {
	spin, _ := control.Int(cfg, control.KeySpinBudget)
	wait, _, err := control.Duration(cfg, control.KeyWaitTimeout)
	if err != nil {
		pa.log.Warn("ignoring tuning value", "err", err)
		wait = 0
	}
	if spin <= 0 && wait <= 0 {
		return
	}
	pa.pool.SetTuning(spin, wait)
	pa.log.Info("pool retuned", "spin_budget", spin, "wait_timeout", wait)
}

// Refresh publishes the pool's current stats into the metric snapshot.
func (pa *PoolAdapter) Refresh() {
	pa.ctrl.SetMetrics(pa.pool.Stats().AsMap())
}

// Run refreshes stats every interval until ctx is done.
func (pa *PoolAdapter) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pa.Refresh()
		}
	}
}
