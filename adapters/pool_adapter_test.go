package adapters_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pool/adapters"
	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/control"
	"github.com/momentics/hioload-pool/core/concurrency"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newPool(t *testing.T) *concurrency.InterThreadPool {
	t.Helper()
	p, err := concurrency.NewInterThreadPool(1, 2, concurrency.Options{Name: "bound", Logger: discard()})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestBindPool_ReloadRetunes(t *testing.T) {
	p := newPool(t)
	ctrl := adapters.NewControlAdapter()
	adapters.BindPool(ctrl, p, discard())

	require.Equal(t, concurrency.DefaultSpinBudget, p.Stats().SpinBudget)

	require.NoError(t, ctrl.SetConfig(map[string]any{
		control.KeySpinBudget:  7,
		control.KeyWaitTimeout: "3ms",
	}))
	s := p.Stats()
	assert.Equal(t, 7, s.SpinBudget)
	assert.Equal(t, 3*time.Millisecond, s.WaitTimeout)

	// a malformed duration leaves the timeout alone
	require.NoError(t, ctrl.SetConfig(map[string]any{
		control.KeySpinBudget:  9,
		control.KeyWaitTimeout: "whenever",
	}))
	s = p.Stats()
	assert.Equal(t, 9, s.SpinBudget)
	assert.Equal(t, 3*time.Millisecond, s.WaitTimeout)
}

func TestBindPool_AppliesExistingConfig(t *testing.T) {
	p := newPool(t)
	ctrl := adapters.NewControlAdapter()
	require.NoError(t, ctrl.SetConfig(map[string]any{control.KeySpinBudget: 5}))

	adapters.BindPool(ctrl, p, discard())
	assert.Equal(t, 5, p.Stats().SpinBudget)
}

func TestPoolAdapter_PublishesStats(t *testing.T) {
	p := newPool(t)
	ctrl := adapters.NewControlAdapter()
	pa := adapters.BindPool(ctrl, p, discard())

	require.NoError(t, p.ParallelLaunch(func(int, int, int) error { return nil }, 10, 2))
	pa.Refresh()

	stats := ctrl.Stats()
	assert.Equal(t, "bound", stats["pool.name"])
	assert.Equal(t, 2, stats["pool.workers"])
	assert.Equal(t, uint64(2), stats["pool.tasks_run"])

	probe, ok := stats["debug.pool"].(api.PoolStats)
	require.True(t, ok)
	assert.Equal(t, 1, probe.ActorWorkers)
}

func TestPoolAdapter_RunStopsOnCancel(t *testing.T) {
	p := newPool(t)
	pa := adapters.BindPool(adapters.NewControlAdapter(), p, discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pa.Run(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
