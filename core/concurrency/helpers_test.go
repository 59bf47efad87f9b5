package concurrency

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		SpinBudget:  8,
		WaitTimeout: 2 * time.Millisecond,
	}
}

func newTestInterPool(t *testing.T, actorWorkers, workers int) *InterThreadPool {
	t.Helper()
	p, err := NewInterThreadPool(actorWorkers, workers, testOptions())
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

// guardedActor fails the test if ProcessMessages ever overlaps itself.
type guardedActor struct {
	running  atomic.Int32
	runs     atomic.Int64
	overlaps atomic.Int64
	hold     time.Duration
	onRun    func()
}

func (a *guardedActor) ProcessMessages() error {
	if !a.running.CompareAndSwap(0, 1) {
		a.overlaps.Add(1)
		return nil
	}
	defer a.running.Store(0)
	a.runs.Add(1)
	if a.onRun != nil {
		a.onRun()
	}
	if a.hold > 0 {
		time.Sleep(a.hold)
	}
	return nil
}

// blockingActor records its name then waits on release.
type blockingActor struct {
	name    string
	started chan<- string
	release <-chan struct{}
}

func (a *blockingActor) ProcessMessages() error {
	a.started <- a.name
	if a.release != nil {
		<-a.release
	}
	return nil
}
