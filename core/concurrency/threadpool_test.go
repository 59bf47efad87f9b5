package concurrency

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pool/api"
)

type span struct{ part, start, end int }

func collectPartitions(t *testing.T, p *ThreadPool, items, threads int) []span {
	t.Helper()
	var mu sync.Mutex
	var spans []span
	err := p.ParallelLaunch(func(part, start, end int) error {
		mu.Lock()
		spans = append(spans, span{part, start, end})
		mu.Unlock()
		return nil
	}, items, threads)
	require.NoError(t, err)
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

func TestParallelLaunch_PartitionsCoverRangeExactly(t *testing.T) {
	p, err := NewThreadPool(4, testOptions())
	require.NoError(t, err)
	defer p.Close()

	for _, items := range []int{1, 2, 3, 4, 5, 7, 100, 1001} {
		for _, threads := range []int{1, 2, 3, 4, 8, 64} {
			t.Run(fmt.Sprintf("items=%d/threads=%d", items, threads), func(t *testing.T) {
				spans := collectPartitions(t, p, items, threads)
				require.Len(t, spans, min(items, threads, 4))

				next := 0
				seen := make(map[int]bool)
				for _, s := range spans {
					require.Equal(t, next, s.start, "gap or overlap")
					require.Greater(t, s.end, s.start, "empty partition")
					require.False(t, seen[s.part])
					seen[s.part] = true
					next = s.end
				}
				require.Equal(t, items, next)
			})
		}
	}
}

func TestParallelLaunch_OneItemManyThreads(t *testing.T) {
	p, err := NewThreadPool(8, testOptions())
	require.NoError(t, err)
	defer p.Close()

	spans := collectPartitions(t, p, 1, 8)
	require.Equal(t, []span{{0, 0, 1}}, spans)
}

func TestParallelLaunch_ReturnsAfterAllPartitions(t *testing.T) {
	p, err := NewThreadPool(4, testOptions())
	require.NoError(t, err)
	defer p.Close()

	for round := 0; round < 50; round++ {
		var finished atomic.Int32
		err := p.ParallelLaunch(func(part, start, end int) error {
			time.Sleep(time.Duration(part) * 100 * time.Microsecond)
			finished.Add(1)
			return nil
		}, 1000, 4)
		require.NoError(t, err)
		require.EqualValues(t, 4, finished.Load())
	}
}

func TestParallelLaunch_InvalidArguments(t *testing.T) {
	p, err := NewThreadPool(2, testOptions())
	require.NoError(t, err)
	defer p.Close()

	called := false
	k := func(int, int, int) error { called = true; return nil }
	require.ErrorIs(t, p.ParallelLaunch(k, 0, 2), api.ErrInvalidArgument)
	require.ErrorIs(t, p.ParallelLaunch(k, 10, 0), api.ErrInvalidArgument)
	require.ErrorIs(t, p.ParallelLaunch(nil, 10, 2), api.ErrInvalidArgument)
	require.False(t, called)
}

func TestParallelLaunch_FirstFailureAfterAllFinish(t *testing.T) {
	p, err := NewThreadPool(4, testOptions())
	require.NoError(t, err)
	defer p.Close()

	boom := errors.New("boom")
	var finished atomic.Int32
	err = p.ParallelLaunch(func(part, start, end int) error {
		defer finished.Add(1)
		if part == 2 {
			return boom
		}
		time.Sleep(2 * time.Millisecond)
		return nil
	}, 40, 4)
	require.ErrorIs(t, err, boom)
	require.EqualValues(t, 4, finished.Load(), "siblings must not be cancelled")

	var perr *api.PartitionError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 2, perr.Partition)
	require.Equal(t, 20, perr.Start)
	require.Equal(t, 30, perr.End)
}

func TestParallelLaunch_KernelPanicBecomesError(t *testing.T) {
	p, err := NewThreadPool(2, testOptions())
	require.NoError(t, err)
	defer p.Close()

	err = p.ParallelLaunch(func(part, _, _ int) error {
		if part == 0 {
			panic("index out of range")
		}
		return nil
	}, 2, 2)
	require.ErrorIs(t, err, api.ErrKernelPanic)

	// the worker that recovered keeps serving
	require.NoError(t, p.ParallelLaunch(func(int, int, int) error { return nil }, 8, 2))
}

func TestParallelLaunch_TaskRingOverflowRunsInline(t *testing.T) {
	opt := testOptions()
	opt.TaskQueueSize = 2
	p, err := NewThreadPool(8, opt)
	require.NoError(t, err)
	defer p.Close()

	var sum atomic.Int64
	err = p.ParallelLaunch(func(_, start, end int) error {
		for i := start; i < end; i++ {
			sum.Add(int64(i))
		}
		return nil
	}, 100, 8)
	require.NoError(t, err)
	require.EqualValues(t, 99*100/2, sum.Load())
}

func TestParallelLaunch_AfterClose(t *testing.T) {
	p, err := NewThreadPool(2, testOptions())
	require.NoError(t, err)
	p.Close()
	p.Close() // idempotent

	err = p.ParallelLaunch(func(int, int, int) error { return nil }, 10, 2)
	require.ErrorIs(t, err, ErrPoolClosed)
	for _, s := range p.Stats().WorkerStates {
		require.Equal(t, StateJoined.String(), s)
	}
}

func TestNewThreadPool_InvalidCounts(t *testing.T) {
	_, err := NewThreadPool(0, testOptions())
	require.ErrorIs(t, err, ErrInvalidWorkerCount)
	require.Equal(t, api.ErrCodeConstruction, api.CodeOf(err))

	for _, c := range [][2]int{{0, 4}, {5, 4}, {-1, 4}, {1, 0}} {
		_, err := NewInterThreadPool(c[0], c[1], testOptions())
		require.ErrorIs(t, err, ErrInvalidWorkerCount, "actor=%d total=%d", c[0], c[1])
	}
}

func TestNewThreadPool_PartialStartFailureJoinsStartedWorkers(t *testing.T) {
	var mu sync.Mutex
	var started []*Worker
	startErr := errors.New("no thread for you")

	opt := testOptions()
	opt.startHook = func(w *Worker) error {
		mu.Lock()
		defer mu.Unlock()
		if w.ID() == 2 {
			return startErr
		}
		started = append(started, w)
		return nil
	}

	p, err := NewInterThreadPool(1, 4, opt)
	require.Nil(t, p)
	require.ErrorIs(t, err, startErr)
	require.Equal(t, api.ErrCodeConstruction, api.CodeOf(err))
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 2, apiErr.Context["worker"])
	require.Equal(t, -1, apiErr.Context["cpu"])

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, started, 2)
	for _, w := range started {
		require.Equal(t, StateJoined, w.State(), "worker %d still running", w.ID())
	}
}

func TestThreadPool_PinnedWorkers(t *testing.T) {
	opt := testOptions()
	opt.PinCPUs = true
	p, err := NewThreadPool(2, opt)
	if err != nil {
		require.ErrorIs(t, err, api.ErrAffinityNotSupported)
		t.Skip("affinity not supported here")
	}
	defer p.Close()
	require.NoError(t, p.ParallelLaunch(func(int, int, int) error { return nil }, 4, 2))
}

func TestThreadPool_SetTuning(t *testing.T) {
	p, err := NewThreadPool(1, testOptions())
	require.NoError(t, err)
	defer p.Close()

	p.SetTuning(3, 7*time.Millisecond)
	s := p.Stats()
	require.Equal(t, 3, s.SpinBudget)
	require.Equal(t, 7*time.Millisecond, s.WaitTimeout)

	p.SetTuning(0, 0)
	require.Equal(t, 3, p.Stats().SpinBudget)
	require.True(t, len(p.Name()) > 0)
}

func TestCompletionSignal(t *testing.T) {
	s := NewCompletionSignal(3)
	require.False(t, s.Finished())
	first := errors.New("first")
	s.Done(nil)
	s.Done(first)
	require.Equal(t, 1, s.Pending())
	s.Done(errors.New("second"))
	require.True(t, s.Finished())
	require.Equal(t, first, s.Wait())

	require.True(t, NewCompletionSignal(0).Finished())
}
