package api_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pool/api"
)

func TestError_WrapAndCode(t *testing.T) {
	cause := errors.New("no cpu 99")
	err := api.Wrap(api.ErrCodeConstruction, "worker start failed", cause).
		WithContext("worker", 3)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, api.ErrCodeConstruction, api.CodeOf(err))
	assert.Equal(t, api.ErrCodeConstruction, api.CodeOf(fmt.Errorf("outer: %w", err)))
	assert.Contains(t, err.Error(), "worker start failed: no cpu 99")
	assert.Contains(t, err.Error(), "worker:3")

	assert.Equal(t, api.ErrCodeOK, api.CodeOf(nil))
	assert.Equal(t, api.ErrCodeInternal, api.CodeOf(cause))
	assert.Equal(t, "construction", api.ErrCodeConstruction.String())
}

func TestPartitionError(t *testing.T) {
	var err error = &api.PartitionError{Partition: 2, Start: 20, End: 30, Err: api.ErrKernelPanic}
	require.ErrorIs(t, err, api.ErrKernelPanic)
	assert.Equal(t, "partition 2 [20,30): kernel panicked", err.Error())
}

func TestPoolStats_AsMap(t *testing.T) {
	s := api.PoolStats{
		Name:        "p",
		Workers:     4,
		TasksRun:    9,
		WaitTimeout: 10 * time.Millisecond,
		StartedAt:   time.Now(),
	}
	m := s.AsMap()
	assert.Equal(t, "p", m["pool.name"])
	assert.Equal(t, 4, m["pool.workers"])
	assert.Equal(t, uint64(9), m["pool.tasks_run"])
	assert.Equal(t, "10ms", m["pool.wait_timeout"])
	assert.Contains(t, m, "pool.uptime")
}

func TestActorFuncAndNops(t *testing.T) {
	calls := 0
	var a api.Actor = &api.ActorFunc{Fn: func() error { calls++; return nil }}
	require.NoError(t, a.ProcessMessages())
	assert.Equal(t, 1, calls)

	m := api.NopPoolMetrics()
	m.LaunchDuration().ObserveDuration()
	m.ActorFailed(true)
	api.NopTimer().ObserveDuration()
}
