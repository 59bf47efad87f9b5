// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and DTOs.

package api

import "time"

// PoolStats provides a standard layout for pool health/statistics reporting.
type PoolStats struct {
	Name          string
	Workers       int
	ActorWorkers  int
	WorkerStates  []string
	TasksRun      uint64
	ActorsRun     uint64
	ActorFailures uint64
	ActorQueueLen int
	SpinBudget    int
	WaitTimeout   time.Duration
	Closed        bool
	StartedAt     time.Time
}

// AsMap flattens the stats for control.MetricsRegistry.
func (s PoolStats) AsMap() map[string]any {
	return map[string]any{
		"pool.name":            s.Name,
		"pool.workers":         s.Workers,
		"pool.actor_workers":   s.ActorWorkers,
		"pool.worker_states":   s.WorkerStates,
		"pool.tasks_run":       s.TasksRun,
		"pool.actors_run":      s.ActorsRun,
		"pool.actor_failures":  s.ActorFailures,
		"pool.actor_queue_len": s.ActorQueueLen,
		"pool.spin_budget":     s.SpinBudget,
		"pool.wait_timeout":    s.WaitTimeout.String(),
		"pool.closed":          s.Closed,
		"pool.uptime":          time.Since(s.StartedAt).Round(time.Millisecond).String(),
	}
}
