// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Runtime debug probes for internal inspection.

package control

import (
	"runtime"
	"sync"

	"github.com/momentics/hioload-pool/affinity"
	"github.com/momentics/hioload-pool/api"
)

var _ api.Debug = (*DebugProbes)(nil)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook, replacing any previous one.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// DumpState returns output of all probes. Probes run outside the lock.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	probes := make(map[string]func() any, len(dp.probes))
	for k, fn := range dp.probes {
		probes[k] = fn
	}
	dp.mu.RUnlock()

	out := make(map[string]any, len(probes))
	for k, fn := range probes {
		out[k] = fn()
	}
	return out
}

// RegisterPlatformProbes adds host CPU probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.gomaxprocs", func() any {
		return runtime.GOMAXPROCS(0)
	})
	dp.RegisterProbe("platform.affinity", func() any {
		cpus := affinity.Available()
		if cpus == nil {
			return []int{}
		}
		return cpus
	})
}
