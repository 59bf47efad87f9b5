// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control interface using control package primitives.

package adapters

import (
	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/control"
)

var _ api.Control = (*ControlAdapter)(nil)

// ControlAdapter bundles a config store, a metric snapshot and debug probes.
type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

// NewControlAdapter returns an adapter with platform probes registered.
func NewControlAdapter() *ControlAdapter {
	adapter := &ControlAdapter{
		config:  control.NewConfigStore(),
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}
	control.RegisterPlatformProbes(adapter.debug)
	return adapter
}

// Store exposes the underlying config store, e.g. for control.Watch.
func (c *ControlAdapter) Store() *control.ConfigStore { return c.config }

func (c *ControlAdapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}

func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	c.config.SetConfig(cfg)
	return nil
}

// Stats merges config, published metrics and probe output. Probe keys are
// prefixed with "debug.".
func (c *ControlAdapter) Stats() map[string]any {
	combined := c.config.GetSnapshot()
	for k, v := range c.metrics.GetSnapshot() {
		combined[k] = v
	}
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) OnReload(fn func(cfg map[string]any)) {
	c.config.OnReload(fn)
}

func (c *ControlAdapter) SetMetric(key string, value any) {
	c.metrics.Set(key, value)
}

func (c *ControlAdapter) SetMetrics(values map[string]any) {
	c.metrics.SetAll(values)
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}
