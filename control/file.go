// control/file.go
// Author: momentics <momentics@gmail.com>
//
// HCL configuration file decoding for pool processes.

package control

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// FileConfig is the decoded form of a pool configuration file:
//
//	pool {
//	  name          = "ingest"
//	  workers       = num_cpu
//	  actor_workers = 2
//	  pin_cpus      = true
//	}
//	tuning {
//	  spin_budget  = 64
//	  wait_timeout = "10ms"
//	}
//	log {
//	  level  = "info"
//	  format = "text"
//	}
//	metrics {
//	  addr = ":9090"
//	}
type FileConfig struct {
	Pool    PoolBlock     `hcl:"pool,block"`
	Tuning  *TuningBlock  `hcl:"tuning,block"`
	Log     *LogBlock     `hcl:"log,block"`
	Metrics *MetricsBlock `hcl:"metrics,block"`
}

// PoolBlock sizes the pool. Fixed for the life of a process.
type PoolBlock struct {
	Name          string `hcl:"name,optional"`
	Workers       int    `hcl:"workers"`
	ActorWorkers  int    `hcl:"actor_workers,optional"`
	PinCPUs       bool   `hcl:"pin_cpus,optional"`
	TaskQueueSize int    `hcl:"task_queue_size,optional"`
}

// TuningBlock holds values that may change at runtime.
type TuningBlock struct {
	SpinBudget  int    `hcl:"spin_budget,optional"`
	WaitTimeout string `hcl:"wait_timeout,optional"`
}

// LogBlock selects the process logger.
type LogBlock struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// MetricsBlock configures the metrics endpoint.
type MetricsBlock struct {
	Addr string `hcl:"addr,optional"`
}

// evalContext exposes host facts to configuration expressions.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"num_cpu": cty.NumberIntVal(int64(runtime.NumCPU())),
		},
	}
}

// LoadFile reads and decodes the configuration file at path.
func LoadFile(path string) (*FileConfig, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return LoadBytes(path, src)
}

// LoadBytes decodes configuration source. filename is used in diagnostics.
func LoadBytes(filename string, src []byte) (*FileConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, diags)
	}

	var cfg FileConfig
	diags = gohcl.DecodeBody(file.Body, evalContext(), &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config %s: %w", filename, diags)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return &cfg, nil
}

// Validate checks value ranges. Zero actor_workers means a kernel-only pool.
func (c *FileConfig) Validate() error {
	p := c.Pool
	if p.Workers <= 0 {
		return fmt.Errorf("pool.workers must be positive, got %d", p.Workers)
	}
	if p.ActorWorkers < 0 || p.ActorWorkers > p.Workers {
		return fmt.Errorf("pool.actor_workers must be in [0, %d], got %d", p.Workers, p.ActorWorkers)
	}
	if p.TaskQueueSize < 0 {
		return fmt.Errorf("pool.task_queue_size must not be negative, got %d", p.TaskQueueSize)
	}
	if c.Tuning != nil {
		if c.Tuning.SpinBudget < 0 {
			return fmt.Errorf("tuning.spin_budget must not be negative, got %d", c.Tuning.SpinBudget)
		}
		if c.Tuning.WaitTimeout != "" {
			d, err := time.ParseDuration(c.Tuning.WaitTimeout)
			if err != nil {
				return fmt.Errorf("tuning.wait_timeout: %w", err)
			}
			if d <= 0 {
				return fmt.Errorf("tuning.wait_timeout must be positive, got %s", d)
			}
		}
	}
	if c.Log != nil {
		switch c.Log.Format {
		case "", "text", "json":
		default:
			return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
		}
	}
	return nil
}

// Tunables returns the runtime-adjustable values for a ConfigStore.
// Unset values are omitted.
func (c *FileConfig) Tunables() map[string]any {
	out := make(map[string]any, 2)
	if c.Tuning == nil {
		return out
	}
	if c.Tuning.SpinBudget > 0 {
		out[KeySpinBudget] = c.Tuning.SpinBudget
	}
	if c.Tuning.WaitTimeout != "" {
		out[KeyWaitTimeout] = c.Tuning.WaitTimeout
	}
	return out
}
