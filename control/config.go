// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with dynamic update and reload propagation.

package control

import (
	"fmt"
	"sync"
	"time"
)

// Tunable keys understood by pools bound through adapters.PoolAdapter.
const (
	KeySpinBudget  = "tuning.spin_budget"
	KeyWaitTimeout = "tuning.wait_timeout"
)

// ReloadFunc receives a snapshot of the store after every update.
type ReloadFunc func(cfg map[string]any)

// ConfigStore is a dynamic key/value map with snapshot reads and listener support.
type ConfigStore struct {
	// notifyMu serializes SetConfig calls so listeners see snapshots in
	// the order the updates were applied.
	notifyMu  sync.Mutex
	mu        sync.RWMutex
	config    map[string]any
	listeners []ReloadFunc
}

// NewConfigStore initializes a new config store with empty data.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config: make(map[string]any),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.snapshotLocked()
}

func (cs *ConfigStore) snapshotLocked() map[string]any {
	out := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		out[k] = v
	}
	return out
}

// SetConfig merges new values and notifies listeners synchronously.
// Listeners run outside the store lock and may read the store, but must not
// call SetConfig.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.notifyMu.Lock()
	defer cs.notifyMu.Unlock()

	cs.mu.Lock()
	for k, v := range newCfg {
		cs.config[k] = v
	}
	snap := cs.snapshotLocked()
	listeners := append([]ReloadFunc(nil), cs.listeners...)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// OnReload registers a listener called on config changes.
func (cs *ConfigStore) OnReload(fn ReloadFunc) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// Int reads key as an int. Accepts any integer kind or float64.
func Int(cfg map[string]any, key string) (int, bool) {
	switch v := cfg[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Duration reads key as a time.Duration. Strings are parsed with
// time.ParseDuration.
func Duration(cfg map[string]any, key string) (time.Duration, bool, error) {
	switch v := cfg[key].(type) {
	case nil:
		return 0, false, nil
	case time.Duration:
		return v, true, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, false, fmt.Errorf("config %s: %w", key, err)
		}
		return d, true, nil
	}
	return 0, false, fmt.Errorf("config %s: unsupported type %T", key, cfg[key])
}
