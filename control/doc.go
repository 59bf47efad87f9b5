// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, hot-reload, runtime metric snapshots and debug introspection
// for hioload-pool processes.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot config reads with synchronous reload listeners
//   - HCL configuration files and fsnotify-driven reload
//   - Metric snapshots and debug probe registration
package control
