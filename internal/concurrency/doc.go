// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Leaf concurrency primitives for the hioload-pool scheduler: a bounded
// lock-free MPMC ring for fork-join tasks, a spin-then-block parker used by
// idle workers, and OS-thread pinning for worker goroutines.
package concurrency
