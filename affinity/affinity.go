// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_stub.go) guarded by build tags.

package affinity

// SetAffinity pins the current OS thread to a given logical CPU.
// The caller must hold runtime.LockOSThread for the pin to stick to its goroutine.
// On unsupported platforms returns api.ErrAffinityNotSupported.
func SetAffinity(cpuID int) error {
	return setAffinityPlatform(cpuID)
}

// Available returns the logical CPUs the process may run on, in ascending order.
func Available() []int {
	return availablePlatform()
}
