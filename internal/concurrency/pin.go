// hioload-pool/internal/concurrency/pin.go
// Author: momentics <momentics@gmail.com>
//
// Binds worker goroutines to OS threads.

package concurrency

import (
	"runtime"

	"github.com/momentics/hioload-pool/affinity"
)

// PinCurrentThread locks the calling goroutine to its OS thread and, when
// cpuID >= 0, restricts that thread to the given logical CPU.
// The goroutine stays locked even if pinning fails.
func PinCurrentThread(cpuID int) error {
	runtime.LockOSThread()
	if cpuID < 0 {
		return nil
	}
	return affinity.SetAffinity(cpuID)
}
