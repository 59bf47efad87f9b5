//go:build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux implementation on sched_setaffinity(2) without cgo.

package affinity

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// cpuSetSize mirrors CPU_SETSIZE from <sched.h>.
const cpuSetSize = 1024

// setAffinityPlatform sets the calling thread's affinity to cpuID.
// Pid 0 addresses the calling thread, not the whole process.
func setAffinityPlatform(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity cpu %d: %w", cpuID, err)
	}
	return nil
}

func availablePlatform() []int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return sequential(runtime.NumCPU())
	}
	cpus := make([]int, 0, set.Count())
	for i := 0; i < cpuSetSize; i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	if len(cpus) == 0 {
		return sequential(runtime.NumCPU())
	}
	return cpus
}

func sequential(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
