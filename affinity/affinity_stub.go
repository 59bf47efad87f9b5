//go:build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package affinity

import (
	"runtime"

	"github.com/momentics/hioload-pool/api"
)

func setAffinityPlatform(int) error {
	return api.ErrAffinityNotSupported
}

func availablePlatform() []int {
	out := make([]int, runtime.NumCPU())
	for i := range out {
		out[i] = i
	}
	return out
}
