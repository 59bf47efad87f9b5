// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for the concurrency module.

package concurrency

import (
	"fmt"

	"github.com/momentics/hioload-pool/api"
)

var (
	// ErrPoolClosed indicates the pool has begun shutdown.
	ErrPoolClosed = api.ErrPoolClosed

	// ErrInvalidWorkerCount indicates invalid worker count configuration.
	ErrInvalidWorkerCount = api.ErrInvalidWorkerCount

	// ErrInvalidArgument indicates a rejected submission.
	ErrInvalidArgument = api.ErrInvalidArgument
)

func constructionError(msg string, cause error) *api.Error {
	return api.Wrap(api.ErrCodeConstruction, msg, cause)
}

func invalidWorkerCount(actorWorkers, workers int) error {
	return constructionError("create thread pool", ErrInvalidWorkerCount).
		WithContext("actor_workers", actorWorkers).
		WithContext("workers", workers)
}

func invalidSubmission(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
