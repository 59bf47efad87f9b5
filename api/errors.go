// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-pool.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrPoolClosed           = errors.New("pool is closed")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidWorkerCount   = errors.New("invalid worker count")
	ErrAffinityNotSupported = errors.New("CPU affinity not supported")
	ErrKernelPanic          = errors.New("kernel panicked")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeConstruction
	ErrCodeClosed
	ErrCodeKernel
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeConstruction:
		return "construction"
	case ErrCodeClosed:
		return "closed"
	case ErrCodeKernel:
		return "kernel"
	default:
		return "internal"
	}
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap creates a structured error around cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	e := NewError(code, message)
	e.Err = cause
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// PartitionError reports the failure of one fork-join partition.
type PartitionError struct {
	Partition  int
	Start, End int
	Err        error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %d [%d,%d): %v", e.Partition, e.Start, e.End, e.Err)
}

func (e *PartitionError) Unwrap() error { return e.Err }
