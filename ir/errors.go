// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes failures of parsing, building and transforming
// token streams.
type ErrorKind uint8

const (
	// ErrMalformedStream indicates the input cannot be parsed or has
	// unbalanced structure.
	ErrMalformedStream ErrorKind = iota

	// ErrResourceExhausted indicates a pass found no free register,
	// sampler or immediate slot.
	ErrResourceExhausted

	// ErrCapacityExceeded indicates the output buffer cannot grow further.
	ErrCapacityExceeded

	// ErrAllocationFailure indicates an allocation of a buffer or an
	// external resource failed.
	ErrAllocationFailure
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrMalformedStream:
		return "MalformedStream"
	case ErrResourceExhausted:
		return "ResourceExhausted"
	case ErrCapacityExceeded:
		return "CapacityExceeded"
	case ErrAllocationFailure:
		return "AllocationFailure"
	default:
		return "Unknown"
	}
}

// Error makes a kind usable as an errors.Is target:
//
//	if errors.Is(err, ir.ErrResourceExhausted) { ... }
func (k ErrorKind) Error() string { return "tgsi: " + k.String() }

// Error is the error type returned by every package of this module.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Op names the operation that failed, e.g. "parse" or "pstipple".
	Op string

	// Message provides details about the error.
	Message string

	// Err is an optional underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Op == "" {
		return fmt.Sprintf("tgsi %s: %s", e.Kind.String(), msg)
	}
	return fmt.Sprintf("tgsi %s %s: %s", e.Op, e.Kind.String(), msg)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is matches an ErrorKind target against e.Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// Errorf creates an error of the given kind with a formatted message.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches kind and op to an underlying error.
func Wrap(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
