/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package errs centralizes the error taxonomy of the analyzer (design
// doc section "ERROR HANDLING DESIGN"): recoverable resolution failures,
// recoverable structural widenings, recoverable I/O misses, and fatal
// process-ending errors. Callers distinguish the taxonomy with errors.Is
// against the sentinels below, never by string matching.
package errs

import "github.com/pkg/errors"

// Recoverable resolution failures. The active path dies; no widening.
var (
	ErrClassNotFound  = errors.New("class not found")
	ErrMethodNotFound = errors.New("method not found")
	ErrFieldNotFound  = errors.New("field not found")
)

// Recoverable structural widenings. The offending state widens its
// argument roots to all_flag and returns.
var (
	ErrNativeMethod           = errors.New("native method has no dex body")
	ErrAbstractMethod         = errors.New("abstract method cannot be inspected")
	ErrExemptReceiver         = errors.New("receiver is on the exempt list")
	ErrRecursionGuard         = errors.New("callee already on the call chain")
	ErrReceiverFanoutExceeded = errors.New("receiver set exceeds MaxSubCount")
	ErrBranchDepthExceeded    = errors.New("join chain exceeds MaxBranchDepth")
)

// Recoverable I/O. Falls back to re-analysis.
var ErrMemoizationMiss = errors.New("memoized method not found in offset index")

// Fatal errors. The process exits non-zero after logging the cause.
var (
	ErrBootstrapClasspath = errors.New("bootstrap classpath could not be opened")
	ErrOutputUnwritable   = errors.New("output artifact could not be opened for writing")
)

// IsWidening reports whether err belongs to the "recoverable structural
// widening" family — the caller should widen the current state's argument
// roots and continue, rather than treat the path as dead.
func IsWidening(err error) bool {
	switch errors.Cause(err) {
	case ErrNativeMethod, ErrAbstractMethod, ErrExemptReceiver,
		ErrRecursionGuard, ErrReceiverFanoutExceeded, ErrBranchDepthExceeded:
		return true
	default:
		return false
	}
}

// IsDeadPath reports whether err is a recoverable resolution failure —
// the branch is treated as dead code, no widening applied.
func IsDeadPath(err error) bool {
	switch errors.Cause(err) {
	case ErrClassNotFound, ErrMethodNotFound, ErrFieldNotFound:
		return true
	default:
		return false
	}
}
