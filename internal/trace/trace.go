/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package trace is the analyzer-wide leveled logger. It wraps apex/log so
// that every package logs structured fields (class, method, pc) instead of
// formatting them into the message string, matching the way the teacher's
// own log/trace split keeps per-instruction tracing separate from
// operator-facing warnings.
package trace

import (
	"os"

	alog "github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

var logger = &alog.Logger{
	Handler: cli.New(os.Stderr),
	Level:   alog.InfoLevel,
}

// Verbose turns on FINE-grained per-instruction tracing. Off by default:
// the path engine can visit thousands of offsets per method and at normal
// verbosity that would drown the operator-facing log.
var Verbose bool

// SetVerbose flips instruction-level tracing on or off.
func SetVerbose(on bool) {
	Verbose = on
	if on {
		logger.Level = alog.DebugLevel
	} else {
		logger.Level = alog.InfoLevel
	}
}

// Fine logs a per-instruction trace line. No-op unless Verbose is set.
func Fine(msg string, fields alog.Fields) {
	if !Verbose {
		return
	}
	logger.WithFields(fields).Debug(msg)
}

// Info logs an operator-facing informational line.
func Info(msg string, fields alog.Fields) {
	logger.WithFields(fields).Info(msg)
}

// Warning logs a recoverable condition: a widening, a memoization miss,
// a dead path from an unresolved symbol.
func Warning(msg string, fields alog.Fields) {
	logger.WithFields(fields).Warn(msg)
}

// Error logs a non-fatal error the caller is about to return.
func Error(msg string, fields alog.Fields) {
	logger.WithFields(fields).Error(msg)
}

// Fatal logs the stderr line the user-visible failure contract (spec
// section 7) requires, then the caller is responsible for exiting.
func Fatal(msg string, fields alog.Fields) {
	logger.WithFields(fields).Error(msg)
}
