// Package errors defines the compiler's closed set of diagnostic kinds
// and an accumulator that collects them across a build, rendering each
// with its source location and a preserved call stack.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the closed set of compile-time diagnostics the compiler can
// raise. Unlike the runtime ABI (internal/runtime), which reports
// failures through sentinel returns, compile-time diagnostics carry a
// stack trace via github.com/pkg/errors so a build failure can be
// traced back to the lowering call that raised it.
type Kind string

const (
	SyntaxError         Kind = "SyntaxError"
	TypeError           Kind = "TypeError"
	UnknownName         Kind = "UnknownName"
	InvalidAssignment   Kind = "InvalidAssignment"
	ModuleVerification  Kind = "ModuleVerification"
)

// SourceLocation is a location in the module being compiled.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// CompileError is one diagnostic, carrying its source location and a
// pkg/errors-wrapped cause so the underlying Go call stack survives to
// the point the accumulator reports it.
type CompileError struct {
	Kind     Kind
	Message  string
	Location SourceLocation
	cause    error
}

// New creates a CompileError, capturing the current stack trace via
// pkg/errors.New so a later Diagnostics dump can show where in the
// compiler the failure originated.
func New(kind Kind, message, file string, line, column int) *CompileError {
	return &CompileError{
		Kind:    kind,
		Message: message,
		Location: SourceLocation{File: file, Line: line, Column: column},
		cause:   errors.New(message),
	}
}

// Wrap attaches kind/location context to an existing error while
// preserving its pkg/errors stack trace.
func Wrap(err error, kind Kind, file string, line, column int) *CompileError {
	return &CompileError{
		Kind:    kind,
		Message: err.Error(),
		Location: SourceLocation{File: file, Line: line, Column: column},
		cause:   errors.WithStack(err),
	}
}

// Error implements the error interface with a location-then-message
// rendering style.
func (e *CompileError) Error() string {
	var sb strings.Builder
	if e.Location.File != "" {
		sb.WriteString(fmt.Sprintf("%s:%d:%d: ", e.Location.File, e.Location.Line, e.Location.Column))
	}
	sb.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))
	return sb.String()
}

// StackTrace exposes the pkg/errors-captured frames for diagnostic tooling.
func (e *CompileError) StackTrace() errors.StackTrace {
	type stackTracer interface{ StackTrace() errors.StackTrace }
	if st, ok := e.cause.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// Accumulator collects every CompileError raised while lowering one
// module; module lowering keeps going after a recoverable error so a
// single build reports as many diagnostics as possible instead of
// stopping at the first one.
type Accumulator struct {
	errs []*CompileError
}

// Add records a diagnostic.
func (a *Accumulator) Add(e *CompileError) { a.errs = append(a.errs, e) }

// HasErrors reports whether any diagnostic was recorded.
func (a *Accumulator) HasErrors() bool { return len(a.errs) > 0 }

// Errors returns every recorded diagnostic in the order it was added.
func (a *Accumulator) Errors() []*CompileError { return a.errs }

// Count returns the total number of recorded diagnostics as the error
// count, for build telemetry (internal/diagnostics); every recorded
// diagnostic is an error, so the warning count is always 0.
func (a *Accumulator) Count() (errorCount, warningCount int) {
	return len(a.errs), 0
}

// Error renders every accumulated diagnostic, one per line block.
func (a *Accumulator) Error() string {
	var sb strings.Builder
	for _, e := range a.errs {
		sb.WriteString(e.Error())
	}
	return sb.String()
}
