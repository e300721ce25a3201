package plugin

import (
	"errors"
	"fmt"
)

// ErrorKind classifies plugin unit failures.
type ErrorKind int

const (
	// KindLoad - the script could not be read or compiled.
	KindLoad ErrorKind = iota
	// KindRuntime - an unhandled fault during script execution.
	KindRuntime
	// KindRegistration - plugin() not called, called more than once, or
	// called with a malformed payload.
	KindRegistration
	// KindTimeout - the unit exceeded its execution deadline.
	KindTimeout
	// KindInvalidEntry - the unit registered a structurally invalid entry.
	KindInvalidEntry
)

// String returns a string representation of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindRuntime:
		return "runtime"
	case KindRegistration:
		return "registration"
	case KindTimeout:
		return "timeout"
	case KindInvalidEntry:
		return "invalid-entry"
	default:
		return "unknown"
	}
}

// Error is a failure confined to a single plugin unit. It is recorded as a
// build diagnostic and never aborts the registry.
type Error struct {
	Unit string
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("plugin %q: %s error: %v", e.Unit, e.Kind, e.Err)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// classify wraps err as an *Error for the named unit, preserving an
// existing *Error's kind and defaulting everything else to KindRuntime.
func classify(unit string, err error) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		if perr.Unit == "" {
			perr.Unit = unit
		}
		return perr
	}
	return &Error{Unit: unit, Kind: KindRuntime, Err: err}
}
