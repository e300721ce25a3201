package plugin

import (
	"context"
	"sync"

	"github.com/lumen-sh/lumen/internal/entry"
)

// Status is the lifecycle state of a plugin unit.
type Status int

const (
	// StatusPending - the unit has not started executing.
	StatusPending Status = iota
	// StatusRunning - the unit is executing.
	StatusRunning
	// StatusSucceeded - the unit produced entries. Terminal.
	StatusSucceeded
	// StatusFailed - the unit failed with a diagnostic. Terminal.
	StatusFailed
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal returns true for states that can no longer change.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Provider produces entries natively, without a script. Built-in plugins
// (PATH scan, desktop files) implement this and run through the same
// registry pipeline as script units.
type Provider interface {
	// Name returns the plugin name reported in corpus records.
	Name() string

	// Entries produces the unit's entry forest. Implementations may read
	// the filesystem; they must not retain or mutate returned entries.
	Entries(ctx context.Context) ([]*entry.Entry, error)
}

// Unit identifies one plugin source: either a Lua script (by path or inline
// source) or a native Provider.
type Unit struct {
	// Name is the logical unit name from configuration. For script units
	// it may be overridden by the name the script registers.
	Name string

	// Script is the path to a Lua source file.
	Script string

	// Source is inline Lua source, used instead of Script when non-empty.
	Source string

	// Provider, when set, supplies entries natively and Script/Source are
	// ignored.
	Provider Provider

	mu     sync.Mutex
	status Status
	err    *Error
}

// Status returns the unit's current lifecycle state.
func (u *Unit) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

// Err returns the unit's failure diagnostic, if any.
func (u *Unit) Err() *Error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

// transition moves the unit to a new state. Terminal states are immutable;
// a transition out of one is silently ignored.
func (u *Unit) transition(next Status, err *Error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.status.Terminal() {
		return
	}
	u.status = next
	u.err = err
}
