// Package entry defines the launchable entry model shared by plugins,
// the search index, and the dispatcher.
package entry

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrInvalidEntry is returned when an entry fails structural validation.
var ErrInvalidEntry = errors.New("invalid entry")

// Flags carries launch behavior hints attached to an entry.
type Flags uint16

const (
	// FlagTerminal marks entries that must run inside a terminal emulator.
	FlagTerminal Flags = 1 << iota
)

// Has returns true if all bits in f are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Entry is a single launchable item. Entries form trees: a group entry may
// have an empty Exec as long as it has children to resolve through.
//
// Entries are immutable after construction. The registry owns every entry
// tree for the lifetime of a corpus; nothing mutates them afterward.
type Entry struct {
	// Name is the display string. Never empty on a constructed entry.
	Name string

	// Exec is the command to run on launch. May be empty for group nodes.
	Exec string

	// Terms are the search terms used by the matcher. Terms[0] is always
	// Name; duplicates are allowed.
	Terms []string

	// Flags are launch behavior hints.
	Flags Flags

	// Children are sub-entries in plugin-declared order.
	Children []*Entry
}

// New constructs a validated entry. Name may be empty if Exec is set, in
// which case the display name is derived from the command's binary name.
// Returns ErrInvalidEntry when the name cannot be determined or when both
// Exec and Children are empty.
func New(name, exec string, terms []string, flags Flags, children []*Entry) (*Entry, error) {
	if name == "" {
		name = execName(exec)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: entry has no name and no exec command", ErrInvalidEntry)
	}
	if exec == "" && len(children) == 0 {
		return nil, fmt.Errorf("%w: entry %q has no exec command and no children", ErrInvalidEntry, name)
	}

	all := make([]string, 0, len(terms)+1)
	all = append(all, name)
	for _, t := range terms {
		if t != "" && t != name {
			all = append(all, t)
		}
	}

	return &Entry{
		Name:     name,
		Exec:     exec,
		Terms:    all,
		Flags:    flags,
		Children: children,
	}, nil
}

// execName derives a display name from an exec string: the basename of the
// first command word.
func execName(exec string) string {
	argv := SplitCommand(exec)
	if len(argv) == 0 || argv[0] == "" {
		return ""
	}
	return filepath.Base(argv[0])
}

// Walk visits a forest depth-first, preserving sibling order. The path
// passed to fn is the sequence of child offsets from the forest root; it is
// reused between calls and must be copied if retained.
func Walk(forest []*Entry, fn func(path []int, e *Entry)) {
	var walk func(path []int, level []*Entry)
	walk = func(path []int, level []*Entry) {
		for i, e := range level {
			p := append(path, i)
			fn(p, e)
			walk(p, e.Children)
		}
	}
	walk(make([]int, 0, 8), forest)
}

// Get resolves a child-offset path against a forest. Returns nil when the
// path does not name an entry.
func Get(forest []*Entry, path []int) *Entry {
	level := forest
	var cur *Entry
	for _, idx := range path {
		if idx < 0 || idx >= len(level) {
			return nil
		}
		cur = level[idx]
		level = cur.Children
	}
	return cur
}
