// Package dispatch resolves selected entries to launch commands and hands
// them to the process-spawning collaborator.
package dispatch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lumen-sh/lumen/internal/applog"
	"github.com/lumen-sh/lumen/internal/entry"
)

// ErrUnresolvable is returned when an entry yields no runnable command.
var ErrUnresolvable = errors.New("entry has no runnable command")

// Dispatcher turns entries into spawned processes.
type Dispatcher struct {
	spawner Spawner

	// terminalRunner is the command template wrapping terminal entries.
	// Recognized placeholders: $DISPLAY_NAME, $BINARY, $FLAGS, $COMMAND.
	terminalRunner string

	log *applog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(spawner Spawner, terminalRunner string, log *applog.Logger) *Dispatcher {
	return &Dispatcher{
		spawner:        spawner,
		terminalRunner: terminalRunner,
		log:            log.WithComponent("dispatch"),
	}
}

// Resolve returns the entry whose exec command a launch would run: the
// entry itself when it has one, otherwise the first resolvable child,
// recursively. Entry trees are acyclic by construction, so the recursion
// terminates.
func Resolve(e *entry.Entry) (*entry.Entry, error) {
	if e == nil {
		return nil, ErrUnresolvable
	}
	if e.Exec != "" {
		return e, nil
	}
	for _, child := range e.Children {
		if resolved, err := Resolve(child); err == nil {
			return resolved, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnresolvable, e.Name)
}

// Launch resolves an entry and spawns its command, fire-and-forget.
// Resolution failures return ErrUnresolvable; collaborator failures return
// a *SpawnError. Neither is fatal to the process.
func (d *Dispatcher) Launch(e *entry.Entry) (*Handle, error) {
	resolved, err := Resolve(e)
	if err != nil {
		return nil, err
	}

	argv := d.commandFor(resolved)
	handle, err := d.spawner.Spawn(argv)
	if err != nil {
		d.log.Warn("launch %q failed: %v", resolved.Name, err)
		return nil, err
	}

	d.log.Info("launched %q (pid %d)", resolved.Name, handle.PID)
	return handle, nil
}

// commandFor builds the argv for a resolved entry, wrapping terminal
// entries in the configured terminal runner.
func (d *Dispatcher) commandFor(e *entry.Entry) []string {
	argv := entry.SplitCommand(e.Exec)
	if !e.Flags.Has(entry.FlagTerminal) || d.terminalRunner == "" {
		return argv
	}
	return entry.SplitCommand(d.terminalCommand(e, argv))
}

// terminalCommand expands the terminal-runner template for an entry.
func (d *Dispatcher) terminalCommand(e *entry.Entry, argv []string) string {
	binary := filepath.Base(argv[0])
	flags := strings.Join(argv[1:], " ")
	command := strings.TrimSpace(binary + " " + flags)

	out := d.terminalRunner
	for _, sub := range [][2]string{
		{"$DISPLAY_NAME", e.Name},
		{"$BINARY", binary},
		{"$FLAGS", flags},
		{"$COMMAND", command},
	} {
		out = strings.ReplaceAll(out, sub[0], sub[1])
	}
	return out
}
