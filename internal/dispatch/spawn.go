package dispatch

import (
	"fmt"
	"os/exec"
	"syscall"
)

// Handle identifies a spawned process. Launches are fire-and-forget: the
// launcher never waits for the child to terminate.
type Handle struct {
	PID int
}

// SpawnError wraps a failure from the process-spawning collaborator.
type SpawnError struct {
	Command string
	Err     error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

// Unwrap returns the wrapped cause.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Spawner is the process-spawning collaborator.
type Spawner interface {
	Spawn(argv []string) (*Handle, error)
}

// ExecSpawner spawns detached processes with os/exec. The child gets its
// own session so it survives the launcher exiting.
type ExecSpawner struct{}

// Spawn implements Spawner.
func (ExecSpawner) Spawn(argv []string) (*Handle, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, &SpawnError{Err: fmt.Errorf("empty command")}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: argv[0], Err: err}
	}

	// Reap the child when it exits; we never block on it.
	go func() { _ = cmd.Wait() }()

	return &Handle{PID: cmd.Process.Pid}, nil
}
