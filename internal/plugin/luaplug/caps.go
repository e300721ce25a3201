package luaplug

import (
	"bufio"
	"os"
	"os/exec"
	"strings"
)

// Capabilities is the bounded OS-inspection surface exposed to plugin
// scripts. Injecting it at construction time keeps plugin execution
// reproducible: tests swap in a fake provider and never touch the real
// filesystem.
type Capabilities interface {
	// ListDir returns the names of the entries in a directory.
	ListDir(path string) ([]string, error)

	// ReadLines returns a file's contents split into lines.
	ReadLines(path string) ([]string, error)

	// Getenv returns the value of an environment variable, empty if unset.
	Getenv(name string) string

	// Capture runs a command and returns its stdout. Plugins use this for
	// read-only inspection (directory listings and the like); the sandbox
	// adds no capability beyond what the command itself does.
	Capture(name string, args ...string) (string, error)
}

// OSCapabilities backs the capability surface with the real operating
// system. It is the default provider outside of tests.
type OSCapabilities struct{}

// ListDir implements Capabilities.
func (OSCapabilities) ListDir(path string) ([]string, error) {
	ents, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		names = append(names, e.Name())
	}
	return names, nil
}

// ReadLines implements Capabilities.
func (OSCapabilities) ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// Getenv implements Capabilities.
func (OSCapabilities) Getenv(name string) string {
	return os.Getenv(name)
}

// Capture implements Capabilities.
func (OSCapabilities) Capture(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}
