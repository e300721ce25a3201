package plugin

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover finds script units in the given directories: every *.lua file is
// one unit named after its basename. Missing directories are skipped, and
// the first directory containing a name wins. Units are returned sorted by
// name within each directory, directories in the order given, so discovery
// order is stable across runs.
func Discover(dirs []string) []*Unit {
	seen := make(map[string]bool)
	var units []*Unit

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		var names []string
		for _, ent := range entries {
			if ent.IsDir() || filepath.Ext(ent.Name()) != ".lua" {
				continue
			}
			names = append(names, ent.Name())
		}
		sort.Strings(names)

		for _, fname := range names {
			name := strings.TrimSuffix(fname, ".lua")
			if seen[name] {
				continue
			}
			seen[name] = true
			units = append(units, &Unit{
				Name:   name,
				Script: filepath.Join(dir, fname),
			})
		}
	}

	return units
}

// DefaultPluginDirs returns the default plugin search paths.
func DefaultPluginDirs() []string {
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "lumen", "plugins"))
		dirs = append(dirs, filepath.Join(home, ".local", "share", "lumen", "plugins"))
	}
	return dirs
}
