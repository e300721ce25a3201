// Package builtin holds the native entry providers that ship with the
// launcher: the PATH executable scan and the freedesktop desktop-file
// reader. Both run through the registry pipeline exactly like script units.
package builtin

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/lumen-sh/lumen/internal/entry"
)

// PathProvider lists every executable reachable through a PATH-style
// directory list as a launchable entry.
type PathProvider struct {
	// Dirs overrides the scanned directories. Empty means $PATH.
	Dirs []string
}

// Name implements plugin.Provider.
func (p *PathProvider) Name() string { return "path" }

// Entries implements plugin.Provider. Duplicate basenames keep the first
// directory's hit, matching shell lookup order. Entries come back sorted by
// name so corpus order does not depend on directory layout.
func (p *PathProvider) Entries(ctx context.Context) ([]*entry.Entry, error) {
	dirs := p.Dirs
	if len(dirs) == 0 {
		dirs = filepath.SplitList(os.Getenv("PATH"))
	}

	seen := make(map[string]bool)
	var names []string
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ents, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, ent := range ents {
			name := ent.Name()
			if seen[name] || !isExecutable(dir, ent) {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)

	entries := make([]*entry.Entry, 0, len(names))
	for _, name := range names {
		e, err := entry.New(name, name, nil, 0, nil)
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// isExecutable reports whether a directory entry is a file the user could
// plausibly run. Symlinks are resolved through Stat.
func isExecutable(dir string, ent os.DirEntry) bool {
	info, err := os.Stat(filepath.Join(dir, ent.Name()))
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
