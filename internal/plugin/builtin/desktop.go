package builtin

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lumen-sh/lumen/internal/entry"
)

// DesktopProvider reads freedesktop .desktop application files and turns
// them into launchable entries. Desktop actions (New Window, Private
// Window, ...) become children of the application's entry.
type DesktopProvider struct {
	// Dirs overrides the scanned application directories. Empty means the
	// XDG defaults.
	Dirs []string
}

// Name implements plugin.Provider.
func (p *DesktopProvider) Name() string { return "desktop" }

// Entries implements plugin.Provider. Files sort by basename with the first
// directory winning duplicates, per the XDG precedence rules.
func (p *DesktopProvider) Entries(ctx context.Context) ([]*entry.Entry, error) {
	dirs := p.Dirs
	if len(dirs) == 0 {
		dirs = defaultApplicationDirs()
	}

	seen := make(map[string]bool)
	var entries []*entry.Entry
	for _, dir := range dirs {
		ents, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		var names []string
		for _, ent := range ents {
			if ent.IsDir() || filepath.Ext(ent.Name()) != ".desktop" {
				continue
			}
			names = append(names, ent.Name())
		}
		sort.Strings(names)

		for _, fname := range names {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if seen[fname] {
				continue
			}
			seen[fname] = true

			e, err := parseDesktopFile(filepath.Join(dir, fname))
			if err != nil || e == nil {
				continue
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// defaultApplicationDirs resolves the XDG data directories.
func defaultApplicationDirs() []string {
	var dirs []string

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}

	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, dir := range filepath.SplitList(dataDirs) {
		if dir != "" {
			dirs = append(dirs, filepath.Join(dir, "applications"))
		}
	}
	return dirs
}

// desktopSection is one INI group of a .desktop file.
type desktopSection struct {
	name   string
	fields map[string]string
	// localizedNames collects Name[ll] values; they become search terms.
	localizedNames []string
}

// parseDesktopFile converts one .desktop file into an entry. It returns
// (nil, nil) for files that should not be shown: wrong type, NoDisplay,
// Hidden, or no usable Exec.
func parseDesktopFile(path string) (*entry.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sections, err := parseDesktopSections(f)
	if err != nil {
		return nil, err
	}

	main, ok := sections["Desktop Entry"]
	if !ok {
		return nil, nil
	}
	if t := main.fields["Type"]; t != "" && t != "Application" {
		return nil, nil
	}
	if main.fields["NoDisplay"] == "true" || main.fields["Hidden"] == "true" {
		return nil, nil
	}

	exec := stripFieldCodes(main.fields["Exec"])
	if exec == "" {
		return nil, nil
	}

	var flags entry.Flags
	if main.fields["Terminal"] == "true" {
		flags |= entry.FlagTerminal
	}

	terms := append([]string{}, main.localizedNames...)
	if generic := main.fields["GenericName"]; generic != "" {
		terms = append(terms, generic)
	}
	for _, kw := range strings.Split(main.fields["Keywords"], ";") {
		if kw = strings.TrimSpace(kw); kw != "" {
			terms = append(terms, kw)
		}
	}

	children := desktopActions(sections, main.fields["Actions"], flags)

	return entry.New(main.fields["Name"], exec, terms, flags, children)
}

// desktopActions builds child entries for the declared action sections.
// Actions inherit the parent's terminal flag; desktop files do not set
// Terminal on actions themselves.
func desktopActions(sections map[string]*desktopSection, declared string, flags entry.Flags) []*entry.Entry {
	var children []*entry.Entry
	for _, action := range strings.Split(declared, ";") {
		if action == "" {
			continue
		}
		sec, ok := sections["Desktop Action "+action]
		if !ok {
			continue
		}
		exec := stripFieldCodes(sec.fields["Exec"])
		if exec == "" {
			continue
		}
		child, err := entry.New(sec.fields["Name"], exec, nil, flags, nil)
		if err != nil {
			continue
		}
		children = append(children, child)
	}
	return children
}

// parseDesktopSections reads the INI-like group structure. Unknown groups
// are kept so action lookups can find them.
func parseDesktopSections(f *os.File) (map[string]*desktopSection, error) {
	sections := make(map[string]*desktopSection)
	var current *desktopSection

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := line[1 : len(line)-1]
			current = &desktopSection{name: name, fields: make(map[string]string)}
			sections[name] = current
			continue
		}
		if current == nil {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		// Name[ll] and friends are localized variants.
		if base, _, localized := strings.Cut(key, "["); localized {
			if base == "Name" {
				current.localizedNames = append(current.localizedNames, value)
			}
			continue
		}
		if _, dup := current.fields[key]; !dup {
			current.fields[key] = value
		}
	}
	return sections, sc.Err()
}

// stripFieldCodes removes the %f/%F/%u/%U style placeholders a desktop Exec
// line may carry. The launcher never passes files or URLs to applications.
func stripFieldCodes(exec string) string {
	fields := strings.Fields(exec)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) == 2 && f[0] == '%' {
			if f == "%%" {
				out = append(out, "%")
			}
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}
