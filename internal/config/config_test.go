package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	if err := cfg.validate(); err != nil {
		t.Fatalf("embedded defaults invalid: %v", err)
	}
	if cfg.Frontend != "tui" {
		t.Errorf("default frontend = %q", cfg.Frontend)
	}
	if cfg.ListSize != 15 {
		t.Errorf("default list_size = %d", cfg.ListSize)
	}
	if cfg.PluginTimeout.Duration != 5*time.Second {
		t.Errorf("default plugin_timeout = %s", cfg.PluginTimeout)
	}
	if cfg.Builtins.Path || !cfg.Builtins.Desktop {
		t.Errorf("default builtins = %+v", cfg.Builtins)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Frontend != Default().Frontend {
		t.Error("missing file changed defaults")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
frontend = "tea"
list_size = 30
stay_resident = true
terminal_runner = 'foot -e $COMMAND'
plugin_timeout = "250ms"
log_level = "debug"
plugin_dirs = ["/opt/lumen/plugins"]

[[plugins]]
name = "bookmarks"
file = "/home/u/bookmarks.lua"

[builtins]
path = true
desktop = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Frontend != "tea" || cfg.ListSize != 30 || !cfg.StayResident {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.PluginTimeout.Duration != 250*time.Millisecond {
		t.Errorf("plugin_timeout = %s", cfg.PluginTimeout)
	}
	if len(cfg.Plugins) != 1 || cfg.Plugins[0].Name != "bookmarks" {
		t.Errorf("plugins = %+v", cfg.Plugins)
	}
	if !cfg.Builtins.Path || cfg.Builtins.Desktop {
		t.Errorf("builtins = %+v", cfg.Builtins)
	}
}

func TestLoadPartialFileKeepsUnsetDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `list_size = 7`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListSize != 7 {
		t.Errorf("list_size = %d", cfg.ListSize)
	}
	if cfg.Frontend != "tui" {
		t.Errorf("unset frontend = %q, want default", cfg.Frontend)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", `not_a_setting = true`},
		{"bad frontend", `frontend = "gtk"`},
		{"negative list size", `list_size = -1`},
		{"bad duration", `plugin_timeout = "fast"`},
		{"plugin without file", "[[plugins]]\nname = \"x\"\n"},
		{"syntax error", `frontend = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}
