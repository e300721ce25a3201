// Package config loads launcher settings: embedded defaults overlaid with
// the user's TOML file.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed default.toml
var defaultTOML string

// Duration is a time.Duration that decodes from TOML strings like "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// PluginRef names one explicitly configured script plugin. Explicit plugins
// run before directory-discovered ones.
type PluginRef struct {
	Name string `toml:"name"`
	File string `toml:"file"`
}

// Builtins toggles the native providers.
type Builtins struct {
	// Path enables the PATH executable scan.
	Path bool `toml:"path"`

	// Desktop enables the freedesktop application reader.
	Desktop bool `toml:"desktop"`
}

// Config is the full launcher configuration.
type Config struct {
	// Frontend selects the rendering backend: "tui" or "tea".
	Frontend string `toml:"frontend"`

	// ListSize caps the number of visible result rows. Zero means
	// unbounded.
	ListSize int `toml:"list_size"`

	// StayResident keeps the launcher open after a launch.
	StayResident bool `toml:"stay_resident"`

	// TerminalRunner is the template wrapping terminal entries. Recognized
	// placeholders: $DISPLAY_NAME, $BINARY, $FLAGS, $COMMAND. Empty runs
	// terminal entries directly.
	TerminalRunner string `toml:"terminal_runner"`

	// PluginTimeout bounds one script unit's execution.
	PluginTimeout Duration `toml:"plugin_timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// LogFile receives log output. Empty discards logs, keeping the
	// display surface clean.
	LogFile string `toml:"log_file"`

	// PluginDirs overrides the plugin discovery directories.
	PluginDirs []string `toml:"plugin_dirs"`

	// Plugins are explicitly configured script plugins.
	Plugins []PluginRef `toml:"plugins"`

	Builtins Builtins `toml:"builtins"`
}

// Default returns the embedded default configuration.
func Default() Config {
	var cfg Config
	// The embedded file is covered by tests; a decode failure here is a
	// build defect.
	if _, err := toml.Decode(defaultTOML, &cfg); err != nil {
		panic(fmt.Sprintf("embedded default.toml: %v", err))
	}
	return cfg
}

// DefaultPath returns the user configuration file location.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lumen", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lumen", "config.toml")
}

// Load reads the configuration at path on top of the defaults. A missing
// file is not an error: the defaults stand alone.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Frontend {
	case "tui", "tea":
	default:
		return fmt.Errorf("frontend must be \"tui\" or \"tea\", got %q", c.Frontend)
	}
	if c.ListSize < 0 {
		return fmt.Errorf("list_size must not be negative, got %d", c.ListSize)
	}
	if c.PluginTimeout.Duration < 0 {
		return fmt.Errorf("plugin_timeout must not be negative, got %s", c.PluginTimeout)
	}
	for i, ref := range c.Plugins {
		if ref.File == "" {
			return fmt.Errorf("plugins[%d]: file is required", i)
		}
	}
	return nil
}
