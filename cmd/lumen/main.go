// Package main is the entry point for the lumen launcher.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lumen-sh/lumen/internal/applog"
	"github.com/lumen-sh/lumen/internal/config"
	"github.com/lumen-sh/lumen/internal/dispatch"
	"github.com/lumen-sh/lumen/internal/frontend"
	"github.com/lumen-sh/lumen/internal/frontend/teaui"
	"github.com/lumen-sh/lumen/internal/frontend/tui"
	"github.com/lumen-sh/lumen/internal/plugin"
	"github.com/lumen-sh/lumen/internal/plugin/builtin"
	"github.com/lumen-sh/lumen/internal/plugin/luaplug"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	applyFlagOverrides(&cfg, opts)

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()
	log.Info("lumen %s starting", version)

	backend, err := newBackend(cfg.Frontend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	runner := luaplug.NewRunner(log, luaplug.WithTimeout(cfg.PluginTimeout.Duration))
	registry := plugin.NewRegistry(runner, log)
	dispatcher := dispatch.NewDispatcher(dispatch.ExecSpawner{}, cfg.TerminalRunner, log)

	session := frontend.NewSession(registry, assembleUnits(cfg), dispatcher, backend, frontend.SessionConfig{
		ListSize:     cfg.ListSize,
		StayResident: cfg.StayResident,
		CacheSize:    512,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// assembleUnits builds the unit list in launch order: enabled builtins
// first, then explicitly configured scripts, then directory discovery.
func assembleUnits(cfg config.Config) []*plugin.Unit {
	var units []*plugin.Unit

	if cfg.Builtins.Desktop {
		units = append(units, &plugin.Unit{Name: "desktop", Provider: &builtin.DesktopProvider{}})
	}
	if cfg.Builtins.Path {
		units = append(units, &plugin.Unit{Name: "path", Provider: &builtin.PathProvider{}})
	}

	seen := make(map[string]bool)
	for _, ref := range cfg.Plugins {
		name := ref.Name
		if name == "" {
			name = strings.TrimSuffix(ref.File, ".lua")
		}
		seen[name] = true
		units = append(units, &plugin.Unit{Name: name, Script: ref.File})
	}

	dirs := cfg.PluginDirs
	if len(dirs) == 0 {
		dirs = plugin.DefaultPluginDirs()
	}
	for _, unit := range plugin.Discover(dirs) {
		if seen[unit.Name] {
			continue
		}
		units = append(units, unit)
	}
	return units
}

// newLogger builds the configured logger. Without a log file all output is
// discarded so nothing corrupts the display surface.
func newLogger(cfg config.Config) (*applog.Logger, func(), error) {
	if cfg.LogFile == "" {
		return applog.Discard(), func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logCfg := applog.DefaultConfig()
	logCfg.Level = applog.ParseLevel(cfg.LogLevel)
	logCfg.Output = f
	return applog.New(logCfg), func() { _ = f.Close() }, nil
}

func newBackend(name string) (frontend.Backend, error) {
	switch name {
	case "tui":
		return tui.New()
	case "tea":
		return teaui.New(), nil
	default:
		return nil, fmt.Errorf("unknown frontend %q", name)
	}
}

type options struct {
	configPath string
	frontend   string
	logLevel   string
	logFile    string
	resident   bool
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&opts.frontend, "frontend", "", "Rendering backend (tui, tea)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	flag.BoolVar(&opts.resident, "resident", false, "Stay open after launching an entry")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Lumen - extensible application launcher\n\n")
		fmt.Fprintf(os.Stderr, "Usage: lumen [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("Lumen %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}
	return opts
}

// applyFlagOverrides lets command-line flags win over the config file.
func applyFlagOverrides(cfg *config.Config, opts options) {
	if opts.frontend != "" {
		cfg.Frontend = opts.frontend
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.LogFile = opts.logFile
	}
	if opts.resident {
		cfg.StayResident = true
	}
}
