package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "easyrust.toml"

const (
	colorAuto = "auto"
	colorOn   = "on"
	colorOff  = "off"
)

// Config is the contents of easyrust.toml. Path is empty when no file was
// found and the defaults are in use.
type Config struct {
	Path   string       `toml:"-"`
	Build  BuildConfig  `toml:"build"`
	Output OutputConfig `toml:"output"`
}

type BuildConfig struct {
	OptLevel string `toml:"opt_level"`
	Opt      string `toml:"opt"`
	LLC      string `toml:"llc"`
	CC       string `toml:"cc"`
	NoPIE    bool   `toml:"no_pie"`
	OutDir   string `toml:"out_dir"`
	Target   string `toml:"target"`
	Jobs     int    `toml:"jobs"` // 0 means GOMAXPROCS
}

type OutputConfig struct {
	Color          string `toml:"color"`
	MaxDiagnostics int    `toml:"max_diagnostics"` // 0 means no limit
}

func defaultConfig() Config {
	return Config{
		Build: BuildConfig{
			OptLevel: "-O1",
			Opt:      "opt",
			LLC:      "llc",
			CC:       "clang",
			NoPIE:    true,
			OutDir:   "build",
		},
		Output: OutputConfig{
			Color:          colorAuto,
			MaxDiagnostics: 100,
		},
	}
}

var optLevelRe = regexp.MustCompile(`^-O[0-3sz]$`)

// findConfig walks up from startDir looking for easyrust.toml.
func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig decodes path over the defaults, so keys missing from the
// file keep their default values.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("build", "out_dir") && strings.TrimSpace(cfg.Build.OutDir) == "" {
		return Config{}, fmt.Errorf("%s: [build].out_dir must not be empty", path)
	}
	cfg.Path = path
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	// relative output directories are relative to the manifest
	if !filepath.IsAbs(cfg.Build.OutDir) {
		cfg.Build.OutDir = filepath.Join(filepath.Dir(path), cfg.Build.OutDir)
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if !optLevelRe.MatchString(cfg.Build.OptLevel) {
		return fmt.Errorf("invalid opt_level %q (want -O0..-O3, -Os or -Oz)", cfg.Build.OptLevel)
	}
	if cfg.Build.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", cfg.Build.Jobs)
	}
	switch cfg.Output.Color {
	case colorAuto, colorOn, colorOff:
	default:
		return fmt.Errorf("invalid color %q (must be auto, on or off)", cfg.Output.Color)
	}
	if cfg.Output.MaxDiagnostics < 0 {
		return fmt.Errorf("max_diagnostics must not be negative, got %d", cfg.Output.MaxDiagnostics)
	}
	for name, tool := range map[string]string{"opt": cfg.Build.Opt, "llc": cfg.Build.LLC, "cc": cfg.Build.CC} {
		if strings.TrimSpace(tool) == "" {
			return fmt.Errorf("%s must name a program", name)
		}
	}
	return nil
}

// resolveConfig loads explicit, or the nearest easyrust.toml above
// startDir, or falls back to the defaults.
func resolveConfig(explicit, startDir string) (Config, error) {
	path := explicit
	if path == "" {
		found, ok, err := findConfig(startDir)
		if err != nil {
			return Config{}, err
		}
		if !ok {
			return defaultConfig(), nil
		}
		path = found
	}
	return loadConfig(path)
}
