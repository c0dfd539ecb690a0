package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, configFileName)
	writeFile(t, manifest, "[build]\nopt_level = \"-O2\"\n")
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))

	path, ok, err := findConfig(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, manifest, path)
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, configFileName)
	writeFile(t, manifest, `
[build]
opt_level = "-O3"
cc = "gcc"
jobs = 4

[output]
color = "off"
`)

	cfg, err := loadConfig(manifest)
	require.NoError(t, err)

	def := defaultConfig()
	assert.Equal(t, manifest, cfg.Path)
	assert.Equal(t, "-O3", cfg.Build.OptLevel)
	assert.Equal(t, "gcc", cfg.Build.CC)
	assert.Equal(t, 4, cfg.Build.Jobs)
	assert.Equal(t, colorOff, cfg.Output.Color)

	assert.Equal(t, def.Build.Opt, cfg.Build.Opt)
	assert.Equal(t, def.Build.LLC, cfg.Build.LLC)
	assert.True(t, cfg.Build.NoPIE)
	assert.Equal(t, def.Output.MaxDiagnostics, cfg.Output.MaxDiagnostics)
	assert.Equal(t, filepath.Join(root, "build"), cfg.Build.OutDir)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     string
	}{
		{"syntax", "[build\n", "failed to parse TOML"},
		{"unknown key", "[build]\noptimize = true\n", "unknown keys: build.optimize"},
		{"bad opt level", "[build]\nopt_level = \"fast\"\n", "invalid opt_level"},
		{"bad color", "[output]\ncolor = \"rainbow\"\n", "invalid color"},
		{"negative jobs", "[build]\njobs = -1\n", "jobs must not be negative"},
		{"empty out dir", "[build]\nout_dir = \"\"\n", "out_dir must not be empty"},
		{"empty tool", "[build]\nllc = \"\"\n", "llc must name a program"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest := filepath.Join(t.TempDir(), configFileName)
			writeFile(t, manifest, tt.contents)

			_, err := loadConfig(manifest)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), manifest)
		})
	}
}

func TestResolveConfig(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "other.toml")
	writeFile(t, explicit, "[build]\nno_pie = false\nout_dir = \"/tmp/er-out\"\n")

	cfg, err := resolveConfig(explicit, t.TempDir())
	require.NoError(t, err)
	assert.False(t, cfg.Build.NoPIE)
	assert.Equal(t, "/tmp/er-out", cfg.Build.OutDir)

	_, err = resolveConfig(filepath.Join(t.TempDir(), "missing.toml"), "")
	assert.Error(t, err)
}
