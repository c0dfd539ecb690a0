package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolchainArgs(t *testing.T) {
	tc := newToolchain(defaultConfig().Build)

	assert.Equal(t, []string{"-S", "-O1", "p.ll", "-o", "p_opt.ll"}, tc.optArgs("p.ll", "p_opt.ll"))
	assert.Equal(t, []string{"p_opt.ll", "-o", "p.s"}, tc.llcArgs("p_opt.ll", "p.s"))
	assert.Equal(t, []string{"p.s", "-o", "p.out", "-no-pie"}, tc.linkArgs("p.s", "p.out"))

	tc.NoPIE = false
	assert.Equal(t, []string{"p_opt.ll", "-o", "p.s", "-relocation-model=pic"}, tc.llcArgs("p_opt.ll", "p.s"))
	assert.Equal(t, []string{"p.s", "-o", "p.out"}, tc.linkArgs("p.s", "p.out"))
}

func TestMissingTools(t *testing.T) {
	tc := toolchain{Opt: "easyrust-no-such-opt", LLC: "easyrust-no-such-llc", CC: "easyrust-no-such-cc"}
	assert.Equal(t, []string{"easyrust-no-such-opt", "easyrust-no-such-llc", "easyrust-no-such-cc"}, tc.missingTools())
}

func TestReadUnits(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "alpha.er")
	writeFile(t, a, "print(1);")

	units, err := readUnits([]string{a, "-"}, strings.NewReader("print(2);"))
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "alpha", units[0].Name)
	assert.Equal(t, "print(1);", string(units[0].Source))
	assert.Equal(t, STDIN_NAME, units[1].Name)
	assert.Equal(t, "<stdin>", units[1].displayName())
	assert.Equal(t, "print(2);", string(units[1].Source))

	other := filepath.Join(dir, "sub", "alpha.er")
	writeFile(t, other, "print(3);")
	_, err = readUnits([]string{a, other}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both produce alpha")

	_, err = readUnits([]string{filepath.Join(dir, "missing.er")}, nil)
	assert.Error(t, err)
}

func TestCompileUnits(t *testing.T) {
	cache := newTestCache(t)
	units := []unit{
		{Path: "ok.er", Name: "ok", Source: []byte("let x: int = 2; print(x * 3);")},
		{Path: "bad.er", Name: "bad", Source: []byte("print(y);")},
		{Path: "syntax.er", Name: "syntax", Source: []byte("let = ;")},
	}

	results, err := compileUnits(context.Background(), units, "", 2, cache)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "ok", results[0].Unit.Name)
	assert.Empty(t, results[0].Errs)
	assert.Contains(t, results[0].IR, "define i32 @main()")
	assert.False(t, results[0].Cached)

	require.NotEmpty(t, results[1].Errs)
	assert.Equal(t, "bad.er", results[1].Errs[0].Token.FileName)
	assert.Empty(t, results[1].IR)

	require.NotEmpty(t, results[2].Errs)

	again, err := compileUnits(context.Background(), units[:2], "", 0, cache)
	require.NoError(t, err)
	assert.True(t, again[0].Cached)
	assert.Equal(t, results[0].IR, again[0].IR)
	assert.False(t, again[1].Cached, "failed units are not cached")
}

func TestCompileUnitsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := compileUnits(ctx, []unit{{Path: "a.er", Name: "a", Source: []byte("print(1);")}}, "", 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteIR(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "build")
	path, err := writeIR(out, "prog", "ir text")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "prog.ll"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ir text", string(data))
}

// runCLI runs one command with a private config and cache.
func runCLI(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	t.Setenv(cacheEnv, t.TempDir())
	manifest := filepath.Join(t.TempDir(), configFileName)
	writeFile(t, manifest, "[output]\ncolor = \"off\"\n")

	return execute(append(args, "--config", manifest, "--no-cache"), strings.NewReader(stdin))
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.er")
	bad := filepath.Join(dir, "bad.er")
	writeFile(t, good, "fn add(a: int, b: int): int { return a + b; } print(add(2, 3));")
	writeFile(t, bad, "let x: int = \"s\";")

	require.NoError(t, runCLI(t, "", "check", good))

	err := runCLI(t, "", "check", good, bad)
	require.ErrorIs(t, err, ErrDiagnostics)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 file(s) had errors")

	require.NoError(t, runCLI(t, "print(1);", "check", "-"))
}

func TestEmitCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.er")
	writeFile(t, src, `print("hello");`)
	out := filepath.Join(dir, "out")

	require.NoError(t, runCLI(t, "", "emit", src, "-o", out))
	data, err := os.ReadFile(filepath.Join(out, "hello.ll"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `c"hello\00"`)
	assert.Contains(t, string(data), "define i32 @main()")
}

func TestBuildPipeline(t *testing.T) {
	tc := newToolchain(defaultConfig().Build)
	if missing := tc.missingTools(); len(missing) > 0 {
		t.Skipf("missing tools: %v", missing)
	}

	dir := t.TempDir()
	units := []unit{{Path: "sum.er", Name: "sum", Source: []byte("print(1 + 2);")}}
	results, err := compileUnits(context.Background(), units, "", 1, nil)
	require.NoError(t, err)
	require.Empty(t, results[0].Errs)

	irFile, err := writeIR(dir, "sum", results[0].IR)
	require.NoError(t, err)
	exe, err := tc.genBinary(context.Background(), irFile, dir, "sum")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "sum_opt.ll"))
	assert.FileExists(t, filepath.Join(dir, "sum.s"))

	out, err := exec.Command(exe).Output()
	require.NoError(t, err)
	assert.Equal(t, "3.000000\n", string(out))
}
