package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/easyrust/easyrust/compiler"
	"github.com/easyrust/easyrust/parser"
	"github.com/easyrust/easyrust/token"
	"golang.org/x/sync/errgroup"
)

const (
	SRC_SUFFIX = ".er"
	IR_SUFFIX  = ".ll"
	OPT_SUFFIX = "_opt.ll"
	ASM_SUFFIX = ".s"
	EXE_SUFFIX = ".out"

	STDIN_NAME = "stdin"
)

// ErrDiagnostics reports that at least one file had compile errors. The
// errors themselves were already printed.
var ErrDiagnostics = errors.New("compilation failed")

// unit is one source file to compile.
type unit struct {
	Path   string // as given on the command line, "-" for stdin
	Name   string // module and output base name
	Source []byte
}

// unitResult holds either IR or diagnostics for one unit.
type unitResult struct {
	Unit   unit
	IR     string
	Errs   []*token.CompileError
	Cached bool
}

// displayName is used in diagnostics and as the module's source file name.
func (u unit) displayName() string {
	if u.Path == "-" {
		return "<stdin>"
	}
	return u.Path
}

func baseName(path string) string {
	if path == "-" {
		return STDIN_NAME
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// readUnits reads every path, "-" meaning stdin. Output base names must be
// unique since all artifacts land in one directory.
func readUnits(paths []string, stdin io.Reader) ([]unit, error) {
	units := make([]unit, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		var src []byte
		var err error
		if path == "-" {
			src, err = io.ReadAll(stdin)
		} else {
			src, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		name := baseName(path)
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("%s and %s both produce %s", prev, path, name)
		}
		seen[name] = path
		units = append(units, unit{Path: path, Name: name, Source: src})
	}
	return units, nil
}

// compileUnit parses and generates one unit, going through the cache when
// one is given. Only verified IR is cached.
func compileUnit(u unit, target string, cache *IRCache) (unitResult, error) {
	res := unitResult{Unit: u}
	key := cacheKey(u.displayName(), target, u.Source)
	srcHash := sourceHash(u.Source)

	if ir, ok, err := cache.Get(key, srcHash); err != nil {
		logWarning("CACHE", err.Error())
	} else if ok {
		logDebug("cache hit for %s", u.displayName())
		res.IR, res.Cached = ir, true
		return res, nil
	}

	program, errs := parser.Parse(u.displayName(), string(u.Source))
	if len(errs) > 0 {
		res.Errs = errs
		return res, nil
	}

	ir, errs, err := compiler.CompileToIR(program, compiler.Options{ModuleName: u.Name, Target: target})
	if err != nil {
		return res, fmt.Errorf("%s: %w", u.displayName(), err)
	}
	if len(errs) > 0 {
		res.Errs = errs
		return res, nil
	}
	res.IR = ir

	if err := cache.Put(key, u.Name, srcHash, ir); err != nil {
		logWarning("CACHE", err.Error())
	}
	return res, nil
}

// compileUnits compiles independent units concurrently. Results keep the
// order of units.
func compileUnits(ctx context.Context, units []unit, target string, jobs int, cache *IRCache) ([]unitResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]unitResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(units))))
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := compileUnit(u, target, cache)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// writeIR writes <outDir>/<name>.ll and returns its path.
func writeIR(outDir, name, ir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	outPath := filepath.Join(outDir, name+IR_SUFFIX)
	if err := os.WriteFile(outPath, []byte(ir), 0644); err != nil {
		return "", fmt.Errorf("write IR to %s: %w", outPath, err)
	}
	return outPath, nil
}

// toolchain turns IR into an executable with the external LLVM tools.
type toolchain struct {
	Opt      string
	LLC      string
	CC       string
	OptLevel string
	NoPIE    bool
}

func newToolchain(cfg BuildConfig) toolchain {
	return toolchain{Opt: cfg.Opt, LLC: cfg.LLC, CC: cfg.CC, OptLevel: cfg.OptLevel, NoPIE: cfg.NoPIE}
}

func (tc toolchain) optArgs(in, out string) []string {
	return []string{"-S", tc.OptLevel, in, "-o", out}
}

func (tc toolchain) llcArgs(in, out string) []string {
	args := []string{in, "-o", out}
	if !tc.NoPIE {
		args = append(args, "-relocation-model=pic")
	}
	return args
}

func (tc toolchain) linkArgs(in, out string) []string {
	args := []string{in, "-o", out}
	if tc.NoPIE {
		args = append(args, "-no-pie")
	}
	return args
}

// missingTools lists the configured programs not found in PATH.
func (tc toolchain) missingTools() []string {
	var missing []string
	for _, tool := range []string{tc.Opt, tc.LLC, tc.CC} {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	return missing
}

func (tc toolchain) run(ctx context.Context, stage, tool string, args []string) error {
	logDebug("%s %s", tool, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, tool, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w\n%s", stage, err, output)
	}
	return nil
}

// genBinary runs opt, llc and the C compiler over irFile and returns the
// path of the executable:
//
//	opt -S -O1 name.ll -o name_opt.ll
//	llc name_opt.ll -o name.s
//	clang name.s -o name.out -no-pie
func (tc toolchain) genBinary(ctx context.Context, irFile, outDir, name string) (string, error) {
	optFile := filepath.Join(outDir, name+OPT_SUFFIX)
	asmFile := filepath.Join(outDir, name+ASM_SUFFIX)
	exeFile := filepath.Join(outDir, name+EXE_SUFFIX)

	if err := tc.run(ctx, "optimization", tc.Opt, tc.optArgs(irFile, optFile)); err != nil {
		return "", err
	}
	if err := tc.run(ctx, "assembly generation", tc.LLC, tc.llcArgs(optFile, asmFile)); err != nil {
		return "", err
	}
	if err := tc.run(ctx, "linking", tc.CC, tc.linkArgs(asmFile, exeFile)); err != nil {
		return "", err
	}
	return exeFile, nil
}
