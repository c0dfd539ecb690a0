package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "easyrust",
	Short:         "EasyRust compiler",
	Long:          `easyrust compiles EasyRust programs to LLVM IR and native executables`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var emitCmd = &cobra.Command{
	Use:   "emit [flags] <file.er|-> ...",
	Short: "Write verified LLVM IR for each file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(cmd, args, modeEmit)
	},
}

var buildCmd = &cobra.Command{
	Use:   "build [flags] <file.er|-> ...",
	Short: "Compile each file to an executable with opt, llc and clang",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(cmd, args, modeBuild)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.er|-> ...",
	Short: "Report diagnostics without writing anything",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(cmd, args, modeCheck)
	},
}

var cleanCacheCmd = &cobra.Command{
	Use:   "clean-cache",
	Short: "Remove cached IR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := defaultCacheDir()
		cache, err := openCache(dir)
		if err != nil {
			return err
		}
		if err := cache.Clean(); err != nil {
			return err
		}
		logSuccess("CACHE", "removed "+filepath.Join(dir, irDir))
		return nil
	},
}

type compileMode int

const (
	modeCheck compileMode = iota
	modeEmit
	modeBuild
)

// cached entries older than a week are pruned, but the newest survive
const (
	cacheKeep   = 256
	cacheMinAge = 7 * 24 * time.Hour
)

func init() {
	rootCmd.Version = Version
	rootCmd.AddCommand(emitCmd, buildCmd, checkCmd, cleanCacheCmd, versionCmd)

	rootCmd.PersistentFlags().String("color", colorAuto, "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to easyrust.toml (default: nearest one above the working directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print debug output")

	for _, cmd := range []*cobra.Command{emitCmd, buildCmd, checkCmd} {
		cmd.Flags().Int("jobs", 0, "max files compiled in parallel (0=auto)")
		cmd.Flags().String("target", "", "target triple written into the module")
		cmd.Flags().Bool("no-cache", false, "bypass the IR cache")
		cmd.Flags().Int("max-diagnostics", 100, "maximum number of diagnostics shown per file (0=all)")
	}
	for _, cmd := range []*cobra.Command{emitCmd, buildCmd} {
		cmd.Flags().StringP("out-dir", "o", "", "directory for generated files")
	}
	buildCmd.Flags().String("opt", "", "optimization level passed to opt (-O0..-O3)")
}

// loadSettings resolves the configuration: flags override easyrust.toml,
// which overrides the defaults.
func loadSettings(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := resolveConfig(configPath, cwd)
	if err != nil {
		return Config{}, err
	}

	if flags.Changed("color") {
		if cfg.Output.Color, err = flags.GetString("color"); err != nil {
			return Config{}, err
		}
	}
	if flags.Changed("jobs") {
		if cfg.Build.Jobs, err = flags.GetInt("jobs"); err != nil {
			return Config{}, err
		}
	}
	if flags.Changed("target") {
		if cfg.Build.Target, err = flags.GetString("target"); err != nil {
			return Config{}, err
		}
	}
	if flags.Changed("max-diagnostics") {
		if cfg.Output.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return Config{}, err
		}
	}
	if flags.Lookup("out-dir") != nil && flags.Changed("out-dir") {
		if cfg.Build.OutDir, err = flags.GetString("out-dir"); err != nil {
			return Config{}, err
		}
	}
	if flags.Lookup("opt") != nil && flags.Changed("opt") {
		if cfg.Build.OptLevel, err = flags.GetString("opt"); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func runCompile(cmd *cobra.Command, paths []string, mode compileMode) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	debug, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	setupLogging(useColor(cfg.Output.Color, os.Stdout), debug)
	if cfg.Path != "" {
		logDebug("using %s", cfg.Path)
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	var cache *IRCache
	if !noCache {
		if cache, err = openCache(defaultCacheDir()); err != nil {
			logWarning("CACHE", err.Error())
		} else if n, err := cache.Prune(cacheKeep, cacheMinAge); err != nil {
			logWarning("CACHE", err.Error())
		} else if n > 0 {
			logDebug("pruned %d cache entries", n)
		}
	}

	units, err := readUnits(paths, cmd.InOrStdin())
	if err != nil {
		return err
	}

	spinner := startSpinner(fmt.Sprintf("Compiling %d file(s)", len(units)))
	results, err := compileUnits(cmd.Context(), units, cfg.Build.Target, cfg.Build.Jobs, cache)
	if spinner != nil {
		if err != nil {
			spinner.Fail("Compilation aborted")
		} else {
			spinner.Success(fmt.Sprintf("Compiled %d file(s)", len(units)))
		}
	}
	if err != nil {
		return err
	}

	printer := newDiagPrinter(os.Stderr, useColor(cfg.Output.Color, os.Stderr), cfg.Output.MaxDiagnostics)
	failed := 0
	for _, res := range results {
		if len(res.Errs) > 0 {
			printer.Print(string(res.Unit.Source), res.Errs)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d file(s) had errors", ErrDiagnostics, failed, len(results))
	}
	if mode == modeCheck {
		logSuccess("OK", fmt.Sprintf("%d file(s) checked", len(results)))
		return nil
	}

	var tc toolchain
	if mode == modeBuild {
		tc = newToolchain(cfg.Build)
		if missing := tc.missingTools(); len(missing) > 0 {
			return fmt.Errorf("required tools not found in PATH: %s", strings.Join(missing, ", "))
		}
	}
	for _, res := range results {
		irFile, err := writeIR(cfg.Build.OutDir, res.Unit.Name, res.IR)
		if err != nil {
			return err
		}
		if mode == modeEmit {
			logInfo("IR", irFile)
			continue
		}
		exe, err := tc.genBinary(cmd.Context(), irFile, cfg.Build.OutDir, res.Unit.Name)
		if err != nil {
			return fmt.Errorf("%s: %w", res.Unit.displayName(), err)
		}
		logSuccess("BUILD", exe)
	}
	return nil
}

// exitCode maps a command error to the process status: 1 for
// diagnostics, 2 for everything else.
func exitCode(err error) int {
	if errors.Is(err, ErrDiagnostics) {
		return 1
	}
	return 2
}

func execute(args []string, stdin io.Reader) error {
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	return rootCmd.Execute()
}

func main() {
	if err := execute(os.Args[1:], os.Stdin); err != nil {
		tag := "ERROR"
		if errors.Is(err, ErrDiagnostics) {
			tag = "FAILED"
		}
		logError(tag, err)
		os.Exit(exitCode(err))
	}
}
