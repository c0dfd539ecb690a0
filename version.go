package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Build-time variables injected via linker flags (ldflags).
//
//	go build -ldflags "-X main.Version=$(git describe --tags) -X main.Commit=..." -o easyrust
var (
	Version   = "dev"     // git tag, e.g. "v0.3.0"
	Commit    = "unknown" // git commit hash
	BuildDate = "unknown" // build timestamp
)

var versionColor = color.New(color.FgGreen, color.Bold)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the easyrust version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "easyrust %s (%s/%s)\n", versionColor.Sprint(Version), runtime.GOOS, runtime.GOARCH)
	if Commit != "unknown" {
		fmt.Fprintf(w, "  commit: %s\n", Commit)
	}
	if BuildDate != "unknown" {
		fmt.Fprintf(w, "  built:  %s\n", BuildDate)
	}
}
