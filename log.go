package main

import (
	"os"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightCyan
	InfoStyleBG    = pterm.NewStyle(pterm.BgLightCyan, pterm.FgBlack)
)

// verbose enables debug lines. Set from --verbose.
var verbose bool

func setupLogging(colored, debug bool) {
	verbose = debug
	if colored {
		pterm.EnableColor()
	} else {
		pterm.DisableColor()
	}
	if debug {
		pterm.EnableDebugMessages()
	}
}

func logError(tag string, err error) {
	ErrorStyleBG.Print(" " + tag + " ")
	ErrorColorFG.Println(" " + err.Error())
}

func logWarning(tag, msg string) {
	WarnStyleBG.Print(" " + tag + " ")
	WarnColorFG.Println(" " + msg)
}

func logInfo(tag, msg string) {
	InfoStyleBG.Print(" " + tag + " ")
	InfoColorFG.Println(" " + msg)
}

func logSuccess(tag, msg string) {
	SuccessStyleBG.Print(" " + tag + " ")
	SuccessColorFG.Println(" " + msg)
}

func logDebug(format string, args ...any) {
	if verbose {
		pterm.Debug.Printfln(format, args...)
	}
}

// startSpinner shows a progress spinner on interactive terminals only.
func startSpinner(text string) *pterm.SpinnerPrinter {
	if !isTerminal(os.Stdout) {
		return nil
	}
	spinner, err := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG)).Start(text)
	if err != nil {
		return nil
	}
	return spinner
}
