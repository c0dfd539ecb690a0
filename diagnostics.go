package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/easyrust/easyrust/token"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves an auto|on|off setting for f.
func useColor(mode string, f *os.File) bool {
	switch mode {
	case colorOn:
		return true
	case colorOff:
		return false
	}
	return isTerminal(f)
}

// diagPrinter renders compile errors as
//
//	main.er:3:7: UndefinedSymbol: undefined: x
//	    let y: int = x + 1;
//	                 ^
type diagPrinter struct {
	w     io.Writer
	limit int // 0 means no limit

	pos   *color.Color
	kind  *color.Color
	caret *color.Color
}

func newDiagPrinter(w io.Writer, colored bool, limit int) *diagPrinter {
	p := &diagPrinter{
		w:     w,
		limit: limit,
		pos:   color.New(color.Bold),
		kind:  color.New(color.FgRed, color.Bold),
		caret: color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.pos, p.kind, p.caret} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Print writes errs against source and returns how many were shown.
func (p *diagPrinter) Print(source string, errs []*token.CompileError) int {
	lines := strings.Split(source, "\n")
	shown := 0
	for _, e := range errs {
		if p.limit > 0 && shown == p.limit {
			fmt.Fprintf(p.w, "too many errors (%d more)\n", len(errs)-shown)
			break
		}
		p.printOne(lines, e)
		shown++
	}
	return shown
}

func (p *diagPrinter) printOne(lines []string, e *token.CompileError) {
	tok := e.Token
	fmt.Fprintf(p.w, "%s %s %s\n",
		p.pos.Sprintf("%s:%d:%d:", tok.FileName, tok.Line, tok.Column),
		p.kind.Sprintf("%s:", e.Kind),
		e.Msg)

	if tok.Line < 1 || tok.Line > len(lines) {
		return
	}
	line := strings.TrimRight(lines[tok.Line-1], "\r")
	fmt.Fprintf(p.w, "    %s\n", expandTabs(line))
	fmt.Fprintf(p.w, "    %s%s\n", strings.Repeat(" ", caretOffset(line, tok.Column)), p.caret.Sprint("^"))
}

// caretOffset is the display width of line before the 1-based rune column.
func caretOffset(line string, column int) int {
	width := 0
	for i, r := range []rune(line) {
		if i >= column-1 {
			break
		}
		if r == '\t' {
			width += tabWidth
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}

const tabWidth = 4

func expandTabs(line string) string {
	return strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
}
