package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/easyrust/easyrust/parser"
	"github.com/easyrust/easyrust/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaretOffset(t *testing.T) {
	tests := []struct {
		line   string
		column int
		want   int
	}{
		{"let x: int = y;", 14, 13},
		{"x", 1, 0},
		{"\tprint(y);", 8, 10},
		{`print("日本" + 1);`, 13, 14},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, caretOffset(tt.line, tt.column), tt.line)
	}
}

func TestDiagPrinter(t *testing.T) {
	src := "let a: int = 1;\nlet b: int = a + \"s\";\n"
	errs := []*token.CompileError{
		token.Errorf(token.Token{FileName: "main.er", Line: 2, Column: 16}, token.IncompatibleTypes, "invalid operation: int + string"),
	}

	var buf bytes.Buffer
	n := newDiagPrinter(&buf, false, 0).Print(src, errs)
	assert.Equal(t, 1, n)
	assert.Equal(t, "main.er:2:16: IncompatibleTypes: invalid operation: int + string\n"+
		"    let b: int = a + \"s\";\n"+
		"                   ^\n", buf.String())
}

func TestDiagPrinterLimit(t *testing.T) {
	_, errs := parser.Parse("bad.er", "let = 1;\nlet = 2;\nlet = 3;\n")
	require.Len(t, errs, 3)

	var buf bytes.Buffer
	n := newDiagPrinter(&buf, false, 2).Print("", errs)
	assert.Equal(t, 2, n)
	assert.Contains(t, buf.String(), "bad.er:1:5: SyntaxError:")
	assert.Contains(t, buf.String(), "too many errors (1 more)")
	assert.NotContains(t, buf.String(), "bad.er:3")
}

func TestUseColor(t *testing.T) {
	assert.True(t, useColor(colorOn, os.Stdout))
	assert.False(t, useColor(colorOff, os.Stdout))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, useColor(colorAuto, f), "regular files are not terminals")
}
