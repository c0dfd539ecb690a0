package token

import "fmt"

// ErrorKind classifies a diagnostic.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	UnsupportedType
	UndefinedSymbol
	DuplicateDeclaration
	IncompatibleTypes
	InvalidReturn
	UnsupportedOperator
	MalformedCall
)

var errorKinds = [...]string{
	SyntaxError:          "SyntaxError",
	UnsupportedType:      "UnsupportedType",
	UndefinedSymbol:      "UndefinedSymbol",
	DuplicateDeclaration: "DuplicateDeclaration",
	IncompatibleTypes:    "IncompatibleTypes",
	InvalidReturn:        "InvalidReturn",
	UnsupportedOperator:  "UnsupportedOperator",
	MalformedCall:        "MalformedCall",
}

func (k ErrorKind) String() string {
	if 0 <= k && int(k) < len(errorKinds) {
		return errorKinds[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// CompileError is a diagnostic attached to the token where it was detected.
type CompileError struct {
	Token Token
	Kind  ErrorKind
	Msg   string
}

func (ce *CompileError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", ce.Token.FileName, ce.Token.Line, ce.Token.Column, ce.Kind, ce.Msg)
}

// Errorf builds a CompileError of the given kind at tok.
func Errorf(tok Token, kind ErrorKind, format string, args ...any) *CompileError {
	return &CompileError{
		Token: tok,
		Kind:  kind,
		Msg:   fmt.Sprintf(format, args...),
	}
}
