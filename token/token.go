package token

import "strconv"

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	COMMENT

	literal_beg
	// Identifiers + literals
	IDENT  // add, foobar, x, y, ...
	INT    // 1343456
	FLOAT  // 123.45
	STRING // "abc"
	literal_end

	operator_beg
	// Operators and delimiters
	ASSIGN // =

	ADD // +
	SUB // -
	MUL // *
	QUO // /

	LPAREN // (
	LBRACE // {
	COMMA  // ,
	COLON  // :

	RPAREN    // )
	RBRACE    // }
	SEMICOLON // ;
	operator_end

	comparison_beg
	EQL // ==
	LSS // <
	GTR // >

	NEQ // !=
	LEQ // <=
	GEQ // >=
	comparison_end

	keyword_beg
	LET
	FN
	IF
	ELSE
	WHILE
	FOR
	RETURN
	PRINT
	TRUE
	FALSE
	keyword_end
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",

	EOF:     "EOF",
	COMMENT: "COMMENT",

	IDENT:  "IDENT",
	INT:    "INT",
	FLOAT:  "FLOAT",
	STRING: "STRING",

	ASSIGN: "=",

	ADD: "+",
	SUB: "-",
	MUL: "*",
	QUO: "/",

	LPAREN: "(",
	LBRACE: "{",
	COMMA:  ",",
	COLON:  ":",

	RPAREN:    ")",
	RBRACE:    "}",
	SEMICOLON: ";",

	EQL: "==",
	LSS: "<",
	GTR: ">",

	NEQ: "!=",
	LEQ: "<=",
	GEQ: ">=",

	LET:    "let",
	FN:     "fn",
	IF:     "if",
	ELSE:   "else",
	WHILE:  "while",
	FOR:    "for",
	RETURN: "return",
	PRINT:  "print",
	TRUE:   "true",
	FALSE:  "false",
}

var keywords map[string]TokenType

func init() {
	keywords = make(map[string]TokenType, keyword_end-keyword_beg)
	for i := keyword_beg + 1; i < keyword_end; i++ {
		keywords[tokens[i]] = i
	}
}

// LookupIdent maps an identifier to its keyword token type, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

type Token struct {
	Type     TokenType
	Literal  string
	FileName string
	Line     int
	Column   int
}

func (t Token) IsLiteral() bool {
	return literal_beg < t.Type && t.Type < literal_end
}

func (t Token) IsOperator() bool {
	return operator_beg < t.Type && t.Type < operator_end
}

func (t Token) IsComparison() bool {
	return comparison_beg < t.Type && comparison_end > t.Type
}

func (t Token) IsKeyword() bool {
	return keyword_beg < t.Type && t.Type < keyword_end
}

func (t Token) String() string {
	if t.Type == IDENT || t.IsLiteral() {
		return t.Literal
	}
	return t.Type.String()
}

func (tokenType TokenType) String() string {
	s := ""
	if 0 <= tokenType && tokenType < TokenType(len(tokens)) {
		s = tokens[tokenType]
	}

	if s == "" {
		s = "token(" + strconv.Itoa(int(tokenType)) + ")"
	}

	return s
}
