package lexer

import (
	"strings"

	"github.com/easyrust/easyrust/token"
)

type Lexer struct {
	FileName     string
	input        []rune
	position     int  // current position in input (points to current rune)
	readPosition int  // current reading position in input (after current rune)
	curr         rune // current rune under examination
	line         int
	column       int
}

func New(fileName, input string) *Lexer {
	l := &Lexer{FileName: fileName, input: []rune(input), line: 1}
	l.readRune()
	return l
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	line, col := l.line, l.column
	tok := l.scan()
	tok.FileName = l.FileName
	tok.Line = line
	tok.Column = col
	return tok
}

func (l *Lexer) scan() token.Token {
	switch l.curr {
	case '=':
		return l.twoRune('=', token.EQL, token.ASSIGN)
	case '!':
		return l.twoRune('=', token.NEQ, token.ILLEGAL)
	case '<':
		return l.twoRune('=', token.LEQ, token.LSS)
	case '>':
		return l.twoRune('=', token.GEQ, token.GTR)
	case '+':
		return l.single(token.ADD)
	case '-':
		return l.single(token.SUB)
	case '*':
		return l.single(token.MUL)
	case '/':
		return l.single(token.QUO)
	case '(':
		return l.single(token.LPAREN)
	case ')':
		return l.single(token.RPAREN)
	case '{':
		return l.single(token.LBRACE)
	case '}':
		return l.single(token.RBRACE)
	case ',':
		return l.single(token.COMMA)
	case ':':
		return l.single(token.COLON)
	case ';':
		return l.single(token.SEMICOLON)
	case '"':
		return l.readString()
	case 0:
		return token.Token{Type: token.EOF}
	}

	if isLetter(l.curr) {
		lit := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(lit), Literal: lit}
	}
	if isDigit(l.curr) {
		return l.readNumber()
	}
	return l.single(token.ILLEGAL)
}

func (l *Lexer) single(t token.TokenType) token.Token {
	tok := token.Token{Type: t, Literal: string(l.curr)}
	l.readRune()
	return tok
}

// twoRune reads an operator that is either one rune or that rune followed by next.
func (l *Lexer) twoRune(next rune, two, one token.TokenType) token.Token {
	first := l.curr
	if l.peekRune() == next {
		l.readRune()
		l.readRune()
		return token.Token{Type: two, Literal: string(first) + string(next)}
	}
	l.readRune()
	return token.Token{Type: one, Literal: string(first)}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.curr == ' ' || l.curr == '\t' || l.curr == '\n' || l.curr == '\r':
			l.readRune()
		case l.curr == '/' && l.peekRune() == '/':
			for l.curr != '\n' && l.curr != 0 {
				l.readRune()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readRune() {
	if l.curr == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.curr = 0
	} else {
		l.curr = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekRune() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.curr) || isDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

// readNumber reads an integer, or a float when a '.' followed by a digit appears.
func (l *Lexer) readNumber() token.Token {
	position := l.position
	for isDigit(l.curr) {
		l.readRune()
	}
	if l.curr != '.' || !isDigit(l.peekRune()) {
		return token.Token{Type: token.INT, Literal: string(l.input[position:l.position])}
	}
	l.readRune()
	for isDigit(l.curr) {
		l.readRune()
	}
	return token.Token{Type: token.FLOAT, Literal: string(l.input[position:l.position])}
}

// readString returns the raw text between the quotes. An unterminated
// string is ILLEGAL.
func (l *Lexer) readString() token.Token {
	l.readRune() // opening quote
	var sb strings.Builder
	for l.curr != '"' {
		if l.curr == 0 || l.curr == '\n' {
			return token.Token{Type: token.ILLEGAL, Literal: `"` + sb.String()}
		}
		if l.curr == '\\' {
			sb.WriteRune(l.curr)
			l.readRune()
			if l.curr == 0 {
				return token.Token{Type: token.ILLEGAL, Literal: `"` + sb.String()}
			}
		}
		sb.WriteRune(l.curr)
		l.readRune()
	}
	l.readRune() // closing quote
	return token.Token{Type: token.STRING, Literal: sb.String()}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
