package lexer

import (
	"testing"

	"github.com/easyrust/easyrust/token"
	"github.com/stretchr/testify/require"
)

type Test struct {
	expectedType    token.TokenType
	expectedLiteral string
}

func checkInput(t *testing.T, input string, tests []Test) {
	t.Helper()
	l := New("test.er", input)

	for i, tt := range tests {
		tok := l.NextToken()
		require.Equal(t, tt.expectedType, tok.Type, "tests[%d] - tokentype wrong (literal %q)", i, tok.Literal)
		require.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d] - literal wrong", i)
	}
}

func TestNextToken(t *testing.T) {
	input := `// adds two ints
fn add(a: int, b: int): int {
    return a + b;
}
let r: int = add(2, 3);
print(r);
if r >= 5 { print("big\n"); } else { print(1.5); }
while r != 0 { r = r - 1; }
let ok: bool = true == false;
x <= 3 * 4 / 2 < 1 > 0;
`

	tests := []Test{
		{token.FN, "fn"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COLON, ":"},
		{token.IDENT, "int"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.COLON, ":"},
		{token.IDENT, "int"},
		{token.RPAREN, ")"},
		{token.COLON, ":"},
		{token.IDENT, "int"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "a"},
		{token.ADD, "+"},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.LET, "let"},
		{token.IDENT, "r"},
		{token.COLON, ":"},
		{token.IDENT, "int"},
		{token.ASSIGN, "="},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.INT, "2"},
		{token.COMMA, ","},
		{token.INT, "3"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.PRINT, "print"},
		{token.LPAREN, "("},
		{token.IDENT, "r"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.IF, "if"},
		{token.IDENT, "r"},
		{token.GEQ, ">="},
		{token.INT, "5"},
		{token.LBRACE, "{"},
		{token.PRINT, "print"},
		{token.LPAREN, "("},
		{token.STRING, `big\n`},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.PRINT, "print"},
		{token.LPAREN, "("},
		{token.FLOAT, "1.5"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.WHILE, "while"},
		{token.IDENT, "r"},
		{token.NEQ, "!="},
		{token.INT, "0"},
		{token.LBRACE, "{"},
		{token.IDENT, "r"},
		{token.ASSIGN, "="},
		{token.IDENT, "r"},
		{token.SUB, "-"},
		{token.INT, "1"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.LET, "let"},
		{token.IDENT, "ok"},
		{token.COLON, ":"},
		{token.IDENT, "bool"},
		{token.ASSIGN, "="},
		{token.TRUE, "true"},
		{token.EQL, "=="},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "x"},
		{token.LEQ, "<="},
		{token.INT, "3"},
		{token.MUL, "*"},
		{token.INT, "4"},
		{token.QUO, "/"},
		{token.INT, "2"},
		{token.LSS, "<"},
		{token.INT, "1"},
		{token.GTR, ">"},
		{token.INT, "0"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}

	checkInput(t, input, tests)
}

func TestPositions(t *testing.T) {
	l := New("pos.er", "let x: int = 1;\n  print(x);")

	tok := l.NextToken()
	require.Equal(t, token.LET, tok.Type)
	require.Equal(t, "pos.er", tok.FileName)
	require.Equal(t, 1, tok.Line)
	require.Equal(t, 1, tok.Column)

	tok = l.NextToken()
	require.Equal(t, "x", tok.Literal)
	require.Equal(t, 5, tok.Column)

	for tok.Type != token.PRINT {
		tok = l.NextToken()
	}
	require.Equal(t, 2, tok.Line)
	require.Equal(t, 3, tok.Column)
}

func TestIllegal(t *testing.T) {
	checkInput(t, `! @ "open`, []Test{
		{token.ILLEGAL, "!"},
		{token.ILLEGAL, "@"},
		{token.ILLEGAL, `"open`},
		{token.EOF, ""},
	})
}

func TestNumberBeforeDot(t *testing.T) {
	// A trailing dot without digits is not part of the number.
	checkInput(t, "3.", []Test{
		{token.INT, "3"},
		{token.ILLEGAL, "."},
	})
}
