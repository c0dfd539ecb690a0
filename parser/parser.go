package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/easyrust/easyrust/ast"
	"github.com/easyrust/easyrust/lexer"
	"github.com/easyrust/easyrust/token"
)

const (
	_ int = iota
	LOWEST
	EQUALS      // == or !=
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	PREFIX      // -X
	CALL        // myFunction(X)
)

var precedences = map[token.TokenType]int{
	token.EQL:    EQUALS,
	token.NEQ:    EQUALS,
	token.LSS:    LESSGREATER,
	token.GTR:    LESSGREATER,
	token.LEQ:    LESSGREATER,
	token.GEQ:    LESSGREATER,
	token.ADD:    SUM,
	token.SUB:    SUM,
	token.QUO:    PRODUCT,
	token.MUL:    PRODUCT,
	token.LPAREN: CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []*token.CompileError

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []*token.CompileError{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.SUB, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, t := range []token.TokenType{
		token.ADD, token.SUB, token.MUL, token.QUO,
		token.EQL, token.NEQ, token.LSS, token.GTR, token.LEQ, token.GEQ,
	} {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse is a convenience wrapper that lexes and parses src.
func Parse(fileName, src string) (*ast.Program, []*token.CompileError) {
	p := New(lexer.New(fileName, src))
	program := p.ParseProgram()
	return program, p.Errors()
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) Errors() []*token.CompileError {
	return p.errors
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	p.errors = append(p.errors, token.Errorf(tok, token.SyntaxError, format, args...))
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorf(p.peekToken, "expected next token to be %s, got %s instead", t, p.peekToken)
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.errorf(tok, "unexpected %s in expression", tok)
}

// synchronize skips to the end of the broken statement so one mistake
// yields one diagnostic.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.FN:
		return p.parseFuncStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.PRINT:
		return p.parsePrintStatement()
	default:
		return p.parseSimpleStatement(token.SEMICOLON)
	}
}

// parseSimpleStatement parses a let, an assignment or an expression
// statement, ending on the end token.
func (p *Parser) parseSimpleStatement(end token.TokenType) ast.Statement {
	switch {
	case p.curTokenIs(token.LET):
		return p.parseLetStatement(end)
	case p.curTokenIs(token.IDENT) && p.peekTokenIs(token.ASSIGN):
		return p.parseAssignStatement(end)
	default:
		return p.parseExpressionStatement(end)
	}
}

func (p *Parser) parseLetStatement(end token.TokenType) ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.COLON) {
		return nil
	}
	if stmt.Type = p.parseTypeName(); stmt.Type == nil {
		return nil
	}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}

	p.nextToken()
	if stmt.Value = p.parseExpression(LOWEST); stmt.Value == nil {
		return nil
	}
	if !p.expectPeek(end) {
		return nil
	}
	return stmt
}

func (p *Parser) parseAssignStatement(end token.TokenType) ast.Statement {
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	p.nextToken()
	stmt := &ast.AssignStatement{Token: p.curToken, Name: name}

	p.nextToken()
	if stmt.Value = p.parseExpression(LOWEST); stmt.Value == nil {
		return nil
	}
	if !p.expectPeek(end) {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement(end token.TokenType) ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	if stmt.Expression = p.parseExpression(LOWEST); stmt.Expression == nil {
		return nil
	}
	if !p.expectPeek(end) {
		return nil
	}
	return stmt
}

func (p *Parser) parsePrintStatement() ast.Statement {
	stmt := &ast.PrintStatement{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	if stmt.Value = p.parseExpression(LOWEST); stmt.Value == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) || !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	if stmt.Value = p.parseExpression(LOWEST); stmt.Value == nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	if stmt.Condition = p.parseExpression(LOWEST); stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	if stmt.Then = p.parseBlockStatement(); stmt.Then == nil {
		return nil
	}

	if !p.peekTokenIs(token.ELSE) {
		return stmt
	}
	p.nextToken()

	if p.peekTokenIs(token.IF) {
		p.nextToken()
		inner := p.parseIfStatement()
		if inner == nil {
			return nil
		}
		stmt.Else = &ast.BlockStatement{Token: inner.Tok(), Statements: []ast.Statement{inner}}
		return stmt
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	if stmt.Else = p.parseBlockStatement(); stmt.Else == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	if stmt.Condition = p.parseExpression(LOWEST); stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	if stmt.Body = p.parseBlockStatement(); stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForStatement parses `for (init; cond; post) { ... }`.
func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	p.nextToken()
	if !p.curTokenIs(token.SEMICOLON) {
		if stmt.Init = p.parseSimpleStatement(token.SEMICOLON); stmt.Init == nil {
			return nil
		}
	}

	p.nextToken()
	if !p.curTokenIs(token.SEMICOLON) {
		if stmt.Condition = p.parseExpression(LOWEST); stmt.Condition == nil {
			return nil
		}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
	}

	p.nextToken()
	if !p.curTokenIs(token.RPAREN) {
		if stmt.Post = p.parseSimpleStatement(token.RPAREN); stmt.Post == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	if stmt.Body = p.parseBlockStatement(); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseFuncStatement() ast.Statement {
	stmt := &ast.FuncStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	stmt.Parameters = params

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if stmt.ReturnType = p.parseTypeName(); stmt.ReturnType == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	if stmt.Body = p.parseBlockStatement(); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseFunctionParameters() ([]*ast.Parameter, bool) {
	params := []*ast.Parameter{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		param := &ast.Parameter{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		if !p.expectPeek(token.COLON) {
			return nil, false
		}
		if param.Type = p.parseTypeName(); param.Type == nil {
			return nil, false
		}
		params = append(params, param)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return params, true
}

// parseTypeName expects the type name as the next token.
func (p *Parser) parseTypeName() *ast.TypeName {
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	return &ast.TypeName{Token: p.curToken, Name: p.curToken.Literal}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf(p.curToken, "expected } to close block opened at %d:%d", block.Token.Line, block.Token.Column)
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}

	return block
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

// parseIntegerLiteral rejects values that do not fit the 32-bit int type.
func (p *Parser) parseIntegerLiteral() ast.Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 32)
	if err != nil {
		p.errorf(p.curToken, "integer literal %s does not fit in int", p.curToken.Literal)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf(p.curToken, "could not parse %q as float", p.curToken.Literal)
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	value, err := unescape(p.curToken.Literal)
	if err != nil {
		p.errorf(p.curToken, "%v", err)
		return nil
	}
	return &ast.StringLiteral{Token: p.curToken, Value: value}
}

func unescape(raw string) (string, error) {
	if !strings.ContainsRune(raw, '\\') {
		return raw, nil
	}
	var sb strings.Builder
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			sb.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		default:
			return "", fmt.Errorf("unknown escape sequence \\%c", runes[i])
		}
	}
	return sb.String(), nil
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	if expression.Right = p.parseExpression(PREFIX); expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	if expression.Right = p.parseExpression(precedence); expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	group := &ast.GroupedExpression{Token: p.curToken}
	p.nextToken()

	if group.Inner = p.parseExpression(LOWEST); group.Inner == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return group
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	ident, ok := function.(*ast.Identifier)
	if !ok {
		p.errorf(p.curToken, "cannot call %s: only named functions can be called", function)
		return nil
	}
	exp := &ast.CallExpression{Token: p.curToken, Function: ident}
	args, ok := p.parseCallArguments()
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

func (p *Parser) parseCallArguments() ([]ast.Expression, bool) {
	args := []ast.Expression{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args, true
	}

	p.nextToken()
	for {
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return args, true
}
