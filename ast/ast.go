package ast

import (
	"bytes"
	"strings"

	"github.com/easyrust/easyrust/token"
)

// The base Node interface
type Node interface {
	Tok() token.Token
	String() string
}

// All statement nodes implement this
type Statement interface {
	Node
	statementNode()
}

// All expression nodes implement this
type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) Tok() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Tok()
	}
	return token.Token{Type: token.EOF}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

func joinExprs(a []Expression) string {
	parts := make([]string, 0, len(a))
	for _, e := range a {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}

// TypeName is a declared type as written in the source, e.g. `int`.
type TypeName struct {
	Token token.Token
	Name  string
}

func (tn *TypeName) Tok() token.Token { return tn.Token }
func (tn *TypeName) String() string   { return tn.Name }

// Statements
type LetStatement struct {
	Token token.Token // the token.LET token
	Name  *Identifier
	Type  *TypeName
	Value Expression
}

func (ls *LetStatement) statementNode()   {}
func (ls *LetStatement) Tok() token.Token { return ls.Token }
func (ls *LetStatement) String() string {
	return "let " + ls.Name.String() + ": " + ls.Type.String() + " = " + ls.Value.String() + ";"
}

type AssignStatement struct {
	Token token.Token // the token.ASSIGN token
	Name  *Identifier
	Value Expression
}

func (as *AssignStatement) statementNode()   {}
func (as *AssignStatement) Tok() token.Token { return as.Token }
func (as *AssignStatement) String() string {
	return as.Name.String() + " = " + as.Value.String() + ";"
}

type PrintStatement struct {
	Token token.Token // the token.PRINT token
	Value Expression
}

func (ps *PrintStatement) statementNode()   {}
func (ps *PrintStatement) Tok() token.Token { return ps.Token }
func (ps *PrintStatement) String() string {
	return "print(" + ps.Value.String() + ");"
}

type ReturnStatement struct {
	Token token.Token // the token.RETURN token
	Value Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()   {}
func (rs *ReturnStatement) Tok() token.Token { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return;"
	}
	return "return " + rs.Value.String() + ";"
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()   {}
func (es *ExpressionStatement) Tok() token.Token { return es.Token }
func (es *ExpressionStatement) String() string {
	return es.Expression.String() + ";"
}

type BlockStatement struct {
	Token      token.Token // the token.LBRACE token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()   {}
func (bs *BlockStatement) Tok() token.Token { return bs.Token }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

type IfStatement struct {
	Token     token.Token // the token.IF token
	Condition Expression
	Then      *BlockStatement
	Else      *BlockStatement // nil when absent; `else if` is desugared into a block holding one IfStatement
}

func (is *IfStatement) statementNode()   {}
func (is *IfStatement) Tok() token.Token { return is.Token }
func (is *IfStatement) String() string {
	s := "if " + is.Condition.String() + " " + is.Then.String()
	if is.Else != nil {
		s += " else " + is.Else.String()
	}
	return s
}

type WhileStatement struct {
	Token     token.Token // the token.WHILE token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()   {}
func (ws *WhileStatement) Tok() token.Token { return ws.Token }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + " " + ws.Body.String()
}

// ForStatement is a three clause loop. Every clause may be nil.
type ForStatement struct {
	Token     token.Token // the token.FOR token
	Init      Statement
	Condition Expression
	Post      Statement
	Body      *BlockStatement
}

func (fs *ForStatement) statementNode()   {}
func (fs *ForStatement) Tok() token.Token { return fs.Token }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if fs.Init != nil {
		out.WriteString(strings.TrimSuffix(fs.Init.String(), ";"))
	}
	out.WriteString("; ")
	if fs.Condition != nil {
		out.WriteString(fs.Condition.String())
	}
	out.WriteString("; ")
	if fs.Post != nil {
		out.WriteString(strings.TrimSuffix(fs.Post.String(), ";"))
	}
	out.WriteString(") ")
	out.WriteString(fs.Body.String())
	return out.String()
}

type Parameter struct {
	Name *Identifier
	Type *TypeName
}

func (p *Parameter) String() string {
	return p.Name.String() + ": " + p.Type.String()
}

type FuncStatement struct {
	Token      token.Token // the token.FN token
	Name       *Identifier
	Parameters []*Parameter
	ReturnType *TypeName // nil for void
	Body       *BlockStatement
}

func (fs *FuncStatement) statementNode()   {}
func (fs *FuncStatement) Tok() token.Token { return fs.Token }
func (fs *FuncStatement) String() string {
	params := make([]string, 0, len(fs.Parameters))
	for _, p := range fs.Parameters {
		params = append(params, p.String())
	}
	s := "fn " + fs.Name.String() + "(" + strings.Join(params, ", ") + ")"
	if fs.ReturnType != nil {
		s += ": " + fs.ReturnType.String()
	}
	return s + " " + fs.Body.String()
}

// Expressions
type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()  {}
func (i *Identifier) Tok() token.Token { return i.Token }
func (i *Identifier) String() string   { return i.Value }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()  {}
func (il *IntegerLiteral) Tok() token.Token { return il.Token }
func (il *IntegerLiteral) String() string   { return il.Token.Literal }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()  {}
func (fl *FloatLiteral) Tok() token.Token { return fl.Token }
func (fl *FloatLiteral) String() string   { return fl.Token.Literal }

type StringLiteral struct {
	Token token.Token
	Value string // unescaped contents
}

func (sl *StringLiteral) expressionNode()  {}
func (sl *StringLiteral) Tok() token.Token { return sl.Token }
func (sl *StringLiteral) String() string   { return `"` + sl.Token.Literal + `"` }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()  {}
func (bl *BooleanLiteral) Tok() token.Token { return bl.Token }
func (bl *BooleanLiteral) String() string   { return bl.Token.Literal }

type PrefixExpression struct {
	Token    token.Token // the prefix token, e.g. -
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()  {}
func (pe *PrefixExpression) Tok() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token // the operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()  {}
func (ie *InfixExpression) Tok() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

type CallExpression struct {
	Token     token.Token // the token.LPAREN token
	Function  *Identifier
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()  {}
func (ce *CallExpression) Tok() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExprs(ce.Arguments) + ")"
}

// GroupedExpression keeps explicit parentheses in the tree.
type GroupedExpression struct {
	Token token.Token // the token.LPAREN token
	Inner Expression
}

func (ge *GroupedExpression) expressionNode()  {}
func (ge *GroupedExpression) Tok() token.Token { return ge.Token }
func (ge *GroupedExpression) String() string   { return "(" + ge.Inner.String() + ")" }
