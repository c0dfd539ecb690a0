package compiler

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/easyrust/easyrust/ast"
	"github.com/easyrust/easyrust/token"
	"tinygo.org/x/go-llvm"
)

func (c *Compiler) compileExpression(expr ast.Expression) (Operand, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return c.compileIntegerLiteral(e)
	case *ast.FloatLiteral:
		return Operand{Val: llvm.ConstFloat(c.Context.DoubleType(), e.Value), Type: Float}, nil
	case *ast.BooleanLiteral:
		var v uint64
		if e.Value {
			v = 1
		}
		return Operand{Val: llvm.ConstInt(c.Context.Int1Type(), v, false), Type: Bool}, nil
	case *ast.StringLiteral:
		return Operand{Val: c.constString(e.Value), Type: String}, nil
	case *ast.Identifier:
		return c.compileIdentifier(e)
	case *ast.GroupedExpression:
		return c.compileExpression(e.Inner)
	case *ast.PrefixExpression:
		return c.compilePrefixExpression(e)
	case *ast.InfixExpression:
		return c.compileInfixExpression(e)
	case *ast.CallExpression:
		return c.compileCallExpression(e)
	default:
		panic(fmt.Sprintf("unsupported expression type %T", e))
	}
}

func (c *Compiler) compileIntegerLiteral(il *ast.IntegerLiteral) (Operand, error) {
	v, err := safecast.Conv[int32](il.Value)
	if err != nil {
		return Operand{}, c.errorf(il.Token, token.UnsupportedType, "integer literal %d overflows int", il.Value)
	}
	return Operand{Val: llvm.ConstInt(c.Context.Int32Type(), uint64(int64(v)), true), Type: Int}, nil
}

func (c *Compiler) compileIdentifier(ident *ast.Identifier) (Operand, error) {
	sym, err := c.resolve(ident.Token, ident.Value)
	if err != nil {
		return Operand{}, err
	}
	return Operand{Val: c.builder.CreateLoad(sym.LLVMType, sym.Ptr, ident.Value+"_val"), Type: sym.Type}, nil
}

func (c *Compiler) compilePrefixExpression(expr *ast.PrefixExpression) (Operand, error) {
	if expr.Operator != token.SUB.String() {
		return Operand{}, c.errorf(expr.Token, token.UnsupportedOperator, "unknown unary operator %s", expr.Operator)
	}
	operand, err := c.compileExpression(expr.Right)
	if err != nil {
		return Operand{}, err
	}
	return c.negate(expr.Token, operand)
}

// compileInfixExpression lowers left before right.
func (c *Compiler) compileInfixExpression(expr *ast.InfixExpression) (Operand, error) {
	left, err := c.compileExpression(expr.Left)
	if err != nil {
		return Operand{}, err
	}
	right, err := c.compileExpression(expr.Right)
	if err != nil {
		return Operand{}, err
	}
	return c.binaryOp(expr.Token, expr.Operator, left, right)
}

// compileCondition lowers a branch condition, which must be a bool.
func (c *Compiler) compileCondition(expr ast.Expression) (llvm.Value, error) {
	cond, err := c.compileExpression(expr)
	if err != nil {
		return llvm.Value{}, err
	}
	if cond.Type != Bool {
		return llvm.Value{}, c.errorf(expr.Tok(), token.IncompatibleTypes, "non-bool %s (type %s) used as condition", expr, cond.Type)
	}
	return cond.Val, nil
}
