package compiler

import (
	"github.com/easyrust/easyrust/token"
	"tinygo.org/x/go-llvm"
)

// opKey is used as the key for operator functions.
type opKey struct {
	Operator  string
	LeftType  Type
	RightType Type
}

// opFunc lowers one binary operator on already lowered operands.
type opFunc func(c *Compiler, left, right Operand) Operand

// defaultOps maps an operator and its operand types to the function that
// lowers it. There is no implicit promotion: a pair missing from this
// table is rejected.
var defaultOps = map[opKey]opFunc{
	// --- Arithmetic Operators ---
	{Operator: token.ADD.String(), LeftType: Int, RightType: Int}: func(c *Compiler, left, right Operand) Operand {
		return Operand{Val: c.builder.CreateAdd(left.Val, right.Val, "add_tmp"), Type: Int}
	},
	{Operator: token.ADD.String(), LeftType: Float, RightType: Float}: func(c *Compiler, left, right Operand) Operand {
		return Operand{Val: c.builder.CreateFAdd(left.Val, right.Val, "fadd_tmp"), Type: Float}
	},
	{Operator: token.ADD.String(), LeftType: String, RightType: String}: func(c *Compiler, left, right Operand) Operand {
		return Operand{Val: c.concat(left.Val, right.Val), Type: String}
	},

	{Operator: token.SUB.String(), LeftType: Int, RightType: Int}: func(c *Compiler, left, right Operand) Operand {
		return Operand{Val: c.builder.CreateSub(left.Val, right.Val, "sub_tmp"), Type: Int}
	},
	{Operator: token.SUB.String(), LeftType: Float, RightType: Float}: func(c *Compiler, left, right Operand) Operand {
		return Operand{Val: c.builder.CreateFSub(left.Val, right.Val, "fsub_tmp"), Type: Float}
	},

	{Operator: token.MUL.String(), LeftType: Int, RightType: Int}: func(c *Compiler, left, right Operand) Operand {
		return Operand{Val: c.builder.CreateMul(left.Val, right.Val, "mul_tmp"), Type: Int}
	},
	{Operator: token.MUL.String(), LeftType: Float, RightType: Float}: func(c *Compiler, left, right Operand) Operand {
		return Operand{Val: c.builder.CreateFMul(left.Val, right.Val, "fmul_tmp"), Type: Float}
	},

	// sdiv truncates toward zero
	{Operator: token.QUO.String(), LeftType: Int, RightType: Int}: func(c *Compiler, left, right Operand) Operand {
		return Operand{Val: c.builder.CreateSDiv(left.Val, right.Val, "div_tmp"), Type: Int}
	},
	{Operator: token.QUO.String(), LeftType: Float, RightType: Float}: func(c *Compiler, left, right Operand) Operand {
		return Operand{Val: c.builder.CreateFDiv(left.Val, right.Val, "fdiv_tmp"), Type: Float}
	},
}

var intPredicates = map[string]llvm.IntPredicate{
	token.EQL.String(): llvm.IntEQ,
	token.NEQ.String(): llvm.IntNE,
	token.LSS.String(): llvm.IntSLT,
	token.GTR.String(): llvm.IntSGT,
	token.LEQ.String(): llvm.IntSLE,
	token.GEQ.String(): llvm.IntSGE,
}

// Ordered predicates: any comparison with NaN is false, != included.
var floatPredicates = map[string]llvm.FloatPredicate{
	token.EQL.String(): llvm.FloatOEQ,
	token.NEQ.String(): llvm.FloatONE,
	token.LSS.String(): llvm.FloatOLT,
	token.GTR.String(): llvm.FloatOGT,
	token.LEQ.String(): llvm.FloatOLE,
	token.GEQ.String(): llvm.FloatOGE,
}

func init() {
	for op, pred := range intPredicates {
		defaultOps[opKey{Operator: op, LeftType: Int, RightType: Int}] = func(c *Compiler, left, right Operand) Operand {
			return Operand{Val: c.builder.CreateICmp(pred, left.Val, right.Val, "cmp_tmp"), Type: Bool}
		}
	}
	for op, pred := range floatPredicates {
		defaultOps[opKey{Operator: op, LeftType: Float, RightType: Float}] = func(c *Compiler, left, right Operand) Operand {
			return Operand{Val: c.builder.CreateFCmp(pred, left.Val, right.Val, "fcmp_tmp"), Type: Bool}
		}
	}
	for _, op := range []string{token.EQL.String(), token.NEQ.String()} {
		pred := intPredicates[op]
		defaultOps[opKey{Operator: op, LeftType: Bool, RightType: Bool}] = func(c *Compiler, left, right Operand) Operand {
			return Operand{Val: c.builder.CreateICmp(pred, left.Val, right.Val, "bcmp_tmp"), Type: Bool}
		}
	}
}

func isArithmetic(op string) bool {
	switch op {
	case token.ADD.String(), token.SUB.String(), token.MUL.String(), token.QUO.String():
		return true
	}
	return false
}

func isComparison(op string) bool {
	_, ok := intPredicates[op]
	return ok
}

// binaryOp dispatches through defaultOps. A miss on a known operator is a
// type error, except comparisons of strings which the language does not
// define.
func (c *Compiler) binaryOp(tok token.Token, op string, left, right Operand) (Operand, error) {
	if fn, ok := defaultOps[opKey{Operator: op, LeftType: left.Type, RightType: right.Type}]; ok {
		return fn(c, left, right), nil
	}
	if !isArithmetic(op) && !isComparison(op) {
		return Operand{}, c.errorf(tok, token.UnsupportedOperator, "unknown operator %s", op)
	}
	if isComparison(op) && left.Type == String && right.Type == String {
		return Operand{}, c.errorf(tok, token.UnsupportedOperator, "operator %s is not defined on string", op)
	}
	return Operand{}, c.errorf(tok, token.IncompatibleTypes, "invalid operation: %s %s %s", left.Type, op, right.Type)
}

// negate lowers unary minus.
func (c *Compiler) negate(tok token.Token, operand Operand) (Operand, error) {
	switch operand.Type {
	case Int:
		zero := llvm.ConstInt(c.Context.Int32Type(), 0, false)
		return Operand{Val: c.builder.CreateSub(zero, operand.Val, "neg_tmp"), Type: Int}, nil
	case Float:
		return Operand{Val: c.builder.CreateFNeg(operand.Val, "fneg_tmp"), Type: Float}, nil
	}
	return Operand{}, c.errorf(tok, token.IncompatibleTypes, "invalid operation: -%s", operand.Type)
}
