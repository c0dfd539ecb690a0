package compiler

import (
	"github.com/easyrust/easyrust/ast"
	"github.com/easyrust/easyrust/token"
	"tinygo.org/x/go-llvm"
)

// Type is a logical source type.
type Type int

const (
	Invalid Type = iota
	Int
	Float
	Bool
	String
	Void
)

var typeNames = [...]string{
	Invalid: "<invalid>",
	Int:     "int",
	Float:   "float",
	Bool:    "bool",
	String:  "string",
	Void:    "void",
}

func (t Type) String() string {
	if Invalid <= t && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return typeNames[Invalid]
}

// TypeFromName maps a source type name to its logical type.
func TypeFromName(name string) (Type, bool) {
	for t := Int; int(t) < len(typeNames); t++ {
		if typeNames[t] == name {
			return t, true
		}
	}
	return Invalid, false
}

func (c *Compiler) resolveType(tn *ast.TypeName) (Type, error) {
	t, ok := TypeFromName(tn.Name)
	if !ok {
		return Invalid, c.errorf(tn.Token, token.UnsupportedType, "unknown type %s", tn.Name)
	}
	return t, nil
}

// llvmType returns the machine type for t. Invalid never reaches code
// generation, so hitting it is a compiler bug.
func (c *Compiler) llvmType(t Type) llvm.Type {
	switch t {
	case Int:
		return c.Context.Int32Type()
	case Float:
		return c.Context.DoubleType()
	case Bool:
		return c.Context.Int1Type()
	case String:
		return llvm.PointerType(c.Context.Int8Type(), 0)
	case Void:
		return c.Context.VoidType()
	default:
		panic("no machine type for " + t.String())
	}
}

type coerceFunc func(c *Compiler, v llvm.Value) llvm.Value

// coercions lists every implicit conversion between distinct types.
// Pairs missing here are incompatible.
var coercions = map[[2]Type]coerceFunc{
	{Int, Float}: func(c *Compiler, v llvm.Value) llvm.Value {
		return c.builder.CreateSIToFP(v, c.Context.DoubleType(), "int_to_float")
	},
	// truncates toward zero
	{Float, Int}: func(c *Compiler, v llvm.Value) llvm.Value {
		return c.builder.CreateFPToSI(v, c.Context.Int32Type(), "float_to_int")
	},
}

// coerce converts op to the type to. It is the single conversion routine
// for initialization, assignment, return and argument passing; site names
// the context for diagnostics.
func (c *Compiler) coerce(tok token.Token, op Operand, to Type, site string) (Operand, error) {
	if op.Type == to && to != Void {
		return op, nil
	}
	fn, ok := coercions[[2]Type{op.Type, to}]
	if !ok {
		return Operand{}, c.errorf(tok, token.IncompatibleTypes, "cannot use %s value as %s in %s", op.Type, to, site)
	}
	return Operand{Val: fn(c, op.Val), Type: to}, nil
}
