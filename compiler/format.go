package compiler

import (
	"fmt"

	"github.com/easyrust/easyrust/token"
	"tinygo.org/x/go-llvm"
)

// Print formats. Ints are widened to double and share the float format,
// so print(3) writes 3.000000.
const (
	floatFormat  = "%f\n"
	stringFormat = "%s\n"
	concatFormat = "%s%s"
)

// printArg picks the printf format for op and converts the value when the
// format needs it.
func (c *Compiler) printArg(tok token.Token, op Operand) (format string, arg llvm.Value, err error) {
	switch op.Type {
	case Int:
		return floatFormat, c.builder.CreateSIToFP(op.Val, c.Context.DoubleType(), "print_widen"), nil
	case Float:
		return floatFormat, op.Val, nil
	case String:
		return stringFormat, op.Val, nil
	}
	return "", llvm.Value{}, c.errorf(tok, token.UnsupportedType, "cannot print value of type %s", op.Type)
}

// constString returns a pointer to a private constant holding value.
// Equal contents share one global.
func (c *Compiler) constString(value string) llvm.Value {
	global, ok := c.strings[value]
	if !ok {
		name := fmt.Sprintf("str.%d", len(c.strings))
		global = c.createGlobalString(name, value, llvm.PrivateLinkage)
		c.strings[value] = global
	}
	zero := llvm.ConstInt(c.Context.Int64Type(), 0, false)
	arrType := llvm.ArrayType(c.Context.Int8Type(), len(value)+1)
	return c.builder.CreateGEP(arrType, global, []llvm.Value{zero, zero}, "str_ptr")
}

func (c *Compiler) createGlobalString(name, value string, linkage llvm.Linkage) llvm.Value {
	strConst := c.Context.ConstString(value, true)
	arrType := llvm.ArrayType(c.Context.Int8Type(), len(value)+1)
	return c.makeGlobalConst(arrType, name, strConst, linkage)
}

func (c *Compiler) makeGlobalConst(llvmType llvm.Type, name string, val llvm.Value, linkage llvm.Linkage) llvm.Value {
	global := llvm.AddGlobal(c.Module, llvmType, name)
	global.SetInitializer(val)
	global.SetLinkage(linkage)
	global.SetUnnamedAddr(true)
	global.SetGlobalConstant(true)
	return global
}
