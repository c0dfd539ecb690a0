package compiler

import (
	"github.com/easyrust/easyrust/ast"
	"tinygo.org/x/go-llvm"
)

// Symbol is a variable with its stack slot.
type Symbol struct {
	Name     string
	Type     Type
	LLVMType llvm.Type
	Ptr      llvm.Value // alloca in the entry block of the owning function
}

// Operand is the result of lowering an expression. A Void operand has no
// usable Val.
type Operand struct {
	Val  llvm.Value
	Type Type
}

// FuncSig is a function registered in the module namespace before any
// body is generated.
type FuncSig struct {
	Name       string
	Return     Type
	Params     []Type
	ParamNames []string
	Fn         llvm.Value
	FnType     llvm.Type
	Decl       *ast.FuncStatement // nil for main
}
