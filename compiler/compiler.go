package compiler

import (
	"fmt"

	"github.com/easyrust/easyrust/ast"
	"github.com/easyrust/easyrust/token"
	"tinygo.org/x/go-llvm"
)

type Compiler struct {
	Scopes  []Scope[*Symbol]
	Context llvm.Context
	Module  llvm.Module
	builder llvm.Builder
	Funcs   map[string]*FuncSig
	fn      *FuncSig                // function whose body is being generated
	preds   map[llvm.BasicBlock]int // incoming edges emitted through br/condBr
	strings map[string]llvm.Value   // constant string globals by contents
	Errors  []*token.CompileError
}

func NewCompiler(ctx llvm.Context, moduleName string) *Compiler {
	module := ctx.NewModule(moduleName)
	builder := ctx.NewBuilder()

	return &Compiler{
		Scopes:  []Scope[*Symbol]{},
		Context: ctx,
		Module:  module,
		builder: builder,
		Funcs:   make(map[string]*FuncSig),
		preds:   make(map[llvm.BasicBlock]int),
		strings: make(map[string]llvm.Value),
		Errors:  []*token.CompileError{},
	}
}

// Dispose releases the builder and the module. The context belongs to the caller.
func (c *Compiler) Dispose() {
	c.builder.Dispose()
	c.Module.Dispose()
}

func (c *Compiler) GenerateIR() string {
	return c.Module.String()
}

func (c *Compiler) errorf(tok token.Token, kind token.ErrorKind, format string, args ...any) error {
	return token.Errorf(tok, kind, format, args...)
}

func (c *Compiler) createEntryBlockAlloca(ty llvm.Type, name string) llvm.Value {
	current := c.builder.GetInsertBlock()
	fn := current.Parent()
	entry := fn.EntryBasicBlock()
	first := entry.FirstInstruction()

	if first.IsNil() {
		c.builder.SetInsertPointAtEnd(entry)
	} else {
		c.builder.SetInsertPointBefore(first)
	}

	alloca := c.builder.CreateAlloca(ty, name)
	c.builder.SetInsertPointAtEnd(current)
	return alloca
}

func (c *Compiler) compileStatement(stmt ast.Statement) error {
	if _, ok := stmt.(*ast.FuncStatement); !ok {
		c.ensureOpenBlock()
	}

	switch s := stmt.(type) {
	case *ast.LetStatement:
		return c.compileLetStatement(s)
	case *ast.AssignStatement:
		return c.compileAssignStatement(s)
	case *ast.PrintStatement:
		return c.compilePrintStatement(s)
	case *ast.ReturnStatement:
		return c.compileReturnStatement(s)
	case *ast.IfStatement:
		return c.compileIfStatement(s)
	case *ast.WhileStatement:
		return c.compileWhileStatement(s)
	case *ast.ForStatement:
		return c.compileForStatement(s)
	case *ast.FuncStatement:
		return c.compileFuncStatement(s)
	case *ast.BlockStatement:
		return c.compileBlock(s)
	case *ast.ExpressionStatement:
		_, err := c.compileExpression(s.Expression)
		return err
	default:
		panic(fmt.Sprintf("Cannot handle statement type %T", s))
	}
}

// compileBlock stops at the first failing statement.
func (c *Compiler) compileBlock(block *ast.BlockStatement) error {
	for _, stmt := range block.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileLetStatement(stmt *ast.LetStatement) error {
	name := stmt.Name.Value
	typ, err := c.resolveType(stmt.Type)
	if err != nil {
		return err
	}
	if typ == Void {
		return c.errorf(stmt.Type.Token, token.UnsupportedType, "variable %s cannot have type void", name)
	}
	if _, exists := GetLocal(c.Scopes, name); exists {
		return c.errorf(stmt.Name.Token, token.DuplicateDeclaration, "%s redeclared in %s", name, c.fn.Name)
	}

	value, err := c.compileExpression(stmt.Value)
	if err != nil {
		return err
	}
	value, err = c.coerce(stmt.Value.Tok(), value, typ, "declaration of "+name)
	if err != nil {
		return err
	}

	sym := &Symbol{Name: name, Type: typ, LLVMType: c.llvmType(typ)}
	sym.Ptr = c.createEntryBlockAlloca(sym.LLVMType, name)
	c.builder.CreateStore(value.Val, sym.Ptr)
	return c.declare(stmt.Name.Token, sym)
}

// compileAssignStatement resolves the target first so an undefined name
// stops the statement before anything is emitted.
func (c *Compiler) compileAssignStatement(stmt *ast.AssignStatement) error {
	sym, err := c.resolve(stmt.Name.Token, stmt.Name.Value)
	if err != nil {
		return err
	}

	value, err := c.compileExpression(stmt.Value)
	if err != nil {
		return err
	}
	value, err = c.coerce(stmt.Value.Tok(), value, sym.Type, "assignment to "+sym.Name)
	if err != nil {
		return err
	}
	c.builder.CreateStore(value.Val, sym.Ptr)
	return nil
}

func (c *Compiler) compilePrintStatement(ps *ast.PrintStatement) error {
	value, err := c.compileExpression(ps.Value)
	if err != nil {
		return err
	}
	format, arg, err := c.printArg(ps.Value.Tok(), value)
	if err != nil {
		return err
	}
	c.printf([]llvm.Value{c.constString(format), arg})
	return nil
}

func (c *Compiler) compileReturnStatement(rs *ast.ReturnStatement) error {
	sig := c.fn
	if sig.Return == Void {
		if rs.Value != nil {
			return c.errorf(rs.Token, token.InvalidReturn, "too many return values: %s returns nothing", sig.Name)
		}
		c.builder.CreateRetVoid()
		return nil
	}

	if rs.Value == nil {
		return c.errorf(rs.Token, token.InvalidReturn, "missing return value: %s returns %s", sig.Name, sig.Return)
	}
	value, err := c.compileExpression(rs.Value)
	if err != nil {
		return err
	}
	value, err = c.coerce(rs.Value.Tok(), value, sig.Return, "return from "+sig.Name)
	if err != nil {
		return err
	}
	c.builder.CreateRet(value.Val)
	return nil
}
