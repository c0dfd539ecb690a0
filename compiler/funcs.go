package compiler

import (
	"slices"

	"github.com/easyrust/easyrust/ast"
	"github.com/easyrust/easyrust/token"
	"tinygo.org/x/go-llvm"
)

const MAIN = "main"

// registerFuncs declares every function of the program, nested ones
// included, so calls resolve regardless of declaration order. Failures
// are recorded and the function is left out of the namespace.
func (c *Compiler) registerFuncs(stmts []ast.Statement) {
	for _, fs := range collectFuncs(stmts, nil) {
		if err := c.registerFunc(fs); err != nil {
			c.addError(err)
		}
	}
}

// collectFuncs lists function declarations in source order, nested ones
// after their parent.
func collectFuncs(stmts []ast.Statement, out []*ast.FuncStatement) []*ast.FuncStatement {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.FuncStatement:
			out = append(out, s)
			out = collectFuncs(s.Body.Statements, out)
		case *ast.BlockStatement:
			out = collectFuncs(s.Statements, out)
		case *ast.IfStatement:
			out = collectFuncs(s.Then.Statements, out)
			if s.Else != nil {
				out = collectFuncs(s.Else.Statements, out)
			}
		case *ast.WhileStatement:
			out = collectFuncs(s.Body.Statements, out)
		case *ast.ForStatement:
			out = collectFuncs(s.Body.Statements, out)
		}
	}
	return out
}

func (c *Compiler) registerFunc(fs *ast.FuncStatement) error {
	name := fs.Name.Value
	if name == MAIN || slices.Contains(runtimeFuncs, name) {
		return c.errorf(fs.Name.Token, token.DuplicateDeclaration, "function name %s is reserved", name)
	}
	if prev, ok := c.Funcs[name]; ok {
		prevTok := prev.Decl.Name.Token
		return c.errorf(fs.Name.Token, token.DuplicateDeclaration, "function %s redeclared, previous declaration at %d:%d", name, prevTok.Line, prevTok.Column)
	}

	sig := &FuncSig{Name: name, Return: Void, Decl: fs}
	if fs.ReturnType != nil {
		ret, err := c.resolveType(fs.ReturnType)
		if err != nil {
			return err
		}
		sig.Return = ret
	}

	paramTypes := make([]llvm.Type, 0, len(fs.Parameters))
	for _, p := range fs.Parameters {
		t, err := c.resolveType(p.Type)
		if err != nil {
			return err
		}
		if t == Void {
			return c.errorf(p.Type.Token, token.UnsupportedType, "parameter %s cannot have type void", p.Name.Value)
		}
		sig.Params = append(sig.Params, t)
		sig.ParamNames = append(sig.ParamNames, p.Name.Value)
		paramTypes = append(paramTypes, c.llvmType(t))
	}

	sig.FnType = llvm.FunctionType(c.llvmType(sig.Return), paramTypes, false)
	sig.Fn = llvm.AddFunction(c.Module, name, sig.FnType)
	c.Funcs[name] = sig
	return nil
}

// compileFuncStatement generates the body of a registered function in its
// own scope frame and restores the caller's insertion point afterwards.
func (c *Compiler) compileFuncStatement(fs *ast.FuncStatement) error {
	sig, ok := c.Funcs[fs.Name.Value]
	if !ok || sig.Decl != fs {
		// registration failed and was already reported
		return nil
	}

	saved := c.builder.GetInsertBlock()
	caller := c.fn
	defer func() {
		c.fn = caller
		c.builder.SetInsertPointAtEnd(saved)
	}()

	c.fn = sig
	c.enterFuncScope(sig.Name)
	defer c.exitFuncScope()

	entry := c.Context.AddBasicBlock(sig.Fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)

	for i, p := range fs.Parameters {
		param := sig.Fn.Param(i)
		param.SetName(p.Name.Value)

		sym := &Symbol{Name: p.Name.Value, Type: sig.Params[i], LLVMType: c.llvmType(sig.Params[i])}
		sym.Ptr = c.createEntryBlockAlloca(sym.LLVMType, p.Name.Value+".addr")
		c.builder.CreateStore(param, sym.Ptr)
		if err := c.declare(p.Name.Token, sym); err != nil {
			return err
		}
	}

	if err := c.compileBlock(fs.Body); err != nil {
		return err
	}
	return c.finishFunc(fs, entry)
}

// finishFunc terminates the last open block. Void functions fall through
// to an implicit return. Any other function reaching its end is an error,
// unless the end is unreachable.
func (c *Compiler) finishFunc(fs *ast.FuncStatement, entry llvm.BasicBlock) error {
	last := c.builder.GetInsertBlock()
	if c.isTerminated(last) {
		return nil
	}
	if c.fn.Return == Void {
		c.builder.CreateRetVoid()
		return nil
	}
	if last != entry && !c.hasPredecessors(last) {
		c.builder.CreateUnreachable()
		return nil
	}
	return c.errorf(fs.Name.Token, token.InvalidReturn, "missing return at end of %s, which returns %s", c.fn.Name, c.fn.Return)
}

func (c *Compiler) compileCallExpression(ce *ast.CallExpression) (Operand, error) {
	name := ce.Function.Value
	sig, ok := c.Funcs[name]
	if !ok {
		if sym, isVar := Get(c.Scopes, name); isVar {
			return Operand{}, c.errorf(ce.Function.Token, token.MalformedCall, "cannot call non-function %s (variable of type %s)", name, sym.Type)
		}
		return Operand{}, c.errorf(ce.Function.Token, token.UndefinedSymbol, "undefined function: %s", name)
	}
	if len(ce.Arguments) != len(sig.Params) {
		return Operand{}, c.errorf(ce.Token, token.MalformedCall, "%s expects %d arguments, got %d", name, len(sig.Params), len(ce.Arguments))
	}

	args := make([]llvm.Value, 0, len(ce.Arguments))
	for i, argExpr := range ce.Arguments {
		arg, err := c.compileExpression(argExpr)
		if err != nil {
			return Operand{}, err
		}
		arg, err = c.coerce(argExpr.Tok(), arg, sig.Params[i], "argument "+sig.ParamNames[i]+" of "+name)
		if err != nil {
			return Operand{}, err
		}
		args = append(args, arg.Val)
	}

	resName := ""
	if sig.Return != Void {
		resName = name + "_result"
	}
	return Operand{Val: c.builder.CreateCall(sig.FnType, sig.Fn, args, resName), Type: sig.Return}, nil
}
