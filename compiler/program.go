package compiler

import (
	"errors"
	"fmt"

	"github.com/easyrust/easyrust/ast"
	"github.com/easyrust/easyrust/token"
	"tinygo.org/x/go-llvm"
)

// Options configure one compilation.
type Options struct {
	ModuleName string
	Target     string // target triple, empty for the host default
}

type ProgramCompiler struct {
	Compiler *Compiler
	Program  *ast.Program
	main     *FuncSig
}

func NewProgramCompiler(ctx llvm.Context, moduleName string, program *ast.Program) *ProgramCompiler {
	return &ProgramCompiler{
		Compiler: NewCompiler(ctx, moduleName),
		Program:  program,
	}
}

func (c *Compiler) addError(err error) {
	var ce *token.CompileError
	if !errors.As(err, &ce) {
		panic(fmt.Sprintf("internal compiler error: %v", err))
	}
	c.Errors = append(c.Errors, ce)
}

// addMain creates `i32 main()` and its scope frame. Top-level statements
// are generated into it.
func (pc *ProgramCompiler) addMain() {
	c := pc.Compiler
	mainType := llvm.FunctionType(c.Context.Int32Type(), []llvm.Type{}, false)
	mainFunc := llvm.AddFunction(c.Module, MAIN, mainType)
	mainBlock := c.Context.AddBasicBlock(mainFunc, "entry")
	c.builder.SetInsertPointAtEnd(mainBlock)

	pc.main = &FuncSig{Name: MAIN, Return: Int, Fn: mainFunc, FnType: mainType}
	c.fn = pc.main
	c.enterFuncScope(MAIN)
}

// addRet adds the implicit `ret i32 0` when main falls off its end.
func (pc *ProgramCompiler) addRet() {
	c := pc.Compiler
	if !c.isTerminated(c.builder.GetInsertBlock()) {
		c.builder.CreateRet(llvm.ConstInt(c.Context.Int32Type(), 0, false))
	}
}

// Compile generates the whole program. A top-level statement that fails
// is recorded and skipped; generation goes on with the next one. The
// module is only usable when no errors are returned.
func (pc *ProgramCompiler) Compile() []*token.CompileError {
	c := pc.Compiler
	pc.addMain()
	defer c.exitFuncScope()

	c.registerFuncs(pc.Program.Statements)

	for _, stmt := range pc.Program.Statements {
		if err := c.compileStatement(stmt); err != nil {
			c.addError(err)
		}
	}

	pc.addRet()
	return c.Errors
}

// Verify runs the block check and the LLVM verifier over every generated
// function, then over the module.
func (pc *ProgramCompiler) Verify() error {
	c := pc.Compiler
	funcs := []*FuncSig{pc.main}
	for _, stmt := range collectFuncs(pc.Program.Statements, nil) {
		if sig, ok := c.Funcs[stmt.Name.Value]; ok && sig.Decl == stmt {
			funcs = append(funcs, sig)
		}
	}

	for _, sig := range funcs {
		if err := checkBlocks(sig.Fn); err != nil {
			return err
		}
		if err := llvm.VerifyFunction(sig.Fn, llvm.ReturnStatusAction); err != nil {
			return fmt.Errorf("%w: function %s: %v", ErrVerification, sig.Name, err)
		}
	}
	if err := llvm.VerifyModule(c.Module, llvm.ReturnStatusAction); err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return nil
}

// CompileToIR compiles program in a fresh context and returns verified IR
// text. Diagnostics and IR are never returned together; a non-nil error
// wraps ErrVerification.
func CompileToIR(program *ast.Program, opts Options) (string, []*token.CompileError, error) {
	ctx := llvm.NewContext()
	defer ctx.Dispose()

	pc := NewProgramCompiler(ctx, opts.ModuleName, program)
	defer pc.Compiler.Dispose()
	if opts.Target != "" {
		pc.Compiler.Module.SetTarget(opts.Target)
	}

	if errs := pc.Compile(); len(errs) > 0 {
		return "", errs, nil
	}
	if err := pc.Verify(); err != nil {
		return "", nil, err
	}
	return pc.Compiler.GenerateIR(), nil, nil
}
