package compiler

import "tinygo.org/x/go-llvm"

const (
	PRINTF   = "printf"
	STRLEN   = "strlen"
	MALLOC   = "malloc"
	SNPRINTF = "snprintf"
)

// runtimeFuncs are C library symbols the generated code links against.
// User functions may not take these names.
var runtimeFuncs = []string{PRINTF, STRLEN, MALLOC, SNPRINTF}

// GetFnType returns the LLVM FunctionType for a C runtime helper.
func (c *Compiler) GetFnType(name string) llvm.Type {
	charPtr := llvm.PointerType(c.Context.Int8Type(), 0)
	i32 := c.Context.Int32Type()
	sizeT := c.Context.Int64Type()

	switch name {
	case PRINTF:
		return llvm.FunctionType(i32, []llvm.Type{charPtr}, true)
	case STRLEN:
		return llvm.FunctionType(sizeT, []llvm.Type{charPtr}, false)
	case MALLOC:
		return llvm.FunctionType(charPtr, []llvm.Type{sizeT}, false)
	case SNPRINTF:
		return llvm.FunctionType(i32, []llvm.Type{charPtr, sizeT, charPtr}, true)
	default:
		panic("Unknown function name " + name)
	}
}

// GetCFunc declares name in the module on first use.
func (c *Compiler) GetCFunc(name string) (llvm.Type, llvm.Value) {
	fnType := c.GetFnType(name)
	fn := c.Module.NamedFunction(name)
	if fn.IsNil() {
		fn = llvm.AddFunction(c.Module, name, fnType)
	}

	return fnType, fn
}

func (c *Compiler) callC(name string, args []llvm.Value, resName string) llvm.Value {
	fnType, fn := c.GetCFunc(name)
	return c.builder.CreateCall(fnType, fn, args, resName)
}

func (c *Compiler) printf(args []llvm.Value) {
	c.callC(PRINTF, args, "")
}

// concat joins two strings into a fresh heap buffer sized from both
// lengths. The buffer is never freed.
func (c *Compiler) concat(left, right llvm.Value) llvm.Value {
	leftLen := c.callC(STRLEN, []llvm.Value{left}, "len_l")
	rightLen := c.callC(STRLEN, []llvm.Value{right}, "len_r")
	size := c.builder.CreateAdd(leftLen, rightLen, "len_sum")
	size = c.builder.CreateAdd(size, llvm.ConstInt(c.Context.Int64Type(), 1, false), "buf_size")

	buf := c.callC(MALLOC, []llvm.Value{size}, "concat_buf")
	format := c.constString(concatFormat)
	c.callC(SNPRINTF, []llvm.Value{buf, size, format, left, right}, "")
	return buf
}
