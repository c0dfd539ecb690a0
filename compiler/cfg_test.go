package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/go-llvm"
)

// newTestFunc returns a compiler positioned in the entry block of an
// empty `void f()`.
func newTestFunc(t *testing.T) (*Compiler, llvm.Value) {
	t.Helper()
	ctx := llvm.NewContext()
	c := NewCompiler(ctx, "cfg")
	t.Cleanup(func() {
		c.Dispose()
		ctx.Dispose()
	})

	fnType := llvm.FunctionType(ctx.VoidType(), []llvm.Type{}, false)
	fn := llvm.AddFunction(c.Module, "f", fnType)
	entry := ctx.AddBasicBlock(fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)
	c.fn = &FuncSig{Name: "f", Return: Void, Fn: fn, FnType: fnType}
	return c, fn
}

func TestCheckBlocks(t *testing.T) {
	t.Run("Terminated", func(t *testing.T) {
		c, fn := newTestFunc(t)
		next := c.newBlock("next")
		c.br(next)
		c.enterBlock(next)
		c.builder.CreateRetVoid()

		require.NoError(t, checkBlocks(fn))
	})

	t.Run("MissingTerminator", func(t *testing.T) {
		c, fn := newTestFunc(t)
		c.createEntryBlockAlloca(c.Context.Int32Type(), "x")

		err := checkBlocks(fn)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrVerification)
		assert.Contains(t, err.Error(), "block entry has no terminator")
	})

	t.Run("EmptyBlock", func(t *testing.T) {
		c, fn := newTestFunc(t)
		c.builder.CreateRetVoid()
		c.newBlock("empty")

		err := checkBlocks(fn)
		assert.ErrorIs(t, err, ErrVerification)
	})

	t.Run("InstructionAfterTerminator", func(t *testing.T) {
		c, fn := newTestFunc(t)
		c.builder.CreateRetVoid()
		c.builder.CreateRetVoid()

		err := checkBlocks(fn)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrVerification)
		assert.Contains(t, err.Error(), "after its terminator")
	})
}

func TestPredecessorTracking(t *testing.T) {
	c, _ := newTestFunc(t)
	then := c.newBlock("then")
	other := c.newBlock("other")
	orphan := c.newBlock("orphan")

	cond := llvm.ConstInt(c.Context.Int1Type(), 1, false)
	c.condBr(cond, then, other)
	c.enterBlock(then)
	c.br(other)

	assert.True(t, c.hasPredecessors(then))
	assert.True(t, c.hasPredecessors(other))
	assert.Equal(t, 2, c.preds[other])
	assert.False(t, c.hasPredecessors(orphan))
}

func TestEnsureOpenBlock(t *testing.T) {
	c, fn := newTestFunc(t)
	entry := fn.EntryBasicBlock()

	c.ensureOpenBlock()
	assert.Equal(t, entry, c.builder.GetInsertBlock(), "open block is kept")

	c.builder.CreateRetVoid()
	assert.True(t, c.isTerminated(entry))

	c.ensureOpenBlock()
	dead := c.builder.GetInsertBlock()
	assert.NotEqual(t, entry, dead)
	assert.Equal(t, "dead", dead.AsValue().Name())
	assert.False(t, c.hasPredecessors(dead))

	c.builder.CreateRetVoid()
	require.NoError(t, checkBlocks(fn))
}

func TestBranchIfOpen(t *testing.T) {
	c, fn := newTestFunc(t)
	exit := c.newBlock("exit")

	c.builder.CreateRetVoid()
	c.branchIfOpen(exit)
	assert.False(t, c.hasPredecessors(exit), "terminated block must not branch")

	c.enterBlock(exit)
	c.builder.CreateRetVoid()
	require.NoError(t, checkBlocks(fn))
}

func TestEnterBlockOrdersBlocks(t *testing.T) {
	c, fn := newTestFunc(t)
	late := c.newBlock("late")
	early := c.newBlock("early")

	c.br(early)
	c.enterBlock(early)
	c.br(late)
	c.enterBlock(late)
	c.builder.CreateRetVoid()

	var names []string
	for _, bb := range fn.BasicBlocks() {
		names = append(names, bb.AsValue().Name())
	}
	assert.Equal(t, []string{"entry", "early", "late"}, names)
}
