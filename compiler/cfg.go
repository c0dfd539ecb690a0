package compiler

import (
	"errors"
	"fmt"

	"tinygo.org/x/go-llvm"
)

// ErrVerification marks IR that fails structural or LLVM verification.
// It always indicates a bug in code generation, never in the program.
var ErrVerification = errors.New("IR verification failed")

func isTerminator(inst llvm.Value) bool {
	switch inst.InstructionOpcode() {
	case llvm.Ret, llvm.Br, llvm.Switch, llvm.IndirectBr, llvm.Invoke, llvm.Unreachable:
		return true
	}
	return false
}

func (c *Compiler) isTerminated(bb llvm.BasicBlock) bool {
	last := bb.LastInstruction()
	return !last.IsNil() && isTerminator(last)
}

func (c *Compiler) currentFunction() llvm.Value {
	return c.builder.GetInsertBlock().Parent()
}

func (c *Compiler) newBlock(name string) llvm.BasicBlock {
	return c.Context.AddBasicBlock(c.currentFunction(), name)
}

// br and condBr are the only ways code generation wires edges, so preds
// stays an exact count of incoming edges per block.
func (c *Compiler) br(target llvm.BasicBlock) {
	c.builder.CreateBr(target)
	c.preds[target]++
}

func (c *Compiler) condBr(cond llvm.Value, then, otherwise llvm.BasicBlock) {
	c.builder.CreateCondBr(cond, then, otherwise)
	c.preds[then]++
	c.preds[otherwise]++
}

// branchIfOpen jumps to target unless the current block already ended.
func (c *Compiler) branchIfOpen(target llvm.BasicBlock) {
	if !c.isTerminated(c.builder.GetInsertBlock()) {
		c.br(target)
	}
}

func (c *Compiler) hasPredecessors(bb llvm.BasicBlock) bool {
	return c.preds[bb] > 0
}

// ensureOpenBlock starts a fresh block when the current one is already
// terminated, e.g. for statements after a return. The new block has no
// predecessors.
func (c *Compiler) ensureOpenBlock() {
	if c.isTerminated(c.builder.GetInsertBlock()) {
		c.builder.SetInsertPointAtEnd(c.newBlock("dead"))
	}
}

// enterBlock moves bb to the end of the function and continues there, so
// blocks print in source order.
func (c *Compiler) enterBlock(bb llvm.BasicBlock) {
	fn := bb.Parent()
	if last := fn.LastBasicBlock(); last != bb {
		bb.MoveAfter(last)
	}
	c.builder.SetInsertPointAtEnd(bb)
}

// checkBlocks verifies that every block of fn ends in exactly one
// terminator.
func checkBlocks(fn llvm.Value) error {
	for _, bb := range fn.BasicBlocks() {
		terminators := 0
		var last llvm.Value
		for inst := bb.FirstInstruction(); !inst.IsNil(); inst = llvm.NextInstruction(inst) {
			if terminators > 0 {
				return fmt.Errorf("%w: %s: block %s has instructions after its terminator", ErrVerification, fn.Name(), bb.AsValue().Name())
			}
			if isTerminator(inst) {
				terminators++
			}
			last = inst
		}
		if last.IsNil() || terminators != 1 {
			return fmt.Errorf("%w: %s: block %s has no terminator", ErrVerification, fn.Name(), bb.AsValue().Name())
		}
	}
	return nil
}
