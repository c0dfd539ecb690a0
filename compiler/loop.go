package compiler

import (
	"github.com/easyrust/easyrust/ast"
	"tinygo.org/x/go-llvm"
)

// Loop holds the blocks of one loop.
type Loop struct {
	Cond llvm.BasicBlock
	Body llvm.BasicBlock
	Post llvm.BasicBlock // equals Cond for while loops
	Exit llvm.BasicBlock
}

func (c *Compiler) newLoop(prefix string, hasPost bool) Loop {
	l := Loop{
		Cond: c.newBlock(prefix + ".cond"),
		Body: c.newBlock(prefix + ".body"),
	}
	l.Post = l.Cond
	if hasPost {
		l.Post = c.newBlock(prefix + ".post")
	}
	l.Exit = c.newBlock(prefix + ".end")
	return l
}

// header emits the condition block. A nil condition loops forever and
// leaves Exit without predecessors.
func (c *Compiler) header(l Loop, condition ast.Expression) error {
	c.br(l.Cond)
	c.enterBlock(l.Cond)
	if condition == nil {
		c.br(l.Body)
		return nil
	}
	cond, err := c.compileCondition(condition)
	if err != nil {
		return err
	}
	c.condBr(cond, l.Body, l.Exit)
	return nil
}

func (c *Compiler) compileWhileStatement(stmt *ast.WhileStatement) error {
	l := c.newLoop("while", false)
	if err := c.header(l, stmt.Condition); err != nil {
		return err
	}

	c.enterBlock(l.Body)
	if err := c.compileBlock(stmt.Body); err != nil {
		return err
	}
	c.branchIfOpen(l.Cond)

	c.enterBlock(l.Exit)
	return nil
}

// compileForStatement lowers `for (init; cond; post) body`. Init runs in
// the current block and its variable lives in the function frame.
func (c *Compiler) compileForStatement(stmt *ast.ForStatement) error {
	if stmt.Init != nil {
		if err := c.compileStatement(stmt.Init); err != nil {
			return err
		}
	}

	l := c.newLoop("for", stmt.Post != nil)
	if err := c.header(l, stmt.Condition); err != nil {
		return err
	}

	c.enterBlock(l.Body)
	if err := c.compileBlock(stmt.Body); err != nil {
		return err
	}
	c.branchIfOpen(l.Post)

	if stmt.Post != nil {
		c.enterBlock(l.Post)
		if err := c.compileStatement(stmt.Post); err != nil {
			return err
		}
		c.br(l.Cond)
	}

	c.enterBlock(l.Exit)
	return nil
}
