package compiler

import (
	"github.com/easyrust/easyrust/ast"
)

// compileIfStatement emits
//
//	cond:  br %c, if.then, if.else (or if.end)
//	then:  ...; br if.end
//	else:  ...; br if.end
//	if.end
//
// Branches that already returned do not jump to if.end. When both do,
// if.end has no predecessors.
func (c *Compiler) compileIfStatement(stmt *ast.IfStatement) error {
	cond, err := c.compileCondition(stmt.Condition)
	if err != nil {
		return err
	}

	thenBlock := c.newBlock("if.then")
	mergeBlock := c.newBlock("if.end")
	elseBlock := mergeBlock
	if stmt.Else != nil {
		elseBlock = c.newBlock("if.else")
	}
	c.condBr(cond, thenBlock, elseBlock)

	c.enterBlock(thenBlock)
	if err := c.compileBlock(stmt.Then); err != nil {
		return err
	}
	c.branchIfOpen(mergeBlock)

	if stmt.Else != nil {
		c.enterBlock(elseBlock)
		if err := c.compileBlock(stmt.Else); err != nil {
			return err
		}
		c.branchIfOpen(mergeBlock)
	}

	c.enterBlock(mergeBlock)
	return nil
}
