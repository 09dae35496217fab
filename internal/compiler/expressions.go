package compiler

import (
	"atlas/internal/ast"
	"atlas/internal/bytecode"
	"atlas/internal/token"
)

func (c *Compiler) VisitBinary(b ast.Binary) any {
	c.compileExpr(b.Left)
	c.compileExpr(b.Right)
	op := binaryOp(b.Operator.TokenType)
	c.emitSpan(spanOf(b.Operator), op)
	return nil
}

func binaryOp(t token.TokenType) bytecode.Opcode {
	switch t {
	case token.ADD:
		return bytecode.OpAdd
	case token.SUB:
		return bytecode.OpSub
	case token.MULT:
		return bytecode.OpMul
	case token.DIV:
		return bytecode.OpDiv
	case token.MOD:
		return bytecode.OpMod
	case token.EQUAL_EQUAL:
		return bytecode.OpEqual
	case token.NOT_EQUAL:
		return bytecode.OpNotEqual
	case token.LESS:
		return bytecode.OpLess
	case token.LESS_EQUAL:
		return bytecode.OpLessEqual
	case token.LARGER:
		return bytecode.OpGreater
	case token.LARGER_EQUAL:
		return bytecode.OpGreaterEqual
	default:
		panic(SemanticError{Message: "unsupported binary operator " + string(t)})
	}
}

func (c *Compiler) VisitUnary(u ast.Unary) any {
	c.compileExpr(u.Right)
	switch u.Operator.TokenType {
	case token.BANG:
		c.emitSpan(spanOf(u.Operator), bytecode.OpNot)
	case token.SUB:
		c.emitSpan(spanOf(u.Operator), bytecode.OpNegate)
	default:
		panic(SemanticError{Message: "unsupported unary operator " + string(u.Operator.TokenType)})
	}
	return nil
}

func (c *Compiler) VisitLiteral(l ast.Literal) any {
	switch v := l.Value.(type) {
	case nil:
		c.emitSpan(spanOf(l.Pos), bytecode.OpNull)
	case bool:
		if v {
			c.emitSpan(spanOf(l.Pos), bytecode.OpTrue)
		} else {
			c.emitSpan(spanOf(l.Pos), bytecode.OpFalse)
		}
	default:
		idx := c.addConstant(v)
		c.emitSpan(spanOf(l.Pos), bytecode.OpConstant, idx)
	}
	return nil
}

func (c *Compiler) VisitGrouping(g ast.Grouping) any {
	c.compileExpr(g.Expression)
	return nil
}

func (c *Compiler) VisitVariable(v ast.Variable) any {
	c.loadName(v.Name.Lexeme)
	return nil
}

func (c *Compiler) VisitAssign(a ast.Assign) any {
	c.compileExpr(a.Value)
	c.storeName(a.Name.Lexeme)
	return nil
}

// VisitLogical lowers short-circuiting "and"/"or". JumpIfFalse pops its
// condition, so both branches Dup the left operand first in order to still
// have a copy available as the short-circuit result.
func (c *Compiler) VisitLogical(l ast.Logical) any {
	c.compileExpr(l.Left)
	c.emit(bytecode.OpDup)
	shortJump := c.emitPlaceholderJump(bytecode.OpJumpIfFalse)
	if l.Operator.TokenType == token.OR {
		// Left was truthy (duplicate already consumed by the jump test):
		// skip the right-hand side entirely, keeping the remaining Left
		// copy as the result.
		endJump := c.emitPlaceholderJump(bytecode.OpJump)
		c.patchJump(shortJump)
		c.emit(bytecode.OpPop)
		c.compileExpr(l.Right)
		c.patchJump(endJump)
		return nil
	}
	// "and": Left was truthy, discard it and evaluate Right.
	c.emit(bytecode.OpPop)
	c.compileExpr(l.Right)
	c.patchJump(shortJump)
	return nil
}

func (c *Compiler) VisitArrayLiteral(a ast.ArrayLiteral) any {
	for _, e := range a.Elements {
		c.compileExpr(e)
	}
	c.emitSpan(spanOf(a.Pos), bytecode.OpArray, len(a.Elements))
	return nil
}

func (c *Compiler) VisitIndex(i ast.Index) any {
	c.compileExpr(i.Target)
	c.compileExpr(i.Idx)
	c.emitSpan(spanOf(i.Pos), bytecode.OpGetIndex)
	return nil
}

// VisitTry lowers `expr?`: on Ok, extracts and yields the inner value; on
// Err, returns the whole Result from the enclosing function unchanged,
// propagating the error to the caller (spec §4.2's "Try" lowering).
func (c *Compiler) VisitTry(t ast.Try) any {
	c.compileExpr(t.Inner)
	c.emit(bytecode.OpDup)
	c.emit(bytecode.OpIsResultOk)
	errJump := c.emitPlaceholderJump(bytecode.OpJumpIfFalse)
	c.emit(bytecode.OpExtractResultValue)
	endJump := c.emitPlaceholderJump(bytecode.OpJump)
	c.patchJump(errJump)
	c.emitSpan(spanOf(t.Pos), bytecode.OpReturn)
	c.patchJump(endJump)
	return nil
}

// VisitConstructor builds an Option/Result value. The fixed opcode set has
// no dedicated construction opcode for either (only the IsXxx/ExtractXxx
// pair the match lowering needs), so Some/Ok/Err/None go through the same
// Call machinery as any other builtin, via four trivial stdlib wrappers.
func (c *Compiler) VisitConstructor(ctor ast.Constructor) any {
	name := map[string]string{"Some": "__some__", "None": "__none__", "Ok": "__ok__", "Err": "__err__"}[ctor.Name]
	if ctor.Inner != nil {
		c.emitBuiltinCall(name, nil, []ast.Expression{ctor.Inner})
	} else {
		c.emitBuiltinCall(name, nil, nil)
	}
	return nil
}
