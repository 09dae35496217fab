package compiler

import (
	"atlas/internal/ast"
	"atlas/internal/bytecode"
)

// compilePattern lowers a single match-arm pattern against the value sitting
// in local slot `slot`. On a failed test it appends a placeholder jump to
// *fails, to be patched once the caller knows where the next arm attempt (or
// the non-exhaustive-match fallback) begins. On success, control falls
// through with any bindings the pattern introduces declared as locals in the
// current scope.
//
// Every sub-pattern re-fetches its value with GetLocal from a reserved
// temp slot rather than threading it across branches on the operand stack —
// the same technique VisitMatch uses at the top level, so nested
// constructor/array patterns compose without any stack-depth bookkeeping.
func (c *Compiler) compilePattern(pat ast.Pattern, slot int, fails *[]int) {
	switch p := pat.(type) {
	case ast.WildcardPattern:
		// Always matches, binds nothing.
	case ast.VarPattern:
		c.emit(bytecode.OpGetLocal, slot)
		c.declareLocal(p.Name.Lexeme, false)
	case ast.LiteralPattern:
		c.emit(bytecode.OpGetLocal, slot)
		c.compileExpr(p.Value)
		c.emit(bytecode.OpEqual)
		*fails = append(*fails, c.emitPlaceholderJump(bytecode.OpJumpIfFalse))
	case ast.ConstructorPattern:
		c.compileConstructorPattern(p, slot, fails)
	case ast.ArrayPattern:
		c.compileArrayPattern(p, slot, fails)
	case ast.OrPattern:
		c.compileOrPattern(p, slot, fails)
	default:
		panic(SemanticError{Message: "unsupported pattern form"})
	}
}

// compileConstructorPattern matches Some/None/Ok/Err. Option and Result both
// carry a single Inner field (spec §4.6), so the same ExtractOptionValue /
// ExtractResultValue opcode serves either variant of its respective type —
// there is no separate "extract the error" opcode to pick between.
func (c *Compiler) compileConstructorPattern(p ast.ConstructorPattern, slot int, fails *[]int) {
	var testOp, extractOp bytecode.Opcode
	hasInner := p.Inner != nil
	switch p.Name {
	case "Some":
		testOp, extractOp = bytecode.OpIsOptionSome, bytecode.OpExtractOptionValue
	case "None":
		testOp = bytecode.OpIsOptionNone
	case "Ok":
		testOp, extractOp = bytecode.OpIsResultOk, bytecode.OpExtractResultValue
	case "Err":
		testOp, extractOp = bytecode.OpIsResultErr, bytecode.OpExtractResultValue
	default:
		panic(SemanticError{Message: "unknown constructor pattern " + p.Name})
	}
	c.emit(bytecode.OpGetLocal, slot)
	c.emit(testOp)
	*fails = append(*fails, c.emitPlaceholderJump(bytecode.OpJumpIfFalse))
	if !hasInner {
		return
	}
	c.emit(bytecode.OpGetLocal, slot)
	c.emit(extractOp)
	innerSlot := c.reserveTempSlot()
	c.compilePattern(p.Inner, innerSlot, fails)
}

// compileArrayPattern matches a fixed-length array, recursing into each
// element through its own reserved temp slot.
func (c *Compiler) compileArrayPattern(p ast.ArrayPattern, slot int, fails *[]int) {
	c.emit(bytecode.OpGetLocal, slot)
	c.emit(bytecode.OpIsArray)
	*fails = append(*fails, c.emitPlaceholderJump(bytecode.OpJumpIfFalse))

	c.emit(bytecode.OpGetLocal, slot)
	c.emit(bytecode.OpGetArrayLen)
	c.emit(bytecode.OpConstant, c.addConstant(float64(len(p.Elements))))
	c.emit(bytecode.OpEqual)
	*fails = append(*fails, c.emitPlaceholderJump(bytecode.OpJumpIfFalse))

	for i, elem := range p.Elements {
		c.emit(bytecode.OpGetLocal, slot)
		c.emit(bytecode.OpConstant, c.addConstant(float64(i)))
		c.emit(bytecode.OpGetIndex)
		elemSlot := c.reserveTempSlot()
		c.compilePattern(elem, elemSlot, fails)
	}
}

// compileOrPattern tries each alternative in turn, using the first one that
// matches. Alternatives are expected (by the typechecker) to bind the same
// set of names; this compiler does not attempt to unify bindings across
// alternatives into shared slots, so an alternative's own bindings are only
// valid within the arm body when that particular alternative is the one that
// matched — an or-pattern whose alternatives bind variables used inside the
// arm's guard or body after falling through a non-binding earlier attempt is
// a degenerate case this lowering does not chase further.
func (c *Compiler) compileOrPattern(p ast.OrPattern, slot int, fails *[]int) {
	if len(p.Alternatives) == 0 {
		panic(SemanticError{Message: "or-pattern with no alternatives"})
	}
	var matchedJumps []int
	for i, alt := range p.Alternatives {
		last := i == len(p.Alternatives)-1
		if last {
			// The final alternative's failures become this pattern's
			// failures directly: no more fallbacks to try.
			c.compilePattern(alt, slot, fails)
			break
		}
		savedLocals := len(c.current.locals)
		var altFails []int
		c.compilePattern(alt, slot, &altFails)
		introduced := len(c.current.locals) - savedLocals
		matchedJumps = append(matchedJumps, c.emitPlaceholderJump(bytecode.OpJump))
		for _, j := range altFails {
			c.patchJump(j)
		}
		// This attempt failed: every declareLocal/reserveTempSlot call inside
		// it pushed exactly one value onto the stack, so pop each one back
		// off before truncating the locals bookkeeping to match.
		for range introduced {
			c.emit(bytecode.OpPop)
		}
		c.current.locals = c.current.locals[:savedLocals]
	}
	for _, j := range matchedJumps {
		c.patchJump(j)
	}
}
