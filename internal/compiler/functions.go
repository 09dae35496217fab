package compiler

import (
	"atlas/internal/ast"
	"atlas/internal/bytecode"
	"atlas/internal/dispatch"
	"atlas/internal/stdlib"
	"atlas/internal/value"
)

// compileFunctionLiteral lowers a function body, leaving the resulting
// Closure value on the stack. The body is compiled inline into the shared
// instruction stream (spec §4.1's single flat stream) guarded by a leading
// Jump that skips over it in normal control flow — only a Call ever
// transfers control to the function's Entry offset directly.
func (c *Compiler) compileFunctionLiteral(lit ast.FunctionLiteral) {
	skip := c.emitPlaceholderJump(bytecode.OpJump)
	entry := len(c.bc.Instructions)

	parent := c.current
	fs := &funcState{parent: parent}
	c.current = fs

	for _, p := range lit.Params {
		c.declareLocal(p.Name, true)
	}
	for _, st := range lit.Body {
		c.compileStmt(st)
	}
	c.emit(bytecode.OpNull)
	c.emit(bytecode.OpReturn)

	upvalues := fs.upvalues
	numLocals := fs.maxSlots
	c.current = parent
	c.patchJump(skip)

	fnConst := c.addConstant(&value.Function{
		Name:      lit.Name,
		Arity:     len(lit.Params),
		Entry:     entry,
		NumLocals: numLocals,
	})
	for _, uv := range upvalues {
		if uv.IsLocal {
			c.emit(bytecode.OpGetLocal, uv.Index)
		} else {
			c.emit(bytecode.OpGetUpvalue, uv.Index)
		}
	}
	c.emit(bytecode.OpMakeClosure, fnConst, len(upvalues))
}

// emitBuiltinCall compiles a call to a known stdlib entry point: callee
// constant, then (optionally) the receiver, then the remaining arguments,
// then Call. Used both for bare free-function builtin calls and for
// Member calls the dispatch table resolves statically.
func (c *Compiler) emitBuiltinCall(name string, receiver ast.Expression, args []ast.Expression) {
	idx := c.addConstant(value.Builtin{Name: name})
	c.emit(bytecode.OpConstant, idx)
	argc := 0
	if receiver != nil {
		c.compileExpr(receiver)
		argc++
	}
	for _, a := range args {
		c.compileExpr(a)
		argc++
	}
	c.emit(bytecode.OpCall, argc)
	c.emitWriteBack(name, receiver, args)
}

// emitWriteBack applies the copy-on-write write-back sequence of spec §4.3
// after a call to a collection-returning or pair-returning stdlib name,
// provided the receiver/first-argument is a plain variable reference.
func (c *Compiler) emitWriteBack(name string, receiver ast.Expression, freeArgs []ast.Expression) {
	target := receiver
	if target == nil && len(freeArgs) > 0 {
		target = freeArgs[0]
	}
	v, ok := target.(ast.Variable)
	if !ok {
		return
	}
	switch {
	case dispatch.CollectionReturning[name]:
		c.writeBackStore(v.Name.Lexeme)
	case dispatch.PairReturning[name]:
		c.emit(bytecode.OpDup)
		c.emit(bytecode.OpConstant, c.addConstant(float64(1)))
		c.emit(bytecode.OpGetIndex)
		c.writeBackStore(v.Name.Lexeme)
		c.emit(bytecode.OpPop)
		c.emit(bytecode.OpConstant, c.addConstant(float64(0)))
		c.emit(bytecode.OpGetIndex)
	}
}

// VisitCall compiles a free-function or closure-value call: load the
// callee, evaluate arguments left to right, emit Call. A bare name that
// isn't bound as a local/upvalue anywhere in the enclosing function chain
// and matches a registered stdlib entry point compiles directly to a
// Builtin constant instead of going through global-by-name resolution, so
// builtins never need a prior declaration.
func (c *Compiler) VisitCall(call ast.Call) any {
	if v, ok := call.Callee.(ast.Variable); ok {
		name := v.Name.Lexeme
		if !c.nameBoundLocally(name) && stdlib.IsBuiltin(name) {
			c.emitBuiltinCall(name, nil, call.Args)
			return nil
		}
		c.loadName(name)
	} else {
		c.compileExpr(call.Callee)
	}
	for _, a := range call.Args {
		c.compileExpr(a)
	}
	c.emitSpan(spanOf(call.Pos), bytecode.OpCall, len(call.Args))
	return nil
}

// VisitMember compiles a method call: the typechecker-annotated TypeTag
// resolves the call through the shared dispatch table (spec §4.7), a
// trait binding resolves to the mangled `impl` function stored as a
// global, and an unannotated TypeTag falls back to resolving the method by
// the receiver's runtime kind (internal/stdlib's __dynamic_dispatch__).
func (c *Compiler) VisitMember(m ast.Member) any {
	if m.Trait != nil {
		mangled := m.Trait.MangledName(m.Method.Lexeme)
		c.emit(bytecode.OpGetGlobal, c.nameConstant(mangled))
		c.compileExpr(m.Target)
		for _, a := range m.Args {
			c.compileExpr(a)
		}
		c.emitSpan(spanOf(m.Method), bytecode.OpCall, len(m.Args)+1)
		return nil
	}
	if name, ok := dispatch.Resolve(m.TypeTag, m.Method.Lexeme); ok {
		c.emitBuiltinCall(name, m.Target, m.Args)
		return nil
	}
	idx := c.addConstant(value.Builtin{Name: "__dynamic_dispatch__"})
	c.emit(bytecode.OpConstant, idx)
	c.compileExpr(m.Target)
	c.emit(bytecode.OpConstant, c.addConstant(m.Method.Lexeme))
	for _, a := range m.Args {
		c.compileExpr(a)
	}
	c.emitSpan(spanOf(m.Method), bytecode.OpCall, len(m.Args)+2)
	return nil
}

func (c *Compiler) VisitFunctionLiteral(f ast.FunctionLiteral) any {
	c.compileFunctionLiteral(f)
	return nil
}
