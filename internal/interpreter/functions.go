package interpreter

import (
	"fmt"

	"atlas/internal/ast"
	"atlas/internal/atlaserr"
	"atlas/internal/dispatch"
	"atlas/internal/stdlib"
	"atlas/internal/value"
)

// closure is this engine's representation of a function value: the
// FunctionLiteral it was built from plus the *Environment in effect at the
// point it was created. Mutating a captured variable through the closure is
// visible to every other closure that shares the same Environment, by
// reference — the representation internal/vm's flattened, copy-on-write
// Upvalues achieves the same externally-observable effect with a different
// mechanism (spec §9: engines may differ in internal representation as long
// as observable behavior matches).
type closure struct {
	lit  ast.FunctionLiteral
	env  *Environment
	name string
}

func (*closure) Kind() value.Kind { return value.KindClosure }
func (c *closure) String() string {
	name := c.name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("<closure %s/%d>", name, len(c.lit.Params))
}

func (i *Interpreter) VisitFunctionLiteral(f ast.FunctionLiteral) any {
	return &closure{lit: f, env: i.env, name: f.Name}
}

// VisitCall mirrors compiler.VisitCall: a bare name that is not bound as a
// local/upvalue anywhere in the enclosing function-nesting chain and matches
// a registered stdlib entry point resolves directly to that builtin,
// bypassing ordinary variable lookup — builtins never need a prior
// declaration, and only a real local/closure binding can shadow one.
func (i *Interpreter) VisitCall(call ast.Call) any {
	span := spanOf(call.Pos)
	if v, ok := call.Callee.(ast.Variable); ok {
		name := v.Name.Lexeme
		if !i.env.boundBefore(name, i.root) && stdlib.IsBuiltin(name) {
			return i.evalBuiltinCall(name, nil, call.Args, span)
		}
		callee := i.lookupVariable(name, spanOf(v.Name))
		args := i.evalArgs(call.Args)
		i.span = span
		return i.mustCall(callee, args, span)
	}
	callee := i.eval(call.Callee)
	args := i.evalArgs(call.Args)
	i.span = span
	return i.mustCall(callee, args, span)
}

// VisitMember mirrors compiler.VisitMember: a trait-annotated call resolves
// to the mangled `impl` global; a TypeTag the dispatch table covers compiles
// to the matching stdlib free function (receiver first); anything else falls
// back to resolving the method by the receiver's runtime kind.
func (i *Interpreter) VisitMember(m ast.Member) any {
	span := spanOf(m.Method)
	if m.Trait != nil {
		mangled := m.Trait.MangledName(m.Method.Lexeme)
		callee := i.lookupVariable(mangled, span)
		args := append([]value.Value{i.eval(m.Target)}, i.evalArgs(m.Args)...)
		i.span = span
		return i.mustCall(callee, args, span)
	}
	if name, ok := dispatch.Resolve(m.TypeTag, m.Method.Lexeme); ok {
		return i.evalBuiltinCall(name, m.Target, m.Args, span)
	}
	target := i.eval(m.Target)
	args := append([]value.Value{target, value.String(m.Method.Lexeme)}, i.evalArgs(m.Args)...)
	i.span = span
	result, err := i.callBuiltin("__dynamic_dispatch__", args, span)
	if err != nil {
		panic(err)
	}
	return result
}

func (i *Interpreter) evalArgs(exprs []ast.Expression) []value.Value {
	out := make([]value.Value, len(exprs))
	for idx, e := range exprs {
		out[idx] = i.eval(e)
	}
	return out
}

// evalBuiltinCall mirrors compiler.emitBuiltinCall: evaluate the receiver
// (if any) then the remaining arguments, call the stdlib entry point, then
// apply the copy-on-write write-back sequence.
func (i *Interpreter) evalBuiltinCall(name string, receiver ast.Expression, args []ast.Expression, span atlaserr.Span) value.Value {
	var callArgs []value.Value
	if receiver != nil {
		callArgs = append(callArgs, i.eval(receiver))
	}
	for _, a := range args {
		callArgs = append(callArgs, i.eval(a))
	}
	i.span = span
	result, err := i.callBuiltin(name, callArgs, span)
	if err != nil {
		panic(err)
	}
	target := receiver
	if target == nil && len(args) > 0 {
		target = args[0]
	}
	return i.applyWriteBack(name, target, result, span)
}

// applyWriteBack mirrors compiler.emitWriteBack: if target is a plain
// variable reference and name is in the shared collection-returning or
// pair-returning sets, store the mutated collection back into that
// variable, bypassing its mutability check the same way writeBackStore does
// (spec §4.3: container-content mutation is not a variable rebinding).
func (i *Interpreter) applyWriteBack(name string, target ast.Expression, result value.Value, span atlaserr.Span) value.Value {
	v, ok := target.(ast.Variable)
	if !ok {
		return result
	}
	switch {
	case dispatch.CollectionReturning[name]:
		i.env.forceSet(v.Name.Lexeme, result)
		return result
	case dispatch.PairReturning[name]:
		arr, ok := result.(*value.Array)
		if !ok || arr.Len() != 2 {
			panic(atlaserr.TypeErr(span, name+" must return a [extracted, new_collection] pair"))
		}
		extracted, _ := arr.Get(0)
		newColl, _ := arr.Get(1)
		i.env.forceSet(v.Name.Lexeme, newColl)
		return extracted
	default:
		return result
	}
}

// mustCall evaluates a call that is known to succeed or fault — any
// *atlaserr.RuntimeError callValue returns panics, matching every other
// expression-evaluation error path in this package.
func (i *Interpreter) mustCall(callee value.Value, args []value.Value, span atlaserr.Span) value.Value {
	v, err := i.callValue(callee, args, span)
	if err != nil {
		panic(err)
	}
	return v
}

// callValue is the single call-dispatch entry point shared by mustCall and
// Invoke (this engine's stdlib.Invoker implementation), mirroring the split
// between vm.call/vm.Invoke: one switch on the callee's kind, reused by both
// an ordinary evaluated Call/Member and a callback re-entering through a
// stdlib builtin like map/filter/reduce.
func (i *Interpreter) callValue(callee value.Value, args []value.Value, span atlaserr.Span) (value.Value, *atlaserr.RuntimeError) {
	switch c := callee.(type) {
	case value.Builtin:
		return i.callBuiltin(c.Name, args, span)
	case *value.NativeFn:
		return callNative(c, args, span)
	case *closure:
		return i.callClosure(c, args, span)
	case value.Option:
		if !c.HasValue && len(args) == 0 {
			return c, nil
		}
		return nil, atlaserr.TypeErr(span, "value is not callable")
	default:
		return nil, atlaserr.TypeErr(span, "value of kind "+callee.Kind().String()+" is not callable")
	}
}

func (i *Interpreter) callBuiltin(name string, args []value.Value, span atlaserr.Span) (value.Value, *atlaserr.RuntimeError) {
	ctx := stdlib.Context{Span: span, Security: i.security, Output: i.output, Invoke: i.Invoke}
	return stdlib.Call(name, args, ctx)
}

func callNative(n *value.NativeFn, args []value.Value, span atlaserr.Span) (value.Value, *atlaserr.RuntimeError) {
	if n.Arity >= 0 && len(args) != n.Arity {
		return nil, atlaserr.ArityMismatch(span, n.Name, n.Arity, len(args))
	}
	v, err := n.Fn(args)
	if err != nil {
		return nil, atlaserr.TypeErr(span, err.Error())
	}
	return v, nil
}

// callClosure runs a user function's body to completion in a fresh
// Environment chained from the closure's captured scope, not the caller's —
// lexical, not dynamic, scoping. A return signal (or an earlyReturn panic
// from a `?` deeper in the body) stops the statement loop; falling off the
// end yields Null, matching compileFunctionLiteral's trailing OpNull/Return.
func (i *Interpreter) callClosure(c *closure, args []value.Value, span atlaserr.Span) (result value.Value, rerr *atlaserr.RuntimeError) {
	if len(args) != len(c.lit.Params) {
		return nil, atlaserr.ArityMismatch(span, displayName(c), len(c.lit.Params), len(args))
	}
	callEnv := newEnvironment(c.env)
	for idx, p := range c.lit.Params {
		callEnv.define(p.Name, args[idx], true)
	}
	savedEnv, savedMain, savedBlock := i.env, i.mainDepth, i.blockDepth
	i.env, i.mainDepth, i.blockDepth = callEnv, i.mainDepth+1, 0
	i.callStack = append(i.callStack, displayName(c))
	defer func() {
		i.callStack = i.callStack[:len(i.callStack)-1]
		i.env, i.mainDepth, i.blockDepth = savedEnv, savedMain, savedBlock
		if r := recover(); r != nil {
			if er, ok := r.(earlyReturn); ok {
				result = er.value
				return
			}
			panic(r)
		}
	}()
	for _, st := range c.lit.Body {
		if sig := i.execStmt(st); sig.kind == signalReturn {
			return sig.value, nil
		}
	}
	return value.Null{}, nil
}

func displayName(c *closure) string {
	if c.name != "" {
		return c.name
	}
	return "<anonymous>"
}

// Invoke applies callee to args, re-entering this interpreter if it is a
// closure. This is the hook every callback-taking stdlib builtin (map,
// filter, reduce, sortBy, ...) calls through — the interpreter's analogue of
// vm.Invoke, using the most recent call site's span since stdlib.Invoker
// carries none of its own.
func (i *Interpreter) Invoke(callee value.Value, args []value.Value) (value.Value, *atlaserr.RuntimeError) {
	return i.callValue(callee, args, i.span)
}

// Call invokes a named global function (stdlib or user-defined) with args,
// the interpreter's side of the embedding API's `call(name, args)`
// (spec.md §6), mirroring vm.Call.
func (i *Interpreter) Call(name string, args []value.Value) (value.Value, error) {
	if stdlib.IsBuiltin(name) {
		res, err := i.callBuiltin(name, args, atlaserr.Span{})
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	g, ok := i.GetGlobal(name)
	if !ok {
		return nil, atlaserr.UnknownFunction(atlaserr.Span{}, name)
	}
	res, err := i.Invoke(g, args)
	if err != nil {
		return nil, err
	}
	return res, nil
}
