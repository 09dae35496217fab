// Package stdlib implements the builtin functions both the VM and the
// interpreter call through the shared dispatch table (internal/dispatch).
// Grounded on the teacher's flat, error-returning function style
// (interpreter/error.go, vm/errors.go) generalized to spec.md §4.7's full
// array/hashmap/hashset/queue/stack/string/math/json/regex/datetime/
// reflection surface, gated by the security context of §6.
package stdlib

import (
	"io"

	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

// Invoker re-enters the calling engine to apply a callback Value (Closure,
// Function, Builtin or NativeFn) to args — the "intrinsic re-entry" spec.md
// §4.4 requires for callback-taking builtins like map/filter/reduce, since a
// stdlib function has no direct access to either engine's call machinery.
type Invoker func(callee value.Value, args []value.Value) (value.Value, *atlaserr.RuntimeError)

// Context carries everything a builtin needs beyond its arguments: the
// call-site span for error reporting, the active security gate, the
// program's output writer (for print-like builtins), and the re-entry hook.
type Context struct {
	Span     atlaserr.Span
	Security *SecurityContext
	Output   io.Writer
	Invoke   Invoker
}

// Func is the shape every registered builtin implements.
type Func func(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError)

var registry = map[string]Func{}

func register(name string, fn Func) {
	registry[name] = fn
}

// IsBuiltin reports whether name resolves to a registered stdlib function.
func IsBuiltin(name string) bool {
	_, ok := registry[name]
	return ok
}

// Call dispatches name to its registered implementation. Both engines call
// this exactly the same way, so a name can never behave differently in the
// interpreter than in the VM.
func Call(name string, args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	fn, ok := registry[name]
	if !ok {
		return nil, atlaserr.UnknownFunction(ctx.Span, name)
	}
	return fn(args, ctx)
}

// arity checks an exact argument count, returning an ArityMismatch error
// with the call-site span otherwise.
func arity(name string, args []value.Value, want int, ctx Context) *atlaserr.RuntimeError {
	if len(args) != want {
		return atlaserr.ArityMismatch(ctx.Span, name, want, len(args))
	}
	return nil
}

func arityAtLeast(name string, args []value.Value, min int, ctx Context) *atlaserr.RuntimeError {
	if len(args) < min {
		return atlaserr.ArityMismatch(ctx.Span, name, min, len(args))
	}
	return nil
}

func typeErr(ctx Context, msg string) *atlaserr.RuntimeError {
	return atlaserr.TypeErr(ctx.Span, msg)
}
