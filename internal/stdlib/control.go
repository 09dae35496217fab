// control.go holds the two builtins the compiler emits for constructs that
// have no dedicated opcode: a Member call the typechecker left unannotated
// (TagUnknown) falls back to resolving the method by the receiver's runtime
// kind, and a match with no matching arm raises through the ordinary Call
// error path rather than a dedicated "raise" opcode.
package stdlib

import (
	"atlas/internal/atlaserr"
	"atlas/internal/dispatch"
	"atlas/internal/value"
)

func init() {
	register("__dynamic_dispatch__", dynamicDispatch)
	register("__non_exhaustive_match__", nonExhaustiveMatch)
}

func dynamicDispatch(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arityAtLeast("__dynamic_dispatch__", args, 2, ctx); err != nil {
		return nil, err
	}
	target := args[0]
	methodName, ok := args[1].(value.String)
	if !ok {
		return nil, typeErr(ctx, "method name must be a string")
	}
	name, ok := dispatch.ResolveDynamic(target.Kind(), string(methodName))
	if !ok {
		return nil, atlaserr.UnknownFunction(ctx.Span, string(methodName))
	}
	callArgs := append([]value.Value{target}, args[2:]...)
	return Call(name, callArgs, ctx)
}

func nonExhaustiveMatch(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	return nil, atlaserr.NonExhaustiveMatch(ctx.Span)
}
