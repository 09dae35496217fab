package stdlib

import (
	"fmt"

	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("print", printFn)
	register("__set_index__", setIndexFn)
}

// print writes its argument's display form to the Context's output writer,
// gated by the security context's I/O capability (spec.md §6).
func printFn(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arityAtLeast("print", args, 1, ctx); err != nil {
		return nil, err
	}
	if !ctx.Security.checkIO() {
		return nil, atlaserr.SecurityViolation(ctx.Span, "print requires I/O capability")
	}
	fmt.Fprintln(ctx.Output, args[0].String())
	return value.Null{}, nil
}

// __set_index__ backs the parser's desugaring of `target[idx] = value`
// (internal/parser/expression.go's assignment()) into a call the compiler
// and interpreter both lower through the ordinary GetIndex/SetIndex
// machinery rather than a dedicated AST node.
func setIndexFn(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("__set_index__", args, 3, ctx); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case *value.Array:
		i, ierr := asIndex(ctx, args[1], "index assignment")
		if ierr != nil {
			return nil, ierr
		}
		next, serr := t.With(i, args[2])
		if serr != nil {
			return nil, atlaserr.OutOfBounds(ctx.Span, serr.Error())
		}
		return next, nil
	case *value.HashMap:
		next, perr := t.Put(args[1], args[2])
		if perr != nil {
			return nil, atlaserr.InvalidIndex(ctx.Span, perr.Error())
		}
		return next, nil
	default:
		return nil, typeErr(ctx, "cannot index-assign into a "+t.Kind().String())
	}
}
