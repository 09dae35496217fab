// The reflection surface (spec.md §4.7) is a language-level introspection
// API, not Go's reflect package — every primitive is implemented with a
// plain type switch over value.Value, the same way equality and display
// are (internal/value/equality.go).
package stdlib

import (
	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("reflectTypeof", reflectTypeof)
	register("reflectSameType", reflectSameType)
	register("reflectIsPrimitive", reflectIsPrimitive)
	register("reflectGetLength", reflectGetLength)
	register("reflectIsEmpty", reflectIsEmpty)
	register("reflectTypeDescribe", reflectTypeDescribe)
	register("reflectClone", reflectClone)
	register("reflectValueToString", reflectValueToString)
	register("reflectDeepEquals", reflectDeepEquals)
}

func reflectTypeof(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("reflectTypeof", args, 1, ctx); err != nil {
		return nil, err
	}
	return value.String(args[0].Kind().String()), nil
}

func reflectSameType(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("reflectSameType", args, 2, ctx); err != nil {
		return nil, err
	}
	return value.Bool(args[0].Kind() == args[1].Kind()), nil
}

func isPrimitiveKind(k value.Kind) bool {
	switch k {
	case value.KindNull, value.KindBool, value.KindNumber, value.KindString:
		return true
	default:
		return false
	}
}

func reflectIsPrimitive(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("reflectIsPrimitive", args, 1, ctx); err != nil {
		return nil, err
	}
	return value.Bool(isPrimitiveKind(args[0].Kind())), nil
}

func reflectGetLength(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("reflectGetLength", args, 1, ctx); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case *value.Array:
		return value.Number(t.Len()), nil
	case *value.HashMap:
		return value.Number(t.Len()), nil
	case *value.HashSet:
		return value.Number(t.Len()), nil
	case *value.Queue:
		return value.Number(t.Len()), nil
	case *value.Stack:
		return value.Number(t.Len()), nil
	case value.String:
		return value.Number(len([]rune(string(t)))), nil
	default:
		return nil, typeErr(ctx, "reflectGetLength expects a collection or string, got "+args[0].Kind().String())
	}
}

func reflectIsEmpty(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("reflectIsEmpty", args, 1, ctx); err != nil {
		return nil, err
	}
	n, lerr := reflectGetLength(args, ctx)
	if lerr != nil {
		return nil, lerr
	}
	return value.Bool(n.(value.Number) == 0), nil
}

func reflectTypeDescribe(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("reflectTypeDescribe", args, 1, ctx); err != nil {
		return nil, err
	}
	v := args[0]
	desc := v.Kind().String()
	switch t := v.(type) {
	case *value.Array:
		desc = desc + "(" + value.Number(t.Len()).String() + ")"
	case *value.Closure:
		desc = desc + " " + t.Fn.Name + "/" + value.Number(t.Fn.Arity).String()
	case *value.Function:
		desc = desc + " " + t.Name + "/" + value.Number(t.Arity).String()
	}
	return value.String(desc), nil
}

func reflectClone(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("reflectClone", args, 1, ctx); err != nil {
		return nil, err
	}
	return deepClone(args[0]), nil
}

func deepClone(v value.Value) value.Value {
	switch t := v.(type) {
	case *value.Array:
		out := make([]value.Value, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = deepClone(e)
		}
		return value.NewArray(out)
	case *value.HashMap:
		out := value.NewHashMap()
		for _, e := range t.Entries() {
			out, _ = out.Put(deepClone(e.Key), deepClone(e.Val))
		}
		return out
	case *value.HashSet:
		out := value.NewHashSet()
		for _, e := range t.Elems() {
			out, _ = out.Added(deepClone(e))
		}
		return out
	case *value.Queue:
		out := make([]value.Value, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = deepClone(e)
		}
		return value.NewQueue(out)
	case *value.Stack:
		out := make([]value.Value, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = deepClone(e)
		}
		return value.NewStack(out)
	case value.Option:
		if !t.HasValue {
			return t
		}
		return value.Some(deepClone(t.Inner))
	case value.Result:
		return value.Result{IsOk: t.IsOk, Inner: deepClone(t.Inner)}
	default:
		return v // primitives and reference-identity values need no copy
	}
}

func reflectValueToString(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("reflectValueToString", args, 1, ctx); err != nil {
		return nil, err
	}
	return value.String(args[0].String()), nil
}

func reflectDeepEquals(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("reflectDeepEquals", args, 2, ctx); err != nil {
		return nil, err
	}
	return value.Bool(value.Equal(args[0], args[1])), nil
}
