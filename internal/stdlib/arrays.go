package stdlib

import (
	"sort"

	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("len", arrLen)
	register("get", arrGet)
	register("set", arrSet)
	register("push", arrPush)
	register("pop", arrPop)
	register("shift", arrShift)
	register("unshift", arrUnshift)
	register("reverse", arrReverse)
	register("slice", arrSlice)
	register("concat", arrConcat)
	register("join", arrJoin)
	register("includes", arrIncludes)
	register("indexOf", arrIndexOf)
	register("map", arrMap)
	register("filter", arrFilter)
	register("reduce", arrReduce)
	register("forEach", arrForEach)
	register("find", arrFind)
	register("findIndex", arrFindIndex)
	register("some", arrSome)
	register("every", arrEvery)
	register("sort", arrSort)
	register("sortBy", arrSortBy)
	register("flatMap", arrFlatMap)
	register("flatten", arrFlatten)
}

func asArray(ctx Context, v value.Value, who string) (*value.Array, *atlaserr.RuntimeError) {
	a, ok := v.(*value.Array)
	if !ok {
		return nil, typeErr(ctx, who+" expects an array receiver, got "+v.Kind().String())
	}
	return a, nil
}

func asIndex(ctx Context, v value.Value, who string) (int, *atlaserr.RuntimeError) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, typeErr(ctx, who+" expects a number index, got "+v.Kind().String())
	}
	return int(n), nil
}

func arrLen(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("len", args, 1, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "len")
	if err != nil {
		return nil, err
	}
	return value.Number(a.Len()), nil
}

func arrGet(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("get", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "get")
	if err != nil {
		return nil, err
	}
	i, err := asIndex(ctx, args[1], "get")
	if err != nil {
		return nil, err
	}
	v, gerr := a.Get(i)
	if gerr != nil {
		return nil, atlaserr.OutOfBounds(ctx.Span, gerr.Error())
	}
	return v, nil
}

func arrSet(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("set", args, 3, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "set")
	if err != nil {
		return nil, err
	}
	i, err := asIndex(ctx, args[1], "set")
	if err != nil {
		return nil, err
	}
	next, serr := a.With(i, args[2])
	if serr != nil {
		return nil, atlaserr.OutOfBounds(ctx.Span, serr.Error())
	}
	return next, nil
}

func arrPush(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("push", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "push")
	if err != nil {
		return nil, err
	}
	return a.Pushed(args[1]), nil
}

func arrPop(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("pop", args, 1, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "pop")
	if err != nil {
		return nil, err
	}
	last, next, perr := a.Popped()
	if perr != nil {
		return nil, atlaserr.OutOfBounds(ctx.Span, perr.Error())
	}
	return value.NewArray([]value.Value{last, next}), nil
}

func arrShift(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("shift", args, 1, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "shift")
	if err != nil {
		return nil, err
	}
	first, next, serr := a.Shifted()
	if serr != nil {
		return nil, atlaserr.OutOfBounds(ctx.Span, serr.Error())
	}
	return value.NewArray([]value.Value{first, next}), nil
}

func arrUnshift(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("unshift", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "unshift")
	if err != nil {
		return nil, err
	}
	return a.Unshifted(args[1]), nil
}

func arrReverse(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("reverse", args, 1, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "reverse")
	if err != nil {
		return nil, err
	}
	return a.Reversed(), nil
}

func arrSlice(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("slice", args, 3, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "slice")
	if err != nil {
		return nil, err
	}
	start, err := asIndex(ctx, args[1], "slice")
	if err != nil {
		return nil, err
	}
	end, err := asIndex(ctx, args[2], "slice")
	if err != nil {
		return nil, err
	}
	if start < 0 {
		start = 0
	}
	if end > a.Len() {
		end = a.Len()
	}
	if start > end {
		start = end
	}
	out := make([]value.Value, end-start)
	copy(out, a.Elems[start:end])
	return value.NewArray(out), nil
}

func arrConcat(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("concat", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "concat")
	if err != nil {
		return nil, err
	}
	b, err := asArray(ctx, args[1], "concat")
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, 0, a.Len()+b.Len())
	out = append(out, a.Elems...)
	out = append(out, b.Elems...)
	return value.NewArray(out), nil
}

func arrJoin(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("join", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "join")
	if err != nil {
		return nil, err
	}
	sep, ok := args[1].(value.String)
	if !ok {
		return nil, typeErr(ctx, "join expects a string separator")
	}
	var out []byte
	for i, e := range a.Elems {
		if i > 0 {
			out = append(out, string(sep)...)
		}
		out = append(out, e.String()...)
	}
	return value.String(out), nil
}

func arrIncludes(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("includes", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "includes")
	if err != nil {
		return nil, err
	}
	for _, e := range a.Elems {
		if value.Equal(e, args[1]) {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func arrIndexOf(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("indexOf", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "indexOf")
	if err != nil {
		return nil, err
	}
	for i, e := range a.Elems {
		if value.Equal(e, args[1]) {
			return value.Number(i), nil
		}
	}
	return value.Number(-1), nil
}

func arrMap(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("map", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "map")
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, a.Len())
	for i, e := range a.Elems {
		r, rerr := ctx.Invoke(args[1], []value.Value{e})
		if rerr != nil {
			return nil, rerr
		}
		out[i] = r
	}
	return value.NewArray(out), nil
}

func arrFilter(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("filter", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "filter")
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, e := range a.Elems {
		r, rerr := ctx.Invoke(args[1], []value.Value{e})
		if rerr != nil {
			return nil, rerr
		}
		if value.IsTruthy(r) {
			out = append(out, e)
		}
	}
	return value.NewArray(out), nil
}

func arrReduce(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("reduce", args, 3, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "reduce")
	if err != nil {
		return nil, err
	}
	acc := args[2]
	for _, e := range a.Elems {
		r, rerr := ctx.Invoke(args[1], []value.Value{acc, e})
		if rerr != nil {
			return nil, rerr
		}
		acc = r
	}
	return acc, nil
}

func arrForEach(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("forEach", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "forEach")
	if err != nil {
		return nil, err
	}
	for _, e := range a.Elems {
		if _, rerr := ctx.Invoke(args[1], []value.Value{e}); rerr != nil {
			return nil, rerr
		}
	}
	return value.Null{}, nil
}

func arrFind(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("find", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "find")
	if err != nil {
		return nil, err
	}
	for _, e := range a.Elems {
		r, rerr := ctx.Invoke(args[1], []value.Value{e})
		if rerr != nil {
			return nil, rerr
		}
		if value.IsTruthy(r) {
			return value.Some(e), nil
		}
	}
	return value.None(), nil
}

func arrFindIndex(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("findIndex", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "findIndex")
	if err != nil {
		return nil, err
	}
	for i, e := range a.Elems {
		r, rerr := ctx.Invoke(args[1], []value.Value{e})
		if rerr != nil {
			return nil, rerr
		}
		if value.IsTruthy(r) {
			return value.Number(i), nil
		}
	}
	return value.Number(-1), nil
}

func arrSome(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("some", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "some")
	if err != nil {
		return nil, err
	}
	for _, e := range a.Elems {
		r, rerr := ctx.Invoke(args[1], []value.Value{e})
		if rerr != nil {
			return nil, rerr
		}
		if value.IsTruthy(r) {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func arrEvery(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("every", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "every")
	if err != nil {
		return nil, err
	}
	for _, e := range a.Elems {
		r, rerr := ctx.Invoke(args[1], []value.Value{e})
		if rerr != nil {
			return nil, rerr
		}
		if !value.IsTruthy(r) {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func arrSort(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("sort", args, 1, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "sort")
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, a.Len())
	copy(out, a.Elems)
	var sortErr *atlaserr.RuntimeError
	sort.SliceStable(out, func(i, j int) bool {
		ni, iok := out[i].(value.Number)
		nj, jok := out[j].(value.Number)
		if iok && jok {
			return ni < nj
		}
		si, isok := out[i].(value.String)
		sj, jsok := out[j].(value.String)
		if isok && jsok {
			return si < sj
		}
		if sortErr == nil {
			sortErr = typeErr(ctx, "sort requires a homogeneous array of numbers or strings")
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return value.NewArray(out), nil
}

func arrSortBy(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("sortBy", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "sortBy")
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, a.Len())
	copy(out, a.Elems)
	var invokeErr *atlaserr.RuntimeError
	sort.SliceStable(out, func(i, j int) bool {
		if invokeErr != nil {
			return false
		}
		r, rerr := ctx.Invoke(args[1], []value.Value{out[i], out[j]})
		if rerr != nil {
			invokeErr = rerr
			return false
		}
		n, ok := r.(value.Number)
		if !ok {
			invokeErr = typeErr(ctx, "sortBy comparator must return a number")
			return false
		}
		return n < 0
	})
	if invokeErr != nil {
		return nil, invokeErr
	}
	return value.NewArray(out), nil
}

func arrFlatMap(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("flatMap", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "flatMap")
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, e := range a.Elems {
		r, rerr := ctx.Invoke(args[1], []value.Value{e})
		if rerr != nil {
			return nil, rerr
		}
		inner, ok := r.(*value.Array)
		if !ok {
			return nil, typeErr(ctx, "flatMap callback must return an array")
		}
		out = append(out, inner.Elems...)
	}
	return value.NewArray(out), nil
}

func arrFlatten(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("flatten", args, 1, ctx); err != nil {
		return nil, err
	}
	a, err := asArray(ctx, args[0], "flatten")
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, e := range a.Elems {
		if inner, ok := e.(*value.Array); ok {
			out = append(out, inner.Elems...)
		} else {
			out = append(out, e)
		}
	}
	return value.NewArray(out), nil
}
