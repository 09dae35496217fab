package stdlib

import (
	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("hashMapPut", hmPut)
	register("hashMapGet", hmGet)
	register("hashMapRemove", hmRemove)
	register("hashMapHas", hmHas)
	register("hashMapKeys", hmKeys)
	register("hashMapValues", hmValues)
	register("hashMapEntries", hmEntries)
	register("hashMapLen", hmLen)
	register("hashMapClear", hmClear)
	register("hashMapForEach", hmForEach)
	register("hashMapMap", hmMap)
	register("hashMapFilter", hmFilter)
}

func asHashMap(ctx Context, v value.Value, who string) (*value.HashMap, *atlaserr.RuntimeError) {
	h, ok := v.(*value.HashMap)
	if !ok {
		return nil, typeErr(ctx, who+" expects a hashmap receiver, got "+v.Kind().String())
	}
	return h, nil
}

func hmPut(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapPut", args, 3, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapPut")
	if err != nil {
		return nil, err
	}
	next, perr := h.Put(args[1], args[2])
	if perr != nil {
		return nil, atlaserr.InvalidIndex(ctx.Span, perr.Error())
	}
	return next, nil
}

func hmGet(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapGet", args, 2, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapGet")
	if err != nil {
		return nil, err
	}
	v, ok, gerr := h.Get(args[1])
	if gerr != nil {
		return nil, atlaserr.InvalidIndex(ctx.Span, gerr.Error())
	}
	if !ok {
		return value.None(), nil
	}
	return value.Some(v), nil
}

func hmRemove(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapRemove", args, 2, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapRemove")
	if err != nil {
		return nil, err
	}
	removed, next, rerr := h.Removed(args[1])
	if rerr != nil {
		return nil, atlaserr.InvalidIndex(ctx.Span, rerr.Error())
	}
	return value.NewArray([]value.Value{removed, next}), nil
}

func hmHas(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapHas", args, 2, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapHas")
	if err != nil {
		return nil, err
	}
	_, ok, gerr := h.Get(args[1])
	if gerr != nil {
		return nil, atlaserr.InvalidIndex(ctx.Span, gerr.Error())
	}
	return value.Bool(ok), nil
}

func hmKeys(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapKeys", args, 1, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapKeys")
	if err != nil {
		return nil, err
	}
	entries := h.Entries()
	out := make([]value.Value, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return value.NewArray(out), nil
}

func hmValues(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapValues", args, 1, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapValues")
	if err != nil {
		return nil, err
	}
	entries := h.Entries()
	out := make([]value.Value, len(entries))
	for i, e := range entries {
		out[i] = e.Val
	}
	return value.NewArray(out), nil
}

func hmEntries(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapEntries", args, 1, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapEntries")
	if err != nil {
		return nil, err
	}
	entries := h.Entries()
	out := make([]value.Value, len(entries))
	for i, e := range entries {
		out[i] = value.NewArray([]value.Value{e.Key, e.Val})
	}
	return value.NewArray(out), nil
}

func hmLen(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapLen", args, 1, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapLen")
	if err != nil {
		return nil, err
	}
	return value.Number(h.Len()), nil
}

func hmClear(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapClear", args, 1, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapClear")
	if err != nil {
		return nil, err
	}
	return h.Cleared(), nil
}

func hmForEach(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapForEach", args, 2, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapForEach")
	if err != nil {
		return nil, err
	}
	for _, e := range h.Entries() {
		if _, rerr := ctx.Invoke(args[1], []value.Value{e.Val, e.Key}); rerr != nil {
			return nil, rerr
		}
	}
	return value.Null{}, nil
}

func hmMap(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapMap", args, 2, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapMap")
	if err != nil {
		return nil, err
	}
	out := value.NewHashMap()
	for _, e := range h.Entries() {
		r, rerr := ctx.Invoke(args[1], []value.Value{e.Val, e.Key})
		if rerr != nil {
			return nil, rerr
		}
		next, perr := out.Put(e.Key, r)
		if perr != nil {
			return nil, atlaserr.InvalidIndex(ctx.Span, perr.Error())
		}
		out = next
	}
	return out, nil
}

func hmFilter(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashMapFilter", args, 2, ctx); err != nil {
		return nil, err
	}
	h, err := asHashMap(ctx, args[0], "hashMapFilter")
	if err != nil {
		return nil, err
	}
	out := value.NewHashMap()
	for _, e := range h.Entries() {
		r, rerr := ctx.Invoke(args[1], []value.Value{e.Val, e.Key})
		if rerr != nil {
			return nil, rerr
		}
		if value.IsTruthy(r) {
			next, perr := out.Put(e.Key, e.Val)
			if perr != nil {
				return nil, atlaserr.InvalidIndex(ctx.Span, perr.Error())
			}
			out = next
		}
	}
	return out, nil
}
