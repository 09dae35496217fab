package stdlib

import (
	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("hashSetAdd", hsAdd)
	register("hashSetRemove", hsRemove)
	register("hashSetHas", hsHas)
	register("hashSetElems", hsElems)
	register("hashSetLen", hsLen)
	register("hashSetClear", hsClear)
	register("hashSetUnion", hsUnion)
	register("hashSetIntersect", hsIntersect)
	register("hashSetForEach", hsForEach)
	register("hashSetMap", hsMap)
	register("hashSetFilter", hsFilter)
}

func asHashSet(ctx Context, v value.Value, who string) (*value.HashSet, *atlaserr.RuntimeError) {
	s, ok := v.(*value.HashSet)
	if !ok {
		return nil, typeErr(ctx, who+" expects a hashset receiver, got "+v.Kind().String())
	}
	return s, nil
}

func hsAdd(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashSetAdd", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asHashSet(ctx, args[0], "hashSetAdd")
	if err != nil {
		return nil, err
	}
	next, aerr := s.Added(args[1])
	if aerr != nil {
		return nil, atlaserr.InvalidIndex(ctx.Span, aerr.Error())
	}
	return next, nil
}

func hsRemove(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashSetRemove", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asHashSet(ctx, args[0], "hashSetRemove")
	if err != nil {
		return nil, err
	}
	next, rerr := s.Removed(args[1])
	if rerr != nil {
		return nil, atlaserr.InvalidIndex(ctx.Span, rerr.Error())
	}
	return next, nil
}

func hsHas(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashSetHas", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asHashSet(ctx, args[0], "hashSetHas")
	if err != nil {
		return nil, err
	}
	has, herr := s.Has(args[1])
	if herr != nil {
		return nil, atlaserr.InvalidIndex(ctx.Span, herr.Error())
	}
	return value.Bool(has), nil
}

func hsElems(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashSetElems", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asHashSet(ctx, args[0], "hashSetElems")
	if err != nil {
		return nil, err
	}
	return value.NewArray(s.Elems()), nil
}

func hsLen(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashSetLen", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asHashSet(ctx, args[0], "hashSetLen")
	if err != nil {
		return nil, err
	}
	return value.Number(s.Len()), nil
}

func hsClear(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashSetClear", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asHashSet(ctx, args[0], "hashSetClear")
	if err != nil {
		return nil, err
	}
	return s.Cleared(), nil
}

func hsUnion(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashSetUnion", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asHashSet(ctx, args[0], "hashSetUnion")
	if err != nil {
		return nil, err
	}
	b, err := asHashSet(ctx, args[1], "hashSetUnion")
	if err != nil {
		return nil, err
	}
	out := a
	for _, e := range b.Elems() {
		var aerr *atlaserr.RuntimeError
		out, aerr = func() (*value.HashSet, *atlaserr.RuntimeError) {
			n, err := out.Added(e)
			if err != nil {
				return nil, atlaserr.InvalidIndex(ctx.Span, err.Error())
			}
			return n, nil
		}()
		if aerr != nil {
			return nil, aerr
		}
	}
	return out, nil
}

func hsForEach(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashSetForEach", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asHashSet(ctx, args[0], "hashSetForEach")
	if err != nil {
		return nil, err
	}
	for _, e := range s.Elems() {
		if _, rerr := ctx.Invoke(args[1], []value.Value{e}); rerr != nil {
			return nil, rerr
		}
	}
	return value.Null{}, nil
}

func hsMap(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashSetMap", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asHashSet(ctx, args[0], "hashSetMap")
	if err != nil {
		return nil, err
	}
	elems := s.Elems()
	out := make([]value.Value, len(elems))
	for i, e := range elems {
		r, rerr := ctx.Invoke(args[1], []value.Value{e})
		if rerr != nil {
			return nil, rerr
		}
		out[i] = r
	}
	return value.NewArray(out), nil
}

func hsFilter(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashSetFilter", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asHashSet(ctx, args[0], "hashSetFilter")
	if err != nil {
		return nil, err
	}
	out := value.NewHashSet()
	for _, e := range s.Elems() {
		r, rerr := ctx.Invoke(args[1], []value.Value{e})
		if rerr != nil {
			return nil, rerr
		}
		if value.IsTruthy(r) {
			next, aerr := out.Added(e)
			if aerr != nil {
				return nil, atlaserr.InvalidIndex(ctx.Span, aerr.Error())
			}
			out = next
		}
	}
	return out, nil
}

func hsIntersect(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("hashSetIntersect", args, 2, ctx); err != nil {
		return nil, err
	}
	a, err := asHashSet(ctx, args[0], "hashSetIntersect")
	if err != nil {
		return nil, err
	}
	b, err := asHashSet(ctx, args[1], "hashSetIntersect")
	if err != nil {
		return nil, err
	}
	out := value.NewHashSet()
	for _, e := range a.Elems() {
		has, herr := b.Has(e)
		if herr != nil {
			return nil, atlaserr.InvalidIndex(ctx.Span, herr.Error())
		}
		if has {
			next, aerr := out.Added(e)
			if aerr != nil {
				return nil, atlaserr.InvalidIndex(ctx.Span, aerr.Error())
			}
			out = next
		}
	}
	return out, nil
}
