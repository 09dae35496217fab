package stdlib

import (
	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("optionMap", optMap)
	register("optionUnwrapOr", optUnwrapOr)
	register("optionIsSome", optIsSome)
	register("optionIsNone", optIsNone)

	register("resultMap", resMap)
	register("resultMapErr", resMapErr)
	register("resultAndThen", resAndThen)
	register("resultOrElse", resOrElse)
	register("resultIsOk", resIsOk)
	register("resultIsErr", resIsErr)
	register("resultUnwrapOr", resUnwrapOr)

	register("__some__", makeSome)
	register("__none__", makeNone)
	register("__ok__", makeOk)
	register("__err__", makeErr)
}

// __some__/__none__/__ok__/__err__ back the compiler's lowering of the
// Some/None/Ok/Err constructor expressions: the fixed opcode set has no
// dedicated construction opcode for Option/Result (only the IsXxx/ExtractXxx
// pair pattern matching needs), so construction goes through the same Call
// path as any other builtin.
func makeSome(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("__some__", args, 1, ctx); err != nil {
		return nil, err
	}
	return value.Some(args[0]), nil
}

func makeNone(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("__none__", args, 0, ctx); err != nil {
		return nil, err
	}
	return value.None(), nil
}

func makeOk(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("__ok__", args, 1, ctx); err != nil {
		return nil, err
	}
	return value.Ok(args[0]), nil
}

func makeErr(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("__err__", args, 1, ctx); err != nil {
		return nil, err
	}
	return value.Err(args[0]), nil
}

func asOption(ctx Context, v value.Value, who string) (value.Option, *atlaserr.RuntimeError) {
	o, ok := v.(value.Option)
	if !ok {
		return value.Option{}, typeErr(ctx, who+" expects an Option receiver, got "+v.Kind().String())
	}
	return o, nil
}

func asResult(ctx Context, v value.Value, who string) (value.Result, *atlaserr.RuntimeError) {
	r, ok := v.(value.Result)
	if !ok {
		return value.Result{}, typeErr(ctx, who+" expects a Result receiver, got "+v.Kind().String())
	}
	return r, nil
}

func optMap(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("optionMap", args, 2, ctx); err != nil {
		return nil, err
	}
	o, err := asOption(ctx, args[0], "optionMap")
	if err != nil {
		return nil, err
	}
	if !o.HasValue {
		return o, nil
	}
	r, rerr := ctx.Invoke(args[1], []value.Value{o.Inner})
	if rerr != nil {
		return nil, rerr
	}
	return value.Some(r), nil
}

func optUnwrapOr(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("optionUnwrapOr", args, 2, ctx); err != nil {
		return nil, err
	}
	o, err := asOption(ctx, args[0], "optionUnwrapOr")
	if err != nil {
		return nil, err
	}
	if o.HasValue {
		return o.Inner, nil
	}
	return args[1], nil
}

func optIsSome(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("optionIsSome", args, 1, ctx); err != nil {
		return nil, err
	}
	o, err := asOption(ctx, args[0], "optionIsSome")
	if err != nil {
		return nil, err
	}
	return value.Bool(o.HasValue), nil
}

func optIsNone(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("optionIsNone", args, 1, ctx); err != nil {
		return nil, err
	}
	o, err := asOption(ctx, args[0], "optionIsNone")
	if err != nil {
		return nil, err
	}
	return value.Bool(!o.HasValue), nil
}

func resMap(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("resultMap", args, 2, ctx); err != nil {
		return nil, err
	}
	r, err := asResult(ctx, args[0], "resultMap")
	if err != nil {
		return nil, err
	}
	if !r.IsOk {
		return r, nil
	}
	out, rerr := ctx.Invoke(args[1], []value.Value{r.Inner})
	if rerr != nil {
		return nil, rerr
	}
	return value.Ok(out), nil
}

func resMapErr(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("resultMapErr", args, 2, ctx); err != nil {
		return nil, err
	}
	r, err := asResult(ctx, args[0], "resultMapErr")
	if err != nil {
		return nil, err
	}
	if r.IsOk {
		return r, nil
	}
	out, rerr := ctx.Invoke(args[1], []value.Value{r.Inner})
	if rerr != nil {
		return nil, rerr
	}
	return value.Err(out), nil
}

func resAndThen(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("resultAndThen", args, 2, ctx); err != nil {
		return nil, err
	}
	r, err := asResult(ctx, args[0], "resultAndThen")
	if err != nil {
		return nil, err
	}
	if !r.IsOk {
		return r, nil
	}
	out, rerr := ctx.Invoke(args[1], []value.Value{r.Inner})
	if rerr != nil {
		return nil, rerr
	}
	return out, nil
}

func resOrElse(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("resultOrElse", args, 2, ctx); err != nil {
		return nil, err
	}
	r, err := asResult(ctx, args[0], "resultOrElse")
	if err != nil {
		return nil, err
	}
	if r.IsOk {
		return r, nil
	}
	out, rerr := ctx.Invoke(args[1], []value.Value{r.Inner})
	if rerr != nil {
		return nil, rerr
	}
	return out, nil
}

func resIsOk(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("resultIsOk", args, 1, ctx); err != nil {
		return nil, err
	}
	r, err := asResult(ctx, args[0], "resultIsOk")
	if err != nil {
		return nil, err
	}
	return value.Bool(r.IsOk), nil
}

func resIsErr(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("resultIsErr", args, 1, ctx); err != nil {
		return nil, err
	}
	r, err := asResult(ctx, args[0], "resultIsErr")
	if err != nil {
		return nil, err
	}
	return value.Bool(!r.IsOk), nil
}

func resUnwrapOr(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("resultUnwrapOr", args, 2, ctx); err != nil {
		return nil, err
	}
	r, err := asResult(ctx, args[0], "resultUnwrapOr")
	if err != nil {
		return nil, err
	}
	if r.IsOk {
		return r.Inner, nil
	}
	return args[1], nil
}
