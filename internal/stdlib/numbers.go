package stdlib

import (
	"math"

	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("numberToString", numToString)
	register("numberRound", numRound)
	register("numberFloor", numFloor)
	register("numberCeil", numCeil)
	register("numberAbs", numAbs)
	register("sqrt", mathSqrt)
	register("pow", mathPow)
	register("min", mathMin)
	register("max", mathMax)
}

func asNumber(ctx Context, v value.Value, who string) (float64, *atlaserr.RuntimeError) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, typeErr(ctx, who+" expects a number, got "+v.Kind().String())
	}
	return float64(n), nil
}

func checkFinite(ctx Context, f float64) (value.Value, *atlaserr.RuntimeError) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, atlaserr.InvalidNumericResult(ctx.Span)
	}
	return value.Number(f), nil
}

func numToString(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("numberToString", args, 1, ctx); err != nil {
		return nil, err
	}
	n, err := asNumber(ctx, args[0], "numberToString")
	if err != nil {
		return nil, err
	}
	return value.String(value.Number(n).String()), nil
}

func numRound(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("numberRound", args, 1, ctx); err != nil {
		return nil, err
	}
	n, err := asNumber(ctx, args[0], "numberRound")
	if err != nil {
		return nil, err
	}
	return checkFinite(ctx, math.Round(n))
}

func numFloor(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("numberFloor", args, 1, ctx); err != nil {
		return nil, err
	}
	n, err := asNumber(ctx, args[0], "numberFloor")
	if err != nil {
		return nil, err
	}
	return checkFinite(ctx, math.Floor(n))
}

func numCeil(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("numberCeil", args, 1, ctx); err != nil {
		return nil, err
	}
	n, err := asNumber(ctx, args[0], "numberCeil")
	if err != nil {
		return nil, err
	}
	return checkFinite(ctx, math.Ceil(n))
}

func numAbs(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("numberAbs", args, 1, ctx); err != nil {
		return nil, err
	}
	n, err := asNumber(ctx, args[0], "numberAbs")
	if err != nil {
		return nil, err
	}
	return checkFinite(ctx, math.Abs(n))
}

func mathSqrt(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("sqrt", args, 1, ctx); err != nil {
		return nil, err
	}
	n, err := asNumber(ctx, args[0], "sqrt")
	if err != nil {
		return nil, err
	}
	return checkFinite(ctx, math.Sqrt(n))
}

func mathPow(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("pow", args, 2, ctx); err != nil {
		return nil, err
	}
	base, err := asNumber(ctx, args[0], "pow")
	if err != nil {
		return nil, err
	}
	exp, eerr := asNumber(ctx, args[1], "pow")
	if eerr != nil {
		return nil, eerr
	}
	return checkFinite(ctx, math.Pow(base, exp))
}

func mathMin(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arityAtLeast("min", args, 1, ctx); err != nil {
		return nil, err
	}
	best, err := asNumber(ctx, args[0], "min")
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		n, nerr := asNumber(ctx, a, "min")
		if nerr != nil {
			return nil, nerr
		}
		if n < best {
			best = n
		}
	}
	return value.Number(best), nil
}

func mathMax(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arityAtLeast("max", args, 1, ctx); err != nil {
		return nil, err
	}
	best, err := asNumber(ctx, args[0], "max")
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		n, nerr := asNumber(ctx, a, "max")
		if nerr != nil {
			return nil, nerr
		}
		if n > best {
			best = n
		}
	}
	return value.Number(best), nil
}
