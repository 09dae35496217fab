// DateTime support is built on the standard library's time package: see
// internal/value/opaque.go for why no pack library grounds an alternative.
package stdlib

import (
	"time"

	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("datetimeNow", datetimeNow)
	register("datetimeFormat", datetimeFormat)
	register("datetimeYear", datetimeYear)
	register("datetimeMonth", datetimeMonth)
	register("datetimeDay", datetimeDay)
}

func asDateTime(ctx Context, v value.Value, who string) (*value.DateTime, *atlaserr.RuntimeError) {
	d, ok := v.(*value.DateTime)
	if !ok {
		return nil, typeErr(ctx, who+" expects a DateTime receiver, got "+v.Kind().String())
	}
	return d, nil
}

func datetimeNow(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("datetimeNow", args, 0, ctx); err != nil {
		return nil, err
	}
	return &value.DateTime{T: time.Now().UTC()}, nil
}

func datetimeFormat(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("datetimeFormat", args, 2, ctx); err != nil {
		return nil, err
	}
	d, err := asDateTime(ctx, args[0], "datetimeFormat")
	if err != nil {
		return nil, err
	}
	layout, lerr := asString(ctx, args[1], "datetimeFormat")
	if lerr != nil {
		return nil, lerr
	}
	return value.String(d.T.Format(layout)), nil
}

func datetimeYear(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("datetimeYear", args, 1, ctx); err != nil {
		return nil, err
	}
	d, err := asDateTime(ctx, args[0], "datetimeYear")
	if err != nil {
		return nil, err
	}
	return value.Number(d.T.Year()), nil
}

func datetimeMonth(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("datetimeMonth", args, 1, ctx); err != nil {
		return nil, err
	}
	d, err := asDateTime(ctx, args[0], "datetimeMonth")
	if err != nil {
		return nil, err
	}
	return value.Number(int(d.T.Month())), nil
}

func datetimeDay(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("datetimeDay", args, 1, ctx); err != nil {
		return nil, err
	}
	d, err := asDateTime(ctx, args[0], "datetimeDay")
	if err != nil {
		return nil, err
	}
	return value.Number(d.T.Day()), nil
}
