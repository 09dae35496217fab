package stdlib

import (
	"strconv"
	"strings"

	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("stringLen", strLen)
	register("stringUpper", strUpper)
	register("stringLower", strLower)
	register("stringTrim", strTrim)
	register("stringSplit", strSplit)
	register("stringReplace", strReplace)
	register("stringContains", strContains)
	register("stringStartsWith", strStartsWith)
	register("stringEndsWith", strEndsWith)
	register("stringCharAt", strCharAt)
	register("stringToNumber", strToNumber)
	register("stringRepeat", strRepeat)
}

func asString(ctx Context, v value.Value, who string) (string, *atlaserr.RuntimeError) {
	s, ok := v.(value.String)
	if !ok {
		return "", typeErr(ctx, who+" expects a string receiver, got "+v.Kind().String())
	}
	return string(s), nil
}

func strLen(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringLen", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringLen")
	if err != nil {
		return nil, err
	}
	return value.Number(len([]rune(s))), nil
}

func strUpper(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringUpper", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringUpper")
	if err != nil {
		return nil, err
	}
	return value.String(strings.ToUpper(s)), nil
}

func strLower(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringLower", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringLower")
	if err != nil {
		return nil, err
	}
	return value.String(strings.ToLower(s)), nil
}

func strTrim(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringTrim", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringTrim")
	if err != nil {
		return nil, err
	}
	return value.String(strings.TrimSpace(s)), nil
}

func strSplit(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringSplit", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringSplit")
	if err != nil {
		return nil, err
	}
	sep, serr := asString(ctx, args[1], "stringSplit")
	if serr != nil {
		return nil, serr
	}
	parts := strings.Split(s, sep)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.String(p)
	}
	return value.NewArray(out), nil
}

func strReplace(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringReplace", args, 3, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringReplace")
	if err != nil {
		return nil, err
	}
	old, oerr := asString(ctx, args[1], "stringReplace")
	if oerr != nil {
		return nil, oerr
	}
	next, nerr := asString(ctx, args[2], "stringReplace")
	if nerr != nil {
		return nil, nerr
	}
	return value.String(strings.ReplaceAll(s, old, next)), nil
}

func strContains(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringContains", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringContains")
	if err != nil {
		return nil, err
	}
	sub, serr := asString(ctx, args[1], "stringContains")
	if serr != nil {
		return nil, serr
	}
	return value.Bool(strings.Contains(s, sub)), nil
}

func strStartsWith(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringStartsWith", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringStartsWith")
	if err != nil {
		return nil, err
	}
	prefix, perr := asString(ctx, args[1], "stringStartsWith")
	if perr != nil {
		return nil, perr
	}
	return value.Bool(strings.HasPrefix(s, prefix)), nil
}

func strEndsWith(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringEndsWith", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringEndsWith")
	if err != nil {
		return nil, err
	}
	suffix, serr := asString(ctx, args[1], "stringEndsWith")
	if serr != nil {
		return nil, serr
	}
	return value.Bool(strings.HasSuffix(s, suffix)), nil
}

func strCharAt(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringCharAt", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringCharAt")
	if err != nil {
		return nil, err
	}
	i, ierr := asIndex(ctx, args[1], "stringCharAt")
	if ierr != nil {
		return nil, ierr
	}
	runes := []rune(s)
	if i < 0 || i >= len(runes) {
		return nil, atlaserr.OutOfBounds(ctx.Span, "string index out of range")
	}
	return value.String(string(runes[i])), nil
}

func strToNumber(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringToNumber", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringToNumber")
	if err != nil {
		return nil, err
	}
	n, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if perr != nil {
		return value.None(), nil
	}
	return value.Some(value.Number(n)), nil
}

func strRepeat(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stringRepeat", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asString(ctx, args[0], "stringRepeat")
	if err != nil {
		return nil, err
	}
	n, nerr := asIndex(ctx, args[1], "stringRepeat")
	if nerr != nil {
		return nil, nerr
	}
	if n < 0 {
		return nil, atlaserr.InvalidIndex(ctx.Span, "stringRepeat count must be non-negative")
	}
	return value.String(strings.Repeat(s, n)), nil
}
