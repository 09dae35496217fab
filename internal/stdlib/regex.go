// Regex support is built on the standard library's regexp package: see
// internal/value/opaque.go for why no pack library grounds an alternative.
package stdlib

import (
	"regexp"

	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("regexCompile", regexCompile)
	register("regexTest", regexTest)
	register("regexMatch", regexMatch)
	register("regexReplace", regexReplace)
	register("regexReplaceWith", regexReplaceWith)
	register("regexReplaceAll", regexReplaceAll)
	register("regexReplaceAllWith", regexReplaceAllWith)
}

func asRegex(ctx Context, v value.Value, who string) (*value.Regex, *atlaserr.RuntimeError) {
	r, ok := v.(*value.Regex)
	if !ok {
		return nil, typeErr(ctx, who+" expects a Regex receiver, got "+v.Kind().String())
	}
	return r, nil
}

func regexCompile(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("regexCompile", args, 1, ctx); err != nil {
		return nil, err
	}
	pattern, err := asString(ctx, args[0], "regexCompile")
	if err != nil {
		return nil, err
	}
	re, cerr := regexp.Compile(pattern)
	if cerr != nil {
		return value.Err(value.String(cerr.Error())), nil
	}
	return value.Ok(&value.Regex{Re: re, Source: pattern}), nil
}

func regexTest(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("regexTest", args, 2, ctx); err != nil {
		return nil, err
	}
	re, err := asRegex(ctx, args[0], "regexTest")
	if err != nil {
		return nil, err
	}
	s, serr := asString(ctx, args[1], "regexTest")
	if serr != nil {
		return nil, serr
	}
	return value.Bool(re.Re.MatchString(s)), nil
}

func regexMatch(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("regexMatch", args, 2, ctx); err != nil {
		return nil, err
	}
	re, err := asRegex(ctx, args[0], "regexMatch")
	if err != nil {
		return nil, err
	}
	s, serr := asString(ctx, args[1], "regexMatch")
	if serr != nil {
		return nil, serr
	}
	m := re.Re.FindStringSubmatch(s)
	if m == nil {
		return value.None(), nil
	}
	out := make([]value.Value, len(m))
	for i, g := range m {
		out[i] = value.String(g)
	}
	return value.Some(value.NewArray(out)), nil
}

func regexReplace(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("regexReplace", args, 3, ctx); err != nil {
		return nil, err
	}
	re, err := asRegex(ctx, args[0], "regexReplace")
	if err != nil {
		return nil, err
	}
	s, serr := asString(ctx, args[1], "regexReplace")
	if serr != nil {
		return nil, serr
	}
	repl, rerr := asString(ctx, args[2], "regexReplace")
	if rerr != nil {
		return nil, rerr
	}
	loc := re.Re.FindStringIndex(s)
	if loc == nil {
		return value.String(s), nil
	}
	return value.String(s[:loc[0]] + repl + s[loc[1]:]), nil
}

func regexReplaceAll(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("regexReplaceAll", args, 3, ctx); err != nil {
		return nil, err
	}
	re, err := asRegex(ctx, args[0], "regexReplaceAll")
	if err != nil {
		return nil, err
	}
	s, serr := asString(ctx, args[1], "regexReplaceAll")
	if serr != nil {
		return nil, serr
	}
	repl, rerr := asString(ctx, args[2], "regexReplaceAll")
	if rerr != nil {
		return nil, rerr
	}
	return value.String(re.Re.ReplaceAllString(s, repl)), nil
}

// regexReplaceWith/regexReplaceAllWith take a callback, so each match is
// re-entered through the calling engine (spec.md §4.4 "intrinsic re-entry").
func regexReplaceWith(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("regexReplaceWith", args, 3, ctx); err != nil {
		return nil, err
	}
	re, err := asRegex(ctx, args[0], "regexReplaceWith")
	if err != nil {
		return nil, err
	}
	s, serr := asString(ctx, args[1], "regexReplaceWith")
	if serr != nil {
		return nil, serr
	}
	loc := re.Re.FindStringIndex(s)
	if loc == nil {
		return value.String(s), nil
	}
	matched := s[loc[0]:loc[1]]
	repl, rerr := ctx.Invoke(args[2], []value.Value{value.String(matched)})
	if rerr != nil {
		return nil, rerr
	}
	replStr, ok := repl.(value.String)
	if !ok {
		return nil, typeErr(ctx, "regexReplaceWith callback must return a string")
	}
	return value.String(s[:loc[0]] + string(replStr) + s[loc[1]:]), nil
}

func regexReplaceAllWith(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("regexReplaceAllWith", args, 3, ctx); err != nil {
		return nil, err
	}
	re, err := asRegex(ctx, args[0], "regexReplaceAllWith")
	if err != nil {
		return nil, err
	}
	s, serr := asString(ctx, args[1], "regexReplaceAllWith")
	if serr != nil {
		return nil, serr
	}
	matches := re.Re.FindAllStringIndex(s, -1)
	if matches == nil {
		return value.String(s), nil
	}
	var out []byte
	last := 0
	for _, loc := range matches {
		out = append(out, s[last:loc[0]]...)
		repl, rerr := ctx.Invoke(args[2], []value.Value{value.String(s[loc[0]:loc[1]])})
		if rerr != nil {
			return nil, rerr
		}
		replStr, ok := repl.(value.String)
		if !ok {
			return nil, typeErr(ctx, "regexReplaceAllWith callback must return a string")
		}
		out = append(out, string(replStr)...)
		last = loc[1]
	}
	out = append(out, s[last:]...)
	return value.String(out), nil
}
