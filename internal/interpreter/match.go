package interpreter

import (
	"atlas/internal/ast"
	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

// VisitMatch mirrors compiler.VisitMatch's semantics directly against Go
// values instead of lowering to bytecode: each arm gets its own child scope
// for whatever bindings its pattern introduces, tried in order, first match
// wins. A guard that evaluates false is treated the same as a pattern
// mismatch — try the next arm. No arm matching raises through the same
// always-failing stdlib builtin the compiler falls back to, rather than a
// dedicated error path, so both engines produce identical NonExhaustiveMatch
// errors.
func (i *Interpreter) VisitMatch(m ast.Match) any {
	scrutinee := i.eval(m.Scrutinee)
	for _, arm := range m.Arms {
		saved := i.env
		i.env = newEnvironment(i.env)
		if i.matchPattern(arm.Pattern, scrutinee) {
			if arm.Guard != nil && !value.IsTruthy(i.eval(arm.Guard)) {
				i.env = saved
				continue
			}
			result := i.eval(arm.Body)
			i.env = saved
			return result
		}
		i.env = saved
	}
	span := spanOf(m.Pos)
	if _, err := i.callBuiltin("__non_exhaustive_match__", nil, span); err != nil {
		panic(err)
	}
	panic(atlaserr.NonExhaustiveMatch(span)) // unreachable: __non_exhaustive_match__ always errors
}

// matchPattern tests pat against v, declaring any bindings it introduces
// directly into the current (per-arm or per-alternative) environment as it
// succeeds. It returns as soon as a sub-pattern fails, leaving no bindings
// from the unmatched remainder behind — the direct-value-inspection
// analogue of compilePattern's fail-jump bookkeeping.
func (i *Interpreter) matchPattern(pat ast.Pattern, v value.Value) bool {
	switch p := pat.(type) {
	case ast.WildcardPattern:
		return true
	case ast.VarPattern:
		i.env.define(p.Name.Lexeme, v, false)
		return true
	case ast.LiteralPattern:
		return value.Equal(v, i.eval(p.Value))
	case ast.ConstructorPattern:
		return i.matchConstructorPattern(p, v)
	case ast.ArrayPattern:
		return i.matchArrayPattern(p, v)
	case ast.OrPattern:
		return i.matchOrPattern(p, v)
	default:
		panic(atlaserr.TypeErr(atlaserr.Span{}, "unsupported pattern form"))
	}
}

// matchConstructorPattern matches Some/None/Ok/Err. Option and Result both
// carry a single Inner field, so the same recursive matchPattern call
// serves whichever variant carries one (mirrors compiler.compileConstructorPattern).
func (i *Interpreter) matchConstructorPattern(p ast.ConstructorPattern, v value.Value) bool {
	switch p.Name {
	case "Some":
		o, ok := v.(value.Option)
		if !ok || !o.HasValue {
			return false
		}
		if p.Inner == nil {
			return true
		}
		return i.matchPattern(p.Inner, o.Inner)
	case "None":
		o, ok := v.(value.Option)
		return ok && !o.HasValue
	case "Ok":
		r, ok := v.(value.Result)
		if !ok || !r.IsOk {
			return false
		}
		if p.Inner == nil {
			return true
		}
		return i.matchPattern(p.Inner, r.Inner)
	case "Err":
		r, ok := v.(value.Result)
		if !ok || r.IsOk {
			return false
		}
		if p.Inner == nil {
			return true
		}
		return i.matchPattern(p.Inner, r.Inner)
	default:
		panic(atlaserr.TypeErr(atlaserr.Span{}, "unknown constructor pattern "+p.Name))
	}
}

func (i *Interpreter) matchArrayPattern(p ast.ArrayPattern, v value.Value) bool {
	arr, ok := v.(*value.Array)
	if !ok || arr.Len() != len(p.Elements) {
		return false
	}
	for idx, elemPat := range p.Elements {
		elemVal, err := arr.Get(idx)
		if err != nil {
			return false
		}
		if !i.matchPattern(elemPat, elemVal) {
			return false
		}
	}
	return true
}

// matchOrPattern tries each alternative in its own child scope, discarding
// any partial bindings a failed alternative introduced before moving on —
// the direct-value-inspection analogue of compileOrPattern's
// pop-and-truncate-locals cleanup on a failed attempt.
func (i *Interpreter) matchOrPattern(p ast.OrPattern, v value.Value) bool {
	for _, alt := range p.Alternatives {
		saved := i.env
		i.env = newEnvironment(i.env)
		if i.matchPattern(alt, v) {
			return true
		}
		i.env = saved
	}
	return false
}
