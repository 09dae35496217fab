package typecheck

import (
	"atlas/internal/ast"
	"atlas/internal/atlaserr"
	"atlas/internal/token"
)

// checkExpr rewrites one expression, recursing into every subexpression and
// resolving Member.TypeTag wherever inferTag can determine the receiver's
// static type. It never reports an error for failing to infer a tag: an
// unresolved Member is exactly what spec.md §4.7 calls "the rare Member call
// the typechecker left unannotated", left for the compiler/interpreter's own
// dynamic-dispatch fallback to handle at runtime.
func (c *Checker) checkExpr(e ast.Expression, sc *scope) ast.Expression {
	switch ex := e.(type) {
	case ast.Binary:
		ex.Left = c.checkExpr(ex.Left, sc)
		ex.Right = c.checkExpr(ex.Right, sc)
		return ex
	case ast.Unary:
		ex.Right = c.checkExpr(ex.Right, sc)
		return ex
	case ast.Literal:
		return ex
	case ast.Grouping:
		ex.Expression = c.checkExpr(ex.Expression, sc)
		return ex
	case ast.Variable:
		return ex
	case ast.Assign:
		ex.Value = c.checkExpr(ex.Value, sc)
		return ex
	case ast.Logical:
		ex.Left = c.checkExpr(ex.Left, sc)
		ex.Right = c.checkExpr(ex.Right, sc)
		return ex
	case ast.ArrayLiteral:
		for i, el := range ex.Elements {
			ex.Elements[i] = c.checkExpr(el, sc)
		}
		return ex
	case ast.Index:
		ex.Target = c.checkExpr(ex.Target, sc)
		ex.Idx = c.checkExpr(ex.Idx, sc)
		return ex
	case ast.Call:
		ex.Callee = c.checkExpr(ex.Callee, sc)
		for i, a := range ex.Args {
			ex.Args[i] = c.checkExpr(a, sc)
		}
		c.checkOwnership(ex, sc)
		return ex
	case ast.Member:
		ex.Target = c.checkExpr(ex.Target, sc)
		for i, a := range ex.Args {
			ex.Args[i] = c.checkExpr(a, sc)
		}
		if ex.TypeTag == ast.TagUnknown {
			ex.TypeTag = c.inferTag(ex.Target, sc)
		}
		// ex.Trait is left nil: nothing upstream of this pass can ever
		// populate a trait registry, since no impl-block syntax exists in
		// the parser/AST (see DESIGN.md) — every Member call resolves
		// either through TypeTag or the runtime dynamic-dispatch fallback.
		return ex
	case ast.Match:
		ex.Scrutinee = c.checkExpr(ex.Scrutinee, sc)
		for i, arm := range ex.Arms {
			armScope := newScope(sc)
			c.bindPattern(arm.Pattern, armScope)
			if arm.Guard != nil {
				ex.Arms[i].Guard = c.checkExpr(arm.Guard, armScope)
			}
			ex.Arms[i].Body = c.checkExpr(arm.Body, armScope)
		}
		return ex
	case ast.Try:
		ex.Inner = c.checkExpr(ex.Inner, sc)
		return ex
	case ast.FunctionLiteral:
		return c.checkFunctionLiteral(ex, sc)
	case ast.Constructor:
		if ex.Inner != nil {
			ex.Inner = c.checkExpr(ex.Inner, sc)
		}
		return ex
	default:
		return e
	}
}

// bindPattern defines every name a pattern binds, in sc, with the tag it
// statically implies where one is knowable (Some/Ok/Err narrow to
// TagOption/TagResult having already been proven by the scrutinee; the
// bound inner variable itself stays TagUnknown, since nothing here proves
// the payload's own type).
func (c *Checker) bindPattern(p ast.Pattern, sc *scope) {
	switch pat := p.(type) {
	case ast.WildcardPattern:
	case ast.VarPattern:
		sc.define(pat.Name.Lexeme, ast.TagUnknown)
	case ast.LiteralPattern:
	case ast.ConstructorPattern:
		if pat.Inner != nil {
			c.bindPattern(pat.Inner, sc)
		}
	case ast.ArrayPattern:
		for _, el := range pat.Elements {
			c.bindPattern(el, sc)
		}
	case ast.OrPattern:
		for _, alt := range pat.Alternatives {
			c.bindPattern(alt, sc)
		}
	}
}

// inferTag determines the static TypeTag of e's result, or TagUnknown if it
// cannot be proven without flow analysis this pass doesn't do. There is no
// bare stdlib constructor (e.g. a callable "HashMap()") anywhere in the
// builtin registry to recognize here — every collection type is only ever
// produced by a free-function call already named for its own receiver
// (hashMapPut, queueEnqueue, ...), so a Call can never statically prove a
// TagHashMap/TagQueue/... result the way an ArrayLiteral proves TagArray.
func (c *Checker) inferTag(e ast.Expression, sc *scope) ast.TypeTag {
	switch ex := e.(type) {
	case ast.Literal:
		return tagForLiteral(ex.Value)
	case ast.ArrayLiteral:
		return ast.TagArray
	case ast.Constructor:
		switch ex.Name {
		case "Some", "None":
			return ast.TagOption
		case "Ok", "Err":
			return ast.TagResult
		}
		return ast.TagUnknown
	case ast.Variable:
		if tag, ok := sc.lookup(ex.Name.Lexeme); ok {
			return tag
		}
		return ast.TagUnknown
	case ast.Grouping:
		return c.inferTag(ex.Expression, sc)
	default:
		return ast.TagUnknown
	}
}

func tagForLiteral(v any) ast.TypeTag {
	switch v.(type) {
	case nil:
		return ast.TagNull
	case bool:
		return ast.TagBool
	case float64:
		return ast.TagNumber
	case string:
		return ast.TagString
	default:
		return ast.TagUnknown
	}
}

func spanOf(t token.Token) atlaserr.Span {
	return atlaserr.Span{Start: t.Offset, End: t.Offset + len(t.Lexeme), Line: int(t.Line)}
}
