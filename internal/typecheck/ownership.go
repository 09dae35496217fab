package typecheck

import (
	"atlas/internal/ast"
	"atlas/internal/atlaserr"
)

// checkOwnership applies spec.md §4.7's three call-site rules when call's
// callee resolves to a statically-known function declaration: passing a
// `shared` argument to a non-`shared` parameter is a warning; passing a
// non-`shared` argument to a `shared` parameter is an error; passing a
// `borrow` argument to an `own` parameter is a warning. Only a bare name
// call (`f(...)`) is checked — a Member call's receiver is handled by
// dispatch, not by this user-function lookup, and an indirect call through
// a variable holding a closure can't be resolved to a declaration
// statically.
func (c *Checker) checkOwnership(call ast.Call, sc *scope) {
	v, ok := call.Callee.(ast.Variable)
	if !ok {
		return
	}
	fn, ok := c.funcs[v.Name.Lexeme]
	if !ok {
		return
	}
	for i, arg := range call.Args {
		if i >= len(fn.Params) {
			break
		}
		argOwn := c.argOwnership(arg, sc)
		paramOwn := fn.Params[i].Ownership
		switch {
		case argOwn == ast.OwnershipShared && paramOwn != ast.OwnershipShared:
			c.errorf(spanOf(call.Pos), atlaserr.CodeOwnershipWarning,
				"passing shared value to non-shared parameter '%s' of '%s'", fn.Params[i].Name, v.Name.Lexeme)
		case argOwn != ast.OwnershipShared && paramOwn == ast.OwnershipShared:
			c.errorf(spanOf(call.Pos), atlaserr.CodeOwnershipError,
				"passing non-shared value to shared parameter '%s' of '%s'", fn.Params[i].Name, v.Name.Lexeme)
		case argOwn == ast.OwnershipBorrow && paramOwn == ast.OwnershipOwn:
			c.errorf(spanOf(call.Pos), atlaserr.CodeOwnershipWarning,
				"passing borrowed value to owning parameter '%s' of '%s'", fn.Params[i].Name, v.Name.Lexeme)
		}
	}
}

// argOwnership determines the ownership an argument expression carries,
// which is only provable when the expression is a bare reference to a
// variable itself bound as a parameter with an explicit annotation;
// anything else (a literal, a freshly constructed value, an arbitrary
// subexpression) carries no ownership annotation.
func (c *Checker) argOwnership(e ast.Expression, sc *scope) ast.Ownership {
	v, ok := e.(ast.Variable)
	if !ok {
		return ast.OwnershipNone
	}
	own, _ := sc.lookupOwnership(v.Name.Lexeme)
	return own
}
