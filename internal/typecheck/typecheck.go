// Package typecheck implements the lightweight, best-effort static pass
// spec.md §4.7 describes: it never rejects a program for being untypeable
// (Atlas stays dynamically typed at its core), it only annotates what it can
// prove so the compiler and interpreter can skip dynamic dispatch at those
// call sites, and it raises ownership diagnostics at call sites that pass a
// non-shared value where the callee expects `shared<T>` or vice versa.
//
// Grounded on the teacher's own resolver pass (binder/resolver.go): a single
// forward walk over the tree carrying a chain of lexical scopes, annotating
// nodes in place rather than building a separate symbol table to consult
// later. Atlas's AST stores expression nodes by value (Accept has a value
// receiver), so "annotate in place" here means rebuilding the parent node
// with the annotated child substituted in, not mutating through a pointer.
package typecheck

import (
	"fmt"

	"atlas/internal/ast"
	"atlas/internal/atlaserr"
)

// binding is what the checker statically knows about one variable: its
// inferred TypeTag (for Member dispatch) and its ownership annotation, if it
// was bound as a function parameter (for the call-site checks of §4.7 —
// plain `let`/`var` locals carry OwnershipNone, since nothing short of a
// parameter annotation proves a value shared).
type binding struct {
	tag ast.TypeTag
	own ast.Ownership
}

// scope is one lexical level of statically-known variable bindings, chained
// to its parent the same way interpreter.environment chains at runtime.
type scope struct {
	vars   map[string]binding
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: map[string]binding{}, parent: parent}
}

func (s *scope) define(name string, tag ast.TypeTag) {
	s.vars[name] = binding{tag: tag, own: ast.OwnershipNone}
}

func (s *scope) defineParam(name string, tag ast.TypeTag, own ast.Ownership) {
	s.vars[name] = binding{tag: tag, own: own}
}

func (s *scope) lookup(name string) (ast.TypeTag, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b.tag, true
		}
	}
	return ast.TagUnknown, false
}

func (s *scope) lookupOwnership(name string) (ast.Ownership, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b.own, true
		}
	}
	return ast.OwnershipNone, false
}

// Checker carries the diagnostics accumulated across one Check call. It
// never aborts early: a failed inference just leaves a node's TypeTag at
// TagUnknown, which both engines already treat as "resolve dynamically".
type Checker struct {
	diags []atlaserr.Diagnostic
	funcs map[string]ast.FunctionLiteral
}

// Check runs the annotation pass over a parsed program, returning the
// (possibly rewritten) statement list and any diagnostics raised. The
// returned statements are what the compiler/interpreter should run; the
// input slice is never mutated in place.
func Check(stmts []ast.Stmt) ([]ast.Stmt, []atlaserr.Diagnostic) {
	c := &Checker{funcs: map[string]ast.FunctionLiteral{}}
	top := newScope(nil)
	c.collectFuncDecls(stmts)
	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = c.checkStmt(s, top)
	}
	return out, c.diags
}

// collectFuncDecls pre-registers every top-level function so ownership
// checks at a call site can see a callee declared later in the file,
// matching the teacher's hoisting behavior for FuncDeclStmt (spec §4.2).
func (c *Checker) collectFuncDecls(stmts []ast.Stmt) {
	for _, s := range stmts {
		if fd, ok := s.(ast.FuncDeclStmt); ok {
			c.funcs[fd.Name.Lexeme] = fd.Fn
		}
	}
}

func (c *Checker) errorf(span atlaserr.Span, code, format string, args ...any) {
	c.diags = append(c.diags, atlaserr.Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}
