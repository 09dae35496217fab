package interpreter

import "atlas/internal/value"

// Environment is a lexically scoped set of bindings, chained to its
// enclosing scope. Grounded on the teacher's environment.go (a flat
// name->value map with set/get), completed with the parent-chain
// interpreter.go already assumed (VisitBlockStmt's MakeNestedEnvironment
// call) but that the teacher's environment.go never actually defined.
//
// The outermost Environment of a running program (Parent == nil) plays the
// role the compiler's separate global table plays: VisitFuncDeclStmt always
// defines into it directly (spec's "fn hoists to a fallback global,
// regardless of nesting depth"), bypassing whatever block scope is current.
type Environment struct {
	parent  *Environment
	values  map[string]value.Value
	mutable map[string]bool
}

func newEnvironment(parent *Environment) *Environment {
	return &Environment{
		parent:  parent,
		values:  make(map[string]value.Value),
		mutable: make(map[string]bool),
	}
}

// define binds name in this scope, shadowing any same-named binding in an
// enclosing scope.
func (e *Environment) define(name string, v value.Value, mutable bool) {
	e.values[name] = v
	e.mutable[name] = mutable
}

// get resolves name by walking outward from this scope to the root.
func (e *Environment) get(name string) (value.Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// boundBefore reports whether name resolves anywhere strictly between this
// scope and (but not including) stop — used to replicate the compiler's
// "locally bound" precedence check (resolveLocal/resolveUpvalue) that lets a
// real binding shadow a same-named stdlib builtin, without the builtin ever
// losing to an unrelated global of the same name.
func (e *Environment) boundBefore(name string, stop *Environment) bool {
	for env := e; env != nil && env != stop; env = env.parent {
		if _, ok := env.values[name]; ok {
			return true
		}
	}
	return false
}

// assign rewrites an existing binding, honoring `let` immutability. Reports
// whether name was found at all.
func (e *Environment) assign(name string, v value.Value) (found bool, mutable bool) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			if !env.mutable[name] {
				return true, false
			}
			env.values[name] = v
			return true, true
		}
	}
	return false, false
}

// forceSet rewrites an existing binding regardless of mutability (the
// copy-on-write write-back sequence for collection-mutating calls bypasses
// the ordinary immutability check the same way the compiler's
// writeBackStore does), or defines it at the root if it is not bound
// anywhere in the chain.
func (e *Environment) forceSet(name string, v value.Value) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = v
			return
		}
		if env.parent == nil {
			env.values[name] = v
			env.mutable[name] = true
			return
		}
	}
}
