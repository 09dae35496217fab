// Package interpreter is the tree-walking execution engine (spec.md §4.5):
// the first of the two semantically-identical execution engines, sharing the
// value model (internal/value), the dispatch table (internal/dispatch) and
// the stdlib (internal/stdlib) with internal/vm. Grounded on the teacher's
// interpreter/interpreter.go (visitor-dispatch tree walk, panic/recover
// runtime-error surfacing) and interpreter/environment.go (a name->value
// scope), completing the teacher's own dangling MakeNestedEnvironment
// reference into a real parent-chained Environment (internal/interpreter's
// environment.go) and generalizing the walk to closures, pattern matching
// and the copy-on-write write-back sequence spec.md §4.2/§4.3/§4.6 require.
//
// Control flow that can be expressed as an ordinary Go value threaded back up
// through the StmtVisitor return path (return/break/continue) uses the
// signal type below, reserving panic/recover specifically for
// *atlaserr.RuntimeError faults — the same split the teacher's own
// interpreter and this repository's compiler both use panic/recover for
// (faults only, never ordinary control flow). The one exception is the `?`
// operator (VisitTry): it can surface arbitrarily deep inside an expression,
// with no StmtVisitor return path back to the nearest function boundary, so
// it panics a small earlyReturn sentinel that only callClosure and the
// top-level run loop ever recover.
package interpreter

import (
	"io"

	"atlas/internal/ast"
	"atlas/internal/atlaserr"
	"atlas/internal/stdlib"
	"atlas/internal/token"
	"atlas/internal/value"
)

type signalKind int

const (
	signalNone signalKind = iota
	signalReturn
	signalBreak
	signalContinue
)

// signal is what every StmtVisitor method returns (as any), carrying a
// return/break/continue request up through the enclosing block/if/loop
// visitors until something consumes it.
type signal struct {
	kind  signalKind
	value value.Value
}

// earlyReturn unwinds a `?` operator's Err propagation (spec §4.2) to the
// nearest function-call boundary, or to the program root if the `?`
// appears at top level. See the package doc comment for why this alone
// uses panic instead of the signal return path.
type earlyReturn struct{ value value.Value }

// Interpreter walks a typed AST directly, evaluating expressions and
// executing statements without ever lowering to bytecode.
type Interpreter struct {
	root *Environment // the program's global table; every fn declaration and every top-level let/var binds here
	env  *Environment  // current lexical lookup scope

	mainDepth  int // 0 at top level, incremented for every nested function call
	blockDepth int // block nesting within the current function/top-level body

	security *stdlib.SecurityContext
	output   io.Writer
	span     atlaserr.Span // call-site span of the call currently in flight, for Invoke re-entry

	debugger  Hooks
	callStack []string // display name of each call in progress, outermost first
}

// New returns an Interpreter ready to run a program under the given security
// context, writing print/io output to out.
func New(security *stdlib.SecurityContext, out io.Writer) *Interpreter {
	root := newEnvironment(nil)
	return &Interpreter{root: root, env: root, security: security, output: out}
}

// Run executes stmts to completion, returning the value the program leaves
// as its result (the last top-level expression statement's value, mirroring
// internal/compiler's "trailing Pop before Halt" resolution) or the runtime
// fault that stopped it.
func Run(stmts []ast.Stmt, security *stdlib.SecurityContext, out io.Writer) (value.Value, *atlaserr.RuntimeError) {
	return New(security, out).RunStmts(stmts)
}

// RunStmts executes stmts against this already-constructed Interpreter,
// reusing any debugger hooks or globals already installed on it — the entry
// point a debugger session uses so a pause/resume cycle and a seeded
// evaluation scope both act on the very instance the caller holds.
func (i *Interpreter) RunStmts(stmts []ast.Stmt) (result value.Value, rerr *atlaserr.RuntimeError) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*atlaserr.RuntimeError); ok {
				rerr = re
				return
			}
			panic(r)
		}
	}()
	result = i.runProgram(stmts)
	return
}

// runProgram mirrors compiler.compileProgram: the final statement, if it is
// a bare expression statement, becomes the program's result instead of
// being discarded. A `?` operator unwinding all the way to the top level (no
// enclosing function call) ends the program with the propagated Err value,
// the same way Return does in the VM's single top-level frame.
func (i *Interpreter) runProgram(stmts []ast.Stmt) (result value.Value) {
	defer func() {
		if r := recover(); r != nil {
			if er, ok := r.(earlyReturn); ok {
				result = er.value
				return
			}
			panic(r)
		}
	}()
	for idx, s := range stmts {
		if idx == len(stmts)-1 {
			if es, ok := s.(ast.ExpressionStmt); ok {
				return i.eval(es.Expression)
			}
		}
		if sig := i.execStmt(s); sig.kind == signalReturn {
			return sig.value
		}
	}
	return value.Null{}
}

func (i *Interpreter) execStmt(s ast.Stmt) signal {
	if i.debugger != nil {
		i.debugger.BeforeStmt(i, stmtSpan(i, s))
	}
	return s.Accept(i).(signal)
}

func (i *Interpreter) eval(e ast.Expression) value.Value {
	return e.Accept(i).(value.Value)
}

// SetGlobal binds name directly in the program's global table, bypassing
// immutability — used by the embedding API to inject host values (spec §6).
func (i *Interpreter) SetGlobal(name string, v value.Value) { i.root.define(name, v, true) }

func (i *Interpreter) GetGlobal(name string) (value.Value, bool) { return i.root.get(name) }

// Globals returns a snapshot of every top-level binding, for a debugger
// session's variable inspection and expression-evaluation scope seeding.
func (i *Interpreter) Globals() map[string]value.Value {
	out := make(map[string]value.Value, len(i.root.values))
	for k, v := range i.root.values {
		out[k] = v
	}
	return out
}

func spanOf(t token.Token) atlaserr.Span {
	return atlaserr.Span{Start: t.Offset, End: t.Offset + len(t.Lexeme), Line: int(t.Line)}
}
