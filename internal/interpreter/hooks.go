package interpreter

import (
	"atlas/internal/ast"
	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

// Hooks lets a debugger session observe statement-boundary execution
// without this package depending on internal/debugger directly — the
// tree-walking analogue of internal/vm's Hooks (spec.md §4.8: "before each
// instruction (or AST node in the interpreter)"). BeforeStmt is free to
// block the calling goroutine for as long as it likes (a debugger session
// suspends the interpreter by simply not returning from this call); there
// is no instruction pointer to back up the way the VM does, since nothing
// has been consumed yet when BeforeStmt runs.
type Hooks interface {
	BeforeStmt(i *Interpreter, span atlaserr.Span)
}

// AttachDebugger installs hooks the statement-execution loop consults
// before running each statement. Passing nil detaches it.
func (i *Interpreter) AttachDebugger(h Hooks) { i.debugger = h }

// StackTrace returns the display name of each function call currently in
// progress, outermost first, for a debugger session's "get stack" request.
func (i *Interpreter) StackTrace() []string {
	out := make([]string, len(i.callStack))
	copy(out, i.callStack)
	return out
}

// Locals returns a snapshot of the innermost lexical scope's own bindings
// (not its parents') for a debugger session's "get variables" request.
func (i *Interpreter) Locals() map[string]value.Value {
	out := make(map[string]value.Value, len(i.env.values))
	for k, v := range i.env.values {
		out[k] = v
	}
	return out
}

// stmtSpan best-effort extracts a source span for s, for the debugger's
// location reporting: statements that carry a token of their own use it
// directly; the common ExpressionStmt/If/While/For wrappers fall back to
// the interpreter's most recently recorded call-site span, since plumbing a
// token through every control-flow statement would outgrow what stepping
// by statement actually needs.
func stmtSpan(i *Interpreter, s ast.Stmt) atlaserr.Span {
	switch st := s.(type) {
	case ast.VarStmt:
		return spanOf(st.Name)
	case ast.FuncDeclStmt:
		return spanOf(st.Name)
	case ast.ReturnStmt:
		return spanOf(st.Pos)
	case ast.BreakStmt:
		return spanOf(st.Pos)
	case ast.ContinueStmt:
		return spanOf(st.Pos)
	default:
		return i.span
	}
}
