package debugger

import (
	"io"

	"atlas/internal/interpreter"
	"atlas/internal/lexer"
	"atlas/internal/parser"
	"atlas/internal/value"
)

// Evaluate runs expr in a fresh interpreter over a transient scope seeded
// by visibleVariables (spec §4.8's "Evaluate" request); for a VM session
// that scope holds the VM's globals only. The suspended engine's own state is never
// touched, only read from, so the expression can have no side effect on it
// beyond allocating new Values in the scratch interpreter.
func (s *Session) Evaluate(expr string) Response {
	toks, err := lexer.CreateLexer(expr).Scan()
	if err != nil {
		return Response{Kind: RespError, Error: err.Error()}
	}
	stmts, errs := parser.Make(toks).Parse()
	if len(errs) > 0 {
		return Response{Kind: RespError, Error: errs[0].Error()}
	}
	scratch := interpreter.New(s.security, io.Discard)
	for name, v := range s.visibleVariables() {
		scratch.SetGlobal(name, v)
	}
	result, rerr := scratch.RunStmts(stmts)
	if rerr != nil {
		return Response{Kind: RespError, Error: rerr.Error()}
	}
	return Response{Kind: RespEvalResult, Value: result.String()}
}

// visibleVariables builds the seed for a scratch interpreter's global table.
// For an interpreter session it merges the current frame's locals over the
// globals (locals shadow same-named globals, matching ordinary lexical
// lookup). For a VM session it returns the VM's globals only; the VM's
// frame locals carry no names and are not included.
func (s *Session) visibleVariables() map[string]value.Value {
	out := map[string]value.Value{}
	if s.kind == KindVM {
		for name, v := range s.vmEngine.Globals() {
			out[name] = v
		}
		return out
	}
	for name, v := range s.interp.Globals() {
		out[name] = v
	}
	for name, v := range s.interp.Locals() {
		out[name] = v
	}
	return out
}
