package debugger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/compiler"
	"atlas/internal/lexer"
	"atlas/internal/parser"
	"atlas/internal/stdlib"
	"atlas/internal/typecheck"
)

func TestRunVMWithoutBreakpointsCompletes(t *testing.T) {
	toks, err := lexer.CreateLexer("var x = 1; x = x + 1; x;").Scan()
	require.NoError(t, err, "lexing failed")
	stmts, errs := parser.Make(toks).Parse()
	require.Empty(t, errs, "parsing failed")
	checked, _ := typecheck.Check(stmts)
	bc, cErr := compiler.Compile(checked)
	require.NoError(t, cErr, "compiling failed")

	var out bytes.Buffer
	session := NewVMSession(stdlib.Unrestricted(), &out)
	resp := session.RunVM(bc)
	assert.Equal(t, RespPaused, resp.Kind)
	assert.Equal(t, PauseStep, resp.Reason)
}

func TestSetBreakpointThenRunVMPausesAtLine(t *testing.T) {
	toks, err := lexer.CreateLexer(`
		var x = 1;
		var y = 2;
		x = x + y;
	`).Scan()
	require.NoError(t, err, "lexing failed")
	stmts, errs := parser.Make(toks).Parse()
	require.Empty(t, errs, "parsing failed")
	checked, _ := typecheck.Check(stmts)
	bc, cErr := compiler.Compile(checked)
	require.NoError(t, cErr, "compiling failed")

	var out bytes.Buffer
	session := NewVMSession(stdlib.Unrestricted(), &out)
	setResp := session.Handle(Request{Kind: ReqSetBreakpoint, Line: 4})
	require.Equal(t, RespBreakpointSet, setResp.Kind)

	runResp := session.RunVM(bc)
	require.Equal(t, RespPaused, runResp.Kind)
	assert.Equal(t, PauseBreakpoint, runResp.Reason)

	contResp := session.Handle(Request{Kind: ReqContinue})
	assert.Equal(t, RespPaused, contResp.Kind)
	assert.Equal(t, PauseStep, contResp.Reason)
}

func TestListBreakpointsReflectsSetBreakpoint(t *testing.T) {
	session := NewVMSession(stdlib.Unrestricted(), &bytes.Buffer{})
	session.Handle(Request{Kind: ReqSetBreakpoint, Line: 2})
	resp := session.Handle(Request{Kind: ReqListBreakpoints})
	require.Equal(t, RespBreakpoints, resp.Kind)
	assert.Len(t, resp.Breakpoints, 1)
}
