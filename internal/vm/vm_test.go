package vm

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
	"atlas/internal/value"
)

func runSource(t *testing.T, src string) (value.Value, *bytes.Buffer) {
	t.Helper()
	toks, err := lexer.CreateLexer(src).Scan()
	require.NoError(t, err, "lexing failed")
	stmts, errs := parser.Make(toks).Parse()
	require.Empty(t, errs, "parsing failed")
	checked, _ := typecheck.Check(stmts)
	bc, cErr := compiler.Compile(checked)
	require.NoError(t, cErr, "compiling failed")
	var out bytes.Buffer
	machine := New(stdlib.Unrestricted(), &out)
	res, rErr := machine.Run(bc)
	require.NoError(t, rErr, "running failed")
	return res, &out
}

func TestRunArithmeticExpression(t *testing.T) {
	res, _ := runSource(t, "5 * 3 + 2;")
	n, ok := res.(value.Number)
	require.True(t, ok, "expected a number, got %#v", res)
	assert.Equal(t, float64(17), float64(n))
}

func TestRunWhileLoopAccumulates(t *testing.T) {
	res, _ := runSource(t, `
		var total = 0;
		var i = 0;
		while (i < 5) {
			total = total + i;
			i = i + 1;
		}
		total;
	`)
	n, ok := res.(value.Number)
	require.True(t, ok, "expected a number, got %#v", res)
	assert.Equal(t, float64(10), float64(n))
}

func TestRunFunctionCallReturnsValue(t *testing.T) {
	res, _ := runSource(t, `fn double(x) { return x * 2; } double(21);`)
	n, ok := res.(value.Number)
	require.True(t, ok, "expected a number, got %#v", res)
	assert.Equal(t, float64(42), float64(n))
}

func TestRunPrintWritesToOutput(t *testing.T) {
	_, out := runSource(t, `print "hi";`)
	assert.Equal(t, "hi\n", out.String())
}

func TestCallInvokesDeclaredFunctionByName(t *testing.T) {
	toks, err := lexer.CreateLexer(`fn triple(x) { return x * 3; }`).Scan()
	require.NoError(t, err, "lexing failed")
	stmts, errs := parser.Make(toks).Parse()
	require.Empty(t, errs, "parsing failed")
	checked, _ := typecheck.Check(stmts)
	bc, cErr := compiler.Compile(checked)
	require.NoError(t, cErr, "compiling failed")
	var out bytes.Buffer
	machine := New(stdlib.Unrestricted(), &out)
	_, rErr := machine.Run(bc)
	require.NoError(t, rErr, "running failed")

	res, cErr2 := machine.Call("triple", []value.Value{value.Number(4)})
	require.NoError(t, cErr2)
	n, ok := res.(value.Number)
	require.True(t, ok, "expected a number, got %#v", res)
	assert.Equal(t, float64(12), float64(n))
}
