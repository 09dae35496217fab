package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/bytecode"
	"atlas/internal/lexer"
	"atlas/internal/parser"
	"atlas/internal/typecheck"
)

// compileSource runs the full front end the way every entry point in this
// module does: lex -> parse -> typecheck -> compile.
func compileSource(t *testing.T, src string) *bytecode.Bytecode {
	t.Helper()
	toks, err := lexer.CreateLexer(src).Scan()
	require.NoError(t, err, "lexing failed")
	stmts, errs := parser.Make(toks).Parse()
	require.Empty(t, errs, "parsing failed")
	checked, _ := typecheck.Check(stmts)
	bc, cErr := Compile(checked)
	require.NoError(t, cErr, "compiling failed")
	return bc
}

func TestCompileArithmeticProducesExactInstructionStream(t *testing.T) {
	bc := compileSource(t, "5 + 1;")
	want := concat(
		bytecode.MakeInstruction(bytecode.OpConstant, 0),
		bytecode.MakeInstruction(bytecode.OpConstant, 1),
		bytecode.MakeInstruction(bytecode.OpAdd),
		bytecode.MakeInstruction(bytecode.OpHalt),
	)
	if diff := cmp.Diff(want, []byte(bc.Instructions)); diff != "" {
		t.Fatalf("instruction stream mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{5.0, 1.0}, bc.ConstantsPool); diff != "" {
		t.Fatalf("constant pool mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileNegationProducesExactInstructionStream(t *testing.T) {
	bc := compileSource(t, "-5;")
	want := concat(
		bytecode.MakeInstruction(bytecode.OpConstant, 0),
		bytecode.MakeInstruction(bytecode.OpNegate),
		bytecode.MakeInstruction(bytecode.OpHalt),
	)
	if diff := cmp.Diff(want, []byte(bc.Instructions)); diff != "" {
		t.Fatalf("instruction stream mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileWhileLoopProducesLoopingInstructions(t *testing.T) {
	bc := compileSource(t, `
		var total = 0;
		var i = 0;
		while (i < 3) {
			total = total + i;
			i = i + 1;
		}
	`)
	assert.Contains(t, bc.Disassemble(), "Loop", "expected a backward Loop jump")
}

func TestCompileFunctionDeclCompilesClosure(t *testing.T) {
	bc := compileSource(t, `fn add(a, b) { return a + b; } add(1, 2);`)
	assert.NotEmpty(t, bc.ConstantsPool, "expected the compiled function to end up in the constant pool")
}

func TestDisassembleProducesReadableText(t *testing.T) {
	bc := compileSource(t, "1 + 2;")
	assert.NotEmpty(t, bc.Disassemble())
}

func concat(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
