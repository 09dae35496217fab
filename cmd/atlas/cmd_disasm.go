package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/subcommands"

	"atlas/internal/compiler"
	"atlas/internal/lexer"
	"atlas/internal/parser"
	"atlas/internal/profiler"
	"atlas/internal/stdlib"
	"atlas/internal/typecheck"
	"atlas/internal/value"
	"atlas/internal/vm"
)

// disasmCmd compiles a source file and prints its bytecode, optionally
// dumping the constant pool or profiling one execution. Grounded on the
// teacher's cmd_emit_bytecode.go (compile, then disassemble-to-text), with
// the file-dumping flags replaced by stdout output and two flags this
// implementation actually has a use for.
type disasmCmd struct {
	dumpConstants bool
	profile       bool
}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "compile a file and print its bytecode" }
func (*disasmCmd) Usage() string {
	return "disasm [-dump-constants] [-profile] <file>:\n  print disassembled bytecode.\n"
}

func (d *disasmCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&d.dumpConstants, "dump-constants", false, "also dump the constant pool via go-spew")
	f.BoolVar(&d.profile, "profile", false, "run the bytecode once and print a timing/size summary")
}

func (d *disasmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	toks, lexErr := lexer.CreateLexer(string(data)).Scan()
	if lexErr != nil {
		fmt.Fprintf(os.Stderr, "💥 lexing error: %v\n", lexErr)
		return subcommands.ExitFailure
	}
	stmts, parseErrs := parser.Make(toks).Parse()
	if len(parseErrs) > 0 {
		fmt.Fprintf(os.Stderr, "💥 parsing error:\n")
		for _, e := range parseErrs {
			fmt.Fprintf(os.Stderr, "\t%v\n", e)
		}
		return subcommands.ExitFailure
	}
	checked, _ := typecheck.Check(stmts)
	bc, cErr := compiler.Compile(checked)
	if cErr != nil {
		fmt.Fprintf(os.Stderr, "💥 compilation error:\n\t%v\n", cErr)
		return subcommands.ExitFailure
	}

	fmt.Print(bc.Disassemble())
	if d.dumpConstants {
		fmt.Println("constants:")
		spew.Dump(bc.ConstantsPool)
	}
	if d.profile {
		engine := vm.New(stdlib.Unrestricted(), os.Stdout)
		result, _, rerr := profiler.Run(bc, func() (value.Value, error) {
			return engine.Run(bc)
		})
		if rerr != nil {
			fmt.Fprintf(os.Stderr, "💥 execution error: %v\n", rerr)
			return subcommands.ExitFailure
		}
		fmt.Println(result.String())
	}
	return subcommands.ExitSuccess
}
