package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"atlas/internal/compiler"
	"atlas/internal/debugger"
	"atlas/internal/lexer"
	"atlas/internal/parser"
	"atlas/internal/stdlib"
	"atlas/internal/typecheck"
)

// debugCmd runs a source file under a debugger.Session and drives it from a
// line-oriented JSON request/response loop on stdin/stdout — the simplest
// possible transport for the protocol spec.md §4.8 defines, since the
// protocol itself (not any particular transport) is what's in scope.
type debugCmd struct {
	engine string
}

func (*debugCmd) Name() string     { return "debug" }
func (*debugCmd) Synopsis() string { return "run a file under the debugger protocol" }
func (*debugCmd) Usage() string {
	return "debug [-engine interpreter|vm] <file>:\n  read one JSON request per line on stdin, write one JSON response per line on stdout.\n"
}

func (d *debugCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&d.engine, "engine", "vm", "execution engine: interpreter or vm")
}

func (d *debugCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	security := stdlib.Unrestricted()
	var session *debugger.Session
	switch d.engine {
	case "interpreter":
		session = debugger.NewInterpreterSession(security, os.Stdout)
	default:
		session = debugger.NewVMSession(security, os.Stdout)
	}

	fmt.Fprintln(os.Stderr, "atlas debug session ready; send SetBreakpoint/etc requests, then the literal line RUN to start")
	scanner := bufio.NewScanner(os.Stdin)
	enc := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "RUN":
			var resp debugger.Response
			if d.engine == "interpreter" {
				resp = session.RunInterpreter(checked)
			} else {
				bc, cErr := compiler.Compile(checked)
				if cErr != nil {
					enc.Encode(debugger.Response{Kind: debugger.RespError, Error: cErr.Error()})
					return subcommands.ExitFailure
				}
				resp = session.RunVM(bc)
			}
			enc.Encode(resp)
		default:
			var req debugger.Request
			if err := json.Unmarshal([]byte(line), &req); err != nil {
				enc.Encode(debugger.Response{Kind: debugger.RespError, Error: err.Error()})
				continue
			}
			enc.Encode(session.Handle(req))
		}
	}
	return subcommands.ExitSuccess
}
