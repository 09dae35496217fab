package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"atlas/internal/runtime"
)

// runCmd executes a source file to completion, selecting the interpreter or
// the VM via -engine (spec.md §6's ExecutionMode). Grounded on the
// teacher's cmd_run.go/cmd_run_compiled.go, merged into one command since
// both engines now sit behind the same runtime.Runtime facade.
type runCmd struct {
	engine  string
	sandbox bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "execute an Atlas source file" }
func (*runCmd) Usage() string {
	return "run [-engine interpreter|vm] [-sandbox] <file>:\n  execute Atlas source.\n"
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.engine, "engine", "vm", "execution engine: interpreter or vm")
	f.BoolVar(&r.sandbox, "sandbox", false, "deny I/O and network capabilities")
}

func (r *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	mode, err := parseEngine(r.engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitUsageError
	}

	var rt *runtime.Runtime
	if r.sandbox {
		rt = runtime.Sandboxed(mode)
	} else {
		rt = runtime.New(mode)
	}

	if _, evalErr := rt.Eval(string(data)); evalErr != nil {
		fmt.Fprintln(os.Stderr, evalErr.Error())
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func parseEngine(name string) (runtime.ExecutionMode, error) {
	switch name {
	case "", "vm":
		return runtime.ModeVM, nil
	case "interpreter":
		return runtime.ModeInterpreter, nil
	default:
		return 0, fmt.Errorf("unknown engine %q (want interpreter or vm)", name)
	}
}
