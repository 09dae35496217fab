// Package profiler times one bytecode run and renders a human-readable
// summary for the `disasm -profile` CLI flag. No teacher file profiles
// execution; this is a thin addition whose only job is to give
// github.com/dustin/go-humanize (SPEC_FULL.md's AMBIENT STACK
// "human-readable output" entry) a real call site.
package profiler

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"atlas/internal/bytecode"
	"atlas/internal/value"
)

// Result is one profiled run's summary.
type Result struct {
	Elapsed          time.Duration
	InstructionBytes int
	Constants        int
}

// Run times fn (a closure over vm.Run/Resume or interpreter.RunStmts) and
// pairs its elapsed time with bc's static size.
func Run(bc *bytecode.Bytecode, fn func() (value.Value, error)) (Result, value.Value, error) {
	start := time.Now()
	res, err := fn()
	return Result{
		Elapsed:          time.Since(start),
		InstructionBytes: len(bc.Instructions),
		Constants:        len(bc.ConstantsPool),
	}, res, err
}

// String renders the summary the way the CLI prints it.
func (r Result) String() string {
	return fmt.Sprintf("%s elapsed, %s of bytecode, %s constants",
		r.Elapsed, humanize.Bytes(uint64(r.InstructionBytes)), humanize.Comma(int64(r.Constants)))
}
