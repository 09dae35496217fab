// Package runtime is the embedding API of spec.md §6 (Runtime/Atlas): the
// single facade an embedder constructs once, then drives with eval/call/
// get_global/set_global/register_function — choosing underneath whether
// source runs on the tree-walking interpreter or is compiled and run on the
// stack VM, the "parity contract" spec.md §2 promises means either choice
// produces the same observable result.
//
// Grounded on the teacher's own cmd_run.go/cmd_repl.go pipeline (lex, parse,
// interpret/compile+run) collapsed into one reusable type instead of one-off
// functions inside main, so a host program can hold a long-lived instance
// across many eval calls the way spec.md §6 describes.
package runtime

import (
	"io"
	"os"

	"atlas/internal/atlaserr"
	"atlas/internal/compiler"
	"atlas/internal/interpreter"
	"atlas/internal/lexer"
	"atlas/internal/parser"
	"atlas/internal/stdlib"
	"atlas/internal/typecheck"
	"atlas/internal/value"
	"atlas/internal/vm"
)

// ExecutionMode selects which engine a Runtime drives.
type ExecutionMode int

const (
	ModeInterpreter ExecutionMode = iota
	ModeVM
)

// Config mirrors spec.md §6's RuntimeConfig. MaxExecutionTime and
// MaxMemoryBytes are accepted but not enforced: spec.md §5 explicitly marks
// that enforcement out of scope, carried here only so an embedder's config
// struct round-trips without a field it has to special-case away.
type Config struct {
	Mode             ExecutionMode
	Security         *stdlib.SecurityContext
	Output           io.Writer
	MaxExecutionTime int64
	MaxMemoryBytes   int64
}

// ErrorKind discriminates the three EvalError variants of spec.md §6.
type ErrorKind int

const (
	ErrParse ErrorKind = iota
	ErrType
	ErrRuntime
)

// EvalError is the single error type eval/call ever return, wrapping
// whichever compile-time diagnostics or runtime fault actually occurred.
type EvalError struct {
	Kind  ErrorKind
	Diags []atlaserr.Diagnostic
	Err   error
}

func (e *EvalError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if len(e.Diags) > 0 {
		return e.Diags[0].Error()
	}
	return "evaluation error"
}

// engine is whichever of the VM or the interpreter actually runs programs,
// so Runtime's exported methods don't have to branch on Mode everywhere.
type engine interface {
	Call(name string, args []value.Value) (value.Value, error)
	GetGlobal(name string) (value.Value, bool)
	SetGlobal(name string, v value.Value)
}

// Runtime is Atlas's embedding surface (spec.md §6). A zero Runtime is not
// usable; construct with New/WithConfig/Sandboxed.
type Runtime struct {
	mode     ExecutionMode
	security *stdlib.SecurityContext
	output   io.Writer

	vmEngine  *vm.VM
	interp    *interpreter.Interpreter
	nativeFns map[string]*value.NativeFn
}

// New constructs a Runtime in the given mode with an unrestricted security
// context, writing program output to stdout.
func New(mode ExecutionMode) *Runtime {
	return WithConfig(Config{Mode: mode, Security: stdlib.Unrestricted(), Output: os.Stdout})
}

// Sandboxed constructs a Runtime in the given mode with every external
// capability denied (spec.md §6 "sandboxed(mode)").
func Sandboxed(mode ExecutionMode) *Runtime {
	return WithConfig(Config{Mode: mode, Security: stdlib.Sandboxed(), Output: io.Discard})
}

// WithConfig constructs a Runtime from an explicit Config, filling in the
// unrestricted/stdout defaults for any zero-valued field.
func WithConfig(cfg Config) *Runtime {
	if cfg.Security == nil {
		cfg.Security = stdlib.Unrestricted()
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	r := &Runtime{mode: cfg.Mode, security: cfg.Security, output: cfg.Output, nativeFns: map[string]*value.NativeFn{}}
	switch cfg.Mode {
	case ModeVM:
		r.vmEngine = vm.New(cfg.Security, cfg.Output)
	default:
		r.interp = interpreter.New(cfg.Security, cfg.Output)
	}
	return r
}

func (r *Runtime) engine() engine {
	if r.mode == ModeVM {
		return r.vmEngine
	}
	return r.interp
}

// Eval lexes, parses, typechecks and runs source, returning its result value
// (spec.md §6 "eval(source) -> Result<Value, EvalError>").
func (r *Runtime) Eval(source string) (value.Value, *EvalError) {
	toks, lexErr := lexer.CreateLexer(source).Scan()
	if lexErr != nil {
		return nil, &EvalError{Kind: ErrParse, Diags: []atlaserr.Diagnostic{
			{Code: atlaserr.CodeSyntax, Message: lexErr.Error()},
		}}
	}
	stmts, parseErrs := parser.Make(toks).Parse()
	if len(parseErrs) > 0 {
		diags := make([]atlaserr.Diagnostic, len(parseErrs))
		for i, e := range parseErrs {
			diags[i] = atlaserr.Diagnostic{Code: atlaserr.CodeSyntax, Message: e.Error()}
		}
		return nil, &EvalError{Kind: ErrParse, Diags: diags}
	}
	checked, diags := typecheck.Check(stmts)
	if hasErrorDiagnostic(diags) {
		return nil, &EvalError{Kind: ErrType, Diags: diags}
	}

	if r.mode == ModeVM {
		bc, err := compiler.Compile(checked)
		if err != nil {
			return nil, &EvalError{Kind: ErrType, Err: err}
		}
		res, rerr := r.vmEngine.Run(bc)
		if rerr != nil {
			return nil, &EvalError{Kind: ErrRuntime, Err: rerr}
		}
		return res, nil
	}

	res, rerr := r.interp.RunStmts(checked)
	if rerr != nil {
		return nil, &EvalError{Kind: ErrRuntime, Err: rerr}
	}
	return res, nil
}

// hasErrorDiagnostic reports whether diags contains anything other than an
// ownership warning (AT3020): warnings are advisory (spec.md §4.7) and must
// not block evaluation, unlike every other diagnostic code this pass or the
// parser can produce.
func hasErrorDiagnostic(diags []atlaserr.Diagnostic) bool {
	for _, d := range diags {
		if d.Code != atlaserr.CodeOwnershipWarning {
			return true
		}
	}
	return false
}

// Call invokes a named function — stdlib or user-defined — with args (spec
// §6 "call(name, args)").
func (r *Runtime) Call(name string, args []value.Value) (value.Value, *EvalError) {
	res, err := r.engine().Call(name, args)
	if err != nil {
		return nil, &EvalError{Kind: ErrRuntime, Err: err}
	}
	return res, nil
}

// GetGlobal reads a global binding, reporting whether it exists.
func (r *Runtime) GetGlobal(name string) (value.Value, bool) {
	return r.engine().GetGlobal(name)
}

// SetGlobal binds name directly in the global table, the primary way a VM-
// mode embedder injects a runtime-only value like a NativeFn (spec.md §6).
func (r *Runtime) SetGlobal(name string, v value.Value) {
	r.engine().SetGlobal(name, v)
}

// RegisterFunction registers a fixed-arity host callback as the global
// name (spec.md §6). It does not shadow a stdlib builtin of the same name:
// both engines resolve a direct call `name(...)` to the builtin before
// globals. Arity is validated at call time by value.NativeFn's own caller.
func (r *Runtime) RegisterFunction(name string, arity int, fn func(args []value.Value) (value.Value, error)) {
	nf := &value.NativeFn{Name: name, Arity: arity, Fn: fn}
	r.nativeFns[name] = nf
	r.engine().SetGlobal(name, nf)
}

// RegisterVariadic registers a host callback that accepts any number of
// arguments (spec.md §6 "register_variadic").
func (r *Runtime) RegisterVariadic(name string, fn func(args []value.Value) (value.Value, error)) {
	r.RegisterFunction(name, -1, fn)
}
