package debugger

import (
	"errors"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"

	"atlas/internal/ast"
	"atlas/internal/atlaserr"
	"atlas/internal/bytecode"
	"atlas/internal/interpreter"
	"atlas/internal/stdlib"
	"atlas/internal/value"
	"atlas/internal/vm"
)

// EngineKind selects which execution engine a Session drives.
type EngineKind int

const (
	KindVM EngineKind = iota
	KindInterpreter
)

// Session is a DebuggerSession (spec §4.8): one request/response protocol
// implementation wrapping either engine. The VM side rides the engine's own
// synchronous pause/resume contract (internal/vm.Hooks: BeforeInstruction
// returns a bool, Run/Resume return when it does). The tree-walking engine
// has no instruction pointer to back up and resume from — its control flow
// lives on the Go call stack across nested Accept calls — so its half of
// this session instead runs the interpreter on its own goroutine and
// suspends it at a statement boundary by blocking inside the Hooks callback
// itself until Continue/Step sends on resumeCh. Neither design is grounded
// on a single teacher file (informatter-nilan has no debugger); the
// breakpoint/step vocabulary is grounded on kristofer-smog's
// pkg/vm/debugger.go, generalized to a suspend-the-goroutine model for the
// engine that cannot be stepped by returning from a loop.
type Session struct {
	ID       string
	kind     EngineKind
	security *stdlib.SecurityContext

	vmEngine  *vm.VM
	bc        *bytecode.Bytecode
	sourceMap *SourceMap

	interp *interpreter.Interpreter

	breakpoints *BreakpointTable
	step        *StepTracker
	logs        []string

	finished    bool
	paused      bool
	pauseReason PauseReason
	pauseLine   int
	pauseIP     int

	pauseCh  chan pauseSignal
	resumeCh chan struct{}
	doneCh   chan doneSignal
}

type pauseSignal struct {
	reason PauseReason
	line   int
}

type doneSignal struct {
	result value.Value
	err    *atlaserr.RuntimeError
}

// NewVMSession builds a session that drives a stack VM.
func NewVMSession(security *stdlib.SecurityContext, out io.Writer) *Session {
	return &Session{
		ID:          uuid.NewString(),
		kind:        KindVM,
		security:    security,
		vmEngine:    vm.New(security, out),
		breakpoints: NewBreakpointTable(),
		step:        &StepTracker{},
	}
}

// NewInterpreterSession builds a session that drives the tree-walking
// engine.
func NewInterpreterSession(security *stdlib.SecurityContext, out io.Writer) *Session {
	return &Session{
		ID:          uuid.NewString(),
		kind:        KindInterpreter,
		security:    security,
		interp:      interpreter.New(security, out),
		breakpoints: NewBreakpointTable(),
		step:        &StepTracker{},
		pauseCh:     make(chan pauseSignal),
		resumeCh:    make(chan struct{}),
		doneCh:      make(chan doneSignal, 1),
	}
}

// Handle dispatches one request to its handler, the single entry point an
// embedder's protocol loop calls.
func (s *Session) Handle(req Request) Response {
	switch req.Kind {
	case ReqSetBreakpoint:
		bp := s.breakpoints.Set(req.Line, req.Condition, req.LogMessage)
		s.bindBreakpoints()
		return Response{Kind: RespBreakpointSet, Breakpoint: bp}
	case ReqRemoveBreakpoint:
		ok := s.breakpoints.Remove(req.BreakpointID)
		return Response{Kind: RespBreakpointRemoved, Removed: ok}
	case ReqListBreakpoints:
		return Response{Kind: RespBreakpoints, Breakpoints: s.breakpoints.List()}
	case ReqClearBreakpoints:
		s.breakpoints.Clear()
		return Response{Kind: RespBreakpoints, Breakpoints: nil}
	case ReqStepInto:
		return s.doStep(StepInto, 0)
	case ReqStepOver:
		return s.doStep(StepOver, 0)
	case ReqStepOut:
		return s.doStep(StepOut, 0)
	case ReqRunToLine:
		return s.doStep(StepRunTo, req.Line)
	case ReqContinue:
		return s.doContinue()
	case ReqPause:
		return Response{Kind: RespError, Error: "synchronous sessions cannot be asynchronously paused between requests"}
	case ReqGetStackTrace:
		return Response{Kind: RespStackTrace, Frames: s.stackTrace()}
	case ReqGetVariables:
		return Response{Kind: RespVariables, Variables: s.variables()}
	case ReqGetLocation:
		return Response{Kind: RespLocation, Location: s.location()}
	case ReqEvaluate:
		return s.Evaluate(req.Expression)
	case ReqDrainLog:
		msgs := s.logs
		s.logs = nil
		return Response{Kind: RespLog, LogMessages: msgs}
	default:
		return Response{Kind: RespError, Error: fmt.Sprintf("unknown request kind %q", req.Kind)}
	}
}

func (s *Session) bindBreakpoints() {
	if s.kind == KindVM {
		if s.sourceMap != nil {
			s.breakpoints.BindVM(s.sourceMap)
		}
		return
	}
	s.breakpoints.BindInterpreter()
}

// RunVM loads and starts bc under this VM session.
func (s *Session) RunVM(bc *bytecode.Bytecode) Response {
	s.bc = bc
	s.sourceMap = NewSourceMap(bc)
	s.bindBreakpoints()
	s.vmEngine.AttachDebugger(s)
	res, err := s.vmEngine.Run(bc)
	return s.translateVM(res, err)
}

// RunInterpreter starts stmts under this interpreter session on a
// dedicated goroutine, returning once it pauses or finishes.
func (s *Session) RunInterpreter(stmts []ast.Stmt) Response {
	s.interp.AttachDebugger(s)
	go func() {
		res, err := s.interp.RunStmts(stmts)
		s.doneCh <- doneSignal{result: res, err: err}
	}()
	return s.awaitPauseOrDone()
}

func (s *Session) doStep(kind StepKind, targetLine int) Response {
	if s.finished {
		return Response{Kind: RespError, Error: "session already finished"}
	}
	depth := s.currentDepth()
	s.step.Arm(kind, depth, targetLine)
	return s.resumeEngine()
}

func (s *Session) doContinue() Response {
	if s.finished {
		return Response{Kind: RespError, Error: "session already finished"}
	}
	s.step.Disarm()
	return s.resumeEngine()
}

func (s *Session) resumeEngine() Response {
	if s.kind == KindVM {
		res, err := s.vmEngine.Resume()
		return s.translateVM(res, err)
	}
	s.paused = false
	s.resumeCh <- struct{}{}
	return s.awaitPauseOrDone()
}

func (s *Session) awaitPauseOrDone() Response {
	select {
	case p := <-s.pauseCh:
		s.paused, s.pauseReason, s.pauseLine = true, p.reason, p.line
		return Response{Kind: RespPaused, Reason: p.reason, Location: s.location()}
	case d := <-s.doneCh:
		s.finished = true
		if d.err != nil {
			return Response{Kind: RespError, Error: d.err.Error()}
		}
		return Response{Kind: RespPaused, Reason: PauseStep, Value: d.result.String()}
	}
}

func (s *Session) translateVM(res value.Value, err error) Response {
	var p *vm.Paused
	if errors.As(err, &p) {
		s.paused, s.pauseIP = true, p.IP
		return Response{Kind: RespPaused, Reason: s.pauseReason, Location: s.location()}
	}
	s.finished = true
	if err != nil {
		return Response{Kind: RespError, Error: err.Error()}
	}
	return Response{Kind: RespPaused, Reason: PauseStep, Value: res.String()}
}

// BeforeInstruction implements vm.Hooks. Breakpoints and steps are consulted
// only at the first instruction of a source line, and the instruction a
// pause stopped before runs without being consulted again on resume.
func (s *Session) BeforeInstruction(v *vm.VM) bool {
	if s.paused && v.IP() == s.pauseIP {
		s.paused = false
		return false
	}
	span := v.Bytecode().SpanFor(v.IP())
	if first, ok := s.sourceMap.FirstOffsetForLine(span.Line); !ok || first != v.IP() {
		return false
	}
	pause, reason := s.consult(span.Line, len(v.StackTrace()))
	if pause {
		s.pauseReason, s.pauseIP = reason, v.IP()
	}
	return pause
}

// BeforeStmt implements interpreter.Hooks.
func (s *Session) BeforeStmt(i *interpreter.Interpreter, span atlaserr.Span) {
	pause, reason := s.consult(span.Line, len(i.StackTrace()))
	if !pause {
		return
	}
	s.pauseCh <- pauseSignal{reason: reason, line: span.Line}
	<-s.resumeCh
}

// consult is the engine-agnostic decision point: breakpoints are checked
// first (an Expression condition is evaluated against currently visible
// variables before it is allowed to pause), then stepping.
func (s *Session) consult(line, depth int) (bool, PauseReason) {
	for _, bp := range s.breakpoints.Fire(line) {
		if bp.Condition.Kind == CondExpression && !s.evaluatesTruthy(bp.Condition.Expr) {
			continue
		}
		if bp.LogMessage != "" {
			s.logs = append(s.logs, bp.LogMessage)
			continue
		}
		return true, PauseBreakpoint
	}
	if s.step.ShouldPause(depth, line) {
		return true, PauseStep
	}
	return false, ""
}

func (s *Session) evaluatesTruthy(expr string) bool {
	res := s.Evaluate(expr)
	return res.Kind == RespEvalResult && res.Value == "true"
}

func (s *Session) currentDepth() int {
	if s.kind == KindVM {
		return len(s.vmEngine.StackTrace())
	}
	return len(s.interp.StackTrace())
}

func (s *Session) stackTrace() []string {
	if s.kind == KindVM {
		return s.vmEngine.StackTrace()
	}
	return s.interp.StackTrace()
}

// variables dumps the currently visible frame's bindings via go-spew, the
// ambient stack's chosen "pretty print anything" tool for nested
// containers (SPEC_FULL.md's AMBIENT STACK note).
func (s *Session) variables() map[string]string {
	out := map[string]string{}
	if s.kind == KindVM {
		for idx, v := range s.vmEngine.Locals() {
			out[fmt.Sprintf("local%d", idx)] = spew.Sdump(v)
		}
		for name, v := range s.vmEngine.Globals() {
			out[name] = spew.Sdump(v)
		}
		return out
	}
	for name, v := range s.interp.Locals() {
		out[name] = spew.Sdump(v)
	}
	return out
}

func (s *Session) location() *Location {
	if s.kind == KindVM {
		span := s.bc.SpanFor(s.pauseIP)
		return &Location{Span: span, IP: s.pauseIP}
	}
	return &Location{Span: atlaserr.Span{Line: s.pauseLine}}
}
