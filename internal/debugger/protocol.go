package debugger

import "atlas/internal/atlaserr"

// RequestKind discriminates the sum of requests a DebuggerSession accepts
// (spec §4.8). Requests are flat, JSON-serializable structs keyed by this
// field, matching the teacher's own flat-struct configuration texture
// (see SPEC_FULL.md's AMBIENT STACK note on RuntimeConfig/SecurityContext).
type RequestKind string

const (
	ReqSetBreakpoint      RequestKind = "SetBreakpoint"
	ReqRemoveBreakpoint   RequestKind = "RemoveBreakpoint"
	ReqListBreakpoints    RequestKind = "ListBreakpoints"
	ReqClearBreakpoints   RequestKind = "ClearBreakpoints"
	ReqStepInto           RequestKind = "StepInto"
	ReqStepOver           RequestKind = "StepOver"
	ReqStepOut            RequestKind = "StepOut"
	ReqContinue           RequestKind = "Continue"
	ReqPause              RequestKind = "Pause"
	ReqGetStackTrace      RequestKind = "GetStackTrace"
	ReqGetVariables       RequestKind = "GetVariables"
	ReqGetLocation        RequestKind = "GetLocation"
	ReqEvaluate           RequestKind = "Evaluate"
	ReqRunToLine          RequestKind = "RunToLine"
	ReqDrainLog           RequestKind = "DrainLog"
)

// Request is one client message. Only the fields relevant to Kind are read.
type Request struct {
	Kind         RequestKind `json:"kind"`
	Line         int         `json:"line,omitempty"`
	BreakpointID string      `json:"breakpointId,omitempty"`
	Condition    Condition   `json:"condition,omitempty"`
	LogMessage   string      `json:"logMessage,omitempty"`
	Expression   string      `json:"expression,omitempty"`
}

// ResponseKind discriminates the sum of responses (spec §4.8).
type ResponseKind string

const (
	RespBreakpointSet     ResponseKind = "BreakpointSet"
	RespBreakpointRemoved ResponseKind = "BreakpointRemoved"
	RespBreakpoints       ResponseKind = "Breakpoints"
	RespPaused            ResponseKind = "Paused"
	RespStackTrace        ResponseKind = "StackTrace"
	RespVariables         ResponseKind = "Variables"
	RespLocation          ResponseKind = "Location"
	RespEvalResult        ResponseKind = "EvalResult"
	RespResumed           ResponseKind = "Resumed"
	RespLog               ResponseKind = "Log"
	RespError             ResponseKind = "Error"
)

// PauseReason explains why a Paused response was produced.
type PauseReason string

const (
	PauseBreakpoint PauseReason = "Breakpoint"
	PauseStep       PauseReason = "Step"
	PauseEntry      PauseReason = "Entry"
	PauseUser       PauseReason = "Pause"
	PauseCompleted  PauseReason = "Completed"
)

// Location is a resolved source position, carried on Paused/Location
// responses.
type Location struct {
	Span atlaserr.Span `json:"span"`
	IP   int           `json:"ip,omitempty"`
}

// Response is one server message, shaped the same way regardless of which
// engine produced it.
type Response struct {
	Kind         ResponseKind     `json:"kind"`
	Breakpoint   *Breakpoint      `json:"breakpoint,omitempty"`
	Breakpoints  []*Breakpoint    `json:"breakpoints,omitempty"`
	Removed      bool             `json:"removed,omitempty"`
	Reason       PauseReason      `json:"reason,omitempty"`
	Location     *Location        `json:"location,omitempty"`
	Frames       []string         `json:"frames,omitempty"`
	Variables    map[string]string `json:"variables,omitempty"`
	Value        string           `json:"value,omitempty"`
	LogMessages  []string         `json:"logMessages,omitempty"`
	Error        string           `json:"error,omitempty"`
}
