package debugger

import "github.com/google/uuid"

// ConditionKind discriminates a breakpoint's firing rule (spec §4.8).
type ConditionKind int

const (
	CondAlways ConditionKind = iota
	CondHitCount
	CondHitCountMultiple
	CondExpression
)

// Condition is one breakpoint's firing rule. N is the hit-count threshold
// for HitCount/HitCountMultiple; Expr is the passthrough expression text
// for Expression conditions — the table itself never evaluates it, since
// that requires engine access the table doesn't have (see Session.consult).
type Condition struct {
	Kind ConditionKind `json:"kind"`
	N    int           `json:"n,omitempty"`
	Expr string        `json:"expr,omitempty"`
}

// Breakpoint is one id-keyed entry in a BreakpointTable. LogMessage non-
// empty makes this a log point: it never pauses, it only appends to the
// session's log buffer. Offset and Verified are meaningful for a VM-backed
// session only; an interpreter-backed session verifies every breakpoint
// immediately (see BindInterpreter).
type Breakpoint struct {
	ID         string    `json:"id"`
	Line       int       `json:"line"`
	Condition  Condition `json:"condition"`
	LogMessage string    `json:"logMessage,omitempty"`
	Verified   bool      `json:"verified"`
	Offset     int       `json:"offset"`
	Hits       int       `json:"hits"`
}

// BreakpointTable is the id-keyed, per-line-indexed store of every
// breakpoint and log point a session has set.
type BreakpointTable struct {
	byID   map[string]*Breakpoint
	byLine map[int][]*Breakpoint
}

func NewBreakpointTable() *BreakpointTable {
	return &BreakpointTable{byID: map[string]*Breakpoint{}, byLine: map[int][]*Breakpoint{}}
}

// Set adds a new unverified breakpoint at line, returning it so the caller
// can report its generated id back to the client.
func (t *BreakpointTable) Set(line int, cond Condition, logMessage string) *Breakpoint {
	bp := &Breakpoint{ID: uuid.NewString(), Line: line, Condition: cond, LogMessage: logMessage, Offset: -1}
	t.byID[bp.ID] = bp
	t.byLine[line] = append(t.byLine[line], bp)
	return bp
}

func (t *BreakpointTable) Remove(id string) bool {
	bp, ok := t.byID[id]
	if !ok {
		return false
	}
	delete(t.byID, id)
	lines := t.byLine[bp.Line]
	for i, b := range lines {
		if b.ID == id {
			t.byLine[bp.Line] = append(lines[:i], lines[i+1:]...)
			break
		}
	}
	return true
}

func (t *BreakpointTable) Clear() {
	t.byID = map[string]*Breakpoint{}
	t.byLine = map[int][]*Breakpoint{}
}

func (t *BreakpointTable) List() []*Breakpoint {
	out := make([]*Breakpoint, 0, len(t.byID))
	for _, bp := range t.byID {
		out = append(out, bp)
	}
	return out
}

// BindVM resolves each breakpoint's line to the first matching instruction
// offset in sm, marking it verified. A line with no instruction mapping to
// it (dead code, a blank line) stays unverified.
func (t *BreakpointTable) BindVM(sm *SourceMap) {
	for _, bp := range t.byID {
		if off, ok := sm.FirstOffsetForLine(bp.Line); ok {
			bp.Offset = off
			bp.Verified = true
		}
	}
}

// BindInterpreter marks every breakpoint verified unconditionally: the tree
// walker has no instruction offsets to bind against, so naming a line is
// itself sufficient (see DESIGN.md).
func (t *BreakpointTable) BindInterpreter() {
	for _, bp := range t.byID {
		bp.Verified = true
	}
}

// Fire bumps the hit count of every verified breakpoint at line and
// returns those whose condition's hit-count rule holds this time (an
// Expression-kind condition always passes here — the caller must still
// evaluate its Expr and discard the candidate if it is false).
func (t *BreakpointTable) Fire(line int) []*Breakpoint {
	var hit []*Breakpoint
	for _, bp := range t.byLine[line] {
		if !bp.Verified {
			continue
		}
		bp.Hits++
		switch bp.Condition.Kind {
		case CondAlways:
			hit = append(hit, bp)
		case CondHitCount:
			if bp.Hits == bp.Condition.N {
				hit = append(hit, bp)
			}
		case CondHitCountMultiple:
			if bp.Condition.N > 0 && bp.Hits%bp.Condition.N == 0 {
				hit = append(hit, bp)
			}
		case CondExpression:
			hit = append(hit, bp)
		}
	}
	return hit
}
