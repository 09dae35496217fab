// Package debugger implements the shared debug protocol of spec.md §4.8: a
// DebuggerSession wraps either execution engine behind one request/response
// API, with breakpoints, stepping, and expression evaluation working the
// same way regardless of which engine is underneath. No direct teacher
// grounding exists (informatter-nilan ships no debugger); the breakpoint
// table and instruction-display shape below are grounded on
// kristofer-smog's pkg/vm/debugger.go (an id-less instruction-offset
// breakpoint map plus step-mode flag), generalized to the protocol's
// id-keyed entries, hit-count conditions, and log points, and to a second
// engine that has no instruction offsets to bind against at all.
package debugger

import (
	"atlas/internal/atlaserr"
	"atlas/internal/bytecode"
)

// SourceMap resolves between bytecode instruction offsets and source
// locations, built from a compiled program's debug-span table (spec §4.8:
// "constructed from the bytecode debug-span table plus the original
// source's line-offset index" — the line-offset index is implicit here
// since every debug entry already carries its originating line).
type SourceMap struct {
	entries []bytecode.DebugEntry
}

// NewSourceMap copies bc's debug table, which the compiler guarantees is
// already sorted by instruction offset.
func NewSourceMap(bc *bytecode.Bytecode) *SourceMap {
	entries := make([]bytecode.DebugEntry, len(bc.DebugTable))
	copy(entries, bc.DebugTable)
	return &SourceMap{entries: entries}
}

// LocationForOffset resolves the span that produced the instruction at ip,
// by scanning to the nearest entry at or before ip.
func (sm *SourceMap) LocationForOffset(ip int) atlaserr.Span {
	var best atlaserr.Span
	for _, e := range sm.entries {
		if e.Offset > ip {
			break
		}
		best = e.Span
	}
	return best
}

// OffsetForLocation finds the instruction whose span contains offset span's
// start byte, for a debugger "run to line" request given a concrete span.
func (sm *SourceMap) OffsetForLocation(span atlaserr.Span) (int, bool) {
	for _, e := range sm.entries {
		if e.Span.Start <= span.Start && span.Start < e.Span.End {
			return e.Offset, true
		}
	}
	return 0, false
}

// FirstOffsetForLine returns the earliest instruction offset whose span
// originated on line, for binding a line-numbered breakpoint.
func (sm *SourceMap) FirstOffsetForLine(line int) (int, bool) {
	for _, e := range sm.entries {
		if e.Span.Line == line {
			return e.Offset, true
		}
	}
	return 0, false
}

// OffsetsForLine returns every instruction offset whose span originated on
// line, in ascending order.
func (sm *SourceMap) OffsetsForLine(line int) []int {
	var out []int
	for _, e := range sm.entries {
		if e.Span.Line == line {
			out = append(out, e.Offset)
		}
	}
	return out
}
