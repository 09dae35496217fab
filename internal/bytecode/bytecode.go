package bytecode

import (
	"fmt"
	"strings"

	"atlas/internal/atlaserr"
)

// DebugEntry maps one instruction offset to the source span it was lowered
// from. The table is kept sorted by Offset (spec.md §3.2) so source-map
// lookups can binary-search it.
type DebugEntry struct {
	Offset int
	Span   atlaserr.Span
}

// Bytecode is the compiler's output: a flat instruction stream, its
// constant pool, and the debug-span table source maps and error reporting
// read from. NumLocals is the slot count the top-level frame must reserve.
type Bytecode struct {
	Instructions  Instructions
	ConstantsPool []any
	DebugTable    []DebugEntry
	NumLocals     int
}

// SpanFor resolves the source span that produced the instruction at ip, by
// scanning backward to the nearest debug entry at or before ip. The debug
// table is sorted by construction (the compiler appends entries in
// emission order, which is monotonic in offset).
func (b *Bytecode) SpanFor(ip int) atlaserr.Span {
	var best atlaserr.Span
	for _, e := range b.DebugTable {
		if e.Offset > ip {
			break
		}
		best = e.Span
	}
	return best
}

// Disassemble renders the instruction stream as human-readable text, one
// instruction per line prefixed with its offset — the format the `disasm`
// CLI subcommand and debugger "list source" views share.
func (b *Bytecode) Disassemble() string {
	var out strings.Builder
	ip := 0
	for ip < len(b.Instructions) {
		op := Opcode(b.Instructions[ip])
		def, err := Get(op)
		if err != nil {
			fmt.Fprintf(&out, "%04d ERROR: %s\n", ip, err)
			ip++
			continue
		}
		operands, read := readOperands(def, b.Instructions[ip+1:])
		fmt.Fprintf(&out, "%04d %s\n", ip, formatInstruction(def, operands))
		ip += 1 + read
	}
	return out.String()
}

func readOperands(def *OpCodeDefinition, ins Instructions) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0
	for i, width := range def.OperandWidths {
		switch width {
		case 1:
			operands[i] = int(ReadUint8(ins, offset))
		case 2:
			operands[i] = int(ReadUint16(ins, offset))
		}
		offset += width
	}
	return operands, offset
}

func formatInstruction(def *OpCodeDefinition, operands []int) string {
	switch len(def.OperandWidths) {
	case 0:
		return def.Name
	case 1:
		return fmt.Sprintf("%s %d", def.Name, operands[0])
	case 2:
		return fmt.Sprintf("%s %d %d", def.Name, operands[0], operands[1])
	default:
		return def.Name
	}
}
