package vm

import "atlas/internal/value"

// frame is one active function activation (spec.md §3.3): the function
// being executed, its captured upvalues if it is a closure, the return
// instruction pointer, and the stack index its locals begin at.
type frame struct {
	fn        *value.Function
	closure   *value.Closure // nil unless this activation is a closure call
	returnIP  int
	stackBase int
	numLocals int
}

func (f *frame) name() string {
	if f.fn == nil {
		return "<main>"
	}
	return f.fn.Name
}
