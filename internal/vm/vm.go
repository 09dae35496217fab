// Package vm is the stack-based bytecode engine (spec.md §4.4): the second
// of the two semantically-identical execution engines, sharing the value
// model (internal/value), the dispatch table (internal/dispatch) and the
// stdlib (internal/stdlib) with internal/interpreter. Grounded on the
// teacher's vm/vm.go (fetch-decode-dispatch loop reading one opcode at a
// time off a byte stream, vm/stack.go's push/pop/peek Stack), generalized
// from the teacher's single OP_CONSTANT/OP_END pair to the full opcode set,
// call frames, closures, and intrinsic re-entry spec.md §3.3/§4.4 require.
package vm

import (
	"io"

	"atlas/internal/atlaserr"
	"atlas/internal/bytecode"
	"atlas/internal/stdlib"
	"atlas/internal/value"
)

const initialStackCapacity = 1024

// Hooks lets a debugger session observe and pause execution without the VM
// depending on internal/debugger directly (spec.md §4.8's "VM run-debuggable
// loop"). BeforeInstruction runs before every opcode is decoded; returning
// true tells the VM to back up its instruction pointer (so the instruction
// re-executes on resume) and return a Paused result.
type Hooks interface {
	BeforeInstruction(vm *VM) (pause bool)
}

// Paused is returned by Run/Resume when a Hooks implementation requested a
// pause. The caller (a debugger session) inspects VM state, then calls
// Resume to continue from exactly this instruction.
type Paused struct {
	IP int
}

func (Paused) Error() string { return "execution paused" }

// VM executes compiled Atlas bytecode (internal/bytecode.Bytecode).
// One VM instance is reused across calls into the same program so that
// globals and registered natives persist across repeated Run/Call
// invocations (spec.md §6's embedding contract).
type VM struct {
	stack  []value.Value
	frames []frame

	globals map[string]value.Value

	bc *bytecode.Bytecode
	ip int

	security *stdlib.SecurityContext
	output   io.Writer
	debugger Hooks
}

// New returns a VM ready to run programs under the given security context,
// writing print/io output to out.
func New(security *stdlib.SecurityContext, out io.Writer) *VM {
	return &VM{
		stack:   make([]value.Value, 0, initialStackCapacity),
		globals: make(map[string]value.Value),
		security: security,
		output:   out,
	}
}

// AttachDebugger installs hooks the run loop consults before every
// instruction. Passing nil detaches it (zero overhead once nil).
func (vm *VM) AttachDebugger(h Hooks) { vm.debugger = h }

// SetGlobal binds name directly, bypassing the immutability the compiler
// enforces for `let` — used by the embedding API to inject host values
// (spec.md §6's get_global/set_global and register_function).
func (vm *VM) SetGlobal(name string, v value.Value) { vm.globals[name] = v }

func (vm *VM) GetGlobal(name string) (value.Value, bool) {
	v, ok := vm.globals[name]
	return v, ok
}

// Globals returns a snapshot of every global binding, for a debugger
// session's variable inspection and expression-evaluation scope seeding.
func (vm *VM) Globals() map[string]value.Value {
	out := make(map[string]value.Value, len(vm.globals))
	for k, v := range vm.globals {
		out[k] = v
	}
	return out
}

// IP exposes the current instruction pointer, for a paused debugger session.
func (vm *VM) IP() int { return vm.ip }

// Bytecode exposes the program currently loaded, for a paused debugger
// session's source-map and disassembly lookups.
func (vm *VM) Bytecode() *bytecode.Bytecode { return vm.bc }

// StackTrace returns the function name of each active frame, innermost
// last, for the debugger's "get stack" request.
func (vm *VM) StackTrace() []string {
	out := make([]string, len(vm.frames))
	for i, f := range vm.frames {
		out[i] = f.name()
	}
	return out
}

// Locals returns the live values of the current (innermost) frame's local
// slots, for the debugger's "get variables" request.
func (vm *VM) Locals() []value.Value {
	if len(vm.frames) == 0 {
		return nil
	}
	f := vm.frames[len(vm.frames)-1]
	n := f.numLocals
	if n == 0 {
		n = vm.bc.NumLocals
	}
	base := f.stackBase
	if base+n > len(vm.stack) {
		n = len(vm.stack) - base
	}
	out := make([]value.Value, n)
	copy(out, vm.stack[base:base+n])
	return out
}

// Run loads bc and executes it from offset 0 until Halt, returning the
// value compileProgram left on the stack as the program's result (Null if
// the program ended with an empty stack). A Hooks-requested pause returns
// *Paused instead of a *atlaserr.RuntimeError; Resume continues from there.
func (vm *VM) Run(bc *bytecode.Bytecode) (value.Value, error) {
	vm.bc = bc
	vm.ip = 0
	vm.stack = vm.stack[:0]
	vm.frames = append(vm.frames[:0], frame{stackBase: 0, numLocals: bc.NumLocals})
	for len(vm.stack) < bc.NumLocals {
		vm.stack = append(vm.stack, value.Null{})
	}
	return vm.resume(0)
}

// Resume continues a previously paused run until the next Halt, pause, or
// error.
func (vm *VM) Resume() (value.Value, error) {
	return vm.resume(0)
}

// resume runs the fetch-decode-dispatch loop until either:
//   - Halt is reached (only possible at the top level), returning the
//     current stack top as the program result;
//   - a Return drops the frame stack back to targetDepth, returning the
//     value that Return produced (this is how intrinsic re-entry and
//     embedding's `call(name, args)` stop exactly where they should); or
//   - a Hooks pause request or a runtime error interrupts execution.
func (vm *VM) resume(targetDepth int) (value.Value, error) {
	for {
		if vm.debugger != nil && vm.debugger.BeforeInstruction(vm) {
			return nil, &Paused{IP: vm.ip}
		}
		if vm.ip >= len(vm.bc.Instructions) {
			return nil, atlaserr.New(atlaserr.KindStackUnderflow, vm.bc.SpanFor(vm.ip), "instruction pointer ran past the end of the bytecode stream")
		}
		op := bytecode.Opcode(vm.bc.Instructions[vm.ip])
		def, defErr := bytecode.Get(op)
		if defErr != nil {
			return nil, atlaserr.UnknownOpcode(vm.bc.SpanFor(vm.ip), byte(op))
		}
		width := 1
		for _, w := range def.OperandWidths {
			width += w
		}
		span := vm.bc.SpanFor(vm.ip)

		switch op {
		case bytecode.OpConstant:
			idx := vm.readU16(1)
			vm.push(constantValue(vm.bc.ConstantsPool[idx]))
			vm.ip += width

		case bytecode.OpNull:
			vm.push(value.Null{})
			vm.ip += width
		case bytecode.OpTrue:
			vm.push(value.Bool(true))
			vm.ip += width
		case bytecode.OpFalse:
			vm.push(value.Bool(false))
			vm.ip += width

		case bytecode.OpGetLocal:
			idx := vm.readU16(1)
			f := vm.top()
			if f.stackBase+int(idx) >= len(vm.stack) {
				return nil, atlaserr.StackUnderflow(span)
			}
			vm.push(vm.stack[f.stackBase+int(idx)])
			vm.ip += width

		case bytecode.OpSetLocal:
			idx := vm.readU16(1)
			f := vm.top()
			if f.stackBase+int(idx) >= len(vm.stack) {
				return nil, atlaserr.StackUnderflow(span)
			}
			v, err := vm.peek()
			if err != nil {
				return nil, err
			}
			vm.stack[f.stackBase+int(idx)] = v
			vm.ip += width

		case bytecode.OpGetGlobal:
			idx := vm.readU16(1)
			name, _ := vm.bc.ConstantsPool[idx].(string)
			v, ok := vm.globals[name]
			if !ok {
				return nil, atlaserr.UndefinedVariable(span, name)
			}
			vm.push(v)
			vm.ip += width

		case bytecode.OpSetGlobal:
			idx := vm.readU16(1)
			name, _ := vm.bc.ConstantsPool[idx].(string)
			v, err := vm.peek()
			if err != nil {
				return nil, err
			}
			vm.globals[name] = v
			vm.ip += width

		case bytecode.OpMakeClosure:
			fnIdx := vm.readU16(1)
			numUp := vm.readU16(3)
			fn, _ := vm.bc.ConstantsPool[fnIdx].(*value.Function)
			ups := make(value.Upvalues, numUp)
			for i := int(numUp) - 1; i >= 0; i-- {
				v, err := vm.pop()
				if err != nil {
					return nil, err
				}
				ups[i] = v
			}
			vm.push(&value.Closure{Fn: fn, Upvalues: ups})
			vm.ip += width

		case bytecode.OpGetUpvalue:
			idx := vm.readU16(1)
			f := vm.top()
			if f.closure == nil || int(idx) >= len(f.closure.Upvalues) {
				return nil, atlaserr.TypeErr(span, "upvalue access outside a closure frame")
			}
			vm.push(f.closure.Upvalues[idx])
			vm.ip += width

		case bytecode.OpSetUpvalue:
			idx := vm.readU16(1)
			f := &vm.frames[len(vm.frames)-1]
			if f.closure == nil || int(idx) >= len(f.closure.Upvalues) {
				return nil, atlaserr.TypeErr(span, "upvalue access outside a closure frame")
			}
			v, err := vm.peek()
			if err != nil {
				return nil, err
			}
			f.closure.Upvalues = f.closure.Upvalues.Set(int(idx), v)
			vm.ip += width

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
			if err := vm.arith(op, span); err != nil {
				return nil, err
			}
			vm.ip += width

		case bytecode.OpNegate:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			n, ok := v.(value.Number)
			if !ok {
				return nil, atlaserr.TypeErr(span, "unary '-' expects a number")
			}
			vm.push(value.Number(-n))
			vm.ip += width

		case bytecode.OpEqual, bytecode.OpNotEqual:
			r, err := vm.pop()
			if err != nil {
				return nil, err
			}
			l, err := vm.pop()
			if err != nil {
				return nil, err
			}
			eq := value.Equal(l, r)
			if op == bytecode.OpNotEqual {
				eq = !eq
			}
			vm.push(value.Bool(eq))
			vm.ip += width

		case bytecode.OpLess, bytecode.OpLessEqual, bytecode.OpGreater, bytecode.OpGreaterEqual:
			if err := vm.compare(op, span); err != nil {
				return nil, err
			}
			vm.ip += width

		case bytecode.OpNot:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			vm.push(value.Bool(!value.IsTruthy(v)))
			vm.ip += width

		case bytecode.OpJump:
			off := vm.readI16(1)
			vm.ip = vm.ip + width + int(off)

		case bytecode.OpJumpIfFalse:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			off := vm.readI16(1)
			if !value.IsTruthy(v) {
				vm.ip = vm.ip + width + int(off)
			} else {
				vm.ip += width
			}

		case bytecode.OpLoop:
			off := vm.readI16(1)
			vm.ip = vm.ip + width + int(off)

		case bytecode.OpCall:
			argc := int(bytecode.ReadUint8(vm.bc.Instructions, vm.ip+1))
			if err := vm.call(argc, span, width); err != nil {
				return nil, err
			}

		case bytecode.OpReturn:
			retVal, err := vm.pop()
			if err != nil {
				return nil, err
			}
			f := vm.frames[len(vm.frames)-1]
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.stack = vm.stack[:f.stackBase-1]
			vm.push(retVal)
			vm.ip = f.returnIP
			if len(vm.frames) == targetDepth {
				return retVal, nil
			}

		case bytecode.OpArray:
			n := vm.readU16(1)
			elems := make([]value.Value, n)
			for i := int(n) - 1; i >= 0; i-- {
				v, err := vm.pop()
				if err != nil {
					return nil, err
				}
				elems[i] = v
			}
			vm.push(value.NewArray(elems))
			vm.ip += width

		case bytecode.OpGetIndex:
			idxVal, err := vm.pop()
			if err != nil {
				return nil, err
			}
			target, err := vm.pop()
			if err != nil {
				return nil, err
			}
			result, gerr := indexGet(target, idxVal, span)
			if gerr != nil {
				return nil, gerr
			}
			vm.push(result)
			vm.ip += width

		case bytecode.OpSetIndex:
			newVal, err := vm.pop()
			if err != nil {
				return nil, err
			}
			idxVal, err := vm.pop()
			if err != nil {
				return nil, err
			}
			target, err := vm.pop()
			if err != nil {
				return nil, err
			}
			result, serr := indexSet(target, idxVal, newVal, span)
			if serr != nil {
				return nil, serr
			}
			vm.push(result)
			vm.ip += width

		case bytecode.OpPop:
			if _, err := vm.pop(); err != nil {
				return nil, err
			}
			vm.ip += width

		case bytecode.OpDup:
			v, err := vm.peek()
			if err != nil {
				return nil, err
			}
			vm.push(v)
			vm.ip += width

		case bytecode.OpIsOptionSome, bytecode.OpIsOptionNone:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			o, ok := v.(value.Option)
			if !ok {
				return nil, atlaserr.TypeErr(span, "expected an Option value")
			}
			isSome := o.HasValue == (op == bytecode.OpIsOptionSome)
			vm.push(value.Bool(isSome))
			vm.ip += width

		case bytecode.OpIsResultOk, bytecode.OpIsResultErr:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			r, ok := v.(value.Result)
			if !ok {
				return nil, atlaserr.TypeErr(span, "expected a Result value")
			}
			isOk := r.IsOk == (op == bytecode.OpIsResultOk)
			vm.push(value.Bool(isOk))
			vm.ip += width

		case bytecode.OpExtractOptionValue:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			o, ok := v.(value.Option)
			if !ok {
				return nil, atlaserr.TypeErr(span, "expected an Option value")
			}
			vm.push(o.Inner)
			vm.ip += width

		case bytecode.OpExtractResultValue:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			r, ok := v.(value.Result)
			if !ok {
				return nil, atlaserr.TypeErr(span, "expected a Result value")
			}
			vm.push(r.Inner)
			vm.ip += width

		case bytecode.OpIsArray:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			_, ok := v.(*value.Array)
			vm.push(value.Bool(ok))
			vm.ip += width

		case bytecode.OpGetArrayLen:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			a, ok := v.(*value.Array)
			if !ok {
				return nil, atlaserr.TypeErr(span, "expected an array value")
			}
			vm.push(value.Number(a.Len()))
			vm.ip += width

		case bytecode.OpHalt:
			if len(vm.stack) == 0 {
				return value.Null{}, nil
			}
			return vm.stack[len(vm.stack)-1], nil

		default:
			return nil, atlaserr.UnknownOpcode(span, byte(op))
		}
	}
}

func (vm *VM) top() frame { return vm.frames[len(vm.frames)-1] }

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() (value.Value, *atlaserr.RuntimeError) {
	if len(vm.stack) == 0 {
		return nil, atlaserr.StackUnderflow(vm.bc.SpanFor(vm.ip))
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) peek() (value.Value, *atlaserr.RuntimeError) {
	if len(vm.stack) == 0 {
		return nil, atlaserr.StackUnderflow(vm.bc.SpanFor(vm.ip))
	}
	return vm.stack[len(vm.stack)-1], nil
}

func (vm *VM) readU16(operandOffset int) uint16 {
	return bytecode.ReadUint16(vm.bc.Instructions, vm.ip+operandOffset)
}

func (vm *VM) readI16(operandOffset int) int16 {
	return bytecode.ReadInt16(vm.bc.Instructions, vm.ip+operandOffset)
}

// constantValue converts one constant-pool entry (as produced by the
// compiler's addConstant/nameConstant: a raw Go string/float64, or an
// already-built value.Value such as *value.Function or value.Builtin) into
// the Value the stack holds.
func constantValue(raw any) value.Value {
	switch v := raw.(type) {
	case value.Value:
		return v
	case string:
		return value.String(v)
	case float64:
		return value.Number(v)
	case bool:
		return value.Bool(v)
	case nil:
		return value.Null{}
	default:
		return value.Null{}
	}
}

func (vm *VM) arith(op bytecode.Opcode, span atlaserr.Span) *atlaserr.RuntimeError {
	r, err := vm.pop()
	if err != nil {
		return err
	}
	l, err := vm.pop()
	if err != nil {
		return err
	}
	if op == bytecode.OpAdd {
		if ls, ok := l.(value.String); ok {
			rs, ok := r.(value.String)
			if !ok {
				return atlaserr.TypeErr(span, "'+' between string and "+r.Kind().String())
			}
			vm.push(value.String(string(ls) + string(rs)))
			return nil
		}
	}
	ln, ok := l.(value.Number)
	if !ok {
		return atlaserr.TypeErr(span, "arithmetic expects numbers, got "+l.Kind().String())
	}
	rn, ok := r.(value.Number)
	if !ok {
		return atlaserr.TypeErr(span, "arithmetic expects numbers, got "+r.Kind().String())
	}
	var result value.Number
	switch op {
	case bytecode.OpAdd:
		result = ln + rn
	case bytecode.OpSub:
		result = ln - rn
	case bytecode.OpMul:
		result = ln * rn
	case bytecode.OpDiv:
		if rn == 0 {
			return atlaserr.DivideByZero(span)
		}
		result = ln / rn
	case bytecode.OpMod:
		if rn == 0 {
			return atlaserr.DivideByZero(span)
		}
		result = value.Number(float64Mod(float64(ln), float64(rn)))
	}
	if !result.IsFinite() {
		return atlaserr.InvalidNumericResult(span)
	}
	vm.push(result)
	return nil
}

func float64Mod(a, b float64) float64 {
	m := a - b*float64(int64(a/b))
	return m
}

func (vm *VM) compare(op bytecode.Opcode, span atlaserr.Span) *atlaserr.RuntimeError {
	r, err := vm.pop()
	if err != nil {
		return err
	}
	l, err := vm.pop()
	if err != nil {
		return err
	}
	ln, ok := l.(value.Number)
	if !ok {
		return atlaserr.TypeErr(span, "comparison expects numbers, got "+l.Kind().String())
	}
	rn, ok := r.(value.Number)
	if !ok {
		return atlaserr.TypeErr(span, "comparison expects numbers, got "+r.Kind().String())
	}
	var result bool
	switch op {
	case bytecode.OpLess:
		result = ln < rn
	case bytecode.OpLessEqual:
		result = ln <= rn
	case bytecode.OpGreater:
		result = ln > rn
	case bytecode.OpGreaterEqual:
		result = ln >= rn
	}
	vm.push(value.Bool(result))
	return nil
}

// call implements the OpCall semantics of spec.md §4.4: the callee sits
// below its argc arguments on the stack. Builtins and natives dispatch
// in-line and leave their result in the callee's place; Function/Closure
// values push a new frame and jump to the entry offset, continuing the
// same loop without advancing vm.ip past the Call instruction (the pushed
// frame's returnIP is what resumes execution after Call once the callee
// returns).
func (vm *VM) call(argc int, span atlaserr.Span, width int) *atlaserr.RuntimeError {
	calleeIdx := len(vm.stack) - 1 - argc
	if calleeIdx < 0 {
		return atlaserr.StackUnderflow(span)
	}
	callee := vm.stack[calleeIdx]

	switch c := callee.(type) {
	case value.Builtin:
		args := cloneArgs(vm.stack[calleeIdx+1:])
		vm.stack = vm.stack[:calleeIdx]
		res, err := vm.callBuiltin(c.Name, args, span)
		if err != nil {
			return err
		}
		vm.push(res)
		vm.ip += width
		return nil

	case *value.NativeFn:
		args := cloneArgs(vm.stack[calleeIdx+1:])
		vm.stack = vm.stack[:calleeIdx]
		res, err := callNative(c, args, span)
		if err != nil {
			return err
		}
		vm.push(res)
		vm.ip += width
		return nil

	case *value.Closure:
		vm.ip += width
		return vm.pushFrame(c.Fn, c, calleeIdx, argc, span)

	case *value.Function:
		vm.ip += width
		return vm.pushFrame(c, nil, calleeIdx, argc, span)

	case value.Option:
		if !c.HasValue && argc == 0 {
			vm.ip += width
			return nil
		}
		return atlaserr.TypeErr(span, "value is not callable")

	default:
		return atlaserr.TypeErr(span, "value of kind "+callee.Kind().String()+" is not callable")
	}
}

func (vm *VM) pushFrame(fn *value.Function, cl *value.Closure, calleeIdx, argc int, span atlaserr.Span) *atlaserr.RuntimeError {
	if argc != fn.Arity {
		return atlaserr.ArityMismatch(span, fn.Name, fn.Arity, argc)
	}
	stackBase := calleeIdx + 1
	for len(vm.stack) < stackBase+fn.NumLocals {
		vm.push(value.Null{})
	}
	vm.frames = append(vm.frames, frame{
		fn: fn, closure: cl, returnIP: vm.ip, stackBase: stackBase, numLocals: fn.NumLocals,
	})
	vm.ip = fn.Entry
	return nil
}

func cloneArgs(s []value.Value) []value.Value {
	out := make([]value.Value, len(s))
	copy(out, s)
	return out
}

// callBuiltin dispatches a stdlib name with a Context whose Invoke hook
// re-enters this same VM (spec.md §4.4's "intrinsic re-entry").
func (vm *VM) callBuiltin(name string, args []value.Value, span atlaserr.Span) (value.Value, *atlaserr.RuntimeError) {
	ctx := stdlib.Context{
		Span:     span,
		Security: vm.security,
		Output:   vm.output,
		Invoke:   vm.Invoke,
	}
	return stdlib.Call(name, args, ctx)
}

func callNative(n *value.NativeFn, args []value.Value, span atlaserr.Span) (value.Value, *atlaserr.RuntimeError) {
	if n.Arity >= 0 && len(args) != n.Arity {
		return nil, atlaserr.ArityMismatch(span, n.Name, n.Arity, len(args))
	}
	v, err := n.Fn(args)
	if err != nil {
		return nil, atlaserr.TypeErr(span, err.Error())
	}
	return v, nil
}

// Invoke applies callee to args, re-entering this VM if it is a compiled
// Function/Closure. This is the hook every callback-taking stdlib builtin
// (map, filter, reduce, sortBy, ...) calls through, and the mechanism that
// lets an arbitrarily nested chain of such callbacks run on the same VM
// without a parallel interpreter (spec.md §4.4/§5).
func (vm *VM) Invoke(callee value.Value, args []value.Value) (value.Value, *atlaserr.RuntimeError) {
	span := vm.bc.SpanFor(vm.ip)
	switch c := callee.(type) {
	case value.Builtin:
		return vm.callBuiltin(c.Name, args, span)
	case *value.NativeFn:
		return callNative(c, args, span)
	case *value.Closure:
		return vm.invokeCompiled(c.Fn, c, args, span)
	case *value.Function:
		return vm.invokeCompiled(c, nil, args, span)
	default:
		return nil, atlaserr.TypeErr(span, "value of kind "+callee.Kind().String()+" is not callable")
	}
}

// invokeCompiled runs fn/cl to completion on this VM's own stack and frame
// list, nested inside whatever call is currently in progress, then restores
// the interrupted instruction pointer. See resume's targetDepth contract.
func (vm *VM) invokeCompiled(fn *value.Function, cl *value.Closure, args []value.Value, span atlaserr.Span) (value.Value, *atlaserr.RuntimeError) {
	if len(args) != fn.Arity {
		return nil, atlaserr.ArityMismatch(span, fn.Name, fn.Arity, len(args))
	}
	savedIP := vm.ip
	targetDepth := len(vm.frames)
	vm.push(value.Null{}) // synthetic callee slot, popped by Return like any other call
	calleeIdx := len(vm.stack) - 1
	for _, a := range args {
		vm.push(a)
	}
	if err := vm.pushFrame(fn, cl, calleeIdx, len(args), span); err != nil {
		vm.stack = vm.stack[:calleeIdx]
		return nil, err
	}
	result, err := vm.resume(targetDepth)
	vm.ip = savedIP
	if err != nil {
		if rerr, ok := err.(*atlaserr.RuntimeError); ok {
			return nil, rerr
		}
		return nil, atlaserr.TypeErr(span, err.Error())
	}
	return result, nil
}

// Call invokes a named global function (stdlib or user-defined) with args,
// for the embedding API's `call(name, args)` (spec.md §6).
func (vm *VM) Call(name string, args []value.Value) (value.Value, error) {
	if stdlib.IsBuiltin(name) {
		res, err := vm.callBuiltin(name, args, atlaserr.Span{})
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	g, ok := vm.globals[name]
	if !ok {
		return nil, atlaserr.UnknownFunction(atlaserr.Span{}, name)
	}
	res, err := vm.Invoke(g, args)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func indexGet(target, idx value.Value, span atlaserr.Span) (value.Value, *atlaserr.RuntimeError) {
	switch t := target.(type) {
	case *value.Array:
		n, ok := idx.(value.Number)
		if !ok {
			return nil, atlaserr.TypeErr(span, "array index must be a number")
		}
		v, err := t.Get(int(n))
		if err != nil {
			return nil, atlaserr.OutOfBounds(span, err.Error())
		}
		return v, nil
	case value.String:
		n, ok := idx.(value.Number)
		if !ok {
			return nil, atlaserr.TypeErr(span, "string index must be a number")
		}
		runes := []rune(string(t))
		i := int(n)
		if i < 0 || i >= len(runes) {
			return nil, atlaserr.OutOfBounds(span, "string index out of range")
		}
		return value.String(string(runes[i])), nil
	case *value.JSON:
		switch key := idx.(type) {
		case value.String:
			obj, ok := t.Data.(map[string]any)
			if !ok {
				return nil, atlaserr.InvalidIndex(span, "JSON value is not an object")
			}
			v, ok := obj[string(key)]
			if !ok {
				return nil, atlaserr.OutOfBounds(span, "key not present in JSON object")
			}
			return &value.JSON{Data: v}, nil
		case value.Number:
			arr, ok := t.Data.([]any)
			if !ok {
				return nil, atlaserr.InvalidIndex(span, "JSON value is not an array")
			}
			i := int(key)
			if i < 0 || i >= len(arr) {
				return nil, atlaserr.OutOfBounds(span, "JSON array index out of range")
			}
			return &value.JSON{Data: arr[i]}, nil
		default:
			return nil, atlaserr.InvalidIndex(span, "JSON index must be a string or number")
		}
	default:
		return nil, atlaserr.TypeErr(span, "value of kind "+target.Kind().String()+" is not indexable")
	}
}

// indexSet backs the OpSetIndex opcode: no compiler path emits it (index
// assignment is lowered through the __set_index__ stdlib write-back instead,
// see DESIGN.md), but the VM implements it directly against arrays for
// engine completeness and for any host/embedding caller that builds
// bytecode by hand.
func indexSet(target, idx, newVal value.Value, span atlaserr.Span) (value.Value, *atlaserr.RuntimeError) {
	a, ok := target.(*value.Array)
	if !ok {
		return nil, atlaserr.TypeErr(span, "SetIndex expects an array, got "+target.Kind().String())
	}
	n, ok := idx.(value.Number)
	if !ok {
		return nil, atlaserr.TypeErr(span, "array index must be a number")
	}
	next, err := a.With(int(n), newVal)
	if err != nil {
		return nil, atlaserr.OutOfBounds(span, err.Error())
	}
	return next, nil
}
