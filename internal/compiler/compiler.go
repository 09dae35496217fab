// Package compiler lowers the typed AST into the flat bytecode stream
// internal/vm executes. Grounded on the teacher's compiler/ast_compiler.go:
// the same Local/scope-depth bookkeeping, the same emit/patchJump
// backpatching idiom for control flow, and panic(SemanticError)/recover
// converting compile-time faults into a returned error. Generalized well
// beyond the teacher (which has no functions, closures, arrays, or pattern
// matching at all) to the full lowering spec.md §4.2/§4.3/§4.6 describe:
// upvalue-capturing closures, the copy-on-write method/free-function
// write-back sequence, and match-arm compilation via a dedicated scratch
// local rather than stack-only juggling.
package compiler

import (
	"atlas/internal/ast"
	"atlas/internal/atlaserr"
	"atlas/internal/bytecode"
	"atlas/internal/token"
)

// Local is one declared name occupying a stack slot in the current
// function's frame. Depth is the lexical block nesting the name was
// declared at; endScope() truncates every Local whose Depth exceeds the
// scope it is closing, mirroring the teacher's declareLocal/endScope pair.
type Local struct {
	Name    string
	Depth   int
	Mutable bool
}

// upvalueDesc is one entry of a function's captured-variable list: either a
// direct reference to a slot in the immediately enclosing function's frame,
// or a reference to one of that enclosing function's own upvalues (for a
// capture that skips more than one nesting level).
type upvalueDesc struct {
	Index   int
	IsLocal bool
}

type loopCtx struct {
	// continueTarget is the absolute offset `continue` jumps back to. It is
	// known up front for a while loop (the condition check) but not for a
	// for-loop's update clause, which compiles after the body; -1 marks
	// that case, and continueJumps collects placeholders to patch once it
	// is known.
	continueTarget int
	continueJumps  []int
	breakJumps     []int
}

// funcState is the compiler's per-function scratchpad: its own locals
// stack, scope depth, upvalue list and loop stack. The program's top-level
// statements compile into the root funcState (isMain); every nested
// function/closure literal pushes a child funcState and pops back to its
// parent once the body is compiled.
type funcState struct {
	parent     *funcState
	locals     []Local
	scopeDepth int
	upvalues   []upvalueDesc
	loops      []loopCtx
	maxSlots   int
	isMain     bool
}

// Compiler lowers a parsed, typechecked statement list to bytecode. One
// Compiler compiles exactly one program; it is not reused across calls.
type Compiler struct {
	bc               *bytecode.Bytecode
	current          *funcState
	globalNames      map[string]int
	immutableGlobals map[string]bool
	tempCounter      int
}

// New returns a Compiler ready to lower a program.
func New() *Compiler {
	return &Compiler{
		globalNames:      map[string]int{},
		immutableGlobals: map[string]bool{},
	}
}

// Compile lowers stmts to a complete Bytecode program, terminated by Halt.
// Any SemanticError raised during lowering is recovered and returned as an
// error rather than propagating as a panic, matching the teacher's
// CompileAST recover-based contract.
func Compile(stmts []ast.Stmt) (result *bytecode.Bytecode, err error) {
	c := New()
	c.bc = &bytecode.Bytecode{}
	c.current = &funcState{isMain: true}

	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(SemanticError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()

	c.compileProgram(stmts)
	c.bc.NumLocals = c.current.maxSlots
	return c.bc, nil
}

// compileProgram compiles every top-level statement, leaving the final
// top-level expression statement's value (if there is one) on the stack as
// the program's result instead of discarding it — see DESIGN.md's
// resolution of the "trailing Pop before Halt" open question.
func (c *Compiler) compileProgram(stmts []ast.Stmt) {
	for i, s := range stmts {
		if i == len(stmts)-1 {
			if es, ok := s.(ast.ExpressionStmt); ok {
				c.compileExpr(es.Expression)
				c.emit(bytecode.OpHalt)
				return
			}
		}
		c.compileStmt(s)
	}
	c.emit(bytecode.OpNull)
	c.emit(bytecode.OpHalt)
}

func (c *Compiler) compileStmt(s ast.Stmt) {
	s.Accept(c)
}

func (c *Compiler) compileExpr(e ast.Expression) {
	e.Accept(c)
}

// --- emission ---

func (c *Compiler) emit(op bytecode.Opcode, operands ...int) int {
	pos := len(c.bc.Instructions)
	c.bc.Instructions = append(c.bc.Instructions, bytecode.MakeInstruction(op, operands...)...)
	return pos
}

func (c *Compiler) emitSpan(span atlaserr.Span, op bytecode.Opcode, operands ...int) int {
	pos := c.emit(op, operands...)
	c.bc.DebugTable = append(c.bc.DebugTable, bytecode.DebugEntry{Offset: pos, Span: span})
	return pos
}

func spanOf(t token.Token) atlaserr.Span {
	return atlaserr.Span{Start: t.Offset, End: t.Offset + len(t.Lexeme), Line: int(t.Line)}
}

// emitPlaceholderJump emits a jump with a zero operand to be fixed up later
// by patchJump, once the target offset is known.
//
// JumpIfFalse pops its condition unconditionally, whichever way it
// branches — this compiler never relies on a lingering condition value
// after testing it (if/while/for need nothing further; the logical-operator
// and pattern-match lowerings that need the tested value preserved across
// the branch do their own explicit Dup or GetLocal reload beforehand).
func (c *Compiler) emitPlaceholderJump(op bytecode.Opcode) int {
	return c.emit(op, 0)
}

// patchJump rewrites the jump instruction at pos so it lands on the current
// end of the instruction stream. Offsets are measured from the position
// right after the 2-byte operand (spec.md §4.1).
func (c *Compiler) patchJump(pos int) {
	c.patchJumpTo(pos, len(c.bc.Instructions))
}

func (c *Compiler) patchJumpTo(pos, target int) {
	const instrLen = 3 // 1 opcode byte + 2 operand bytes
	jump := target - (pos + instrLen)
	bytecode.PutInt16(c.bc.Instructions, pos+1, int16(jump))
}

// emitLoop emits a backward Loop jump to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	const instrLen = 3
	pos := c.emit(bytecode.OpLoop, 0)
	jump := loopStart - (pos + instrLen)
	bytecode.PutInt16(c.bc.Instructions, pos+1, int16(jump))
}

func (c *Compiler) addConstant(v any) int {
	c.bc.ConstantsPool = append(c.bc.ConstantsPool, v)
	return len(c.bc.ConstantsPool) - 1
}

// nameConstant interns a global/variable name into the constant pool,
// returning the same index for repeated uses of the same name (mirrors the
// teacher's resolveGlobal linear scan, at map lookup cost instead).
func (c *Compiler) nameConstant(name string) int {
	if idx, ok := c.globalNames[name]; ok {
		return idx
	}
	idx := c.addConstant(name)
	c.globalNames[name] = idx
	return idx
}

// --- scopes & locals ---

func (c *Compiler) beginScope() {
	c.current.scopeDepth++
}

func (c *Compiler) endScope() {
	c.current.scopeDepth--
	fs := c.current
	for len(fs.locals) > 0 && fs.locals[len(fs.locals)-1].Depth > fs.scopeDepth {
		fs.locals = fs.locals[:len(fs.locals)-1]
		c.emit(bytecode.OpPop)
	}
}

// declareLocal binds name to the next stack slot in the current function,
// returning that slot. A function's locals are nothing but labeled stack
// positions: the slot a name gets is always len(fs.locals) at declare time,
// since we never reorder or compact the slice except by truncation at
// endScope — so no initializer's value sitting at the top of the operand
// stack needs a separate SetLocal just to "become" the local.
func (c *Compiler) declareLocal(name string, mutable bool) int {
	fs := c.current
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].Depth < fs.scopeDepth {
			break
		}
		if fs.locals[i].Name == name {
			panic(SemanticError{Message: "'" + name + "' is already declared in this scope"})
		}
	}
	slot := len(fs.locals)
	fs.locals = append(fs.locals, Local{Name: name, Depth: fs.scopeDepth, Mutable: mutable})
	if slot+1 > fs.maxSlots {
		fs.maxSlots = slot + 1
	}
	return slot
}

func (c *Compiler) reserveTempSlot() int {
	c.tempCounter++
	return c.declareLocal(tempName(c.tempCounter), false)
}

func tempName(n int) string {
	const digits = "0123456789"
	if n == 0 {
		return "$t0"
	}
	buf := []byte{'$', 't'}
	start := len(buf)
	for n > 0 {
		buf = append(buf, digits[n%10])
		n /= 10
	}
	// reverse the digits in place
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

func (c *Compiler) resolveLocal(fs *funcState, name string) (int, bool) {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

func (c *Compiler) resolveUpvalue(fs *funcState, name string) (int, bool) {
	if fs.parent == nil {
		return 0, false
	}
	if slot, ok := c.resolveLocal(fs.parent, name); ok {
		return c.addUpvalue(fs, slot, true), true
	}
	if idx, ok := c.resolveUpvalue(fs.parent, name); ok {
		return c.addUpvalue(fs, idx, false), true
	}
	return 0, false
}

func (c *Compiler) addUpvalue(fs *funcState, index int, isLocal bool) int {
	for i, uv := range fs.upvalues {
		if uv.Index == index && uv.IsLocal == isLocal {
			return i
		}
	}
	fs.upvalues = append(fs.upvalues, upvalueDesc{Index: index, IsLocal: isLocal})
	return len(fs.upvalues) - 1
}

// nameBoundLocally reports whether name resolves to a local anywhere in the
// current function-nesting chain, without registering an upvalue — used to
// let a real local/closure binding shadow a same-named stdlib builtin.
func (c *Compiler) nameBoundLocally(name string) bool {
	for fs := c.current; fs != nil; fs = fs.parent {
		if _, ok := c.resolveLocal(fs, name); ok {
			return true
		}
	}
	return false
}

// loadName compiles a variable read: local slot, else promoted upvalue,
// else a global looked up by name at runtime (spec §4.2's "fallback
// global, accessed by name" — this also covers forward references and
// scoped-global function hoisting, since both are plain SetGlobal/GetGlobal
// pairs keyed by name).
func (c *Compiler) loadName(name string) {
	if slot, ok := c.resolveLocal(c.current, name); ok {
		c.emit(bytecode.OpGetLocal, slot)
		return
	}
	if idx, ok := c.resolveUpvalue(c.current, name); ok {
		c.emit(bytecode.OpGetUpvalue, idx)
		return
	}
	c.emit(bytecode.OpGetGlobal, c.nameConstant(name))
}

// storeName compiles an ordinary `name = expr` assignment, enforcing the
// immutability of `let` bindings. Write-back assignments the compiler
// synthesizes for collection-returning calls bypass this check by calling
// writeBackStore directly (spec §4.3: "container-content mutation is not a
// variable rebinding").
func (c *Compiler) storeName(name string) {
	if slot, ok := c.resolveLocal(c.current, name); ok {
		if !c.current.locals[slot].Mutable {
			panic(SemanticError{Message: "cannot assign to immutable variable '" + name + "'"})
		}
		c.emit(bytecode.OpSetLocal, slot)
		return
	}
	if idx, ok := c.resolveUpvalue(c.current, name); ok {
		c.emit(bytecode.OpSetUpvalue, idx)
		return
	}
	if c.immutableGlobals[name] {
		panic(SemanticError{Message: "cannot assign to immutable variable '" + name + "'"})
	}
	c.emit(bytecode.OpSetGlobal, c.nameConstant(name))
}

func (c *Compiler) writeBackStore(name string) {
	if slot, ok := c.resolveLocal(c.current, name); ok {
		c.emit(bytecode.OpSetLocal, slot)
		return
	}
	if idx, ok := c.resolveUpvalue(c.current, name); ok {
		c.emit(bytecode.OpSetUpvalue, idx)
		return
	}
	c.emit(bytecode.OpSetGlobal, c.nameConstant(name))
}
