// Package value implements the runtime value model shared by the tree-walk
// interpreter and the stack VM (spec §3.1). Every engine-observable result is
// a value.Value; equality, display and type tagging live here once so both
// engines and the debugger agree on them.
//
// Containers are modeled as plain, already-copied Go slices/maps rather than
// the reference implementation's mutex-guarded shared cells: spec.md §9 notes
// a re-implementation may pick deep-copy-on-write structures and drop the
// runtime sharing machinery entirely, as long as observable behavior is
// unchanged. The compiler and interpreter still perform the write-back
// sequence of §4.3 — only the underlying representation is simplified.
package value

import (
	"fmt"
	"math"
)

// Kind tags the variant a Value belongs to.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindHashMap
	KindHashSet
	KindQueue
	KindStack
	KindOption
	KindResult
	KindJSON
	KindRegex
	KindDateTime
	KindFunction
	KindClosure
	KindBuiltin
	KindNative
	KindShared
)

var kindNames = map[Kind]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindArray:    "array",
	KindHashMap:  "hashmap",
	KindHashSet:  "hashset",
	KindQueue:    "queue",
	KindStack:    "stack",
	KindOption:   "option",
	KindResult:   "result",
	KindJSON:     "json",
	KindRegex:    "regex",
	KindDateTime: "datetime",
	KindFunction: "function",
	KindClosure:  "closure",
	KindBuiltin:  "builtin",
	KindNative:   "native",
	KindShared:   "shared",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Value is implemented by every runtime value variant.
type Value interface {
	Kind() Kind
	String() string
}

// Null is the unit-like value produced by statements and absent returns.
type Null struct{}

func (Null) Kind() Kind      { return KindNull }
func (Null) String() string  { return "null" }

// Bool wraps a boolean.
type Bool bool

func (Bool) Kind() Kind        { return KindBool }
func (b Bool) String() string  { return fmt.Sprintf("%t", bool(b)) }

// Number wraps an IEEE-754 double. A valid Number is never NaN or ±Inf: the
// VM and interpreter raise InvalidNumericResult before one escapes into a
// binding (spec §3.1 invariant).
type Number float64

func (Number) Kind() Kind { return KindNumber }
func (n Number) String() string {
	f := float64(n)
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// IsFinite reports whether n is a value arithmetic is allowed to produce.
func (n Number) IsFinite() bool {
	return !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)
}

// String is shared immutable UTF-8 text. Go strings are already immutable,
// so no extra sharing wrapper is needed to honor §3.1's "reference-shared"
// note.
type String string

func (String) Kind() Kind       { return KindString }
func (s String) String() string { return string(s) }

// Function is a reference to a user-defined function's compiled body.
type Function struct {
	Name      string
	Arity     int
	Entry     int // bytecode offset of the function body
	NumLocals int // declared stack slots, including parameters
	IsExtern  bool
}

func (*Function) Kind() Kind     { return KindFunction }
func (f *Function) String() string { return fmt.Sprintf("<fn %s/%d>", f.Name, f.Arity) }

// Upvalues is a copy-on-write vector of captured values. Mutating it through
// Set clones the backing array first (spec §9: captured by value, CoW on
// mutation — the "Arc::make_mut" design, not boxed upvalues).
type Upvalues []Value

// Set returns an Upvalues with index i replaced by v, cloning the backing
// slice so that other closures sharing this vector are unaffected.
func (u Upvalues) Set(i int, v Value) Upvalues {
	next := make(Upvalues, len(u))
	copy(next, u)
	next[i] = v
	return next
}

// Closure pairs a Function with the upvalues captured at creation time.
type Closure struct {
	Fn       *Function
	Upvalues Upvalues
}

func (*Closure) Kind() Kind { return KindClosure }
func (c *Closure) String() string {
	return fmt.Sprintf("<closure %s/%d>", c.Fn.Name, c.Fn.Arity)
}

// Builtin references a stdlib entry by name, resolved at call time.
type Builtin struct {
	Name string
}

func (Builtin) Kind() Kind       { return KindBuiltin }
func (b Builtin) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }

// NativeFn is a host-provided callback, registered through the embedding API
// (spec §6 register_function/register_variadic).
type NativeFn struct {
	Name     string
	Arity    int  // -1 means variadic
	Fn       func(args []Value) (Value, error)
}

func (*NativeFn) Kind() Kind       { return KindNative }
func (n *NativeFn) String() string { return fmt.Sprintf("<native %s>", n.Name) }

// Shared is the explicit `shared` ownership annotation: a boxed reference
// cell so multiple bindings observe the same mutation.
type Shared struct {
	Box *Value
}

func (Shared) Kind() Kind { return KindShared }
func (s Shared) String() string {
	if s.Box == nil {
		return "<shared null>"
	}
	return fmt.Sprintf("<shared %s>", (*s.Box).String())
}

// NewShared boxes v for `shared` parameter passing.
func NewShared(v Value) Shared {
	box := v
	return Shared{Box: &box}
}

// Option models Some(v) / None.
type Option struct {
	HasValue bool
	Inner    Value
}

func (Option) Kind() Kind { return KindOption }
func (o Option) String() string {
	if !o.HasValue {
		return "None"
	}
	return fmt.Sprintf("Some(%s)", o.Inner.String())
}

func Some(v Value) Option { return Option{HasValue: true, Inner: v} }
func None() Option        { return Option{} }

// Result models Ok(v) / Err(v).
type Result struct {
	IsOk  bool
	Inner Value
}

func (Result) Kind() Kind { return KindResult }
func (r Result) String() string {
	if r.IsOk {
		return fmt.Sprintf("Ok(%s)", r.Inner.String())
	}
	return fmt.Sprintf("Err(%s)", r.Inner.String())
}

func Ok(v Value) Result  { return Result{IsOk: true, Inner: v} }
func Err(v Value) Result { return Result{Inner: v} }

// IsTruthy implements the language's truthiness rule: everything is truthy
// except `false` and `null` (matches the teacher's isTrue in
// interpreter/interpreter.go, generalized to the full value set).
func IsTruthy(v Value) bool {
	switch t := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(t)
	default:
		return true
	}
}
