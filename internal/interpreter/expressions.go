package interpreter

import (
	"atlas/internal/ast"
	"atlas/internal/atlaserr"
	"atlas/internal/token"
	"atlas/internal/value"
)

func (i *Interpreter) VisitBinary(b ast.Binary) any {
	l := i.eval(b.Left)
	r := i.eval(b.Right)
	span := spanOf(b.Operator)
	switch b.Operator.TokenType {
	case token.ADD:
		if ls, ok := l.(value.String); ok {
			rs, ok := r.(value.String)
			if !ok {
				panic(atlaserr.TypeErr(span, "'+' between string and "+r.Kind().String()))
			}
			return value.String(string(ls) + string(rs))
		}
		return i.arith(l, r, token.ADD, span)
	case token.SUB, token.MULT, token.DIV, token.MOD:
		return i.arith(l, r, b.Operator.TokenType, span)
	case token.EQUAL_EQUAL:
		return value.Bool(value.Equal(l, r))
	case token.NOT_EQUAL:
		return value.Bool(!value.Equal(l, r))
	case token.LESS, token.LESS_EQUAL, token.LARGER, token.LARGER_EQUAL:
		return i.compare(l, r, b.Operator.TokenType, span)
	default:
		panic(atlaserr.TypeErr(span, "unsupported binary operator"))
	}
}

// arith mirrors vm.arith, operating on two already-evaluated values instead
// of a pair of stack slots.
func (i *Interpreter) arith(l, r value.Value, op token.TokenType, span atlaserr.Span) value.Value {
	ln, ok := l.(value.Number)
	if !ok {
		panic(atlaserr.TypeErr(span, "arithmetic expects numbers, got "+l.Kind().String()))
	}
	rn, ok := r.(value.Number)
	if !ok {
		panic(atlaserr.TypeErr(span, "arithmetic expects numbers, got "+r.Kind().String()))
	}
	var result value.Number
	switch op {
	case token.ADD:
		result = ln + rn
	case token.SUB:
		result = ln - rn
	case token.MULT:
		result = ln * rn
	case token.DIV:
		if rn == 0 {
			panic(atlaserr.DivideByZero(span))
		}
		result = ln / rn
	case token.MOD:
		if rn == 0 {
			panic(atlaserr.DivideByZero(span))
		}
		result = value.Number(floatMod(float64(ln), float64(rn)))
	}
	if !result.IsFinite() {
		panic(atlaserr.InvalidNumericResult(span))
	}
	return result
}

func floatMod(a, b float64) float64 {
	return a - b*float64(int64(a/b))
}

func (i *Interpreter) compare(l, r value.Value, op token.TokenType, span atlaserr.Span) value.Value {
	ln, ok := l.(value.Number)
	if !ok {
		panic(atlaserr.TypeErr(span, "comparison expects numbers, got "+l.Kind().String()))
	}
	rn, ok := r.(value.Number)
	if !ok {
		panic(atlaserr.TypeErr(span, "comparison expects numbers, got "+r.Kind().String()))
	}
	switch op {
	case token.LESS:
		return value.Bool(ln < rn)
	case token.LESS_EQUAL:
		return value.Bool(ln <= rn)
	case token.LARGER:
		return value.Bool(ln > rn)
	default: // token.LARGER_EQUAL
		return value.Bool(ln >= rn)
	}
}

func (i *Interpreter) VisitUnary(u ast.Unary) any {
	v := i.eval(u.Right)
	span := spanOf(u.Operator)
	switch u.Operator.TokenType {
	case token.BANG:
		return value.Bool(!value.IsTruthy(v))
	case token.SUB:
		n, ok := v.(value.Number)
		if !ok {
			panic(atlaserr.TypeErr(span, "unary '-' expects a number"))
		}
		return value.Number(-n)
	default:
		panic(atlaserr.TypeErr(span, "unsupported unary operator"))
	}
}

func (i *Interpreter) VisitLiteral(l ast.Literal) any {
	switch v := l.Value.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Bool(v)
	case float64:
		return value.Number(v)
	case string:
		return value.String(v)
	default:
		return value.Null{}
	}
}

func (i *Interpreter) VisitGrouping(g ast.Grouping) any {
	return i.eval(g.Expression)
}

// lookupVariable resolves name through the current environment chain,
// ending at the program's global table — it never special-cases a stdlib
// builtin (that precedence only applies to a bare Call, see VisitCall),
// matching compiler.loadName exactly.
func (i *Interpreter) lookupVariable(name string, span atlaserr.Span) value.Value {
	if v, ok := i.env.get(name); ok {
		return v
	}
	panic(atlaserr.UndefinedVariable(span, name))
}

func (i *Interpreter) VisitVariable(v ast.Variable) any {
	return i.lookupVariable(v.Name.Lexeme, spanOf(v.Name))
}

// VisitAssign mirrors compiler.storeName: an assignment to a name bound
// somewhere in the lexical chain enforces that binding's `let` immutability;
// an assignment to a name bound nowhere is treated as a fresh/updated global,
// the same way OpSetGlobal writes vm.globals[name] unconditionally.
func (i *Interpreter) VisitAssign(a ast.Assign) any {
	v := i.eval(a.Value)
	name := a.Name.Lexeme
	found, mutable := i.env.assign(name, v)
	if found && !mutable {
		panic(atlaserr.TypeErr(spanOf(a.Name), "cannot assign to immutable variable '"+name+"'"))
	}
	if !found {
		i.root.define(name, v, true)
	}
	return v
}

func (i *Interpreter) VisitLogical(l ast.Logical) any {
	left := i.eval(l.Left)
	if l.Operator.TokenType == token.OR {
		if value.IsTruthy(left) {
			return left
		}
		return i.eval(l.Right)
	}
	if !value.IsTruthy(left) {
		return left
	}
	return i.eval(l.Right)
}

func (i *Interpreter) VisitArrayLiteral(a ast.ArrayLiteral) any {
	elems := make([]value.Value, len(a.Elements))
	for idx, e := range a.Elements {
		elems[idx] = i.eval(e)
	}
	return value.NewArray(elems)
}

func (i *Interpreter) VisitIndex(idx ast.Index) any {
	target := i.eval(idx.Target)
	at := i.eval(idx.Idx)
	span := spanOf(idx.Pos)
	v, err := indexGet(target, at, span)
	if err != nil {
		panic(err)
	}
	return v
}

// VisitTry lowers `expr?` (spec §4.2): on Ok it yields the inner value; on
// Err it unwinds to the nearest function boundary with the whole Result
// unchanged, matching compiler.VisitTry's Dup/IsResultOk/ExtractResultValue
// vs. bare-OpReturn split.
func (i *Interpreter) VisitTry(t ast.Try) any {
	v := i.eval(t.Inner)
	r, ok := v.(value.Result)
	if !ok {
		panic(atlaserr.TypeErr(spanOf(t.Pos), "'?' operator expects a Result value"))
	}
	if r.IsOk {
		return r.Inner
	}
	panic(earlyReturn{value: r})
}

// VisitConstructor builds an Option/Result value through the same trivial
// stdlib wrapper builtins the compiler's VisitConstructor calls, so both
// engines construct Some/None/Ok/Err identically.
func (i *Interpreter) VisitConstructor(c ast.Constructor) any {
	name := map[string]string{"Some": "__some__", "None": "__none__", "Ok": "__ok__", "Err": "__err__"}[c.Name]
	span := spanOf(c.Pos)
	var args []ast.Expression
	if c.Inner != nil {
		args = []ast.Expression{c.Inner}
	}
	return i.evalBuiltinCall(name, nil, args, span)
}

// indexGet mirrors vm.indexGet: Array/String index directly; JSON indexing
// raises a direct atlaserr error, distinct from the Option-wrapped jsonGet
// stdlib method (see internal/vm's DESIGN.md note — both engines share this
// asymmetry since it is part of the observable contract, not an
// implementation detail).
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
		pos := int(n)
		if pos < 0 || pos >= len(runes) {
			return nil, atlaserr.OutOfBounds(span, "string index out of range")
		}
		return value.String(string(runes[pos])), nil
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
			pos := int(key)
			if pos < 0 || pos >= len(arr) {
				return nil, atlaserr.OutOfBounds(span, "JSON array index out of range")
			}
			return &value.JSON{Data: arr[pos]}, nil
		default:
			return nil, atlaserr.InvalidIndex(span, "JSON index must be a string or number")
		}
	default:
		return nil, atlaserr.TypeErr(span, "value of kind "+target.Kind().String()+" is not indexable")
	}
}
