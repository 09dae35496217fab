package interpreter

import (
	"atlas/internal/ast"
	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func (i *Interpreter) VisitExpressionStmt(s ast.ExpressionStmt) any {
	i.eval(s.Expression)
	return signal{}
}

func (i *Interpreter) VisitPrintStmt(s ast.PrintStmt) any {
	v := i.eval(s.Expression)
	if _, err := i.callBuiltin("print", []value.Value{v}, atlaserr.Span{}); err != nil {
		panic(err)
	}
	return signal{}
}

// VisitVarStmt mirrors compiler.VisitVarStmt exactly: a `let`/`var` at
// top-level statement position (mainDepth 0, no enclosing block) binds into
// the program's global table; anywhere else it is a true lexical local.
func (i *Interpreter) VisitVarStmt(s ast.VarStmt) any {
	var v value.Value = value.Null{}
	if s.Initializer != nil {
		v = i.eval(s.Initializer)
	}
	if i.mainDepth == 0 && i.blockDepth == 0 {
		i.root.define(s.Name.Lexeme, v, s.Mutable)
		return signal{}
	}
	i.env.define(s.Name.Lexeme, v, s.Mutable)
	return signal{}
}

func (i *Interpreter) VisitBlockStmt(s ast.BlockStmt) any {
	savedEnv, savedBlockDepth := i.env, i.blockDepth
	i.env = newEnvironment(i.env)
	i.blockDepth++
	defer func() {
		i.env, i.blockDepth = savedEnv, savedBlockDepth
	}()
	for _, st := range s.Statements {
		if sig := i.execStmt(st); sig.kind != signalNone {
			return sig
		}
	}
	return signal{}
}

func (i *Interpreter) VisitIfStmt(s ast.IfStmt) any {
	cond := i.eval(s.Condition)
	if value.IsTruthy(cond) {
		return i.execStmt(s.Then)
	}
	if s.Else != nil {
		return i.execStmt(s.Else)
	}
	return signal{}
}

func (i *Interpreter) VisitWhileStmt(s ast.WhileStmt) any {
	for {
		cond := i.eval(s.Condition)
		if !value.IsTruthy(cond) {
			return signal{}
		}
		sig := i.execStmt(s.Body)
		switch sig.kind {
		case signalBreak:
			return signal{}
		case signalReturn:
			return sig
		}
	}
}

// VisitForStmt wraps the whole loop (init, condition, body, update) in one
// scope, mirroring compiler.VisitForStmt's beginScope/endScope pair around
// the entire construct so the init-declared variable is visible to the
// condition, body and update alike.
func (i *Interpreter) VisitForStmt(s ast.ForStmt) any {
	savedEnv, savedBlockDepth := i.env, i.blockDepth
	i.env = newEnvironment(i.env)
	i.blockDepth++
	defer func() {
		i.env, i.blockDepth = savedEnv, savedBlockDepth
	}()
	if s.Init != nil {
		i.execStmt(s.Init)
	}
	for {
		if s.Cond != nil {
			cond := i.eval(s.Cond)
			if !value.IsTruthy(cond) {
				return signal{}
			}
		}
		sig := i.execStmt(s.Body)
		switch sig.kind {
		case signalBreak:
			return signal{}
		case signalReturn:
			return sig
		}
		if s.Update != nil {
			i.execStmt(s.Update)
		}
	}
}

// VisitFuncDeclStmt always binds into the program's global table regardless
// of lexical nesting depth (spec §4.2's hoisted-to-a-fallback-global rule),
// mirroring compiler.VisitFuncDeclStmt's unconditional OpSetGlobal.
func (i *Interpreter) VisitFuncDeclStmt(s ast.FuncDeclStmt) any {
	cl := &closure{lit: s.Fn, env: i.env, name: s.Name.Lexeme}
	i.root.define(s.Name.Lexeme, cl, true)
	return signal{}
}

func (i *Interpreter) VisitReturnStmt(s ast.ReturnStmt) any {
	var v value.Value = value.Null{}
	if s.Value != nil {
		v = i.eval(s.Value)
	}
	return signal{kind: signalReturn, value: v}
}

func (i *Interpreter) VisitBreakStmt(s ast.BreakStmt) any {
	return signal{kind: signalBreak}
}

func (i *Interpreter) VisitContinueStmt(s ast.ContinueStmt) any {
	return signal{kind: signalContinue}
}
