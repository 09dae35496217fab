package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/ast"
	"atlas/internal/token"
)

func ident(name string) token.Token {
	return token.CreateLiteralToken(token.IDENTIFIER, nil, name, 0, 0, 0)
}

func TestCheckInfersMemberTypeTagFromLiteral(t *testing.T) {
	stmts := []ast.Stmt{
		ast.ExpressionStmt{Expression: ast.Member{
			Target: ast.ArrayLiteral{Elements: []ast.Expression{ast.Literal{Value: 1.0}}},
			Method: ident("len"),
		}},
	}
	out, diags := Check(stmts)
	require.Empty(t, diags)
	m := out[0].(ast.ExpressionStmt).Expression.(ast.Member)
	assert.Equal(t, ast.TagArray, m.TypeTag)
}

func TestCheckInfersMemberTypeTagFromVariable(t *testing.T) {
	stmts := []ast.Stmt{
		ast.VarStmt{Name: ident("xs"), Initializer: ast.ArrayLiteral{}},
		ast.ExpressionStmt{Expression: ast.Member{
			Target: ast.Variable{Name: ident("xs")},
			Method: ident("push"),
			Args:   []ast.Expression{ast.Literal{Value: 2.0}},
		}},
	}
	out, _ := Check(stmts)
	m := out[1].(ast.ExpressionStmt).Expression.(ast.Member)
	assert.Equal(t, ast.TagArray, m.TypeTag, "expected TagArray from tracked variable")
}

func TestCheckLeavesUnresolvableMemberUnknown(t *testing.T) {
	stmts := []ast.Stmt{
		ast.ExpressionStmt{Expression: ast.Member{
			Target: ast.Variable{Name: ident("unbound")},
			Method: ident("whatever"),
		}},
	}
	out, _ := Check(stmts)
	m := out[0].(ast.ExpressionStmt).Expression.(ast.Member)
	assert.Equal(t, ast.TagUnknown, m.TypeTag, "expected TagUnknown for an untracked receiver")
}

func TestCheckOwnershipSharedToNonSharedWarns(t *testing.T) {
	stmts := []ast.Stmt{
		ast.FuncDeclStmt{Name: ident("take"), Fn: ast.FunctionLiteral{
			Name:   "take",
			Params: []ast.Param{{Name: "v", Ownership: ast.OwnershipNone}},
			Body:   nil,
		}},
		ast.FuncDeclStmt{Name: ident("caller"), Fn: ast.FunctionLiteral{
			Name:   "caller",
			Params: []ast.Param{{Name: "s", Ownership: ast.OwnershipShared}},
			Body: []ast.Stmt{
				ast.ExpressionStmt{Expression: ast.Call{
					Callee: ast.Variable{Name: ident("take")},
					Args:   []ast.Expression{ast.Variable{Name: ident("s")}},
					Pos:    ident("take"),
				}},
			},
		}},
	}
	_, diags := Check(stmts)
	require.Len(t, diags, 1)
	assert.Equal(t, "AT3020", diags[0].Code)
}

func TestCheckOwnershipNonSharedToSharedErrors(t *testing.T) {
	stmts := []ast.Stmt{
		ast.FuncDeclStmt{Name: ident("take"), Fn: ast.FunctionLiteral{
			Name:   "take",
			Params: []ast.Param{{Name: "v", Ownership: ast.OwnershipShared}},
		}},
		ast.ExpressionStmt{Expression: ast.Call{
			Callee: ast.Variable{Name: ident("take")},
			Args:   []ast.Expression{ast.Literal{Value: 1.0}},
			Pos:    ident("take"),
		}},
	}
	_, diags := Check(stmts)
	require.Len(t, diags, 1)
	assert.Equal(t, "AT3021", diags[0].Code)
}

func TestCheckOwnershipMatchingAnnotationsAreClean(t *testing.T) {
	stmts := []ast.Stmt{
		ast.FuncDeclStmt{Name: ident("take"), Fn: ast.FunctionLiteral{
			Name:   "take",
			Params: []ast.Param{{Name: "v", Ownership: ast.OwnershipShared}},
		}},
		ast.FuncDeclStmt{Name: ident("caller"), Fn: ast.FunctionLiteral{
			Name:   "caller",
			Params: []ast.Param{{Name: "s", Ownership: ast.OwnershipShared}},
			Body: []ast.Stmt{
				ast.ExpressionStmt{Expression: ast.Call{
					Callee: ast.Variable{Name: ident("take")},
					Args:   []ast.Expression{ast.Variable{Name: ident("s")}},
					Pos:    ident("take"),
				}},
			},
		}},
	}
	_, diags := Check(stmts)
	assert.Empty(t, diags)
}

func TestCheckMatchArmBindsPatternVariables(t *testing.T) {
	stmts := []ast.Stmt{
		ast.ExpressionStmt{Expression: ast.Match{
			Scrutinee: ast.Constructor{Name: "Some", Inner: ast.Literal{Value: 1.0}},
			Arms: []ast.MatchArm{
				{
					Pattern: ast.ConstructorPattern{Name: "Some", Inner: ast.VarPattern{Name: ident("x")}},
					Body:    ast.Variable{Name: ident("x")},
				},
				{Pattern: ast.WildcardPattern{}, Body: ast.Literal{Value: 0.0}},
			},
		}},
	}
	_, diags := Check(stmts)
	assert.Empty(t, diags)
}
