// Package parser is a recursive-descent/Pratt parser producing the AST both
// execution engines consume. Grounded on the teacher's parser/parser.go
// (peek/previous/advance/consume token-stream bookkeeping, `Make`
// constructor, precedence-ordered binary-operator token tables); extended
// to the expanded grammar (arrays, calls, member/method calls, match, try,
// closures, ownership-annotated parameters).
//
// Lexing/parsing/binding are explicitly out of scope for the execution core
// (spec.md §1), so this parser stays deliberately direct rather than
// growing elaborate diagnostics or error-recovery machinery — the execution
// core never sees a program that failed to parse.
package parser

import (
	"fmt"

	"atlas/internal/ast"
	"atlas/internal/token"
)

// Parser consumes a token stream and produces a Program AST.
type Parser struct {
	tokens   []token.Token
	position int
	errors   []error
}

func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() token.Token     { return p.tokens[p.position] }
func (p *Parser) previous() token.Token { return p.tokens[p.position-1] }

func (p *Parser) isFinished() bool { return p.peek().TokenType == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isFinished() {
		p.position++
	}
	return p.previous()
}

func (p *Parser) check(tt token.TokenType) bool {
	if p.isFinished() {
		return tt == token.EOF
	}
	return p.peek().TokenType == tt
}

func (p *Parser) match(types ...token.TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(tt token.TokenType, msg string) (token.Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return token.Token{}, fmt.Errorf("parse error at line %d: %s (got %s)", p.peek().Line, msg, p.peek().TokenType)
}

// Parse parses the full token stream into a Program's statement list,
// collecting every syntax error rather than stopping at the first one.
func (p *Parser) Parse() ([]ast.Stmt, []error) {
	var statements []ast.Stmt
	for !p.isFinished() {
		stmt, err := p.declaration()
		if err != nil {
			p.errors = append(p.errors, err)
			p.synchronize()
			continue
		}
		statements = append(statements, stmt)
	}
	return statements, p.errors
}

// synchronize discards tokens until a likely statement boundary, so one
// syntax error doesn't cascade into spurious follow-on errors.
func (p *Parser) synchronize() {
	for !p.isFinished() {
		if p.previous().TokenType == token.SEMICOLON {
			return
		}
		switch p.peek().TokenType {
		case token.FUNC, token.LET, token.VAR, token.FOR, token.IF, token.WHILE, token.RETURN:
			return
		}
		p.advance()
	}
}

func (p *Parser) declaration() (ast.Stmt, error) {
	switch {
	case p.match(token.LET):
		return p.varDecl(false)
	case p.match(token.VAR):
		return p.varDecl(true)
	case p.match(token.FUNC):
		return p.funcDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) varDecl(mutable bool) (ast.Stmt, error) {
	name, err := p.consume(token.IDENTIFIER, "expected variable name")
	if err != nil {
		return nil, err
	}
	var init ast.Expression
	if p.match(token.ASSIGN) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return ast.VarStmt{Name: name, Initializer: init, Mutable: mutable}, nil
}

func (p *Parser) funcDecl() (ast.Stmt, error) {
	name, err := p.consume(token.IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}
	lit, err := p.functionTail(name.Lexeme, name)
	if err != nil {
		return nil, err
	}
	return ast.FuncDeclStmt{Name: name, Fn: lit}, nil
}

func (p *Parser) functionTail(name string, pos token.Token) (ast.FunctionLiteral, error) {
	if _, err := p.consume(token.LPA, "expected '(' after function name"); err != nil {
		return ast.FunctionLiteral{}, err
	}
	var params []ast.Param
	if !p.check(token.RPA) {
		for {
			own := ast.OwnershipNone
			switch {
			case p.match(token.OWN):
				own = ast.OwnershipOwn
			case p.match(token.BORROW):
				own = ast.OwnershipBorrow
			case p.match(token.SHARED):
				own = ast.OwnershipShared
			}
			pname, err := p.consume(token.IDENTIFIER, "expected parameter name")
			if err != nil {
				return ast.FunctionLiteral{}, err
			}
			params = append(params, ast.Param{Name: pname.Lexeme, Ownership: own})
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPA, "expected ')' after parameters"); err != nil {
		return ast.FunctionLiteral{}, err
	}
	// optional return-type annotation: "-> Type" — consumed, not retained,
	// since the execution core only consumes typechecker annotations on
	// Member nodes (spec §4.7), not a full type AST.
	if p.match(token.ARROW) {
		if err := p.skipTypeExpr(); err != nil {
			return ast.FunctionLiteral{}, err
		}
	}
	if _, err := p.consume(token.LBRACE, "expected '{' before function body"); err != nil {
		return ast.FunctionLiteral{}, err
	}
	body, err := p.blockBody()
	if err != nil {
		return ast.FunctionLiteral{}, err
	}
	return ast.FunctionLiteral{Name: name, Params: params, Body: body, Pos: pos}, nil
}

// skipTypeExpr consumes a minimal type expression (IDENT optionally
// followed by "<" IDENT ("," IDENT)* ">"), since Atlas's execution core
// doesn't carry a full type AST — only Member TypeTag annotations matter at
// runtime (spec §4.7).
func (p *Parser) skipTypeExpr() error {
	if _, err := p.consume(token.IDENTIFIER, "expected type name"); err != nil {
		return err
	}
	if p.match(token.LESS) {
		for {
			if _, err := p.consume(token.IDENTIFIER, "expected type parameter"); err != nil {
				return err
			}
			if !p.match(token.COMMA) {
				break
			}
		}
		if _, err := p.consume(token.LARGER, "expected '>' to close type parameters"); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.LBRACE):
		stmts, err := p.blockBody()
		if err != nil {
			return nil, err
		}
		return ast.BlockStmt{Statements: stmts}, nil
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.BREAK):
		pos := p.previous()
		_, err := p.consume(token.SEMICOLON, "expected ';' after break")
		return ast.BreakStmt{Pos: pos}, err
	case p.match(token.CONTINUE):
		pos := p.previous()
		_, err := p.consume(token.SEMICOLON, "expected ';' after continue")
		return ast.ContinueStmt{Pos: pos}, err
	default:
		return p.exprStmt()
	}
}

func (p *Parser) blockBody() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.isFinished() {
		s, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close block"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) printStmt() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after print statement"); err != nil {
		return nil, err
	}
	return ast.PrintStmt{Expression: expr}, nil
}

func (p *Parser) exprStmt() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return ast.ExpressionStmt{Expression: expr}, nil
}

func (p *Parser) ifStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LPA, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPA, "expected ')' after if condition"); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		elseBranch, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return ast.IfStmt{Condition: cond, Then: then, Else: elseBranch}, nil
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LPA, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPA, "expected ')' after while condition"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.WhileStmt{Condition: cond, Body: body}, nil
}

func (p *Parser) forStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LPA, "expected '(' after 'for'"); err != nil {
		return nil, err
	}
	var initStmt ast.Stmt
	var err error
	switch {
	case p.match(token.SEMICOLON):
		// no initializer
	case p.match(token.LET):
		initStmt, err = p.varDecl(false)
	case p.match(token.VAR):
		initStmt, err = p.varDecl(true)
	default:
		initStmt, err = p.exprStmt()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expression
	if !p.check(token.SEMICOLON) {
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after for condition"); err != nil {
		return nil, err
	}

	var update ast.Stmt
	if !p.check(token.RPA) {
		updateExpr, err := p.expression()
		if err != nil {
			return nil, err
		}
		update = ast.ExpressionStmt{Expression: updateExpr}
	}
	if _, err := p.consume(token.RPA, "expected ')' after for clauses"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.ForStmt{Init: initStmt, Cond: cond, Update: update, Body: body}, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	pos := p.previous()
	var value ast.Expression
	if !p.check(token.SEMICOLON) {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after return statement"); err != nil {
		return nil, err
	}
	return ast.ReturnStmt{Value: value, Pos: pos}, nil
}
