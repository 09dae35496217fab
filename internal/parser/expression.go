package parser

import (
	"fmt"

	"atlas/internal/ast"
	"atlas/internal/token"
)

// expression is the Pratt entry point. Precedence climbs through named
// methods rather than a table, mirroring the teacher's parser/parser.go
// style of one method per precedence level.
func (p *Parser) expression() (ast.Expression, error) {
	return p.assignment()
}

func (p *Parser) assignment() (ast.Expression, error) {
	expr, err := p.logicOr()
	if err != nil {
		return nil, err
	}
	if p.match(token.ASSIGN) {
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		switch target := expr.(type) {
		case ast.Variable:
			return ast.Assign{Name: target.Name, Value: value}, nil
		case ast.Index:
			// desugared here, in the parser (spec §4.3): an Index-target
			// Assign would require a new AST node, so `target[idx] = value`
			// is modeled as a Call to the `__set_index__` builtin instead.
			return ast.Call{
				Callee: ast.Variable{Name: token.CreateToken(token.IDENTIFIER, "__set_index__", target.Pos.Line, target.Pos.Column, target.Pos.Offset)},
				Args:   []ast.Expression{target.Target, target.Idx, value},
				Pos:    target.Pos,
			}, nil
		default:
			return nil, fmt.Errorf("invalid assignment target at line %d", p.previous().Line)
		}
	}
	return expr, nil
}

func (p *Parser) logicOr() (ast.Expression, error) {
	expr, err := p.logicAnd()
	if err != nil {
		return nil, err
	}
	for p.match(token.OR) {
		op := p.previous()
		right, err := p.logicAnd()
		if err != nil {
			return nil, err
		}
		expr = ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) logicAnd() (ast.Expression, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(token.AND) {
		op := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) equality() (ast.Expression, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.match(token.EQUAL_EQUAL, token.NOT_EQUAL) {
		op := p.previous()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) comparison() (ast.Expression, error) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.match(token.LESS, token.LESS_EQUAL, token.LARGER, token.LARGER_EQUAL) {
		op := p.previous()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) term() (ast.Expression, error) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.match(token.ADD, token.SUB) {
		op := p.previous()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) factor() (ast.Expression, error) {
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(token.MULT, token.DIV, token.MOD) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expression, error) {
	if p.match(token.BANG, token.SUB) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Operator: op, Right: right}, nil
	}
	return p.tryExpr()
}

// tryExpr handles the postfix `?` error-propagation operator. It applies
// after all call/index/member suffixes of its operand (`f()?` is `(f())?`)
// and binds tighter than the prefix `!` and `-`.
func (p *Parser) tryExpr() (ast.Expression, error) {
	expr, err := p.callOrIndex()
	if err != nil {
		return nil, err
	}
	for p.match(token.QUESTION) {
		expr = ast.Try{Inner: expr, Pos: p.previous()}
	}
	return expr, nil
}

func (p *Parser) callOrIndex() (ast.Expression, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(token.LPA):
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case p.match(token.LBRACKET):
			pos := p.previous()
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RBRACKET, "expected ']' after index expression"); err != nil {
				return nil, err
			}
			expr = ast.Index{Target: expr, Idx: idx, Pos: pos}
		case p.match(token.DOT):
			name, err := p.consume(token.IDENTIFIER, "expected method name after '.'")
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.LPA, "expected '(' after method name"); err != nil {
				return nil, err
			}
			args, err := p.argumentList()
			if err != nil {
				return nil, err
			}
			expr = ast.Member{Target: expr, Method: name, Args: args}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	pos := p.previous()
	args, err := p.argumentList()
	if err != nil {
		return nil, err
	}
	return ast.Call{Callee: callee, Args: args, Pos: pos}, nil
}

func (p *Parser) argumentList() ([]ast.Expression, error) {
	var args []ast.Expression
	if !p.check(token.RPA) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPA, "expected ')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) primary() (ast.Expression, error) {
	switch {
	case p.match(token.FALSE):
		return ast.Literal{Value: false, Pos: p.previous()}, nil
	case p.match(token.TRUE):
		return ast.Literal{Value: true, Pos: p.previous()}, nil
	case p.match(token.NULL):
		return ast.Literal{Value: nil, Pos: p.previous()}, nil
	case p.match(token.INT, token.FLOAT, token.STRING):
		tok := p.previous()
		return ast.Literal{Value: tok.Literal, Pos: tok}, nil
	case p.match(token.IDENTIFIER):
		return ast.Variable{Name: p.previous()}, nil
	case p.match(token.LPA):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPA, "expected ')' after grouped expression"); err != nil {
			return nil, err
		}
		return ast.Grouping{Expression: expr}, nil
	case p.match(token.LBRACKET):
		return p.arrayLiteral()
	case p.match(token.FUNC):
		pos := p.previous()
		lit, err := p.functionTail("", pos)
		if err != nil {
			return nil, err
		}
		return lit, nil
	case p.match(token.MATCH):
		return p.matchExpr()
	case p.match(token.SOME):
		return p.constructorCall("Some", true)
	case p.match(token.NONEK):
		return ast.Constructor{Name: "None", Pos: p.previous()}, nil
	case p.match(token.OKK):
		return p.constructorCall("Ok", true)
	case p.match(token.ERRK):
		return p.constructorCall("Err", true)
	default:
		return nil, fmt.Errorf("parse error at line %d: expected expression (got %s)", p.peek().Line, p.peek().TokenType)
	}
}

func (p *Parser) constructorCall(name string, requireArg bool) (ast.Expression, error) {
	pos := p.previous()
	if _, err := p.consume(token.LPA, fmt.Sprintf("expected '(' after %s", name)); err != nil {
		return nil, err
	}
	var inner ast.Expression
	if !p.check(token.RPA) {
		var err error
		inner, err = p.expression()
		if err != nil {
			return nil, err
		}
	} else if requireArg {
		return nil, fmt.Errorf("parse error at line %d: %s requires an argument", pos.Line, name)
	}
	if _, err := p.consume(token.RPA, fmt.Sprintf("expected ')' after %s argument", name)); err != nil {
		return nil, err
	}
	return ast.Constructor{Name: name, Inner: inner, Pos: pos}, nil
}

func (p *Parser) arrayLiteral() (ast.Expression, error) {
	pos := p.previous()
	var elems []ast.Expression
	if !p.check(token.RBRACKET) {
		for {
			el, err := p.expression()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
			if !p.match(token.COMMA) {
				break
			}
			if p.check(token.RBRACKET) {
				break // trailing comma
			}
		}
	}
	if _, err := p.consume(token.RBRACKET, "expected ']' after array elements"); err != nil {
		return nil, err
	}
	return ast.ArrayLiteral{Elements: elems, Pos: pos}, nil
}

// matchExpr parses `match <scrutinee> { pattern [if guard] => body, ... }`.
func (p *Parser) matchExpr() (ast.Expression, error) {
	pos := p.previous()
	scrutinee, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "expected '{' after match scrutinee"); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	for !p.check(token.RBRACE) && !p.isFinished() {
		pat, err := p.pattern()
		if err != nil {
			return nil, err
		}
		var guard ast.Expression
		if p.match(token.IF) {
			guard, err = p.expression()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.consume(token.FATARROW, "expected '=>' after match pattern"); err != nil {
			return nil, err
		}
		body, err := p.expression()
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close match"); err != nil {
		return nil, err
	}
	return ast.Match{Scrutinee: scrutinee, Arms: arms, Pos: pos}, nil
}

// pattern parses an or-pattern: primaryPattern ("|" primaryPattern)*.
func (p *Parser) pattern() (ast.Pattern, error) {
	first, err := p.primaryPattern()
	if err != nil {
		return nil, err
	}
	if !p.check(token.PIPE) {
		return first, nil
	}
	alts := []ast.Pattern{first}
	for p.match(token.PIPE) {
		next, err := p.primaryPattern()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	return ast.OrPattern{Alternatives: alts}, nil
}

func (p *Parser) primaryPattern() (ast.Pattern, error) {
	switch {
	case p.match(token.WILDCARD):
		return ast.WildcardPattern{}, nil
	case p.match(token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NULL):
		tok := p.previous()
		lit := tok.Literal
		switch tok.TokenType {
		case token.TRUE:
			lit = true
		case token.FALSE:
			lit = false
		case token.NULL:
			lit = nil
		}
		return ast.LiteralPattern{Value: ast.Literal{Value: lit, Pos: tok}}, nil
	case p.match(token.SUB):
		// negative numeric literal pattern, e.g. `-1 => ...`
		numTok, err := p.consume(token.INT, "expected number after unary '-' in pattern")
		if err != nil {
			numTok, err = p.consume(token.FLOAT, "expected number after unary '-' in pattern")
			if err != nil {
				return nil, err
			}
		}
		neg := -(numTok.Literal.(float64))
		return ast.LiteralPattern{Value: ast.Literal{Value: neg, Pos: numTok}}, nil
	case p.match(token.SOME):
		pos := p.previous()
		if _, err := p.consume(token.LPA, "expected '(' after Some"); err != nil {
			return nil, err
		}
		inner, err := p.pattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPA, "expected ')' after Some pattern"); err != nil {
			return nil, err
		}
		return ast.ConstructorPattern{Name: "Some", Inner: inner, Pos: pos}, nil
	case p.match(token.NONEK):
		return ast.ConstructorPattern{Name: "None", Pos: p.previous()}, nil
	case p.match(token.OKK):
		pos := p.previous()
		if _, err := p.consume(token.LPA, "expected '(' after Ok"); err != nil {
			return nil, err
		}
		inner, err := p.pattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPA, "expected ')' after Ok pattern"); err != nil {
			return nil, err
		}
		return ast.ConstructorPattern{Name: "Ok", Inner: inner, Pos: pos}, nil
	case p.match(token.ERRK):
		pos := p.previous()
		if _, err := p.consume(token.LPA, "expected '(' after Err"); err != nil {
			return nil, err
		}
		inner, err := p.pattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPA, "expected ')' after Err pattern"); err != nil {
			return nil, err
		}
		return ast.ConstructorPattern{Name: "Err", Inner: inner, Pos: pos}, nil
	case p.match(token.LBRACKET):
		pos := p.previous()
		var elems []ast.Pattern
		if !p.check(token.RBRACKET) {
			for {
				el, err := p.pattern()
				if err != nil {
					return nil, err
				}
				elems = append(elems, el)
				if !p.match(token.COMMA) {
					break
				}
				if p.check(token.RBRACKET) {
					break
				}
			}
		}
		if _, err := p.consume(token.RBRACKET, "expected ']' to close array pattern"); err != nil {
			return nil, err
		}
		return ast.ArrayPattern{Elements: elems, Pos: pos}, nil
	case p.match(token.IDENTIFIER):
		return ast.VarPattern{Name: p.previous()}, nil
	default:
		return nil, fmt.Errorf("parse error at line %d: expected pattern (got %s)", p.peek().Line, p.peek().TokenType)
	}
}
