package parser

import (
	"fmt"

	"github.com/funvibe/decaf/internal/ast"
	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/token"
	"github.com/funvibe/decaf/internal/typesystem"
)

const (
	_ int = iota
	LOWEST
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x !x
)

var precedences = map[token.TokenType]int{
	token.OR:       LOGICAL_OR,
	token.AND:      LOGICAL_AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.LTE:      LESSGREATER,
	token.GT:       LESSGREATER,
	token.GTE:      LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// parseExpression is a precedence climber; all binary operators are left
// associative. curToken is the first token; on return it is the last one.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		p.nextToken()
		op := p.curToken
		prec := precedences[op.Type]
		p.nextToken()
		right := p.parseExpression(prec)
		if right == nil {
			return nil
		}
		left = &ast.BinaryOp{Token: op, Operator: op.Lexeme, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.curToken.Type {
	case token.IDENT:
		if p.peekTokenIs(token.LPAREN) {
			if call := p.parseFuncCall(); call != nil {
				return call
			}
			return nil
		}
		if loc := p.parseLocation(); loc != nil {
			return loc
		}
		return nil
	case token.INT:
		return &ast.Literal{Token: p.curToken, LitType: typesystem.Int, Value: p.curToken.Literal}
	case token.STRING:
		return &ast.Literal{Token: p.curToken, LitType: typesystem.Str, Value: p.curToken.Literal}
	case token.TRUE, token.FALSE:
		return &ast.Literal{Token: p.curToken, LitType: typesystem.Bool, Value: p.curTokenIs(token.TRUE)}
	case token.MINUS, token.BANG:
		op := p.curToken
		p.nextToken()
		operand := p.parseExpression(PREFIX)
		if operand == nil {
			return nil
		}
		return &ast.UnaryOp{Token: op, Operator: op.Lexeme, Operand: operand}
	case token.LPAREN:
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if expr == nil || !p.expectPeek(token.RPAREN) {
			return nil
		}
		return expr
	}
	p.errorAt(diagnostics.ErrP001, p.curToken, fmt.Sprintf("expected expression, got %s", describeToken(p.curToken)))
	return nil
}

// parseLocation parses `name` or `name[expr]`.
func (p *Parser) parseLocation() *ast.Location {
	loc := &ast.Location{Token: p.curToken, Name: p.curToken.Lexeme}
	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken() // consume [
		p.nextToken()
		if loc.Index = p.parseExpression(LOWEST); loc.Index == nil {
			return nil
		}
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
	}
	return loc
}

// parseFuncCall parses `name(args...)`; curToken is the name.
func (p *Parser) parseFuncCall() *ast.FuncCall {
	call := &ast.FuncCall{Token: p.curToken, Name: p.curToken.Lexeme}
	p.nextToken() // consume (
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return call
	}
	for {
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		call.Arguments = append(call.Arguments, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // consume ,
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return call
}
