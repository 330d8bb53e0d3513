package parser

import (
	"fmt"
	"math"

	"github.com/funvibe/decaf/internal/ast"
	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/token"
)

// parseVarDecls parses `type a, b[4], c;` into one VarDecl per name.
// curToken is the type; on return it is the ';'.
func (p *Parser) parseVarDecls() []*ast.VarDecl {
	varType, ok := p.parseType(false)
	if !ok {
		return nil
	}

	var decls []*ast.VarDecl
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		decl := &ast.VarDecl{Token: p.curToken, Name: p.curToken.Lexeme, VarType: varType}

		if p.peekTokenIs(token.LBRACKET) {
			p.nextToken() // consume [
			if !p.expectPeek(token.INT) {
				return nil
			}
			length, _ := p.curToken.Literal.(int64)
			if length <= 0 {
				p.errorAt(diagnostics.ErrP003, p.curToken, fmt.Sprintf("array %s must have a positive length, got %s", decl.Name, p.curToken.Lexeme))
				return nil
			}
			if length > math.MaxInt32 {
				p.errorAt(diagnostics.ErrP003, p.curToken, fmt.Sprintf("array %s length %s exceeds %d", decl.Name, p.curToken.Lexeme, math.MaxInt32))
				return nil
			}
			decl.IsArray = true
			decl.ArrayLength = int(length)
			if !p.expectPeek(token.RBRACKET) {
				return nil
			}
		}
		decls = append(decls, decl)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // consume ,
	}

	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return decls
}

// parseFuncDecl parses `type name(type a, type b) { ... }`.
// curToken is the return type; on return it is the closing '}'.
func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	returnType, ok := p.parseType(true)
	if !ok {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fn := &ast.FuncDecl{Token: p.curToken, Name: p.curToken.Lexeme, ReturnType: returnType}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if !p.peekTokenIs(token.RPAREN) {
		for {
			p.nextToken()
			paramType, ok := p.parseType(false)
			if !ok {
				return nil
			}
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			fn.Parameters = append(fn.Parameters, &ast.Parameter{Token: p.curToken, Name: p.curToken.Lexeme, ParamType: paramType})
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken() // consume ,
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlock()
	if fn.Body == nil {
		return nil
	}
	return fn
}

// parseBlock parses `{ decls... stmts... }`. Declarations must come first.
// curToken is the '{'; on return it is the matching '}'.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken}
	p.nextToken()

	for token.IsType(p.curToken.Type) {
		decls := p.parseVarDecls()
		if p.failed {
			return nil
		}
		block.Variables = append(block.Variables, decls...)
		p.nextToken()
	}

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorAt(diagnostics.ErrP001, p.curToken, "expected '}', got end of file")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil || p.failed {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}
	return block
}

// parseStatement leaves curToken on the statement's last token.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IF:
		return p.parseConditional()
	case token.WHILE:
		return p.parseWhileLoop()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		stmt := &ast.Break{Token: p.curToken}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return stmt
	case token.CONTINUE:
		stmt := &ast.Continue{Token: p.curToken}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return stmt
	case token.IDENT:
		if p.peekTokenIs(token.LPAREN) {
			call := p.parseFuncCall()
			if call == nil || !p.expectPeek(token.SEMICOLON) {
				return nil
			}
			return &ast.ExprStmt{Token: call.Token, Call: call}
		}
		return p.parseAssignment()
	case token.TYPE_INT, token.TYPE_BOOL, token.TYPE_STR:
		p.errorAt(diagnostics.ErrP001, p.curToken, "declarations must precede statements in a block")
		return nil
	}
	p.errorAt(diagnostics.ErrP001, p.curToken, fmt.Sprintf("expected statement, got %s", describeToken(p.curToken)))
	return nil
}

func (p *Parser) parseConditional() *ast.Conditional {
	stmt := &ast.Conditional{Token: p.curToken}
	stmt.Condition = p.parseCondition()
	if stmt.Condition == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	if stmt.IfBlock = p.parseBlock(); stmt.IfBlock == nil {
		return nil
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken() // consume else
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		if stmt.ElseBlock = p.parseBlock(); stmt.ElseBlock == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhileLoop() *ast.WhileLoop {
	stmt := &ast.WhileLoop{Token: p.curToken}
	stmt.Condition = p.parseCondition()
	if stmt.Condition == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	if stmt.Body = p.parseBlock(); stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseCondition parses `( expr )` after if/while.
func (p *Parser) parseCondition() ast.Expression {
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return cond
}

func (p *Parser) parseReturn() *ast.Return {
	stmt := &ast.Return{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	if stmt.Value = p.parseExpression(LOWEST); stmt.Value == nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseAssignment() *ast.Assignment {
	target := p.parseLocation()
	if target == nil || !p.expectPeek(token.ASSIGN) {
		return nil
	}
	stmt := &ast.Assignment{Token: p.curToken, Target: target}
	p.nextToken()
	if stmt.Value = p.parseExpression(LOWEST); stmt.Value == nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}
