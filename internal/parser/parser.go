package parser

import (
	"fmt"

	"github.com/funvibe/decaf/internal/ast"
	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/pipeline"
	"github.com/funvibe/decaf/internal/token"
	"github.com/funvibe/decaf/internal/typesystem"
)

// Parser builds an *ast.Program from a token stream. It stops at the first
// syntax error; diagnostics go to the pipeline context.
type Parser struct {
	stream pipeline.TokenStream
	ctx    *pipeline.PipelineContext

	curToken  token.Token
	peekToken token.Token
	pending   []token.Token // tokens read past peekToken

	failed bool
}

func New(stream pipeline.TokenStream, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{stream: stream, ctx: ctx}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if len(p.pending) > 0 {
		p.peekToken = p.pending[0]
		p.pending = p.pending[1:]
		return
	}
	p.peekToken = p.stream.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek advances if the next token has type t, otherwise reports P001.
func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorAt(diagnostics.ErrP001, p.peekToken, fmt.Sprintf("expected %s, got %s", describe(t), describeToken(p.peekToken)))
}

func (p *Parser) errorAt(code diagnostics.ErrorCode, tok token.Token, msg string) {
	if p.failed {
		return
	}
	p.failed = true
	p.ctx.AddError(diagnostics.NewError(code, tok, msg))
}

// ParseProgram parses declarations until EOF. Global variables and
// functions may be interleaved; each list keeps source order.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Token: p.curToken, File: p.ctx.FilePath}

	for !p.curTokenIs(token.EOF) && !p.failed {
		switch {
		case p.curTokenIs(token.VOID):
			if fn := p.parseFuncDecl(); fn != nil {
				program.Functions = append(program.Functions, fn)
			}
		case token.IsType(p.curToken.Type):
			// type IDENT '(' starts a function, anything else a variable list.
			if p.peekTokenIs(token.IDENT) && p.lookaheadIsFunc() {
				if fn := p.parseFuncDecl(); fn != nil {
					program.Functions = append(program.Functions, fn)
				}
			} else {
				program.Variables = append(program.Variables, p.parseVarDecls()...)
			}
		default:
			p.errorAt(diagnostics.ErrP001, p.curToken, fmt.Sprintf("expected declaration, got %s", describeToken(p.curToken)))
		}
		p.nextToken()
	}

	return program
}

// lookaheadIsFunc is called with curToken on a type and peekToken on the
// identifier; it reports whether the token after the identifier is '('.
func (p *Parser) lookaheadIsFunc() bool {
	if len(p.pending) == 0 {
		p.pending = append(p.pending, p.stream.NextToken())
	}
	return p.pending[0].Type == token.LPAREN
}

func (p *Parser) parseType(allowVoid bool) (typesystem.DecafType, bool) {
	if p.curTokenIs(token.VOID) && !allowVoid {
		p.errorAt(diagnostics.ErrP002, p.curToken, "void is only valid as a function return type")
		return typesystem.Invalid, false
	}
	t, ok := typesystem.ParseType(p.curToken.Lexeme)
	if !ok || (p.curToken.Type != token.VOID && !token.IsType(p.curToken.Type)) {
		p.errorAt(diagnostics.ErrP002, p.curToken, fmt.Sprintf("expected type, got %s", describeToken(p.curToken)))
		return typesystem.Invalid, false
	}
	return t, true
}

func describe(t token.TokenType) string {
	switch t {
	case token.IDENT:
		return "identifier"
	case token.INT:
		return "integer literal"
	case token.STRING:
		return "string literal"
	case token.EOF:
		return "end of file"
	}
	return fmt.Sprintf("'%s'", t)
}

func describeToken(tok token.Token) string {
	switch tok.Type {
	case token.IDENT, token.INT, token.STRING:
		return fmt.Sprintf("%s %s", describe(tok.Type), tok.Lexeme)
	}
	return describe(tok.Type)
}
