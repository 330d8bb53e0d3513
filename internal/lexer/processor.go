package lexer

import (
	"github.com/funvibe/decaf/internal/pipeline"
	"github.com/funvibe/decaf/internal/token"
)

// TokenStream is the fully scanned token sequence of one source, always
// terminated by a single EOF token.
type TokenStream struct {
	tokens []token.Token
	pos    int
}

// NewTokenStream drains l into a stream.
func NewTokenStream(l *Lexer) *TokenStream {
	ts := &TokenStream{}
	for {
		tok := l.NextToken()
		ts.tokens = append(ts.tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return ts
}

// NextToken returns the next token; at the end it keeps returning EOF.
func (ts *TokenStream) NextToken() token.Token {
	tok := ts.tokens[ts.pos]
	if ts.pos < len(ts.tokens)-1 {
		ts.pos++
	}
	return tok
}

// Tokens returns every scanned token including the trailing EOF.
func (ts *TokenStream) Tokens() []token.Token {
	return ts.tokens
}

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.SourceCode)
	ctx.TokenStream = NewTokenStream(l)
	for _, err := range l.Errors() {
		ctx.AddError(err)
	}
	return ctx
}
