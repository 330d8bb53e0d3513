package parser

import (
	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/pipeline"
	"github.com/funvibe/decaf/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		// The lexer stage did not run.
		ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, token.Token{}, "parser: token stream is nil"))
		return ctx
	}
	// Lexer errors leave ILLEGAL tokens behind; parsing them only adds noise.
	if ctx.HasErrors() {
		return ctx
	}

	parser := New(ctx.TokenStream, ctx)
	ctx.AstRoot = parser.ParseProgram()
	ctx.AstRoot.File = ctx.FilePath

	return ctx
}
