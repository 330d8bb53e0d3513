package resolver

import (
	"errors"

	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/pipeline"
	"github.com/funvibe/decaf/internal/symbols"
	"github.com/funvibe/decaf/internal/token"
)

// ResolverProcessor runs scope resolution as a pipeline stage. It does
// nothing when an earlier stage failed.
type ResolverProcessor struct{}

func (rp *ResolverProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.HasErrors() {
		return ctx
	}

	r := New()
	err := r.Resolve(ctx.AstRoot)
	if err == nil {
		err = Verify(ctx.AstRoot)
	}
	if err != nil {
		ctx.AddError(toDiagnostic(err))
		return ctx
	}

	ctx.Resolved = true
	return ctx
}

func toDiagnostic(err error) *diagnostics.DiagnosticError {
	var declErr *symbols.DeclarationError
	if errors.As(err, &declErr) {
		tok := token.Token{Type: token.IDENT, Lexeme: declErr.Name, Literal: declErr.Name, Line: declErr.ConflictLine}
		return diagnostics.Wrap(diagnostics.ErrS001, tok, err)
	}

	var tok token.Token
	var sf *StructuralFault
	if errors.As(err, &sf) && sf.Node != nil {
		tok = sf.Node.GetToken()
	}
	return diagnostics.Wrap(diagnostics.ErrS002, tok, err)
}
