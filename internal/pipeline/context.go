package pipeline

import (
	"github.com/funvibe/decaf/internal/ast"
	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/token"
)

// Processor is one stage of the front end.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// TokenStream yields tokens until EOF; after EOF it keeps returning EOF.
type TokenStream interface {
	NextToken() token.Token
}

// PipelineContext carries the state passed between stages.
type PipelineContext struct {
	FilePath    string
	SourceCode  string
	TokenStream TokenStream
	AstRoot     *ast.Program
	Errors      []*diagnostics.DiagnosticError

	// Resolved is set once every scope node carries its symbol table.
	Resolved bool
	// Fatal is set when a stage hit an internal-consistency fault.
	Fatal bool
}

func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{SourceCode: source}
}

// AddError records err, stamping the context file path when missing.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	if err.IsFatal() {
		ctx.Fatal = true
	}
	ctx.Errors = append(ctx.Errors, err)
}

func (ctx *PipelineContext) HasErrors() bool {
	return len(ctx.Errors) > 0
}
