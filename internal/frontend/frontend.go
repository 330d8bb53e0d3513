// Package frontend wires the lexer, parser and resolver into the standard
// processing pipeline.
package frontend

import (
	"github.com/funvibe/decaf/internal/lexer"
	"github.com/funvibe/decaf/internal/parser"
	"github.com/funvibe/decaf/internal/pipeline"
	"github.com/funvibe/decaf/internal/resolver"
)

// Analyze lexes, parses and resolves one source text. On success the
// context's AstRoot carries a symbol table on every scope node and
// Resolved is set; otherwise Errors says why.
func Analyze(path, source string) *pipeline.PipelineContext {
	return run(path, source,
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
	)
}

// Parse stops after parsing; the tree carries no symbol tables.
func Parse(path, source string) *pipeline.PipelineContext {
	return run(path, source,
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
	)
}

func run(path, source string, processors ...pipeline.Processor) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = path
	return pipeline.New(processors...).Run(ctx)
}
