package main

import (
	"log"

	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/prettyprinter"
)

func (s *LanguageServer) handleFormatting(id interface{}, params DocumentFormattingParams) error {
	log.Printf("Handling formatting request for %s", params.TextDocument.URI)

	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return s.sendResult(id, []TextEdit{})
	}
	content, finalCtx := doc.snapshot()
	if finalCtx == nil || finalCtx.AstRoot == nil || hasSyntaxErrors(finalCtx.Errors) {
		return s.sendResult(id, []TextEdit{})
	}

	formatted := prettyprinter.Format(finalCtx.AstRoot)
	if formatted == content {
		return s.sendResult(id, []TextEdit{})
	}

	// Replace the entire document
	edit := TextEdit{
		Range:   Range{Start: Position{}, End: endPosition(content)},
		NewText: formatted,
	}
	return s.sendResult(id, []TextEdit{edit})
}

// hasSyntaxErrors reports lexer or parser diagnostics; the tree is only
// safe to print without them.
func hasSyntaxErrors(errs []*diagnostics.DiagnosticError) bool {
	for _, e := range errs {
		switch e.Code {
		case diagnostics.ErrL001, diagnostics.ErrL002, diagnostics.ErrP001, diagnostics.ErrP002, diagnostics.ErrP003:
			return true
		}
	}
	return false
}
