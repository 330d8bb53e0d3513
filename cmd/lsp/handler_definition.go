package main

import (
	"log"
	"unicode/utf8"

	"github.com/funvibe/decaf/internal/ast"
	"github.com/funvibe/decaf/internal/token"
)

func (s *LanguageServer) handleDefinition(id interface{}, params DefinitionParams) error {
	log.Printf("Handling definition request for %s at line %d, char %d", params.TextDocument.URI, params.Position.Line, params.Position.Character)

	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return s.sendResult(id, nil)
	}
	content, finalCtx := doc.snapshot()
	if finalCtx == nil || !finalCtx.Resolved {
		return s.sendResult(id, nil)
	}

	ref, ok := positionReference(content, finalCtx.AstRoot, params.Position)
	if !ok {
		return s.sendResult(id, nil)
	}
	sym, table, ok := ref.resolve()
	if !ok || sym.Builtin {
		return s.sendResult(id, nil)
	}

	tok, ok := declarations(finalCtx.AstRoot)[declKey{table, sym.Name}]
	if !ok {
		return s.sendResult(id, nil)
	}
	return s.sendResult(id, Location{
		URI:   params.TextDocument.URI,
		Range: *tokenRange(content, tok, sym.Name),
	})
}

// tokenRange converts a token position to an LSP range over name,
// measuring columns on the token's line of content.
func tokenRange(content string, tok token.Token, name string) *Range {
	line := getLine(content, tok.Line-1)
	return &Range{
		Start: Position{Line: tok.Line - 1, Character: utf16Offset(line, tok.Column)},
		End:   Position{Line: tok.Line - 1, Character: utf16Offset(line, tok.Column+utf8.RuneCountInString(name))},
	}
}

// positionReference finds the identifier under an LSP position.
func positionReference(content string, program *ast.Program, pos Position) (reference, bool) {
	return referenceAt(program, pos.Line+1, runeColumn(getLine(content, pos.Line), pos.Character))
}
