package main

import (
	"fmt"
	"log"

	"github.com/funvibe/decaf/internal/symbols"
)

func (s *LanguageServer) handleHover(id interface{}, params HoverParams) error {
	log.Printf("Handling hover request for %s at line %d, char %d", params.TextDocument.URI, params.Position.Line, params.Position.Character)

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
	if !ok {
		return s.sendResult(id, Hover{
			Contents: MarkupContent{Kind: "markdown", Value: fmt.Sprintf("`%s` is not declared", ref.Name)},
			Range:    tokenRange(content, ref.Token, ref.Name),
		})
	}

	return s.sendResult(id, Hover{
		Contents: MarkupContent{Kind: "markdown", Value: hoverText(sym, table)},
		Range:    tokenRange(content, ref.Token, ref.Name),
	})
}

func hoverText(sym *symbols.Symbol, table *symbols.SymbolTable) string {
	text := "```decaf\n" + sym.String() + "\n```\n"
	if sym.Builtin {
		return text + "built-in"
	}
	return text + fmt.Sprintf("%s %s, %s scope, line %d", describeKind(sym.Kind), sym.Name, table.Kind(), sym.Line)
}

func describeKind(k symbols.SymbolKind) string {
	switch k {
	case symbols.ArraySymbol:
		return "array"
	case symbols.FunctionSymbol:
		return "function"
	}
	return "variable"
}
