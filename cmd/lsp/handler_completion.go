package main

import (
	"log"
	"strings"

	"github.com/funvibe/decaf/internal/pipeline"
	"github.com/funvibe/decaf/internal/symbols"
	"github.com/funvibe/decaf/internal/token"
)

func (s *LanguageServer) handleCompletion(id interface{}, params CompletionParams) error {
	log.Printf("Handling completion request for %s at line %d, char %d", params.TextDocument.URI, params.Position.Line, params.Position.Character)

	empty := CompletionList{IsIncomplete: false, Items: []CompletionItem{}}
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return s.sendResult(id, empty)
	}
	content, finalCtx := doc.snapshot()
	if finalCtx == nil {
		return s.sendResult(id, empty)
	}

	prefix := wordBefore(content, params.Position.Line, params.Position.Character)
	return s.sendResult(id, CompletionList{
		IsIncomplete: false,
		Items:        completionItems(finalCtx, params.Position, prefix),
	})
}

// completionItems offers the names visible at position, innermost
// first with shadowed outer names left out, followed by keywords.
func completionItems(ctx *pipeline.PipelineContext, position Position, prefix string) []CompletionItem {
	items := []CompletionItem{}
	seen := make(map[string]bool)

	if ctx.Resolved {
		for table := scopeAt(ctx.AstRoot, position.Line+1); table != nil; table = table.Parent() {
			for _, sym := range table.Symbols() {
				if seen[sym.Name] || !strings.HasPrefix(sym.Name, prefix) {
					continue
				}
				seen[sym.Name] = true
				kind := CompletionItemVariable
				if sym.Kind == symbols.FunctionSymbol {
					kind = CompletionItemFunction
				}
				items = append(items, CompletionItem{Label: sym.Name, Kind: kind, Detail: sym.String()})
			}
		}
	}

	for _, kw := range token.Keywords() {
		if seen[kw] || !strings.HasPrefix(kw, prefix) {
			continue
		}
		items = append(items, CompletionItem{Label: kw, Kind: CompletionItemKeyword})
	}
	return items
}
