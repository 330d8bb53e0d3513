package main

import (
	"fmt"
	"log"

	"github.com/funvibe/decaf/internal/ast"
	"github.com/funvibe/decaf/internal/token"
)

func (s *LanguageServer) handleDocumentSymbol(id interface{}, params DocumentSymbolParams) error {
	log.Printf("Handling documentSymbol request for %s", params.TextDocument.URI)

	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return s.sendResult(id, []DocumentSymbol{})
	}
	content, finalCtx := doc.snapshot()
	if finalCtx == nil || finalCtx.AstRoot == nil {
		return s.sendResult(id, []DocumentSymbol{})
	}
	return s.sendResult(id, documentSymbols(content, finalCtx.AstRoot))
}

// documentSymbols outlines the globals and functions of program. A
// function lists its parameters and every local, nested ones included.
func documentSymbols(content string, program *ast.Program) []DocumentSymbol {
	o := outliner{content: content}
	result := []DocumentSymbol{}
	for _, v := range program.Variables {
		result = append(result, o.varSymbol(v))
	}
	for _, fn := range program.Functions {
		sym := o.symbol(fn.Token, fn.Name, SymbolKindFunction, fn.ReturnType.String())
		for _, p := range fn.Parameters {
			sym.Children = append(sym.Children, o.symbol(p.Token, p.Name, SymbolKindVariable, p.ParamType.String()))
		}
		if fn.Body != nil {
			sym.Children = o.appendLocals(sym.Children, fn.Body)
		}
		result = append(result, sym)
	}
	return result
}

// outliner builds outline entries with ranges measured on content.
type outliner struct {
	content string
}

func (o outliner) appendLocals(out []DocumentSymbol, b *ast.Block) []DocumentSymbol {
	for _, v := range b.Variables {
		out = append(out, o.varSymbol(v))
	}
	for _, stmt := range b.Statements {
		for _, child := range ast.NestedBlocks(stmt) {
			if child != nil {
				out = o.appendLocals(out, child)
			}
		}
	}
	return out
}

func (o outliner) varSymbol(v *ast.VarDecl) DocumentSymbol {
	if v.IsArray {
		return o.symbol(v.Token, v.Name, SymbolKindArray, fmt.Sprintf("%s[%d]", v.VarType, v.ArrayLength))
	}
	return o.symbol(v.Token, v.Name, SymbolKindVariable, v.VarType.String())
}

func (o outliner) symbol(tok token.Token, name string, kind SymbolKind, detail string) DocumentSymbol {
	r := *tokenRange(o.content, tok, name)
	return DocumentSymbol{Name: name, Detail: detail, Kind: kind, Range: r, SelectionRange: r}
}
