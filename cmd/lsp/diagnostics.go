package main

import (
	"path/filepath"
	"unicode/utf8"

	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/pipeline"
)

func (s *LanguageServer) publishDiagnostics(uri string, finalCtx *pipeline.PipelineContext) error {
	notification := NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: s.convertDiagnostics(finalCtx.SourceCode, finalCtx.Errors, s.uriToPath(uri)),
		},
	}
	return s.sendNotification(notification)
}

func (s *LanguageServer) convertDiagnostics(content string, errors []*diagnostics.DiagnosticError, filePath string) []Diagnostic {
	result := make([]Diagnostic, 0)
	targetPath := filepath.Clean(filePath)

	for _, err := range errors {
		if err.File != "" && targetPath != "" && filepath.Clean(err.File) != targetPath {
			continue
		}

		// LSP positions are 0-based UTF-16; diagnostics without a position go to the top.
		line := err.Token.Line - 1
		if line < 0 {
			line = 0
		}
		column := err.Token.Column
		if column < 1 {
			column = 1
		}
		width := utf8.RuneCountInString(err.Token.Lexeme)
		if width == 0 {
			width = 1
		}
		text := getLine(content, line)
		start, end := utf16Offset(text, column), utf16Offset(text, column+width)

		result = append(result, Diagnostic{
			Range: Range{
				Start: Position{Line: line, Character: start},
				End:   Position{Line: line, Character: end},
			},
			Severity: SeverityError,
			Code:     string(err.Code),
			Message:  err.Message,
			Source:   "decaf",
		})
	}

	return result
}
