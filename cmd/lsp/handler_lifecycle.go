package main

import (
	"log"

	"github.com/funvibe/decaf/internal/config"
)

func (s *LanguageServer) handleInitialize(id interface{}, params InitializeParams) error {
	log.Printf("Handling initialize request with ID: %v", id)

	if params.RootURI != nil && *params.RootURI != "" {
		s.rootPath = s.uriToPath(*params.RootURI)
	} else if params.RootPath != nil && *params.RootPath != "" {
		s.rootPath = *params.RootPath
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:           1, // Full sync
			HoverProvider:              true,
			DefinitionProvider:         true,
			CompletionProvider:         &CompletionOptions{TriggerCharacters: []string{}},
			DocumentFormattingProvider: true,
			DocumentSymbolProvider:     true,
		},
		ServerInfo: &ServerInfo{Name: "decaf-lsp", Version: config.Version},
	}

	return s.sendResult(id, result)
}

func (s *LanguageServer) handleShutdown(id interface{}) error {
	s.shutdown = true
	return s.sendResult(id, nil)
}
