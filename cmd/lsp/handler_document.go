package main

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/funvibe/decaf/internal/frontend"
	"github.com/funvibe/decaf/internal/pipeline"
)

// DocumentState stores the state of a single open document
type DocumentState struct {
	Content string                    // Current file content
	Context *pipeline.PipelineContext // Result of the last analysis
	Mu      sync.RWMutex              // Mutex to protect access to state
}

// snapshot returns the content and analysis under the read lock.
func (d *DocumentState) snapshot() (string, *pipeline.PipelineContext) {
	d.Mu.RLock()
	defer d.Mu.RUnlock()
	return d.Content, d.Context
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	content := params.TextDocument.Text

	docState := &DocumentState{
		Content: content,
		Context: s.analyzeDocument(content, uri),
	}

	s.mu.Lock()
	s.documents[uri] = docState
	s.mu.Unlock()

	log.Printf("Opened file: %s", uri)
	return s.publishDiagnostics(uri, docState.Context)
}

func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	// Full content sync only; the last change carries the whole text.
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	newContent := params.ContentChanges[len(params.ContentChanges)-1].Text

	docState := s.document(uri)
	if docState == nil {
		return fmt.Errorf("document %s not found", uri)
	}

	finalCtx := s.analyzeDocument(newContent, uri)
	docState.Mu.Lock()
	docState.Content = newContent
	docState.Context = finalCtx
	docState.Mu.Unlock()

	log.Printf("Changed file: %s", uri)
	return s.publishDiagnostics(uri, finalCtx)
}

func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()
	log.Printf("Closed file: %s", params.TextDocument.URI)

	// Clear the client's diagnostics for the closed file.
	return s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  PublishDiagnosticsParams{URI: params.TextDocument.URI, Diagnostics: []Diagnostic{}},
	})
}

func (s *LanguageServer) analyzeDocument(content string, uri string) *pipeline.PipelineContext {
	return frontend.Analyze(s.uriToPath(uri), content)
}

func (s *LanguageServer) uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
