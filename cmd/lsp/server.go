package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Language Server implementation
type LanguageServer struct {
	documents map[string]*DocumentState // URI -> document state
	mu        sync.RWMutex              // Mutex to protect the documents map
	writer    io.Writer                 // Output stream for JSON-RPC responses
	wmu       sync.Mutex                // Serializes writes to writer
	rootPath  string                    // Workspace root
	shutdown  bool                      // Set by the shutdown request
}

func NewLanguageServer(writer io.Writer) *LanguageServer {
	if writer == nil {
		writer = os.Stdout
	}
	return &LanguageServer{
		documents: make(map[string]*DocumentState),
		writer:    writer,
	}
}

// Start serves requests from stdin until it is closed or the client exits.
func (s *LanguageServer) Start() {
	code := s.Serve(os.Stdin)
	os.Exit(code)
}

// Serve reads framed JSON-RPC messages from r until EOF or an exit
// notification and returns the process exit code the protocol asks for.
func (s *LanguageServer) Serve(r io.Reader) int {
	// Use a bufio.Reader instead of Scanner to handle arbitrary buffer sizes and raw reads
	reader := bufio.NewReader(r)

	for {
		// Read header line
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("Error reading header: %v", err)
			}
			return s.exitCode()
		}

		// Remove trailing CR/LF
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			continue // Skip empty lines between messages or before headers
		}

		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		contentLength, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		if err != nil {
			log.Printf("Error parsing Content-Length: %v", err)
			continue
		}

		// Skip any further headers up to the empty separator line
		for {
			header, err := reader.ReadString('\n')
			if err != nil {
				log.Printf("Error reading separator: %v", err)
				return s.exitCode()
			}
			if strings.TrimRight(header, "\r\n") == "" {
				break
			}
		}

		content := make([]byte, contentLength)
		if _, err := io.ReadFull(reader, content); err != nil {
			log.Printf("Error reading content: %v", err)
			return s.exitCode()
		}

		exit, err := s.handleMessage(content)
		if err != nil {
			log.Printf("Error handling message: %v", err)
		}
		if exit {
			return s.exitCode()
		}
	}
}

// exitCode is 0 after a shutdown request and 1 otherwise.
func (s *LanguageServer) exitCode() int {
	if s.shutdown {
		return 0
	}
	return 1
}

type baseMessage struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method"`
}

// handleMessage dispatches one message; it reports true for exit.
func (s *LanguageServer) handleMessage(content []byte) (bool, error) {
	var msg baseMessage
	if err := json.Unmarshal(content, &msg); err != nil {
		return false, fmt.Errorf("failed to unmarshal message: %v", err)
	}

	log.Printf("Received %s (id %v)", msg.Method, msg.ID)

	// Check if this is a request (has ID) or notification (no ID)
	if msg.ID != nil {
		return false, s.handleRequest(msg, content)
	}
	if msg.Method == "exit" {
		return true, nil
	}
	return false, s.handleNotification(msg, content)
}

func (s *LanguageServer) handleRequest(msg baseMessage, content []byte) error {
	switch msg.Method {
	case "initialize":
		var params InitializeParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return s.sendError(msg.ID, ErrInvalidParams, err.Error())
		}
		return s.handleInitialize(msg.ID, params)

	case "shutdown":
		return s.handleShutdown(msg.ID)

	case "textDocument/hover":
		var params HoverParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return s.sendError(msg.ID, ErrInvalidParams, err.Error())
		}
		return s.handleHover(msg.ID, params)

	case "textDocument/definition":
		var params DefinitionParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return s.sendError(msg.ID, ErrInvalidParams, err.Error())
		}
		return s.handleDefinition(msg.ID, params)

	case "textDocument/completion":
		var params CompletionParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return s.sendError(msg.ID, ErrInvalidParams, err.Error())
		}
		return s.handleCompletion(msg.ID, params)

	case "textDocument/formatting":
		var params DocumentFormattingParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return s.sendError(msg.ID, ErrInvalidParams, err.Error())
		}
		return s.handleFormatting(msg.ID, params)

	case "textDocument/documentSymbol":
		var params DocumentSymbolParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return s.sendError(msg.ID, ErrInvalidParams, err.Error())
		}
		return s.handleDocumentSymbol(msg.ID, params)

	default:
		return s.sendError(msg.ID, ErrMethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method))
	}
}

func (s *LanguageServer) handleNotification(msg baseMessage, content []byte) error {
	switch msg.Method {
	case "initialized":
		// Client has finished initialization
		return nil

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidOpen(params)

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidChange(params)

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidClose(params)

	default:
		// Unknown notification, ignore
		return nil
	}
}

// document returns the cached state of uri, or nil.
func (s *LanguageServer) document(uri string) *DocumentState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents[uri]
}

func (s *LanguageServer) sendResult(id interface{}, result interface{}) error {
	return s.sendMessage(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: result})
}

func (s *LanguageServer) sendError(id interface{}, code int, message string) error {
	return s.sendMessage(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	})
}

func (s *LanguageServer) sendNotification(notification NotificationMessage) error {
	return s.sendMessage(notification)
}

func (s *LanguageServer) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}
