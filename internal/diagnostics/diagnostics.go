package diagnostics

import (
	"fmt"

	"github.com/funvibe/decaf/internal/token"
)

type ErrorCode string

const (
	// Lexer
	ErrL001 ErrorCode = "L001" // Illegal character
	ErrL002 ErrorCode = "L002" // Unterminated string literal

	// Parser
	ErrP001 ErrorCode = "P001" // Unexpected token
	ErrP002 ErrorCode = "P002" // Invalid type
	ErrP003 ErrorCode = "P003" // Invalid array length

	// Scope resolution
	ErrS001 ErrorCode = "S001" // Duplicate declaration in one scope
	ErrS002 ErrorCode = "S002" // Structural fault (internal)

	// Tooling
	ErrC001 ErrorCode = "C001" // Configuration
	ErrI001 ErrorCode = "I001" // I/O
)

// DiagnosticError is a positioned error reported by any pipeline stage.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Message string
	Cause   error
}

func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Message: message}
}

// Wrap builds a diagnostic that keeps err reachable through errors.As.
func Wrap(code ErrorCode, tok token.Token, err error) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Message: err.Error(), Cause: err}
}

func (e *DiagnosticError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	if e.Token.Line > 0 && e.Token.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: [%s] %s", file, e.Token.Line, e.Token.Column, e.Code, e.Message)
	}
	if e.Token.Line > 0 {
		return fmt.Sprintf("%s:%d: [%s] %s", file, e.Token.Line, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: [%s] %s", file, e.Code, e.Message)
}

func (e *DiagnosticError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether the diagnostic signals a bug rather than bad input.
func (e *DiagnosticError) IsFatal() bool {
	return e.Code == ErrS002
}
