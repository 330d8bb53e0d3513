package token

import (
	"fmt"
	"sort"
)

type TokenType string

// Token is a lexical unit. Literal holds the decoded value:
// int64 for INT, the unescaped text for STRING, the name for IDENT
// and the lexeme for everything else.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %s %q", t.Line, t.Column, t.Type, t.Lexeme)
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	STRING TokenType = "STRING"

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	BANG     TokenType = "!"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	LT       TokenType = "<"
	LTE      TokenType = "<="
	GT       TokenType = ">"
	GTE      TokenType = ">="
	AND      TokenType = "&&"
	OR       TokenType = "||"

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	// Keywords
	TYPE_INT  TokenType = "int"
	TYPE_BOOL TokenType = "bool"
	TYPE_STR  TokenType = "str"
	VOID      TokenType = "void"
	IF        TokenType = "if"
	ELSE      TokenType = "else"
	WHILE     TokenType = "while"
	RETURN    TokenType = "return"
	BREAK     TokenType = "break"
	CONTINUE  TokenType = "continue"
	TRUE      TokenType = "true"
	FALSE     TokenType = "false"
)

var keywords = map[string]TokenType{
	"int":      TYPE_INT,
	"bool":     TYPE_BOOL,
	"str":      TYPE_STR,
	"void":     VOID,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"true":     TRUE,
	"false":    FALSE,
}

// Keywords lists the reserved words in sorted order.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for w := range keywords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsType reports whether t starts a variable or parameter type.
func IsType(t TokenType) bool {
	return t == TYPE_INT || t == TYPE_BOOL || t == TYPE_STR
}
