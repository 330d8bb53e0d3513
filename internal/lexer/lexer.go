package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number

	errors []*diagnostics.DiagnosticError
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Errors returns the diagnostics collected so far.
func (l *Lexer) Errors() []*diagnostics.DiagnosticError {
	return l.errors
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '=':
		tok = l.twoCharToken('=', token.EQ, token.ASSIGN)
	case '!':
		tok = l.twoCharToken('=', token.NOT_EQ, token.BANG)
	case '<':
		tok = l.twoCharToken('=', token.LTE, token.LT)
	case '>':
		tok = l.twoCharToken('=', token.GTE, token.GT)
	case '&':
		if l.peekChar() == '&' {
			tok = l.twoCharToken('&', token.AND, token.ILLEGAL)
		} else {
			tok = l.illegal("illegal character '&' (did you mean '&&'?)")
		}
	case '|':
		if l.peekChar() == '|' {
			tok = l.twoCharToken('|', token.OR, token.ILLEGAL)
		} else {
			tok = l.illegal("illegal character '|' (did you mean '||'?)")
		}
	case '+':
		tok = newToken(token.PLUS, l.ch, l.line, l.column)
	case '-':
		tok = newToken(token.MINUS, l.ch, l.line, l.column)
	case '*':
		tok = newToken(token.ASTERISK, l.ch, l.line, l.column)
	case '/':
		tok = newToken(token.SLASH, l.ch, l.line, l.column)
	case '%':
		tok = newToken(token.PERCENT, l.ch, l.line, l.column)
	case ',':
		tok = newToken(token.COMMA, l.ch, l.line, l.column)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, l.line, l.column)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case '{':
		tok = newToken(token.LBRACE, l.ch, l.line, l.column)
	case '}':
		tok = newToken(token.RBRACE, l.ch, l.line, l.column)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, l.line, l.column)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, l.line, l.column)
	case '"':
		return l.readString()
	case 0:
		return token.Token{Type: token.EOF, Lexeme: "", Literal: "", Line: l.line, Column: l.column}
	default:
		if isLetter(l.ch) {
			startLine, startCol := l.line, l.column
			ident := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(ident), Lexeme: ident, Literal: ident, Line: startLine, Column: startCol}
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = l.illegal(fmt.Sprintf("illegal character %q", l.ch))
	}

	l.readChar()
	return tok
}

// twoCharToken returns two if the next char is second, otherwise one.
// The current char is left on the last consumed rune.
func (l *Lexer) twoCharToken(second rune, two, one token.TokenType) token.Token {
	line, col := l.line, l.column
	if l.peekChar() == second {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: two, Lexeme: literal, Literal: literal, Line: line, Column: col}
	}
	return newToken(one, l.ch, line, col)
}

func (l *Lexer) illegal(message string) token.Token {
	tok := newToken(token.ILLEGAL, l.ch, l.line, l.column)
	l.errors = append(l.errors, diagnostics.NewError(diagnostics.ErrL001, tok, message))
	return tok
}

// readString reads a double-quoted literal, resolving \n \t \" and \\.
func (l *Lexer) readString() token.Token {
	startLine, startCol := l.line, l.column
	start := l.position
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case '"':
			lexeme := l.input[start : l.position+1]
			l.readChar()
			return token.Token{Type: token.STRING, Lexeme: lexeme, Literal: sb.String(), Line: startLine, Column: startCol}
		case 0, '\n':
			tok := token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Literal: "", Line: startLine, Column: startCol}
			l.errors = append(l.errors, diagnostics.NewError(diagnostics.ErrL002, tok, "unterminated string literal"))
			return tok
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			default:
				// Unknown escapes are kept verbatim.
				sb.WriteRune('\\')
				sb.WriteRune(l.ch)
			}
		default:
			sb.WriteRune(l.ch)
		}
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a decimal or 0x-prefixed hexadecimal integer.
func (l *Lexer) readNumber() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	base := 10

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		base = 16
	}
	digitsStart := l.position
	for isDigit(l.ch) || (base == 16 && isHexDigit(l.ch)) {
		l.readChar()
	}
	lexeme := l.input[position:l.position]
	tok := token.Token{Type: token.INT, Lexeme: lexeme, Line: startLine, Column: startCol}

	value, err := strconv.ParseInt(l.input[digitsStart:l.position], base, 64)
	if err != nil {
		tok.Type = token.ILLEGAL
		tok.Literal = lexeme
		l.errors = append(l.errors, diagnostics.NewError(diagnostics.ErrL001, tok, fmt.Sprintf("invalid integer literal %q", lexeme)))
		return tok
	}
	tok.Literal = value
	return tok
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		// Handle comments
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar() // consume /
			l.readChar() // consume *
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar() // consume *
				l.readChar() // consume /
			}
			continue
		}
		return
	}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
