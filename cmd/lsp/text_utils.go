package main

import (
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

func getLine(content string, lineIndex int) string {
	start := 0
	currentLine := 0
	n := len(content)

	for i := 0; i < n; i++ {
		if content[i] == '\n' {
			if currentLine == lineIndex {
				return content[start:i]
			}
			start = i + 1
			currentLine++
		}
	}

	if currentLine == lineIndex {
		return content[start:]
	}

	return ""
}

// wordBefore returns the identifier characters directly left of the
// cursor. char is a UTF-16 offset, as LSP clients send it.
func wordBefore(content string, line, char int) string {
	lineStr := getLine(content, line)
	if char < 0 {
		return ""
	}
	end := byteOffset(lineStr, char)
	start := end
	for start > 0 {
		r, w := utf8.DecodeLastRuneInString(lineStr[:start])
		if !isIdentifierRune(r) {
			break
		}
		start -= w
	}
	return lineStr[start:end]
}

// Lexer columns count runes from 1; LSP characters count UTF-16 code
// units from 0. The helpers below convert between the two on one line.

// byteOffset converts a UTF-16 offset on line to a byte offset, clamped to
// the end of the line.
func byteOffset(line string, char int) int {
	units := 0
	for i, r := range line {
		if units >= char {
			return i
		}
		units += utf16Len(r)
	}
	return len(line)
}

// runeColumn converts a UTF-16 offset on line to a 1-based lexer column.
// Offsets past the end keep counting one column per unit.
func runeColumn(line string, char int) int {
	b := byteOffset(line, char)
	col := utf8.RuneCountInString(line[:b]) + 1
	if b == len(line) {
		if past := char - utf16Width(line); past > 0 {
			col += past
		}
	}
	return col
}

// utf16Offset converts a 1-based lexer column on line to a UTF-16 offset.
func utf16Offset(line string, column int) int {
	units, col := 0, 1
	for _, r := range line {
		if col >= column {
			return units
		}
		units += utf16Len(r)
		col++
	}
	if column > col {
		units += column - col
	}
	return units
}

func utf16Width(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Len(r)
	}
	return n
}

func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// endPosition is the position just past the last character of content.
func endPosition(content string) Position {
	line := 0
	last := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			line++
			last = i + 1
		}
	}
	return Position{Line: line, Character: utf16Width(content[last:])}
}

// isIdentifierRune matches the lexer's identifier characters.
func isIdentifierRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || ('0' <= r && r <= '9')
}
