// Package text holds query text folding applied before embedding.
package text

import (
	"strings"
	"unicode"
)

// Normalize lowercases s and drops every rune that is neither a word
// character (letter, combining mark, number, underscore) nor whitespace.
// It is pure and idempotent; empty input yields empty output.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(s))
}

// isWordRune reports whether r is a Unicode word character. Combining marks
// are kept so Devanagari vowel signs survive folding.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}
