package parse

import (
	"strings"
	"unicode"
)

var quoteEscapes = map[rune]string{
	'\n': `\n`, '\t': `\t`, '\r': `\r`, 0: `\0`, '\\': `\\`, '"': `\"`,
}

// Quote returns a double-quoted string literal that evaluates to s.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		if esc, ok := quoteEscapes[r]; ok {
			sb.WriteString(esc)
		} else {
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// IsIdentifier reports whether s can follow a sigil.
func IsIdentifier(s string) bool {
	if s == "" || unicode.IsDigit([]rune(s)[0]) {
		return false
	}
	for _, r := range s {
		if !isWordRune(r) {
			return false
		}
	}
	return true
}
