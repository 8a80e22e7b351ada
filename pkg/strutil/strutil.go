// Package strutil provides string utilities.
package strutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ChopLineEnding removes one line ending, "\r\n" or "\n", from the end of s.
func ChopLineEnding(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}

// WordStart returns the index where the word ending at byte offset end of s
// begins. A word is a run of letters, digits and underscores, optionally
// preceded by one of the sigils $, % and @. If no word ends at end, it returns
// end.
func WordStart(s string, end int) int {
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		start -= size
	}
	if start > 0 && strings.ContainsRune("$%@", rune(s[start-1])) {
		start--
	}
	return start
}

// FilterPrefix returns the elements of candidates that start with prefix,
// keeping their order.
func FilterPrefix(candidates []string, prefix string) []string {
	var filtered []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
