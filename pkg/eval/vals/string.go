package vals

import (
	"math"
	"strconv"
	"strings"
)

// Stringer wraps the String method.
type Stringer interface {
	// Stringer converts the receiver to a string.
	String() string
}

// ToString converts a value to a string, as done by the + operator and the
// print and str builtins. Strings are returned as is, numbers are formatted
// with FormatNum, and other values use their Repr.
func ToString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return FormatNum(v)
	case Path:
		return string(v)
	case Stringer:
		return v.String()
	default:
		return Repr(v)
	}
}

// FormatNum formats a number. Whole numbers are printed without a fractional
// part.
func FormatNum(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	// Go's 'g' format uses scientific notation too aggressively, for example
	// for 1234567. Only fall back to it for very large whole numbers and very
	// small fractions.
	s := strconv.FormatFloat(f, 'f', -1, 64)
	noPoint := !strings.ContainsRune(s, '.')
	if (noPoint && len(s) > 14 && s[len(s)-1] == '0') ||
		strings.HasPrefix(strings.TrimPrefix(s, "-"), "0.0000") {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return s
}
