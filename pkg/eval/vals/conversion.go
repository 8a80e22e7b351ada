package vals

import (
	"strconv"
	"strings"
)

// WrongType is returned when a value of a particular kind is needed.
type WrongType struct {
	WantKind string
	GotKind  string
}

func (err WrongType) Error() string {
	return "wrong type: need " + err.WantKind + ", got " + err.GotKind
}

// CannotParseAs is returned when a string cannot be converted.
type CannotParseAs struct {
	Want string
	Repr string
}

func (err CannotParseAs) Error() string {
	return "cannot parse as " + err.Want + ": " + err.Repr
}

// ToNum converts a Number or a String containing a number literal to a
// Number. Surrounding whitespace is ignored.
func ToNum(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, CannotParseAs{"number", Repr(v)}
		}
		return f, nil
	default:
		return 0, WrongType{"number", Kind(v)}
	}
}

// ToIterable adapts a value to an Iterable for iteration. Iterables are
// copied so that the cursor of v is never moved, and strings iterate over
// their characters. Paths are not handled here, since listing a directory
// needs the sandbox.
func ToIterable(v any) (Iterable, error) {
	switch v := v.(type) {
	case Iterable:
		return v.Copy(), nil
	case string:
		return NewStringIter(v), nil
	default:
		return nil, WrongType{"iterable", Kind(v)}
	}
}
