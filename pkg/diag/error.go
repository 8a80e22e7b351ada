package diag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorTag is used to parameterize [Error] into different concrete types.
type ErrorTag interface {
	ErrorTag() string
}

// Error represents an error with context that can be showed.
type Error[T ErrorTag] struct {
	Message string
	Context Context
	// Indicates whether the error may be caused by partial input. More
	// formally, this field should be true iff there exists a string x such
	// that appending it to the input eliminates the error.
	Partial bool
}

// Error returns a plain text representation of the error.
func (e *Error[T]) Error() string {
	return errorTag[T]() + ": " + e.Context.Describe() + ": " + e.Message
}

// Range returns the range of the error.
func (e *Error[T]) Range() Ranging {
	return e.Context.Range()
}

// Position returns the position of the start of the error.
func (e *Error[T]) Position() Position {
	return e.Context.Position()
}

var (
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
)

// Show shows the error.
func (e *Error[T]) Show(indent string) string {
	return fmt.Sprintf("%s: %s\n%s%s", title(errorTag[T]()),
		messageStart+e.Message+messageEnd,
		indent+"  ", e.Context.ShowCompact(indent+"  "))
}

func errorTag[T ErrorTag]() string {
	var t T
	return t.ErrorTag()
}

// UnpackError returns the *Error[T] in the chain of err, or nil if there is
// none.
func UnpackError[T ErrorTag](err error) *Error[T] {
	var e *Error[T]
	if errors.As(err, &e) {
		return e
	}
	return nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
