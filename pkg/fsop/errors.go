package fsop

import (
	"errors"
	"io/fs"
)

// ErrorKind classifies filesystem errors.
type ErrorKind int

// Kinds of filesystem errors.
const (
	IOFailure ErrorKind = iota
	NotFound
	AlreadyExists
	PermissionDenied
)

var errorKindNames = [...]string{
	IOFailure:        "I/O failure",
	NotFound:         "not found",
	AlreadyExists:    "already exists",
	PermissionDenied: "permission denied",
}

func (k ErrorKind) String() string { return errorKindNames[k] }

// Error is the error returned by operations and queries.
type Error struct {
	Kind ErrorKind
	// Name of the command, like "WRITE" or "READ".
	Op   string
	Path string
	// Underlying error, may be nil.
	Err error
}

func (e *Error) Error() string {
	msg := e.Op + " " + e.Path + ": " + e.Kind.String()
	if e.Err != nil && e.Kind == IOFailure {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is(err, &Error{Kind: k}) as a kind check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Path == "" && t.Err == nil && t.Kind == e.Kind
}

// ErrPerformedTwice is returned when Perform is called on an Operation that
// has already been performed.
var ErrPerformedTwice = errors.New("operation already performed")

// ErrNotPerformed is returned when Undo is called on an Operation that has not
// been performed.
var ErrNotPerformed = errors.New("operation not performed")

func newError(kind ErrorKind, op, path string) *Error {
	return &Error{Kind: kind, Op: op, Path: path}
}

// Converts an error from the os package to an *Error.
func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	kind := IOFailure
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = NotFound
	case errors.Is(err, fs.ErrExist):
		kind = AlreadyExists
	case errors.Is(err, fs.ErrPermission):
		kind = PermissionDenied
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}
