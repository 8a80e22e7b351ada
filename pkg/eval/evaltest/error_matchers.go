package evaltest

import (
	"errors"
	"fmt"
	"reflect"

	"src.fsl.sh/pkg/eval"
	"src.fsl.sh/pkg/fsop"
	"src.fsl.sh/pkg/parse"
)

type errorMatcher interface{ matchError(error) bool }

// An errorMatcher for parse errors.
type parseError struct {
	msgs []string
}

func (e parseError) Error() string {
	if len(e.msgs) == 0 {
		return "any parse error"
	}
	return fmt.Sprintf("parse error with one of messages: %q", e.msgs)
}

func (e parseError) matchError(e2 error) bool {
	if parse.ErrorContext(e2) == nil {
		return false
	}
	if len(e.msgs) == 0 {
		return true
	}
	msg := parseErrorMessage(e2)
	for _, want := range e.msgs {
		if want == msg {
			return true
		}
	}
	return false
}

func parseErrorMessage(err error) string {
	var lexical *parse.LexicalError
	if errors.As(err, &lexical) {
		return lexical.Message
	}
	var syntax *parse.SyntaxError
	if errors.As(err, &syntax) {
		return syntax.Message
	}
	return ""
}

// An errorMatcher for exceptions.
type exc struct {
	reason error
	calls  []string
}

func (e exc) Error() string {
	if len(e.calls) == 0 {
		return fmt.Sprintf("exception with reason %v", e.reason)
	}
	return fmt.Sprintf("exception with reason %v and calls %v", e.reason, e.calls)
}

func (e exc) matchError(e2 error) bool {
	var exc *eval.Exception
	if !errors.As(e2, &exc) {
		return false
	}
	return matchErr(e.reason, exc.Reason) &&
		(len(e.calls) == 0 || reflect.DeepEqual(e.calls, exc.Calls()))
}

// AnyParseError is an error that can be passed to the Case.Throws to match any
// parse error.
var AnyParseError anyParseError

type anyParseError struct{}

func (anyParseError) Error() string           { return "any parse error" }
func (anyParseError) matchError(e error) bool { return parse.ErrorContext(e) != nil }

// ErrorWithType returns an error that can be passed to the Case.Throws to match
// any error with the same type as the argument.
func ErrorWithType(v error) error { return errWithType{v} }

// An errorMatcher for any error with the given type.
type errWithType struct{ v error }

func (e errWithType) Error() string { return fmt.Sprintf("error with type %T", e.v) }

func (e errWithType) matchError(e2 error) bool {
	return reflect.TypeOf(e.v) == reflect.TypeOf(e2)
}

// ErrorWithMessage returns an error that can be passed to Case.Throws to match
// any error with the given message.
func ErrorWithMessage(msg string) error { return errWithMessage{msg} }

// An errorMatcher for any error with the given message.
type errWithMessage struct{ msg string }

func (e errWithMessage) Error() string { return "error with message " + e.msg }

func (e errWithMessage) matchError(e2 error) bool {
	return e2 != nil && e.msg == e2.Error()
}

// FsError returns an error that can be passed to Case.Throws to match an
// *fsop.Error with the given kind and operation, ignoring the path and the
// underlying error.
func FsError(kind fsop.ErrorKind, op string) error { return errFs{kind, op} }

type errFs struct {
	kind fsop.ErrorKind
	op   string
}

func (e errFs) Error() string { return fmt.Sprintf("%v error in %s", e.kind, e.op) }

func (e errFs) matchError(e2 error) bool {
	var fe *fsop.Error
	return errors.As(e2, &fe) && fe.Kind == e.kind && fe.Op == e.op
}

type errOneOf struct{ errs []error }

// OneOfErrors returns an error that matches any of the given errors.
func OneOfErrors(errs ...error) error { return errOneOf{errs} }

func (e errOneOf) Error() string { return fmt.Sprint("one of", e.errs) }

func (e errOneOf) matchError(gotError error) bool {
	for _, want := range e.errs {
		if matchErr(want, gotError) {
			return true
		}
	}
	return false
}
