package eval

import (
	"errors"
	"io"

	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/fsop"
	"src.fsl.sh/pkg/parse"
)

// Frame contains the state of a running piece of code: the current scope,
// the source being run and the function calls that lead to it. It also
// reaches the state of the run it belongs to. A Frame is never modified after
// creation; new Frames are forked when needed.
type Frame struct {
	ev *Evaler

	scope     *Context
	src       parse.Source
	tracker   *fsop.Tracker
	traceback *StackTrace
	depth     int
}

// Context returns the current scope.
func (fm *Frame) Context() *Context { return fm.scope }

// Evaler returns the Evaler running the code.
func (fm *Frame) Evaler() *Evaler { return fm.ev }

// Sandbox returns the sandbox of the Evaler.
func (fm *Frame) Sandbox() *fsop.Sandbox { return fm.ev.sandbox }

// Tracker returns the operation log of the current run.
func (fm *Frame) Tracker() *fsop.Tracker { return fm.tracker }

// Stdout returns the writer for output of the script.
func (fm *Frame) Stdout() io.Writer { return fm.ev.stdout() }

// Perform performs a filesystem operation and records it in the operation
// log of the current run.
func (fm *Frame) Perform(op fsop.Operation) error {
	return fm.tracker.Perform(op)
}

// Returns a copy of fm with the given scope.
func (fm *Frame) fork(scope *Context) *Frame {
	newFm := *fm
	newFm.scope = scope
	return &newFm
}

// Returns a copy of fm with a child of the current scope.
func (fm *Frame) child() *Frame { return fm.fork(fm.scope.Child()) }

// Returns a copy of fm for calling the function named name at r.
func (fm *Frame) call(r diag.Ranger, name string) *Frame {
	newFm := *fm
	newFm.traceback = &StackTrace{
		Name: name, Head: diag.NewContext(fm.src.Name, fm.src.Code, r),
		Next: fm.traceback}
	newFm.depth++
	return &newFm
}

// ErrCallDepth is raised when function calls are nested more deeply than
// (*Evaler).MaxCallDepth.
var ErrCallDepth = errors.New("maximum call depth exceeded")

// Turns an error into an *Exception raised at r, unless it already is one or
// is an *ExitSignal.
func (fm *Frame) errorp(r diag.Ranger, err error) error {
	switch err.(type) {
	case nil:
		return nil
	case *Exception, *ExitSignal:
		return err
	default:
		var exit *ExitSignal
		if errors.As(err, &exit) {
			return exit
		}
		return &Exception{
			Reason:     err,
			Culprit:    diag.NewContext(fm.src.Name, fm.src.Code, r),
			StackTrace: fm.traceback,
		}
	}
}
