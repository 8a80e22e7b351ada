package eval

import (
	"bytes"
	"fmt"

	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/eval/vals"
)

// Exception is a runtime error. It is what (*Evaler).Eval returns when a
// script fails for any reason other than a parse error or an explicit exit.
type Exception struct {
	Reason error
	// Where the error was raised.
	Culprit *diag.Context
	// Function calls that were active when the error was raised, innermost
	// first.
	StackTrace *StackTrace
}

// StackTrace is a linked list of call sites. The head is the innermost call.
type StackTrace struct {
	// Name of the function called.
	Name string
	// The call expression.
	Head *diag.Context
	Next *StackTrace
}

// Reason returns the Reason field if err is an *Exception. Otherwise it
// returns err itself.
func Reason(err error) error {
	if exc, ok := err.(*Exception); ok {
		return exc.Reason
	}
	return err
}

// Error returns the message of the cause of the exception.
func (exc *Exception) Error() string { return exc.Reason.Error() }

// Unwrap returns the reason, so that errors.Is and errors.As look into it.
func (exc *Exception) Unwrap() error { return exc.Reason }

// Show shows the exception, the culprit and the call stack.
func (exc *Exception) Show(indent string) string {
	buf := new(bytes.Buffer)

	var causeDescription string
	if shower, ok := exc.Reason.(diag.Shower); ok {
		causeDescription = shower.Show(indent)
	} else {
		causeDescription = diag.StyleMessage(exc.Reason.Error())
	}
	fmt.Fprintf(buf, "Exception: %s", causeDescription)

	if exc.Culprit != nil {
		buf.WriteString("\n" + indent + "  ")
		buf.WriteString(exc.Culprit.ShowCompact(indent + "  "))
	}
	if exc.StackTrace != nil {
		buf.WriteString("\n" + indent + "Traceback:")
		for tb := exc.StackTrace; tb != nil; tb = tb.Next {
			buf.WriteString("\n" + indent + "  " + tb.Name + " called at ")
			buf.WriteString(tb.Head.ShowCompact(indent + "    "))
		}
	}
	return buf.String()
}

// Calls returns the names of the functions on the stack, innermost first.
func (exc *Exception) Calls() []string {
	var names []string
	for tb := exc.StackTrace; tb != nil; tb = tb.Next {
		names = append(names, tb.Name)
	}
	return names
}

// ExitSignal is returned by the exit builtin. It unwinds every enclosing
// construct and ends the script. A zero Code ends the script successfully,
// with Value as its result; a nonzero Code is a failure.
type ExitSignal struct {
	Code  int
	Value any
}

func (e *ExitSignal) Error() string {
	if e.Code == 0 {
		return "exit with " + vals.Repr(e.Value)
	}
	return fmt.Sprintf("exit status %d", e.Code)
}
