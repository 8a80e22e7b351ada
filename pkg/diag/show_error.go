package diag

import (
	"fmt"
	"io"
)

// Shower is an error that can show itself with its source context.
type Shower interface {
	Show(indent string) string
}

// ShowError shows an error. It uses the Show method if the error
// implements Shower, and uses Complain to print the error message otherwise.
func ShowError(w io.Writer, err error) {
	if shower, ok := err.(Shower); ok {
		fmt.Fprintln(w, shower.Show(""))
	} else {
		Complain(w, err.Error())
	}
}

// Complain prints a message to w in bold and red, adding a trailing newline.
func Complain(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s%s%s\n", messageStart, msg, messageEnd)
}

// Complainf is like Complain, but accepts a format string and arguments.
func Complainf(w io.Writer, format string, args ...any) {
	Complain(w, fmt.Sprintf(format, args...))
}

// SetStyled turns the ANSI styling of culprits and messages on or off. It is
// typically turned off when the output is not a terminal.
func SetStyled(styled bool) {
	if styled {
		culpritStart, culpritEnd = "\033[1;4m", "\033[m"
		messageStart, messageEnd = "\033[31;1m", "\033[m"
	} else {
		culpritStart, culpritEnd = "", ""
		messageStart, messageEnd = "", ""
	}
}

// StyleMessage styles an error message the way Complain does, without adding
// a newline.
func StyleMessage(msg string) string {
	return messageStart + msg + messageEnd
}
