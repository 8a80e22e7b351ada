// Package sys wraps terminal detection for the shell.
package sys

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsATTY reports whether fd is a terminal, including Cygwin and MSYS ptys.
func IsATTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// AllTerminals reports whether every file is a non-nil terminal. It is false
// when no files are given.
func AllTerminals(files ...*os.File) bool {
	for _, f := range files {
		if f == nil || !IsATTY(f.Fd()) {
			return false
		}
	}
	return len(files) > 0
}
