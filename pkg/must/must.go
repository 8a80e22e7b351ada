// Package must has helpers that panic instead of returning errors. Only tests
// use them.
package must

import (
	"os"
	"path/filepath"
)

// OK panics if err is not nil.
func OK(err error) {
	if err != nil {
		panic(err)
	}
}

// OK1 returns v, or panics if err is not nil.
func OK1[T any](v T, err error) T {
	OK(err)
	return v
}

// OK2 returns v1 and v2, or panics if err is not nil.
func OK2[T1, T2 any](v1 T1, v2 T2, err error) (T1, T2) {
	OK(err)
	return v1, v2
}

// Pipe returns the read and write ends of a new os.Pipe.
func Pipe() (*os.File, *os.File) { return OK2(os.Pipe()) }

func Chdir(dir string) { OK(os.Chdir(dir)) }

// ReadFileString returns the content of a file.
func ReadFileString(name string) string {
	return string(OK1(os.ReadFile(name)))
}

// WriteFile writes a file, creating its parent directories first.
func WriteFile(name, content string) {
	OK(os.MkdirAll(filepath.Dir(name), 0700))
	OK(os.WriteFile(name, []byte(content), 0600))
}
