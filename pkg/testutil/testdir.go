// Package testutil contains helpers shared by tests: temporary directories
// and files, environment variables and package variables that are restored
// when a test finishes.
package testutil

import (
	"os"
	"path/filepath"

	"src.fsl.sh/pkg/must"
)

// TempDir creates a temporary directory for testing that will be removed
// after the test finishes. It is different from testing.TB.TempDir in that it
// resolves symlinks in the path of the directory.
//
// It panics if the test directory cannot be created or symlinks cannot be
// resolved. It is only suitable for use in tests.
func TempDir(c Cleanuper) string {
	dir, err := os.MkdirTemp("", "fsltest")
	if err != nil {
		panic(err)
	}
	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		panic(err)
	}
	c.Cleanup(func() {
		err := os.RemoveAll(dir)
		if err != nil {
			panic(err)
		}
	})
	return dir
}

// InTempDir is like TempDir, but also changes into the directory, and changes
// back to the original working directory when the test finishes.
//
// It panics if the test directory cannot be created or the working directory
// cannot be changed. It is only suitable for use in tests.
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	Chdir(c, dir)
	return dir
}

// Chdir changes into a directory, and restores the original working directory
// when a test finishes. It returns the directory for easier chaining.
func Chdir(c Cleanuper, dir string) string {
	oldWd := must.OK1(os.Getwd())
	must.Chdir(dir)
	c.Cleanup(func() { must.Chdir(oldWd) })
	return dir
}

// Dir describes the layout of a directory. The keys of the map represent
// filenames. Each value is either a string (for the content of a regular file
// with permission 0644), a File, or a Dir.
type Dir map[string]any

// File describes a file to create.
type File struct {
	Perm    os.FileMode
	Content string
}

// ApplyDir creates the given filesystem layout in the current directory.
func ApplyDir(dir Dir) {
	ApplyDirIn(dir, "")
}

// ApplyDirIn creates the given filesystem layout in a given directory.
func ApplyDirIn(dir Dir, root string) {
	for name, file := range dir {
		path := filepath.Join(root, name)
		switch file := file.(type) {
		case string:
			must.OK(os.WriteFile(path, []byte(file), 0644))
		case File:
			must.OK(os.WriteFile(path, []byte(file.Content), file.Perm))
		case Dir:
			must.OK(os.MkdirAll(path, 0755))
			ApplyDirIn(file, path)
		default:
			panic("file is neither string, File or Dir")
		}
	}
}

// ReadDirLayout reads back the layout of a directory as a Dir, with every
// regular file represented by its content. It is the inverse of ApplyDirIn
// for layouts that only use strings and Dirs.
func ReadDirLayout(root string) Dir {
	dir := Dir{}
	for _, entry := range must.OK1(os.ReadDir(root)) {
		path := filepath.Join(root, entry.Name())
		if entry.IsDir() {
			dir[entry.Name()] = ReadDirLayout(path)
		} else {
			dir[entry.Name()] = must.ReadFileString(path)
		}
	}
	return dir
}

// Cleanuper is the subset of testing.TB the helpers need.
type Cleanuper interface {
	Cleanup(func())
}
