//go:build unix

package fsutil

import "golang.org/x/sys/unix"

// Access checks whether the current process may read (or write, if write is
// true) the existing file at path. It returns nil when access is granted.
func Access(path string, write bool) error {
	mode := uint32(unix.R_OK)
	if write {
		mode = unix.W_OK
	}
	return unix.Access(path, mode)
}
