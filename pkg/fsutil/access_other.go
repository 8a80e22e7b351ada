//go:build !unix

package fsutil

import "os"

// Access checks whether the current process may read (or write, if write is
// true) the existing file at path. It returns nil when access is granted.
//
// On non-Unix platforms only the write bit of the file mode is consulted.
func Access(path string, write bool) error {
	stat, err := os.Stat(path)
	if err != nil {
		return err
	}
	if write && stat.Mode().Perm()&0200 == 0 {
		return os.ErrPermission
	}
	return nil
}
