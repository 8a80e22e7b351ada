// Package fsutil contains filesystem path helpers shared by the operation log
// and the host layer.
package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns p as an absolute, cleaned path. Relative paths are resolved
// against root.
func Resolve(root, p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return filepath.Clean(p)
}

// IsWithin reports whether path is dir itself or lies in the subtree of dir.
// Both arguments must be absolute and cleaned.
func IsWithin(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}

// Lexists reports whether a file exists at path, without following a final
// symlink.
func Lexists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.IsDir()
}

// IsRegular reports whether path exists and is a regular file.
func IsRegular(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.Mode().IsRegular()
}
