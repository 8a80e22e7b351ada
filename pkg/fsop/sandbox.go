// Package fsop implements the permission-gated, undoable filesystem layer.
//
// Every mutation is an Operation that captures enough state before performing
// its effect to reverse it exactly. A Tracker records performed operations of
// one script run so that they can be rolled back in reverse order.
package fsop

import (
	"os"
	"path/filepath"

	"src.fsl.sh/pkg/fsutil"
	"src.fsl.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[fsop] ")

// Permissions holds the four path sets consulted by the permission gate. An
// empty allow and disallow set for a direction means everything is allowed in
// that direction.
type Permissions struct {
	AllowRead     []string
	DisallowRead  []string
	AllowWrite    []string
	DisallowWrite []string
}

// Sandbox owns the filesystem state of an interpreter: the root directory
// that relative paths resolve against, the permission sets, and the directory
// in which backups of deleted files are kept until a run ends.
type Sandbox struct {
	Root string
	// Directory for backups. Defaults to os.TempDir().
	TempDir string

	allowRead, disallowRead, allowWrite, disallowWrite []string
}

// NewSandbox creates a Sandbox rooted at root. Relative entries in perms are
// resolved against root.
func NewSandbox(root string, perms Permissions) (*Sandbox, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	resolveAll := func(ps []string) []string {
		var resolved []string
		for _, p := range ps {
			resolved = append(resolved, fsutil.Resolve(root, p))
		}
		return resolved
	}
	return &Sandbox{
		Root:          root,
		allowRead:     resolveAll(perms.AllowRead),
		disallowRead:  resolveAll(perms.DisallowRead),
		allowWrite:    resolveAll(perms.AllowWrite),
		disallowWrite: resolveAll(perms.DisallowWrite),
	}, nil
}

// Resolve resolves p against the root of the sandbox.
func (sb *Sandbox) Resolve(p string) string { return fsutil.Resolve(sb.Root, p) }

func (sb *Sandbox) tempDir() string {
	if sb.TempDir != "" {
		return sb.TempDir
	}
	return os.TempDir()
}

// CanRead reports whether reading path is permitted.
func (sb *Sandbox) CanRead(path string) bool {
	return allowed(path, false, sb.allowRead, sb.disallowRead)
}

// CanWrite reports whether writing path is permitted.
func (sb *Sandbox) CanWrite(path string) bool {
	return allowed(path, true, sb.allowWrite, sb.disallowWrite)
}

func allowed(path string, write bool, allow, disallow []string) bool {
	if fsutil.Lexists(path) && fsutil.Access(path, write) != nil {
		return false
	}
	if len(allow) == 0 && len(disallow) == 0 {
		return true
	}
	for _, dir := range allow {
		if !fsutil.IsWithin(path, dir) {
			return false
		}
	}
	for _, dir := range disallow {
		if fsutil.IsWithin(path, dir) {
			return false
		}
	}
	return true
}

func (sb *Sandbox) checkRead(op, path string) error {
	if !sb.CanRead(path) {
		return newError(PermissionDenied, op, path)
	}
	return nil
}

func (sb *Sandbox) checkWrite(op, path string) error {
	if !sb.CanWrite(path) {
		return newError(PermissionDenied, op, path)
	}
	return nil
}

// ReadFile returns the content of the regular file at path.
func (sb *Sandbox) ReadFile(path string) (string, error) {
	if err := sb.checkRead("READ", path); err != nil {
		return "", err
	}
	if fsutil.IsDir(path) {
		return "", &Error{Kind: IOFailure, Op: "READ", Path: path, Err: errIsDir}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", wrap("READ", path, err)
	}
	return string(data), nil
}

// Exists reports whether anything exists at path.
func (sb *Sandbox) Exists(path string) (bool, error) {
	if err := sb.checkRead("EXISTS", path); err != nil {
		return false, err
	}
	return fsutil.Lexists(path), nil
}

// IsFile reports whether path is a regular file.
func (sb *Sandbox) IsFile(path string) (bool, error) {
	if err := sb.checkRead("ISFILE", path); err != nil {
		return false, err
	}
	return fsutil.IsRegular(path), nil
}

// IsDir reports whether path is a directory.
func (sb *Sandbox) IsDir(path string) (bool, error) {
	if err := sb.checkRead("ISDIR", path); err != nil {
		return false, err
	}
	return fsutil.IsDir(path), nil
}

// List returns the full paths of the entries of the directory at path, in
// the order of their names.
func (sb *Sandbox) List(path string) ([]string, error) {
	if err := sb.checkRead("LIST", path); err != nil {
		return nil, err
	}
	if !fsutil.IsDir(path) {
		if !fsutil.Lexists(path) {
			return nil, newError(NotFound, "LIST", path)
		}
		return nil, &Error{Kind: IOFailure, Op: "LIST", Path: path, Err: errNotDir}
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, wrap("LIST", path, err)
	}
	paths := make([]string, len(entries))
	for i, entry := range entries {
		paths[i] = filepath.Join(path, entry.Name())
	}
	return paths, nil
}
