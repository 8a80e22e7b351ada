package fsop

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"src.fsl.sh/pkg/fsutil"
)

// Operation is an undoable filesystem mutation.
type Operation interface {
	// Perform checks permissions and performs the effect. It may only be
	// called once; later calls return ErrPerformedTwice.
	Perform() error
	// Undo reverses the effect of a successful Perform.
	Undo() error
	// Performed reports whether Perform has succeeded.
	Performed() bool
	// String describes the operation, like "WRITE /a/b".
	String() string
}

var (
	errIsDir       = errors.New("is a directory")
	errNotDir      = errors.New("not a directory")
	errInvalidName = errors.New("invalid file name")
)

// Book-keeping shared by all operations.
type opState struct {
	started   bool
	performed bool
}

func (s *opState) Performed() bool { return s.performed }

func (s *opState) begin() error {
	if s.started {
		return ErrPerformedTwice
	}
	s.started = true
	return nil
}

// finish records the outcome of a Perform.
func (s *opState) finish(err error) error {
	s.performed = err == nil
	return err
}

func (s *opState) checkUndo() error {
	if !s.performed {
		return ErrNotPerformed
	}
	return nil
}

func checkParentDir(op, path string) error {
	if !fsutil.IsDir(filepath.Dir(path)) {
		return newError(NotFound, op, filepath.Dir(path))
	}
	return nil
}

// Write replaces the content of a file, creating it if it doesn't exist. With
// Append set, the content is appended instead.
type Write struct {
	opState
	sb      *Sandbox
	Path    string
	Content string
	Append  bool

	existed   bool
	prior     []byte
	priorMode fs.FileMode
}

// NewWrite creates a Write operation.
func NewWrite(sb *Sandbox, path, content string) *Write {
	return &Write{sb: sb, Path: path, Content: content}
}

// NewAppend creates a Write operation that appends.
func NewAppend(sb *Sandbox, path, content string) *Write {
	return &Write{sb: sb, Path: path, Content: content, Append: true}
}

func (w *Write) name() string {
	if w.Append {
		return "APPEND"
	}
	return "WRITE"
}

func (w *Write) String() string { return w.name() + " " + w.Path }

func (w *Write) Perform() error {
	if err := w.begin(); err != nil {
		return err
	}
	return w.finish(w.perform())
}

func (w *Write) perform() error {
	op := w.name()
	if err := w.sb.checkWrite(op, w.Path); err != nil {
		return err
	}
	if fsutil.IsDir(w.Path) {
		return &Error{Kind: IOFailure, Op: op, Path: w.Path, Err: errIsDir}
	}
	if err := checkParentDir(op, w.Path); err != nil {
		return err
	}
	if stat, err := os.Stat(w.Path); err == nil {
		prior, err := os.ReadFile(w.Path)
		if err != nil {
			return wrap(op, w.Path, err)
		}
		w.existed, w.prior, w.priorMode = true, prior, stat.Mode().Perm()
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if w.Append {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(w.Path, flag, 0644)
	if err != nil {
		return wrap(op, w.Path, err)
	}
	_, err = io.WriteString(f, w.Content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		w.restore()
		return wrap(op, w.Path, err)
	}
	return nil
}

func (w *Write) Undo() error {
	if err := w.checkUndo(); err != nil {
		return err
	}
	return wrap("undo "+w.name(), w.Path, w.restore())
}

func (w *Write) restore() error {
	if w.existed {
		return os.WriteFile(w.Path, w.prior, w.priorMode)
	}
	return os.Remove(w.Path)
}

// Copy copies a file or a directory tree to a destination that must not
// exist yet.
type Copy struct {
	opState
	sb       *Sandbox
	Src, Dst string
}

// NewCopy creates a Copy operation.
func NewCopy(sb *Sandbox, src, dst string) *Copy {
	return &Copy{sb: sb, Src: src, Dst: dst}
}

func (c *Copy) String() string { return "COPY " + c.Src + " TO " + c.Dst }

func (c *Copy) Perform() error {
	if err := c.begin(); err != nil {
		return err
	}
	return c.finish(c.perform())
}

func (c *Copy) perform() error {
	if err := c.sb.checkRead("COPY", c.Src); err != nil {
		return err
	}
	if err := c.sb.checkWrite("COPY", c.Dst); err != nil {
		return err
	}
	if !fsutil.Lexists(c.Src) {
		return newError(NotFound, "COPY", c.Src)
	}
	if fsutil.Lexists(c.Dst) {
		return newError(AlreadyExists, "COPY", c.Dst)
	}
	if err := checkParentDir("COPY", c.Dst); err != nil {
		return err
	}
	if fsutil.IsWithin(c.Dst, c.Src) {
		return &Error{Kind: IOFailure, Op: "COPY", Path: c.Dst,
			Err: errors.New("cannot copy a directory into itself")}
	}
	if err := copyTree(c.Src, c.Dst); err != nil {
		os.RemoveAll(c.Dst)
		return wrap("COPY", c.Dst, err)
	}
	return nil
}

func (c *Copy) Undo() error {
	if err := c.checkUndo(); err != nil {
		return err
	}
	return wrap("undo COPY", c.Dst, os.RemoveAll(c.Dst))
}

// Move moves a file or directory to a destination that must not exist yet.
// Rename is a Move within the same directory.
type Move struct {
	opState
	sb       *Sandbox
	op       string
	Src, Dst string
}

// NewMove creates a Move operation.
func NewMove(sb *Sandbox, src, dst string) *Move {
	return &Move{sb: sb, op: "MOVE", Src: src, Dst: dst}
}

// NewRename creates an operation that renames src to newName in the same
// directory. The name must not be empty, "." or "..", and must not contain a
// path separator or a newline.
func NewRename(sb *Sandbox, src, newName string) (*Move, error) {
	if !ValidName(newName) {
		return nil, &Error{Kind: IOFailure, Op: "RENAME", Path: newName, Err: errInvalidName}
	}
	return &Move{sb: sb, op: "RENAME", Src: src, Dst: filepath.Join(filepath.Dir(src), newName)}, nil
}

// ValidName reports whether name can be used as a single path segment.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, "/\n"+string(filepath.Separator))
}

func (m *Move) String() string { return m.op + " " + m.Src + " TO " + m.Dst }

func (m *Move) Perform() error {
	if err := m.begin(); err != nil {
		return err
	}
	return m.finish(m.perform())
}

func (m *Move) perform() error {
	if err := m.sb.checkWrite(m.op, m.Src); err != nil {
		return err
	}
	if err := m.sb.checkWrite(m.op, m.Dst); err != nil {
		return err
	}
	if !fsutil.Lexists(m.Src) {
		return newError(NotFound, m.op, m.Src)
	}
	if fsutil.Lexists(m.Dst) {
		return newError(AlreadyExists, m.op, m.Dst)
	}
	if err := checkParentDir(m.op, m.Dst); err != nil {
		return err
	}
	return wrap(m.op, m.Src, moveTree(m.Src, m.Dst))
}

func (m *Move) Undo() error {
	if err := m.checkUndo(); err != nil {
		return err
	}
	return wrap("undo "+m.op, m.Dst, moveTree(m.Dst, m.Src))
}

// Stash provides locations where deleted files are kept until the end of a
// run. It is implemented by Tracker.
type Stash interface {
	StashPath() (string, error)
}

// Delete removes a file or a directory tree. The target is moved into a
// stash location rather than removed, so that it can be restored exactly.
type Delete struct {
	opState
	sb    *Sandbox
	stash Stash
	Path  string

	stashed string
}

// NewDelete creates a Delete operation.
func NewDelete(sb *Sandbox, stash Stash, path string) *Delete {
	return &Delete{sb: sb, stash: stash, Path: path}
}

func (d *Delete) String() string { return "DELETE " + d.Path }

func (d *Delete) Perform() error {
	if err := d.begin(); err != nil {
		return err
	}
	return d.finish(d.perform())
}

func (d *Delete) perform() error {
	if err := d.sb.checkWrite("DELETE", d.Path); err != nil {
		return err
	}
	if !fsutil.Lexists(d.Path) {
		return newError(NotFound, "DELETE", d.Path)
	}
	stashed, err := d.stash.StashPath()
	if err != nil {
		return wrap("DELETE", d.Path, err)
	}
	if err := moveTree(d.Path, stashed); err != nil {
		return wrap("DELETE", d.Path, err)
	}
	d.stashed = stashed
	return nil
}

func (d *Delete) Undo() error {
	if err := d.checkUndo(); err != nil {
		return err
	}
	return wrap("undo DELETE", d.Path, moveTree(d.stashed, d.Path))
}

// Mkdir creates a directory. With Parents set, missing ancestors are created
// too, and an existing directory is not an error.
type Mkdir struct {
	opState
	sb      *Sandbox
	Path    string
	Parents bool

	created []string
}

// NewMkdir creates a Mkdir operation.
func NewMkdir(sb *Sandbox, path string) *Mkdir {
	return &Mkdir{sb: sb, Path: path}
}

// NewMkdirs creates a Mkdir operation that also creates missing ancestors.
func NewMkdirs(sb *Sandbox, path string) *Mkdir {
	return &Mkdir{sb: sb, Path: path, Parents: true}
}

func (m *Mkdir) name() string {
	if m.Parents {
		return "MKDIRS"
	}
	return "MKDIR"
}

func (m *Mkdir) String() string { return m.name() + " " + m.Path }

func (m *Mkdir) Perform() error {
	if err := m.begin(); err != nil {
		return err
	}
	return m.finish(m.perform())
}

func (m *Mkdir) perform() error {
	op := m.name()
	if !m.Parents {
		if err := m.sb.checkWrite(op, m.Path); err != nil {
			return err
		}
		if fsutil.Lexists(m.Path) {
			return newError(AlreadyExists, op, m.Path)
		}
		if err := checkParentDir(op, m.Path); err != nil {
			return err
		}
		if err := os.Mkdir(m.Path, 0755); err != nil {
			return wrap(op, m.Path, err)
		}
		m.created = []string{m.Path}
		return nil
	}

	if err := m.sb.checkWrite(op, m.Path); err != nil {
		return err
	}
	if fsutil.IsDir(m.Path) {
		return nil
	}
	// Collect missing directories, deepest first.
	var missing []string
	for p := m.Path; !fsutil.Lexists(p); p = filepath.Dir(p) {
		missing = append(missing, p)
		if filepath.Dir(p) == p {
			break
		}
	}
	if len(missing) == 0 || !fsutil.IsDir(filepath.Dir(missing[len(missing)-1])) {
		return newError(AlreadyExists, op, m.Path)
	}
	for _, p := range missing {
		if err := m.sb.checkWrite(op, p); err != nil {
			return err
		}
	}
	for i := len(missing) - 1; i >= 0; i-- {
		if err := os.Mkdir(missing[i], 0755); err != nil {
			m.removeCreated()
			return wrap(op, missing[i], err)
		}
		m.created = append([]string{missing[i]}, m.created...)
	}
	return nil
}

func (m *Mkdir) Undo() error {
	if err := m.checkUndo(); err != nil {
		return err
	}
	return wrap("undo "+m.name(), m.Path, m.removeCreated())
}

// Removes created directories, deepest first.
func (m *Mkdir) removeCreated() error {
	for len(m.created) > 0 {
		if err := os.Remove(m.created[0]); err != nil {
			return err
		}
		m.created = m.created[1:]
	}
	return nil
}

// Moves src to dst, falling back to copying and removing when they are on
// different devices.
func moveTree(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyTree(src, dst); err != nil {
		os.RemoveAll(dst)
		return err
	}
	return os.RemoveAll(src)
}

func copyTree(src, dst string) error {
	stat, err := os.Lstat(src)
	if err != nil {
		return err
	}
	switch {
	case stat.IsDir():
		if err := os.Mkdir(dst, stat.Mode().Perm()); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			err := copyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name()))
			if err != nil {
				return err
			}
		}
		return nil
	case stat.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case stat.Mode().IsRegular():
		return copyFile(src, dst, stat.Mode().Perm())
	default:
		return fmt.Errorf("cannot copy special file %s", src)
	}
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}
