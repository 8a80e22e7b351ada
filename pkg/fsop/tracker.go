package fsop

import (
	"os"
	"strconv"
	"sync"

	"src.fsl.sh/pkg/errutil"
)

// Tracker records the operations performed during one script run, so that
// they can be rolled back or committed when the run ends.
//
// A Tracker is safe for concurrent use, but the operations it holds are
// always undone in the reverse order they were performed.
type Tracker struct {
	sb *Sandbox

	mutex    sync.Mutex
	ops      []Operation
	stashDir string
	nStashed int
}

// NewTracker creates a Tracker whose stash lives in the temporary directory
// of sb.
func NewTracker(sb *Sandbox) *Tracker { return &Tracker{sb: sb} }

// Perform performs op and records it if it succeeds.
func (t *Tracker) Perform(op Operation) error {
	err := op.Perform()
	if err != nil {
		logger.Printf("%v failed: %v", op, err)
		return err
	}
	logger.Println("performed", op)
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.ops = append(t.ops, op)
	return nil
}

// Ops returns the recorded operations, in the order they were performed.
func (t *Tracker) Ops() []Operation {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return append([]Operation(nil), t.ops...)
}

// Rollback undoes all recorded operations in reverse order and clears the
// log. All operations are attempted even when some of them fail; the errors
// are combined. The stash is only removed when every undo has succeeded, so
// that nothing deleted is lost.
func (t *Tracker) Rollback() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	var errs []error
	for i := len(t.ops) - 1; i >= 0; i-- {
		op := t.ops[i]
		if err := op.Undo(); err != nil {
			logger.Printf("undoing %v failed: %v", op, err)
			errs = append(errs, err)
		} else {
			logger.Println("undone", op)
		}
	}
	t.ops = nil
	if len(errs) > 0 {
		logger.Println("keeping stash", t.stashDir)
		t.stashDir, t.nStashed = "", 0
		return errutil.Multi(errs...)
	}
	return t.removeStash()
}

// Commit accepts all recorded operations, clears the log and discards the
// stash.
func (t *Tracker) Commit() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.ops = nil
	return t.removeStash()
}

// StashPath returns a fresh path inside the stash directory, creating the
// directory on first use. Nothing exists at the returned path.
func (t *Tracker) StashPath() (string, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.stashDir == "" {
		dir, err := os.MkdirTemp(t.sb.tempDir(), "fsl-stash-")
		if err != nil {
			return "", err
		}
		t.stashDir = dir
	}
	t.nStashed++
	return t.stashDir + string(os.PathSeparator) + strconv.Itoa(t.nStashed), nil
}

// Must be called with the mutex held.
func (t *Tracker) removeStash() error {
	if t.stashDir == "" {
		return nil
	}
	err := os.RemoveAll(t.stashDir)
	t.stashDir, t.nStashed = "", 0
	return err
}
