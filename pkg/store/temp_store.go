package store

import (
	"path/filepath"

	"src.fsl.sh/pkg/must"
	"src.fsl.sh/pkg/testutil"
)

// TempStore opens a journal in a fresh temporary directory. The journal is
// closed and removed when c cleans up. It panics on errors, so it is only
// suitable for tests.
func TempStore(c testutil.Cleanuper) DBStore {
	st := must.OK1(NewStore(filepath.Join(testutil.TempDir(c), "journal.db")))
	// Registered after TempDir, so it runs before the directory is removed.
	c.Cleanup(func() { st.Close() })
	return st
}
