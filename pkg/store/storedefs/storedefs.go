// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import (
	"errors"
	"time"
)

// ErrNoMatchingRun is the error returned when a query for a run completes
// with no result.
var ErrNoMatchingRun = errors.New("no matching run")

// Store is an interface satisfied by the storage service.
type Store interface {
	NextRunSeq() (int, error)
	AddRun(run Run) (int, error)
	DelRun(seq int) error
	Run(seq int) (Run, error)
	RunsWithSeq(from, upto int) ([]Run, error)
	LastRun(script string) (Run, error)
}

// Run is an entry in the run journal.
type Run struct {
	Seq int `json:"-"`
	// Name of the source, like the path of a script file or "[repl]".
	Script string    `json:"script"`
	Time   time.Time `json:"time"`
	// The performed operations, as shown by their String method.
	Ops        []string `json:"ops,omitempty"`
	RolledBack bool     `json:"rolled_back,omitempty"`
	// Message of the error that ended the run, if any.
	Err string `json:"err,omitempty"`
	// Exit code, when the run ended with exit.
	Exit *int `json:"exit,omitempty"`
}

// Failed reports whether the run ended with an error other than exit with
// code 0.
func (r Run) Failed() bool {
	return r.Err != "" && (r.Exit == nil || *r.Exit != 0)
}
