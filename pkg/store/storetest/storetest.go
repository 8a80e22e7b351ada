// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"src.fsl.sh/pkg/store/storedefs"
)

var (
	t0   = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	exit = func(i int) *int { return &i }

	runs = []storedefs.Run{
		{Script: "a.fsl", Time: t0, Ops: []string{"MKDIR out"}},
		{Script: "[repl]", Time: t0.Add(time.Minute), Err: "bad", RolledBack: true,
			Ops: []string{"WRITE out/x", "DELETE y"}},
		{Script: "a.fsl", Time: t0.Add(2 * time.Minute), Err: "exit 0", Exit: exit(0)},
	}
)

// TestRuns tests the run journal functionality of a Store.
func TestRuns(t *testing.T, store storedefs.Store) {
	t.Helper()

	startSeq, err := store.NextRunSeq()
	if startSeq != 1 || err != nil {
		t.Errorf("store.NextRunSeq() -> (%v, %v), want (1, nil)", startSeq, err)
	}
	if _, err := store.LastRun(""); !matchErr(err, storedefs.ErrNoMatchingRun) {
		t.Errorf("store.LastRun() on empty store -> error %v, want %v",
			err, storedefs.ErrNoMatchingRun)
	}

	// AddRun
	for i, run := range runs {
		wantSeq := startSeq + i
		seq, err := store.AddRun(run)
		if seq != wantSeq || err != nil {
			t.Errorf("store.AddRun(%v) -> (%v, %v), want (%v, nil)",
				run.Script, seq, err, wantSeq)
		}
	}

	endSeq, err := store.NextRunSeq()
	wantedEndSeq := startSeq + len(runs)
	if endSeq != wantedEndSeq || err != nil {
		t.Errorf("store.NextRunSeq() -> (%v, %v), want (%v, nil)",
			endSeq, err, wantedEndSeq)
	}

	withSeq := func(seq int, run storedefs.Run) storedefs.Run {
		run.Seq = seq
		return run
	}

	// Run
	for i, want := range runs {
		seq := i + startSeq
		run, err := store.Run(seq)
		if diff := cmp.Diff(withSeq(seq, want), run); diff != "" || err != nil {
			t.Errorf("store.Run(%v) -> error %v, diff (-want +got):\n%s", seq, err, diff)
		}
	}
	if _, err := store.Run(endSeq); !matchErr(err, storedefs.ErrNoMatchingRun) {
		t.Errorf("store.Run(%v) -> error %v, want %v",
			endSeq, err, storedefs.ErrNoMatchingRun)
	}

	// RunsWithSeq
	got, err := store.RunsWithSeq(startSeq+1, endSeq)
	want := []storedefs.Run{withSeq(startSeq+1, runs[1]), withSeq(startSeq+2, runs[2])}
	if diff := cmp.Diff(want, got); diff != "" || err != nil {
		t.Errorf("store.RunsWithSeq -> error %v, diff (-want +got):\n%s", err, diff)
	}

	// LastRun
	last, err := store.LastRun("[repl]")
	if last.Seq != startSeq+1 || err != nil {
		t.Errorf("store.LastRun([repl]) -> (seq %v, %v), want (seq %v, nil)",
			last.Seq, err, startSeq+1)
	}
	last, err = store.LastRun("")
	if last.Seq != startSeq+2 || err != nil {
		t.Errorf("store.LastRun() -> (seq %v, %v), want (seq %v, nil)",
			last.Seq, err, startSeq+2)
	}
	if _, err := store.LastRun("nope.fsl"); !matchErr(err, storedefs.ErrNoMatchingRun) {
		t.Errorf("store.LastRun(nope.fsl) -> error %v, want %v",
			err, storedefs.ErrNoMatchingRun)
	}

	// DelRun
	err = store.DelRun(startSeq)
	if err != nil {
		t.Errorf("store.DelRun(%v) -> %v, want nil", startSeq, err)
	}
	if _, err := store.Run(startSeq); !matchErr(err, storedefs.ErrNoMatchingRun) {
		t.Errorf("store.Run(%v) after deletion -> error %v, want %v",
			startSeq, err, storedefs.ErrNoMatchingRun)
	}
	// Sequence numbers are not reused.
	if seq, _ := store.NextRunSeq(); seq != endSeq {
		t.Errorf("store.NextRunSeq() after deletion -> %v, want %v", seq, endSeq)
	}
}

func matchErr(e1, e2 error) bool {
	return (e1 == nil && e2 == nil) || (e1 != nil && e2 != nil && e1.Error() == e2.Error())
}
