package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"src.fsl.sh/pkg/prog"
	"src.fsl.sh/pkg/store"
	"src.fsl.sh/pkg/store/storedefs"
)

// Queries on the run journal. Sequence numbers start from 1, so 0 means the
// flag is not given.
type journalQuery struct {
	runs   int
	last   bool
	show   int
	forget int
}

func (q *journalQuery) registerFlags(fs *prog.FlagSet) {
	fs.IntVar(&q.runs, "runs", 0, "show the last N runs recorded in the journal")
	fs.BoolVar(&q.last, "lastrun", false,
		"show the last run of the given script or -c code, or of anything when there is none")
	fs.IntVar(&q.show, "showrun", 0, "show the run with the given sequence number")
	fs.IntVar(&q.forget, "forgetrun", 0, "delete the run with the given sequence number")
}

func (q *journalQuery) active() bool {
	return q.runs != 0 || q.last || q.show != 0 || q.forget != 0
}

func (q *journalQuery) validate() error {
	n := 0
	for _, given := range []bool{q.runs != 0, q.last, q.show != 0, q.forget != 0} {
		if given {
			n++
		}
	}
	switch {
	case n > 1:
		return prog.BadUsage("only one of -runs, -lastrun, -showrun and -forgetrun can be used")
	case q.runs < 0 || q.show < 0 || q.forget < 0:
		return prog.BadUsage("journal queries take positive numbers")
	}
	return nil
}

// Runs the query against the journal at path. When script is not empty,
// -lastrun looks for runs of that script only.
func (q *journalQuery) run(w io.Writer, path, script string, jsonOut bool) error {
	if path == "" {
		return errors.New("no journal; use -journal or set journal in the configuration")
	}
	st, err := store.NewStore(path)
	if err != nil {
		return fmt.Errorf("cannot open journal %s: %w", path, err)
	}
	defer st.Close()

	switch {
	case q.forget != 0:
		if _, err := st.Run(q.forget); err != nil {
			return fmt.Errorf("run %d: %w", q.forget, err)
		}
		logger.Println("deleting run", q.forget)
		return st.DelRun(q.forget)
	case q.show != 0:
		run, err := st.Run(q.show)
		if err != nil {
			return fmt.Errorf("run %d: %w", q.show, err)
		}
		return showRuns(w, jsonOut, run)
	case q.last:
		run, err := st.LastRun(script)
		if err != nil {
			return err
		}
		return showRuns(w, jsonOut, run)
	default:
		next, err := st.NextRunSeq()
		if err != nil {
			return err
		}
		runs, err := st.RunsWithSeq(max(1, next-q.runs), next)
		if err != nil {
			return err
		}
		return showRuns(w, jsonOut, runs...)
	}
}

var formatTime = func(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

type runJSON struct {
	Seq int `json:"seq"`
	storedefs.Run
}

// Writes runs as a JSON array, or as one header line per run followed by its
// operations, indented.
func showRuns(w io.Writer, jsonOut bool, runs ...storedefs.Run) error {
	if jsonOut {
		out := make([]runJSON, len(runs))
		for i, run := range runs {
			out[i] = runJSON{run.Seq, run}
		}
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
	var sb strings.Builder
	for _, run := range runs {
		fmt.Fprintf(&sb, "%d  %s  %s  %s\n", run.Seq, formatTime(run.Time), run.Script, runStatus(run))
		for _, op := range run.Ops {
			sb.WriteString("    " + op + "\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func runStatus(run storedefs.Run) string {
	var status string
	switch {
	case run.Exit != nil:
		status = fmt.Sprintf("exit %d", *run.Exit)
	case run.Err != "":
		status = "failed: " + strings.SplitN(run.Err, "\n", 2)[0]
	default:
		status = "ok"
	}
	if run.RolledBack {
		status += ", rolled back"
	}
	return status
}
