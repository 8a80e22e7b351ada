package shell

import (
	"fmt"
	"io"
	"os"
	"time"

	"src.fsl.sh/pkg/config"
	"src.fsl.sh/pkg/eval"
	"src.fsl.sh/pkg/store"
	"src.fsl.sh/pkg/store/storedefs"
)

// Runtime is an Evaler together with the resources it owns.
type Runtime struct {
	Evaler *eval.Evaler
	// The run journal. Nil when disabled.
	Journal store.DBStore

	cfg *config.Config
	fds [3]*os.File
}

// InitRuntime creates the Evaler described by cfg, writing script output to
// fds[1]. When journal is not empty, the run journal at that path is opened
// and every run is recorded in it; failing to open it is only a warning. The
// caller should call Close when the Runtime is no longer needed.
func InitRuntime(fds [3]*os.File, cfg *config.Config, journal string) (*Runtime, error) {
	rt := &Runtime{cfg: cfg, fds: fds}
	if journal != "" {
		st, err := store.NewStore(journal)
		if err != nil {
			warn(fds, "cannot open journal %s: %v", journal, err)
			warn(fds, "runs will not be recorded")
		} else {
			rt.Journal = st
		}
	}
	ev, err := rt.NewEvaler()
	if err != nil {
		rt.Close(fds[2])
		return nil, err
	}
	rt.Evaler = ev
	return rt, nil
}

// NewEvaler creates a fresh Evaler with the same setup as the Evaler field.
func (rt *Runtime) NewEvaler() (*eval.Evaler, error) {
	ev, err := rt.cfg.NewEvaler()
	if err != nil {
		return nil, err
	}
	ev.Stdout = rt.fds[1]
	if rt.Journal != nil {
		ev.OnRunEnd(journalHook(rt.Journal, rt.fds[2]))
	}
	return ev, nil
}

// Close releases the resources of the Runtime.
func (rt *Runtime) Close(stderr io.Writer) {
	if rt.Journal != nil {
		err := rt.Journal.Close()
		if err != nil {
			fmt.Fprintln(stderr, "warning: failed to close journal:", err)
		}
	}
}

func journalHook(st storedefs.Store, stderr io.Writer) func(*eval.RunInfo) {
	return func(info *eval.RunInfo) {
		_, err := st.AddRun(runFromInfo(info, time.Now()))
		if err != nil {
			fmt.Fprintln(stderr, "warning: failed to record run:", err)
		}
	}
}

func runFromInfo(info *eval.RunInfo, t time.Time) storedefs.Run {
	run := storedefs.Run{Script: info.Src.Name, Time: t, RolledBack: info.RolledBack}
	for _, op := range info.Ops {
		run.Ops = append(run.Ops, op.String())
	}
	if info.Err != nil {
		run.Err = info.Err.Error()
		if exit := exitCode(info.Err); exit != nil {
			run.Exit = exit
		}
	}
	return run
}
