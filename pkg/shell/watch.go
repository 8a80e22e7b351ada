package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"src.fsl.sh/pkg/eval"
)

// Changes within this duration of each other cause one run.
const watchDebounce = 100 * time.Millisecond

// Runs a script, and runs it again whenever the file changes, until ctx is
// done. Each run uses a fresh Evaler from newEvaler. It returns the exit code
// of the last run.
func watchScript(ctx context.Context, newEvaler func() (*eval.Evaler, error), fds [3]*os.File, args []string, cfg *scriptCfg) int {
	name, err := filepath.Abs(args[0])
	if err != nil {
		fmt.Fprintf(fds[2], "cannot get full path of script %q: %v\n", args[0], err)
		return 2
	}
	args = append([]string{name}, args[1:]...)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(fds[2], "cannot watch script:", err)
		return 2
	}
	defer w.Close()
	// Watch the directory; editors often save by replacing the file.
	if err := w.Add(filepath.Dir(name)); err != nil {
		fmt.Fprintln(fds[2], "cannot watch script:", err)
		return 2
	}

	run := func() int {
		ev, err := newEvaler()
		if err != nil {
			fmt.Fprintln(fds[2], err)
			return 2
		}
		return script(ev, fds, args, cfg)
	}
	exit := run()
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return exit
		case event, ok := <-w.Events:
			if !ok {
				return exit
			}
			if event.Name != name || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			logger.Println("script changed:", event)
			debounce = time.After(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return exit
			}
			fmt.Fprintln(fds[2], "watch error:", err)
		case <-debounce:
			debounce = nil
			fmt.Fprintf(fds[2], "[%s changed, running again]\n", filepath.Base(name))
			exit = run()
		}
	}
}
