package shell

import (
	"fmt"
	"io"
	"os"
	"strings"

	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/eval"
	"src.fsl.sh/pkg/eval/vals"
	"src.fsl.sh/pkg/parse"
	"src.fsl.sh/pkg/sys"
)

const (
	prompt             = "fsl> "
	continuationPrompt = "...> "
)

// InteractConfig keeps configuration for the interactive mode.
type InteractConfig struct {
	Evaler *eval.Evaler
	// Path of the history file, used when the input is a terminal. Defaults to
	// HistoryPath().
	HistoryFile string
}

// Interact runs an interactive session, and returns the exit code. Each
// complete piece of code is one run; the global scope persists between runs.
// Code that is incomplete, like an unclosed block, is continued on the next
// line. The session ends at the end of input, or when code calls exit.
func Interact(fds [3]*os.File, cfg *InteractConfig) int {
	ev := cfg.Evaler
	var ed editor
	if sys.AllTerminals(fds[0], fds[1]) {
		historyFile := cfg.HistoryFile
		if historyFile == "" {
			var err error
			historyFile, err = HistoryPath()
			if err != nil {
				warn(fds, "cannot find history file: %v", err)
			}
		}
		ed = newLinerEditor(ev, historyFile)
	} else {
		ed = newMinEditor(fds[0], fds[2])
	}
	defer ed.Close()
	return interact(ev, ed, fds)
}

func interact(ev *eval.Evaler, ed editor, fds [3]*os.File) int {
	var buf strings.Builder
	cmdNum := 0
	for {
		p := prompt
		if buf.Len() > 0 {
			p = continuationPrompt
		}
		line, err := ed.ReadLine(p)
		if err == errAborted {
			buf.Reset()
			continue
		} else if err == io.EOF {
			if buf.Len() == 0 {
				return 0
			}
			// Run what is left, to report the error.
		} else if err != nil {
			fmt.Fprintln(fds[2], "Editor error:", err)
			return 2
		} else {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(line)
		}

		code := buf.String()
		if strings.TrimSpace(code) == "" {
			buf.Reset()
			continue
		}
		cmdNum++
		src := parse.Source{Name: fmt.Sprintf("[repl %d]", cmdNum), Code: code}
		if err == nil {
			if checkErr := ev.Check(src); checkErr != nil && parse.IsPartial(checkErr) {
				cmdNum--
				continue
			}
		}
		buf.Reset()
		ed.AddHistory(code)

		value, evalErr := ev.Eval(src)
		if value != nil {
			fmt.Fprintln(fds[1], vals.Repr(value))
		}
		if exitCode(evalErr) != nil {
			return showRunError(fds, evalErr)
		}
		if evalErr != nil {
			diag.ShowError(fds[2], evalErr)
		}
		if err == io.EOF {
			return 0
		}
	}
}
