package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"src.fsl.sh/pkg/eval"
	"src.fsl.sh/pkg/parse"
	"src.fsl.sh/pkg/strutil"
)

// This type is the interface that the line editor has to satisfy.
type editor interface {
	// ReadLine reads one line with the given prompt. It returns errAborted
	// when the user aborts the line, and io.EOF at the end of input.
	ReadLine(prompt string) (string, error)
	AddHistory(code string)
	Close() error
}

var errAborted = errors.New("aborted")

// Line editor for input that is not a terminal.
type minEditor struct {
	in  *bufio.Reader
	out io.Writer
}

func newMinEditor(in io.Reader, out io.Writer) *minEditor {
	return &minEditor{bufio.NewReader(in), out}
}

func (ed *minEditor) ReadLine(prompt string) (string, error) {
	fmt.Fprint(ed.out, prompt)
	line, err := ed.in.ReadString('\n')
	if err == io.EOF && line != "" {
		// The last line has no line ending; the next call returns io.EOF.
		err = nil
	}
	return strutil.ChopLineEnding(line), err
}

func (ed *minEditor) AddHistory(string) {}

func (ed *minEditor) Close() error { return nil }

// Line editor for terminals, with history and completion.
type linerEditor struct {
	state       *liner.State
	historyFile string
}

func newLinerEditor(ev *eval.Evaler, historyFile string) *linerEditor {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetWordCompleter(func(line string, pos int) (string, []string, string) {
		return completeWord(ev, line, pos)
	})
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, err := state.ReadHistory(f)
			if err != nil {
				logger.Println("failed to read history:", err)
			}
			f.Close()
		}
	}
	return &linerEditor{state, historyFile}
}

func (ed *linerEditor) ReadLine(prompt string) (string, error) {
	line, err := ed.state.Prompt(prompt)
	if err == liner.ErrPromptAborted {
		return "", errAborted
	}
	return line, err
}

func (ed *linerEditor) AddHistory(code string) { ed.state.AppendHistory(code) }

func (ed *linerEditor) Close() error {
	if ed.historyFile != "" {
		if f, err := os.Create(ed.historyFile); err == nil {
			ed.state.WriteHistory(f)
			f.Close()
		} else {
			logger.Println("failed to write history:", err)
		}
	}
	return ed.state.Close()
}

// Completes the word before pos in line. A word with a $ or % sigil completes
// to names in the global scope, one with @ to environment bindings, and a
// bare word to keywords and names in the global scope.
func completeWord(ev *eval.Evaler, line string, pos int) (head string, completions []string, tail string) {
	start := strutil.WordStart(line, pos)
	head, word, tail := line[:start], line[start:pos], line[pos:]

	var sigil string
	if word != "" && strings.ContainsRune("$%@", rune(word[0])) {
		sigil, word = word[:1], word[1:]
	}
	var candidates []string
	switch sigil {
	case "@":
		candidates = ev.EnvNames()
		sort.Strings(candidates)
	case "$", "%":
		candidates = ev.Global().Names()
	default:
		candidates = append(parse.Keywords(), ev.Global().Names()...)
	}
	for _, c := range strutil.FilterPrefix(candidates, word) {
		completions = append(completions, sigil+c)
	}
	return head, completions, tail
}
