package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/eval"
	"src.fsl.sh/pkg/eval/vals"
	"src.fsl.sh/pkg/parse"
)

// Configuration for the script mode.
type scriptCfg struct {
	Cmd         bool
	CompileOnly bool
	AST         bool
	JSON        bool
}

// Runs a script, and returns the exit code.
func script(ev *eval.Evaler, fds [3]*os.File, args []string, cfg *scriptCfg) int {
	src, err := readSource(args[0], cfg.Cmd)
	if err != nil {
		fmt.Fprintln(fds[2], err)
		return 2
	}
	scriptArgs := make([]any, len(args)-1)
	for i, arg := range args[1:] {
		scriptArgs[i] = arg
	}
	ev.AddEnv("ARGS", vals.NewList(scriptArgs...))

	if cfg.CompileOnly {
		return compileOnly(ev, fds, src, cfg)
	}
	_, err = ev.Eval(src)
	return showRunError(fds, err)
}

func readSource(arg string, cmd bool) (parse.Source, error) {
	name, err := sourceName(arg, cmd)
	if err != nil {
		return parse.Source{}, err
	}
	if cmd {
		return parse.Source{Name: name, Code: arg}, nil
	}
	code, err := readFileUTF8(name)
	if err != nil {
		return parse.Source{}, fmt.Errorf("cannot read script %q: %v", name, err)
	}
	return parse.Source{Name: name, Code: code}, nil
}

// Returns the name runs of a script are recorded under: its absolute path, or
// a fixed name for code from -c.
func sourceName(arg string, cmd bool) (string, error) {
	if cmd {
		return "code from -c", nil
	}
	name, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("cannot get full path of script %q: %v", arg, err)
	}
	return name, nil
}

func compileOnly(ev *eval.Evaler, fds [3]*os.File, src parse.Source, cfg *scriptCfg) int {
	err := ev.Check(src)
	if cfg.JSON {
		fmt.Fprintf(fds[1], "%s\n", errorsToJSON(err))
	} else if err != nil {
		diag.ShowError(fds[2], err)
	}
	if err != nil {
		return 2
	}
	if cfg.AST {
		chunk, _ := parse.Parse(src)
		fmt.Fprintln(fds[1], parse.PprintChunk(chunk))
	}
	return 0
}

// Shows the error of a run on stderr, and returns the exit code for it: the
// code of an exit, or 2 for other errors.
func showRunError(fds [3]*os.File, err error) int {
	if err == nil {
		return 0
	}
	if code := exitCode(err); code != nil {
		var exit *eval.ExitSignal
		// A bare exit signal is not worth reporting, but one combined with a
		// rollback failure is.
		if errors.As(err, &exit) && exit == err {
			return *code
		}
		diag.ShowError(fds[2], err)
		return *code
	}
	diag.ShowError(fds[2], err)
	return 2
}

// Returns the code of the exit that ended a run, or nil if the run did not
// end with exit.
func exitCode(err error) *int {
	var exit *eval.ExitSignal
	if errors.As(err, &exit) {
		code := exit.Code
		return &code
	}
	return nil
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Message  string `json:"message"`
}

// Converts a parse error into JSON. A nil error is converted to an empty
// array.
func errorsToJSON(err error) []byte {
	converted := []errorInJSON{}
	if ctx := parse.ErrorContext(err); ctx != nil {
		pos := ctx.Position()
		converted = append(converted, errorInJSON{
			ctx.Name, ctx.From, ctx.To, pos.Line, pos.Col, parseErrorMessage(err)})
	}
	jsonError, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}

func parseErrorMessage(err error) string {
	if e := diag.UnpackError[parse.LexicalErrorTag](err); e != nil {
		return e.Message
	}
	if e := diag.UnpackError[parse.SyntaxErrorTag](err); e != nil {
		return e.Message
	}
	return err.Error()
}
