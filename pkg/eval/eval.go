// Package eval handles evaluation of parsed fsl code and provides the API for
// hosting the interpreter.
package eval

import (
	"errors"
	"io"
	"os"
	"sync"

	"src.fsl.sh/pkg/errutil"
	"src.fsl.sh/pkg/fsop"
	"src.fsl.sh/pkg/logutil"
	"src.fsl.sh/pkg/parse"
)

var logger = logutil.GetLogger("[eval] ")

// DefaultMaxCallDepth is the default value of (*Evaler).MaxCallDepth.
const DefaultMaxCallDepth = 1000

// Evaler provides methods for evaluating code, and maintains state that is
// persisted between evaluation of different pieces of code: the global scope,
// environment bindings and native functions. An Evaler is safe to use
// concurrently, but runs one piece of code at a time.
type Evaler struct {
	mu sync.Mutex

	// Destination of the output of the script. Defaults to os.Stdout.
	Stdout io.Writer
	// Maximum nesting of function calls. Defaults to DefaultMaxCallDepth.
	MaxCallDepth int

	sandbox *fsop.Sandbox
	// Builtin and native functions. The parent of global.
	builtin *Context
	global  *Context
	env     map[string]any

	runEndHooks []func(*RunInfo)
}

// RunInfo describes a finished run. It is passed to the functions added with
// OnRunEnd.
type RunInfo struct {
	Src parse.Source
	// Operations performed by the run, in order. When Err is not nil, they
	// have been rolled back.
	Ops []fsop.Operation
	// The result of the run.
	Value any
	Err   error
	// Whether the operations were rolled back.
	RolledBack bool
}

// NewEvaler creates a new Evaler operating in the given sandbox.
func NewEvaler(sb *fsop.Sandbox) *Evaler {
	builtin := NewContext()
	for _, fn := range builtinFns {
		builtin.Define(fn.name, fn, false)
	}
	return &Evaler{
		sandbox: sb,
		builtin: builtin,
		global:  builtin.Child(),
		env:     make(map[string]any),
	}
}

// Sandbox returns the sandbox of the Evaler.
func (ev *Evaler) Sandbox() *fsop.Sandbox { return ev.sandbox }

// Global returns the global scope. Top-level code of every piece of code runs
// in it.
func (ev *Evaler) Global() *Context { return ev.global }

// AddEnv adds an environment binding, accessible as @name. An existing
// binding of the same name is replaced.
func (ev *Evaler) AddEnv(name string, v any) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.env[name] = v
}

// EnvNames returns the names of environment bindings.
func (ev *Evaler) EnvNames() []string {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	names := make([]string, 0, len(ev.env))
	for name := range ev.env {
		names = append(names, name)
	}
	return names
}

// AddNative adds a native function. An existing function of the same name is
// replaced.
func (ev *Evaler) AddNative(name string, f func(args []any) (any, error)) {
	ev.addFn(NewNativeFn(name, f))
}

// AddContextNative adds a native function that receives the calling Frame.
func (ev *Evaler) AddContextNative(name string, f func(fm *Frame, args []any) (any, error)) {
	ev.addFn(NewContextNativeFn(name, f))
}

func (ev *Evaler) addFn(fn *NativeFn) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if _, ok := ev.builtin.names[fn.name]; ok {
		ev.builtin.replace(fn.name, fn)
	} else {
		ev.builtin.Define(fn.name, fn, false)
	}
}

// OnRunEnd adds a function to call after each run of Eval that got past
// parsing.
func (ev *Evaler) OnRunEnd(f func(*RunInfo)) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.runEndHooks = append(ev.runEndHooks, f)
}

func (ev *Evaler) stdout() io.Writer {
	if ev.Stdout == nil {
		return os.Stdout
	}
	return ev.Stdout
}

func (ev *Evaler) maxCallDepth() int {
	if ev.MaxCallDepth <= 0 {
		return DefaultMaxCallDepth
	}
	return ev.MaxCallDepth
}

// Check parses the given source without running it. The error, if any, is a
// *parse.LexicalError or a *parse.SyntaxError.
func (ev *Evaler) Check(src parse.Source) error {
	_, err := parse.Parse(src)
	return err
}

// Eval parses and runs the given source, and returns the result of the
// script: the value of a top-level return, or nil.
//
// Filesystem operations performed by the run are committed when it
// succeeds or exits with code 0, and rolled back otherwise. An explicit exit
// is returned as an *ExitSignal, even when its code is 0; in that case the
// value passed to exit is also returned as the result. Other runtime errors
// are *Exception's. When rolling back fails, the error is combined with the
// error of the run.
func (ev *Evaler) Eval(src parse.Source) (any, error) {
	chunk, err := parse.Parse(src)
	if err != nil {
		return nil, err
	}
	op := compile(src, chunk)

	ev.mu.Lock()
	defer ev.mu.Unlock()

	tracker := fsop.NewTracker(ev.sandbox)
	fm := &Frame{ev: ev, scope: ev.global, src: src, tracker: tracker}
	value, err := op.exec(fm)

	info := &RunInfo{Src: src, Ops: tracker.Ops(), Value: value, Err: err}
	var exit *ExitSignal
	if err == nil || (errors.As(err, &exit) && exit.Code == 0) {
		if exit != nil {
			value = exit.Value
			info.Value = value
		}
		if commitErr := tracker.Commit(); commitErr != nil {
			logger.Println("failed to remove stash:", commitErr)
		}
	} else {
		logger.Printf("%s failed, rolling back %d operations", src.Name, len(info.Ops))
		info.RolledBack = true
		if rbErr := tracker.Rollback(); rbErr != nil {
			err = errutil.Multi(err, rbErr)
			info.Err = err
		}
	}
	for _, hook := range ev.runEndHooks {
		hook(info)
	}
	return value, err
}
