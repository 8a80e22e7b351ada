package eval

import (
	"src.fsl.sh/pkg/eval/errs"
	"src.fsl.sh/pkg/eval/vals"
)

// NativeFn is a function implemented in Go. Unlike closures, native functions
// receive already evaluated arguments and no scope of their own.
type NativeFn struct {
	name string
	// Bounds of the number of arguments. A negative maxArgs means no upper
	// bound.
	minArgs, maxArgs int
	impl             func(fm *Frame, args []any) (any, error)
}

var _ Callable = &NativeFn{}

// NewNativeFn creates a native function that does not see the calling Frame.
func NewNativeFn(name string, impl func(args []any) (any, error)) *NativeFn {
	return &NativeFn{name, 0, -1,
		func(_ *Frame, args []any) (any, error) { return impl(args) }}
}

// NewContextNativeFn creates a native function that receives the calling
// Frame, and through it the current scope, the sandbox and the output.
func NewContextNativeFn(name string, impl func(fm *Frame, args []any) (any, error)) *NativeFn {
	return &NativeFn{name, 0, -1, impl}
}

// Builds a native function with arity checking.
func nativeFn(name string, minArgs, maxArgs int, impl func(fm *Frame, args []any) (any, error)) *NativeFn {
	return &NativeFn{name, minArgs, maxArgs, impl}
}

// Kind returns "function".
func (*NativeFn) Kind() string { return "function" }

// Equal compares by address.
func (f *NativeFn) Equal(rhs any) bool { return f == rhs }

// Repr returns "<builtin name>".
func (f *NativeFn) Repr() string { return "<builtin " + f.name + ">" }

// Call calls the native function after checking the number of arguments.
func (f *NativeFn) Call(fm *Frame, args []any) (any, error) {
	if len(args) < f.minArgs || (f.maxArgs >= 0 && len(args) > f.maxArgs) {
		return nil, errs.ArityMismatch{What: "arguments of " + f.name,
			ValidLow: f.minArgs, ValidHigh: f.maxArgs, Actual: len(args)}
	}
	return f.impl(fm, args)
}

// Returns the i-th argument as a number.
func numArg(args []any, i int, what string) (float64, error) {
	x, ok := args[i].(float64)
	if !ok {
		return 0, errs.TypeError{What: what, Want: "number", Got: vals.Kind(args[i])}
	}
	return x, nil
}
