package eval

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"src.fsl.sh/pkg/eval/errs"
	"src.fsl.sh/pkg/eval/vals"
)

// Builtin functions, bound in the outermost scope of every Evaler.
var builtinFns = []*NativeFn{
	nativeFn("print", 0, -1, printFn),
	nativeFn("str", 1, 1, func(_ *Frame, args []any) (any, error) {
		return vals.ToString(args[0]), nil
	}),
	nativeFn("type", 1, 1, func(_ *Frame, args []any) (any, error) {
		return vals.Kind(args[0]), nil
	}),
	nativeFn("len", 1, 1, length),
	nativeFn("num", 1, 1, func(_ *Frame, args []any) (any, error) {
		return vals.ToNum(args[0])
	}),
	nativeFn("range", 1, 3, makeRange),
	nativeFn("list", 0, -1, func(_ *Frame, args []any) (any, error) {
		return vals.NewList(append([]any(nil), args...)...), nil
	}),
	nativeFn("exit", 0, 2, exitFn),
}

// BuiltinNames returns the names of all builtin functions.
func BuiltinNames() []string {
	names := make([]string, len(builtinFns))
	for i, fn := range builtinFns {
		names[i] = fn.name
	}
	return names
}

// Writes the string forms of the arguments separated by spaces, and a
// newline.
func printFn(fm *Frame, args []any) (any, error) {
	strs := make([]string, len(args))
	for i, arg := range args {
		strs[i] = vals.ToString(arg)
	}
	_, err := fmt.Fprintln(fm.Stdout(), strings.Join(strs, " "))
	return nil, err
}

func length(_ *Frame, args []any) (any, error) {
	switch v := args[0].(type) {
	case string:
		return float64(utf8.RuneCountInString(v)), nil
	case *vals.List:
		return float64(v.Len()), nil
	case vals.Iterable:
		return float64(len(vals.Collect(v))), nil
	default:
		return nil, errs.TypeError{
			What: "argument of len", Want: "string or iterable", Got: vals.Kind(v)}
	}
}

// range(end), range(start, end) or range(start, end, step).
func makeRange(_ *Frame, args []any) (any, error) {
	nums := make([]float64, len(args))
	for i := range args {
		var err error
		nums[i], err = numArg(args, i, "argument of range")
		if err != nil {
			return nil, err
		}
	}
	start, end, step := 0.0, 0.0, 1.0
	switch len(nums) {
	case 1:
		end = nums[0]
	case 2:
		start, end = nums[0], nums[1]
	case 3:
		start, end, step = nums[0], nums[1], nums[2]
	}
	r, err := vals.NewRange(start, end, step)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// exit(), exit(code) or exit(code, value).
func exitFn(_ *Frame, args []any) (any, error) {
	code := 0.0
	if len(args) > 0 {
		var err error
		code, err = numArg(args, 0, "exit code")
		if err != nil {
			return nil, err
		}
		if code != math.Trunc(code) || code < 0 || code > 255 {
			return nil, errs.OutOfRange{What: "exit code",
				ValidLow: "0", ValidHigh: "255", Actual: vals.FormatNum(code)}
		}
	}
	var value any
	if len(args) > 1 {
		value = args[1]
	}
	return nil, &ExitSignal{Code: int(code), Value: value}
}
