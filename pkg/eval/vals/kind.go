// Package vals contains the value model of fsl.
//
// Values are represented by plain Go values:
//
//   - Number: float64
//   - String: string
//   - Boolean: bool
//   - Path: Path
//   - Null: nil
//   - Function: any type implementing Kinder with kind "function"
//   - Iterable: any type implementing Iterable
//
// Values are never mutated in place. Mutability is a property of bindings,
// which live in the evaluator.
package vals

import "fmt"

// Path is an absolute filesystem path.
type Path string

// Kinder wraps the Kind method.
type Kinder interface {
	Kind() string
}

// Kind returns the kind of the value. It is implemented for the builtin nil,
// bool, float64 and string, Path, Iterable, and types satisfying the Kinder
// interface. For other types, it returns the Go type name of the argument
// preceded by "!!".
func Kind(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case Path:
		return "path"
	case Kinder:
		return v.Kind()
	case Iterable:
		return "iterable"
	default:
		return fmt.Sprintf("!!%T", v)
	}
}
