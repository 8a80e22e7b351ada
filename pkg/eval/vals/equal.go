package vals

import "math"

// Epsilon is the tolerance used when comparing numbers.
const Epsilon = 1e-12

// Equaler wraps the Equal method.
type Equaler interface {
	// Equal compares the receiver to another value.
	Equal(other any) bool
}

// Equal returns whether two values are equal. Numbers are compared with a
// tolerance of Epsilon; strings, booleans and paths are compared by value;
// iterables are compared by identity. Types satisfying the Equaler interface
// decide for themselves. Values of different kinds are never equal.
func Equal(x, y any) bool {
	switch x := x.(type) {
	case nil:
		return y == nil
	case bool:
		return x == y
	case float64:
		if y, ok := y.(float64); ok {
			return EqualNum(x, y)
		}
		return false
	case string:
		return x == y
	case Path:
		return x == y
	case Equaler:
		return x.Equal(y)
	case Iterable:
		if y, ok := y.(Iterable); ok {
			return x == y
		}
		return false
	default:
		return false
	}
}

// EqualNum compares two numbers with a tolerance of Epsilon. Infinities are
// only equal to themselves and NaN is equal to nothing.
func EqualNum(x, y float64) bool {
	if x == y {
		return true
	}
	return math.Abs(x-y) < Epsilon
}
