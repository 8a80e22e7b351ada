// Package errs declares types for errors that are used by the evaluator and
// its builtins.
package errs

import (
	"fmt"
	"strconv"
	"strings"
)

// OutOfRange encodes an error where a value is out of its valid range.
type OutOfRange struct {
	What      string
	ValidLow  string
	ValidHigh string
	Actual    string
}

// Error implements the error interface.
func (e OutOfRange) Error() string {
	if e.ValidHigh < e.ValidLow {
		return fmt.Sprintf(
			"out of range: %v has no valid value, but is %v", e.What, e.Actual)
	}
	return fmt.Sprintf(
		"out of range: %s must be from %s to %s, but is %s",
		e.What, e.ValidLow, e.ValidHigh, e.Actual)
}

// BadValue encodes an error where the value does not meet a requirement.
type BadValue struct {
	What   string
	Valid  string
	Actual string
}

func (e BadValue) Error() string {
	return fmt.Sprintf("bad value: %v must be %v, but is %v", e.What, e.Valid, e.Actual)
}

// ArityMismatch encodes an error where the expected number of values is out
// of the valid range.
type ArityMismatch struct {
	What      string
	ValidLow  int
	ValidHigh int
	Actual    int
}

func (e ArityMismatch) Error() string {
	switch {
	case e.ValidHigh == e.ValidLow:
		return fmt.Sprintf("arity mismatch: %v must be %v, but is %v",
			e.What, nValues(e.ValidLow), nValues(e.Actual))
	case e.ValidHigh == -1:
		return fmt.Sprintf("arity mismatch: %v must be %v or more values, but is %v",
			e.What, e.ValidLow, nValues(e.Actual))
	default:
		return fmt.Sprintf("arity mismatch: %v must be %v to %v values, but is %v",
			e.What, e.ValidLow, e.ValidHigh, nValues(e.Actual))
	}
}

func nValues(n int) string {
	if n == 1 {
		return "1 value"
	}
	return strconv.Itoa(n) + " values"
}

// TypeError encodes an error where a value has the wrong kind.
type TypeError struct {
	What string
	Want string
	Got  string
}

func (e TypeError) Error() string {
	return fmt.Sprintf("type error: %s must be %s, but is %s", e.What, e.Want, e.Got)
}

// OperandError encodes an error where an operator cannot be applied to the
// kinds of its operands.
type OperandError struct {
	Op    string
	Kinds []string
}

func (e OperandError) Error() string {
	return fmt.Sprintf("type error: cannot apply %s to %s",
		e.Op, strings.Join(e.Kinds, " and "))
}

// ScopeProblem is the cause of a ScopeError.
type ScopeProblem int

// Possible values of ScopeProblem.
const (
	// A name is declared twice in the same scope.
	Redeclared ScopeProblem = iota
	// A name is used but not declared in any enclosing scope.
	Undeclared
	// A constant is assigned.
	Immutable
)

// ScopeError encodes an error in declaring, finding or assigning a name.
type ScopeError struct {
	Name    string
	Problem ScopeProblem
}

func (e ScopeError) Error() string {
	switch e.Problem {
	case Redeclared:
		return "scope error: " + e.Name + " is already declared in this scope"
	case Undeclared:
		return "scope error: " + e.Name + " is not declared"
	case Immutable:
		return "scope error: cannot assign to constant " + e.Name
	default:
		return "scope error: " + e.Name
	}
}
