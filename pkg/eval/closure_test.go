package eval_test

import (
	"testing"

	"src.fsl.sh/pkg/eval"
	"src.fsl.sh/pkg/eval/errs"
	. "src.fsl.sh/pkg/eval/evaltest"
)

func TestClosure_Call(t *testing.T) {
	Test(t,
		That("func f { print(1) }", "f()").Prints("1\n"),
		That("func add($a, $b) { return $a + $b }", "return add(1, 2)").Returns(3.0),
		// Without a return, a call evaluates to null.
		That("func f($a) { $b = $a }", "return f(1)").Returns(nil),
		// Functions are bound before any statement runs.
		That("print(f())", "func f { return 2 }").Prints("2\n"),
		// Recursion.
		That("func fact($n) {",
			"  if $n <= 1 { return 1 }",
			"  return $n * fact($n - 1)",
			"}",
			"return fact(5)").Returns(120.0),
		// A return inside loops ends the function.
		That("func first($it) {",
			"  for $x in $it { if $x > 1 { return $x } }",
			"  return null",
			"}",
			"return first(range(5))").Returns(2.0),
		// Functions are values.
		That("func f { return 1 }", "$g = f", "return $g()").Returns(1.0),
		That("func f { }", "return type(f)").Returns("function"),
	)
}

func TestClosure_Defaults(t *testing.T) {
	Test(t,
		That("func f($a, $b = $a + 1) { return $b }", "return f(5)").Returns(6.0),
		That("func f($a, $b = $a + 1) { return $b }", "return f(5, 9)").Returns(9.0),
		// Missing arguments without a default are null.
		That("func f($a, $b) { return $b }", "return f(1)").Returns(nil),
		That("func f($a) { return $a }", "return f()").Returns(nil),
		// Defaults are evaluated at call time.
		That("$base = 1",
			"func f($a = $base) { return $a }",
			"base = 2",
			"return f()").Returns(2.0),

		That("func f($a) { }", "f(1, 2)").Throws(
			errs.ArityMismatch{What: "arguments", ValidLow: 0, ValidHigh: 1, Actual: 2}),
	)
}

func TestClosure_Rest(t *testing.T) {
	Test(t,
		That("func f($a, ...$rest) { return $rest }", "return f(1, 2, 3, 4)").
			Returns(ListOf(2.0, 3.0, 4.0)),
		That("func f($a, ...$rest) { return $a }", "return f(1, 2, 3, 4)").Returns(1.0),
		That("func f($a, ...$rest) { return len($rest) }", "return f(1)").Returns(0.0),
		That("func f(...$rest) { rest = 1; return $rest }", "return f()").Returns(1.0),
		That("func f(...%rest) { rest = 1 }", "f()").
			Throws(errs.ScopeError{Name: "rest", Problem: errs.Immutable}, "f"),
	)
}

func TestClosure_Scoping(t *testing.T) {
	Test(t,
		// The body sees the defining scope, not the caller's.
		That("func f { return $x }",
			"func g { $x = 1; return f() }",
			"return g()").
			Throws(errs.ScopeError{Name: "x", Problem: errs.Undeclared}, "f", "g"),
		// Globals assigned after the definition are visible.
		That("$n = 1", "func f { return $n }", "n = 5", "return f()").Returns(5.0),
		That("$n = 0", "func inc { n = $n + 1 }", "inc()", "inc()", "return $n").
			Returns(2.0),
		// Constant parameters.
		That("func f(%a) { a = 2 }", "f(1)").
			Throws(errs.ScopeError{Name: "a", Problem: errs.Immutable}, "f"),
		// Local bindings don't leak.
		That("func f { $local = 1 }", "f()", "return $local").
			Throws(errs.ScopeError{Name: "local", Problem: errs.Undeclared}),
		// Parameters live in the same scope as the body.
		That("func f($a) { $a = 2 }", "f(1)").
			Throws(errs.ScopeError{Name: "a", Problem: errs.Redeclared}, "f"),
	)
}

func TestClosure_Redefinition(t *testing.T) {
	Test(t,
		That("func f { }", "func f { }").
			Throws(errs.ScopeError{Name: "f", Problem: errs.Redeclared}),
		That("$f = 1").Then("func f { }").
			Throws(errs.ScopeError{Name: "f", Problem: errs.Redeclared}),
		// A later piece of code may redefine a function.
		That("func f { return 1 }").Then("func f { return 2 }", "return f()").
			Returns(2.0),
	)
}

func TestCall_Errors(t *testing.T) {
	Test(t,
		That("nope()").Throws(errs.ScopeError{Name: "nope", Problem: errs.Undeclared}),
		That("$x = 1", "x()").
			Throws(errs.TypeError{What: "x", Want: "function", Got: "number"}),
		That("$x = 1", "$x()").
			Throws(errs.TypeError{What: "$x", Want: "function", Got: "number"}),
		// Stack traces list the calls innermost first.
		That("func inner { return 1 + true }",
			"func outer { return inner() }",
			"outer()").
			Throws(ErrorWithType(errs.OperandError{}), "inner", "outer"),
		That("func loop { loop() }", "loop()").
			WithSetup(func(ev *eval.Evaler) { ev.MaxCallDepth = 10 }).
			Throws(eval.ErrCallDepth),
	)
}
