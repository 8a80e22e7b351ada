package eval_test

import (
	"math"
	"testing"

	"src.fsl.sh/pkg/eval"
	"src.fsl.sh/pkg/eval/errs"
	. "src.fsl.sh/pkg/eval/evaltest"
)

func TestArithmetic(t *testing.T) {
	Test(t,
		That("return 1 + 2 * 3").Returns(7.0),
		That("return (1 + 2) * 3").Returns(9.0),
		That("return 7 - 2 - 1").Returns(4.0),
		That("return 8 / 4 * 2").Returns(4.0),
		That("return -3 + +2").Returns(-1.0),
		That("return 1 - -2").Returns(3.0),
		That("return 1 / 0").Returns(math.Inf(1)),
		That("return 0.1 + 0.2").Returns(Approximately(0.3)),

		That("return -true").Throws(errs.OperandError{Op: "-", Kinds: []string{"boolean"}}),
		That("return 1 + true").
			Throws(errs.OperandError{Op: "+", Kinds: []string{"number", "boolean"}}),
		That(`return 1 - "a"`).
			Throws(errs.OperandError{Op: "-", Kinds: []string{"number", "string"}}),
	)
}

func TestStringOperators(t *testing.T) {
	Test(t,
		That(`return "ab" * 3`).Returns("ababab"),
		That(`return 2 * "ab"`).Returns("abab"),
		That(`return "ab" * 2.7`).Returns("abab"),
		That(`return "ab" * -1`).Returns(""),
		That(`return "ab" * 0`).Returns(""),
		That(`return "a" + 1`).Returns("a1"),
		That(`return 1.5 + "b"`).Returns("1.5b"),
		That(`return "x" + true + null`).Returns("xtruenull"),
		That(`return "a" + "b" * 2`).Returns("abb"),
		That(`return "a" * "b"`).
			Throws(errs.OperandError{Op: "*", Kinds: []string{"string", "string"}}),
		That(`return "a" < "b"`).
			Throws(errs.OperandError{Op: "<", Kinds: []string{"string", "string"}}),
	)
}

func TestComparison(t *testing.T) {
	Test(t,
		That("return 1 < 2").Returns(true),
		That("return 2 <= 2").Returns(true),
		That("return 3 > 4").Returns(false),
		That("return 4 >= 5").Returns(false),

		// Numbers closer than 1e-12 are equal.
		That("return 0.1 + 0.2 == 0.3").Returns(true),
		That("return 1 == 1 + 0.0000000000001").Returns(true),
		That("return 1 == 1.00000000001").Returns(false),
		That("return 1 < 1 + 0.0000000000001").Returns(false),
		That("return 1 <= 1 - 0.0000000000001").Returns(true),

		That(`return "a" == "a"`).Returns(true),
		That(`return "a" != "b"`).Returns(true),
		That("return true == true").Returns(true),
		That("return true != false").Returns(true),
		That("return null == null").Returns(true),
		That("return null == 1").Returns(false),
		That(`return "x" != null`).Returns(true),
		That("return PATH a == PATH a").Returns(true),
		That("return PATH a == PATH b").Returns(false),

		// Mismatched kinds can only be compared with !=.
		That(`return 1 == "1"`).
			Throws(errs.OperandError{Op: "==", Kinds: []string{"number", "string"}}),
		That(`return 1 != "1"`).Returns(true),
		That("return 1 < true").
			Throws(errs.OperandError{Op: "<", Kinds: []string{"number", "boolean"}}),
	)
}

func TestIdentityEquality(t *testing.T) {
	Test(t,
		// Iterables compare by identity.
		That("return range(3) == range(3)").Returns(false),
		That("$r = range(3)", "return $r == $r").Returns(true),
		That("return list(1) != list(1)").Returns(true),

		// So do functions.
		That("func f { }", "return f == f").Returns(true),
		That("func f { }", "func g { }", "return f == g").Returns(false),
		That("return print == print").Returns(true),
	)
}

func TestLogic(t *testing.T) {
	Test(t,
		That("return true and false").Returns(false),
		That("return false or true").Returns(true),
		That("return not true").Returns(false),
		That("return !false").Returns(true),
		That("return not false and false").Returns(false),
		That("return true or false and false").Returns(true),

		// Short circuit.
		That("return false and $undefined").Returns(false),
		That("return true or $undefined").Returns(true),

		That("return 1 and true").Throws(
			errs.TypeError{What: "left operand of and", Want: "boolean", Got: "number"}),
		That(`return false or "x"`).Throws(
			errs.TypeError{What: "right operand of or", Want: "boolean", Got: "string"}),
		That("return !null").Throws(errs.OperandError{Op: "!", Kinds: []string{"null"}}),
	)
}

func TestVariables(t *testing.T) {
	Test(t,
		That("$x = 1", "return $x").Returns(1.0),
		That("$x = 1", "x = 2", "return $x").Returns(2.0),
		That("%c = 1", "return %c + c").Returns(2.0),
		That("$a = $b = 3", "return $a + $b").Returns(6.0),
		That("$x = 1", "return x = 5").Returns(5.0),
		That("$x = null", "return $x").Returns(nil),

		That("%c = 1", "c = 2").Throws(errs.ScopeError{Name: "c", Problem: errs.Immutable}),
		That("y = 1").Throws(errs.ScopeError{Name: "y", Problem: errs.Undeclared}),
		That("$x = 1", "$x = 2").Throws(errs.ScopeError{Name: "x", Problem: errs.Redeclared}),
		That("$x = 1", "%x = 2").Throws(errs.ScopeError{Name: "x", Problem: errs.Redeclared}),
		That("return $nope").Throws(errs.ScopeError{Name: "nope", Problem: errs.Undeclared}),
	)
}

func TestEnvironment(t *testing.T) {
	Test(t,
		That("return @NAME").
			WithSetup(func(ev *eval.Evaler) { ev.AddEnv("NAME", "fsl") }).
			Returns("fsl"),
		That("return @HOME").Throws(errs.ScopeError{Name: "@HOME", Problem: errs.Undeclared}),
	)
}
