package eval_test

import (
	"testing"

	"src.fsl.sh/pkg/eval/errs"
	. "src.fsl.sh/pkg/eval/evaltest"
	"src.fsl.sh/pkg/eval/vals"
	"src.fsl.sh/pkg/fsop"
	"src.fsl.sh/pkg/testutil"
)

func TestIf(t *testing.T) {
	Test(t,
		That("if true { print(1) }").Prints("1\n"),
		That("if false { print(1) }").DoesNothing(),
		That("if false { print(1) } else { print(2) }").Prints("2\n"),
		That("$x = 2",
			"if $x == 1 { print(1) } elif $x == 2 { print(2) } else { print(3) }").
			Prints("2\n"),
		That("$x = 3",
			"if $x == 1 { print(1) } else if $x == 2 { print(2) } else { print(3) }").
			Prints("3\n"),
		// Conditions after the first true one are not evaluated.
		That("if true { print(1) } elif $undefined { print(2) }").Prints("1\n"),

		That("if 1 { }").Throws(
			errs.TypeError{What: "condition", Want: "boolean", Got: "number"}),
		That(`if false { } elif "x" { }`).Throws(
			errs.TypeError{What: "condition", Want: "boolean", Got: "string"}),
	)
}

func TestWhile(t *testing.T) {
	Test(t,
		That("$i = 0",
			"while $i < 3 {",
			"  print($i)",
			"  i = $i + 1",
			"}").Prints("0\n1\n2\n"),
		That("$i = 0",
			"while true {",
			"  i = $i + 1",
			"  if $i == 2 { continue }",
			"  if $i == 4 { break }",
			"  print($i)",
			"}").Prints("1\n3\n"),
		// Each iteration gets a fresh scope.
		That("$i = 0",
			"while $i < 2 {",
			"  $j = $i",
			"  i = $i + 1",
			"}").DoesNothing(),
		That("while 1 { }").Throws(
			errs.TypeError{What: "condition", Want: "boolean", Got: "number"}),
	)
}

func TestFor(t *testing.T) {
	Test(t,
		That("for $i in range(5) {",
			"  if $i == 2 { continue }",
			"  if $i == 4 { break }",
			"  print($i)",
			"}").Prints("0\n1\n3\n"),
		That("for $i in range(5) { if $i == 2 { continue } if $i == 4 { break } print($i) }").
			Prints("0\n1\n3\n"),
		That("for %c in (\"héllo\") { print(%c) }").Prints("h\né\nl\nl\no\n"),
		That("for $x in list(1, \"a\", true) { print($x) }").Prints("1\na\ntrue\n"),
		That("for $i in range(2, 0, -1) { print($i) }").Prints("2\n1\n"),
		That("for $i in range(0) { print($i) }").DoesNothing(),

		// The loop variable is bound in a fresh scope each iteration.
		That("for $i in range(3) { $sq = $i * $i; print($sq) }").Prints("0\n1\n4\n"),
		That("for %i in range(3) { i = 1 }").
			Throws(errs.ScopeError{Name: "i", Problem: errs.Immutable}),
		That("for $i in range(3) { i = $i + 10; print($i) }").Prints("10\n11\n12\n"),

		That("for $i in 5 { }").Throws(vals.WrongType{WantKind: "iterable", GotKind: "number"}),
		That("for $i in range(1, 2, 0) { }").Throws(vals.ErrZeroStep),
	)
}

func TestFor_Directory(t *testing.T) {
	Test(t,
		That("for $p in PATH d { print(type($p)); print(READ $p) }").
			WithFiles(testutil.Dir{"d": testutil.Dir{"a": "1", "b": "2"}}).
			Prints("path\n1\npath\n2\n"),
		That("for $p in PATH missing { }").
			Throws(FsError(fsop.NotFound, "LIST")),
		That("for $p in PATH f { }").
			WithFiles(testutil.Dir{"f": "content"}).
			Throws(FsError(fsop.IOFailure, "LIST")),
	)
}

func TestIterationIndependence(t *testing.T) {
	Test(t,
		// Every loop over the same binding starts from the beginning.
		That("$r = range(3)",
			"for $i in $r { print($i) }",
			"for $i in $r { print($i) }").Prints("0\n1\n2\n0\n1\n2\n"),
		// Rebinding an iterable never shares the cursor.
		That("$r = range(2)",
			"for $i in $r {",
			"  $copy = $r",
			"  for $j in $copy { print($i + \"-\" + $j) }",
			"}").Prints("0-0\n0-1\n1-0\n1-1\n"),
		That("func f(...$xs) {",
			"  for $x in $xs { print($x) }",
			"  for $x in $xs { print($x) }",
			"}",
			"f(1, 2)").Prints("1\n2\n1\n2\n"),
	)
}

func TestReturn(t *testing.T) {
	Test(t,
		That("return").Returns(nil),
		That("return 1", "print(2)").Returns(1.0),
		That("print(1)").Returns(nil).Prints("1\n"),
		// A top-level return inside a construct ends the script.
		That("for $i in range(10) {",
			"  if $i == 2 { return $i }",
			"}",
			"print(\"unreachable\")").Returns(2.0),
		That("$i = 0",
			"while true {",
			"  i = $i + 1",
			"  if true { if $i > 3 { return $i } }",
			"}").Returns(4.0),
	)
}

func TestBlock(t *testing.T) {
	Test(t,
		That("$x = 1", "if true { $x = 2; print($x) }", "print($x)").Prints("2\n1\n"),
		That("if true { $x = 1 }", "return $x").
			Throws(errs.ScopeError{Name: "x", Problem: errs.Undeclared}),
		That("{ }").DoesNotCompile(),
		That("while true { break } print(9)").Prints("9\n"),
		That("func f() { return 1 } print(f())").Prints("1\n"),
		That("if true { } 1 2").DoesNotCompile(),
	)
}

func TestScoping(t *testing.T) {
	Test(t,
		// An outer constant is visible but not assignable in nested blocks.
		That("%c = 1", "if true { print(%c) }").Prints("1\n"),
		That("%c = 1", "if true { c = 2 }").
			Throws(errs.ScopeError{Name: "c", Problem: errs.Immutable}),
		That("%c = 1", "$i = 0", "while $i < 1 { i = 1; c = 2 }").
			Throws(errs.ScopeError{Name: "c", Problem: errs.Immutable}),
		That("%c = 1", "for $i in range(1) { c = 2 }").
			Throws(errs.ScopeError{Name: "c", Problem: errs.Immutable}),

		// Shadowing in a nested block is allowed.
		That("%c = 1", "if true { %c = 2; print(%c) }", "print(%c)").Prints("2\n1\n"),
		// Redeclaring in the same block is not.
		That("if true { $x = 1; $x = 2 }").
			Throws(errs.ScopeError{Name: "x", Problem: errs.Redeclared}),
		That("for $i in range(1) { %x = 1; $x = 2 }").
			Throws(errs.ScopeError{Name: "x", Problem: errs.Redeclared}),

		// Outer mutable bindings can be assigned from nested blocks.
		That("$n = 0", "for $i in range(4) { n = $n + $i }", "return $n").Returns(6.0),
	)
}
