package parse

import (
	"testing"

	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/tt"
)

// Parses code and renders the result, or the error message.
func pp(code string) string {
	chunk, err := Parse(Source{Name: "[test]", Code: code})
	if err != nil {
		return "error: " + err.Error()
	}
	return PprintChunk(chunk)
}

var Args = tt.Args

func TestParse_Expressions(t *testing.T) {
	tt.Test(t, tt.Fn("pp", pp),
		Args("$x = 1 + 2 * 3").Rets("(= $x (+ 1 (* 2 3)))"),
		Args("$x = (1 + 2) * 3").Rets("(= $x (* (+ 1 2) 3))"),
		Args("$x = 1 - 2 - 3").Rets("(= $x (- (- 1 2) 3))"),
		Args("$x = 8 / 4 * 2").Rets("(= $x (* (/ 8 4) 2))"),
		Args("$a = $b = 1").Rets("(= $a (= $b 1))"),
		Args("%c = -1 + +2").Rets("(= %c (+ (- 1) (+ 2)))"),
		Args("$x = 1 - -2").Rets("(= $x (- 1 (- 2)))"),
		Args("$x = -$y * 3").Rets("(= $x (* (- $y) 3))"),
		Args("$x = 1 < 2 == 3 >= 4").Rets("(= $x (== (< 1 2) (>= 3 4)))"),
		Args("$x = not $a and $b or $c").Rets("(= $x (or (and (not $a) $b) $c))"),
		Args("$x = !$a != true").Rets("(= $x (!= (! $a) true))"),
		Args("$x = null").Rets("(= $x null)"),
		Args(`$s = "a\tb" + 'c'`).Rets(`(= $s (+ "a\tb" "c"))`),
		Args("$x = .5 + 1.25").Rets("(= $x (+ .5 1.25))"),
		Args("x = @HOME").Rets("(= x @HOME)"),
		Args("print(1, 2 + 3, f())").Rets("(call print 1 (+ 2 3) (call f))"),
		Args("$f(1)").Rets("(call $f 1)"),
		Args("$x = f(g(1), (2))").Rets("(= $x (call f (call g 1) 2))"),
	)
}

func TestParse_Statements(t *testing.T) {
	tt.Test(t, tt.Fn("pp", pp),
		Args("$x = 1; $y = 2\n\nx = 3").
			Rets("(= $x 1)\n(= $y 2)\n(= x 3)"),
		Args("$x = 1 +\n  2").Rets("(= $x (+ 1 2))"),
		Args("$x = 1\n  * 2").Rets("(= $x (* 1 2))"),
		Args("$x = f(1,\n 2)").Rets("(= $x (call f 1 2))"),
		Args("# comment\n$x = 1 # trailing\n").Rets("(= $x 1)"),
		Args("return").Rets("(return)"),
		Args("return\n$x = 1").Rets("(return)\n(= $x 1)"),
		Args("return 1 + 2").Rets("(return (+ 1 2))"),
		Args("if $a { print(1) } elif $b { print(2) } else if $c { print(3) } else { print(4) }").
			Rets("(if (branch $a (block (call print 1))) (branch $b (block (call print 2))) " +
				"(branch $c (block (call print 3))) (else (block (call print 4))))"),
		Args("if $a {\n}\nelse {\n  x = 1\n}").
			Rets("(if (branch $a (block)) (else (block (= x 1))))"),
		Args("while $i < 3 { i = $i + 1; continue }").
			Rets("(while (< $i 3) (block (= i (+ $i 1)) (continue)))"),
		Args("for $i in range(5) { print($i) }").
			Rets("(for $i (call range 5) (block (call print $i)))"),
		Args("for %c in (\"abc\") { break }").
			Rets(`(for %c "abc" (block (break)))`),
		Args("func f($a, $b = $a + 1) { return $b }").
			Rets("(func f ($a (= $b (+ $a 1))) (block (return $b)))"),
		Args("func g { }").Rets("(func g () (block))"),

		// Block constructs end the statement without a separator.
		Args("if $a { } print(1)").Rets("(if (branch $a (block)))\n(call print 1)"),
		Args("while $a { break } print(9)").Rets("(while $a (block (break)))\n(call print 9)"),
		Args("func f() { return 1 } print(f())").
			Rets("(func f () (block (return 1)))\n(call print (call f))"),
		Args("print(0) while $a { }").Rets("(call print 0)\n(while $a (block))"),
		Args("for $i in range(5) { if $i == 2 { continue } if $i == 4 { break } print($i) }").
			Rets("(for $i (call range 5) (block (if (branch (== $i 2) (block (continue)))) " +
				"(if (branch (== $i 4) (block (break)))) (call print $i)))"),
		Args("func h(%a, ...$rest) { }\nh(1)").
			Rets("(func h (%a ...$rest) (block))\n(call h 1)"),
	)
}

func TestParse_FileCommands(t *testing.T) {
	tt.Test(t, tt.Fn("pp", pp),
		Args(`WRITE "hi" TO out/file.txt`).
			Rets(`(WRITE "hi" (path "out" "file.txt"))`),
		Args(`APPEND $a + "\n" TO log`).
			Rets(`(APPEND (+ $a "\n") (path "log"))`),
		Args("COPY a/b TO c").Rets(`(COPY (path "a" "b") (path "c"))`),
		Args("MOVE ../x TO ./y").Rets(`(MOVE (path ".." "x") (path "." "y"))`),
		Args(`RENAME a TO "b" + $ext`).Rets(`(RENAME (path "a") (+ "b" $ext))`),
		Args("DELETE tmp; MKDIR d; MKDIRS d/e/f").
			Rets(`(DELETE (path "tmp"))` + "\n" + `(MKDIR (path "d"))` + "\n" +
				`(MKDIRS (path "d" "e" "f"))`),
		Args("$c = READ /etc/hosts").Rets(`(= $c (READ (path / "etc" "hosts")))`),
		Args("$p = PATH /").Rets(`(= $p (PATH (path /)))`),
		Args("$p = PATH $(base)/x").Rets(`(= $p (PATH (path base "x")))`),
		Args("$p = PATH ($dir)/x").Rets(`(= $p (PATH (path $dir "x")))`),
		Args(`$p = PATH "my file".txt`).Rets(`(= $p (PATH (path (cat "my file" ".txt"))))`),
		Args("$p = PATH $dir/report-2024.v1.txt").
			Rets(`(= $p (PATH (path $dir "report-2024.v1.txt")))`),
		Args("$p = PATH @HOME/file$n").Rets(`(= $p (PATH (path @HOME (cat "file" $n))))`),
		Args("$e = EXISTS a and ISDIR b").
			Rets(`(= $e (and (EXISTS (path "a")) (ISDIR (path "b"))))`),
		Args("if ISFILE a/b { DELETE a/b }").
			Rets(`(if (branch (ISFILE (path "a" "b")) (block (DELETE (path "a" "b")))))`),
		Args("$x = f(READ a, READ b)").
			Rets(`(= $x (call f (READ (path "a")) (READ (path "b"))))`),
	)
}

// Parses code and returns the message and position of the error.
func parseError(code string) (string, diag.Position) {
	_, err := Parse(Source{Name: "[test]", Code: code})
	if err == nil {
		return "", diag.Position{}
	}
	ctx := ErrorContext(err)
	if ctx == nil {
		return "not a parse error: " + err.Error(), diag.Position{}
	}
	if e := diag.UnpackError[LexicalErrorTag](err); e != nil {
		return e.Message, ctx.Position()
	}
	return diag.UnpackError[SyntaxErrorTag](err).Message, ctx.Position()
}

func pos(line, col int) diag.Position { return diag.Position{Line: line, Col: col} }

func TestParse_Errors(t *testing.T) {
	tt.Test(t, tt.Fn("parseError", parseError),
		// Lexical errors.
		Args(`$x = "abc`).Rets("unterminated string", pos(1, 6)),
		Args("$x = 'a\\'").Rets("unterminated string", pos(1, 6)),
		Args("$1x = 1").Rets(`invalid identifier after '$'`, pos(1, 1)),
		Args("$x = 1 ~ 2").Rets(`invalid character '~'`, pos(1, 8)),
		Args("$x =").Rets(`unexpected end of input after '='`, pos(1, 4)),
		Args("$x = % + 1").Rets(`invalid identifier after '%'`, pos(1, 6)),

		// Unclosed constructs are reported at the opening token.
		Args("print(1,\n2").Rets(`unclosed "("`, pos(1, 6)),
		Args("$x = (1 + 2").Rets(`unclosed "("`, pos(1, 6)),
		Args("if true {\n  print(1)\n").Rets(`unclosed "{"`, pos(1, 9)),

		// Structure.
		Args("f(1,)").Rets("trailing comma in argument list", pos(1, 4)),
		Args("f(,1)").Rets("missing value in argument list", pos(1, 3)),
		Args("$x = (1; 2)").Rets("unexpected ';' in expression", pos(1, 8)),
		Args("$x = (if)").Rets(`unexpected "if" in expression`, pos(1, 7)),
		Args("$x = 1)").Rets(`unexpected ")"`, pos(1, 7)),
		Args("func f($a = 1, $b) {}").Rets("parameter $b must have a default value", pos(1, 16)),
		Args("func f($a = 1, ...$r) {}").
			Rets("rest parameter cannot be combined with default values", pos(1, 16)),
		Args("func f(...$r, $a) {}").Rets("rest parameter must be the last parameter", pos(1, 15)),
		Args("func f($a, $a) {}").Rets("duplicate parameter $a", pos(1, 12)),
		Args("if true { func f() {} }").Rets("functions can only be defined at top level", pos(1, 11)),
		Args("func () {}").Rets("expected function name after func", pos(1, 1)),
		Args("else { }").Rets("else without if", pos(1, 1)),
		Args("if true { } else { } elif false { }").Rets("elif after else", pos(1, 22)),
		Args("while true\nprint(1)").Rets(`expected '{' after while, got newline`, pos(1, 11)),
		Args("for x in y { }").Rets(`expected loop variable after for, got "x"`, pos(1, 5)),
		Args("for $x y { }").Rets(`expected 'in', got "y"`, pos(1, 8)),
		Args("WRITE 1").Rets("expected TO after WRITE, got end of input", pos(1, 8)),
		Args("COPY a b").Rets(`expected TO after COPY, got "b"`, pos(1, 8)),
		Args("x TO y").Rets("unexpected TO", pos(1, 3)),
		Args("DELETE\n").Rets("expected path after DELETE, got newline", pos(1, 7)),
		Args(`DELETE "a/b"`).Rets("path segment must not contain '/' or newline", pos(1, 8)),

		// Tree building.
		Args("1").Rets(`"1" is not a statement`, pos(1, 1)),
		Args("(f())").Rets(`"(f())" is not a statement`, pos(1, 1)),
		Args("$a + 1").Rets(`operator "+" is not a statement`, pos(1, 4)),
		Args("$x = 1 $y = 2").Rets(`expected newline or ';' before "$y"`, pos(1, 8)),
		Args("$x = * 2").Rets(`unexpected "*"`, pos(1, 6)),
		Args("$x = 1 +").Rets("unexpected end of input", pos(1, 9)),
		Args("$x = 1 +;").Rets(`unexpected ";"`, pos(1, 9)),
		Args("1 = 2").Rets("cannot assign to 1", pos(1, 1)),
		Args("@HOME = 2").Rets("cannot assign to @HOME", pos(1, 1)),
		Args("$x = DELETE a").Rets(`unexpected "DELETE a"`, pos(1, 6)),
		Args("$x = f(break)").Rets(`unexpected "break" in expression`, pos(1, 8)),
		Args("if true { } 1 2").Rets(`expected newline or ';' before "2"`, pos(1, 15)),
		Args("while true { } * 2").Rets(`unexpected "*"`, pos(1, 16)),

		// Checks.
		Args("break").Rets("break outside of a loop", pos(1, 1)),
		Args("if true { continue }").Rets("continue outside of a loop", pos(1, 11)),
		Args("while true { if true { break } }").Rets("", pos(0, 0)),
		Args("while true { func f() { } }").Rets("functions can only be defined at top level", pos(1, 14)),
		Args("func f() { break }").Rets("break outside of a loop", pos(1, 12)),
	)
}

func TestIsPartial(t *testing.T) {
	isPartial := func(code string) bool {
		_, err := Parse(Source{Name: "[test]", Code: code})
		return IsPartial(err)
	}
	tt.Test(t, tt.Fn("isPartial", isPartial),
		Args(`print("abc`).Rets(true),
		Args("if true {").Rets(true),
		Args("$x = (1 +").Rets(true),
		Args("$x = 1 +").Rets(true),
		Args("$x = 1 +\n").Rets(true),
		Args("while true").Rets(true),
		Args("$x = 1").Rets(false),
		Args("$x = 1)").Rets(false),
		Args("1 2").Rets(false),
	)
}
