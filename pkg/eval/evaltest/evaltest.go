// Package evaltest provides a framework for testing fsl scripts.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T and any number of test cases.
//
// Test cases are constructed using the That function, followed by method calls
// that add additional information to it.
//
// Example:
//
//	Test(t,
//	    That("return 1 + 2").Returns(3.0),
//	    That("print(1)").Prints("1\n"))
//
// Every test case runs in a fresh Evaler whose sandbox is rooted in a new
// temporary directory. If some setup is needed, use the TestWithSetup
// function or the WithSetup method.
package evaltest

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.fsl.sh/pkg/eval"
	"src.fsl.sh/pkg/eval/vals"
	"src.fsl.sh/pkg/fsop"
	"src.fsl.sh/pkg/must"
	"src.fsl.sh/pkg/parse"
	"src.fsl.sh/pkg/testutil"
	"src.fsl.sh/pkg/tt"
)

// Case is a test case that can be used in Test.
type Case struct {
	codes  []string
	setup  func(ev *eval.Evaler)
	files  testutil.Dir
	perms  fsop.Permissions
	verify func(t *testing.T, root string)
	want   result
}

type result struct {
	Value  any
	Output string

	CompilationError error
	Exception        error
	Exit             *int
	// Layout of the sandbox root after the run. Not checked when nil.
	Files testutil.Dir
}

// That returns a new Case with the specified source code. Multiple arguments
// are joined with newlines. To specify multiple pieces of code that are
// executed separately, use the Then method to append code pieces.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "return 1" returns 1 reads:
//
//	That("return 1").Returns(1.0)
func That(lines ...string) Case {
	return Case{codes: []string{strings.Join(lines, "\n")}}
}

// Then returns a new Case that executes the given code in addition. Multiple
// arguments are joined with newlines. All pieces share the same Evaler, and
// the result of the last piece is checked.
func (c Case) Then(lines ...string) Case {
	c.codes = append(c.codes, strings.Join(lines, "\n"))
	return c
}

// WithSetup returns a new Case with the given setup function executed on the
// Evaler before the code is executed.
func (c Case) WithSetup(f func(*eval.Evaler)) Case {
	c.setup = f
	return c
}

// WithFiles returns a new Case that creates the given layout in the sandbox
// root before the code is executed.
func (c Case) WithFiles(dir testutil.Dir) Case {
	c.files = dir
	return c
}

// WithPermissions returns a new Case whose sandbox uses the given
// permissions. Relative paths in them resolve against the sandbox root.
func (c Case) WithPermissions(perms fsop.Permissions) Case {
	c.perms = perms
	return c
}

// DoesNothing returns t unchanged. It is useful to mark tests that don't have
// any side effects, for example:
//
//	That("$x = 1").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// Passes returns an altered Case that runs an additional verification
// function, which receives the sandbox root.
func (c Case) Passes(f func(t *testing.T, root string)) Case {
	c.verify = f
	return c
}

// Returns returns an altered Case that requires the source code to evaluate
// to the given value. The value may be a ValueMatcher.
func (c Case) Returns(v any) Case {
	c.want.Value = v
	return c
}

// Prints returns an altered Case that requires the source code to produce the
// specified output.
func (c Case) Prints(s string) Case {
	c.want.Output = s
	return c
}

// Throws returns an altered Case that requires the source code to throw an
// exception with the given reason. The reason supports special matcher values
// constructed by functions like ErrorWithMessage.
//
// If at least one function name is given, the stack trace of the exception
// must consist of calls to these functions, innermost first.
func (c Case) Throws(reason error, calls ...string) Case {
	c.want.Exception = exc{reason, calls}
	return c
}

// DoesNotCompile returns an altered Case that requires the source code to fail
// parsing. If messages are given, the error must have one of them.
func (c Case) DoesNotCompile(msgs ...string) Case {
	c.want.CompilationError = parseError{msgs}
	return c
}

// Exits returns an altered Case that requires the source code to exit with
// the given code.
func (c Case) Exits(code int) Case {
	c.want.Exit = &code
	return c
}

// LeavesFiles returns an altered Case that requires the sandbox root to have
// the given layout after the code is executed.
func (c Case) LeavesFiles(dir testutil.Dir) Case {
	c.want.Files = dir
	return c
}

// Test runs test cases. For each test case, a new Evaler is created with
// NewEvaler.
func Test(t *testing.T, tests ...Case) {
	t.Helper()
	TestWithSetup(t, func(*eval.Evaler) {}, tests...)
}

// TestWithSetup runs test cases. For each test case, a new Evaler is created
// with NewEvaler and passed to the setup function.
func TestWithSetup(t *testing.T, setup func(*eval.Evaler), tests ...Case) {
	t.Helper()
	for _, tc := range tests {
		t.Run(strings.Join(tc.codes, "\n"), func(t *testing.T) {
			t.Helper()
			root := testutil.TempDir(t)
			testutil.ApplyDirIn(tc.files, root)
			sb := must.OK1(fsop.NewSandbox(root, tc.perms))
			sb.TempDir = testutil.TempDir(t)
			ev := eval.NewEvaler(sb)
			setup(ev)
			if tc.setup != nil {
				tc.setup(ev)
			}

			r := evalAndCollect(ev, tc.codes)

			if tc.verify != nil {
				tc.verify(t, root)
			}
			if !match(r.Value, tc.want.Value, root) {
				t.Errorf("got value %s, want %s",
					vals.Repr(r.Value), reprWant(tc.want.Value))
			}
			if r.Output != tc.want.Output {
				t.Errorf("got output %q, want %q", r.Output, tc.want.Output)
			}
			if !matchErr(tc.want.CompilationError, r.CompilationError) {
				t.Errorf("got compilation error %v, want %v",
					r.CompilationError, tc.want.CompilationError)
			}
			if !matchErr(tc.want.Exception, r.Exception) {
				t.Errorf("unexpected exception")
				if exc := (*eval.Exception)(nil); errors.As(r.Exception, &exc) {
					// For an *eval.Exception report the type of the underlying error.
					t.Logf("got: %T: %v", exc.Reason, exc)
					t.Logf("stack trace: %#v", exc.Calls())
				} else {
					t.Logf("got: %T: %v", r.Exception, r.Exception)
				}
				t.Errorf("want: %v", tc.want.Exception)
			}
			if !reflect.DeepEqual(tc.want.Exit, r.Exit) {
				t.Errorf("got exit %v, want %v", fmtExit(r.Exit), fmtExit(tc.want.Exit))
			}
			if tc.want.Files != nil {
				if diff := cmp.Diff(tc.want.Files, testutil.ReadDirLayout(root), tt.CommonCmpOpt); diff != "" {
					t.Errorf("files in sandbox (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func evalAndCollect(ev *eval.Evaler, texts []string) result {
	var r result
	var output strings.Builder
	ev.Stdout = &output

	for _, text := range texts {
		value, err := ev.Eval(parse.Source{Name: "[test]", Code: text})
		r.Value = value

		var exit *eval.ExitSignal
		switch {
		case err == nil:
		case parse.ErrorContext(err) != nil:
			// NOTE: If multiple code pieces have compilation errors, only the
			// last one compilation error is saved.
			r.CompilationError = err
		case errors.As(err, &exit):
			code := exit.Code
			r.Exit = &code
		default:
			// NOTE: If multiple code pieces throw exceptions, only the last one
			// is saved.
			r.Exception = err
		}
	}

	r.Output = output.String()
	return r
}

func matchErr(want, got error) bool {
	if want == nil {
		return got == nil
	}
	if matcher, ok := want.(errorMatcher); ok {
		return matcher.matchError(got)
	}
	return reflect.DeepEqual(want, got)
}

func fmtExit(code *int) any {
	if code == nil {
		return "none"
	}
	return *code
}
