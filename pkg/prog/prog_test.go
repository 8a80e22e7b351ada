package prog_test

import (
	"os"
	"strings"
	"testing"

	. "src.fsl.sh/pkg/prog"
	"src.fsl.sh/pkg/prog/progtest"
	"src.fsl.sh/pkg/testutil"
)

var (
	Test    = progtest.Test
	ThatFsl = progtest.ThatFsl
)

func TestCommonFlagHandling(t *testing.T) {
	testutil.InTempDir(t)

	Test(t, &testProgram{},
		ThatFsl("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatFsl("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatFsl("-help").
			WritesStdoutContaining("Usage: fsl [flags] [script] [args...]"),

		ThatFsl("-log", "log").DoesNothing(),
		ThatFsl("-log", "/a/bad/path/log").
			WritesStderrContaining("no such file or directory"),
	)

	if _, err := os.Stat("log"); err != nil {
		t.Errorf("log file does not exist: %v", err)
	}
}

func TestSharedFlags(t *testing.T) {
	p1, p2 := &testProgram{nextProgram: true}, &testProgram{}
	Test(t, Composite(p1, p2),
		ThatFsl("-json", "-config", "c.yaml").DoesNothing(),
	)
	if !*p1.json || !*p2.json || *p1.config != "c.yaml" || *p2.config != "c.yaml" {
		t.Errorf("shared flags are not shared")
	}
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, &testProgram{nextProgram: true},
		ThatFsl().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(&testProgram{nextProgram: true}, &testProgram{writeOut: "program 2"}),
		ThatFsl().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(&testProgram{nextProgram: true}, &testProgram{nextProgram: true}),
		ThatFsl().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	Test(t,
		Composite(
			&testProgram{writeOut: "program 1"}, &testProgram{writeOut: "program 2"}),
		ThatFsl().WritesStdout("program 1"),
	)
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		&testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatFsl().ExitsWith(2).WritesStderrContaining("lorem ipsum\n"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, &testProgram{returnErr: Exit(3)},
		ThatFsl().ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, &testProgram{returnErr: Exit(0)},
		ThatFsl().ExitsWith(0),
	)
}

func TestArgs(t *testing.T) {
	p := &testProgram{}
	Test(t, p, ThatFsl("-json", "a", "-b").DoesNothing())
	if got := strings.Join(p.args, " "); got != "a -b" {
		t.Errorf("got args %q, want %q", got, "a -b")
	}
}

type testProgram struct {
	nextProgram bool
	writeOut    string
	returnErr   error

	json   *bool
	config *string
	args   []string
}

func (p *testProgram) RegisterFlags(f *FlagSet) {
	p.json = f.JSON()
	p.config = f.Config()
}

func (p *testProgram) Run(fds [3]*os.File, args []string) error {
	p.args = args
	if p.nextProgram {
		return ErrNextProgram
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}
