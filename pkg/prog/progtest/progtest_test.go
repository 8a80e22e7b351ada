package progtest

import (
	"fmt"
	"io"
	"os"
	"testing"

	"src.fsl.sh/pkg/prog"
)

// Verify we don't deadlock if more output is written to stdout than can be
// buffered by a pipe.
func TestOutputCaptureDoesNotDeadlock(t *testing.T) {
	Test(t, noisyProgram{},
		ThatFsl().WritesStdoutContaining("hello"),
	)
}

type noisyProgram struct{}

func (noisyProgram) RegisterFlags(f *prog.FlagSet) {}

func (noisyProgram) Run(fds [3]*os.File, args []string) error {
	// Pipes typically buffer 8 to 128 KiB.
	bytes := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	for i := 0; i < 128*1024/len(bytes); i++ {
		fds[1].Write(bytes)
	}
	fds[1].WriteString("hello")
	return nil
}

func TestStdin(t *testing.T) {
	Test(t, &echoProgram{},
		ThatFsl().WithStdin("some input").WritesStdout("some input"),
		ThatFsl().DoesNothing(),
	)
}

func TestRun(t *testing.T) {
	exit, stdout, stderr := Run(&echoProgram{}, []string{"fsl", "-fail"}, "x")
	if exit != 3 || stdout != "x" || stderr != "failing\n" {
		t.Errorf("Run -> (%v, %q, %q), want (3, \"x\", \"failing\\n\")",
			exit, stdout, stderr)
	}
}

type echoProgram struct{ fail bool }

func (p *echoProgram) RegisterFlags(f *prog.FlagSet) {
	f.BoolVar(&p.fail, "fail", false, "exit with 3")
}

func (p *echoProgram) Run(fds [3]*os.File, args []string) error {
	data, _ := io.ReadAll(fds[0])
	fds[1].Write(data)
	if p.fail {
		fmt.Fprintln(fds[2], "failing")
		return prog.Exit(3)
	}
	return nil
}
