package shell

import (
	"testing"

	"src.fsl.sh/pkg/must"
	. "src.fsl.sh/pkg/prog/progtest"
	"src.fsl.sh/pkg/testutil"
)

func TestScript(t *testing.T) {
	testutil.Unsetenv(t, EnvConfig)
	testutil.InTempDir(t)
	must.WriteFile("hello.fsl", `print("hello")`)
	must.WriteFile("args.fsl", `for $a in @ARGS { print($a) }`)
	must.WriteFile("invalid-utf8.fsl", "\xff")

	Test(t, &Program{},
		ThatFsl("hello.fsl").WritesStdout("hello\n"),
		ThatFsl("-c", `print("hello")`).WritesStdout("hello\n"),
		ThatFsl("args.fsl", "a", "b").WritesStdout("a\nb\n"),
		ThatFsl("-c", "print(len(@ARGS))", "x").WritesStdout("1\n"),

		ThatFsl("invalid-utf8.fsl").
			ExitsWith(2).
			WritesStderrContaining("cannot read script"),
		ThatFsl("non-existent.fsl").
			ExitsWith(2).
			WritesStderrContaining("cannot read script"),

		// parse error
		ThatFsl("-c", "$x = 1 ~ 2").
			ExitsWith(2).
			WritesStderrContaining("Lexical error: invalid character '~'"),
		// parse error with -compileonly
		ThatFsl("-compileonly", "-c", "$x = 1 ~ 2").
			ExitsWith(2).
			WritesStderrContaining("Lexical error"),
		// parse error with -compileonly -json
		ThatFsl("-compileonly", "-json", "-c", "$x = 1 ~ 2").
			ExitsWith(2).
			WritesStdout(`[{"fileName":"code from -c","start":7,"end":8,"line":1,"col":8,"message":"invalid character '~'"}]` + "\n"),
		ThatFsl("-compileonly", "-json", "-c", "$x = 1").
			WritesStdout("[]\n"),
		ThatFsl("-compileonly", "-ast", "-c", "$x = 1 + 2").
			WritesStdout("(= $x (+ 1 2))\n"),

		// runtime error
		ThatFsl("-c", "$x = 1 + true").
			ExitsWith(2).
			WritesStdout("").
			WritesStderrContaining("Exception: "),
		// runtime error with -compileonly
		ThatFsl("-compileonly", "-c", "$x = 1 + true").
			ExitsWith(0),

		// exit
		ThatFsl("-c", "exit(3)").ExitsWith(3),
		ThatFsl("-c", `print("a")`+"\n"+"exit(0)"+"\n"+`print("b")`).
			WritesStdout("a\n"),

		// bad usage
		ThatFsl("-c").
			ExitsWith(2).
			WritesStderrContaining("-c requires an argument"),
		ThatFsl("-json", "-c", "1").
			ExitsWith(2).
			WritesStderrContaining("-json can only be used with -compileonly or a journal query"),
		ThatFsl("-ast", "-c", "1").
			ExitsWith(2).
			WritesStderrContaining("-ast can only be used with -compileonly"),
		ThatFsl("-compileonly").
			ExitsWith(2).
			WritesStderrContaining("-compileonly requires a script or -c"),
		ThatFsl("-watch", "-c", "1").
			ExitsWith(2).
			WritesStderrContaining("-watch requires a script file"),
	)
}

func TestScript_Config(t *testing.T) {
	testutil.Unsetenv(t, EnvConfig)
	testutil.InTempDir(t)
	testutil.ApplyDir(testutil.Dir{
		"conf": testutil.Dir{
			"fsl.yaml": "root: ../work\nenv: {GREETING: hi}\npermissions: {allow_write: [../work/out]}\n",
		},
		"work": testutil.Dir{"out": testutil.Dir{}},
		"fsl.yaml": "env: {GREETING: default}\n",
	})

	Test(t, &Program{},
		ThatFsl("-config", "conf/fsl.yaml", "-c", "print(@GREETING)").
			WritesStdout("hi\n"),
		ThatFsl("-config", "conf/fsl.yaml", "-c", `WRITE "x" TO out/x`).
			DoesNothing(),
		ThatFsl("-config", "conf/fsl.yaml", "-c", `WRITE "x" TO y`).
			ExitsWith(2).
			WritesStderrContaining("Exception: "),
		ThatFsl("-config", "nope.yaml", "-c", "1").
			ExitsWith(2).
			WritesStderrContaining("failed to read config"),
		// fsl.yaml in the working directory
		ThatFsl("-c", "print(@GREETING)").WritesStdout("default\n"),
	)
	if got := must.ReadFileString("work/out/x"); got != "x" {
		t.Errorf("work/out/x = %q, want %q", got, "x")
	}

	testutil.Setenv(t, EnvConfig, "conf/fsl.yaml")
	Test(t, &Program{},
		ThatFsl("-c", "print(@GREETING)").WritesStdout("hi\n"),
	)
	testutil.Setenv(t, EnvConfig, "nope.yaml")
	Test(t, &Program{},
		ThatFsl("-c", "1").
			ExitsWith(2).
			WritesStderrContaining("$FSL_CONFIG file not found: nope.yaml"),
	)
}
