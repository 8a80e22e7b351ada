// Fsl runs file scripts: small programs that read, write, copy and move files
// inside a sandbox, and roll every change back when the script fails.
package main

import (
	"os"

	"src.fsl.sh/pkg/buildinfo"
	"src.fsl.sh/pkg/lsp"
	"src.fsl.sh/pkg/prog"
	"src.fsl.sh/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(&buildinfo.Program{}, &lsp.Program{}, &shell.Program{})))
}
