// Package lsp implements a language server for fsl.
package lsp

import (
	"context"
	"io"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"src.fsl.sh/pkg/errutil"
	"src.fsl.sh/pkg/logutil"
	"src.fsl.sh/pkg/prog"
)

var logger = logutil.GetLogger("[lsp] ")

// Program is the LSP subprogram.
type Program struct {
	run bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "lsp", false, "run language server instead of shell")
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	<-serve(context.Background(), stdio{fds[0], fds[1]}).DisconnectNotify()
	logger.Println("client disconnected")
	return nil
}

// Starts serving one client over rw.
func serve(ctx context.Context, rw io.ReadWriteCloser) *jsonrpc2.Conn {
	stream := jsonrpc2.NewBufferedStream(rw, jsonrpc2.VSCodeObjectCodec{})
	return jsonrpc2.NewConn(ctx, stream, handler(newServer()))
}

// Joins stdin and stdout into one stream.
type stdio struct {
	io.ReadCloser
	out io.WriteCloser
}

func (s stdio) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s stdio) Close() error {
	return errutil.Multi(s.ReadCloser.Close(), s.out.Close())
}
