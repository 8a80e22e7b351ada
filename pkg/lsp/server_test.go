package lsp

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.fsl.sh/pkg/tt"
)

var diagTests = []struct {
	name     string
	text     string
	wantDiag []lsp.Diagnostic
}{
	{"empty", "", []lsp.Diagnostic{}},
	{"no error", `print("x")`, []lsp.Diagnostic{}},
	{"lexical error", "$x = 1 ~ 2", []lsp.Diagnostic{{
		Range:    lspRange(0, 7, 0, 8),
		Severity: lsp.Error, Source: "lexer", Message: "invalid character '~'",
	}}},
	{"syntax error on second line", "$x = 1\nif true {", []lsp.Diagnostic{{
		Range:    lspRange(1, 8, 1, 9),
		Severity: lsp.Error, Source: "parse", Message: `unclosed "{"`,
	}}},
}

func TestDiagnostics(t *testing.T) {
	for _, test := range diagTests {
		t.Run(test.name, func(t *testing.T) {
			got := diagnostics("file:///foo", test.text)
			if diff := cmp.Diff(test.wantDiag, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestPositions(t *testing.T) {
	s := "ab\r\nc😀d\né"
	tt.Test(t, tt.Fn("lspPositionFromIdx", func(i int) lsp.Position {
		return lspPositionFromIdx(s, i)
	}),
		tt.Args(0).Rets(lsp.Position{Line: 0, Character: 0}),
		tt.Args(2).Rets(lsp.Position{Line: 0, Character: 2}),
		tt.Args(4).Rets(lsp.Position{Line: 1, Character: 0}),
		// The emoji takes two UTF-16 units.
		tt.Args(9).Rets(lsp.Position{Line: 1, Character: 3}),
		tt.Args(11).Rets(lsp.Position{Line: 2, Character: 0}),
	)
	tt.Test(t, tt.Fn("lspPositionToIdx", func(p lsp.Position) int {
		return lspPositionToIdx(s, p)
	}),
		tt.Args(lsp.Position{Line: 1, Character: 3}).Rets(9),
		tt.Args(lsp.Position{Line: 2, Character: 1}).Rets(len(s)),
	)
}

// A client connected to a server over an in-memory pipe.
type client struct {
	conn  *jsonrpc2.Conn
	diags chan lsp.PublishDiagnosticsParams
}

func setup(t *testing.T) *client {
	ctx, cancel := context.WithCancel(context.Background())
	serverSide, clientSide := net.Pipe()
	serverConn := serve(ctx, serverSide)

	diags := make(chan lsp.PublishDiagnosticsParams, 10)
	clientConn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
			if req.Method == "textDocument/publishDiagnostics" {
				var params lsp.PublishDiagnosticsParams
				json.Unmarshal(*req.Params, &params)
				diags <- params
			}
			return nil, nil
		}))
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
		cancel()
	})
	return &client{clientConn, diags}
}

func (c *client) call(t *testing.T, method string, params, result any) error {
	t.Helper()
	return c.conn.Call(context.Background(), method, params, result)
}

func (c *client) nextDiags(t *testing.T) lsp.PublishDiagnosticsParams {
	t.Helper()
	select {
	case d := <-c.diags:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for diagnostics")
		return lsp.PublishDiagnosticsParams{}
	}
}

func TestServer_Initialize(t *testing.T) {
	c := setup(t)
	var result lsp.InitializeResult
	if err := c.call(t, "initialize", lsp.InitializeParams{}, &result); err != nil {
		t.Fatal(err)
	}
	if result.Capabilities.CompletionProvider == nil {
		t.Errorf("completion is not advertised")
	}
}

func TestServer_Diagnostics(t *testing.T) {
	c := setup(t)
	c.call(t, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: "file:///a.fsl", Text: "$x = 1 ~ 2"}}, nil)
	d := c.nextDiags(t)
	if d.URI != "file:///a.fsl" || len(d.Diagnostics) != 1 {
		t.Errorf("got diagnostics %+v, want one for file:///a.fsl", d)
	}

	c.call(t, "textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: "file:///a.fsl"}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "$x = 1"}}}, nil)
	d = c.nextDiags(t)
	if len(d.Diagnostics) != 0 {
		t.Errorf("got diagnostics %+v after fix, want none", d.Diagnostics)
	}
}

func TestServer_Completion(t *testing.T) {
	c := setup(t)
	text := "func greet { }\n$name = 1\n%nick = 2\npr()"
	c.call(t, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: "file:///a.fsl", Text: text}}, nil)
	c.nextDiags(t)

	complete := func(line, char int) []string {
		t.Helper()
		var items []lsp.CompletionItem
		err := c.call(t, "textDocument/completion", lsp.CompletionParams{
			TextDocumentPositionParams: lsp.TextDocumentPositionParams{
				TextDocument: lsp.TextDocumentIdentifier{URI: "file:///a.fsl"},
				Position:     lsp.Position{Line: line, Character: char}}}, &items)
		if err != nil {
			t.Fatal(err)
		}
		var labels []string
		for _, item := range items {
			labels = append(labels, item.Label)
		}
		return labels
	}

	if diff := cmp.Diff([]string{"print"}, complete(3, 2)); diff != "" {
		t.Errorf("completing pr (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"greet"}, complete(0, 7)); diff != "" {
		t.Errorf("completing gr (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"$name", "$nick"}, complete(1, 1)); diff != "" {
		t.Errorf("completing $ (-want +got):\n%s", diff)
	}
}

func TestServer_UnknownMethod(t *testing.T) {
	c := setup(t)
	err := c.call(t, "textDocument/rename", struct{}{}, nil)
	if err == nil || err.Error() != errMethodNotFound.Error() {
		t.Errorf("got error %v, want %v", err, errMethodNotFound)
	}
}

func lspRange(l1, c1, l2, c2 int) lsp.Range {
	return lsp.Range{
		Start: lsp.Position{Line: l1, Character: c1},
		End:   lsp.Position{Line: l2, Character: c2},
	}
}
