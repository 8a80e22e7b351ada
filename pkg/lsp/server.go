package lsp

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/eval"
	"src.fsl.sh/pkg/parse"
	"src.fsl.sh/pkg/strutil"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	mu      sync.Mutex
	content map[lsp.DocumentURI]string
}

func newServer() *server {
	return &server{content: make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		// Required by spec.
		"initialized": noop,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			logger.Println("unsupported method", req.Method)
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			CompletionProvider: &lsp.CompletionOptions{
				TriggerCharacters: []string{"$", "%", "@"},
			},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.setContent(uri, content)
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	uri, content := params.TextDocument.URI, params.ContentChanges[0].Text
	s.setContent(uri, content)
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.content, params.TextDocument.URI)
	return nil, nil
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return lsp.Hover{}, nil
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	content := s.getContent(params.TextDocument.URI)
	dot := lspPositionToIdx(content, params.Position)
	start := strutil.WordStart(content, dot)
	word := content[start:dot]

	var sigil string
	if word != "" && (word[0] == '$' || word[0] == '%' || word[0] == '@') {
		sigil, word = word[:1], word[1:]
	}
	var candidates []string
	var kind lsp.CompletionItemKind
	switch sigil {
	case "@":
		// Environment bindings are only known to the host.
		return []lsp.CompletionItem{}, nil
	case "$", "%":
		candidates = declaredVariables(content)
		kind = lsp.CIKVariable
	default:
		candidates = append(parse.Keywords(), eval.BuiltinNames()...)
		candidates = append(candidates, declaredFunctions(content)...)
		kind = lsp.CIKFunction
	}

	lspRange := lspRangeFromRange(content, diag.Ranging{From: start, To: dot})
	items := []lsp.CompletionItem{}
	for _, c := range dedup(strutil.FilterPrefix(candidates, word)) {
		itemKind := kind
		if parse.IsKeyword(c) {
			itemKind = lsp.CIKKeyword
		}
		items = append(items, lsp.CompletionItem{
			Label: sigil + c,
			Kind:  itemKind,
			TextEdit: &lsp.TextEdit{
				Range:   lspRange,
				NewText: sigil + c,
			},
		})
	}
	return items, nil
}

func (s *server) setContent(uri lsp.DocumentURI, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[uri] = content
}

func (s *server) getContent(uri lsp.DocumentURI) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content[uri]
}

func publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics(uri, content)})
}

func diagnostics(uri lsp.DocumentURI, content string) []lsp.Diagnostic {
	_, err := parse.Parse(parse.Source{Name: string(uri), Code: content})
	ctx := parse.ErrorContext(err)
	if ctx == nil {
		return []lsp.Diagnostic{}
	}
	source, message := "parse", err.Error()
	if e := diag.UnpackError[parse.LexicalErrorTag](err); e != nil {
		source, message = "lexer", e.Message
	} else if e := diag.UnpackError[parse.SyntaxErrorTag](err); e != nil {
		message = e.Message
	}
	return []lsp.Diagnostic{{
		Range:    lspRangeFromRange(content, ctx),
		Severity: lsp.Error,
		Source:   source,
		Message:  message,
	}}
}

// Names of functions defined in content, if it parses.
func declaredFunctions(content string) []string {
	chunk, err := parse.Parse(parse.Source{Code: content})
	if err != nil {
		return nil
	}
	var names []string
	for _, def := range chunk.Funcs {
		names = append(names, def.Name)
	}
	return names
}

// Names declared with a sigil at the top level of content, if it parses.
func declaredVariables(content string) []string {
	chunk, err := parse.Parse(parse.Source{Code: content})
	if err != nil {
		return nil
	}
	var names []string
	for _, stmt := range chunk.Stmts {
		if a, ok := stmt.(*parse.Assign); ok && a.Target.Sigil != parse.NoSigil {
			names = append(names, a.Target.Name)
		}
	}
	return names
}

func dedup(names []string) []string {
	sort.Strings(names)
	var result []string
	for i, name := range names {
		if i == 0 || name != names[i-1] {
			result = append(result, name)
		}
	}
	return result
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if !lastCR {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// One UTF-16 unit.
			p.Character++
		default:
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
