// Package parse implements the front end of the fsl language.
//
// Parsing happens in three passes. The scanner turns source text into
// primitive tokens. The structurer groups primitive tokens into structured
// tokens: parenthesized expressions, blocks, calls, function signatures,
// control constructs and file commands, each carrying its already structured
// contents. The tree builder inserts structured tokens into expression trees
// by precedence and freezes finished statements into AST nodes.
package parse

import (
	"fmt"

	"src.fsl.sh/pkg/diag"
)

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
}

// LexicalError is an error found by the scanner.
type LexicalError = diag.Error[LexicalErrorTag]

// LexicalErrorTag parameterizes [diag.Error] to define [LexicalError].
type LexicalErrorTag struct{}

func (LexicalErrorTag) ErrorTag() string { return "lexical error" }

// SyntaxError is an error found by the structurer or the tree builder.
type SyntaxError = diag.Error[SyntaxErrorTag]

// SyntaxErrorTag parameterizes [diag.Error] to define [SyntaxError].
type SyntaxErrorTag struct{}

func (SyntaxErrorTag) ErrorTag() string { return "syntax error" }

// Parse parses the given source. A non-nil error is always a *LexicalError or
// a *SyntaxError.
func Parse(src Source) (*Chunk, error) {
	toks, err := Scan(src)
	if err != nil {
		return nil, err
	}
	ps := &parser{src: src}
	structured, err := ps.structure(toks, topLevel)
	if err != nil {
		return nil, err
	}
	chunk, err := ps.buildChunk(structured)
	if err != nil {
		return nil, err
	}
	if err := ps.check(chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}

// IsPartial reports whether err is a parse error that may be fixed by
// appending more text to the source.
func IsPartial(err error) bool {
	if e := diag.UnpackError[LexicalErrorTag](err); e != nil {
		return e.Partial
	}
	if e := diag.UnpackError[SyntaxErrorTag](err); e != nil {
		return e.Partial
	}
	return false
}

// ErrorContext returns the context of a parse error, or nil if err is not a
// parse error.
func ErrorContext(err error) *diag.Context {
	if e := diag.UnpackError[LexicalErrorTag](err); e != nil {
		return &e.Context
	}
	if e := diag.UnpackError[SyntaxErrorTag](err); e != nil {
		return &e.Context
	}
	return nil
}

// Shared state of the structurer and the tree builder.
type parser struct {
	src Source
}

func (ps *parser) errorf(r diag.Ranger, format string, args ...any) error {
	return &SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(ps.src.Name, ps.src.Code, r),
	}
}

// Like errorf, but marks the error as one that more input may fix.
func (ps *parser) partialf(r diag.Ranger, format string, args ...any) error {
	return &SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(ps.src.Name, ps.src.Code, r),
		Partial: true,
	}
}
