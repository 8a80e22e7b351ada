package parse

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"src.fsl.sh/pkg/diag"
)

// Scan turns source code into primitive tokens. The result always ends with
// an EOF token. A non-nil error is always a *LexicalError.
func Scan(src Source) ([]Token, error) {
	sc := &scanner{src: src, line: 1, col: 1}
	for {
		tok, err := sc.next()
		if err != nil {
			return nil, err
		}
		sc.toks = append(sc.toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return sc.merge(), nil
}

type scanner struct {
	src  Source
	pos  int
	line int
	col  int
	toks []Token
}

const eof rune = -1

func (sc *scanner) peek() rune { return sc.peekAt(0) }

// Returns the rune that starts n bytes after the current position.
func (sc *scanner) peekAt(n int) rune {
	if sc.pos+n >= len(sc.src.Code) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(sc.src.Code[sc.pos+n:])
	return r
}

func (sc *scanner) advance() rune {
	if sc.pos >= len(sc.src.Code) {
		return eof
	}
	r, size := utf8.DecodeRuneInString(sc.src.Code[sc.pos:])
	sc.pos += size
	if r == '\n' {
		sc.line++
		sc.col = 1
	} else {
		sc.col++
	}
	return r
}

func (sc *scanner) errorf(from int, partial bool, format string, args ...any) error {
	to := from + 1
	if to > len(sc.src.Code) {
		to = len(sc.src.Code)
	}
	return &LexicalError{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(sc.src.Name, sc.src.Code, diag.Ranging{From: from, To: to}),
		Partial: partial,
	}
}

func (sc *scanner) next() (Token, error) {
	sc.skipSpaces()
	start, pos := sc.pos, Pos{Line: sc.line, Col: sc.col}
	token := func(kind TokenKind, payload Payload) Token {
		return Token{kind, pos, diag.Ranging{From: start, To: sc.pos},
			sc.src.Code[start:sc.pos], payload}
	}

	r := sc.advance()
	switch {
	case r == eof:
		return token(EOF, nil), nil
	case r == '\n' || r == ';':
		return token(Terminator, nil), nil
	case r == '"' || r == '\'':
		s, err := sc.scanString(r, start)
		if err != nil {
			return Token{}, err
		}
		return token(String, StringValue{s}), nil
	case isDigit(r) || (r == '.' && isDigit(sc.peek())):
		sc.scanNumber(r)
		f, err := strconv.ParseFloat(sc.src.Code[start:sc.pos], 64)
		if err != nil {
			return Token{}, sc.errorf(start, false, "invalid number %q", sc.src.Code[start:sc.pos])
		}
		return token(Number, NumberValue{f}), nil
	case isWordStart(r):
		sc.scanWord()
		if keywords[sc.src.Code[start:sc.pos]] {
			return token(Keyword, nil), nil
		}
		return token(Symbol, nil), nil
	case r == '$' && sc.peek() == '(':
		sc.advance()
		return token(SubExprStart, nil), nil
	case r == '$' || r == '%' || r == '@':
		nameStart := sc.pos
		sc.scanWord()
		name := sc.src.Code[nameStart:sc.pos]
		if name == "" || isDigit(rune(name[0])) {
			return Token{}, sc.errorf(start, false, "invalid identifier after %q", r)
		}
		return token(sigilKinds[r], Name{name}), nil
	case r == '=' || r == '!' || r == '<' || r == '>':
		if sc.peek() == eof {
			return Token{}, sc.errorf(start, true, "unexpected end of input after %q", r)
		}
		if sc.peek() == '=' {
			sc.advance()
		}
		return token(Operator, nil), nil
	case strings.ContainsRune("+-*/", r):
		return token(Operator, nil), nil
	}

	kind, ok := punctuations[r]
	if !ok {
		return Token{}, sc.errorf(start, false, "invalid character %q", r)
	}
	return token(kind, nil), nil
}

var sigilKinds = map[rune]TokenKind{
	'$': Variable, '%': Constant, '@': EnvVariable,
}

var punctuations = map[rune]TokenKind{
	',': Comma, '(': LParen, ')': RParen, '{': LBrace, '}': RBrace, '.': Period,
}

// Skips whitespace other than newlines, and comments.
func (sc *scanner) skipSpaces() {
	for {
		switch r := sc.peek(); {
		case r == '#':
			for sc.peek() != '\n' && sc.peek() != eof {
				sc.advance()
			}
		case r != '\n' && r != eof && unicode.IsSpace(r):
			sc.advance()
		default:
			return
		}
	}
}

var escapes = map[rune]rune{
	'n': '\n', 't': '\t', 'r': '\r', '0': 0,
}

func (sc *scanner) scanString(quote rune, start int) (string, error) {
	var sb strings.Builder
	for {
		r := sc.advance()
		switch r {
		case eof:
			return "", sc.errorf(start, true, "unterminated string")
		case quote:
			return sb.String(), nil
		case '\\':
			r = sc.advance()
			if r == eof {
				return "", sc.errorf(start, true, "unterminated string")
			}
			if unescaped, ok := escapes[r]; ok {
				r = unescaped
			}
		}
		sb.WriteRune(r)
	}
}

func (sc *scanner) scanNumber(first rune) {
	if first != '.' {
		for isDigit(sc.peek()) {
			sc.advance()
		}
		if sc.peek() != '.' || !isDigit(sc.peekAt(1)) {
			return
		}
		sc.advance()
	}
	for isDigit(sc.peek()) {
		sc.advance()
	}
}

func (sc *scanner) scanWord() {
	for isWordRune(sc.peek()) {
		sc.advance()
	}
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isWordStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isWordRune(r rune) bool { return isWordStart(r) || unicode.IsDigit(r) }

// Merges "func" followed by a name into a FuncName token, and three adjacent
// periods into an Ellipsis token.
func (sc *scanner) merge() []Token {
	toks := sc.toks
	merged := make([]Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.isKeyword("func") && toks[i+1].Kind == Symbol:
			name := toks[i+1]
			r := diag.MixedRanging(t, name)
			merged = append(merged, Token{FuncName, t.Pos, r,
				sc.src.Code[r.From:r.To], Name{name.Text}})
			i++
		case t.Kind == Period && i+2 < len(toks) &&
			toks[i+1].Kind == Period && toks[i+2].Kind == Period &&
			adjacent(t, toks[i+1]) && adjacent(toks[i+1], toks[i+2]):
			merged = append(merged, Token{Ellipsis, t.Pos,
				diag.MixedRanging(t, toks[i+2]), "...", nil})
			i += 2
		default:
			merged = append(merged, t)
		}
	}
	return merged
}
