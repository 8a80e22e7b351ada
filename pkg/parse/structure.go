package parse

import (
	"strings"

	"src.fsl.sh/pkg/diag"
)

// Where a token sequence being structured appears.
type level int

const (
	// Top level of a source; the only place function definitions may appear.
	topLevel level = iota
	// Body of a brace block.
	blockLevel
	// A single expression, like the content of parentheses or a call
	// argument.
	exprLevel
)

// Keywords that can only start a statement, and are rejected in expressions.
var statementKeywords = map[string]bool{
	"if": true, "elif": true, "else": true, "while": true, "for": true,
	"func": true, "break": true, "continue": true, "return": true,
}

// Groups a sequence of primitive tokens ending with an EOF token into
// structured tokens. Sub-sequences are structured by recursive calls, each
// ending with a synthetic EOF token placed at the closing token.
func (ps *parser) structure(toks []Token, lv level) ([]Token, error) {
	var out []Token
	last := func() *Token {
		if len(out) == 0 {
			return nil
		}
		return &out[len(out)-1]
	}

	for i := 0; i < len(toks); {
		t := toks[i]
		if lv == exprLevel {
			if err := ps.checkExprToken(t); err != nil {
				return nil, err
			}
			if t.Kind == Terminator {
				// Newlines within an expression are insignificant.
				i++
				continue
			}
		}

		var (
			tok  Token
			next int
			err  error
		)
		switch {
		case t.Kind == EOF:
			out = append(out, t)
			return ps.link(out)
		case t.Kind == LParen || t.Kind == SubExprStart:
			if l := last(); t.Kind == LParen && l != nil && adjacent(*l, t) &&
				(l.Kind == Symbol || l.Kind == Variable || l.Kind == Constant) {
				callee := *l
				out = out[:len(out)-1]
				tok, next, err = ps.call(toks, i, callee)
			} else {
				tok, next, err = ps.group(toks, i)
			}
		case t.Kind == LBrace:
			tok, next, err = ps.block(toks, i)
		case t.Kind == RParen || t.Kind == RBrace:
			return nil, ps.errorf(t, "unexpected %s", t)
		case t.isKeyword("if") && last() != nil && last().Kind == ElseHead:
			elseTok := *last()
			out = out[:len(out)-1]
			tok, next, err = ps.condHead(toks, i, ElifHead)
			if err == nil {
				tok.Pos, tok.Ranging = elseTok.Pos, diag.MixedRanging(elseTok, tok)
				tok.Text = ps.text(elseTok, tok)
			}
		case t.isKeyword("if"):
			tok, next, err = ps.condHead(toks, i, IfHead)
		case t.isKeyword("elif"):
			tok, next, err = ps.condHead(toks, i, ElifHead)
		case t.isKeyword("while"):
			tok, next, err = ps.condHead(toks, i, WhileHead)
		case t.isKeyword("else"):
			tok, next = Token{ElseHead, t.Pos, t.Ranging, t.Text, nil}, i+1
		case t.isKeyword("for"):
			tok, next, err = ps.forHead(toks, i)
		case t.Kind == FuncName:
			if lv != topLevel {
				return nil, ps.errorf(t, "functions can only be defined at top level")
			}
			tok, next, err = ps.funcSig(toks, i)
		case t.isKeyword("func"):
			return nil, ps.errorf(t, "expected function name after func")
		case t.Kind == Keyword && (queryCommands[t.Text] || mutationCommands[t.Text]):
			var pd *PathData
			pd, next, err = ps.path(toks, i+1, t)
			if err == nil {
				tok = Token{Command, t.Pos, diag.MixedRanging(t, pd), ps.text(t, pd),
					&CommandData{Name: t.Text, Path: pd}}
			}
		case t.Kind == Keyword && isDualCommand(t.Text):
			tok, next, err = ps.commandHead(toks, i)
		case t.isKeyword("TO"):
			l := last()
			if l == nil || l.Kind != CommandHead {
				return nil, ps.errorf(t, "unexpected TO")
			}
			tok, next, err = ps.commandTarget(toks, i, l.Payload.(*CommandData).Name)
		default:
			tok, next = t, i+1
		}
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		i = next
	}
	// Not reached: every sequence ends with EOF.
	return ps.link(out)
}

func (ps *parser) checkExprToken(t Token) error {
	switch {
	case t.Kind == Terminator && t.Text == ";":
		return ps.errorf(t, "unexpected ';' in expression")
	case t.Kind == LBrace || t.Kind == FuncName:
		return ps.errorf(t, "unexpected %s in expression", t)
	case t.Kind == Keyword && statementKeywords[t.Text]:
		return ps.errorf(t, "unexpected %s in expression", t)
	}
	return nil
}

func isDualCommand(name string) bool {
	_, ok := dualCommands[name]
	return ok
}

// Returns the source text from the start of a to the end of b.
func (ps *parser) text(a, b diag.Ranger) string {
	return ps.src.Code[a.Range().From:b.Range().To]
}

// Reports whether t is the EOF token at the actual end of the source, as
// opposed to a synthetic one ending a sub-sequence.
func (ps *parser) atEnd(t Token) bool {
	return t.Kind == EOF && t.From == len(ps.src.Code)
}

// Reports an unexpected token. The error is partial if the token is the end
// of the source.
func (ps *parser) expected(t Token, what string) error {
	if ps.atEnd(t) {
		return ps.partialf(t, "expected %s, got %s", what, t)
	}
	return ps.errorf(t, "expected %s, got %s", what, t)
}

// Returns a copy of toks[from:to], terminated with a synthetic EOF token at
// the position of toks[to].
func sub(toks []Token, from, to int) []Token {
	s := make([]Token, to-from, to-from+1)
	copy(s, toks[from:to])
	end := toks[to]
	return append(s, Token{EOF, end.Pos, diag.PointRanging(end.From), "", nil})
}

// Finds the index of the token that closes the opener at toks[i].
func findClose(toks []Token, i int) (int, bool) {
	open, closer := toks[i].Kind, RParen
	if open == LBrace {
		closer = RBrace
	}
	depth := 0
	for j := i; j < len(toks); j++ {
		switch k := toks[j].Kind; {
		case k == closer:
			depth--
			if depth == 0 {
				return j, true
			}
		case k == open || (open != LBrace && (k == LParen || k == SubExprStart)):
			depth++
		}
	}
	return -1, false
}

// Finds the end of an expression starting at toks[i]: the first token at
// parenthesis depth 0 that satisfies stop, or a terminator or EOF.
func findEnd(toks []Token, i int, stop func(Token) bool) int {
	depth := 0
	for j := i; j < len(toks); j++ {
		t := toks[j]
		switch t.Kind {
		case LParen, SubExprStart:
			depth++
		case RParen:
			depth--
		case Terminator, EOF:
			if depth <= 0 {
				return j
			}
		}
		if depth <= 0 && stop(t) {
			return j
		}
	}
	return len(toks) - 1
}

func (ps *parser) unclosed(t Token) error {
	return ps.partialf(t, "unclosed %s", t)
}

func (ps *parser) group(toks []Token, i int) (Token, int, error) {
	t := toks[i]
	j, ok := findClose(toks, i)
	if !ok {
		return Token{}, 0, ps.unclosed(t)
	}
	inner, err := ps.structure(sub(toks, i+1, j), exprLevel)
	if err != nil {
		return Token{}, 0, err
	}
	return Token{ParenGroup, t.Pos, diag.MixedRanging(t, toks[j]),
		ps.text(t, toks[j]), Tokens{inner}}, j + 1, nil
}

func (ps *parser) block(toks []Token, i int) (Token, int, error) {
	t := toks[i]
	j, ok := findClose(toks, i)
	if !ok {
		return Token{}, 0, ps.unclosed(t)
	}
	inner, err := ps.structure(sub(toks, i+1, j), blockLevel)
	if err != nil {
		return Token{}, 0, err
	}
	return Token{BraceGroup, t.Pos, diag.MixedRanging(t, toks[j]),
		ps.text(t, toks[j]), Tokens{inner}}, j + 1, nil
}

// Splits the tokens between the parentheses at toks[open] and toks[closer]
// at commas of depth 0. It returns the index ranges of the parts.
func (ps *parser) splitCommas(toks []Token, open, closer int, what string) ([][2]int, error) {
	if open+1 == closer {
		return nil, nil
	}
	var parts [][2]int
	depth, start := 0, open+1
	for j := open + 1; j <= closer; j++ {
		switch t := toks[j]; t.Kind {
		case LParen, SubExprStart, LBrace:
			depth++
		case RBrace:
			depth--
		case RParen:
			if j < closer {
				depth--
				continue
			}
			fallthrough
		case Comma:
			if depth > 0 {
				continue
			}
			if start == j {
				if t.Kind == RParen {
					return nil, ps.errorf(toks[j-1], "trailing comma in %s", what)
				}
				return nil, ps.errorf(t, "missing value in %s", what)
			}
			parts = append(parts, [2]int{start, j})
			start = j + 1
		}
	}
	return parts, nil
}

func (ps *parser) call(toks []Token, i int, callee Token) (Token, int, error) {
	t := toks[i]
	j, ok := findClose(toks, i)
	if !ok {
		return Token{}, 0, ps.unclosed(t)
	}
	parts, err := ps.splitCommas(toks, i, j, "argument list")
	if err != nil {
		return Token{}, 0, err
	}
	args := make([][]Token, len(parts))
	for k, part := range parts {
		args[k], err = ps.structure(sub(toks, part[0], part[1]), exprLevel)
		if err != nil {
			return Token{}, 0, err
		}
	}
	return Token{CallGroup, callee.Pos, diag.MixedRanging(callee, toks[j]),
		ps.text(callee, toks[j]), &CallData{callee, args}}, j + 1, nil
}

// Captures an expression from toks[i] up to the next '{' at depth 0, and
// structures it.
func (ps *parser) head(toks []Token, i int, t Token) ([]Token, int, error) {
	j := findEnd(toks, i, func(u Token) bool { return u.Kind == LBrace })
	if toks[j].Kind != LBrace {
		return nil, 0, ps.expected(toks[j], "'{' after "+t.Text)
	}
	if j == i {
		return nil, 0, ps.errorf(t, "missing expression after %s", t.Text)
	}
	expr, err := ps.structure(sub(toks, i, j), exprLevel)
	return expr, j, err
}

func (ps *parser) condHead(toks []Token, i int, kind TokenKind) (Token, int, error) {
	t := toks[i]
	cond, j, err := ps.head(toks, i+1, t)
	if err != nil {
		return Token{}, 0, err
	}
	return Token{kind, t.Pos, diag.MixedRanging(t, toks[j-1]),
		ps.text(t, toks[j-1]), Cond{cond}}, j, nil
}

func (ps *parser) forHead(toks []Token, i int) (Token, int, error) {
	t := toks[i]
	v := toks[i+1]
	if v.Kind != Variable && v.Kind != Constant {
		return Token{}, 0, ps.expected(v, "loop variable after for")
	}
	if in := toks[i+2]; !in.isKeyword("in") {
		return Token{}, 0, ps.expected(in, "'in'")
	}
	iter, j, err := ps.head(toks, i+3, toks[i+2])
	if err != nil {
		return Token{}, 0, err
	}
	return Token{ForHead, t.Pos, diag.MixedRanging(t, toks[j-1]),
		ps.text(t, toks[j-1]), &ForData{Var: v, Iter: iter}}, j, nil
}

func (ps *parser) funcSig(toks []Token, i int) (Token, int, error) {
	t := toks[i]
	data := &FuncData{Name: t.Payload.(Name).Name}
	if toks[i+1].Kind != LParen {
		return Token{FuncSig, t.Pos, t.Ranging, t.Text, data}, i + 1, nil
	}
	j, ok := findClose(toks, i+1)
	if !ok {
		return Token{}, 0, ps.unclosed(toks[i+1])
	}
	parts, err := ps.splitCommas(toks, i+1, j, "parameter list")
	if err != nil {
		return Token{}, 0, err
	}
	seen := map[string]bool{}
	hasDefault := false
	for _, part := range parts {
		p, err := ps.param(toks, part[0], part[1])
		if err != nil {
			return Token{}, 0, err
		}
		switch {
		case seen[p.Name]:
			return Token{}, 0, ps.errorf(p, "duplicate parameter %s", p.Text)
		case data.Rest != nil:
			return Token{}, 0, ps.errorf(p, "rest parameter must be the last parameter")
		case p.Kind == Ellipsis && hasDefault:
			return Token{}, 0, ps.errorf(p, "rest parameter cannot be combined with default values")
		case p.Kind == Ellipsis:
			rest := p
			data.Rest = &rest
		case p.Default != nil:
			hasDefault = true
			data.Params = append(data.Params, p)
		case hasDefault:
			return Token{}, 0, ps.errorf(p, "parameter %s must have a default value", p.Text)
		default:
			data.Params = append(data.Params, p)
		}
		seen[p.Name] = true
	}
	return Token{FuncSig, t.Pos, diag.MixedRanging(t, toks[j]),
		ps.text(t, toks[j]), data}, j + 1, nil
}

// Parses the parameter in toks[from:to]. The Token of the returned parameter
// is the parameter name; its Kind is Ellipsis for a rest parameter.
func (ps *parser) param(toks []Token, from, to int) (SigParam, error) {
	first := toks[from]
	if first.Kind == Ellipsis {
		if to-from != 2 || (toks[from+1].Kind != Variable && toks[from+1].Kind != Constant) {
			return SigParam{}, ps.errorf(first, "expected variable after '...'")
		}
		v := toks[from+1]
		name := Token{Ellipsis, first.Pos, diag.MixedRanging(first, v), ps.text(first, v), v.Payload}
		return SigParam{Token: name, Name: v.Payload.(Name).Name, Const: v.Kind == Constant}, nil
	}
	if first.Kind != Variable && first.Kind != Constant {
		return SigParam{}, ps.errorf(first, "expected parameter, got %s", first)
	}
	p := SigParam{Token: first, Name: first.Payload.(Name).Name, Const: first.Kind == Constant}
	if to-from == 1 {
		return p, nil
	}
	if eq := toks[from+1]; !eq.is(Operator, "=") {
		return SigParam{}, ps.errorf(eq, "expected '=' or ',' after parameter, got %s", eq)
	}
	if to-from == 2 {
		return SigParam{}, ps.errorf(toks[from+1], "missing default value")
	}
	def, err := ps.structure(sub(toks, from+2, to), exprLevel)
	if err != nil {
		return SigParam{}, err
	}
	p.Default = def
	return p, nil
}

// Parses "WRITE expr", "APPEND expr", "COPY path", "MOVE path" and
// "RENAME path".
func (ps *parser) commandHead(toks []Token, i int) (Token, int, error) {
	t := toks[i]
	data := &CommandData{Name: t.Text}
	var end diag.Ranger
	var next int
	if dualCommands[t.Text] {
		j := findEnd(toks, i+1, func(u Token) bool { return u.isKeyword("TO") })
		if !toks[j].isKeyword("TO") {
			return Token{}, 0, ps.expected(toks[j], "TO after "+t.Text)
		}
		if j == i+1 {
			return Token{}, 0, ps.errorf(t, "missing expression after %s", t.Text)
		}
		expr, err := ps.structure(sub(toks, i+1, j), exprLevel)
		if err != nil {
			return Token{}, 0, err
		}
		data.Expr, end, next = expr, toks[j-1], j
	} else {
		pd, j, err := ps.path(toks, i+1, t)
		if err != nil {
			return Token{}, 0, err
		}
		data.Path, end, next = pd, pd, j
	}
	return Token{CommandHead, t.Pos, diag.MixedRanging(t, end), ps.text(t, end), data}, next, nil
}

// Parses "TO path", or "TO expr" for RENAME.
func (ps *parser) commandTarget(toks []Token, i int, cmd string) (Token, int, error) {
	t := toks[i]
	data := &CommandData{Name: cmd}
	if cmd == "RENAME" {
		j := findEnd(toks, i+1, func(u Token) bool { return u.Kind == Comma })
		if j == i+1 {
			return Token{}, 0, ps.expected(toks[j], "expression after TO")
		}
		expr, err := ps.structure(sub(toks, i+1, j), exprLevel)
		if err != nil {
			return Token{}, 0, err
		}
		data.TargetExpr = expr
		return Token{CommandTarget, t.Pos, diag.MixedRanging(t, toks[j-1]),
			ps.text(t, toks[j-1]), data}, j, nil
	}
	pd, j, err := ps.path(toks, i+1, t)
	if err != nil {
		return Token{}, 0, err
	}
	data.Target = pd
	return Token{CommandTarget, t.Pos, diag.MixedRanging(t, pd), ps.text(t, pd), data}, j, nil
}

func isPathPart(t Token) bool {
	switch t.Kind {
	case Symbol, Number, Keyword, Period, Ellipsis, Operator,
		String, Variable, Constant, EnvVariable, SubExprStart, LParen:
		return true
	}
	return false
}

// Parses a path starting at toks[i], following the command token cmd. The
// path extends over adjacent tokens.
func (ps *parser) path(toks []Token, i int, cmd Token) (*PathData, int, error) {
	first := toks[i]
	if !isPathPart(first) || first.isKeyword("TO") {
		return nil, 0, ps.expected(first, "path after "+cmd.Text)
	}
	pd := &PathData{Ranging: first.Ranging}

	var (
		seg     []Token
		lit     strings.Builder
		litFrom Token
		litTo   Token
		hasLit  bool
	)
	flushLit := func() {
		if !hasLit {
			return
		}
		r := diag.MixedRanging(litFrom, litTo)
		seg = append(seg, Token{PathLiteral, litFrom.Pos, r, lit.String(), StringValue{lit.String()}})
		lit.Reset()
		hasLit = false
	}
	flushSeg := func() {
		flushLit()
		if len(seg) > 0 {
			pd.Segments = append(pd.Segments, seg)
			seg = nil
		}
	}

	j := i
	prev := first
	for j < len(toks) {
		t := toks[j]
		if j > i && (!adjacent(prev, t) || !isPathPart(t)) {
			break
		}
		switch t.Kind {
		case SubExprStart, LParen:
			g, next, err := ps.group(toks, j)
			if err != nil {
				return nil, 0, err
			}
			flushLit()
			seg = append(seg, g)
			prev, j = g, next
			continue
		case String:
			if s := t.Payload.(StringValue).Value; strings.ContainsAny(s, "/\n") {
				return nil, 0, ps.errorf(t, "path segment must not contain '/' or newline")
			}
			flushLit()
			seg = append(seg, t)
		case Variable, Constant, EnvVariable:
			flushLit()
			seg = append(seg, t)
		default:
			if t.is(Operator, "/") {
				if j == i {
					pd.Absolute = true
				}
				flushSeg()
				break
			}
			if !hasLit {
				litFrom, hasLit = t, true
			}
			litTo = t
			lit.WriteString(t.Text)
		}
		prev = t
		j++
	}
	flushSeg()
	pd.To = prev.To
	return pd, j, nil
}

// Links control construct heads with their blocks, else and elif heads with
// the preceding if chain, and two-argument command heads with their targets.
func (ps *parser) link(toks []Token) ([]Token, error) {
	var out []Token
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.Kind {
		case IfHead, ElifHead, ElseHead, WhileHead, ForHead, FuncSig:
			body := toks[i+1]
			if body.Kind != BraceGroup {
				return nil, ps.expected(body, "'{' after "+strings.SplitN(t.Text, " ", 2)[0])
			}
			i++
			r := diag.MixedRanging(t, body)
			text := ps.text(t, body)
			switch t.Kind {
			case IfHead:
				out = append(out, Token{IfChain, t.Pos, r, text, &IfData{
					Branches: []Branch{{t, t.Payload.(Cond).Cond, body}}}})
			case ElifHead, ElseHead:
				k := len(out) - 1
				for k >= 0 && out[k].is(Terminator, "\n") {
					k--
				}
				word := "else"
				if t.Kind == ElifHead {
					word = "elif"
				}
				if k < 0 || out[k].Kind != IfChain {
					return nil, ps.errorf(t, "%s without if", word)
				}
				chain := out[k]
				old := chain.Payload.(*IfData)
				if old.HasElse {
					return nil, ps.errorf(t, "%s after else", word)
				}
				data := &IfData{Branches: old.Branches, HasElse: old.HasElse, Else: old.Else}
				if t.Kind == ElifHead {
					data.Branches = append(data.Branches[:len(data.Branches):len(data.Branches)],
						Branch{t, t.Payload.(Cond).Cond, body})
				} else {
					data.HasElse, data.Else = true, body
				}
				out = append(out[:k], Token{IfChain, chain.Pos, diag.MixedRanging(chain, body),
					ps.text(chain, body), data})
			case WhileHead:
				out = append(out, Token{WhileLoop, t.Pos, r, text,
					&WhileData{t.Payload.(Cond).Cond, body}})
			case ForHead:
				head := t.Payload.(*ForData)
				out = append(out, Token{ForLoop, t.Pos, r, text,
					&ForData{head.Var, head.Iter, body}})
			case FuncSig:
				sig := t.Payload.(*FuncData)
				out = append(out, Token{FuncDecl, t.Pos, r, text,
					&FuncData{sig.Name, sig.Params, sig.Rest, body}})
			}
		case CommandHead:
			target := toks[i+1]
			if target.Kind != CommandTarget {
				return nil, ps.expected(target, "TO after "+t.Payload.(*CommandData).Name)
			}
			i++
			head, tgt := t.Payload.(*CommandData), target.Payload.(*CommandData)
			out = append(out, Token{DualCommand, t.Pos, diag.MixedRanging(t, target),
				ps.text(t, target), &CommandData{head.Name, head.Path, head.Expr,
					tgt.Target, tgt.TargetExpr}})
		case CommandTarget:
			return nil, ps.errorf(t, "unexpected TO")
		default:
			out = append(out, t)
		}
	}
	return out, nil
}
