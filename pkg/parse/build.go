package parse

import "src.fsl.sh/pkg/diag"

// Precedences of builder nodes. A higher precedence binds tighter.
const (
	precReturn = 10 * (iota + 1)
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precAdditive
	precMultiplicative
	precPrefix
	precLeaf
)

var binaryPrecs = map[string]int{
	"=":  precAssign,
	"or": precOr, "and": precAnd,
	"==": precEquality, "!=": precEquality,
	"<": precComparison, "<=": precComparison, ">": precComparison, ">=": precComparison,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative,
}

type bkind int

const (
	// A node whose AST is complete on its own: literals, identifiers, calls,
	// groups and file queries.
	bLeaf bkind = iota
	// A statement that can't be part of an expression, like an if chain or a
	// file mutation.
	bStatement
	bPrefix
	bBinary
	bAssign
	bReturn
)

// A node of a tree under construction. Child slots are fixed at creation, and
// nil until filled.
type bnode struct {
	kind   bkind
	tok    Token
	prec   int
	kids   []*bnode
	parent *bnode
	// For bLeaf and bStatement nodes.
	ast Node
	// Whether a bLeaf node only produces a value, and thus can't stand
	// alone as a statement.
	value bool
}

// Index of the first empty child slot, or -1.
func (n *bnode) hole() int {
	for i, kid := range n.kids {
		if kid == nil {
			return i
		}
	}
	return -1
}

// Reports whether the subtree rooted at n still needs more input. The value
// slot of return is optional.
func (n *bnode) needsMore() bool {
	for _, kid := range n.kids {
		if kid == nil {
			if n.kind != bReturn {
				return true
			}
		} else if kid.needsMore() {
			return true
		}
	}
	return false
}

// Builds the trees of one statement list at a time.
type builder struct {
	ps *parser
	// Whether to build a single expression rather than a statement list.
	exprMode bool

	root, cursor *bnode
	stmts        []Node
	funcs        []*FuncDef
}

func (ps *parser) buildChunk(toks []Token) (*Chunk, error) {
	b := &builder{ps: ps}
	if err := b.run(toks); err != nil {
		return nil, err
	}
	return &Chunk{b.stmts, b.funcs}, nil
}

func (ps *parser) buildBlock(t Token) (*Block, error) {
	b := &builder{ps: ps}
	if err := b.run(t.Payload.(Tokens).Tokens); err != nil {
		return nil, err
	}
	return &Block{t.Ranging, b.stmts}, nil
}

// Builds a single expression from toks, which end with an EOF token.
func (ps *parser) buildExpr(toks []Token) (Node, error) {
	b := &builder{ps: ps, exprMode: true}
	if err := b.run(toks); err != nil {
		return nil, err
	}
	return b.stmts[0], nil
}

func (b *builder) run(toks []Token) error {
	for i, t := range toks {
		switch t.Kind {
		case EOF:
			if b.exprMode && b.root == nil {
				return b.ps.expected(t, "expression")
			}
			return b.finish(t)
		case Terminator:
			if b.root == nil {
				continue
			}
			if t.Text == "\n" && (b.root.needsMore() || continuesExpr(toks[i+1:])) {
				continue
			}
			if err := b.finish(t); err != nil {
				return err
			}
		default:
			n, err := b.node(t)
			if err != nil {
				return err
			}
			if err := b.insert(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reports whether the first token after a run of newlines is an operator that
// can only be binary, in which case it continues the current expression.
func continuesExpr(toks []Token) bool {
	for _, t := range toks {
		if t.is(Terminator, "\n") {
			continue
		}
		switch t.Kind {
		case Operator:
			return t.Text != "+" && t.Text != "-" && t.Text != "!"
		case Keyword:
			return t.Text == "and" || t.Text == "or"
		}
		return false
	}
	return false
}

// Reports whether the next node would be the operand of an operator, or the
// start of a statement, rather than following a complete operand.
func (b *builder) wantsOperand() bool {
	return b.root == nil || b.root.kind == bStatement || b.cursor.hole() >= 0
}

// Creates the builder node for a structured token.
func (b *builder) node(t Token) (*bnode, error) {
	ps := b.ps
	leaf := func(n Node, value bool) (*bnode, error) {
		return &bnode{kind: bLeaf, tok: t, prec: precLeaf, ast: n, value: value}, nil
	}
	statement := func(n Node, err error) (*bnode, error) {
		if err != nil {
			return nil, err
		}
		return &bnode{kind: bStatement, tok: t, prec: precLeaf, ast: n}, nil
	}
	switch t.Kind {
	case Number:
		return leaf(&Literal{Ranging: t.Ranging, Kind: NumberLiteral, Text: t.Text,
			Num: t.Payload.(NumberValue).Value}, true)
	case String:
		return leaf(&Literal{Ranging: t.Ranging, Kind: StringLiteral, Text: t.Text,
			Str: t.Payload.(StringValue).Value}, true)
	case Symbol, Variable, Constant, EnvVariable:
		return leaf(identOf(t), true)
	case ParenGroup:
		expr, err := ps.buildExpr(t.Payload.(Tokens).Tokens)
		if err != nil {
			return nil, err
		}
		return leaf(expr, true)
	case CallGroup:
		data := t.Payload.(*CallData)
		call := &Call{Ranging: t.Ranging, Callee: identOf(data.Callee)}
		for _, arg := range data.Args {
			expr, err := ps.buildExpr(arg)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, expr)
		}
		return leaf(call, false)
	case Command:
		data := t.Payload.(*CommandData)
		path, err := ps.buildPath(data.Path)
		if err != nil {
			return nil, err
		}
		if queryCommands[data.Name] {
			return leaf(&FileQuery{t.Ranging, data.Name, path}, true)
		}
		return statement(&FileCmd{t.Ranging, data.Name, path}, nil)
	case DualCommand:
		return statement(ps.buildDualCmd(t))
	case IfChain:
		return statement(ps.buildIf(t))
	case WhileLoop:
		return statement(ps.buildWhile(t))
	case ForLoop:
		return statement(ps.buildFor(t))
	case FuncDecl:
		return statement(ps.buildFunc(t))
	case Operator:
		if (t.Text == "+" || t.Text == "-") && b.wantsOperand() || t.Text == "!" {
			return &bnode{kind: bPrefix, tok: t, prec: precPrefix, kids: make([]*bnode, 1)}, nil
		}
		if t.Text == "=" {
			return &bnode{kind: bAssign, tok: t, prec: precAssign, kids: make([]*bnode, 2)}, nil
		}
		return &bnode{kind: bBinary, tok: t, prec: binaryPrecs[t.Text], kids: make([]*bnode, 2)}, nil
	case Keyword:
		switch t.Text {
		case "true", "false":
			return leaf(&Literal{Ranging: t.Ranging, Kind: BoolLiteral, Text: t.Text,
				Bool: t.Text == "true"}, true)
		case "null":
			return leaf(&Literal{Ranging: t.Ranging, Kind: NullLiteral, Text: t.Text}, true)
		case "not":
			return &bnode{kind: bPrefix, tok: t, prec: precPrefix, kids: make([]*bnode, 1)}, nil
		case "and", "or":
			return &bnode{kind: bBinary, tok: t, prec: binaryPrecs[t.Text], kids: make([]*bnode, 2)}, nil
		case "return":
			return &bnode{kind: bReturn, tok: t, prec: precReturn, kids: make([]*bnode, 1)}, nil
		case "break":
			return statement(&Break{t.Ranging}, nil)
		case "continue":
			return statement(&Continue{t.Ranging}, nil)
		}
	}
	return nil, ps.errorf(t, "unexpected %s", t)
}

func identOf(t Token) *Ident {
	var sigil Sigil
	switch t.Kind {
	case Variable:
		sigil = VarSigil
	case Constant:
		sigil = ConstSigil
	case EnvVariable:
		sigil = EnvSigil
	case Symbol:
		return &Ident{t.Ranging, NoSigil, t.Text}
	}
	return &Ident{t.Ranging, sigil, t.Payload.(Name).Name}
}

// Inserts a node into the tree under construction.
func (b *builder) insert(n *bnode) error {
	ps := b.ps
	if n.kind == bBinary || n.kind == bAssign {
		if b.wantsOperand() {
			return ps.errorf(n.tok, "unexpected %s", n.tok)
		}
		// Climb to the highest node that binds at least as tightly as n;
		// assignment is right-associative.
		cur := b.cursor
		for p := cur.parent; p != nil; p = cur.parent {
			if p.prec < n.prec || (p.prec == n.prec && n.kind == bAssign) {
				break
			}
			cur = p
		}
		if cur.kind == bStatement || cur.kind == bReturn {
			return ps.errorf(n.tok, "unexpected %s", n.tok)
		}
		n.kids[0] = cur
		n.parent = cur.parent
		if p := cur.parent; p == nil {
			b.root = n
		} else {
			for i, kid := range p.kids {
				if kid == cur {
					p.kids[i] = n
				}
			}
		}
		cur.parent = n
		b.cursor = n
		return nil
	}

	standalone := n.kind == bStatement || n.kind == bReturn
	if standalone && b.exprMode {
		return ps.errorf(n.tok, "%s cannot be used as an expression", n.tok)
	}
	// Commands, control constructs and function definitions close the
	// statement before and after them.
	if b.root != nil && (b.root.kind == bStatement ||
		standalone && b.cursor.hole() < 0 && !b.root.needsMore()) {
		if err := b.finish(n.tok); err != nil {
			return err
		}
	}
	switch {
	case b.root == nil:
		b.root = n
	case b.cursor.hole() >= 0 && !standalone:
		i := b.cursor.hole()
		b.cursor.kids[i] = n
		n.parent = b.cursor
	case b.cursor.hole() >= 0:
		return ps.errorf(n.tok, "unexpected %s", n.tok)
	default:
		return ps.errorf(n.tok, "expected newline or ';' before %s", n.tok)
	}
	b.cursor = n
	return nil
}

// Finishes the current statement at the terminator t.
func (b *builder) finish(t Token) error {
	ps := b.ps
	if b.root == nil {
		return nil
	}
	if b.root.needsMore() {
		if ps.atEnd(t) {
			return ps.partialf(t, "unexpected end of input")
		}
		return ps.errorf(t, "unexpected %s", t)
	}
	root := b.root
	b.root, b.cursor = nil, nil
	if !b.exprMode {
		switch {
		case root.kind == bLeaf && root.value:
			return ps.errorf(root.tok, "%s is not a statement", root.tok)
		case root.kind == bBinary || root.kind == bPrefix:
			return ps.errorf(root.tok, "operator %s is not a statement", root.tok)
		}
	}
	n, err := b.freeze(root)
	if err != nil {
		return err
	}
	if def, ok := n.(*FuncDef); ok {
		b.funcs = append(b.funcs, def)
	} else {
		b.stmts = append(b.stmts, n)
	}
	return nil
}

// Converts a finished builder tree into AST nodes.
func (b *builder) freeze(n *bnode) (Node, error) {
	switch n.kind {
	case bLeaf, bStatement:
		return n.ast, nil
	case bPrefix:
		operand, err := b.freeze(n.kids[0])
		if err != nil {
			return nil, err
		}
		return &Unary{diag.MixedRanging(n.tok, operand), n.tok.Text, operand}, nil
	case bReturn:
		if n.kids[0] == nil {
			return &Return{n.tok.Ranging, nil}, nil
		}
		value, err := b.freeze(n.kids[0])
		if err != nil {
			return nil, err
		}
		return &Return{diag.MixedRanging(n.tok, value), value}, nil
	}
	left, err := b.freeze(n.kids[0])
	if err != nil {
		return nil, err
	}
	right, err := b.freeze(n.kids[1])
	if err != nil {
		return nil, err
	}
	r := diag.MixedRanging(left, right)
	if n.kind == bAssign {
		target, ok := left.(*Ident)
		if !ok || target.Sigil == EnvSigil || n.kids[0].kind != bLeaf {
			return nil, b.ps.errorf(left, "cannot assign to %s", b.ps.text(left, left))
		}
		return &Assign{r, target, right}, nil
	}
	return &Binary{r, n.tok.Text, left, right}, nil
}

func (ps *parser) buildPath(pd *PathData) (*PathExpr, error) {
	path := &PathExpr{Ranging: pd.Ranging, Absolute: pd.Absolute}
	for _, seg := range pd.Segments {
		parts := make([]Node, len(seg))
		for i, t := range seg {
			switch t.Kind {
			case PathLiteral:
				parts[i] = &Literal{Ranging: t.Ranging, Kind: StringLiteral, Text: t.Text,
					Str: t.Payload.(StringValue).Value}
			case String:
				parts[i] = &Literal{Ranging: t.Ranging, Kind: StringLiteral, Text: t.Text,
					Str: t.Payload.(StringValue).Value}
			case Variable, Constant, EnvVariable:
				parts[i] = identOf(t)
			case ParenGroup:
				expr, err := ps.buildExpr(t.Payload.(Tokens).Tokens)
				if err != nil {
					return nil, err
				}
				parts[i] = expr
			}
		}
		path.Segments = append(path.Segments, parts)
	}
	return path, nil
}

func (ps *parser) buildDualCmd(t Token) (Node, error) {
	data := t.Payload.(*CommandData)
	cmd := &DualCmd{Ranging: t.Ranging, Cmd: data.Name}
	var err error
	if data.Path != nil {
		cmd.Arg, err = ps.buildPath(data.Path)
	} else {
		cmd.Arg, err = ps.buildExpr(data.Expr)
	}
	if err != nil {
		return nil, err
	}
	if data.Target != nil {
		cmd.Target, err = ps.buildPath(data.Target)
	} else {
		cmd.Target, err = ps.buildExpr(data.TargetExpr)
	}
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

func (ps *parser) buildIf(t Token) (Node, error) {
	data := t.Payload.(*IfData)
	n := &If{Ranging: t.Ranging}
	for _, br := range data.Branches {
		cond, err := ps.buildExpr(br.Cond)
		if err != nil {
			return nil, err
		}
		body, err := ps.buildBlock(br.Body)
		if err != nil {
			return nil, err
		}
		n.Branches = append(n.Branches,
			&IfBranch{diag.MixedRanging(br, body), cond, body})
	}
	if data.HasElse {
		body, err := ps.buildBlock(data.Else)
		if err != nil {
			return nil, err
		}
		n.Else = body
	}
	return n, nil
}

func (ps *parser) buildWhile(t Token) (Node, error) {
	data := t.Payload.(*WhileData)
	cond, err := ps.buildExpr(data.Cond)
	if err != nil {
		return nil, err
	}
	body, err := ps.buildBlock(data.Body)
	if err != nil {
		return nil, err
	}
	return &While{t.Ranging, cond, body}, nil
}

func (ps *parser) buildFor(t Token) (Node, error) {
	data := t.Payload.(*ForData)
	iter, err := ps.buildExpr(data.Iter)
	if err != nil {
		return nil, err
	}
	body, err := ps.buildBlock(data.Body)
	if err != nil {
		return nil, err
	}
	return &For{t.Ranging, identOf(data.Var), iter, body}, nil
}

func (ps *parser) buildFunc(t Token) (Node, error) {
	data := t.Payload.(*FuncData)
	def := &FuncDef{Ranging: t.Ranging, Name: data.Name}
	param := func(p SigParam) (*Param, error) {
		param := &Param{Ranging: p.Ranging, Name: p.Name, Const: p.Const}
		if p.Default != nil {
			def, err := ps.buildExpr(p.Default)
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		return param, nil
	}
	for _, p := range data.Params {
		param, err := param(p)
		if err != nil {
			return nil, err
		}
		def.Params = append(def.Params, param)
	}
	if data.Rest != nil {
		rest, err := param(*data.Rest)
		if err != nil {
			return nil, err
		}
		def.Rest = rest
	}
	body, err := ps.buildBlock(data.Body)
	if err != nil {
		return nil, err
	}
	def.Body = body
	return def, nil
}
