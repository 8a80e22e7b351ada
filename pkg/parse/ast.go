package parse

import "src.fsl.sh/pkg/diag"

// Node is a node in the AST. The AST carries no parent pointers and is not
// modified after parsing.
type Node interface {
	diag.Ranger
	node()
}

// Chunk is the result of parsing a source. Function definitions are kept
// apart from the other top-level statements, since they are all bound before
// any statement runs.
type Chunk struct {
	Stmts []Node
	Funcs []*FuncDef
}

// LiteralKind is the kind of a Literal.
type LiteralKind int

// Kinds of literals.
const (
	NumberLiteral LiteralKind = iota
	StringLiteral
	BoolLiteral
	NullLiteral
)

// Literal is a number, string, boolean or null literal. Literal parts of
// paths are also represented as string literals.
type Literal struct {
	diag.Ranging
	Kind LiteralKind
	// Source text. For literal parts of paths this is the text of the part.
	Text string
	Num  float64
	Str  string
	Bool bool
}

// Sigil tells how an identifier was written.
type Sigil byte

// Possible sigils.
const (
	NoSigil    Sigil = 0
	VarSigil   Sigil = '$'
	ConstSigil Sigil = '%'
	EnvSigil   Sigil = '@'
)

// Ident is an identifier, with or without a sigil.
type Ident struct {
	diag.Ranging
	Sigil Sigil
	Name  string
}

func (id *Ident) String() string {
	if id.Sigil == NoSigil {
		return id.Name
	}
	return string(id.Sigil) + id.Name
}

// Unary is a prefix operation: -, +, ! or not.
type Unary struct {
	diag.Ranging
	Op      string
	Operand Node
}

// Binary is a binary operation other than assignment.
type Binary struct {
	diag.Ranging
	Op          string
	Left, Right Node
}

// Assign is an assignment. A target with the $ or % sigil declares a new
// binding; a target with no sigil assigns an existing one.
type Assign struct {
	diag.Ranging
	Target *Ident
	Value  Node
}

// Call is a function call.
type Call struct {
	diag.Ranging
	Callee *Ident
	Args   []Node
}

// PathExpr is a path. Each segment is a list of parts whose values are
// concatenated.
type PathExpr struct {
	diag.Ranging
	Absolute bool
	Segments [][]Node
}

// FileQuery is a file command that produces a value: READ, PATH, EXISTS,
// ISFILE or ISDIR.
type FileQuery struct {
	diag.Ranging
	Cmd  string
	Path *PathExpr
}

// FileCmd is a file command with one path argument that changes the
// filesystem: DELETE, MKDIR or MKDIRS.
type FileCmd struct {
	diag.Ranging
	Cmd  string
	Path *PathExpr
}

// DualCmd is a file command of the form "CMD arg TO target". Arg is an
// expression for WRITE and APPEND and a *PathExpr otherwise; Target is an
// expression for RENAME and a *PathExpr otherwise.
type DualCmd struct {
	diag.Ranging
	Cmd    string
	Arg    Node
	Target Node
}

// Block is a list of statements in braces.
type Block struct {
	diag.Ranging
	Stmts []Node
}

// If is an if chain. Else is nil when there is no else branch.
type If struct {
	diag.Ranging
	Branches []*IfBranch
	Else     *Block
}

// IfBranch is an if or elif arm of an If.
type IfBranch struct {
	diag.Ranging
	Cond Node
	Body *Block
}

// While is a while loop.
type While struct {
	diag.Ranging
	Cond Node
	Body *Block
}

// For is a for loop. A Var with ConstSigil binds the loop variable
// immutably.
type For struct {
	diag.Ranging
	Var  *Ident
	Iter Node
	Body *Block
}

// Return is a return statement. Value is nil for a bare return.
type Return struct {
	diag.Ranging
	Value Node
}

// Break is a break statement.
type Break struct{ diag.Ranging }

// Continue is a continue statement.
type Continue struct{ diag.Ranging }

// FuncDef is a function definition.
type FuncDef struct {
	diag.Ranging
	Name   string
	Params []*Param
	// The rest parameter, or nil.
	Rest *Param
	Body *Block
}

// Param is a function parameter. Default is nil for parameters without a
// default value.
type Param struct {
	diag.Ranging
	Name    string
	Const   bool
	Default Node
}

func (*Literal) node() {}
func (*Ident) node() {}
func (*Unary) node() {}
func (*Binary) node() {}
func (*Assign) node() {}
func (*Call) node() {}
func (*PathExpr) node() {}
func (*FileQuery) node() {}
func (*FileCmd) node() {}
func (*DualCmd) node() {}
func (*Block) node() {}
func (*If) node() {}
func (*IfBranch) node() {}
func (*While) node() {}
func (*For) node() {}
func (*Return) node() {}
func (*Break) node() {}
func (*Continue) node() {}
func (*FuncDef) node() {}
func (*Param) node() {}
