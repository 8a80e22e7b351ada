package parse

import (
	"fmt"
	"sort"

	"src.fsl.sh/pkg/diag"
)

// TokenKind identifies the kind of a Token.
type TokenKind int

// Kinds of primitive tokens, produced by the scanner.
const (
	EOF TokenKind = iota
	// Statement terminator: a newline or ";". Text tells them apart.
	Terminator
	Number
	String
	// A bare word that is not a keyword.
	Symbol
	Keyword
	// $name
	Variable
	// %name
	Constant
	// @name
	EnvVariable
	// "$(", the start of an embedded sub-expression.
	SubExprStart
	Operator
	Comma
	LParen
	RParen
	LBrace
	RBrace
	Period
	Ellipsis
	// "func name", merged from a func keyword and its name.
	FuncName
)

// Kinds of structured tokens, produced by the structurer.
const (
	// A parenthesized expression or a $( ) sub-expression.
	ParenGroup TokenKind = iota + 100
	CallGroup
	BraceGroup
	FuncSig
	IfHead
	ElifHead
	ElseHead
	WhileHead
	ForHead
	// A command taking a single path, like READ or DELETE.
	Command
	// The part of a two-argument command before TO.
	CommandHead
	// TO and the target of a two-argument command.
	CommandTarget
	// A literal part of a path.
	PathLiteral

	// Products of the link pass.
	IfChain
	WhileLoop
	ForLoop
	FuncDecl
	DualCommand
)

var tokenKindNames = map[TokenKind]string{
	EOF: "end of input", Terminator: "terminator", Number: "number",
	String: "string", Symbol: "symbol", Keyword: "keyword",
	Variable: "variable", Constant: "constant", EnvVariable: "environment variable",
	SubExprStart: "'$('", Operator: "operator", Comma: "','",
	LParen: "'('", RParen: "')'", LBrace: "'{'", RBrace: "'}'",
	Period: "'.'", Ellipsis: "'...'", FuncName: "function name",

	ParenGroup: "group", CallGroup: "call", BraceGroup: "block", FuncSig: "function signature",
	IfHead: "if", ElifHead: "elif", ElseHead: "else", WhileHead: "while",
	ForHead: "for", Command: "command", CommandHead: "command",
	CommandTarget: "TO", PathLiteral: "path literal",
	IfChain: "if", WhileLoop: "while", ForLoop: "for", FuncDecl: "function",
	DualCommand: "command",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Pos is the 1-based line and column where a token starts.
type Pos = diag.Position

// Token is a lexical or structured token. Tokens are never mutated once
// produced; passes that need to change a token build a new one.
type Token struct {
	Kind TokenKind
	Pos  Pos
	diag.Ranging
	// Source text of the token.
	Text string
	// Kind-specific data. Nil for tokens that carry nothing beyond Text.
	Payload Payload
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "end of input"
	}
	if t.Kind == Terminator && t.Text == "\n" {
		return "newline"
	}
	return fmt.Sprintf("%q", t.Text)
}

// Payload is implemented by the payload types of tokens.
type Payload interface{ payload() }

// NumberValue is the payload of Number tokens.
type NumberValue struct{ Value float64 }

// StringValue is the payload of String and PathLiteral tokens.
type StringValue struct{ Value string }

// Name is the payload of Variable, Constant, EnvVariable and FuncName tokens.
type Name struct{ Name string }

// Tokens is the payload of ParenGroup and BraceGroup tokens.
type Tokens struct{ Tokens []Token }

// CallData is the payload of CallGroup tokens.
type CallData struct {
	Callee Token
	Args   [][]Token
}

// SigParam is a parameter in a function signature.
type SigParam struct {
	Token
	Name    string
	Const   bool
	Default []Token
}

// FuncData is the payload of FuncSig and FuncDecl tokens.
type FuncData struct {
	Name   string
	Params []SigParam
	Rest   *SigParam
	// A BraceGroup token.
	Body Token
}

// Cond is the payload of IfHead, ElifHead and WhileHead tokens.
type Cond struct{ Cond []Token }

// Branch is one arm of an if chain. Body is a BraceGroup token.
type Branch struct {
	Token
	Cond []Token
	Body Token
}

// IfData is the payload of IfChain tokens.
type IfData struct {
	Branches []Branch
	HasElse  bool
	Else     Token
}

// WhileData is the payload of WhileLoop tokens.
type WhileData struct {
	Cond []Token
	Body Token
}

// ForData is the payload of ForHead and ForLoop tokens.
type ForData struct {
	Var  Token
	Iter []Token
	Body Token
}

// PathData describes a path argument. Each segment is a sequence of parts that
// are concatenated: PathLiteral, String, Variable, Constant, EnvVariable and
// ParenGroup tokens.
type PathData struct {
	diag.Ranging
	Absolute bool
	Segments [][]Token
}

// CommandData is the payload of Command, CommandHead, CommandTarget and
// DualCommand tokens. Path or Expr holds the argument before TO, depending on
// whether the command takes a path or an expression there; Target or
// TargetExpr holds the argument after TO.
type CommandData struct {
	Name       string
	Path       *PathData
	Expr       []Token
	Target     *PathData
	TargetExpr []Token
}

func (NumberValue) payload() {}
func (StringValue) payload() {}
func (Name) payload() {}
func (Tokens) payload() {}
func (*CallData) payload() {}
func (*FuncData) payload() {}
func (Cond) payload() {}
func (*IfData) payload() {}
func (*WhileData) payload() {}
func (*ForData) payload() {}
func (*CommandData) payload() {}

var keywords = map[string]bool{
	"func": true, "return": true, "if": true, "elif": true, "else": true,
	"while": true, "for": true, "in": true, "break": true, "continue": true,
	"true": true, "false": true, "null": true, "and": true, "or": true,
	"not": true, "TO": true,
}

// Commands that take a path and produce a value.
var queryCommands = map[string]bool{
	"READ": true, "PATH": true, "EXISTS": true, "ISFILE": true, "ISDIR": true,
}

// Commands that take a path and mutate the filesystem.
var mutationCommands = map[string]bool{
	"DELETE": true, "MKDIR": true, "MKDIRS": true,
}

// Commands of the form "X a TO b". The value tells whether the argument
// before TO is an expression rather than a path.
var dualCommands = map[string]bool{
	"WRITE": true, "APPEND": true, "COPY": false, "MOVE": false, "RENAME": false,
}

func init() {
	for name := range queryCommands {
		keywords[name] = true
	}
	for name := range mutationCommands {
		keywords[name] = true
	}
	for name := range dualCommands {
		keywords[name] = true
	}
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool { return keywords[s] }

// IsQueryCommand reports whether name is a file command that produces a value.
func IsQueryCommand(name string) bool { return queryCommands[name] }

// Keywords returns all reserved words, sorted.
func Keywords() []string {
	names := make([]string, 0, len(keywords))
	for name := range keywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t Token) is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

func (t Token) isKeyword(text string) bool { return t.is(Keyword, text) }

// Reports whether u starts right where t ends.
func adjacent(t, u Token) bool { return t.To == u.From }
