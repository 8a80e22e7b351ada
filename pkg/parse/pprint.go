package parse

import (
	"fmt"
	"strings"
)

// Pprint renders a node as an S-expression, like (+ 1 (* 2 3)).
func Pprint(n Node) string {
	var sb strings.Builder
	pprint(&sb, n)
	return sb.String()
}

// PprintChunk renders the function definitions and statements of a chunk,
// one per line.
func PprintChunk(c *Chunk) string {
	var lines []string
	for _, def := range c.Funcs {
		lines = append(lines, Pprint(def))
	}
	for _, stmt := range c.Stmts {
		lines = append(lines, Pprint(stmt))
	}
	return strings.Join(lines, "\n")
}

func pprint(sb *strings.Builder, n Node) {
	list := func(head string, nodes ...Node) {
		sb.WriteString("(" + head)
		for _, n := range nodes {
			sb.WriteByte(' ')
			pprint(sb, n)
		}
		sb.WriteByte(')')
	}
	switch n := n.(type) {
	case *Literal:
		switch n.Kind {
		case NumberLiteral:
			sb.WriteString(n.Text)
		case StringLiteral:
			sb.WriteString(Quote(n.Str))
		default:
			sb.WriteString(n.Text)
		}
	case *Ident:
		sb.WriteString(n.String())
	case *Unary:
		list(n.Op, n.Operand)
	case *Binary:
		list(n.Op, n.Left, n.Right)
	case *Assign:
		list("=", n.Target, n.Value)
	case *Call:
		list("call "+n.Callee.String(), n.Args...)
	case *PathExpr:
		sb.WriteString("(path")
		if n.Absolute {
			sb.WriteString(" /")
		}
		for _, seg := range n.Segments {
			sb.WriteByte(' ')
			if len(seg) == 1 {
				pprint(sb, seg[0])
			} else {
				list("cat", seg...)
			}
		}
		sb.WriteByte(')')
	case *FileQuery:
		list(n.Cmd, n.Path)
	case *FileCmd:
		list(n.Cmd, n.Path)
	case *DualCmd:
		list(n.Cmd, n.Arg, n.Target)
	case *Block:
		list("block", n.Stmts...)
	case *If:
		sb.WriteString("(if")
		for _, br := range n.Branches {
			sb.WriteByte(' ')
			pprint(sb, br)
		}
		if n.Else != nil {
			sb.WriteString(" (else ")
			pprint(sb, n.Else)
			sb.WriteByte(')')
		}
		sb.WriteByte(')')
	case *IfBranch:
		list("branch", n.Cond, n.Body)
	case *While:
		list("while", n.Cond, n.Body)
	case *For:
		list("for "+n.Var.String(), n.Iter, n.Body)
	case *Return:
		if n.Value == nil {
			list("return")
		} else {
			list("return", n.Value)
		}
	case *Break:
		list("break")
	case *Continue:
		list("continue")
	case *FuncDef:
		sb.WriteString("(func " + n.Name + " (")
		for i, p := range n.Params {
			if i > 0 {
				sb.WriteByte(' ')
			}
			pprint(sb, p)
		}
		if n.Rest != nil {
			if len(n.Params) > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString("...")
			pprint(sb, n.Rest)
		}
		sb.WriteString(") ")
		pprint(sb, n.Body)
		sb.WriteByte(')')
	case *Param:
		name := "$" + n.Name
		if n.Const {
			name = "%" + n.Name
		}
		if n.Default == nil {
			sb.WriteString(name)
		} else {
			list("= "+name, n.Default)
		}
	default:
		fmt.Fprintf(sb, "(unknown %T)", n)
	}
}
