package eval

import (
	"fmt"

	"src.fsl.sh/pkg/eval/vals"
	"src.fsl.sh/pkg/parse"
)

// compiler turns the AST of a single source into ops. The AST has been
// validated by the parser, so compilation itself cannot fail.
type compiler struct {
	src parse.Source
}

// The result of compiling a chunk.
type chunkOp struct {
	funcs []*funcDefOp
	stmts []flowOp
}

func compile(src parse.Source, chunk *parse.Chunk) chunkOp {
	cp := &compiler{src}
	op := chunkOp{stmts: cp.stmtOps(chunk.Stmts)}
	for _, def := range chunk.Funcs {
		op.funcs = append(op.funcs, cp.funcDefOp(def))
	}
	return op
}

// Binds the functions and runs the statements in the scope of fm. It stops at
// the first error or at a top-level return, whose value becomes the result.
func (op chunkOp) exec(fm *Frame) (any, error) {
	if err := bindFuncs(fm, op.funcs); err != nil {
		return nil, err
	}
	for _, stmt := range op.stmts {
		flow, err := stmt.exec(fm)
		if err != nil {
			return nil, err
		}
		if flow.Kind == vals.Return {
			return flow.Value, nil
		}
	}
	return nil, nil
}

func (cp *compiler) stmtOps(nodes []parse.Node) []flowOp {
	ops := make([]flowOp, len(nodes))
	for i, n := range nodes {
		ops[i] = cp.stmtOp(n)
	}
	return ops
}

func (cp *compiler) stmtOp(n parse.Node) flowOp {
	switch n := n.(type) {
	case *parse.Block:
		return cp.blockOp(n)
	case *parse.If:
		return cp.ifOp(n)
	case *parse.While:
		return &whileOp{n.Range(), cp.valueOp(n.Cond), cp.blockOp(n.Body)}
	case *parse.For:
		return cp.forOp(n)
	case *parse.Return:
		op := &returnOp{Ranging: n.Range()}
		if n.Value != nil {
			op.value = cp.valueOp(n.Value)
		}
		return op
	case *parse.Break:
		return &jumpOp{n.Range(), vals.Break}
	case *parse.Continue:
		return &jumpOp{n.Range(), vals.Continue}
	case *parse.FileCmd:
		return valueStmtOp{cp.fileCmdOp(n)}
	case *parse.DualCmd:
		return valueStmtOp{cp.dualCmdOp(n)}
	default:
		return valueStmtOp{cp.valueOp(n)}
	}
}

func (cp *compiler) valueOps(nodes []parse.Node) []valueOp {
	ops := make([]valueOp, len(nodes))
	for i, n := range nodes {
		ops[i] = cp.valueOp(n)
	}
	return ops
}

func (cp *compiler) valueOp(n parse.Node) valueOp {
	switch n := n.(type) {
	case *parse.Literal:
		return literalOp(n)
	case *parse.Ident:
		return &identOp{n.Range(), n.Sigil, n.Name}
	case *parse.Unary:
		return &unaryOp{n.Range(), n.Op, cp.valueOp(n.Operand)}
	case *parse.Binary:
		return cp.binaryOp(n)
	case *parse.Assign:
		return &assignOp{n.Range(), cp.lvalueOp(n.Target), cp.valueOp(n.Value)}
	case *parse.Call:
		return &callOp{n.Range(), &identOp{n.Callee.Range(), n.Callee.Sigil, n.Callee.Name},
			cp.valueOps(n.Args)}
	case *parse.PathExpr:
		return cp.pathOp(n)
	case *parse.FileQuery:
		return cp.fileQueryOp(n)
	default:
		// The parser never produces other nodes in value positions.
		panic(fmt.Sprintf("cannot compile %T as a value", n))
	}
}

func literalOp(n *parse.Literal) valueOp {
	var v any
	switch n.Kind {
	case parse.NumberLiteral:
		v = n.Num
	case parse.StringLiteral:
		v = n.Str
	case parse.BoolLiteral:
		v = n.Bool
	}
	return funcValueOp{n.Range(), func(*Frame) (any, error) { return v, nil }}
}

func (cp *compiler) lvalueOp(id *parse.Ident) lvalueOp {
	switch id.Sigil {
	case parse.VarSigil:
		return &declareOp{id.Range(), id.Name, true}
	case parse.ConstSigil:
		return &declareOp{id.Range(), id.Name, false}
	default:
		return &setOp{id.Range(), id.Name}
	}
}

