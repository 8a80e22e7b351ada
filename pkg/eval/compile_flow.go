package eval

import (
	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/eval/errs"
	"src.fsl.sh/pkg/eval/vals"
	"src.fsl.sh/pkg/parse"
)

type blockOp struct {
	diag.Ranging
	stmts []flowOp
}

func (cp *compiler) blockOp(n *parse.Block) *blockOp {
	return &blockOp{n.Range(), cp.stmtOps(n.Stmts)}
}

// Runs the block in a new child scope.
func (op *blockOp) exec(fm *Frame) (vals.Flow, error) {
	return op.execIn(fm.child())
}

// Runs the block in the scope of fm. The first abrupt Flow ends the block and
// is passed to the enclosing construct.
func (op *blockOp) execIn(fm *Frame) (vals.Flow, error) {
	for _, stmt := range op.stmts {
		flow, err := stmt.exec(fm)
		if err != nil || flow.IsAbrupt() {
			return flow, err
		}
	}
	return vals.NormalFlow, nil
}

type ifOp struct {
	diag.Ranging
	conds  []valueOp
	bodies []*blockOp
	// Nil when there is no else branch.
	elseBody *blockOp
}

func (cp *compiler) ifOp(n *parse.If) flowOp {
	op := &ifOp{Ranging: n.Range()}
	for _, br := range n.Branches {
		op.conds = append(op.conds, cp.valueOp(br.Cond))
		op.bodies = append(op.bodies, cp.blockOp(br.Body))
	}
	if n.Else != nil {
		op.elseBody = cp.blockOp(n.Else)
	}
	return op
}

func (op *ifOp) exec(fm *Frame) (vals.Flow, error) {
	fm = fm.child()
	for i, cond := range op.conds {
		b, err := evalCond(fm, cond)
		if err != nil {
			return vals.NormalFlow, err
		}
		if b {
			return op.bodies[i].exec(fm)
		}
	}
	if op.elseBody != nil {
		return op.elseBody.exec(fm)
	}
	return vals.NormalFlow, nil
}

func evalCond(fm *Frame, cond valueOp) (bool, error) {
	v, err := cond.exec(fm)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fm.errorp(cond,
			errs.TypeError{What: "condition", Want: "boolean", Got: vals.Kind(v)})
	}
	return b, nil
}

type whileOp struct {
	diag.Ranging
	cond valueOp
	body *blockOp
}

func (op *whileOp) exec(fm *Frame) (vals.Flow, error) {
	for {
		b, err := evalCond(fm, op.cond)
		if err != nil || !b {
			return vals.NormalFlow, err
		}
		flow, err := op.body.exec(fm)
		if err != nil {
			return flow, err
		}
		switch flow.Kind {
		case vals.Break:
			return vals.NormalFlow, nil
		case vals.Return:
			return flow, nil
		}
	}
}

type forOp struct {
	diag.Ranging
	varName string
	mutable bool
	iter    valueOp
	body    *blockOp
}

func (cp *compiler) forOp(n *parse.For) flowOp {
	return &forOp{n.Range(), n.Var.Name, n.Var.Sigil != parse.ConstSigil,
		cp.valueOp(n.Iter), cp.blockOp(n.Body)}
}

func (op *forOp) exec(fm *Frame) (vals.Flow, error) {
	v, err := op.iter.exec(fm)
	if err != nil {
		return vals.NormalFlow, err
	}
	it, err := iterate(fm, v)
	if err != nil {
		return vals.NormalFlow, fm.errorp(op.iter, err)
	}
	for elem, ok := it.Next(); ok; elem, ok = it.Next() {
		iterFm := fm.child()
		if err := iterFm.scope.Define(op.varName, elem, op.mutable); err != nil {
			return vals.NormalFlow, fm.errorp(op, err)
		}
		flow, err := op.body.exec(iterFm)
		if err != nil {
			return flow, err
		}
		switch flow.Kind {
		case vals.Break:
			return vals.NormalFlow, nil
		case vals.Return:
			return flow, nil
		}
	}
	return vals.NormalFlow, nil
}

// Adapts a value to a fresh Iterable. Paths iterate over the entries of the
// directory, listed through the sandbox.
func iterate(fm *Frame, v any) (vals.Iterable, error) {
	if p, ok := v.(vals.Path); ok {
		entries, err := fm.Sandbox().List(string(p))
		if err != nil {
			return nil, err
		}
		return vals.NewDir(p, entries), nil
	}
	return vals.ToIterable(v)
}

type returnOp struct {
	diag.Ranging
	// Nil for a bare return.
	value valueOp
}

func (op *returnOp) exec(fm *Frame) (vals.Flow, error) {
	var v any
	if op.value != nil {
		var err error
		v, err = op.value.exec(fm)
		if err != nil {
			return vals.NormalFlow, err
		}
	}
	return vals.Flow{Kind: vals.Return, Value: v, Ranging: op.Ranging}, nil
}

// break and continue.
type jumpOp struct {
	diag.Ranging
	kind vals.FlowKind
}

func (op *jumpOp) exec(*Frame) (vals.Flow, error) {
	return vals.Flow{Kind: op.kind, Ranging: op.Ranging}, nil
}
