package eval

import (
	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/eval/vals"
)

// An operation that produces a value. Expressions compile to valueOps.
type valueOp interface {
	diag.Ranger
	exec(*Frame) (any, error)
}

// An operation that can be assigned through. Only identifiers compile to
// lvalueOps.
type lvalueOp interface {
	diag.Ranger
	assign(fm *Frame, v any) error
}

// An operation that runs a statement. The Flow tells the enclosing construct
// whether to run the next statement.
type flowOp interface {
	diag.Ranger
	exec(*Frame) (vals.Flow, error)
}

// Adapts a valueOp to a flowOp by discarding the value.
type valueStmtOp struct{ valueOp }

func (op valueStmtOp) exec(fm *Frame) (vals.Flow, error) {
	_, err := op.valueOp.exec(fm)
	return vals.NormalFlow, err
}

// A valueOp implemented by a function.
type funcValueOp struct {
	diag.Ranging
	f func(*Frame) (any, error)
}

func (op funcValueOp) exec(fm *Frame) (any, error) { return op.f(fm) }
