package eval

import (
	"math"
	"strings"

	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/eval/errs"
	"src.fsl.sh/pkg/eval/vals"
	"src.fsl.sh/pkg/parse"
)

type identOp struct {
	diag.Ranging
	sigil parse.Sigil
	name  string
}

func (op *identOp) String() string {
	return (&parse.Ident{Sigil: op.sigil, Name: op.name}).String()
}

func (op *identOp) exec(fm *Frame) (any, error) {
	if op.sigil == parse.EnvSigil {
		v, ok := fm.ev.env[op.name]
		if !ok {
			return nil, fm.errorp(op, errs.ScopeError{Name: op.String(), Problem: errs.Undeclared})
		}
		// Each read of an iterable environment binding starts from the
		// beginning.
		return ownValue(v), nil
	}
	v, ok := fm.scope.Lookup(op.name)
	if !ok {
		return nil, fm.errorp(op, errs.ScopeError{Name: op.name, Problem: errs.Undeclared})
	}
	return v, nil
}

// Declares a new binding in the current scope.
type declareOp struct {
	diag.Ranging
	name    string
	mutable bool
}

func (op *declareOp) assign(fm *Frame, v any) error {
	return fm.errorp(op, fm.scope.Define(op.name, v, op.mutable))
}

// Assigns an existing binding.
type setOp struct {
	diag.Ranging
	name string
}

func (op *setOp) assign(fm *Frame, v any) error {
	return fm.errorp(op, fm.scope.Assign(op.name, v))
}

type assignOp struct {
	diag.Ranging
	lhs lvalueOp
	rhs valueOp
}

func (op *assignOp) exec(fm *Frame) (any, error) {
	v, err := op.rhs.exec(fm)
	if err != nil {
		return nil, err
	}
	if err := op.lhs.assign(fm, v); err != nil {
		return nil, err
	}
	return v, nil
}

type unaryOp struct {
	diag.Ranging
	op      string
	operand valueOp
}

func (op *unaryOp) exec(fm *Frame) (any, error) {
	v, err := op.operand.exec(fm)
	if err != nil {
		return nil, err
	}
	switch op.op {
	case "-", "+":
		if x, ok := v.(float64); ok {
			if op.op == "-" {
				return -x, nil
			}
			return x, nil
		}
	case "!", "not":
		if b, ok := v.(bool); ok {
			return !b, nil
		}
	}
	return nil, fm.errorp(op, errs.OperandError{Op: op.op, Kinds: []string{vals.Kind(v)}})
}

func (cp *compiler) binaryOp(n *parse.Binary) valueOp {
	lhs, rhs := cp.valueOp(n.Left), cp.valueOp(n.Right)
	switch n.Op {
	case "and", "or":
		return &logicOp{n.Range(), n.Op, lhs, rhs}
	default:
		return &binaryOp{n.Range(), n.Op, lhs, rhs}
	}
}

// Short-circuiting and and or.
type logicOp struct {
	diag.Ranging
	op       string
	lhs, rhs valueOp
}

func (op *logicOp) exec(fm *Frame) (any, error) {
	l, err := op.operand(fm, op.lhs, "left")
	if err != nil {
		return nil, err
	}
	if (op.op == "and" && !l) || (op.op == "or" && l) {
		return l, nil
	}
	return op.operand(fm, op.rhs, "right")
}

func (op *logicOp) operand(fm *Frame, o valueOp, side string) (bool, error) {
	v, err := o.exec(fm)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fm.errorp(o, errs.TypeError{
			What: side + " operand of " + op.op, Want: "boolean", Got: vals.Kind(v)})
	}
	return b, nil
}

type binaryOp struct {
	diag.Ranging
	op       string
	lhs, rhs valueOp
}

func (op *binaryOp) exec(fm *Frame) (any, error) {
	l, err := op.lhs.exec(fm)
	if err != nil {
		return nil, err
	}
	r, err := op.rhs.exec(fm)
	if err != nil {
		return nil, err
	}
	v, ok := binary(op.op, l, r)
	if !ok {
		return nil, fm.errorp(op, errs.OperandError{
			Op: op.op, Kinds: []string{vals.Kind(l), vals.Kind(r)}})
	}
	return v, nil
}

// Applies a binary operator other than and and or. It returns false if the
// operator cannot be applied to the operands.
func binary(op string, l, r any) (any, bool) {
	switch op {
	case "==", "!=":
		// Null can be compared with anything.
		if l != nil && r != nil && vals.Kind(l) != vals.Kind(r) {
			if op == "!=" {
				return true, true
			}
			return nil, false
		}
		return vals.Equal(l, r) == (op == "=="), true
	case "+":
		if x, y, ok := nums(l, r); ok {
			return x + y, true
		}
		_, lstr := l.(string)
		_, rstr := r.(string)
		if lstr || rstr {
			return vals.ToString(l) + vals.ToString(r), true
		}
	case "*":
		if x, y, ok := nums(l, r); ok {
			return x * y, true
		}
		if s, ok := l.(string); ok {
			if n, ok := r.(float64); ok {
				return repeat(s, n), true
			}
		}
		if n, ok := l.(float64); ok {
			if s, ok := r.(string); ok {
				return repeat(s, n), true
			}
		}
	default:
		x, y, ok := nums(l, r)
		if !ok {
			return nil, false
		}
		switch op {
		case "-":
			return x - y, true
		case "/":
			return x / y, true
		case "<":
			return x < y && !vals.EqualNum(x, y), true
		case "<=":
			return x < y || vals.EqualNum(x, y), true
		case ">":
			return x > y && !vals.EqualNum(x, y), true
		case ">=":
			return x > y || vals.EqualNum(x, y), true
		}
	}
	return nil, false
}

func nums(l, r any) (float64, float64, bool) {
	x, ok1 := l.(float64)
	y, ok2 := r.(float64)
	return x, y, ok1 && ok2
}

// Repeats s floor(n) times. Negative, infinite and NaN counts give the empty
// string.
func repeat(s string, n float64) string {
	n = math.Floor(n)
	if !(n > 0) || math.IsInf(n, 1) {
		return ""
	}
	return strings.Repeat(s, int(n))
}
