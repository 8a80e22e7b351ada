package eval

import (
	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/eval/errs"
	"src.fsl.sh/pkg/eval/vals"
	"src.fsl.sh/pkg/parse"
)

// Callable wraps the Call method.
type Callable interface {
	// Call calls the receiver in a Frame with arguments.
	Call(fm *Frame, args []any) (any, error)
}

// Closure is a function defined with fsl code. Each Closure has its unique
// identity.
type Closure struct {
	Name   string
	Params []Param
	// The rest parameter, or nil.
	Rest     *Param
	Src      parse.Source
	DefRange diag.Ranging
	body     *blockOp
	// The defining scope.
	captured *Context
}

// Param is a parameter of a Closure.
type Param struct {
	Name    string
	Mutable bool
	// Nil for parameters without a default value.
	deflt valueOp
}

var _ Callable = &Closure{}

// Kind returns "function".
func (*Closure) Kind() string { return "function" }

// Equal compares by address.
func (c *Closure) Equal(rhs any) bool { return c == rhs }

// Repr returns "<function name>".
func (c *Closure) Repr() string { return "<function " + c.Name + ">" }

// Call calls a closure. The call runs in a new scope chained to the defining
// scope. Missing arguments take the value of their default expression, which
// is evaluated in the new scope after earlier parameters are bound, or null.
func (c *Closure) Call(fm *Frame, args []any) (any, error) {
	if c.Rest == nil && len(args) > len(c.Params) {
		return nil, errs.ArityMismatch{What: "arguments",
			ValidLow: 0, ValidHigh: len(c.Params), Actual: len(args)}
	}

	fm = fm.fork(c.captured.Child())
	fm.src = c.Src
	for i, p := range c.Params {
		var v any
		if i < len(args) {
			v = args[i]
		} else if p.deflt != nil {
			var err error
			v, err = p.deflt.exec(fm)
			if err != nil {
				return nil, err
			}
		}
		if err := fm.scope.Define(p.Name, v, p.Mutable); err != nil {
			return nil, err
		}
	}
	if c.Rest != nil {
		var rest []any
		if len(args) > len(c.Params) {
			rest = append(rest, args[len(c.Params):]...)
		}
		if err := fm.scope.Define(c.Rest.Name, vals.NewList(rest...), c.Rest.Mutable); err != nil {
			return nil, err
		}
	}

	flow, err := c.body.execIn(fm)
	if err != nil {
		return nil, err
	}
	return flow.Value, nil
}

type funcDefOp struct {
	diag.Ranging
	name   string
	params []Param
	rest   *Param
	body   *blockOp
	src    parse.Source
}

func (cp *compiler) funcDefOp(n *parse.FuncDef) *funcDefOp {
	op := &funcDefOp{Ranging: n.Range(), name: n.Name, body: cp.blockOp(n.Body), src: cp.src}
	for _, p := range n.Params {
		op.params = append(op.params, cp.param(p))
	}
	if n.Rest != nil {
		rest := cp.param(n.Rest)
		op.rest = &rest
	}
	return op
}

func (cp *compiler) param(p *parse.Param) Param {
	param := Param{Name: p.Name, Mutable: !p.Const}
	if p.Default != nil {
		param.deflt = cp.valueOp(p.Default)
	}
	return param
}

// Binds all functions of a chunk in the scope of fm, before any statement of
// the chunk runs. A function may replace a function of the same name bound
// by an earlier chunk, but not any other binding.
func bindFuncs(fm *Frame, defs []*funcDefOp) error {
	seen := make(map[string]bool)
	for _, def := range defs {
		if seen[def.name] {
			return fm.errorp(def, errs.ScopeError{Name: def.name, Problem: errs.Redeclared})
		}
		seen[def.name] = true
		c := &Closure{def.name, def.params, def.rest, def.src, def.Ranging, def.body, fm.scope}
		if old, ok := fm.scope.names[def.name]; ok {
			if _, isClosure := old.value.(*Closure); isClosure {
				fm.scope.replace(def.name, c)
				continue
			}
		}
		if err := fm.scope.Define(def.name, c, false); err != nil {
			return fm.errorp(def, err)
		}
	}
	return nil
}

type callOp struct {
	diag.Ranging
	callee *identOp
	args   []valueOp
}

func (op *callOp) exec(fm *Frame) (any, error) {
	v, err := op.callee.exec(fm)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(Callable)
	if !ok {
		return nil, fm.errorp(op.callee, errs.TypeError{
			What: op.callee.String(), Want: "function", Got: vals.Kind(v)})
	}
	args := make([]any, len(op.args))
	for i, argOp := range op.args {
		args[i], err = argOp.exec(fm)
		if err != nil {
			return nil, err
		}
	}
	if fm.depth >= fm.ev.maxCallDepth() {
		return nil, fm.errorp(op, ErrCallDepth)
	}
	result, err := fn.Call(fm.call(op, op.callee.name), args)
	if err != nil {
		return nil, fm.errorp(op, err)
	}
	return result, nil
}
