package eval

import (
	"sort"

	"src.fsl.sh/pkg/eval/errs"
	"src.fsl.sh/pkg/eval/vals"
)

// Context is a lexical scope: a set of bindings and an optional parent. Names
// are looked up through the chain of parents. A Context is created for every
// block, loop iteration and function call, and is discarded when it exits,
// unless a closure defined in it keeps it alive.
type Context struct {
	parent *Context
	root   *Context
	names  map[string]*binding
}

type binding struct {
	value   any
	mutable bool
}

// NewContext creates a root Context.
func NewContext() *Context {
	c := &Context{}
	c.root = c
	return c
}

// Child creates a new Context whose parent is c.
func (c *Context) Child() *Context {
	return &Context{parent: c, root: c.root}
}

// Parent returns the parent of c, or nil if c is a root.
func (c *Context) Parent() *Context { return c.parent }

// Root returns the outermost ancestor of c.
func (c *Context) Root() *Context { return c.root }

// Define creates a binding in c. It is an error if c already has a binding
// with the same name; bindings of the same name in ancestors are shadowed.
// Iterables are copied, so that the binding never shares a cursor with v.
func (c *Context) Define(name string, v any, mutable bool) error {
	if _, ok := c.names[name]; ok {
		return errs.ScopeError{Name: name, Problem: errs.Redeclared}
	}
	if c.names == nil {
		c.names = make(map[string]*binding)
	}
	c.names[name] = &binding{ownValue(v), mutable}
	return nil
}

// Assign changes the value of an existing mutable binding, found through the
// chain of parents.
func (c *Context) Assign(name string, v any) error {
	b := c.find(name)
	if b == nil {
		return errs.ScopeError{Name: name, Problem: errs.Undeclared}
	}
	if !b.mutable {
		return errs.ScopeError{Name: name, Problem: errs.Immutable}
	}
	b.value = ownValue(v)
	return nil
}

// Lookup finds the value bound to name through the chain of parents.
func (c *Context) Lookup(name string) (any, bool) {
	if b := c.find(name); b != nil {
		return b.value, true
	}
	return nil, false
}

// IsMutable reports whether name is bound mutably. It returns false if name
// is not bound.
func (c *Context) IsMutable(name string) bool {
	b := c.find(name)
	return b != nil && b.mutable
}

// Names returns the names of all bindings visible from c, sorted.
func (c *Context) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for s := c; s != nil; s = s.parent {
		for name := range s.names {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func (c *Context) find(name string) *binding {
	for s := c; s != nil; s = s.parent {
		if b, ok := s.names[name]; ok {
			return b
		}
	}
	return nil
}

// Replaces the value of a binding in c itself, ignoring mutability.
func (c *Context) replace(name string, v any) {
	c.names[name].value = ownValue(v)
}

func ownValue(v any) any {
	if it, ok := v.(vals.Iterable); ok {
		return it.Copy()
	}
	return v
}
