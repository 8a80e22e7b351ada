package eval_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.fsl.sh/pkg/eval"
	"src.fsl.sh/pkg/eval/errs"
	"src.fsl.sh/pkg/eval/vals"
)

func TestContext(t *testing.T) {
	root := eval.NewContext()
	if root.Root() != root || root.Parent() != nil {
		t.Errorf("root context has wrong Root or Parent")
	}
	if err := root.Define("a", 1.0, true); err != nil {
		t.Fatal(err)
	}
	if err := root.Define("c", "x", false); err != nil {
		t.Fatal(err)
	}

	child := root.Child()
	if child.Root() != root || child.Parent() != root {
		t.Errorf("child context has wrong Root or Parent")
	}
	if v, ok := child.Lookup("a"); v != 1.0 || !ok {
		t.Errorf("Lookup(a) = (%v, %v), want (1, true)", v, ok)
	}
	if _, ok := child.Lookup("nope"); ok {
		t.Errorf("Lookup(nope) found a binding")
	}

	// Assignment goes to the binding in the parent.
	if err := child.Assign("a", 2.0); err != nil {
		t.Errorf("Assign(a) -> %v", err)
	}
	if v, _ := root.Lookup("a"); v != 2.0 {
		t.Errorf("root a = %v, want 2", v)
	}

	// Shadowing.
	if err := child.Define("a", "shadow", false); err != nil {
		t.Errorf("Define(a) in child -> %v", err)
	}
	if v, _ := child.Lookup("a"); v != "shadow" {
		t.Errorf("child a = %v, want shadow", v)
	}
	if v, _ := root.Lookup("a"); v != 2.0 {
		t.Errorf("root a = %v after shadowing, want 2", v)
	}

	wantErr := func(err, want error) {
		t.Helper()
		if err != want {
			t.Errorf("got error %v, want %v", err, want)
		}
	}
	wantErr(child.Define("a", 3.0, true), errs.ScopeError{Name: "a", Problem: errs.Redeclared})
	wantErr(child.Assign("a", 3.0), errs.ScopeError{Name: "a", Problem: errs.Immutable})
	wantErr(child.Assign("c", 3.0), errs.ScopeError{Name: "c", Problem: errs.Immutable})
	wantErr(child.Assign("nope", 3.0), errs.ScopeError{Name: "nope", Problem: errs.Undeclared})

	if !root.IsMutable("a") || child.IsMutable("a") || child.IsMutable("nope") {
		t.Errorf("IsMutable gives wrong results")
	}
	if diff := cmp.Diff([]string{"a", "c"}, child.Names()); diff != "" {
		t.Errorf("Names() (-want +got):\n%s", diff)
	}
}

func TestContext_CopiesIterables(t *testing.T) {
	c := eval.NewContext()
	r, _ := vals.NewRange(0, 3, 1)
	r.Next()
	c.Define("r", r, true)

	v, _ := c.Lookup("r")
	if v == r {
		t.Errorf("binding shares the iterable")
	}
	if got := vals.Collect(v.(vals.Iterable)); len(got) != 3 {
		t.Errorf("bound copy yields %v, want 3 values from the start", got)
	}
	// The cursor of the original is left alone.
	if next, _ := r.Next(); next != 1.0 {
		t.Errorf("original advanced to %v, want 1", next)
	}
}
