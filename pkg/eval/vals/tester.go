package vals

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Tester checks properties of one value, in a chain of calls.
type Tester struct {
	t *testing.T
	v any
}

// TestValue starts checking v.
func TestValue(t *testing.T, v any) Tester {
	return Tester{t, v}
}

func (vt Tester) Kind(want string) Tester {
	vt.t.Helper()
	if got := Kind(vt.v); got != want {
		vt.t.Errorf("Kind(%v) = %s, want %s", vt.v, got, want)
	}
	return vt
}

func (vt Tester) Repr(want string) Tester {
	vt.t.Helper()
	if got := Repr(vt.v); got != want {
		vt.t.Errorf("Repr(%v) = %s, want %s", vt.v, got, want)
	}
	return vt
}

// String checks the result of ToString.
func (vt Tester) String(want string) Tester {
	vt.t.Helper()
	if got := ToString(vt.v); got != want {
		vt.t.Errorf("ToString(%v) = %q, want %q", vt.v, got, want)
	}
	return vt
}

// Equal checks that the value equals each of others.
func (vt Tester) Equal(others ...any) Tester {
	vt.t.Helper()
	for _, other := range others {
		if !Equal(vt.v, other) {
			vt.t.Errorf("Equal(%v, %v) = false, want true", vt.v, other)
		}
	}
	return vt
}

// NotEqual checks that the value equals none of others.
func (vt Tester) NotEqual(others ...any) Tester {
	vt.t.Helper()
	for _, other := range others {
		if Equal(vt.v, other) {
			vt.t.Errorf("Equal(%v, %v) = true, want false", vt.v, other)
		}
	}
	return vt
}

// Yields checks that a fresh copy of the iterable produces want. The value
// itself is not advanced.
func (vt Tester) Yields(want ...any) Tester {
	vt.t.Helper()
	it, ok := vt.v.(Iterable)
	if !ok {
		vt.t.Errorf("%v is not iterable", vt.v)
		return vt
	}
	got := Collect(it)
	if want == nil {
		want = []any{}
	}
	if got == nil {
		got = []any{}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		vt.t.Errorf("values of %s (-want +got):\n%s", Repr(vt.v), diff)
	}
	return vt
}
