package vals

import (
	"errors"
	"strings"
)

// Iterable is a lazy sequence of values with a cursor.
type Iterable interface {
	// Next returns the next value and true, or nil and false when the
	// sequence is exhausted. Calling Next after exhaustion keeps returning
	// false.
	Next() (any, bool)
	// Copy returns a new Iterable over the same sequence, positioned at the
	// start. The copy shares no cursor state with the receiver.
	Copy() Iterable
}

// ErrZeroStep is returned by NewRange when the step is zero.
var ErrZeroStep = errors.New("range step must not be zero")

// Range is a numeric range from Start (inclusive) to End (exclusive).
type Range struct {
	Start, End, Step float64
	n                int
}

// NewRange creates a Range. The step must not be zero.
func NewRange(start, end, step float64) (*Range, error) {
	if step == 0 {
		return nil, ErrZeroStep
	}
	return &Range{Start: start, End: end, Step: step}, nil
}

func (r *Range) Next() (any, bool) {
	v := r.Start + float64(r.n)*r.Step
	if (r.Step > 0 && v >= r.End) || (r.Step < 0 && v <= r.End) {
		return nil, false
	}
	r.n++
	return v, true
}

func (r *Range) Copy() Iterable { return &Range{Start: r.Start, End: r.End, Step: r.Step} }

func (r *Range) Repr() string {
	return "range(" + FormatNum(r.Start) + ", " + FormatNum(r.End) + ", " + FormatNum(r.Step) + ")"
}

// List is an Iterable over a fixed sequence of values.
type List struct {
	elems []any
	i     int
}

// NewList creates a List. The slice is not copied and must not be modified
// afterwards.
func NewList(elems ...any) *List { return &List{elems: elems} }

func (l *List) Next() (any, bool) {
	if l.i >= len(l.elems) {
		return nil, false
	}
	v := l.elems[l.i]
	l.i++
	return v, true
}

func (l *List) Copy() Iterable { return &List{elems: l.elems} }

// Len returns the number of elements in the list, regardless of the cursor.
func (l *List) Len() int { return len(l.elems) }

// Elems returns the elements of the list, regardless of the cursor. The
// returned slice must not be modified.
func (l *List) Elems() []any { return l.elems }

func (l *List) Repr() string {
	var sb strings.Builder
	sb.WriteString("list(")
	for i, v := range l.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(Repr(v))
	}
	sb.WriteString(")")
	return sb.String()
}

// StringIter yields the characters of a string, one String per rune.
type StringIter struct {
	s     string
	runes []rune
	i     int
}

// NewStringIter creates a StringIter.
func NewStringIter(s string) *StringIter {
	return &StringIter{s: s, runes: []rune(s)}
}

func (it *StringIter) Next() (any, bool) {
	if it.i >= len(it.runes) {
		return nil, false
	}
	v := string(it.runes[it.i])
	it.i++
	return v, true
}

func (it *StringIter) Copy() Iterable { return &StringIter{s: it.s, runes: it.runes} }

func (it *StringIter) Repr() string { return "<iterable " + Repr(it.s) + ">" }

// Dir yields the entries of a directory as Paths. The entries are listed when
// the Dir is created; use the evaluator to create one, so that the listing
// goes through the permission checks of the sandbox.
type Dir struct {
	Path    Path
	entries []string
	i       int
}

// NewDir creates a Dir over the given full paths of entries.
func NewDir(path Path, entries []string) *Dir {
	return &Dir{Path: path, entries: entries}
}

func (d *Dir) Next() (any, bool) {
	if d.i >= len(d.entries) {
		return nil, false
	}
	v := Path(d.entries[d.i])
	d.i++
	return v, true
}

func (d *Dir) Copy() Iterable { return &Dir{Path: d.Path, entries: d.entries} }

func (d *Dir) Repr() string { return "<iterable " + string(d.Path) + ">" }

// Collect drains a copy of it and returns all its values. The cursor of it is
// not moved.
func Collect(it Iterable) []any {
	var vs []any
	c := it.Copy()
	for v, ok := c.Next(); ok; v, ok = c.Next() {
		vs = append(vs, v)
	}
	return vs
}
