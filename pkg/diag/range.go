package diag

import "strconv"

// Ranger is anything that covers a part of a source, like a token, an AST
// node or an error.
type Ranger interface {
	Range() Ranging
}

// Ranging is the byte range [From, To) of a source. Embedding it makes a
// struct a Ranger.
type Ranging struct {
	From int
	To   int
}

func (r Ranging) Range() Ranging { return r }

// PointRanging is the empty range at p.
func PointRanging(p int) Ranging { return Ranging{p, p} }

// MixedRanging spans from the start of a to the end of b.
func MixedRanging(a, b Ranger) Ranging {
	return Ranging{From: a.Range().From, To: b.Range().To}
}

// Position is a line and column, both starting from 1. Columns are counted in
// runes. The zero Position means an unknown location.
type Position struct {
	Line int
	Col  int
}

func (p Position) IsValid() bool { return p.Line > 0 }

// String returns "line:col".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}
