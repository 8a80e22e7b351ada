package evaltest

import (
	"math"
	"path/filepath"
	"regexp"

	"src.fsl.sh/pkg/eval/vals"
)

// ValueMatcher is a value that can be passed to [Case.Returns] and has its
// own matching semantics.
type ValueMatcher interface {
	// Matches the value against the matcher. The root of the sandbox is passed
	// for matching paths.
	matchValue(value any, root string) bool
	Repr() string
}

// Anything matches anything. It is useful when the value contains information
// that is useful when the test fails.
var Anything ValueMatcher = anything{}

type anything struct{}

func (anything) matchValue(any, string) bool { return true }
func (anything) Repr() string                { return "anything" }

// ApproximatelyThreshold defines the threshold for matching float64 values
// when using [Approximately].
const ApproximatelyThreshold = 1e-15

// Approximately matches a number within the threshold defined by
// [ApproximatelyThreshold].
func Approximately(f float64) ValueMatcher { return approximately{f} }

type approximately struct{ value float64 }

func (a approximately) matchValue(value any, _ string) bool {
	if value, ok := value.(float64); ok {
		return matchFloat64(a.value, value, ApproximatelyThreshold)
	}
	return false
}

func (a approximately) Repr() string { return "approximately " + vals.FormatNum(a.value) }

func matchFloat64(a, b, threshold float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if math.IsInf(a, 0) && math.IsInf(b, 0) &&
		math.Signbit(a) == math.Signbit(b) {
		return true
	}
	return math.Abs(a-b) <= threshold
}

// StringMatching matches any string matching a regexp pattern. If the
// pattern is not a valid regexp, the function panics.
func StringMatching(p string) ValueMatcher { return stringMatching{regexp.MustCompile(p)} }

type stringMatching struct{ pattern *regexp.Regexp }

func (s stringMatching) matchValue(value any, _ string) bool {
	if value, ok := value.(string); ok {
		return s.pattern.MatchString(value)
	}
	return false
}

func (s stringMatching) Repr() string { return "string matching " + s.pattern.String() }

// InRoot matches a Path to the given slash-separated path relative to the
// sandbox root.
func InRoot(rel string) ValueMatcher { return inRoot{rel} }

type inRoot struct{ rel string }

func (m inRoot) matchValue(value any, root string) bool {
	return value == vals.Path(filepath.Join(root, filepath.FromSlash(m.rel)))
}

func (m inRoot) Repr() string { return "<path $root/" + m.rel + ">" }

// ListOf matches any Iterable that yields the given values. The values may
// themselves be ValueMatchers.
func ListOf(vs ...any) ValueMatcher { return listOf{vs} }

type listOf struct{ values []any }

func (m listOf) matchValue(value any, root string) bool {
	it, ok := value.(vals.Iterable)
	if !ok {
		return false
	}
	got := vals.Collect(it)
	if len(got) != len(m.values) {
		return false
	}
	for i := range got {
		if !match(got[i], m.values[i], root) {
			return false
		}
	}
	return true
}

func (m listOf) Repr() string { return "iterable of " + vals.Repr(vals.NewList(m.values...)) }

func match(got, want any, root string) bool {
	if matcher, ok := want.(ValueMatcher); ok {
		return matcher.matchValue(got, root)
	}
	if got, ok := got.(float64); ok {
		// Special-case float64 to correctly handle NaN.
		if want, ok := want.(float64); ok {
			return matchFloat64(got, want, 0)
		}
	}
	return vals.Equal(got, want)
}

func reprWant(want any) string {
	if matcher, ok := want.(ValueMatcher); ok {
		return matcher.Repr()
	}
	return vals.Repr(want)
}
