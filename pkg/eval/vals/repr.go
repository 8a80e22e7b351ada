package vals

import (
	"fmt"

	"src.fsl.sh/pkg/parse"
)

// Reprer wraps the Repr method.
type Reprer interface {
	// Repr returns a string that represents a Value. The string either be a
	// literal of that Value that is preferably deep-equal to it (like `"foo"`
	// for a string), or a string enclosed in "<>" containing the kind and
	// identity of the Value (like `<function f>`).
	Repr() string
}

// Repr returns the representation for a value, a string that is preferably
// (but not necessarily) an fsl expression that evaluates to the argument. It
// is used by the REPL to show results.
func Repr(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return FormatNum(v)
	case string:
		return parse.Quote(v)
	case Path:
		return "<path " + string(v) + ">"
	case Reprer:
		return v.Repr()
	default:
		return fmt.Sprintf("<unknown %v>", v)
	}
}
