package vals

import "src.fsl.sh/pkg/diag"

// FlowKind tells how evaluation of a block ended.
type FlowKind int

// Possible values of FlowKind.
const (
	// The block ran to its end.
	Normal FlowKind = iota
	Return
	Break
	Continue
)

var flowNames = [...]string{"normal", "return", "break", "continue"}

func (k FlowKind) String() string {
	if k < 0 || int(k) >= len(flowNames) {
		return "!(BAD FLOW)"
	}
	return flowNames[k]
}

// Flow is the result of evaluating a block. It is never bound to a name or
// passed to a function; enclosing constructs inspect Kind to decide whether to
// keep going. Value is the value of a return, and Ranging the location of the
// statement that caused the flow.
type Flow struct {
	Kind  FlowKind
	Value any
	diag.Ranging
}

// NormalFlow is the Flow of a block that ran to its end.
var NormalFlow = Flow{}

// IsAbrupt reports whether the flow skips the rest of the enclosing block.
func (f Flow) IsAbrupt() bool { return f.Kind != Normal }
