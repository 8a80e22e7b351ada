package vals

import (
	"math"
	"testing"

	"src.fsl.sh/pkg/tt"
)

func TestFormatNum(t *testing.T) {
	tt.Test(t, FormatNum,
		tt.Args(42.0).Rets("42"),
		tt.Args(-2.5).Rets("-2.5"),
		tt.Args(0.1).Rets("0.1"),
		// Whole numbers with more than 14 digits and trailing 0 are printed in
		// scientific notation.
		tt.Args(1e13).Rets("10000000000000"),
		tt.Args(1e14).Rets("1e+14"),
		tt.Args(1e14+1).Rets("100000000000001"),
		// Numbers smaller than 0.0001 are printed in scientific notation.
		tt.Args(0.0001).Rets("0.0001"),
		tt.Args(0.00001).Rets("1e-05"),
		tt.Args(-0.00009).Rets("-9e-05"),

		tt.Args(math.Inf(1)).Rets("inf"),
		tt.Args(math.Inf(-1)).Rets("-inf"),
		tt.Args(math.NaN()).Rets("nan"),
	)
}

func TestToString(t *testing.T) {
	tt.Test(t, ToString,
		tt.Args("a").Rets("a"),
		tt.Args(3.0).Rets("3"),
		tt.Args(Path("/a/b")).Rets("/a/b"),
		// None of the above: delegate to Repr
		tt.Args(true).Rets("true"),
		tt.Args(nil).Rets("null"),
		tt.Args(NewList("x", 1.0)).Rets(`list("x", 1)`),
	)
}
