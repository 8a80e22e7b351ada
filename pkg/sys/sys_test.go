package sys

import (
	"os"
	"testing"

	"src.fsl.sh/pkg/must"
)

func TestAllTerminals(t *testing.T) {
	r, w := must.Pipe()
	defer r.Close()
	defer w.Close()
	if IsATTY(r.Fd()) {
		t.Errorf("pipe is reported as a terminal")
	}
	for _, files := range [][]*os.File{{w}, {nil}, {}, {r, w}} {
		if AllTerminals(files...) {
			t.Errorf("AllTerminals(%v) = true, want false", files)
		}
	}
}
