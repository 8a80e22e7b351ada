package errutil

import (
	"errors"
	"io/fs"
	"testing"

	"src.fsl.sh/pkg/tt"
)

var (
	err1 = errors.New("error 1")
	err2 = errors.New("error 2")
	err3 = errors.New("error 3")
)

func TestMulti(t *testing.T) {
	tt.Test(t, Multi,
		tt.Args().Rets(nil),
		tt.Args(nil, nil).Rets(nil),
		tt.Args(err1).Rets(err1),
		tt.Args(nil, err1).Rets(err1),
		tt.Args(err1, err2).Rets(multiError{err1, err2}),
		tt.Args(Multi(err1, err2), err3).Rets(multiError{err1, err2, err3}).
			Named("flattened"),
	)
}

func TestMulti_Error(t *testing.T) {
	want := "multiple errors: error 1; error 2"
	if got := Multi(err1, err2).Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMulti_Unwrap(t *testing.T) {
	err := Multi(err1, fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("errors.Is does not see a wrapped error")
	}
}
