package diag

import (
	"errors"
	"strings"
	"testing"
)

type showerError struct{}

func (showerError) Error() string       { return "error" }
func (showerError) Show(string) string { return "show" }

func TestShowError_UsesShowIfAvailable(t *testing.T) {
	var sb strings.Builder
	ShowError(&sb, showerError{})
	if got := sb.String(); got != "show\n" {
		t.Errorf("got %q, want %q", got, "show\n")
	}
}

func TestShowError_UsesErrorIfShowUnavailable(t *testing.T) {
	setMessageMarkers(t, "{", "}")
	var sb strings.Builder
	ShowError(&sb, errors.New("error"))
	if got := sb.String(); got != "{error}\n" {
		t.Errorf("got %q, want %q", got, "{error}\n")
	}
}

func TestSetStyled(t *testing.T) {
	setMessageMarkers(t, "{", "}")
	setCulpritMarkers(t, "<", ">")
	SetStyled(false)
	var sb strings.Builder
	Complain(&sb, "plain")
	if got := sb.String(); got != "plain\n" {
		t.Errorf("got %q, want %q", got, "plain\n")
	}
}
