package batch

import (
	"errors"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK(3, "rep-1")
	if r.ID() != "rep-1" || r.Position() != 3 {
		t.Errorf("ID/Position = %q/%d", r.ID(), r.Position())
	}
	if r.Status() != StatusOK {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("invalid hash")
	r := NewError(0, "", err)
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{
		NewOK(0, "a"),
		NewError(1, "", errors.New("x")),
		NewOK(2, "c"),
	})
	if s.OK != 2 || s.Failed != 1 {
		t.Errorf("Summarize = %+v", s)
	}
}
