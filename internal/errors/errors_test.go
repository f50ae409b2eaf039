package errors

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestNewCapturesLocation(t *testing.T) {
	ce := New(TypeError, "bad operand", "mod.py", 10, 4)
	if ce.Kind != TypeError || ce.Location.Line != 10 || ce.Location.Column != 4 {
		t.Fatalf("got %+v", ce)
	}
	rendered := ce.Error()
	if !strings.Contains(rendered, "TypeError") || !strings.Contains(rendered, "mod.py:10:4") {
		t.Fatalf("rendered error missing location/kind: %q", rendered)
	}
}

func TestWrapPreservesStackTrace(t *testing.T) {
	cause := errors.New("underlying failure")
	ce := Wrap(cause, UnknownName, "mod.py", 1, 1)
	if ce.Kind != UnknownName || ce.Message != "underlying failure" {
		t.Fatalf("got %+v", ce)
	}
	if ce.StackTrace() == nil {
		t.Fatal("expected a non-nil stack trace from the wrapped pkg/errors cause")
	}
}

func TestAccumulatorCollectsInOrder(t *testing.T) {
	var acc Accumulator
	if acc.HasErrors() {
		t.Fatal("fresh accumulator should report no errors")
	}
	acc.Add(New(SyntaxError, "first", "a.py", 1, 1))
	acc.Add(New(InvalidAssignment, "second", "a.py", 2, 1))

	if !acc.HasErrors() {
		t.Fatal("expected HasErrors to be true after Add")
	}
	errs := acc.Errors()
	if len(errs) != 2 || errs[0].Kind != SyntaxError || errs[1].Kind != InvalidAssignment {
		t.Fatalf("got %+v", errs)
	}
	n, warnings := acc.Count()
	if n != 2 || warnings != 0 {
		t.Fatalf("got errors=%d warnings=%d, want 2/0", n, warnings)
	}
}

func TestAccumulatorErrorRendersEveryDiagnostic(t *testing.T) {
	var acc Accumulator
	acc.Add(New(SyntaxError, "first", "a.py", 1, 1))
	acc.Add(New(TypeError, "second", "b.py", 2, 2))
	rendered := acc.Error()
	if !strings.Contains(rendered, "first") || !strings.Contains(rendered, "second") {
		t.Fatalf("got %q, want both diagnostics rendered", rendered)
	}
}
