package tracker

import (
	"testing"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

func val(n int64) value.Value { return constant.NewInt(types.I64, n) }

func TestDrainReturnsUnadoptedReferences(t *testing.T) {
	tr := New()
	a, b := val(1), val(2)
	tr.Mark(a, TagLiteral)
	tr.Mark(b, TagBinaryOp)

	drained := tr.Drain()
	if len(drained) != 2 {
		t.Fatalf("got %d drained values, want 2", len(drained))
	}
}

func TestAdoptExcludesFromDrain(t *testing.T) {
	tr := New()
	a, b := val(1), val(2)
	tr.Mark(a, TagLiteral)
	tr.Mark(b, TagFunctionReturn)
	tr.Adopt(a)

	drained := tr.Drain()
	if len(drained) != 1 || drained[0] != b {
		t.Fatalf("got %v, want only b to survive the adopt", drained)
	}
}

func TestDrainResetsTrackerState(t *testing.T) {
	tr := New()
	tr.Mark(val(1), TagIndexAccess)
	tr.Drain()

	if drained := tr.Drain(); len(drained) != 0 {
		t.Fatalf("second Drain should be empty after reset, got %v", drained)
	}
}

func TestAdoptBeforeMarkStillExcludes(t *testing.T) {
	tr := New()
	a := val(1)
	tr.Adopt(a)
	tr.Mark(a, TagLiteral)

	drained := tr.Drain()
	if len(drained) != 0 {
		t.Fatalf("got %v, want a excluded regardless of Adopt/Mark order", drained)
	}
}

func TestMarkOrderIsPreservedInDrain(t *testing.T) {
	tr := New()
	a, b, c := val(1), val(2), val(3)
	tr.Mark(a, TagLiteral)
	tr.Mark(b, TagBinaryOp)
	tr.Mark(c, TagIndexAccess)

	drained := tr.Drain()
	if len(drained) != 3 || drained[0] != a || drained[1] != b || drained[2] != c {
		t.Fatalf("got %v, want a,b,c in mark order", drained)
	}
}
