package ops

import (
	"testing"

	"pyaotc/internal/types"
)

func newTestRegistry() *Registry {
	return NewRegistry(types.NewRegistry())
}

func TestFindOperablePathDirect(t *testing.T) {
	r := newTestRegistry()
	path, err := r.FindOperablePath(Add, types.Int, types.Int)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path.Descr.Impl != "py_object_add" || path.Descr.ResultID != types.Int {
		t.Fatalf("got %+v", path.Descr)
	}
	if len(path.LeftConv) != 0 || len(path.RightConv) != 0 {
		t.Fatalf("direct match should need no conversions, got %+v / %+v", path.LeftConv, path.RightConv)
	}
}

func TestFindOperablePathPromotesBoolToInt(t *testing.T) {
	r := newTestRegistry()
	path, err := r.FindOperablePath(Add, types.Bool, types.Int)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path.Descr.Impl != "py_object_add" {
		t.Fatalf("got %+v", path.Descr)
	}
	if len(path.LeftConv) != 1 || path.LeftConv[0].From != types.Bool || path.LeftConv[0].To != types.Int {
		t.Fatalf("expected a single Bool->Int conversion on the left, got %+v", path.LeftConv)
	}
	if len(path.RightConv) != 0 {
		t.Fatalf("right side should need no conversion, got %+v", path.RightConv)
	}
}

func TestFindOperablePathStringRepeat(t *testing.T) {
	r := newTestRegistry()
	path, err := r.FindOperablePath(Mul, types.String, types.Int)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path.Descr.ResultID != types.String {
		t.Fatalf("string*int should yield string, got %s", types.NameOf(path.Descr.ResultID))
	}
}

func TestFindOperablePathNoneFails(t *testing.T) {
	r := newTestRegistry()
	_, err := r.FindOperablePath(Add, types.MakeList(types.Int), types.MakeDict(types.Int))
	if err == nil {
		t.Fatalf("expected an error for list+dict, got none")
	}
}

func TestLookupUnary(t *testing.T) {
	r := newTestRegistry()
	d, ok := r.LookupUnary(Neg, types.Int)
	if !ok || d.Impl != "py_object_negate" {
		t.Fatalf("got ok=%v d=%+v", ok, d)
	}
	if _, ok := r.LookupUnary(BitNot, types.String); ok {
		t.Fatalf("~ on string should not be registered")
	}
}

func TestFindOperablePathTieBreaksByPromotionRank(t *testing.T) {
	r := newTestRegistry()
	path, err := r.FindOperablePath(Eq, types.Any, types.Bool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path.Descr.Left != types.Any || path.Descr.Right != types.Any {
		t.Fatalf("expected the Any->Any edge (lower promotionRank) to win the tie, got %+v", path.Descr)
	}
}

func TestComparisonsYieldBool(t *testing.T) {
	r := newTestRegistry()
	for _, op := range []Token{Eq, Ne, Lt, Le, Gt, Ge} {
		d, ok := r.LookupBin(op, types.Int, types.Float)
		if !ok || d.ResultID != types.Bool {
			t.Errorf("%s(int, float) = %+v, ok=%v; want Bool result", op, d, ok)
		}
	}
}
