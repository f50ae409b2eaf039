package runtime

import (
	"testing"

	"pyaotc/internal/object"
)

func TestCompareNumericOrdering(t *testing.T) {
	a, b := mustInt(t, "2"), mustInt(t, "3")
	cases := []struct {
		op   CmpOp
		want bool
	}{
		{CmpEq, false}, {CmpNe, true}, {CmpLt, true}, {CmpLe, true}, {CmpGt, false}, {CmpGe, false},
	}
	for _, c := range cases {
		r, err := Compare(a, b, c.op)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Bool != c.want {
			t.Errorf("op=%d: got %v, want %v", c.op, r.Bool, c.want)
		}
	}
}

func TestCompareStringOrdering(t *testing.T) {
	a, b := object.NewString("apple"), object.NewString("banana")
	r, err := Compare(a, b, CmpLt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Bool {
		t.Fatal("expected 'apple' < 'banana'")
	}
}

func TestCompareOrderingBetweenIncompatibleTypesIsTypeError(t *testing.T) {
	a, b := mustInt(t, "1"), object.NewString("x")
	_, err := Compare(a, b, CmpLt)
	if err == nil || err.Kind != object.ErrTypeError {
		t.Fatalf("got %v, want TypeError", err)
	}
}

func TestCompareNoneEquality(t *testing.T) {
	n1, n2 := object.None(), object.None()
	r, err := Compare(n1, n2, CmpEq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Bool {
		t.Fatal("None should equal None")
	}
	r2, _ := Compare(n1, mustInt(t, "0"), CmpEq)
	if r2.Bool {
		t.Fatal("None should not equal a non-None object")
	}
}

func TestToBoolTruthiness(t *testing.T) {
	if ToBool(object.None()) {
		t.Error("None should be falsy")
	}
	if ToBool(object.NewString("")) {
		t.Error("empty string should be falsy")
	}
	if !ToBool(object.NewString("x")) {
		t.Error("non-empty string should be truthy")
	}
	if ToBool(mustInt(t, "0")) {
		t.Error("0 should be falsy")
	}
	if !ToBool(mustInt(t, "1")) {
		t.Error("1 should be truthy")
	}
}

func TestNot(t *testing.T) {
	if !Not(mustInt(t, "0")).Bool {
		t.Error("not 0 should be True")
	}
	if Not(mustInt(t, "1")).Bool {
		t.Error("not 1 should be False")
	}
}
