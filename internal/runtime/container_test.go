package runtime

import (
	"testing"

	"pyaotc/internal/object"
	"pyaotc/internal/types"
)

func TestStringConcat(t *testing.T) {
	a, b := object.NewString("foo"), object.NewString("bar")
	r, err := StringConcat(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Str != "foobar" {
		t.Fatalf("got %q, want foobar", r.Str)
	}
}

func TestStringConcatTypeError(t *testing.T) {
	a, b := object.NewString("foo"), mustInt(t, "1")
	_, err := StringConcat(a, b)
	if err == nil || err.Kind != object.ErrTypeError {
		t.Fatalf("got %v, want TypeError", err)
	}
}

func TestStringRepeatNegativeCountYieldsEmpty(t *testing.T) {
	s, n := object.NewString("ab"), mustInt(t, "-3")
	r, err := StringRepeat(s, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Str != "" {
		t.Fatalf("got %q, want empty string", r.Str)
	}
}

func TestStringIndexNegativeWrapsFromEnd(t *testing.T) {
	s := object.NewString("hello")
	r, err := StringIndex(s, mustInt(t, "-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Str != "o" {
		t.Fatalf("got %q, want o", r.Str)
	}
}

func TestStringIndexOutOfRange(t *testing.T) {
	s := object.NewString("hi")
	_, err := StringIndex(s, mustInt(t, "10"))
	if err == nil || err.Kind != object.ErrIndexError {
		t.Fatalf("got %v, want IndexError", err)
	}
}

func TestListConcatWidensMismatchedElementTypes(t *testing.T) {
	a := object.NewList(1, types.Int)
	a.List.Data = append(a.List.Data, mustInt(t, "1"))
	b := object.NewList(1, types.String)
	b.List.Data = append(b.List.Data, object.NewString("x"))

	r, err := ListConcat(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.List.ElemTypeID != types.Any {
		t.Fatalf("expected element type to widen to Any on mismatch, got %v", r.List.ElemTypeID)
	}
	if len(r.List.Data) != 2 {
		t.Fatalf("got %d elements, want 2", len(r.List.Data))
	}
}

func TestListRepeatZeroOrNegativeYieldsEmpty(t *testing.T) {
	l := object.NewList(1, types.Int)
	l.List.Data = append(l.List.Data, mustInt(t, "1"))
	r, err := ListRepeat(l, mustInt(t, "0"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.List.Data) != 0 {
		t.Fatalf("got %d elements, want 0", len(r.List.Data))
	}
	r, err = ListRepeat(l, mustInt(t, "-2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.List.Data) != 0 {
		t.Fatalf("negative count: got %d elements, want 0", len(r.List.Data))
	}
}

func TestListAppendIncrefsExactlyOnce(t *testing.T) {
	l := object.NewList(0, types.Int)
	elem := mustInt(t, "9")
	before := elem.RefCount
	ListAppend(l, elem)
	if elem.RefCount != before+1 {
		t.Fatalf("got RefCount %d, want %d", elem.RefCount, before+1)
	}
	if len(l.List.Data) != 1 || l.List.Data[0] != elem {
		t.Fatalf("expected the element to be appended")
	}
}

func TestLenWithoutDispatchIsTypeError(t *testing.T) {
	SetDispatch(nil)
	_, err := Len(mustInt(t, "1"))
	if err == nil || err.Kind != object.ErrTypeError {
		t.Fatalf("got %v, want TypeError when dispatch is unset", err)
	}
}
