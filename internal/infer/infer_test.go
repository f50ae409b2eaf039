package infer

import (
	"testing"

	"pyaotc/internal/ast"
	"pyaotc/internal/ops"
	"pyaotc/internal/types"
)

type fakeVars struct {
	vars    map[string]types.ID
	returns map[string]types.ID
}

func (f *fakeVars) LookupType(name string) (types.ID, bool) {
	t, ok := f.vars[name]
	return t, ok
}

func (f *fakeVars) FindFunctionReturnType(name string) (types.ID, bool) {
	t, ok := f.returns[name]
	return t, ok
}

func newTestInferencer(vars *fakeVars) *Inferencer {
	tr := types.NewRegistry()
	or := ops.NewRegistry(tr)
	if vars == nil {
		vars = &fakeVars{vars: map[string]types.ID{}, returns: map[string]types.ID{}}
	}
	return New(tr, or, vars)
}

func TestLiteralTypes(t *testing.T) {
	inf := newTestInferencer(nil)
	if got := inf.TypeOf(&ast.NumberLiteral{Kind: ast.IntLiteral, Text: "1"}); got != types.Int {
		t.Errorf("int literal: got %v", got)
	}
	if got := inf.TypeOf(&ast.NumberLiteral{Kind: ast.FloatLiteral, Text: "1.5"}); got != types.Float {
		t.Errorf("float literal: got %v", got)
	}
	if got := inf.TypeOf(&ast.StringLiteral{Value: "hi"}); got != types.String {
		t.Errorf("string literal: got %v", got)
	}
	if got := inf.TypeOf(&ast.BoolLiteral{Value: true}); got != types.Bool {
		t.Errorf("bool literal: got %v", got)
	}
	if got := inf.TypeOf(&ast.NoneLiteral{}); got != types.None {
		t.Errorf("none literal: got %v", got)
	}
}

func TestVariableFallsBackToAnyWhenUnbound(t *testing.T) {
	inf := newTestInferencer(nil)
	if got := inf.TypeOf(&ast.Variable{Name: "unbound"}); got != types.Any {
		t.Errorf("got %v, want Any for an unbound variable", got)
	}
}

func TestVariableResolvesFromLookup(t *testing.T) {
	vars := &fakeVars{vars: map[string]types.ID{"x": types.Float}, returns: map[string]types.ID{}}
	inf := newTestInferencer(vars)
	if got := inf.TypeOf(&ast.Variable{Name: "x"}); got != types.Float {
		t.Errorf("got %v, want Float", got)
	}
}

func TestBinaryAddIntInt(t *testing.T) {
	inf := newTestInferencer(nil)
	n := &ast.Binary{Op: "+", Left: &ast.NumberLiteral{Kind: ast.IntLiteral}, Right: &ast.NumberLiteral{Kind: ast.IntLiteral}}
	if got := inf.TypeOf(n); got != types.Int {
		t.Errorf("got %v, want Int", got)
	}
}

func TestBinaryCachesResultByNodeIdentity(t *testing.T) {
	inf := newTestInferencer(nil)
	n := &ast.Binary{Op: "+", Left: &ast.NumberLiteral{Kind: ast.IntLiteral}, Right: &ast.NumberLiteral{Kind: ast.FloatLiteral}}
	first := inf.TypeOf(n)
	if _, cached := inf.cache[n]; !cached {
		t.Fatal("expected TypeOf to populate the cache")
	}
	second := inf.TypeOf(n)
	if first != second {
		t.Errorf("cached result changed: %v vs %v", first, second)
	}
}

func TestUnaryNotIsAlwaysBool(t *testing.T) {
	inf := newTestInferencer(nil)
	n := &ast.Unary{Op: "not", Operand: &ast.StringLiteral{Value: "x"}}
	if got := inf.TypeOf(n); got != types.Bool {
		t.Errorf("got %v, want Bool", got)
	}
}

func TestUnaryNegPreservesNumericType(t *testing.T) {
	inf := newTestInferencer(nil)
	n := &ast.Unary{Op: "-", Operand: &ast.NumberLiteral{Kind: ast.IntLiteral}}
	if got := inf.TypeOf(n); got != types.Int {
		t.Errorf("got %v, want Int", got)
	}
}

func TestCallBuiltinReturnTypes(t *testing.T) {
	inf := newTestInferencer(nil)
	cases := map[string]types.ID{"int": types.Int, "float": types.Float, "str": types.String, "bool": types.Bool, "len": types.Int}
	for name, want := range cases {
		n := &ast.Call{Callee: &ast.Variable{Name: name}}
		if got := inf.TypeOf(n); got != want {
			t.Errorf("%s(): got %v, want %v", name, got, want)
		}
	}
}

func TestCallUserFunctionReturnType(t *testing.T) {
	vars := &fakeVars{vars: map[string]types.ID{}, returns: map[string]types.ID{"f": types.String}}
	inf := newTestInferencer(vars)
	n := &ast.Call{Callee: &ast.Variable{Name: "f"}}
	if got := inf.TypeOf(n); got != types.String {
		t.Errorf("got %v, want String", got)
	}
}

func TestIndexOnListYieldsElementType(t *testing.T) {
	vars := &fakeVars{vars: map[string]types.ID{"xs": types.MakeList(types.Int)}, returns: map[string]types.ID{}}
	inf := newTestInferencer(vars)
	n := &ast.Index{Container: &ast.Variable{Name: "xs"}, Key: &ast.NumberLiteral{Kind: ast.IntLiteral}}
	if got := inf.TypeOf(n); got != types.Int {
		t.Errorf("got %v, want Int", got)
	}
}

func TestIndexOnStringYieldsString(t *testing.T) {
	vars := &fakeVars{vars: map[string]types.ID{"s": types.String}, returns: map[string]types.ID{}}
	inf := newTestInferencer(vars)
	n := &ast.Index{Container: &ast.Variable{Name: "s"}, Key: &ast.NumberLiteral{Kind: ast.IntLiteral}}
	if got := inf.TypeOf(n); got != types.String {
		t.Errorf("got %v, want String", got)
	}
}

func TestListLiteralEmptyIsListOfAny(t *testing.T) {
	inf := newTestInferencer(nil)
	n := &ast.ListLiteral{}
	if got := inf.TypeOf(n); got != types.MakeList(types.Any) {
		t.Errorf("got %v, want list[any]", types.NameOf(got))
	}
}

func TestListLiteralWidensIntAndFloat(t *testing.T) {
	inf := newTestInferencer(nil)
	n := &ast.ListLiteral{Elements: []ast.Expr{
		&ast.NumberLiteral{Kind: ast.IntLiteral},
		&ast.NumberLiteral{Kind: ast.FloatLiteral},
	}}
	if got := inf.TypeOf(n); got != types.MakeList(types.Float) {
		t.Errorf("got %s, want list[float]", types.NameOf(got))
	}
}

func TestCommonSuperTypeMismatchedContainersIsAny(t *testing.T) {
	if got := CommonSuperType(types.MakeList(types.Int), types.MakeDict(types.Int)); got != types.Any {
		t.Errorf("got %s, want any", types.NameOf(got))
	}
}

func TestCommonSuperTypeAnyAbsorbs(t *testing.T) {
	if got := CommonSuperType(types.Any, types.String); got != types.Any {
		t.Errorf("got %s, want any", types.NameOf(got))
	}
}

func TestCommonSuperTypeRecursesIntoContainers(t *testing.T) {
	got := CommonSuperType(types.MakeList(types.Int), types.MakeList(types.Float))
	if got != types.MakeList(types.Float) {
		t.Errorf("got %s, want list[float]", types.NameOf(got))
	}
}
