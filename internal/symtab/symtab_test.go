package symtab

import (
	"testing"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"pyaotc/internal/ast"
	pytypes "pyaotc/internal/types"
)

func sentinelValue() value.Value { return constant.NewInt(types.I64, 7) }

func TestDefineAndLookupWithinScope(t *testing.T) {
	tbl := New()
	tbl.Define("x", &Binding{Kind: DirectValue, Type: pytypes.Int})
	b, ok := tbl.Lookup("x")
	if !ok || b.Type != pytypes.Int {
		t.Fatalf("got ok=%v b=%+v", ok, b)
	}
}

func TestLookupWalksOuterScopes(t *testing.T) {
	tbl := New()
	tbl.Define("x", &Binding{Kind: DirectValue, Type: pytypes.String})
	tbl.Push()
	defer tbl.Pop()
	b, ok := tbl.Lookup("x")
	if !ok || b.Type != pytypes.String {
		t.Fatalf("expected to find outer-scope binding, got ok=%v b=%+v", ok, b)
	}
}

func TestPopHidesInnerScopeBindings(t *testing.T) {
	tbl := New()
	tbl.Push()
	tbl.Define("y", &Binding{Kind: DirectValue, Type: pytypes.Int})
	tbl.Pop()
	if _, ok := tbl.Lookup("y"); ok {
		t.Fatal("binding defined in a popped scope should no longer be visible")
	}
}

func TestFindFunctionASTWalksOuterScopes(t *testing.T) {
	tbl := New()
	fn := &ast.FuncDef{Name: "f", ReturnType: "int"}
	tbl.DefineFunctionAST("f", fn)
	tbl.Push()
	defer tbl.Pop()
	got, ok := tbl.FindFunctionAST("f")
	if !ok || got != fn {
		t.Fatalf("expected to resolve f from the outer scope, got ok=%v", ok)
	}
}

func TestFindFunctionReturnType(t *testing.T) {
	tbl := New()
	tbl.DefineFunctionAST("f", &ast.FuncDef{Name: "f", ReturnType: "float"})
	id, ok := tbl.FindFunctionReturnType("f")
	if !ok || id != pytypes.Float {
		t.Fatalf("got id=%v ok=%v, want Float", id, ok)
	}
	if _, ok := tbl.FindFunctionReturnType("nonexistent"); ok {
		t.Fatal("expected no return type for an undefined function")
	}
}

func TestAnnotationTypeIDUnrecognizedFallsBackToAny(t *testing.T) {
	if got := AnnotationTypeID("bytes"); got != pytypes.Any {
		t.Fatalf("got %v, want Any for an unrecognized annotation", got)
	}
	if got := AnnotationTypeID("int"); got != pytypes.Int {
		t.Fatalf("got %v, want Int", got)
	}
}

func TestUpdateDefaultStrategyRebindsSlot(t *testing.T) {
	tbl := New()
	tbl.Define("x", &Binding{Kind: DirectValue, Type: pytypes.Int})
	tbl.Update("x", sentinelValue(), pytypes.Float)
	b, ok := tbl.Lookup("x")
	if !ok || b.Type != pytypes.Float {
		t.Fatalf("Update should rebind the existing binding's type, got %+v", b)
	}
}

func TestUpdateUndefinedNameDefinesIt(t *testing.T) {
	tbl := New()
	tbl.Update("z", sentinelValue(), pytypes.Bool)
	b, ok := tbl.Lookup("z")
	if !ok || b.Type != pytypes.Bool {
		t.Fatalf("Update on an unbound name should define it, got ok=%v b=%+v", ok, b)
	}
}

type recordingJoinWriter struct {
	wrote   bool
	written value.Value
}

func (r *recordingJoinWriter) WriteLatch(v value.Value) {
	r.wrote = true
	r.written = v
}
func (r *recordingJoinWriter) CurrentValue() value.Value { return r.written }

func TestUpdateLoopStrategyWritesThroughJoinNode(t *testing.T) {
	tbl := New()
	tbl.Define("x", &Binding{Kind: DirectValue, Type: pytypes.Int})
	jw := &recordingJoinWriter{}
	tbl.SetUpdateStrategy("x", LoopStrategy, jw)
	tbl.Update("x", sentinelValue(), pytypes.Int)
	if !jw.wrote {
		t.Fatal("expected Update to route through the join node's WriteLatch, not rebind the scope slot")
	}
}

func TestStrategyForDefaultsToDefaultStrategy(t *testing.T) {
	tbl := New()
	tbl.Define("x", &Binding{Kind: DirectValue, Type: pytypes.Int})
	strat, node := tbl.StrategyFor("x")
	if strat != DefaultStrategy || node != nil {
		t.Fatalf("got strat=%v node=%v, want DefaultStrategy/nil", strat, node)
	}
}
