package codegen

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"

	cerrors "pyaotc/internal/errors"
)

func TestVerifyPassesWellFormedModule(t *testing.T) {
	m := ir.NewModule()
	fn := m.NewFunc("f", irtypes.Void)
	block := fn.NewBlock("entry")
	block.NewRet(nil)

	if err := Verify(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyCatchesMissingTerminator(t *testing.T) {
	m := ir.NewModule()
	fn := m.NewFunc("f", irtypes.Void)
	fn.NewBlock("entry") // left without a terminator

	err := Verify(m)
	if err == nil {
		t.Fatal("expected a verification error for a block with no terminator")
	}
	ce, ok := err.(*cerrors.CompileError)
	if !ok || ce.Kind != cerrors.ModuleVerification {
		t.Fatalf("got %T %v, want a ModuleVerification CompileError", err, err)
	}
}

func TestVerifyCatchesPhiIncomingMismatch(t *testing.T) {
	m := ir.NewModule()
	fn := m.NewFunc("f", irtypes.Void)
	entry := fn.NewBlock("entry")
	join := fn.NewBlock("join")

	entry.NewBr(join)
	// Only one predecessor branches here, but the phi claims two incoming values.
	phi := join.NewPhi(ir.NewIncoming(constant.NewInt(irtypes.I64, 1), entry))
	phi.Incs = append(phi.Incs, ir.NewIncoming(constant.NewInt(irtypes.I64, 2), entry))
	join.NewRet(nil)

	err := Verify(m)
	if err == nil {
		t.Fatal("expected a verification error for a phi/predecessor mismatch")
	}
	ce, ok := err.(*cerrors.CompileError)
	if !ok || ce.Kind != cerrors.ModuleVerification {
		t.Fatalf("got %T %v, want a ModuleVerification CompileError", err, err)
	}
}

func TestVerifyCondBrCountsTwoPredecessors(t *testing.T) {
	m := ir.NewModule()
	fn := m.NewFunc("f", irtypes.Void)
	entry := fn.NewBlock("entry")
	thenB := fn.NewBlock("then")
	elseB := fn.NewBlock("else")
	join := fn.NewBlock("join")

	cond := constant.NewInt(irtypes.I1, 1)
	entry.NewCondBr(cond, thenB, elseB)
	thenB.NewBr(join)
	elseB.NewBr(join)

	join.NewPhi(
		ir.NewIncoming(constant.NewInt(irtypes.I64, 1), thenB),
		ir.NewIncoming(constant.NewInt(irtypes.I64, 2), elseB),
	)
	join.NewRet(nil)

	if err := Verify(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
