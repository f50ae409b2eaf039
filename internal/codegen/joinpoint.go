package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// JoinPoint is the SSA phi-like node materialized in a while loop's
// cond_bb for each loop-carried name. It is built in two stages: the
// preheader incoming is known immediately; the latch incoming is
// patched in once the loop body has been lowered.
// JoinPoint satisfies symtab.JoinWriter so C5's Update can write
// through it under LoopStrategy.
type JoinPoint struct {
	Phi     *ir.InstPhi
	Preheader *ir.Block
	CondBB  *ir.Block
	latchVal value.Value // set by WriteLatch once the body assigns the name
	preheaderVal value.Value
}

// NewJoinPoint creates the phi instruction in condBB with only the
// preheader incoming known; the latch incoming is added later via
// PatchLatch once the loop's latch block exists.
func NewJoinPoint(condBB *ir.Block, preheader *ir.Block, preheaderVal value.Value) *JoinPoint {
	phi := condBB.NewPhi(ir.NewIncoming(preheaderVal, preheader))
	return &JoinPoint{Phi: phi, Preheader: preheader, CondBB: condBB, preheaderVal: preheaderVal}
}

// WriteLatch records the value this join point should carry from the
// loop's latch block; PatchLatch below wires it into the phi once the
// latch block itself is known (it may not exist yet when the body
// starts lowering, e.g. nested loops/if that add blocks after entry).
func (j *JoinPoint) WriteLatch(v value.Value) { j.latchVal = v }

// CurrentValue returns the SSA value reads inside the loop should see:
// the phi itself, which already reflects the preheader value before
// the body runs and will reflect the merged value after back-edges are
// patched (standard SSA: reads always target the phi, not the
// incoming operands directly).
func (j *JoinPoint) CurrentValue() value.Value { return j.Phi }

// PatchLatch adds the second incoming edge from the loop's latch block,
// completing the phi. If the body never reassigned the name, the
// latch value defaults to the phi's own current value (a self-loop
// incoming), which is what an unconditionally-preserved loop-carried
// variable should do.
func (j *JoinPoint) PatchLatch(latch *ir.Block) {
	v := j.latchVal
	if v == nil {
		v = j.Phi
	}
	j.Phi.Incs = append(j.Phi.Incs, ir.NewIncoming(v, latch))
}
