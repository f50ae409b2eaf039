package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"

	cerrors "pyaotc/internal/errors"
)

// Verify runs the module verification pass: every block must end in exactly one
// terminator, and every phi's incoming-edge count must match its
// block's actual predecessor count.
func Verify(m *ir.Module) error {
	preds := predecessorCounts(m)
	for _, fn := range m.Funcs {
		for _, block := range fn.Blocks {
			if block.Term == nil {
				return cerrors.New(cerrors.ModuleVerification,
					fmt.Sprintf("block %q in function %q has no terminator", block.Name(), fn.Name()),
					m.SourceFilename, 0, 0)
			}
			for _, inst := range block.Insts {
				phi, ok := inst.(*ir.InstPhi)
				if !ok {
					continue
				}
				want := preds[block]
				if len(phi.Incs) != want {
					return cerrors.New(cerrors.ModuleVerification,
						fmt.Sprintf("phi in block %q of function %q has %d incoming values, want %d", block.Name(), fn.Name(), len(phi.Incs), want),
						m.SourceFilename, 0, 0)
				}
			}
		}
	}
	return nil
}

// predecessorCounts walks every block's terminator to count how many
// blocks branch into each target.
func predecessorCounts(m *ir.Module) map[*ir.Block]int {
	counts := make(map[*ir.Block]int)
	for _, fn := range m.Funcs {
		for _, block := range fn.Blocks {
			for _, target := range successorsOf(block) {
				counts[target]++
			}
		}
	}
	return counts
}

func successorsOf(block *ir.Block) []*ir.Block {
	switch term := block.Term.(type) {
	case *ir.TermBr:
		return []*ir.Block{term.Target}
	case *ir.TermCondBr:
		return []*ir.Block{term.TargetTrue, term.TargetFalse}
	case *ir.TermSwitch:
		targets := []*ir.Block{term.TargetDefault}
		for _, c := range term.Cases {
			targets = append(targets, c.Target)
		}
		return targets
	default:
		return nil
	}
}
