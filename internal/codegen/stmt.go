package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"pyaotc/internal/ast"
	"pyaotc/internal/symtab"
	"pyaotc/internal/types"
)

// StmtLowerer implements C8: every statement kind lowers to one or
// more basic blocks, threading the same FuncCtx the expression
// lowerer writes into.
type StmtLowerer struct {
	l  *Lowerer
	fn *FuncCtx
}

func (s *StmtLowerer) expr() *ExprLowerer {
	s.l.expr.fn = s.fn
	return s.l.expr
}

func (s *StmtLowerer) block() *ir.Block { return s.fn.Current }

// lowerTopLevel dispatches a module's top-level statement: FuncDef and
// ClassDef are handled specially (they don't execute inline), every
// other kind lowers through the normal statement visitor.
func (s *StmtLowerer) lowerTopLevel(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.FuncDef:
		s.lowerFuncDef(n)
	case *ast.ClassDef:
		s.lowerClassDef(n)
	default:
		stmt.Accept(s)
		s.releaseStatementBoundary()
	}
}

// releaseStatementBoundary flushes the deferred-release tracker: every
// fresh reference produced while lowering the statement that nothing
// has adopted gets decref'd here.
func (s *StmtLowerer) releaseStatementBoundary() {
	for _, v := range s.l.track.Drain() {
		s.l.abi.Call(s.block(), "py_decref", v)
	}
}

func (s *StmtLowerer) lowerBody(body []ast.Stmt) {
	for _, st := range body {
		st.Accept(s)
		s.releaseStatementBoundary()
	}
}

func (s *StmtLowerer) VisitExprStmt(n *ast.ExprStmt) interface{} {
	s.expr().Lower(n.Value)
	return nil
}

// VisitAssign implements the C8 assignment handler: evaluate the RHS,
// apply the declared conversion if present, then either rebind
// (DefaultStrategy) or write through a loop join point (LoopStrategy),
// decref'ing whatever the name previously held.
func (s *StmtLowerer) VisitAssign(n *ast.Assign) interface{} {
	v, t := s.expr().Lower(n.Value)
	if n.Declared != "" {
		want := symtab.AnnotationTypeID(n.Declared)
		if want != types.Any && want != t {
			v = s.l.abi.Call(s.block(), "py_smart_convert", v, i32(int64(want)))
			t = want
		}
	}
	s.l.track.Adopt(v)

	if old, ok := s.l.symbols.Lookup(n.Name); ok {
		strat, _ := s.l.symbols.StrategyFor(n.Name)
		if strat == symtab.LoopStrategy {
			if old.Value != nil {
				s.l.abi.Call(s.block(), "py_decref", old.Value)
			}
			s.l.symbols.Update(n.Name, v, t)
			return nil
		}
		switch old.Kind {
		case symtab.StackSlot:
			prior := s.block().NewLoad(PyObjPtr, old.Slot)
			s.l.abi.Call(s.block(), "py_decref", prior)
			s.block().NewStore(v, old.Slot)
			old.Type = t
		case symtab.GlobalCell:
			prior := s.block().NewLoad(PyObjPtr, old.Cell)
			s.l.abi.Call(s.block(), "py_decref", prior)
			s.block().NewStore(v, old.Cell)
			old.Type = t
		default:
			if old.Value != nil {
				s.l.abi.Call(s.block(), "py_decref", old.Value)
			}
			s.l.symbols.Update(n.Name, v, t)
		}
		return nil
	}

	s.l.symbols.Define(n.Name, &symtab.Binding{Kind: symtab.DirectValue, Value: v, Type: t})
	return nil
}

// VisitIndexAssign lowers `container[key] = value` to py_object_set_index.
func (s *StmtLowerer) VisitIndexAssign(n *ast.IndexAssign) interface{} {
	cv, _ := s.expr().Lower(n.Container)
	kv, _ := s.expr().Lower(n.Key)
	vv, _ := s.expr().Lower(n.Value)
	s.l.abi.Call(s.block(), "py_object_set_index", cv, kv, vv)
	return nil
}

// VisitIf lowers if/elif/else with a shared merge block; an elif chain
// arrives as a nested *ast.If inside Else, so this recurses naturally.
func (s *StmtLowerer) VisitIf(n *ast.If) interface{} {
	cond, _ := s.expr().Lower(n.Cond)
	condBool := s.l.abi.Call(s.block(), "py_object_to_bool", cond)

	thenBB := s.fn.Func.NewBlock(symtab.UniqueName("then"))
	mergeBB := s.fn.Func.NewBlock(symtab.UniqueName("endif"))

	var elseBB *ir.Block
	if n.Else != nil {
		elseBB = s.fn.Func.NewBlock(symtab.UniqueName("else"))
		s.block().NewCondBr(condBool, thenBB, elseBB)
	} else {
		s.block().NewCondBr(condBool, thenBB, mergeBB)
	}

	s.fn.Current = thenBB
	s.lowerBody(n.Then)
	if s.block().Term == nil {
		s.block().NewBr(mergeBB)
	}

	if n.Else != nil {
		s.fn.Current = elseBB
		s.lowerBody(n.Else)
		if s.block().Term == nil {
			s.block().NewBr(mergeBB)
		}
	}

	s.fn.Current = mergeBB
	return nil
}

// VisitWhile lowers a while loop with a cond block holding a phi
// (JoinPoint) per loop-carried name, a body block, and an exit block,
// using JoinPoint's two-stage join construction.
func (s *StmtLowerer) VisitWhile(n *ast.While) interface{} {
	preheader := s.block()
	condBB := s.fn.Func.NewBlock(symtab.UniqueName("whilecond"))
	bodyBB := s.fn.Func.NewBlock(symtab.UniqueName("whilebody"))
	exitBB := s.fn.Func.NewBlock(symtab.UniqueName("whileexit"))

	carried := loopCarriedNames(n.Body)
	joins := make(map[string]*JoinPoint)
	s.l.symbols.Push()
	for _, name := range carried {
		b, ok := s.l.symbols.Lookup(name)
		if !ok {
			continue
		}
		preVal := bindingValue(s, b)
		s.fn.Current = condBB
		jp := NewJoinPoint(condBB, preheader, preVal)
		joins[name] = jp
		s.l.symbols.Define(name, &symtab.Binding{Kind: symtab.DirectValue, Value: jp.CurrentValue(), Type: b.Type})
		s.l.symbols.SetUpdateStrategy(name, symtab.LoopStrategy, jp)
	}

	s.fn.Current = preheader
	s.block().NewBr(condBB)

	s.fn.Current = condBB
	cond, _ := s.expr().Lower(n.Cond)
	condBool := s.l.abi.Call(s.block(), "py_object_to_bool", cond)
	s.block().NewCondBr(condBool, bodyBB, exitBB)

	s.fn.Current = bodyBB
	s.lowerBody(n.Body)
	latch := s.block()
	if latch.Term == nil {
		latch.NewBr(condBB)
	}
	for _, jp := range joins {
		jp.PatchLatch(latch)
	}

	s.l.symbols.Pop()
	s.fn.Current = exitBB
	return nil
}

// bindingValue materializes a Binding's current SSA value regardless
// of storage kind, loading from a slot/global if needed.
func bindingValue(s *StmtLowerer, b *symtab.Binding) value.Value {
	switch b.Kind {
	case symtab.StackSlot:
		return s.block().NewLoad(PyObjPtr, b.Slot)
	case symtab.GlobalCell:
		return s.block().NewLoad(PyObjPtr, b.Cell)
	default:
		return b.Value
	}
}

// loopCarriedNames finds every name the loop body assigns, including
// inside nested if/while/block statements but not inside a nested
// function, which is the set VisitWhile needs a join point for.
func loopCarriedNames(body []ast.Stmt) []string {
	seen := map[string]bool{}
	var names []string
	var walk func([]ast.Stmt)
	walk = func(stmts []ast.Stmt) {
		for _, st := range stmts {
			switch n := st.(type) {
			case *ast.Assign:
				if !seen[n.Name] {
					seen[n.Name] = true
					names = append(names, n.Name)
				}
			case *ast.If:
				walk(n.Then)
				walk(n.Else)
			case *ast.While:
				walk(n.Body)
			case *ast.Block:
				walk(n.Stmts)
			}
		}
	}
	walk(body)
	return names
}

// VisitReturn lowers `return` / `return expr`, coercing to the
// function's declared return type if one was annotated (the module
// lowerer records it in ModuleCtx.ReturnTypes).
func (s *StmtLowerer) VisitReturn(n *ast.Return) interface{} {
	if n.Value == nil {
		none := s.l.abi.Call(s.block(), "py_get_none")
		s.block().NewRet(none)
		return nil
	}
	v, t := s.expr().Lower(n.Value)
	want, ok := s.fn.Module.ReturnTypes[s.fn.Func.Name()]
	if ok && want != types.Any && want != t {
		v = s.l.abi.Call(s.block(), "py_smart_convert", v, i32(int64(want)))
	}
	s.l.track.Adopt(v)
	s.block().NewRet(v)
	return nil
}

func (s *StmtLowerer) VisitPrint(n *ast.Print) interface{} {
	v, _ := s.expr().Lower(n.Value)
	s.l.abi.Call(s.block(), "py_print_object", v)
	return nil
}

// lowerFuncDef emits a user function's body into the *ir.Func the
// module lowerer already declared, binding each parameter to a fresh
// stack slot so body assignments have somewhere to write.
func (s *StmtLowerer) lowerFuncDef(n *ast.FuncDef) {
	fn, ok := s.fn_orModule().Functions[n.Name]
	if !ok {
		panic(fmt.Sprintf("internal error: function %q was not pre-declared", n.Name))
	}
	entry := fn.NewBlock("entry")
	fc := &FuncCtx{Func: fn, Current: entry, Module: s.fn_orModule()}

	savedFn := s.fn
	s.fn = fc

	s.l.symbols.Push()
	for i, p := range n.Params {
		slot := entry.NewAlloca(PyObjPtr)
		entry.NewStore(fn.Params[i], slot)
		pt := types.Any
		if p.Declared != "" {
			pt = symtab.AnnotationTypeID(p.Declared)
		}
		s.l.symbols.Define(p.Name, &symtab.Binding{Kind: symtab.StackSlot, Slot: slot, Type: pt})
	}
	s.l.symbols.DefineFunctionAST(n.Name, n)

	s.lowerBody(n.Body)
	if s.block().Term == nil {
		none := s.l.abi.Call(s.block(), "py_get_none")
		s.block().NewRet(none)
	}
	s.l.symbols.Pop()

	s.fn = savedFn
}

// fn_orModule returns the ModuleCtx regardless of whether fn is
// currently set (lowerFuncDef may run before any FuncCtx exists for a
// top-level def encountered before the entry function is built).
func (s *StmtLowerer) fn_orModule() *ModuleCtx {
	if s.fn != nil {
		return s.fn.Module
	}
	return s.l.modCtx
}

// lowerClassDef declares and lowers every method, then builds the
// class's method dict and calls py_create_class; the resulting class
// object is bound to the class name so instance creation and attribute
// lookups elsewhere in the module can resolve it.
func (s *StmtLowerer) lowerClassDef(n *ast.ClassDef) {
	methodDict := s.l.abi.Call(s.block(), "py_create_dict", i32(int64(len(n.Methods))), i32(int64(types.String)))

	for _, m := range n.Methods {
		qualified := n.Name + "." + m.Name
		renamed := *m
		renamed.Name = qualified
		s.l.symbols.DefineFunctionAST(qualified, &renamed)
		var params []*ir.Param
		for _, p := range m.Params {
			params = append(params, ir.NewParam(p.Name, PyObjPtr))
		}
		fn := s.l.modCtx.IR.NewFunc(qualified, PyObjPtr, params...)
		s.l.modCtx.Functions[qualified] = fn
		s.l.modCtx.ReturnTypes[qualified] = types.Any
		s.lowerFuncDef(&renamed)

		fnPtrInt := s.block().NewPtrToInt(fn, irtypes.I64)
		methodVal := s.l.abi.Call(s.block(), "py_create_function", s.block().NewIntToPtr(fnPtrInt, PyObjPtr), i32(int64(len(m.Params))))
		nameGlobal := globalCString(s.l.modCtx.IR, "methodname."+qualified, m.Name)
		nameVal := s.l.abi.Call(s.block(), "py_create_string", gepToI8Ptr(s.block(), nameGlobal))
		s.l.abi.Call(s.block(), "py_object_set_index", methodDict, nameVal, methodVal)
	}

	var base value.Value
	if n.Base != "" {
		if b, ok := s.l.symbols.Lookup(n.Base); ok {
			base = bindingValue(s, b)
		}
	}
	if base == nil {
		base = nullPtr()
	}

	nameGlobal := globalCString(s.l.modCtx.IR, "classname."+n.Name, n.Name)
	nameVal := s.l.abi.Call(s.block(), "py_create_string", gepToI8Ptr(s.block(), nameGlobal))
	class := s.l.abi.Call(s.block(), "py_create_class", nameVal, base, methodDict)

	s.l.symbols.Define(n.Name, &symtab.Binding{Kind: symtab.DirectValue, Value: class, Type: types.Any})
}

func (s *StmtLowerer) VisitFuncDef(n *ast.FuncDef) interface{} {
	s.lowerFuncDef(n)
	return nil
}

func (s *StmtLowerer) VisitClassDef(n *ast.ClassDef) interface{} {
	s.lowerClassDef(n)
	return nil
}

func (s *StmtLowerer) VisitBlock(n *ast.Block) interface{} {
	s.lowerBody(n.Stmts)
	return nil
}
