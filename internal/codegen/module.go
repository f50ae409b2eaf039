package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"

	"pyaotc/internal/ast"
	cerrors "pyaotc/internal/errors"
	"pyaotc/internal/infer"
	"pyaotc/internal/symtab"
	"pyaotc/internal/tracker"
	"pyaotc/internal/types"
)

// Errors exposes the accumulator LowerModule fills in; callers that
// want diagnostics without a hard failure can inspect it even when
// LowerModule returns a non-nil module.
func (l *Lowerer) Errors() *cerrors.Accumulator { return l.errs }

// FuncCtx tracks the block being appended to while lowering one
// function body, so VisitCall and the statement lowerer can keep
// emitting into the right place as control-flow blocks are created.
type FuncCtx struct {
	Func    *ir.Func
	Current *ir.Block
	Module  *ModuleCtx
}

// ModuleCtx is the C9 module-assembly record threaded through C7/C8:
// the llir module under construction, every user function declared so
// far (for direct-call resolution), and each function's declared
// return type (for VisitCall's result typing).
type ModuleCtx struct {
	IR          *ir.Module
	Functions   map[string]*ir.Func
	ReturnTypes map[string]types.ID
	File        string
}

// arrayOfObjPtr builds the [n x PyObjPtr] array type VisitCall uses
// for the stack buffer passed as argv to py_call_function.
func arrayOfObjPtr(n int) *irtypes.ArrayType {
	return irtypes.NewArray(uint64(n), PyObjPtr)
}

// Lowerer owns one compilation unit: the shared System, the symbol
// table, inferencer, and deferred-release tracker that C7 (expr.go)
// and C8 (stmt.go) both read and write while lowering a module.
type Lowerer struct {
	sys     *System
	symbols *symtab.Table
	infer   *infer.Inferencer
	track   *tracker.Tracker
	abi     *ABI
	modCtx  *ModuleCtx
	expr    *ExprLowerer
	ctors   []ctorEntry
	errs    *cerrors.Accumulator
}

type ctorEntry struct {
	fn       *ir.Func
	priority int64
}

// NewLowerer constructs a Lowerer over a fresh *ir.Module, declaring
// the full runtime ABI surface up front.
func NewLowerer(moduleName string) *Lowerer {
	m := ir.NewModule()
	m.SourceFilename = moduleName
	abi := declareABI(m)
	sys := NewSystem()
	st := symtab.New()
	modCtx := &ModuleCtx{IR: m, Functions: make(map[string]*ir.Func), ReturnTypes: make(map[string]types.ID)}
	inf := infer.New(sys.Types, sys.Ops, st)
	tr := tracker.New()
	errs := &cerrors.Accumulator{}
	l := &Lowerer{sys: sys, symbols: st, infer: inf, track: tr, abi: abi, modCtx: modCtx, errs: errs}
	l.expr = &ExprLowerer{sys: sys, mod: m, abi: abi, infer: inf, symbols: st, track: tr, errs: errs, modCtx: modCtx}
	return l
}

// LowerModule implements C9: assembles the whole module, runs a
// constructor that initializes the runtime's builtin type methods, and
// — for an entry module — emits __program_entry__ that runs the
// top-level statements and dispatches to main.
func (l *Lowerer) LowerModule(mod *ast.Module) (*ir.Module, error) {
	l.modCtx.File = mod.Name
	l.declareTopLevelFunctions(mod.TopLevel)

	initFn := l.emitRuntimeInit()
	l.registerGlobalCtor(initFn, 65535)

	stmtLowerer := &StmtLowerer{l: l}

	if mod.IsEntry {
		l.emitEntryFunction(mod.TopLevel, stmtLowerer)
	} else {
		for _, s := range mod.TopLevel {
			if isExecutable(s) {
				l.errs.Add(cerrors.New(cerrors.ModuleVerification,
					fmt.Sprintf("non-entry module %q has a top-level executable statement", mod.Name),
					mod.Name, s.Position().Line, s.Position().Column))
				continue
			}
		}
		l.emitModuleInitFunction(mod.TopLevel, stmtLowerer)
	}

	l.flushGlobalCtors()

	if err := Verify(l.modCtx.IR); err != nil {
		if cerr, ok := err.(*cerrors.CompileError); ok {
			l.errs.Add(cerr)
		} else {
			l.errs.Add(cerrors.Wrap(err, cerrors.ModuleVerification, mod.Name, 0, 0))
		}
	}

	if l.errs.HasErrors() {
		return nil, l.errs
	}
	return l.modCtx.IR, nil
}

// isExecutable reports whether s does anything beyond declaring a
// function/class, per non-entry-module restriction.
func isExecutable(s ast.Stmt) bool {
	switch s.(type) {
	case *ast.FuncDef, *ast.ClassDef:
		return false
	default:
		return true
	}
}

// declareTopLevelFunctions pre-registers every top-level def's AST and
// a forward LLVM function declaration, so mutually-recursive and
// forward-referencing calls resolve as direct calls.
func (l *Lowerer) declareTopLevelFunctions(stmts []ast.Stmt) {
	for _, s := range stmts {
		fd, ok := s.(*ast.FuncDef)
		if !ok {
			continue
		}
		l.symbols.DefineFunctionAST(fd.Name, fd)
		var params []*ir.Param
		for _, p := range fd.Params {
			params = append(params, ir.NewParam(p.Name, PyObjPtr))
		}
		fn := l.modCtx.IR.NewFunc(fd.Name, PyObjPtr, params...)
		l.modCtx.Functions[fd.Name] = fn
		rt := types.Any
		if fd.ReturnType != "" {
			rt = symtab.AnnotationTypeID(fd.ReturnType)
		}
		l.modCtx.ReturnTypes[fd.Name] = rt
	}
}

// emitRuntimeInit builds __runtime_init__, the global constructor that
// wires up builtin-type method tables before any user code runs.
func (l *Lowerer) emitRuntimeInit() *ir.Func {
	fn := l.modCtx.IR.NewFunc("__runtime_init__", irtypes.Void)
	block := fn.NewBlock("entry")
	l.abi.Call(block, "py_initialize_builtin_type_methods")
	block.NewRet(nil)
	return fn
}

// registerGlobalCtor queues fn to run from llvm.global_ctors at the
// given priority; flushGlobalCtors emits the single combined array
// every queued entry belongs in, since a module may only define one
// "llvm.global_ctors" global.
func (l *Lowerer) registerGlobalCtor(fn *ir.Func, priority int64) {
	l.ctors = append(l.ctors, ctorEntry{fn: fn, priority: priority})
}

// flushGlobalCtors emits llvm.global_ctors from every queued entry, the
// standard LLVM mechanism for pre-main initialization.
func (l *Lowerer) flushGlobalCtors() {
	if len(l.ctors) == 0 {
		return
	}
	ctorT := irtypes.NewStruct(irtypes.I32, irtypes.NewPointer(irtypes.NewFunc(irtypes.Void)), irtypes.NewPointer(irtypes.I8))
	entries := make([]constant.Constant, len(l.ctors))
	for i, c := range l.ctors {
		entries[i] = constant.NewStruct(ctorT, constant.NewInt(irtypes.I32, c.priority), c.fn, constant.NewNull(irtypes.NewPointer(irtypes.I8)))
	}
	arrT := irtypes.NewArray(uint64(len(entries)), ctorT)
	g := l.modCtx.IR.NewGlobalDef("llvm.global_ctors", constant.NewArray(arrT, entries...))
	g.Linkage = enum.LinkageAppending
}

// emitEntryFunction builds __program_entry__: lowers every top-level
// statement, then looks up and calls `main`, converting its result to
// a process exit code.
func (l *Lowerer) emitEntryFunction(stmts []ast.Stmt, sl *StmtLowerer) {
	fn := l.modCtx.IR.NewFunc("__program_entry__", irtypes.I32)
	entryBlock := fn.NewBlock("entry")
	l.symbols.Push()
	defer l.symbols.Pop()

	fc := &FuncCtx{Func: fn, Current: entryBlock, Module: l.modCtx}
	l.expr.fn = fc
	sl.fn = fc

	for _, s := range stmts {
		sl.lowerTopLevel(s)
	}

	mainFn, hasMain := l.modCtx.Functions["main"]
	if !hasMain {
		fc.Current.NewRet(i32(1))
		return
	}
	result := fc.Current.NewCall(mainFn)
	code := l.abi.Call(fc.Current, "py_object_to_exit_code", result)
	fc.Current.NewRet(code)
}

// emitModuleInitFunction builds __module_init__ for a non-entry module:
// it lowers every top-level def/class so a ClassDef's py_create_class
// call has somewhere to run, then registers itself as a global
// constructor just after __runtime_init__ so builtin-type machinery is
// ready before any class object is built.
func (l *Lowerer) emitModuleInitFunction(stmts []ast.Stmt, sl *StmtLowerer) {
	fn := l.modCtx.IR.NewFunc("__module_init__", irtypes.Void)
	entryBlock := fn.NewBlock("entry")
	l.symbols.Push()
	defer l.symbols.Pop()

	fc := &FuncCtx{Func: fn, Current: entryBlock, Module: l.modCtx}
	l.expr.fn = fc
	sl.fn = fc

	for _, s := range stmts {
		sl.lowerTopLevel(s)
	}
	if fc.Current.Term == nil {
		fc.Current.NewRet(nil)
	}
	l.registerGlobalCtor(fn, 65536)
}
