// Package symtab is the symbol table & scope component (C5): a stack
// of lexical scopes mapping names to storage classifiers, plus the
// FunctionAST bindings that let the lowerer resolve direct calls.
package symtab

import (
	"github.com/google/uuid"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
	"pyaotc/internal/ast"
	"pyaotc/internal/types"
)

// StorageKind is the closed set of places a variable can live.
type StorageKind int

const (
	StackSlot StorageKind = iota
	GlobalCell
	DirectValue
)

// Binding is what lookup returns: the storage classifier, its type,
// and (depending on StorageKind) the backing handle.
type Binding struct {
	Kind  StorageKind
	Type  types.ID
	Slot  *ir.InstAlloca // StackSlot
	Cell  *ir.Global     // GlobalCell
	Value value.Value       // DirectValue, or the current SSA value for a join-point read
}

// UpdateStrategy selects how Assign (C8) writes to an existing
// binding: DefaultStrategy rebinds the scope slot directly;
// LoopStrategy writes to a join-point's latch-side incoming instead,
// matching the original project's VariableUpdateStrategy.cpp split.
type UpdateStrategy int

const (
	DefaultStrategy UpdateStrategy = iota
	LoopStrategy
)

// scope is one lexical level.
type scope struct {
	vars      map[string]*Binding
	functions map[string]*ast.FuncDef
	strategy  map[string]UpdateStrategy
	joinNode  map[string]JoinWriter // set only inside a loop body scope
}

// JoinWriter is the minimal surface symtab needs from a codegen
// join-point node to implement LoopStrategy without importing codegen
// (which would create an import cycle); codegen's *JoinPoint satisfies
// this directly.
type JoinWriter interface {
	WriteLatch(v value.Value)
	CurrentValue() value.Value
}

func newScope() *scope {
	return &scope{
		vars:      make(map[string]*Binding),
		functions: make(map[string]*ast.FuncDef),
		strategy:  make(map[string]UpdateStrategy),
		joinNode:  make(map[string]JoinWriter),
	}
}

// Table is the scope stack (C5).
type Table struct {
	stack []*scope
}

// New returns a table with a single (module/top-level) scope pushed.
func New() *Table {
	t := &Table{}
	t.Push()
	return t
}

// Push opens a new lexical scope.
func (t *Table) Push() { t.stack = append(t.stack, newScope()) }

// Pop closes the innermost lexical scope.
func (t *Table) Pop() {
	if len(t.stack) == 0 {
		return
	}
	t.stack = t.stack[:len(t.stack)-1]
}

func (t *Table) top() *scope { return t.stack[len(t.stack)-1] }

// Define binds name to a storage classifier in the current scope.
func (t *Table) Define(name string, b *Binding) { t.top().vars[name] = b }

// DefineFunctionAST associates a user function's AST with name in the
// current scope, pre-registered before recursive lowering so
// self-referential/recursive calls resolve to direct calls.
func (t *Table) DefineFunctionAST(name string, fn *ast.FuncDef) { t.top().functions[name] = fn }

// FindFunctionAST walks outward from the current scope looking for a
// function binding, mirroring Lookup's scope-walk order.
func (t *Table) FindFunctionAST(name string) (*ast.FuncDef, bool) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if fn, ok := t.stack[i].functions[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Lookup walks outward from the current scope for a variable binding.
func (t *Table) Lookup(name string) (*Binding, bool) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if b, ok := t.stack[i].vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// SetUpdateStrategy records how Update should treat name within the
// scope it was defined in; set by the while-statement lowerer for
// every name in the loop-carried assignment set.
func (t *Table) SetUpdateStrategy(name string, strat UpdateStrategy, node JoinWriter) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if _, ok := t.stack[i].vars[name]; ok {
			t.stack[i].strategy[name] = strat
			if node != nil {
				t.stack[i].joinNode[name] = node
			}
			return
		}
	}
}

// StrategyFor returns the recorded update strategy for name (default:
// DefaultStrategy), and its join node when LoopStrategy applies.
func (t *Table) StrategyFor(name string) (UpdateStrategy, JoinWriter) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if _, ok := t.stack[i].vars[name]; ok {
			return t.stack[i].strategy[name], t.stack[i].joinNode[name]
		}
	}
	return DefaultStrategy, nil
}

// Update applies the recorded update strategy for name: DefaultStrategy
// simply rebinds the scope slot (decrement-old/assign/increment-new is
// the caller's job, since it needs the runtime refcount calls);
// LoopStrategy instead writes through the join-point's latch value and
// leaves the scope's binding pointing at the join node's current value.
func (t *Table) Update(name string, newValue value.Value, newType types.ID) {
	strat, node := t.StrategyFor(name)
	if strat == LoopStrategy && node != nil {
		node.WriteLatch(newValue)
		return
	}
	if b, ok := t.Lookup(name); ok {
		b.Value = newValue
		b.Type = newType
		return
	}
	t.Define(name, &Binding{Kind: DirectValue, Value: newValue, Type: newType})
}

// LookupType implements infer.VarLookup so the inferencer can resolve
// a variable's type without importing symtab directly.
func (t *Table) LookupType(name string) (types.ID, bool) {
	b, ok := t.Lookup(name)
	if !ok {
		return types.Any, false
	}
	return b.Type, true
}

// FindFunctionReturnType implements infer.VarLookup: a user function's
// declared return-type annotation, when present.
func (t *Table) FindFunctionReturnType(name string) (types.ID, bool) {
	fn, ok := t.FindFunctionAST(name)
	if !ok || fn.ReturnType == "" {
		return types.Any, false
	}
	return AnnotationTypeID(fn.ReturnType), true
}

// AnnotationTypeID maps a source-level type annotation spelling to its
// C1 type ID; unrecognized spellings fall back to Any.
func AnnotationTypeID(name string) types.ID {
	switch name {
	case "int":
		return types.Int
	case "float":
		return types.Float
	case "bool":
		return types.Bool
	case "str":
		return types.String
	}
	return types.Any
}

// UniqueName disambiguates an LLVM value/block base name by always
// appending a short uuid suffix; callers use it for every generated
// block and string-global name, whether or not `base` would collide.
func UniqueName(base string) string {
	return base + "." + uuid.NewString()[:8]
}
