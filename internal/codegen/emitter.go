// Package codegen implements the SSA code generator: expression
// lowering (C7), statement lowering (C8), and module lowering (C9). It
// emits real LLVM IR via github.com/llir/llvm, lowering each function
// body to a linear instruction stream with an actual SSA target rather
// than a hand-rolled instruction encoding.
package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"pyaotc/internal/ops"
	"pyaotc/internal/symtab"
	"pyaotc/internal/types"
)

// PyObjPtr is the LLVM representation of an opaque pointer to a boxed
// object. i8* is the conservative, pre-opaque-pointer encoding every
// runtime ABI declaration below uses uniformly.
var PyObjPtr = irtypes.NewPointer(irtypes.I8)

// abiFuncs is the full runtime ABI surface, declared as external
// functions (no body) in every emitted module.
var abiFuncs = []struct {
	name   string
	ret    irtypes.Type
	params []irtypes.Type
}{
	{"py_create_int_from_string", PyObjPtr, []irtypes.Type{PyObjPtr, irtypes.I32}},
	{"py_create_double_from_string", PyObjPtr, []irtypes.Type{PyObjPtr, irtypes.I32, irtypes.I32}},
	{"py_create_bool", PyObjPtr, []irtypes.Type{irtypes.I1}},
	{"py_create_string", PyObjPtr, []irtypes.Type{PyObjPtr}},
	{"py_create_list", PyObjPtr, []irtypes.Type{irtypes.I32, irtypes.I32}},
	{"py_create_dict", PyObjPtr, []irtypes.Type{irtypes.I32, irtypes.I32}},
	{"py_get_none", PyObjPtr, nil},
	{"py_create_function", PyObjPtr, []irtypes.Type{PyObjPtr, irtypes.I32}},
	{"py_create_class", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr, PyObjPtr}},
	{"py_incref", irtypes.Void, []irtypes.Type{PyObjPtr}},
	{"py_decref", irtypes.Void, []irtypes.Type{PyObjPtr}},

	{"py_object_add", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_subtract", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_multiply", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_divide", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_floor_divide", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_modulo", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_power", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_negate", PyObjPtr, []irtypes.Type{PyObjPtr}},
	{"py_object_not", PyObjPtr, []irtypes.Type{PyObjPtr}},
	{"py_object_and", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_or", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_xor", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_lshift", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_rshift", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_bitnot", PyObjPtr, []irtypes.Type{PyObjPtr}},
	{"py_object_compare", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr, irtypes.I32}},
	{"py_object_to_bool", irtypes.I1, []irtypes.Type{PyObjPtr}},
	{"py_object_index", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_set_index", irtypes.Void, []irtypes.Type{PyObjPtr, PyObjPtr, PyObjPtr}},
	{"py_object_len", irtypes.I32, []irtypes.Type{PyObjPtr}},
	{"py_object_getattr", PyObjPtr, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_object_setattr", irtypes.Void, []irtypes.Type{PyObjPtr, PyObjPtr, PyObjPtr}},
	{"py_object_copy", PyObjPtr, []irtypes.Type{PyObjPtr, irtypes.I32}},
	{"py_list_append", irtypes.Void, []irtypes.Type{PyObjPtr, PyObjPtr}},
	{"py_smart_convert", PyObjPtr, []irtypes.Type{PyObjPtr, irtypes.I32}},
	{"py_call_function", PyObjPtr, []irtypes.Type{PyObjPtr, irtypes.I32, irtypes.NewPointer(PyObjPtr)}},
	{"py_call_function_noargs", PyObjPtr, []irtypes.Type{PyObjPtr}},
	{"py_object_to_exit_code", irtypes.I32, []irtypes.Type{PyObjPtr}},

	{"py_print_object", irtypes.Void, []irtypes.Type{PyObjPtr}},
	{"py_runtime_error", irtypes.Void, []irtypes.Type{irtypes.I32, irtypes.I32}},

	{"py_initialize_builtin_type_methods", irtypes.Void, nil},
	{"py_register_type_methods", irtypes.Void, []irtypes.Type{irtypes.I32, PyObjPtr}},
}

// ABI holds the declared external functions for one module, keyed by
// ABI name, so C7/C8/C9 can emit calls without re-declaring.
type ABI struct {
	Funcs map[string]*ir.Func
}

// declareABI forward-declares the full runtime ABI surface.
func declareABI(m *ir.Module) *ABI {
	abi := &ABI{Funcs: make(map[string]*ir.Func)}
	for _, f := range abiFuncs {
		var params []*ir.Param
		for i, pt := range f.params {
			params = append(params, ir.NewParam(paramName(i), pt))
		}
		fn := m.NewFunc(f.name, f.ret, params...)
		abi.Funcs[f.name] = fn
	}
	return abi
}

func paramName(i int) string {
	names := []string{"a", "b", "c", "d"}
	if i < len(names) {
		return names[i]
	}
	return "p"
}

// Call emits a call to a declared ABI function.
func (a *ABI) Call(block *ir.Block, name string, args ...value.Value) value.Value {
	fn := a.Funcs[name]
	return block.NewCall(fn, args...)
}

// System bundles the C1/C2 registries every lowering stage threads
// through, constructed once by module lowering.
type System struct {
	Types *types.Registry
	Ops   *ops.Registry
}

// NewSystem constructs the shared type/operation registries.
func NewSystem() *System {
	tr := types.NewRegistry()
	return &System{Types: tr, Ops: ops.NewRegistry(tr)}
}

// globalCString interns a NUL-terminated string constant, returning
// the backing global so callers can GEP to an i8* — used to pass
// literal text to py_create_int_from_string/py_create_double_from_string
// /py_create_string without ever routing it through a host numeric type.
func globalCString(m *ir.Module, nameHint, s string) *ir.Global {
	data := append([]byte(s), 0)
	g := m.NewGlobalDef(symtab.UniqueName("str."+nameHint), constant.NewCharArray(data))
	g.Immutable = true
	return g
}

func i32(v int64) *constant.Int { return constant.NewInt(irtypes.I32, v) }

func i1(v bool) *constant.Int {
	if v {
		return constant.NewInt(irtypes.I1, 1)
	}
	return constant.NewInt(irtypes.I1, 0)
}

func nullPtr() *constant.Null { return constant.NewNull(PyObjPtr) }

// gepToI8Ptr computes a pointer to a global array's first element as
// i8*, the shape py_create_* expects for its C-string argument.
func gepToI8Ptr(block *ir.Block, g *ir.Global) value.Value {
	elemType := g.ContentType
	zero := i32(0)
	return block.NewGetElementPtr(elemType, g, zero, zero)
}
