package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"pyaotc/internal/ast"
	cerrors "pyaotc/internal/errors"
	"pyaotc/internal/infer"
	"pyaotc/internal/ops"
	"pyaotc/internal/symtab"
	"pyaotc/internal/tracker"
	"pyaotc/internal/types"
)

// Tag marks every freshly-created SSA value for the deferred-release
// tracker: every handler must mark each freshly-created object with a
// source tag so Drain can release the ones nothing adopted.
type Tag = tracker.Tag

const (
	TagLiteral       Tag = tracker.TagLiteral
	TagBinaryOp      Tag = tracker.TagBinaryOp
	TagFunctionReturn Tag = tracker.TagFunctionReturn
	TagIndexAccess   Tag = tracker.TagIndexAccess
)

// ExprLowerer implements C7: each AST expression kind lowers to an SSA
// value (an owned reference unless noted) plus its inferred type.
type ExprLowerer struct {
	sys     *System
	mod     *ir.Module
	abi     *ABI
	fn      *FuncCtx
	infer   *infer.Inferencer
	symbols *symtab.Table
	track   *tracker.Tracker
	errs    *cerrors.Accumulator
	modCtx  *ModuleCtx
}

// exprResult is what every Visit* returns through the interface{}
// boundary the ast.ExprVisitor contract requires.
type exprResult struct {
	Value value.Value
	Type  types.ID
}

// Lower dispatches expr and returns its value and type.
func (e *ExprLowerer) Lower(expr ast.Expr) (value.Value, types.ID) {
	r := expr.Accept(e).(exprResult)
	return r.Value, r.Type
}

func (e *ExprLowerer) block() *ir.Block { return e.fn.Current }

func (e *ExprLowerer) VisitNumberLiteral(n *ast.NumberLiteral) interface{} {
	base := n.Base
	if base == 0 {
		base = 10
	}
	g := globalCString(e.mod, "numlit", n.Text)
	ptr := gepToI8Ptr(e.block(), g)
	if n.Kind == ast.FloatLiteral {
		v := e.abi.Call(e.block(), "py_create_double_from_string", ptr, i32(int64(base)), i32(113))
		e.track.Mark(v, TagLiteral)
		return exprResult{v, types.Float}
	}
	v := e.abi.Call(e.block(), "py_create_int_from_string", ptr, i32(int64(base)))
	e.track.Mark(v, TagLiteral)
	return exprResult{v, types.Int}
}

func (e *ExprLowerer) VisitStringLiteral(n *ast.StringLiteral) interface{} {
	g := globalCString(e.mod, "strlit", n.Value)
	ptr := gepToI8Ptr(e.block(), g)
	v := e.abi.Call(e.block(), "py_create_string", ptr)
	e.track.Mark(v, TagLiteral)
	return exprResult{v, types.String}
}

func (e *ExprLowerer) VisitBoolLiteral(n *ast.BoolLiteral) interface{} {
	v := e.abi.Call(e.block(), "py_create_bool", i1(n.Value))
	e.track.Mark(v, TagLiteral)
	return exprResult{v, types.Bool}
}

func (e *ExprLowerer) VisitNoneLiteral(n *ast.NoneLiteral) interface{} {
	v := e.abi.Call(e.block(), "py_get_none")
	return exprResult{v, types.None}
}

// VisitVariable emits a load if storage is a slot/global, or passes
// the SSA value through otherwise. Function definitions are not
// bindings in the symbol table and no module-level object cell is
// emitted for them, so a variable naming a function is reported as
// UnknownName like any other unbound name.
func (e *ExprLowerer) VisitVariable(n *ast.Variable) interface{} {
	b, ok := e.symbols.Lookup(n.Name)
	if !ok {
		e.errs.Add(cerrors.New(cerrors.UnknownName,
			fmt.Sprintf("undefined name %q", n.Name),
			e.modCtx.File, n.P.Line, n.P.Column))
		v := e.abi.Call(e.block(), "py_get_none")
		return exprResult{v, types.Any}
	}
	switch b.Kind {
	case symtab.StackSlot:
		v := e.block().NewLoad(PyObjPtr, b.Slot)
		return exprResult{v, b.Type}
	case symtab.GlobalCell:
		v := e.block().NewLoad(PyObjPtr, b.Cell)
		return exprResult{v, b.Type}
	default:
		return exprResult{b.Value, b.Type}
	}
}

// VisitBinary resolves the operable path and emits conversions before
// invoking the resolved descriptor's ABI function.
func (e *ExprLowerer) VisitBinary(n *ast.Binary) interface{} {
	lv, lt := e.Lower(n.Left)
	rv, rt := e.Lower(n.Right)

	path, err := e.sys.Ops.FindOperablePath(ops.Token(n.Op), lt, rt)
	if err != nil {
		e.abi.Call(e.block(), "py_runtime_error", i32(0), i32(int64(n.P.Line)))
		v := e.abi.Call(e.block(), "py_get_none")
		return exprResult{v, types.Any}
	}
	for _, step := range path.LeftConv {
		lv = e.abi.Call(e.block(), "py_smart_convert", lv, i32(int64(step.To)))
	}
	for _, step := range path.RightConv {
		rv = e.abi.Call(e.block(), "py_smart_convert", rv, i32(int64(step.To)))
	}

	var result value.Value
	if path.Descr.Impl == "py_object_compare" {
		result = e.abi.Call(e.block(), "py_object_compare", lv, rv, i32(int64(cmpOpOf(n.Op))))
	} else {
		result = e.abi.Call(e.block(), path.Descr.Impl, lv, rv)
	}
	e.track.Mark(result, TagBinaryOp)
	return exprResult{result, path.Descr.ResultID}
}

func cmpOpOf(op string) int {
	switch op {
	case "==":
		return 0
	case "!=":
		return 1
	case "<":
		return 2
	case "<=":
		return 3
	case ">":
		return 4
	case ">=":
		return 5
	}
	return 0
}

func (e *ExprLowerer) VisitUnary(n *ast.Unary) interface{} {
	v, t := e.Lower(n.Operand)
	if n.Op == "not" {
		r := e.abi.Call(e.block(), "py_object_not", v)
		e.track.Mark(r, TagBinaryOp)
		return exprResult{r, types.Bool}
	}
	d, ok := e.sys.Ops.LookupUnary(ops.Token(n.Op), t)
	impl := "py_object_negate"
	result := t
	if ok {
		impl = d.Impl
		result = d.ResultID
	} else if n.Op == "~" {
		impl = "py_object_bitnot"
		result = types.Int
	}
	r := e.abi.Call(e.block(), impl, v)
	e.track.Mark(r, TagBinaryOp)
	return exprResult{r, result}
}

// VisitCall chooses between a direct native call (callee AST known in
// scope) and an indirect py_call_function dispatch.
func (e *ExprLowerer) VisitCall(n *ast.Call) interface{} {
	calleeName, isName := calleeNameOf(n.Callee)
	var args []value.Value
	var argTypes []types.ID
	for _, a := range n.Args {
		v, t := e.Lower(a)
		args = append(args, v)
		argTypes = append(argTypes, t)
	}

	if isName {
		if fnDef, ok := e.symbols.FindFunctionAST(calleeName); ok {
			target, ok2 := e.fn.Module.Functions[calleeName]
			if ok2 {
				prepared := e.prepareArgs(args, argTypes, fnDef)
				r := e.block().NewCall(target, prepared...)
				e.track.Mark(r, TagFunctionReturn)
				return exprResult{r, e.fn.Module.ReturnTypes[calleeName]}
			}
		}
	}

	calleeVal, _ := e.Lower(n.Callee)
	argc := len(args)
	arrType := arrayOfObjPtr(argc)
	argvSlot := e.fn.Current.NewAlloca(arrType)
	for i, a := range args {
		idx := e.fn.Current.NewGetElementPtr(arrType, argvSlot, i32(0), i32(int64(i)))
		e.fn.Current.NewStore(a, idx)
	}
	argv := e.fn.Current.NewGetElementPtr(arrType, argvSlot, i32(0), i32(0))
	r := e.abi.Call(e.block(), "py_call_function", calleeVal, i32(int64(argc)), argv)
	e.track.Mark(r, TagFunctionReturn)
	return exprResult{r, types.Any}
}

func calleeNameOf(expr ast.Expr) (string, bool) {
	if v, ok := expr.(*ast.Variable); ok {
		return v.Name, true
	}
	return "", false
}

// prepareArgs implements prepare_argument(value, actual_type,
// expected_type): inserts a py_smart_convert when types disagree.
func (e *ExprLowerer) prepareArgs(args []value.Value, actual []types.ID, fnDef *ast.FuncDef) []value.Value {
	out := make([]value.Value, len(args))
	for i, a := range args {
		expected := types.Any
		if i < len(fnDef.Params) && fnDef.Params[i].Declared != "" {
			expected = symtab.AnnotationTypeID(fnDef.Params[i].Declared)
		}
		if i < len(actual) && expected != types.Any && actual[i] != expected {
			out[i] = e.abi.Call(e.block(), "py_smart_convert", a, i32(int64(expected)))
		} else {
			out[i] = a
		}
	}
	return out
}

func (e *ExprLowerer) VisitIndex(n *ast.Index) interface{} {
	cv, ct := e.Lower(n.Container)
	kv, _ := e.Lower(n.Key)
	r := e.abi.Call(e.block(), "py_object_index", cv, kv)
	e.track.Mark(r, TagIndexAccess)
	resultType := types.Any
	switch types.BaseOf(ct) {
	case types.ListBase, types.DictBase, types.TupleBase:
		resultType = types.ElementOf(ct)
	case types.String:
		resultType = types.String
	}
	return exprResult{r, resultType}
}

func (e *ExprLowerer) VisitListLiteral(n *ast.ListLiteral) interface{} {
	elemType := types.Any
	var vals []value.Value
	var elemTypes []types.ID
	for _, el := range n.Elements {
		v, t := e.Lower(el)
		vals = append(vals, v)
		elemTypes = append(elemTypes, t)
	}
	if len(elemTypes) > 0 {
		elemType = elemTypes[0]
		for _, t := range elemTypes[1:] {
			elemType = infer.CommonSuperType(elemType, t)
		}
	}
	lst := e.abi.Call(e.block(), "py_create_list", i32(int64(len(vals))), i32(int64(elemType)))
	for _, v := range vals {
		e.abi.Call(e.block(), "py_list_append", lst, v)
	}
	e.track.Mark(lst, TagLiteral)
	return exprResult{lst, types.MakeList(elemType)}
}

func (e *ExprLowerer) VisitDictLiteral(n *ast.DictLiteral) interface{} {
	keyType := types.Any
	valType := types.Any
	var keys, vals []value.Value
	var keyTypes, valTypes []types.ID
	for i := range n.Keys {
		kv, kt := e.Lower(n.Keys[i])
		vv, vt := e.Lower(n.Values[i])
		keys = append(keys, kv)
		vals = append(vals, vv)
		keyTypes = append(keyTypes, kt)
		valTypes = append(valTypes, vt)
	}
	if len(keyTypes) > 0 {
		keyType = keyTypes[0]
		for _, t := range keyTypes[1:] {
			keyType = infer.CommonSuperType(keyType, t)
		}
	}
	if len(valTypes) > 0 {
		valType = valTypes[0]
		for _, t := range valTypes[1:] {
			valType = infer.CommonSuperType(valType, t)
		}
	}
	d := e.abi.Call(e.block(), "py_create_dict", i32(int64(len(keys))), i32(int64(keyType)))
	for i := range keys {
		e.abi.Call(e.block(), "py_object_set_index", d, keys[i], vals[i])
	}
	e.track.Mark(d, TagLiteral)
	return exprResult{d, types.MakeDict(valType)}
}

func (e *ExprLowerer) VisitAttribute(n *ast.Attribute) interface{} {
	ov, _ := e.Lower(n.Object)
	g := globalCString(e.mod, "attr", n.Name)
	ptr := gepToI8Ptr(e.block(), g)
	r := e.abi.Call(e.block(), "py_object_getattr", ov, ptr)
	e.track.Mark(r, TagIndexAccess)
	return exprResult{r, types.Any}
}
