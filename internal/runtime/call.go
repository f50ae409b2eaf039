package runtime

import (
	"pyaotc/internal/object"
	"pyaotc/internal/types"
)

// NativeFn is the Go-hosted stand-in for a compiled native function
// body. Real native linking is out of scope; this table
// lets this package's own tests exercise py_call_function's
// dispatch semantics without an actual backend.
type NativeFn func(args []*object.Object) (*object.Object, *object.RuntimeError)

var nativeFns = map[string]NativeFn{}

// RegisterNativeFn associates a compiled function's name with its
// Go-hosted body, used only by tests standing in for the real backend.
func RegisterNativeFn(name string, fn NativeFn) { nativeFns[name] = fn }

// CallFunction implements py_call_function: indirect dispatch through
// a Function object.
func CallFunction(callable *object.Object, args []*object.Object) (*object.Object, *object.RuntimeError) {
	if callable.Kind != object.KindFunction {
		return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "object is not callable"}
	}
	fn, ok := nativeFns[callable.Fn.Name]
	if !ok {
		return nil, &object.RuntimeError{Kind: object.ErrAttributeError, Message: "no native binding for '" + callable.Fn.Name + "'"}
	}
	return fn(args)
}

// CallFunctionNoArgs implements py_call_function_noargs, used by the
// entry function's `main()` invocation.
func CallFunctionNoArgs(callable *object.Object) (*object.Object, *object.RuntimeError) {
	return CallFunction(callable, nil)
}

// CopyObject implements py_object_copy(obj, type_id): a shallow value
// copy retagged to type_id, used when widening a container element
// type (e.g. list concatenation disagreement -> Any).
func CopyObject(o *object.Object, targetType int32) *object.Object {
	cp := *o
	cp.RefCount = 1
	cp.TypeID = types.ID(targetType)
	return &cp
}
