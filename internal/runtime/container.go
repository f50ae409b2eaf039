package runtime

import (
	"strings"

	"pyaotc/internal/object"
	"pyaotc/internal/types"
)

// StringConcat implements `+` for strings (and mixed string/other via
// the conversion edge already applied by codegen before the call).
func StringConcat(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	if a.Kind != object.KindString || b.Kind != object.KindString {
		return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "can only concatenate str"}
	}
	return object.NewString(a.Str + b.Str), nil
}

// StringRepeat implements `str * n`; n is treated as 0 when negative.
func StringRepeat(s, n *object.Object) (*object.Object, *object.RuntimeError) {
	count := n.Int.Int64()
	if count < 0 {
		count = 0
	}
	return object.NewString(strings.Repeat(s.Str, int(count))), nil
}

// StringIndex implements indexing through the string method table path
// (exposed directly for callers that already hold the dispatch).
func StringIndex(s, idx *object.Object) (*object.Object, *object.RuntimeError) {
	runes := []rune(s.Str)
	i := idx.Int.Int64()
	n := int64(len(runes))
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, &object.RuntimeError{Kind: object.ErrIndexError, Message: "string index out of range"}
	}
	return object.NewString(string(runes[i])), nil
}

// ListConcat implements `+` for two lists: a new list, widening the
// element type to Any when the inputs disagree.
func ListConcat(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	if a.Kind != object.KindList || b.Kind != object.KindList {
		return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "can only concatenate list"}
	}
	elemType := a.List.ElemTypeID
	if elemType != b.List.ElemTypeID {
		elemType = types.Any
	}
	out := object.NewList(len(a.List.Data)+len(b.List.Data), elemType)
	for _, e := range a.List.Data {
		object.Incref(e)
		out.List.Data = append(out.List.Data, e)
	}
	for _, e := range b.List.Data {
		object.Incref(e)
		out.List.Data = append(out.List.Data, e)
	}
	return out, nil
}

// ListRepeat implements `list * n`, incrementing each child's refcount
// once per copy; n<=0 yields an empty list.
func ListRepeat(l, n *object.Object) (*object.Object, *object.RuntimeError) {
	count := n.Int.Int64()
	if count < 0 {
		count = 0
	}
	out := object.NewList(len(l.List.Data)*int(count), l.List.ElemTypeID)
	for i := int64(0); i < count; i++ {
		for _, e := range l.List.Data {
			object.Incref(e)
			out.List.Data = append(out.List.Data, e)
		}
	}
	return out, nil
}

// ListAppend grows capacity geometrically when needed (Go's append
// already grows geometrically; this wrapper exists so the refcount
// bump happens exactly once, at the ABI boundary).
func ListAppend(l, v *object.Object) {
	object.Incref(v)
	l.List.Data = append(l.List.Data, v)
}

// Len implements py_object_len via method-table dispatch, returning -1
// on type error per the Len slot's contract.
func Len(o *object.Object) (int, *object.RuntimeError) {
	if globalDispatch == nil {
		return -1, &object.RuntimeError{Kind: object.ErrTypeError, Message: "object has no len()"}
	}
	t := globalDispatch(o)
	if t == nil || t.Len == nil {
		return -1, &object.RuntimeError{Kind: object.ErrTypeError, Message: "object has no len()"}
	}
	return t.Len(o)
}

// Index implements py_object_index via method-table dispatch.
func Index(c, k *object.Object) (*object.Object, *object.RuntimeError) {
	if globalDispatch == nil {
		return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "object is not subscriptable"}
	}
	t := globalDispatch(c)
	if t == nil || t.IndexGet == nil {
		return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "object is not subscriptable"}
	}
	return t.IndexGet(c, k)
}

// SetIndex implements py_object_set_index via method-table dispatch.
func SetIndex(c, k, v *object.Object) *object.RuntimeError {
	if globalDispatch == nil {
		return &object.RuntimeError{Kind: object.ErrTypeError, Message: "object does not support item assignment"}
	}
	t := globalDispatch(c)
	if t == nil || t.IndexSet == nil {
		return &object.RuntimeError{Kind: object.ErrTypeError, Message: "object does not support item assignment"}
	}
	return t.IndexSet(c, k, v)
}

// GetAttr/SetAttr implement py_object_getattr/py_object_setattr.
func GetAttr(o *object.Object, name string) (*object.Object, *object.RuntimeError) {
	if globalDispatch == nil {
		return nil, &object.RuntimeError{Kind: object.ErrAttributeError, Message: "no attribute '" + name + "'"}
	}
	t := globalDispatch(o)
	if t == nil || t.GetAttr == nil {
		return nil, &object.RuntimeError{Kind: object.ErrAttributeError, Message: "no attribute '" + name + "'"}
	}
	return t.GetAttr(o, name)
}

func SetAttr(o *object.Object, name string, v *object.Object) *object.RuntimeError {
	if globalDispatch == nil {
		return &object.RuntimeError{Kind: object.ErrAttributeError, Message: "no attribute '" + name + "'"}
	}
	t := globalDispatch(o)
	if t == nil || t.SetAttr == nil {
		return &object.RuntimeError{Kind: object.ErrAttributeError, Message: "no attribute '" + name + "'"}
	}
	return t.SetAttr(o, name, v)
}
