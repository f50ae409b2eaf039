// Package object is the runtime object model (C3): the boxed heap
// cell shared by every value, construction/refcounting primitives, and
// the per-type method table used for index/len/hash/equals/attribute
// dispatch. internal/runtime builds arithmetic and container kernels
// on top of the types defined here.
package object

import (
	"math/big"

	"github.com/google/uuid"
	"pyaotc/internal/types"
)

// Kind distinguishes the payload a Object carries. It is a Go-side
// convenience; the type_id field is the portable identity (Kind and
// TypeID always agree on base category).
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindList
	KindDict
	KindFunction
	KindClass
	KindInstance
	KindListIterator
	KindStringIterator
)

// Object is the common heap cell: {ref_count, type_id} plus payload,
// exactly. Every constructor below returns a
// fresh reference with RefCount == 1, except the None singleton whose
// count saturates and is never decremented to zero.
type Object struct {
	RefCount int32
	TypeID   types.ID
	Kind     Kind

	// Payload fields; exactly one group is valid per Kind.
	Int      *big.Int
	Float    *big.Float
	Bool     bool
	Str      string
	List     *ListPayload
	Dict     *DictPayload
	Fn       *FunctionPayload
	Cls      *ClassPayload
	Inst     *InstancePayload
	Iter     *IteratorPayload
}

// ListPayload is `List`: { len, cap, elem_type_id, data }.
// len/cap are implicit in len(Data)/cap(Data); ElemTypeID is tracked
// for element-type widening on concatenation.
type ListPayload struct {
	Data       []*Object
	ElemTypeID types.ID
}

// dictEntry is one open-addressed slot: { key, value, hash, used }.
type dictEntry struct {
	Key   *Object
	Value *Object
	Hash  uint64
	Used  bool
}

// DictPayload is open-addressed `Dict`. Capacity is always a
// power of two; Resize triggers once size/cap reaches 2/3.
type DictPayload struct {
	entries   []dictEntry
	size      int
	KeyTypeID types.ID // advisory, enforced by py_smart_convert at setitem time
}

type FunctionPayload struct {
	CodePtr       uintptr // opaque handle to the compiled native function
	SignatureID   types.ID
	Name          string
}

type ClassPayload struct {
	Name      string
	Base      *Object // optional Class ref
	ClassDict *Object // Dict ref
}

type InstancePayload struct {
	Class        *Object // Class ref
	InstanceDict *Object // Dict ref
}

type IteratorPayload struct {
	Iterable *Object // List or String-backed ref
	Index    int
}

// noneSingleton is the process-wide None value; its ref count is
// saturated so decref never attempts to finalize it.
var noneSingleton = &Object{RefCount: 1 << 30, TypeID: types.None, Kind: KindNone}

// None returns the process-wide singleton.
func None() *Object { return noneSingleton }

// BuildID is a process-scoped identifier minted once, used as the
// build tag in cmd/pyaotc's telemetry record and in runtime tracing —
// not part of object identity, and not embedded in emitted IR.
var BuildID = uuid.NewString()

func newObject(kind Kind, tid types.ID) *Object {
	return &Object{RefCount: 1, Kind: kind, TypeID: tid}
}

// NewInt constructs an arbitrary-precision integer from its parsed
// value. Callers at the codegen boundary use NewIntFromString to avoid
// ever routing an integer literal through a host machine width.
func NewInt(v *big.Int) *Object {
	o := newObject(KindInt, types.Int)
	o.Int = new(big.Int).Set(v)
	return o
}

// NewIntFromString mirrors py_create_int_from_string: parses the
// literal's original textual form at the given base so no host integer
// width ever truncates it.
func NewIntFromString(text string, base int) (*Object, bool) {
	v, ok := new(big.Int).SetString(text, base)
	if !ok {
		return nil, false
	}
	return NewInt(v), true
}

// WorkingPrecision is the fixed mantissa width (bits) for an
// arbitrary-precision float with fixed working precision.
// math/big.Float's settable Prec implements this exactly.
const WorkingPrecision = 113 // IEEE-754 binary128 equivalent mantissa width

// NewFloat constructs a Float pinned to WorkingPrecision.
func NewFloat(v *big.Float) *Object {
	o := newObject(KindFloat, types.Float)
	o.Float = new(big.Float).SetPrec(WorkingPrecision).Set(v)
	return o
}

// NewFloatFromString mirrors py_create_double_from_string.
func NewFloatFromString(text string, base int) (*Object, bool) {
	f, _, err := big.ParseFloat(text, base, WorkingPrecision, big.ToNearestEven)
	if err != nil {
		return nil, false
	}
	return NewFloat(f), true
}

// NewBool constructs a Bool object.
func NewBool(v bool) *Object {
	o := newObject(KindBool, types.Bool)
	o.Bool = v
	return o
}

// NewString constructs an immutable String object; equality/hash are
// content-based (see methodtable.go).
func NewString(s string) *Object {
	o := newObject(KindString, types.String)
	o.Str = s
	return o
}

// NewList constructs a List with the given capacity hint and declared
// element type.
func NewList(cap int, elemType types.ID) *Object {
	o := newObject(KindList, types.MakeList(elemType))
	o.List = &ListPayload{Data: make([]*Object, 0, cap), ElemTypeID: elemType}
	return o
}

const dictMinCap = 8
const dictLoadNum, dictLoadDen = 2, 3 // load factor threshold 2/3

// NewDict constructs a Dict with the given capacity hint (rounded to
// the next power of two, minimum 8) and declared key type.
func NewDict(cap int, keyType types.ID) *Object {
	o := newObject(KindDict, types.DictBase)
	c := nextPow2(cap)
	if c < dictMinCap {
		c = dictMinCap
	}
	o.Dict = &DictPayload{entries: make([]dictEntry, c), KeyTypeID: keyType}
	return o
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// NewFunction constructs a Function object (code_ptr, signature_type_id).
func NewFunction(name string, codePtr uintptr, signatureID types.ID) *Object {
	o := newObject(KindFunction, types.Func)
	o.Fn = &FunctionPayload{CodePtr: codePtr, SignatureID: signatureID, Name: name}
	return o
}

// NewClass constructs a Class object; base may be nil.
func NewClass(name string, base *Object, classDict *Object) *Object {
	o := newObject(KindClass, types.Class)
	if base != nil {
		Incref(base)
	}
	Incref(classDict)
	o.Cls = &ClassPayload{Name: name, Base: base, ClassDict: classDict}
	return o
}

// NewInstance constructs an Instance bound to a class and a fresh
// attribute dict.
func NewInstance(class *Object, instanceDict *Object) *Object {
	o := newObject(KindInstance, types.Instance)
	Incref(class)
	Incref(instanceDict)
	o.Inst = &InstancePayload{Class: class, InstanceDict: instanceDict}
	return o
}

// NewListIterator constructs an iterator over a list, taking a
// reference to it.
func NewListIterator(list *Object) *Object {
	o := newObject(KindListIterator, types.MakeIter(list.List.ElemTypeID))
	Incref(list)
	o.Iter = &IteratorPayload{Iterable: list}
	return o
}

// NewStringIterator constructs an iterator over a string, taking a
// reference to it.
func NewStringIterator(str *Object) *Object {
	o := newObject(KindStringIterator, types.MakeIter(types.String))
	Incref(str)
	o.Iter = &IteratorPayload{Iterable: str}
	return o
}

// Incref adds one owned reference. None's saturated count makes this a
// no-observable-op on the singleton.
func Incref(o *Object) {
	if o == nil || o == noneSingleton {
		return
	}
	o.RefCount++
}

// Decref drops one owned reference, finalizing (recursively releasing
// children) when the count reaches zero.
func Decref(o *Object) {
	if o == nil || o == noneSingleton {
		return
	}
	o.RefCount--
	if o.RefCount > 0 {
		return
	}
	finalize(o)
}

func finalize(o *Object) {
	switch o.Kind {
	case KindList:
		for _, e := range o.List.Data {
			Decref(e)
		}
		o.List.Data = nil
	case KindDict:
		for i := range o.Dict.entries {
			e := &o.Dict.entries[i]
			if e.Used {
				Decref(e.Key)
				Decref(e.Value)
				e.Used = false
			}
		}
	case KindListIterator, KindStringIterator:
		Decref(o.Iter.Iterable)
	case KindClass:
		if o.Cls.Base != nil {
			Decref(o.Cls.Base)
		}
		Decref(o.Cls.ClassDict)
	case KindInstance:
		Decref(o.Inst.Class)
		Decref(o.Inst.InstanceDict)
	}
}
