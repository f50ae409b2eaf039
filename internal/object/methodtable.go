package object

import (
	"hash/fnv"
	"math/big"

	"pyaotc/internal/types"
)

// ErrorKind is the closed set of runtime error kinds a RuntimeError
// can carry.
type ErrorKind string

const (
	ErrTypeError        ErrorKind = "TypeError"
	ErrValueError        ErrorKind = "ValueError"
	ErrZeroDivision      ErrorKind = "ZeroDivisionError"
	ErrIndexError        ErrorKind = "IndexError"
	ErrKeyError          ErrorKind = "KeyError"
	ErrAttributeError    ErrorKind = "AttributeError"
	ErrOverflowError     ErrorKind = "OverflowError"
	ErrMemoryError       ErrorKind = "MemoryError"
	ErrStopIteration     ErrorKind = "StopIteration"
	ErrEOFError          ErrorKind = "EOFError"
)

// RuntimeError is what index_get/index_set/len/getattr/setattr return
// on failure in place of (or alongside) a sentinel value.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
}

func (e *RuntimeError) Error() string { return string(e.Kind) + ": " + e.Message }

func newErr(kind ErrorKind, msg string) *RuntimeError { return &RuntimeError{Kind: kind, Message: msg} }

// MethodTable is the per-type record of optional dispatch hooks. A nil
// slot means "not supported for this type"; lookup falls back to the
// base type when the exact ID is unregistered (see Dispatch).
type MethodTable struct {
	IndexGet func(c, k *Object) (*Object, *RuntimeError)
	IndexSet func(c, k, v *Object) *RuntimeError
	Len      func(o *Object) (int, *RuntimeError)
	GetAttr  func(o *Object, name string) (*Object, *RuntimeError)
	SetAttr  func(o *Object, name string, v *Object) *RuntimeError
	Hash     func(o *Object) (uint64, *RuntimeError)
	Equals   func(a, b *Object) *Object
}

// Registry maps base type IDs to their method table, mirroring
// py_register_type_methods / py_initialize_builtin_type_methods.
type Registry struct {
	tables map[types.ID]*MethodTable
}

var globalRegistry *Registry

// InitializeBuiltinTypeMethods registers the built-in dispatch tables.
// Module lowering emits exactly one call to this (wrapped as
// py_initialize_builtin_type_methods) from __runtime_init__; calling it
// twice is harmless (idempotent re-registration) but the generated
// module's constructor list guarantees it runs once.
func InitializeBuiltinTypeMethods() *Registry {
	r := &Registry{tables: make(map[types.ID]*MethodTable)}
	r.Register(types.String, stringMethods())
	r.Register(types.ListBase, listMethods())
	r.Register(types.DictBase, dictMethods())
	r.Register(types.Instance, instanceMethods())
	r.Register(types.Class, classMethods())
	r.Register(types.Int, numericMethods())
	r.Register(types.Float, numericMethods())
	r.Register(types.Bool, numericMethods())
	r.Register(types.None, noneMethods())
	globalRegistry = r
	return r
}

// Dispatch looks up o's method table against the process-wide registry
// installed by InitializeBuiltinTypeMethods. Returns nil before
// initialization or for types with no registered table.
func Dispatch(o *Object) *MethodTable {
	if globalRegistry == nil {
		return nil
	}
	return globalRegistry.Dispatch(o)
}

// Register installs (or replaces) the method table for a base type ID.
func (r *Registry) Register(base types.ID, t *MethodTable) { r.tables[base] = t }

// Dispatch looks up the method table for o's exact type, falling back
// to its base type when unregistered.
func (r *Registry) Dispatch(o *Object) *MethodTable {
	if t, ok := r.tables[o.TypeID]; ok {
		return t
	}
	if t, ok := r.tables[types.BaseOf(o.TypeID)]; ok {
		return t
	}
	return nil
}

func stringMethods() *MethodTable {
	return &MethodTable{
		IndexGet: func(c, k *Object) (*Object, *RuntimeError) {
			if k.Kind != KindInt {
				return nil, newErr(ErrTypeError, "string indices must be integers")
			}
			idx := k.Int.Int64()
			runes := []rune(c.Str)
			n := int64(len(runes))
			if idx < 0 {
				idx += n
			}
			if idx < 0 || idx >= n {
				return nil, newErr(ErrIndexError, "string index out of range")
			}
			return NewString(string(runes[idx])), nil
		},
		Len: func(o *Object) (int, *RuntimeError) { return len([]rune(o.Str)), nil },
		Hash: func(o *Object) (uint64, *RuntimeError) {
			h := fnv.New64a()
			h.Write([]byte(o.Str))
			return h.Sum64(), nil
		},
		Equals: func(a, b *Object) *Object {
			if b.Kind != KindString {
				return NewBool(false)
			}
			return NewBool(a.Str == b.Str)
		},
	}
}

func listMethods() *MethodTable {
	return &MethodTable{
		IndexGet: func(c, k *Object) (*Object, *RuntimeError) {
			if k.Kind != KindInt {
				return nil, newErr(ErrTypeError, "list indices must be integers")
			}
			idx, err := normalizeIndex(k.Int, len(c.List.Data))
			if err != nil {
				return nil, err
			}
			v := c.List.Data[idx]
			Incref(v)
			return v, nil
		},
		IndexSet: func(c, k, v *Object) *RuntimeError {
			if k.Kind != KindInt {
				return newErr(ErrTypeError, "list indices must be integers")
			}
			idx, err := normalizeIndex(k.Int, len(c.List.Data))
			if err != nil {
				return err
			}
			old := c.List.Data[idx]
			Incref(v)
			c.List.Data[idx] = v
			Decref(old)
			return nil
		},
		Len: func(o *Object) (int, *RuntimeError) { return len(o.List.Data), nil },
	}
}

func normalizeIndex(k *big.Int, length int) (int, *RuntimeError) {
	idx := k.Int64()
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return 0, newErr(ErrIndexError, "list index out of range")
	}
	return int(idx), nil
}

// keyConverter is py_smart_convert, wired in by
// InitializeBuiltinTypeMethods so dict setitem can coerce a key to the
// dict's declared KeyTypeID without this package importing internal/runtime.
var keyConverter func(o *Object, target types.ID) *Object

// SetKeyConverter installs the key-coercion hook IndexSet uses. Called
// once from py_initialize_builtin_type_methods.
func SetKeyConverter(fn func(o *Object, target types.ID) *Object) { keyConverter = fn }

func dictMethods() *MethodTable {
	return &MethodTable{
		IndexGet: func(c, k *Object) (*Object, *RuntimeError) {
			e := dictFind(c.Dict, k)
			if e == nil {
				return nil, newErr(ErrKeyError, "key not found")
			}
			Incref(e.Value)
			return e.Value, nil
		},
		IndexSet: func(c, k, v *Object) *RuntimeError {
			key := k
			if keyConverter != nil && c.Dict.KeyTypeID != types.Any && k.TypeID != c.Dict.KeyTypeID {
				converted := keyConverter(k, c.Dict.KeyTypeID)
				if converted == nil {
					return newErr(ErrTypeError, "dict key must be "+types.NameOf(c.Dict.KeyTypeID))
				}
				key = converted
			}
			DictSetItem(c, key, v)
			if key != k {
				Decref(key)
			}
			return nil
		},
		Len: func(o *Object) (int, *RuntimeError) { return o.Dict.size, nil },
	}
}

func instanceMethods() *MethodTable {
	return &MethodTable{
		GetAttr: func(o *Object, name string) (*Object, *RuntimeError) {
			if v := dictGetByName(o.Inst.InstanceDict, name); v != nil {
				Incref(v)
				return v, nil
			}
			cls := o.Inst.Class
			for cls != nil {
				if v := dictGetByName(cls.Cls.ClassDict, name); v != nil {
					Incref(v)
					return v, nil
				}
				cls = cls.Cls.Base
			}
			return nil, newErr(ErrAttributeError, "no attribute '"+name+"'")
		},
		SetAttr: func(o *Object, name string, v *Object) *RuntimeError {
			dictSetByName(o.Inst.InstanceDict, name, v)
			return nil
		},
	}
}

func classMethods() *MethodTable {
	return &MethodTable{
		GetAttr: func(o *Object, name string) (*Object, *RuntimeError) {
			cls := o
			for cls != nil {
				if v := dictGetByName(cls.Cls.ClassDict, name); v != nil {
					Incref(v)
					return v, nil
				}
				cls = cls.Cls.Base
			}
			return nil, newErr(ErrAttributeError, "no attribute '"+name+"'")
		},
		SetAttr: func(o *Object, name string, v *Object) *RuntimeError {
			dictSetByName(o.Cls.ClassDict, name, v)
			return nil
		},
	}
}

// numericMethods covers Int/Float/Bool equality and hash; ordering
// comparisons are implemented via ops descriptors, not this table.
func numericMethods() *MethodTable {
	return &MethodTable{
		Hash: func(o *Object) (uint64, *RuntimeError) {
			switch o.Kind {
			case KindInt:
				return hashBigInt(o.Int), nil
			case KindFloat:
				f, _ := o.Float.Float64()
				return hashFloat64(f), nil
			case KindBool:
				if o.Bool {
					return hashBigInt(big.NewInt(1)), nil
				}
				return hashBigInt(big.NewInt(0)), nil
			}
			return 0, newErr(ErrTypeError, "unhashable type")
		},
		Equals: func(a, b *Object) *Object {
			return NewBool(numericEquals(a, b))
		},
	}
}

func noneMethods() *MethodTable {
	return &MethodTable{
		Hash:   func(o *Object) (uint64, *RuntimeError) { return 0, nil },
		Equals: func(a, b *Object) *Object { return NewBool(b.Kind == KindNone) },
	}
}

// numericEquals bridges Int/Float/Bool via exact promotion, avoiding
// precision loss at the compare site.
func numericEquals(a, b *Object) bool {
	if b.Kind != KindInt && b.Kind != KindFloat && b.Kind != KindBool {
		return false
	}
	af := numericAsFloat(a)
	bf := numericAsFloat(b)
	if a.Kind == KindFloat || b.Kind == KindFloat {
		return af.Cmp(bf) == 0
	}
	ai := numericAsInt(a)
	bi := numericAsInt(b)
	return ai.Cmp(bi) == 0
}

func numericAsInt(o *Object) *big.Int {
	switch o.Kind {
	case KindInt:
		return o.Int
	case KindBool:
		if o.Bool {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	}
	return big.NewInt(0)
}

func numericAsFloat(o *Object) *big.Float {
	switch o.Kind {
	case KindFloat:
		return o.Float
	case KindInt:
		return new(big.Float).SetPrec(WorkingPrecision).SetInt(o.Int)
	case KindBool:
		if o.Bool {
			return new(big.Float).SetPrec(WorkingPrecision).SetInt64(1)
		}
		return new(big.Float).SetPrec(WorkingPrecision).SetInt64(0)
	}
	return new(big.Float).SetPrec(WorkingPrecision)
}

func hashBigInt(v *big.Int) uint64 {
	h := fnv.New64a()
	h.Write(v.Bytes())
	if v.Sign() < 0 {
		h.Write([]byte{0xff})
	}
	return h.Sum64()
}

func hashFloat64(f float64) uint64 {
	if f == float64(int64(f)) {
		return hashBigInt(big.NewInt(int64(f)))
	}
	h := fnv.New64a()
	bits := big.NewFloat(f)
	h.Write([]byte(bits.Text('g', -1)))
	return h.Sum64()
}
