package runtime

import "pyaotc/internal/object"

// CmpOp is the comparison operator passed to py_object_compare.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// Compare implements py_object_compare. Equality dispatches via the
// registered Equals hook; ordering is defined only for numeric↔numeric
// and string↔string — any other combination raises TypeError for
// ordering operators and returns the appropriate bool for ==/!=.
func Compare(a, b *object.Object, op CmpOp) (*object.Object, *object.RuntimeError) {
	switch op {
	case CmpEq:
		return object.NewBool(objectsEqual(a, b)), nil
	case CmpNe:
		return object.NewBool(!objectsEqual(a, b)), nil
	}

	if isNumeric(a) && isNumeric(b) {
		af, bf := asFloat(a), asFloat(b)
		c := af.Cmp(bf)
		return object.NewBool(orderResult(c, op)), nil
	}
	if a.Kind == object.KindString && b.Kind == object.KindString {
		c := compareStrings(a.Str, b.Str)
		return object.NewBool(orderResult(c, op)), nil
	}
	return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "comparison not supported between these types"}
}

func orderResult(cmp int, op CmpOp) bool {
	switch op {
	case CmpLt:
		return cmp < 0
	case CmpLe:
		return cmp <= 0
	case CmpGt:
		return cmp > 0
	case CmpGe:
		return cmp >= 0
	}
	return false
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func objectsEqual(a, b *object.Object) bool {
	if a.Kind == object.KindNone || b.Kind == object.KindNone {
		return a.Kind == object.KindNone && b.Kind == object.KindNone
	}
	if globalDispatch == nil {
		return a == b
	}
	t := globalDispatch(a)
	if t == nil || t.Equals == nil {
		return a == b
	}
	return t.Equals(a, b).Bool
}

// globalDispatch is set by object.InitializeBuiltinTypeMethods's
// caller (module lowering's __runtime_init__) so this package can
// dispatch Equals without importing object's internal registry type
// directly; see SetDispatch.
var globalDispatch func(o *object.Object) *object.MethodTable

// SetDispatch wires the method-table dispatcher used by Compare/ToBool
// container helpers. Called once from py_initialize_builtin_type_methods.
func SetDispatch(fn func(o *object.Object) *object.MethodTable) { globalDispatch = fn }

// ToBool implements py_object_to_bool: the machine-boolean coercion
// used to normalize if/while conditions.
func ToBool(o *object.Object) bool {
	switch o.Kind {
	case object.KindNone:
		return false
	case object.KindBool:
		return o.Bool
	case object.KindInt:
		return o.Int.Sign() != 0
	case object.KindFloat:
		return o.Float.Sign() != 0
	case object.KindString:
		return len(o.Str) > 0
	case object.KindList:
		return len(o.List.Data) > 0
	case object.KindDict:
		return o.Dict.Size() > 0
	}
	return true
}

// Not implements py_object_not (`not x`), always returning Bool.
func Not(o *object.Object) *object.Object { return object.NewBool(!ToBool(o)) }
