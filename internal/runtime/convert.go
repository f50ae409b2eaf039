package runtime

import (
	"fmt"
	"math/big"
	"strconv"

	"pyaotc/internal/object"
	"pyaotc/internal/types"
)

// SmartConvert implements py_smart_convert(obj, target_id): returns an
// owned new object (or the same object, incref'd, if already of the
// target type), or nil signaling failure — the runtime ABI's sentinel
// contract, not an exception.
func SmartConvert(o *object.Object, target types.ID) *object.Object {
	if o.TypeID == target {
		object.Incref(o)
		return o
	}
	switch target {
	case types.Int:
		return toInt(o)
	case types.Float:
		return toFloat(o)
	case types.Bool:
		return object.NewBool(ToBool(o))
	case types.String:
		return object.NewString(ToStr(o))
	case types.Any:
		object.Incref(o)
		return o
	}
	return nil
}

func toInt(o *object.Object) *object.Object {
	switch o.Kind {
	case object.KindBool:
		if o.Bool {
			return object.NewInt(big.NewInt(1))
		}
		return object.NewInt(big.NewInt(0))
	case object.KindFloat:
		i, _ := o.Float.Int(nil)
		return object.NewInt(i)
	case object.KindString:
		v, ok := new(big.Int).SetString(o.Str, 10)
		if !ok {
			return nil
		}
		return object.NewInt(v)
	}
	return nil
}

func toFloat(o *object.Object) *object.Object {
	switch o.Kind {
	case object.KindBool:
		v := int64(0)
		if o.Bool {
			v = 1
		}
		return object.NewFloat(new(big.Float).SetPrec(object.WorkingPrecision).SetInt64(v))
	case object.KindInt:
		return object.NewFloat(new(big.Float).SetPrec(object.WorkingPrecision).SetInt(o.Int))
	case object.KindString:
		f, _, err := big.ParseFloat(o.Str, 10, object.WorkingPrecision, big.ToNearestEven)
		if err != nil {
			return nil
		}
		return object.NewFloat(f)
	}
	return nil
}

// ToStr renders an object the way py_print_object would, used both by
// str() conversion and printing.
func ToStr(o *object.Object) string {
	switch o.Kind {
	case object.KindNone:
		return "None"
	case object.KindBool:
		if o.Bool {
			return "True"
		}
		return "False"
	case object.KindInt:
		return o.Int.String()
	case object.KindFloat:
		return o.Float.Text('g', -1)
	case object.KindString:
		return o.Str
	case object.KindList:
		s := "["
		for i, e := range o.List.Data {
			if i > 0 {
				s += ", "
			}
			s += reprOf(e)
		}
		return s + "]"
	case object.KindDict:
		s := "{"
		first := true
		o.Dict.Each(func(k, v *object.Object) {
			if !first {
				s += ", "
			}
			first = false
			s += reprOf(k) + ": " + reprOf(v)
		})
		return s + "}"
	case object.KindFunction:
		return fmt.Sprintf("<function %s>", o.Fn.Name)
	case object.KindClass:
		return fmt.Sprintf("<class %s>", o.Cls.Name)
	case object.KindInstance:
		return fmt.Sprintf("<%s instance>", o.Inst.Class.Cls.Name)
	}
	return "<object>"
}

// reprOf quotes strings inside containers, in Go's double-quoted
// strconv.Quote form (Python's repr() would use single quotes).
func reprOf(o *object.Object) string {
	if o.Kind == object.KindString {
		return strconv.Quote(o.Str)
	}
	return ToStr(o)
}

// ToExitCode implements py_object_to_exit_code: None -> 0; an Int
// fitting the host word -> that value truncated; anything else -> 1.
func ToExitCode(o *object.Object) int {
	if o == nil || o.Kind == object.KindNone {
		return 0
	}
	if o.Kind == object.KindInt && o.Int.IsInt64() {
		return int(int32(o.Int.Int64()))
	}
	return 1
}
