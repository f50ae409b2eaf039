// Package runtime is the Go-hosted implementation of the runtime ABI
// (C4): arithmetic, comparison, conversion, and container kernels
// operating on internal/object values. Generated LLVM IR declares
// these names as external functions (see internal/codegen); this
// package is the semantics every such call must have, and is what the
// test suite executes directly in lieu of a real native backend.
package runtime

import (
	"math"
	"math/big"

	"github.com/remyoudompheng/bigfft"
	"pyaotc/internal/object"
)

func stdPow(base, exp float64) float64 { return math.Pow(base, exp) }

// bigMulThresholdBits is the operand bit-length above which squaring
// steps in Pow route through bigfft's FFT-accelerated multiplication
// instead of big.Int.Mul — bigfft exists in the dependency graph
// specifically to accelerate math/big at this scale.
const bigMulThresholdBits = 1 << 14

func bigMul(a, b *big.Int) *big.Int {
	if a.BitLen() > bigMulThresholdBits && b.BitLen() > bigMulThresholdBits {
		return bigfft.Mul(a, b)
	}
	return new(big.Int).Mul(a, b)
}

// Add implements py_object_add for numeric operands (string/list
// concatenation live in container.go).
func Add(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	if a.Kind == object.KindString || b.Kind == object.KindString {
		return StringConcat(a, b)
	}
	if a.Kind == object.KindList || b.Kind == object.KindList {
		return ListConcat(a, b)
	}
	return numericOp(a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) },
		func(x, y *big.Float) *big.Float { return new(big.Float).SetPrec(object.WorkingPrecision).Add(x, y) })
}

// Subtract implements py_object_subtract.
func Subtract(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	return numericOp(a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) },
		func(x, y *big.Float) *big.Float { return new(big.Float).SetPrec(object.WorkingPrecision).Sub(x, y) })
}

// Multiply implements py_object_multiply for numeric operands; string
// and list repetition live in container.go.
func Multiply(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	if a.Kind == object.KindString && b.Kind == object.KindInt {
		return StringRepeat(a, b)
	}
	if a.Kind == object.KindInt && b.Kind == object.KindString {
		return StringRepeat(b, a)
	}
	if a.Kind == object.KindList && b.Kind == object.KindInt {
		return ListRepeat(a, b)
	}
	return numericOp(a, b, bigMul,
		func(x, y *big.Float) *big.Float { return new(big.Float).SetPrec(object.WorkingPrecision).Mul(x, y) })
}

// Divide implements py_object_divide: true division, always Float result.
func Divide(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	bf := asFloat(b)
	if bf.Sign() == 0 {
		return nil, &object.RuntimeError{Kind: object.ErrZeroDivision, Message: "division by zero"}
	}
	af := asFloat(a)
	return object.NewFloat(new(big.Float).SetPrec(object.WorkingPrecision).Quo(af, bf)), nil
}

// FloorDivide implements py_object_floor_divide with Python's
// floor-toward-negative-infinity semantics.
func FloorDivide(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	if a.Kind == object.KindInt && b.Kind == object.KindInt {
		if b.Int.Sign() == 0 {
			return nil, &object.RuntimeError{Kind: object.ErrZeroDivision, Message: "integer division by zero"}
		}
		q, _ := floorDivMod(a.Int, b.Int)
		return object.NewInt(q), nil
	}
	bf := asFloat(b)
	if bf.Sign() == 0 {
		return nil, &object.RuntimeError{Kind: object.ErrZeroDivision, Message: "float floor division by zero"}
	}
	af := asFloat(a)
	quo := new(big.Float).SetPrec(object.WorkingPrecision).Quo(af, bf)
	floor, _ := quo.Int(nil)
	if quo.Sign() < 0 {
		frac := new(big.Float).SetPrec(object.WorkingPrecision).Sub(quo, new(big.Float).SetInt(floor))
		if frac.Sign() != 0 {
			floor.Sub(floor, big.NewInt(1))
		}
	}
	return object.NewFloat(new(big.Float).SetPrec(object.WorkingPrecision).SetInt(floor)), nil
}

// Modulo implements py_object_modulo: result has the sign of the
// divisor (Python semantics) for ints; for floats, a - floor(a/b)*b.
func Modulo(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	if a.Kind == object.KindInt && b.Kind == object.KindInt {
		if b.Int.Sign() == 0 {
			return nil, &object.RuntimeError{Kind: object.ErrZeroDivision, Message: "integer modulo by zero"}
		}
		_, m := floorDivMod(a.Int, b.Int)
		return object.NewInt(m), nil
	}
	bf := asFloat(b)
	if bf.Sign() == 0 {
		return nil, &object.RuntimeError{Kind: object.ErrZeroDivision, Message: "float modulo by zero"}
	}
	af := asFloat(a)
	quo := new(big.Float).SetPrec(object.WorkingPrecision).Quo(af, bf)
	floor, _ := quo.Int(nil)
	if quo.Sign() < 0 {
		frac := new(big.Float).SetPrec(object.WorkingPrecision).Sub(quo, new(big.Float).SetInt(floor))
		if frac.Sign() != 0 {
			floor.Sub(floor, big.NewInt(1))
		}
	}
	prod := new(big.Float).SetPrec(object.WorkingPrecision).Mul(new(big.Float).SetInt(floor), bf)
	rem := new(big.Float).SetPrec(object.WorkingPrecision).Sub(af, prod)
	return object.NewFloat(rem), nil
}

// floorDivMod returns (q, r) such that a == q*b + r, 0<=|r|<|b|, and r
// has the sign of b (Python's `//`/`%`).
func floorDivMod(a, b *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
		r.Add(r, b)
	}
	return q, r
}

// Power implements py_object_power with a fast-path policy:
// int**nonneg-int via squaring, int**neg-int via float reciprocal,
// float**int via integer power, otherwise general pow.
func Power(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	if a.Kind == object.KindInt && b.Kind == object.KindInt {
		if b.Int.Sign() >= 0 {
			return object.NewInt(intPowBySquaring(a.Int, b.Int)), nil
		}
		if a.Int.Sign() == 0 {
			return nil, &object.RuntimeError{Kind: object.ErrZeroDivision, Message: "0.0 cannot be raised to a negative power"}
		}
		af := new(big.Float).SetPrec(object.WorkingPrecision).SetInt(a.Int)
		pos := new(big.Int).Neg(b.Int)
		ip := intPowBySquaring(a.Int, pos)
		ipf := new(big.Float).SetPrec(object.WorkingPrecision).SetInt(ip)
		_ = af
		return object.NewFloat(new(big.Float).SetPrec(object.WorkingPrecision).Quo(big.NewFloat(1), ipf)), nil
	}
	if a.Kind == object.KindFloat && b.Kind == object.KindInt && b.Int.IsInt64() {
		exp := b.Int.Int64()
		neg := exp < 0
		if neg {
			exp = -exp
		}
		result := new(big.Float).SetPrec(object.WorkingPrecision).SetInt64(1)
		base := new(big.Float).SetPrec(object.WorkingPrecision).Set(a.Float)
		for exp > 0 {
			if exp&1 == 1 {
				result.Mul(result, base)
			}
			base.Mul(base, base)
			exp >>= 1
		}
		if neg {
			result = new(big.Float).SetPrec(object.WorkingPrecision).Quo(big.NewFloat(1), result)
		}
		return object.NewFloat(result), nil
	}
	af, _ := asFloat(a).Float64()
	bf, _ := asFloat(b).Float64()
	return object.NewFloat(big.NewFloat(transcendentalPow(af, bf))), nil
}

// intPowBySquaring computes base**exp (exp >= 0) via
// exponentiation-by-squaring, routing large multiplications through
// bigMul (bigfft when operands are large enough to benefit).
func intPowBySquaring(base, exp *big.Int) *big.Int {
	result := big.NewInt(1)
	b := new(big.Int).Set(base)
	e := new(big.Int).Set(exp)
	two := big.NewInt(2)
	zero := big.NewInt(0)
	for e.Cmp(zero) > 0 {
		if new(big.Int).And(e, big.NewInt(1)).Sign() != 0 {
			result = bigMul(result, b)
		}
		b = bigMul(b, b)
		e.Quo(e, two)
	}
	return result
}

func transcendentalPow(base, exp float64) float64 {
	return stdPow(base, exp)
}

func numericOp(a, b *object.Object, intOp func(x, y *big.Int) *big.Int, floatOp func(x, y *big.Float) *big.Float) (*object.Object, *object.RuntimeError) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "unsupported operand type(s)"}
	}
	if a.Kind == object.KindFloat || b.Kind == object.KindFloat {
		return object.NewFloat(floatOp(asFloat(a), asFloat(b))), nil
	}
	return object.NewInt(intOp(asInt(a), asInt(b))), nil
}

func isNumeric(o *object.Object) bool {
	return o.Kind == object.KindInt || o.Kind == object.KindFloat || o.Kind == object.KindBool
}

func asInt(o *object.Object) *big.Int {
	switch o.Kind {
	case object.KindInt:
		return o.Int
	case object.KindBool:
		if o.Bool {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	}
	return big.NewInt(0)
}

func asFloat(o *object.Object) *big.Float {
	switch o.Kind {
	case object.KindFloat:
		return o.Float
	case object.KindInt:
		return new(big.Float).SetPrec(object.WorkingPrecision).SetInt(o.Int)
	case object.KindBool:
		v := int64(0)
		if o.Bool {
			v = 1
		}
		return new(big.Float).SetPrec(object.WorkingPrecision).SetInt64(v)
	}
	return new(big.Float).SetPrec(object.WorkingPrecision)
}

// Negate implements py_object_negate (unary -).
func Negate(a *object.Object) (*object.Object, *object.RuntimeError) {
	if a.Kind == object.KindFloat {
		return object.NewFloat(new(big.Float).SetPrec(object.WorkingPrecision).Neg(a.Float)), nil
	}
	if !isNumeric(a) {
		return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "bad operand type for unary -"}
	}
	return object.NewInt(new(big.Int).Neg(asInt(a))), nil
}

// BitNot implements py_object_bitnot: ~x == -(x+1).
func BitNot(a *object.Object) (*object.Object, *object.RuntimeError) {
	if a.Kind != object.KindInt && a.Kind != object.KindBool {
		return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "bad operand type for unary ~"}
	}
	v := new(big.Int).Add(asInt(a), big.NewInt(1))
	return object.NewInt(v.Neg(v)), nil
}

// And/Or/Xor implement the bitwise binary ops.
func And(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	return bitwiseOp(a, b, (*big.Int).And)
}
func Or(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	return bitwiseOp(a, b, (*big.Int).Or)
}
func Xor(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	return bitwiseOp(a, b, (*big.Int).Xor)
}

func bitwiseOp(a, b *object.Object, op func(z, x, y *big.Int) *big.Int) (*object.Object, *object.RuntimeError) {
	if a.Kind != object.KindInt && a.Kind != object.KindBool {
		return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "bitwise operand must be int"}
	}
	if b.Kind != object.KindInt && b.Kind != object.KindBool {
		return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "bitwise operand must be int"}
	}
	return object.NewInt(op(new(big.Int), asInt(a), asInt(b))), nil
}

// LShift/RShift implement << / >> with Python's edge-case policy:
// negative shift count raises ValueError; a count not fitting in a
// platform word yields 0 (positive operand) or -1 (negative operand).
func LShift(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	return shift(a, b, true)
}
func RShift(a, b *object.Object) (*object.Object, *object.RuntimeError) {
	return shift(a, b, false)
}

const platformWordBits = 64

func shift(a, b *object.Object, left bool) (*object.Object, *object.RuntimeError) {
	if a.Kind != object.KindInt || b.Kind != object.KindInt {
		return nil, &object.RuntimeError{Kind: object.ErrTypeError, Message: "shift operands must be int"}
	}
	if b.Int.Sign() < 0 {
		return nil, &object.RuntimeError{Kind: object.ErrValueError, Message: "negative shift count"}
	}
	if b.Int.BitLen() >= platformWordBits {
		if a.Int.Sign() < 0 {
			return object.NewInt(big.NewInt(-1)), nil
		}
		return object.NewInt(big.NewInt(0)), nil
	}
	n := uint(b.Int.Uint64())
	if left {
		return object.NewInt(new(big.Int).Lsh(a.Int, n)), nil
	}
	return object.NewInt(new(big.Int).Rsh(a.Int, n)), nil
}
