package oci

import (
	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
)

// Number is a NUMBER value: up to 40 significant decimal digits with an
// exponent between -130 and 125. Arithmetic runs in the environment's
// number services, so results match server-side computation.
type Number struct {
	env *Environment
	b   []byte
}

// Bytes returns the native encoding.
func (n Number) Bytes() []byte {
	return n.b
}

func (n Number) decimal() codec.Decimal {
	d, err := codec.DecodeNumber(n.b)
	if err != nil {
		return codec.Decimal{}
	}
	return d
}

func (n Number) arith(op native.NumberOp, o Number) (Number, error) {
	if err := n.env.check(errors.PhaseNative); err != nil {
		return Number{}, err
	}
	b, err := n.env.drv.NumberArith(n.env.nh, op, n.b, o.b)
	if err != nil {
		return Number{}, callError(errors.PhaseNative, "number arithmetic", err)
	}
	return Number{env: n.env, b: b}, nil
}

func (n Number) unary(fn native.NumberFunc) (Number, error) {
	if err := n.env.check(errors.PhaseNative); err != nil {
		return Number{}, err
	}
	b, err := n.env.drv.NumberUnary(n.env.nh, fn, n.b)
	if err != nil {
		return Number{}, callError(errors.PhaseNative, "number function", err)
	}
	return Number{env: n.env, b: b}, nil
}

func (n Number) Add(o Number) (Number, error) { return n.arith(native.NumberAdd, o) }
func (n Number) Sub(o Number) (Number, error) { return n.arith(native.NumberSub, o) }
func (n Number) Mul(o Number) (Number, error) { return n.arith(native.NumberMul, o) }

// Div fails on a zero divisor.
func (n Number) Div(o Number) (Number, error) { return n.arith(native.NumberDiv, o) }

// Mod is MOD: the remainder takes the sign of n, and MOD(n, 0) is n.
func (n Number) Mod(o Number) (Number, error) { return n.arith(native.NumberMod, o) }

// Pow raises n to o. A negative base needs an integral exponent.
func (n Number) Pow(o Number) (Number, error) { return n.arith(native.NumberPow, o) }

func (n Number) Neg() (Number, error)   { return n.unary(native.NumberNeg) }
func (n Number) Abs() (Number, error)   { return n.unary(native.NumberAbs) }
func (n Number) Sqrt() (Number, error)  { return n.unary(native.NumberSqrt) }
func (n Number) Ln() (Number, error)    { return n.unary(native.NumberLn) }
func (n Number) Exp() (Number, error)   { return n.unary(native.NumberExp) }
func (n Number) Log10() (Number, error) { return n.unary(native.NumberLog10) }
func (n Number) Sin() (Number, error)   { return n.unary(native.NumberSin) }
func (n Number) Cos() (Number, error)   { return n.unary(native.NumberCos) }
func (n Number) Tan() (Number, error)   { return n.unary(native.NumberTan) }
func (n Number) Atan() (Number, error)  { return n.unary(native.NumberAtan) }
func (n Number) Floor() (Number, error) { return n.unary(native.NumberFloor) }
func (n Number) Ceil() (Number, error)  { return n.unary(native.NumberCeil) }

// Log returns the logarithm of n in the given base.
func (n Number) Log(base Number) (Number, error) {
	num, err := n.Ln()
	if err != nil {
		return Number{}, err
	}
	den, err := base.Ln()
	if err != nil {
		return Number{}, err
	}
	return num.Div(den)
}

func (n Number) round(digits int, trunc bool) (Number, error) {
	if err := n.env.check(errors.PhaseNative); err != nil {
		return Number{}, err
	}
	b, err := n.env.drv.NumberRound(n.env.nh, n.b, digits, trunc)
	if err != nil {
		return Number{}, callError(errors.PhaseNative, "number round", err)
	}
	return Number{env: n.env, b: b}, nil
}

// Round rounds half away from zero to digits after the decimal point.
// Negative digits round to the left of it.
func (n Number) Round(digits int) (Number, error) { return n.round(digits, false) }

// Trunc drops digits beyond the given position.
func (n Number) Trunc(digits int) (Number, error) { return n.round(digits, true) }

// Cmp compares n and o, returning -1, 0 or +1.
func (n Number) Cmp(o Number) int {
	c := codec.CompareNumber(n.b, o.b)
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	}
	return 0
}

// Sign returns -1, 0 or +1. Sign, IsZero and IsInt read a value that does
// not decode, such as the zero Number, as zero; Cmp and Int64 do not.
func (n Number) Sign() int {
	d := n.decimal()
	switch {
	case d.IsZero():
		return 0
	case d.Neg:
		return -1
	}
	return 1
}

func (n Number) IsZero() bool { return n.decimal().IsZero() }
func (n Number) IsInt() bool  { return n.decimal().IsInt() }

// ToString formats n with a number format model. An empty model gives
// the shortest text, as TO_CHAR does without one.
func (n Number) ToString(model string) (string, error) {
	if err := n.env.check(errors.PhaseFormat); err != nil {
		return "", err
	}
	s, err := n.env.drv.NumberToText(n.env.nh, n.b, model)
	if err != nil {
		return "", callError(errors.PhaseFormat, "number to text", err)
	}
	return s, nil
}

// String renders plain decimal text without going through the
// environment.
func (n Number) String() string {
	s, err := codec.NumberToString(n.b)
	if err != nil {
		return "<invalid NUMBER>"
	}
	return s
}

// Int64 converts an integral value; a fractional part is an error.
func (n Number) Int64() (int64, error) {
	return codec.NumberToInt64(n.b)
}

// Float64 returns the nearest float64.
func (n Number) Float64() (float64, error) {
	return codec.NumberToFloat64(n.b)
}
