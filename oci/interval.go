package oci

import (
	"time"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
)

// Interval is implemented by IntervalYM and IntervalDS. Datetime Add
// accepts either.
type Interval interface {
	Type() native.TypeCode
	Bytes() []byte
	environment() *Environment
}

func intervalArith(env *Environment, t native.TypeCode, op native.NumberOp, a []byte, b []byte) ([]byte, error) {
	if err := env.check(errors.PhaseNative); err != nil {
		return nil, err
	}
	r, err := env.drv.IntervalArith(env.nh, t, op, a, b)
	if err != nil {
		return nil, callError(errors.PhaseNative, "interval arithmetic", err)
	}
	return r, nil
}

// sameSubtype rejects mixing YEAR TO MONTH and DAY TO SECOND.
func sameSubtype(t native.TypeCode, o Interval) error {
	if o == nil {
		return errors.Usage(errors.PhaseNative, "nil interval")
	}
	if o.Type() != t {
		return errors.New(errors.PhaseNative, errors.KindTypeMismatch).
			NativeType(o.Type().String()).
			Detail("cannot combine %s with %s", t, o.Type()).
			Build()
	}
	return nil
}

func intervalText(env *Environment, t native.TypeCode, b []byte, lfprec, fsprec int) (string, error) {
	if err := env.check(errors.PhaseFormat); err != nil {
		return "", err
	}
	s, err := env.drv.IntervalToText(env.nh, t, b, lfprec, fsprec)
	if err != nil {
		return "", callError(errors.PhaseFormat, "interval to text", err)
	}
	return s, nil
}

// IntervalYM is an INTERVAL YEAR TO MONTH.
type IntervalYM struct {
	env *Environment
	b   []byte
}

func (iv IntervalYM) Type() native.TypeCode     { return native.TypeIntervalYM }
func (iv IntervalYM) Bytes() []byte             { return iv.b }
func (iv IntervalYM) environment() *Environment { return iv.env }

func (iv IntervalYM) value() codec.YearMonth {
	v, err := codec.DecodeIntervalYM(iv.b)
	if err != nil {
		return codec.YearMonth{}
	}
	return v
}

// Years and Months both carry the sign of the interval. A value that
// does not decode reads as zero.
func (iv IntervalYM) Years() int  { return iv.value().Years }
func (iv IntervalYM) Months() int { return iv.value().Months }

// TotalMonths returns the signed length in months.
func (iv IntervalYM) TotalMonths() int { return iv.value().TotalMonths() }

func (iv IntervalYM) Add(o Interval) (IntervalYM, error) { return iv.combine(native.NumberAdd, o) }
func (iv IntervalYM) Sub(o Interval) (IntervalYM, error) { return iv.combine(native.NumberSub, o) }

func (iv IntervalYM) combine(op native.NumberOp, o Interval) (IntervalYM, error) {
	if err := sameSubtype(native.TypeIntervalYM, o); err != nil {
		return IntervalYM{}, err
	}
	b, err := intervalArith(iv.env, native.TypeIntervalYM, op, iv.b, o.Bytes())
	if err != nil {
		return IntervalYM{}, err
	}
	return IntervalYM{env: iv.env, b: b}, nil
}

// Mul scales by a NUMBER, rounding to whole months.
func (iv IntervalYM) Mul(n Number) (IntervalYM, error) {
	b, err := intervalArith(iv.env, native.TypeIntervalYM, native.NumberMul, iv.b, n.b)
	if err != nil {
		return IntervalYM{}, err
	}
	return IntervalYM{env: iv.env, b: b}, nil
}

// Div divides by a NUMBER, rounding to whole months.
func (iv IntervalYM) Div(n Number) (IntervalYM, error) {
	b, err := intervalArith(iv.env, native.TypeIntervalYM, native.NumberDiv, iv.b, n.b)
	if err != nil {
		return IntervalYM{}, err
	}
	return IntervalYM{env: iv.env, b: b}, nil
}

// Neg flips the sign.
func (iv IntervalYM) Neg() (IntervalYM, error) {
	v, err := codec.DecodeIntervalYM(iv.b)
	if err != nil {
		return IntervalYM{}, err
	}
	b, err := codec.EncodeIntervalYM(codec.YearMonth{Years: -v.Years, Months: -v.Months})
	if err != nil {
		return IntervalYM{}, err
	}
	return IntervalYM{env: iv.env, b: b}, nil
}

// ToString renders [+-]YY-MM with lfprec year digits.
func (iv IntervalYM) ToString(lfprec int) (string, error) {
	return intervalText(iv.env, native.TypeIntervalYM, iv.b, lfprec, 0)
}

func (iv IntervalYM) String() string {
	return iv.value().String()
}

// IntervalDS is an INTERVAL DAY TO SECOND.
type IntervalDS struct {
	env *Environment
	b   []byte
}

func (iv IntervalDS) Type() native.TypeCode     { return native.TypeIntervalDS }
func (iv IntervalDS) Bytes() []byte             { return iv.b }
func (iv IntervalDS) environment() *Environment { return iv.env }

// Components returns the signed day, hour, minute, second and nanosecond
// fields, all zero for a value that does not decode.
func (iv IntervalDS) Components() codec.DaySecond {
	v, err := codec.DecodeIntervalDS(iv.b)
	if err != nil {
		return codec.DaySecond{}
	}
	return v
}

func (iv IntervalDS) Add(o Interval) (IntervalDS, error) { return iv.combine(native.NumberAdd, o) }
func (iv IntervalDS) Sub(o Interval) (IntervalDS, error) { return iv.combine(native.NumberSub, o) }

func (iv IntervalDS) combine(op native.NumberOp, o Interval) (IntervalDS, error) {
	if err := sameSubtype(native.TypeIntervalDS, o); err != nil {
		return IntervalDS{}, err
	}
	b, err := intervalArith(iv.env, native.TypeIntervalDS, op, iv.b, o.Bytes())
	if err != nil {
		return IntervalDS{}, err
	}
	return IntervalDS{env: iv.env, b: b}, nil
}

// Mul scales by a NUMBER, rounding to whole nanoseconds.
func (iv IntervalDS) Mul(n Number) (IntervalDS, error) {
	b, err := intervalArith(iv.env, native.TypeIntervalDS, native.NumberMul, iv.b, n.b)
	if err != nil {
		return IntervalDS{}, err
	}
	return IntervalDS{env: iv.env, b: b}, nil
}

// Div divides by a NUMBER, rounding to whole nanoseconds.
func (iv IntervalDS) Div(n Number) (IntervalDS, error) {
	b, err := intervalArith(iv.env, native.TypeIntervalDS, native.NumberDiv, iv.b, n.b)
	if err != nil {
		return IntervalDS{}, err
	}
	return IntervalDS{env: iv.env, b: b}, nil
}

func (iv IntervalDS) Neg() (IntervalDS, error) {
	v, err := codec.DecodeIntervalDS(iv.b)
	if err != nil {
		return IntervalDS{}, err
	}
	secs, nanos := v.Split()
	b, err := codec.EncodeIntervalDS(codec.DaySecondOf(-secs, -nanos))
	if err != nil {
		return IntervalDS{}, err
	}
	return IntervalDS{env: iv.env, b: b}, nil
}

// ToString renders [+-]DD HH:MI:SS[.FF] with lfprec day digits and fsprec
// fractional digits.
func (iv IntervalDS) ToString(lfprec, fsprec int) (string, error) {
	return intervalText(iv.env, native.TypeIntervalDS, iv.b, lfprec, fsprec)
}

func (iv IntervalDS) String() string {
	return iv.Components().String()
}

// Duration converts the interval. Intervals longer than about 292 years
// overflow.
func (iv IntervalDS) Duration() (time.Duration, error) {
	return iv.Components().Duration()
}
