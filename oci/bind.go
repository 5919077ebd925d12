package oci

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
	"github.com/wippyai/oci-runtime/resource"
)

// Param is a named or directed argument. Plain values passed to Query and
// Execute are positional IN arguments.
type Param struct {
	name  string
	value any
	dir   native.Direction
	size  int
}

// Named binds v to the placeholder name, matched case-insensitively with
// or without its leading colon. In PL/SQL each occurrence of a repeated
// name is its own slot; pass the name once per occurrence.
func Named(name string, v any) Param {
	return Param{name: name, value: v, dir: native.DirIn}
}

// Out binds dest, a pointer, to receive an OUT value. An empty name
// makes the parameter positional.
func Out(name string, dest any) Param {
	return Param{name: name, value: dest, dir: native.DirOut}
}

// OutSize is Out with an explicit buffer capacity in bytes for string and
// []byte destinations.
func OutSize(name string, dest any, size int) Param {
	return Param{name: name, value: dest, dir: native.DirOut, size: size}
}

// InOut sends the value dest points to and stores the returned value
// back into it.
func InOut(name string, dest any) Param {
	return Param{name: name, value: dest, dir: native.DirInOut}
}

// Name returns the placeholder name, empty for positional parameters.
func (p Param) Name() string { return p.name }

// NullValue is a typed SQL NULL.
type NullValue struct {
	Type native.TypeCode
}

// Null returns a NULL of type t. A bare nil binds a NULL VARCHAR2.
func Null(t native.TypeCode) NullValue { return NullValue{Type: t} }

// slot is one bind position of a prepared statement.
type slot struct {
	name string
	pos  int
	h    resource.Handle
	buf  *native.Buffer
	// bound is the buffer the driver currently holds for this slot.
	bound *native.Buffer
}

func (s *slot) release() error {
	s.buf, s.bound = nil, nil
	return nil
}

// binding pairs a slot with the argument resolved to it.
type binding struct {
	slot  *slot
	value any
	dir   native.Direction
	size  int
}

func normalizeName(name string) string {
	return strings.TrimPrefix(name, ":")
}

// resolve assigns every argument to a slot. Positional arguments take the
// slot at their own position among positional arguments; named arguments
// take the first unfilled slot of that name.
func resolve(slots []*slot, args []any) ([]binding, error) {
	filled := make([]bool, len(slots))
	out := make([]binding, 0, len(args))
	positional := 0

	for _, arg := range args {
		p, ok := arg.(Param)
		if !ok {
			p = Param{value: arg, dir: native.DirIn}
		}

		if p.name == "" {
			i := positional
			positional++
			if i >= len(slots) {
				return nil, errors.UnresolvedBind(strconv.Itoa(i+1),
					fmt.Sprintf("statement has %d placeholders", len(slots)))
			}
			if filled[i] {
				return nil, errors.BindConflict(slots[i].name)
			}
			filled[i] = true
			out = append(out, binding{slot: slots[i], value: p.value, dir: p.dir, size: p.size})
			continue
		}

		name := normalizeName(p.name)
		found, taken := -1, false
		for i, s := range slots {
			if !strings.EqualFold(s.name, name) {
				continue
			}
			if filled[i] {
				taken = true
				continue
			}
			found = i
			break
		}
		switch {
		case found >= 0:
			filled[found] = true
			out = append(out, binding{slot: slots[found], value: p.value, dir: p.dir, size: p.size})
		case taken:
			return nil, errors.BindConflict(name)
		default:
			return nil, errors.UnresolvedBind(name, "no placeholder with this name")
		}
	}

	for i, f := range filled {
		if !f {
			return nil, errors.UnresolvedBind(slots[i].name, "no value supplied")
		}
	}
	return out, nil
}

// encoded is an argument converted to its native form.
type encoded struct {
	t    native.TypeCode
	data []byte
	null bool
}

// encodeValue converts an IN value with a closed set of accepted types.
func encodeValue(env *Environment, v any) (encoded, error) {
	if codec.IsInteger(v) {
		if n, ok := codec.CoerceToInt64(v); ok {
			return encoded{t: native.TypeNumber, data: codec.NumberFromInt64(n)}, nil
		}
		n, _ := codec.CoerceToUint64(v)
		return encoded{t: native.TypeNumber, data: codec.NumberFromUint64(n)}, nil
	}
	switch x := v.(type) {
	case nil:
		return encoded{t: native.TypeChar, null: true}, nil
	case NullValue:
		return encoded{t: x.Type, null: true}, nil
	case bool:
		var n int64
		if x {
			n = 1
		}
		return encoded{t: native.TypeBoolean, data: codec.EncodeInt(n)}, nil
	case float32:
		return encoded{t: native.TypeBinaryFloat, data: codec.EncodeBinaryFloat(x)}, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return encoded{t: native.TypeBinaryDouble, data: codec.EncodeBinaryDouble(x)}, nil
		}
		b, err := codec.NumberFromFloat64(x)
		if err != nil {
			return encoded{}, err
		}
		return encoded{t: native.TypeNumber, data: b}, nil
	case string:
		b, err := codec.EncodeText(x)
		if err != nil {
			return encoded{}, err
		}
		return encoded{t: native.TypeChar, data: b}, nil
	case []byte:
		if x == nil {
			return encoded{t: native.TypeRaw, null: true}, nil
		}
		return encoded{t: native.TypeRaw, data: x}, nil
	case time.Time:
		d, err := env.fromTime(native.TypeTimestampTZ, x)
		if err != nil {
			return encoded{}, err
		}
		return encoded{t: native.TypeTimestampTZ, data: d.b}, nil
	case time.Duration:
		b, err := codec.EncodeIntervalDS(codec.DaySecondFromDuration(x))
		if err != nil {
			return encoded{}, err
		}
		return encoded{t: native.TypeIntervalDS, data: b}, nil
	case Number:
		return encoded{t: native.TypeNumber, data: x.b}, nil
	case Date:
		return encoded{t: native.TypeDate, data: x.b}, nil
	case Timestamp:
		return encoded{t: native.TypeTimestamp, data: x.b}, nil
	case TimestampTZ:
		return encoded{t: native.TypeTimestampTZ, data: x.b}, nil
	case TimestampLTZ:
		return encoded{t: native.TypeTimestampLTZ, data: x.b}, nil
	case IntervalYM:
		return encoded{t: native.TypeIntervalYM, data: x.b}, nil
	case IntervalDS:
		return encoded{t: native.TypeIntervalDS, data: x.b}, nil
	case RowID:
		b, err := codec.EncodeRowID(x.id)
		if err != nil {
			return encoded{}, err
		}
		return encoded{t: native.TypeRowID, data: b}, nil
	case LobData:
		if x.clob {
			if _, err := codec.DecodeText(x.data); err != nil {
				return encoded{}, err
			}
			return encoded{t: native.TypeClob, data: x.data}, nil
		}
		return encoded{t: native.TypeBlob, data: x.data}, nil
	}
	return encoded{}, errors.New(errors.PhaseBind, errors.KindTypeMismatch).
		GoType(fmt.Sprintf("%T", v)).
		Detail("unsupported bind value").
		Build()
}

// outType picks the native type and capacity for an OUT destination.
func outType(dest any, size int) (native.TypeCode, int, error) {
	var t native.TypeCode
	switch dest.(type) {
	case *int, *int8, *int16, *int32, *int64, *uint, *uint8, *uint16, *uint32, *uint64,
		*float32, *float64, *Number:
		t = native.TypeNumber
	case *bool:
		t = native.TypeBoolean
	case *string:
		t = native.TypeChar
	case *[]byte:
		t = native.TypeRaw
	case *time.Time, *TimestampTZ:
		t = native.TypeTimestampTZ
	case *time.Duration, *IntervalDS:
		t = native.TypeIntervalDS
	case *Date:
		t = native.TypeDate
	case *Timestamp:
		t = native.TypeTimestamp
	case *TimestampLTZ:
		t = native.TypeTimestampLTZ
	case *IntervalYM:
		t = native.TypeIntervalYM
	case *RowID:
		t = native.TypeRowID
	case **Cursor:
		t = native.TypeCursor
	case **Lob:
		t = native.TypeBlob
	case *any:
		t = native.TypeChar
	default:
		return 0, 0, errors.New(errors.PhaseBind, errors.KindTypeMismatch).
			GoType(fmt.Sprintf("%T", dest)).
			Detail("OUT destination must be a pointer to a supported type").
			Build()
	}
	if size <= 0 || codec.Fixed(t) || t == native.TypeNumber {
		size = codec.Size(t, 0)
	}
	return t, size, nil
}

// inOutValue reads the current value behind an INOUT destination.
func inOutValue(dest any) any {
	switch d := dest.(type) {
	case *int:
		return *d
	case *int8:
		return *d
	case *int16:
		return *d
	case *int32:
		return *d
	case *int64:
		return *d
	case *uint:
		return *d
	case *uint8:
		return *d
	case *uint16:
		return *d
	case *uint32:
		return *d
	case *uint64:
		return *d
	case *float32:
		return float64(*d)
	case *float64:
		return *d
	case *bool:
		return *d
	case *string:
		return *d
	case *[]byte:
		return *d
	case *time.Time:
		return *d
	case *time.Duration:
		return *d
	case *Number:
		return *d
	case *Date:
		return *d
	case *Timestamp:
		return *d
	case *TimestampTZ:
		return *d
	case *TimestampLTZ:
		return *d
	case *IntervalYM:
		return *d
	case *IntervalDS:
		return *d
	case *RowID:
		return *d
	case *any:
		return *d
	}
	return nil
}

// prepareBuffer fills the slot's buffer for one execution, reusing it
// when the type matches and the value fits.
func prepareBuffer(env *Environment, b binding) error {
	var (
		t    native.TypeCode
		size int
		enc  encoded
		err  error
	)
	switch b.dir {
	case native.DirIn:
		if enc, err = encodeValue(env, b.value); err != nil {
			return bindError(b, err)
		}
		t, size = enc.t, len(enc.data)
	case native.DirOut, native.DirInOut:
		if t, size, err = outType(b.value, b.size); err != nil {
			return bindError(b, err)
		}
		if b.dir == native.DirInOut {
			if enc, err = encodeValue(env, inOutValue(b.value)); err != nil {
				return bindError(b, err)
			}
			if _, ok := b.value.(*any); ok && !enc.null {
				t = enc.t
			} else if enc.t != t && !enc.null {
				return bindError(b, errors.New(errors.PhaseBind, errors.KindTypeMismatch).
					NativeType(t.String()).
					Detail("INOUT value of type %s does not match its destination", enc.t).
					Build())
			}
			size = max(size, len(enc.data))
		} else {
			enc.null = true
		}
	}

	buf := b.slot.buf
	if buf == nil || buf.Type != t || cap(buf.Data) < size {
		buf = native.NewBuffer(t, size)
	}
	// len(Data) is the capacity OUT values are held to.
	buf.Data = buf.Data[:size]
	buf.Dir = b.dir
	if enc.null {
		buf.SetNull()
	} else {
		buf.Set(enc.data)
	}
	b.slot.buf = buf
	return nil
}

func bindError(b binding, err error) error {
	var name string
	if b.slot != nil {
		name = b.slot.name
	}
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		e.Path = []string{name}
		return e
	}
	return err
}
