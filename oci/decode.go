package oci

import (
	"encoding/hex"
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

// decoder converts non-NULL native buffers into Go destinations. owner is
// the registry handle that LOB and cursor locators are attached to.
type decoder struct {
	env   *Environment
	owner resource.Handle
	// stmt is set when ref cursors may be produced.
	stmt *Statement
}

func mismatch(name string, dest any, t native.TypeCode) error {
	return errors.TypeMismatch(errors.PhaseDecode, []string{name}, fmt.Sprintf("%T", dest), t.String())
}

func withPath(name string, err error) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		e.Path = []string{name}
	}
	return err
}

// into stores the value of buf into dest. The caller handles NULL.
func (dc decoder) into(name string, buf *native.Buffer, dest any) error {
	t := buf.Type
	b := buf.Bytes()

	switch d := dest.(type) {
	case *any:
		v, err := dc.natural(name, buf)
		if err != nil {
			return err
		}
		*d = v
		return nil

	case *string:
		s, err := dc.text(name, buf)
		if err != nil {
			return err
		}
		*d = s
		return nil

	case *[]byte:
		switch {
		case t == native.TypeRaw || t == native.TypeLongRaw || t.IsText():
			*d = append([]byte(nil), b...)
			return nil
		case t == native.TypeBlob || t == native.TypeClob:
			p, err := dc.lobContent(name, buf)
			if err != nil {
				return err
			}
			*d = p
			return nil
		}
		return mismatch(name, dest, t)

	case *bool:
		switch t {
		case native.TypeBoolean, native.TypeInt:
			n, err := codec.DecodeInt(b)
			if err != nil {
				return withPath(name, err)
			}
			*d = n != 0
			return nil
		case native.TypeNumber:
			dec, err := codec.DecodeNumber(b)
			if err != nil {
				return withPath(name, err)
			}
			*d = !dec.IsZero()
			return nil
		}
		return mismatch(name, dest, t)

	case *int:
		n, err := dc.int64(name, buf, dest, math.MinInt, math.MaxInt)
		*d = int(n)
		return err
	case *int8:
		n, err := dc.int64(name, buf, dest, math.MinInt8, math.MaxInt8)
		*d = int8(n)
		return err
	case *int16:
		n, err := dc.int64(name, buf, dest, math.MinInt16, math.MaxInt16)
		*d = int16(n)
		return err
	case *int32:
		n, err := dc.int64(name, buf, dest, math.MinInt32, math.MaxInt32)
		*d = int32(n)
		return err
	case *int64:
		n, err := dc.int64(name, buf, dest, math.MinInt64, math.MaxInt64)
		*d = n
		return err
	case *uint:
		n, err := dc.uint64(name, buf, dest, math.MaxUint)
		*d = uint(n)
		return err
	case *uint8:
		n, err := dc.uint64(name, buf, dest, math.MaxUint8)
		*d = uint8(n)
		return err
	case *uint16:
		n, err := dc.uint64(name, buf, dest, math.MaxUint16)
		*d = uint16(n)
		return err
	case *uint32:
		n, err := dc.uint64(name, buf, dest, math.MaxUint32)
		*d = uint32(n)
		return err
	case *uint64:
		n, err := dc.uint64(name, buf, dest, math.MaxUint64)
		*d = n
		return err

	case *float64:
		f, err := dc.float64(name, buf, dest)
		*d = f
		return err
	case *float32:
		f, err := dc.float64(name, buf, dest)
		if err == nil && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return errors.Overflow(errors.PhaseDecode, []string{name}, f, "float32")
		}
		*d = float32(f)
		return err

	case *time.Time:
		if !t.IsDateTime() {
			return mismatch(name, dest, t)
		}
		tm, err := datetime{env: dc.env, t: t, b: b}.instant()
		if err != nil {
			return withPath(name, err)
		}
		*d = tm
		return nil

	case *time.Duration:
		if t != native.TypeIntervalDS {
			return mismatch(name, dest, t)
		}
		iv, err := codec.DecodeIntervalDS(b)
		if err != nil {
			return withPath(name, err)
		}
		dur, err := iv.Duration()
		if err != nil {
			return withPath(name, err)
		}
		*d = dur
		return nil

	case *Number:
		if t != native.TypeNumber {
			return mismatch(name, dest, t)
		}
		*d = Number{env: dc.env, b: clone(b)}
		return nil
	case *Date:
		if t != native.TypeDate {
			return mismatch(name, dest, t)
		}
		*d = Date{env: dc.env, b: clone(b)}
		return nil
	case *Timestamp:
		if t != native.TypeTimestamp {
			return mismatch(name, dest, t)
		}
		*d = Timestamp{datetime{env: dc.env, t: t, b: clone(b)}}
		return nil
	case *TimestampTZ:
		if t != native.TypeTimestampTZ {
			return mismatch(name, dest, t)
		}
		*d = TimestampTZ{datetime{env: dc.env, t: t, b: clone(b)}}
		return nil
	case *TimestampLTZ:
		if t != native.TypeTimestampLTZ {
			return mismatch(name, dest, t)
		}
		*d = TimestampLTZ{datetime{env: dc.env, t: t, b: clone(b)}}
		return nil
	case *IntervalYM:
		if t != native.TypeIntervalYM {
			return mismatch(name, dest, t)
		}
		*d = IntervalYM{env: dc.env, b: clone(b)}
		return nil
	case *IntervalDS:
		if t != native.TypeIntervalDS {
			return mismatch(name, dest, t)
		}
		*d = IntervalDS{env: dc.env, b: clone(b)}
		return nil

	case *RowID:
		r, err := dc.rowid(name, buf)
		if err != nil {
			return err
		}
		*d = r
		return nil

	case **Lob:
		if t != native.TypeBlob && t != native.TypeClob {
			return mismatch(name, dest, t)
		}
		l, err := dc.lob(buf)
		if err != nil {
			return err
		}
		*d = l
		return nil

	case **Cursor:
		if t != native.TypeCursor {
			return mismatch(name, dest, t)
		}
		c, err := dc.cursor(buf)
		if err != nil {
			return err
		}
		*d = c
		return nil
	}
	return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
		Path(name).
		GoType(fmt.Sprintf("%T", dest)).
		Detail("unsupported destination").
		Build()
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

func (dc decoder) int64(name string, buf *native.Buffer, dest any, lo, hi int64) (int64, error) {
	var (
		n   int64
		err error
	)
	b := buf.Bytes()
	switch buf.Type {
	case native.TypeNumber:
		n, err = codec.NumberToInt64(b)
	case native.TypeInt, native.TypeBoolean:
		n, err = codec.DecodeInt(b)
	case native.TypeBinaryDouble, native.TypeBinaryFloat:
		f, ferr := dc.float64(name, buf, dest)
		if ferr != nil {
			return 0, ferr
		}
		v, ok := codec.CoerceToInt64(f)
		if !ok {
			return 0, errors.InvalidData(errors.PhaseDecode, []string{name}, "value "+strconv.FormatFloat(f, 'g', -1, 64)+" is not an integer")
		}
		n = v
	default:
		return 0, mismatch(name, dest, buf.Type)
	}
	if err != nil {
		return 0, withPath(name, err)
	}
	if n < lo || n > hi {
		return 0, errors.Overflow(errors.PhaseDecode, []string{name}, n, fmt.Sprintf("%T", dest)[1:])
	}
	return n, nil
}

func (dc decoder) uint64(name string, buf *native.Buffer, dest any, hi uint64) (uint64, error) {
	var (
		n   uint64
		err error
	)
	b := buf.Bytes()
	switch buf.Type {
	case native.TypeNumber:
		n, err = codec.NumberToUint64(b)
	case native.TypeInt, native.TypeBoolean:
		var v int64
		v, err = codec.DecodeInt(b)
		if err == nil && v < 0 {
			return 0, errors.Overflow(errors.PhaseDecode, []string{name}, v, fmt.Sprintf("%T", dest)[1:])
		}
		n = uint64(v)
	default:
		return 0, mismatch(name, dest, buf.Type)
	}
	if err != nil {
		return 0, withPath(name, err)
	}
	if n > hi {
		return 0, errors.Overflow(errors.PhaseDecode, []string{name}, n, fmt.Sprintf("%T", dest)[1:])
	}
	return n, nil
}

func (dc decoder) float64(name string, buf *native.Buffer, dest any) (float64, error) {
	b := buf.Bytes()
	var (
		f   float64
		err error
	)
	switch buf.Type {
	case native.TypeNumber:
		f, err = codec.NumberToFloat64(b)
	case native.TypeBinaryDouble:
		f, err = codec.DecodeBinaryDouble(b)
	case native.TypeBinaryFloat:
		var f32 float32
		f32, err = codec.DecodeBinaryFloat(b)
		f = float64(f32)
	case native.TypeInt:
		var n int64
		n, err = codec.DecodeInt(b)
		f = float64(n)
	default:
		return 0, mismatch(name, dest, buf.Type)
	}
	return f, withPath(name, err)
}

// text renders any scalar column as text. Datetimes use the
// environment's default format models.
func (dc decoder) text(name string, buf *native.Buffer) (string, error) {
	t := buf.Type
	b := buf.Bytes()
	switch {
	case t.IsText():
		s, err := codec.DecodeText(b)
		return s, withPath(name, err)
	case t == native.TypeRaw || t == native.TypeLongRaw:
		return strings.ToUpper(hex.EncodeToString(b)), nil
	case t == native.TypeNumber:
		s, err := codec.NumberToString(b)
		return s, withPath(name, err)
	case t == native.TypeBinaryDouble || t == native.TypeBinaryFloat || t == native.TypeInt:
		f, err := dc.float64(name, buf, (*string)(nil))
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case t == native.TypeBoolean:
		n, err := codec.DecodeInt(b)
		if err != nil {
			return "", withPath(name, err)
		}
		return strconv.FormatBool(n != 0), nil
	case t.IsDateTime():
		fsprec := -1
		if t == native.TypeDate {
			fsprec = 0
		}
		return datetime{env: dc.env, t: t, b: b}.toString("", fsprec)
	case t == native.TypeIntervalYM:
		iv, err := codec.DecodeIntervalYM(b)
		return iv.String(), withPath(name, err)
	case t == native.TypeIntervalDS:
		iv, err := codec.DecodeIntervalDS(b)
		return iv.String(), withPath(name, err)
	case t == native.TypeRowID:
		r, err := codec.DecodeRowID(b)
		return r.String(), withPath(name, err)
	case t == native.TypeClob || t == native.TypeBlob:
		p, err := dc.lobContent(name, buf)
		if err != nil {
			return "", err
		}
		s, err := codec.DecodeText(p)
		return s, withPath(name, err)
	}
	return "", mismatch(name, (*string)(nil), t)
}

func (dc decoder) rowid(name string, buf *native.Buffer) (RowID, error) {
	b := buf.Bytes()
	switch buf.Type {
	case native.TypeRowID:
		r, err := codec.DecodeRowID(b)
		if err != nil {
			return RowID{}, withPath(name, err)
		}
		return RowID{id: r}, nil
	case native.TypeRowIDChar, native.TypeChar:
		r, err := codec.ParseRowID(string(b))
		if err != nil {
			return RowID{}, withPath(name, err)
		}
		return RowID{id: r}, nil
	}
	return RowID{}, mismatch(name, (*RowID)(nil), buf.Type)
}

func (dc decoder) lob(buf *native.Buffer) (*Lob, error) {
	nh := buf.Handle()
	if nh == 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "empty LOB locator")
	}
	return newLob(dc.env, dc.owner, nh, buf.Type == native.TypeClob)
}

// lobContent reads a LOB without registering a locator for it.
func (dc decoder) lobContent(name string, buf *native.Buffer) ([]byte, error) {
	nh := buf.Handle()
	if nh == 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, []string{name}, "empty LOB locator")
	}
	drv := dc.env.drv
	n, err := drv.LobLength(nh)
	if err != nil {
		return nil, withPath(name, callError(errors.PhaseFetch, "LOB length", err))
	}
	p := make([]byte, n)
	for off := 0; off < len(p); {
		k, err := drv.LobRead(nh, int64(off), p[off:])
		if err != nil {
			return nil, withPath(name, callError(errors.PhaseFetch, "LOB read", err))
		}
		if k == 0 {
			return p[:off], nil
		}
		off += k
	}
	return p, nil
}

func (dc decoder) cursor(buf *native.Buffer) (*Cursor, error) {
	nh := buf.Handle()
	if nh == 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "empty cursor handle")
	}
	if dc.stmt == nil {
		return nil, errors.Unsupported(errors.PhaseDecode, "nested cursors")
	}
	return dc.stmt.adoptCursor(nh)
}

// natural decodes to the Go type that represents the native type without
// loss.
func (dc decoder) natural(name string, buf *native.Buffer) (any, error) {
	var dest any
	switch t := buf.Type; {
	case t.IsText():
		dest = new(string)
	case t == native.TypeRaw || t == native.TypeLongRaw:
		dest = new([]byte)
	case t == native.TypeNumber:
		dest = new(Number)
	case t == native.TypeBinaryDouble:
		dest = new(float64)
	case t == native.TypeBinaryFloat:
		dest = new(float32)
	case t == native.TypeInt:
		dest = new(int64)
	case t == native.TypeBoolean:
		dest = new(bool)
	case t == native.TypeDate:
		dest = new(Date)
	case t == native.TypeTimestamp:
		dest = new(Timestamp)
	case t == native.TypeTimestampTZ:
		dest = new(TimestampTZ)
	case t == native.TypeTimestampLTZ:
		dest = new(TimestampLTZ)
	case t == native.TypeIntervalYM:
		dest = new(IntervalYM)
	case t == native.TypeIntervalDS:
		dest = new(IntervalDS)
	case t == native.TypeRowID:
		dest = new(RowID)
	case t == native.TypeClob || t == native.TypeBlob:
		dest = new(*Lob)
	case t == native.TypeCursor:
		dest = new(*Cursor)
	default:
		return nil, mismatch(name, (*any)(nil), t)
	}
	if err := dc.into(name, buf, dest); err != nil {
		return nil, err
	}
	switch v := dest.(type) {
	case *string:
		return *v, nil
	case *[]byte:
		return *v, nil
	case *Number:
		return *v, nil
	case *float64:
		return *v, nil
	case *float32:
		return *v, nil
	case *int64:
		return *v, nil
	case *bool:
		return *v, nil
	case *Date:
		return *v, nil
	case *Timestamp:
		return *v, nil
	case *TimestampTZ:
		return *v, nil
	case *TimestampLTZ:
		return *v, nil
	case *IntervalYM:
		return *v, nil
	case *IntervalDS:
		return *v, nil
	case *RowID:
		return *v, nil
	case **Lob:
		return *v, nil
	case **Cursor:
		return *v, nil
	}
	return nil, nil
}
