package lite

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/internal/nls"
	"github.com/wippyai/oci-runtime/native"
)

// storedModel reads the ISO text datetimes are stored as.
const storedModel = "SYYYY-MM-DD HH24:MI:SS.FF9 TZR"

// numberValue returns the SQLite value for d: an integer when it fits, a
// float when the float is exact, decimal text otherwise.
func numberValue(d codec.Decimal) any {
	if d.IsInt() {
		if v, err := d.Int64(); err == nil {
			return v
		}
	}
	if f, err := d.Float64(); err == nil {
		back, err := codec.ParseDecimal(strconv.FormatFloat(f, 'e', -1, 64))
		if err == nil && back.String() == d.String() {
			return f
		}
	}
	return d.String()
}

// storedDigits is how many significant digits a NUMBER column keeps
// exactly; SQLite numeric affinity turns wider values into float64.
const storedDigits = 15

// checkStored refuses a NUMBER argument whose integer part a column would
// change. numberValue passes such values as text. Extra fractional digits
// round, as they do against a column scale.
func checkStored(buf *native.Buffer, v any) error {
	s, ok := v.(string)
	if !ok || buf.Type != native.TypeNumber {
		return nil
	}
	d, err := codec.ParseDecimal(s)
	if err != nil {
		return nil
	}
	if min(len(d.Digits), d.Exp) > storedDigits {
		return native.Errorf(native.CodeValueTooLarge,
			"value larger than specified precision allowed for this column (%s)", s)
	}
	return nil
}

func decimalOf(v any) (codec.Decimal, error) {
	switch x := v.(type) {
	case int64:
		return codec.ParseDecimal(strconv.FormatInt(x, 10))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return codec.Decimal{}, native.Errorf(native.CodeNumericOverflow, "numeric overflow")
		}
		return codec.ParseDecimal(strconv.FormatFloat(x, 'e', -1, 64))
	case bool:
		if x {
			return codec.ParseDecimal("1")
		}
		return codec.Decimal{}, nil
	case string:
		d, err := codec.ParseDecimal(strings.TrimSpace(x))
		if err != nil {
			return codec.Decimal{}, native.Errorf(native.CodeInvalidNumber, "invalid number")
		}
		return d, nil
	}
	return codec.Decimal{}, native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: expected NUMBER got %T", v)
}

func float64Of(v any) (float64, error) {
	switch x := v.(type) {
	case int64:
		return float64(x), nil
	case float64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, native.Errorf(native.CodeInvalidNumber, "invalid number")
		}
		return f, nil
	}
	return 0, native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: expected BINARY_DOUBLE got %T", v)
}

// textOf renders v the way an implicit conversion to VARCHAR2 would.
func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return strings.ToUpper(hex.EncodeToString(x))
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return storedText(codec.DateTimeOf(x), native.TypeTimestamp)
	case int64, float64:
		d, err := decimalOf(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		s, err := nls.FormatNumber(d, "")
		if err != nil {
			return d.String()
		}
		return s
	}
	return fmt.Sprint(v)
}

func offsetText(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign, minutes = '-', -minutes
	}
	return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
}

// storedText renders dt as stored ISO text for a column of type t.
func storedText(dt codec.DateTime, t native.TypeCode) string {
	year, sign := dt.Year, ""
	if year < 0 {
		year, sign = -year, "-"
	}
	s := fmt.Sprintf("%s%04d-%02d-%02d %02d:%02d:%02d", sign, year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
	if t != native.TypeDate {
		s += fmt.Sprintf(".%09d", dt.Nanosecond)
	}
	if t == native.TypeTimestampTZ {
		if dt.Region != "" {
			s += " " + dt.Region
		} else {
			s += " " + offsetText(dt.Offset)
		}
	}
	return s
}

// parseStored reads stored datetime text. It also accepts the ISO 'T'
// separator and a trailing Z.
func parseStored(s string) (codec.DateTime, bool, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[10] == 'T' {
		s = s[:10] + " " + s[11:]
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + " +00:00"
	}
	return nls.ParseDateTime(s, storedModel, time.Now())
}

// sessionZone attaches the session zone to a zone-less value.
func sessionZone(dt codec.DateTime, loc *time.Location) codec.DateTime {
	if loc == nil || loc == time.UTC {
		return dt
	}
	if _, ok := codec.RegionID(loc.String()); ok {
		dt.Region = loc.String()
		return dt
	}
	t, err := dt.Time(loc)
	if err != nil {
		return dt
	}
	_, off := t.Zone()
	dt.Offset = off / 60
	return dt
}

func dateTimeOf(v any) (codec.DateTime, bool, error) {
	switch x := v.(type) {
	case time.Time:
		return codec.DateTimeOf(x), false, nil
	case string:
		return parseStored(x)
	}
	return codec.DateTime{}, false, native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: expected DATE got %T", v)
}

func decodeDateTime(t native.TypeCode, b []byte) (codec.DateTime, error) {
	switch t {
	case native.TypeDate:
		return codec.DecodeDate(b)
	case native.TypeTimestamp:
		return codec.DecodeTimestamp(b)
	case native.TypeTimestampTZ:
		return codec.DecodeTimestampTZ(b)
	case native.TypeTimestampLTZ:
		return codec.DecodeTimestampLTZ(b)
	}
	return codec.DateTime{}, native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: %s is not a datetime", t)
}

func encodeDateTime(t native.TypeCode, dt codec.DateTime) ([]byte, error) {
	switch t {
	case native.TypeDate:
		return codec.EncodeDate(dt)
	case native.TypeTimestamp:
		return codec.EncodeTimestamp(dt.WithoutZone())
	case native.TypeTimestampTZ:
		return codec.EncodeTimestampTZ(dt)
	case native.TypeTimestampLTZ:
		return codec.EncodeTimestampLTZ(dt)
	}
	return nil, native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: %s is not a datetime", t)
}

// sqliteRowID maps a SQLite rowid onto the block and row fields.
func sqliteRowID(id int64) codec.RowID {
	return codec.RowID{Block: uint32(id >> 16), Row: uint16(id & 0xffff)}
}

func rowIDValue(r codec.RowID) int64 {
	return int64(r.Block)<<16 | int64(r.Row)
}

// argOf converts an IN bind buffer to a SQLite argument.
func argOf(buf *native.Buffer) (any, error) {
	if buf.Dir == native.DirOut || buf.IsNull() {
		return nil, nil
	}
	b := buf.Bytes()
	if len(b) == 0 && (buf.Type.IsText() || buf.Type == native.TypeRaw || buf.Type == native.TypeLongRaw) {
		return nil, nil
	}
	switch t := buf.Type; t {
	case native.TypeNumber:
		d, err := codec.DecodeNumber(b)
		if err != nil {
			return nil, err
		}
		return numberValue(d), nil
	case native.TypeInt:
		return codec.DecodeInt(b)
	case native.TypeBoolean:
		v, err := codec.DecodeInt(b)
		if err != nil {
			return nil, err
		}
		if v != 0 {
			return int64(1), nil
		}
		return int64(0), nil
	case native.TypeBinaryDouble:
		return codec.DecodeBinaryDouble(b)
	case native.TypeBinaryFloat:
		f, err := codec.DecodeBinaryFloat(b)
		return float64(f), err
	case native.TypeFloat:
		switch len(b) {
		case 4:
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
		case 8:
			return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
		}
		return nil, native.Errorf(native.CodeInconsistentTypes, "native float must be 4 or 8 bytes")
	case native.TypeDate, native.TypeTimestamp, native.TypeTimestampTZ, native.TypeTimestampLTZ:
		dt, err := decodeDateTime(t, b)
		if err != nil {
			return nil, err
		}
		if t == native.TypeTimestampLTZ {
			t = native.TypeTimestamp
		}
		return storedText(dt, t), nil
	case native.TypeIntervalYM:
		iv, err := codec.DecodeIntervalYM(b)
		if err != nil {
			return nil, err
		}
		return iv.String(), nil
	case native.TypeIntervalDS:
		iv, err := codec.DecodeIntervalDS(b)
		if err != nil {
			return nil, err
		}
		return iv.Format(2, 9), nil
	case native.TypeRowID:
		r, err := codec.DecodeRowID(b)
		if err != nil {
			return nil, err
		}
		return rowIDValue(r), nil
	case native.TypeRaw, native.TypeLongRaw, native.TypeBlob:
		return append([]byte(nil), b...), nil
	case native.TypeCursor:
		return nil, native.Errorf(native.CodeUnsupportedOperation, "unimplemented feature: REF CURSOR as input")
	}
	return codec.DecodeText(b)
}

// store writes a SQLite value into a define or OUT buffer, converting to
// the buffer's type.
func (st *statement) store(buf *native.Buffer, v any) error {
	if v == nil {
		buf.SetNull()
		return nil
	}
	if h, ok := v.(native.Handle); ok {
		buf.PutHandle(h)
		return nil
	}

	switch t := buf.Type; t {
	case native.TypeNumber:
		d, err := decimalOf(v)
		if err != nil {
			return err
		}
		b, err := codec.EncodeNumber(d)
		if err != nil {
			return native.Errorf(native.CodeNumericOverflow, "numeric overflow")
		}
		buf.Set(b)
	case native.TypeInt, native.TypeBoolean:
		d, err := decimalOf(v)
		if err != nil {
			return err
		}
		n, err := d.Int64()
		if err != nil {
			return native.Errorf(native.CodeNumericOverflow, "numeric overflow")
		}
		buf.Set(codec.EncodeInt(n))
	case native.TypeBinaryDouble:
		f, err := float64Of(v)
		if err != nil {
			return err
		}
		buf.Set(codec.EncodeBinaryDouble(f))
	case native.TypeBinaryFloat:
		f, err := float64Of(v)
		if err != nil {
			return err
		}
		buf.Set(codec.EncodeBinaryFloat(float32(f)))
	case native.TypeFloat:
		f, err := float64Of(v)
		if err != nil {
			return err
		}
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(f))
		buf.Set(tmp[:])
	case native.TypeDate, native.TypeTimestamp, native.TypeTimestampTZ, native.TypeTimestampLTZ:
		dt, zoned, err := dateTimeOf(v)
		if err != nil {
			return err
		}
		if t == native.TypeTimestampTZ && !zoned {
			dt = sessionZone(dt, st.sess.env.loc)
		}
		b, err := encodeDateTime(t, dt)
		if err != nil {
			return err
		}
		buf.Set(b)
	case native.TypeIntervalYM:
		s, ok := v.(string)
		if !ok {
			return native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: expected INTERVAL YEAR TO MONTH got %T", v)
		}
		iv, err := codec.ParseYearMonth(s)
		if err != nil {
			return native.Errorf(native.CodeInvalidInterval, "the interval is invalid")
		}
		b, err := codec.EncodeIntervalYM(iv)
		if err != nil {
			return err
		}
		buf.Set(b)
	case native.TypeIntervalDS:
		iv, err := daySecondOf(v)
		if err != nil {
			return err
		}
		b, err := codec.EncodeIntervalDS(iv)
		if err != nil {
			return native.Errorf(native.CodeIntervalPrecision, "the leading precision of the interval is too small")
		}
		buf.Set(b)
	case native.TypeRowID:
		var r codec.RowID
		switch x := v.(type) {
		case int64:
			r = sqliteRowID(x)
		case string:
			var err error
			if r, err = codec.ParseRowID(x); err != nil {
				return native.Errorf(native.CodeInvalidRowID, "invalid ROWID")
			}
		default:
			return native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: expected ROWID got %T", v)
		}
		b, err := codec.EncodeRowID(r)
		if err != nil {
			return err
		}
		buf.Set(b)
	case native.TypeRaw, native.TypeLongRaw:
		switch x := v.(type) {
		case []byte:
			return setVar(buf, x)
		case string:
			return setVar(buf, []byte(x))
		default:
			return native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: expected RAW got %T", v)
		}
	case native.TypeClob, native.TypeBlob:
		var data []byte
		if x, ok := v.([]byte); ok {
			data = append([]byte(nil), x...)
		} else {
			data = []byte(textOf(v))
		}
		h := st.c.put(kindLob, st.h, &lob{data: data, clob: t == native.TypeClob})
		buf.PutHandle(h)
	case native.TypeCursor:
		return native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: expected REF CURSOR got %T", v)
	default:
		s := textOf(v)
		if t == native.TypeRowIDChar {
			if id, ok := v.(int64); ok {
				s = sqliteRowID(id).String()
			}
		}
		if len(s) > st.c.cfg.MaxTextSize {
			return native.Errorf(native.CodeValueTruncated, "fetched column value was truncated")
		}
		if !utf8.ValidString(s) {
			return native.Errorf(native.CodeInconsistentTypes, "value is not valid UTF-8")
		}
		return setVar(buf, []byte(s))
	}
	return nil
}

// setVar stores a character or RAW value. The server has no empty
// strings: a zero-length value is NULL. OUT binds keep the capacity the
// caller bound them with; define buffers grow.
func setVar(buf *native.Buffer, p []byte) error {
	if len(p) == 0 {
		buf.SetNull()
		return nil
	}
	if buf.Dir != native.DirIn && len(p) > len(buf.Data) {
		return native.Errorf(native.CodeValueError,
			"PL/SQL: numeric or value error: character string buffer too small (%d bytes into %d)", len(p), len(buf.Data))
	}
	buf.Set(p)
	return nil
}

// daySecondOf reads an INTERVAL DAY TO SECOND from its text form or from a
// number of days, which is what SQLite date arithmetic produces.
func daySecondOf(v any) (codec.DaySecond, error) {
	switch x := v.(type) {
	case string:
		iv, err := codec.ParseDaySecond(x)
		if err != nil {
			return codec.DaySecond{}, native.Errorf(native.CodeInvalidInterval, "the interval is invalid")
		}
		return iv, nil
	case int64:
		return codec.DaySecondOf(x*86400, 0), nil
	case float64:
		secs := x * 86400
		whole := math.Trunc(secs)
		return codec.DaySecondOf(int64(whole), int64(math.Round((secs-whole)*1e9))), nil
	}
	return codec.DaySecond{}, native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: expected INTERVAL DAY TO SECOND got %T", v)
}
