package lite

import (
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/internal/nls"
	"github.com/wippyai/oci-runtime/native"
)

// NUMBER arithmetic carries 40 significant digits, rounding half away
// from zero like the server does.
var arith = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(codec.NumberMaxDigits)
	c.Rounding = apd.RoundHalfUp
	return c
}()

// rounding quantizes without losing integer digits.
var rounding = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(300)
	c.Rounding = apd.RoundHalfUp
	return c
}()

const piText = "3.14159265358979323846264338327950288419716939937510"

var nanosPerSecond = apd.New(1_000_000_000, 0)

func numberOf(b []byte) (*apd.Decimal, error) {
	d, err := codec.DecodeNumber(b)
	if err != nil {
		return nil, err
	}
	x, _, err := apd.NewFromString(d.Sci())
	if err != nil {
		return nil, native.Errorf(native.CodeInvalidNumber, "invalid number")
	}
	return x, nil
}

func numberBytes(x *apd.Decimal) ([]byte, error) {
	if x.Form != apd.Finite {
		return nil, native.Errorf(native.CodeNumericOverflow, "numeric overflow")
	}
	d, err := codec.ParseDecimal(x.Text('E'))
	if err != nil {
		return nil, native.Errorf(native.CodeInvalidNumber, "invalid number")
	}
	b, err := codec.EncodeNumber(d)
	if err != nil {
		return nil, native.Errorf(native.CodeNumericOverflow, "numeric overflow")
	}
	return b, nil
}

func arithError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "overflow") {
		return native.Errorf(native.CodeNumericOverflow, "numeric overflow")
	}
	return native.Errorf(native.CodeArgumentRange, "argument is out of range")
}

func outOfRange() error {
	return native.Errorf(native.CodeArgumentRange, "argument is out of range")
}

// NumberFromText parses text through a number format model.
func (c *Client) NumberFromText(envh native.Handle, text, model string) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	d, err := nls.ParseNumber(text, model)
	if err != nil {
		return nil, err
	}
	b, err := codec.EncodeNumber(d)
	if err != nil {
		return nil, native.Errorf(native.CodeNumericOverflow, "numeric overflow")
	}
	return b, nil
}

// NumberToText renders a NUMBER through a number format model.
func (c *Client) NumberToText(envh native.Handle, num []byte, model string) (string, error) {
	if _, err := c.env(envh); err != nil {
		return "", err
	}
	d, err := codec.DecodeNumber(num)
	if err != nil {
		return "", err
	}
	return nls.FormatNumber(d, model)
}

// NumberArith applies a binary operation.
func (c *Client) NumberArith(envh native.Handle, op native.NumberOp, a, b []byte) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	x, err := numberOf(a)
	if err != nil {
		return nil, err
	}
	y, err := numberOf(b)
	if err != nil {
		return nil, err
	}

	r := new(apd.Decimal)
	switch op {
	case native.NumberAdd:
		_, err = arith.Add(r, x, y)
	case native.NumberSub:
		_, err = arith.Sub(r, x, y)
	case native.NumberMul:
		_, err = arith.Mul(r, x, y)
	case native.NumberDiv:
		if y.IsZero() {
			return nil, native.Errorf(native.CodeDivisorZero, "divisor is equal to zero")
		}
		_, err = arith.Quo(r, x, y)
	case native.NumberMod:
		if y.IsZero() {
			return append([]byte(nil), a...), nil
		}
		_, err = arith.Rem(r, x, y)
	case native.NumberPow:
		if x.IsZero() && y.Negative {
			return nil, native.Errorf(native.CodeDivisorZero, "divisor is equal to zero")
		}
		if x.Negative && !isInteger(y) {
			return nil, outOfRange()
		}
		_, err = arith.Pow(r, x, y)
	default:
		return nil, native.Errorf(native.CodeUnsupportedOperation, "unimplemented feature: number operation %d", op)
	}
	if err != nil {
		return nil, arithError(err)
	}
	return numberBytes(r)
}

func isInteger(x *apd.Decimal) bool {
	i := new(apd.Decimal)
	if _, err := rounding.RoundToIntegralValue(i, x); err != nil {
		return false
	}
	return i.Cmp(x) == 0
}

// NumberUnary applies a unary function.
func (c *Client) NumberUnary(envh native.Handle, fn native.NumberFunc, a []byte) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	x, err := numberOf(a)
	if err != nil {
		return nil, err
	}

	r := new(apd.Decimal)
	switch fn {
	case native.NumberNeg:
		_, err = arith.Neg(r, x)
	case native.NumberAbs:
		_, err = arith.Abs(r, x)
	case native.NumberSqrt:
		if x.Negative && !x.IsZero() {
			return nil, outOfRange()
		}
		_, err = arith.Sqrt(r, x)
	case native.NumberLn, native.NumberLog10:
		if x.Sign() <= 0 {
			return nil, outOfRange()
		}
		if fn == native.NumberLn {
			_, err = arith.Ln(r, x)
		} else {
			_, err = arith.Log10(r, x)
		}
	case native.NumberExp:
		_, err = arith.Exp(r, x)
	case native.NumberFloor:
		_, err = arith.Floor(r, x)
	case native.NumberCeil:
		_, err = arith.Ceil(r, x)
	case native.NumberSin, native.NumberCos, native.NumberTan, native.NumberAtan:
		return trig(fn, x)
	default:
		return nil, native.Errorf(native.CodeUnsupportedOperation, "unimplemented feature: number function %d", fn)
	}
	if err != nil {
		return nil, arithError(err)
	}
	return numberBytes(r)
}

// trig evaluates trigonometric functions in binary floating point.
func trig(fn native.NumberFunc, x *apd.Decimal) ([]byte, error) {
	f, err := x.Float64()
	if err != nil {
		return nil, outOfRange()
	}
	var v float64
	switch fn {
	case native.NumberSin:
		v = math.Sin(f)
	case native.NumberCos:
		v = math.Cos(f)
	case native.NumberTan:
		v = math.Tan(f)
	default:
		v = math.Atan(f)
	}
	b, err := codec.NumberFromFloat64(v)
	if err != nil {
		return nil, outOfRange()
	}
	return b, nil
}

// NumberRound rounds half away from zero, or truncates, at digits places
// after the decimal point.
func (c *Client) NumberRound(envh native.Handle, a []byte, digits int, trunc bool) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	x, err := numberOf(a)
	if err != nil {
		return nil, err
	}
	ctx := *rounding
	if trunc {
		ctx.Rounding = apd.RoundDown
	}
	r := new(apd.Decimal)
	if _, err := ctx.Quantize(r, x, int32(-digits)); err != nil {
		return nil, arithError(err)
	}
	return numberBytes(r)
}

// NumberPi returns pi to full NUMBER precision.
func (c *Client) NumberPi(envh native.Handle) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	return codec.NumberFromString(piText)
}

func defaultModel(t native.TypeCode) string {
	switch t {
	case native.TypeDate:
		return nls.DateModel
	case native.TypeTimestampTZ:
		return nls.TimestampTZModel
	}
	return nls.TimestampModel
}

// DateTimeFromText parses text into a DATE or TIMESTAMP value. Zone-less
// input to the zoned types takes the session zone.
func (c *Client) DateTimeFromText(envh native.Handle, t native.TypeCode, text, model string) ([]byte, error) {
	env, err := c.env(envh)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultModel(t)
	}
	dt, zoned, err := nls.ParseDateTime(text, model, time.Now().In(env.loc))
	if err != nil {
		return nil, err
	}
	if !zoned && (t == native.TypeTimestampTZ || t == native.TypeTimestampLTZ) {
		dt = sessionZone(dt, env.loc)
	}
	return encodeDateTime(t, dt)
}

// DateTimeToText renders a DATE or TIMESTAMP value. LOCAL TIME ZONE values
// render in the session zone.
func (c *Client) DateTimeToText(envh native.Handle, t native.TypeCode, b []byte, model string, fsprec int) (string, error) {
	env, err := c.env(envh)
	if err != nil {
		return "", err
	}
	var dt codec.DateTime
	if t == native.TypeTimestampLTZ {
		tm, err := codec.TimeOfLTZ(b, env.loc)
		if err != nil {
			return "", err
		}
		dt = codec.DateTimeOf(tm)
	} else if dt, err = decodeDateTime(t, b); err != nil {
		return "", err
	}
	if model == "" {
		model = defaultModel(t)
	}
	return nls.FormatDateTime(dt, model, fsprec)
}

// DateTimeNow returns the current time in the session zone.
func (c *Client) DateTimeNow(envh native.Handle, t native.TypeCode) ([]byte, error) {
	env, err := c.env(envh)
	if err != nil {
		return nil, err
	}
	dt := codec.DateTimeOf(time.Now().In(env.loc))
	if _, ok := codec.RegionID(env.loc.String()); ok && env.loc != time.UTC {
		dt.Region = env.loc.String()
	}
	return encodeDateTime(t, dt)
}

// instant returns the encoded value as a point in time. DATE and
// TIMESTAMP carry no zone and are read as UTC.
func instant(t native.TypeCode, b []byte) (time.Time, codec.DateTime, error) {
	dt, err := decodeDateTime(t, b)
	if err != nil {
		return time.Time{}, dt, err
	}
	tm, err := dt.Time(time.UTC)
	return tm, dt, err
}

// DateTimeSubtract returns a - b as an INTERVAL DAY TO SECOND.
func (c *Client) DateTimeSubtract(envh native.Handle, t native.TypeCode, a, b []byte) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	ta, _, err := instant(t, a)
	if err != nil {
		return nil, err
	}
	tb, _, err := instant(t, b)
	if err != nil {
		return nil, err
	}
	iv := codec.DaySecondOf(ta.Unix()-tb.Unix(), int64(ta.Nanosecond()-tb.Nanosecond()))
	return codec.EncodeIntervalDS(iv)
}

// addMonths moves dt by months, returning the new year and month.
func addMonths(dt codec.DateTime, months int) (int, int, error) {
	t0, err := dt.WithoutZone().Time(time.UTC)
	if err != nil {
		return 0, 0, err
	}
	base := codec.DateTimeOf(time.Date(t0.Year(), t0.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC))
	return base.Year, base.Month, nil
}

// DateTimeAddInterval adds an interval of either subtype.
func (c *Client) DateTimeAddInterval(envh native.Handle, t native.TypeCode, b []byte, it native.TypeCode, iv []byte) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	tm, dt, err := instant(t, b)
	if err != nil {
		return nil, err
	}

	switch it {
	case native.TypeIntervalYM:
		ym, err := codec.DecodeIntervalYM(iv)
		if err != nil {
			return nil, err
		}
		y, m, err := addMonths(dt, ym.TotalMonths())
		if err != nil {
			return nil, err
		}
		if dt.Day > codec.DaysIn(y, m) {
			return nil, native.Errorf(native.CodeDayOfMonth, "date not valid for month specified")
		}
		dt.Year, dt.Month = y, m
	case native.TypeIntervalDS:
		ds, err := codec.DecodeIntervalDS(iv)
		if err != nil {
			return nil, err
		}
		secs, nanos := ds.Split()
		moved := time.Unix(tm.Unix()+secs, int64(tm.Nanosecond())+nanos).In(tm.Location())
		region := dt.Region
		dt = codec.DateTimeOf(moved)
		dt.Region = region
	default:
		return nil, native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: %s is not an interval", it)
	}
	return encodeDateTime(t, dt)
}

// DateAddMonths is ADD_MONTHS: a last day of month stays the last day,
// and days past the end of the target month clamp to it.
func (c *Client) DateAddMonths(envh native.Handle, b []byte, months int) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	dt, err := codec.DecodeDate(b)
	if err != nil {
		return nil, err
	}
	y, m, err := addMonths(dt, months)
	if err != nil {
		return nil, err
	}
	last := codec.DaysIn(y, m)
	if dt.Day == codec.DaysIn(dt.Year, dt.Month) || dt.Day > last {
		dt.Day = last
	}
	dt.Year, dt.Month = y, m
	return codec.EncodeDate(dt)
}

// DateLastDay returns the last day of the month of d.
func (c *Client) DateLastDay(envh native.Handle, b []byte) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	dt, err := codec.DecodeDate(b)
	if err != nil {
		return nil, err
	}
	dt.Day = codec.DaysIn(dt.Year, dt.Month)
	return codec.EncodeDate(dt)
}

func weekdayOf(name string) (time.Weekday, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToUpper(wd.String())
		if name == full || name == full[:3] {
			return wd, true
		}
	}
	return 0, false
}

// DateNextDay returns the first later date falling on weekday.
func (c *Client) DateNextDay(envh native.Handle, b []byte, weekday string) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	wd, ok := weekdayOf(weekday)
	if !ok {
		return nil, native.Errorf(native.CodeInvalidWeekday, "not a valid day of the week")
	}
	dt, err := codec.DecodeDate(b)
	if err != nil {
		return nil, err
	}
	tm, err := dt.Time(time.UTC)
	if err != nil {
		return nil, err
	}
	for i := 1; i <= 7; i++ {
		if next := tm.AddDate(0, 0, i); next.Weekday() == wd {
			return codec.EncodeDate(codec.DateTimeOf(next))
		}
	}
	return nil, native.Errorf(native.CodeInvalidWeekday, "not a valid day of the week")
}

// DateMonthsBetween is MONTHS_BETWEEN: whole months when the days of month
// match or both are month ends, otherwise the remainder over a 31-day
// month.
func (c *Client) DateMonthsBetween(envh native.Handle, a, b []byte) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	ta, da, err := instant(native.TypeDate, a)
	if err != nil {
		return nil, err
	}
	tb, db, err := instant(native.TypeDate, b)
	if err != nil {
		return nil, err
	}
	months := int64((ta.Year()-tb.Year())*12 + int(ta.Month()) - int(tb.Month()))
	r := apd.New(months, 0)

	lastA := da.Day == codec.DaysIn(da.Year, da.Month)
	lastB := db.Day == codec.DaysIn(db.Year, db.Month)
	if da.Day != db.Day && !(lastA && lastB) {
		secsA := int64(da.Day*86400 + da.Hour*3600 + da.Minute*60 + da.Second)
		secsB := int64(db.Day*86400 + db.Hour*3600 + db.Minute*60 + db.Second)
		frac := new(apd.Decimal)
		if _, err := arith.Quo(frac, apd.New(secsA-secsB, 0), apd.New(31*86400, 0)); err != nil {
			return nil, arithError(err)
		}
		if _, err := arith.Add(r, r, frac); err != nil {
			return nil, arithError(err)
		}
	}
	return numberBytes(r)
}

// IntervalFromText parses interval text of type t.
func (c *Client) IntervalFromText(envh native.Handle, t native.TypeCode, text string) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	invalid := native.Errorf(native.CodeInvalidInterval, "the interval is invalid")
	switch t {
	case native.TypeIntervalYM:
		iv, err := codec.ParseYearMonth(text)
		if err != nil {
			return nil, invalid
		}
		return codec.EncodeIntervalYM(iv)
	case native.TypeIntervalDS:
		iv, err := codec.ParseDaySecond(text)
		if err != nil {
			return nil, invalid
		}
		return codec.EncodeIntervalDS(iv)
	}
	return nil, native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: %s is not an interval", t)
}

// IntervalToText renders an interval with lfprec leading and fsprec
// fractional digits.
func (c *Client) IntervalToText(envh native.Handle, t native.TypeCode, b []byte, lfprec, fsprec int) (string, error) {
	if _, err := c.env(envh); err != nil {
		return "", err
	}
	switch t {
	case native.TypeIntervalYM:
		iv, err := codec.DecodeIntervalYM(b)
		if err != nil {
			return "", err
		}
		return iv.Format(lfprec), nil
	case native.TypeIntervalDS:
		iv, err := codec.DecodeIntervalDS(b)
		if err != nil {
			return "", err
		}
		return iv.Format(lfprec, fsprec), nil
	}
	return "", native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: %s is not an interval", t)
}

// IntervalArith adds or subtracts two intervals of type t, or multiplies
// or divides an interval by a NUMBER.
func (c *Client) IntervalArith(envh native.Handle, t native.TypeCode, op native.NumberOp, a, b []byte) ([]byte, error) {
	if _, err := c.env(envh); err != nil {
		return nil, err
	}
	switch t {
	case native.TypeIntervalYM:
		x, err := codec.DecodeIntervalYM(a)
		if err != nil {
			return nil, err
		}
		var total int64
		switch op {
		case native.NumberAdd, native.NumberSub:
			y, err := codec.DecodeIntervalYM(b)
			if err != nil {
				return nil, err
			}
			total = int64(x.TotalMonths())
			if op == native.NumberAdd {
				total += int64(y.TotalMonths())
			} else {
				total -= int64(y.TotalMonths())
			}
		case native.NumberMul, native.NumberDiv:
			if total, err = scaleInterval(op, apd.New(int64(x.TotalMonths()), 0), b); err != nil {
				return nil, err
			}
		default:
			return nil, native.Errorf(native.CodeUnsupportedOperation, "unimplemented feature: interval operation %d", op)
		}
		out, err := codec.EncodeIntervalYM(codec.YearMonthOf(int(total)))
		if err != nil {
			return nil, native.Errorf(native.CodeIntervalPrecision, "the leading precision of the interval is too small")
		}
		return out, nil

	case native.TypeIntervalDS:
		x, err := codec.DecodeIntervalDS(a)
		if err != nil {
			return nil, err
		}
		xs, xn := x.Split()
		var iv codec.DaySecond
		switch op {
		case native.NumberAdd, native.NumberSub:
			y, err := codec.DecodeIntervalDS(b)
			if err != nil {
				return nil, err
			}
			ys, yn := y.Split()
			if op == native.NumberSub {
				ys, yn = -ys, -yn
			}
			iv = codec.DaySecondOf(xs+ys, xn+yn)
		case native.NumberMul, native.NumberDiv:
			nanos := new(apd.Decimal)
			if _, err := arith.Mul(nanos, apd.New(xs, 0), nanosPerSecond); err != nil {
				return nil, arithError(err)
			}
			if _, err := arith.Add(nanos, nanos, apd.New(xn, 0)); err != nil {
				return nil, arithError(err)
			}
			total, err := scaleInterval(op, nanos, b)
			if err != nil {
				return nil, err
			}
			iv = codec.DaySecondOf(total/1_000_000_000, total%1_000_000_000)
		default:
			return nil, native.Errorf(native.CodeUnsupportedOperation, "unimplemented feature: interval operation %d", op)
		}
		out, err := codec.EncodeIntervalDS(iv)
		if err != nil {
			return nil, native.Errorf(native.CodeIntervalPrecision, "the leading precision of the interval is too small")
		}
		return out, nil
	}
	return nil, native.Errorf(native.CodeInconsistentTypes, "inconsistent datatypes: %s is not an interval", t)
}

// scaleInterval multiplies or divides a count of units by a NUMBER and
// rounds to whole units.
func scaleInterval(op native.NumberOp, units *apd.Decimal, factor []byte) (int64, error) {
	f, err := numberOf(factor)
	if err != nil {
		return 0, err
	}
	r := new(apd.Decimal)
	if op == native.NumberMul {
		_, err = arith.Mul(r, units, f)
	} else {
		if f.IsZero() {
			return 0, native.Errorf(native.CodeDivisorZero, "divisor is equal to zero")
		}
		_, err = arith.Quo(r, units, f)
	}
	if err != nil {
		return 0, arithError(err)
	}
	if _, err := rounding.Quantize(r, r, 0); err != nil {
		return 0, arithError(err)
	}
	n, err := r.Int64()
	if err != nil {
		return 0, native.Errorf(native.CodeIntervalPrecision, "the leading precision of the interval is too small")
	}
	return n, nil
}
