package oci

import (
	"bytes"
	"time"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
)

// datetime is the shared body of the TIMESTAMP types.
type datetime struct {
	env *Environment
	t   native.TypeCode
	b   []byte
}

// components returns the zero DateTime for a value that does not decode.
func (d datetime) components() codec.DateTime {
	dt, err := d.decode()
	if err != nil {
		return codec.DateTime{}
	}
	return dt
}

// instant returns d as a time.Time. Zone-less values are read as UTC,
// LOCAL TIME ZONE values are returned in time.Local.
func (d datetime) instant() (time.Time, error) {
	if d.t == native.TypeTimestampLTZ {
		return codec.TimeOfLTZ(d.b, time.Local)
	}
	dt, err := d.decode()
	if err != nil {
		return time.Time{}, err
	}
	return dt.Time(time.UTC)
}

func (d datetime) decode() (codec.DateTime, error) {
	switch d.t {
	case native.TypeDate:
		return codec.DecodeDate(d.b)
	case native.TypeTimestampTZ:
		return codec.DecodeTimestampTZ(d.b)
	}
	return codec.DecodeTimestamp(d.b)
}

func (d datetime) sub(o datetime) (IntervalDS, error) {
	if err := d.env.check(errors.PhaseNative); err != nil {
		return IntervalDS{}, err
	}
	b, err := d.env.drv.DateTimeSubtract(d.env.nh, d.t, d.b, o.b)
	if err != nil {
		return IntervalDS{}, callError(errors.PhaseNative, "datetime subtract", err)
	}
	return IntervalDS{env: d.env, b: b}, nil
}

func (d datetime) add(iv Interval) (datetime, error) {
	if iv == nil {
		return datetime{}, errors.Usage(errors.PhaseNative, "nil interval")
	}
	if env := iv.environment(); env != nil && env != d.env {
		return datetime{}, errors.Usage(errors.PhaseNative, "interval belongs to another environment")
	}
	if err := d.env.check(errors.PhaseNative); err != nil {
		return datetime{}, err
	}
	b, err := d.env.drv.DateTimeAddInterval(d.env.nh, d.t, d.b, iv.Type(), iv.Bytes())
	if err != nil {
		return datetime{}, callError(errors.PhaseNative, "datetime add interval", err)
	}
	return datetime{env: d.env, t: d.t, b: b}, nil
}

func (d datetime) toString(model string, fsprec int) (string, error) {
	if err := d.env.check(errors.PhaseFormat); err != nil {
		return "", err
	}
	s, err := d.env.drv.DateTimeToText(d.env.nh, d.t, d.b, model, fsprec)
	if err != nil {
		return "", callError(errors.PhaseFormat, "datetime to text", err)
	}
	return s, nil
}

// compare orders by instant. A value that does not decode sorts before
// every valid one, and two such values order by their bytes, so only
// identical encodings compare equal.
func (d datetime) compare(o datetime) int {
	a, errA := d.instant()
	b, errB := o.instant()
	switch {
	case errA != nil && errB != nil:
		return bytes.Compare(d.b, o.b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return a.Compare(b)
}

func (d datetime) String() string {
	s, err := d.toString("", -1)
	if err != nil {
		return "<invalid " + d.t.String() + ">"
	}
	return s
}

// Date is a DATE: calendar date and time of day to the second, no zone.
type Date struct {
	env *Environment
	b   []byte
}

func (d Date) dt() datetime { return datetime{env: d.env, t: native.TypeDate, b: d.b} }

// Bytes returns the native encoding.
func (d Date) Bytes() []byte { return d.b }

func (d Date) Year() int   { return d.dt().components().Year }
func (d Date) Month() int  { return d.dt().components().Month }
func (d Date) Day() int    { return d.dt().components().Day }
func (d Date) Hour() int   { return d.dt().components().Hour }
func (d Date) Minute() int { return d.dt().components().Minute }
func (d Date) Second() int { return d.dt().components().Second }

// AddDays moves d by whole days.
func (d Date) AddDays(days int) (Date, error) {
	if err := d.env.check(errors.PhaseNative); err != nil {
		return Date{}, err
	}
	iv, err := codec.EncodeIntervalDS(codec.DaySecond{Days: days})
	if err != nil {
		return Date{}, err
	}
	r, err := d.dt().add(IntervalDS{env: d.env, b: iv})
	if err != nil {
		return Date{}, err
	}
	return Date{env: d.env, b: r.b}, nil
}

// AddMonths is ADD_MONTHS: the last day of a month maps to the last day
// of the target month, and days past its end clamp to it.
func (d Date) AddMonths(months int) (Date, error) {
	if err := d.env.check(errors.PhaseNative); err != nil {
		return Date{}, err
	}
	b, err := d.env.drv.DateAddMonths(d.env.nh, d.b, months)
	if err != nil {
		return Date{}, callError(errors.PhaseNative, "add months", err)
	}
	return Date{env: d.env, b: b}, nil
}

// LastDay returns the last day of d's month, keeping the time of day.
func (d Date) LastDay() (Date, error) {
	if err := d.env.check(errors.PhaseNative); err != nil {
		return Date{}, err
	}
	b, err := d.env.drv.DateLastDay(d.env.nh, d.b)
	if err != nil {
		return Date{}, callError(errors.PhaseNative, "last day", err)
	}
	return Date{env: d.env, b: b}, nil
}

// NextDay returns the first later date that falls on weekday, given as a
// full or three-letter English day name.
func (d Date) NextDay(weekday string) (Date, error) {
	if err := d.env.check(errors.PhaseNative); err != nil {
		return Date{}, err
	}
	b, err := d.env.drv.DateNextDay(d.env.nh, d.b, weekday)
	if err != nil {
		return Date{}, callError(errors.PhaseNative, "next day", err)
	}
	return Date{env: d.env, b: b}, nil
}

// MonthsBetween is MONTHS_BETWEEN(d, o).
func (d Date) MonthsBetween(o Date) (Number, error) {
	if err := d.env.check(errors.PhaseNative); err != nil {
		return Number{}, err
	}
	b, err := d.env.drv.DateMonthsBetween(d.env.nh, d.b, o.b)
	if err != nil {
		return Number{}, callError(errors.PhaseNative, "months between", err)
	}
	return Number{env: d.env, b: b}, nil
}

// Sub returns d - o.
func (d Date) Sub(o Date) (IntervalDS, error) { return d.dt().sub(o.dt()) }

// Add adds an interval of either subtype.
func (d Date) Add(iv Interval) (Date, error) {
	r, err := d.dt().add(iv)
	if err != nil {
		return Date{}, err
	}
	return Date{env: d.env, b: r.b}, nil
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int { return d.dt().compare(o.dt()) }

// ToString formats d. An empty model means DD-MON-RR.
func (d Date) ToString(model string) (string, error) { return d.dt().toString(model, 0) }

func (d Date) String() string { return d.dt().String() }

// Time returns d as a UTC time.
func (d Date) Time() (time.Time, error) { return d.dt().instant() }

// Timestamp is a TIMESTAMP: date and time to the nanosecond, no zone.
type Timestamp struct{ datetime }

func (t Timestamp) Bytes() []byte { return t.b }

// Components returns the calendar fields.
func (t Timestamp) Components() codec.DateTime { return t.components() }

func (t Timestamp) Sub(o Timestamp) (IntervalDS, error) { return t.sub(o.datetime) }

func (t Timestamp) Add(iv Interval) (Timestamp, error) {
	r, err := t.add(iv)
	return Timestamp{r}, err
}

// ToString formats t with fsprec fractional digits; negative fsprec
// means 6.
func (t Timestamp) ToString(model string, fsprec int) (string, error) {
	return t.toString(model, fsprec)
}

func (t Timestamp) Compare(o Timestamp) int { return t.compare(o.datetime) }

// Time returns t as a UTC time.
func (t Timestamp) Time() (time.Time, error) { return t.instant() }

// TimestampTZ is a TIMESTAMP WITH TIME ZONE. Comparison and subtraction
// use the instant; formatting uses the stored zone.
type TimestampTZ struct{ datetime }

func (t TimestampTZ) Bytes() []byte { return t.b }

// Components returns the fields in the value's own zone.
func (t TimestampTZ) Components() codec.DateTime { return t.components() }

func (t TimestampTZ) Sub(o TimestampTZ) (IntervalDS, error) { return t.sub(o.datetime) }

func (t TimestampTZ) Add(iv Interval) (TimestampTZ, error) {
	r, err := t.add(iv)
	return TimestampTZ{r}, err
}

func (t TimestampTZ) ToString(model string, fsprec int) (string, error) {
	return t.toString(model, fsprec)
}

func (t TimestampTZ) Compare(o TimestampTZ) int { return t.compare(o.datetime) }

// Time returns t in its own zone.
func (t TimestampTZ) Time() (time.Time, error) { return t.instant() }

// TimestampLTZ is a TIMESTAMP WITH LOCAL TIME ZONE: an instant rendered
// in the session time zone.
type TimestampLTZ struct{ datetime }

func (t TimestampLTZ) Bytes() []byte { return t.b }

func (t TimestampLTZ) Sub(o TimestampLTZ) (IntervalDS, error) { return t.sub(o.datetime) }

func (t TimestampLTZ) Add(iv Interval) (TimestampLTZ, error) {
	r, err := t.add(iv)
	return TimestampLTZ{r}, err
}

func (t TimestampLTZ) ToString(model string, fsprec int) (string, error) {
	return t.toString(model, fsprec)
}

func (t TimestampLTZ) Compare(o TimestampLTZ) int { return t.compare(o.datetime) }

// Time returns the instant in time.Local.
func (t TimestampLTZ) Time() (time.Time, error) { return t.instant() }
