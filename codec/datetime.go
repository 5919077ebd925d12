package codec

import (
	"encoding/binary"
	stderrors "errors"
	"time"

	"github.com/wippyai/oci-runtime/errors"
)

const (
	DateSize         = 7
	TimestampSize    = 11
	TimestampTZSize  = 13
	TimestampLTZSize = 11

	MinYear = -4712
	MaxYear = 9999

	tzHourBias   = 20
	tzMinuteBias = 60
	tzRegionFlag = 0x80
)

// DateTime holds calendar components of DATE and TIMESTAMP values.
// Year is never zero; negative years are BC (year -1 is 1 BC).
type DateTime struct {
	// Region is the zone region name for values that carry one.
	Region     string
	Year       int
	Month      int
	Day        int
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
	// Offset is the zone offset in minutes east of UTC.
	Offset int
}

// IsLeapYear reports whether year (BC years negative) is a leap year in
// the proleptic Gregorian calendar.
func IsLeapYear(year int) bool {
	y := astronomical(year)
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// DaysIn returns the number of days in month of year.
func DaysIn(year, month int) int {
	switch month {
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	}
	return 31
}

func astronomical(year int) int {
	if year < 0 {
		return year + 1
	}
	return year
}

func fromAstronomical(year int) int {
	if year <= 0 {
		return year - 1
	}
	return year
}

// Validate checks every component against its range.
func (d DateTime) Validate() error {
	if d.Year < MinYear || d.Year > MaxYear || d.Year == 0 {
		return errors.OutOfRange(errors.PhaseEncode, "year", d.Year, MinYear, MaxYear)
	}
	if d.Month < 1 || d.Month > 12 {
		return errors.OutOfRange(errors.PhaseEncode, "month", d.Month, 1, 12)
	}
	if dim := DaysIn(d.Year, d.Month); d.Day < 1 || d.Day > dim {
		return errors.OutOfRange(errors.PhaseEncode, "day", d.Day, 1, int64(dim))
	}
	if d.Hour < 0 || d.Hour > 23 {
		return errors.OutOfRange(errors.PhaseEncode, "hour", d.Hour, 0, 23)
	}
	if d.Minute < 0 || d.Minute > 59 {
		return errors.OutOfRange(errors.PhaseEncode, "minute", d.Minute, 0, 59)
	}
	if d.Second < 0 || d.Second > 59 {
		return errors.OutOfRange(errors.PhaseEncode, "second", d.Second, 0, 59)
	}
	if d.Nanosecond < 0 || d.Nanosecond > 999999999 {
		return errors.OutOfRange(errors.PhaseEncode, "nanosecond", d.Nanosecond, 0, 999999999)
	}
	if d.Offset < -12*60-59 || d.Offset > 14*60 {
		return errors.OutOfRange(errors.PhaseEncode, "offset", d.Offset, -12*60-59, 14*60)
	}
	return nil
}

// Location returns the zone of d: its region, its fixed offset, or def
// when it carries neither.
func (d DateTime) Location(def *time.Location) (*time.Location, error) {
	if d.Region != "" {
		return LoadRegion(d.Region)
	}
	if d.Offset != 0 {
		return time.FixedZone("", d.Offset*60), nil
	}
	if def == nil {
		return time.UTC, nil
	}
	return def, nil
}

// Time converts d to a time.Time in its own zone, or in def when d has
// no zone.
func (d DateTime) Time(def *time.Location) (time.Time, error) {
	loc, err := d.Location(def)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(astronomical(d.Year), time.Month(d.Month), d.Day,
		d.Hour, d.Minute, d.Second, d.Nanosecond, loc), nil
}

// DateTimeOf splits t into components, keeping its offset.
func DateTimeOf(t time.Time) DateTime {
	_, off := t.Zone()
	return DateTime{
		Year:       fromAstronomical(t.Year()),
		Month:      int(t.Month()),
		Day:        t.Day(),
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		Nanosecond: t.Nanosecond(),
		Offset:     off / 60,
	}
}

// WithoutZone returns d with zone information cleared.
func (d DateTime) WithoutZone() DateTime {
	d.Offset = 0
	d.Region = ""
	return d
}

func putDate(b []byte, d DateTime) {
	b[0] = byte(100 + d.Year/100)
	b[1] = byte(100 + d.Year%100)
	b[2] = byte(d.Month)
	b[3] = byte(d.Day)
	b[4] = byte(d.Hour + 1)
	b[5] = byte(d.Minute + 1)
	b[6] = byte(d.Second + 1)
}

func getDate(b []byte) DateTime {
	return DateTime{
		Year:   (int(b[0])-100)*100 + (int(b[1]) - 100),
		Month:  int(b[2]),
		Day:    int(b[3]),
		Hour:   int(b[4]) - 1,
		Minute: int(b[5]) - 1,
		Second: int(b[6]) - 1,
	}
}

func decodeErr(what string, err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return errors.New(errors.PhaseDecode, e.Kind).
			Path(e.Path...).
			Value(e.Value).
			Detail("corrupt %s: %s", what, e.Detail).
			Build()
	}
	return err
}

// EncodeDate encodes the date and time-of-day components of d in the
// 7-byte DATE layout. Fractional seconds and zone are dropped.
func EncodeDate(d DateTime) ([]byte, error) {
	d = d.WithoutZone()
	d.Nanosecond = 0
	if err := d.Validate(); err != nil {
		return nil, err
	}
	b := make([]byte, DateSize)
	putDate(b, d)
	return b, nil
}

// DecodeDate decodes a 7-byte DATE.
func DecodeDate(b []byte) (DateTime, error) {
	if len(b) != DateSize {
		return DateTime{}, errors.InvalidData(errors.PhaseDecode, nil, "DATE must be 7 bytes")
	}
	d := getDate(b)
	if err := d.Validate(); err != nil {
		return DateTime{}, decodeErr("DATE", err)
	}
	return d, nil
}

// EncodeTimestamp encodes d in the 11-byte TIMESTAMP layout; zone is
// dropped.
func EncodeTimestamp(d DateTime) ([]byte, error) {
	d = d.WithoutZone()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	b := make([]byte, TimestampSize)
	putDate(b, d)
	binary.BigEndian.PutUint32(b[7:], uint32(d.Nanosecond))
	return b, nil
}

// DecodeTimestamp decodes an 11-byte TIMESTAMP. A 7-byte value is
// accepted as a timestamp without fractional seconds.
func DecodeTimestamp(b []byte) (DateTime, error) {
	if len(b) != TimestampSize && len(b) != DateSize {
		return DateTime{}, errors.InvalidData(errors.PhaseDecode, nil, "TIMESTAMP must be 7 or 11 bytes")
	}
	d := getDate(b)
	if len(b) == TimestampSize {
		d.Nanosecond = int(binary.BigEndian.Uint32(b[7:]))
	}
	if err := d.Validate(); err != nil {
		return DateTime{}, decodeErr("TIMESTAMP", err)
	}
	return d, nil
}

// EncodeTimestampTZ stores d normalised to UTC followed by its zone:
// either hour+20 and minute+60, or the region flag with a region id.
func EncodeTimestampTZ(d DateTime) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var zone [2]byte
	if d.Region != "" {
		id, ok := RegionID(d.Region)
		if !ok {
			return nil, errors.New(errors.PhaseEncode, errors.KindUnsupported).
				Value(d.Region).
				Detail("time zone region %q is not in the region table", d.Region).
				Build()
		}
		zone[0] = tzRegionFlag | byte(id>>6)
		zone[1] = byte(id&0x3f) << 2
	} else {
		zone[0] = byte(d.Offset/60 + tzHourBias)
		zone[1] = byte(d.Offset%60 + tzMinuteBias)
	}

	t, err := d.Time(time.UTC)
	if err != nil {
		return nil, err
	}
	utc := DateTimeOf(t.UTC())
	if err := utc.Validate(); err != nil {
		return nil, err
	}

	b := make([]byte, TimestampTZSize)
	putDate(b, utc)
	binary.BigEndian.PutUint32(b[7:], uint32(utc.Nanosecond))
	b[11], b[12] = zone[0], zone[1]
	return b, nil
}

// DecodeTimestampTZ decodes a 13-byte TIMESTAMP WITH TIME ZONE into local
// components of its own zone.
func DecodeTimestampTZ(b []byte) (DateTime, error) {
	if len(b) != TimestampTZSize {
		return DateTime{}, errors.InvalidData(errors.PhaseDecode, nil, "TIMESTAMP WITH TIME ZONE must be 13 bytes")
	}
	utc := getDate(b)
	utc.Nanosecond = int(binary.BigEndian.Uint32(b[7:11]))
	if err := utc.Validate(); err != nil {
		return DateTime{}, decodeErr("TIMESTAMP WITH TIME ZONE", err)
	}

	var loc *time.Location
	region := ""
	if b[11]&tzRegionFlag != 0 {
		id := int(b[11]&^tzRegionFlag)<<6 | int(b[12]>>2)
		name, ok := RegionName(id)
		if !ok {
			return DateTime{}, errors.InvalidData(errors.PhaseDecode, nil, "unknown time zone region id")
		}
		l, err := LoadRegion(name)
		if err != nil {
			return DateTime{}, err
		}
		loc, region = l, name
	} else {
		h := int(b[11]) - tzHourBias
		m := int(b[12]) - tzMinuteBias
		loc = time.FixedZone("", (h*60+m)*60)
	}

	t, err := utc.Time(time.UTC)
	if err != nil {
		return DateTime{}, err
	}
	local := DateTimeOf(t.In(loc))
	local.Region = region
	return local, nil
}

// EncodeTimestampLTZ normalises d to UTC and stores it without zone.
func EncodeTimestampLTZ(d DateTime) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	t, err := d.Time(time.UTC)
	if err != nil {
		return nil, err
	}
	return EncodeTimestamp(DateTimeOf(t.UTC()))
}

// DecodeTimestampLTZ decodes the UTC instant of a TIMESTAMP WITH LOCAL
// TIME ZONE.
func DecodeTimestampLTZ(b []byte) (DateTime, error) {
	return DecodeTimestamp(b)
}

// TimeOfLTZ returns the instant of an encoded TIMESTAMP WITH LOCAL TIME
// ZONE rendered in loc.
func TimeOfLTZ(b []byte, loc *time.Location) (time.Time, error) {
	d, err := DecodeTimestampLTZ(b)
	if err != nil {
		return time.Time{}, err
	}
	t, err := d.Time(time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc), nil
}
