package codec

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/oci-runtime/errors"
)

const (
	IntervalYMSize = 5
	IntervalDSSize = 11

	intervalBias32  = 0x80000000
	intervalBias8   = 60
	maxLeading      = 999999999
	secondsPerDay   = 86400
	nanosPerSecond  = 1_000_000_000
	monthsPerYear   = 12
	defaultLeadPrec = 2
	defaultFracPrec = 6
)

// YearMonth is an INTERVAL YEAR TO MONTH. Both fields carry the sign.
type YearMonth struct {
	Years  int
	Months int
}

// DaySecond is an INTERVAL DAY TO SECOND. All fields carry the sign.
type DaySecond struct {
	Days        int
	Hours       int
	Minutes     int
	Seconds     int
	Nanoseconds int
}

func sameSign(vals ...int) bool {
	pos, neg := false, false
	for _, v := range vals {
		if v > 0 {
			pos = true
		} else if v < 0 {
			neg = true
		}
	}
	return !(pos && neg)
}

// Validate checks component ranges and sign agreement.
func (iv YearMonth) Validate() error {
	if iv.Years < -maxLeading || iv.Years > maxLeading {
		return errors.OutOfRange(errors.PhaseEncode, "years", iv.Years, -maxLeading, maxLeading)
	}
	if iv.Months < -11 || iv.Months > 11 {
		return errors.OutOfRange(errors.PhaseEncode, "months", iv.Months, -11, 11)
	}
	if !sameSign(iv.Years, iv.Months) {
		return errors.InvalidData(errors.PhaseEncode, nil, "interval components have mixed signs")
	}
	return nil
}

// TotalMonths returns the interval as a signed month count.
func (iv YearMonth) TotalMonths() int {
	return iv.Years*monthsPerYear + iv.Months
}

// YearMonthOf splits a signed month count.
func YearMonthOf(months int) YearMonth {
	return YearMonth{Years: months / monthsPerYear, Months: months % monthsPerYear}
}

// Neg reports whether the interval is negative.
func (iv YearMonth) Neg() bool {
	return iv.Years < 0 || iv.Months < 0
}

// Format renders [+-]Y-MM with at least lfprec year digits.
func (iv YearMonth) Format(lfprec int) string {
	if lfprec <= 0 {
		lfprec = defaultLeadPrec
	}
	sign := '+'
	y, m := iv.Years, iv.Months
	if iv.Neg() {
		sign, y, m = '-', -y, -m
	}
	return fmt.Sprintf("%c%0*d-%02d", sign, lfprec, y, m)
}

func (iv YearMonth) String() string {
	return iv.Format(defaultLeadPrec)
}

// ParseYearMonth parses [+-]Y-M.
func ParseYearMonth(s string) (YearMonth, error) {
	src := s
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	ys, ms, ok := strings.Cut(s, "-")
	if !ok {
		return YearMonth{}, errors.InvalidFormat(errors.PhaseEncode, src, "interval must be Y-M")
	}
	y, err1 := strconv.Atoi(ys)
	m, err2 := strconv.Atoi(ms)
	if err1 != nil || err2 != nil || y < 0 || m < 0 {
		return YearMonth{}, errors.InvalidFormat(errors.PhaseEncode, src, "interval fields must be unsigned integers")
	}
	if neg {
		y, m = -y, -m
	}
	iv := YearMonth{Years: y, Months: m}
	return iv, iv.Validate()
}

// EncodeIntervalYM encodes iv in the 5-byte layout.
func EncodeIntervalYM(iv YearMonth) ([]byte, error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}
	b := make([]byte, IntervalYMSize)
	binary.BigEndian.PutUint32(b, uint32(int64(iv.Years)+intervalBias32))
	b[4] = byte(iv.Months + intervalBias8)
	return b, nil
}

// DecodeIntervalYM decodes a 5-byte INTERVAL YEAR TO MONTH.
func DecodeIntervalYM(b []byte) (YearMonth, error) {
	if len(b) != IntervalYMSize {
		return YearMonth{}, errors.InvalidData(errors.PhaseDecode, nil, "INTERVAL YEAR TO MONTH must be 5 bytes")
	}
	iv := YearMonth{
		Years:  int(int64(binary.BigEndian.Uint32(b)) - intervalBias32),
		Months: int(b[4]) - intervalBias8,
	}
	if err := iv.Validate(); err != nil {
		return YearMonth{}, decodeErr("INTERVAL YEAR TO MONTH", err)
	}
	return iv, nil
}

// Validate checks component ranges and sign agreement.
func (iv DaySecond) Validate() error {
	switch {
	case iv.Days < -maxLeading || iv.Days > maxLeading:
		return errors.OutOfRange(errors.PhaseEncode, "days", iv.Days, -maxLeading, maxLeading)
	case iv.Hours < -23 || iv.Hours > 23:
		return errors.OutOfRange(errors.PhaseEncode, "hours", iv.Hours, -23, 23)
	case iv.Minutes < -59 || iv.Minutes > 59:
		return errors.OutOfRange(errors.PhaseEncode, "minutes", iv.Minutes, -59, 59)
	case iv.Seconds < -59 || iv.Seconds > 59:
		return errors.OutOfRange(errors.PhaseEncode, "seconds", iv.Seconds, -59, 59)
	case iv.Nanoseconds < -999999999 || iv.Nanoseconds > 999999999:
		return errors.OutOfRange(errors.PhaseEncode, "nanoseconds", iv.Nanoseconds, -999999999, 999999999)
	}
	if !sameSign(iv.Days, iv.Hours, iv.Minutes, iv.Seconds, iv.Nanoseconds) {
		return errors.InvalidData(errors.PhaseEncode, nil, "interval components have mixed signs")
	}
	return nil
}

// Neg reports whether the interval is negative.
func (iv DaySecond) Neg() bool {
	return iv.Days < 0 || iv.Hours < 0 || iv.Minutes < 0 || iv.Seconds < 0 || iv.Nanoseconds < 0
}

// Split returns the interval as signed whole seconds plus signed
// nanoseconds with matching signs.
func (iv DaySecond) Split() (secs, nanos int64) {
	secs = int64(iv.Days)*secondsPerDay + int64(iv.Hours)*3600 + int64(iv.Minutes)*60 + int64(iv.Seconds)
	return secs, int64(iv.Nanoseconds)
}

// DaySecondOf normalises seconds plus nanoseconds into components.
func DaySecondOf(secs, nanos int64) DaySecond {
	secs += nanos / nanosPerSecond
	nanos %= nanosPerSecond
	if secs > 0 && nanos < 0 {
		secs--
		nanos += nanosPerSecond
	} else if secs < 0 && nanos > 0 {
		secs++
		nanos -= nanosPerSecond
	}
	return DaySecond{
		Days:        int(secs / secondsPerDay),
		Hours:       int(secs % secondsPerDay / 3600),
		Minutes:     int(secs % 3600 / 60),
		Seconds:     int(secs % 60),
		Nanoseconds: int(nanos),
	}
}

// Duration converts the interval. Intervals beyond about 292 years
// overflow.
func (iv DaySecond) Duration() (time.Duration, error) {
	secs, nanos := iv.Split()
	const limit = int64(1<<63-1) / nanosPerSecond
	if secs > limit-1 || secs < -limit+1 {
		return 0, errors.Overflow(errors.PhaseDecode, nil, iv.String(), "time.Duration")
	}
	return time.Duration(secs*nanosPerSecond + nanos), nil
}

// DaySecondFromDuration splits d into components.
func DaySecondFromDuration(d time.Duration) DaySecond {
	return DaySecondOf(int64(d/time.Second), int64(d%time.Second))
}

// Format renders [+-]D HH:MI:SS[.FFFFFF] with lfprec day digits and
// fsprec fractional digits.
func (iv DaySecond) Format(lfprec, fsprec int) string {
	if lfprec <= 0 {
		lfprec = defaultLeadPrec
	}
	if fsprec < 0 || fsprec > 9 {
		fsprec = defaultFracPrec
	}
	sign := '+'
	d, h, m, s, n := iv.Days, iv.Hours, iv.Minutes, iv.Seconds, iv.Nanoseconds
	if iv.Neg() {
		sign, d, h, m, s, n = '-', -d, -h, -m, -s, -n
	}
	out := fmt.Sprintf("%c%0*d %02d:%02d:%02d", sign, lfprec, d, h, m, s)
	if fsprec > 0 {
		frac := fmt.Sprintf("%09d", n)[:fsprec]
		out += "." + frac
	}
	return out
}

func (iv DaySecond) String() string {
	return iv.Format(defaultLeadPrec, defaultFracPrec)
}

// ParseDaySecond parses [+-]D HH:MI:SS[.F...].
func ParseDaySecond(s string) (DaySecond, error) {
	src := s
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	bad := func(detail string) (DaySecond, error) {
		return DaySecond{}, errors.InvalidFormat(errors.PhaseEncode, src, detail)
	}

	ds, rest, ok := strings.Cut(s, " ")
	if !ok {
		return bad("interval must be D HH:MI:SS")
	}
	parts := strings.Split(strings.TrimSpace(rest), ":")
	if len(parts) != 3 {
		return bad("interval time must be HH:MI:SS")
	}
	secPart, fracPart, _ := strings.Cut(parts[2], ".")

	nums := make([]int, 4)
	for i, p := range []string{ds, parts[0], parts[1], secPart} {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return bad("interval fields must be unsigned integers")
		}
		nums[i] = v
	}
	nanos := 0
	if fracPart != "" {
		if len(fracPart) > 9 {
			return bad("fractional seconds exceed 9 digits")
		}
		v, err := strconv.Atoi(fracPart + strings.Repeat("0", 9-len(fracPart)))
		if err != nil || v < 0 {
			return bad("invalid fractional seconds")
		}
		nanos = v
	}

	iv := DaySecond{Days: nums[0], Hours: nums[1], Minutes: nums[2], Seconds: nums[3], Nanoseconds: nanos}
	if neg {
		iv = DaySecond{Days: -iv.Days, Hours: -iv.Hours, Minutes: -iv.Minutes, Seconds: -iv.Seconds, Nanoseconds: -iv.Nanoseconds}
	}
	return iv, iv.Validate()
}

// EncodeIntervalDS encodes iv in the 11-byte layout.
func EncodeIntervalDS(iv DaySecond) ([]byte, error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}
	b := make([]byte, IntervalDSSize)
	binary.BigEndian.PutUint32(b[0:], uint32(int64(iv.Days)+intervalBias32))
	b[4] = byte(iv.Hours + intervalBias8)
	b[5] = byte(iv.Minutes + intervalBias8)
	b[6] = byte(iv.Seconds + intervalBias8)
	binary.BigEndian.PutUint32(b[7:], uint32(int64(iv.Nanoseconds)+intervalBias32))
	return b, nil
}

// DecodeIntervalDS decodes an 11-byte INTERVAL DAY TO SECOND.
func DecodeIntervalDS(b []byte) (DaySecond, error) {
	if len(b) != IntervalDSSize {
		return DaySecond{}, errors.InvalidData(errors.PhaseDecode, nil, "INTERVAL DAY TO SECOND must be 11 bytes")
	}
	iv := DaySecond{
		Days:        int(int64(binary.BigEndian.Uint32(b[0:])) - intervalBias32),
		Hours:       int(b[4]) - intervalBias8,
		Minutes:     int(b[5]) - intervalBias8,
		Seconds:     int(b[6]) - intervalBias8,
		Nanoseconds: int(int64(binary.BigEndian.Uint32(b[7:])) - intervalBias32),
	}
	if err := iv.Validate(); err != nil {
		return DaySecond{}, decodeErr("INTERVAL DAY TO SECOND", err)
	}
	return iv, nil
}
