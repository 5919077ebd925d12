package lite

import (
	"strings"
	"testing"
	"time"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/native"
)

func newEnv(t *testing.T, opts ...Option) (*Client, native.Handle) {
	t.Helper()
	c := New(opts...)
	env, err := c.EnvCreate(native.ModeDefault)
	if err != nil {
		t.Fatal(err)
	}
	return c, env
}

func number(t *testing.T, s string) []byte {
	t.Helper()
	b, err := codec.NumberFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func numberText(t *testing.T, b []byte) string {
	t.Helper()
	s, err := codec.NumberToString(b)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func date(t *testing.T, y, m, d int) []byte {
	t.Helper()
	b, err := codec.EncodeDate(codec.DateTime{Year: y, Month: m, Day: d})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func dateText(t *testing.T, b []byte) string {
	t.Helper()
	dt, err := codec.DecodeDate(b)
	if err != nil {
		t.Fatal(err)
	}
	return storedText(dt, native.TypeDate)
}

func TestNumberArith(t *testing.T) {
	c, env := newEnv(t)
	tests := []struct {
		op   native.NumberOp
		a, b string
		want string
	}{
		{native.NumberAdd, "1.1", "2.2", "3.3"},
		{native.NumberSub, "1", "1.000001", "-0.000001"},
		{native.NumberMul, "-12.5", "4", "-50"},
		{native.NumberDiv, "1", "3", "0." + strings.Repeat("3", 40)},
		{native.NumberMod, "-7", "3", "-1"},
		{native.NumberMod, "7", "-3", "1"},
		{native.NumberMod, "5", "0", "5"},
		{native.NumberPow, "2", "10", "1024"},
		{native.NumberPow, "-2", "3", "-8"},
	}
	for _, tt := range tests {
		got, err := c.NumberArith(env, tt.op, number(t, tt.a), number(t, tt.b))
		if err != nil {
			t.Fatalf("op %d(%s, %s): %v", tt.op, tt.a, tt.b, err)
		}
		if s := numberText(t, got); s != tt.want {
			t.Errorf("op %d(%s, %s) = %s, want %s", tt.op, tt.a, tt.b, s, tt.want)
		}
	}
}

func TestNumberArith_Errors(t *testing.T) {
	c, env := newEnv(t)
	tests := []struct {
		op   native.NumberOp
		a, b string
		code int
	}{
		{native.NumberDiv, "1", "0", native.CodeDivisorZero},
		{native.NumberPow, "-8", "0.5", native.CodeArgumentRange},
		{native.NumberPow, "0", "-1", native.CodeDivisorZero},
		{native.NumberMul, "9e100", "9e100", native.CodeNumericOverflow},
	}
	for _, tt := range tests {
		_, err := c.NumberArith(env, tt.op, number(t, tt.a), number(t, tt.b))
		if codeOf(err) != tt.code {
			t.Errorf("op %d(%s, %s): err = %v, want code %d", tt.op, tt.a, tt.b, err, tt.code)
		}
	}
	if _, err := c.NumberArith(env+100, native.NumberAdd, number(t, "1"), number(t, "1")); codeOf(err) != native.CodeInvalidHandle {
		t.Fatalf("bad environment: %v", err)
	}
}

func TestNumberUnary(t *testing.T) {
	c, env := newEnv(t)
	tests := []struct {
		fn   native.NumberFunc
		in   string
		want string
	}{
		{native.NumberNeg, "3", "-3"},
		{native.NumberAbs, "-3.5", "3.5"},
		{native.NumberSqrt, "16", "4"},
		{native.NumberFloor, "-1.5", "-2"},
		{native.NumberCeil, "1.2", "2"},
		{native.NumberSin, "0", "0"},
		{native.NumberAtan, "0", "0"},
	}
	for _, tt := range tests {
		got, err := c.NumberUnary(env, tt.fn, number(t, tt.in))
		if err != nil {
			t.Fatalf("fn %d(%s): %v", tt.fn, tt.in, err)
		}
		if s := numberText(t, got); s != tt.want {
			t.Errorf("fn %d(%s) = %s, want %s", tt.fn, tt.in, s, tt.want)
		}
	}

	for _, tt := range []struct {
		fn native.NumberFunc
		in string
	}{
		{native.NumberSqrt, "-1"},
		{native.NumberLn, "0"},
		{native.NumberLog10, "-5"},
	} {
		if _, err := c.NumberUnary(env, tt.fn, number(t, tt.in)); codeOf(err) != native.CodeArgumentRange {
			t.Errorf("fn %d(%s): err = %v, want ORA-01428", tt.fn, tt.in, err)
		}
	}
}

func TestNumberRound(t *testing.T) {
	c, env := newEnv(t)
	tests := []struct {
		in     string
		digits int
		trunc  bool
		want   string
	}{
		{"2.5", 0, false, "3"},
		{"-2.5", 0, false, "-3"},
		{"2.59", 1, true, "2.5"},
		{"-2.59", 1, true, "-2.5"},
		{"1234.5", -2, false, "1200"},
		{"0.000123456", 5, false, "0.00012"},
	}
	for _, tt := range tests {
		got, err := c.NumberRound(env, number(t, tt.in), tt.digits, tt.trunc)
		if err != nil {
			t.Fatalf("round(%s, %d): %v", tt.in, tt.digits, err)
		}
		if s := numberText(t, got); s != tt.want {
			t.Errorf("round(%s, %d, %v) = %s, want %s", tt.in, tt.digits, tt.trunc, s, tt.want)
		}
	}
}

func TestNumberPi(t *testing.T) {
	c, env := newEnv(t)
	pi, err := c.NumberPi(env)
	if err != nil {
		t.Fatal(err)
	}
	if s := numberText(t, pi); s != "3.1415926535897932384626433832795028842" {
		t.Fatalf("pi = %s", s)
	}
}

func TestNumberText(t *testing.T) {
	c, env := newEnv(t)
	b, err := c.NumberFromText(env, "1,234.50", "9,999.99")
	if err != nil {
		t.Fatal(err)
	}
	if s := numberText(t, b); s != "1234.5" {
		t.Fatalf("NumberFromText = %s", s)
	}
	s, err := c.NumberToText(env, b, "FM9999.00")
	if err != nil {
		t.Fatal(err)
	}
	if s != "1234.50" {
		t.Fatalf("NumberToText = %q", s)
	}
}

func TestDateTimeText(t *testing.T) {
	c, env := newEnv(t)
	b, err := c.DateTimeFromText(env, native.TypeDate, "15-JAN-2024 13:45", "DD-MON-YYYY HH24:MI")
	if err != nil {
		t.Fatal(err)
	}
	s, err := c.DateTimeToText(env, native.TypeDate, b, "YYYY-MM-DD HH24:MI:SS", 0)
	if err != nil {
		t.Fatal(err)
	}
	if s != "2024-01-15 13:45:00" {
		t.Fatalf("DateTimeToText = %q", s)
	}

	if _, err := c.DateTimeFromText(env, native.TypeDate, "2024-13-01", "YYYY-MM-DD"); codeOf(err) != native.CodeInvalidMonth {
		t.Fatalf("bad month: %v", err)
	}
}

func TestDateTimeText_LocalTimeZone(t *testing.T) {
	c, env := newEnv(t, WithTimeZone(time.FixedZone("UTC+2", 2*3600)))
	b, err := c.DateTimeFromText(env, native.TypeTimestampLTZ, "2024-06-01 10:00", "YYYY-MM-DD HH24:MI")
	if err != nil {
		t.Fatal(err)
	}
	utc, err := codec.DecodeTimestampLTZ(b)
	if err != nil {
		t.Fatal(err)
	}
	if utc.Hour != 8 {
		t.Fatalf("stored hour = %d, want 8 UTC", utc.Hour)
	}
	s, err := c.DateTimeToText(env, native.TypeTimestampLTZ, b, "YYYY-MM-DD HH24:MI", 0)
	if err != nil {
		t.Fatal(err)
	}
	if s != "2024-06-01 10:00" {
		t.Fatalf("DateTimeToText = %q", s)
	}
}

func TestDateTimeNow(t *testing.T) {
	c, env := newEnv(t)
	b, err := c.DateTimeNow(env, native.TypeDate)
	if err != nil {
		t.Fatal(err)
	}
	dt, err := codec.DecodeDate(b)
	if err != nil {
		t.Fatal(err)
	}
	if dt.Year < 2024 || dt.Nanosecond != 0 {
		t.Fatalf("DateTimeNow = %+v", dt)
	}
}

func TestDateArithmetic(t *testing.T) {
	c, env := newEnv(t)
	tests := []struct {
		name string
		call func() ([]byte, error)
		want string
	}{
		{"add months clamps", func() ([]byte, error) { return c.DateAddMonths(env, date(t, 2024, 1, 31), 1) }, "2024-02-29 00:00:00"},
		{"add months keeps month end", func() ([]byte, error) { return c.DateAddMonths(env, date(t, 2024, 2, 29), 1) }, "2024-03-31 00:00:00"},
		{"subtract months", func() ([]byte, error) { return c.DateAddMonths(env, date(t, 2024, 1, 15), -2) }, "2023-11-15 00:00:00"},
		{"last day", func() ([]byte, error) { return c.DateLastDay(env, date(t, 2023, 2, 10)) }, "2023-02-28 00:00:00"},
		{"next friday", func() ([]byte, error) { return c.DateNextDay(env, date(t, 2024, 1, 15), "FRIDAY") }, "2024-01-19 00:00:00"},
		{"next monday skips today", func() ([]byte, error) { return c.DateNextDay(env, date(t, 2024, 1, 15), "mon") }, "2024-01-22 00:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.call()
			if err != nil {
				t.Fatal(err)
			}
			if s := dateText(t, b); s != tt.want {
				t.Fatalf("got %s, want %s", s, tt.want)
			}
		})
	}

	if _, err := c.DateNextDay(env, date(t, 2024, 1, 15), "FUNDAY"); codeOf(err) != native.CodeInvalidWeekday {
		t.Fatalf("bad weekday: %v", err)
	}
}

func TestDateMonthsBetween(t *testing.T) {
	c, env := newEnv(t)
	tests := []struct {
		a, b []byte
		want string
	}{
		{date(t, 2024, 3, 15), date(t, 2024, 1, 15), "2"},
		{date(t, 2024, 3, 31), date(t, 2024, 2, 29), "1"},
		{date(t, 2024, 1, 15), date(t, 2024, 3, 15), "-2"},
		{date(t, 2024, 2, 15), date(t, 2024, 1, 1), "1.451612903225806451"},
	}
	for _, tt := range tests {
		got, err := c.DateMonthsBetween(env, tt.a, tt.b)
		if err != nil {
			t.Fatal(err)
		}
		if s := numberText(t, got); !strings.HasPrefix(s, tt.want) {
			t.Errorf("MonthsBetween(%s, %s) = %s, want %s", dateText(t, tt.a), dateText(t, tt.b), s, tt.want)
		}
	}
}

func TestDateTimeSubtract(t *testing.T) {
	c, env := newEnv(t)
	a, _ := codec.EncodeTimestamp(codec.DateTime{Year: 2024, Month: 1, Day: 2, Hour: 12, Nanosecond: 500000000})
	b, _ := codec.EncodeTimestamp(codec.DateTime{Year: 2024, Month: 1, Day: 1})

	got, err := c.DateTimeSubtract(env, native.TypeTimestamp, a, b)
	if err != nil {
		t.Fatal(err)
	}
	iv, err := codec.DecodeIntervalDS(got)
	if err != nil {
		t.Fatal(err)
	}
	if want := (codec.DaySecond{Days: 1, Hours: 12, Nanoseconds: 500000000}); iv != want {
		t.Fatalf("a - b = %+v, want %+v", iv, want)
	}

	got, err = c.DateTimeSubtract(env, native.TypeTimestamp, b, a)
	if err != nil {
		t.Fatal(err)
	}
	iv, _ = codec.DecodeIntervalDS(got)
	if want := (codec.DaySecond{Days: -1, Hours: -12, Nanoseconds: -500000000}); iv != want {
		t.Fatalf("b - a = %+v, want %+v", iv, want)
	}
}

func TestDateTimeAddInterval(t *testing.T) {
	c, env := newEnv(t)
	month, _ := codec.EncodeIntervalYM(codec.YearMonthOf(1))
	if _, err := c.DateTimeAddInterval(env, native.TypeDate, date(t, 2024, 1, 31), native.TypeIntervalYM, month); codeOf(err) != native.CodeDayOfMonth {
		t.Fatalf("Jan 31 + 1 month: %v", err)
	}

	got, err := c.DateTimeAddInterval(env, native.TypeDate, date(t, 2023, 12, 15), native.TypeIntervalYM, month)
	if err != nil {
		t.Fatal(err)
	}
	if s := dateText(t, got); s != "2024-01-15 00:00:00" {
		t.Fatalf("Dec 15 + 1 month = %s", s)
	}

	day, _ := codec.EncodeIntervalDS(codec.DaySecond{Days: 1, Hours: 6})
	got, err = c.DateTimeAddInterval(env, native.TypeDate, date(t, 2024, 2, 28), native.TypeIntervalDS, day)
	if err != nil {
		t.Fatal(err)
	}
	if s := dateText(t, got); s != "2024-02-29 06:00:00" {
		t.Fatalf("Feb 28 + 1 06:00 = %s", s)
	}

	if _, err := c.DateTimeAddInterval(env, native.TypeDate, date(t, 2024, 2, 28), native.TypeNumber, day); codeOf(err) != native.CodeInconsistentTypes {
		t.Fatalf("non-interval: %v", err)
	}
}

func TestIntervals(t *testing.T) {
	c, env := newEnv(t)

	ym, err := c.IntervalFromText(env, native.TypeIntervalYM, "+01-06")
	if err != nil {
		t.Fatal(err)
	}
	other, _ := c.IntervalFromText(env, native.TypeIntervalYM, "0-7")
	sum, err := c.IntervalArith(env, native.TypeIntervalYM, native.NumberAdd, ym, other)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := c.IntervalToText(env, native.TypeIntervalYM, sum, 2, 0); s != "+02-01" {
		t.Fatalf("1-06 + 0-07 = %s", s)
	}
	diff, err := c.IntervalArith(env, native.TypeIntervalYM, native.NumberSub, other, ym)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := c.IntervalToText(env, native.TypeIntervalYM, diff, 2, 0); s != "-00-11" {
		t.Fatalf("0-07 - 1-06 = %s", s)
	}

	ds, err := c.IntervalFromText(env, native.TypeIntervalDS, "1 12:00:00")
	if err != nil {
		t.Fatal(err)
	}
	twice, err := c.IntervalArith(env, native.TypeIntervalDS, native.NumberMul, ds, number(t, "2"))
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := c.IntervalToText(env, native.TypeIntervalDS, twice, 2, 0); s != "+03 00:00:00" {
		t.Fatalf("1 12:00:00 * 2 = %s", s)
	}
	third, err := c.IntervalArith(env, native.TypeIntervalDS, native.NumberDiv, ds, number(t, "3"))
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := c.IntervalToText(env, native.TypeIntervalDS, third, 2, 0); s != "+00 12:00:00" {
		t.Fatalf("1 12:00:00 / 3 = %s", s)
	}
	if _, err := c.IntervalArith(env, native.TypeIntervalDS, native.NumberDiv, ds, number(t, "0")); codeOf(err) != native.CodeDivisorZero {
		t.Fatalf("divide by zero: %v", err)
	}

	if _, err := c.IntervalFromText(env, native.TypeIntervalDS, "soon"); codeOf(err) != native.CodeInvalidInterval {
		t.Fatalf("bad text: %v", err)
	}
}
