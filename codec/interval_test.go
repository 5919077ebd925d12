package codec

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/wippyai/oci-runtime/errors"
)

func TestParseDaySecond(t *testing.T) {
	tests := []struct {
		in     string
		want   DaySecond
		format string
	}{
		{"+5 10:00:00.5", DaySecond{Days: 5, Hours: 10, Nanoseconds: 500000000}, "+05 10:00:00.500000"},
		{"0 00:00:01", DaySecond{Seconds: 1}, "+00 00:00:01.000000"},
		{"-1 02:03:04.000000007", DaySecond{Days: -1, Hours: -2, Minutes: -3, Seconds: -4, Nanoseconds: -7}, "-01 02:03:04.000000"},
		{"123 23:59:59", DaySecond{Days: 123, Hours: 23, Minutes: 59, Seconds: 59}, "+123 23:59:59.000000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDaySecond(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("ParseDaySecond = %+v, want %+v", got, tt.want)
			}
			if s := got.Format(2, 6); s != tt.format {
				t.Fatalf("Format = %q, want %q", s, tt.format)
			}
		})
	}
}

func TestParseDaySecond_Invalid(t *testing.T) {
	for _, s := range []string{"", "5", "5 10:00", "x 10:00:00", "5 10:00:00.1234567890"} {
		if _, err := ParseDaySecond(s); !errors.IsKind(err, errors.KindInvalidFormat) {
			t.Errorf("ParseDaySecond(%q) = %v, want invalid format", s, err)
		}
	}
	if _, err := ParseDaySecond("1 24:00:00"); !errors.IsKind(err, errors.KindOutOfRange) {
		t.Errorf("hour 24: got %v, want out of range", err)
	}
}

func TestDaySecond_Format(t *testing.T) {
	iv := DaySecond{Days: 3, Hours: 4, Minutes: 5, Seconds: 6, Nanoseconds: 120000000}
	if s := iv.Format(4, 2); s != "+0003 04:05:06.12" {
		t.Fatalf("Format(4, 2) = %q", s)
	}
	if s := iv.Format(1, 0); s != "+3 04:05:06" {
		t.Fatalf("Format(1, 0) = %q", s)
	}
}

func TestDaySecond_Duration(t *testing.T) {
	iv := DaySecondFromDuration(-90 * time.Minute)
	if iv.Hours != -1 || iv.Minutes != -30 || iv.Days != 0 {
		t.Fatalf("DaySecondFromDuration(-90m) = %+v", iv)
	}
	if s := iv.String(); s != "-00 01:30:00.000000" {
		t.Fatalf("String = %q", s)
	}
	d, err := iv.Duration()
	if err != nil || d != -90*time.Minute {
		t.Fatalf("Duration = %v, %v", d, err)
	}

	if _, err := (DaySecond{Days: 200000}).Duration(); !errors.IsKind(err, errors.KindOverflow) {
		t.Fatalf("200000 days: got %v, want overflow", err)
	}
}

func TestDaySecondOf_Normalises(t *testing.T) {
	iv := DaySecondOf(1, -1)
	if iv.Seconds != 0 || iv.Nanoseconds != 999999999 {
		t.Fatalf("DaySecondOf(1, -1) = %+v", iv)
	}
	iv = DaySecondOf(90061, 2_500_000_000)
	want := DaySecond{Days: 1, Hours: 1, Minutes: 1, Seconds: 3, Nanoseconds: 500000000}
	if iv != want {
		t.Fatalf("DaySecondOf = %+v, want %+v", iv, want)
	}
}

func TestIntervalDS_RoundTrip(t *testing.T) {
	for _, iv := range []DaySecond{
		{},
		{Days: 5, Hours: 10, Nanoseconds: 500000000},
		{Days: -999999999, Hours: -23, Minutes: -59, Seconds: -59, Nanoseconds: -999999999},
	} {
		b, err := EncodeIntervalDS(iv)
		if err != nil {
			t.Fatal(err)
		}
		if len(b) != IntervalDSSize {
			t.Fatalf("len = %d", len(b))
		}
		got, err := DecodeIntervalDS(b)
		if err != nil || got != iv {
			t.Fatalf("round trip %+v = %+v, %v", iv, got, err)
		}
	}

	_, err := EncodeIntervalDS(DaySecond{Days: 1, Hours: -1})
	if !errors.IsKind(err, errors.KindInvalidData) {
		t.Fatalf("mixed signs: got %v", err)
	}
}

func TestYearMonth(t *testing.T) {
	iv, err := ParseYearMonth("-1-6")
	if err != nil {
		t.Fatal(err)
	}
	if iv.Years != -1 || iv.Months != -6 || iv.TotalMonths() != -18 {
		t.Fatalf("ParseYearMonth = %+v", iv)
	}
	if s := iv.String(); s != "-01-06" {
		t.Fatalf("String = %q", s)
	}
	if YearMonthOf(-18) != iv {
		t.Fatalf("YearMonthOf(-18) = %+v", YearMonthOf(-18))
	}

	b, err := EncodeIntervalYM(iv)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0x7F || b[4] != 54 {
		t.Fatalf("EncodeIntervalYM = % X", b)
	}
	got, err := DecodeIntervalYM(b)
	if err != nil || got != iv {
		t.Fatalf("round trip = %+v, %v", got, err)
	}

	if _, err := ParseYearMonth("1-12"); !errors.IsKind(err, errors.KindOutOfRange) {
		t.Fatalf("12 months: got %v", err)
	}
	if _, err := ParseYearMonth("1"); !errors.IsKind(err, errors.KindInvalidFormat) {
		t.Fatalf("missing month: got %v", err)
	}
	if err := (YearMonth{Years: 1, Months: -1}).Validate(); !errors.IsKind(err, errors.KindInvalidData) {
		t.Fatalf("mixed signs: got %v", err)
	}
}

func TestDecodeInterval_Corrupt(t *testing.T) {
	if _, err := DecodeIntervalYM([]byte{0x80, 0, 0, 0, 200}); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindOutOfRange}) {
		t.Fatalf("months byte 200: got %v", err)
	}
	if _, err := DecodeIntervalDS(make([]byte, 3)); !errors.IsKind(err, errors.KindInvalidData) {
		t.Fatalf("short interval: got %v", err)
	}
}
