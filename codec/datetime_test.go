package codec

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"testing"
	"time"

	"github.com/wippyai/oci-runtime/errors"
)

func TestEncodeDate_Layout(t *testing.T) {
	b, err := EncodeDate(DateTime{Year: 2024, Month: 2, Day: 29, Hour: 13, Minute: 5, Second: 9})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{120, 124, 2, 29, 14, 6, 10}
	if !bytes.Equal(b, want) {
		t.Fatalf("EncodeDate = %v, want %v", b, want)
	}

	d, err := DecodeDate(b)
	if err != nil {
		t.Fatal(err)
	}
	if d.Year != 2024 || d.Month != 2 || d.Day != 29 || d.Hour != 13 || d.Minute != 5 || d.Second != 9 {
		t.Fatalf("DecodeDate = %+v", d)
	}
}

func TestEncodeDate_BC(t *testing.T) {
	b, err := EncodeDate(DateTime{Year: -4712, Month: 1, Day: 1})
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 53 || b[1] != 88 {
		t.Fatalf("century/year bytes = %d %d, want 53 88", b[0], b[1])
	}
	d, err := DecodeDate(b)
	if err != nil || d.Year != -4712 {
		t.Fatalf("DecodeDate = %+v, %v", d, err)
	}
}

func TestEncodeDate_Validation(t *testing.T) {
	tests := []struct {
		name string
		d    DateTime
		path string
	}{
		{"year zero", DateTime{Year: 0, Month: 1, Day: 1}, "year"},
		{"year too large", DateTime{Year: 10000, Month: 1, Day: 1}, "year"},
		{"month 13", DateTime{Year: 2024, Month: 13, Day: 1}, "month"},
		{"feb 29 non leap", DateTime{Year: 2023, Month: 2, Day: 29}, "day"},
		{"feb 29 1900", DateTime{Year: 1900, Month: 2, Day: 29}, "day"},
		{"april 31", DateTime{Year: 2024, Month: 4, Day: 31}, "day"},
		{"hour 24", DateTime{Year: 2024, Month: 1, Day: 1, Hour: 24}, "hour"},
		{"minute 60", DateTime{Year: 2024, Month: 1, Day: 1, Minute: 60}, "minute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeDate(tt.d)
			if !errors.IsKind(err, errors.KindOutOfRange) {
				t.Fatalf("got %v, want out of range", err)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) || len(e.Path) == 0 || e.Path[0] != tt.path {
				t.Fatalf("path = %v, want %s", e.Path, tt.path)
			}
		})
	}

	if _, err := EncodeDate(DateTime{Year: 2000, Month: 2, Day: 29}); err != nil {
		t.Fatalf("2000-02-29 is valid: %v", err)
	}
}

func TestDecodeDate_Corrupt(t *testing.T) {
	_, err := DecodeDate([]byte{120, 124, 1, 1, 25, 1, 1})
	if !errors.IsKind(err, errors.KindOutOfRange) {
		t.Fatalf("hour 24 byte: got %v", err)
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindOutOfRange}) {
		t.Fatalf("corrupt DATE should fail in decode phase: %v", err)
	}
	if _, err := DecodeDate([]byte{1, 2, 3}); !errors.IsKind(err, errors.KindInvalidData) {
		t.Fatalf("short DATE: got %v", err)
	}
}

func TestTimestamp_RoundTrip(t *testing.T) {
	in := DateTime{Year: 2024, Month: 1, Day: 15, Hour: 10, Minute: 30, Second: 45, Nanosecond: 123456789}
	b, err := EncodeTimestamp(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != TimestampSize {
		t.Fatalf("len = %d", len(b))
	}
	if ns := binary.BigEndian.Uint32(b[7:]); ns != 123456789 {
		t.Fatalf("nanos = %d", ns)
	}
	out, err := DecodeTimestamp(b)
	if err != nil || out != in {
		t.Fatalf("round trip = %+v, %v", out, err)
	}

	out, err = DecodeTimestamp(b[:DateSize])
	if err != nil || out.Nanosecond != 0 || out.Second != 45 {
		t.Fatalf("7-byte timestamp = %+v, %v", out, err)
	}
}

func TestTimestampTZ_Offset(t *testing.T) {
	in := DateTime{Year: 2024, Month: 1, Day: 15, Hour: 10, Offset: 5*60 + 30}
	b, err := EncodeTimestampTZ(in)
	if err != nil {
		t.Fatal(err)
	}
	if b[4] != 4+1 || b[5] != 30+1 {
		t.Fatalf("stored UTC time = %d:%d, want 4:30", b[4]-1, b[5]-1)
	}
	if b[11] != 25 || b[12] != 90 {
		t.Fatalf("zone bytes = %d %d, want 25 90", b[11], b[12])
	}

	out, err := DecodeTimestampTZ(b)
	if err != nil {
		t.Fatal(err)
	}
	if out.Hour != 10 || out.Minute != 0 || out.Offset != 330 {
		t.Fatalf("decoded = %+v", out)
	}
}

func TestTimestampTZ_NegativeOffset(t *testing.T) {
	in := DateTime{Year: 2024, Month: 3, Day: 1, Hour: 1, Offset: -(3*60 + 30)}
	b, err := EncodeTimestampTZ(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeTimestampTZ(b)
	if err != nil {
		t.Fatal(err)
	}
	if out.Day != 1 || out.Hour != 1 || out.Offset != -210 {
		t.Fatalf("decoded = %+v", out)
	}
}

func TestTimestampTZ_Region(t *testing.T) {
	in := DateTime{Year: 2024, Month: 7, Day: 1, Hour: 12, Region: "Europe/Paris"}
	b, err := EncodeTimestampTZ(in)
	if err != nil {
		t.Fatal(err)
	}
	if b[11]&tzRegionFlag == 0 {
		t.Fatal("region flag not set")
	}
	if b[4]-1 != 10 {
		t.Fatalf("UTC hour = %d, want 10", b[4]-1)
	}

	out, err := DecodeTimestampTZ(b)
	if err != nil {
		t.Fatal(err)
	}
	if out.Region != "Europe/Paris" || out.Hour != 12 || out.Offset != 120 {
		t.Fatalf("decoded = %+v", out)
	}

	_, err = EncodeTimestampTZ(DateTime{Year: 2024, Month: 1, Day: 1, Region: "Mars/Olympus"})
	if !errors.IsKind(err, errors.KindUnsupported) {
		t.Fatalf("unknown region: got %v", err)
	}
}

func TestTimestampLTZ_NormalisesToUTC(t *testing.T) {
	b, err := EncodeTimestampLTZ(DateTime{Year: 2024, Month: 1, Day: 15, Hour: 10, Offset: 120})
	if err != nil {
		t.Fatal(err)
	}
	d, err := DecodeTimestampLTZ(b)
	if err != nil || d.Hour != 8 {
		t.Fatalf("decoded = %+v, %v", d, err)
	}

	tm, err := TimeOfLTZ(b, time.FixedZone("", 3600))
	if err != nil || tm.Hour() != 9 {
		t.Fatalf("TimeOfLTZ = %v, %v", tm, err)
	}
}

func TestDateTimeOf_BC(t *testing.T) {
	tm := time.Date(0, 6, 1, 0, 0, 0, 0, time.UTC)
	d := DateTimeOf(tm)
	if d.Year != -1 {
		t.Fatalf("astronomical year 0 = %d, want -1", d.Year)
	}
	back, err := d.Time(time.UTC)
	if err != nil || !back.Equal(tm) {
		t.Fatalf("Time = %v, %v", back, err)
	}
}

func TestRegions(t *testing.T) {
	for i, name := range Regions {
		id, ok := RegionID(name)
		if !ok || id != i+1 {
			t.Errorf("RegionID(%s) = %d, %v", name, id, ok)
		}
		if _, err := LoadRegion(name); err != nil {
			t.Errorf("LoadRegion(%s): %v", name, err)
		}
	}
	if id, ok := RegionID("europe/paris"); !ok || Regions[id-1] != "Europe/Paris" {
		t.Error("region lookup should ignore case")
	}
}
