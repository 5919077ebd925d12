package codec

import (
	"testing"

	"github.com/wippyai/oci-runtime/errors"
)

func TestParseRowID(t *testing.T) {
	r, err := ParseRowID("AAAR3sAAEAAAACXAAA")
	if err != nil {
		t.Fatal(err)
	}
	want := RowID{Object: 73196, File: 4, Block: 151, Row: 0}
	if r != want {
		t.Fatalf("ParseRowID = %+v, want %+v", r, want)
	}
	if s := r.String(); s != "AAAR3sAAEAAAACXAAA" {
		t.Fatalf("String = %s", s)
	}
}

func TestRowID_RoundTrip(t *testing.T) {
	for _, r := range []RowID{
		{},
		{Object: 73196, File: 4, Block: 151, Row: 7},
		{Object: 0xffffffff, File: maxRowIDFile, Block: maxRowIDBlock, Row: 0xffff},
	} {
		b, err := EncodeRowID(r)
		if err != nil {
			t.Fatal(err)
		}
		got, err := DecodeRowID(b)
		if err != nil || got != r {
			t.Fatalf("binary round trip %+v = %+v, %v", r, got, err)
		}
		back, err := ParseRowID(r.String())
		if err != nil || back != r {
			t.Fatalf("text round trip %+v = %+v, %v", r, back, err)
		}
	}
}

func TestRowID_Invalid(t *testing.T) {
	for _, s := range []string{"", "AAAR3sAAEAAAACX", "AAAR3sAAEAAAACX!AA", "AAAAAAP//AAAAAAAAA"} {
		if _, err := ParseRowID(s); !errors.IsKind(err, errors.KindInvalidFormat) {
			t.Errorf("ParseRowID(%q) = %v, want invalid format", s, err)
		}
	}
	if _, err := EncodeRowID(RowID{File: maxRowIDFile + 1}); !errors.IsKind(err, errors.KindOutOfRange) {
		t.Errorf("file overflow: got %v", err)
	}
	if _, err := DecodeRowID([]byte{1, 2}); !errors.IsKind(err, errors.KindInvalidData) {
		t.Errorf("short ROWID: got %v", err)
	}
}
