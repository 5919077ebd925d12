package codec

import (
	"bytes"
	"math"
	"testing"

	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
)

func TestBinaryDouble_OrderAndRoundTrip(t *testing.T) {
	ordered := []float64{math.Inf(-1), -1e300, -1, -0.5, 0, 0.5, 1, 1e300, math.Inf(1)}
	var prev []byte
	for i, f := range ordered {
		b := EncodeBinaryDouble(f)
		got, err := DecodeBinaryDouble(b)
		if err != nil || got != f {
			t.Fatalf("round trip %v = %v, %v", f, got, err)
		}
		if i > 0 && bytes.Compare(prev, b) >= 0 {
			t.Errorf("%v should sort before %v", ordered[i-1], f)
		}
		prev = b
	}
	if _, err := DecodeBinaryDouble([]byte{1}); !errors.IsKind(err, errors.KindInvalidData) {
		t.Fatalf("short BINARY_DOUBLE: got %v", err)
	}
}

func TestBinaryFloat_RoundTrip(t *testing.T) {
	for _, f := range []float32{-3.5, 0, 1.25, math.MaxFloat32} {
		got, err := DecodeBinaryFloat(EncodeBinaryFloat(f))
		if err != nil || got != f {
			t.Fatalf("round trip %v = %v, %v", f, got, err)
		}
	}
	if bytes.Compare(EncodeBinaryFloat(-1), EncodeBinaryFloat(1)) >= 0 {
		t.Fatal("-1 should sort before 1")
	}
}

func TestDecodeInt(t *testing.T) {
	tests := []struct {
		in   []byte
		want int64
	}{
		{[]byte{0xFF}, -1},
		{[]byte{0x34, 0x12}, 0x1234},
		{[]byte{0xFE, 0xFF, 0xFF, 0xFF}, -2},
		{EncodeInt(math.MinInt64), math.MinInt64},
	}
	for _, tt := range tests {
		got, err := DecodeInt(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("DecodeInt(% X) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}
	if _, err := DecodeInt([]byte{1, 2, 3}); !errors.IsKind(err, errors.KindInvalidData) {
		t.Errorf("3-byte int: got %v", err)
	}
}

func TestText(t *testing.T) {
	b, err := EncodeText("héllo")
	if err != nil || string(b) != "héllo" {
		t.Fatalf("EncodeText = %q, %v", b, err)
	}
	if _, err := EncodeText("\xff"); !errors.IsKind(err, errors.KindInvalidUTF8) {
		t.Fatalf("EncodeText invalid: got %v", err)
	}
	if _, err := DecodeText([]byte{0xC3}); !errors.IsKind(err, errors.KindInvalidUTF8) {
		t.Fatalf("DecodeText truncated rune: got %v", err)
	}
}

func TestCoerce(t *testing.T) {
	if v, ok := CoerceToInt64(float64(3)); !ok || v != 3 {
		t.Errorf("CoerceToInt64(3.0) = %d, %v", v, ok)
	}
	if _, ok := CoerceToInt64(1.5); ok {
		t.Error("CoerceToInt64(1.5) should fail")
	}
	if _, ok := CoerceToInt64(uint64(math.MaxUint64)); ok {
		t.Error("CoerceToInt64(MaxUint64) should fail")
	}
	if _, ok := CoerceToUint64(int8(-1)); ok {
		t.Error("CoerceToUint64(-1) should fail")
	}
	if !IsInteger(uint8(1)) || IsInteger(1.0) {
		t.Error("IsInteger")
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		t        native.TypeCode
		declared int
		want     int
	}{
		{native.TypeNumber, 0, NumberSize},
		{native.TypeDate, 0, DateSize},
		{native.TypeTimestampTZ, 0, TimestampTZSize},
		{native.TypeCursor, 0, native.HandleSize},
		{native.TypeString, 10, 40},
		{native.TypeString, 0, MaxTextSize},
		{native.TypeString, 10000, MaxTextSize},
		{native.TypeRaw, 16, 16},
	}
	for _, tt := range tests {
		if got := Size(tt.t, tt.declared); got != tt.want {
			t.Errorf("Size(%v, %d) = %d, want %d", tt.t, tt.declared, got, tt.want)
		}
	}
	if !Fixed(native.TypeDate) || Fixed(native.TypeString) {
		t.Error("Fixed")
	}
}
