package nls

import (
	"testing"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/native"
)

func dec(t *testing.T, s string) codec.Decimal {
	t.Helper()
	d, err := codec.ParseDecimal(s)
	if err != nil {
		t.Fatalf("ParseDecimal(%q): %v", s, err)
	}
	return d
}

func nativeCode(err error) int {
	if e, ok := native.AsError(err); ok {
		return e.Code
	}
	return 0
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value string
		model string
		want  string
	}{
		{"1234.5", "9,999.99", " 1,234.50"},
		{"-1234.5", "9G999D99", "-1,234.50"},
		{"12", "0999", " 0012"},
		{"1234", "99", "###"},
		{"-5", "S999", "  -5"},
		{"5", "S999", "  +5"},
		{"5", "999S", "  5+"},
		{"-5", "999MI", "  5-"},
		{"5", "999MI", "  5 "},
		{"-5", "999PR", "  <5>"},
		{"5", "$999", "   $5"},
		{"0.5", "9.99", "  .50"},
		{"0.005", "0.99", " 0.01"},
		{"0", "999", "   0"},
		{"0", "B999", "    "},
		{"2.5", "9", " 3"},
		{"-2.5", "9", "-3"},
		{"1.5", "FM9.99", "1.5"},
		{"1.5", "FM9.90", "1.50"},
		{"100", "FM999.99", "100."},
		{"-42", "FM999MI", "42-"},
		{"123456", "9.99EEEE", " 1.23E+05"},
		{"-0.000123", "9.9EEEE", "-1.2E-04"},
		{"9.999", "9.99EEEE", " 1.00E+01"},
		{"0", "9.99EEEE", " 0.00E+00"},
		{"255", "XX", " FF"},
		{"255", "xxxx", "   ff"},
		{"10", "0XXX", " 000A"},
		{"4096", "XX", "###"},
		{"1.234", "999V99", "   123"},
		{"0.5", "TM", ".5"},
		{"-0.5", "", "-.5"},
		{"42", "TM9", "42"},
		{"123.45", "TME", "1.2345E+02"},
	}

	for _, tt := range tests {
		t.Run(tt.value+"/"+tt.model, func(t *testing.T) {
			got, err := FormatNumber(dec(t, tt.value), tt.model)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("FormatNumber(%s, %q) = %q, want %q", tt.value, tt.model, got, tt.want)
			}
		})
	}
}

func TestFormatNumber_InvalidModel(t *testing.T) {
	for _, model := range []string{"9Z9", "99.9.9", ",999", "S999S", "9X", "99V9.9", "99EEEE"} {
		_, err := FormatNumber(dec(t, "1"), model)
		if nativeCode(err) != native.CodeInvalidNumberFormat {
			t.Errorf("FormatNumber(1, %q) = %v, want ORA-01481", model, err)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		text  string
		model string
		want  string
	}{
		{"1,234.50", "9,999.99", "1234.5"},
		{"  -42 ", "999", "-42"},
		{"42-", "99MI", "-42"},
		{"42+", "99S", "42"},
		{"<42>", "99PR", "-42"},
		{"$5", "$9", "5"},
		{".5", "9.9", "0.5"},
		{"FF", "XX", "255"},
		{"1.23E+05", "9.99EEEE", "123000"},
		{"12345", "999V99", "123.45"},
		{"6.62607004E-34", "", "0.000000000000000000000000000000000662607004"},
		{"-1e3", "TM", "-1000"},
	}

	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.model, func(t *testing.T) {
			got, err := ParseNumber(tt.text, tt.model)
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != tt.want {
				t.Fatalf("ParseNumber(%q, %q) = %s, want %s", tt.text, tt.model, got, tt.want)
			}
		})
	}
}

func TestParseNumber_Invalid(t *testing.T) {
	tests := []struct {
		text  string
		model string
	}{
		{"1234", "99"},
		{"1.234", "9.99"},
		{"abc", "999"},
		{"1.5", "99"},
		{"", "99"},
		{"12abc", ""},
		{"GG", "XX"},
	}
	for _, tt := range tests {
		_, err := ParseNumber(tt.text, tt.model)
		if nativeCode(err) != native.CodeInvalidNumber {
			t.Errorf("ParseNumber(%q, %q) = %v, want ORA-01722", tt.text, tt.model, err)
		}
	}
}

func TestNumber_FormatParseRoundTrip(t *testing.T) {
	for _, v := range []string{"0", "1", "-1", "12345.67", "-0.01", "99999.99"} {
		text, err := FormatNumber(dec(t, v), "S99,999.99")
		if err != nil {
			t.Fatal(err)
		}
		got, err := ParseNumber(text, "S99,999.99")
		if err != nil {
			t.Fatalf("ParseNumber(%q): %v", text, err)
		}
		if got.String() != dec(t, v).String() {
			t.Errorf("%s -> %q -> %s", v, text, got)
		}
	}
}
