package codec

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/oci-runtime/errors"
)

// NUMBER layout: one exponent byte followed by up to 20 base-100 mantissa
// digits. Positive: exponent 192+E, digit d stored as d+1. Negative:
// exponent 63-E, digit stored as 101-d, terminated by 102 when shorter
// than 20 digits. Zero is the single byte 0x80. The value is
// 0.m1m2...mn × 100^E.
const (
	NumberSize       = 22
	numberMaxPairs   = 20
	numberMaxExp     = 63
	numberMinExp     = -64
	numberZero       = 0x80
	numberNegTerm    = 102
	numberPosBase    = 192
	numberNegBase    = 63
	NumberMaxDigits  = 40
	numberTypeName   = "NUMBER"
	decimalExpLimit  = 1 << 20
	maxInt64Digits   = 19
	maxUint64Digits  = 20
	float64ExpFormat = 'e'
)

// Decimal is an exact decimal value 0.Digits × 10^Exp, negated when Neg.
// Digits holds ASCII digits without leading or trailing zeros; zero has
// no digits.
type Decimal struct {
	Digits []byte
	Exp    int
	Neg    bool
}

// IsZero reports whether d is zero.
func (d Decimal) IsZero() bool {
	return len(d.Digits) == 0
}

// IsInt reports whether d has no fractional part.
func (d Decimal) IsInt() bool {
	return len(d.Digits) <= d.Exp || d.IsZero()
}

// String renders d in plain positional notation.
func (d Decimal) String() string {
	if d.IsZero() {
		return "0"
	}
	var b strings.Builder
	if d.Neg {
		b.WriteByte('-')
	}
	n := len(d.Digits)
	switch {
	case d.Exp <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -d.Exp))
		b.Write(d.Digits)
	case d.Exp >= n:
		b.Write(d.Digits)
		b.WriteString(strings.Repeat("0", d.Exp-n))
	default:
		b.Write(d.Digits[:d.Exp])
		b.WriteByte('.')
		b.Write(d.Digits[d.Exp:])
	}
	return b.String()
}

// Sci renders d as 0.DIGITSe±EXP, the form strconv.ParseFloat accepts.
func (d Decimal) Sci() string {
	if d.IsZero() {
		return "0"
	}
	sign := ""
	if d.Neg {
		sign = "-"
	}
	return sign + "0." + string(d.Digits) + "e" + strconv.Itoa(d.Exp)
}

func (d Decimal) normalize() Decimal {
	i := 0
	for i < len(d.Digits) && d.Digits[i] == '0' {
		i++
	}
	d.Digits = d.Digits[i:]
	d.Exp -= i
	j := len(d.Digits)
	for j > 0 && d.Digits[j-1] == '0' {
		j--
	}
	d.Digits = d.Digits[:j]
	if len(d.Digits) == 0 {
		return Decimal{}
	}
	return d
}

// ParseDecimal parses [+-]digits[.digits][e[+-]digits].
func ParseDecimal(s string) (Decimal, error) {
	src := s
	s = strings.TrimSpace(s)
	var d Decimal
	if s != "" && (s[0] == '+' || s[0] == '-') {
		d.Neg = s[0] == '-'
		s = s[1:]
	}

	digits := make([]byte, 0, len(s))
	intDigits := -1
	seen := false
	i := 0
scan:
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
			seen = true
		case c == '.' && intDigits < 0:
			intDigits = len(digits)
		default:
			break scan
		}
	}
	if !seen {
		return Decimal{}, errors.InvalidFormat(errors.PhaseEncode, src, "no digits in numeric text")
	}
	if intDigits < 0 {
		intDigits = len(digits)
	}
	exp := 0
	if i < len(s) {
		if s[i] != 'e' && s[i] != 'E' {
			return Decimal{}, errors.InvalidFormat(errors.PhaseEncode, src, "invalid character in numeric text")
		}
		e, err := strconv.Atoi(s[i+1:])
		if err != nil || e > decimalExpLimit || e < -decimalExpLimit {
			return Decimal{}, errors.InvalidFormat(errors.PhaseEncode, src, "invalid exponent in numeric text")
		}
		exp = e
	}

	d.Digits = digits
	d.Exp = intDigits + exp
	return d.normalize(), nil
}

// EncodeNumber encodes d, rounding half away from zero to 20 base-100
// digits. Magnitudes of 1e126 or more overflow; magnitudes below 1e-130
// become zero.
func EncodeNumber(d Decimal) ([]byte, error) {
	d = d.normalize()
	if d.IsZero() {
		return []byte{numberZero}, nil
	}

	digits := d.Digits
	exp := d.Exp
	if exp%2 != 0 {
		digits = append([]byte{'0'}, digits...)
		exp++
	}
	pairs := make([]int, 0, (len(digits)+1)/2)
	for i := 0; i < len(digits); i += 2 {
		hi := int(digits[i] - '0')
		lo := 0
		if i+1 < len(digits) {
			lo = int(digits[i+1] - '0')
		}
		pairs = append(pairs, hi*10+lo)
	}
	e := exp / 2

	if len(pairs) > numberMaxPairs {
		up := pairs[numberMaxPairs] >= 50
		pairs = pairs[:numberMaxPairs]
		if up {
			i := numberMaxPairs - 1
			for ; i >= 0; i-- {
				pairs[i]++
				if pairs[i] < 100 {
					break
				}
				pairs[i] = 0
			}
			if i < 0 {
				pairs = append([]int{1}, pairs[:numberMaxPairs-1]...)
				e++
			}
		}
	}
	for len(pairs) > 0 && pairs[len(pairs)-1] == 0 {
		pairs = pairs[:len(pairs)-1]
	}

	if e > numberMaxExp {
		return nil, errors.Overflow(errors.PhaseEncode, nil, d.String(), numberTypeName)
	}
	if e < numberMinExp || len(pairs) == 0 {
		return []byte{numberZero}, nil
	}

	out := make([]byte, 0, len(pairs)+2)
	if !d.Neg {
		out = append(out, byte(numberPosBase+e))
		for _, p := range pairs {
			out = append(out, byte(p+1))
		}
		return out, nil
	}
	out = append(out, byte(numberNegBase-e))
	for _, p := range pairs {
		out = append(out, byte(101-p))
	}
	if len(pairs) < numberMaxPairs {
		out = append(out, numberNegTerm)
	}
	return out, nil
}

// DecodeNumber decodes a native NUMBER.
func DecodeNumber(b []byte) (Decimal, error) {
	if len(b) == 0 || len(b) > NumberSize-1 {
		return Decimal{}, errors.InvalidData(errors.PhaseDecode, nil, "NUMBER length out of range")
	}
	if len(b) == 1 && b[0] == numberZero {
		return Decimal{}, nil
	}
	if len(b) == 1 {
		return Decimal{}, errors.InvalidData(errors.PhaseDecode, nil, "NUMBER infinity is not supported")
	}

	var d Decimal
	var e int
	digits := make([]byte, 0, 2*(len(b)-1))
	if b[0]&0x80 != 0 {
		e = int(b[0]) - numberPosBase
		for _, m := range b[1:] {
			if m < 1 || m > 100 {
				return Decimal{}, errors.InvalidData(errors.PhaseDecode, nil, "NUMBER mantissa byte out of range")
			}
			p := int(m) - 1
			digits = append(digits, byte('0'+p/10), byte('0'+p%10))
		}
	} else {
		d.Neg = true
		e = numberNegBase - int(b[0])
		for _, m := range b[1:] {
			if m == numberNegTerm {
				break
			}
			if m < 1 || m > 101 {
				return Decimal{}, errors.InvalidData(errors.PhaseDecode, nil, "NUMBER mantissa byte out of range")
			}
			p := 101 - int(m)
			digits = append(digits, byte('0'+p/10), byte('0'+p%10))
		}
	}
	d.Digits = digits
	d.Exp = 2 * e
	return d.normalize(), nil
}

// NumberFromInt64 encodes an integer.
func NumberFromInt64(v int64) []byte {
	d, _ := ParseDecimal(strconv.FormatInt(v, 10))
	b, _ := EncodeNumber(d)
	return b
}

// NumberFromUint64 encodes an unsigned integer.
func NumberFromUint64(v uint64) []byte {
	d, _ := ParseDecimal(strconv.FormatUint(v, 10))
	b, _ := EncodeNumber(d)
	return b
}

// NumberFromFloat64 encodes the shortest decimal that round-trips f.
func NumberFromFloat64(f float64) ([]byte, error) {
	if math.IsNaN(f) {
		return nil, errors.InvalidData(errors.PhaseEncode, nil, "NaN cannot be stored as NUMBER")
	}
	if math.IsInf(f, 0) {
		return nil, errors.Overflow(errors.PhaseEncode, nil, f, numberTypeName)
	}
	d, err := ParseDecimal(strconv.FormatFloat(f, float64ExpFormat, -1, 64))
	if err != nil {
		return nil, err
	}
	return EncodeNumber(d)
}

// NumberFromString encodes decimal text.
func NumberFromString(s string) ([]byte, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return nil, err
	}
	return EncodeNumber(d)
}

// NumberToString decodes to plain decimal text.
func NumberToString(b []byte) (string, error) {
	d, err := DecodeNumber(b)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// NumberToInt64 decodes an integral NUMBER into int64.
func NumberToInt64(b []byte) (int64, error) {
	d, err := DecodeNumber(b)
	if err != nil {
		return 0, err
	}
	return d.Int64()
}

// Int64 converts an integral decimal.
func (d Decimal) Int64() (int64, error) {
	if d.IsZero() {
		return 0, nil
	}
	if !d.IsInt() {
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			GoType("int64").
			Value(d.String()).
			Detail("value %s has a fractional part", d.String()).
			Build()
	}
	if d.Exp > maxInt64Digits {
		return 0, errors.Overflow(errors.PhaseDecode, nil, d.String(), "int64")
	}
	v, err := strconv.ParseInt(d.String(), 10, 64)
	if err != nil {
		return 0, errors.Overflow(errors.PhaseDecode, nil, d.String(), "int64")
	}
	return v, nil
}

// NumberToUint64 decodes a non-negative integral NUMBER into uint64.
func NumberToUint64(b []byte) (uint64, error) {
	d, err := DecodeNumber(b)
	if err != nil {
		return 0, err
	}
	if d.IsZero() {
		return 0, nil
	}
	if d.Neg || d.Exp > maxUint64Digits {
		return 0, errors.Overflow(errors.PhaseDecode, nil, d.String(), "uint64")
	}
	if !d.IsInt() {
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			GoType("uint64").
			Detail("value %s has a fractional part", d.String()).
			Build()
	}
	v, err := strconv.ParseUint(d.String(), 10, 64)
	if err != nil {
		return 0, errors.Overflow(errors.PhaseDecode, nil, d.String(), "uint64")
	}
	return v, nil
}

// NumberToFloat64 decodes to the nearest float64.
func NumberToFloat64(b []byte) (float64, error) {
	d, err := DecodeNumber(b)
	if err != nil {
		return 0, err
	}
	return d.Float64()
}

// Float64 converts to the nearest float64.
func (d Decimal) Float64() (float64, error) {
	if d.IsZero() {
		return 0, nil
	}
	f, err := strconv.ParseFloat(d.Sci(), 64)
	if err != nil {
		return 0, errors.Overflow(errors.PhaseDecode, nil, d.String(), "float64")
	}
	return f, nil
}

// CompareNumber orders two encoded NUMBERs. The encoding is byte-order
// preserving, so this is a plain byte comparison.
func CompareNumber(a, b []byte) int {
	return bytes.Compare(a, b)
}
