package nls

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/cockroachdb/apd/v3"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/native"
)

type signStyle uint8

const (
	signDefault signStyle = iota
	signLeading
	signTrailing
	signMI
	signPR
)

// numModel is a compiled number format model.
type numModel struct {
	// intSlots holds '9', '0' and ',' for the integer part, left to right.
	intSlots []byte
	// fracSlots holds '9' and '0' for the fractional part.
	fracSlots []byte
	sign      signStyle
	shift     int
	hex       int
	fm        bool
	tm        bool
	tmSci     bool
	decimal   bool
	dollar    bool
	blank     bool
	eeee      bool
	hexLower  bool
}

var numModels sync.Map // string -> *numModel

// fmtContext is wide enough to quantize any NUMBER to any model scale.
var fmtContext = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(300)
	c.Rounding = apd.RoundHalfUp
	return c
}()

func badNumberModel() error {
	return native.Errorf(native.CodeInvalidNumberFormat, "invalid number format model")
}

func invalidNumber() error {
	return native.Errorf(native.CodeInvalidNumber, "invalid number")
}

func compileNumber(model string) (*numModel, error) {
	if v, ok := numModels.Load(model); ok {
		return v.(*numModel), nil
	}

	key := model
	m := &numModel{}
	upper := strings.ToUpper(model)
	switch upper {
	case "", "TM", "TM9":
		m.tm = true
	case "TME":
		m.tm, m.tmSci = true, true
	}
	if m.tm {
		numModels.Store(key, m)
		return m, nil
	}

	s := upper
	if strings.HasPrefix(s, "FM") {
		m.fm = true
		s = s[2:]
		model = model[2:]
	}
	switch {
	case strings.HasSuffix(s, "MI"):
		m.sign, s = signMI, s[:len(s)-2]
	case strings.HasSuffix(s, "PR"):
		m.sign, s = signPR, s[:len(s)-2]
	case strings.HasSuffix(s, "S"):
		m.sign, s = signTrailing, s[:len(s)-1]
	}
	if strings.HasPrefix(s, "S") {
		if m.sign != signDefault {
			return nil, badNumberModel()
		}
		m.sign, s = signLeading, s[1:]
		model = model[1:]
	}
	if strings.HasSuffix(s, "EEEE") {
		m.eeee, s = true, s[:len(s)-4]
	}

	afterV := false
	digits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '9', '0':
			digits++
			switch {
			case afterV:
				m.intSlots = append(m.intSlots, c)
				m.shift++
			case m.decimal:
				m.fracSlots = append(m.fracSlots, c)
			default:
				m.intSlots = append(m.intSlots, c)
			}
		case ',', 'G':
			if m.decimal || afterV || digits == 0 {
				return nil, badNumberModel()
			}
			m.intSlots = append(m.intSlots, ',')
		case '.', 'D':
			if m.decimal || afterV {
				return nil, badNumberModel()
			}
			m.decimal = true
		case '$':
			if m.dollar {
				return nil, badNumberModel()
			}
			m.dollar = true
		case 'B':
			m.blank = true
		case 'V':
			if afterV || m.decimal {
				return nil, badNumberModel()
			}
			afterV = true
		case 'X':
			if m.decimal || afterV || m.eeee || m.sign != signDefault {
				return nil, badNumberModel()
			}
			for _, slot := range m.intSlots {
				if slot != '0' {
					return nil, badNumberModel()
				}
			}
			m.hex++
			m.hexLower = model[i] == 'x'
		default:
			return nil, badNumberModel()
		}
	}
	if digits == 0 && m.hex == 0 {
		return nil, badNumberModel()
	}
	if m.eeee && (len(m.intSlots) != 1 || m.shift > 0) {
		return nil, badNumberModel()
	}

	numModels.Store(key, m)
	return m, nil
}

func (m *numModel) digitSlots() int {
	n := 0
	for _, c := range m.intSlots {
		if c != ',' {
			n++
		}
	}
	return n
}

// width is the length of a rendered value outside fill mode.
func (m *numModel) width() int {
	if m.hex > 0 {
		return len(m.intSlots) + m.hex + 1
	}
	w := len(m.intSlots) + len(m.fracSlots)
	if m.decimal {
		w++
	}
	if m.dollar {
		w++
	}
	if m.eeee {
		w += 4
	}
	if m.sign == signPR {
		w += 2
	} else {
		w++
	}
	return w
}

func (m *numModel) overflow() string {
	return strings.Repeat("#", m.width())
}

func toAPD(d codec.Decimal) (*apd.Decimal, error) {
	x, _, err := apd.NewFromString(d.Sci())
	return x, err
}

// FormatNumber renders d through a number format model.
func FormatNumber(d codec.Decimal, model string) (string, error) {
	m, err := compileNumber(model)
	if err != nil {
		return "", err
	}
	if m.tm {
		return textMinimum(d, m.tmSci), nil
	}

	x, err := toAPD(d)
	if err != nil {
		return "", invalidNumber()
	}
	x.Exponent += int32(m.shift)

	switch {
	case m.hex > 0:
		return m.formatHex(x)
	case m.eeee:
		return m.formatSci(x)
	}

	r := new(apd.Decimal)
	if _, err := fmtContext.Quantize(r, x, -int32(len(m.fracSlots))); err != nil {
		return m.overflow(), nil
	}
	neg := r.Negative && !r.IsZero()
	if m.blank && r.IsZero() {
		return m.finish(""), nil
	}

	text := strings.TrimPrefix(r.Text('f'), "-")
	intPart, fracPart, _ := strings.Cut(text, ".")
	intPart = strings.TrimLeft(intPart, "0")

	slots := m.digitSlots()
	if len(intPart) > slots {
		return m.overflow(), nil
	}
	if intPart == "" && len(m.fracSlots) == 0 {
		intPart = "0"
	}

	// Digit slots left of the first '0' stay blank when the value has no
	// digit for them.
	firstZero := slots
	k := 0
	for _, c := range m.intSlots {
		if c == '0' {
			firstZero = k
			break
		}
		if c != ',' {
			k++
		}
	}

	var body strings.Builder
	k, started := 0, false
	for _, c := range m.intSlots {
		if c == ',' {
			if started {
				body.WriteByte(',')
			}
			continue
		}
		lead := slots - len(intPart)
		switch {
		case k >= lead:
			body.WriteByte(intPart[k-lead])
			started = true
		case k >= firstZero:
			body.WriteByte('0')
			started = true
		}
		k++
	}

	if m.decimal {
		frac := []byte(fracPart)
		if m.fm {
			for len(frac) > 0 && frac[len(frac)-1] == '0' && m.fracSlots[len(frac)-1] == '9' {
				frac = frac[:len(frac)-1]
			}
		}
		body.WriteByte('.')
		body.Write(frac)
	}
	return m.finish(m.signed(body.String(), neg)), nil
}

func (m *numModel) signed(body string, neg bool) string {
	if m.dollar {
		body = "$" + body
	}
	switch m.sign {
	case signLeading:
		if neg {
			return "-" + body
		}
		return "+" + body
	case signTrailing:
		if neg {
			return body + "-"
		}
		return body + "+"
	case signMI:
		if neg {
			return body + "-"
		}
		if m.fm {
			return body
		}
		return body + " "
	case signPR:
		if neg {
			return "<" + body + ">"
		}
		if m.fm {
			return body
		}
		return " " + body + " "
	}
	if neg {
		return "-" + body
	}
	return body
}

func (m *numModel) finish(s string) string {
	if m.fm {
		return s
	}
	if w := m.width(); len(s) < w {
		return strings.Repeat(" ", w-len(s)) + s
	}
	return s
}

func (m *numModel) formatHex(x *apd.Decimal) (string, error) {
	r := new(apd.Decimal)
	if _, err := fmtContext.Quantize(r, x, 0); err != nil || r.Negative && !r.IsZero() {
		return m.overflow(), nil
	}
	n, ok := new(big.Int).SetString(r.Text('f'), 10)
	if !ok {
		return m.overflow(), nil
	}
	h := n.Text(16)
	if !m.hexLower {
		h = strings.ToUpper(h)
	}
	slots := len(m.intSlots) + m.hex
	if len(h) > slots {
		return m.overflow(), nil
	}
	if len(m.intSlots) > 0 {
		h = strings.Repeat("0", slots-len(h)) + h
	}
	return m.finish(h), nil
}

func (m *numModel) formatSci(x *apd.Decimal) (string, error) {
	frac := len(m.fracSlots)
	neg := x.Negative && !x.IsZero()
	mant := new(apd.Decimal)
	exp := 0
	if x.IsZero() {
		if _, err := fmtContext.Quantize(mant, apd.New(0, 0), -int32(frac)); err != nil {
			return m.overflow(), nil
		}
	} else {
		exp = int(x.NumDigits()) + int(x.Exponent) - 1
		for range 2 {
			scaled := new(apd.Decimal).Set(x)
			scaled.Exponent -= int32(exp)
			if _, err := fmtContext.Quantize(mant, scaled, -int32(frac)); err != nil {
				return m.overflow(), nil
			}
			if ip, _, _ := strings.Cut(strings.TrimPrefix(mant.Text('f'), "-"), "."); len(ip) == 1 {
				break
			}
			exp++
		}
	}

	body := strings.TrimPrefix(mant.Text('f'), "-")
	if m.decimal && frac == 0 {
		body += "."
	}
	esign := '+'
	if exp < 0 {
		esign = '-'
	}
	body += fmt.Sprintf("E%c%02d", esign, absInt(exp))
	return m.finish(m.signed(body, neg)), nil
}

// textMinimum renders the shortest text for d, switching to scientific
// notation past 64 characters.
func textMinimum(d codec.Decimal, sci bool) string {
	plain := d.String()
	if !sci && len(plain) <= 64 {
		if strings.HasPrefix(plain, "0.") {
			return plain[1:]
		}
		if strings.HasPrefix(plain, "-0.") {
			return "-" + plain[2:]
		}
		return plain
	}
	if d.IsZero() {
		return "0E+00"
	}
	var b strings.Builder
	if d.Neg {
		b.WriteByte('-')
	}
	b.WriteByte(d.Digits[0])
	if len(d.Digits) > 1 {
		b.WriteByte('.')
		b.Write(d.Digits[1:])
	}
	exp := d.Exp - 1
	esign := '+'
	if exp < 0 {
		esign = '-'
	}
	fmt.Fprintf(&b, "E%c%02d", esign, absInt(exp))
	return b.String()
}

// ParseNumber reads text through a number format model.
func ParseNumber(text, model string) (codec.Decimal, error) {
	m, err := compileNumber(model)
	if err != nil {
		return codec.Decimal{}, err
	}
	s := strings.TrimSpace(text)
	if m.tm || m.eeee {
		d, err := codec.ParseDecimal(s)
		if err != nil {
			return codec.Decimal{}, invalidNumber()
		}
		return d, nil
	}
	if s == "" {
		return codec.Decimal{}, invalidNumber()
	}

	neg := false
	switch m.sign {
	case signPR:
		if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
			neg, s = true, strings.TrimSpace(s[1:len(s)-1])
		}
	case signMI, signTrailing:
		switch s[len(s)-1] {
		case '-':
			neg, s = true, s[:len(s)-1]
		case '+':
			if m.sign == signTrailing {
				s = s[:len(s)-1]
			}
		}
	}
	if m.sign != signMI && m.sign != signTrailing && s != "" && (s[0] == '-' || s[0] == '+') {
		neg, s = s[0] == '-', s[1:]
	}
	if m.dollar {
		s = strings.TrimPrefix(s, "$")
	}

	if m.hex > 0 {
		n, ok := new(big.Int).SetString(s, 16)
		if !ok || len(s) > len(m.intSlots)+m.hex {
			return codec.Decimal{}, invalidNumber()
		}
		return codec.ParseDecimal(n.String())
	}

	if strings.ContainsRune(string(m.intSlots), ',') {
		s = strings.ReplaceAll(s, ",", "")
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if hasDot && !m.decimal {
		return codec.Decimal{}, invalidNumber()
	}
	if len(strings.TrimLeft(intPart, "0")) > m.digitSlots() || len(fracPart) > len(m.fracSlots) {
		return codec.Decimal{}, invalidNumber()
	}
	for _, part := range []string{intPart, fracPart} {
		for i := 0; i < len(part); i++ {
			if part[i] < '0' || part[i] > '9' {
				return codec.Decimal{}, invalidNumber()
			}
		}
	}
	if intPart == "" && fracPart == "" {
		return codec.Decimal{}, invalidNumber()
	}

	src := intPart
	if fracPart != "" {
		src += "." + fracPart
	}
	if src[0] == '.' {
		src = "0" + src
	}
	if neg {
		src = "-" + src
	}
	d, err := codec.ParseDecimal(src)
	if err != nil {
		return codec.Decimal{}, invalidNumber()
	}
	if !d.IsZero() {
		d.Exp -= m.shift
	}
	return d, nil
}
