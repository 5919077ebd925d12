package nls

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/native"
)

// Session default models.
const (
	DateModel        = "DD-MON-RR"
	TimestampModel   = "DD-MON-RR HH.MI.SSXFF AM"
	TimestampTZModel = "DD-MON-RR HH.MI.SSXFF AM TZR"
)

// julianEpochOffset is the Julian day number of 1970-01-01.
const julianEpochOffset = 2440588

type elem uint8

const (
	elemLiteral elem = iota
	elemSYYYY
	elemYYYY
	elemYYY
	elemYY
	elemY
	elemRRRR
	elemRR
	elemMM
	elemMON
	elemMONTH
	elemRM
	elemDDD
	elemDD
	elemD
	elemDAY
	elemDY
	elemHH
	elemHH24
	elemMI
	elemSS
	elemSSSSS
	elemFF
	elemAM
	elemAMDots
	elemTZH
	elemTZM
	elemTZR
	elemTZD
	elemQ
	elemWW
	elemW
	elemJ
	elemX
	elemFM
	elemFX
)

type keyword struct {
	word string
	elem elem
	n    int
}

// dateKeywords is ordered so that no entry is shadowed by a shorter
// prefix of itself.
var dateKeywords = func() []keyword {
	kw := []keyword{
		{"SYYYY", elemSYYYY, 0}, {"MONTH", elemMONTH, 0}, {"SSSSS", elemSSSSS, 0},
		{"YYYY", elemYYYY, 0}, {"RRRR", elemRRRR, 0}, {"HH24", elemHH24, 0},
		{"HH12", elemHH, 0}, {"A.M.", elemAMDots, 0}, {"P.M.", elemAMDots, 0},
		{"YYY", elemYYY, 0}, {"MON", elemMON, 0}, {"DDD", elemDDD, 0}, {"DAY", elemDAY, 0},
		{"TZH", elemTZH, 0}, {"TZM", elemTZM, 0}, {"TZR", elemTZR, 0}, {"TZD", elemTZD, 0},
	}
	for n := 1; n <= 9; n++ {
		kw = append(kw, keyword{"FF" + strconv.Itoa(n), elemFF, n})
	}
	return append(kw,
		keyword{"YY", elemYY, 0}, keyword{"RR", elemRR, 0}, keyword{"MM", elemMM, 0},
		keyword{"RM", elemRM, 0}, keyword{"DD", elemDD, 0}, keyword{"DY", elemDY, 0},
		keyword{"HH", elemHH, 0}, keyword{"MI", elemMI, 0}, keyword{"SS", elemSS, 0},
		keyword{"FF", elemFF, 0}, keyword{"AM", elemAM, 0}, keyword{"PM", elemAM, 0},
		keyword{"WW", elemWW, 0}, keyword{"FM", elemFM, 0}, keyword{"FX", elemFX, 0},
		keyword{"Y", elemY, 0}, keyword{"D", elemD, 0}, keyword{"Q", elemQ, 0},
		keyword{"W", elemW, 0}, keyword{"J", elemJ, 0}, keyword{"X", elemX, 0},
	)
}()

type token struct {
	text string
	elem elem
	n    int
	kase letterCase
}

var dateModels sync.Map // string -> []token

func isPunct(c byte) bool {
	switch c {
	case '-', '/', ',', '.', ';', ':', ' ':
		return true
	}
	return false
}

func compileDateTime(model string) ([]token, error) {
	if v, ok := dateModels.Load(model); ok {
		return v.([]token), nil
	}

	var toks []token
	for i := 0; i < len(model); {
		c := model[i]
		switch {
		case c == '"':
			j := strings.IndexByte(model[i+1:], '"')
			if j < 0 {
				return nil, native.Errorf(native.CodeDateFormatInvalid, "date format not recognized")
			}
			toks = append(toks, token{elem: elemLiteral, text: model[i+1 : i+1+j]})
			i += j + 2
		case isPunct(c):
			toks = append(toks, token{elem: elemLiteral, text: model[i : i+1]})
			i++
		default:
			matched := false
			for _, kw := range dateKeywords {
				end := i + len(kw.word)
				if end > len(model) || !strings.EqualFold(model[i:end], kw.word) {
					continue
				}
				spelled := model[i:end]
				toks = append(toks, token{elem: kw.elem, text: spelled, n: kw.n, kase: caseOf(spelled)})
				i = end
				matched = true
				break
			}
			if !matched {
				return nil, native.Errorf(native.CodeDateFormatInvalid, "date format not recognized")
			}
		}
	}

	dateModels.Store(model, toks)
	return toks, nil
}

func pad(fm bool, width int, v int) string {
	if fm {
		return strconv.Itoa(v)
	}
	return fmt.Sprintf("%0*d", width, v)
}

func padRight(fm bool, width int, s string) string {
	if fm || len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FormatDateTime renders dt through a datetime format model. fsprec is
// the number of digits FF produces; a negative value means six.
func FormatDateTime(dt codec.DateTime, model string, fsprec int) (string, error) {
	toks, err := compileDateTime(model)
	if err != nil {
		return "", err
	}
	if err := dt.Validate(); err != nil {
		return "", err
	}
	if fsprec < 0 {
		fsprec = 6
	}
	if fsprec > 9 {
		fsprec = 9
	}

	// Calendar-derived fields come from the wall clock, without zone.
	wall, err := dt.WithoutZone().Time(time.UTC)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fm := false
	year := absInt(dt.Year)
	for _, tok := range toks {
		switch tok.elem {
		case elemLiteral:
			b.WriteString(tok.text)
		case elemFM:
			fm = !fm
		case elemFX:
		case elemSYYYY:
			if dt.Year < 0 {
				b.WriteByte('-')
			} else if !fm {
				b.WriteByte(' ')
			}
			b.WriteString(pad(fm, 4, year))
		case elemYYYY, elemRRRR:
			b.WriteString(pad(fm, 4, year))
		case elemYYY:
			b.WriteString(pad(fm, 3, year%1000))
		case elemYY, elemRR:
			b.WriteString(pad(fm, 2, year%100))
		case elemY:
			b.WriteString(strconv.Itoa(year % 10))
		case elemMM:
			b.WriteString(pad(fm, 2, dt.Month))
		case elemMON:
			b.WriteString(tok.kase.apply(monthNames[dt.Month-1][:3]))
		case elemMONTH:
			b.WriteString(padRight(fm, monthNameWidth, tok.kase.apply(monthNames[dt.Month-1])))
		case elemRM:
			b.WriteString(padRight(fm, romanWidth, tok.kase.apply(romanMonths[dt.Month-1])))
		case elemDD:
			b.WriteString(pad(fm, 2, dt.Day))
		case elemDDD:
			b.WriteString(pad(fm, 3, wall.YearDay()))
		case elemD:
			b.WriteString(strconv.Itoa(int(wall.Weekday()) + 1))
		case elemDAY:
			b.WriteString(padRight(fm, dayNameWidth, tok.kase.apply(dayNames[wall.Weekday()])))
		case elemDY:
			b.WriteString(tok.kase.apply(dayNames[wall.Weekday()][:3]))
		case elemHH:
			h := dt.Hour % 12
			if h == 0 {
				h = 12
			}
			b.WriteString(pad(fm, 2, h))
		case elemHH24:
			b.WriteString(pad(fm, 2, dt.Hour))
		case elemMI:
			b.WriteString(pad(fm, 2, dt.Minute))
		case elemSS:
			b.WriteString(pad(fm, 2, dt.Second))
		case elemSSSSS:
			b.WriteString(pad(fm, 5, dt.Hour*3600+dt.Minute*60+dt.Second))
		case elemFF:
			n := tok.n
			if n == 0 {
				n = fsprec
			}
			b.WriteString(fmt.Sprintf("%09d", dt.Nanosecond)[:n])
		case elemAM, elemAMDots:
			m := "AM"
			if dt.Hour >= 12 {
				m = "PM"
			}
			if tok.elem == elemAMDots {
				m = m[:1] + "." + m[1:] + "."
			}
			b.WriteString(tok.kase.apply(m))
		case elemTZH:
			sign := '+'
			if dt.Offset < 0 {
				sign = '-'
			}
			fmt.Fprintf(&b, "%c%02d", sign, absInt(dt.Offset)/60)
		case elemTZM:
			fmt.Fprintf(&b, "%02d", absInt(dt.Offset)%60)
		case elemTZR:
			if dt.Region != "" {
				b.WriteString(dt.Region)
			} else {
				b.WriteString(formatOffset(dt.Offset))
			}
		case elemTZD:
			if dt.Region != "" {
				loc, err := codec.LoadRegion(dt.Region)
				if err != nil {
					return "", err
				}
				t, err := dt.Time(loc)
				if err != nil {
					return "", err
				}
				abbr, _ := t.Zone()
				b.WriteString(abbr)
			}
		case elemQ:
			b.WriteString(strconv.Itoa((dt.Month-1)/3 + 1))
		case elemWW:
			b.WriteString(pad(fm, 2, (wall.YearDay()-1)/7+1))
		case elemW:
			b.WriteString(strconv.Itoa((dt.Day-1)/7 + 1))
		case elemJ:
			b.WriteString(pad(fm, 7, julianDay(wall)))
		case elemX:
			b.WriteByte('.')
		}
	}
	return b.String(), nil
}

func formatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
	}
	m := absInt(minutes)
	return fmt.Sprintf("%c%02d:%02d", sign, m/60, m%60)
}

func julianDay(t time.Time) int {
	days := t.Unix() / 86400
	if t.Unix()%86400 < 0 {
		days--
	}
	return int(days) + julianEpochOffset
}

// dateState accumulates the fields read by ParseDateTime.
type dateState struct {
	text  string
	pos   int
	exact bool
	seen  map[string]bool

	year, month, day     int
	hour, minute, second int
	nanos                int
	yday, julian, sssss  int
	hour12, pm           bool

	zoned      bool
	tzh, tzm   int
	tzNeg      bool
	region     string
	hasOffset  bool
	offsetText int
}

func (s *dateState) mark(field string) error {
	if s.seen[field] {
		return native.Errorf(native.CodeFormatTwice, "format code appears twice")
	}
	s.seen[field] = true
	return nil
}

func (s *dateState) skipSpace() {
	for s.pos < len(s.text) && s.text[s.pos] == ' ' {
		s.pos++
	}
}

func (s *dateState) done() bool {
	return s.pos >= len(s.text)
}

// number reads up to width digits; exact mode requires all of them.
func (s *dateState) number(width int, signed bool) (int, int, error) {
	if !s.exact {
		s.skipSpace()
	}
	neg := false
	if signed && s.pos < len(s.text) && (s.text[s.pos] == '-' || s.text[s.pos] == '+') {
		neg = s.text[s.pos] == '-'
		s.pos++
	}
	start := s.pos
	for s.pos < len(s.text) && s.pos-start < width && s.text[s.pos] >= '0' && s.text[s.pos] <= '9' {
		s.pos++
	}
	n := s.pos - start
	if n == 0 {
		return 0, 0, native.Errorf(native.CodeNonNumericFound, "a non-numeric character was found where a numeric was expected")
	}
	if s.exact && n != width {
		return 0, 0, native.Errorf(native.CodeNumericLength, "the numeric value does not match the length of the format item")
	}
	v, _ := strconv.Atoi(s.text[start:s.pos])
	if neg {
		v = -v
	}
	return v, n, nil
}

func (s *dateState) literal(lit string) error {
	if s.exact {
		if !strings.HasPrefix(s.text[s.pos:], lit) {
			return native.Errorf(native.CodeLiteralMismatch, "literal does not match format string")
		}
		s.pos += len(lit)
		return nil
	}
	if len(lit) == 1 && isPunct(lit[0]) {
		if s.pos < len(s.text) && s.text[s.pos] == lit[0] {
			s.pos++
			s.skipSpace()
			return nil
		}
		// Any other separator run stands in, short of a zone sign.
		for s.pos < len(s.text) && !isAlnum(s.text[s.pos]) && s.text[s.pos] != '+' && s.text[s.pos] != '-' {
			s.pos++
		}
		return nil
	}
	s.skipSpace()
	end := s.pos + len(lit)
	if end > len(s.text) || !strings.EqualFold(s.text[s.pos:end], lit) {
		return native.Errorf(native.CodeLiteralMismatch, "literal does not match format string")
	}
	s.pos = end
	return nil
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// ParseDateTime reads text through a datetime format model. Fields the
// model omits default to the current year and month, the first day and
// midnight. The flag reports whether the text carried a zone.
func ParseDateTime(text, model string, now time.Time) (codec.DateTime, bool, error) {
	toks, err := compileDateTime(model)
	if err != nil {
		return codec.DateTime{}, false, err
	}

	cur := codec.DateTimeOf(now)
	s := &dateState{
		text:   strings.TrimRight(text, " "),
		seen:   make(map[string]bool),
		year:   cur.Year,
		month:  cur.Month,
		day:    1,
		yday:   -1,
		julian: -1,
		sssss:  -1,
	}

	fx, fm := false, false
	for _, tok := range toks {
		s.exact = fx && !fm
		if s.done() && tok.elem != elemFM && tok.elem != elemFX {
			break
		}
		if err := s.element(tok, cur.Year); err != nil {
			return codec.DateTime{}, false, err
		}
		switch tok.elem {
		case elemFX:
			fx = !fx
		case elemFM:
			fm = !fm
		}
	}
	s.skipSpace()
	if !s.done() {
		return codec.DateTime{}, false, native.Errorf(native.CodeDateFormatEnds,
			"date format picture ends before converting entire input string")
	}
	return s.assemble()
}

func (s *dateState) element(tok token, curYear int) error {
	var err error
	var v, n int
	switch tok.elem {
	case elemLiteral:
		return s.literal(tok.text)
	case elemX:
		return s.literal(".")
	case elemFM, elemFX:
		return nil

	case elemSYYYY, elemYYYY, elemYYY, elemYY, elemY, elemRRRR, elemRR:
		if err = s.mark("year"); err != nil {
			return err
		}
		if v, n, err = s.number(yearWidth(tok.elem), tok.elem == elemSYYYY); err != nil {
			return err
		}
		s.year = resolveYear(tok.elem, v, n, curYear)

	case elemMM:
		if err = s.mark("month"); err != nil {
			return err
		}
		if v, _, err = s.number(2, false); err != nil {
			return err
		}
		if v < 1 || v > 12 {
			return native.Errorf(native.CodeInvalidMonth, "not a valid month")
		}
		s.month = v
	case elemMON, elemMONTH:
		if err = s.mark("month"); err != nil {
			return err
		}
		s.skipSpace()
		idx, used := matchName(monthNames[:], s.text[s.pos:], true)
		if idx < 0 {
			return native.Errorf(native.CodeInvalidMonth, "not a valid month")
		}
		s.pos += used
		s.month = idx + 1
	case elemRM:
		if err = s.mark("month"); err != nil {
			return err
		}
		s.skipSpace()
		idx, used := matchRoman(s.text[s.pos:])
		if idx < 0 {
			return native.Errorf(native.CodeInvalidMonth, "not a valid month")
		}
		s.pos += used
		s.month = idx + 1

	case elemDD:
		if err = s.mark("day"); err != nil {
			return err
		}
		if v, _, err = s.number(2, false); err != nil {
			return err
		}
		s.day = v
	case elemDDD:
		if err = s.mark("day"); err != nil {
			return err
		}
		if v, _, err = s.number(3, false); err != nil {
			return err
		}
		if v < 1 || v > 366 {
			return native.Errorf(native.CodeInvalidDayOfYear, "day of year must be between 1 and 365 (366 for leap year)")
		}
		s.yday = v
	case elemJ:
		if err = s.mark("julian"); err != nil {
			return err
		}
		if v, _, err = s.number(7, false); err != nil {
			return err
		}
		s.julian = v
	case elemD:
		if v, _, err = s.number(1, false); err != nil {
			return err
		}
		if v < 1 || v > 7 {
			return native.Errorf(native.CodeInvalidWeekday, "not a valid day of the week")
		}
	case elemDAY, elemDY:
		s.skipSpace()
		idx, used := matchName(dayNames[:], s.text[s.pos:], true)
		if idx < 0 {
			return native.Errorf(native.CodeInvalidWeekday, "not a valid day of the week")
		}
		s.pos += used

	case elemHH:
		if err = s.mark("hour"); err != nil {
			return err
		}
		if v, _, err = s.number(2, false); err != nil {
			return err
		}
		if v < 1 || v > 12 {
			return native.Errorf(native.CodeInvalidHour12, "hour must be between 1 and 12")
		}
		s.hour, s.hour12 = v, true
	case elemHH24:
		if err = s.mark("hour"); err != nil {
			return err
		}
		if v, _, err = s.number(2, false); err != nil {
			return err
		}
		if v > 23 {
			return native.Errorf(native.CodeInvalidHour, "hour must be between 0 and 23")
		}
		s.hour = v
	case elemMI:
		if err = s.mark("minute"); err != nil {
			return err
		}
		if v, _, err = s.number(2, false); err != nil {
			return err
		}
		if v > 59 {
			return native.Errorf(native.CodeInvalidMinute, "minutes must be between 0 and 59")
		}
		s.minute = v
	case elemSS:
		if err = s.mark("second"); err != nil {
			return err
		}
		if v, _, err = s.number(2, false); err != nil {
			return err
		}
		if v > 59 {
			return native.Errorf(native.CodeInvalidSecond, "seconds must be between 0 and 59")
		}
		s.second = v
	case elemSSSSS:
		if err = s.mark("sssss"); err != nil {
			return err
		}
		if v, _, err = s.number(5, false); err != nil {
			return err
		}
		if v > 86399 {
			return native.Errorf(native.CodeInvalidSecondsInDay, "seconds in day must be between 0 and 86399")
		}
		s.sssss = v
	case elemFF:
		if err = s.mark("fraction"); err != nil {
			return err
		}
		width := tok.n
		if width == 0 {
			width = 9
		}
		exact := s.exact
		s.exact = false
		v, n, err = s.number(width, false)
		s.exact = exact
		if err != nil {
			return err
		}
		for ; n < 9; n++ {
			v *= 10
		}
		s.nanos = v
	case elemAM, elemAMDots:
		if err = s.mark("meridian"); err != nil {
			return err
		}
		s.skipSpace()
		rest := strings.ToUpper(s.text[s.pos:])
		switch {
		case strings.HasPrefix(rest, "A.M."), strings.HasPrefix(rest, "P.M."):
			s.pm = rest[0] == 'P'
			s.pos += 4
		case strings.HasPrefix(rest, "AM"), strings.HasPrefix(rest, "PM"):
			s.pm = rest[0] == 'P'
			s.pos += 2
		default:
			return native.Errorf(native.CodeMeridianRequired, "AM/A.M. or PM/P.M. required")
		}

	case elemTZH:
		if err = s.mark("tzh"); err != nil {
			return err
		}
		s.skipSpace()
		neg := s.pos < len(s.text) && s.text[s.pos] == '-'
		if v, _, err = s.number(2, true); err != nil {
			return err
		}
		if v < -12 || v > 14 {
			return native.Errorf(native.CodeInvalidTZHour, "time zone hour must be between -12 and 14")
		}
		s.tzh, s.tzNeg, s.zoned = absInt(v), neg, true
	case elemTZM:
		if err = s.mark("tzm"); err != nil {
			return err
		}
		if v, _, err = s.number(2, false); err != nil {
			return err
		}
		if v > 59 {
			return native.Errorf(native.CodeInvalidTZMinute, "time zone minute must be between 0 and 59")
		}
		s.tzm, s.zoned = v, true
	case elemTZR:
		if err = s.mark("tzr"); err != nil {
			return err
		}
		s.skipSpace()
		end := s.pos
		for end < len(s.text) && s.text[end] != ' ' {
			end++
		}
		word := s.text[s.pos:end]
		if off, ok := parseOffset(word); ok {
			s.hasOffset, s.offsetText = true, off
		} else if id, ok := codec.RegionID(word); ok {
			s.region = codec.Regions[id-1]
		} else {
			return native.Errorf(native.CodeRegionNotFound, "timezone region not found")
		}
		s.pos, s.zoned = end, true
	case elemTZD:
		s.skipSpace()
		for s.pos < len(s.text) && isAlnum(s.text[s.pos]) {
			s.pos++
		}

	case elemQ, elemWW, elemW:
		return native.Errorf(native.CodeFormatNotInput, "format code cannot appear in date input format")
	}
	return nil
}

func yearWidth(e elem) int {
	switch e {
	case elemYYY:
		return 3
	case elemYY, elemRR:
		return 2
	case elemY:
		return 1
	}
	return 4
}

// resolveYear completes abbreviated years against the current year.
func resolveYear(e elem, v, digits, curYear int) int {
	switch e {
	case elemYYY, elemYY, elemY:
		scale := 10
		for i := 1; i < yearWidth(e); i++ {
			scale *= 10
		}
		return curYear/scale*scale + v
	case elemRR, elemRRRR:
		if e == elemRRRR && digits > 2 {
			return v
		}
		century := curYear / 100 * 100
		cur := curYear % 100
		switch {
		case cur < 50 && v >= 50:
			return century - 100 + v
		case cur >= 50 && v < 50:
			return century + 100 + v
		}
		return century + v
	}
	return v
}

func parseOffset(s string) (int, bool) {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return 0, false
	}
	hs, ms, _ := strings.Cut(s[1:], ":")
	h, err := strconv.Atoi(hs)
	if err != nil || h > 14 {
		return 0, false
	}
	m := 0
	if ms != "" {
		if m, err = strconv.Atoi(ms); err != nil || m > 59 {
			return 0, false
		}
	}
	off := h*60 + m
	if s[0] == '-' {
		off = -off
	}
	return off, true
}

func (s *dateState) assemble() (codec.DateTime, bool, error) {
	if s.year == 0 || s.year < codec.MinYear || s.year > codec.MaxYear {
		return codec.DateTime{}, false, native.Errorf(native.CodeInvalidYear,
			"(full) year must be between -4713 and +9999, and not be 0")
	}

	dt := codec.DateTime{Year: s.year, Month: s.month, Day: s.day}
	switch {
	case s.julian >= 0:
		t := time.Unix(int64(s.julian-julianEpochOffset)*86400, 0).UTC()
		j := codec.DateTimeOf(t)
		dt.Year, dt.Month, dt.Day = j.Year, j.Month, j.Day
	case s.yday >= 0:
		days := 365
		if codec.IsLeapYear(s.year) {
			days = 366
		}
		if s.yday > days {
			return codec.DateTime{}, false, native.Errorf(native.CodeInvalidDayOfYear,
				"day of year must be between 1 and 365 (366 for leap year)")
		}
		m, d := 1, s.yday
		for d > codec.DaysIn(s.year, m) {
			d -= codec.DaysIn(s.year, m)
			m++
		}
		dt.Month, dt.Day = m, d
	}
	if dt.Day < 1 || dt.Day > codec.DaysIn(dt.Year, dt.Month) {
		return codec.DateTime{}, false, native.Errorf(native.CodeInvalidDay,
			"day of month must be between 1 and last day of month")
	}

	dt.Hour, dt.Minute, dt.Second, dt.Nanosecond = s.hour, s.minute, s.second, s.nanos
	if s.hour12 {
		switch {
		case s.pm && dt.Hour < 12:
			dt.Hour += 12
		case !s.pm && dt.Hour == 12:
			dt.Hour = 0
		}
	}
	if s.sssss >= 0 {
		dt.Hour, dt.Minute, dt.Second = s.sssss/3600, s.sssss%3600/60, s.sssss%60
	}

	switch {
	case s.region != "":
		loc, err := codec.LoadRegion(s.region)
		if err != nil {
			return codec.DateTime{}, false, err
		}
		t, err := dt.Time(loc)
		if err != nil {
			return codec.DateTime{}, false, err
		}
		_, off := t.Zone()
		dt.Region, dt.Offset = s.region, off/60
	case s.hasOffset:
		dt.Offset = s.offsetText
	default:
		off := s.tzh*60 + s.tzm
		if s.tzNeg {
			off = -off
		}
		dt.Offset = off
	}
	return dt, s.zoned, nil
}
