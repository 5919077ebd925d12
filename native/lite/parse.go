package lite

import (
	"strings"

	"github.com/wippyai/oci-runtime/native"
)

// mark is one placeholder occurrence.
type mark struct {
	name  string
	start int // offset of the colon
	end   int
	slot  int // 0-based bind slot
}

// parsed is statement text after the server-side parse.
type parsed struct {
	text string
	// masked is text upper-cased with the bodies of literals, quoted
	// identifiers and comments blanked; offsets match text.
	masked string
	kind   native.StmtType
	marks  []mark
	slots  int
}

func parse(text string) *parsed {
	p := &parsed{text: text, masked: maskText(text)}
	p.kind = classify(p.masked)
	p.marks = scanMarks(text, p.masked)

	if p.kind.IsPLSQL() {
		for i := range p.marks {
			p.marks[i].slot = i
		}
		p.slots = len(p.marks)
		return p
	}
	first := make(map[string]int)
	for i := range p.marks {
		if s, ok := first[p.marks[i].name]; ok {
			p.marks[i].slot = s
			continue
		}
		first[p.marks[i].name] = p.slots
		p.marks[i].slot = p.slots
		p.slots++
	}
	return p
}

// bindInfo reports one entry per occurrence; an occurrence is a duplicate
// when it reuses an earlier slot.
func (p *parsed) bindInfo() []native.BindInfo {
	out := make([]native.BindInfo, len(p.marks))
	next := 0
	for i, m := range p.marks {
		out[i] = native.BindInfo{Name: m.name, Duplicate: m.slot < next}
		if m.slot == next {
			next++
		}
	}
	return out
}

// marksIn returns the marks inside [from, to).
func (p *parsed) marksIn(from, to int) []mark {
	var out []mark
	for _, m := range p.marks {
		if m.start >= from && m.end <= to {
			out = append(out, m)
		}
	}
	return out
}

// rewrite returns text[from:to] with each placeholder replaced by '?'
// and each empty string literal replaced by NULL.
func (p *parsed) rewrite(from, to int) string {
	var b strings.Builder
	pos := from
	for _, m := range p.marksIn(from, to) {
		p.copyText(&b, pos, m.start)
		b.WriteByte('?')
		pos = m.end
	}
	p.copyText(&b, pos, to)
	return b.String()
}

// copyText writes text[from:to], turning '' into NULL. An empty literal
// next to || is left alone: concatenation skips NULL operands on the
// server but not in SQLite.
func (p *parsed) copyText(b *strings.Builder, from, to int) {
	for {
		i := strings.Index(p.masked[from:to], "''")
		if i < 0 {
			break
		}
		at := from + i
		b.WriteString(p.text[from:at])
		if p.concatAround(at, at+2) {
			b.WriteString("''")
		} else {
			b.WriteString("NULL")
		}
		from = at + 2
	}
	b.WriteString(p.text[from:to])
}

func (p *parsed) concatAround(start, end int) bool {
	before := strings.TrimRight(p.masked[:start], " \t\r\n")
	after := strings.TrimLeft(p.masked[end:], " \t\r\n")
	return strings.HasSuffix(before, "||") || strings.HasPrefix(after, "||")
}

func isIdent(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' ||
		c == '_' || c == '$' || c == '#'
}

func upperASCII(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

var qClose = map[byte]byte{'[': ']', '{': '}', '(': ')', '<': '>'}

func maskText(text string) string {
	b := []byte(text)
	blank := func(from, to int) {
		for i := from; i < to && i < len(b); i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case (c == 'q' || c == 'Q') && i+2 < len(b) && b[i+1] == '\'' && (i == 0 || !isIdent(b[i-1])):
			open := b[i+2]
			closer, ok := qClose[open]
			if !ok {
				closer = open
			}
			end := strings.Index(text[i+3:], string([]byte{closer, '\''}))
			if end < 0 {
				blank(i+2, len(b))
				i = len(b)
				continue
			}
			stop := i + 3 + end
			blank(i+2, stop+1)
			i = stop + 1
		case c == '\'':
			j := i + 1
			for j < len(b) {
				if text[j] == '\'' {
					if j+1 < len(b) && text[j+1] == '\'' {
						j += 2
						continue
					}
					break
				}
				j++
			}
			blank(i+1, j)
			i = j
		case c == '"':
			j := strings.IndexByte(text[i+1:], '"')
			if j < 0 {
				blank(i+1, len(b))
				i = len(b)
				continue
			}
			blank(i+1, i+1+j)
			i += 1 + j
		case c == '-' && i+1 < len(b) && b[i+1] == '-':
			j := strings.IndexByte(text[i:], '\n')
			if j < 0 {
				j = len(b) - i
			}
			blank(i, i+j)
			i += j
		case c == '/' && i+1 < len(b) && b[i+1] == '*':
			j := strings.Index(text[i+2:], "*/")
			if j < 0 {
				blank(i, len(b))
				i = len(b)
				continue
			}
			blank(i, i+2+j+2)
			i += 2 + j + 1
		default:
			b[i] = upperASCII(c)
		}
	}
	return string(b)
}

func scanMarks(text, masked string) []mark {
	var out []mark
	for i := 0; i+1 < len(masked); i++ {
		if masked[i] != ':' {
			continue
		}
		next := masked[i+1]
		switch {
		case next == '=':
			i++
		case next == ':':
			i++
		case next == '"':
			j := strings.IndexByte(text[i+2:], '"')
			if j < 0 {
				continue
			}
			out = append(out, mark{name: text[i+2 : i+2+j], start: i, end: i + 3 + j})
			i += 2 + j
		case isIdent(next) && next != '$' && next != '#':
			j := i + 1
			for j < len(masked) && isIdent(masked[j]) {
				j++
			}
			out = append(out, mark{name: masked[i+1 : j], start: i, end: j})
			i = j - 1
		}
	}
	return out
}

var leadingKeywords = map[string]native.StmtType{
	"SELECT":  native.StmtSelect,
	"WITH":    native.StmtSelect,
	"INSERT":  native.StmtInsert,
	"UPDATE":  native.StmtUpdate,
	"DELETE":  native.StmtDelete,
	"MERGE":   native.StmtMerge,
	"CREATE":  native.StmtCreate,
	"DROP":    native.StmtDrop,
	"ALTER":   native.StmtAlter,
	"BEGIN":   native.StmtBegin,
	"DECLARE": native.StmtDeclare,
	"CALL":    native.StmtCall,
}

func classify(masked string) native.StmtType {
	i := 0
	for i < len(masked) && (masked[i] == ' ' || masked[i] == '\t' || masked[i] == '\n' || masked[i] == '\r' || masked[i] == '(') {
		i++
	}
	j := i
	for j < len(masked) && isIdent(masked[j]) {
		j++
	}
	return leadingKeywords[masked[i:j]]
}

// findWord returns the offset of the first whole-word occurrence of word
// in masked at or after from, or -1. With topLevel set, occurrences inside
// parentheses are skipped.
func findWord(masked, word string, from int, topLevel bool) int {
	depth := 0
	for i := from; i < len(masked); i++ {
		switch masked[i] {
		case '(':
			depth++
			continue
		case ')':
			depth--
			continue
		}
		if topLevel && depth > 0 {
			continue
		}
		if strings.HasPrefix(masked[i:], word) &&
			(i == 0 || !isIdent(masked[i-1])) &&
			(i+len(word) == len(masked) || !isIdent(masked[i+len(word)])) {
			return i
		}
	}
	return -1
}

// findLastWord returns the offset of the last whole-word occurrence of
// word in masked, or -1.
func findLastWord(masked, word string) int {
	for i := len(masked) - len(word); i >= 0; i-- {
		if strings.HasPrefix(masked[i:], word) &&
			(i == 0 || !isIdent(masked[i-1])) &&
			(i+len(word) == len(masked) || !isIdent(masked[i+len(word)])) {
			return i
		}
	}
	return -1
}

// returning locates a trailing RETURNING ... INTO clause in [from, to).
type returning struct {
	start int // RETURNING keyword
	exprs int // start of the expression list
	into  int // INTO keyword
}

func findReturning(masked string, from, to int) (returning, bool) {
	seg := masked[:to]
	kw := "RETURNING"
	at := findWord(seg, kw, from, true)
	if at < 0 {
		kw = "RETURN"
		if at = findWord(seg, kw, from, true); at < 0 {
			return returning{}, false
		}
	}
	into := findWord(seg, "INTO", at, true)
	if into < 0 {
		return returning{}, false
	}
	return returning{start: at, exprs: at + len(kw), into: into}, true
}

// splitStatements splits masked[from:to] at semicolons and returns the
// trimmed non-empty pieces as offset pairs.
func splitStatements(masked string, from, to int) [][2]int {
	var out [][2]int
	start := from
	for i := from; i <= to; i++ {
		if i < to && masked[i] != ';' {
			continue
		}
		s, e := start, i
		for s < e && isSpace(masked[s]) {
			s++
		}
		for e > s && isSpace(masked[e-1]) {
			e--
		}
		if s < e {
			out = append(out, [2]int{s, e})
		}
		start = i + 1
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// sourceTable returns the first table named after a top-level FROM, for
// nullability lookups. It returns "" for joins and subqueries.
func sourceTable(masked, text string) string {
	at := findWord(masked, "FROM", 0, true)
	if at < 0 {
		return ""
	}
	i := at + len("FROM")
	for i < len(masked) && isSpace(masked[i]) {
		i++
	}
	j := i
	for j < len(masked) && (isIdent(masked[j]) || masked[j] == '.') {
		j++
	}
	if j == i {
		return ""
	}
	rest := strings.TrimSpace(masked[j:])
	if strings.HasPrefix(rest, ",") || findWord(masked, "JOIN", j, true) >= 0 {
		return ""
	}
	return text[i:j]
}
