package lite

import (
	"context"
	"database/sql"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/oci-runtime/native"
)

// DDL type rewrites. SQLite accepts most Oracle type names as written, but
// INTERVAL types contain the keyword TO, zoned TIMESTAMP types contain the
// keyword WITH, and the SQLite driver converts columns declared exactly
// DATE or TIMESTAMP into time.Time, which cannot hold BC years. The
// rewritten names still describe back to the same Oracle types.
var ddlRewrites = []struct {
	re   *regexp.Regexp
	repl func(match string) string
}{
	{
		re:   regexp.MustCompile(`\bINTERVAL\s+DAY(\s*\(\s*\d+\s*\))?\s+TO\s+SECOND(\s*\(\s*\d+\s*\))?`),
		repl: func(string) string { return "INTERVAL_DAY_TO_SECOND" },
	},
	{
		re:   regexp.MustCompile(`\bINTERVAL\s+YEAR(\s*\(\s*\d+\s*\))?\s+TO\s+MONTH\b`),
		repl: func(string) string { return "INTERVAL_YEAR_TO_MONTH" },
	},
	{
		re:   tzTimestamp,
		repl: rewriteTZTimestamp,
	},
	{
		re: regexp.MustCompile(`\bTIMESTAMP\b(\s*\(\s*\d+\s*\))?`),
		repl: func(m string) string {
			if strings.Contains(m, "(") {
				return m
			}
			return m + "(6)"
		},
	},
	{
		re:   regexp.MustCompile(`\bDATE\b\s*\(?`),
		repl: func(m string) string {
			if strings.HasSuffix(m, "(") {
				return m
			}
			return "DATE(0) "
		},
	},
}

var tzTimestamp = regexp.MustCompile(`\bTIMESTAMP\b(\s*\(\s*(\d+)\s*\))?\s+WITH\s+(LOCAL\s+)?TIME\s+ZONE\b`)

// rewriteTZTimestamp turns "TIMESTAMP(p) WITH [LOCAL] TIME ZONE" into a
// single identifier that keeps the precision.
func rewriteTZTimestamp(m string) string {
	sub := tzTimestamp.FindStringSubmatch(m)
	prec := "6"
	if sub[2] != "" {
		prec = sub[2]
	}
	if sub[3] != "" {
		return "TIMESTAMP_WITH_LOCAL_TIME_ZONE(" + prec + ")"
	}
	return "TIMESTAMP_WITH_TIME_ZONE(" + prec + ")"
}

// rewriteDDL applies the type rewrites to a CREATE or ALTER statement.
func rewriteDDL(text string) string {
	for _, rw := range ddlRewrites {
		masked := maskText(text)
		locs := rw.re.FindAllStringIndex(masked, -1)
		if len(locs) == 0 {
			continue
		}
		var b strings.Builder
		pos := 0
		for _, loc := range locs {
			b.WriteString(text[pos:loc[0]])
			b.WriteString(rw.repl(masked[loc[0]:loc[1]]))
			pos = loc[1]
		}
		b.WriteString(text[pos:])
		text = b.String()
	}
	return text
}

// typeArgs splits "NAME(a,b) SUFFIX" into the name with suffix and the
// numeric arguments.
func typeArgs(decl string) (string, []int) {
	open := strings.IndexByte(decl, '(')
	if open < 0 {
		return decl, nil
	}
	closing := strings.IndexByte(decl[open:], ')')
	if closing < 0 {
		return decl[:open], nil
	}
	var args []int
	for _, a := range strings.Split(decl[open+1:open+closing], ",") {
		a = strings.TrimSpace(a)
		a = strings.TrimSuffix(strings.TrimSuffix(a, " CHAR"), " BYTE")
		if n, err := strconv.Atoi(a); err == nil {
			args = append(args, n)
		}
	}
	name := strings.TrimSpace(decl[:open]) + " " + strings.TrimSpace(decl[open+closing+1:])
	return strings.TrimSpace(name), args
}

func arg(args []int, i, def int) int {
	if i < len(args) {
		return args[i]
	}
	return def
}

// describeColumn maps a declared column type, or the first fetched value
// when the column is an expression, onto a native column description.
func describeColumn(name, decl string, sample any) native.Column {
	col := native.Column{Name: strings.ToUpper(name), Nullable: true}
	decl = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(decl), "_", " "))
	base, args := typeArgs(decl)

	switch {
	case base == "":
		col.Type = inferType(col.Name, sample)
		if col.Type == native.TypeChar {
			if s, ok := sample.(string); ok {
				col.Size = max(len(s), 1)
			} else {
				col.Size = 4000
			}
		}
	case strings.HasPrefix(base, "TIMESTAMP"):
		col.Scale = arg(args, 0, 6)
		switch {
		case strings.Contains(base, "LOCAL TIME ZONE"):
			col.Type = native.TypeTimestampLTZ
		case strings.Contains(base, "TIME ZONE"):
			col.Type = native.TypeTimestampTZ
		default:
			col.Type = native.TypeTimestamp
		}
	case base == "DATE":
		col.Type = native.TypeDate
	case base == "DATETIME":
		col.Type = native.TypeTimestamp
	case strings.HasPrefix(base, "INTERVAL YEAR"):
		col.Type = native.TypeIntervalYM
		col.Precision = 2
	case strings.HasPrefix(base, "INTERVAL DAY"):
		col.Type = native.TypeIntervalDS
		col.Precision, col.Scale = 2, 6
	case base == "BINARY DOUBLE" || base == "DOUBLE" || base == "DOUBLE PRECISION" || base == "REAL":
		col.Type = native.TypeBinaryDouble
	case base == "BINARY FLOAT":
		col.Type = native.TypeBinaryFloat
	case base == "NUMBER" || base == "NUMERIC" || base == "DECIMAL" || base == "DEC" || base == "FLOAT":
		col.Type = native.TypeNumber
		col.Precision = arg(args, 0, 0)
		col.Scale = arg(args, 1, 0)
	case strings.Contains(base, "INT"):
		col.Type = native.TypeNumber
		col.Precision = 38
	case base == "CLOB" || base == "NCLOB" || base == "TEXT":
		col.Type = native.TypeClob
	case base == "BLOB":
		col.Type = native.TypeBlob
	case base == "RAW" || base == "LONG RAW":
		col.Type = native.TypeRaw
		col.Size = arg(args, 0, 2000)
	case base == "ROWID" || base == "UROWID":
		col.Type = native.TypeRowID
	case base == "BOOLEAN":
		col.Type = native.TypeBoolean
	case base == "CHAR" || base == "NCHAR" || base == "CHARACTER":
		col.Type = native.TypeFixedChar
		col.Size = arg(args, 0, 1)
	case base == "LONG":
		col.Type = native.TypeLong
	default:
		col.Type = native.TypeChar
		col.Size = arg(args, 0, 4000)
	}
	return col
}

func inferType(name string, sample any) native.TypeCode {
	switch sample.(type) {
	case int64:
		if name == "ROWID" {
			return native.TypeRowID
		}
		return native.TypeNumber
	case float64:
		return native.TypeNumber
	case bool:
		return native.TypeBoolean
	case []byte:
		return native.TypeRaw
	case time.Time:
		return native.TypeTimestamp
	}
	return native.TypeChar
}

type tableColumn struct {
	CID     int            `db:"cid"`
	Name    string         `db:"name"`
	Type    string         `db:"type"`
	NotNull bool           `db:"notnull"`
	Default sql.NullString `db:"dflt_value"`
	PK      int            `db:"pk"`
}

// notNullColumns returns the upper-cased NOT NULL columns of table.
func (s *session) notNullColumns(ctx context.Context, table string) map[string]bool {
	var cols []tableColumn
	if err := s.conn.SelectContext(ctx, &cols, "SELECT * FROM pragma_table_info(?)", table); err != nil {
		return nil
	}
	out := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c.NotNull || c.PK > 0 {
			out[strings.ToUpper(c.Name)] = true
		}
	}
	return out
}
