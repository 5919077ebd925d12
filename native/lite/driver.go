package lite

import (
	"database/sql"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/internal/nls"
	"github.com/wippyai/oci-runtime/native"
)

// driverName is the database/sql driver the client opens. It is the
// stock SQLite driver with a few Oracle built-ins registered on every
// connection.
const driverName = "sqlite3_oci"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{ConnectHook: registerFuncs})
}

func registerFuncs(conn *sqlite3.SQLiteConn) error {
	funcs := []struct {
		name string
		impl any
		pure bool
	}{
		{"nvl", sqlNvl, true},
		{"to_number", sqlToNumber, true},
		{"to_char", sqlToChar, true},
	}
	for _, f := range funcs {
		if err := conn.RegisterFunc(f.name, f.impl, f.pure); err != nil {
			return err
		}
	}
	return nil
}

func sqlNvl(v, def any) any {
	if v == nil {
		return def
	}
	return v
}

func sqlToNumber(v any, model ...string) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case int64, float64:
		return x, nil
	}
	text := textOf(v)
	m := ""
	if len(model) > 0 {
		m = model[0]
	}
	d, err := nls.ParseNumber(text, m)
	if err != nil {
		return nil, err
	}
	return numberValue(d), nil
}

func sqlToChar(v any, model ...string) (any, error) {
	m := ""
	if len(model) > 0 {
		m = model[0]
	}
	switch x := v.(type) {
	case nil:
		return nil, nil
	case int64, float64:
		d, err := decimalOf(x)
		if err != nil {
			return nil, err
		}
		return nls.FormatNumber(d, m)
	case time.Time:
		if m == "" {
			m = nls.DateModel
		}
		return nls.FormatDateTime(codec.DateTimeOf(x), m, -1)
	case string:
		if m == "" {
			return x, nil
		}
		if dt, _, err := parseStored(x); err == nil {
			return nls.FormatDateTime(dt, m, -1)
		}
		d, err := codec.ParseDecimal(strings.TrimSpace(x))
		if err != nil {
			return nil, native.Errorf(native.CodeInvalidNumber, "invalid number")
		}
		return nls.FormatNumber(d, m)
	}
	return textOf(v), nil
}

// mapError translates SQLite failures into native errors. Errors that are
// already native pass through.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := native.AsError(err); ok {
		return err
	}
	var se sqlite3.Error
	if stderrors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return native.Errorf(native.CodeUniqueViolated, "unique constraint violated (%s)", se.Error())
		case sqlite3.ErrConstraintNotNull:
			return native.Errorf(native.CodeNullInsert, "cannot insert NULL (%s)", se.Error())
		}
	}
	msg := err.Error()
	if i := strings.Index(msg, "ORA-"); i >= 0 && len(msg) >= i+11 && msg[i+9] == ':' {
		if code, cerr := strconv.Atoi(msg[i+4 : i+9]); cerr == nil {
			return native.Errorf(code, "%s", strings.TrimSpace(msg[i+10:]))
		}
	}
	switch {
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such view"):
		return native.Errorf(native.CodeTableNotFound, "table or view does not exist (%s)", msg)
	case strings.Contains(msg, "no such column"):
		return native.Errorf(native.CodeInvalidIdentifier, "invalid identifier (%s)", msg)
	case strings.Contains(msg, "syntax error"), strings.Contains(msg, "incomplete input"):
		return native.Errorf(native.CodeInvalidStatement, "invalid SQL statement (%s)", msg)
	}
	return native.Errorf(native.CodeInternal, "%s", msg)
}
