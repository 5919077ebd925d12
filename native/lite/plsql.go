package lite

import (
	"context"
	"fmt"
	"strings"

	"github.com/wippyai/oci-runtime/native"
)

func plsError(format string, args ...any) error {
	return native.Errorf(native.CodePLSQLCompile, "PL/SQL: %s", fmt.Sprintf(format, args...))
}

// runBlock interprets an anonymous block statement by statement.
func (st *statement) runBlock() error {
	p := st.p
	if p.kind == native.StmtCall {
		return plsError("PLS-00201: identifier must be declared")
	}
	m := p.masked
	begin := findWord(m, "BEGIN", 0, false)
	end := findLastWord(m, "END")
	if begin < 0 || end < begin {
		return plsError("PLS-00103: encountered the symbol \"end-of-file\"")
	}

	cursors := make(map[string]native.Handle)
	if p.kind == native.StmtDeclare {
		decl := findWord(m, "DECLARE", 0, false)
		for _, r := range splitStatements(m, decl+len("DECLARE"), begin) {
			f := strings.Fields(m[r[0]:r[1]])
			if len(f) != 2 || f[1] != "SYS_REFCURSOR" {
				return plsError("PLS-00103: unsupported declaration %q", p.text[r[0]:r[1]])
			}
			cursors[f[0]] = 0
		}
	}

	var total int64
	for _, r := range splitStatements(m, begin+len("BEGIN"), end) {
		st.rowCount = 0
		if err := st.runBlockStatement(r[0], r[1], cursors); err != nil {
			return err
		}
		total += st.rowCount
	}
	st.rowCount = total
	return nil
}

func (st *statement) runBlockStatement(from, to int, cursors map[string]native.Handle) error {
	p := st.p
	m := p.masked[from:to]

	switch {
	case m == "NULL":
		return nil

	case strings.HasPrefix(m, "OPEN ") || strings.HasPrefix(m, "OPEN\n") || strings.HasPrefix(m, "OPEN\t"):
		forAt := findWord(p.masked[:to], "FOR", from, true)
		if forAt < 0 {
			return plsError("PLS-00103: expected FOR after OPEN")
		}
		h, err := st.openCursor(forAt+len("FOR"), to)
		if err != nil {
			return err
		}
		target := strings.TrimSpace(p.masked[from+len("OPEN") : forAt])
		if strings.HasPrefix(target, ":") {
			marks := p.marksIn(from, forAt)
			if len(marks) != 1 {
				return plsError("PLS-00103: bad cursor variable %s", target)
			}
			st.binds[marks[0].slot].PutHandle(h)
			return nil
		}
		if _, ok := cursors[target]; !ok {
			return plsError("PLS-00201: identifier '%s' must be declared", target)
		}
		cursors[target] = h
		st.owned = append(st.owned, h)
		return nil

	case strings.HasPrefix(m, "DBMS_SQL.RETURN_RESULT"):
		open := strings.IndexByte(m, '(')
		closing := strings.LastIndexByte(m, ')')
		if open < 0 || closing < open {
			return plsError("PLS-00306: wrong number or types of arguments in call to 'RETURN_RESULT'")
		}
		name := strings.TrimSpace(m[open+1 : closing])
		h, ok := cursors[name]
		if !ok {
			return plsError("PLS-00201: identifier '%s' must be declared", name)
		}
		if h == 0 {
			return native.Errorf(native.CodeInvalidCursor, "invalid cursor")
		}
		st.results = append(st.results, h)
		return nil
	}

	if marks := p.marksIn(from, to); len(marks) > 0 && marks[0].start == from {
		rest := strings.TrimLeft(p.masked[marks[0].end:to], " \t\r\n")
		if strings.HasPrefix(rest, ":=") {
			exprFrom := to - len(rest) + len(":=")
			return st.assign(marks[0], exprFrom, to)
		}
	}

	switch k := classify(m); {
	case k == native.StmtSelect:
		return st.selectInto(from, to)
	case k.IsDML():
		if err := st.sess.beginTx(); err != nil {
			return err
		}
		return st.exec(from, to)
	}
	return plsError("PLS-00103: unsupported statement %q", p.text[from:to])
}

// assign evaluates text[from:to] as a SQL expression into the target.
func (st *statement) assign(target mark, from, to int) error {
	args, err := st.args(st.p.marksIn(from, to))
	if err != nil {
		return err
	}
	row := st.sess.conn.QueryRowxContext(context.Background(), "SELECT "+st.p.rewrite(from, to), args...)
	vals, err := row.SliceScan()
	if err != nil {
		return mapError(err)
	}
	return st.store(st.binds[target.slot], vals[0])
}

// selectInto runs SELECT list INTO targets FROM ..., which must produce
// exactly one row.
func (st *statement) selectInto(from, to int) error {
	p := st.p
	into := findWord(p.masked[:to], "INTO", from, true)
	if into < 0 {
		return plsError("PLS-00428: an INTO clause is expected in this SELECT statement")
	}
	tail := findWord(p.masked[:to], "FROM", into, true)
	if tail < 0 {
		tail = to
	}
	targets := p.marksIn(into, tail)

	in := append(p.marksIn(from, into), p.marksIn(tail, to)...)
	args, err := st.args(in)
	if err != nil {
		return err
	}
	sql := p.rewrite(from, into) + " " + p.rewrite(tail, to)
	rows, err := st.sess.conn.QueryxContext(context.Background(), sql, args...)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return mapError(err)
		}
		return native.Errorf(native.CodeNoDataFound, "no data found")
	}
	vals, err := rows.SliceScan()
	if err != nil {
		return mapError(err)
	}
	if rows.Next() {
		return native.Errorf(native.CodeTooManyRows, "exact fetch returns more than requested number of rows")
	}
	if len(vals) != len(targets) {
		return native.Errorf(native.CodeNotEnoughValues, "not enough values")
	}
	for i, m := range targets {
		if err := st.store(st.binds[m.slot], vals[i]); err != nil {
			return err
		}
	}
	st.rowCount = 1
	return nil
}

// openCursor executes text[from:to] as a query on a new statement handle
// owned by st.
func (st *statement) openCursor(from, to int) (native.Handle, error) {
	args, err := st.args(st.p.marksIn(from, to))
	if err != nil {
		return 0, err
	}
	sql := st.p.rewrite(from, to)
	cur := &statement{c: st.c, sess: st.sess, p: parse(sql)}
	if cur.p.kind != native.StmtSelect {
		return 0, plsError("PLS-00103: OPEN FOR expects a query")
	}
	cur.h = st.c.put(kindStatement, st.h, cur)
	if err := cur.query(sql, args); err != nil {
		_ = st.c.HandleFree(cur.h)
		return 0, err
	}
	cur.executed = true
	return cur.h, nil
}
