package lite

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/wippyai/oci-runtime/native"
)

type statement struct {
	c    *Client
	h    native.Handle
	sess *session
	p    *parsed

	binds    []*native.Buffer
	executed bool
	rowCount int64

	rows    *sqlx.Rows
	cols    []native.Column
	defines []*native.Buffer
	peek    []any
	hasPeek bool

	// owned are cursors opened by the last execute that nobody claimed.
	owned   []native.Handle
	results []native.Handle
}

// StmtPrepare parses text. Syntax errors surface at execute.
func (c *Client) StmtPrepare(svc native.Handle, text string) (native.Handle, error) {
	s, err := c.session(svc)
	if err != nil {
		return 0, err
	}
	p := parse(text)
	st := &statement{c: c, sess: s, p: p, binds: make([]*native.Buffer, p.slots)}
	st.h = c.put(kindStatement, svc, st)
	c.log.Debug("statement prepared",
		zap.Uint64("handle", uint64(st.h)),
		zap.Stringer("type", p.kind),
		zap.Int("slots", p.slots))
	return st.h, nil
}

// StmtType reports the statement classification.
func (c *Client) StmtType(stmt native.Handle) (native.StmtType, error) {
	st, err := c.statement(stmt)
	if err != nil {
		return 0, err
	}
	return st.p.kind, nil
}

// BindInfo reports the placeholder occurrences.
func (c *Client) BindInfo(stmt native.Handle) ([]native.BindInfo, error) {
	st, err := c.statement(stmt)
	if err != nil {
		return nil, err
	}
	return st.p.bindInfo(), nil
}

// BindByPos binds buf to a slot.
func (c *Client) BindByPos(stmt native.Handle, pos int, buf *native.Buffer) error {
	st, err := c.statement(stmt)
	if err != nil {
		return err
	}
	if pos < 1 || pos > len(st.binds) {
		return native.Errorf(native.CodeIllegalVariable, "illegal variable name/number")
	}
	st.binds[pos-1] = buf
	return nil
}

// StmtExecute runs the statement with the current binds.
func (c *Client) StmtExecute(stmt native.Handle, iters int) error {
	st, err := c.statement(stmt)
	if err != nil {
		return err
	}
	if st.sess.closed {
		return native.Errorf(native.CodeNotConnected, "not connected to ORACLE")
	}
	st.reset()
	for _, b := range st.binds {
		if b == nil {
			return native.Errorf(native.CodeNotAllBound, "not all variables bound")
		}
	}

	switch k := st.p.kind; {
	case k == native.StmtSelect:
		err = st.runQuery()
	case k.IsPLSQL():
		err = st.runBlock()
	case k.IsDML():
		err = st.runDML()
	case k == native.StmtCreate || k == native.StmtDrop || k == native.StmtAlter:
		err = st.runDDL()
	default:
		err = st.exec(0, len(st.p.text))
	}
	if err != nil {
		st.reset()
		return mapError(err)
	}
	st.executed = true
	c.log.Debug("statement executed",
		zap.Uint64("handle", uint64(st.h)),
		zap.Stringer("type", st.p.kind),
		zap.Int64("rows", st.rowCount))
	return nil
}

// RowCount reports rows affected, or rows fetched so far for queries.
func (c *Client) RowCount(stmt native.Handle) (int64, error) {
	st, err := c.statement(stmt)
	if err != nil {
		return 0, err
	}
	return st.rowCount, nil
}

// Describe returns the select-list of an executed query.
func (c *Client) Describe(stmt native.Handle) ([]native.Column, error) {
	st, err := c.statement(stmt)
	if err != nil {
		return nil, err
	}
	if !st.executed {
		return nil, native.Errorf(native.CodeNotExecuted, "statement handle not executed")
	}
	return st.cols, nil
}

// DefineByPos sets the fetch buffer of a column.
func (c *Client) DefineByPos(stmt native.Handle, pos int, buf *native.Buffer) error {
	st, err := c.statement(stmt)
	if err != nil {
		return err
	}
	if !st.executed {
		return native.Errorf(native.CodeNotExecuted, "statement handle not executed")
	}
	if pos < 1 || pos > len(st.cols) {
		return native.Errorf(native.CodeNotInSelectList, "variable not in select list")
	}
	st.defines[pos-1] = buf
	return nil
}

// StmtFetch fetches the next row into the define buffers.
func (c *Client) StmtFetch(stmt native.Handle) (bool, error) {
	st, err := c.statement(stmt)
	if err != nil {
		return false, err
	}
	if !st.executed {
		return false, native.Errorf(native.CodeNotExecuted, "statement handle not executed")
	}
	if st.cols == nil {
		return false, native.Errorf(native.CodeFetchOutOfSequence, "fetch out of sequence")
	}
	return st.fetch()
}

// NextResult hands out the next implicit result.
func (c *Client) NextResult(stmt native.Handle) (native.Handle, error) {
	st, err := c.statement(stmt)
	if err != nil {
		return 0, err
	}
	if len(st.results) == 0 {
		return 0, nil
	}
	h := st.results[0]
	st.results = st.results[1:]
	st.disown(h)
	return h, nil
}

func (st *statement) disown(h native.Handle) {
	for i, o := range st.owned {
		if o == h {
			st.owned = append(st.owned[:i], st.owned[i+1:]...)
			return
		}
	}
}

func (st *statement) closeRows() {
	if st.rows == nil {
		return
	}
	if err := st.rows.Close(); err != nil {
		st.c.log.Warn("closing result set failed", zap.Uint64("handle", uint64(st.h)), zap.Error(err))
	}
	st.rows = nil
	st.peek, st.hasPeek = nil, false
}

// reset discards the state of the previous execution.
func (st *statement) reset() {
	st.closeRows()
	for _, h := range st.owned {
		if err := st.c.HandleFree(h); err != nil {
			st.c.log.Warn("freeing unclaimed cursor failed", zap.Uint64("handle", uint64(h)), zap.Error(err))
		}
	}
	st.owned, st.results = nil, nil
	st.cols, st.defines = nil, nil
	st.executed = false
	st.rowCount = 0
}

func (st *statement) close() {
	st.closeRows()
}

// args converts the binds of marks into SQLite arguments.
func (st *statement) args(marks []mark) ([]any, error) {
	out := make([]any, len(marks))
	for i, m := range marks {
		v, err := argOf(st.binds[m.slot])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// storedArgs is args for statements that write to tables. See
// checkStored.
func (st *statement) storedArgs(marks []mark) ([]any, error) {
	out, err := st.args(marks)
	if err != nil {
		return nil, err
	}
	for i, m := range marks {
		if err := checkStored(st.binds[m.slot], out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (st *statement) runQuery() error {
	args, err := st.args(st.p.marks)
	if err != nil {
		return err
	}
	return st.query(st.p.rewrite(0, len(st.p.text)), args)
}

// query runs sql and reads one row ahead so expression columns can be
// typed from their first value.
func (st *statement) query(sql string, args []any) error {
	ctx := context.Background()
	rows, err := st.sess.conn.QueryxContext(ctx, sql, args...)
	if err != nil {
		return mapError(err)
	}
	st.rows = rows

	names, err := rows.Columns()
	if err != nil {
		return mapError(err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return mapError(err)
	}
	if rows.Next() {
		if st.peek, err = rows.SliceScan(); err != nil {
			return mapError(err)
		}
		st.hasPeek = true
	} else if err := rows.Err(); err != nil {
		return mapError(err)
	}

	var notNull map[string]bool
	if table := sourceTable(st.p.masked, st.p.text); table != "" {
		notNull = st.sess.notNullColumns(ctx, table)
	}
	st.cols = make([]native.Column, len(names))
	for i, name := range names {
		var sample any
		if st.hasPeek {
			sample = st.peek[i]
		}
		col := describeColumn(name, types[i].DatabaseTypeName(), sample)
		if notNull[col.Name] || col.Name == "ROWID" {
			col.Nullable = false
		}
		st.cols[i] = col
	}
	st.defines = make([]*native.Buffer, len(names))
	st.rowCount = 0
	return nil
}

func (st *statement) fetch() (bool, error) {
	var vals []any
	switch {
	case st.hasPeek:
		vals = st.peek
		st.peek, st.hasPeek = nil, false
	case st.rows == nil:
		return false, nil
	case st.rows.Next():
		var err error
		if vals, err = st.rows.SliceScan(); err != nil {
			return false, mapError(err)
		}
	default:
		err := st.rows.Err()
		st.closeRows()
		st.c.log.Debug("fetch complete", zap.Uint64("handle", uint64(st.h)), zap.Int64("rows", st.rowCount))
		return false, mapError(err)
	}

	for i, buf := range st.defines {
		if buf == nil {
			continue
		}
		if err := st.store(buf, vals[i]); err != nil {
			return false, err
		}
	}
	st.rowCount++
	return true, nil
}

// exec runs text[from:to] as a statement without results.
func (st *statement) exec(from, to int) error {
	args, err := st.storedArgs(st.p.marksIn(from, to))
	if err != nil {
		return err
	}
	res, err := st.sess.conn.ExecContext(context.Background(), st.p.rewrite(from, to), args...)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err == nil {
		st.rowCount += n
	}
	return nil
}

func (st *statement) runDML() error {
	if err := st.sess.beginTx(); err != nil {
		return err
	}
	ret, ok := findReturning(st.p.masked, 0, len(st.p.text))
	if !ok {
		return st.exec(0, len(st.p.text))
	}

	args, err := st.storedArgs(st.p.marksIn(0, ret.into))
	if err != nil {
		return err
	}
	targets := st.p.marksIn(ret.into, len(st.p.text))
	sql := st.p.rewrite(0, ret.start) + " RETURNING " + st.p.rewrite(ret.exprs, ret.into)
	rows, err := st.sess.conn.QueryxContext(context.Background(), sql, args...)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	var n int64
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return mapError(err)
		}
		if n == 0 {
			if len(vals) > len(targets) {
				return native.Errorf(native.CodeNotEnoughValues, "not enough values")
			}
			if len(vals) < len(targets) {
				return native.Errorf(native.CodeTooManyValues, "too many values")
			}
			for i, m := range targets {
				if err := st.store(st.binds[m.slot], vals[i]); err != nil {
					return err
				}
			}
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return mapError(err)
	}
	if n == 0 {
		for _, m := range targets {
			st.binds[m.slot].SetNull()
		}
	}
	st.rowCount = n
	return nil
}

// runDDL commits pending work first, as DDL does.
func (st *statement) runDDL() error {
	if err := st.sess.endTx("COMMIT"); err != nil {
		return err
	}
	text := st.p.text
	if st.p.kind != native.StmtDrop {
		text = rewriteDDL(text)
	}
	if _, err := st.sess.conn.ExecContext(context.Background(), text); err != nil {
		return mapError(err)
	}
	return nil
}
