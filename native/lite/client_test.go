package lite

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/native"
)

type fixture struct {
	c   *Client
	env native.Handle
	svc native.Handle
	dsn string
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	c := New(opts...)
	env, err := c.EnvCreate(native.ModeThreaded)
	if err != nil {
		t.Fatal(err)
	}
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	svc, err := c.Logon(env, dsn, "scott", "tiger")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.HandleFree(env) })
	return &fixture{c: c, env: env, svc: svc, dsn: dsn}
}

func (f *fixture) run(t *testing.T, svc native.Handle, text string, binds ...*native.Buffer) (native.Handle, error) {
	t.Helper()
	st, err := f.c.StmtPrepare(svc, text)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range binds {
		if err := f.c.BindByPos(st, i+1, b); err != nil {
			t.Fatal(err)
		}
	}
	return st, f.c.StmtExecute(st, 1)
}

func (f *fixture) exec(t *testing.T, text string, binds ...*native.Buffer) native.Handle {
	t.Helper()
	st, err := f.run(t, f.svc, text, binds...)
	if err != nil {
		t.Fatalf("%s: %v", text, err)
	}
	return st
}

// rows fetches every row of an executed query as text.
func (f *fixture) rows(t *testing.T, st native.Handle) [][]string {
	t.Helper()
	cols, err := f.c.Describe(st)
	if err != nil {
		t.Fatal(err)
	}
	bufs := make([]*native.Buffer, len(cols))
	for i := range cols {
		bufs[i] = native.NewBuffer(native.TypeChar, 4000)
		if err := f.c.DefineByPos(st, i+1, bufs[i]); err != nil {
			t.Fatal(err)
		}
	}
	var out [][]string
	for {
		ok, err := f.c.StmtFetch(st)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			return out
		}
		row := make([]string, len(bufs))
		for i, b := range bufs {
			if b.IsNull() {
				row[i] = "<null>"
			} else {
				row[i] = string(b.Bytes())
			}
		}
		out = append(out, row)
	}
}

func (f *fixture) query(t *testing.T, text string, binds ...*native.Buffer) [][]string {
	t.Helper()
	return f.rows(t, f.exec(t, text, binds...))
}

func inBuf(t native.TypeCode, b []byte) *native.Buffer {
	buf := &native.Buffer{Type: t}
	buf.Set(b)
	return buf
}

func numBuf(t *testing.T, s string) *native.Buffer {
	t.Helper()
	b, err := codec.NumberFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return inBuf(native.TypeNumber, b)
}

func textBuf(s string) *native.Buffer {
	return inBuf(native.TypeChar, []byte(s))
}

func outBuf(t native.TypeCode, size int) *native.Buffer {
	b := native.NewBuffer(t, size)
	b.Dir = native.DirOut
	return b
}

func codeOf(err error) int {
	if e, ok := native.AsError(err); ok {
		return e.Code
	}
	return 0
}

func TestClient_InsertSelect(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "CREATE TABLE emp (id NUMBER(10) NOT NULL, name VARCHAR2(20), hired DATE)")

	hired, err := codec.EncodeDate(codec.DateTime{Year: 1980, Month: 12, Day: 17})
	if err != nil {
		t.Fatal(err)
	}
	ins := f.exec(t, "INSERT INTO emp VALUES (:id, :name, :hired)",
		numBuf(t, "7369"), textBuf("SMITH"), inBuf(native.TypeDate, hired))
	if n, _ := f.c.RowCount(ins); n != 1 {
		t.Fatalf("RowCount = %d, want 1", n)
	}
	if err := f.c.Commit(f.svc); err != nil {
		t.Fatal(err)
	}

	st := f.exec(t, "SELECT id, name, hired FROM emp ORDER BY id")
	cols, err := f.c.Describe(st)
	if err != nil {
		t.Fatal(err)
	}
	want := []native.Column{
		{Name: "ID", Type: native.TypeNumber, Precision: 10},
		{Name: "NAME", Type: native.TypeChar, Size: 20, Nullable: true},
		{Name: "HIRED", Type: native.TypeDate, Nullable: true},
	}
	if len(cols) != len(want) {
		t.Fatalf("Describe = %+v", cols)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("column %d = %+v, want %+v", i, cols[i], want[i])
		}
	}

	id := native.NewBuffer(native.TypeNumber, codec.NumberSize)
	name := native.NewBuffer(native.TypeChar, 20)
	date := native.NewBuffer(native.TypeDate, 7)
	for i, b := range []*native.Buffer{id, name, date} {
		if err := f.c.DefineByPos(st, i+1, b); err != nil {
			t.Fatal(err)
		}
	}
	ok, err := f.c.StmtFetch(st)
	if err != nil || !ok {
		t.Fatalf("fetch = %v, %v", ok, err)
	}
	if v, err := codec.NumberToInt64(id.Bytes()); err != nil || v != 7369 {
		t.Fatalf("id = %d, %v", v, err)
	}
	if got := string(name.Bytes()); got != "SMITH" {
		t.Fatalf("name = %q", got)
	}
	dt, err := codec.DecodeDate(date.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if dt.Year != 1980 || dt.Month != 12 || dt.Day != 17 || dt.Hour != 0 {
		t.Fatalf("hired = %+v", dt)
	}

	if ok, err := f.c.StmtFetch(st); ok || err != nil {
		t.Fatalf("second fetch = %v, %v", ok, err)
	}
	if ok, err := f.c.StmtFetch(st); ok || err != nil {
		t.Fatalf("fetch after exhaustion = %v, %v", ok, err)
	}
	if n, _ := f.c.RowCount(st); n != 1 {
		t.Fatalf("RowCount = %d, want 1", n)
	}
}

func TestClient_DuplicatePlaceholders(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "CREATE TABLE t (a NUMBER, b NUMBER)")

	st, err := f.c.StmtPrepare(f.svc, "INSERT INTO t VALUES (:x, :x)")
	if err != nil {
		t.Fatal(err)
	}
	info, err := f.c.BindInfo(st)
	if err != nil {
		t.Fatal(err)
	}
	if len(info) != 2 || info[0].Duplicate || !info[1].Duplicate {
		t.Fatalf("BindInfo = %+v", info)
	}
	if err := f.c.BindByPos(st, 2, numBuf(t, "1")); codeOf(err) != native.CodeIllegalVariable {
		t.Fatalf("bind past last slot: %v", err)
	}
	if err := f.c.BindByPos(st, 1, numBuf(t, "5")); err != nil {
		t.Fatal(err)
	}
	if err := f.c.StmtExecute(st, 1); err != nil {
		t.Fatal(err)
	}

	rows := f.query(t, "SELECT a, b FROM t")
	if len(rows) != 1 || rows[0][0] != "5" || rows[0][1] != "5" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestClient_NotAllBound(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, f.svc, "SELECT :a FROM dual")
	if codeOf(err) != native.CodeNotAllBound {
		t.Fatalf("err = %v, want ORA-01008", err)
	}
}

func TestClient_Returning(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "CREATE TABLE t (id INTEGER PRIMARY KEY, name VARCHAR2(10))")

	id := outBuf(native.TypeNumber, codec.NumberSize)
	st := f.exec(t, "INSERT INTO t (name) VALUES (:n) RETURNING id INTO :id", textBuf("a"), id)
	if v, err := codec.NumberToInt64(id.Bytes()); err != nil || v != 1 {
		t.Fatalf("returned id = %d, %v", v, err)
	}
	if n, _ := f.c.RowCount(st); n != 1 {
		t.Fatalf("RowCount = %d", n)
	}

	name := outBuf(native.TypeChar, 10)
	f.exec(t, "UPDATE t SET name = 'b' WHERE id = 99 RETURNING name INTO :n", name)
	if !name.IsNull() {
		t.Fatalf("no-row RETURNING left %q", name.Bytes())
	}
}

func TestClient_Block(t *testing.T) {
	f := newFixture(t)
	x := outBuf(native.TypeNumber, codec.NumberSize)
	f.exec(t, "BEGIN :x := :y * 2; END;", x, numBuf(t, "21"))
	if v, err := codec.NumberToInt64(x.Bytes()); err != nil || v != 42 {
		t.Fatalf(":x = %d, %v", v, err)
	}
}

func TestClient_BlockDML(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "CREATE TABLE t (a NUMBER)")
	st := f.exec(t, "BEGIN INSERT INTO t VALUES (1); INSERT INTO t VALUES (2); UPDATE t SET a = a + 1; END;")
	if n, _ := f.c.RowCount(st); n != 4 {
		t.Fatalf("RowCount = %d, want 4", n)
	}
}

func TestClient_SelectInto(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "CREATE TABLE emp (id NUMBER, name VARCHAR2(20))")
	f.exec(t, "INSERT INTO emp VALUES (1, 'KING')")
	f.exec(t, "INSERT INTO emp VALUES (2, 'FORD')")
	f.exec(t, "INSERT INTO emp VALUES (2, 'SCOTT')")

	name := outBuf(native.TypeChar, 20)
	f.exec(t, "BEGIN SELECT name INTO :n FROM emp WHERE id = :id; END;", name, numBuf(t, "1"))
	if got := string(name.Bytes()); got != "KING" {
		t.Fatalf("name = %q", got)
	}

	_, err := f.run(t, f.svc, "BEGIN SELECT name INTO :n FROM emp WHERE id = :id; END;", name, numBuf(t, "3"))
	if codeOf(err) != native.CodeNoDataFound {
		t.Fatalf("no rows: %v", err)
	}
	_, err = f.run(t, f.svc, "BEGIN SELECT name INTO :n FROM emp WHERE id = :id; END;", name, numBuf(t, "2"))
	if codeOf(err) != native.CodeTooManyRows {
		t.Fatalf("two rows: %v", err)
	}
}

func TestClient_ImplicitResults(t *testing.T) {
	f := newFixture(t)
	st := f.exec(t, `DECLARE
  c SYS_REFCURSOR;
BEGIN
  OPEN c FOR SELECT 1 AS n FROM dual;
  DBMS_SQL.RETURN_RESULT(c);
END;`)

	h, err := f.c.NextResult(st)
	if err != nil || h == 0 {
		t.Fatalf("NextResult = %d, %v", h, err)
	}
	defer f.c.HandleFree(h)
	rows := f.rows(t, h)
	if len(rows) != 1 || rows[0][0] != "1" {
		t.Fatalf("rows = %v", rows)
	}
	if h, err := f.c.NextResult(st); h != 0 || err != nil {
		t.Fatalf("second NextResult = %d, %v", h, err)
	}
}

func TestClient_CursorBind(t *testing.T) {
	f := newFixture(t)
	cur := outBuf(native.TypeCursor, native.HandleSize)
	f.exec(t, "BEGIN OPEN :c FOR SELECT 'x' AS v FROM dual; END;", cur)
	h := cur.Handle()
	if h == 0 {
		t.Fatal("cursor not returned")
	}
	rows := f.rows(t, h)
	if len(rows) != 1 || rows[0][0] != "x" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestClient_Transactions(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "CREATE TABLE t (a NUMBER)")

	f.exec(t, "INSERT INTO t VALUES (1)")
	if err := f.c.Rollback(f.svc); err != nil {
		t.Fatal(err)
	}
	if rows := f.query(t, "SELECT COUNT(*) FROM t"); rows[0][0] != "0" {
		t.Fatalf("after rollback: %v", rows)
	}

	f.exec(t, "INSERT INTO t VALUES (1)")
	if err := f.c.Commit(f.svc); err != nil {
		t.Fatal(err)
	}

	other, err := f.c.Logon(f.env, f.dsn, "scott", "tiger")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.run(t, other, "INSERT INTO t VALUES (2)"); err != nil {
		t.Fatal(err)
	}
	if err := f.c.Logoff(other); err != nil {
		t.Fatal(err)
	}
	if rows := f.query(t, "SELECT COUNT(*) FROM t"); rows[0][0] != "1" {
		t.Fatalf("after logoff: %v", rows)
	}
	if err := f.c.Ping(other); codeOf(err) != native.CodeNotConnected {
		t.Fatalf("ping after logoff: %v", err)
	}
}

func TestClient_Errors(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "CREATE TABLE t (id NUMBER PRIMARY KEY, name VARCHAR2(10) NOT NULL)")
	f.exec(t, "INSERT INTO t VALUES (1, 'a')")

	tests := []struct {
		text string
		code int
	}{
		{"SELECT * FROM missing", native.CodeTableNotFound},
		{"SELECT nope FROM t", native.CodeInvalidIdentifier},
		{"SELEC 1", native.CodeInvalidStatement},
		{"INSERT INTO t VALUES (1, 'b')", native.CodeUniqueViolated},
		{"INSERT INTO t VALUES (2, NULL)", native.CodeNullInsert},
		{"SELECT to_number('abc') FROM dual", native.CodeInvalidNumber},
		{"BEGIN frobnicate; END;", native.CodePLSQLCompile},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if _, err := f.run(t, f.svc, tt.text); codeOf(err) != tt.code {
				t.Fatalf("err = %v, want code %d", err, tt.code)
			}
		})
	}
}

func TestClient_Sequence(t *testing.T) {
	f := newFixture(t)
	st, err := f.c.StmtPrepare(f.svc, "SELECT 1 FROM dual")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.c.Describe(st); codeOf(err) != native.CodeNotExecuted {
		t.Fatalf("Describe before execute: %v", err)
	}
	if _, err := f.c.StmtFetch(st); codeOf(err) != native.CodeNotExecuted {
		t.Fatalf("fetch before execute: %v", err)
	}

	f.exec(t, "CREATE TABLE t (a NUMBER)")
	ins := f.exec(t, "INSERT INTO t VALUES (1)")
	if _, err := f.c.StmtFetch(ins); codeOf(err) != native.CodeFetchOutOfSequence {
		t.Fatalf("fetch on insert: %v", err)
	}
	if n, _ := f.c.RowCount(ins); n != 1 {
		t.Fatalf("RowCount = %d", n)
	}
}

func TestClient_Datetimes(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "CREATE TABLE t (d DATE, ts TIMESTAMP(9), tz TIMESTAMP WITH TIME ZONE)")

	bc := codec.DateTime{Year: -44, Month: 3, Day: 15, Hour: 12}
	d, err := codec.EncodeDate(bc)
	if err != nil {
		t.Fatal(err)
	}
	tsv := codec.DateTime{Year: 2024, Month: 2, Day: 29, Hour: 23, Minute: 59, Second: 59, Nanosecond: 123456789}
	ts, err := codec.EncodeTimestamp(tsv)
	if err != nil {
		t.Fatal(err)
	}
	tzv := tsv
	tzv.Offset = 330
	tz, err := codec.EncodeTimestampTZ(tzv)
	if err != nil {
		t.Fatal(err)
	}
	f.exec(t, "INSERT INTO t VALUES (:d, :ts, :tz)",
		inBuf(native.TypeDate, d), inBuf(native.TypeTimestamp, ts), inBuf(native.TypeTimestampTZ, tz))

	st := f.exec(t, "SELECT d, ts, tz FROM t")
	bufs := []*native.Buffer{
		native.NewBuffer(native.TypeDate, 7),
		native.NewBuffer(native.TypeTimestamp, 11),
		native.NewBuffer(native.TypeTimestampTZ, 13),
	}
	for i, b := range bufs {
		if err := f.c.DefineByPos(st, i+1, b); err != nil {
			t.Fatal(err)
		}
	}
	if ok, err := f.c.StmtFetch(st); !ok || err != nil {
		t.Fatalf("fetch = %v, %v", ok, err)
	}

	gotD, err := codec.DecodeDate(bufs[0].Bytes())
	if err != nil || gotD.Year != -44 || gotD.Month != 3 || gotD.Day != 15 || gotD.Hour != 12 {
		t.Fatalf("DATE = %+v, %v", gotD, err)
	}
	gotTS, err := codec.DecodeTimestamp(bufs[1].Bytes())
	if err != nil || gotTS != tsv {
		t.Fatalf("TIMESTAMP = %+v, %v", gotTS, err)
	}
	gotTZ, err := codec.DecodeTimestampTZ(bufs[2].Bytes())
	if err != nil || gotTZ.Offset != 330 || gotTZ.Hour != 23 || gotTZ.Nanosecond != 123456789 {
		t.Fatalf("TIMESTAMP WITH TIME ZONE = %+v, %v", gotTZ, err)
	}
}

func TestClient_Lob(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "CREATE TABLE docs (body CLOB)")
	text := strings.Repeat("héllo ", 100)
	f.exec(t, "INSERT INTO docs VALUES (:b)", textBuf(text))

	st := f.exec(t, "SELECT body FROM docs")
	loc := native.NewBuffer(native.TypeClob, native.HandleSize)
	if err := f.c.DefineByPos(st, 1, loc); err != nil {
		t.Fatal(err)
	}
	if ok, err := f.c.StmtFetch(st); !ok || err != nil {
		t.Fatalf("fetch = %v, %v", ok, err)
	}
	h := loc.Handle()
	n, err := f.c.LobLength(h)
	if err != nil || n != int64(len(text)) {
		t.Fatalf("LobLength = %d, %v", n, err)
	}

	var sb strings.Builder
	chunk := make([]byte, 64)
	for off := int64(0); ; {
		k, err := f.c.LobRead(h, off, chunk)
		if err != nil {
			t.Fatal(err)
		}
		if k == 0 {
			break
		}
		sb.Write(chunk[:k])
		off += int64(k)
	}
	if sb.String() != text {
		t.Fatalf("LobRead mismatch: %q", sb.String())
	}
	if _, err := f.c.LobRead(h, n+1, chunk); codeOf(err) != native.CodeInvalidHandle {
		t.Fatalf("read past end: %v", err)
	}
}

func TestClient_HandleFree(t *testing.T) {
	c := New()
	env, err := c.EnvCreate(native.ModeDefault)
	if err != nil {
		t.Fatal(err)
	}
	svc, err := c.Logon(env, "file:"+uuid.NewString()+"?mode=memory&cache=shared", "u", "p")
	if err != nil {
		t.Fatal(err)
	}
	st, err := c.StmtPrepare(svc, "SELECT 1 FROM dual")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.HandleAlloc(env, native.HandleError); err != nil {
		t.Fatal(err)
	}
	if n := c.Open(); n != 4 {
		t.Fatalf("Open = %d, want 4", n)
	}

	if err := c.HandleFree(env); err != nil {
		t.Fatal(err)
	}
	if n := c.Open(); n != 0 {
		t.Fatalf("Open after free = %d", n)
	}
	if _, err := c.StmtType(st); codeOf(err) != native.CodeInvalidHandle {
		t.Fatalf("freed statement: %v", err)
	}
	if err := c.HandleFree(env); codeOf(err) != native.CodeInvalidHandle {
		t.Fatalf("double free: %v", err)
	}
	if _, err := c.HandleAlloc(env, native.HandleError); codeOf(err) != native.CodeInvalidHandle {
		t.Fatalf("alloc under freed parent: %v", err)
	}
}

func TestClient_Logon(t *testing.T) {
	f := newFixture(t, WithVersion("19.3.0.0.0"))
	v, err := f.c.ServerVersion(f.svc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(v, "19.3.0.0.0 (SQLite 3.") {
		t.Fatalf("ServerVersion = %q", v)
	}
	if _, err := f.c.Logon(f.env, f.dsn, "", ""); codeOf(err) != native.CodeInvalidLogon {
		t.Fatalf("empty user: %v", err)
	}
	if err := f.c.Ping(f.svc); err != nil {
		t.Fatal(err)
	}
}
