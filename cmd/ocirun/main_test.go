package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wippyai/oci-runtime/native/lite"
	"github.com/wippyai/oci-runtime/oci"
)

func TestParseProfiles(t *testing.T) {
	src := `
profile "dev" {
  dsn          = "file:dev.db"
  user         = "scott"
  password     = "tiger"
  handle_limit = 64
  time_zone    = "UTC"
}

profile "ci" {
  dsn = "file:ci?mode=memory"
}
`
	profiles, err := parseProfiles(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	dev := profiles["dev"]
	if dev == nil || dev.Name != "dev" || dev.DSN != "file:dev.db" || dev.User != "scott" ||
		dev.Password != "tiger" || dev.HandleLimit != 64 {
		t.Fatalf("dev = %+v", dev)
	}
	if loc, err := dev.location(); err != nil || loc.String() != "UTC" {
		t.Fatalf("location = %v, %v", loc, err)
	}
	if ci := profiles["ci"]; ci == nil || ci.User != "" || ci.HandleLimit != 0 {
		t.Fatalf("ci = %+v", ci)
	}
}

func TestParseProfiles_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown top-level", `server { port = 1 }`, "invalid key: server"},
		{"unknown field", `profile "a" { host = "x" }`, "invalid key: host"},
		{"duplicate", "profile \"a\" {}\nprofile \"a\" {}", "defined more than once"},
		{"syntax", `profile "a" {`, "error parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProfiles(strings.NewReader(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestResolveProfile_FlagsWin(t *testing.T) {
	opts := &options{profile: profile{User: "adams"}}
	if err := resolveProfile(opts); err != nil {
		t.Fatal(err)
	}
	if opts.User != "adams" {
		t.Fatalf("User = %q", opts.User)
	}

	opts.profileName = "missing"
	opts.configFile = t.TempDir() + "/none.hcl"
	if err := resolveProfile(opts); err == nil {
		t.Fatal("missing config accepted")
	}
}

func TestReadStatements(t *testing.T) {
	input := `CREATE TABLE t (a NUMBER);
INSERT INTO t VALUES (1);
BEGIN
  INSERT INTO t VALUES (2);
END;
/
SELECT a
  FROM t
/
`
	got, err := readStatements(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"CREATE TABLE t (a NUMBER)",
		"INSERT INTO t VALUES (1)",
		"BEGIN\n  INSERT INTO t VALUES (2);\nEND;",
		"SELECT a\n  FROM t",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d statements: %q", len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("statement %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExecuteAndPrint(t *testing.T) {
	env, err := oci.New(lite.New())
	if err != nil {
		t.Fatal(err)
	}
	defer env.Close()
	conn, err := env.Connect("file:"+uuid.NewString()+"?mode=memory&cache=shared", "scott", "tiger")
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	for _, text := range []string{
		"CREATE TABLE emp (id NUMBER, name VARCHAR2(20), note VARCHAR2(20))",
		"INSERT INTO emp VALUES (1, 'KING', NULL)",
		"INSERT INTO emp VALUES (2, 'A\tB', 'x')",
		"SELECT id, name, note FROM emp ORDER BY id",
	} {
		res, err := execute(conn, text)
		if err != nil {
			t.Fatalf("%s: %v", text, err)
		}
		if err := printResult(&out, res, false); err != nil {
			t.Fatal(err)
		}
	}

	want := "Statement processed.\n" +
		"1 row affected\n" +
		"1 row affected\n" +
		"ID\tNAME\tNOTE\n" +
		"1\tKING\tNULL\n" +
		"2\tA\\tB\tx\n"
	if out.String() != want {
		t.Fatalf("output:\n%s\nwant:\n%s", out.String(), want)
	}

	res, err := execute(conn, "SELECT id FROM emp")
	if err != nil {
		t.Fatal(err)
	}
	if s := renderTable(res.sets[0]); !strings.Contains(s, "ID") || !strings.Contains(s, "2") {
		t.Fatalf("table = %q", s)
	}

	if _, err := execute(conn, "SELEC 1"); err == nil {
		t.Fatal("bad statement accepted")
	}
}

func TestExecute_ImplicitResults(t *testing.T) {
	env, err := oci.New(lite.New())
	if err != nil {
		t.Fatal(err)
	}
	defer env.Close()
	conn, err := env.Connect("file:"+uuid.NewString()+"?mode=memory&cache=shared", "scott", "tiger")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := execute(conn, "CREATE TABLE t (a NUMBER)"); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(conn, "INSERT INTO t VALUES (7)"); err != nil {
		t.Fatal(err)
	}

	res, err := execute(conn, `DECLARE
  c SYS_REFCURSOR;
BEGIN
  OPEN c FOR SELECT a FROM t;
  DBMS_SQL.RETURN_RESULT(c);
END;`)
	if err != nil {
		t.Fatal(err)
	}
	if !res.plsql || len(res.sets) != 1 || len(res.sets[0].rows) != 1 || res.sets[0].rows[0][0] != "7" {
		t.Fatalf("result = %+v", res)
	}

	var out bytes.Buffer
	if err := printResult(&out, res, false); err != nil {
		t.Fatal(err)
	}
	if want := "A\n7\nPL/SQL procedure successfully completed.\n"; out.String() != want {
		t.Fatalf("output = %q", out.String())
	}
}
