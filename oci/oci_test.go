package oci

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
	"github.com/wippyai/oci-runtime/native/lite"
	"github.com/wippyai/oci-runtime/resource"
)

func newEnv(t *testing.T, opts ...Option) *Environment {
	t.Helper()
	env, err := New(lite.New(), opts...)
	if err != nil {
		t.Fatalf("new environment: %v", err)
	}
	t.Cleanup(func() { _ = env.Close() })
	return env
}

func connect(t *testing.T, env *Environment) *Connection {
	t.Helper()
	conn, err := env.Connect("file:"+uuid.NewString()+"?mode=memory&cache=shared", "scott", "tiger")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return conn
}

func newConn(t *testing.T, opts ...Option) *Connection {
	t.Helper()
	return connect(t, newEnv(t, opts...))
}

func prepare(t *testing.T, conn *Connection, text string) *Statement {
	t.Helper()
	s, err := conn.Prepare(text)
	if err != nil {
		t.Fatalf("prepare %q: %v", text, err)
	}
	return s
}

func exec(t *testing.T, conn *Connection, text string, args ...any) int64 {
	t.Helper()
	s := prepare(t, conn, text)
	defer s.Close()
	n, err := s.Execute(args...)
	if err != nil {
		t.Fatalf("execute %q: %v", text, err)
	}
	return n
}

func wantKind(t *testing.T, err error, k errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", k)
	}
	if !errors.IsKind(err, k) {
		t.Fatalf("expected %s error, got %v", k, err)
	}
}

func TestNew_Options(t *testing.T) {
	tests := []struct {
		name string
		drv  native.Interface
		opts []Option
		kind errors.Kind
	}{
		{"single-byte charset", lite.New(), []Option{WithCharset("WE8ISO8859P1")}, errors.KindUsage},
		{"unthreaded", lite.New(), []Option{WithThreaded(false)}, errors.KindUsage},
		{"nil driver", nil, nil, errors.KindUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := New(tt.drv, tt.opts...)
			if env != nil {
				t.Fatal("environment returned with error")
			}
			wantKind(t, err, tt.kind)
		})
	}

	env := newEnv(t, WithCharset("utf-8"))
	if got := env.Charset(); got != "UTF-8" {
		t.Fatalf("Charset = %q", got)
	}
	if n := env.Registry().Len(); n != 2 {
		t.Fatalf("live handles = %d, want environment and error handle", n)
	}
}

func TestEnvironment_CloseInvalidatesEverything(t *testing.T) {
	drv := lite.New()
	env, err := New(drv)
	if err != nil {
		t.Fatal(err)
	}
	conn := connect(t, env)
	exec(t, conn, "CREATE TABLE t (a NUMBER)")
	s := prepare(t, conn, "SELECT a FROM t")
	rows, err := s.Query()
	if err != nil {
		t.Fatal(err)
	}
	one := env.NumberFromInt(1)

	if err := env.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if n := drv.Open(); n != 0 {
		t.Fatalf("native handles left open: %d", n)
	}
	if n := env.Registry().Len(); n != 0 {
		t.Fatalf("registry handles left: %d", n)
	}

	checks := []struct {
		name string
		call func() error
	}{
		{"prepare", func() error { _, err := conn.Prepare("SELECT 1 FROM dual"); return err }},
		{"execute", func() error { _, err := s.Execute(); return err }},
		{"next", func() error { _, err := rows.Next(); return err }},
		{"commit", conn.Commit},
		{"connect", func() error { _, err := env.Connect("x", "u", "p"); return err }},
		{"number arithmetic", func() error { _, err := one.Add(one); return err }},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			err := c.call()
			if errors.CategoryOf(err) != errors.CategoryLifetime {
				t.Fatalf("err = %v, want lifetime error", err)
			}
		})
	}

	if err := env.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close after environment: %v", err)
	}
}

func TestConnection_CloseReleasesChildren(t *testing.T) {
	var acquired, released int
	env := newEnv(t, WithObserver(resource.ObserverFunc(func(e resource.Event) {
		switch e.Type {
		case resource.EventAcquired:
			acquired++
		case resource.EventReleased:
			released++
		}
	})))
	conn := connect(t, env)
	s := prepare(t, conn, "SELECT :a, :b FROM dual")
	if got := s.Params(); len(got) != 2 {
		t.Fatalf("Params = %v", got)
	}

	before := env.Registry().Len()
	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	// service, statement and two binds
	if got := before - env.Registry().Len(); got != 4 {
		t.Fatalf("released %d handles, want 4", got)
	}
	if acquired-released != 2 {
		t.Fatalf("acquired %d, released %d", acquired, released)
	}
	if _, err := s.Execute(1, 2); errors.CategoryOf(err) != errors.CategoryLifetime {
		t.Fatalf("statement after connection close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("closing released statement: %v", err)
	}
}

func TestEnvironment_HandleLimit(t *testing.T) {
	drv := lite.New()
	env, err := New(drv, WithHandleLimit(4))
	if err != nil {
		t.Fatal(err)
	}
	defer env.Close()
	conn := connect(t, env)

	s := prepare(t, conn, "SELECT 1 FROM dual")
	_, err = conn.Prepare("SELECT 2 FROM dual")
	wantKind(t, err, errors.KindResourceExhausted)
	if errors.CategoryOf(err) != errors.CategoryResourceExhaustion {
		t.Fatalf("category = %s", errors.CategoryOf(err))
	}
	// The refused statement was freed natively: environment, error
	// handle, session and one statement remain.
	if n := drv.Open(); n != 4 {
		t.Fatalf("native handles = %d, want 4", n)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Prepare("SELECT 2 FROM dual"); err != nil {
		t.Fatalf("prepare after release: %v", err)
	}
}

func TestConnection_Basics(t *testing.T) {
	env, err := New(lite.New(lite.WithVersion("19.3.0.0.0")))
	if err != nil {
		t.Fatal(err)
	}
	defer env.Close()
	conn := connect(t, env)

	v, err := conn.ServerVersion()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(v, "19.3.0.0.0") {
		t.Fatalf("ServerVersion = %q", v)
	}
	if err := conn.Ping(); err != nil {
		t.Fatal(err)
	}
	if conn.Environment() != env {
		t.Fatal("Environment mismatch")
	}

	_, err = env.Connect("file:"+uuid.NewString()+"?mode=memory", "", "")
	wantKind(t, err, errors.KindNativeCall)
	if code := errors.NativeCode(err); code != native.CodeInvalidLogon {
		t.Fatalf("native code = %d", code)
	}
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	env := newEnv(t)
	if logs.FilterMessage("environment created").Len() != 1 {
		t.Fatalf("environment did not log through the package logger: %v", logs.All())
	}

	// Environments keep the logger they were created with.
	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("nil logger after reset")
	}
	connect(t, env)
	if logs.FilterMessage("connected").Len() != 1 {
		t.Fatalf("connect logged %d entries", logs.FilterMessage("connected").Len())
	}
}

func TestCallError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind errors.Kind
		code int
	}{
		{"nil", nil, "", 0},
		{"logon", native.Errorf(native.CodeInvalidLogon, "invalid username/password"), errors.KindNativeCall, native.CodeInvalidLogon},
		{"buffer too small", native.Errorf(native.CodeValueError, "character string buffer too small"), errors.KindOverflow, native.CodeValueError},
		{"bad month", native.Errorf(native.CodeInvalidMonth, "not a valid month"), errors.KindOutOfRange, native.CodeInvalidMonth},
		{"structured passes through", errors.Usage(errors.PhaseFetch, "x"), errors.KindUsage, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := callError(errors.PhaseExecute, "read 100% of %s", tt.err)
			if tt.err == nil {
				if err != nil {
					t.Fatalf("callError(nil) = %v", err)
				}
				return
			}
			wantKind(t, err, tt.kind)
			if code := errors.NativeCode(err); code != tt.code {
				t.Fatalf("native code = %d, want %d", code, tt.code)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("%T is not *errors.Error", err)
			}
			if tt.code != 0 && e.Detail != "read 100% of %s" {
				t.Fatalf("Detail = %q", e.Detail)
			}
		})
	}
}

func TestConnection_Transactions(t *testing.T) {
	conn := newConn(t)
	exec(t, conn, "CREATE TABLE t (a NUMBER)")

	count := func() int64 {
		t.Helper()
		s := prepare(t, conn, "SELECT COUNT(*) FROM t")
		defer s.Close()
		rows, err := s.Query()
		if err != nil {
			t.Fatal(err)
		}
		row, err := rows.Next()
		if err != nil || row == nil {
			t.Fatalf("next = %v, %v", row, err)
		}
		n, ok, err := Get[int64](row, 0)
		if err != nil || !ok {
			t.Fatalf("count = %d, %v, %v", n, ok, err)
		}
		return n
	}

	exec(t, conn, "INSERT INTO t VALUES (1)")
	if err := conn.Rollback(); err != nil {
		t.Fatal(err)
	}
	if n := count(); n != 0 {
		t.Fatalf("after rollback: %d rows", n)
	}
	exec(t, conn, "INSERT INTO t VALUES (1)")
	if err := conn.Commit(); err != nil {
		t.Fatal(err)
	}
	if n := count(); n != 1 {
		t.Fatalf("after commit: %d rows", n)
	}
}
