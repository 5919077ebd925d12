package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:      PhaseBind,
				Kind:       KindTypeMismatch,
				Path:       []string{"emp", "salary"},
				GoType:     "string",
				NativeType: "NUMBER",
				Detail:     "cannot convert",
			},
			contains: []string{"[bind]", "type_mismatch", "emp.salary", "string", "NUMBER", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseFetch,
				Kind:  KindLifetime,
			},
			contains: []string{"[fetch]", "lifetime"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseExecute,
				Kind:   KindNativeCall,
				Detail: "execute",
				Cause:  errors.New("ORA-00942: table or view does not exist"),
			},
			contains: []string{"[execute]", "native_call", "caused by", "ORA-00942"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindOverflow,
		Path:  []string{"amount"},
	}

	if !err.Is(&Error{Phase: PhaseEncode, Kind: KindOverflow}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindOverflow}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindOutOfRange}) {
		t.Error("Is should not match different kind")
	}
	if !err.Is(&Error{Kind: KindOverflow}) {
		t.Error("Is with empty phase should match on kind")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.Is(wrapped, &Error{Phase: PhaseEncode, Kind: KindOverflow}) {
		t.Error("errors.Is should match through wrapping")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseBind, KindTypeMismatch).
		Path("emp", "name").
		GoType("chan int").
		NativeType("VARCHAR2").
		Value(42).
		Code(1722).
		Cause(cause).
		Detail("expected %s, got %s", "string", "chan").
		Build()

	if err.Phase != PhaseBind {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseBind)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "emp" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [emp name]", err.Path)
	}
	if err.GoType != "chan int" || err.NativeType != "VARCHAR2" {
		t.Errorf("GoType=%v NativeType=%v", err.GoType, err.NativeType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if err.Code != 1722 {
		t.Errorf("Code = %d, want 1722", err.Code)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got chan" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestCategories(t *testing.T) {
	tests := []struct {
		err  error
		want Category
	}{
		{ResourceExhausted("statement", 10), CategoryResourceExhaustion},
		{NativeCall(PhaseExecute, "execute", 942, errors.New("ORA-00942")), CategoryNativeCall},
		{NotQuery("INSERT"), CategoryUsage},
		{UnresolvedBind("x", "no value"), CategoryUsage},
		{BindConflict("x"), CategoryUsage},
		{TypeMismatch(PhaseDecode, nil, "int", "DATE"), CategoryUsage},
		{Overflow(PhaseEncode, nil, 1e200, "NUMBER"), CategoryEncoding},
		{OutOfRange(PhaseEncode, "month", 13, 1, 12), CategoryEncoding},
		{InvalidFormat(PhaseFormat, "YYYY-QQ", "bad element"), CategoryEncoding},
		{Unsupported(PhaseFormat, "NLS_LANGUAGE=KLINGON"), CategoryEncoding},
		{Lifetime(PhaseFetch, "row"), CategoryLifetime},
		{errors.New("plain"), CategoryUnknown},
		{fmt.Errorf("wrapped: %w", Lifetime(PhaseFetch, "row")), CategoryLifetime},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := CategoryOf(tt.err); got != tt.want {
				t.Errorf("CategoryOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistinctEncodingKinds(t *testing.T) {
	format := InvalidFormat(PhaseFormat, "DD-XX", "unknown element")
	rng := OutOfRange(PhaseFormat, "day", 32, 1, 31)
	loc := Unsupported(PhaseFormat, "locale")

	if IsKind(format, KindOutOfRange) || IsKind(rng, KindInvalidFormat) || IsKind(loc, KindInvalidFormat) {
		t.Fatal("encoding kinds must stay distinct")
	}
	if !IsKind(format, KindInvalidFormat) || !IsKind(rng, KindOutOfRange) || !IsKind(loc, KindUnsupported) {
		t.Fatal("IsKind should match own kind")
	}
}

type codedErr struct{ code int }

func (c codedErr) Error() string   { return fmt.Sprintf("ORA-%05d", c.code) }
func (c codedErr) NativeCode() int { return c.code }

func TestNativeCode(t *testing.T) {
	err := NativeCall(PhaseExecute, "execute", 0, codedErr{code: 1})
	if got := NativeCode(err); got != 1 {
		t.Errorf("NativeCode via cause = %d, want 1", got)
	}
	err = NativeCall(PhaseExecute, "execute", 942, errors.New("x"))
	if got := NativeCode(err); got != 942 {
		t.Errorf("NativeCode via field = %d, want 942", got)
	}
	if got := NativeCode(errors.New("plain")); got != 0 {
		t.Errorf("NativeCode(plain) = %d, want 0", got)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidUTF8", func(t *testing.T) {
		err := InvalidUTF8(PhaseDecode, []string{"name"}, []byte{0xff, 0xfe})
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
		if !strings.Contains(err.Detail, "fffe") {
			t.Errorf("Detail = %q, want hex preview", err.Detail)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseDecode, []string{"val"}, "1e30", "int64")
		if err.Kind != KindOverflow || err.Value != "1e30" {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("ResourceExhausted", func(t *testing.T) {
		err := ResourceExhausted("statement", 4)
		if err.Phase != PhaseAcquire || !strings.Contains(err.Detail, "4") {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("disk")
		err := Wrap(PhaseRelease, KindNativeCall, cause, "free")
		if !errors.Is(err, cause) {
			t.Error("Wrap should keep cause")
		}
	})
}
