package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAcquire Phase = "acquire" // handle allocation
	PhaseRelease Phase = "release" // handle teardown
	PhaseEncode  Phase = "encode"  // Go to native buffer
	PhaseDecode  Phase = "decode"  // native buffer to Go
	PhaseBind    Phase = "bind"    // parameter resolution
	PhasePrepare Phase = "prepare" // statement preparation
	PhaseExecute Phase = "execute" // statement execution
	PhaseFetch   Phase = "fetch"   // row retrieval
	PhaseFormat  Phase = "format"  // text conversion through a format model
	PhaseNative  Phase = "native"  // environment services
)

// Kind categorizes the error
type Kind string

const (
	KindResourceExhausted Kind = "resource_exhausted"
	KindNativeCall        Kind = "native_call"
	KindUsage             Kind = "usage"
	KindNotQuery          Kind = "not_query"
	KindUnresolvedBind    Kind = "unresolved_bind"
	KindBindConflict      Kind = "bind_conflict"
	KindTypeMismatch      Kind = "type_mismatch"
	KindOverflow          Kind = "overflow"
	KindOutOfRange        Kind = "out_of_range"
	KindInvalidFormat     Kind = "invalid_format"
	KindUnsupported       Kind = "unsupported"
	KindInvalidData       Kind = "invalid_data"
	KindInvalidUTF8       Kind = "invalid_utf8"
	KindLifetime          Kind = "lifetime"
)

// Category groups kinds into the five families callers branch on.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryResourceExhaustion
	CategoryNativeCall
	CategoryUsage
	CategoryEncoding
	CategoryLifetime
)

func (c Category) String() string {
	switch c {
	case CategoryResourceExhaustion:
		return "resource-exhaustion"
	case CategoryNativeCall:
		return "native-call"
	case CategoryUsage:
		return "usage"
	case CategoryEncoding:
		return "encoding"
	case CategoryLifetime:
		return "lifetime"
	}
	return "unknown"
}

// Category returns the family this kind belongs to.
func (k Kind) Category() Category {
	switch k {
	case KindResourceExhausted:
		return CategoryResourceExhaustion
	case KindNativeCall:
		return CategoryNativeCall
	case KindUsage, KindNotQuery, KindUnresolvedBind, KindBindConflict, KindTypeMismatch:
		return CategoryUsage
	case KindOverflow, KindOutOfRange, KindInvalidFormat, KindUnsupported, KindInvalidData, KindInvalidUTF8:
		return CategoryEncoding
	case KindLifetime:
		return CategoryLifetime
	}
	return CategoryUnknown
}

// Error is the structured error type used throughout the module
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	GoType     string
	NativeType string
	Detail     string
	Path       []string
	// Code is the native error number for KindNativeCall, zero otherwise.
	Code int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.NativeType != "" {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.NativeType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", native type ")
			b.WriteString(e.NativeType)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("native type ")
			b.WriteString(e.NativeType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.NativeType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Category returns the family of the error's kind.
func (e *Error) Category() Category {
	return e.Kind.Category()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// NativeType sets the native type name
func (b *Builder) NativeType(t string) *Builder {
	b.err.NativeType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Code sets the native error number
func (b *Builder) Code(code int) *Builder {
	b.err.Code = code
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// CategoryOf walks the chain of err and returns the category of the first
// structured error found.
func CategoryOf(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category()
	}
	return CategoryUnknown
}

// IsKind reports whether any structured error in the chain has kind k.
func IsKind(err error, k Kind) bool {
	return stderrors.Is(err, &Error{Kind: k})
}

// NativeCode returns the native error number carried by err, or zero.
func NativeCode(err error) int {
	var e *Error
	if stderrors.As(err, &e) && e.Code != 0 {
		return e.Code
	}
	var c interface{ NativeCode() int }
	if stderrors.As(err, &c) {
		return c.NativeCode()
	}
	return 0
}

// Convenience constructors for common error patterns

// ResourceExhausted reports that a handle could not be allocated.
func ResourceExhausted(kind string, limit int) *Error {
	return &Error{
		Phase:  PhaseAcquire,
		Kind:   KindResourceExhausted,
		Detail: fmt.Sprintf("%s handle limit %d reached", kind, limit),
		Value:  limit,
	}
}

// NativeCall wraps a failure returned by the native layer. The native
// code and message are preserved in Code and Cause.
func NativeCall(phase Phase, call string, code int, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNativeCall,
		Detail: call,
		Code:   code,
		Cause:  cause,
	}
}

// Usage creates a generic API misuse error
func Usage(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUsage,
		Detail: detail,
	}
}

// NotQuery reports a row-returning call on a statement that returns no rows.
func NotQuery(stmtType string) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindNotQuery,
		Detail: fmt.Sprintf("%s statement does not return rows", stmtType),
	}
}

// UnresolvedBind reports a placeholder name or position that has no value,
// or a value that has no placeholder.
func UnresolvedBind(name string, detail string) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindUnresolvedBind,
		Path:   []string{name},
		Detail: detail,
	}
}

// BindConflict reports a slot that was supplied more than once.
func BindConflict(name string) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindBindConflict,
		Path:   []string{name},
		Detail: fmt.Sprintf("parameter %q bound more than once", name),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, nativeType string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindTypeMismatch,
		Path:       path,
		GoType:     goType,
		NativeType: nativeType,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindOverflow,
		Path:       path,
		NativeType: targetType,
		Detail:     fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:      value,
	}
}

// OutOfRange reports a component outside its valid domain.
func OutOfRange(phase Phase, component string, value any, lo, hi int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Path:   []string{component},
		Detail: fmt.Sprintf("%s %v not in [%d, %d]", component, value, lo, hi),
		Value:  value,
	}
}

// InvalidFormat reports a malformed format model or input text.
func InvalidFormat(phase Phase, model string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidFormat,
		Detail: detail,
		Value:  model,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Lifetime reports use of a handle or view after its owner was released
// or advanced.
func Lifetime(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLifetime,
		Detail: fmt.Sprintf("%s is no longer valid", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
