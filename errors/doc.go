// Package errors provides structured error types for the oci-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (what
// went wrong). Every Kind belongs to one of five categories:
//
//	resource exhaustion  handle allocation failed
//	native call          the native layer reported an error (Code + message kept)
//	usage                API misuse: not a query, unresolved or conflicting binds, type mismatch
//	encoding             overflow, out-of-range component, malformed format model
//	lifetime             use of a released handle or of a row view after the cursor moved
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBind, errors.KindTypeMismatch).
//		Path("salary").
//		GoType("chan int").
//		Detail("cannot bind").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotQuery("INSERT")
//	err := errors.OutOfRange(errors.PhaseEncode, "month", 13, 1, 12)
//
// Callers branch on categories with CategoryOf, or on a single kind with
// IsKind. All errors implement the standard error interface and support
// errors.Is/As.
package errors
