package oci

import (
	stderrors "errors"

	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
)

// kindOfCode sorts native error numbers raised by the environment
// services into the encoding family. Everything else is a native call
// failure.
func kindOfCode(code int) errors.Kind {
	switch code {
	case native.CodeDateFormatInvalid, native.CodeDateFormatEnds, native.CodeNonNumericFound,
		native.CodeLiteralMismatch, native.CodeNumericLength, native.CodeInvalidNumberFormat,
		native.CodeInvalidNumber, native.CodeFormatTwice, native.CodeFormatNotInput:
		return errors.KindInvalidFormat
	case native.CodeInvalidYear, native.CodeInvalidMonth, native.CodeInvalidWeekday,
		native.CodeInvalidDay, native.CodeInvalidDayOfYear, native.CodeInvalidHour12,
		native.CodeInvalidHour, native.CodeInvalidMinute, native.CodeInvalidSecond,
		native.CodeInvalidSecondsInDay, native.CodeMeridianRequired, native.CodeInvalidInterval,
		native.CodeInvalidTZHour, native.CodeInvalidTZMinute, native.CodeDayOfMonth:
		return errors.KindOutOfRange
	case native.CodeNumericOverflow, native.CodeValueTooLarge, native.CodeValueError:
		return errors.KindOverflow
	case native.CodeRegionNotFound:
		return errors.KindUnsupported
	}
	return errors.KindNativeCall
}

// callError wraps a failure returned by the driver. Native errors keep
// their code and message; structured errors pass through untouched.
func callError(phase errors.Phase, call string, err error) error {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}
	ne, ok := native.AsError(err)
	if !ok {
		return errors.NativeCall(phase, call, 0, err)
	}
	return errors.New(phase, kindOfCode(ne.Code)).
		Code(ne.Code).
		Detail("%s", call).
		Cause(ne).
		Build()
}
