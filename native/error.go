package native

import (
	stderrors "errors"
	"fmt"
)

// Error is a failure reported by the native layer. Code and Message are
// surfaced to callers unmodified.
type Error struct {
	Message string
	Code    int
}

// Errorf builds an Error with a formatted message.
func Errorf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("ORA-%05d: %s", e.Code, e.Message)
}

// NativeCode returns the native error number.
func (e *Error) NativeCode() int {
	return e.Code
}

// AsError extracts a native error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Well-known native error numbers.
const (
	CodeUniqueViolated       = 1
	CodeInternal             = 600
	CodeInvalidStatement     = 900
	CodeInvalidIdentifier    = 904
	CodeTooManyValues        = 913
	CodeInconsistentTypes    = 932
	CodeTableNotFound        = 942
	CodeNotEnoughValues      = 947
	CodeInvalidCursor        = 1001
	CodeFetchOutOfSequence   = 1002
	CodeNotInSelectList      = 1007
	CodeNotAllBound          = 1008
	CodeInvalidLogon         = 1017
	CodeIllegalVariable      = 1036
	CodeNullInsert           = 1400
	CodeNoDataFound          = 1403
	CodeValueTruncated       = 1406
	CodeInvalidRowID         = 1410
	CodeTooManyRows          = 1422
	CodeNumericOverflow      = 1426
	CodeArgumentRange        = 1428
	CodeValueTooLarge        = 1438
	CodeDivisorZero          = 1476
	CodeInvalidNumberFormat  = 1481
	CodeInvalidNumber        = 1722
	CodeFormatTwice          = 1810
	CodeFormatNotInput       = 1820
	CodeDateFormatInvalid    = 1821
	CodeDateFormatEnds       = 1830
	CodeDayOfMonth           = 1839
	CodeInvalidYear          = 1841
	CodeInvalidMonth         = 1843
	CodeInvalidWeekday       = 1846
	CodeInvalidDay           = 1847
	CodeInvalidDayOfYear     = 1848
	CodeInvalidHour12        = 1849
	CodeInvalidHour          = 1850
	CodeInvalidMinute        = 1851
	CodeInvalidSecond        = 1852
	CodeInvalidSecondsInDay  = 1853
	CodeMeridianRequired     = 1855
	CodeNonNumericFound      = 1858
	CodeLiteralMismatch      = 1861
	CodeNumericLength        = 1862
	CodeInvalidInterval      = 1867
	CodeIntervalPrecision    = 1873
	CodeInvalidTZHour        = 1874
	CodeInvalidTZMinute      = 1875
	CodeRegionNotFound       = 1882
	CodeUnsupportedOperation = 3001
	CodeNotConnected         = 3114
	CodeValueError           = 6502
	CodePLSQLCompile         = 6550
	CodeInvalidHandle        = 21560
	CodeNotExecuted          = 24338
)
