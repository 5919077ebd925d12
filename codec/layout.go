package codec

import "github.com/wippyai/oci-runtime/native"

// MaxTextSize is the default capacity of a text bind or define buffer.
const MaxTextSize = 32767

// Size returns the buffer capacity needed for a value of type t. For text
// and raw types the declared column size is used, clamped to at least one
// byte; UTF-8 needs up to four bytes per character.
func Size(t native.TypeCode, declared int) int {
	switch t {
	case native.TypeNumber:
		return NumberSize
	case native.TypeDate:
		return DateSize
	case native.TypeTimestamp:
		return TimestampSize
	case native.TypeTimestampTZ:
		return TimestampTZSize
	case native.TypeTimestampLTZ:
		return TimestampLTZSize
	case native.TypeIntervalYM:
		return IntervalYMSize
	case native.TypeIntervalDS:
		return IntervalDSSize
	case native.TypeRowID:
		return RowIDSize
	case native.TypeBinaryDouble:
		return BinaryDoubleSize
	case native.TypeBinaryFloat:
		return BinaryFloatSize
	case native.TypeInt, native.TypeBoolean:
		return IntSize
	case native.TypeCursor, native.TypeClob, native.TypeBlob:
		return native.HandleSize
	case native.TypeRaw, native.TypeLongRaw:
		if declared <= 0 {
			return MaxTextSize
		}
		return declared
	}
	if declared <= 0 {
		return MaxTextSize
	}
	return min(declared*4, MaxTextSize)
}

// Fixed reports whether values of t always have the same encoded size.
func Fixed(t native.TypeCode) bool {
	switch t {
	case native.TypeDate, native.TypeTimestamp, native.TypeTimestampTZ,
		native.TypeTimestampLTZ, native.TypeIntervalYM, native.TypeIntervalDS,
		native.TypeRowID, native.TypeBinaryDouble, native.TypeBinaryFloat,
		native.TypeInt, native.TypeBoolean, native.TypeCursor, native.TypeClob, native.TypeBlob:
		return true
	}
	return false
}
