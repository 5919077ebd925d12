// Package codec converts between Go values and the native wire formats of
// the database's scalar types.
//
// Every function here is pure: no handles, no environment, no I/O. Text
// conversions that depend on format models or session settings live with
// the environment services instead.
//
// # Layouts
//
//	Type                         Size   Layout
//	──────────────────────────────────────────────────────────────────────
//	NUMBER                       1-21   exponent byte + base-100 mantissa
//	DATE                         7      century+100 year+100 month day h+1 m+1 s+1
//	TIMESTAMP                    11     DATE + nanoseconds (BE uint32)
//	TIMESTAMP WITH TIME ZONE     13     TIMESTAMP in UTC + tz hour+20, tz minute+60
//	                                    (or region flag 0x80 + region id)
//	TIMESTAMP WITH LOCAL TZ      11     TIMESTAMP in UTC
//	INTERVAL YEAR TO MONTH       5      years+2^31 (BE) months+60
//	INTERVAL DAY TO SECOND       11     days+2^31 h+60 m+60 s+60 ns+2^31
//	ROWID                        10     object(32) file(10) block(22) row(16)
//	BINARY_DOUBLE / FLOAT        8 / 4  order-preserving IEEE 754
//
// # Errors
//
// Values that cannot be represented fail with encoding-category errors:
// KindOverflow for magnitudes past the type's range, KindOutOfRange for a
// calendar or interval component outside its domain, KindInvalidFormat for
// malformed text, KindInvalidData for corrupt native bytes.
//
// # Example
//
//	b, err := codec.NumberFromString("-123.45")
//	d, err := codec.DecodeNumber(b)
//	d.String() // "-123.45"
//
//	dt := codec.DateTime{Year: 2024, Month: 2, Day: 29}
//	b, err = codec.EncodeDate(dt)
package codec
