// Package nls implements number and datetime format models: the engine
// behind TO_CHAR, TO_NUMBER, TO_DATE and TO_TIMESTAMP style conversions.
//
// Failures are reported as *native.Error carrying the database's error
// number, exactly as a server would report them:
//
//	ORA-01481  invalid number format model
//	ORA-01722  invalid number
//	ORA-01821  date format not recognized
//	ORA-01830  date format picture ends before converting entire input string
//	ORA-0184x  calendar component out of range
//	ORA-0185x  time component out of range
//
// Compiled models are cached; every function is safe for concurrent use.
package nls
