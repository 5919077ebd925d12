// Package native defines the call-level interface the access layer talks
// to: handle allocation, sessions, statement prepare/bind/execute/define/
// fetch, LOB reads, and the environment's conversion services.
//
// Everything above this package (handle ownership, value marshaling, bind
// resolution, row cursors) is written against Interface only. The lite
// subpackage provides an in-process implementation.
//
// Values cross the boundary as native-format bytes inside caller-owned
// Buffers. A Buffer's indicator is IndNull (-1) for NULL. Cursor, LOB and
// ROWID locators travel as native handles packed into the buffer.
//
// Native failures are returned as *Error with the server's error number
// and message.
package native
