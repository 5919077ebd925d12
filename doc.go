// Package ociruntime provides a Go client layer over an OCI-style native
// database call interface.
//
// The library owns native handle lifetimes, converts between Go values
// and the client's wire formats, resolves bind arguments against
// prepared statements, and streams result rows with scoped borrowing.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	ociruntime/          Root package with documentation only
//	├── oci/             Environment, Connection, Statement, Rows, scalar types
//	├── resource/        Generation-checked handle registry with ownership tree
//	├── codec/           NUMBER, DATE, TIMESTAMP, INTERVAL, ROWID and text encodings
//	├── native/          The native call interface, buffers and error codes
//	│   └── lite/        In-process native client backed by SQLite
//	├── internal/nls/    Date and number format-model engine
//	├── errors/          Structured error types with phase, kind and category
//	├── metrics/         Prometheus observer for handle activity
//	└── cmd/ocirun/      Command-line runner with an interactive TUI
//
// # Quick Start
//
// Run a query:
//
//	env, err := oci.New(lite.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer env.Close()
//
//	conn, err := env.Connect("file:demo?mode=memory", "scott", "tiger")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stmt, err := conn.Prepare("SELECT id, name FROM t WHERE id = :id")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stmt.Close()
//
//	rows, err := stmt.Query(oci.Named("id", 1))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for row, err := range rows.All() {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    name, ok, err := oci.Get[string](row, 1)
//	    ...
//	}
//
// # Native Types
//
// Every scalar the native client stores has a Go counterpart:
//
//   - Numbers: oci.Number (40 significant digits), BINARY_FLOAT, BINARY_DOUBLE
//   - Text: VARCHAR2, CHAR, LONG, RAW, ROWID
//   - Datetime: oci.Date, oci.Timestamp, oci.TimestampTZ, oci.TimestampLTZ
//   - Intervals: oci.IntervalYM, oci.IntervalDS
//   - Large objects and cursors: oci.Lob, oci.Cursor
//
// Native values also scan into plain Go types (ints, floats, string,
// []byte, bool, time.Time, time.Duration) with range checks.
//
// # Handle Lifetimes
//
// Handles form a tree rooted at the Environment. Releasing a node
// releases its subtree children first, and every object checks the
// liveness of its handle before calling into the driver, so use after
// close is a lifetime error instead of undefined behavior.
//
// # Thread Safety
//
// Environment is safe for concurrent use. A Connection and everything
// derived from it must be used by a single goroutine, or access must be
// synchronized.
package ociruntime
