// Package oci is the Go face of an OCI-style database client: handle
// lifetimes, statement execution, bind resolution, row cursors and the
// native scalar types.
//
// # Quick Start
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
//	stmt, err := conn.Prepare("SELECT ename, sal FROM emp WHERE deptno = :dept")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stmt.Close()
//
//	rows, err := stmt.Query(oci.Named("dept", 10))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for row, err := range rows.All() {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    var name string
//	    var sal oci.Number
//	    if err := row.Scan(&name, &sal); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Handles
//
// Every native handle is registered with the environment's
// resource.Registry under its parent. Closing a connection releases its
// statements, binds, defines, cursors and LOB locators in child-first
// order; closing the environment releases everything. Calls on a released
// object fail with a lifetime error instead of touching the driver.
//
// # Binds
//
// Arguments are positional values or Param values built with Named, Out,
// OutSize and InOut. SQL text shares one slot among repeated names;
// PL/SQL text gives each occurrence its own slot, filled in order.
//
//	var id int64
//	_, err := stmt.ExecuteInto(
//	    []any{oci.Named("name", "KING")},
//	    oci.Out("id", &id),
//	)
//
// Pass Null(type) for a typed NULL and nil for an untyped one.
//
// # Rows
//
// A Row is valid until the next call to Next. Get reports SQL NULL as
// ok == false:
//
//	mgr, ok, err := oci.Get[int64](row, 2)
//
// Columns that hold LOB or REF CURSOR values scan into **Lob and
// **Cursor. Both are owned by the statement that produced them.
//
// # Errors
//
// All failures are *errors.Error values from
// github.com/wippyai/oci-runtime/errors. Use errors.IsKind or
// errors.CategoryOf to branch, and errors.NativeCode for the server
// error number.
package oci
