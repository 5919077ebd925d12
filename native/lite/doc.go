// Package lite is an in-process implementation of native.Interface backed
// by SQLite.
//
// It plays the part of the database server for tests, examples and the
// CLI: it owns handles, parses statement text for placeholders, runs SQL
// through a dedicated SQLite connection per session and converts values
// to and from native buffers with the codec package.
//
// # Sessions
//
// Logon opens (or shares) a sqlx.DB for the connect descriptor, which is
// passed to SQLite unchanged as its DSN, and pins one connection for the
// session. Shared-cache in-memory descriptors such as
//
//	file:3f1e...?mode=memory&cache=shared
//
// let several sessions see the same data. A transaction starts lazily on
// the first DML statement and ends on Commit, Rollback, DDL or Logoff,
// which rolls back.
//
// # Statements
//
// Placeholders are :name or :n. In SQL a repeated name shares the slot of
// its first occurrence; in PL/SQL blocks every occurrence is its own slot.
// RETURNING ... INTO targets are filled from SQLite's RETURNING clause.
//
// Anonymous blocks support a small subset of PL/SQL:
//
//	DECLARE c SYS_REFCURSOR;
//	BEGIN
//	  OPEN c FOR SELECT ...;
//	  DBMS_SQL.RETURN_RESULT(c);
//	  :out := <expression>;
//	  SELECT ... INTO :a, :b FROM ...;
//	  NULL;
//	  <any SQL statement>;
//	END;
//
// # Storage
//
// SQLite has no native DATE, TIMESTAMP or INTERVAL types. Datetimes are
// stored as ISO text (YYYY-MM-DD HH:MI:SS[.FFFFFFFFF][ zone]), intervals as
// their canonical text, and NUMBER values as integers, floats when the
// float is exact, or decimal text otherwise. Column types reported by
// Describe come from the declared column type.
package lite
