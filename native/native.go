package native

// Interface is the call-level interface of a native database client.
// Calls are synchronous and block until the native side completes.
// Implementations must tolerate concurrent calls on distinct service
// contexts; calls on one service context are serialised by the caller.
type Interface interface {
	// EnvCreate creates an environment handle.
	EnvCreate(mode Mode) (Handle, error)
	// HandleAlloc allocates a child handle or descriptor under parent.
	HandleAlloc(parent Handle, kind HandleKind) (Handle, error)
	// HandleFree frees a handle. Freeing a parent implicitly frees its
	// children on the native side; callers free children first anyway.
	HandleFree(h Handle) error

	// Logon opens a session. The descriptor is passed through unparsed.
	Logon(env Handle, descriptor, user, password string) (Handle, error)
	Logoff(svc Handle) error
	ServerVersion(svc Handle) (string, error)
	Ping(svc Handle) error
	Commit(svc Handle) error
	Rollback(svc Handle) error

	// StmtPrepare parses text and returns a statement handle.
	StmtPrepare(svc Handle, text string) (Handle, error)
	StmtType(stmt Handle) (StmtType, error)
	// BindInfo returns one entry per placeholder occurrence in text order.
	BindInfo(stmt Handle) ([]BindInfo, error)
	// BindByPos binds buf to slot pos (1-based, counting non-duplicate
	// occurrences). The buffer must stay valid until the next execute.
	BindByPos(stmt Handle, pos int, buf *Buffer) error
	// StmtExecute runs the statement. iters is 0 for queries.
	StmtExecute(stmt Handle, iters int) error
	RowCount(stmt Handle) (int64, error)
	// Describe returns the select-list after a query executed.
	Describe(stmt Handle) ([]Column, error)
	// DefineByPos associates a fetch buffer with column pos (1-based).
	DefineByPos(stmt Handle, pos int, buf *Buffer) error
	// StmtFetch fetches one row into the define buffers. It returns false
	// when no more rows are available.
	StmtFetch(stmt Handle) (bool, error)
	// NextResult returns the next implicit result set as an executed
	// statement handle, or zero when none remain.
	NextResult(stmt Handle) (Handle, error)

	LobLength(lob Handle) (int64, error)
	LobRead(lob Handle, offset int64, p []byte) (int, error)

	Services
}

// Services are the environment-level conversion and arithmetic routines.
// All values are native-format byte slices.
type Services interface {
	NumberFromText(env Handle, text, model string) ([]byte, error)
	NumberToText(env Handle, num []byte, model string) (string, error)
	NumberArith(env Handle, op NumberOp, a, b []byte) ([]byte, error)
	NumberUnary(env Handle, fn NumberFunc, a []byte) ([]byte, error)
	// NumberRound rounds (or truncates) to digits after the decimal point;
	// negative digits round to the left of it.
	NumberRound(env Handle, a []byte, digits int, trunc bool) ([]byte, error)
	NumberPi(env Handle) ([]byte, error)

	DateTimeFromText(env Handle, t TypeCode, text, model string) ([]byte, error)
	DateTimeToText(env Handle, t TypeCode, dt []byte, model string, fsprec int) (string, error)
	DateTimeNow(env Handle, t TypeCode) ([]byte, error)
	// DateTimeSubtract returns a - b as an INTERVAL DAY TO SECOND.
	DateTimeSubtract(env Handle, t TypeCode, a, b []byte) ([]byte, error)
	DateTimeAddInterval(env Handle, t TypeCode, dt []byte, it TypeCode, iv []byte) ([]byte, error)
	DateAddMonths(env Handle, d []byte, months int) ([]byte, error)
	DateLastDay(env Handle, d []byte) ([]byte, error)
	DateNextDay(env Handle, d []byte, weekday string) ([]byte, error)
	// DateMonthsBetween returns a NUMBER.
	DateMonthsBetween(env Handle, a, b []byte) ([]byte, error)

	IntervalFromText(env Handle, t TypeCode, text string) ([]byte, error)
	IntervalToText(env Handle, t TypeCode, iv []byte, lfprec, fsprec int) (string, error)
	IntervalArith(env Handle, t TypeCode, op NumberOp, a, b []byte) ([]byte, error)
}
