package oci

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
	"github.com/wippyai/oci-runtime/resource"
)

type config struct {
	charset   string
	threaded  bool
	log       *zap.Logger
	observers []resource.Observer
	limit     int
}

// Option configures an Environment.
type Option func(*config)

// WithCharset sets the client character set. Only UTF-8 is supported:
// AL32UTF8, UTF8 and UTF-8 are accepted.
func WithCharset(name string) Option {
	return func(c *config) { c.charset = name }
}

// WithThreaded selects thread-safe mode. It is always on; passing false
// makes New fail.
func WithThreaded(on bool) Option {
	return func(c *config) { c.threaded = on }
}

// WithLogger routes the environment's logging to l instead of the
// package logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithObserver subscribes o to handle lifecycle events.
func WithObserver(o resource.Observer) Option {
	return func(c *config) { c.observers = append(c.observers, o) }
}

// WithHandleLimit caps the number of live handles. Zero means unbounded.
func WithHandleLimit(n int) Option {
	return func(c *config) { c.limit = n }
}

// Environment is the root of every handle tree. It is safe for concurrent
// use; Connections created from it are not.
type Environment struct {
	drv native.Interface
	reg *resource.Registry
	log *zap.Logger

	h    resource.Handle
	nh   native.Handle
	errh native.Handle

	charset string
}

// New creates an environment on drv.
func New(drv native.Interface, opts ...Option) (*Environment, error) {
	cfg := config{charset: "AL32UTF8", threaded: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	switch strings.ToUpper(cfg.charset) {
	case "AL32UTF8", "UTF8", "UTF-8":
	default:
		return nil, errors.Usage(errors.PhaseAcquire, "unsupported character set "+cfg.charset+": only UTF-8 is supported")
	}
	if !cfg.threaded {
		return nil, errors.Usage(errors.PhaseAcquire, "thread-safe mode cannot be disabled")
	}
	if drv == nil {
		return nil, errors.Usage(errors.PhaseAcquire, "nil native driver")
	}
	log := cfg.log
	if log == nil {
		log = Logger()
	}

	e := &Environment{
		drv:     drv,
		reg:     resource.NewRegistry(cfg.limit),
		log:     log,
		charset: strings.ToUpper(cfg.charset),
	}
	for _, o := range cfg.observers {
		e.reg.Subscribe(o)
	}

	sc := e.reg.Scope()
	defer sc.Rollback()

	nh, err := drv.EnvCreate(native.ModeThreaded | native.ModeUTF8)
	if err != nil {
		return nil, callError(errors.PhaseAcquire, "create environment", err)
	}
	h, err := sc.Acquire(resource.KindEnv, 0, e.freer(nh))
	if err != nil {
		return nil, err
	}
	errh, err := drv.HandleAlloc(nh, native.HandleError)
	if err != nil {
		return nil, callError(errors.PhaseAcquire, "allocate error handle", err)
	}
	if _, err := sc.Acquire(resource.KindError, h, e.freer(errh)); err != nil {
		return nil, err
	}
	sc.Commit()

	e.h, e.nh, e.errh = h, nh, errh
	e.log.Debug("environment created", zap.Stringer("handle", h), zap.String("charset", e.charset))
	return e, nil
}

// freer releases a native handle through the driver.
func (e *Environment) freer(nh native.Handle) resource.Releaser {
	return resource.ReleaseFunc(func() error {
		return callError(errors.PhaseRelease, "free handle", e.drv.HandleFree(nh))
	})
}

// Close releases every connection, statement and cursor derived from the
// environment, children first, and then the environment itself. Values
// created from it report lifetime errors afterwards.
func (e *Environment) Close() error {
	err := e.reg.Close()
	if err != nil {
		e.log.Warn("environment teardown failed", zap.Error(err))
	} else {
		e.log.Debug("environment closed", zap.Stringer("handle", e.h))
	}
	return err
}

// Charset returns the client character set name.
func (e *Environment) Charset() string {
	return e.charset
}

// Registry exposes the handle registry, for observers and diagnostics.
func (e *Environment) Registry() *resource.Registry {
	return e.reg
}

// check fails with a lifetime error once the environment is closed.
func (e *Environment) check(phase errors.Phase) error {
	if e == nil {
		return errors.Usage(phase, "value has no environment")
	}
	if !e.reg.Alive(e.h) {
		return errors.Lifetime(phase, "environment")
	}
	return nil
}

// Connect opens a session. The descriptor is passed to the driver
// unparsed.
func (e *Environment) Connect(descriptor, user, password string) (*Connection, error) {
	if err := e.check(errors.PhaseAcquire); err != nil {
		return nil, err
	}
	sc := e.reg.Scope()
	defer sc.Rollback()

	svc, err := e.drv.Logon(e.nh, descriptor, user, password)
	if err != nil {
		return nil, callError(errors.PhaseAcquire, "logon", err)
	}
	c := &Connection{env: e, svc: svc}
	h, err := sc.Acquire(resource.KindService, e.h, resource.ReleaseFunc(c.release))
	if err != nil {
		return nil, err
	}
	sc.Commit()
	c.h = h
	e.log.Debug("connected", zap.Stringer("handle", h), zap.String("user", user))
	return c, nil
}

// NumberFromInt makes a NUMBER from an integer.
func (e *Environment) NumberFromInt(v int64) Number {
	return Number{env: e, b: codec.NumberFromInt64(v)}
}

// NumberFromFloat makes the NUMBER closest to f. NaN and infinities fail.
func (e *Environment) NumberFromFloat(f float64) (Number, error) {
	if err := e.check(errors.PhaseEncode); err != nil {
		return Number{}, err
	}
	b, err := codec.NumberFromFloat64(f)
	if err != nil {
		return Number{}, err
	}
	return Number{env: e, b: b}, nil
}

// NumberFromString parses text with a number format model such as
// "9D999999999EEEE". An empty model accepts any plain or scientific
// decimal.
func (e *Environment) NumberFromString(text, model string) (Number, error) {
	if err := e.check(errors.PhaseFormat); err != nil {
		return Number{}, err
	}
	b, err := e.drv.NumberFromText(e.nh, text, model)
	if err != nil {
		return Number{}, callError(errors.PhaseFormat, "number from text", err)
	}
	return Number{env: e, b: b}, nil
}

// Pi returns π to NUMBER precision.
func (e *Environment) Pi() (Number, error) {
	if err := e.check(errors.PhaseNative); err != nil {
		return Number{}, err
	}
	b, err := e.drv.NumberPi(e.nh)
	if err != nil {
		return Number{}, callError(errors.PhaseNative, "pi", err)
	}
	return Number{env: e, b: b}, nil
}

func (e *Environment) now(t native.TypeCode) ([]byte, error) {
	if err := e.check(errors.PhaseNative); err != nil {
		return nil, err
	}
	b, err := e.drv.DateTimeNow(e.nh, t)
	if err != nil {
		return nil, callError(errors.PhaseNative, "current time", err)
	}
	return b, nil
}

// SysDate returns the current date and time in the session time zone.
func (e *Environment) SysDate() (Date, error) {
	b, err := e.now(native.TypeDate)
	if err != nil {
		return Date{}, err
	}
	return Date{env: e, b: b}, nil
}

// SysTimestamp returns the current timestamp with the session time zone.
func (e *Environment) SysTimestamp() (TimestampTZ, error) {
	b, err := e.now(native.TypeTimestampTZ)
	if err != nil {
		return TimestampTZ{}, err
	}
	return TimestampTZ{datetime{env: e, t: native.TypeTimestampTZ, b: b}}, nil
}

func (e *Environment) parseDateTime(t native.TypeCode, text, model string) (datetime, error) {
	if err := e.check(errors.PhaseFormat); err != nil {
		return datetime{}, err
	}
	b, err := e.drv.DateTimeFromText(e.nh, t, text, model)
	if err != nil {
		return datetime{}, callError(errors.PhaseFormat, "datetime from text", err)
	}
	return datetime{env: e, t: t, b: b}, nil
}

// DateFromString parses text with a datetime format model. An empty
// model means DD-MON-RR.
func (e *Environment) DateFromString(text, model string) (Date, error) {
	d, err := e.parseDateTime(native.TypeDate, text, model)
	if err != nil {
		return Date{}, err
	}
	return Date{env: e, b: d.b}, nil
}

// TimestampFromString parses a TIMESTAMP.
func (e *Environment) TimestampFromString(text, model string) (Timestamp, error) {
	d, err := e.parseDateTime(native.TypeTimestamp, text, model)
	return Timestamp{d}, err
}

// TimestampTZFromString parses a TIMESTAMP WITH TIME ZONE. Text without
// a zone takes the session time zone.
func (e *Environment) TimestampTZFromString(text, model string) (TimestampTZ, error) {
	d, err := e.parseDateTime(native.TypeTimestampTZ, text, model)
	return TimestampTZ{d}, err
}

// TimestampLTZFromString parses a TIMESTAMP WITH LOCAL TIME ZONE.
func (e *Environment) TimestampLTZFromString(text, model string) (TimestampLTZ, error) {
	d, err := e.parseDateTime(native.TypeTimestampLTZ, text, model)
	return TimestampLTZ{d}, err
}

// NewDate builds a DATE from its components. Negative years are BC.
func (e *Environment) NewDate(year, month, day, hour, minute, second int) (Date, error) {
	if err := e.check(errors.PhaseEncode); err != nil {
		return Date{}, err
	}
	b, err := codec.EncodeDate(codec.DateTime{
		Year: year, Month: month, Day: day,
		Hour: hour, Minute: minute, Second: second,
	})
	if err != nil {
		return Date{}, err
	}
	return Date{env: e, b: b}, nil
}

func (e *Environment) fromTime(t native.TypeCode, tm time.Time) (datetime, error) {
	if err := e.check(errors.PhaseEncode); err != nil {
		return datetime{}, err
	}
	dt := codec.DateTimeOf(tm)
	var (
		b   []byte
		err error
	)
	switch t {
	case native.TypeDate:
		b, err = codec.EncodeDate(dt)
	case native.TypeTimestamp:
		b, err = codec.EncodeTimestamp(dt.WithoutZone())
	case native.TypeTimestampTZ:
		if name := tm.Location().String(); tm.Location() != time.UTC && tm.Location() != time.Local {
			if _, ok := codec.RegionID(name); ok {
				dt.Region = name
			}
		}
		b, err = codec.EncodeTimestampTZ(dt)
	default:
		b, err = codec.EncodeTimestampLTZ(dt)
	}
	if err != nil {
		return datetime{}, err
	}
	return datetime{env: e, t: t, b: b}, nil
}

// DateFromTime keeps the wall clock of t and drops its fraction and zone.
func (e *Environment) DateFromTime(t time.Time) (Date, error) {
	d, err := e.fromTime(native.TypeDate, t)
	if err != nil {
		return Date{}, err
	}
	return Date{env: e, b: d.b}, nil
}

// TimestampFromTime keeps the wall clock of t and drops its zone.
func (e *Environment) TimestampFromTime(t time.Time) (Timestamp, error) {
	d, err := e.fromTime(native.TypeTimestamp, t)
	return Timestamp{d}, err
}

// TimestampTZFromTime keeps t's zone: its region when the location is a
// known region, its offset otherwise.
func (e *Environment) TimestampTZFromTime(t time.Time) (TimestampTZ, error) {
	d, err := e.fromTime(native.TypeTimestampTZ, t)
	return TimestampTZ{d}, err
}

// TimestampLTZFromTime stores the instant t.
func (e *Environment) TimestampLTZFromTime(t time.Time) (TimestampLTZ, error) {
	d, err := e.fromTime(native.TypeTimestampLTZ, t)
	return TimestampLTZ{d}, err
}

func (e *Environment) parseInterval(t native.TypeCode, text string) ([]byte, error) {
	if err := e.check(errors.PhaseFormat); err != nil {
		return nil, err
	}
	b, err := e.drv.IntervalFromText(e.nh, t, text)
	if err != nil {
		return nil, callError(errors.PhaseFormat, "interval from text", err)
	}
	return b, nil
}

// IntervalYMFromString parses "[+-]Y-M".
func (e *Environment) IntervalYMFromString(text string) (IntervalYM, error) {
	b, err := e.parseInterval(native.TypeIntervalYM, text)
	if err != nil {
		return IntervalYM{}, err
	}
	return IntervalYM{env: e, b: b}, nil
}

// IntervalDSFromString parses "[+-]D HH:MI:SS[.F]".
func (e *Environment) IntervalDSFromString(text string) (IntervalDS, error) {
	b, err := e.parseInterval(native.TypeIntervalDS, text)
	if err != nil {
		return IntervalDS{}, err
	}
	return IntervalDS{env: e, b: b}, nil
}

// NewIntervalYM builds an interval from years and months of the same
// sign.
func (e *Environment) NewIntervalYM(years, months int) (IntervalYM, error) {
	if err := e.check(errors.PhaseEncode); err != nil {
		return IntervalYM{}, err
	}
	b, err := codec.EncodeIntervalYM(codec.YearMonth{Years: years, Months: months})
	if err != nil {
		return IntervalYM{}, err
	}
	return IntervalYM{env: e, b: b}, nil
}

// IntervalDSFromDuration converts d.
func (e *Environment) IntervalDSFromDuration(d time.Duration) (IntervalDS, error) {
	if err := e.check(errors.PhaseEncode); err != nil {
		return IntervalDS{}, err
	}
	b, err := codec.EncodeIntervalDS(codec.DaySecondFromDuration(d))
	if err != nil {
		return IntervalDS{}, err
	}
	return IntervalDS{env: e, b: b}, nil
}

// RowIDFromString parses the 18-character ROWID text form.
func (e *Environment) RowIDFromString(text string) (RowID, error) {
	if err := e.check(errors.PhaseEncode); err != nil {
		return RowID{}, err
	}
	id, err := codec.ParseRowID(text)
	if err != nil {
		return RowID{}, err
	}
	return RowID{id: id}, nil
}
