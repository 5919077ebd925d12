package lite

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/native"
)

// Config configures a Client.
type Config struct {
	// MaxTextSize caps text values returned to define and OUT buffers.
	MaxTextSize int
	// TimeZone is the session time zone used for SYSDATE, zone-less
	// TIMESTAMP WITH TIME ZONE input and LOCAL TIME ZONE rendering.
	TimeZone *time.Location
	// Version is reported by ServerVersion.
	Version string
	Logger  *zap.Logger
}

// Option adjusts a Config.
type Option func(*Config)

// WithMaxTextSize sets Config.MaxTextSize.
func WithMaxTextSize(n int) Option {
	return func(c *Config) { c.MaxTextSize = n }
}

// WithTimeZone sets the session time zone.
func WithTimeZone(loc *time.Location) Option {
	return func(c *Config) { c.TimeZone = loc }
}

// WithVersion sets the version banner.
func WithVersion(v string) Option {
	return func(c *Config) { c.Version = v }
}

// WithLogger routes the client's logging to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

const defaultVersion = "23.0.0.0.0"

type handleKind uint8

const (
	kindEnv handleKind = iota + 1
	kindError
	kindService
	kindStatement
	kindLob
)

func (k handleKind) String() string {
	switch k {
	case kindEnv:
		return "environment"
	case kindError:
		return "error"
	case kindService:
		return "service context"
	case kindStatement:
		return "statement"
	case kindLob:
		return "LOB locator"
	}
	return "handle"
}

type entry struct {
	kind   handleKind
	parent native.Handle
	value  any
}

type environment struct {
	mode native.Mode
	loc  *time.Location
}

// Client is a native.Interface over SQLite. It is safe for concurrent use
// across service contexts.
type Client struct {
	cfg Config
	log *zap.Logger

	mu      sync.Mutex
	next    native.Handle
	handles map[native.Handle]*entry
	dbs     map[string]*sharedDB
}

var _ native.Interface = (*Client)(nil)

// New creates a Client.
func New(opts ...Option) *Client {
	cfg := Config{
		MaxTextSize: codec.MaxTextSize,
		TimeZone:    time.UTC,
		Version:     defaultVersion,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxTextSize <= 0 {
		cfg.MaxTextSize = codec.MaxTextSize
	}
	if cfg.TimeZone == nil {
		cfg.TimeZone = time.UTC
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	return &Client{
		cfg:     cfg,
		log:     log,
		handles: make(map[native.Handle]*entry),
		dbs:     make(map[string]*sharedDB),
	}
}

// Open reports how many handles are currently allocated.
func (c *Client) Open() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

func (c *Client) put(kind handleKind, parent native.Handle, value any) native.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	h := c.next
	c.handles[h] = &entry{kind: kind, parent: parent, value: value}
	return h
}

func (c *Client) lookup(h native.Handle, kind handleKind) (*entry, error) {
	c.mu.Lock()
	e, ok := c.handles[h]
	c.mu.Unlock()
	if !ok || e.kind != kind {
		return nil, native.Errorf(native.CodeInvalidHandle, "invalid %s handle %d", kind, h)
	}
	return e, nil
}

func (c *Client) env(h native.Handle) (*environment, error) {
	e, err := c.lookup(h, kindEnv)
	if err != nil {
		return nil, err
	}
	return e.value.(*environment), nil
}

func (c *Client) session(h native.Handle) (*session, error) {
	e, err := c.lookup(h, kindService)
	if err != nil {
		return nil, err
	}
	s := e.value.(*session)
	if s.closed {
		return nil, native.Errorf(native.CodeNotConnected, "not connected to ORACLE")
	}
	return s, nil
}

func (c *Client) statement(h native.Handle) (*statement, error) {
	e, err := c.lookup(h, kindStatement)
	if err != nil {
		return nil, err
	}
	return e.value.(*statement), nil
}

func (c *Client) lob(h native.Handle) (*lob, error) {
	e, err := c.lookup(h, kindLob)
	if err != nil {
		return nil, err
	}
	return e.value.(*lob), nil
}

// EnvCreate creates an environment handle.
func (c *Client) EnvCreate(mode native.Mode) (native.Handle, error) {
	h := c.put(kindEnv, 0, &environment{mode: mode, loc: c.cfg.TimeZone})
	c.log.Debug("environment created", zap.Uint64("handle", uint64(h)), zap.Uint32("mode", uint32(mode)))
	return h, nil
}

// HandleAlloc allocates error handles and empty LOB locators.
func (c *Client) HandleAlloc(parent native.Handle, kind native.HandleKind) (native.Handle, error) {
	c.mu.Lock()
	_, ok := c.handles[parent]
	c.mu.Unlock()
	if !ok {
		return 0, native.Errorf(native.CodeInvalidHandle, "invalid parent handle %d", parent)
	}
	switch kind {
	case native.HandleError:
		return c.put(kindError, parent, nil), nil
	case native.HandleLob:
		return c.put(kindLob, parent, &lob{}), nil
	}
	return 0, native.Errorf(native.CodeUnsupportedOperation, "unimplemented feature: handle kind %d", kind)
}

// HandleFree frees h and every handle allocated under it.
func (c *Client) HandleFree(h native.Handle) error {
	c.mu.Lock()
	if _, ok := c.handles[h]; !ok {
		c.mu.Unlock()
		return native.Errorf(native.CodeInvalidHandle, "invalid handle %d", h)
	}
	doomed := c.subtree(h)
	removed := make([]*entry, 0, len(doomed))
	for _, d := range doomed {
		removed = append(removed, c.handles[d])
		delete(c.handles, d)
	}
	c.mu.Unlock()

	var first error
	for _, e := range removed {
		if err := c.dispose(e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// subtree lists h and its descendants, children before parents.
// c.mu must be held.
func (c *Client) subtree(h native.Handle) []native.Handle {
	var out []native.Handle
	for child, e := range c.handles {
		if e.parent == h {
			out = append(out, c.subtree(child)...)
		}
	}
	return append(out, h)
}

func (c *Client) dispose(e *entry) error {
	switch v := e.value.(type) {
	case *statement:
		v.close()
	case *session:
		if !v.closed {
			return c.logoff(v)
		}
	}
	return nil
}
