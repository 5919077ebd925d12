package resource

import "fmt"

// Handle is an opaque, generation-checked reference to a registered
// native resource. The low 32 bits hold the slot index plus one, the high
// 32 bits the slot generation at acquisition time.
// Handle 0 is reserved and always invalid.
type Handle uint64

func makeHandle(idx, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(idx+1))
}

func (h Handle) slot() (idx, gen uint32, ok bool) {
	lo := uint32(h)
	if lo == 0 {
		return 0, 0, false
	}
	return lo - 1, uint32(h >> 32), true
}

func (h Handle) String() string {
	idx, gen, ok := h.slot()
	if !ok {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d@%d)", idx, gen)
}

// Kind identifies the native resource family behind a handle.
type Kind uint8

const (
	KindEnv Kind = iota + 1
	KindError
	KindService
	KindStatement
	KindBind
	KindDefine
	KindCursor
	KindDescriptor
	KindLob

	kindCount
)

var kindNames = [...]string{
	KindEnv:        "env",
	KindError:      "error",
	KindService:    "service",
	KindStatement:  "statement",
	KindBind:       "bind",
	KindDefine:     "define",
	KindCursor:     "cursor",
	KindDescriptor: "descriptor",
	KindLob:        "lob",
}

func (k Kind) String() string {
	if k > 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Kinds lists every registrable kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindEnv; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventAcquired EventType = iota
	EventReleased
)

// Event represents a resource lifecycle event.
type Event struct {
	Value  Releaser
	Handle Handle
	Parent Handle
	Kind   Kind
	Type   EventType
	// Err is the release failure, if any. Only set on EventReleased.
	Err error
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Releaser is implemented by every registered value. Release frees the
// underlying native resource and is called exactly once.
type Releaser interface {
	Release() error
}

// ReleaseFunc adapts a function to Releaser.
type ReleaseFunc func() error

func (f ReleaseFunc) Release() error {
	if f == nil {
		return nil
	}
	return f()
}
