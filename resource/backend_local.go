package resource

import (
	"errors"
	"sync"
)

var (
	ErrClosed    = errors.New("resource registry closed")
	ErrExhausted = errors.New("resource limit reached")
	ErrStale     = errors.New("stale or unknown handle")
)

// LocalBackend is the in-memory slot store behind a Registry. Slots are
// recycled through a free list; each reuse bumps the slot generation so a
// handle to the previous occupant no longer resolves.
type LocalBackend struct {
	entries  []entry
	freeList []uint32
	byKind   [kindCount]int
	live     int
	limit    int
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value    Releaser
	parent   Handle
	children []Handle
	gen      uint32
	kind     Kind
	valid    bool
}

// NewLocalBackend creates a slot store. A limit <= 0 means unbounded.
func NewLocalBackend(limit int) *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
		limit:    limit,
	}
}

// lookup returns the live entry for h. Caller holds mu.
func (b *LocalBackend) lookup(h Handle) (*entry, bool) {
	idx, gen, ok := h.slot()
	if !ok || int(idx) >= len(b.entries) {
		return nil, false
	}
	e := &b.entries[idx]
	if !e.valid || e.gen != gen {
		return nil, false
	}
	return e, true
}

// Create stores a value under parent and returns its handle.
func (b *LocalBackend) Create(kind Kind, parent Handle, value Releaser) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}
	if b.limit > 0 && b.live >= b.limit {
		return 0, ErrExhausted
	}

	var pe *entry
	if parent != 0 {
		var ok bool
		if pe, ok = b.lookup(parent); !ok {
			return 0, ErrStale
		}
	}

	var idx uint32
	if n := len(b.freeList); n > 0 {
		idx = b.freeList[n-1]
		b.freeList = b.freeList[:n-1]
	} else {
		b.entries = append(b.entries, entry{})
		idx = uint32(len(b.entries) - 1)
	}

	e := &b.entries[idx]
	e.gen++
	e.kind = kind
	e.value = value
	e.parent = parent
	e.children = e.children[:0]
	e.valid = true

	h := makeHandle(idx, e.gen)
	if pe != nil {
		pe.children = append(pe.children, h)
	}
	b.live++
	b.byKind[kind]++
	return h, nil
}

// Get retrieves a value by handle.
func (b *LocalBackend) Get(h Handle) (Releaser, Kind, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(h)
	if !ok {
		return nil, 0, false
	}
	return e.value, e.kind, true
}

// Parent returns the parent handle, zero for roots.
func (b *LocalBackend) Parent(h Handle) (Handle, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(h)
	if !ok {
		return 0, false
	}
	return e.parent, true
}

// Children returns a copy of the live children of h in acquisition order.
func (b *LocalBackend) Children(h Handle) []Handle {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(h)
	if !ok {
		return nil
	}
	out := make([]Handle, len(e.children))
	copy(out, e.children)
	return out
}

// detached is a removed entry whose value still needs releasing.
type detached struct {
	value  Releaser
	handle Handle
	parent Handle
	kind   Kind
}

// detach invalidates h and all of its descendants and returns them in
// release order: deepest first, siblings newest first, h last.
func (b *LocalBackend) detach(h Handle) ([]detached, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.lookup(h)
	if !ok {
		return nil, ErrStale
	}
	if e.parent != 0 {
		if pe, ok := b.lookup(e.parent); ok {
			pe.children = removeHandle(pe.children, h)
		}
	}

	var out []detached
	b.detachLocked(h, &out)
	return out, nil
}

func (b *LocalBackend) detachLocked(h Handle, out *[]detached) {
	e, ok := b.lookup(h)
	if !ok {
		return
	}
	for i := len(e.children) - 1; i >= 0; i-- {
		b.detachLocked(e.children[i], out)
	}

	*out = append(*out, detached{value: e.value, handle: h, parent: e.parent, kind: e.kind})

	idx, _, _ := h.slot()
	e.valid = false
	e.value = nil
	e.parent = 0
	e.children = e.children[:0]
	b.freeList = append(b.freeList, idx)
	b.live--
	b.byKind[e.kind]--
}

// Roots returns live root handles in acquisition order of their slots.
func (b *LocalBackend) Roots() []Handle {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Handle
	for i := range b.entries {
		e := &b.entries[i]
		if e.valid && e.parent == 0 {
			out = append(out, makeHandle(uint32(i), e.gen))
		}
	}
	return out
}

// MarkClosed stops accepting new entries.
func (b *LocalBackend) MarkClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	was := b.closed
	b.closed = true
	return !was
}

// Len returns the number of live resources.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.live
}

// LenKind returns the number of live resources of one kind.
func (b *LocalBackend) LenKind(k Kind) int {
	if k == 0 || k >= kindCount {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.byKind[k]
}

// Each iterates over all live resources.
func (b *LocalBackend) Each(fn func(Handle, Kind, Releaser) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := range b.entries {
		e := &b.entries[i]
		if e.valid {
			if !fn(makeHandle(uint32(i), e.gen), e.kind, e.value) {
				break
			}
		}
	}
}

func removeHandle(list []Handle, h Handle) []Handle {
	for i, c := range list {
		if c == h {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
