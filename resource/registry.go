package resource

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/wippyai/oci-runtime/errors"
)

// Registry tracks every live native handle together with its owner.
// Releasing a handle releases its descendants first, so a child never
// outlives its parent. A Registry is safe for concurrent use.
type Registry struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
}

// NewRegistry creates a registry. A limit <= 0 means unbounded.
func NewRegistry(limit int) *Registry {
	return &Registry{
		backend: NewLocalBackend(limit),
	}
}

// Acquire registers value as a resource of the given kind owned by parent.
// Parent zero makes a root. The value is not released on failure; callers
// that already allocated the native resource free it themselves, or use a
// Scope.
func (r *Registry) Acquire(kind Kind, parent Handle, value Releaser) (Handle, error) {
	h, err := r.backend.Create(kind, parent, value)
	if err != nil {
		switch {
		case stderrors.Is(err, ErrExhausted):
			return 0, errors.New(errors.PhaseAcquire, errors.KindResourceExhausted).
				Detail("%s handle: limit %d reached", kind, r.backend.limit).
				Cause(err).
				Build()
		case stderrors.Is(err, ErrStale):
			return 0, errors.New(errors.PhaseAcquire, errors.KindLifetime).
				Detail("parent %s of new %s handle is no longer valid", parent, kind).
				Cause(err).
				Build()
		default:
			return 0, errors.New(errors.PhaseAcquire, errors.KindLifetime).
				Detail("acquire %s handle", kind).
				Cause(err).
				Build()
		}
	}

	r.notify(Event{
		Type:   EventAcquired,
		Handle: h,
		Parent: parent,
		Kind:   kind,
		Value:  value,
	})
	return h, nil
}

// Release frees h and everything it owns, children before parents.
// Every value is released even if some fail; failures are aggregated.
// Releasing a handle twice is a lifetime error.
func (r *Registry) Release(h Handle) error {
	items, err := r.backend.detach(h)
	if err != nil {
		return errors.New(errors.PhaseRelease, errors.KindLifetime).
			Detail("release %s: handle already released or unknown", h).
			Cause(err).
			Build()
	}

	var result *multierror.Error
	for _, it := range items {
		var relErr error
		if it.value != nil {
			relErr = it.value.Release()
		}
		if relErr != nil {
			result = multierror.Append(result, fmt.Errorf("%s %s: %w", it.kind, it.handle, relErr))
		}
		r.notify(Event{
			Type:   EventReleased,
			Handle: it.handle,
			Parent: it.parent,
			Kind:   it.kind,
			Value:  it.value,
			Err:    relErr,
		})
	}
	return result.ErrorOrNil()
}

// Get retrieves a live value by handle.
func (r *Registry) Get(h Handle) (Releaser, bool) {
	v, _, ok := r.backend.Get(h)
	return v, ok
}

// GetTyped retrieves a value only if it is of the expected kind.
func (r *Registry) GetTyped(h Handle, kind Kind) (Releaser, bool) {
	v, k, ok := r.backend.Get(h)
	if !ok || k != kind {
		return nil, false
	}
	return v, true
}

// Lookup retrieves a live value of type T.
func Lookup[T Releaser](r *Registry, h Handle) (T, bool) {
	var zero T
	v, ok := r.Get(h)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Alive reports whether h refers to a live resource.
func (r *Registry) Alive(h Handle) bool {
	_, _, ok := r.backend.Get(h)
	return ok
}

// Check returns a lifetime error if h is not live.
func (r *Registry) Check(h Handle, what string) error {
	if r.Alive(h) {
		return nil
	}
	return errors.Lifetime(errors.PhaseAcquire, what)
}

// KindOf returns the kind of a live handle.
func (r *Registry) KindOf(h Handle) (Kind, bool) {
	_, k, ok := r.backend.Get(h)
	return k, ok
}

// Parent returns the owner of h; zero for roots.
func (r *Registry) Parent(h Handle) (Handle, bool) {
	return r.backend.Parent(h)
}

// Children returns the live children of h in acquisition order.
func (r *Registry) Children(h Handle) []Handle {
	return r.backend.Children(h)
}

// Len returns the number of live resources.
func (r *Registry) Len() int {
	return r.backend.Len()
}

// LenKind returns the number of live resources of one kind.
func (r *Registry) LenKind(k Kind) int {
	return r.backend.LenKind(k)
}

// Each iterates over all live resources.
func (r *Registry) Each(fn func(Handle, Kind, Releaser) bool) {
	r.backend.Each(fn)
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Close releases every root (and so every handle), newest root first, and
// stops accepting acquisitions. Closing twice is a no-op.
func (r *Registry) Close() error {
	if !r.backend.MarkClosed() {
		return nil
	}

	roots := r.backend.Roots()
	var result *multierror.Error
	for i := len(roots) - 1; i >= 0; i-- {
		if err := r.Release(roots[i]); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnResourceEvent(e)
	}
}
