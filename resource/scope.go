package resource

import "github.com/hashicorp/go-multierror"

// Scope groups the handles acquired by one operation. Unless Commit is
// called, Rollback releases them newest first, so a failure halfway
// through building a related set of handles never leaks the earlier ones.
//
//	sc := reg.Scope()
//	defer sc.Rollback()
//	env, err := sc.Acquire(KindEnv, 0, envRes)
//	...
//	sc.Commit()
type Scope struct {
	reg       *Registry
	handles   []Handle
	committed bool
}

// Scope starts a new acquisition scope.
func (r *Registry) Scope() *Scope {
	return &Scope{reg: r}
}

// Acquire registers value and remembers the handle for rollback. If the
// registry refuses the value, value is released immediately and a failed
// release is reported alongside the refusal.
func (s *Scope) Acquire(kind Kind, parent Handle, value Releaser) (Handle, error) {
	h, err := s.reg.Acquire(kind, parent, value)
	if err != nil {
		if value == nil {
			return 0, err
		}
		if rerr := value.Release(); rerr != nil {
			return 0, multierror.Append(err, rerr)
		}
		return 0, err
	}
	s.handles = append(s.handles, h)
	return h, nil
}

// Commit keeps every handle acquired so far.
func (s *Scope) Commit() {
	s.committed = true
}

// Rollback releases the scope's handles unless committed. Handles already
// released through a parent are skipped.
func (s *Scope) Rollback() error {
	if s.committed {
		return nil
	}
	s.committed = true

	var result *multierror.Error
	for i := len(s.handles) - 1; i >= 0; i-- {
		h := s.handles[i]
		if !s.reg.Alive(h) {
			continue
		}
		if err := s.reg.Release(h); err != nil {
			result = multierror.Append(result, err)
		}
	}
	s.handles = nil
	return result.ErrorOrNil()
}
