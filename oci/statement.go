package oci

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
	"github.com/wippyai/oci-runtime/resource"
)

// Statement is a prepared statement. It is reusable: each run rebinds the
// slots without preparing again.
type Statement struct {
	conn *Connection
	env  *Environment
	h    resource.Handle
	nh   native.Handle
	typ  native.StmtType
	text string

	slots []*slot
	// rows is the result of the last Query, invalidated by the next run.
	rows *Rows
}

func (s *Statement) check(phase errors.Phase) error {
	if !s.env.reg.Alive(s.h) {
		return errors.Lifetime(phase, "statement")
	}
	return nil
}

// Type returns the statement classification.
func (s *Statement) Type() native.StmtType { return s.typ }

// IsQuery reports whether the statement is a SELECT.
func (s *Statement) IsQuery() bool { return s.typ == native.StmtSelect }

// IsPLSQL reports whether the statement is an anonymous block or call.
func (s *Statement) IsPLSQL() bool { return s.typ.IsPLSQL() }

// Text returns the statement text as prepared.
func (s *Statement) Text() string { return s.text }

// Params returns the slot names in text order. A SQL name that occurs
// more than once is listed once; a PL/SQL name is listed per occurrence.
func (s *Statement) Params() []string {
	names := make([]string, len(s.slots))
	for i, sl := range s.slots {
		names[i] = sl.name
	}
	return names
}

// Query runs a SELECT and returns its row stream. Other statement types
// fail with a not_query error without being executed.
func (s *Statement) Query(args ...any) (*Rows, error) {
	if err := s.check(errors.PhaseExecute); err != nil {
		return nil, err
	}
	if !s.IsQuery() {
		return nil, errors.NotQuery(s.typ.String())
	}
	if _, err := s.run(args); err != nil {
		return nil, err
	}
	rows, err := newRows(s.env, s.h, s.nh, decoder{env: s.env, owner: s.h, stmt: s}, false)
	if err != nil {
		return nil, err
	}
	s.rows = rows
	return rows, nil
}

// Execute runs the statement and returns the number of rows affected.
// Queries are executed without fetching and report 0.
func (s *Statement) Execute(args ...any) (int64, error) {
	return s.run(args)
}

// ExecuteInto runs the statement with in as its arguments and decodes
// OUT and INOUT values into out. Every out parameter must come from Out,
// OutSize or InOut.
func (s *Statement) ExecuteInto(in []any, out ...Param) (int64, error) {
	args := make([]any, 0, len(in)+len(out))
	args = append(args, in...)
	for _, p := range out {
		if p.dir == native.DirIn {
			return 0, errors.New(errors.PhaseBind, errors.KindUsage).
				Path(normalizeName(p.name)).
				Detail("output parameter must be created with Out, OutSize or InOut").
				Build()
		}
		args = append(args, p)
	}
	return s.run(args)
}

// run binds args, executes and decodes OUT values. A failure at any step
// leaves the statement ready for another run.
func (s *Statement) run(args []any) (int64, error) {
	if err := s.check(errors.PhaseExecute); err != nil {
		return 0, err
	}
	bindings, err := resolve(s.slots, args)
	if err != nil {
		return 0, err
	}
	for _, b := range bindings {
		if err := prepareBuffer(s.env, b); err != nil {
			return 0, err
		}
	}
	s.closeRows()

	drv := s.env.drv
	for _, sl := range s.slots {
		if sl.buf == sl.bound {
			continue
		}
		if err := drv.BindByPos(s.nh, sl.pos, sl.buf); err != nil {
			return 0, bindError(binding{slot: sl}, callError(errors.PhaseBind, "bind", err))
		}
		sl.bound = sl.buf
	}

	iters := 1
	if s.IsQuery() {
		iters = 0
	}
	if err := drv.StmtExecute(s.nh, iters); err != nil {
		s.env.log.Debug("execute failed", zap.Stringer("handle", s.h), zap.Error(err))
		return 0, callError(errors.PhaseExecute, "execute", err)
	}

	dc := decoder{env: s.env, owner: s.h, stmt: s}
	for _, b := range bindings {
		if b.dir == native.DirIn {
			continue
		}
		if err := storeOut(dc, b); err != nil {
			return 0, err
		}
	}

	if s.IsQuery() {
		return 0, nil
	}
	n, err := drv.RowCount(s.nh)
	if err != nil {
		return 0, callError(errors.PhaseExecute, "row count", err)
	}
	s.env.log.Debug("statement executed",
		zap.Stringer("handle", s.h),
		zap.Stringer("type", s.typ),
		zap.Int64("rows", n))
	return n, nil
}

// storeOut decodes one OUT buffer into its destination. NULL stores the
// destination's zero value.
func storeOut(dc decoder, b binding) error {
	buf := b.slot.buf
	if buf.IsNull() {
		v := reflect.ValueOf(b.value)
		if v.Kind() == reflect.Pointer && !v.IsNil() {
			v.Elem().SetZero()
		}
		return nil
	}
	if err := dc.into(b.slot.name, buf, b.value); err != nil {
		return withPath(b.slot.name, err)
	}
	return nil
}

// closeRows invalidates the rows of the previous Query.
func (s *Statement) closeRows() {
	if s.rows == nil {
		return
	}
	if err := s.rows.release(); err != nil {
		s.env.log.Warn("releasing previous result failed", zap.Stringer("handle", s.h), zap.Error(err))
	}
	s.rows = nil
}

// adoptCursor registers a ref cursor returned through an OUT parameter.
func (s *Statement) adoptCursor(nh native.Handle) (*Cursor, error) {
	h, err := s.env.reg.Scope().Acquire(resource.KindCursor, s.h, s.env.freer(nh))
	if err != nil {
		return nil, err
	}
	return &Cursor{env: s.env, h: h, nh: nh}, nil
}

// NextResult returns the next implicit result set of the last run, or
// nil when none remain. The result is closed with the statement at the
// latest.
func (s *Statement) NextResult() (*Rows, error) {
	if err := s.check(errors.PhaseFetch); err != nil {
		return nil, err
	}
	nh, err := s.env.drv.NextResult(s.nh)
	if err != nil {
		return nil, callError(errors.PhaseFetch, "next result", err)
	}
	if nh == 0 {
		return nil, nil
	}
	c, err := s.adoptCursor(nh)
	if err != nil {
		return nil, err
	}
	return c.rows()
}

// Close releases the statement, its binds and every cursor, LOB and row
// stream it produced.
func (s *Statement) Close() error {
	if !s.env.reg.Alive(s.h) {
		return nil
	}
	s.rows = nil
	err := s.env.reg.Release(s.h)
	if err != nil {
		s.env.log.Warn("statement teardown failed", zap.Stringer("handle", s.h), zap.Error(err))
	}
	return err
}
