package oci

import (
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
	"github.com/wippyai/oci-runtime/resource"
)

// Connection is an authenticated session. Calls on one Connection, and on
// the Statements it prepared, must be serialised by the caller.
type Connection struct {
	env *Environment
	h   resource.Handle
	svc native.Handle
}

// release logs off and frees the service context. The registry calls it
// after every statement of the connection has been released.
func (c *Connection) release() error {
	var result *multierror.Error
	if err := c.env.drv.Logoff(c.svc); err != nil {
		result = multierror.Append(result, callError(errors.PhaseRelease, "logoff", err))
	}
	if err := c.env.drv.HandleFree(c.svc); err != nil {
		result = multierror.Append(result, callError(errors.PhaseRelease, "free service context", err))
	}
	return result.ErrorOrNil()
}

func (c *Connection) check(phase errors.Phase) error {
	if !c.env.reg.Alive(c.h) {
		return errors.Lifetime(phase, "connection")
	}
	return nil
}

// Environment returns the environment the connection belongs to.
func (c *Connection) Environment() *Environment {
	return c.env
}

// Prepare parses text and discovers its placeholders. Values are bound
// when the statement runs.
func (c *Connection) Prepare(text string) (*Statement, error) {
	if err := c.check(errors.PhasePrepare); err != nil {
		return nil, err
	}
	drv := c.env.drv
	sc := c.env.reg.Scope()
	defer sc.Rollback()

	nh, err := drv.StmtPrepare(c.svc, text)
	if err != nil {
		return nil, callError(errors.PhasePrepare, "prepare", err)
	}
	h, err := sc.Acquire(resource.KindStatement, c.h, c.env.freer(nh))
	if err != nil {
		return nil, err
	}
	typ, err := drv.StmtType(nh)
	if err != nil {
		return nil, callError(errors.PhasePrepare, "statement type", err)
	}
	info, err := drv.BindInfo(nh)
	if err != nil {
		return nil, callError(errors.PhasePrepare, "bind info", err)
	}

	s := &Statement{conn: c, env: c.env, h: h, nh: nh, typ: typ, text: text}
	for _, bi := range info {
		if bi.Duplicate {
			continue
		}
		sl := &slot{name: bi.Name, pos: len(s.slots) + 1}
		if sl.h, err = sc.Acquire(resource.KindBind, h, resource.ReleaseFunc(sl.release)); err != nil {
			return nil, err
		}
		s.slots = append(s.slots, sl)
	}
	sc.Commit()

	c.env.log.Debug("statement prepared",
		zap.Stringer("handle", h),
		zap.Stringer("type", typ),
		zap.Int("slots", len(s.slots)))
	return s, nil
}

// Commit commits the current transaction.
func (c *Connection) Commit() error {
	if err := c.check(errors.PhaseExecute); err != nil {
		return err
	}
	return callError(errors.PhaseExecute, "commit", c.env.drv.Commit(c.svc))
}

// Rollback rolls back the current transaction.
func (c *Connection) Rollback() error {
	if err := c.check(errors.PhaseExecute); err != nil {
		return err
	}
	return callError(errors.PhaseExecute, "rollback", c.env.drv.Rollback(c.svc))
}

// Ping makes a round trip to the server.
func (c *Connection) Ping() error {
	if err := c.check(errors.PhaseExecute); err != nil {
		return err
	}
	return callError(errors.PhaseExecute, "ping", c.env.drv.Ping(c.svc))
}

// ServerVersion returns the server's version banner.
func (c *Connection) ServerVersion() (string, error) {
	if err := c.check(errors.PhaseExecute); err != nil {
		return "", err
	}
	v, err := c.env.drv.ServerVersion(c.svc)
	if err != nil {
		return "", callError(errors.PhaseExecute, "server version", err)
	}
	return v, nil
}

// Close releases the connection's statements and cursors, then logs off.
// Uncommitted work is rolled back.
func (c *Connection) Close() error {
	if !c.env.reg.Alive(c.h) {
		return nil
	}
	err := c.env.reg.Release(c.h)
	if err != nil {
		c.env.log.Warn("connection teardown failed", zap.Stringer("handle", c.h), zap.Error(err))
	}
	return err
}
