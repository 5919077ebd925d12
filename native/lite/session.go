package lite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/wippyai/oci-runtime/native"
)

type sharedDB struct {
	db   *sqlx.DB
	refs int
}

type session struct {
	id     uuid.UUID
	dsn    string
	env    *environment
	conn   *sqlx.Conn
	inTx   bool
	closed bool
}

const dualView = `CREATE TEMP VIEW IF NOT EXISTS dual AS SELECT 'X' AS dummy`

// Logon opens a session on the SQLite database named by descriptor.
func (c *Client) Logon(envh native.Handle, descriptor, user, password string) (native.Handle, error) {
	env, err := c.env(envh)
	if err != nil {
		return 0, err
	}
	if user == "" {
		return 0, native.Errorf(native.CodeInvalidLogon, "invalid username/password; logon denied")
	}

	db, err := c.acquireDB(descriptor)
	if err != nil {
		return 0, err
	}
	ctx := context.Background()
	conn, err := db.Connx(ctx)
	if err != nil {
		c.releaseDB(descriptor)
		return 0, mapError(err)
	}
	if _, err := conn.ExecContext(ctx, dualView); err != nil {
		_ = conn.Close()
		c.releaseDB(descriptor)
		return 0, mapError(err)
	}

	s := &session{id: uuid.New(), dsn: descriptor, env: env, conn: conn}
	h := c.put(kindService, envh, s)
	c.log.Debug("session opened",
		zap.String("session", s.id.String()),
		zap.String("user", user),
		zap.Uint64("handle", uint64(h)))
	return h, nil
}

func (c *Client) acquireDB(dsn string) (*sqlx.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sh, ok := c.dbs[dsn]; ok {
		sh.refs++
		return sh.db, nil
	}
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, mapError(err)
	}
	c.dbs[dsn] = &sharedDB{db: db, refs: 1}
	return db, nil
}

func (c *Client) releaseDB(dsn string) {
	c.mu.Lock()
	sh, ok := c.dbs[dsn]
	if ok {
		sh.refs--
		if sh.refs > 0 {
			ok = false
		} else {
			delete(c.dbs, dsn)
		}
	}
	c.mu.Unlock()
	if ok {
		if err := sh.db.Close(); err != nil {
			c.log.Warn("closing database failed", zap.String("dsn", dsn), zap.Error(err))
		}
	}
}

// Logoff rolls back uncommitted work and closes the session.
func (c *Client) Logoff(svc native.Handle) error {
	s, err := c.session(svc)
	if err != nil {
		return err
	}
	return c.logoff(s)
}

func (c *Client) logoff(s *session) error {
	var first error
	if s.inTx {
		c.log.Debug("rolling back uncommitted work at logoff", zap.String("session", s.id.String()))
		if err := s.endTx("ROLLBACK"); err != nil {
			first = err
		}
	}
	if err := s.conn.Close(); err != nil && first == nil {
		first = mapError(err)
	}
	s.closed = true
	c.releaseDB(s.dsn)
	c.log.Debug("session closed", zap.String("session", s.id.String()))
	return first
}

// ServerVersion reports the version banner and the SQLite library version.
func (c *Client) ServerVersion(svc native.Handle) (string, error) {
	s, err := c.session(svc)
	if err != nil {
		return "", err
	}
	var v string
	if err := s.conn.GetContext(context.Background(), &v, "SELECT sqlite_version()"); err != nil {
		return "", mapError(err)
	}
	return fmt.Sprintf("%s (SQLite %s)", c.cfg.Version, v), nil
}

// Ping checks that the session's connection is alive.
func (c *Client) Ping(svc native.Handle) error {
	s, err := c.session(svc)
	if err != nil {
		return err
	}
	return mapError(s.conn.PingContext(context.Background()))
}

// Commit commits the session's transaction, if any.
func (c *Client) Commit(svc native.Handle) error {
	s, err := c.session(svc)
	if err != nil {
		return err
	}
	return s.endTx("COMMIT")
}

// Rollback rolls back the session's transaction, if any.
func (c *Client) Rollback(svc native.Handle) error {
	s, err := c.session(svc)
	if err != nil {
		return err
	}
	return s.endTx("ROLLBACK")
}

func (s *session) beginTx() error {
	if s.inTx {
		return nil
	}
	if _, err := s.conn.ExecContext(context.Background(), "BEGIN"); err != nil {
		return mapError(err)
	}
	s.inTx = true
	return nil
}

func (s *session) endTx(verb string) error {
	if !s.inTx {
		return nil
	}
	s.inTx = false
	if _, err := s.conn.ExecContext(context.Background(), verb); err != nil {
		return mapError(err)
	}
	return nil
}
