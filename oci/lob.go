package oci

import (
	"io"

	"github.com/wippyai/oci-runtime/codec"
	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
	"github.com/wippyai/oci-runtime/resource"
)

// Lob is a CLOB or BLOB locator fetched from a column or OUT parameter.
// It belongs to the statement that produced it. Offsets and lengths are
// in bytes.
type Lob struct {
	env  *Environment
	h    resource.Handle
	nh   native.Handle
	clob bool
}

var _ io.ReaderAt = (*Lob)(nil)

func newLob(env *Environment, owner resource.Handle, nh native.Handle, clob bool) (*Lob, error) {
	h, err := env.reg.Scope().Acquire(resource.KindLob, owner, env.freer(nh))
	if err != nil {
		return nil, err
	}
	return &Lob{env: env, h: h, nh: nh, clob: clob}, nil
}

func (l *Lob) check() error {
	if !l.env.reg.Alive(l.h) {
		return errors.Lifetime(errors.PhaseFetch, "LOB locator")
	}
	return nil
}

// IsClob reports whether the locator is a character LOB.
func (l *Lob) IsClob() bool { return l.clob }

// Len returns the LOB size.
func (l *Lob) Len() (int64, error) {
	if err := l.check(); err != nil {
		return 0, err
	}
	n, err := l.env.drv.LobLength(l.nh)
	if err != nil {
		return 0, callError(errors.PhaseFetch, "LOB length", err)
	}
	return n, nil
}

// ReadAt reads len(p) bytes from off. It returns io.EOF when fewer bytes
// remain.
func (l *Lob) ReadAt(p []byte, off int64) (int, error) {
	if err := l.check(); err != nil {
		return 0, err
	}
	total := 0
	for total < len(p) {
		n, err := l.env.drv.LobRead(l.nh, off+int64(total), p[total:])
		if err != nil {
			return total, callError(errors.PhaseFetch, "LOB read", err)
		}
		if n == 0 {
			return total, io.EOF
		}
		total += n
	}
	return total, nil
}

// Bytes reads the whole LOB.
func (l *Lob) Bytes() ([]byte, error) {
	n, err := l.Len()
	if err != nil {
		return nil, err
	}
	p := make([]byte, n)
	if _, err := l.ReadAt(p, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return p, nil
}

// Text reads the whole LOB as UTF-8 text.
func (l *Lob) Text() (string, error) {
	p, err := l.Bytes()
	if err != nil {
		return "", err
	}
	return codec.DecodeText(p)
}

// Close frees the locator before its statement is closed.
func (l *Lob) Close() error {
	if !l.env.reg.Alive(l.h) {
		return nil
	}
	return l.env.reg.Release(l.h)
}

// LobData is LOB content bound as an IN parameter.
type LobData struct {
	data []byte
	clob bool
}

// Clob binds s as CLOB content.
func Clob(s string) LobData { return LobData{data: []byte(s), clob: true} }

// Blob binds b as BLOB content.
func Blob(b []byte) LobData { return LobData{data: b} }
