package oci

import (
	"github.com/wippyai/oci-runtime/errors"
	"github.com/wippyai/oci-runtime/native"
	"github.com/wippyai/oci-runtime/resource"
)

// Cursor is a ref cursor returned through an OUT parameter or as an
// implicit result. It is a child of the statement that produced it.
type Cursor struct {
	env  *Environment
	h    resource.Handle
	nh   native.Handle
	used bool
}

// Rows returns the cursor's row stream. It can be called once.
func (c *Cursor) Rows() (*Rows, error) {
	if c.used {
		return nil, errors.Usage(errors.PhaseFetch, "cursor rows already taken")
	}
	if !c.env.reg.Alive(c.h) {
		return nil, errors.Lifetime(errors.PhaseFetch, "cursor")
	}
	return c.rows()
}

func (c *Cursor) rows() (*Rows, error) {
	c.used = true
	return newRows(c.env, c.h, c.nh, decoder{env: c.env, owner: c.h}, true)
}

// Close frees the cursor and anything fetched from it.
func (c *Cursor) Close() error {
	if !c.env.reg.Alive(c.h) {
		return nil
	}
	return c.env.reg.Release(c.h)
}
