package lite

import "github.com/wippyai/oci-runtime/native"

// lob is a temporary LOB holding a fetched value. Lengths and offsets
// are in bytes for both CLOB and BLOB.
type lob struct {
	data []byte
	clob bool
}

// LobLength reports the LOB size in bytes.
func (c *Client) LobLength(h native.Handle) (int64, error) {
	l, err := c.lob(h)
	if err != nil {
		return 0, err
	}
	return int64(len(l.data)), nil
}

// LobRead copies from the zero-based byte offset into p. It returns 0 at
// the end of the LOB.
func (c *Client) LobRead(h native.Handle, offset int64, p []byte) (int, error) {
	l, err := c.lob(h)
	if err != nil {
		return 0, err
	}
	if offset < 0 || offset > int64(len(l.data)) {
		return 0, native.Errorf(native.CodeInvalidHandle, "offset %d is out of range", offset)
	}
	return copy(p, l.data[offset:]), nil
}
