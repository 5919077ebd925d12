package oci

import "github.com/wippyai/oci-runtime/codec"

// RowID identifies a row. It supports comparison and its text form only.
type RowID struct {
	id codec.RowID
}

// String returns the 18-character form.
func (r RowID) String() string { return r.id.String() }

// Equal reports whether both identify the same row.
func (r RowID) Equal(o RowID) bool { return r.id == o.id }

// Bytes returns the 10-byte native encoding.
func (r RowID) Bytes() []byte {
	b, err := codec.EncodeRowID(r.id)
	if err != nil {
		return nil
	}
	return b
}
