package native

import "encoding/binary"

// Direction says which way a bind buffer carries data.
type Direction uint8

const (
	DirIn Direction = iota
	DirOut
	DirInOut
)

// Indicator values.
const (
	IndNotNull int16 = 0
	IndNull    int16 = -1
)

// Buffer is a caller-owned value area handed to bind and define calls.
// The native side reads IN values from Data[:Len] and writes OUT or
// fetched values into Data, updating Len and Ind. Data must not be
// reallocated by the native side for fixed-size types, and an OUT value
// longer than len(Data) is an error rather than a reallocation.
type Buffer struct {
	Data []byte
	Len  int
	Ind  int16
	Type TypeCode
	Dir  Direction
}

// NewBuffer allocates a buffer of capacity size for type t.
func NewBuffer(t TypeCode, size int) *Buffer {
	return &Buffer{Type: t, Data: make([]byte, size), Ind: IndNull}
}

// IsNull reports whether the buffer holds NULL.
func (b *Buffer) IsNull() bool {
	return b.Ind == IndNull
}

// Bytes returns the current value bytes.
func (b *Buffer) Bytes() []byte {
	if b.Ind == IndNull {
		return nil
	}
	return b.Data[:b.Len]
}

// Set copies p into the buffer, growing it for variable-size types.
func (b *Buffer) Set(p []byte) {
	if cap(b.Data) < len(p) {
		b.Data = make([]byte, len(p))
	}
	b.Data = b.Data[:max(len(b.Data), len(p))]
	n := copy(b.Data, p)
	b.Len = n
	b.Ind = IndNotNull
}

// SetNull marks the buffer NULL.
func (b *Buffer) SetNull() {
	b.Len = 0
	b.Ind = IndNull
}

// Handle-valued buffers (cursor, LOB and ROWID locators) carry the native
// handle as 8 little-endian bytes.
const HandleSize = 8

// PutHandle stores h in the buffer.
func (b *Buffer) PutHandle(h Handle) {
	var tmp [HandleSize]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(h))
	b.Set(tmp[:])
}

// Handle returns the handle stored in the buffer, zero when NULL.
func (b *Buffer) Handle() Handle {
	if b.Ind == IndNull || b.Len < HandleSize {
		return 0
	}
	return Handle(binary.LittleEndian.Uint64(b.Data[:HandleSize]))
}
