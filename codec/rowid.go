package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/oci-runtime/errors"
)

const (
	RowIDSize     = 10
	RowIDTextSize = 18

	rowidFileBits  = 10
	rowidBlockBits = 22
	maxRowIDFile   = 1<<rowidFileBits - 1
	maxRowIDBlock  = 1<<rowidBlockBits - 1
)

const rowidAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var rowidIndex = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(rowidAlphabet); i++ {
		t[rowidAlphabet[i]] = int8(i)
	}
	return t
}()

// RowID is an extended row identifier: data object number, relative file,
// block and row slot.
type RowID struct {
	Object uint32
	Block  uint32
	File   uint16
	Row    uint16
}

// String renders the 18-character form OOOOOOFFFBBBBBBRRR.
func (r RowID) String() string {
	var b [RowIDTextSize]byte
	put64(b[0:6], uint64(r.Object))
	put64(b[6:9], uint64(r.File))
	put64(b[9:15], uint64(r.Block))
	put64(b[15:18], uint64(r.Row))
	return string(b[:])
}

func put64(dst []byte, v uint64) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = rowidAlphabet[v&63]
		v >>= 6
	}
}

func get64(src string) (uint64, bool) {
	var v uint64
	for i := 0; i < len(src); i++ {
		d := rowidIndex[src[i]]
		if d < 0 {
			return 0, false
		}
		v = v<<6 | uint64(d)
	}
	return v, true
}

// ParseRowID parses the 18-character text form.
func ParseRowID(s string) (RowID, error) {
	if len(s) != RowIDTextSize {
		return RowID{}, errors.InvalidFormat(errors.PhaseEncode, s, "ROWID text must be 18 characters")
	}
	obj, ok1 := get64(s[0:6])
	file, ok2 := get64(s[6:9])
	block, ok3 := get64(s[9:15])
	row, ok4 := get64(s[15:18])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return RowID{}, errors.InvalidFormat(errors.PhaseEncode, s, "invalid character in ROWID text")
	}
	if obj > 0xffffffff || file > maxRowIDFile || block > maxRowIDBlock || row > 0xffff {
		return RowID{}, errors.InvalidFormat(errors.PhaseEncode, s, "ROWID component out of range")
	}
	return RowID{Object: uint32(obj), File: uint16(file), Block: uint32(block), Row: uint16(row)}, nil
}

// EncodeRowID packs r into 10 bytes: object (32 bits), file (10 bits),
// block (22 bits), row (16 bits).
func EncodeRowID(r RowID) ([]byte, error) {
	if r.File > maxRowIDFile {
		return nil, errors.OutOfRange(errors.PhaseEncode, "file", r.File, 0, maxRowIDFile)
	}
	if r.Block > maxRowIDBlock {
		return nil, errors.OutOfRange(errors.PhaseEncode, "block", r.Block, 0, maxRowIDBlock)
	}
	b := make([]byte, RowIDSize)
	binary.BigEndian.PutUint32(b[0:], r.Object)
	binary.BigEndian.PutUint32(b[4:], uint32(r.File)<<rowidBlockBits|r.Block)
	binary.BigEndian.PutUint16(b[8:], r.Row)
	return b, nil
}

// DecodeRowID unpacks 10 bytes.
func DecodeRowID(b []byte) (RowID, error) {
	if len(b) != RowIDSize {
		return RowID{}, errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("ROWID must be %d bytes", RowIDSize))
	}
	fb := binary.BigEndian.Uint32(b[4:])
	return RowID{
		Object: binary.BigEndian.Uint32(b[0:]),
		File:   uint16(fb >> rowidBlockBits),
		Block:  fb & maxRowIDBlock,
		Row:    binary.BigEndian.Uint16(b[8:]),
	}, nil
}
