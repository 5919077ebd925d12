package codec

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/wippyai/oci-runtime/errors"
)

const (
	BinaryDoubleSize = 8
	BinaryFloatSize  = 4
	IntSize          = 8
)

// EncodeBinaryDouble produces the order-preserving 8-byte form: the sign
// bit is flipped for non-negative values, every bit for negative ones.
func EncodeBinaryDouble(f float64) []byte {
	u := math.Float64bits(f)
	if u&(1<<63) == 0 {
		u |= 1 << 63
	} else {
		u = ^u
	}
	b := make([]byte, BinaryDoubleSize)
	binary.BigEndian.PutUint64(b, u)
	return b
}

// DecodeBinaryDouble reverses EncodeBinaryDouble.
func DecodeBinaryDouble(b []byte) (float64, error) {
	if len(b) != BinaryDoubleSize {
		return 0, errors.InvalidData(errors.PhaseDecode, nil, "BINARY_DOUBLE must be 8 bytes")
	}
	u := binary.BigEndian.Uint64(b)
	if u&(1<<63) != 0 {
		u &^= 1 << 63
	} else {
		u = ^u
	}
	return math.Float64frombits(u), nil
}

// EncodeBinaryFloat produces the order-preserving 4-byte form.
func EncodeBinaryFloat(f float32) []byte {
	u := math.Float32bits(f)
	if u&(1<<31) == 0 {
		u |= 1 << 31
	} else {
		u = ^u
	}
	b := make([]byte, BinaryFloatSize)
	binary.BigEndian.PutUint32(b, u)
	return b
}

// DecodeBinaryFloat reverses EncodeBinaryFloat.
func DecodeBinaryFloat(b []byte) (float32, error) {
	if len(b) != BinaryFloatSize {
		return 0, errors.InvalidData(errors.PhaseDecode, nil, "BINARY_FLOAT must be 4 bytes")
	}
	u := binary.BigEndian.Uint32(b)
	if u&(1<<31) != 0 {
		u &^= 1 << 31
	} else {
		u = ^u
	}
	return math.Float32frombits(u), nil
}

// EncodeInt encodes a native integer, little-endian two's complement.
func EncodeInt(v int64) []byte {
	b := make([]byte, IntSize)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

// DecodeInt decodes a 1, 2, 4 or 8 byte native integer.
func DecodeInt(b []byte) (int64, error) {
	switch len(b) {
	case 1:
		return int64(int8(b[0])), nil
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(b))), nil
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(b))), nil
	case 8:
		return int64(binary.LittleEndian.Uint64(b)), nil
	}
	return 0, errors.InvalidData(errors.PhaseDecode, nil, "native integer must be 1, 2, 4 or 8 bytes")
}

// EncodeText validates s as UTF-8 and returns its bytes.
func EncodeText(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errors.InvalidUTF8(errors.PhaseEncode, nil, []byte(s))
	}
	return []byte(s), nil
}

// DecodeText validates b as UTF-8.
func DecodeText(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, nil, b)
	}
	return string(b), nil
}
