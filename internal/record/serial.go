package record

import (
	"encoding/binary"
	"math"

	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
)

// Size returns the number of body bytes a serial type occupies. It is a
// total function on {0..9} union {N: N >= 12} and undefined (ok == false)
// on the two reserved codes 10 and 11.
func Size(serialType uint64) (size int, ok bool) {
	switch serialType {
	case 0, 8, 9:
		return 0, true
	case 1:
		return 1, true
	case 2:
		return 2, true
	case 3:
		return 3, true
	case 4:
		return 4, true
	case 5:
		return 6, true
	case 6, 7:
		return 8, true
	case 10, 11:
		return 0, false
	default:
		if serialType >= 12 {
			if serialType%2 == 0 {
				return int((serialType - 12) / 2), true
			}
			return int((serialType - 13) / 2), true
		}
		return 0, false
	}
}

// DecodeValue reads a single field's value from data[offset:] given its
// serial type, returning the decoded value and the offset just past it.
func DecodeValue(data []byte, offset int, serialType uint64) (Value, int, error) {
	size, ok := Size(serialType)
	if !ok {
		return Value{}, offset, dberr.Wrap("record.DecodeValue", dberr.ErrInvalidSerialType, map[string]interface{}{
			"serial_type": serialType,
		})
	}

	switch serialType {
	case 0:
		return Null(), offset, nil
	case 8:
		return Value{Kind: KindInt, Int: 0}, offset, nil
	case 9:
		return Value{Kind: KindInt, Int: 1}, offset, nil
	}

	if offset+size > len(data) {
		return Value{}, offset, dberr.Wrap("record.DecodeValue", dberr.ErrShortRead, map[string]interface{}{
			"offset": offset,
			"size":   size,
			"have":   len(data) - offset,
		})
	}
	buf := data[offset : offset+size]
	next := offset + size

	switch serialType {
	case 1:
		return Value{Kind: KindInt, Int: int64(int8(buf[0]))}, next, nil
	case 2:
		return Value{Kind: KindInt, Int: int64(int16(binary.BigEndian.Uint16(buf)))}, next, nil
	case 3:
		return Value{Kind: KindInt, Int: signExtend(uint64(buf[0])<<16|uint64(buf[1])<<8|uint64(buf[2]), 24)}, next, nil
	case 4:
		return Value{Kind: KindInt, Int: int64(int32(binary.BigEndian.Uint32(buf)))}, next, nil
	case 5:
		v := uint64(buf[0])<<40 | uint64(buf[1])<<32 | uint64(buf[2])<<24 | uint64(buf[3])<<16 | uint64(buf[4])<<8 | uint64(buf[5])
		return Value{Kind: KindInt, Int: signExtend(v, 48)}, next, nil
	case 6:
		return Value{Kind: KindInt, Int: int64(binary.BigEndian.Uint64(buf))}, next, nil
	case 7:
		return Value{Kind: KindFloat, Float: math.Float64frombits(binary.BigEndian.Uint64(buf))}, next, nil
	default:
		if serialType%2 == 0 {
			return Value{Kind: KindBlob, Bytes: buf}, next, nil
		}
		return Value{Kind: KindText, Bytes: buf}, next, nil
	}
}

// signExtend sign-extends the low bits-wide two's-complement value held in v.
func signExtend(v uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}
