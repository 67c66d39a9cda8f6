// Package varint decodes SQLite's big-endian, 7-bit-per-byte variable-length
// integers (1-9 bytes).
package varint

import (
	"fmt"

	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
)

// MaxLen is the longest a SQLite varint can be.
const MaxLen = 9

// Decode reads a varint starting at offset in data and returns the decoded
// value along with the number of bytes consumed. It fails with
// dberr.ErrTruncatedVarint if data ends before a terminating byte is found.
func Decode(data []byte, offset int) (value uint64, n int, err error) {
	var result uint64
	for i := 0; i < MaxLen; i++ {
		pos := offset + i
		if pos >= len(data) {
			return 0, 0, dberr.Wrap("varint.Decode", dberr.ErrTruncatedVarint, map[string]interface{}{
				"offset": offset,
				"have":   len(data) - offset,
			})
		}
		b := data[pos]
		if i == MaxLen-1 {
			// The ninth byte contributes all 8 bits.
			result = (result << 8) | uint64(b)
			return result, i + 1, nil
		}
		result = (result << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
	}
	// Unreachable: the loop always returns by i == MaxLen-1.
	return 0, 0, fmt.Errorf("varint.Decode: unreachable")
}

// Encode appends the varint encoding of v to dst and returns the result.
// The reader itself never writes to a database file, but cell and record
// payloads it parses embed varints the decoder must round-trip against,
// which this is exercised against in tests.
func Encode(dst []byte, v uint64) []byte {
	for l := 1; l <= 8; l++ {
		if v < uint64(1)<<uint(7*l) {
			buf := make([]byte, l)
			x := v
			for i := l - 1; i >= 0; i-- {
				buf[i] = byte(x & 0x7f)
				x >>= 7
			}
			for i := 0; i < l-1; i++ {
				buf[i] |= 0x80
			}
			return append(dst, buf...)
		}
	}
	// 9-byte form: bytes 0-7 always carry the continuation bit (the decoder
	// reads the 9th byte unconditionally), byte 8 carries the low 8 bits raw.
	buf := make([]byte, MaxLen)
	buf[8] = byte(v)
	x := v >> 8
	for i := 7; i >= 0; i-- {
		buf[i] = byte(x&0x7f) | 0x80
		x >>= 7
	}
	return append(dst, buf...)
}
