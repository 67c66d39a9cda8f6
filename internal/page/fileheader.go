package page

import (
	"bytes"
	"encoding/binary"

	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
)

// ValidationLevel controls how strictly ValidateFileHeader checks the
// 100-byte file header before the rest of the file is trusted.
type ValidationLevel int

const (
	// ValidationNone skips header validation entirely.
	ValidationNone ValidationLevel = iota
	// ValidationBasic checks the magic header string.
	ValidationBasic
	// ValidationStrict additionally checks the text-encoding field is 0
	// (unset) or one of the three values SQLite defines (1-3).
	ValidationStrict
)

var magicHeaderString = []byte("SQLite format 3\x00")

// FileHeader is the 100-byte header at the start of every SQLite database
// file. Only the fields the reader actually needs are kept.
type FileHeader struct {
	PageSize        uint32
	ReservedSpace   uint8
	FileChangeCount uint32
	TextEncoding    uint32
}

// ParseFileHeader decodes the 100-byte header from the first bytes of page 1.
// A pageSize field of exactly 1 means 65536 bytes, per the format's own
// historical workaround for not fitting 65536 in a 16-bit field.
func ParseFileHeader(data []byte) (FileHeader, error) {
	if len(data) < 100 {
		return FileHeader{}, dberr.Wrap("page.ParseFileHeader", dberr.ErrShortRead, map[string]interface{}{
			"have": len(data),
		})
	}

	rawPageSize := binary.BigEndian.Uint16(data[16:18])
	pageSize := uint32(rawPageSize)
	if rawPageSize == 1 {
		pageSize = 65536
	}

	return FileHeader{
		PageSize:        pageSize,
		ReservedSpace:   data[20],
		FileChangeCount: binary.BigEndian.Uint32(data[24:28]),
		TextEncoding:    binary.BigEndian.Uint32(data[56:60]),
	}, nil
}

// ValidateFileHeader checks the 100-byte file header against level, rejecting
// files that are clearly not SQLite databases (or, at ValidationStrict,
// that declare a text encoding the format doesn't define) before the reader
// spends any effort walking their pages.
func ValidateFileHeader(data []byte, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}
	if len(data) < 100 {
		return dberr.Wrap("page.ValidateFileHeader", dberr.ErrShortRead, map[string]interface{}{
			"have": len(data),
		})
	}
	if !bytes.Equal(data[:16], magicHeaderString) {
		return dberr.Wrap("page.ValidateFileHeader", dberr.ErrInvalidPageType, map[string]interface{}{
			"reason": "missing SQLite magic header string",
		})
	}
	if level == ValidationStrict {
		encoding := binary.BigEndian.Uint32(data[56:60])
		if encoding != 0 && (encoding < 1 || encoding > 3) {
			return dberr.Wrap("page.ValidateFileHeader", dberr.ErrInvalidPageType, map[string]interface{}{
				"reason":   "unrecognized text encoding",
				"encoding": encoding,
			})
		}
	}
	return nil
}
