// Package page reads fixed-size SQLite pages from a file and parses the
// B-tree page header common to all four page shapes.
package page

import (
	"encoding/binary"

	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
)

// Type identifies one of the four B-tree page shapes.
type Type uint8

const (
	TypeIndexInterior Type = 0x02
	TypeTableInterior  Type = 0x05
	TypeIndexLeaf      Type = 0x0a
	TypeTableLeaf      Type = 0x0d
)

func (t Type) IsLeaf() bool {
	return t == TypeTableLeaf || t == TypeIndexLeaf
}

func (t Type) IsTable() bool {
	return t == TypeTableLeaf || t == TypeTableInterior
}

func (t Type) IsIndex() bool {
	return t == TypeIndexLeaf || t == TypeIndexInterior
}

func (t Type) valid() bool {
	switch t {
	case TypeIndexInterior, TypeTableInterior, TypeIndexLeaf, TypeTableLeaf:
		return true
	default:
		return false
	}
}

// HeaderSize returns 8 for leaf pages, 12 for interior pages.
func (t Type) HeaderSize() int {
	if t.IsLeaf() {
		return 8
	}
	return 12
}

// Header is the common B-tree page header.
type Header struct {
	Type             Type
	FirstFreeblock   uint16
	CellCount        uint16
	CellContentStart uint16
	FragmentedBytes  uint8
	RightmostChild   uint32 // interior pages only
}

// ParseHeader decodes the B-tree page header found at data[startOffset:].
// startOffset is 100 for page 1 (which carries the 100-byte file header
// first) and 0 for every other page. Cell pointer offsets read elsewhere
// are always relative to the start of the page (offset 0), never to
// startOffset.
func ParseHeader(data []byte, startOffset int) (Header, error) {
	if startOffset+8 > len(data) {
		return Header{}, dberr.Wrap("page.ParseHeader", dberr.ErrShortRead, map[string]interface{}{
			"start_offset": startOffset,
			"have":         len(data),
		})
	}

	t := Type(data[startOffset])
	if !t.valid() {
		return Header{}, dberr.Wrap("page.ParseHeader", dberr.ErrInvalidPageType, map[string]interface{}{
			"page_type": data[startOffset],
		})
	}

	h := Header{
		Type:             t,
		FirstFreeblock:   binary.BigEndian.Uint16(data[startOffset+1 : startOffset+3]),
		CellCount:        binary.BigEndian.Uint16(data[startOffset+3 : startOffset+5]),
		CellContentStart: binary.BigEndian.Uint16(data[startOffset+5 : startOffset+7]),
		FragmentedBytes:  data[startOffset+7],
	}

	if !t.IsLeaf() {
		if startOffset+12 > len(data) {
			return Header{}, dberr.Wrap("page.ParseHeader", dberr.ErrShortRead, map[string]interface{}{
				"start_offset": startOffset,
				"have":         len(data),
			})
		}
		h.RightmostChild = binary.BigEndian.Uint32(data[startOffset+8 : startOffset+12])
	}

	return h, nil
}

// CellPointers reads the cellCount 16-bit big-endian offsets that follow the
// page header, starting at startOffset+headerSize. The returned offsets are
// relative to the start of the page.
func CellPointers(data []byte, startOffset int, header Header) ([]uint16, error) {
	arrayStart := startOffset + header.Type.HeaderSize()
	arrayEnd := arrayStart + int(header.CellCount)*2
	if arrayEnd > len(data) {
		return nil, dberr.Wrap("page.CellPointers", dberr.ErrShortRead, map[string]interface{}{
			"need": arrayEnd,
			"have": len(data),
		})
	}

	pointers := make([]uint16, header.CellCount)
	for i := range pointers {
		off := arrayStart + i*2
		pointers[i] = binary.BigEndian.Uint16(data[off : off+2])
	}
	return pointers, nil
}
