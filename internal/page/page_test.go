package page

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
)

// buildFileHeader writes a minimal but valid 100-byte SQLite file header
// with the given page size.
func buildFileHeader(pageSize uint16) []byte {
	h := make([]byte, 100)
	copy(h, "SQLite format 3\x00")
	binary.BigEndian.PutUint16(h[16:18], pageSize)
	h[20] = 0 // reserved space
	binary.BigEndian.PutUint32(h[56:60], 1) // UTF-8
	return h
}

// buildLeafPage writes a table-leaf page header declaring cellCount cells at
// the given start offset within a pageSize-byte page; the cell pointer array
// is left zeroed for the caller to fill in.
func buildLeafPage(pageSize int, startOffset int, cellCount uint16) []byte {
	data := make([]byte, pageSize)
	data[startOffset] = byte(TypeTableLeaf)
	binary.BigEndian.PutUint16(data[startOffset+3:startOffset+5], cellCount)
	binary.BigEndian.PutUint16(data[startOffset+5:startOffset+7], uint16(pageSize))
	return data
}

type memSource struct {
	data []byte
}

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, m.data[off:])
	return n, nil
}

func TestParseFileHeaderRegularPageSize(t *testing.T) {
	h, err := ParseFileHeader(buildFileHeader(4096))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.PageSize != 4096 {
		t.Fatalf("got page size %d, want 4096", h.PageSize)
	}
}

func TestParseFileHeaderMaxPageSizeSentinel(t *testing.T) {
	h, err := ParseFileHeader(buildFileHeader(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.PageSize != 65536 {
		t.Fatalf("got page size %d, want 65536", h.PageSize)
	}
}

func TestParseHeaderRejectsUnknownType(t *testing.T) {
	data := make([]byte, 8)
	data[0] = 0xFF
	_, err := ParseHeader(data, 0)
	if !errors.Is(err, dberr.ErrInvalidPageType) {
		t.Fatalf("expected ErrInvalidPageType, got %v", err)
	}
}

func TestParseHeaderLeafVsInteriorSize(t *testing.T) {
	leaf := make([]byte, 8)
	leaf[0] = byte(TypeTableLeaf)
	h, err := ParseHeader(leaf, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Type.HeaderSize() != 8 {
		t.Fatalf("leaf header size = %d, want 8", h.Type.HeaderSize())
	}

	interior := make([]byte, 12)
	interior[0] = byte(TypeTableInterior)
	binary.BigEndian.PutUint32(interior[8:12], 42)
	h2, err := ParseHeader(interior, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h2.Type.HeaderSize() != 12 {
		t.Fatalf("interior header size = %d, want 12", h2.Type.HeaderSize())
	}
	if h2.RightmostChild != 42 {
		t.Fatalf("rightmost child = %d, want 42", h2.RightmostChild)
	}
}

func TestReaderFetchPageOneOffsetsPastFileHeader(t *testing.T) {
	pageSize := 512
	data := buildLeafPage(pageSize, 100, 0)
	copy(data[0:100], buildFileHeader(uint16(pageSize)))

	src := &memSource{data: data}
	r := NewReader(src, pageSize)

	p, err := r.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HeaderOffset != 100 {
		t.Fatalf("header offset = %d, want 100", p.HeaderOffset)
	}
	if p.Header.Type != TypeTableLeaf {
		t.Fatalf("page type = %v, want table leaf", p.Header.Type)
	}
}

func TestReaderFetchOtherPageOffsetZero(t *testing.T) {
	pageSize := 512
	page1 := buildLeafPage(pageSize, 100, 0)
	copy(page1[0:100], buildFileHeader(uint16(pageSize)))
	page2 := buildLeafPage(pageSize, 0, 0)

	full := append(append([]byte{}, page1...), page2...)
	src := &memSource{data: full}
	r := NewReader(src, pageSize)

	p, err := r.Fetch(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HeaderOffset != 0 {
		t.Fatalf("header offset = %d, want 0", p.HeaderOffset)
	}
}

func TestReaderFetchShortFileErrors(t *testing.T) {
	src := &memSource{data: make([]byte, 10)}
	r := NewReader(src, 512)
	_, err := r.Fetch(context.Background(), 1)
	if !errors.Is(err, dberr.ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
}

func TestCellPointersOrder(t *testing.T) {
	pageSize := 512
	data := buildLeafPage(pageSize, 0, 2)
	binary.BigEndian.PutUint16(data[8:10], 400)
	binary.BigEndian.PutUint16(data[10:12], 450)

	header, err := ParseHeader(data, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pointers, err := CellPointers(data, 0, header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pointers) != 2 || pointers[0] != 400 || pointers[1] != 450 {
		t.Fatalf("got %v", pointers)
	}
}
