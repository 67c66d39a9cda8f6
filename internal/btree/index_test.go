package btree

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/codecrafters-io/sqlite-starter-go/internal/page"
	"github.com/codecrafters-io/sqlite-starter-go/internal/record"
	"github.com/codecrafters-io/sqlite-starter-go/internal/varint"
)

// buildIndexLeaf writes an index-leaf page whose cells are (textKey, rowID)
// payloads, in ascending key order as SQLite itself would store them.
func buildIndexLeaf(entries []struct {
	Key   string
	RowID int64
}) []byte {
	data := make([]byte, testPageSize)
	data[0] = byte(page.TypeIndexLeaf)

	contentStart := testPageSize
	var pointers []uint16
	for _, e := range entries {
		keyBytes := []byte(e.Key)
		var header []byte
		header = varint.Encode(header, uint64(13+2*len(keyBytes)))
		header = varint.Encode(header, 1) // row id serial type: 1-byte int (test keys are small)
		headerSize := uint64(len(header)) + 1
		for {
			withSize := varint.Encode(nil, headerSize)
			if uint64(len(withSize))+uint64(len(header)) == headerSize {
				header = append(withSize, header...)
				break
			}
			headerSize = uint64(len(withSize)) + uint64(len(header))
		}
		body := append(append([]byte{}, keyBytes...), byte(e.RowID))

		var cell []byte
		cell = varint.Encode(cell, uint64(len(header)+len(body)))
		cell = append(cell, header...)
		cell = append(cell, body...)

		contentStart -= len(cell)
		copy(data[contentStart:], cell)
		pointers = append(pointers, uint16(contentStart))
	}

	binary.BigEndian.PutUint16(data[3:5], uint16(len(entries)))
	binary.BigEndian.PutUint16(data[5:7], uint16(contentStart))
	for i, ptr := range pointers {
		binary.BigEndian.PutUint16(data[8+i*2:10+i*2], ptr)
	}
	return data
}

func TestReadIndexDataEqualitySearch(t *testing.T) {
	leaf := buildIndexLeaf([]struct {
		Key   string
		RowID int64
	}{
		{Key: "apple", RowID: 1},
		{Key: "banana", RowID: 2},
		{Key: "banana", RowID: 3},
		{Key: "cherry", RowID: 4},
	})

	fetcher := &fakeFetcher{pages: map[int][]byte{1: leaf}}
	w := NewWalker(fetcher, nil, testPageSize)

	ids, err := w.ReadIndexData(context.Background(), 1, SingleColumnKey{Value: record.Value{Kind: record.KindText, Bytes: []byte("banana")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %v, want 2 matches", ids)
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[2] || !seen[3] {
		t.Fatalf("got %v, want row ids 2 and 3", ids)
	}
}

func TestReadIndexDataNoMatch(t *testing.T) {
	leaf := buildIndexLeaf([]struct {
		Key   string
		RowID int64
	}{
		{Key: "apple", RowID: 1},
	})

	fetcher := &fakeFetcher{pages: map[int][]byte{1: leaf}}
	w := NewWalker(fetcher, nil, testPageSize)

	ids, err := w.ReadIndexData(context.Background(), 1, SingleColumnKey{Value: record.Value{Kind: record.KindText, Bytes: []byte("missing")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("got %v, want no matches", ids)
	}
}

func TestIndexScanOnlyEmitsRequestedRows(t *testing.T) {
	rec := func(i int64) []byte {
		return buildSimpleRecord(t, []record.Value{{Kind: record.KindInt, Int: i}})
	}
	leaf := buildTableLeaf([]struct {
		RowID   int64
		Payload []byte
	}{
		{RowID: 1, Payload: rec(1)},
		{RowID: 2, Payload: rec(2)},
		{RowID: 3, Payload: rec(3)},
	})

	fetcher := &fakeFetcher{pages: map[int][]byte{1: leaf}}
	w := NewWalker(fetcher, nil, testPageSize)

	var seen []int64
	err := w.IndexScan(context.Background(), 1, map[int64]bool{2: true}, func(c TableCell) error {
		seen = append(seen, c.RowID)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 1 || seen[0] != 2 {
		t.Fatalf("got %v, want only row 2", seen)
	}
}
