package record

import (
	"errors"
	"testing"

	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
	"github.com/codecrafters-io/sqlite-starter-go/internal/varint"
)

// buildPayload assembles a record payload from (serialType, bodyBytes) pairs,
// the way SQLite itself lays a record out on disk.
func buildPayload(cols [][2]interface{}) []byte {
	var header []byte
	var body []byte
	for _, c := range cols {
		st := c[0].(uint64)
		b := c[1].([]byte)
		header = varint.Encode(header, st)
		body = append(body, b...)
	}
	headerSize := uint64(len(header)) + 1 // +1 for the headerSize varint itself (1 byte here)
	// headerSize varint might itself need >1 byte; recompute until stable.
	for {
		withSize := varint.Encode(nil, headerSize)
		if uint64(len(withSize))+uint64(len(header)) == headerSize {
			payload := append(append([]byte{}, withSize...), header...)
			payload = append(payload, body...)
			return payload
		}
		headerSize = uint64(len(withSize)) + uint64(len(header))
	}
}

func TestDecodeFixedWidthIntegers(t *testing.T) {
	payload := buildPayload([][2]interface{}{
		{uint64(8), []byte{}},          // 0
		{uint64(9), []byte{}},          // 1
		{uint64(1), []byte{0xFF}},      // -1
		{uint64(2), []byte{0xFF, 0xFE}}, // -2
	})

	values, err := Decode(payload, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{0, 1, -1, -2}
	for i, w := range want {
		if values[i].Kind != KindInt || values[i].Int != w {
			t.Fatalf("column %d: got %+v, want int %d", i, values[i], w)
		}
	}
}

func TestDecodeTextAndBlob(t *testing.T) {
	text := []byte("Granny Smith")
	blob := []byte{0x01, 0x02, 0x03}
	payload := buildPayload([][2]interface{}{
		{uint64(13 + 2*len(text)), text},
		{uint64(12 + 2*len(blob)), blob},
	})

	values, err := Decode(payload, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values[0].Kind != KindText || string(values[0].Bytes) != "Granny Smith" {
		t.Fatalf("column 0: got %+v", values[0])
	}
	if values[1].Kind != KindBlob || len(values[1].Bytes) != 3 {
		t.Fatalf("column 1: got %+v", values[1])
	}
}

func TestDecodeShortRecordPadsNull(t *testing.T) {
	payload := buildPayload([][2]interface{}{
		{uint64(1), []byte{0x07}},
	})

	values, err := Decode(payload, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values[0].Kind != KindInt || values[0].Int != 7 {
		t.Fatalf("column 0: got %+v", values[0])
	}
	if !values[1].IsNull() || !values[2].IsNull() {
		t.Fatalf("expected trailing columns NULL, got %+v %+v", values[1], values[2])
	}
}

func TestDecodeRejectsReservedSerialType(t *testing.T) {
	payload := buildPayload([][2]interface{}{
		{uint64(10), []byte{}},
	})

	_, err := Decode(payload, 1)
	if !errors.Is(err, dberr.ErrInvalidSerialType) {
		t.Fatalf("expected ErrInvalidSerialType, got %v", err)
	}
}

func TestSerialTypeSizeTotality(t *testing.T) {
	for st := uint64(0); st <= 20; st++ {
		_, ok := Size(st)
		wantOK := st != 10 && st != 11
		if ok != wantOK {
			t.Fatalf("Size(%d) ok=%v, want %v", st, ok, wantOK)
		}
	}
}
