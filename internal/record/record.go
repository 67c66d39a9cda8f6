package record

import (
	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
	"github.com/codecrafters-io/sqlite-starter-go/internal/varint"
)

// Decode parses one record's payload into numColumns positional values.
// If the record's header describes fewer serial types than numColumns —
// the case left behind by an ALTER TABLE ADD COLUMN on an older row — the
// missing trailing columns decode as NULL rather than erroring.
func Decode(payload []byte, numColumns int) ([]Value, error) {
	headerSize, n, err := varint.Decode(payload, 0)
	if err != nil {
		return nil, dberr.Wrap("record.Decode", err, nil)
	}

	cursor := n
	var serialTypes []uint64
	for cursor < int(headerSize) {
		st, m, err := varint.Decode(payload, cursor)
		if err != nil {
			return nil, dberr.Wrap("record.Decode", err, map[string]interface{}{"cursor": cursor})
		}
		serialTypes = append(serialTypes, st)
		cursor += m
	}

	values := make([]Value, numColumns)
	bodyOffset := int(headerSize)
	for i := 0; i < numColumns; i++ {
		if i >= len(serialTypes) {
			values[i] = Null()
			continue
		}
		v, next, err := DecodeValue(payload, bodyOffset, serialTypes[i])
		if err != nil {
			return nil, dberr.Wrap("record.Decode", err, map[string]interface{}{"column": i})
		}
		values[i] = v
		bodyOffset = next
	}
	return values, nil
}

// DecodeAll parses every serial type present in the header regardless of any
// expected column count — used by the schema loader, where sqlite_schema's
// five columns are always fully present, and by index records, whose
// arity (key columns + rowid) is determined by the header itself.
func DecodeAll(payload []byte) ([]Value, error) {
	headerSize, n, err := varint.Decode(payload, 0)
	if err != nil {
		return nil, dberr.Wrap("record.DecodeAll", err, nil)
	}

	cursor := n
	var serialTypes []uint64
	for cursor < int(headerSize) {
		st, m, err := varint.Decode(payload, cursor)
		if err != nil {
			return nil, dberr.Wrap("record.DecodeAll", err, map[string]interface{}{"cursor": cursor})
		}
		serialTypes = append(serialTypes, st)
		cursor += m
	}

	values := make([]Value, len(serialTypes))
	bodyOffset := int(headerSize)
	for i, st := range serialTypes {
		v, next, err := DecodeValue(payload, bodyOffset, st)
		if err != nil {
			return nil, dberr.Wrap("record.DecodeAll", err, map[string]interface{}{"column": i})
		}
		values[i] = v
		bodyOffset = next
	}
	return values, nil
}
