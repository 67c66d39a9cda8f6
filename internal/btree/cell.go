// Package btree walks SQLite's four B-tree page shapes: table-interior,
// table-leaf, index-interior, index-leaf.
package btree

import (
	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
	"github.com/codecrafters-io/sqlite-starter-go/internal/page"
	"github.com/codecrafters-io/sqlite-starter-go/internal/record"
	"github.com/codecrafters-io/sqlite-starter-go/internal/varint"
)

// TableCell is one row out of a table-leaf page: a row id and its record
// payload. The payload always lies entirely on the page; cells that would
// need an overflow chain are rejected (see readPayload).
type TableCell struct {
	RowID   int64
	Payload []byte
}

// InteriorCell is one (child page, boundary key) pair out of an interior
// page. For table-interior pages Key is a row id; for index-interior pages
// it is unused (index-interior cells carry a full payload instead, see
// IndexInteriorCell).
type InteriorCell struct {
	ChildPage int
	Key       int64
}

// IndexCell is one entry out of an index-leaf or index-interior page: the
// index key columns followed by the referenced row id, plus — for interior
// cells — the left child page.
type IndexCell struct {
	ChildPage int // 0 for leaf cells
	Values    []record.Value
	RowID     int64
}

// TableLeafCell parses one cell of a table-leaf page at the given absolute
// offset into Data. overflow is unused (pass nil) — see OverflowReader.
func TableLeafCell(p page.Page, cellOffset int, usableSize int, overflow OverflowReader) (TableCell, error) {
	data := p.Data
	if cellOffset >= len(data) {
		return TableCell{}, dberr.Wrap("btree.TableLeafCell", dberr.ErrShortRead, nil)
	}

	payloadLen, n, err := varint.Decode(data, cellOffset)
	if err != nil {
		return TableCell{}, dberr.Wrap("btree.TableLeafCell", err, nil)
	}
	cursor := cellOffset + n

	rowID, n2, err := varint.Decode(data, cursor)
	if err != nil {
		return TableCell{}, dberr.Wrap("btree.TableLeafCell", err, nil)
	}
	cursor += n2

	payload, err := readPayload(data, cursor, int(payloadLen), usableSize, overflow)
	if err != nil {
		return TableCell{}, dberr.Wrap("btree.TableLeafCell", err, map[string]interface{}{"row_id": rowID})
	}

	return TableCell{RowID: int64(rowID), Payload: payload}, nil
}

// TableInteriorCell parses one cell of a table-interior page: a 4-byte
// child page number followed by an integer key varint (the largest row id
// reachable through that child).
func TableInteriorCell(p page.Page, cellOffset int) (InteriorCell, error) {
	data := p.Data
	if cellOffset+4 > len(data) {
		return InteriorCell{}, dberr.Wrap("btree.TableInteriorCell", dberr.ErrShortRead, nil)
	}
	child := int(uint32(data[cellOffset])<<24 | uint32(data[cellOffset+1])<<16 | uint32(data[cellOffset+2])<<8 | uint32(data[cellOffset+3]))

	key, _, err := varint.Decode(data, cellOffset+4)
	if err != nil {
		return InteriorCell{}, dberr.Wrap("btree.TableInteriorCell", err, nil)
	}

	return InteriorCell{ChildPage: child, Key: int64(key)}, nil
}

// IndexLeafCell parses one cell of an index-leaf page: a payload (the index
// key columns followed by the referenced table row id), with the same
// overflow handling as table-leaf cells.
func IndexLeafCell(p page.Page, cellOffset int, usableSize int, overflow OverflowReader) (IndexCell, error) {
	data := p.Data
	payloadLen, n, err := varint.Decode(data, cellOffset)
	if err != nil {
		return IndexCell{}, dberr.Wrap("btree.IndexLeafCell", err, nil)
	}
	cursor := cellOffset + n

	payload, err := readIndexPayload(data, cursor, int(payloadLen), usableSize, overflow)
	if err != nil {
		return IndexCell{}, dberr.Wrap("btree.IndexLeafCell", err, nil)
	}

	return decodeIndexPayload(payload)
}

// IndexInteriorCell parses one cell of an index-interior page: a 4-byte
// child page number followed by a payload in the same shape as an
// index-leaf cell.
func IndexInteriorCell(p page.Page, cellOffset int, usableSize int, overflow OverflowReader) (IndexCell, error) {
	data := p.Data
	if cellOffset+4 > len(data) {
		return IndexCell{}, dberr.Wrap("btree.IndexInteriorCell", dberr.ErrShortRead, nil)
	}
	child := int(uint32(data[cellOffset])<<24 | uint32(data[cellOffset+1])<<16 | uint32(data[cellOffset+2])<<8 | uint32(data[cellOffset+3]))

	payloadLen, n, err := varint.Decode(data, cellOffset+4)
	if err != nil {
		return IndexCell{}, dberr.Wrap("btree.IndexInteriorCell", err, nil)
	}
	cursor := cellOffset + 4 + n

	payload, err := readIndexPayload(data, cursor, int(payloadLen), usableSize, overflow)
	if err != nil {
		return IndexCell{}, dberr.Wrap("btree.IndexInteriorCell", err, nil)
	}

	cell, err := decodeIndexPayload(payload)
	if err != nil {
		return IndexCell{}, err
	}
	cell.ChildPage = child
	return cell, nil
}

func decodeIndexPayload(payload []byte) (IndexCell, error) {
	values, err := record.DecodeAll(payload)
	if err != nil {
		return IndexCell{}, dberr.Wrap("btree.decodeIndexPayload", err, nil)
	}
	if len(values) == 0 {
		return IndexCell{}, dberr.Wrap("btree.decodeIndexPayload", dberr.ErrShortRead, nil)
	}
	rowIDVal := values[len(values)-1]
	if rowIDVal.Kind != record.KindInt {
		return IndexCell{}, dberr.Wrap("btree.decodeIndexPayload", dberr.ErrInvalidSerialType, nil)
	}
	return IndexCell{Values: values[:len(values)-1], RowID: rowIDVal.Int}, nil
}
