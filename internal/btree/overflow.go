package btree

import (
	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
)

// OverflowReader is accepted by the cell parsers for forward compatibility
// but is never dereferenced: this reader's Non-goals exclude overflow
// pages, so any cell whose payload would spill past the page is rejected
// outright rather than chased through an overflow chain. Pass nil.
type OverflowReader interface{}

// readPayload returns a cell's payload, provided it fits entirely on the
// local page. A record whose payload would require an overflow chain is
// rejected with dberr.ErrPayloadOverflow rather than partially resolved.
func readPayload(data []byte, localOffset int, payloadLen int, usableSize int, _ OverflowReader) ([]byte, error) {
	return readPayloadKind(data, localOffset, payloadLen, usableSize, false)
}

// readIndexPayload is readPayload for index-leaf/interior cells, which use a
// different max-local-payload formula than table-leaf cells.
func readIndexPayload(data []byte, localOffset int, payloadLen int, usableSize int, _ OverflowReader) ([]byte, error) {
	return readPayloadKind(data, localOffset, payloadLen, usableSize, true)
}

func readPayloadKind(data []byte, localOffset int, payloadLen int, usableSize int, isIndex bool) ([]byte, error) {
	maxLocal := usableSizeToMaxLocal(usableSize)
	if isIndex {
		maxLocal = (usableSize-12)*64/255 - 23
	}

	if payloadLen > maxLocal {
		return nil, dberr.Wrap("btree.readPayload", dberr.ErrPayloadOverflow, map[string]interface{}{
			"payload_len": payloadLen,
			"max_local":   maxLocal,
		})
	}

	if localOffset+payloadLen > len(data) {
		return nil, dberr.Wrap("btree.readPayload", dberr.ErrShortRead, nil)
	}
	return data[localOffset : localOffset+payloadLen], nil
}

func usableSizeToMaxLocal(usableSize int) int {
	return usableSize - 35
}
