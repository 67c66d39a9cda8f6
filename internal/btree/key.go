package btree

import (
	"strings"

	"github.com/codecrafters-io/sqlite-starter-go/internal/record"
)

// SingleColumnKey compares against the first column of an index entry,
// which is all an equality search on an index's leading column needs. For a
// composite index the remaining key columns are ignored.
type SingleColumnKey struct {
	Value record.Value
}

func (k SingleColumnKey) Compare(entryValues []record.Value) int {
	if len(entryValues) == 0 {
		return 0
	}
	other := entryValues[0]

	switch k.Value.Kind {
	case record.KindText, record.KindBlob:
		return strings.Compare(string(k.Value.Bytes), string(other.Bytes))
	case record.KindInt:
		switch {
		case k.Value.Int < other.Int:
			return -1
		case k.Value.Int > other.Int:
			return 1
		default:
			return 0
		}
	case record.KindFloat:
		switch {
		case k.Value.Float < other.Float:
			return -1
		case k.Value.Float > other.Float:
			return 1
		default:
			return 0
		}
	default:
		return strings.Compare(k.Value.String(), other.String())
	}
}
