// Package record decodes SQLite record payloads (header of serial types
// followed by column bytes) into typed values.
package record

import "fmt"

// Kind tags which of the five SQLite storage classes a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBlob
	KindText
)

// Value is a decoded column value — one of NULL, Int, Float, Blob, or Text.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bytes []byte // populated for Blob and Text
}

func Null() Value { return Value{Kind: KindNull} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// String renders a value the way format.Rows prints it in a "|"-joined row:
// NULL prints empty, text/blob print raw bytes, numbers print decimal.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindText, KindBlob:
		return string(v.Bytes)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	default:
		return ""
	}
}
