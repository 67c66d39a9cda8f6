// Package executor runs a restricted SELECT query descriptor against a
// table's schema and b-tree, choosing between a full table scan and an
// index-assisted scan depending on what the WHERE clause and the schema's
// indexes make possible.
package executor

import (
	"github.com/codecrafters-io/sqlite-starter-go/internal/record"
)

// Op is a comparison operator a predicate can apply between a column and a
// literal.
type Op int

const (
	OpEq Op = iota
	OpNeq
	OpLt
	OpGt
	OpLte
	OpGte
)

// Literal is a WHERE-clause literal value as written in the query text,
// before it's been resolved against a column's storage class.
type Literal struct {
	Raw      string
	IsString bool
}

// Predicate is a node in a WHERE-clause expression tree.
type Predicate interface {
	predicate()
}

// Comparison is a leaf predicate: column OP literal.
type Comparison struct {
	Column string
	Op     Op
	Value  Literal
}

func (Comparison) predicate() {}

// And is a conjunction of two predicates.
type And struct {
	Left, Right Predicate
}

func (And) predicate() {}

// Or is a disjunction of two predicates.
type Or struct {
	Left, Right Predicate
}

func (Or) predicate() {}

// Query is a fully parsed restricted SELECT: which table, which columns (or
// count(*)), and an optional WHERE predicate tree.
type Query struct {
	Table     string
	Columns   []string
	IsCount   bool
	Predicate Predicate // nil means no WHERE clause
}

// Row is one result row: either the raw decoded column values (for a normal
// projection) or left empty when the query is a count(*).
type Row struct {
	Values []record.Value
}

// evalComparison compares a decoded column value against the predicate's
// literal. Mixed type comparisons (e.g. a TEXT column against a numeric
// literal) are rejected rather than coerced, since SQLite's own affinity
// rules are out of scope here.
func evalComparison(c Comparison, colIndex int, row []record.Value) (bool, error) {
	v := row[colIndex]

	if c.Value.IsString {
		if v.Kind != record.KindText && v.Kind != record.KindBlob {
			return false, errMixedTypeComparison(c.Column)
		}
		return compareStrings(string(v.Bytes), c.Value.Raw, c.Op), nil
	}

	switch v.Kind {
	case record.KindInt:
		want, err := parseInt(c.Value.Raw)
		if err != nil {
			return false, err
		}
		return compareInts(v.Int, want, c.Op), nil
	case record.KindFloat:
		want, err := parseFloat(c.Value.Raw)
		if err != nil {
			return false, err
		}
		return compareFloats(v.Float, want, c.Op), nil
	default:
		return false, errMixedTypeComparison(c.Column)
	}
}
