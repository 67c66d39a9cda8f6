package executor

import (
	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
	"github.com/codecrafters-io/sqlite-starter-go/internal/record"
)

// ColumnResolver maps a column name to its positional index in a decoded
// row; *schema.Table satisfies this via its ColumnIndex method.
type ColumnResolver interface {
	ColumnIndex(name string) int
}

// Evaluate walks a predicate tree against one decoded row, short-circuiting
// AND/OR the way the teacher's own WHERE-clause evaluator does.
func Evaluate(p Predicate, resolver ColumnResolver, row []record.Value) (bool, error) {
	switch node := p.(type) {
	case Comparison:
		idx := resolver.ColumnIndex(node.Column)
		if idx < 0 {
			return false, dberr.Wrap("executor.Evaluate", dberr.ErrUnknownColumn, map[string]interface{}{"column": node.Column})
		}
		return evalComparison(node, idx, row)
	case And:
		left, err := Evaluate(node.Left, resolver, row)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return Evaluate(node.Right, resolver, row)
	case Or:
		left, err := Evaluate(node.Left, resolver, row)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return Evaluate(node.Right, resolver, row)
	default:
		return false, dberr.Wrap("executor.Evaluate", dberr.ErrUnsupportedQuery, nil)
	}
}

// EqualityCandidate inspects the predicate's top-level conjuncts for a
// single equality comparison against the named column, the shape an index
// lookup can serve. AND trees are searched; OR trees never are, since an OR
// can match rows an index probe on one branch wouldn't find.
func EqualityCandidate(p Predicate, column string) (Literal, bool) {
	switch node := p.(type) {
	case Comparison:
		if node.Op == OpEq && node.Column == column {
			return node.Value, true
		}
	case And:
		if lit, ok := EqualityCandidate(node.Left, column); ok {
			return lit, ok
		}
		if lit, ok := EqualityCandidate(node.Right, column); ok {
			return lit, ok
		}
	}
	return Literal{}, false
}
