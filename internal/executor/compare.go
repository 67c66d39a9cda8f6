package executor

import (
	"strconv"

	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
)

func errMixedTypeComparison(column string) error {
	return dberr.Wrap("executor.evalComparison", dberr.ErrUnsupportedQuery, map[string]interface{}{
		"column": column,
		"reason": "comparison between incompatible storage classes",
	})
}

func parseInt(raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, dberr.Wrap("executor.parseInt", dberr.ErrUnsupportedQuery, map[string]interface{}{"literal": raw})
	}
	return v, nil
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, dberr.Wrap("executor.parseFloat", dberr.ErrUnsupportedQuery, map[string]interface{}{"literal": raw})
	}
	return v, nil
}

func compareStrings(a, b string, op Op) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNeq:
		return a != b
	case OpLt:
		return a < b
	case OpGt:
		return a > b
	case OpLte:
		return a <= b
	case OpGte:
		return a >= b
	default:
		return false
	}
}

func compareInts(a, b int64, op Op) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNeq:
		return a != b
	case OpLt:
		return a < b
	case OpGt:
		return a > b
	case OpLte:
		return a <= b
	case OpGte:
		return a >= b
	default:
		return false
	}
}

func compareFloats(a, b float64, op Op) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNeq:
		return a != b
	case OpLt:
		return a < b
	case OpGt:
		return a > b
	case OpLte:
		return a <= b
	case OpGte:
		return a >= b
	default:
		return false
	}
}
