// Package sqlfront parses the restricted SELECT grammar this reader
// supports — select-list of column names or count(*), a single FROM table,
// and an optional WHERE of ANDed/ORed equality and comparison predicates —
// into an executor.Query descriptor.
package sqlfront

import (
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
	"github.com/codecrafters-io/sqlite-starter-go/internal/executor"
)

// Parse parses a single restricted SELECT statement.
func Parse(sql string) (executor.Query, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return executor.Query{}, dberr.Wrap("sqlfront.Parse", err, map[string]interface{}{"sql": sql})
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return executor.Query{}, dberr.Wrap("sqlfront.Parse", dberr.ErrUnsupportedQuery, map[string]interface{}{
			"statement_type": stmt,
		})
	}

	q := executor.Query{}

	if len(sel.From) != 1 {
		return executor.Query{}, dberr.Wrap("sqlfront.Parse", dberr.ErrUnsupportedQuery, map[string]interface{}{
			"reason": "exactly one FROM table is supported",
		})
	}
	aliased, ok := sel.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return executor.Query{}, dberr.Wrap("sqlfront.Parse", dberr.ErrUnsupportedQuery, nil)
	}
	tableName, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return executor.Query{}, dberr.Wrap("sqlfront.Parse", dberr.ErrUnsupportedQuery, nil)
	}
	q.Table = tableName.Name.String()

	q.IsCount, q.Columns, err = parseSelectList(sel.SelectExprs)
	if err != nil {
		return executor.Query{}, err
	}

	if sel.Where != nil {
		pred, err := parseExpr(sel.Where.Expr)
		if err != nil {
			return executor.Query{}, err
		}
		q.Predicate = pred
	}

	return q, nil
}

func parseSelectList(exprs sqlparser.SelectExprs) (isCount bool, columns []string, err error) {
	for _, se := range exprs {
		aliased, ok := se.(*sqlparser.AliasedExpr)
		if !ok {
			return false, nil, dberr.Wrap("sqlfront.parseSelectList", dberr.ErrUnsupportedQuery, nil)
		}
		switch e := aliased.Expr.(type) {
		case *sqlparser.FuncExpr:
			if !strings.EqualFold(e.Name.String(), "count") {
				return false, nil, dberr.Wrap("sqlfront.parseSelectList", dberr.ErrUnsupportedQuery, map[string]interface{}{
					"function": e.Name.String(),
				})
			}
			isCount = true
		case *sqlparser.ColName:
			columns = append(columns, e.Name.String())
		default:
			return false, nil, dberr.Wrap("sqlfront.parseSelectList", dberr.ErrUnsupportedQuery, nil)
		}
	}
	if isCount && len(columns) > 0 {
		return false, nil, dberr.Wrap("sqlfront.parseSelectList", dberr.ErrUnsupportedQuery, map[string]interface{}{
			"reason": "count(*) cannot be mixed with column projections",
		})
	}
	return isCount, columns, nil
}

// parseExpr translates a sqlparser WHERE expression tree into an
// executor.Predicate tree, supporting AND, OR, parenthesization, and
// column/literal comparisons.
func parseExpr(expr sqlparser.Expr) (executor.Predicate, error) {
	switch node := expr.(type) {
	case *sqlparser.AndExpr:
		left, err := parseExpr(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := parseExpr(node.Right)
		if err != nil {
			return nil, err
		}
		return executor.And{Left: left, Right: right}, nil
	case *sqlparser.OrExpr:
		left, err := parseExpr(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := parseExpr(node.Right)
		if err != nil {
			return nil, err
		}
		return executor.Or{Left: left, Right: right}, nil
	case *sqlparser.ParenExpr:
		return parseExpr(node.Expr)
	case *sqlparser.ComparisonExpr:
		return parseComparison(node)
	default:
		return nil, dberr.Wrap("sqlfront.parseExpr", dberr.ErrUnsupportedQuery, map[string]interface{}{
			"expr_type": expr,
		})
	}
}

func parseComparison(comp *sqlparser.ComparisonExpr) (executor.Predicate, error) {
	col, ok := comp.Left.(*sqlparser.ColName)
	if !ok {
		return nil, dberr.Wrap("sqlfront.parseComparison", dberr.ErrUnsupportedQuery, map[string]interface{}{
			"reason": "left side of comparison must be a column",
		})
	}
	val, ok := comp.Right.(*sqlparser.SQLVal)
	if !ok {
		return nil, dberr.Wrap("sqlfront.parseComparison", dberr.ErrUnsupportedQuery, map[string]interface{}{
			"reason": "right side of comparison must be a literal",
		})
	}

	lit := executor.Literal{Raw: string(val.Val)}
	switch val.Type {
	case sqlparser.StrVal:
		lit.IsString = true
	case sqlparser.IntVal, sqlparser.FloatVal:
		lit.IsString = false
	default:
		lit.IsString = true
	}

	op, err := parseOperator(comp.Operator)
	if err != nil {
		return nil, err
	}

	return executor.Comparison{Column: col.Name.String(), Op: op, Value: lit}, nil
}

func parseOperator(op string) (executor.Op, error) {
	switch op {
	case "=":
		return executor.OpEq, nil
	case "!=", "<>":
		return executor.OpNeq, nil
	case "<":
		return executor.OpLt, nil
	case ">":
		return executor.OpGt, nil
	case "<=":
		return executor.OpLte, nil
	case ">=":
		return executor.OpGte, nil
	default:
		return 0, dberr.Wrap("sqlfront.parseOperator", dberr.ErrUnsupportedQuery, map[string]interface{}{"operator": op})
	}
}
