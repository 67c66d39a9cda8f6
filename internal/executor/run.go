package executor

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/codecrafters-io/sqlite-starter-go/internal/btree"
	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
	"github.com/codecrafters-io/sqlite-starter-go/internal/dbglog"
	"github.com/codecrafters-io/sqlite-starter-go/internal/record"
	"github.com/codecrafters-io/sqlite-starter-go/internal/schema"
)

// Walker is the subset of *btree.Walker the executor needs to run a query.
type Walker interface {
	TableScan(ctx context.Context, rootPage int, visit func(btree.TableCell) error) error
	ReadIndexData(ctx context.Context, rootPage int, key btree.Comparable) ([]int64, error)
	IndexScan(ctx context.Context, tableRoot int, rowIDs map[int64]bool, visit func(btree.TableCell) error) error
}

// Result is the outcome of running a query: either a row count (for
// count(*)) or a set of projected rows.
type Result struct {
	Count int
	Rows  [][]record.Value
}

// Run executes q against the given schema and b-tree walker, choosing an
// index-assisted scan whenever the WHERE clause contains a top-level
// equality conjunct against the leading column of an index on the table,
// and falling back to a full
// table scan otherwise. An optional trailing logger receives component
// entry/exit tracing; callers that don't care about logging can omit it.
func Run(ctx context.Context, sch schema.Schema, w Walker, q Query, log ...logrus.FieldLogger) (Result, error) {
	l := resolveLogger(log)
	l.WithField("table", q.Table).Debug("executor.Run enter")

	table, ok := sch.Tables[q.Table]
	if !ok {
		return Result{}, dberr.Wrap("executor.Run", dberr.ErrUnknownTable, map[string]interface{}{"table": q.Table})
	}

	projIndexes := make([]int, len(q.Columns))
	for i, name := range q.Columns {
		idx := table.ColumnIndex(name)
		if idx < 0 {
			return Result{}, dberr.Wrap("executor.Run", dberr.ErrUnknownColumn, map[string]interface{}{"column": name})
		}
		projIndexes[i] = idx
	}

	rowIDAlias := table.RowIDAliasColumn()

	visit := func(result *Result) func(btree.TableCell) error {
		return func(cell btree.TableCell) error {
			row, err := record.Decode(cell.Payload, len(table.Columns))
			if err != nil {
				return dberr.Wrap("executor.Run", err, map[string]interface{}{"row_id": cell.RowID})
			}
			if rowIDAlias >= 0 {
				row[rowIDAlias] = record.Value{Kind: record.KindInt, Int: cell.RowID}
			}

			if q.Predicate != nil {
				ok, err := Evaluate(q.Predicate, table, row)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			if q.IsCount {
				result.Count++
				return nil
			}
			projected := make([]record.Value, len(projIndexes))
			for i, idx := range projIndexes {
				projected[i] = row[idx]
			}
			result.Rows = append(result.Rows, projected)
			return nil
		}
	}

	if plan, ok := planIndexScan(sch, table, q.Predicate); ok {
		l.WithField("index_root", plan.indexRootPage).Debug("executor.Run using index-assisted scan")
		rowIDs, err := w.ReadIndexData(ctx, plan.indexRootPage, plan.key)
		if err != nil {
			return Result{}, dberr.Wrap("executor.Run", err, nil)
		}
		if len(rowIDs) == 0 {
			return Result{}, nil
		}
		idSet := make(map[int64]bool, len(rowIDs))
		for _, id := range rowIDs {
			idSet[id] = true
		}
		var result Result
		if err := w.IndexScan(ctx, table.RootPage, idSet, visit(&result)); err != nil {
			return Result{}, dberr.Wrap("executor.Run", err, nil)
		}
		l.WithField("rows", len(result.Rows)).Debug("executor.Run exit")
		return result, nil
	}

	l.Debug("executor.Run using full table scan")
	var result Result
	if err := w.TableScan(ctx, table.RootPage, visit(&result)); err != nil {
		return Result{}, dberr.Wrap("executor.Run", err, nil)
	}
	l.WithField("rows", len(result.Rows)).Debug("executor.Run exit")
	return result, nil
}

// resolveLogger returns the first logger passed to a variadic logger
// parameter, or a no-op logger if the caller didn't supply one.
func resolveLogger(log []logrus.FieldLogger) logrus.FieldLogger {
	if len(log) > 0 && log[0] != nil {
		return log[0]
	}
	return dbglog.Noop()
}

type indexPlan struct {
	indexRootPage int
	key           btree.Comparable
}

// planIndexScan looks for a schema index covering an equality conjunct of
// the query's WHERE clause; if found, the scan can be driven by the index
// instead of walking every row of the table.
func planIndexScan(sch schema.Schema, table schema.Table, pred Predicate) (indexPlan, bool) {
	if pred == nil {
		return indexPlan{}, false
	}
	for _, idx := range sch.IndexesOn(table.Name) {
		if len(idx.Columns) == 0 {
			continue
		}
		lit, ok := EqualityCandidate(pred, idx.Columns[0])
		if !ok {
			continue
		}
		key := literalToValue(lit)
		return indexPlan{indexRootPage: idx.RootPage, key: btree.SingleColumnKey{Value: key}}, true
	}
	return indexPlan{}, false
}

func literalToValue(lit Literal) record.Value {
	if lit.IsString {
		return record.Value{Kind: record.KindText, Bytes: []byte(lit.Raw)}
	}
	if i, err := parseInt(lit.Raw); err == nil {
		return record.Value{Kind: record.KindInt, Int: i}
	}
	if f, err := parseFloat(lit.Raw); err == nil {
		return record.Value{Kind: record.KindFloat, Float: f}
	}
	return record.Value{Kind: record.KindText, Bytes: []byte(lit.Raw)}
}
