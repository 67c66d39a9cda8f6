// Package schema loads and parses the sqlite_schema table: the row that
// describes every table and index in the database, including each one's
// root page and original CREATE statement.
package schema

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xwb1989/sqlparser"

	"github.com/codecrafters-io/sqlite-starter-go/internal/btree"
	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
	"github.com/codecrafters-io/sqlite-starter-go/internal/dbglog"
	"github.com/codecrafters-io/sqlite-starter-go/internal/record"
)

// SchemaRootPage is the fixed page number of sqlite_schema itself.
const SchemaRootPage = 1

// Column describes one column of a table as declared in its CREATE TABLE
// statement.
type Column struct {
	Name       string
	Type       string
	Index      int
	IsRowIDAlias bool // true for an INTEGER PRIMARY KEY column
}

// Table describes one user table: its root page and parsed column list.
type Table struct {
	Name     string
	RootPage int
	SQL      string
	Columns  []Column
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t Table) ColumnIndex(name string) int {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c.Index
		}
	}
	return -1
}

// RowIDAliasColumn returns the index of the column that acts as an alias
// for the row id (an INTEGER PRIMARY KEY column), or -1 if there is none.
func (t Table) RowIDAliasColumn() int {
	for _, c := range t.Columns {
		if c.IsRowIDAlias {
			return c.Index
		}
	}
	return -1
}

// Index describes one user index: its root page, the table it covers, and
// the ordered list of columns it's built on.
type Index struct {
	Name     string
	Table    string
	RootPage int
	SQL      string
	Columns  []string
}

// Schema is the fully loaded set of tables and indexes.
type Schema struct {
	Tables  map[string]Table
	Indexes map[string]Index
}

// TableNames returns the user-visible table names, excluding the internal
// sqlite_sequence bookkeeping table, in no particular order.
func (s Schema) TableNames() []string {
	var names []string
	for name := range s.Tables {
		if name == "sqlite_sequence" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// IndexesOn returns every index defined on the given table.
func (s Schema) IndexesOn(table string) []Index {
	var out []Index
	for _, idx := range s.Indexes {
		if strings.EqualFold(idx.Table, table) {
			out = append(out, idx)
		}
	}
	return out
}

// Walker is the subset of *btree.Walker the schema loader needs.
type Walker interface {
	TableScan(ctx context.Context, rootPage int, visit func(btree.TableCell) error) error
}

// Load reads every row of sqlite_schema via a generic table scan — the
// schema table is a b-tree like any other and is not assumed to fit on a
// single leaf page — and parses each row's CREATE statement. An optional
// trailing logger receives component entry/exit tracing; callers that don't
// care about logging can omit it.
func Load(ctx context.Context, w Walker, log ...logrus.FieldLogger) (Schema, error) {
	l := resolveLogger(log)
	l.Debug("schema.Load enter")
	s := Schema{Tables: map[string]Table{}, Indexes: map[string]Index{}}

	err := w.TableScan(ctx, SchemaRootPage, func(cell btree.TableCell) error {
		values, err := record.DecodeAll(cell.Payload)
		if err != nil {
			return dberr.Wrap("schema.Load", err, map[string]interface{}{"row_id": cell.RowID})
		}
		if len(values) < 5 {
			return dberr.Wrap("schema.Load", dberr.ErrInvalidSchemaType, map[string]interface{}{"row_id": cell.RowID})
		}

		kind := values[0].String()
		name := values[1].String()
		tableName := values[2].String()
		rootPage := int(values[3].Int)
		sql := values[4].String()

		switch kind {
		case "table":
			cols, err := parseTableColumns(sql)
			if err != nil {
				return dberr.Wrap("schema.Load", err, map[string]interface{}{"table": name})
			}
			l.WithField("table", name).Trace("schema.Load parsed table")
			s.Tables[name] = Table{Name: name, RootPage: rootPage, SQL: sql, Columns: cols}
		case "index":
			cols, err := parseIndexColumn(sql)
			if err != nil {
				return dberr.Wrap("schema.Load", err, map[string]interface{}{"index": name})
			}
			l.WithField("index", name).Trace("schema.Load parsed index")
			s.Indexes[name] = Index{Name: name, Table: tableName, RootPage: rootPage, SQL: sql, Columns: cols}
		default:
			return dberr.Wrap("schema.Load", dberr.ErrInvalidSchemaType, map[string]interface{}{"type": kind, "name": name})
		}
		return nil
	})
	if err != nil {
		return Schema{}, dberr.Wrap("schema.Load", err, nil)
	}
	l.WithField("table_count", len(s.Tables)).Debug("schema.Load exit")
	return s, nil
}

// resolveLogger returns the first logger passed to a variadic logger
// parameter, or a no-op logger if the caller didn't supply one.
func resolveLogger(log []logrus.FieldLogger) logrus.FieldLogger {
	if len(log) > 0 && log[0] != nil {
		return log[0]
	}
	return dbglog.Noop()
}

// parseTableColumns parses a CREATE TABLE statement's column list,
// detecting the INTEGER PRIMARY KEY row-id alias column.
func parseTableColumns(createSQL string) ([]Column, error) {
	// sqlparser requires a type on every column, so a column list with no
	// declared types at all (sqlite_sequence's "(name,seq)") is read
	// textually: each comma-separated item is a bare column name.
	if open, close := strings.IndexByte(createSQL, '('), strings.LastIndexByte(createSQL, ')'); open >= 0 && close > open {
		var cols []Column
		for _, item := range strings.Split(createSQL[open+1:close], ",") {
			f := strings.Fields(item)
			if len(f) != 1 {
				cols = nil
				break
			}
			cols = append(cols, Column{Name: strings.Trim(f[0], `"`), Index: len(cols)})
		}
		if cols != nil {
			return cols, nil
		}
	}

	normalized := normalizeSQLiteToMySQL(createSQL)
	stmt, err := sqlparser.Parse(normalized)
	if err != nil {
		return nil, dberr.Wrap("schema.parseTableColumns", err, map[string]interface{}{
			"sql": createSQL,
		})
	}

	ddl, ok := stmt.(*sqlparser.DDL)
	if !ok || ddl.Action != "create" || ddl.TableSpec == nil {
		return nil, dberr.Wrap("schema.parseTableColumns", dberr.ErrInvalidSchemaType, map[string]interface{}{
			"sql": createSQL,
		})
	}

	upperSQL := strings.ToUpper(createSQL)

	cols := make([]Column, len(ddl.TableSpec.Columns))
	for i, col := range ddl.TableSpec.Columns {
		typeName := strings.ToUpper(col.Type.Type)
		// A column is the row id alias when declared INTEGER PRIMARY KEY,
		// with or without AUTOINCREMENT — sqlparser's vitess-derived grammar
		// only tags Autoincrement reliably, so fall back to a textual check
		// for the bare "<col> INTEGER PRIMARY KEY" form.
		isRowIDAlias := typeName == "INTEGER" && (bool(col.Type.Autoincrement) ||
			strings.Contains(upperSQL, strings.ToUpper(col.Name.String())+" INTEGER PRIMARY KEY"))
		cols[i] = Column{
			Name:         col.Name.String(),
			Type:         col.Type.Type,
			Index:        i,
			IsRowIDAlias: isRowIDAlias,
		}
	}
	return cols, nil
}

// parseIndexColumn parses a CREATE INDEX statement's ordered indexed column
// list. sqlparser doesn't model CREATE INDEX, so this reads the column list
// out of the parenthesized clause directly and splits it on commas.
func parseIndexColumn(createSQL string) ([]string, error) {
	open := strings.IndexByte(createSQL, '(')
	close := strings.LastIndexByte(createSQL, ')')
	if open < 0 || close < 0 || close <= open {
		return nil, dberr.Wrap("schema.parseIndexColumn", dberr.ErrInvalidSchemaType, map[string]interface{}{
			"sql": createSQL,
		})
	}
	raw := strings.Split(createSQL[open+1:close], ",")
	cols := make([]string, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		c = strings.Trim(c, `"`+"`"+`[]`)
		if c == "" {
			continue
		}
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return nil, dberr.Wrap("schema.parseIndexColumn", dberr.ErrInvalidSchemaType, map[string]interface{}{
			"sql": createSQL,
		})
	}
	return cols, nil
}

// normalizeSQLiteToMySQL rewrites the handful of SQLite-specific syntax
// forms that trip up sqlparser's MySQL-flavored grammar.
func normalizeSQLiteToMySQL(sql string) string {
	normalized := strings.ReplaceAll(sql, `"`, "")
	normalized = strings.ReplaceAll(normalized, "autoincrement", "AUTO_INCREMENT")
	normalized = strings.ReplaceAll(normalized, "AUTOINCREMENT", "AUTO_INCREMENT")
	normalized = strings.TrimSpace(normalized)
	return normalized
}
