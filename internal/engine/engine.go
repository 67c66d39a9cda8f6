// Package engine assembles the page reader, b-tree walker, schema loader,
// and executor into the operations the command line needs: PageSize and
// TableCount (.dbinfo), TableNames (.tables), and Select.
package engine

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/codecrafters-io/sqlite-starter-go/internal/btree"
	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
	"github.com/codecrafters-io/sqlite-starter-go/internal/dbglog"
	"github.com/codecrafters-io/sqlite-starter-go/internal/executor"
	"github.com/codecrafters-io/sqlite-starter-go/internal/page"
	"github.com/codecrafters-io/sqlite-starter-go/internal/schema"
	"github.com/codecrafters-io/sqlite-starter-go/internal/sqlfront"
)

// Engine owns an open database file and the components layered over it.
type Engine struct {
	log        logrus.FieldLogger
	resources  *ResourceManager
	file       *os.File
	fileHeader page.FileHeader
	reader     *page.Reader
	walker     *btree.Walker
	schema     schema.Schema
}

// Open opens the database file at path, parses its 100-byte file header,
// and loads its schema. The returned Engine owns the underlying file
// descriptor; callers must call Close when done.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.Logger
	if log == nil {
		log = dbglog.New(cfg.Debug, cfg.Trace)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, dberr.Wrap("engine.Open", err, map[string]interface{}{"path": path})
	}

	resources := NewResourceManager()
	resources.Add(f)

	headerBuf := make([]byte, 100)
	if _, err := f.ReadAt(headerBuf, 0); err != nil {
		_ = resources.Close()
		return nil, dberr.Wrap("engine.Open", err, map[string]interface{}{"path": path})
	}
	if err := page.ValidateFileHeader(headerBuf, cfg.ValidationLevel); err != nil {
		_ = resources.Close()
		return nil, dberr.Wrap("engine.Open", err, map[string]interface{}{"path": path})
	}
	fileHeader, err := page.ParseFileHeader(headerBuf)
	if err != nil {
		_ = resources.Close()
		return nil, dberr.Wrap("engine.Open", err, nil)
	}
	log.WithField("page_size", fileHeader.PageSize).Debug("parsed file header")

	reader := page.NewReader(f, int(fileHeader.PageSize),
		page.WithLogger(log), page.WithReadTimeout(cfg.ReadTimeout))
	usableSize := int(fileHeader.PageSize) - int(fileHeader.ReservedSpace)
	walker := btree.NewWalker(reader, nil, usableSize, btree.WithLogger(log))

	sch, err := schema.Load(ctx, walker, log)
	if err != nil {
		_ = resources.Close()
		return nil, dberr.Wrap("engine.Open", err, nil)
	}
	log.WithField("table_count", len(sch.Tables)).Debug("loaded schema")

	return &Engine{
		log:        log,
		resources:  resources,
		file:       f,
		fileHeader: fileHeader,
		reader:     reader,
		walker:     walker,
		schema:     sch,
	}, nil
}

// Close releases the underlying file descriptor.
func (e *Engine) Close() error {
	return e.resources.Close()
}

// PageSize returns the database's page size, as declared in the file header.
func (e *Engine) PageSize() uint32 {
	return e.fileHeader.PageSize
}

// TableCount returns the number of user tables (excluding sqlite_sequence).
func (e *Engine) TableCount() int {
	return len(e.schema.TableNames())
}

// TableNames returns the user table names, unsorted (format.Tables sorts).
func (e *Engine) TableNames() []string {
	return e.schema.TableNames()
}

// Select parses and runs a restricted SELECT statement.
func (e *Engine) Select(ctx context.Context, sql string) (executor.Result, error) {
	q, err := sqlfront.Parse(sql)
	if err != nil {
		return executor.Result{}, dberr.Wrap("engine.Select", err, map[string]interface{}{"sql": sql})
	}
	e.log.WithField("table", q.Table).Trace("running query")
	return executor.Run(ctx, e.schema, e.walker, q, e.log)
}
