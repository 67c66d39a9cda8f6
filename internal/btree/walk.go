package btree

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
	"github.com/codecrafters-io/sqlite-starter-go/internal/dbglog"
	"github.com/codecrafters-io/sqlite-starter-go/internal/page"
	"github.com/codecrafters-io/sqlite-starter-go/internal/record"
)

// PageFetcher fetches pages by number; *page.Reader satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, number int) (page.Page, error)
}

// Walker walks the four B-tree page shapes of a single database file.
type Walker struct {
	pages      PageFetcher
	overflow   OverflowReader
	usableSize int
	log        logrus.FieldLogger
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithLogger attaches a logger that receives component entry/exit tracing
// for each traversal.
func WithLogger(log logrus.FieldLogger) WalkerOption {
	return func(w *Walker) { w.log = log }
}

// NewWalker builds a Walker. usableSize is the page size minus any reserved
// space declared in the file header.
func NewWalker(pages PageFetcher, overflow OverflowReader, usableSize int, opts ...WalkerOption) *Walker {
	w := &Walker{pages: pages, overflow: overflow, usableSize: usableSize, log: dbglog.Noop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// TableScan visits every row reachable from the table b-tree rooted at
// rootPage, in ascending row-id order, calling visit for each. It recurses
// into every interior cell's child in order, then into the interior page's
// rightmost child, before descending into leaves and emitting their cells.
func (w *Walker) TableScan(ctx context.Context, rootPage int, visit func(TableCell) error) error {
	w.log.WithField("page", rootPage).Debug("btree.TableScan enter")
	p, err := w.pages.Fetch(ctx, rootPage)
	if err != nil {
		return dberr.Wrap("btree.TableScan", err, map[string]interface{}{"page": rootPage})
	}

	if p.Header.Type.IsLeaf() {
		for i := 0; i < int(p.Header.CellCount); i++ {
			cell, err := TableLeafCell(p, p.CellOffset(i), w.usableSize, w.overflow)
			if err != nil {
				return dberr.Wrap("btree.TableScan", err, map[string]interface{}{"page": rootPage, "cell": i})
			}
			w.log.WithField("rowid", cell.RowID).Trace("btree.TableScan visit cell")
			if err := visit(cell); err != nil {
				return err
			}
		}
		return nil
	}

	for i := 0; i < int(p.Header.CellCount); i++ {
		ic, err := TableInteriorCell(p, p.CellOffset(i))
		if err != nil {
			return dberr.Wrap("btree.TableScan", err, map[string]interface{}{"page": rootPage, "cell": i})
		}
		if err := w.TableScan(ctx, ic.ChildPage, visit); err != nil {
			return err
		}
	}
	return w.TableScan(ctx, int(p.Header.RightmostChild), visit)
}

// ReadIndexData performs an equality search over an index b-tree rooted at
// rootPage for the given comparable key, returning the row ids of every
// matching entry. Index-leaf entries are visited in ascending key order;
// once a match has been found, the search stops as soon as a subsequent
// entry no longer compares equal, since matches are contiguous.
func (w *Walker) ReadIndexData(ctx context.Context, rootPage int, key Comparable) ([]int64, error) {
	w.log.WithField("page", rootPage).Debug("btree.ReadIndexData enter")
	var rowIDs []int64
	_, err := w.readIndexData(ctx, rootPage, key, &rowIDs, false)
	return rowIDs, err
}

// readIndexData returns whether any match has been seen so far, either in
// this subtree or earlier (foundAny). The interior-page loop uses that to
// cut the scan short at the first separator greater than the key once a
// match has been seen.
func (w *Walker) readIndexData(ctx context.Context, pageNum int, key Comparable, rowIDs *[]int64, foundAny bool) (bool, error) {
	p, err := w.pages.Fetch(ctx, pageNum)
	if err != nil {
		return foundAny, dberr.Wrap("btree.ReadIndexData", err, map[string]interface{}{"page": pageNum})
	}

	if p.Header.Type.IsLeaf() {
		matchedHere := false
		for i := 0; i < int(p.Header.CellCount); i++ {
			cell, err := IndexLeafCell(p, p.CellOffset(i), w.usableSize, w.overflow)
			if err != nil {
				return foundAny, dberr.Wrap("btree.ReadIndexData", err, map[string]interface{}{"page": pageNum, "cell": i})
			}
			cmp := key.Compare(cell.Values)
			w.log.WithFields(logrus.Fields{"page": pageNum, "rowid": cell.RowID, "cmp": cmp}).Trace("btree.ReadIndexData compare")
			if cmp == 0 {
				*rowIDs = append(*rowIDs, cell.RowID)
				matchedHere = true
				continue
			}
			if matchedHere && cmp < 0 {
				// Matches are contiguous in sorted order; once we've passed
				// them, nothing further on this leaf can match.
				break
			}
		}
		return foundAny || matchedHere, nil
	}

	anyMatch := foundAny
	for i := 0; i < int(p.Header.CellCount); i++ {
		cell, err := IndexInteriorCell(p, p.CellOffset(i), w.usableSize, w.overflow)
		if err != nil {
			return anyMatch, dberr.Wrap("btree.ReadIndexData", err, map[string]interface{}{"page": pageNum, "cell": i})
		}
		cmp := key.Compare(cell.Values)
		// K >= V: the key could be in this cell's left child (keys less
		// than or equal to the separator) or later; recurse left whenever
		// the separator isn't strictly less than the key.
		if cmp <= 0 {
			matched, err := w.readIndexData(ctx, cell.ChildPage, key, rowIDs, anyMatch)
			if err != nil {
				return anyMatch, err
			}
			anyMatch = anyMatch || matched
		}
		if cmp == 0 {
			*rowIDs = append(*rowIDs, cell.RowID)
			anyMatch = true
		}
		if cmp < 0 && anyMatch {
			return anyMatch, nil
		}
	}

	matched, err := w.readIndexData(ctx, int(p.Header.RightmostChild), key, rowIDs, anyMatch)
	if err != nil {
		return anyMatch, err
	}
	return anyMatch || matched, nil
}

// IndexScan walks a table b-tree rooted at tableRoot but only descends into
// (and emits cells from) subtrees whose row-id range intersects rowIDs,
// using each table-interior cell's key as the inclusive upper bound of its
// left child's row ids to prune the search.
func (w *Walker) IndexScan(ctx context.Context, tableRoot int, rowIDs map[int64]bool, visit func(TableCell) error) error {
	w.log.WithField("page", tableRoot).Debug("btree.IndexScan enter")
	p, err := w.pages.Fetch(ctx, tableRoot)
	if err != nil {
		return dberr.Wrap("btree.IndexScan", err, map[string]interface{}{"page": tableRoot})
	}

	if p.Header.Type.IsLeaf() {
		for i := 0; i < int(p.Header.CellCount); i++ {
			cell, err := TableLeafCell(p, p.CellOffset(i), w.usableSize, w.overflow)
			if err != nil {
				return dberr.Wrap("btree.IndexScan", err, map[string]interface{}{"page": tableRoot, "cell": i})
			}
			if rowIDs[cell.RowID] {
				w.log.WithField("rowid", cell.RowID).Trace("btree.IndexScan visit cell")
				if err := visit(cell); err != nil {
					return err
				}
			}
		}
		return nil
	}

	lowerBound := int64(minInt64())
	for i := 0; i < int(p.Header.CellCount); i++ {
		ic, err := TableInteriorCell(p, p.CellOffset(i))
		if err != nil {
			return dberr.Wrap("btree.IndexScan", err, map[string]interface{}{"page": tableRoot, "cell": i})
		}
		if rangeIntersects(rowIDs, lowerBound, ic.Key) {
			if err := w.IndexScan(ctx, ic.ChildPage, rowIDs, visit); err != nil {
				return err
			}
		}
		lowerBound = ic.Key + 1
	}

	if rangeIntersects(rowIDs, lowerBound, int64(maxInt64())) {
		return w.IndexScan(ctx, int(p.Header.RightmostChild), rowIDs, visit)
	}
	return nil
}

func rangeIntersects(rowIDs map[int64]bool, low, high int64) bool {
	for id := range rowIDs {
		if id >= low && id <= high {
			return true
		}
	}
	return false
}

func minInt64() int64 { return -1 << 63 }
func maxInt64() int64 { return 1<<63 - 1 }

// Comparable compares an index search key against a decoded index entry's
// leading key columns, returning <0, 0, >0 as the search key is less than,
// equal to, or greater than the entry.
type Comparable interface {
	Compare(entryValues []record.Value) int
}
