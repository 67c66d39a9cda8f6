// Package format renders engine results into the exact text the CLI prints:
// .dbinfo summary lines, sorted .tables listings, and pipe-joined SELECT rows.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codecrafters-io/sqlite-starter-go/internal/record"
)

// DBInfo renders the .dbinfo summary.
func DBInfo(pageSize uint32, tableCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "database page size: %d\n", pageSize)
	fmt.Fprintf(&b, "number of tables: %d\n", tableCount)
	return b.String()
}

// Tables renders the .tables listing: sorted, space-separated.
func Tables(names []string) string {
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

// Count renders a count(*) result as a bare decimal integer.
func Count(n int) string {
	return fmt.Sprintf("%d", n)
}

// Rows renders a SELECT projection result: one line per row, columns
// joined by the literal pipe character.
func Rows(rows [][]record.Value) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		parts := make([]string, len(row))
		for j, v := range row {
			parts[j] = v.String()
		}
		lines[i] = strings.Join(parts, "|")
	}
	return strings.Join(lines, "\n")
}
