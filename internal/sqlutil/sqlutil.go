// Package sqlutil holds small helpers shared by SQLite-backed stores.
package sqlutil

import (
	"database/sql"
	"strings"
)

// InClauseArgs builds the placeholder list and args slice for an IN clause.
//
// An empty items slice yields "NULL" with no args, so `IN (NULL)` matches
// no rows instead of producing invalid SQL.
func InClauseArgs(items []string) (placeholders string, args []any) {
	if len(items) == 0 {
		return "NULL", nil
	}
	ph := make([]string, len(items))
	args = make([]any, len(items))
	for i, item := range items {
		ph[i] = "?"
		args[i] = item
	}
	return strings.Join(ph, ", "), args
}

// ScanRows drains rows into a slice using scan for each row, closing rows
// when done.
func ScanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
