//go:build !sqlite_fts5

package reportdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on report_rows.cells.
	return nil
}

func ftsReplace(_ *sql.Tx, _ string, _ [][]string) error {
	return nil
}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT r.name, rr.row_num, rr.cells
		FROM report_rows rr
		JOIN reports r ON r.id = rr.report_id
		WHERE rr.cells LIKE ?
		ORDER BY r.name, rr.row_num
		LIMIT ?
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("reportdb: search: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	var out []SearchResult
	for rows.Next() {
		var (
			r     SearchResult
			cells string
		)
		if err := rows.Scan(&r.Report, &r.Row, &cells); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(cells), &r.Cells)
		out = append(out, r)
	}
	return out, rows.Err()
}
