//go:build sqlite_fts5

package reportdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS rows_fts USING fts5(
			report_id UNINDEXED,
			row_num UNINDEXED,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsReplace(tx *sql.Tx, id string, rows [][]string) error {
	_, _ = tx.Exec(`DELETE FROM rows_fts WHERE report_id = ?`, id)
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO rows_fts (report_id, row_num, body) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("reportdb: prepare fts insert: %w", err)
	}
	defer stmt.Close()
	for i, cells := range rows {
		if _, err := stmt.Exec(id, i, strings.Join(cells, " ")); err != nil {
			return fmt.Errorf("reportdb: upsert fts: %w", err)
		}
	}
	return nil
}

// Search performs an FTS5 full-text search over report rows.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT r.name, rr.row_num, rr.cells
		FROM rows_fts f
		JOIN reports r ON r.id = f.report_id
		JOIN report_rows rr ON rr.report_id = f.report_id AND rr.row_num = f.row_num
		WHERE rows_fts MATCH ?
		ORDER BY f.rank
		LIMIT ?
	`, query, limit)
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
