package reportdb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/metaviz/internal/apperr"
	"github.com/starford/metaviz/internal/report"
)

// ReportRow represents a row in the reports table.
type ReportRow struct {
	ID         string
	Name       string
	Type       string
	Checksum   string
	Headers    []string
	RowCount   int
	ImportedAt time.Time
}

// SearchResult is one matching report row.
type SearchResult struct {
	Report string
	Row    int
	Cells  []string
}

// Store inserts or replaces the report called name together with its rows,
// within a transaction. A replaced report keeps its id.
func (db *DB) Store(name, checksum string, t *report.Table) (string, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("reportdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id string
	err = tx.QueryRow(`SELECT id FROM reports WHERE name = ?`, name).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
	case err != nil:
		return "", fmt.Errorf("reportdb: lookup report: %w", err)
	}

	headersJSON, _ := json.Marshal(t.Headers)
	rows := t.StringRows()

	_, err = tx.Exec(`
		INSERT INTO reports (id, name, type, checksum, headers, row_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type        = excluded.type,
			checksum    = excluded.checksum,
			headers     = excluded.headers,
			row_count   = excluded.row_count,
			imported_at = excluded.imported_at
	`, id, name, t.Type, checksum, string(headersJSON), len(rows), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("reportdb: upsert report: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM report_rows WHERE report_id = ?`, id); err != nil {
		return "", fmt.Errorf("reportdb: clear rows: %w", err)
	}
	if len(rows) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO report_rows (report_id, row_num, cells) VALUES (?, ?, ?)`)
		if err != nil {
			return "", fmt.Errorf("reportdb: prepare row insert: %w", err)
		}
		defer stmt.Close()
		for i, cells := range rows {
			cellsJSON, _ := json.Marshal(cells)
			if _, err := stmt.Exec(id, i, string(cellsJSON)); err != nil {
				return "", fmt.Errorf("reportdb: insert row: %w", err)
			}
		}
	}

	if err := ftsReplace(tx, id, rows); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("reportdb: commit: %w", err)
	}
	return id, nil
}

// Checksum returns the stored checksum of a report, or empty string if not
// found.
func (db *DB) Checksum(name string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM reports WHERE name = ?`, name).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reportdb: checksum: %w", err)
	}
	return cs, nil
}

// Get returns one report by name.
func (db *DB) Get(name string) (*ReportRow, error) {
	var (
		r       ReportRow
		headers string
	)
	err := db.conn.QueryRow(`
		SELECT id, name, type, checksum, headers, row_count, imported_at
		FROM reports WHERE name = ?`, name).
		Scan(&r.ID, &r.Name, &r.Type, &r.Checksum, &headers, &r.RowCount, &r.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reportdb: report %s: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reportdb: get report: %w", err)
	}
	_ = json.Unmarshal([]byte(headers), &r.Headers)
	return &r, nil
}

// List returns every stored report ordered by name.
func (db *DB) List() ([]ReportRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, type, checksum, headers, row_count, imported_at
		FROM reports ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("reportdb: list: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var (
			r       ReportRow
			headers string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &r.Checksum, &headers, &r.RowCount, &r.ImportedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(headers), &r.Headers)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Rows returns up to limit rows of a report starting at offset.
func (db *DB) Rows(id string, limit, offset int) ([][]string, error) {
	rows, err := db.conn.Query(`
		SELECT cells FROM report_rows WHERE report_id = ?
		ORDER BY row_num LIMIT ? OFFSET ?`, id, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("reportdb: rows: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var cells string
		if err := rows.Scan(&cells); err != nil {
			return nil, err
		}
		var vals []string
		if err := json.Unmarshal([]byte(cells), &vals); err != nil {
			return nil, fmt.Errorf("reportdb: decode row: %w", err)
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}
