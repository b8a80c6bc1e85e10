package reportdb

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/metaviz/internal/apperr"
	"github.com/starford/metaviz/internal/report"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleTable() *report.Table {
	return &report.Table{
		Type:    report.TypeTable,
		Headers: []string{"uuid", "nazov"},
		Rows: [][]any{
			{"a-1", "Prvá"},
			{"a-2", nil},
		},
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM reports`).Scan(&count); err != nil {
		t.Fatalf("reports table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM report_rows`).Scan(&count); err != nil {
		t.Fatalf("report_rows table missing: %v", err)
	}
}

func TestStoreAndGet(t *testing.T) {
	db := testDB(t)
	id, err := db.Store("KS", "sum1", sampleTable())
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if id == "" {
		t.Fatal("empty id")
	}

	r, err := db.Get("KS")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.ID != id || r.RowCount != 2 || r.Checksum != "sum1" || len(r.Headers) != 2 {
		t.Errorf("report = %+v", r)
	}

	rows, err := db.Rows(id, 10, 0)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 || rows[0][1] != "Prvá" || rows[1][1] != "" {
		t.Errorf("rows = %v", rows)
	}

	page, err := db.Rows(id, 1, 1)
	if err != nil || len(page) != 1 || page[0][0] != "a-2" {
		t.Errorf("paged rows = %v, %v", page, err)
	}
}

func TestStore_ReplaceKeepsID(t *testing.T) {
	db := testDB(t)
	first, err := db.Store("KS", "sum1", sampleTable())
	if err != nil {
		t.Fatal(err)
	}

	smaller := sampleTable()
	smaller.Rows = smaller.Rows[:1]
	second, err := db.Store("KS", "sum2", smaller)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("id changed: %s -> %s", first, second)
	}

	rows, err := db.Rows(second, 10, 0)
	if err != nil || len(rows) != 1 {
		t.Errorf("rows after replace = %v, %v", rows, err)
	}
	cs, err := db.Checksum("KS")
	if err != nil || cs != "sum2" {
		t.Errorf("checksum = %q, %v", cs, err)
	}
}

func TestChecksum_Missing(t *testing.T) {
	db := testDB(t)
	cs, err := db.Checksum("nope")
	if err != nil || cs != "" {
		t.Errorf("checksum = %q, %v", cs, err)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.Get("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	db := testDB(t)
	for _, name := range []string{"PO", "AS", "KS"} {
		if _, err := db.Store(name, "x", sampleTable()); err != nil {
			t.Fatal(err)
		}
	}
	list, err := db.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].Name != "AS" || list[2].Name != "PO" {
		t.Errorf("list = %+v", list)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	if _, err := db.Store("KS", "x", sampleTable()); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Store("PO", "y", &report.Table{
		Type:    report.TypeTable,
		Headers: []string{"uuid", "nazov"},
		Rows:    [][]any{{"p-1", "Ministerstvo"}},
	}); err != nil {
		t.Fatal(err)
	}

	res, err := db.Search("Ministerstvo", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Report != "PO" || res[0].Row != 0 || res[0].Cells[0] != "p-1" {
		t.Errorf("results = %+v", res)
	}

	none, err := db.Search("nothing-matches", 10)
	if err != nil || len(none) != 0 {
		t.Errorf("no-match results = %+v, %v", none, err)
	}
}
