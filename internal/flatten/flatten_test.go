package flatten

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/metaviz/internal/report"
	"github.com/starford/metaviz/internal/reportdb"
	"github.com/starford/metaviz/internal/testutil"
)

func TestWriteCSV(t *testing.T) {
	tbl := &report.Table{
		Type:    report.TypeTable,
		Headers: []string{"uuid", "nazov"},
		Rows: [][]any{
			{"a;1", `povedal "áno"`},
			{"a-2", nil},
		},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	want := "\xEF\xBB\xBF" +
		`"uuid";"nazov"` + "\r\n" +
		`"a;1";"povedal ""áno"""` + "\r\n" +
		`"a-2";""` + "\r\n"
	if got := buf.String(); got != want {
		t.Errorf("csv =\n%q\nwant\n%q", got, want)
	}
}

const reportJSON = `{"type":"TABLE","result":{"headers":[{"name":"uuid"},{"name":"n"}],"rows":[{"values":["u1",3]}]}}`

func TestDir(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "csv")
	testutil.WriteFile(t, in, "KS.json", []byte(reportJSON))
	testutil.WriteFile(t, in, "broken.json", []byte(`{"type":"LIST"}`))
	testutil.WriteFile(t, in, "notes.txt", []byte("ignored"))

	db, err := reportdb.Open(filepath.Join(t.TempDir(), "r.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	sum, err := Dir(context.Background(), Options{InDir: in, OutDir: out, Sink: db})
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if sum.Converted != 1 || sum.Failed != 1 || sum.Stored != 1 {
		t.Errorf("summary = %+v", sum)
	}

	data, err := os.ReadFile(filepath.Join(out, "KS.csv"))
	if err != nil {
		t.Fatalf("csv not written: %v", err)
	}
	if !bytes.Contains(data, []byte(`"u1";"3"`)) {
		t.Errorf("csv = %q", data)
	}
	if _, err := os.Stat(filepath.Join(out, "broken.csv")); !os.IsNotExist(err) {
		t.Error("broken report should not produce a csv")
	}

	again, err := Dir(context.Background(), Options{InDir: in, OutDir: out, Sink: db})
	if err != nil {
		t.Fatal(err)
	}
	if again.Unchanged != 1 || again.Stored != 0 {
		t.Errorf("second run = %+v", again)
	}
}

func TestDir_MissingInput(t *testing.T) {
	_, err := Dir(context.Background(), Options{InDir: filepath.Join(t.TempDir(), "none"), OutDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected error")
	}
}
