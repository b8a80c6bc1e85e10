package report

import (
	"errors"
	"testing"
)

const tableJSON = `{
  "type": "TABLE",
  "result": {
    "headers": [{"name": "uuid"}, {"name": "nazov"}, {"name": "pocet"}],
    "rows": [
      {"values": ["a-1", "Služba", 12]},
      {"values": ["a-2", null, 1.50]},
      {"values": ["a-3", "x \"y\"", true]}
    ]
  }
}`

func TestParse_Table(t *testing.T) {
	tbl, err := Parse([]byte(tableJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tbl.Headers) != 3 || tbl.Headers[1] != "nazov" {
		t.Errorf("headers = %v", tbl.Headers)
	}
	rows := tbl.StringRows()
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][2] != "12" {
		t.Errorf("int cell = %q, want 12", rows[0][2])
	}
	if rows[1][1] != "" {
		t.Errorf("null cell = %q, want empty", rows[1][1])
	}
	if rows[1][2] != "1.50" {
		t.Errorf("number text = %q, want 1.50", rows[1][2])
	}
	if rows[2][2] != "true" {
		t.Errorf("bool cell = %q", rows[2][2])
	}
}

func TestParse_NotTable(t *testing.T) {
	_, err := Parse([]byte(`{"type":"LIST","result":{}}`))
	if !errors.Is(err, ErrNotTable) {
		t.Fatalf("err = %v, want ErrNotTable", err)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestPairs(t *testing.T) {
	tbl, err := Parse([]byte(`{"type":"TABLE","result":{
		"headers":[{"name":"a"},{"name":"b"}],
		"rows":[
			{"values":[" u1 ","u2"]},
			{"values":["u3"]},
			{"values":["", "u4"]},
			{"values":["u5", null]},
			{"values":["u6","u7","extra"]}
		]}}`))
	if err != nil {
		t.Fatal(err)
	}
	pairs, err := tbl.Pairs()
	if err != nil {
		t.Fatal(err)
	}
	want := []Pair{{"u1", "u2"}, {"u6", "u7"}}
	if len(pairs) != len(want) {
		t.Fatalf("pairs = %v, want %v", pairs, want)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair %d = %v, want %v", i, pairs[i], want[i])
		}
	}
}

func TestPairs_TooFewColumns(t *testing.T) {
	tbl := &Table{Type: TypeTable, Headers: []string{"only"}}
	if _, err := tbl.Pairs(); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseNodes(t *testing.T) {
	wrapped := `{"result":[
		{"uuid":"n1","name":"Named"},
		{"uuid":"n2","attributes":[{"name":"Gen_Profil_nazov","value":"From attribute"}]},
		{"name":"no uuid"}
	]}`
	nodes, err := ParseNodes([]byte(wrapped))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Fatalf("nodes = %v", nodes)
	}
	if nodes[0].Name != "Named" || nodes[1].Name != "From attribute" {
		t.Errorf("names = %q, %q", nodes[0].Name, nodes[1].Name)
	}

	bare, err := ParseNodes([]byte(`[{"uuid":"x"}]`))
	if err != nil || len(bare) != 1 || bare[0].UUID != "x" {
		t.Errorf("bare list: %v, %v", bare, err)
	}

	if _, err := ParseNodes([]byte(`{"items":[]}`)); err == nil {
		t.Error("expected error for unknown format")
	}
}
