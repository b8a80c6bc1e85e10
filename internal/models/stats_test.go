package models

import (
	"encoding/json"
	"testing"
)

func TestNum_Lenient(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
		want  float64
	}{
		{`12`, true, 12},
		{`12.5`, true, 12.5},
		{`"7"`, true, 7},
		{`null`, false, 0},
		{`"abc"`, false, 0},
		{`{"x":1}`, false, 0},
		{`[1]`, false, 0},
	}
	for _, c := range cases {
		var n Num
		if err := json.Unmarshal([]byte(c.in), &n); err != nil {
			t.Fatalf("%s: unexpected error %v", c.in, err)
		}
		if n.Valid != c.valid || n.V != c.want {
			t.Errorf("%s: got %+v", c.in, n)
		}
	}
}

func TestAttributeStats_MalformedFields(t *testing.T) {
	doc := `{"type":"KS","count":"10","attributes":[
		{"name":"Gen_Profil_nazov","count":10,"pct":100,"unique_count":9,"unique_pct":90},
		{"name":"Broken","count":"x","pct":{}},
		{"count":3},
		"garbage"
	]}`
	var s AttributeStats
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Count.Int() != 10 {
		t.Errorf("count = %v", s.Count)
	}
	if len(s.Attributes) != 2 {
		t.Fatalf("attributes = %d, want 2", len(s.Attributes))
	}
	if s.Attributes[1].Pct.Valid || s.Attributes[1].Count.Valid {
		t.Errorf("malformed fields should be unset: %+v", s.Attributes[1])
	}
}

func TestRelationSummary_Defaults(t *testing.T) {
	doc := `{"stats":{"edges_total":10,"unique_pairs":7,"degree_source":"oops","top_source":[{"name":"A","degree":3},5]}}`
	var r RelationStats
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := r.Stats.Parallels(); !got.Valid || got.V != 3 {
		t.Errorf("parallels = %+v, want 3", got)
	}
	if !r.Stats.DegreeSource.Empty() {
		t.Errorf("degree_source should be empty")
	}
	if len(r.Stats.TopSource) != 1 || r.Stats.TopSource[0].Label() != "A" {
		t.Errorf("top_source = %+v", r.Stats.TopSource)
	}
	if r.Stats.SourceTotal.Valid {
		t.Errorf("source_total should be unset")
	}
}

func TestEndpointLabel(t *testing.T) {
	cases := []struct {
		e    EndpointMetadata
		want string
	}{
		{EndpointMetadata{TechnicalName: "KS", Name: "Koncová služba"}, "Koncová služba (KS)"},
		{EndpointMetadata{TechnicalName: "KS"}, "KS"},
		{EndpointMetadata{TechnicalName: "KS", Name: "KS"}, "KS"},
		{EndpointMetadata{}, "?"},
	}
	for _, c := range cases {
		if got := c.e.Label(); got != c.want {
			t.Errorf("Label(%+v) = %q, want %q", c.e, got, c.want)
		}
	}
}

func TestIslandFractions_SkipsUnset(t *testing.T) {
	s := IslandStats{MultiIslands: []Island{{Fraction: N(0.5)}, {}, {Fraction: N(0.25)}}}
	got := s.Fractions()
	if len(got) != 2 || got[0] != 0.5 || got[1] != 0.25 {
		t.Errorf("fractions = %v", got)
	}
}
