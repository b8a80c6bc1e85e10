package relstats

import (
	"math"
	"testing"

	"github.com/starford/metaviz/internal/report"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func fixture() Input {
	return Input{
		Relation:   "PO_je_gestor_KS",
		Snapshot:   "2025-11-10",
		SourceType: "PO",
		TargetType: "KS",
		Sources: []report.Node{
			{UUID: "p1", Name: "Ministerstvo"}, {UUID: "p2"}, {UUID: "p3"},
		},
		Targets: []report.Node{
			{UUID: "k1"}, {UUID: "k2"}, {UUID: "k3"}, {UUID: "k4"},
		},
		Pairs: []report.Pair{
			{A: "p1", B: "k1"},
			{A: "k2", B: "p1"},
			{A: "p1", B: "k2"},
			{A: "p2", B: "k3"},
			{A: "x", B: "y"},
		},
	}
}

func TestCompute_Counts(t *testing.T) {
	res := Compute(fixture())
	s := res.Stats.Stats

	if res.Ambiguous != 1 {
		t.Errorf("ambiguous = %d, want 1", res.Ambiguous)
	}
	if s.EdgesTotal.V != 5 || s.UniquePairs.V != 4 || s.ParallelEdges.V != 1 {
		t.Errorf("edges=%v unique=%v parallel=%v", s.EdgesTotal.V, s.UniquePairs.V, s.ParallelEdges.V)
	}
	if s.Cardinality != CardinalityManyToMany {
		t.Errorf("cardinality = %q", s.Cardinality)
	}
	if s.SourceTotal.V != 3 || s.SourceConnected.V != 3 {
		t.Errorf("source total=%v connected=%v", s.SourceTotal.V, s.SourceConnected.V)
	}
	if s.TargetTotal.V != 4 || s.TargetConnected.V != 4 {
		t.Errorf("target total=%v connected=%v", s.TargetTotal.V, s.TargetConnected.V)
	}
	if res.Stats.Relation != "PO_je_gestor_KS" || res.Stats.SourceType != "PO" {
		t.Errorf("header fields = %+v", res.Stats)
	}
}

func TestCompute_Degrees(t *testing.T) {
	s := Compute(fixture()).Stats.Stats
	d := s.DegreeSource
	if d.Min.V != 1 || d.Max.V != 3 || d.Median.V != 1 {
		t.Errorf("min=%v median=%v max=%v", d.Min.V, d.Median.V, d.Max.V)
	}
	if !near(d.Avg.V, 5.0/3.0) {
		t.Errorf("avg = %v", d.Avg.V)
	}
	if !near(d.P90.V, 2.6) {
		t.Errorf("p90 = %v, want 2.6", d.P90.V)
	}

	top := s.TopSource
	if len(top) != 3 || top[0].UUID != "p1" || top[1].UUID != "p2" || top[2].UUID != "x" {
		t.Fatalf("top = %+v", top)
	}
	if top[0].Name != "Ministerstvo" || top[0].Degree.V != 3 {
		t.Errorf("top[0] = %+v", top[0])
	}
}

func TestCompute_Islands(t *testing.T) {
	s := Compute(fixture()).Stats.Stats

	src := s.Islands.Source
	if src.Count.V != 3 || src.Singletons.V != 3 || len(src.MultiIslands) != 0 {
		t.Errorf("source islands = %+v", src)
	}

	tgt := s.Islands.Target
	if tgt.Count.V != 3 || tgt.Singletons.V != 2 {
		t.Errorf("target islands = %+v", tgt)
	}
	if len(tgt.MultiIslands) != 1 || tgt.MultiIslands[0].Size.V != 2 || !near(tgt.MultiIslands[0].Fraction.V, 0.5) {
		t.Errorf("target multi islands = %+v", tgt.MultiIslands)
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(Input{Sources: []report.Node{{UUID: "a"}}}).Stats.Stats
	if s.Cardinality != CardinalityEmpty {
		t.Errorf("cardinality = %q", s.Cardinality)
	}
	if !s.DegreeSource.Empty() {
		t.Errorf("degree stats should be empty: %+v", s.DegreeSource)
	}
	if s.SourceTotal.V != 1 || s.SourceConnected.V != 0 {
		t.Errorf("source total=%v connected=%v", s.SourceTotal.V, s.SourceConnected.V)
	}
	if s.Islands.Source.Count.V != 0 {
		t.Errorf("islands = %+v", s.Islands.Source)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		src, tgt map[string]int
		want     string
	}{
		{"empty", nil, nil, CardinalityEmpty},
		{"one to one", map[string]int{"a": 1}, map[string]int{"b": 1}, CardinalityOneToOne},
		{"one to many", map[string]int{"a": 2}, map[string]int{"b": 1, "c": 1}, CardinalityOneToMany},
		{"many to one", map[string]int{"a": 1, "b": 1}, map[string]int{"c": 2}, CardinalityManyToOne},
		{"many to many", map[string]int{"a": 2}, map[string]int{"c": 2}, CardinalityManyToMany},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.src, tc.tgt); got != tc.want {
				t.Errorf("Classify = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTop_Truncates(t *testing.T) {
	deg := make(map[string]int)
	for i := 0; i < 15; i++ {
		deg[string(rune('a'+i))] = i + 1
	}
	top := Top(deg, nil, TopN)
	if len(top) != TopN {
		t.Fatalf("len = %d", len(top))
	}
	if top[0].UUID != "o" || top[0].Degree.V != 15 {
		t.Errorf("top[0] = %+v", top[0])
	}
}

func TestIslands_SharedComponent(t *testing.T) {
	pairs := map[edge]int{
		{"a", "x"}: 1,
		{"b", "x"}: 1,
		{"b", "y"}: 2,
		{"c", "z"}: 1,
	}
	src, tgt := islands(pairs)
	if len(src) != 2 || src[0] != 2 || src[1] != 1 {
		t.Errorf("src = %v", src)
	}
	if len(tgt) != 2 || tgt[0] != 2 || tgt[1] != 1 {
		t.Errorf("tgt = %v", tgt)
	}
}
