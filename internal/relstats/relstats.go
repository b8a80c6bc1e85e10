// Package relstats computes connectivity statistics of one relation from a
// relation table and the node dumps of its two endpoint types.
package relstats

import (
	"math"
	"sort"

	"github.com/starford/metaviz/internal/models"
	"github.com/starford/metaviz/internal/report"
)

// Cardinality classes.
const (
	CardinalityEmpty      = "empty"
	CardinalityOneToOne   = "one-to-one"
	CardinalityOneToMany  = "one-to-many"
	CardinalityManyToOne  = "many-to-one"
	CardinalityManyToMany = "many-to-many"
)

// TopN is the length of the top_source and top_target lists.
const TopN = 10

// Input is everything needed to compute the statistics of one relation.
type Input struct {
	Relation   string
	Snapshot   string
	SourceType string
	TargetType string
	Pairs      []report.Pair
	Sources    []report.Node
	Targets    []report.Node
}

// Result holds the statistics document and orientation diagnostics.
type Result struct {
	Stats models.RelationStats
	// Ambiguous counts pairs matching neither orientation; they are kept
	// in table order.
	Ambiguous int
}

type edge struct {
	src, tgt string
}

// Compute orients every pair against the node uuid sets and derives the
// relation statistics.
func Compute(in Input) Result {
	srcNames := names(in.Sources)
	tgtNames := names(in.Targets)

	edges, ambiguous := orient(in.Pairs, srcNames, tgtNames)

	srcDeg := make(map[string]int)
	tgtDeg := make(map[string]int)
	pairCount := make(map[edge]int)
	for _, e := range edges {
		srcDeg[e.src]++
		tgtDeg[e.tgt]++
		pairCount[e]++
	}

	parallels := 0
	for _, c := range pairCount {
		parallels += c - 1
	}

	srcIslands, tgtIslands := islands(pairCount)

	sum := models.RelationSummary{
		EdgesTotal:      models.N(float64(len(edges))),
		UniquePairs:     models.N(float64(len(pairCount))),
		ParallelEdges:   models.N(float64(parallels)),
		Cardinality:     Classify(srcDeg, tgtDeg),
		SourceTotal:     models.N(float64(len(srcNames))),
		SourceConnected: models.N(float64(len(srcDeg))),
		TargetTotal:     models.N(float64(len(tgtNames))),
		TargetConnected: models.N(float64(len(tgtDeg))),
		DegreeSource:    Distribution(srcDeg),
		DegreeTarget:    Distribution(tgtDeg),
		TopSource:       Top(srcDeg, srcNames, TopN),
		TopTarget:       Top(tgtDeg, tgtNames, TopN),
		Islands: models.IslandPair{
			Source: islandStats(srcIslands, len(srcDeg)),
			Target: islandStats(tgtIslands, len(tgtDeg)),
		},
	}

	return Result{
		Stats: models.RelationStats{
			Relation:   in.Relation,
			Snapshot:   in.Snapshot,
			SourceType: in.SourceType,
			TargetType: in.TargetType,
			Stats:      sum,
		},
		Ambiguous: ambiguous,
	}
}

func names(nodes []report.Node) map[string]string {
	out := make(map[string]string, len(nodes))
	for _, n := range nodes {
		out[n.UUID] = n.Name
	}
	return out
}

// orient returns (source, target) edges. A pair matching neither
// orientation keeps table order and is counted as ambiguous.
func orient(pairs []report.Pair, src, tgt map[string]string) ([]edge, int) {
	edges := make([]edge, 0, len(pairs))
	ambiguous := 0
	for _, p := range pairs {
		_, aSrc := src[p.A]
		_, bTgt := tgt[p.B]
		if aSrc && bTgt {
			edges = append(edges, edge{p.A, p.B})
			continue
		}
		_, bSrc := src[p.B]
		_, aTgt := tgt[p.A]
		if bSrc && aTgt {
			edges = append(edges, edge{p.B, p.A})
			continue
		}
		edges = append(edges, edge{p.A, p.B})
		ambiguous++
	}
	return edges, ambiguous
}

// Classify derives the cardinality class from the per-side degrees.
func Classify(srcDeg, tgtDeg map[string]int) string {
	if len(srcDeg) == 0 && len(tgtDeg) == 0 {
		return CardinalityEmpty
	}
	srcMax := maxDegree(srcDeg)
	tgtMax := maxDegree(tgtDeg)
	switch {
	case srcMax <= 1 && tgtMax <= 1:
		return CardinalityOneToOne
	case srcMax > 1 && tgtMax <= 1:
		return CardinalityOneToMany
	case srcMax <= 1 && tgtMax > 1:
		return CardinalityManyToOne
	default:
		return CardinalityManyToMany
	}
}

func maxDegree(deg map[string]int) int {
	m := 0
	for _, d := range deg {
		if d > m {
			m = d
		}
	}
	return m
}

// Distribution summarizes the degrees of the connected nodes of one side.
// Percentiles interpolate linearly between ranks. No degrees yields an
// empty distribution.
func Distribution(deg map[string]int) models.DegreeStats {
	if len(deg) == 0 {
		return models.DegreeStats{}
	}
	vals := make([]float64, 0, len(deg))
	total := 0.0
	for _, d := range deg {
		vals = append(vals, float64(d))
		total += float64(d)
	}
	sort.Float64s(vals)
	return models.DegreeStats{
		Min:    models.N(vals[0]),
		Avg:    models.N(total / float64(len(vals))),
		Median: models.N(percentile(vals, 0.5)),
		P90:    models.N(percentile(vals, 0.9)),
		P99:    models.N(percentile(vals, 0.99)),
		Max:    models.N(vals[len(vals)-1]),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Top returns the n highest-degree nodes, ties broken by uuid.
func Top(deg map[string]int, names map[string]string, n int) []models.TopEntry {
	ids := make([]string, 0, len(deg))
	for id := range deg {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if deg[ids[i]] != deg[ids[j]] {
			return deg[ids[i]] > deg[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	out := make([]models.TopEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.TopEntry{
			UUID:   id,
			Name:   names[id],
			Degree: models.N(float64(deg[id])),
		})
	}
	return out
}

func islandStats(sizes []int, connected int) models.IslandStats {
	st := models.IslandStats{
		Count:        models.N(float64(len(sizes))),
		MultiIslands: []models.Island{},
	}
	singletons := 0
	for _, size := range sizes {
		if size == 1 {
			singletons++
			continue
		}
		st.MultiIslands = append(st.MultiIslands, models.Island{
			Size:     models.N(float64(size)),
			Fraction: models.N(float64(size) / float64(connected)),
		})
	}
	st.Singletons = models.N(float64(singletons))
	return st
}
