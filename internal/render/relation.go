package render

import (
	"html/template"

	"github.com/starford/metaviz/internal/models"
)

// Messages shown when a statistics document is unavailable.
const (
	NoRelationStats = "No stats available for this relation in this snapshot."
	NoNodeStats     = "No stats available for this node type in this snapshot."
	NoDegreeData    = "No degree data."
)

// TopLimit caps the top-degree list of a side panel.
const TopLimit = 10

var cardinalityLabels = map[string]string{
	"one-to-one":   "1:1",
	"one-to-many":  "1:N",
	"many-to-one":  "N:1",
	"many-to-many": "M:N",
	"empty":        "empty",
}

// CardinalityLabel returns the short label of a cardinality class.
func CardinalityLabel(c string) string {
	if l, ok := cardinalityLabels[c]; ok {
		return l
	}
	return "n/a"
}

type header struct {
	Source      string
	Target      string
	Name        string
	Technical   string
	Description string
	Full        string
}

// RelationHeader renders the source/target labels, name and description of
// a relation. meta and stats may be nil.
func RelationHeader(relation string, meta *models.RelationMetadata, stats *models.RelationStats) template.HTML {
	h := header{Source: "?", Target: "?", Name: relation, Technical: relation}
	if stats != nil {
		h.Source = orUnknown(stats.SourceType)
		h.Target = orUnknown(stats.TargetType)
	}
	if meta != nil {
		if l := meta.Source.Label(); l != "?" {
			h.Source = l
		}
		if l := meta.Target.Label(); l != "?" {
			h.Target = l
		}
		if meta.Name != "" {
			h.Name = meta.Name
		}
		h.Full = meta.Description
		h.Description = Truncate(meta.Description)
	}
	return execute("relation_header", h)
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

type summary struct {
	Missing     bool
	Message     string
	Edges       string
	Unique      string
	Parallel    string
	Alert       bool
	Cardinality string
}

// RelationSummary renders the one-line connectivity summary, or the missing
// stats message when stats is nil.
func RelationSummary(stats *models.RelationStats) template.HTML {
	if stats == nil {
		return execute("relation_summary", summary{Missing: true, Message: NoRelationStats})
	}
	s := stats.Stats
	par := s.Parallels().Or(0)
	return execute("relation_summary", summary{
		Edges:       FormatCountOrZero(s.EdgesTotal),
		Unique:      FormatCountOrZero(s.UniquePairs),
		Parallel:    Plural(int(par), "parallel edge"),
		Alert:       par != 0,
		Cardinality: CardinalityLabel(s.Cardinality),
	})
}

// Side is the data of one side panel.
type Side struct {
	Title    string
	Coverage Coverage
	Islands  []float64
	Degree   models.DegreeStats
	Top      []models.TopEntry
}

// Sides splits relation stats into the source and target panels. Both are
// nil when stats is nil.
func Sides(stats *models.RelationStats) (source, target *Side) {
	if stats == nil {
		return nil, nil
	}
	s := stats.Stats
	source = &Side{
		Title: "Source " + orUnknown(stats.SourceType),
		Coverage: Coverage{
			Total:     s.SourceTotal,
			Connected: s.SourceConnected,
			Parallels: s.Parallels(),
			Edges:     s.EdgesTotal,
		},
		Islands: s.Islands.Source.Fractions(),
		Degree:  s.DegreeSource,
		Top:     s.TopSource,
	}
	target = &Side{
		Title: "Target " + orUnknown(stats.TargetType),
		Coverage: Coverage{
			Total:     s.TargetTotal,
			Connected: s.TargetConnected,
			Parallels: s.Parallels(),
			Edges:     s.EdgesTotal,
		},
		Islands: s.Islands.Target.Fractions(),
		Degree:  s.DegreeTarget,
		Top:     s.TopTarget,
	}
	return source, target
}

type bucket struct {
	Label string
	Value string
}

type topRow struct {
	Label  string
	Degree string
}

type panel struct {
	Empty     bool
	Title     string
	Coverage  template.HTML
	Islands   template.HTML
	Total     string
	Connected string
	Percent   string
	Buckets   []bucket
	Top       []topRow
	NoDegree  string
}

// SidePanel renders one side panel; nil renders an empty panel.
func SidePanel(side *Side) template.HTML {
	if side == nil {
		return execute("side_panel", panel{Empty: true})
	}
	c := side.Coverage
	p := panel{
		Title:     side.Title,
		Coverage:  CoveragePie(c),
		Islands:   IslandPie(side.Islands),
		Total:     FormatCount(c.Total),
		Connected: FormatCount(c.Connected),
		Percent:   "n/a",
		NoDegree:  NoDegreeData,
	}
	if c.Total.Or(0) > 0 {
		p.Percent = FormatPercent(100 * c.Connected.Or(0) / c.Total.V)
	}
	d := side.Degree
	p.Buckets = []bucket{
		{"min", FormatCount(d.Min)},
		{"avg", FormatCount(d.Avg)},
		{"median", FormatCount(d.Median)},
		{"p90", FormatCount(d.P90)},
		{"p99", FormatCount(d.P99)},
		{"max", FormatCount(d.Max)},
	}
	for i, t := range side.Top {
		if i == TopLimit {
			break
		}
		p.Top = append(p.Top, topRow{Label: t.Label(), Degree: FormatCount(t.Degree)})
	}
	return execute("side_panel", p)
}

// Message renders a plain notice paragraph.
func Message(text string) template.HTML {
	return execute("message", text)
}
