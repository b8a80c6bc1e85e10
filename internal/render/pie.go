package render

import (
	"html/template"
	"math"
	"sort"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/starford/metaviz/internal/models"
)

// Ring geometry shared by all pies.
const (
	PieSize   = 120.0
	PieRadius = 46.0
	PieStroke = 16.0
)

// Circumference of the ring.
var Circumference = 2 * math.Pi * PieRadius

// Colours.
const (
	ColorTrack    = "#e5e7eb"
	ColorEmpty    = "#d1d5db"
	ColorCoverage = "#2563eb"
	ColorParallel = "#dc2626"
	ColorNeutral  = "#9ca3af"
)

// IslandPalette is cycled by island index.
var IslandPalette = []string{
	"#2563eb", "#16a34a", "#f59e0b", "#db2777", "#7c3aed", "#0891b2",
}

// FadeThreshold is the island fraction below which colours fade to gray.
const FadeThreshold = 0.05

// Arc is one stroke segment of a ring, starting at Offset along the
// circumference.
type Arc struct {
	Length float64
	Offset float64
	Color  string
}

// Dash is the stroke-dasharray value.
func (a Arc) Dash() string {
	return fmtFloat(a.Length) + " " + fmtFloat(Circumference-a.Length)
}

// DashOffset is the stroke-dashoffset value.
func (a Arc) DashOffset() string {
	if a.Offset == 0 {
		return "0"
	}
	return fmtFloat(-a.Offset)
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

type ring struct {
	Size   float64
	Center float64
	Radius float64
	Stroke float64
	Track  string
	Arcs   []Arc
	Title  string
}

func newRing(track string, arcs []Arc, title string) ring {
	return ring{
		Size:   PieSize,
		Center: PieSize / 2,
		Radius: PieRadius,
		Stroke: PieStroke,
		Track:  track,
		Arcs:   arcs,
		Title:  title,
	}
}

// Coverage is the input of a coverage pie.
type Coverage struct {
	Total     models.Num
	Connected models.Num
	Parallels models.Num
	Edges     models.Num
}

// Empty reports whether the pie has nothing to show.
func (c Coverage) Empty() bool {
	return c.Total.Or(0) <= 0 || c.Edges.Or(0) <= 0
}

// CoverageArcs returns the coverage arc and the parallel-edge arc, both
// starting at the top. It returns nil for an empty coverage.
func CoverageArcs(c Coverage) []Arc {
	if c.Empty() {
		return nil
	}
	cov := clamp01(c.Connected.Or(0) / c.Total.V)
	par := clamp01(c.Parallels.Or(0) / c.Edges.V)
	return []Arc{
		{Length: cov * Circumference, Color: ColorCoverage},
		{Length: par * Circumference, Color: ColorParallel},
	}
}

// CoveragePie renders the coverage ring, or a flat empty ring.
func CoveragePie(c Coverage) template.HTML {
	arcs := CoverageArcs(c)
	if arcs == nil {
		return execute("ring", newRing(ColorEmpty, nil, "no data"))
	}
	title := "coverage " + FormatPercent(100*clamp01(c.Connected.Or(0)/c.Total.V))
	return execute("ring", newRing(ColorTrack, arcs, title))
}

// IslandArcs normalizes the positive finite fractions to sum 1, sorts them
// descending and lays them out around the ring.
func IslandArcs(fractions []float64) []Arc {
	var vals []float64
	var sum float64
	for _, f := range fractions {
		if f > 0 && !math.IsInf(f, 1) {
			vals = append(vals, f)
			sum += f
		}
	}
	if len(vals) == 0 || sum <= 0 {
		return nil
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))

	arcs := make([]Arc, len(vals))
	offset := 0.0
	for i, v := range vals {
		frac := v / sum
		length := frac * Circumference
		if i == len(vals)-1 {
			length = Circumference - offset
		}
		arcs[i] = Arc{Length: length, Offset: offset, Color: IslandColor(i, frac)}
		offset += length
	}
	return arcs
}

// IslandColor picks the palette colour for index i, blended toward gray when
// frac is below FadeThreshold.
func IslandColor(i int, frac float64) string {
	base := IslandPalette[i%len(IslandPalette)]
	if frac >= FadeThreshold {
		return base
	}
	t := clamp01(frac / FadeThreshold)
	s := t * t
	if s == 0 {
		return ColorNeutral
	}
	c, err := colorful.Hex(base)
	if err != nil {
		return ColorNeutral
	}
	gray, _ := colorful.Hex(ColorNeutral)
	return gray.BlendLab(c, s).Clamped().Hex()
}

// IslandPie renders the island ring, or a flat gray ring for empty input.
func IslandPie(fractions []float64) template.HTML {
	arcs := IslandArcs(fractions)
	if arcs == nil {
		return execute("ring", newRing(ColorEmpty, nil, "no islands"))
	}
	return execute("ring", newRing(ColorTrack, arcs, Plural(len(arcs), "island")))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
