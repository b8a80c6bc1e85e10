package render

import (
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/starford/metaviz/internal/models"
)

// Bar thresholds in percent.
const (
	PillThreshold       = 3.0
	UniquePillThreshold = 2.0
	CommonThreshold     = 10.0
	RequiredThreshold   = 100.0
)

// Fill tiers.
const (
	TierRequired = "required"
	TierCommon   = "common"
	TierRare     = "rare"
)

// BarWidth clamps p to [0,100]; non-finite values become 0.
func BarWidth(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, -1) {
		return 0
	}
	return math.Min(100, math.Max(0, p))
}

// Tier classifies a fill percentage.
func Tier(p float64) string {
	switch {
	case p >= RequiredThreshold:
		return TierRequired
	case p >= CommonThreshold:
		return TierCommon
	default:
		return TierRare
	}
}

// Bar is the geometry of one attribute bar and its uniqueness overlay.
type Bar struct {
	Width      float64
	Tier       string
	Pill       bool
	Unique     float64
	UniquePill bool
}

// NewBar computes the bar for fill percentage p and uniqueness percentage
// uniquePct. The overlay is scaled by the outer bar.
func NewBar(p, uniquePct float64) Bar {
	w := BarWidth(p)
	u := w * BarWidth(uniquePct) / 100
	return Bar{
		Width:      w,
		Tier:       Tier(w),
		Pill:       w > 0 && w < PillThreshold,
		Unique:     u,
		UniquePill: u > 0 && u < UniquePillThreshold,
	}
}

// WidthCSS is the bar width for a style attribute.
func (b Bar) WidthCSS() string { return cssPercent(b.Width) }

// UniqueCSS is the overlay width for a style attribute.
func (b Bar) UniqueCSS() string { return cssPercent(b.Unique) }

func cssPercent(v float64) string {
	return trimZeros(strconv.FormatFloat(v, 'f', 3, 64)) + "%"
}

// AttributeRow is one displayed attribute.
type AttributeRow struct {
	Name          string
	Label         string
	Critical      bool
	Count         string
	UniqueCount   string
	Percent       string
	UniquePercent string
	Bar           Bar
}

// AttributeRows selects and formats the rows to display. With a filter term
// every attribute whose name contains it (case-insensitively) is returned;
// otherwise the first limit attributes are. meta may be nil.
func AttributeRows(stats *models.AttributeStats, meta *models.NodeTypeMetadata, filter string, limit int) []AttributeRow {
	if stats == nil {
		return nil
	}
	term := strings.ToLower(strings.TrimSpace(filter))

	var rows []AttributeRow
	for _, a := range stats.Attributes {
		if term != "" {
			if !strings.Contains(strings.ToLower(a.Name), term) {
				continue
			}
		} else if limit > 0 && len(rows) >= limit {
			break
		}
		rows = append(rows, newRow(a, meta))
	}
	return rows
}

func newRow(a models.AttributeStat, meta *models.NodeTypeMetadata) AttributeRow {
	row := AttributeRow{
		Name:          a.Name,
		Count:         FormatCountOrZero(a.Count),
		UniqueCount:   FormatCountOrZero(a.UniqueCount),
		Percent:       FormatPercentNum(a.Pct),
		UniquePercent: FormatPercentNum(a.UniquePct),
		Bar:           NewBar(a.Pct.Or(0), a.UniquePct.Or(0)),
	}
	if meta != nil {
		if am, ok := meta.Attributes[a.Name]; ok {
			if am.Name != "" && am.Name != a.Name {
				row.Label = am.Name
			}
			row.Critical = am.Critical()
		}
	}
	return row
}

// AttributeBars renders rows as horizontal bars.
func AttributeBars(rows []AttributeRow) template.HTML {
	return execute("attribute_bars", rows)
}

// AttributeTable renders rows as a table.
func AttributeTable(rows []AttributeRow) template.HTML {
	return execute("attribute_table", rows)
}
