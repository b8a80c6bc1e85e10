// Package render turns statistics documents and view state into HTML
// fragments: attribute bars and tables, coverage and island ring charts,
// relation headers, summaries and side panels.
package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/starford/metaviz/internal/models"
)

// Precision used for displayed percentages.
const (
	PercentDecimals    = 3
	PercentMaxDecimals = 8
)

// FormatPercentSmart formats p (already in percent units). Values with
// |p| >= 0.01 use baseDecimals fixed decimals. Smaller non-zero values get
// enough decimals for about two significant digits, between baseDecimals and
// maxDecimals, with trailing zeros stripped; values below that precision
// render as 0%.
func FormatPercentSmart(p float64, baseDecimals, maxDecimals int) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "n/a"
	}
	if p == 0 {
		return "0%"
	}
	abs := math.Abs(p)
	if abs >= 0.01 {
		return strconv.FormatFloat(p, 'f', baseDecimals, 64) + "%"
	}

	decimals := int(math.Ceil(-math.Log10(abs))) + 1
	decimals = max(decimals, baseDecimals)
	decimals = min(decimals, maxDecimals)

	s := trimZeros(strconv.FormatFloat(p, 'f', decimals, 64))
	if s == "0" || s == "-0" {
		return "0%"
	}
	return s + "%"
}

// FormatPercent formats p with the display precision.
func FormatPercent(p float64) string {
	return FormatPercentSmart(p, PercentDecimals, PercentMaxDecimals)
}

// FormatPercentNum formats an optional percentage, "n/a" when unset.
func FormatPercentNum(n models.Num) string {
	if !n.Valid {
		return "n/a"
	}
	return FormatPercent(n.V)
}

// FormatCount formats an optional count, "?" when unset.
func FormatCount(n models.Num) string {
	if !n.Valid {
		return "?"
	}
	return formatNumber(n.V)
}

// FormatCountOrZero formats an optional count, "0" when unset.
func FormatCountOrZero(n models.Num) string {
	if !n.Valid {
		return "0"
	}
	return formatNumber(n.V)
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return trimZeros(strconv.FormatFloat(v, 'f', 2, 64))
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Plural returns "n word" or "n words".
func Plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

// Truncate shortens s to 77 runes plus "..." when it exceeds 80 runes.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= 80 {
		return s
	}
	return string(r[:77]) + "..."
}
