package detail

import (
	"github.com/dandantas/profilewatch/internal/model"
)

// Chart limits for string pattern series
const (
	MaxPatterns    = 8
	MaxLabelLength = 15
)

// Point is one bar of the column chart. Full keeps the untruncated label
// for hover text.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Full  string  `json:"full,omitempty"`
}

// ChartSeries returns the chart data for one column, or an empty series
// when the column type has nothing to chart.
func ChartSeries(col *model.Column) []Point {
	if col == nil {
		return []Point{}
	}

	switch {
	case col.IsNumeric():
		return numericSeries(col.Stats.Numeric)
	case col.InferredType == model.TypeString:
		return patternSeries(col.Patterns.TopPatterns)
	default:
		return []Point{}
	}
}

func numericSeries(s *model.NumericStats) []Point {
	if s == nil || s.Min == nil {
		return []Point{}
	}
	return []Point{
		{Label: "Min", Value: *s.Min},
		{Label: "Mean", Value: valueOr(s.Mean, 0)},
		{Label: "Median", Value: valueOr(s.Median, 0)},
		{Label: "Max", Value: valueOr(s.Max, 0)},
	}
}

func patternSeries(patterns []model.PatternFrequency) []Point {
	if len(patterns) > MaxPatterns {
		patterns = patterns[:MaxPatterns]
	}
	out := make([]Point, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, Point{
			Label: TruncateLabel(p.Pattern),
			Value: p.Percentage,
			Full:  p.Pattern,
		})
	}
	return out
}

// TruncateLabel shortens labels over MaxLabelLength runes, marking the cut
func TruncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxLabelLength {
		return s
	}
	return string(runes[:MaxLabelLength]) + "…"
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
