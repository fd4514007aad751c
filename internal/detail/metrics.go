package detail

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/dandantas/profilewatch/internal/model"
)

// Completeness is the share of non-null values, in percent
func Completeness(col *model.Column) float64 {
	return 100 - col.NullPercentage
}

// Cardinality is distinct values over rows, in percent. Zero rows gives 0.
func Cardinality(col *model.Column, rowCount int) float64 {
	if rowCount <= 0 {
		return 0
	}
	return float64(col.DistinctCount) / float64(rowCount) * 100
}

// Percent formats a percentage with one decimal for display
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// StatItem is one labelled statistic in the detail panel
type StatItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// StatItems lists the statistics worth showing for the column's type
func StatItems(col *model.Column) []StatItem {
	items := []StatItem{}
	if col == nil {
		return items
	}

	add := func(label string, v *float64, format func(float64) string) {
		if v != nil {
			items = append(items, StatItem{Label: label, Value: format(*v)})
		}
	}

	switch {
	case col.IsNumeric() && col.Stats.Numeric != nil:
		s := col.Stats.Numeric
		add("Minimum", s.Min, plain)
		add("Maximum", s.Max, plain)
		add("Mean", s.Mean, fixed(2))
		add("Median", s.Median, fixed(2))
		add("Std Dev", s.Std, fixed(2))
	case col.InferredType == model.TypeString && col.Stats.Text != nil:
		s := col.Stats.Text
		add("Min Length", s.MinLength, plain)
		add("Max Length", s.MaxLength, plain)
		add("Avg Length", s.MeanLength, fixed(1))
	}
	return items
}

func plain(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return humanize.Comma(int64(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fixed(decimals int) func(float64) string {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	}
}

// View is the full drill-down payload for one column
type View struct {
	Column       *model.Column `json:"column"`
	Series       []Point       `json:"series"`
	Stats        []StatItem    `json:"stats"`
	Completeness float64       `json:"completeness"`
	Cardinality  float64       `json:"cardinality"`
	Display      Display       `json:"display"`
}

// Display carries the rounded strings shown to the user
type Display struct {
	Completeness string `json:"completeness"`
	Cardinality  string `json:"cardinality"`
	Distinct     string `json:"distinct"`
}

// BuildView assembles the drill-down for col within a result of rowCount rows
func BuildView(col *model.Column, rowCount int) View {
	completeness := Completeness(col)
	cardinality := Cardinality(col, rowCount)
	return View{
		Column:       col,
		Series:       ChartSeries(col),
		Stats:        StatItems(col),
		Completeness: completeness,
		Cardinality:  cardinality,
		Display: Display{
			Completeness: Percent(completeness),
			Cardinality:  Percent(cardinality),
			Distinct:     humanize.Comma(int64(col.DistinctCount)),
		},
	}
}
