package projector

import (
	"github.com/dandantas/profilewatch/internal/model"
	"github.com/montanaflynn/stats"
)

// ScoreSummary describes the spread of per-column quality scores
type ScoreSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Scores summarises column quality scores. No columns gives zeros.
func Scores(columns []model.Column) ScoreSummary {
	if len(columns) == 0 {
		return ScoreSummary{}
	}
	data := make(stats.Float64Data, 0, len(columns))
	for _, col := range columns {
		data = append(data, col.QualityScore)
	}

	// errors only occur on empty input, handled above
	minScore, _ := data.Min()
	maxScore, _ := data.Max()
	mean, _ := data.Mean()
	median, _ := data.Median()

	return ScoreSummary{Min: minScore, Max: maxScore, Mean: mean, Median: median}
}
