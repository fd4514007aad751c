// Package projector derives the dashboard views of a completed profile.
// Everything here is pure: inputs are never mutated.
package projector

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/dandantas/profilewatch/internal/model"
)

// Dashboard caps for the "needs attention" preview
const (
	PreviewColumns = 5
	PreviewIssues  = 2
)

// Projection is everything the dashboard derives from one result
type Projection struct {
	Histogram        model.IssueHistogram `json:"histogram"`
	TableRows        []Row                `json:"table_rows"`
	AttentionColumns []model.Column       `json:"attention_columns"`
	Scores           ScoreSummary         `json:"scores"`
}

// Project derives the histogram, table rows and attention list
func Project(result *model.ProfileResult) Projection {
	if result == nil {
		return Projection{TableRows: []Row{}, AttentionColumns: []model.Column{}}
	}
	return Projection{
		Histogram:        Histogram(result.Columns),
		TableRows:        Rows(result.Columns),
		AttentionColumns: AttentionColumns(result.Columns),
		Scores:           Scores(result.Columns),
	}
}

// Histogram counts every issue of every column by severity
func Histogram(columns []model.Column) model.IssueHistogram {
	var h model.IssueHistogram
	for _, col := range columns {
		for _, issue := range col.Issues {
			switch issue.Level() {
			case model.SeverityCritical:
				h.Critical++
			case model.SeverityWarning:
				h.Warning++
			default:
				h.Info++
			}
		}
	}
	return h
}

// AttentionColumns keeps columns with at least one issue, in result order
func AttentionColumns(columns []model.Column) []model.Column {
	out := make([]model.Column, 0, len(columns))
	for _, col := range columns {
		if len(col.Issues) > 0 {
			out = append(out, col)
		}
	}
	return out
}

// AttentionItem is one entry of the capped attention preview
type AttentionItem struct {
	Name         string        `json:"name"`
	InferredType string        `json:"inferred_type"`
	Issues       []model.Issue `json:"issues"`
	HiddenIssues int           `json:"hidden_issues"`
}

// AttentionPreview caps the attention list for display
func AttentionPreview(attention []model.Column, maxColumns, maxIssues int) []AttentionItem {
	if maxColumns > len(attention) || maxColumns < 0 {
		maxColumns = len(attention)
	}
	out := make([]AttentionItem, 0, maxColumns)
	for _, col := range attention[:maxColumns] {
		shown := col.Issues
		if maxIssues >= 0 && len(shown) > maxIssues {
			shown = shown[:maxIssues]
		}
		out = append(out, AttentionItem{
			Name:         col.Name,
			InferredType: col.InferredType,
			Issues:       shown,
			HiddenIssues: len(col.Issues) - len(shown),
		})
	}
	return out
}

// Badges summarises a column's issues for the table cell
type Badges struct {
	Clean    bool `json:"clean"`
	Critical int  `json:"critical,omitempty"`
	Warning  int  `json:"warning,omitempty"`
	// Info is only shown when there is nothing more severe
	Info int `json:"info,omitempty"`
}

// IssueBadges builds the issue badge set of one column
func IssueBadges(col model.Column) Badges {
	if len(col.Issues) == 0 {
		return Badges{Clean: true}
	}
	h := Histogram([]model.Column{col})
	b := Badges{Critical: h.Critical, Warning: h.Warning}
	if h.Critical == 0 && h.Warning == 0 {
		b.Info = h.Info
	}
	return b
}

// Row is one table row: the column and its issue badges
type Row struct {
	Column model.Column `json:"column"`
	Badges Badges       `json:"badges"`
}

// Rows pairs every column with its badges, keeping order
func Rows(columns []model.Column) []Row {
	out := make([]Row, 0, len(columns))
	for _, col := range columns {
		out = append(out, Row{Column: col, Badges: IssueBadges(col)})
	}
	return out
}

// Card is one summary tile
type Card struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SummaryCards renders the dataset-level tiles
func SummaryCards(s model.Summary) []Card {
	return []Card{
		{Label: "Total Rows", Value: humanize.Comma(int64(s.RowCount))},
		{Label: "Columns", Value: fmt.Sprintf("%d", s.ColumnCount)},
		{Label: "Duplicates", Value: fmt.Sprintf("%d", s.DuplicateRows)},
		{Label: "Memory", Value: fmt.Sprintf("%.2f MB", s.MemoryMB)},
	}
}
