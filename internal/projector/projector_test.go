package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandantas/profilewatch/internal/model"
)

func issues(severities ...string) []model.Issue {
	out := make([]model.Issue, 0, len(severities))
	for _, s := range severities {
		out = append(out, model.Issue{Severity: s, Issue: s + " issue"})
	}
	return out
}

func strPtr(s string) *string { return &s }

func sampleResult() *model.ProfileResult {
	return &model.ProfileResult{
		Summary: model.Summary{RowCount: 1234567, ColumnCount: 4, DuplicateRows: 3, MemoryMB: 1.5},
		Columns: []model.Column{
			{Name: "id", InferredType: "integer", NullPercentage: 0, QualityScore: 100, Issues: issues()},
			{Name: "email", InferredType: "string", SemanticType: strPtr("email"), NullPercentage: 5, QualityScore: 80, Issues: issues("warning", "info")},
			{Name: "age", InferredType: "integer", NullPercentage: 20, QualityScore: 60, Issues: issues("critical", "bogus", "warning")},
			{Name: "note", InferredType: "string", NullPercentage: 50, QualityScore: 40, Issues: issues("info")},
		},
	}
}

func TestHistogramCountsEveryIssue(t *testing.T) {
	result := sampleResult()

	h := Histogram(result.Columns)

	assert.Equal(t, model.IssueHistogram{Critical: 1, Warning: 2, Info: 3}, h)
	total := 0
	for _, col := range result.Columns {
		total += len(col.Issues)
	}
	assert.Equal(t, total, h.Total())
}

func TestAttentionColumnsKeepOrder(t *testing.T) {
	result := sampleResult()

	attention := AttentionColumns(result.Columns)

	names := make([]string, 0, len(attention))
	for _, col := range attention {
		names = append(names, col.Name)
	}
	assert.Equal(t, []string{"email", "age", "note"}, names)
}

func TestAttentionPreviewCaps(t *testing.T) {
	cols := make([]model.Column, 0, 7)
	for i := 0; i < 7; i++ {
		cols = append(cols, model.Column{Name: string(rune('a' + i)), Issues: issues("warning", "info", "info")})
	}

	preview := AttentionPreview(cols, PreviewColumns, PreviewIssues)

	require.Len(t, preview, 5)
	assert.Equal(t, "a", preview[0].Name)
	assert.Len(t, preview[0].Issues, 2)
	assert.Equal(t, 1, preview[0].HiddenIssues)

	assert.Len(t, AttentionPreview(cols[:2], PreviewColumns, PreviewIssues), 2)
}

func TestProjectNilResult(t *testing.T) {
	p := Project(nil)

	assert.Empty(t, p.TableRows)
	assert.Empty(t, p.AttentionColumns)
	assert.Zero(t, p.Histogram.Total())
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	result := sampleResult()
	before := result.Columns[0].Name

	p := Project(result)
	rows, err := Sort(result.Columns, SortState{Field: SortName, Direction: Descending})
	require.NoError(t, err)

	assert.Equal(t, "note", rows[0].Name)
	assert.Equal(t, before, result.Columns[0].Name)
	assert.Equal(t, before, p.TableRows[0].Column.Name)
}

func TestProjectRowsCarryBadges(t *testing.T) {
	result := sampleResult()

	p := Project(result)

	require.Len(t, p.TableRows, len(result.Columns))
	for i, row := range p.TableRows {
		assert.Equal(t, result.Columns[i].Name, row.Column.Name)
		assert.Equal(t, IssueBadges(result.Columns[i]), row.Badges)
	}
	assert.Empty(t, Rows(nil))
	assert.NotNil(t, Rows(nil))
}

func TestIssueBadges(t *testing.T) {
	assert.Equal(t, Badges{Clean: true}, IssueBadges(model.Column{}))
	assert.Equal(t, Badges{Info: 2}, IssueBadges(model.Column{Issues: issues("info", "info")}))
	assert.Equal(t, Badges{Critical: 1, Warning: 1}, IssueBadges(model.Column{Issues: issues("critical", "warning", "info")}))
}

func TestSummaryCards(t *testing.T) {
	cards := SummaryCards(sampleResult().Summary)

	assert.Equal(t, []Card{
		{Label: "Total Rows", Value: "1,234,567"},
		{Label: "Columns", Value: "4"},
		{Label: "Duplicates", Value: "3"},
		{Label: "Memory", Value: "1.50 MB"},
	}, cards)
}

func TestScores(t *testing.T) {
	s := Scores(sampleResult().Columns)

	assert.Equal(t, ScoreSummary{Min: 40, Max: 100, Mean: 70, Median: 70}, s)
	assert.Equal(t, ScoreSummary{}, Scores(nil))
}
