package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandantas/profilewatch/internal/model"
)

func names(rows []model.Column) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestSortFields(t *testing.T) {
	rows := sampleResult().Columns

	tests := []struct {
		name  string
		state SortState
		want  []string
	}{
		{"unsorted keeps result order", SortState{}, []string{"id", "email", "age", "note"}},
		{"name asc", SortState{SortName, Ascending}, []string{"age", "email", "id", "note"}},
		{"quality desc", SortState{SortQualityScore, Descending}, []string{"id", "email", "age", "note"}},
		{"completeness asc", SortState{SortCompleteness, Ascending}, []string{"note", "age", "email", "id"}},
		{"semantic asc puts missing first", SortState{SortSemanticType, Ascending}, []string{"id", "age", "note", "email"}},
		{"type asc is stable", SortState{SortInferredType, Ascending}, []string{"id", "age", "email", "note"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted, err := Sort(rows, tt.state)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(sorted))
		})
	}
}

func TestSortRoundTripKeepsRows(t *testing.T) {
	rows := sampleResult().Columns

	asc, err := Sort(rows, SortState{SortQualityScore, Ascending})
	require.NoError(t, err)
	desc, err := Sort(asc, SortState{SortQualityScore, Descending})
	require.NoError(t, err)

	assert.ElementsMatch(t, names(rows), names(asc))
	assert.ElementsMatch(t, names(rows), names(desc))
	assert.Equal(t, []string{"id", "email", "age", "note"}, names(desc))
}

func TestSortRejectsIssues(t *testing.T) {
	_, err := Sort(sampleResult().Columns, SortState{SortIssues, Ascending})
	assert.ErrorIs(t, err, ErrNotSortable)

	_, err = ParseSortField("issues")
	assert.ErrorIs(t, err, ErrNotSortable)
}

func TestToggleCycles(t *testing.T) {
	var s SortState

	s, err := s.Toggle(SortName)
	require.NoError(t, err)
	assert.Equal(t, SortState{SortName, Ascending}, s)

	s, _ = s.Toggle(SortName)
	assert.Equal(t, SortState{SortName, Descending}, s)

	s, _ = s.Toggle(SortName)
	assert.Equal(t, SortState{}, s)

	s, _ = s.Toggle(SortName)
	s, _ = s.Toggle(SortQualityScore)
	assert.Equal(t, SortState{SortQualityScore, Ascending}, s)

	_, err = s.Toggle(SortIssues)
	assert.ErrorIs(t, err, ErrNotSortable)
}

func TestParseSortField(t *testing.T) {
	for in, want := range map[string]SortField{
		"name":          SortName,
		"inferred_type": SortInferredType,
		"semanticType":  SortSemanticType,
		"completeness":  SortCompleteness,
		"quality_score": SortQualityScore,
	} {
		got, err := ParseSortField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseSortField("colour")
	assert.Error(t, err)
}
