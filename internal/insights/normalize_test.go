package insights

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandantas/profilewatch/internal/model"
)

func TestRenderItem(t *testing.T) {
	tests := []struct {
		name string
		item model.RawItem
		want string
	}{
		{"string as is", model.StringItem("Drop the id column"), "Drop the id column"},
		{"description wins", model.ObjectItem(map[string]any{"text": "t", "description": "d"}), "d"},
		{"text before message", model.ObjectItem(map[string]any{"message": "m", "text": "t"}), "t"},
		{"issue field", model.ObjectItem(map[string]any{"issue": "Nulls in email", "column": "email"}), "Nulls in email"},
		{"test field", model.ObjectItem(map[string]any{"test": "not_null"}), "not_null"},
		{"non string field skipped", model.ObjectItem(map[string]any{"description": 3.0, "message": "m"}), "m"},
		{"unknown object as json", model.ObjectItem(map[string]any{"a": 1.0}), `{"a":1}`},
		{"json keeps sql operators", model.ObjectItem(map[string]any{"sql": "a < b && c > d"}), `{"sql":"a < b && c > d"}`},
		{"number", model.OtherItem(42.0), "42"},
		{"bool", model.OtherItem(true), "true"},
		{"null", model.OtherItem(nil), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderItem(tt.item))
		})
	}
}

func TestViewFromDecodedResponse(t *testing.T) {
	body := `{
		"executive_summary": "Mostly clean.",
		"critical_issues": ["Duplicate ids", {"column": "age", "issue": "Negative ages"}],
		"recommendations": [{"recommendation": "Add a unique key"}, 7],
		"dbt_tests": [{"test": "unique", "column": "id"}]
	}`
	var result model.InsightsResult
	require.NoError(t, json.Unmarshal([]byte(body), &result))

	view := View(&result)

	assert.Equal(t, "Mostly clean.", view.ExecutiveSummary)
	assert.Equal(t, []string{"Duplicate ids", "Negative ages"}, view.CriticalIssues)
	assert.Equal(t, []string{"Add a unique key", "7"}, view.Recommendations)
	assert.Equal(t, []string{"unique"}, view.DbtTests)
}

func TestViewObjectSummary(t *testing.T) {
	body := `{"insights":{"executive_summary":{"overview":"ok"},"critical_issues":["a"]}}`
	var resp model.InsightsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.NotNil(t, resp.Insights)

	view := View(resp.Insights)

	assert.Equal(t, `{"overview":"ok"}`, view.ExecutiveSummary)
	assert.Equal(t, []string{"a"}, view.CriticalIssues)
}

func TestViewSummaryShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing", `{"critical_issues":[]}`, ""},
		{"null", `{"executive_summary":null}`, ""},
		{"number", `{"executive_summary":3}`, "3"},
		{"list", `{"executive_summary":["x","y"]}`, "[x y]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result model.InsightsResult
			require.NoError(t, json.Unmarshal([]byte(tt.body), &result))
			assert.Equal(t, tt.want, View(&result).ExecutiveSummary)
		})
	}
}

func TestViewNil(t *testing.T) {
	view := View(nil)

	assert.Empty(t, view.ExecutiveSummary)
	assert.NotNil(t, view.CriticalIssues)
	assert.NotNil(t, view.Recommendations)
	assert.NotNil(t, view.DbtTests)
}

func TestModels(t *testing.T) {
	models := Models()
	require.Len(t, models, 3)
	assert.Equal(t, DefaultModel, models[0].ID)
	assert.True(t, models[0].Default)

	models[0].ID = "changed"
	assert.Equal(t, DefaultModel, Models()[0].ID)

	assert.Equal(t, DefaultModel, ResolveModel(""))
	assert.Equal(t, "gemini-1.5-flash", ResolveModel("gemini-1.5-flash"))
}
