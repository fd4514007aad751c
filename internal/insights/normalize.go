package insights

import (
	"github.com/oliveagle/jsonpath"

	"github.com/dandantas/profilewatch/internal/model"
)

// textFields are probed in order when an item arrives as an object
var textFields = []string{"description", "text", "message", "issue", "recommendation", "test"}

// RenderItem turns one loosely typed insights item into display text.
// It never fails; unknown shapes fall back to their JSON or fmt form.
func RenderItem(item model.RawItem) string {
	switch item.Kind {
	case model.RawString:
		return item.Text
	case model.RawObject:
		if text, ok := probeText(item.Object); ok {
			return text
		}
		return compactJSON(item.Object)
	default:
		return coerceToString(item.Other)
	}
}

func probeText(obj map[string]any) (string, bool) {
	if obj == nil {
		return "", false
	}
	for _, field := range textFields {
		v, err := jsonpath.JsonPathLookup(obj, "$."+field)
		if err != nil {
			continue
		}
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// renderSummary keeps the whole summary visible; objects are not probed
func renderSummary(item model.RawItem) string {
	switch item.Kind {
	case model.RawString:
		return item.Text
	case model.RawObject:
		return compactJSON(item.Object)
	default:
		if item.Other == nil {
			return ""
		}
		return coerceToString(item.Other)
	}
}

// RenderAll renders every item of a section
func RenderAll(items []model.RawItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, RenderItem(item))
	}
	return out
}

// SectionView is the display form of an insights result
type SectionView struct {
	ExecutiveSummary string   `json:"executive_summary"`
	CriticalIssues   []string `json:"critical_issues"`
	Recommendations  []string `json:"recommendations"`
	DbtTests         []string `json:"dbt_tests"`
}

// View renders every section of result. A nil result renders empty.
func View(result *model.InsightsResult) SectionView {
	if result == nil {
		return SectionView{CriticalIssues: []string{}, Recommendations: []string{}, DbtTests: []string{}}
	}
	return SectionView{
		ExecutiveSummary: renderSummary(result.ExecutiveSummary),
		CriticalIssues:   RenderAll(result.CriticalIssues),
		Recommendations:  RenderAll(result.Recommendations),
		DbtTests:         RenderAll(result.DbtTests),
	}
}
