package model

import (
	"bytes"
	"encoding/json"
)

// RawKind tags what the insights engine sent for one item
type RawKind int

const (
	RawString RawKind = iota
	RawObject
	RawOther
)

// RawItem is one element of an insights array. The generative engine may
// send a plain string, an object, or anything else JSON allows; the kind
// is decided once at decode time.
type RawItem struct {
	Kind   RawKind
	Text   string
	Object map[string]any
	Other  any
}

// StringItem builds a string item
func StringItem(s string) RawItem { return RawItem{Kind: RawString, Text: s} }

// ObjectItem builds an object item
func ObjectItem(m map[string]any) RawItem { return RawItem{Kind: RawObject, Object: m} }

// OtherItem builds an item of any other JSON type
func OtherItem(v any) RawItem { return RawItem{Kind: RawOther, Other: v} }

// UnmarshalJSON classifies the item. It never fails on well-formed JSON.
func (r *RawItem) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '"':
			var s string
			if err := json.Unmarshal(trimmed, &s); err != nil {
				return err
			}
			*r = StringItem(s)
			return nil
		case '{':
			var m map[string]any
			if err := json.Unmarshal(trimmed, &m); err != nil {
				return err
			}
			*r = ObjectItem(m)
			return nil
		}
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*r = OtherItem(v)
	return nil
}

// MarshalJSON writes the item back in its original shape
func (r RawItem) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RawString:
		return json.Marshal(r.Text)
	case RawObject:
		return json.Marshal(r.Object)
	default:
		return json.Marshal(r.Other)
	}
}

// InsightsResult is the narrative produced for one profile
type InsightsResult struct {
	ExecutiveSummary RawItem   `json:"executive_summary"`
	CriticalIssues   []RawItem `json:"critical_issues,omitempty"`
	Recommendations  []RawItem `json:"recommendations,omitempty"`
	DbtTests         []RawItem `json:"dbt_tests,omitempty"`
}

// InsightsResponse is the body of GET /api/insights/{job_id}
type InsightsResponse struct {
	JobID     string          `json:"job_id,omitempty"`
	ModelUsed string          `json:"model_used,omitempty"`
	Insights  *InsightsResult `json:"insights"`
}

// InsightsStatus is the lifecycle of one insights request
type InsightsStatus string

const (
	InsightsNotRequested InsightsStatus = "not_requested"
	InsightsLoading      InsightsStatus = "loading"
	InsightsReady        InsightsStatus = "ready"
	InsightsError        InsightsStatus = "error"
)

// InsightsState is owned by the insights branch only
type InsightsState struct {
	Status  InsightsStatus  `json:"status"`
	JobID   string          `json:"job_id,omitempty"`
	Model   string          `json:"model,omitempty"`
	Result  *InsightsResult `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
}
