package model

import (
	"encoding/json"
)

// Inferred column types reported by the profiling engine
const (
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeString   = "string"
	TypeDatetime = "datetime"
	TypeBoolean  = "boolean"
)

// ProfileResult is the structured quality report for one dataset
type ProfileResult struct {
	Summary Summary  `json:"summary"`
	Columns []Column `json:"columns"`
}

// Summary holds dataset-level figures
type Summary struct {
	QualityScore  float64 `json:"quality_score"`
	QualityGrade  string  `json:"quality_grade"`
	RowCount      int     `json:"row_count"`
	ColumnCount   int     `json:"column_count"`
	DuplicateRows int     `json:"duplicate_rows"`
	MemoryMB      float64 `json:"memory_mb"`
}

// Column is the per-column profile
type Column struct {
	Name           string      `json:"name"`
	InferredType   string      `json:"inferred_type"`
	SemanticType   *string     `json:"semantic_type"`
	NullCount      int         `json:"null_count"`
	NullPercentage float64     `json:"null_percentage"`
	DistinctCount  int         `json:"distinct_count"`
	IsUnique       bool        `json:"is_unique"`
	Stats          ColumnStats `json:"stats"`
	Outliers       Outliers    `json:"outliers"`
	Patterns       Patterns    `json:"patterns"`
	QualityScore   float64     `json:"quality_score"`
	Issues         []Issue     `json:"issues"`
}

// IsNumeric reports whether the column carries numeric statistics
func (c *Column) IsNumeric() bool {
	return IsNumericType(c.InferredType)
}

// IsNumericType reports whether an inferred type is integer or float
func IsNumericType(t string) bool {
	return t == TypeInteger || t == TypeFloat
}

// Outliers summarises outlier detection for a column
type Outliers struct {
	Count     int    `json:"count"`
	Threshold string `json:"threshold"`
}

// Patterns holds the most frequent value shapes of a string column
type Patterns struct {
	TopPatterns []PatternFrequency `json:"top_patterns,omitempty"`
}

// PatternFrequency is one pattern and its share of rows
type PatternFrequency struct {
	Pattern    string  `json:"pattern"`
	Percentage float64 `json:"percentage"`
}

// NumericStats are the summary statistics of an integer or float column.
// Nil fields were not reported.
type NumericStats struct {
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Mean   *float64 `json:"mean,omitempty"`
	Median *float64 `json:"median,omitempty"`
	Std    *float64 `json:"std,omitempty"`
}

// StringStats are the length statistics of a string column
type StringStats struct {
	MinLength  *float64 `json:"min_length,omitempty"`
	MaxLength  *float64 `json:"max_length,omitempty"`
	MeanLength *float64 `json:"mean_length,omitempty"`
}

// ColumnStats is the type-dependent statistics variant. At most one of
// Numeric and Text is set.
type ColumnStats struct {
	Numeric *NumericStats
	Text    *StringStats
}

// MarshalJSON writes the variant back as the flat map the engine uses
func (s ColumnStats) MarshalJSON() ([]byte, error) {
	switch {
	case s.Numeric != nil:
		return json.Marshal(s.Numeric)
	case s.Text != nil:
		return json.Marshal(s.Text)
	default:
		return []byte("{}"), nil
	}
}

// UnmarshalJSON keeps the raw map; Column.UnmarshalJSON picks the variant
// once the inferred type is known.
func (s *ColumnStats) UnmarshalJSON(data []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		// stats is not contractually typed; an unreadable bag is treated as empty
		*s = ColumnStats{}
		return nil
	}
	*s = statsFromMap("", raw)
	return nil
}

// UnmarshalJSON decodes a column and converts its open stats bag into the
// variant matching the inferred type.
func (c *Column) UnmarshalJSON(data []byte) error {
	type plain Column
	aux := struct {
		*plain
		Stats json.RawMessage `json:"stats"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	raw := map[string]any{}
	if len(aux.Stats) > 0 {
		// an unreadable stats bag leaves the column without statistics
		_ = json.Unmarshal(aux.Stats, &raw)
	}
	c.Stats = statsFromMap(c.InferredType, raw)
	if c.Issues == nil {
		c.Issues = []Issue{}
	}
	return nil
}

func statsFromMap(inferredType string, raw map[string]any) ColumnStats {
	if len(raw) == 0 {
		return ColumnStats{}
	}

	switch {
	case IsNumericType(inferredType):
		return ColumnStats{Numeric: numericFromMap(raw)}
	case inferredType == TypeString:
		return ColumnStats{Text: textFromMap(raw)}
	case inferredType == "":
		// type unknown yet, guess from the keys present
		if _, ok := raw["min_length"]; ok {
			return ColumnStats{Text: textFromMap(raw)}
		}
		if _, ok := raw["min"]; ok {
			return ColumnStats{Numeric: numericFromMap(raw)}
		}
	}
	return ColumnStats{}
}

func numericFromMap(raw map[string]any) *NumericStats {
	return &NumericStats{
		Min:    floatField(raw, "min"),
		Max:    floatField(raw, "max"),
		Mean:   floatField(raw, "mean"),
		Median: floatField(raw, "median"),
		Std:    floatField(raw, "std"),
	}
}

func textFromMap(raw map[string]any) *StringStats {
	return &StringStats{
		MinLength:  floatField(raw, "min_length"),
		MaxLength:  floatField(raw, "max_length"),
		MeanLength: floatField(raw, "mean_length"),
	}
}

func floatField(raw map[string]any, key string) *float64 {
	v, ok := raw[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

// FindColumn returns the column with the given name, or nil
func (r *ProfileResult) FindColumn(name string) *Column {
	if r == nil {
		return nil
	}
	for i := range r.Columns {
		if r.Columns[i].Name == name {
			return &r.Columns[i]
		}
	}
	return nil
}
