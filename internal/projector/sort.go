package projector

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dandantas/profilewatch/internal/model"
)

// SortField names a sortable table column
type SortField string

const (
	SortName         SortField = "name"
	SortInferredType SortField = "inferredType"
	SortSemanticType SortField = "semanticType"
	SortCompleteness SortField = "completeness"
	SortQualityScore SortField = "qualityScore"
	// SortIssues exists so callers can name it; it is rejected
	SortIssues SortField = "issues"
)

// Direction of a single-key sort
type Direction string

const (
	Unsorted   Direction = ""
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ErrNotSortable is returned for the issues column
var ErrNotSortable = errors.New("column is not sortable")

// SortState is the table's single active sort key
type SortState struct {
	Field     SortField `json:"field,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// ParseSortField accepts the field names above, plus snake_case aliases
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "name":
		return SortName, nil
	case "inferredtype", "type":
		return SortInferredType, nil
	case "semantictype", "semantic":
		return SortSemanticType, nil
	case "completeness":
		return SortCompleteness, nil
	case "qualityscore", "score":
		return SortQualityScore, nil
	case "issues":
		return SortIssues, ErrNotSortable
	default:
		return "", fmt.Errorf("unknown sort field %q", s)
	}
}

// ParseDirection accepts asc, desc or empty
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	case Unsorted:
		return Unsorted, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", s)
	}
}

// Toggle advances the sort state the way a header click does: a new field
// starts ascending, then descending, then unsorted.
func (s SortState) Toggle(field SortField) (SortState, error) {
	if field == SortIssues {
		return s, ErrNotSortable
	}
	if s.Field != field {
		return SortState{Field: field, Direction: Ascending}, nil
	}
	switch s.Direction {
	case Ascending:
		return SortState{Field: field, Direction: Descending}, nil
	case Descending:
		return SortState{}, nil
	default:
		return SortState{Field: field, Direction: Ascending}, nil
	}
}

// Sort returns a stably sorted copy of rows. An unsorted state returns
// the rows in result order.
func Sort(rows []model.Column, state SortState) ([]model.Column, error) {
	out := make([]model.Column, len(rows))
	copy(out, rows)

	if state.Direction == Unsorted || state.Field == "" {
		return out, nil
	}
	less, err := lessFor(state.Field)
	if err != nil {
		return nil, err
	}

	if state.Direction == Descending {
		sort.SliceStable(out, func(i, j int) bool { return less(out[j], out[i]) })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out, nil
}

func lessFor(field SortField) (func(a, b model.Column) bool, error) {
	switch field {
	case SortName:
		return func(a, b model.Column) bool { return a.Name < b.Name }, nil
	case SortInferredType:
		return func(a, b model.Column) bool { return a.InferredType < b.InferredType }, nil
	case SortSemanticType:
		return func(a, b model.Column) bool { return semantic(a) < semantic(b) }, nil
	case SortCompleteness:
		return func(a, b model.Column) bool { return a.NullPercentage > b.NullPercentage }, nil
	case SortQualityScore:
		return func(a, b model.Column) bool { return a.QualityScore < b.QualityScore }, nil
	case SortIssues:
		return nil, ErrNotSortable
	default:
		return nil, fmt.Errorf("unknown sort field %q", field)
	}
}

func semantic(c model.Column) string {
	if c.SemanticType == nil {
		return ""
	}
	return *c.SemanticType
}
