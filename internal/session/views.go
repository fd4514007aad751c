package session

import (
	"context"

	"github.com/dandantas/profilewatch/internal/detail"
	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/internal/projector"
)

// Snapshot is the externally visible state of a session
type Snapshot struct {
	SessionID      string               `json:"session_id"`
	Job            *model.JobHandle     `json:"job,omitempty"`
	State          model.JobState       `json:"state"`
	Polls          int                  `json:"polls"`
	UploadProgress int                  `json:"upload_progress"`
	HasResult      bool                 `json:"has_result"`
	Selection      string               `json:"selection,omitempty"`
	Sort           projector.SortState  `json:"sort"`
	Insights       model.InsightsStatus `json:"insights"`
	Exporting      string               `json:"exporting,omitempty"`
}

// Snapshot reports the session state without the result body
func (s *Session) Snapshot() Snapshot {
	state := s.tracker.State()
	state.Result = nil
	polls := s.tracker.Polls()
	insightsState := s.insights.State()

	s.mu.Lock()
	snap := Snapshot{
		SessionID:      s.id,
		State:          state,
		Polls:          polls,
		UploadProgress: s.progress,
		HasResult:      s.result != nil,
		Selection:      s.selector.Name(),
		Sort:           s.sort,
		Insights:       insightsState.Status,
	}
	handle := s.handle
	s.mu.Unlock()

	if !handle.IsZero() {
		snap.Job = &handle
		if format, ok := s.exports.Exporting(handle.ID); ok {
			snap.Exporting = format
		}
	}
	return snap
}

// Result returns the displayed result, if any
func (s *Session) Result() (*model.ProfileResult, error) {
	if err := s.touch(); err != nil {
		return nil, err
	}
	_, result := s.current()
	if result == nil {
		return nil, ErrNoResult
	}
	return result, nil
}

// Report is the dashboard projection of the displayed result
type Report struct {
	Summary    model.Summary            `json:"summary"`
	Cards      []projector.Card         `json:"cards"`
	Projection projector.Projection     `json:"projection"`
	Attention  []projector.AttentionItem `json:"attention_preview"`
	Sort       projector.SortState      `json:"sort"`
}

// Report projects the displayed result. A valid non-nil sort replaces
// the session's current sort state; nil keeps it.
func (s *Session) Report(sort *projector.SortState) (*Report, error) {
	if err := s.touch(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	state := s.sort
	if sort != nil {
		state = *sort
	}
	result := s.result
	s.mu.Unlock()

	if result == nil {
		return nil, ErrNoResult
	}

	projection := projector.Project(result)
	sorted, err := projector.Sort(result.Columns, state)
	if err != nil {
		return nil, err
	}
	projection.TableRows = projector.Rows(sorted)

	if sort != nil {
		s.mu.Lock()
		s.sort = state
		s.mu.Unlock()
	}

	return &Report{
		Summary:    result.Summary,
		Cards:      projector.SummaryCards(result.Summary),
		Projection: projection,
		Attention:  projector.AttentionPreview(projection.AttentionColumns, projector.PreviewColumns, projector.PreviewIssues),
		Sort:       state,
	}, nil
}

// ToggleSort advances the sort cycle for field
func (s *Session) ToggleSort(field projector.SortField) (projector.SortState, error) {
	if err := s.touch(); err != nil {
		return projector.SortState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.sort.Toggle(field)
	if err != nil {
		return s.sort, err
	}
	s.sort = next
	return next, nil
}

// Select marks a column of the displayed result for inspection
func (s *Session) Select(name string) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return ErrNoResult
	}
	return s.selector.Select(s.result, name)
}

// ClearSelection drops the selection
func (s *Session) ClearSelection() {
	s.selector.Clear()
}

// Detail builds the drill-down for the selected column. It returns nil
// when nothing is selected.
func (s *Session) Detail() (*detail.View, error) {
	if err := s.touch(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, ErrNoResult
	}
	col := s.selector.Current(s.result)
	if col == nil {
		return nil, nil
	}
	view := detail.BuildView(col, s.result.Summary.RowCount)
	return &view, nil
}

// RefreshColumn reads one column straight from the engine. The stored
// result is left untouched.
func (s *Session) RefreshColumn(ctx context.Context, name string) (*detail.View, error) {
	if err := s.touch(); err != nil {
		return nil, err
	}
	handle, result := s.current()
	if handle.IsZero() {
		return nil, ErrNoJob
	}

	col, err := s.deps.Remote.GetColumn(ctx, handle.ID, name)
	if err != nil {
		return nil, err
	}

	rows := 0
	if result != nil {
		rows = result.Summary.RowCount
	}
	view := detail.BuildView(col, rows)
	return &view, nil
}
