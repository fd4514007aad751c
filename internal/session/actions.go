package session

import (
	"context"
	"errors"
	"strings"

	"github.com/dandantas/profilewatch/internal/export"
	"github.com/dandantas/profilewatch/internal/insights"
	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/internal/notify"
	"github.com/dandantas/profilewatch/internal/worker"
	"github.com/dandantas/profilewatch/pkg/middleware"
)

// GenerateInsights enters Loading and schedules the remote request. The
// returned state is the Loading state; the outcome arrives later.
func (s *Session) GenerateInsights(ctx context.Context, modelID string) (model.InsightsState, error) {
	if err := s.touch(); err != nil {
		return model.InsightsState{}, err
	}
	handle, result := s.current()
	if handle.IsZero() {
		return s.insights.State(), ErrNoJob
	}
	if result == nil {
		return s.insights.State(), ErrNoResult
	}

	modelID = insights.ResolveModel(modelID)
	state, err := s.insights.Begin(handle.ID, modelID)
	if err != nil {
		return state, err
	}

	// the request outlives the inbound HTTP call but keeps its values
	runCtx := context.WithoutCancel(ctx)
	run := func(taskCtx context.Context) error {
		next := s.insights.Run(taskCtx, handle.ID, modelID)
		if next.Status == model.InsightsError {
			return errors.New(next.Message)
		}
		return nil
	}

	if s.deps.Pool == nil {
		go func() { _ = run(runCtx) }()
		return state, nil
	}
	err = s.deps.Pool.Submit(worker.Task{
		Name:          "insights",
		CorrelationID: middleware.GetCorrelationID(ctx),
		Context:       runCtx,
		Run:           run,
	})
	if err != nil {
		// run inline so the fetcher still leaves Loading
		next := s.insights.Run(runCtx, handle.ID, modelID)
		return next, nil
	}
	return state, nil
}

// InsightsView is the insights state with rendered sections
type InsightsView struct {
	State    model.InsightsState   `json:"state"`
	Sections *insights.SectionView `json:"sections,omitempty"`
}

// Insights returns the current insights state and, when ready, the
// rendered sections.
func (s *Session) Insights() InsightsView {
	state := s.insights.State()
	view := InsightsView{State: state}
	if state.Status == model.InsightsReady {
		sections := insights.View(state.Result)
		view.Sections = &sections
		view.State.Result = nil
	}
	return view
}

// Export downloads and saves a report of the current job. xlsx is built
// locally from the displayed result.
func (s *Session) Export(ctx context.Context, format string) (*export.Outcome, error) {
	if err := s.touch(); err != nil {
		return nil, err
	}
	handle, result := s.current()
	if handle.IsZero() {
		return nil, ErrNoJob
	}
	if result == nil {
		return nil, ErrNoResult
	}

	format = strings.ToLower(format)
	var (
		outcome *export.Outcome
		err     error
	)
	if format == export.FormatXLSX {
		outcome, err = s.exportWorkbook(ctx, handle, result)
	} else {
		outcome, err = s.exports.Export(ctx, handle.ID, format)
	}

	switch {
	case err == nil:
		s.emit(ctx, notify.Success(notify.KindExport, outcome.Message).WithDetail("path", outcome.Path))
	case errors.Is(err, export.ErrExportInFlight), errors.Is(err, export.ErrUnsupportedFormat):
	default:
		s.emit(ctx, notify.Failure(notify.KindExport, ExportMessage(err, format)))
	}
	return outcome, err
}

func (s *Session) exportWorkbook(ctx context.Context, handle model.JobHandle, result *model.ProfileResult) (*export.Outcome, error) {
	data, err := export.WorkbookBytes(result)
	if err != nil {
		return nil, &export.Failure{Format: export.FormatXLSX, Message: "Failed to export XLSX", Cause: err}
	}
	return s.exports.Save(ctx, handle.ID, export.FormatXLSX, export.WorkbookName(handle.ID), export.WorkbookContentType, data)
}

// ExportMessage returns the user-facing text for a failed export
func ExportMessage(err error, format string) string {
	var failure *export.Failure
	if errors.As(err, &failure) {
		return failure.Message
	}
	return "Failed to export " + strings.ToUpper(format)
}
