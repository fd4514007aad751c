// Package session composes the intake, tracker, selection, insights and
// export branches for one user working on one dataset at a time.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dandantas/profilewatch/internal/detail"
	"github.com/dandantas/profilewatch/internal/export"
	"github.com/dandantas/profilewatch/internal/insights"
	"github.com/dandantas/profilewatch/internal/intake"
	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/internal/notify"
	"github.com/dandantas/profilewatch/internal/projector"
	"github.com/dandantas/profilewatch/internal/tracker"
	"github.com/dandantas/profilewatch/internal/worker"
	"github.com/dandantas/profilewatch/pkg/middleware"
)

var (
	// ErrNoJob is returned when an operation needs an uploaded job
	ErrNoJob = errors.New("no job has been submitted")
	// ErrNoResult is returned when an operation needs a completed result
	ErrNoResult = errors.New("no completed result")
	// ErrClosed is returned after the session was torn down
	ErrClosed = errors.New("session closed")
)

// CompletedMessage is the notification text for a finished job
const CompletedMessage = "Profiling completed"

// Remote is everything a session asks of the profiling engine
type Remote interface {
	intake.Uploader
	tracker.StatusFetcher
	insights.Generator
	export.Downloader
	GetColumn(ctx context.Context, jobID, column string) (*model.Column, error)
}

// Deps are the collaborators shared by every session
type Deps struct {
	Remote         Remote
	MaxUploadBytes int64
	Tracker        tracker.Options
	Saver          export.Saver
	// Pool runs insights generation and notification delivery. Nil runs
	// them on plain goroutines.
	Pool     *worker.Pool
	Notifier notify.Notifier
}

// Session is the state of one console. Mutations are serialised behind
// mu; remote calls run outside it and re-enter through the listeners.
type Session struct {
	id   string
	deps Deps

	intake   *intake.Intake
	tracker  *tracker.Tracker
	selector detail.Selector
	insights *insights.Fetcher
	exports  *export.Dispatcher

	mu         sync.Mutex
	handle     model.JobHandle
	result     *model.ProfileResult
	sort       projector.SortState
	progress   int
	lastActive time.Time
	closed     bool
}

// New creates an idle session
func New(id string, deps Deps) *Session {
	if deps.Notifier == nil {
		deps.Notifier = notify.LogNotifier{}
	}
	s := &Session{
		id:         id,
		deps:       deps,
		intake:     intake.New(deps.Remote, deps.MaxUploadBytes),
		tracker:    tracker.New(deps.Remote, deps.Tracker),
		insights:   insights.NewFetcher(deps.Remote),
		exports:    export.NewDispatcher(deps.Remote, deps.Saver),
		lastActive: time.Now(),
	}
	s.tracker.OnChange(s.onJobState)
	s.insights.OnChange(s.onInsightsState)
	return s
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Upload validates and submits a dataset. On success the previous job,
// result, selection and insights are discarded and tracking begins. A
// failed upload leaves the session as it was.
func (s *Session) Upload(ctx context.Context, f intake.File) (model.JobHandle, error) {
	if err := s.touch(); err != nil {
		return model.JobHandle{}, err
	}

	s.setProgress(0)
	report := f.Progress
	f.Progress = func(p int) {
		s.setProgress(p)
		if report != nil {
			report(p)
		}
	}

	handle, err := s.intake.Submit(ctx, f)
	if err != nil {
		s.emit(ctx, notify.Failure(notify.KindUpload, uploadMessage(err)).WithDetail("file", f.Name))
		return model.JobHandle{}, err
	}

	s.mu.Lock()
	s.handle = handle
	s.result = nil
	s.sort = projector.SortState{}
	s.selector.Invalidate()
	s.mu.Unlock()

	s.insights.Reset()
	s.tracker.Start(handle)

	s.emit(ctx, notify.Success(notify.KindUpload, "File uploaded successfully").WithDetail("file", f.Name))
	return handle, nil
}

func uploadMessage(err error) string {
	var validation *model.ValidationError
	if errors.As(err, &validation) {
		return validation.UserMessage()
	}
	var submit *intake.SubmitError
	if errors.As(err, &submit) {
		return submit.Message
	}
	return intake.UploadFailedMessage
}

// Refresh re-polls the current job from scratch. The last completed
// result stays visible until a new one replaces it.
func (s *Session) Refresh() error {
	if err := s.touch(); err != nil {
		return err
	}
	if !s.tracker.Restart() {
		return ErrNoJob
	}
	return nil
}

// Wait blocks until the job is terminal or ctx is done
func (s *Session) Wait(ctx context.Context) (model.JobState, error) {
	if err := s.touch(); err != nil {
		return model.JobState{}, err
	}
	return s.tracker.Wait(ctx)
}

// Close stops the poll loop. In-flight responses are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.tracker.Stop()
	slog.Info("Session closed", "session_id", s.id)
}

// IdleSince returns the last time the session was used
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.lastActive = time.Now()
	return nil
}

func (s *Session) setProgress(p int) {
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
}

// onJobState runs inside the tracker's apply step. Replacing the result
// and dropping the selection happen under one lock.
func (s *Session) onJobState(handle model.JobHandle, state model.JobState) {
	s.mu.Lock()
	if handle.ID != s.handle.ID {
		s.mu.Unlock()
		return
	}
	switch state.Status {
	case model.JobCompleted:
		if s.result != state.Result {
			s.result = state.Result
			s.selector.Invalidate()
		}
	case model.JobFailed:
		if s.result != nil {
			s.result = nil
			s.selector.Invalidate()
		}
	}
	s.mu.Unlock()

	ctx := context.Background()
	switch state.Status {
	case model.JobCompleted:
		s.emit(ctx, notify.Success(notify.KindJob, CompletedMessage))
	case model.JobFailed:
		s.emit(ctx, notify.Failure(notify.KindJob, state.Message))
	}
}

func (s *Session) onInsightsState(state model.InsightsState) {
	ctx := context.Background()
	switch state.Status {
	case model.InsightsReady:
		s.emit(ctx, notify.Success(notify.KindInsights, "Insights generated successfully").WithDetail("model", state.Model))
	case model.InsightsError:
		s.emit(ctx, notify.Failure(notify.KindInsights, state.Message).WithDetail("model", state.Model))
	}
}

// emit hands the event to the notifier without blocking the caller
func (s *Session) emit(ctx context.Context, event notify.Event) {
	s.mu.Lock()
	jobID := s.handle.ID
	s.mu.Unlock()
	event = event.With(s.id, jobID)
	if event.CorrelationID == "" {
		event.CorrelationID = middleware.GetCorrelationID(ctx)
	}

	deliver := func(ctx context.Context) error {
		return s.deps.Notifier.Notify(ctx, event)
	}

	if s.deps.Pool == nil {
		if err := deliver(context.Background()); err != nil {
			slog.Warn("Notification failed", "session_id", s.id, "error", err.Error())
		}
		return
	}

	err := s.deps.Pool.TrySubmit(worker.Task{
		Name:          "notify:" + string(event.Kind),
		CorrelationID: event.CorrelationID,
		Run:           deliver,
	})
	if err != nil {
		slog.Warn("Notification dropped",
			"session_id", s.id,
			"kind", string(event.Kind),
			"error", err.Error(),
		)
	}
}

// current returns the handle and displayed result
func (s *Session) current() (model.JobHandle, *model.ProfileResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle, s.result
}
