package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Notifier delivers events. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes events to slog
type LogNotifier struct{}

// Notify logs the event at info or warn level
func (LogNotifier) Notify(_ context.Context, e Event) error {
	attrs := []any{
		"kind", string(e.Kind),
		"level", string(e.Level),
		"session_id", e.SessionID,
		"job_id", e.JobID,
	}
	if e.CorrelationID != "" {
		attrs = append(attrs, "correlation_id", e.CorrelationID)
	}
	for k, v := range e.Details {
		attrs = append(attrs, k, v)
	}
	if e.Level == LevelError {
		slog.Warn(e.Message, attrs...)
	} else {
		slog.Info(e.Message, attrs...)
	}
	return nil
}

// Fanout sends every event to each notifier in turn, returning the first
// error after all have been tried.
type Fanout []Notifier

// Notify implements Notifier
func (f Fanout) Notify(ctx context.Context, e Event) error {
	var first error
	for _, n := range f {
		if err := n.Notify(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Recorder keeps the most recent events in memory, newest last. It backs
// the per-session notification feed.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewRecorder keeps at most limit events; zero means unbounded
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Notify implements Notifier
func (r *Recorder) Notify(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = r.events[len(r.events)-r.limit:]
	}
	return nil
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ForSession returns the recorded events of one session, oldest first
func (r *Recorder) ForSession(sessionID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0)
	for _, e := range r.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out
}
