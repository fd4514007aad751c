// Package tracker follows one profiling job through the remote engine
// until it completes or fails.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/internal/remote"
	"github.com/robfig/cron/v3"
)

// User-facing failure texts
const (
	FetchFailedMessage      = "Failed to fetch results"
	ProcessingFailedMessage = "Processing failed"
	ResultMissingMessage    = "Job result missing"
	TimedOutMessage         = "Profiling timed out"
)

// ErrStopped is returned by Wait when the tracker was torn down first
var ErrStopped = errors.New("tracker stopped")

// StatusFetcher reads a job's status from the engine
type StatusFetcher interface {
	GetProfile(ctx context.Context, jobID string) (*model.StatusResponse, error)
}

// Listener observes state changes. It runs while the tracker holds its
// lock, so a newer poll loop cannot interleave with it; it must not call
// back into the tracker.
type Listener func(handle model.JobHandle, state model.JobState)

// Options tunes the poll loop
type Options struct {
	// Schedule decides when the next poll fires after one settles.
	// Nil selects DefaultPollSchedule.
	Schedule cron.Schedule
	// MaxWait bounds the time a job may stay processing. Zero means no bound.
	MaxWait time.Duration
}

// Tracker owns the lifecycle state of one active job
type Tracker struct {
	fetcher  StatusFetcher
	schedule cron.Schedule
	maxWait  time.Duration
	listener Listener

	mu         sync.Mutex
	generation uint64
	handle     model.JobHandle
	state      model.JobState
	polls      int
	cancel     context.CancelFunc
	done       chan struct{}
	doneClosed bool
	stopped    bool
}

// New creates an idle tracker
func New(fetcher StatusFetcher, opts Options) *Tracker {
	schedule := opts.Schedule
	if schedule == nil {
		schedule = cron.Every(2 * time.Second)
	}
	return &Tracker{
		fetcher:  fetcher,
		schedule: schedule,
		maxWait:  opts.MaxWait,
		state:    model.Idle(),
	}
}

// OnChange registers the state listener. Call before Start.
func (t *Tracker) OnChange(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listener = l
}

// Start begins tracking handle. Any previous loop is abandoned: its
// in-flight response will not touch the new state.
func (t *Tracker) Start(handle model.JobHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startLocked(handle)
}

// Restart re-polls the current handle from scratch. It is the only way
// to leave a terminal state for the same handle.
func (t *Tracker) Restart() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handle.IsZero() {
		return false
	}
	t.startLocked(t.handle)
	return true
}

func (t *Tracker) startLocked(handle model.JobHandle) {
	t.abandonLocked()

	ctx, cancel := context.WithCancel(context.Background())
	t.generation++
	t.handle = handle
	t.polls = 0
	t.cancel = cancel
	t.done = make(chan struct{})
	t.doneClosed = false
	t.stopped = false
	t.setLocked(model.Processing())

	slog.Info("Tracking profiling job",
		"job_id", handle.ID,
		"file", handle.DisplayName,
		"generation", t.generation,
	)

	go t.run(ctx, t.generation, handle)
}

// Stop tears the loop down. The state is frozen where it is and no
// further polls are scheduled.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel == nil {
		return
	}
	t.abandonLocked()
	t.stopped = true
	slog.Debug("Stopped tracking profiling job", "job_id", t.handle.ID)
}

// abandonLocked invalidates the running loop and wakes waiters
func (t *Tracker) abandonLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.generation++
	t.closeDoneLocked()
}

func (t *Tracker) closeDoneLocked() {
	if t.done != nil && !t.doneClosed {
		close(t.done)
		t.doneClosed = true
	}
}

// setLocked replaces the state and notifies the listener
func (t *Tracker) setLocked(state model.JobState) {
	t.state = state
	if state.IsTerminal() {
		t.closeDoneLocked()
	}
	if t.listener != nil {
		t.listener(t.handle, state)
	}
}

// State returns the current state
func (t *Tracker) State() model.JobState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Handle returns the tracked job
func (t *Tracker) Handle() model.JobHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

// Polls returns how many status requests settled for the current loop
func (t *Tracker) Polls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.polls
}

// Wait blocks until the job reaches a terminal state, the tracker is
// stopped, or ctx is done.
func (t *Tracker) Wait(ctx context.Context) (model.JobState, error) {
	for {
		t.mu.Lock()
		state, done, stopped := t.state, t.done, t.stopped
		t.mu.Unlock()

		if state.IsTerminal() {
			return state, nil
		}
		if stopped || done == nil {
			return state, ErrStopped
		}

		select {
		case <-done:
		case <-ctx.Done():
			return state, ctx.Err()
		}
	}
}

// run is the poll loop for one generation. Polls are serial: the next one
// is scheduled only after the previous one settled.
func (t *Tracker) run(ctx context.Context, generation uint64, handle model.JobHandle) {
	started := time.Now()

	for {
		resp, err := t.fetcher.GetProfile(ctx, handle.ID)
		if ctx.Err() != nil {
			return
		}

		state, pending := interpret(resp, err)
		if !t.settle(generation, state, pending) {
			return
		}
		if !pending {
			slog.Info("Profiling job settled",
				"job_id", handle.ID,
				"status", state.Status,
				"message", state.Message,
				"elapsed_ms", time.Since(started).Milliseconds(),
			)
			return
		}

		now := time.Now()
		wait := delayAfter(t.schedule, now)
		if t.maxWait > 0 && now.Add(wait).Sub(started) > t.maxWait {
			slog.Warn("Profiling job exceeded wait bound",
				"job_id", handle.ID,
				"max_wait", t.maxWait.String(),
			)
			t.settle(generation, model.Failed(TimedOutMessage), false)
			return
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// settle applies one poll outcome if generation is still current.
// It reports whether the loop is still live.
func (t *Tracker) settle(generation uint64, state model.JobState, pending bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if generation != t.generation {
		slog.Debug("Dropping stale poll response", "job_id", t.handle.ID)
		return false
	}
	t.polls++
	if pending {
		return true
	}
	t.setLocked(state)
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return true
}

// interpret maps one status response to the next state. pending means
// the job is still processing.
func interpret(resp *model.StatusResponse, err error) (model.JobState, bool) {
	if err != nil {
		return model.Failed(remote.UserMessage(err, FetchFailedMessage)), false
	}

	switch resp.Status {
	case string(model.JobCompleted):
		if resp.Result == nil {
			return model.Failed(ResultMissingMessage), false
		}
		return model.Completed(resp.Result), false
	case string(model.JobFailed):
		if resp.Error != "" {
			return model.Failed(resp.Error), false
		}
		return model.Failed(ProcessingFailedMessage), false
	default:
		return model.Processing(), true
	}
}
