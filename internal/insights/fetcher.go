// Package insights requests narrative insights for a completed job and
// normalizes the loosely typed items into display strings.
package insights

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/internal/remote"
)

// GenerateFailedMessage is shown when the engine gives no detail
const GenerateFailedMessage = "Failed to generate insights"

// ErrNoJob is returned when generation is requested without a job
var ErrNoJob = errors.New("no job to generate insights for")

// Generator is the remote call behind Fetcher
type Generator interface {
	GetInsights(ctx context.Context, jobID, modelID string) (*model.InsightsResponse, error)
}

// Listener observes state transitions. It runs under the fetcher lock and
// must not call back into the Fetcher.
type Listener func(state model.InsightsState)

// Fetcher owns the insights state of one session. Entering Loading drops
// any previous result. Only the most recently requested (job, model) pair
// may write the outcome.
type Fetcher struct {
	remote Generator
	group  singleflight.Group

	mu       sync.Mutex
	state    model.InsightsState
	key      string
	listener Listener
}

// NewFetcher creates a fetcher in the not-requested state
func NewFetcher(remote Generator) *Fetcher {
	return &Fetcher{
		remote: remote,
		state:  model.InsightsState{Status: model.InsightsNotRequested},
	}
}

// OnChange registers the transition listener
func (f *Fetcher) OnChange(l Listener) {
	f.mu.Lock()
	f.listener = l
	f.mu.Unlock()
}

// State returns a snapshot of the current state
func (f *Fetcher) State() model.InsightsState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Reset returns to not-requested; in-flight results are discarded
func (f *Fetcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.key = ""
	f.setLocked(model.InsightsState{Status: model.InsightsNotRequested})
}

// Begin enters Loading for (jobID, modelID) and returns the state. A
// repeated Begin for the key already loading leaves it untouched.
func (f *Fetcher) Begin(jobID, modelID string) (model.InsightsState, error) {
	if jobID == "" {
		return f.State(), ErrNoJob
	}
	modelID = ResolveModel(modelID)
	key := requestKey(jobID, modelID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.key == key && f.state.Status == model.InsightsLoading {
		return f.state, nil
	}
	f.key = key
	f.setLocked(model.InsightsState{Status: model.InsightsLoading, JobID: jobID, Model: modelID})
	return f.state, nil
}

// Run performs the remote request for (jobID, modelID) and applies the
// outcome if that pair is still the latest request. Concurrent runs for
// the same pair share one remote call.
func (f *Fetcher) Run(ctx context.Context, jobID, modelID string) model.InsightsState {
	modelID = ResolveModel(modelID)
	key := requestKey(jobID, modelID)

	v, err, shared := f.group.Do(key, func() (interface{}, error) {
		return f.remote.GetInsights(ctx, jobID, modelID)
	})

	next := model.InsightsState{Status: model.InsightsReady, JobID: jobID, Model: modelID}
	if err == nil {
		resp := v.(*model.InsightsResponse)
		if resp == nil || resp.Insights == nil {
			err = errors.New("insights missing from response")
		} else {
			next.Result = resp.Insights
			if resp.ModelUsed != "" {
				next.Model = resp.ModelUsed
			}
		}
	}
	if err != nil {
		slog.Warn("Insights generation failed",
			"job_id", jobID,
			"model", modelID,
			"error", err.Error(),
		)
		next = model.InsightsState{
			Status:  model.InsightsError,
			JobID:   jobID,
			Model:   modelID,
			Message: remote.UserMessage(err, GenerateFailedMessage),
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.key != key {
		slog.Debug("Discarding superseded insights outcome", "job_id", jobID, "model", modelID)
		return f.state
	}
	if shared && f.state.Status != model.InsightsLoading {
		return f.state
	}
	f.setLocked(next)
	return f.state
}

// Generate is Begin followed by Run
func (f *Fetcher) Generate(ctx context.Context, jobID, modelID string) (model.InsightsState, error) {
	if _, err := f.Begin(jobID, modelID); err != nil {
		return f.State(), err
	}
	return f.Run(ctx, jobID, modelID), nil
}

func (f *Fetcher) setLocked(state model.InsightsState) {
	f.state = state
	if f.listener != nil {
		f.listener(state)
	}
}

func requestKey(jobID, modelID string) string {
	return jobID + "\x00" + modelID
}
