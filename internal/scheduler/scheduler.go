package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Reapable is anything that can drop entries idle since a cutoff
type Reapable interface {
	ReapIdle(now time.Time) int
}

// Reaper runs a Reapable on a cron schedule
type Reaper struct {
	target   Reapable
	schedule cron.Schedule
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewReaper parses spec (standard cron or a descriptor such as
// "@every 5m") and returns a stopped reaper.
func NewReaper(target Reapable, spec string) (*Reaper, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, err
	}
	return &Reaper{
		target:   target,
		schedule: schedule,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins the reap loop
func (r *Reaper) Start(ctx context.Context) {
	slog.Info("Starting session reaper")
	r.wg.Add(1)
	go r.run(ctx)
}

// Stop ends the loop and waits for a running pass, bounded by ctx
func (r *Reaper) Stop(ctx context.Context) {
	r.once.Do(func() { close(r.stopChan) })

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Session reaper stopped")
	case <-ctx.Done():
		slog.Warn("Timeout waiting for session reaper to stop")
	}
}

func (r *Reaper) run(ctx context.Context) {
	defer r.wg.Done()

	for {
		now := time.Now()
		timer := time.NewTimer(r.schedule.Next(now).Sub(now))

		select {
		case <-timer.C:
			r.tick()
		case <-r.stopChan:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (r *Reaper) tick() {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Panic in session reaper", "panic", rec)
		}
	}()

	removed := r.target.ReapIdle(time.Now())
	slog.Debug("Session reaper pass", "removed", removed)
}
