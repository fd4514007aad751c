package tracker

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultPollSchedule waits two seconds after each settled poll
const DefaultPollSchedule = "@every 2s"

// ParseSchedule parses a poll schedule. Descriptors such as "@every 2s"
// and standard five-field cron expressions are accepted.
func ParseSchedule(spec string) (cron.Schedule, error) {
	if spec == "" {
		spec = DefaultPollSchedule
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// Interval returns a schedule firing d after every poll. Unlike "@every"
// it is not rounded to whole seconds.
func Interval(d time.Duration) cron.Schedule {
	return intervalSchedule(d)
}

type intervalSchedule time.Duration

func (s intervalSchedule) Next(t time.Time) time.Time {
	return t.Add(time.Duration(s))
}

// delayAfter is how long to wait, from now, before the next poll
func delayAfter(schedule cron.Schedule, now time.Time) time.Duration {
	// ConstantDelaySchedule.Next aligns to the second; the poll interval is
	// measured from when the previous poll settled instead.
	if constant, ok := schedule.(cron.ConstantDelaySchedule); ok {
		return constant.Delay
	}
	wait := schedule.Next(now).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}
