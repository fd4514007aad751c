package worker

import (
	"context"
)

// Task is one unit of background work
type Task struct {
	Name          string
	CorrelationID string
	Context       context.Context
	Run           func(ctx context.Context) error
}
