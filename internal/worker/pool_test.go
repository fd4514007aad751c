package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsTasks(t *testing.T) {
	p := NewPool(2, 10)
	p.Start()

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(Task{
			Name: "count",
			Run: func(context.Context) error {
				ran.Add(1)
				return nil
			},
		}))
	}
	p.Stop()

	assert.Equal(t, int32(5), ran.Load())
}

func TestPoolSurvivesPanicsAndErrors(t *testing.T) {
	p := NewPool(1, 4)
	p.Start()

	done := make(chan struct{})
	require.NoError(t, p.Submit(Task{Name: "panic", Run: func(context.Context) error { panic("boom") }}))
	require.NoError(t, p.Submit(Task{Name: "fail", Run: func(context.Context) error { return errors.New("nope") }}))
	require.NoError(t, p.Submit(Task{Name: "ok", Run: func(context.Context) error {
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not recover")
	}
	p.Stop()
}

func TestTrySubmitQueueFull(t *testing.T) {
	p := NewPool(1, 1)

	require.NoError(t, p.TrySubmit(Task{Name: "a", Run: func(context.Context) error { return nil }}))
	assert.Equal(t, 1, p.QueueLength())
	assert.ErrorIs(t, p.TrySubmit(Task{Name: "b", Run: func(context.Context) error { return nil }}), ErrQueueFull)

	p.Start()
	p.Stop()
}

func TestSubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1)
	p.Start()
	p.Stop()
	p.Stop()

	assert.ErrorIs(t, p.Submit(Task{Name: "late"}), ErrPoolStopped)
	assert.ErrorIs(t, p.TrySubmit(Task{Name: "late"}), ErrPoolStopped)
}

func TestSubmitHonoursTaskContext(t *testing.T) {
	p := NewPool(1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Submit(Task{Name: "blocked", Context: ctx})

	assert.ErrorIs(t, err, context.Canceled)
}
