package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrPoolStopped is returned when submitting to a stopped pool
	ErrPoolStopped = errors.New("worker pool stopped")
	// ErrQueueFull is returned by TrySubmit when no slot is free
	ErrQueueFull = errors.New("worker queue full")
)

// Pool runs tasks on a fixed number of goroutines
type Pool struct {
	workers int
	tasks   chan Task
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a pool with a bounded queue
func NewPool(workers int, queueSize int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	if workers < 1 {
		workers = 1
	}

	return &Pool{
		workers: workers,
		tasks:   make(chan Task, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	slog.Info("Starting worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop drains the queue and waits for running tasks
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	slog.Info("Stopping worker pool")
	p.wg.Wait()
	p.cancel()
	slog.Info("Worker pool stopped")
}

// Submit queues a task, blocking while the queue is full
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	ctx := task.Context
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case p.tasks <- task:
		slog.Debug("Task submitted to worker pool",
			"task", task.Name,
			"correlation_id", task.CorrelationID,
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolStopped
	}
}

// TrySubmit queues a task only if a slot is free right now
func (p *Pool) TrySubmit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueLength returns the number of tasks waiting
func (p *Pool) QueueLength() int {
	return len(p.tasks)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	slog.Debug("Worker started", "worker_id", id)

	for task := range p.tasks {
		ctx := task.Context
		if ctx == nil {
			ctx = p.ctx
		}
		if err := p.run(ctx, task); err != nil {
			slog.Warn("Task failed",
				"worker_id", id,
				"task", task.Name,
				"correlation_id", task.CorrelationID,
				"error", err.Error(),
			)
		}
	}

	slog.Debug("Worker stopped", "worker_id", id)
}

func (p *Pool) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Task panicked", "task", task.Name, "panic", r)
			err = errors.New("task panicked")
		}
	}()
	return task.Run(ctx)
}
