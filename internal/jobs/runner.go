package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskroster-api/internal/config"
)

// Runner owns a queue and the worker pool that drains it.
type Runner struct {
	queue  *Queue
	pool   *WorkerPool
	logger *slog.Logger
}

// NewRunner creates a Runner sized by cfg. Call Start before submitting work
// you expect to run promptly; jobs submitted earlier wait in the queue.
func NewRunner(cfg config.JobsConfig, logger *slog.Logger) *Runner {
	queue := NewQueue(cfg.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: cfg.WorkerCount}, logger)

	return &Runner{
		queue:  queue,
		pool:   pool,
		logger: logger.With("component", "job_runner"),
	}
}

// SetErrorHandler installs a callback for failed jobs. Call before Start.
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Submit enqueues job without blocking.
// Returns ErrQueueFull or ErrQueueClosed (wrapped) if the job is rejected.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	if err := r.queue.Enqueue(job); err != nil {
		return fmt.Errorf("failed to submit %s job: %w", job.Type(), err)
	}
	return nil
}

// Start begins processing queued jobs.
func (r *Runner) Start() {
	r.pool.Start()
}

// Stop closes the queue and waits for queued jobs to finish or ctx to end.
func (r *Runner) Stop(ctx context.Context) error {
	r.logger.Info("stopping job runner")
	r.queue.Close()
	return r.pool.Stop(ctx)
}
