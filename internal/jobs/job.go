package jobs

import (
	"context"

	"github.com/google/uuid"
)

// Job represents a unit of background work to be processed
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier, used in logs
	Type() string

	// Execute runs the job logic. ctx is cancelled when the pool is forced to stop.
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the job channel
// allowing workers to consume jobs without the ability to enqueue
type QueueReader interface {
	// Channel returns a read-only channel for consuming jobs.
	// It is closed when the queue is closed.
	Channel() <-chan Job
}

// QueueWriter provides write access to the job queue
type QueueWriter interface {
	// Enqueue adds a job without blocking.
	// Returns ErrQueueFull or ErrQueueClosed if the job cannot be accepted.
	Enqueue(job Job) error

	// Close prevents further submission; queued jobs are still delivered.
	Close()
}

// Func adapts a function to the Job interface.
type Func struct {
	id      uuid.UUID
	jobType string
	fn      func(ctx context.Context) error
}

// NewFunc wraps fn as a Job of the given type.
func NewFunc(jobType string, fn func(ctx context.Context) error) *Func {
	return &Func{id: uuid.New(), jobType: jobType, fn: fn}
}

// ID implements Job.
func (f *Func) ID() uuid.UUID { return f.id }

// Type implements Job.
func (f *Func) Type() string { return f.jobType }

// Execute implements Job.
func (f *Func) Execute(ctx context.Context) error { return f.fn(ctx) }
