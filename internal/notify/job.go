package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/jobs"
)

// JobTypeTaskAssigned identifies assignment notification jobs in logs.
const JobTypeTaskAssigned = "notify_task_assigned"

// Job dispatches the assignment message for one task on a background worker.
type Job struct {
	id         uuid.UUID
	task       *domain.Task
	dispatcher TaskDispatcher
}

var _ jobs.Job = (*Job)(nil)

// NewJob creates a Job for task.
func NewJob(task *domain.Task, dispatcher TaskDispatcher) *Job {
	return &Job{id: uuid.New(), task: task, dispatcher: dispatcher}
}

// ID implements jobs.Job.
func (j *Job) ID() uuid.UUID { return j.id }

// Type implements jobs.Job.
func (j *Job) Type() string { return JobTypeTaskAssigned }

// TaskID returns the task being announced.
func (j *Job) TaskID() uuid.UUID { return j.task.ID }

// Execute implements jobs.Job.
func (j *Job) Execute(ctx context.Context) error {
	_, err := j.dispatcher.DispatchTask(ctx, j.task)
	return err
}
